package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"findash/internal/dataset"
	"findash/internal/infrastructure"
)

// Message types pushed to clients
const (
	TypeConnection      = "connection"
	TypeDatasetReloaded = "dataset_reloaded"
)

// Message is the envelope of every frame the hub sends.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// ReloadEvent tells open pages that the dataset changed.
type ReloadEvent struct {
	Version  string    `json:"version"`
	Source   string    `json:"source"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics

	totalConnections int64
	messagesSent     int64

	quit    chan struct{}
	running bool
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub loop once.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		close(client.send)
		return
	}
	h.clients[client] = true
	count := len(h.clients)
	h.totalConnections++
	h.mu.Unlock()

	ctx := client.context()
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))
	h.recordConnections(ctx, 1)

	data, err := encode(TypeConnection, map[string]interface{}{
		"status":    "connected",
		"client_id": client.id,
	}, client.traceID)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
	h.recordConnections(ctx, -1)
}

func (h *Hub) fanOut(message []byte) {
	var slow []*Client
	sent := 0

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- message:
			sent++
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	h.mu.Lock()
	h.messagesSent += int64(sent)
	// Slow consumers are dropped rather than blocking the hub.
	for _, client := range slow {
		if _, ok := h.clients[client]; ok {
			delete(h.clients, client)
			close(client.send)
		}
	}
	h.mu.Unlock()

	for _, client := range slow {
		h.logger.WarnContext(client.context(), "Client send buffer full, disconnecting",
			slog.String("client_id", client.id))
		h.recordConnections(context.Background(), -1)
	}

	h.logger.Debug("Broadcast delivered",
		slog.Int("delivered", sent),
		slog.Int("dropped", len(slow)),
		slog.Int("message_size", len(message)))
}

// Broadcast queues a message for every connected client. It never blocks
// once the hub has stopped.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	payload, err := encode(messageType, data, "")
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("message_type", messageType),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- payload:
		if h.metrics != nil {
			h.metrics.WebSocketMessages.Add(context.Background(), 1,
				metric.WithAttributes(attribute.String("type", messageType)))
		}
	case <-h.quit:
	}
}

// NotifyReload pushes a dataset_reloaded event. It has the shape of
// dataset.ReloadFunc.
func (h *Hub) NotifyReload(ctx context.Context, snap *dataset.Snapshot) {
	h.logger.InfoContext(ctx, "Notifying clients of dataset reload",
		slog.String("version", snap.Version),
		slog.Int("clients", h.ClientCount()))

	h.Broadcast(TypeDatasetReloaded, ReloadEvent{
		Version:  snap.Version,
		Source:   snap.Source,
		Records:  snap.Table.Len(),
		LoadedAt: snap.LoadedAt,
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Stats returns connection counters
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
	}
}

// Stop gracefully stops the hub and closes every client
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.quit)

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) recordConnections(ctx context.Context, delta int64) {
	if h.metrics != nil {
		h.metrics.WebSocketConnections.Add(ctx, delta)
	}
}

func encode(messageType string, data interface{}, traceID string) ([]byte, error) {
	return json.Marshal(Message{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
		TraceID:   traceID,
	})
}
