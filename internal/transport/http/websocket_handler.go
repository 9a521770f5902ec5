package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	ws "findash/internal/websocket"
)

// WebSocketHandler upgrades /ws requests and hands the connection to the hub
type WebSocketHandler struct {
	hub            *ws.Hub
	allowedOrigins []string
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewWebSocketHandler creates a websocket handler. Same-host origins are
// always accepted; others must appear in allowedOrigins ("*" allows any).
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, readBuffer, writeBuffer int, logger *slog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:            hub,
		allowedOrigins: allowedOrigins,
		logger:         logger.With(slog.String("component", "websocket_handler")),
	}
	if readBuffer <= 0 {
		readBuffer = 1024
	}
	if writeBuffer <= 0 {
		writeBuffer = 1024
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin:     h.checkOrigin,
		ReadBufferSize:  readBuffer,
		WriteBufferSize: writeBuffer,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.WarnContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, http.StatusText(status), status)
		},
	}
	return h
}

// checkOrigin allows requests without an Origin header, same-host pages
// and configured origins.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://"), r.Host) {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}

	h.logger.WarnContext(r.Context(), "WebSocket origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.allowedOrigins))
	return false
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied
		return
	}

	client := ws.NewClient(h.hub, conn, r.RemoteAddr, reqID, h.logger)
	h.logger.InfoContext(r.Context(), "WebSocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", reqID))

	client.Serve()
}
