package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"findash/internal/config"
)

// Logging outputs accepted by config.LoggingConfig.Output.
const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputFile   = "file"
	OutputBoth   = "both"
)

// Process-wide logger set by InitializeLogger; logFile is closed on shutdown.
var (
	global struct {
		mu      sync.Mutex
		once    sync.Once
		logger  *slog.Logger
		logFile *os.File
	}
)

type contextKey string

// TraceIDContextKey holds the request or job correlation id.
const TraceIDContextKey contextKey = "trace_id"

// InitializeLogger builds the process logger from cfg and installs it as
// slog's default. Later calls return the first logger.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	global.once.Do(func() {
		var out io.Writer
		if out, err = openOutput(cfg); err != nil {
			return
		}
		logger := NewLogger(cfg, out)
		global.mu.Lock()
		global.logger = logger
		global.mu.Unlock()
		slog.SetDefault(logger)
	})
	return GetLogger(), err
}

// GetLogger returns the process logger, or slog's default before
// InitializeLogger ran.
func GetLogger() *slog.Logger {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.logger == nil {
		return slog.Default()
	}
	return global.logger
}

// NewLogger builds a logger writing to w that tags records with the trace
// id in their context. Format "text" selects slog's text handler; anything
// else is JSON.
func NewLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     parseLogLevel(cfg.Level),
	}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(&traceHandler{Handler: h})
}

func openOutput(cfg config.LoggingConfig) (io.Writer, error) {
	switch strings.ToLower(cfg.Output) {
	case OutputStderr:
		return os.Stderr, nil
	case OutputFile, OutputBoth:
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		global.mu.Lock()
		global.logFile = file
		global.mu.Unlock()
		if strings.EqualFold(cfg.Output, OutputBoth) {
			return io.MultiWriter(os.Stdout, file), nil
		}
		return file, nil
	default:
		return os.Stdout, nil
	}
}

// traceHandler adds trace_id from the record's context.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return traceID
	}
	return ""
}

// CloseLogFile closes the log file opened by InitializeLogger, if any.
func CloseLogFile() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.logFile == nil {
		return nil
	}
	err := global.logFile.Close()
	global.logFile = nil
	return err
}

// ResetLoggerForTesting forgets the process logger so a test can
// initialize a new one.
func ResetLoggerForTesting() {
	CloseLogFile()
	global.mu.Lock()
	global.logger = nil
	global.once = sync.Once{}
	global.mu.Unlock()
}

func openLogFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
