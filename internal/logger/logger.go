// Package logger provides structured logging for copyforge
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog with copyforge-specific helpers
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // console output for development
	Output     io.Writer
	WithCaller bool
}

// ParseLevel maps a config level name to a zerolog level. Unknown names fall back to info.
func ParseLevel(name string) zerolog.Level {
	switch name {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// NewLogger creates a new structured logger
func NewLogger(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "copyforge").
		Logger()

	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}

	return &Logger{zlog: zlog}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// GetZerolog returns the underlying zerolog logger
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

func (l *Logger) Info(msg string) *zerolog.Event {
	return l.zlog.Info().Str("msg", msg)
}

func (l *Logger) Debug(msg string) *zerolog.Event {
	return l.zlog.Debug().Str("msg", msg)
}

func (l *Logger) Warn(msg string) *zerolog.Event {
	return l.zlog.Warn().Str("msg", msg)
}

func (l *Logger) Error(msg string) *zerolog.Event {
	return l.zlog.Error().Str("msg", msg)
}

// StudioLogger returns a logger scoped to one tool's studio
func (l *Logger) StudioLogger(tool string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "studio").
			Str("tool", tool).
			Logger(),
	}
}

// ExportLogger returns a logger scoped to one export run
func (l *Logger) ExportLogger(versionID string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "export").
			Str("version_id", versionID).
			Logger(),
	}
}

// GrpcLogger returns a logger for gRPC operations
func (l *Logger) GrpcLogger(method string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "grpc").
			Str("method", method).
			Logger(),
	}
}

// DbLogger returns a logger for database operations
func (l *Logger) DbLogger(operation string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "database").
			Str("operation", operation).
			Logger(),
	}
}

// LogGrpcRequest logs a completed call on a GrpcLogger. Client-side codes
// such as NotFound log at warn, server faults at error.
func (l *Logger) LogGrpcRequest(code string, duration time.Duration, err error) {
	var event *zerolog.Event
	switch code {
	case "OK":
		event = l.zlog.Debug()
	case "Internal", "Unavailable", "Unknown", "DataLoss":
		event = l.zlog.Error().Err(err)
	default:
		event = l.zlog.Warn().Err(err)
	}
	event.
		Str("code", code).
		Dur("duration_ms", duration).
		Msg("rpc done")
}

// LogDbOperation logs a storage operation
func (l *Logger) LogDbOperation(operation string, duration time.Duration, rows int, err error) {
	event := l.zlog.Debug().Int("row_count", rows)
	if err != nil {
		event = l.zlog.Error().Err(err)
	}
	event.
		Str("component", "database").
		Str("operation", operation).
		Dur("duration_ms", duration).
		Msg("Database operation completed")
}

// LogGeneration logs one generator round trip and its drift outcome
func (l *Logger) LogGeneration(versionID string, items, corrections int, duration time.Duration, err error) {
	if err != nil {
		l.zlog.Error().
			Err(err).
			Str("event", "generation_failed").
			Dur("duration_ms", duration).
			Msg("Generation failed, history unchanged")
		return
	}
	l.zlog.Info().
		Str("event", "generation").
		Str("version_id", versionID).
		Int("items", items).
		Int("drift_corrections", corrections).
		Dur("duration_ms", duration).
		Msg("Version created")
}

// LogExportItem logs one step of the export queue
func (l *Logger) LogExportItem(itemID, artifact string, duration time.Duration, reason string) {
	if reason != "" {
		l.zlog.Warn().
			Str("item_id", itemID).
			Str("reason", reason).
			Msg("Export item failed")
		return
	}
	l.zlog.Debug().
		Str("item_id", itemID).
		Str("artifact", artifact).
		Dur("duration_ms", duration).
		Msg("Export item written")
}

// LogServerStart logs server startup
func (l *Logger) LogServerStart(port int, dbPath string) {
	l.zlog.Info().
		Str("event", "server_start").
		Int("port", port).
		Str("database", dbPath).
		Msg("copyforge server starting")
}

// LogServerReady logs when server is ready
func (l *Logger) LogServerReady(port int) {
	l.zlog.Info().
		Str("event", "server_ready").
		Int("port", port).
		Msg("copyforge server ready to accept connections")
}

// LogServerShutdown logs server shutdown
func (l *Logger) LogServerShutdown() {
	l.zlog.Info().
		Str("event", "server_shutdown").
		Msg("copyforge server shutting down")
}

var globalLogger *Logger

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(cfg Config) {
	globalLogger = NewLogger(cfg)
	log.Logger = *globalLogger.GetZerolog()
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		InitGlobalLogger(Config{
			Level:  "info",
			Pretty: true,
		})
	}
	return globalLogger
}
