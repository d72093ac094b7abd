package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Options configure the log fan-out.
type Options struct {
	// Console is the console sink. Nil means os.Stdout.
	Console io.Writer
	// File is the session log file. Nil disables file output.
	File io.Writer
	// Level is the minimum level as a string (debug, info, warn, error).
	Level string
	// Provider enables OTel log export when non-nil.
	Provider *sdklog.LoggerProvider
	// GelfAddress enables a Graylog GELF sink when non-empty.
	GelfAddress string
	// Context supplies dynamic attributes stamped onto every record.
	Context ContextProvider
}

// Manager owns the application logger and its sinks.
type Manager struct {
	logger      *slog.Logger
	logProvider *sdklog.LoggerProvider
}

// NewManager creates an uninitialized logging manager.
func NewManager() *Manager {
	return &Manager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds the handler fan-out and installs the logger. Calling it again
// replaces the previous configuration.
func (m *Manager) Setup(opts Options) {
	m.logProvider = opts.Provider

	handlerOpts := &slog.HandlerOptions{
		Level: parseLevel(opts.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	var handlers []slog.Handler
	handlers = append(handlers, slog.NewTextHandler(console, handlerOpts))

	if opts.File != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.File, handlerOpts))
	}

	var gelfErr error
	if opts.GelfAddress != "" {
		w, err := gelf.NewWriter(opts.GelfAddress)
		if err != nil {
			gelfErr = err
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, handlerOpts))
		}
	}

	if opts.Provider != nil {
		handlers = append(handlers, otelslog.NewHandler("stationmap", otelslog.WithLoggerProvider(opts.Provider)))
	}

	var handler slog.Handler = NewMultiHandler(handlers...)
	if opts.Context != nil {
		handler = NewContextHandler(handler, opts.Context)
	}

	m.logger = slog.New(handler)
	m.logger.Info("Logging initialized", "level", opts.Level)
	if gelfErr != nil {
		m.logger.Warn("GELF sink unavailable", "address", opts.GelfAddress, "error", gelfErr)
	}
}

// Logger returns the configured slog.Logger, or slog.Default before Setup.
func (m *Manager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if a provider is configured.
func (m *Manager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
