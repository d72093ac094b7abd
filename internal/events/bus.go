// Package events is the process-wide notification bus. The render pipeline
// publishes interaction and lifecycle events here; host-application listeners
// subscribe by event name. Handlers run synchronously unless registered with
// the Buffered option.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cyclemap/stationmap/internal/channel"
)

// Event names published by the pipeline.
const (
	StationClicked = ":STATION:CLICK:"
	ClusterClicked = ":CLUSTER:CLICK:"
	MapReady       = ":MAP:READY:"
)

// Event is one notification. Payload carries the event-specific value: a
// core.Station for StationClicked, a []core.Station for ClusterClicked, the
// widget handle for MapReady.
type Event struct {
	Name      string
	Payload   any
	Timestamp time.Time
}

// Handler consumes an event.
type Handler func(Event) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead of
// dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging around the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Bus routes events to registered handlers. Emitting an event nobody
// subscribed to is not an error: interaction notifications are optional for
// the host application.
// busQueue is one buffered subscription's queue, tagged with the plain event
// name so metrics never carry the internal registry key.
type busQueue struct {
	name string
	buf  *channel.Buffered[Event]
}

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	buffers  map[string]*busQueue
	logger   Logger

	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
}

// New creates a Bus with the given logger. Metrics come from the global OTel
// meter and are no-ops when no provider is configured.
func New(logger Logger) (*Bus, error) {
	b := &Bus{
		handlers: make(map[string][]Handler),
		buffers:  make(map[string]*busQueue),
		logger:   logger,
	}

	m := meter()

	var err error

	b.queueSize, err = m.Int64ObservableGauge(
		"events.queue.size",
		metric.WithDescription("Current number of queued events per name"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			b.mu.RLock()
			defer b.mu.RUnlock()
			for _, q := range b.buffers {
				o.ObserveInt64(b.queueSize, int64(q.buf.Len()),
					metric.WithAttributes(attribute.String("event", q.name)))
			}
			return nil
		},
		b.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	b.processed, err = m.Int64Counter(
		"events.processed",
		metric.WithDescription("Total events handled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	b.dropped, err = m.Int64Counter(
		"events.dropped",
		metric.WithDescription("Total events dropped due to a full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return b, nil
}

// Subscribe adds a handler for the named event with optional configuration.
// Multiple handlers per name are allowed; each gets every event.
func (b *Bus) Subscribe(name string, h Handler, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.bufferSize > 0 {
		handler = b.withBuffer(name, cfg.bufferSize, cfg.blocking, handler)
	}

	if cfg.logged {
		handler = b.withLogging(name, handler)
	}

	b.mu.Lock()
	b.handlers[name] = append(b.handlers[name], handler)
	b.mu.Unlock()
}

// Emit delivers an event to every subscribed handler. The first handler
// error is returned after all handlers have run.
func (b *Bus) Emit(e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := b.handlers[e.Name]
	b.mu.RUnlock()

	var firstErr error
	for _, h := range handlers {
		if err := h(e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HasSubscribers reports whether any handler is registered for the name.
func (b *Bus) HasSubscribers(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name]) > 0
}

func (b *Bus) withBuffer(name string, size int, blocking bool, h Handler) Handler {
	buffer := channel.NewBuffered[Event](size)

	b.mu.Lock()
	// one drain goroutine per subscription; a second buffered subscription
	// on the same name gets its own queue, so the registry is keyed by
	// name+handler index
	key := fmt.Sprintf("%s#%d", name, len(b.handlers[name]))
	b.buffers[key] = &busQueue{name: name, buf: buffer}
	b.mu.Unlock()

	nameAttr := attribute.String("event", name)

	go func() {
		for e := range buffer.Receive() {
			if err := h(e); err != nil && b.logger != nil {
				b.logger.Error("buffered handler failed", "event", name, "error", err)
			}
			b.processed.Add(context.Background(), 1, metric.WithAttributes(nameAttr))
		}
	}()

	if blocking {
		return func(e Event) error {
			buffer.Send(e)
			return nil
		}
	}

	return func(e Event) error {
		if buffer.TrySend(e) {
			return nil
		}
		b.dropped.Add(context.Background(), 1, metric.WithAttributes(nameAttr))
		return fmt.Errorf("queue full: %s", name)
	}
}

func (b *Bus) withLogging(name string, h Handler) Handler {
	return func(e Event) error {
		start := time.Now()
		if b.logger != nil {
			b.logger.Debug("handling event", "event", name)
		}

		err := h(e)

		if b.logger != nil {
			if err != nil {
				b.logger.Error("event failed", "event", name, "duration", time.Since(start), "error", err)
			} else {
				b.logger.Debug("event complete", "event", name, "duration", time.Since(start))
			}
		}

		return err
	}
}
