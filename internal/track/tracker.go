// Package track keeps a current-location indicator on the map. It subscribes
// to the host's geolocation capability and moves a dual-ring marker plus an
// accuracy circle in place as fixes arrive. Position errors never surface to
// the user; the indicator just stops moving.
package track

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cyclemap/stationmap/internal/content"
	"github.com/cyclemap/stationmap/pkg/geoloc"
	"github.com/cyclemap/stationmap/pkg/mapwidget"
)

// Config holds the subscription knobs. Values come from the tracker.* keys of
// the runtime configuration.
type Config struct {
	HighAccuracy bool
	MaxAge       time.Duration
	Timeout      time.Duration
	// IndicatorSizePx is the diameter of the dual-ring marker.
	IndicatorSizePx int
}

// DefaultConfig matches the subscription parameters the widget uses when the
// host supplies none.
func DefaultConfig() Config {
	return Config{
		HighAccuracy:    true,
		MaxAge:          5 * time.Second,
		Timeout:         10 * time.Second,
		IndicatorSizePx: 18,
	}
}

// Dependencies are the external collaborators of the Tracker.
type Dependencies struct {
	Provider geoloc.Provider
	Widget   mapwidget.Widget
	Logger   *slog.Logger
}

// Tracker owns the current-location marker and its accuracy circle. Start and
// Stop may be called repeatedly in pairs.
type Tracker struct {
	deps Dependencies
	cfg  Config

	mu      sync.Mutex
	running bool
	sub     geoloc.Subscription
	marker  mapwidget.MarkerHandle
	circle  mapwidget.CircleHandle
	fixes   uint64
}

// New creates a Tracker. Zero-valued config fields fall back to defaults.
func New(deps Dependencies, cfg Config) (*Tracker, error) {
	if deps.Provider == nil {
		return nil, fmt.Errorf("location provider is required")
	}
	if deps.Widget == nil {
		return nil, fmt.Errorf("widget is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	def := DefaultConfig()
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.IndicatorSizePx <= 0 {
		cfg.IndicatorSizePx = def.IndicatorSizePx
	}

	return &Tracker{deps: deps, cfg: cfg}, nil
}

// Start subscribes to the position stream. Starting a running tracker is a
// no-op.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}

	sub, err := t.deps.Provider.Subscribe(t.onFix, t.onError, geoloc.Options{
		HighAccuracy: t.cfg.HighAccuracy,
		MaxAge:       t.cfg.MaxAge,
		Timeout:      t.cfg.Timeout,
	})
	if err != nil {
		return fmt.Errorf("subscribing to position stream: %w", err)
	}

	t.sub = sub
	t.running = true
	t.deps.Logger.Info("position tracking started",
		"highAccuracy", t.cfg.HighAccuracy,
		"maxAge", t.cfg.MaxAge,
		"timeout", t.cfg.Timeout,
	)
	return nil
}

// Stop cancels the subscription and removes the indicator. Fixes already in
// flight when Stop is called are discarded.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false

	if t.sub != nil {
		t.sub.Unsubscribe()
		t.sub = nil
	}
	if t.marker != nil {
		t.marker.Detach()
		t.marker = nil
	}
	if t.circle != nil {
		t.circle.Remove()
		t.circle = nil
	}

	t.deps.Logger.Info("position tracking stopped", "fixes", t.fixes)
	t.fixes = 0
}

// Running reports whether the tracker currently holds a subscription.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Fixes returns the number of fixes applied since the last Start.
func (t *Tracker) Fixes() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fixes
}

func (t *Tracker) onFix(fix geoloc.Fix) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		// a fix raced with Stop; the indicator is already gone
		return
	}

	if t.marker == nil {
		marker, err := t.deps.Widget.CreateMarker(fix.Position, content.CurrentLocation(t.cfg.IndicatorSizePx))
		if err != nil {
			t.deps.Logger.Error("creating location marker failed", "error", err)
			return
		}
		t.marker = marker
	} else {
		t.marker.SetPosition(fix.Position)
	}

	if fix.AccuracyMeters > 0 {
		if t.circle == nil {
			circle, err := t.deps.Widget.CreateCircle(fix.Position, fix.AccuracyMeters, accuracyStyle())
			if err != nil {
				t.deps.Logger.Error("creating accuracy circle failed", "error", err)
			} else {
				t.circle = circle
			}
		} else {
			t.circle.SetCenter(fix.Position)
			t.circle.SetRadius(fix.AccuracyMeters)
		}
	}

	t.fixes++
	t.deps.Logger.Debug("position fix applied",
		"lat", fix.Position.Lat,
		"lng", fix.Position.Lng,
		"accuracy", fix.AccuracyMeters,
	)
}

func (t *Tracker) onError(err error) {
	t.deps.Logger.Warn("position stream error", "error", err)
}

func accuracyStyle() mapwidget.CircleStyle {
	return mapwidget.CircleStyle{
		Fill:    "#3b82f6",
		Border:  "#3b82f6",
		Opacity: 0.15,
	}
}
