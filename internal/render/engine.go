// Package render owns the marker lifecycle. It turns a station snapshot plus
// the current zoom into a render plan and reconciles the map widget against
// that plan. Passes are serialized: a zoom change arriving while a pass runs
// waits for it, it never interleaves.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/cyclemap/stationmap/internal/cache"
	"github.com/cyclemap/stationmap/internal/content"
	"github.com/cyclemap/stationmap/internal/events"
	"github.com/cyclemap/stationmap/pkg/core"
	"github.com/cyclemap/stationmap/pkg/mapwidget"
)

// Dependencies are the external collaborators of the Engine.
type Dependencies struct {
	Widget mapwidget.Widget
	Bus    *events.Bus
	Logger *slog.Logger
}

// Stats is a snapshot of pipeline counters for the monitor service.
type Stats struct {
	Passes        uint64
	LastDuration  time.Duration
	StationCount  int
	ClusterCount  int
	MarkerCount   int
	Zoom          float64
	LastErrorText string
}

// Option configures the Engine.
type Option func(*Engine)

// WithStableIndividualMarkers switches individual mode to diff-based
// reconciliation: consecutive individual-mode passes update existing handles
// in place instead of tearing everything down. Mode transitions still rebuild
// fully.
func WithStableIndividualMarkers() Option {
	return func(e *Engine) {
		e.stableIndividual = true
	}
}

// WithStationClick registers the host callback for single-station clicks.
func WithStationClick(fn func(core.Station)) Option {
	return func(e *Engine) {
		e.onStationClick = fn
	}
}

// WithClusterClick registers the host callback for multi-member cluster
// clicks.
func WithClusterClick(fn func([]core.Station)) Option {
	return func(e *Engine) {
		e.onClusterClick = fn
	}
}

// Engine drives the render pipeline. All mutation of the widget happens under
// mu, one pass at a time.
type Engine struct {
	deps Dependencies

	mu             sync.Mutex
	stations       []core.Station
	zoom           float64
	hover          *cache.HoverState
	markers        *cache.MarkerSet
	lastIndividual bool

	stableIndividual bool
	onStationClick   func(core.Station)
	onClusterClick   func([]core.Station)

	statsMu sync.RWMutex
	stats   Stats

	passCounter    metric.Int64Counter
	passDuration   metric.Float64Histogram
	markersCreated metric.Int64Counter
	markersRemoved metric.Int64Counter
}

// NewEngine creates the Engine and its instruments. The widget is not touched
// until Bind.
func NewEngine(deps Dependencies, opts ...Option) (*Engine, error) {
	if deps.Widget == nil {
		return nil, fmt.Errorf("widget is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	e := &Engine{
		deps:    deps,
		hover:   cache.NewHoverState(),
		markers: cache.NewMarkerSet(),
	}
	for _, opt := range opts {
		opt(e)
	}

	m := meter()

	var err error
	e.passCounter, err = m.Int64Counter(
		"render.passes",
		metric.WithDescription("Total reconciliation passes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pass counter: %w", err)
	}
	e.passDuration, err = m.Float64Histogram(
		"render.pass.duration",
		metric.WithDescription("Reconciliation pass duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pass histogram: %w", err)
	}
	e.markersCreated, err = m.Int64Counter(
		"render.markers.created",
		metric.WithDescription("Total markers created on the widget"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating marker counter: %w", err)
	}
	e.markersRemoved, err = m.Int64Counter(
		"render.markers.removed",
		metric.WithDescription("Total markers detached from the widget"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating removal counter: %w", err)
	}

	return e, nil
}

// Bind attaches the engine to its widget: it adopts the widget's current
// zoom, registers the zoom listener and announces readiness on the bus.
func (e *Engine) Bind() {
	e.mu.Lock()
	e.zoom = e.deps.Widget.Zoom()
	e.mu.Unlock()

	e.deps.Widget.OnZoomChange(e.SetZoom)

	if e.deps.Bus != nil {
		if err := e.deps.Bus.Emit(events.Event{Name: events.MapReady, Payload: e.deps.Widget}); err != nil {
			e.deps.Logger.Warn("map ready notification failed", "error", err)
		}
	}
}

// SetStations replaces the station snapshot and runs a pass.
func (e *Engine) SetStations(stations []core.Station) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stations = append([]core.Station(nil), stations...)
	e.refreshLocked()
}

// SetZoom records the new zoom level and runs a pass. It is the widget's zoom
// listener.
func (e *Engine) SetZoom(zoom float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.zoom = zoom
	e.refreshLocked()
}

// Refresh reruns the pipeline with the current inputs, for callers that
// mutated station state out of band.
func (e *Engine) Refresh() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()
}

// Stats returns a snapshot of the pipeline counters.
func (e *Engine) Stats() Stats {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	return e.stats
}

// LogAttrs exposes pipeline state for the contextual log handler.
func (e *Engine) LogAttrs() []slog.Attr {
	s := e.Stats()
	return []slog.Attr{
		slog.Float64("zoom", s.Zoom),
		slog.Int("markers", s.MarkerCount),
	}
}

func (e *Engine) refreshLocked() {
	start := time.Now()
	plan := BuildPlan(e.stations, e.zoom, e.hover)

	var created, removed int
	if e.stableIndividual && plan.Individual && e.lastIndividual {
		created, removed = e.reconcileDiff(plan)
	} else {
		created, removed = e.reconcileRebuild(plan)
	}
	e.lastIndividual = plan.Individual

	elapsed := time.Since(start)
	ctx := context.Background()
	e.passCounter.Add(ctx, 1)
	e.passDuration.Record(ctx, elapsed.Seconds())
	e.markersCreated.Add(ctx, int64(created))
	e.markersRemoved.Add(ctx, int64(removed))

	e.statsMu.Lock()
	e.stats.Passes++
	e.stats.LastDuration = elapsed
	e.stats.StationCount = len(e.stations)
	e.stats.ClusterCount = plan.ClusterCount
	e.stats.MarkerCount = e.markers.Len()
	e.stats.Zoom = e.zoom
	e.statsMu.Unlock()

	e.deps.Logger.Debug("render pass complete",
		"zoom", e.zoom,
		"stations", len(e.stations),
		"markers", e.markers.Len(),
		"individual", plan.Individual,
		"duration", elapsed,
	)
}

// reconcileRebuild tears down every existing marker and recreates the plan
// from scratch. This is the default strategy: markers are cheap and full
// rebuilds sidestep identity tracking across zoom levels.
func (e *Engine) reconcileRebuild(plan Plan) (created, removed int) {
	for _, m := range e.markers.Drain() {
		m.Handle.Detach()
		removed++
	}

	for _, pm := range plan.Markers {
		if e.createMarker(pm) {
			created++
		}
	}
	return created, removed
}

// reconcileDiff keeps handles for stations that survive between two
// individual-mode passes and only touches what changed.
func (e *Engine) reconcileDiff(plan Plan) (created, removed int) {
	wanted := make(map[string]struct{}, len(plan.Markers))

	for _, pm := range plan.Markers {
		wanted[pm.Key] = struct{}{}

		existing, ok := e.markers.Get(pm.Key)
		if !ok {
			if e.createMarker(pm) {
				created++
			}
			continue
		}
		if existing.Position != pm.Position {
			existing.Handle.SetPosition(pm.Position)
			existing.Position = pm.Position
		}
		if !existing.Visual.Equal(pm.Visual) {
			existing.Handle.SetIcon(pm.Visual)
			existing.Visual = pm.Visual
		}
		existing.Station = pm.Station
	}

	for _, m := range e.markers.All() {
		if _, ok := wanted[m.Key]; ok {
			continue
		}
		m.Handle.Detach()
		e.markers.Delete(m.Key)
		removed++
	}
	return created, removed
}

func (e *Engine) createMarker(pm PlannedMarker) bool {
	handle, err := e.deps.Widget.CreateMarker(pm.Position, pm.Visual)
	if err != nil {
		e.deps.Logger.Error("creating marker failed", "key", pm.Key, "error", err)
		e.statsMu.Lock()
		e.stats.LastErrorText = err.Error()
		e.statsMu.Unlock()
		return false
	}

	rec := &cache.RenderedMarker{
		Key:      pm.Key,
		Position: pm.Position,
		Visual:   pm.Visual,
		Handle:   handle,
		Station:  pm.Station,
	}

	handlers := mapwidget.InteractionHandlers{
		OnClick: e.clickHandler(pm),
	}
	// hover emphasis only exists for single-station markers
	if pm.Visual.Kind == core.KindIndividual && pm.Station != nil {
		handlers.OnPointerEnter = e.enterHandler(rec)
		handlers.OnPointerLeave = e.leaveHandler(rec)
	}
	handle.Bind(handlers)

	e.markers.Set(rec)
	return true
}

func (e *Engine) clickHandler(pm PlannedMarker) func() {
	return func() {
		switch {
		case pm.Station != nil:
			if e.onStationClick != nil {
				e.onStationClick(*pm.Station)
			}
			e.emit(events.StationClicked, *pm.Station)
		case len(pm.Members) > 0:
			if e.onClusterClick != nil {
				e.onClusterClick(pm.Members)
			}
			e.emit(events.ClusterClicked, pm.Members)
		}
	}
}

func (e *Engine) enterHandler(rec *cache.RenderedMarker) func() {
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.hover.Enter(rec.Station.ID)
		e.applyHoverLocked(rec, true)
	}
}

func (e *Engine) leaveHandler(rec *cache.RenderedMarker) func() {
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.hover.Leave(rec.Station.ID)
		e.applyHoverLocked(rec, false)
	}
}

// applyHoverLocked swaps the marker content in place; the handle itself is
// never recreated for a hover transition.
func (e *Engine) applyHoverLocked(rec *cache.RenderedMarker, hovered bool) {
	current, ok := e.markers.Get(rec.Key)
	if !ok || current != rec {
		// the marker was rebuilt while the pointer event was in flight
		return
	}
	desc := hoverDescriptor(rec, hovered)
	if rec.Visual.Equal(desc) {
		return
	}
	rec.Handle.SetIcon(desc)
	rec.Visual = desc
}

func hoverDescriptor(rec *cache.RenderedMarker, hovered bool) core.VisualDescriptor {
	return content.Individual(*rec.Station, hovered)
}

func (e *Engine) emit(name string, payload any) {
	if e.deps.Bus == nil {
		return
	}
	if err := e.deps.Bus.Emit(events.Event{Name: name, Payload: payload}); err != nil {
		e.deps.Logger.Warn("event delivery failed", "event", name, "error", err)
	}
}
