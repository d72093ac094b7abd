package render

import (
	"io"
	"log/slog"
	"testing"

	"github.com/cyclemap/stationmap/internal/events"
	"github.com/cyclemap/stationmap/pkg/core"
	"github.com/cyclemap/stationmap/pkg/mapwidget"
)

type busLogger struct{}

func (busLogger) Debug(msg string, keysAndValues ...any) {}
func (busLogger) Info(msg string, keysAndValues ...any)  {}
func (busLogger) Error(msg string, keysAndValues ...any) {}

func newTestEngine(t *testing.T, w mapwidget.Widget, opts ...Option) (*Engine, *events.Bus) {
	t.Helper()
	bus, err := events.New(busLogger{})
	if err != nil {
		t.Fatalf("creating bus: %v", err)
	}
	e, err := NewEngine(Dependencies{
		Widget: w,
		Bus:    bus,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, opts...)
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	return e, bus
}

func findMarker(t *testing.T, w *mapwidget.Headless, label string) *mapwidget.HeadlessMarker {
	t.Helper()
	for _, m := range w.Markers() {
		if m.Icon().Label == label {
			return m
		}
	}
	t.Fatalf("no marker with label %q", label)
	return nil
}

func TestEngine_IndividualModeOneMarkerPerStation(t *testing.T) {
	w := mapwidget.NewHeadless(14)
	e, _ := newTestEngine(t, w)
	e.Bind()

	e.SetStations([]core.Station{
		station("a", 37.50, 127.00, 3),
		station("b", 37.50, 127.00, 0),
		station("c", 37.60, 127.10, 1),
	})

	if w.MarkerCount() != 3 {
		t.Errorf("expected 3 markers at zoom 14, got %d", w.MarkerCount())
	}
}

func TestEngine_ZoomChangeRebuildsEverything(t *testing.T) {
	w := mapwidget.NewHeadless(14)
	e, _ := newTestEngine(t, w)
	e.Bind()

	e.SetStations([]core.Station{
		station("a", 37.5000, 127.0000, 3),
		station("b", 37.5001, 127.0001, 2),
	})
	before := w.Markers()

	w.SetZoom(10)

	for _, m := range before {
		if !m.Detached() {
			t.Error("every pre-zoom handle must be detached")
		}
	}
	if w.MarkerCount() != 1 {
		t.Errorf("expected 1 cluster marker at zoom 10, got %d", w.MarkerCount())
	}
	if got := e.Stats().Zoom; got != 10 {
		t.Errorf("engine did not adopt the widget zoom, got %v", got)
	}
}

func TestEngine_SameStationsNewHandlesAfterRefresh(t *testing.T) {
	w := mapwidget.NewHeadless(15)
	e, _ := newTestEngine(t, w)
	e.Bind()

	stations := []core.Station{station("a", 37.5, 127.0, 3)}
	e.SetStations(stations)
	old := w.Markers()[0]

	e.SetStations(stations)

	if !old.Detached() {
		t.Error("default reconciliation must not reuse handles")
	}
	if w.Created() != 2 {
		t.Errorf("expected 2 creations total, got %d", w.Created())
	}
}

func TestEngine_SuppressedClusterRendersNothing(t *testing.T) {
	w := mapwidget.NewHeadless(10)
	e, _ := newTestEngine(t, w)
	e.Bind()

	e.SetStations([]core.Station{
		station("a", 37.5000, 127.0000, 0),
		station("b", 37.5001, 127.0001, 0),
	})

	if w.MarkerCount() != 0 {
		t.Errorf("fully occupied cluster must be suppressed, got %d markers", w.MarkerCount())
	}
}

func TestEngine_StationClick(t *testing.T) {
	w := mapwidget.NewHeadless(15)

	var cbStation core.Station
	e, bus := newTestEngine(t, w, WithStationClick(func(s core.Station) { cbStation = s }))
	e.Bind()

	var evStation core.Station
	bus.Subscribe(events.StationClicked, func(ev events.Event) error {
		evStation = ev.Payload.(core.Station)
		return nil
	})

	e.SetStations([]core.Station{station("a", 37.5, 127.0, 3)})
	w.Markers()[0].Click()

	if cbStation.ID != "a" {
		t.Errorf("callback got station %q", cbStation.ID)
	}
	if evStation.ID != "a" {
		t.Errorf("bus event got station %q", evStation.ID)
	}
}

func TestEngine_SingletonClusterClickActsAsStationClick(t *testing.T) {
	w := mapwidget.NewHeadless(10)

	var clicked core.Station
	e, _ := newTestEngine(t, w, WithStationClick(func(s core.Station) { clicked = s }))
	e.Bind()

	e.SetStations([]core.Station{station("solo", 37.5, 127.0, 2)})
	w.Markers()[0].Click()

	if clicked.ID != "solo" {
		t.Errorf("expected solo station payload, got %q", clicked.ID)
	}
}

func TestEngine_ClusterClickDeliversMembers(t *testing.T) {
	w := mapwidget.NewHeadless(10)

	var members []core.Station
	e, bus := newTestEngine(t, w, WithClusterClick(func(s []core.Station) { members = s }))
	e.Bind()

	var evMembers []core.Station
	bus.Subscribe(events.ClusterClicked, func(ev events.Event) error {
		evMembers = ev.Payload.([]core.Station)
		return nil
	})

	e.SetStations([]core.Station{
		station("a", 37.5000, 127.0000, 3),
		station("b", 37.5001, 127.0001, 2),
	})
	w.Markers()[0].Click()

	if len(members) != 2 {
		t.Errorf("callback expected 2 members, got %d", len(members))
	}
	if len(evMembers) != 2 {
		t.Errorf("bus event expected 2 members, got %d", len(evMembers))
	}
}

func TestEngine_HoverUpdatesIconInPlace(t *testing.T) {
	w := mapwidget.NewHeadless(15)
	e, _ := newTestEngine(t, w)
	e.Bind()

	e.SetStations([]core.Station{station("a", 37.5, 127.0, 3)})
	m := w.Markers()[0]
	created := w.Created()

	m.PointerEnter()
	if m.Icon().Scale != 1.2 {
		t.Errorf("expected hover scale 1.2, got %v", m.Icon().Scale)
	}

	m.PointerLeave()
	if m.Icon().Scale != 1.0 {
		t.Errorf("expected scale back to 1.0, got %v", m.Icon().Scale)
	}

	if w.Created() != created {
		t.Error("hover transitions must not create markers")
	}
	if m.Detached() {
		t.Error("hover transitions must not detach the marker")
	}
}

func TestEngine_HoverSurvivesRebuild(t *testing.T) {
	w := mapwidget.NewHeadless(15)
	e, _ := newTestEngine(t, w)
	e.Bind()

	stations := []core.Station{station("a", 37.5, 127.0, 3)}
	e.SetStations(stations)
	w.Markers()[0].PointerEnter()

	// a data refresh rebuilds the marker while the pointer is still on it
	e.SetStations(stations)

	if got := w.Markers()[0].Icon().Scale; got != 1.2 {
		t.Errorf("rebuilt marker must keep hover emphasis, got scale %v", got)
	}
}

func TestEngine_ClusterMarkersHaveNoHoverHandlers(t *testing.T) {
	w := mapwidget.NewHeadless(10)
	e, _ := newTestEngine(t, w)
	e.Bind()

	e.SetStations([]core.Station{
		station("a", 37.5000, 127.0000, 3),
		station("b", 37.5001, 127.0001, 2),
	})

	m := w.Markers()[0]
	before := m.Icon()
	m.PointerEnter()
	if m.Icon() != before {
		t.Error("cluster markers must ignore pointer enter")
	}
}

func TestEngine_StableIndividualMarkersReuseHandles(t *testing.T) {
	w := mapwidget.NewHeadless(15)
	e, _ := newTestEngine(t, w, WithStableIndividualMarkers())
	e.Bind()

	e.SetStations([]core.Station{
		station("a", 37.5, 127.0, 3),
		station("b", 37.6, 127.1, 2),
	})
	aBefore := findMarker(t, w, "3")

	// a's availability changes, b disappears, c appears
	e.SetStations([]core.Station{
		station("a", 37.5, 127.0, 4),
		station("c", 37.7, 127.2, 1),
	})

	if aBefore.Detached() {
		t.Error("surviving station must keep its handle")
	}
	if aBefore.Icon().Label != "4" {
		t.Errorf("surviving handle must get updated content, got label %q", aBefore.Icon().Label)
	}
	if w.MarkerCount() != 2 {
		t.Errorf("expected 2 markers, got %d", w.MarkerCount())
	}
}

func TestEngine_StableIndividualStillRebuildsAcrossModes(t *testing.T) {
	w := mapwidget.NewHeadless(15)
	e, _ := newTestEngine(t, w, WithStableIndividualMarkers())
	e.Bind()

	e.SetStations([]core.Station{station("a", 37.5, 127.0, 3)})
	old := w.Markers()[0]

	w.SetZoom(10) // leaves individual mode
	w.SetZoom(15) // and comes back

	if !old.Detached() {
		t.Error("mode transitions must rebuild even with stable markers enabled")
	}
}

func TestEngine_BindEmitsMapReady(t *testing.T) {
	w := mapwidget.NewHeadless(13)
	bus, err := events.New(busLogger{})
	if err != nil {
		t.Fatalf("creating bus: %v", err)
	}

	var ready bool
	bus.Subscribe(events.MapReady, func(ev events.Event) error {
		ready = ev.Payload == mapwidget.Widget(w)
		return nil
	})

	e, err := NewEngine(Dependencies{Widget: w, Bus: bus, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	e.Bind()

	if !ready {
		t.Error("Bind must announce readiness with the widget payload")
	}
}

func TestEngine_StatsTrackPasses(t *testing.T) {
	w := mapwidget.NewHeadless(10)
	e, _ := newTestEngine(t, w)
	e.Bind()

	e.SetStations([]core.Station{
		station("a", 37.5000, 127.0000, 3),
		station("b", 38.5000, 128.0000, 2),
	})
	e.Refresh()

	s := e.Stats()
	if s.Passes != 2 {
		t.Errorf("expected 2 passes, got %d", s.Passes)
	}
	if s.StationCount != 2 {
		t.Errorf("expected 2 stations, got %d", s.StationCount)
	}
	if s.ClusterCount != 2 {
		t.Errorf("expected 2 clusters, got %d", s.ClusterCount)
	}
	if s.MarkerCount != 2 {
		t.Errorf("expected 2 markers, got %d", s.MarkerCount)
	}
}

func TestEngine_RequiresWidget(t *testing.T) {
	if _, err := NewEngine(Dependencies{}); err == nil {
		t.Error("expected an error without a widget")
	}
}
