package monitor

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cyclemap/stationmap/internal/render"
	"github.com/cyclemap/stationmap/internal/telemetry"
	"github.com/cyclemap/stationmap/pkg/core"
	"github.com/cyclemap/stationmap/pkg/mapwidget"
)

func testEngine(t *testing.T) *render.Engine {
	t.Helper()
	w := mapwidget.NewHeadless(14)
	e, err := render.NewEngine(render.Dependencies{
		Widget: w,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	e.Bind()
	e.SetStations([]core.Station{
		{ID: "a", Coordinates: core.LatLng{Lat: 37.5, Lng: 127.0}, Status: core.StatusAvailable, AvailableSlots: 3},
	})
	return e
}

func TestSnapshot(t *testing.T) {
	s := NewService(Dependencies{Engine: testEngine(t), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	status := s.Snapshot()
	if status.Passes != 1 {
		t.Errorf("expected 1 pass, got %d", status.Passes)
	}
	if status.Stations != 1 || status.Markers != 1 {
		t.Errorf("unexpected counts: %+v", status)
	}
	if status.Zoom != 14 {
		t.Errorf("expected zoom 14, got %v", status.Zoom)
	}
}

func TestService_WritesStatusFile(t *testing.T) {
	dir := t.TempDir()
	s := NewService(Dependencies{
		Engine:    testEngine(t),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		StatusDir: dir,
		Interval:  10 * time.Millisecond,
	})

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop()

	path := filepath.Join(dir, "status.json")
	deadline := time.After(2 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("status file never appeared")
		case <-time.After(10 * time.Millisecond):
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading status file: %v", err)
	}
	var status Status
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("parsing status file: %v", err)
	}
	if status.Markers != 1 {
		t.Errorf("unexpected status content: %+v", status)
	}
}

func TestService_StartStopIdempotent(t *testing.T) {
	s := NewService(Dependencies{Engine: testEngine(t), Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Interval: 10 * time.Millisecond})

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("double start failed: %v", err)
	}

	s.Stop()
	deadline := time.After(2 * time.Second)
	for s.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("service did not stop")
		case <-time.After(5 * time.Millisecond):
		}
	}
	s.Stop() // second stop is a no-op
}

func TestService_ShipsTelemetryOnNewPasses(t *testing.T) {
	var buf bytes.Buffer
	manager := &telemetry.Manager{
		IsValid:      false,
		BackupWriter: gzip.NewWriter(&buf),
		Logger:       zerolog.Nop(),
	}
	batcher := telemetry.NewBatcher(manager, telemetry.RenderPassBucket)

	s := NewService(Dependencies{
		Engine:   testEngine(t),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Batcher:  batcher,
		Interval: 10 * time.Millisecond,
	})
	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	s.Stop()
	deadline := time.After(2 * time.Second)
	for s.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("service did not stop")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := manager.BackupWriter.Close(); err != nil {
		t.Fatalf("closing backup writer: %v", err)
	}
	r, err := gzip.NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("opening backup: %v", err)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}

	// one pass happened, so exactly one point despite many ticks
	if got := strings.Count(string(content), "render_pass"); got != 1 {
		t.Errorf("expected 1 telemetry point, got %d: %s", got, content)
	}
}
