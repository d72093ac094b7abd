package telemetry

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/cyclemap/stationmap/internal/render"
)

func TestRenderPassPoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := RenderPassPoint(render.Stats{
		Passes:       7,
		LastDuration: 1500 * time.Microsecond,
		StationCount: 40,
		ClusterCount: 9,
		MarkerCount:  8,
		Zoom:         12.5,
	}, at)

	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	if !strings.HasPrefix(line, "render_pass ") {
		t.Errorf("unexpected measurement: %s", line)
	}
	for _, want := range []string{"passes=7i", "duration_ms=1.5", "stations=40i", "clusters=9i", "markers=8i", "zoom=12.5"} {
		if !strings.Contains(line, want) {
			t.Errorf("line protocol missing %q: %s", want, line)
		}
	}
}

func backupManager(buf *bytes.Buffer) *Manager {
	return &Manager{
		Writers:      nil,
		IsValid:      false,
		BackupWriter: gzip.NewWriter(buf),
		Logger:       zerolog.Nop(),
	}
}

func gunzip(t *testing.T, buf *bytes.Buffer) string {
	t.Helper()
	r, err := gzip.NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("opening gzip stream: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading gzip stream: %v", err)
	}
	return string(data)
}

func TestWritePoint_BackupWriter(t *testing.T) {
	var buf bytes.Buffer
	m := backupManager(&buf)

	p := influxdb2_write.NewPointWithMeasurement("render_pass").
		AddField("markers", 3).
		SetTime(time.Now())
	if err := m.WritePoint(context.Background(), RenderPassBucket, p); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := m.BackupWriter.Close(); err != nil {
		t.Fatalf("closing backup writer: %v", err)
	}

	content := gunzip(t, &buf)
	if !strings.Contains(content, "render_pass") {
		t.Errorf("backup file missing point: %s", content)
	}
	if !strings.Contains(content, "markers=3i") {
		t.Errorf("backup file missing field: %s", content)
	}
}

func TestWritePoint_NoSinkAvailable(t *testing.T) {
	m := &Manager{IsValid: false, Logger: zerolog.Nop()}

	p := influxdb2_write.NewPointWithMeasurement("render_pass").AddField("x", 1)
	if err := m.WritePoint(context.Background(), RenderPassBucket, p); err == nil {
		t.Error("expected error with neither client nor backup writer")
	}
}

func TestBatcher_EnqueueAndFlush(t *testing.T) {
	var buf bytes.Buffer
	m := backupManager(&buf)
	b := NewBatcher(m, RenderPassBucket)

	for i := 0; i < 3; i++ {
		b.Enqueue(RenderPassPoint(render.Stats{Passes: uint64(i + 1)}, time.Now()))
	}
	if b.Pending() != 3 {
		t.Errorf("expected 3 pending, got %d", b.Pending())
	}

	if err := b.Flush(context.Background()); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if b.Pending() != 0 {
		t.Errorf("expected empty batch after flush, got %d", b.Pending())
	}

	if err := m.BackupWriter.Close(); err != nil {
		t.Fatalf("closing backup writer: %v", err)
	}
	content := gunzip(t, &buf)
	if got := strings.Count(content, "render_pass"); got != 3 {
		t.Errorf("expected 3 points in backup, got %d: %s", got, content)
	}
}
