package telemetry

import (
	"context"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/cyclemap/stationmap/internal/queue"
	"github.com/cyclemap/stationmap/internal/render"
)

// RenderPassBucket receives per-pass pipeline measurements.
const RenderPassBucket = "render_performance"

// RenderPassPoint converts an engine stats snapshot into an Influx point.
func RenderPassPoint(s render.Stats, at time.Time) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("render_pass").
		AddField("passes", int64(s.Passes)).
		AddField("duration_ms", float64(s.LastDuration.Microseconds())/1000.0).
		AddField("stations", s.StationCount).
		AddField("clusters", s.ClusterCount).
		AddField("markers", s.MarkerCount).
		AddField("zoom", s.Zoom).
		SetTime(at)
}

// Batcher accumulates points for one bucket and writes them out on Flush.
// The monitor service flushes it on its own cadence, keeping point
// construction off the render path.
type Batcher struct {
	manager *Manager
	bucket  string
	pending *queue.Queue[*influxdb2_write.Point]
}

// NewBatcher creates a batcher targeting the given bucket.
func NewBatcher(manager *Manager, bucket string) *Batcher {
	return &Batcher{
		manager: manager,
		bucket:  bucket,
		pending: queue.New[*influxdb2_write.Point](),
	}
}

// Enqueue adds points to the batch.
func (b *Batcher) Enqueue(points ...*influxdb2_write.Point) {
	b.pending.Push(points...)
}

// Pending returns the number of queued points.
func (b *Batcher) Pending() int {
	return b.pending.Len()
}

// Flush writes every queued point. The first write error is returned; the
// remaining points of the batch are still attempted.
func (b *Batcher) Flush(ctx context.Context) error {
	var firstErr error
	for _, p := range b.pending.Drain() {
		if err := b.manager.WritePoint(ctx, b.bucket, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
