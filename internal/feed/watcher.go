package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/cyclemap/stationmap/internal/channel"
	"github.com/cyclemap/stationmap/pkg/core"
)

// Watcher polls a Source and publishes changed snapshots. Unchanged polls
// publish nothing, so the render pipeline only reconciles on real updates.
// The conflating channel means a slow consumer sees only the newest snapshot.
type Watcher struct {
	source   Source
	interval time.Duration
	logger   *slog.Logger

	updates channel.Channel[[]core.Station]
	last    []core.Station
}

// NewWatcher creates a Watcher polling the source at the given interval.
func NewWatcher(source Source, interval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		source:   source,
		interval: interval,
		logger:   logger,
		updates:  channel.NewLatest[[]core.Station](),
	}
}

// Updates returns the snapshot channel. It is closed when Run returns.
func (w *Watcher) Updates() <-chan []core.Station {
	return w.updates.Receive()
}

// Run polls until the context is canceled. The first poll happens
// immediately so subscribers get an initial snapshot without waiting a full
// interval.
func (w *Watcher) Run(ctx context.Context) {
	defer w.updates.Close()

	w.poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	stations, err := w.source.Snapshot(ctx)
	if err != nil {
		// keep serving the previous snapshot; the next poll may recover
		w.logger.Warn("station snapshot failed", "error", err)
		return
	}

	if snapshotsEqual(w.last, stations) {
		return
	}

	w.last = stations
	w.updates.Send(stations)
	w.logger.Debug("station snapshot published", "stations", len(stations))
}

func snapshotsEqual(a, b []core.Station) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
