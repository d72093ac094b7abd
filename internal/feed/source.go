// Package feed supplies station snapshots to the render pipeline. A Source
// answers point-in-time snapshots; the Watcher polls one and publishes only
// changed snapshots downstream.
package feed

import (
	"context"
	"sync"

	"github.com/cyclemap/stationmap/pkg/core"
)

// Source is a station snapshot provider.
type Source interface {
	// Snapshot returns the current station set. The returned slice is
	// owned by the caller.
	Snapshot(ctx context.Context) ([]core.Station, error)
	// Close releases the source's resources.
	Close() error
}

// MemorySource is an in-memory Source, used for demos and as the seed
// backend before a database is configured.
type MemorySource struct {
	mu       sync.RWMutex
	stations []core.Station
}

// NewMemorySource creates a MemorySource preloaded with the given stations.
func NewMemorySource(stations []core.Station) *MemorySource {
	s := &MemorySource{}
	s.SetStations(stations)
	return s
}

// SetStations replaces the station set.
func (s *MemorySource) SetStations(stations []core.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = append([]core.Station(nil), stations...)
}

// Snapshot returns a copy of the current station set.
func (s *MemorySource) Snapshot(ctx context.Context) ([]core.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Station(nil), s.stations...), nil
}

// Close is a no-op for the in-memory source.
func (s *MemorySource) Close() error {
	return nil
}
