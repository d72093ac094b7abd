package cache

import (
	"sync"

	"github.com/cyclemap/stationmap/pkg/core"
	"github.com/cyclemap/stationmap/pkg/mapwidget"
)

// RenderedMarker is the bookkeeping record for one on-map marker. The Handle
// is owned exclusively by the lifecycle manager; Visual is the last-applied
// descriptor, kept to skip redundant icon updates.
type RenderedMarker struct {
	Key      string
	Position core.LatLng
	Visual   core.VisualDescriptor
	Handle   mapwidget.MarkerHandle
	// Station is set for individual-mode markers so pointer handlers can
	// rebuild content without a plan lookup. Nil for cluster markers.
	Station *core.Station
}

// MarkerSet tracks the markers currently attached to the map, keyed by
// render-plan key. Latency here matters less than in a hot ingest path, but
// the same rule applies: callers never reach into the map directly.
type MarkerSet struct {
	mu      sync.RWMutex
	markers map[string]*RenderedMarker
	order   []string
}

// NewMarkerSet creates an empty MarkerSet.
func NewMarkerSet() *MarkerSet {
	return &MarkerSet{
		markers: make(map[string]*RenderedMarker),
	}
}

// Get retrieves a marker by key.
func (s *MarkerSet) Get(key string) (*RenderedMarker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markers[key]
	return m, ok
}

// Set stores a marker under its key. Re-setting an existing key replaces the
// record but keeps its insertion position.
func (s *MarkerSet) Set(m *RenderedMarker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.markers[m.Key]; !exists {
		s.order = append(s.order, m.Key)
	}
	s.markers[m.Key] = m
}

// Delete removes a marker by key.
func (s *MarkerSet) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.markers[key]; !exists {
		return
	}
	delete(s.markers, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Drain removes every marker and returns them in insertion order. Used by
// the teardown phase of reconciliation.
func (s *MarkerSet) Drain() []*RenderedMarker {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*RenderedMarker, 0, len(s.markers))
	for _, k := range s.order {
		out = append(out, s.markers[k])
	}
	s.markers = make(map[string]*RenderedMarker)
	s.order = nil
	return out
}

// All returns a snapshot of the markers in insertion order.
func (s *MarkerSet) All() []*RenderedMarker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*RenderedMarker, 0, len(s.markers))
	for _, k := range s.order {
		out = append(out, s.markers[k])
	}
	return out
}

// Len returns the number of tracked markers.
func (s *MarkerSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers)
}
