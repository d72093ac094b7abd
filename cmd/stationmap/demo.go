package main

import (
	"math/rand"
	"sync"
	"time"

	"github.com/cyclemap/stationmap/internal/config"
	"github.com/cyclemap/stationmap/pkg/core"
	"github.com/cyclemap/stationmap/pkg/geoloc"
)

// seedStations builds a demo station set scattered around the configured map
// center: a dense downtown cluster plus a few outliers, with a mix of
// availability states.
func seedStations(cfg config.MapConfig) []core.Station {
	center := core.LatLng{Lat: cfg.CenterLat, Lng: cfg.CenterLng}

	stations := []core.Station{
		{ID: "st-001", Name: "Central Station North", Status: core.StatusAvailable, AvailableSlots: 8},
		{ID: "st-002", Name: "Central Station South", Status: core.StatusAvailable, AvailableSlots: 5},
		{ID: "st-003", Name: "Market Square", Status: core.StatusPartial, AvailableSlots: 2},
		{ID: "st-004", Name: "City Library", Status: core.StatusOccupied, AvailableSlots: 0},
		{ID: "st-005", Name: "Museum Gate", Status: core.StatusAvailable, AvailableSlots: 11},
		{ID: "st-006", Name: "River Park East", Status: core.StatusPartial, AvailableSlots: 1},
		{ID: "st-007", Name: "River Park West", Status: core.StatusOccupied, AvailableSlots: 0},
		{ID: "st-008", Name: "University Main", Status: core.StatusAvailable, AvailableSlots: 14},
		{ID: "st-009", Name: "Stadium North", Status: core.StatusOccupied, AvailableSlots: 0},
		{ID: "st-010", Name: "Harbor Terminal", Status: core.StatusAvailable, AvailableSlots: 6},
	}

	// downtown cluster inside one zoom-13 threshold, outliers further out
	offsets := []core.LatLng{
		{Lat: 0.0002, Lng: 0.0001},
		{Lat: -0.0003, Lng: 0.0002},
		{Lat: 0.0001, Lng: -0.0004},
		{Lat: -0.0002, Lng: -0.0001},
		{Lat: 0.0004, Lng: 0.0003},
		{Lat: 0.0350, Lng: 0.0100},
		{Lat: 0.0360, Lng: 0.0110},
		{Lat: -0.0400, Lng: 0.0500},
		{Lat: 0.0700, Lng: -0.0300},
		{Lat: -0.0650, Lng: -0.0550},
	}
	for i := range stations {
		stations[i].Coordinates = core.LatLng{
			Lat: center.Lat + offsets[i].Lat,
			Lng: center.Lng + offsets[i].Lng,
		}
	}
	return stations
}

// simulatedProvider emits a random walk around the map center, standing in
// for a real geolocation capability.
type simulatedProvider struct {
	center core.LatLng
}

func newSimulatedProvider(cfg config.MapConfig) *simulatedProvider {
	return &simulatedProvider{center: core.LatLng{Lat: cfg.CenterLat, Lng: cfg.CenterLng}}
}

type simulatedSubscription struct {
	stop chan struct{}
	once sync.Once
}

func (s *simulatedSubscription) Unsubscribe() {
	s.once.Do(func() { close(s.stop) })
}

func (p *simulatedProvider) Subscribe(onFix func(geoloc.Fix), onError func(error), opts geoloc.Options) (geoloc.Subscription, error) {
	sub := &simulatedSubscription{stop: make(chan struct{})}

	go func() {
		pos := p.center
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-sub.stop:
				return
			case <-ticker.C:
				pos.Lat += (rand.Float64() - 0.5) * 0.0004
				pos.Lng += (rand.Float64() - 0.5) * 0.0004
				select {
				case <-sub.stop:
					return
				default:
				}
				onFix(geoloc.Fix{
					Position:       pos,
					AccuracyMeters: 8 + rand.Float64()*12,
					Time:           time.Now(),
				})
			}
		}
	}()

	return sub, nil
}
