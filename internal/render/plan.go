package render

import (
	"strconv"

	"github.com/cyclemap/stationmap/internal/cache"
	"github.com/cyclemap/stationmap/internal/cluster"
	"github.com/cyclemap/stationmap/internal/content"
	"github.com/cyclemap/stationmap/pkg/core"
)

// IndividualModeZoom is the cutoff above which every station gets its own
// marker regardless of density.
const IndividualModeZoom = 14.0

// PlannedMarker is one marker the current pass wants on the map.
type PlannedMarker struct {
	// Key matches markers across passes. Station ids in individual mode;
	// synthesized per pass in cluster mode, where no stable identity
	// exists.
	Key      string
	Position core.LatLng
	Visual   core.VisualDescriptor
	// Station is set in individual mode and for singleton clusters; the
	// click payload is then the single station.
	Station *core.Station
	// Members is set for multi-member clusters; the click payload is the
	// member list.
	Members []core.Station
}

// Plan is the computed marker set for one zoom + station-set snapshot.
type Plan struct {
	Zoom       float64
	Individual bool
	Markers    []PlannedMarker
	// ClusterCount is the number of clusters built before suppression,
	// zero in individual mode.
	ClusterCount int
}

// BuildPlan computes the render plan. In individual mode every station maps
// to one marker; in cluster mode stations are grouped and fully-occupied
// groups are suppressed entirely.
func BuildPlan(stations []core.Station, zoom float64, hover *cache.HoverState) Plan {
	p := Plan{Zoom: zoom, Individual: zoom >= IndividualModeZoom}

	if p.Individual {
		p.Markers = make([]PlannedMarker, 0, len(stations))
		for i := range stations {
			st := stations[i]
			p.Markers = append(p.Markers, PlannedMarker{
				Key:      st.ID,
				Position: st.Coordinates,
				Visual:   content.Individual(st, hover != nil && hover.Is(st.ID)),
				Station:  &st,
			})
		}
		return p
	}

	clusters := cluster.Build(stations, zoom)
	p.ClusterCount = len(clusters)
	for i, c := range clusters {
		if c.AvailableCount == 0 {
			// a fully-occupied group produces no visual marker
			continue
		}
		pm := PlannedMarker{
			Key:      "cluster:" + strconv.Itoa(i),
			Position: c.Centroid,
			Visual:   content.Cluster(c.AvailableCount, c.Total(), zoom),
		}
		if c.Singleton() {
			st := c.Members[0]
			pm.Station = &st
		} else {
			pm.Members = c.Members
		}
		p.Markers = append(p.Markers, pm)
	}
	return p
}
