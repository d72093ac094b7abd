// Package cluster groups stations into zoom-dependent clusters. The
// algorithm is single-linkage, greedy, and order-dependent: it makes one pass
// over the input, seeds a cluster at the first unprocessed station, and
// claims every later unprocessed station within the zoom threshold of that
// seed. A station is therefore always grouped with the earliest seed that
// reaches it, never re-assigned to a nearer later one. That trade-off keeps
// the pass O(n²) with no index structure, which is plenty for the tens to low
// hundreds of stations this targets, and its membership results must stay
// reproducible, so do not "improve" the iteration order or the seed-anchored
// distance test.
package cluster

import (
	"github.com/cyclemap/stationmap/internal/geo"
	"github.com/cyclemap/stationmap/pkg/core"
)

// Cluster is a zoom-dependent grouping of nearby stations. Clusters are
// ephemeral: they are recomputed on every pass and carry no identity across
// passes. Members keeps discovery order.
type Cluster struct {
	Centroid core.LatLng
	Members  []core.Station
	// AvailableCount is the number of members whose status is not occupied.
	AvailableCount int
}

// Singleton reports whether the cluster represents a single unclustered
// station.
func (c *Cluster) Singleton() bool {
	return len(c.Members) == 1
}

// Total returns the member count.
func (c *Cluster) Total() int {
	return len(c.Members)
}

// Build partitions stations into clusters for the given zoom level. Every
// station lands in exactly one cluster; empty input yields nil. Input order
// decides both cluster seeding and tie-breaking, so identical input produces
// identical membership.
func Build(stations []core.Station, zoom float64) []Cluster {
	if len(stations) == 0 {
		return nil
	}

	threshold := geo.ClusterThreshold(zoom)
	processed := make([]bool, len(stations))

	var clusters []Cluster
	for i, seed := range stations {
		if processed[i] {
			continue
		}
		processed[i] = true

		c := Cluster{
			Centroid: seed.Coordinates,
			Members:  []core.Station{seed},
		}
		if seed.Status != core.StatusOccupied {
			c.AvailableCount++
		}

		// Distance is always measured from the seed's original
		// coordinates, not the evolving centroid.
		for j := i + 1; j < len(stations); j++ {
			if processed[j] {
				continue
			}
			candidate := stations[j]
			if geo.Distance(seed.Coordinates, candidate.Coordinates) >= threshold {
				continue
			}

			processed[j] = true
			c.Members = append(c.Members, candidate)
			if candidate.Status != core.StatusOccupied {
				c.AvailableCount++
			}

			// Incremental running mean over all members so far.
			n := float64(len(c.Members))
			c.Centroid.Lat = (c.Centroid.Lat*(n-1) + candidate.Coordinates.Lat) / n
			c.Centroid.Lng = (c.Centroid.Lng*(n-1) + candidate.Coordinates.Lng) / n
		}

		clusters = append(clusters, c)
	}

	return clusters
}
