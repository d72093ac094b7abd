// Package status maps stations and clusters to their visual status category
// and palette.
package status

import "github.com/cyclemap/stationmap/pkg/core"

// Palette is the fixed color set for one status category.
type Palette struct {
	Fill   string
	Border string
	Label  string
	Glow   string
}

// Application palette. These are fixed application-level values, not derived
// from anything.
var palettes = map[core.Status]Palette{
	core.StatusAvailable: {
		Fill:   "#22c55e",
		Border: "#15803d",
		Label:  "#ffffff",
		Glow:   "rgba(34,197,94,0.45)",
	},
	core.StatusPartial: {
		Fill:   "#f59e0b",
		Border: "#b45309",
		Label:  "#ffffff",
		Glow:   "rgba(245,158,11,0.45)",
	},
	core.StatusOccupied: {
		Fill:   "#ef4444",
		Border: "#b91c1c",
		Label:  "#ffffff",
		Glow:   "rgba(239,68,68,0.45)",
	},
}

// Classify returns the status category of a single station.
func Classify(s core.Station) core.Status {
	return s.Status
}

// ClassifyCluster derives a cluster's status from its member counts. The
// decision order matters: a low absolute count forces partial even when the
// ratio looks healthy (2 available out of 3 is still partial).
func ClassifyCluster(availableCount, totalCount int) core.Status {
	switch {
	case availableCount == 0:
		return core.StatusOccupied
	case availableCount <= 2 || float64(availableCount)/float64(totalCount) < 0.3:
		return core.StatusPartial
	default:
		return core.StatusAvailable
	}
}

// PaletteFor returns the palette for a status category. Unknown categories
// fall back to the occupied palette.
func PaletteFor(s core.Status) Palette {
	if p, ok := palettes[s]; ok {
		return p
	}
	return palettes[core.StatusOccupied]
}
