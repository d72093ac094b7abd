// Package content builds visual descriptors for markers. Everything here is
// a pure function of its inputs; no map-widget interaction happens at this
// layer.
package content

import (
	"strconv"

	"github.com/cyclemap/stationmap/internal/status"
	"github.com/cyclemap/stationmap/pkg/core"
)

// SizeTier is the zoom-dependent size class for cluster markers.
type SizeTier int

const (
	TierSmall SizeTier = iota
	TierMedium
	TierLarge
)

const (
	// individualSizePx is the fixed base size of a single-station marker.
	individualSizePx = 34
	// hoverScale is the emphasis multiplier applied while hovered.
	hoverScale = 1.2

	clusterGlyph = "⚡"

	smallSizePx  = 36
	mediumSizePx = 44
	largeSizePx  = 52
)

// TierForZoom selects the cluster size tier for a zoom level.
func TierForZoom(zoom float64) SizeTier {
	switch {
	case zoom >= 12:
		return TierLarge
	case zoom >= 11:
		return TierMedium
	default:
		return TierSmall
	}
}

// SizePx returns the pixel size of a tier.
func (t SizeTier) SizePx() int {
	switch t {
	case TierLarge:
		return largeSizePx
	case TierMedium:
		return mediumSizePx
	default:
		return smallSizePx
	}
}

// anchorFor centers a square marker shape on its geocoordinate. It must be
// recomputed whenever the size tier changes.
func anchorFor(sizePx int) core.Anchor {
	return core.Anchor{X: sizePx / 2, Y: sizePx / 2}
}

// Individual builds the descriptor for a single-station marker. Hover adds a
// scale emphasis only; size tier and anchor stay fixed.
func Individual(s core.Station, hovered bool) core.VisualDescriptor {
	pal := status.PaletteFor(status.Classify(s))
	scale := 1.0
	if hovered {
		scale = hoverScale
	}
	return core.VisualDescriptor{
		Kind:       core.KindIndividual,
		SizePx:     individualSizePx,
		Scale:      scale,
		Label:      strconv.Itoa(s.AvailableSlots),
		Fill:       pal.Fill,
		Border:     pal.Border,
		LabelColor: pal.Label,
		Glow:       pal.Glow,
		Anchor:     anchorFor(individualSizePx),
	}
}

// Cluster builds the descriptor for an aggregate marker. The badge label is
// the available-member count; the size tier follows zoom.
func Cluster(availableCount, totalCount int, zoom float64) core.VisualDescriptor {
	pal := status.PaletteFor(status.ClassifyCluster(availableCount, totalCount))
	size := TierForZoom(zoom).SizePx()
	return core.VisualDescriptor{
		Kind:       core.KindCluster,
		SizePx:     size,
		Scale:      1.0,
		Label:      strconv.Itoa(availableCount),
		Glyph:      clusterGlyph,
		Fill:       pal.Fill,
		Border:     pal.Border,
		LabelColor: pal.Label,
		Glow:       pal.Glow,
		Anchor:     anchorFor(size),
	}
}

// CurrentLocation builds the dual-ring indicator for the device position.
// It is independent of zoom and station status.
func CurrentLocation(sizePx int) core.VisualDescriptor {
	return core.VisualDescriptor{
		Kind:       core.KindCurrentLocation,
		SizePx:     sizePx,
		Scale:      1.0,
		Fill:       "#3b82f6",
		Border:     "#ffffff",
		LabelColor: "#ffffff",
		Glow:       "rgba(59,130,246,0.35)",
		Anchor:     anchorFor(sizePx),
	}
}
