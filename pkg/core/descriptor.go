// pkg/core/descriptor.go
package core

// MarkerKind discriminates what a visual descriptor represents.
type MarkerKind string

const (
	KindIndividual      MarkerKind = "individual"
	KindCluster         MarkerKind = "cluster"
	KindCurrentLocation MarkerKind = "current_location"
)

// Anchor is the pixel offset that aligns a marker shape to its geocoordinate.
type Anchor struct {
	X int
	Y int
}

// VisualDescriptor is the rendering-technology-neutral description of a
// marker's appearance. The pipeline computes these; an external rendering
// adapter turns them into whatever the map surface needs.
type VisualDescriptor struct {
	Kind   MarkerKind
	SizePx int
	// Scale is a multiplier applied on top of SizePx (hover emphasis).
	Scale float64
	// Label is the badge text: available-slot count for individual markers,
	// available-member count for clusters.
	Label string
	Glyph string
	// Palette colors, from the status classifier.
	Fill       string
	Border     string
	LabelColor string
	Glow       string
	Anchor     Anchor
}

// Equal reports whether two descriptors would render identically.
// Used to skip redundant icon updates.
func (d VisualDescriptor) Equal(o VisualDescriptor) bool {
	return d == o
}
