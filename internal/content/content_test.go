package content

import (
	"strconv"
	"testing"

	"github.com/cyclemap/stationmap/internal/status"
	"github.com/cyclemap/stationmap/pkg/core"
)

func TestTierForZoom(t *testing.T) {
	cases := []struct {
		zoom float64
		want SizeTier
	}{
		{10, TierSmall},
		{10.9, TierSmall},
		{11, TierMedium},
		{11.5, TierMedium},
		{12, TierLarge},
		{13, TierLarge},
	}
	for _, tc := range cases {
		if got := TierForZoom(tc.zoom); got != tc.want {
			t.Errorf("TierForZoom(%.1f) = %d, want %d", tc.zoom, got, tc.want)
		}
	}
}

func TestIndividual_Basic(t *testing.T) {
	s := core.Station{ID: "a", Status: core.StatusAvailable, AvailableSlots: 7}

	d := Individual(s, false)
	if d.Kind != core.KindIndividual {
		t.Errorf("expected individual kind, got %s", d.Kind)
	}
	if d.Label != "7" {
		t.Errorf("expected label '7', got %q", d.Label)
	}
	if d.Scale != 1.0 {
		t.Errorf("expected scale 1.0, got %f", d.Scale)
	}
	pal := status.PaletteFor(core.StatusAvailable)
	if d.Fill != pal.Fill || d.Border != pal.Border {
		t.Error("descriptor colors should come from the status palette")
	}
}

func TestIndividual_HoverScalesOnly(t *testing.T) {
	s := core.Station{ID: "a", Status: core.StatusPartial, AvailableSlots: 2}

	plain := Individual(s, false)
	hovered := Individual(s, true)

	if hovered.Scale != 1.2 {
		t.Errorf("expected hover scale 1.2, got %f", hovered.Scale)
	}
	if hovered.SizePx != plain.SizePx {
		t.Error("hover must not change base size")
	}
	if hovered.Anchor != plain.Anchor {
		t.Error("hover must not change the anchor")
	}
	if hovered.Fill != plain.Fill {
		t.Error("hover must not change colors")
	}
}

func TestCluster_BadgeAndGlyph(t *testing.T) {
	d := Cluster(8, 10, 12)

	if d.Kind != core.KindCluster {
		t.Errorf("expected cluster kind, got %s", d.Kind)
	}
	if d.Label != "8" {
		t.Errorf("expected label '8', got %q", d.Label)
	}
	if d.Glyph == "" {
		t.Error("cluster descriptor must carry the glyph")
	}
	pal := status.PaletteFor(core.StatusAvailable)
	if d.Fill != pal.Fill {
		t.Error("expected available palette for 8/10")
	}
}

func TestCluster_SizeFollowsZoomTier(t *testing.T) {
	small := Cluster(5, 10, 10)
	medium := Cluster(5, 10, 11)
	large := Cluster(5, 10, 12)

	if !(small.SizePx < medium.SizePx && medium.SizePx < large.SizePx) {
		t.Errorf("expected strictly increasing sizes, got %d/%d/%d",
			small.SizePx, medium.SizePx, large.SizePx)
	}
}

func TestCluster_AnchorRecomputedPerTier(t *testing.T) {
	for _, zoom := range []float64{10, 11, 12} {
		d := Cluster(5, 10, zoom)
		want := core.Anchor{X: d.SizePx / 2, Y: d.SizePx / 2}
		if d.Anchor != want {
			t.Errorf("zoom %.0f: anchor %+v, want %+v", zoom, d.Anchor, want)
		}
	}
}

func TestCluster_PartialPalette(t *testing.T) {
	d := Cluster(2, 3, 12)
	pal := status.PaletteFor(core.StatusPartial)
	if d.Fill != pal.Fill {
		t.Error("expected partial palette for 2/3")
	}
	if d.Label != strconv.Itoa(2) {
		t.Errorf("expected label '2', got %q", d.Label)
	}
}

func TestCurrentLocation_Fixed(t *testing.T) {
	d := CurrentLocation(20)

	if d.Kind != core.KindCurrentLocation {
		t.Errorf("expected current-location kind, got %s", d.Kind)
	}
	if d.SizePx != 20 {
		t.Errorf("expected size 20, got %d", d.SizePx)
	}
	if d.Label != "" {
		t.Errorf("current-location marker carries no label, got %q", d.Label)
	}
	if (d.Anchor != core.Anchor{X: 10, Y: 10}) {
		t.Errorf("expected centered anchor, got %+v", d.Anchor)
	}
}
