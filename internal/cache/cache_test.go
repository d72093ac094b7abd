package cache

import (
	"fmt"
	"testing"

	"github.com/cyclemap/stationmap/pkg/core"
)

func TestMarkerSet_SetGet(t *testing.T) {
	s := NewMarkerSet()

	m := &RenderedMarker{Key: "a", Position: core.LatLng{Lat: 37.5, Lng: 127.0}}
	s.Set(m)

	got, ok := s.Get("a")
	if !ok {
		t.Fatal("expected marker to be present")
	}
	if got != m {
		t.Error("expected the same record back")
	}
	if s.Len() != 1 {
		t.Errorf("expected Len=1, got %d", s.Len())
	}
}

func TestMarkerSet_GetMissing(t *testing.T) {
	s := NewMarkerSet()
	if _, ok := s.Get("nope"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestMarkerSet_Delete(t *testing.T) {
	s := NewMarkerSet()
	s.Set(&RenderedMarker{Key: "a"})
	s.Set(&RenderedMarker{Key: "b"})

	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Error("expected a to be gone")
	}
	if s.Len() != 1 {
		t.Errorf("expected Len=1, got %d", s.Len())
	}

	// deleting again is a no-op
	s.Delete("a")
	if s.Len() != 1 {
		t.Errorf("expected Len=1 after double delete, got %d", s.Len())
	}
}

func TestMarkerSet_DrainReturnsInsertionOrder(t *testing.T) {
	s := NewMarkerSet()
	for i := 0; i < 5; i++ {
		s.Set(&RenderedMarker{Key: fmt.Sprintf("k%d", i)})
	}

	drained := s.Drain()
	if len(drained) != 5 {
		t.Fatalf("expected 5 drained markers, got %d", len(drained))
	}
	for i, m := range drained {
		if m.Key != fmt.Sprintf("k%d", i) {
			t.Errorf("position %d: expected k%d, got %s", i, i, m.Key)
		}
	}
	if s.Len() != 0 {
		t.Errorf("expected empty set after drain, got %d", s.Len())
	}
}

func TestMarkerSet_ReplaceKeepsPosition(t *testing.T) {
	s := NewMarkerSet()
	s.Set(&RenderedMarker{Key: "a"})
	s.Set(&RenderedMarker{Key: "b"})
	s.Set(&RenderedMarker{Key: "a", Station: &core.Station{ID: "a"}})

	all := s.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(all))
	}
	if all[0].Key != "a" || all[0].Station == nil {
		t.Error("replacement should keep insertion position and new record")
	}
}

func TestHoverState_EnterLeave(t *testing.T) {
	h := NewHoverState()

	if _, ok := h.Current(); ok {
		t.Error("expected no hover initially")
	}

	h.Enter("st1")
	if id, ok := h.Current(); !ok || id != "st1" {
		t.Errorf("expected st1 hovered, got %q ok=%v", id, ok)
	}
	if !h.Is("st1") {
		t.Error("expected Is(st1) true")
	}

	h.Leave("st1")
	if _, ok := h.Current(); ok {
		t.Error("expected hover cleared")
	}
}

func TestHoverState_StaleLeaveIgnored(t *testing.T) {
	h := NewHoverState()

	h.Enter("st1")
	h.Enter("st2")
	// leave for the old marker arrives after the new enter
	h.Leave("st1")

	if id, ok := h.Current(); !ok || id != "st2" {
		t.Errorf("expected st2 still hovered, got %q ok=%v", id, ok)
	}
}

func TestHoverState_SingleValued(t *testing.T) {
	h := NewHoverState()
	h.Enter("a")
	h.Enter("b")

	if h.Is("a") {
		t.Error("a must no longer be hovered once b is")
	}
	if !h.Is("b") {
		t.Error("b should be hovered")
	}
}

func TestHoverState_IsEmptyID(t *testing.T) {
	h := NewHoverState()
	if h.Is("") {
		t.Error("empty id must never report as hovered")
	}
}
