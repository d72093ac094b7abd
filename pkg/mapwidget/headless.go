package mapwidget

import (
	"sync"

	"github.com/cyclemap/stationmap/pkg/core"
)

// Headless is an in-memory Widget. It records every mutation instead of
// drawing anything, which makes it usable both as a development surface for
// the demo daemon and as the test double for the pipeline.
type Headless struct {
	mu           sync.Mutex
	zoom         float64
	zoomListener func(float64)
	markers      map[*HeadlessMarker]struct{}
	circles      map[*HeadlessCircle]struct{}

	created  int
	detached int
}

// NewHeadless creates a headless widget at the given initial zoom.
func NewHeadless(zoom float64) *Headless {
	return &Headless{
		zoom:    zoom,
		markers: make(map[*HeadlessMarker]struct{}),
		circles: make(map[*HeadlessCircle]struct{}),
	}
}

// HeadlessMarker is the marker handle produced by Headless.
type HeadlessMarker struct {
	w *Headless

	mu       sync.Mutex
	pos      core.LatLng
	desc     core.VisualDescriptor
	handlers InteractionHandlers
	detached bool
}

func (m *HeadlessMarker) SetIcon(desc core.VisualDescriptor) {
	m.mu.Lock()
	m.desc = desc
	m.mu.Unlock()
}

func (m *HeadlessMarker) SetPosition(pos core.LatLng) {
	m.mu.Lock()
	m.pos = pos
	m.mu.Unlock()
}

func (m *HeadlessMarker) Bind(h InteractionHandlers) {
	m.mu.Lock()
	m.handlers = h
	m.mu.Unlock()
}

func (m *HeadlessMarker) Detach() {
	m.mu.Lock()
	m.detached = true
	m.mu.Unlock()

	m.w.mu.Lock()
	delete(m.w.markers, m)
	m.w.detached++
	m.w.mu.Unlock()
}

// Icon returns the last-applied descriptor.
func (m *HeadlessMarker) Icon() core.VisualDescriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.desc
}

// Position returns the marker's current coordinate.
func (m *HeadlessMarker) Position() core.LatLng {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// Detached reports whether Detach has been called.
func (m *HeadlessMarker) Detached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detached
}

// Click simulates a pointer click on the marker.
func (m *HeadlessMarker) Click() {
	m.mu.Lock()
	fn := m.handlers.OnClick
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// PointerEnter simulates the pointer entering the marker.
func (m *HeadlessMarker) PointerEnter() {
	m.mu.Lock()
	fn := m.handlers.OnPointerEnter
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// PointerLeave simulates the pointer leaving the marker.
func (m *HeadlessMarker) PointerLeave() {
	m.mu.Lock()
	fn := m.handlers.OnPointerLeave
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// HeadlessCircle is the radius-overlay handle produced by Headless.
type HeadlessCircle struct {
	w *Headless

	mu      sync.Mutex
	pos     core.LatLng
	radius  float64
	style   CircleStyle
	removed bool
}

func (c *HeadlessCircle) SetCenter(pos core.LatLng) {
	c.mu.Lock()
	c.pos = pos
	c.mu.Unlock()
}

func (c *HeadlessCircle) SetRadius(meters float64) {
	c.mu.Lock()
	c.radius = meters
	c.mu.Unlock()
}

func (c *HeadlessCircle) Remove() {
	c.mu.Lock()
	c.removed = true
	c.mu.Unlock()

	c.w.mu.Lock()
	delete(c.w.circles, c)
	c.w.mu.Unlock()
}

// Radius returns the overlay's current radius in meters.
func (c *HeadlessCircle) Radius() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

// Center returns the overlay's current center.
func (c *HeadlessCircle) Center() core.LatLng {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// Removed reports whether Remove has been called.
func (c *HeadlessCircle) Removed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removed
}

func (w *Headless) CreateMarker(pos core.LatLng, desc core.VisualDescriptor) (MarkerHandle, error) {
	m := &HeadlessMarker{w: w, pos: pos, desc: desc}
	w.mu.Lock()
	w.markers[m] = struct{}{}
	w.created++
	w.mu.Unlock()
	return m, nil
}

func (w *Headless) CreateCircle(pos core.LatLng, radiusMeters float64, style CircleStyle) (CircleHandle, error) {
	c := &HeadlessCircle{w: w, pos: pos, radius: radiusMeters, style: style}
	w.mu.Lock()
	w.circles[c] = struct{}{}
	w.mu.Unlock()
	return c, nil
}

func (w *Headless) Zoom() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.zoom
}

func (w *Headless) OnZoomChange(fn func(zoom float64)) {
	w.mu.Lock()
	w.zoomListener = fn
	w.mu.Unlock()
}

// SetZoom changes the zoom level and fires the registered listener, the way
// a user zoom gesture would on a real surface.
func (w *Headless) SetZoom(zoom float64) {
	w.mu.Lock()
	w.zoom = zoom
	fn := w.zoomListener
	w.mu.Unlock()
	if fn != nil {
		fn(zoom)
	}
}

// MarkerCount returns the number of currently attached markers.
func (w *Headless) MarkerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.markers)
}

// CircleCount returns the number of currently attached circles.
func (w *Headless) CircleCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.circles)
}

// Markers returns a snapshot of the attached marker handles.
func (w *Headless) Markers() []*HeadlessMarker {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*HeadlessMarker, 0, len(w.markers))
	for m := range w.markers {
		out = append(out, m)
	}
	return out
}

// Created returns the total number of markers ever created.
func (w *Headless) Created() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.created
}

// Detached returns the total number of markers ever detached.
func (w *Headless) Detached() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.detached
}

var _ Widget = (*Headless)(nil)
