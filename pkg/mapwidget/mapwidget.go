// Package mapwidget defines the map-widget capability the rendering pipeline
// consumes. The pipeline never touches a concrete map library; it talks to
// these interfaces and an adapter binds them to the real surface (Leaflet,
// MapLibre, a native view, or the headless implementation in this package).
package mapwidget

import "github.com/cyclemap/stationmap/pkg/core"

// InteractionHandlers are the pointer callbacks wired onto a marker.
// Nil members mean the interaction is not handled.
type InteractionHandlers struct {
	OnClick        func()
	OnPointerEnter func()
	OnPointerLeave func()
}

// MarkerHandle is the opaque native marker object. Handles are exclusively
// owned by the marker lifecycle manager; no other component may retain one.
type MarkerHandle interface {
	// SetIcon replaces the marker's visual content in place.
	SetIcon(desc core.VisualDescriptor)
	// SetPosition moves the marker without recreating it.
	SetPosition(pos core.LatLng)
	// Bind attaches interaction callbacks, replacing any previous set.
	Bind(h InteractionHandlers)
	// Detach removes the marker from the map and releases the handle.
	// The handle must not be used afterwards.
	Detach()
}

// CircleStyle describes a translucent radius overlay.
type CircleStyle struct {
	Fill    string
	Border  string
	Opacity float64
}

// CircleHandle is an opaque radius-overlay object (accuracy circle).
type CircleHandle interface {
	SetCenter(pos core.LatLng)
	SetRadius(meters float64)
	Remove()
}

// Widget is the map surface itself. Construction (container, center, zoom
// bounds) is the adapter's concern; the pipeline receives a ready Widget.
type Widget interface {
	CreateMarker(pos core.LatLng, desc core.VisualDescriptor) (MarkerHandle, error)
	CreateCircle(pos core.LatLng, radiusMeters float64, style CircleStyle) (CircleHandle, error)
	// Zoom returns the current zoom level.
	Zoom() float64
	// OnZoomChange registers the single zoom listener. Registering again
	// replaces the previous listener.
	OnZoomChange(fn func(zoom float64))
}
