// pkg/core/station.go
package core

// Status is the visual availability category of a station or cluster.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPartial   Status = "partial"
	StatusOccupied  Status = "occupied"
)

// LatLng is a geographic coordinate in floating-point degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// Station is a geolocated entity with a status and available-capacity count.
// Stations are supplied by the entity feed and are read-only to the pipeline.
// ID must be unique within a single render pass; duplicate IDs are a caller
// error and are not validated here.
type Station struct {
	ID             string
	Name           string
	Coordinates    LatLng
	Status         Status
	AvailableSlots int
}
