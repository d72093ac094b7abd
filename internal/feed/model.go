package feed

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/cyclemap/stationmap/internal/geo"
	"github.com/cyclemap/stationmap/pkg/core"
)

// StationRecord is the database row for one station.
type StationRecord struct {
	ID             string         `json:"id" gorm:"primaryKey;size:64"`
	Name           string         `json:"name" gorm:"size:200"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Status         string         `json:"status" gorm:"size:16;index"`
	AvailableSlots int            `json:"availableSlots"`
	Metadata       datatypes.JSON `json:"metadata"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// TableName fixes the table name independent of gorm pluralization.
func (StationRecord) TableName() string {
	return "stations"
}

// parseStatus maps a stored status string onto the core type. Unknown values
// degrade to occupied so a bad row never renders as bookable.
func parseStatus(s string) core.Status {
	switch s {
	case "available":
		return core.StatusAvailable
	case "partial":
		return core.StatusPartial
	default:
		return core.StatusOccupied
	}
}

func statusString(s core.Status) string {
	switch s {
	case core.StatusAvailable:
		return "available"
	case core.StatusPartial:
		return "partial"
	default:
		return "occupied"
	}
}

// Station converts the record to the core representation.
func (r StationRecord) Station() (core.Station, error) {
	pos := core.LatLng{Lat: r.Latitude, Lng: r.Longitude}
	if pos.Lat < -90 || pos.Lat > 90 || pos.Lng < -180 || pos.Lng > 180 {
		return core.Station{}, geo.ErrInvalidCoordinates
	}
	return core.Station{
		ID:             r.ID,
		Name:           r.Name,
		Coordinates:    pos,
		Status:         parseStatus(r.Status),
		AvailableSlots: r.AvailableSlots,
	}, nil
}

// RecordFromStation converts a core station to its database row. Extra
// attributes go into the JSON metadata column.
func RecordFromStation(s core.Station, metadata map[string]any) (StationRecord, error) {
	rec := StationRecord{
		ID:             s.ID,
		Name:           s.Name,
		Latitude:       s.Coordinates.Lat,
		Longitude:      s.Coordinates.Lng,
		Status:         statusString(s.Status),
		AvailableSlots: s.AvailableSlots,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return StationRecord{}, err
		}
		rec.Metadata = datatypes.JSON(raw)
	}
	return rec, nil
}
