package feed

import (
	"context"
	"fmt"

	"github.com/cyclemap/stationmap/pkg/core"
)

// GormSource reads station snapshots from the database manager.
type GormSource struct {
	manager *DBManager
}

// NewGormSource creates a Source backed by the database manager. The manager
// must already be connected and migrated.
func NewGormSource(manager *DBManager) *GormSource {
	return &GormSource{manager: manager}
}

// Snapshot loads every station row. Rows with out-of-range coordinates are
// skipped rather than failing the whole snapshot.
func (s *GormSource) Snapshot(ctx context.Context) ([]core.Station, error) {
	var records []StationRecord
	if err := s.manager.DB.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("loading station records: %w", err)
	}

	stations := make([]core.Station, 0, len(records))
	for _, rec := range records {
		st, err := rec.Station()
		if err != nil {
			s.manager.Logger.Warn().Str("id", rec.ID).Err(err).Msg("Skipping station row")
			continue
		}
		stations = append(stations, st)
	}
	return stations, nil
}

// Upsert writes station rows, replacing existing ones by primary key.
func (s *GormSource) Upsert(ctx context.Context, records ...StationRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.manager.DB.WithContext(ctx).Save(&records).Error
}

// Close closes the database connection.
func (s *GormSource) Close() error {
	return s.manager.Close()
}
