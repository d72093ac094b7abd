package feed

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cyclemap/stationmap/internal/config"
)

// NewSource creates a station source from configuration.
func NewSource(cfg config.FeedConfig, log zerolog.Logger) (Source, error) {
	switch cfg.Type {
	case "memory":
		return NewMemorySource(nil), nil
	case "sqlite":
		manager := NewDBManager(log, cfg)
		if err := manager.ConnectLocal(); err != nil {
			return nil, err
		}
		if err := manager.Setup(); err != nil {
			return nil, err
		}
		return NewGormSource(manager), nil
	case "postgres":
		manager := NewDBManager(log, cfg)
		if err := manager.Connect(); err != nil {
			return nil, err
		}
		if err := manager.Setup(); err != nil {
			return nil, err
		}
		return NewGormSource(manager), nil
	default:
		return nil, fmt.Errorf("unknown feed type: %s", cfg.Type)
	}
}
