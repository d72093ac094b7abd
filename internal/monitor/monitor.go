// Package monitor periodically reports pipeline health: a status file for
// operators and, when telemetry is configured, per-pass measurements shipped
// to InfluxDB.
package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cyclemap/stationmap/internal/render"
	"github.com/cyclemap/stationmap/internal/telemetry"
)

// Dependencies holds all collaborators of the monitor service.
type Dependencies struct {
	Engine *render.Engine
	Logger *slog.Logger
	// Batcher ships render-pass points when non-nil.
	Batcher *telemetry.Batcher
	// StatusDir is where status.json is written. Empty disables the file.
	StatusDir string
	// Interval between reports; defaults to one second.
	Interval time.Duration
}

// Status is the operator-facing report written to the status file.
type Status struct {
	Time         time.Time     `json:"time"`
	Passes       uint64        `json:"passes"`
	LastDuration time.Duration `json:"lastDurationNs"`
	Stations     int           `json:"stations"`
	Clusters     int           `json:"clusters"`
	Markers      int           `json:"markers"`
	Zoom         float64       `json:"zoom"`
	LastError    string        `json:"lastError,omitempty"`
}

// Service runs the periodic reporting loop.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}

	lastPasses uint64
}

// NewService creates a monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the monitor loop is active.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Snapshot builds the current status report from the engine counters.
func (s *Service) Snapshot() Status {
	stats := s.deps.Engine.Stats()
	return Status{
		Time:         time.Now(),
		Passes:       stats.Passes,
		LastDuration: stats.LastDuration,
		Stations:     stats.StationCount,
		Clusters:     stats.ClusterCount,
		Markers:      stats.MarkerCount,
		Zoom:         stats.Zoom,
		LastError:    stats.LastErrorText,
	}
}

// Start launches the reporting goroutine. Starting a running service is a
// no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug("status monitor started", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.report()
			}
		}
	}()

	return nil
}

// Stop stops the reporting loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}

func (s *Service) report() {
	status := s.Snapshot()

	if s.deps.StatusDir != "" {
		if err := s.writeStatusFile(status); err != nil {
			s.deps.Logger.Error("writing status file failed", "error", err)
		}
	}

	if s.deps.Batcher != nil && status.Passes != s.lastPasses {
		s.lastPasses = status.Passes
		s.deps.Batcher.Enqueue(telemetry.RenderPassPoint(s.deps.Engine.Stats(), status.Time))
		if err := s.deps.Batcher.Flush(context.Background()); err != nil {
			s.deps.Logger.Error("telemetry flush failed", "error", err)
		}
	}
}

func (s *Service) writeStatusFile(status Status) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(s.deps.StatusDir, "status.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
