// Command stationmap runs the marker pipeline as a standalone daemon against
// the headless map widget. It exists for development and operations: it
// exercises the full station feed, clustering and marker lifecycle without a
// real map surface, and reports health through the monitor service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/cyclemap/stationmap/internal/config"
	"github.com/cyclemap/stationmap/internal/events"
	"github.com/cyclemap/stationmap/internal/feed"
	"github.com/cyclemap/stationmap/internal/geo"
	"github.com/cyclemap/stationmap/internal/logging"
	"github.com/cyclemap/stationmap/internal/monitor"
	intotel "github.com/cyclemap/stationmap/internal/otel"
	"github.com/cyclemap/stationmap/internal/render"
	"github.com/cyclemap/stationmap/internal/telemetry"
	"github.com/cyclemap/stationmap/internal/track"
	"github.com/cyclemap/stationmap/pkg/core"
	"github.com/cyclemap/stationmap/pkg/mapwidget"
)

func main() {
	configDir := flag.String("config", ".", "directory containing stationmap.cfg.json")
	center := flag.String("center", "", `override the configured map center, as "lat,lng"`)
	flag.Parse()

	if err := run(*configDir, *center); err != nil {
		fmt.Fprintln(os.Stderr, "stationmap:", err)
		os.Exit(1)
	}
}

func run(configDir, center string) error {
	sessionStart := time.Now()

	if err := config.Load(configDir); err != nil {
		return err
	}

	mapCfg := config.GetMapConfig()
	if center != "" {
		pos, err := geo.LatLngFromString(center)
		if err != nil {
			return fmt.Errorf("parsing -center %q: %w", center, err)
		}
		mapCfg.CenterLat, mapCfg.CenterLng = pos.Lat, pos.Lng
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	logFile, err := os.Create(logging.LogFilePath(logsDir, "stationmap", sessionStart))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	// OTel log export, disabled unless configured
	var otelLogFile *os.File
	otelCfg := intotel.Config{
		Enabled:      config.GetBool("otel.enabled"),
		ServiceName:  config.GetString("otel.serviceName"),
		BatchTimeout: config.GetDuration("otel.batchTimeout"),
		Endpoint:     config.GetString("otel.endpoint"),
		Insecure:     config.GetBool("otel.insecure"),
	}
	if otelCfg.Enabled {
		otelLogFile, err = os.Create(logging.LogFilePath(logsDir, "stationmap.otel", sessionStart))
		if err != nil {
			return fmt.Errorf("creating otel log file: %w", err)
		}
		defer otelLogFile.Close()
		otelCfg.LogWriter = otelLogFile
	}
	otelProvider, err := intotel.New(otelCfg)
	if err != nil {
		return fmt.Errorf("initializing otel: %w", err)
	}

	// the engine does not exist yet; the provider closure picks it up once
	// it does, so every record carries the current zoom and marker count.
	// goroutines log through this closure before the engine is stored, so
	// the handoff is atomic
	var engine atomic.Pointer[render.Engine]
	logManager := logging.NewManager()
	logManager.Setup(logging.Options{
		File:     logFile,
		Level:    config.GetString("logLevel"),
		Provider: otelProvider.LoggerProvider(),
		GelfAddress: func() string {
			if config.GetBool("graylog.enabled") {
				return config.GetString("graylog.address")
			}
			return ""
		}(),
		Context: func() []slog.Attr {
			e := engine.Load()
			if e == nil {
				return nil
			}
			return e.LogAttrs()
		},
	})
	logger := logManager.Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// station source and watcher
	feedCfg := config.GetFeedConfig()
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	source, err := feed.NewSource(feedCfg, zlog)
	if err != nil {
		return fmt.Errorf("creating station source: %w", err)
	}
	defer source.Close()

	if mem, ok := source.(*feed.MemorySource); ok {
		mem.SetStations(seedStations(mapCfg))
	}

	watcher := feed.NewWatcher(source, feedCfg.RefreshInterval, logger)
	go watcher.Run(ctx)

	// map widget: the headless surface registers itself asynchronously the
	// way an embedded map view would, and the awaiter polls for it
	widgetCfg := config.GetWidgetConfig()

	var registered atomic.Pointer[mapwidget.Headless]
	go func() {
		time.Sleep(widgetCfg.PollInterval * 2)
		registered.Store(mapwidget.NewHeadless(mapCfg.InitialZoom))
	}()

	awaiter := mapwidget.Awaiter{
		Interval:   widgetCfg.PollInterval,
		MaxRetries: widgetCfg.MaxRetries,
	}
	widget, err := awaiter.Wait(ctx, func() (mapwidget.Widget, bool) {
		if w := registered.Load(); w != nil {
			return w, true
		}
		return nil, false
	})
	if err != nil {
		return fmt.Errorf("waiting for map widget: %w", err)
	}
	center3857 := geo.Point3857(core.LatLng{Lat: mapCfg.CenterLat, Lng: mapCfg.CenterLng})
	logger.Info("map widget ready", "zoom", widget.Zoom(), "center", center3857.AsText())

	// notification bus and render engine
	bus, err := events.New(logging.NewBusLogger(logger))
	if err != nil {
		return fmt.Errorf("creating event bus: %w", err)
	}
	bus.Subscribe(events.StationClicked, func(e events.Event) error {
		st := e.Payload.(core.Station)
		logger.Info("station clicked", "id", st.ID, "name", st.Name)
		return nil
	})
	bus.Subscribe(events.ClusterClicked, func(e events.Event) error {
		members := e.Payload.([]core.Station)
		logger.Info("cluster clicked", "members", len(members))
		return nil
	})

	eng, err := render.NewEngine(render.Dependencies{
		Widget: widget,
		Bus:    bus,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("creating render engine: %w", err)
	}
	eng.Bind()
	engine.Store(eng)

	go func() {
		for stations := range watcher.Updates() {
			eng.SetStations(stations)
		}
	}()

	// live position tracker with a simulated fix stream
	trackerCfg := config.GetTrackerConfig()
	var tracker *track.Tracker
	if trackerCfg.Enabled {
		tracker, err = track.New(track.Dependencies{
			Provider: newSimulatedProvider(mapCfg),
			Widget:   widget,
			Logger:   logger,
		}, track.Config{
			HighAccuracy: true,
			MaxAge:       trackerCfg.MaxAge,
			Timeout:      trackerCfg.Timeout,
		})
		if err != nil {
			return fmt.Errorf("creating tracker: %w", err)
		}
		if err := tracker.Start(); err != nil {
			logger.Warn("position tracking unavailable", "error", err)
		} else {
			defer tracker.Stop()
		}
	}

	// telemetry and monitor
	var batcher *telemetry.Batcher
	if viper.GetBool("influx.enabled") {
		tm := telemetry.NewManager(zlog, logging.LogFilePath(logsDir, "stationmap.influx_backup", sessionStart)+".gz")
		if err := tm.Connect(); err != nil {
			logger.Warn("telemetry unavailable", "error", err)
		} else {
			defer tm.Close()
			batcher = telemetry.NewBatcher(tm, telemetry.RenderPassBucket)
		}
	}

	mon := monitor.NewService(monitor.Dependencies{
		Engine:    eng,
		Logger:    logger,
		Batcher:   batcher,
		StatusDir: logsDir,
	})
	if err := mon.Start(); err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}
	defer mon.Stop()

	// walk the zoom range so the demo exercises both render modes
	if headless, ok := widget.(*mapwidget.Headless); ok {
		go sweepZoom(ctx, headless, mapCfg)
	}

	logger.Info("stationmap running", "feed", feedCfg.Type, "zoom", widget.Zoom())
	<-ctx.Done()
	logger.Info("shutting down")

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := logManager.Flush(flushCtx); err != nil {
		logger.Warn("log flush failed", "error", err)
	}
	if err := otelProvider.Shutdown(flushCtx); err != nil {
		logger.Warn("otel shutdown failed", "error", err)
	}
	return nil
}

// sweepZoom steps the headless widget through the zoom range, crossing the
// individual-mode cutoff in both directions.
func sweepZoom(ctx context.Context, w *mapwidget.Headless, cfg config.MapConfig) {
	levels := []float64{cfg.InitialZoom, 10, 12, 14, 16, 13, cfg.InitialZoom}
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.SetZoom(levels[i%len(levels)])
			i++
		}
	}
}
