package events

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/cyclemap/stationmap/internal/events"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
