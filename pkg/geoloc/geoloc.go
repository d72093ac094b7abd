// Package geoloc defines the device-location capability consumed by the live
// position tracker. Implementations wrap whatever the host platform provides
// (browser geolocation, a GPS daemon, a replay file); the tracker only sees
// these interfaces.
package geoloc

import (
	"time"

	"github.com/cyclemap/stationmap/pkg/core"
)

// Fix is a single position report from the location capability.
type Fix struct {
	Position core.LatLng
	// AccuracyMeters is the reported accuracy radius. Zero means the
	// capability supplied no accuracy data.
	AccuracyMeters float64
	Time           time.Time
}

// Options mirror the subscription knobs of the underlying capability.
type Options struct {
	HighAccuracy bool
	// MaxAge is how long a cached fix is considered fresh.
	MaxAge time.Duration
	// Timeout is how long to wait for a fix before the subscription is
	// considered failed.
	Timeout time.Duration
}

// Subscription is a live position-fix stream.
type Subscription interface {
	// Unsubscribe cancels the stream. No callback may fire after it returns.
	Unsubscribe()
}

// Provider supplies position-fix subscriptions.
type Provider interface {
	Subscribe(onFix func(Fix), onError func(error), opts Options) (Subscription, error)
}
