package mapwidget

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrUnavailable is returned by Awaiter.Wait when the retry cap is exhausted
// before the widget library became available.
var ErrUnavailable = errors.New("map widget library not available")

// DefaultAwaitInterval is the poll interval used when Awaiter.Interval is
// left zero.
const DefaultAwaitInterval = 100 * time.Millisecond

// AwaitState is the initialization state of the widget availability poll.
type AwaitState string

const (
	AwaitWaiting AwaitState = "waiting"
	AwaitReady   AwaitState = "ready"
	AwaitFailed  AwaitState = "failed"
)

// Lookup probes for the external widget library. It returns the widget and
// true once the library is loaded, or false while it is still pending.
type Lookup func() (Widget, bool)

// Awaiter polls a Lookup at a fixed interval until the widget becomes
// available. MaxRetries of zero means poll forever, treating absence as
// permanently pending rather than an error. An Interval of zero falls back
// to DefaultAwaitInterval.
type Awaiter struct {
	Interval   time.Duration
	MaxRetries int

	mu    sync.RWMutex
	state AwaitState
}

// NewAwaiter creates an awaiter with the given poll interval and retry cap.
func NewAwaiter(interval time.Duration, maxRetries int) *Awaiter {
	return &Awaiter{
		Interval:   interval,
		MaxRetries: maxRetries,
		state:      AwaitWaiting,
	}
}

// State returns the current initialization state.
func (a *Awaiter) State() AwaitState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *Awaiter) setState(s AwaitState) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Wait blocks until the lookup succeeds, the retry cap is exhausted, or the
// context is cancelled. The first probe happens immediately.
func (a *Awaiter) Wait(ctx context.Context, lookup Lookup) (Widget, error) {
	a.setState(AwaitWaiting)

	interval := a.Interval
	if interval <= 0 {
		interval = DefaultAwaitInterval
	}

	retries := 0
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if w, ok := lookup(); ok {
			a.setState(AwaitReady)
			return w, nil
		}

		retries++
		if a.MaxRetries > 0 && retries >= a.MaxRetries {
			a.setState(AwaitFailed)
			return nil, ErrUnavailable
		}

		select {
		case <-ctx.Done():
			a.setState(AwaitFailed)
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
