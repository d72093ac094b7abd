package channel

// Latest is a conflating channel of capacity one: a new value replaces the
// undelivered one instead of blocking. A slow consumer therefore always sees
// the most recent value, never a backlog of stale ones. This is the right
// shape for station snapshots, where only the newest matters.
type Latest[T any] struct {
	ch chan T
}

// NewLatest creates an empty conflating channel.
func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ch: make(chan T, 1)}
}

// Send delivers the value, displacing an undelivered predecessor if present.
// It never blocks.
func (l *Latest[T]) Send(v T) {
	for {
		select {
		case l.ch <- v:
			return
		default:
		}
		select {
		case <-l.ch:
		default:
		}
	}
}

// Receive returns the receive-only channel.
func (l *Latest[T]) Receive() <-chan T {
	return l.ch
}

// Len returns 1 when an undelivered value is pending, 0 otherwise.
func (l *Latest[T]) Len() int {
	return len(l.ch)
}

// Close closes the channel. Send must not be called afterwards.
func (l *Latest[T]) Close() {
	close(l.ch)
}
