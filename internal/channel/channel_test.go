package channel

import "testing"

func TestBuffered_DeliversInOrder(t *testing.T) {
	c := NewBuffered[int](4)
	c.Send(1)
	c.Send(2)
	c.Send(3)

	if c.Len() != 3 {
		t.Errorf("expected 3 buffered, got %d", c.Len())
	}
	for want := 1; want <= 3; want++ {
		if got := <-c.Receive(); got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
}

func TestBuffered_TrySendRejectsWhenFull(t *testing.T) {
	c := NewBuffered[int](2)

	if !c.TrySend(1) || !c.TrySend(2) {
		t.Fatal("expected sends to be accepted while the buffer has room")
	}
	if c.TrySend(3) {
		t.Error("expected send to be rejected when the buffer is full")
	}

	<-c.Receive()
	if !c.TrySend(3) {
		t.Error("expected send to be accepted after a receive freed room")
	}
}

func TestBuffered_CloseEndsRange(t *testing.T) {
	c := NewBuffered[string](2)
	c.Send("a")
	c.Close()

	var got []string
	for v := range c.Receive() {
		got = append(got, v)
	}
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("unexpected drain result: %v", got)
	}
}

func TestLatest_ConflatesToNewest(t *testing.T) {
	l := NewLatest[int]()
	l.Send(1)
	l.Send(2)
	l.Send(3)

	if got := <-l.Receive(); got != 3 {
		t.Errorf("expected newest value 3, got %d", got)
	}
	if l.Len() != 0 {
		t.Errorf("expected empty after receive, got %d", l.Len())
	}
}

func TestLatest_SendNeverBlocks(t *testing.T) {
	l := NewLatest[int]()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			l.Send(i)
		}
		close(done)
	}()
	<-done

	if got := <-l.Receive(); got != 999 {
		t.Errorf("expected last value 999, got %d", got)
	}
}

var (
	_ Channel[int] = (*Buffered[int])(nil)
	_ Channel[int] = (*Latest[int])(nil)
)
