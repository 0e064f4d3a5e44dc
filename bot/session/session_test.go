package session

import (
	"sync"
	"testing"
	"time"
)

func TestSessionStartsIdle(t *testing.T) {
	s := New(1)
	if s.Mode() != ModeIdle {
		t.Fatalf("mode = %s, want idle", s.Mode())
	}
	if s.InProgress() {
		t.Fatal("fresh session must not be in progress")
	}
}

func TestSessionSetAndReset(t *testing.T) {
	s := New(1)
	s.Set(ModeAwaitingBroadcast)
	if !s.InProgress() || s.Mode() != ModeAwaitingBroadcast {
		t.Fatalf("mode = %s", s.Mode())
	}
	s.Reset()
	if s.Mode() != ModeIdle {
		t.Fatalf("mode after reset = %s", s.Mode())
	}
}

func TestSessionIsOperator(t *testing.T) {
	s := New(99)
	if !s.IsOperator(99) || s.IsOperator(100) {
		t.Fatal("operator identity check failed")
	}
}

func TestSessionDoSerializesInputs(t *testing.T) {
	s := New(1)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Do(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	var order []int
	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		_ = s.Do(func() error {
			mu.Lock()
			order = append(order, 2)
			mu.Unlock()
			return nil
		})
		close(done)
	}()

	// The queued input must not run while the first is in flight.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	if len(order) != 0 {
		mu.Unlock()
		t.Fatal("second input ran before the first completed")
	}
	order = append(order, 1)
	mu.Unlock()

	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order = %v", order)
	}
}
