package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer written by the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsMessage(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(context.Background(), &buf, "Allocating registers...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Allocating registers...") {
		t.Errorf("output %q should contain the message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output %q should end by clearing the line", out)
	}
}

func TestSpinnerFollowsHooks(t *testing.T) {
	ctx := context.Background()
	s := newSpinner(ctx, io.Discard, "Allocating registers...")

	tests := []struct {
		name string
		hook func()
		want string
	}{
		{"colored attempt keeps message", func() { s.OnAttempt(ctx, "run", 1, 3, true, 0) }, "Allocating registers..."},
		{"failed attempt", func() { s.OnAttempt(ctx, "run", 1, 3, false, 0) }, "Attempt 1 failed on 3 nodes..."},
		{"spill", func() { s.OnSpill(ctx, "run", "a", 0.5) }, "Spilled a (cost 0.5), retrying..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.hook()
			s.mu.Lock()
			got := s.message
			s.mu.Unlock()
			if got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpinnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, io.Discard, "Allocating registers...")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner should stop when its context is cancelled")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), io.Discard, "Allocating registers...")
	s.Start()

	s.Stop()
	s.Stop()
}
