package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinner_StopIsNotCancellation(t *testing.T) {
	s := newSpinner("searching...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("Cancelled() after Stop() = true, want false")
	}
}

func TestSpinner_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "searching...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Cancelled() after context cancel = false, want true")
	}
}

func TestSpinner_ContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "searching...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Cancelled() after context timeout = false, want true")
	}
}

func TestSpinner_StopIdempotent(t *testing.T) {
	s := newSpinner("searching...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinner_StopWithMessages(t *testing.T) {
	s := newSpinner("searching...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("done")

	s = newSpinner("searching...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("failed")
}
