package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_BurstThenDeny(t *testing.T) {
	t.Parallel()

	l := New(3, 0.001) // negligible refill during the test
	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("request %d denied within burst", i)
		}
	}
	if l.Allow() {
		t.Error("request beyond burst was allowed")
	}
}

func TestLimiter_Refill(t *testing.T) {
	t.Parallel()

	l := New(1, 50) // refills fast enough to observe
	if !l.Allow() {
		t.Fatal("first request denied")
	}
	if l.Allow() {
		t.Fatal("second immediate request allowed")
	}

	time.Sleep(50 * time.Millisecond)
	if !l.Allow() {
		t.Error("request denied after refill window")
	}
}

func TestLimiter_IsFullAndReset(t *testing.T) {
	t.Parallel()

	l := New(2, 0.001)
	if !l.IsFull() {
		t.Error("fresh bucket not full")
	}
	l.Allow()
	if l.IsFull() {
		t.Error("bucket full after consuming a token")
	}
	l.Reset()
	if !l.IsFull() {
		t.Error("bucket not full after Reset")
	}
}

func TestLimiter_Available(t *testing.T) {
	t.Parallel()

	l := New(5, 0.001)
	l.Allow()
	l.Allow()
	if got := l.Available(); got < 2.9 || got > 3.1 {
		t.Errorf("Available() = %f, want about 3", got)
	}
}
