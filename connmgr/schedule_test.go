package connmgr

import (
	"testing"
	"time"
)

func TestConnectionLogConsecutiveFailures(t *testing.T) {
	l := NewConnectionLog()
	if l.ConsecutiveFailures() != 0 {
		t.Fatalf("fresh log must have zero consecutive failures, got %d", l.ConsecutiveFailures())
	}
	l.LogFailure()
	if l.ConsecutiveFailures() != 1 {
		t.Fatalf("expected 1 consecutive failure, got %d", l.ConsecutiveFailures())
	}
	l.LogFailure()
	if l.ConsecutiveFailures() != 2 {
		t.Fatalf("expected 2 consecutive failures, got %d", l.ConsecutiveFailures())
	}
	l.LogSuccess()
	if l.ConsecutiveFailures() != 0 {
		t.Fatalf("success must reset consecutive failures, got %d", l.ConsecutiveFailures())
	}
}

func TestPinnedPeersAlwaysInSchedule(t *testing.T) {
	cs := New([]string{"192.0.2.10:9186"})
	b, ok := cs.Bucket("192.0.2.10:9186")
	if !ok {
		t.Fatal("pinned peer must be present in the schedule")
	}
	_ = b
}

func TestBackoffDoublesAndCapsForUnverified(t *testing.T) {
	cs := New(nil)
	cs.AddCandidate("198.51.100.20:9186", "pong")
	cs.OutboundConnectionEnded("198.51.100.20:9186", NotConnected)
	cs.OutboundConnectionEnded("198.51.100.20:9186", NotConnected)
	e := cs.entries["198.51.100.20:9186"]
	if time.Until(e.nextTry) > 31*time.Minute {
		t.Fatalf("unverified backoff must cap at 30 minutes, got wait until %v", e.nextTry)
	}
}
