// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package connmgr implements the outbound-reconnect policy over
// verified, unverified-failed, and unverified-new peer endpoints (spec
// §2 "The connection scheduler", §4.4 ConnectionSchedule), ported
// verbatim from the original's connection_schedule.cpp backoff timing
// (spec §4 SUPPLEMENTED FEATURES).
package connmgr

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// ConnectionState is the terminal state an outbound connection attempt
// ended in, as reported by TransportManager (spec §4.4 backoff
// policy's three listed states).
type ConnectionState int

const (
	NotConnected ConnectionState = iota
	ConnectedUninitialized
	ConnectedInitialized
)

// Bucket names the schedule's three disjoint endpoint pools (spec
// §4.4).
type Bucket int

const (
	Verified Bucket = iota
	UnverifiedFailed
	UnverifiedNew
)

// ReconnectContext is everything update_timer/outbound_connected_ended
// in the original needs to decide the next backoff (spec §4.4 Backoff
// policy).
type ReconnectContext struct {
	ConnectionState ConnectionState
	Verified        bool
	Pinned          bool
	PrevWait        time.Duration
}

// entry is one scheduled endpoint.
type entry struct {
	address   string
	source    string
	pinned    bool
	pending   bool
	connected int
	log       ConnectionLog
	nextTry   time.Time
}

func (e *entry) outboundConnectionEnded(now time.Time, c ReconnectContext) time.Time {
	e.pending = false
	if c.ConnectionState == NotConnected {
		e.log.LogFailure()
	} else {
		if e.connected > 0 {
			e.connected--
		}
		if c.ConnectionState == ConnectedUninitialized {
			e.log.LogFailure()
		}
	}
	return e.updateTimer(now, c)
}

// updateTimer applies the §4.4/§4 backoff policy verbatim:
//   - success, verified, no recent failures: recheck in 5 minutes.
//   - first failure after a prior success: 1s if verified/pinned, else 30s.
//   - subsequent failures: double the previous wait, capped at 20s
//     (pinned) or 30 minutes (all other entries).
func (e *entry) updateTimer(now time.Time, c ReconnectContext) time.Time {
	consecutiveFailures := e.log.ConsecutiveFailures()
	var wait time.Duration
	switch {
	case consecutiveFailures == 0 && c.Verified:
		wait = 5 * time.Minute
	case consecutiveFailures == 1:
		if c.Verified || c.Pinned {
			wait = time.Second
		} else {
			wait = 30 * time.Second
		}
	default:
		d := c.PrevWait
		if d < time.Second {
			d = time.Second
		} else {
			d *= 2
		}
		if c.Pinned {
			wait = minDuration(d, 20*time.Second)
		} else {
			wait = minDuration(d, 30*time.Minute)
		}
	}
	e.nextTry = now.Add(wait)
	return e.nextTry
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// ConnectionSchedule maintains the three buckets and decides which
// endpoints are due for an outbound attempt.
type ConnectionSchedule struct {
	mu      sync.Mutex
	pinned  map[string]bool
	entries map[string]*entry // address -> entry, regardless of bucket
}

// New constructs a schedule pre-seeded with the pinned `connect` list
// (spec §6.4), which is always kept in the schedule and favored.
func New(pinnedAddrs []string) *ConnectionSchedule {
	cs := &ConnectionSchedule{
		pinned:  make(map[string]bool, len(pinnedAddrs)),
		entries: make(map[string]*entry),
	}
	for _, a := range pinnedAddrs {
		cs.pinned[a] = true
		cs.entries[a] = &entry{address: a, pinned: true, log: NewConnectionLog()}
	}
	return cs
}

// AddCandidate inserts addr (learned from Pong gossip, spec §4.2) into
// the schedule if not already known.
func (cs *ConnectionSchedule) AddCandidate(addr, source string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.entries[addr]; ok {
		return
	}
	cs.entries[addr] = &entry{address: addr, source: source, log: NewConnectionLog()}
}

// bucketOf classifies an entry into VERIFIED / UNVERIFIED_FAILED /
// UNVERIFIED_NEW based on its connection log (spec §4.4).
func bucketOf(e *entry) Bucket {
	if e.connected > 0 || (!e.log.LastConnectionFailed() && e.log.ConsecutiveFailures() == 0 && e.log.raw() != 0) {
		return Verified
	}
	if e.log.raw() == 0 {
		return UnverifiedNew
	}
	return UnverifiedFailed
}

// Due returns up to max addresses whose next-attempt timer has
// expired, pinned entries first.
func (cs *ConnectionSchedule) Due(now time.Time, max int) []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	var due []string
	for addr, e := range cs.entries {
		if e.pending {
			continue
		}
		if e.nextTry.IsZero() || !e.nextTry.After(now) {
			due = append(due, addr)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		pi, pj := cs.entries[due[i]].pinned, cs.entries[due[j]].pinned
		if pi != pj {
			return pi
		}
		return due[i] < due[j]
	})
	if max > 0 && len(due) > max {
		due = due[:max]
	}
	for _, addr := range due {
		cs.entries[addr].pending = true
	}
	return due
}

// ConnectionEstablished records a successful handshake (spec §4.4
// "we have successfully handshaked at least once").
func (cs *ConnectionSchedule) ConnectionEstablished(addr string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	e, ok := cs.entries[addr]
	if !ok {
		return
	}
	e.pending = false
	e.connected++
	e.log.LogSuccess()
}

// OutboundConnectionEnded applies the backoff policy to addr following
// a completed (possibly failed) outbound attempt.
func (cs *ConnectionSchedule) OutboundConnectionEnded(addr string, state ConnectionState) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	e, ok := cs.entries[addr]
	if !ok {
		return
	}
	verified := bucketOf(e) == Verified
	prevWait := time.Until(e.nextTry)
	if prevWait < 0 {
		prevWait = 0
	}
	e.outboundConnectionEnded(time.Now(), ReconnectContext{
		ConnectionState: state,
		Verified:        verified,
		Pinned:          e.pinned,
		PrevWait:        prevWait,
	})
}

// Sample returns a random, bucket-balanced sample of up to n VERIFIED
// addresses, the peer-sample Pong replies with (spec §4.4).
func (cs *ConnectionSchedule) Sample(n int) []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	var verified []string
	for addr, e := range cs.entries {
		if bucketOf(e) == Verified {
			verified = append(verified, addr)
		}
	}
	rand.Shuffle(len(verified), func(i, j int) { verified[i], verified[j] = verified[j], verified[i] })
	if n > len(verified) {
		n = len(verified)
	}
	return verified[:n]
}

// Bucket reports which bucket addr currently falls in, for tests and
// diagnostics.
func (cs *ConnectionSchedule) Bucket(addr string) (Bucket, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	e, ok := cs.entries[addr]
	if !ok {
		return 0, false
	}
	return bucketOf(e), true
}
