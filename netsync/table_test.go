// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"testing"
	"time"

	"github.com/warthog-network/node/peer"
)

func newTestPeer(id peer.ConnectionId, addr string, age time.Duration) *peer.State {
	s := peer.New(id, true, addr)
	s.ConnectedSince = time.Now().Add(-age)
	return s
}

func TestConnTableCapPerIP(t *testing.T) {
	tbl := newConnTable(3)
	ip := "1.2.3.4"

	for i := 1; i <= 3; i++ {
		res, _ := tbl.Insert(newTestPeer(peer.ConnectionId(i), ip, time.Duration(4-i)*time.Minute), ip, false)
		if res != admitted {
			t.Fatalf("connection %d: expected admitted, got %v", i, res)
		}
	}
	if got := tbl.CountPerIP(ip); got != 3 {
		t.Fatalf("CountPerIP = %d, want 3", got)
	}

	// A fourth connection from the same IP must evict the oldest
	// non-pinned entry (spec §4.2 admission policy).
	res, evicted := tbl.Insert(newTestPeer(4, ip, 0), ip, false)
	if res != admittedAfterEviction {
		t.Fatalf("expected admittedAfterEviction, got %v", res)
	}
	if evicted != 1 {
		t.Fatalf("expected connection 1 (oldest) evicted, got %d", evicted)
	}
	if got := tbl.CountPerIP(ip); got != 3 {
		t.Fatalf("CountPerIP after eviction = %d, want 3 (invariant §8.10)", got)
	}
	if _, ok := tbl.Get(1); ok {
		t.Fatal("evicted connection 1 still present in table")
	}
}

func TestConnTableRejectsWhenAllPinned(t *testing.T) {
	tbl := newConnTable(2)
	ip := "5.6.7.8"
	tbl.Insert(newTestPeer(1, ip, time.Minute), ip, true)
	tbl.Insert(newTestPeer(2, ip, time.Second), ip, true)

	res, _ := tbl.Insert(newTestPeer(3, ip, 0), ip, false)
	if res != rejected {
		t.Fatalf("expected rejected when every existing connection is pinned, got %v", res)
	}
}

func TestConnTableRemove(t *testing.T) {
	tbl := newConnTable(3)
	ip := "9.9.9.9"
	tbl.Insert(newTestPeer(1, ip, 0), ip, false)
	tbl.Remove(1)
	if got := tbl.CountPerIP(ip); got != 0 {
		t.Fatalf("CountPerIP after remove = %d, want 0", got)
	}
	if _, ok := tbl.Get(1); ok {
		t.Fatal("removed connection still present")
	}
}
