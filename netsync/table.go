// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"time"

	"github.com/warthog-network/node/peer"
)

// connTable is the Orchestrator's connection table: a map from
// ConnectionId to PeerState plus the per-source-IP admission policy
// spec §4.2 describes ("at most K=3 connections per source IP; on
// over-capacity, evict the oldest non-pinned connection").
type connTable struct {
	peers    map[peer.ConnectionId]*peer.State
	byIP     map[string][]peer.ConnectionId
	ipByID   map[peer.ConnectionId]string
	pinned   map[peer.ConnectionId]bool
	maxPerIP int
}

func newConnTable(maxPerIP int) *connTable {
	return &connTable{
		peers:    make(map[peer.ConnectionId]*peer.State),
		byIP:     make(map[string][]peer.ConnectionId),
		ipByID:   make(map[peer.ConnectionId]string),
		pinned:   make(map[peer.ConnectionId]bool),
		maxPerIP: maxPerIP,
	}
}

// admissionResult reports what Insert decided: the connection was
// admitted outright, admitted after evicting another, or rejected
// because every existing connection from that IP is pinned.
type admissionResult int

const (
	admitted admissionResult = iota
	admittedAfterEviction
	rejected
)

// Insert applies the admission policy for a new connection from ip:
// if fewer than maxPerIP connections share ip, admit outright;
// otherwise evict the oldest non-pinned connection from that IP to
// make room, or reject if all of them are pinned (spec §4.2).
func (t *connTable) Insert(s *peer.State, ip string, pinned bool) (admissionResult, peer.ConnectionId) {
	existing := t.byIP[ip]
	if len(existing) < t.maxPerIP {
		t.insertUnconditional(s, ip, pinned)
		return admitted, 0
	}

	var oldestID peer.ConnectionId
	var oldestAt time.Time
	found := false
	for _, id := range existing {
		if t.pinned[id] {
			continue
		}
		p := t.peers[id]
		if !found || p.ConnectedSince.Before(oldestAt) {
			oldestID, oldestAt, found = id, p.ConnectedSince, true
		}
	}
	if !found {
		return rejected, 0
	}
	t.remove(oldestID)
	t.insertUnconditional(s, ip, pinned)
	return admittedAfterEviction, oldestID
}

func (t *connTable) insertUnconditional(s *peer.State, ip string, pinned bool) {
	t.peers[s.Id] = s
	t.byIP[ip] = append(t.byIP[ip], s.Id)
	t.ipByID[s.Id] = ip
	if pinned {
		t.pinned[s.Id] = true
	}
}

// remove retires a connection from the table (spec §9 "a single
// Closed(id) message retires the id from every other actor's table").
func (t *connTable) remove(id peer.ConnectionId) {
	if _, ok := t.peers[id]; !ok {
		return
	}
	ip := t.ipByID[id]
	delete(t.peers, id)
	delete(t.pinned, id)
	delete(t.ipByID, id)
	list := t.byIP[ip]
	for i, other := range list {
		if other == id {
			t.byIP[ip] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// Remove retires id from the table (exported for the Orchestrator's
// Closed-event handler).
func (t *connTable) Remove(id peer.ConnectionId) { t.remove(id) }

// Get returns the PeerState for id, if present.
func (t *connTable) Get(id peer.ConnectionId) (*peer.State, bool) {
	p, ok := t.peers[id]
	return p, ok
}

// CountPerIP reports how many connections currently come from ip
// (spec §8 invariant 10).
func (t *connTable) CountPerIP(ip string) int {
	return len(t.byIP[ip])
}

// Each calls fn for every connected peer, in no particular order.
func (t *connTable) Each(fn func(*peer.State)) {
	for _, p := range t.peers {
		fn(p)
	}
}

// Len reports the total number of connections in the table.
func (t *connTable) Len() int { return len(t.peers) }
