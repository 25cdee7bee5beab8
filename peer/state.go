// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer holds PeerState, the per-connection record the
// Orchestrator keeps for every handshaked connection (spec §3
// PeerState). A PeerState is created on successful handshake and
// destroyed on disconnect; it never outlives its underlying socket
// (spec §3 lifecycle), which TransportManager alone owns (spec §5).
package peer

import (
	"time"

	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/internal/staging/primitives"
)

// ConnectionId opaquely identifies a connection across actors. Only
// TransportManager resolves it to an actual socket (spec §9 "owning
// handle per actor").
type ConnectionId uint64

// DescriptedChainState identifies a specific chain instance by its
// fork-incrementing descriptor, length, worksum, and grid (spec §3
// "Descripted chain state").
type DescriptedChainState struct {
	Descriptor uint32
	Length     primitives.Height
	Worksum    primitives.Worksum
	Grid       primitives.Grid
}

// RequestKind enumerates the three kinds of outstanding request a peer
// may have at once (spec §4.2 "Only one outstanding request per peer
// of each of three kinds").
type RequestKind int

const (
	RequestHeaderBatch RequestKind = iota
	RequestBlockRange
	RequestProbe
)

// OutstandingRequest tracks one in-flight request to a peer: its
// nonce (echoed by the reply, spec §4.2), the deadline a timer-wheel
// entry enforces (spec §5 Cancellation and timeouts), and enough
// context to resume the sync decision once answered.
type OutstandingRequest struct {
	Kind     RequestKind
	Nonce    uint64
	SentAt   time.Time
	Deadline time.Time
}

// PingState tracks the ping/pong keepalive schedule (spec §4.2 Ping
// scheduling: 10s sleep after Pong, 60s timeout if none arrives).
type PingState struct {
	OutstandingNonce uint64
	Sent             bool
	SentAt           time.Time
	NextPingAt       time.Time
}

// RateLimit is a simple token bucket, used for both the Ping rate
// limit (~1/8s) and TxNotify flood suppression (spec §4.2 Rate
// limits).
type RateLimit struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// NewRateLimit creates a bucket with the given capacity and refill
// rate (tokens/second), starting full.
func NewRateLimit(capacity, refillRate float64) RateLimit {
	return RateLimit{tokens: capacity, capacity: capacity, refillRate: refillRate, last: time.Now()}
}

// Allow reports whether one token is available, consuming it if so.
func (r *RateLimit) Allow(now time.Time) bool {
	elapsed := now.Sub(r.last).Seconds()
	if elapsed > 0 {
		r.tokens += elapsed * r.refillRate
		if r.tokens > r.capacity {
			r.tokens = r.capacity
		}
		r.last = now
	}
	if r.tokens < 1 {
		return false
	}
	r.tokens--
	return true
}

// SnapshotPriority tracks both sides' knowledge of the leader-signed
// snapshot priority (spec §3 "snapshotPriority{ack,theirs}"): what we
// believe the peer has acknowledged, and the highest priority they
// have announced to us.
type SnapshotPriority struct {
	Ack    uint64
	Theirs uint64
}

// State is the full per-connection record spec §3 describes.
type State struct {
	Id              ConnectionId
	Inbound         bool
	PeerAddr        string
	ClaimedVersion  uint32
	ClaimedPort     uint16
	PeerChain       DescriptedChainState
	Snapshot        SnapshotPriority
	Outstanding     map[RequestKind]OutstandingRequest
	Ping            PingState
	PingLimit       RateLimit
	TxNotifyLimit   RateLimit
	Initialized     bool
	PinHeight       primitives.Height
	PinHash         chainhash.Hash
	ConnectedSince  time.Time
}

// New constructs a fresh PeerState for a just-accepted or
// just-connected socket, before the Init handshake message arrives.
func New(id ConnectionId, inbound bool, addr string) *State {
	return &State{
		Id:             id,
		Inbound:        inbound,
		PeerAddr:       addr,
		Outstanding:    make(map[RequestKind]OutstandingRequest),
		PingLimit:      NewRateLimit(1, 1.0/8),
		TxNotifyLimit:  NewRateLimit(8, 1),
		ConnectedSince: time.Now(),
	}
}

// HasOutstanding reports whether a request of kind is already in
// flight (spec §4.2 one-outstanding-request-per-kind rule).
func (s *State) HasOutstanding(kind RequestKind) bool {
	_, ok := s.Outstanding[kind]
	return ok
}

// SetOutstanding records a newly issued request.
func (s *State) SetOutstanding(kind RequestKind, nonce uint64, timeout time.Duration) {
	now := time.Now()
	s.Outstanding[kind] = OutstandingRequest{Kind: kind, Nonce: nonce, SentAt: now, Deadline: now.Add(timeout)}
}

// ClearOutstanding removes the in-flight request of kind, returning it
// and whether the given nonce matched (an unrequested/stale-nonce
// reply is an offense per spec §4.2).
func (s *State) ClearOutstanding(kind RequestKind, nonce uint64) (OutstandingRequest, bool) {
	req, ok := s.Outstanding[kind]
	if !ok || req.Nonce != nonce {
		return OutstandingRequest{}, false
	}
	delete(s.Outstanding, kind)
	return req, true
}

// OnConsensusAppend extends PeerChain by one header the way the
// Orchestrator's publish path does for every initialized peer (spec
// §4.2 "update every peerChain with on_consensus_*").
func (s *State) OnConsensusAppend(h primitives.Header, worksumDelta primitives.Worksum, gridDelta primitives.Grid) {
	s.PeerChain.Length++
	s.PeerChain.Worksum = s.PeerChain.Worksum.Add(worksumDelta)
	s.PeerChain.Grid = append(s.PeerChain.Grid, gridDelta...)
}

// OnConsensusFork shrinks PeerChain to forkHeight-1 and extends with
// the new suffix (spec message Fork handling).
func (s *State) OnConsensusFork(forkHeight primitives.Height, worksum primitives.Worksum, gridSuffix primitives.Grid) {
	s.PeerChain.Descriptor++
	s.PeerChain.Length = forkHeight
	s.PeerChain.Worksum = worksum
	batchBoundary := int(forkHeight) / primitives.MaxBatchSize
	s.PeerChain.Grid = s.PeerChain.Grid.Truncate(batchBoundary)
	s.PeerChain.Grid = append(s.PeerChain.Grid, gridSuffix...)
}
