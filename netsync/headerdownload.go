// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"github.com/warthog-network/node/chainerr"
	"github.com/warthog-network/node/internal/staging/primitives"
	"github.com/warthog-network/node/peer"
	"github.com/warthog-network/node/wire"
)

// maxLeaders bounds how many peers HeaderDownload pulls headers from
// in parallel; the rest are verifiers that cross-check (spec §4.2
// "Leader election picks up to maxLeaders=3 peers").
const maxLeaders = 3

// probeState tracks one peer's binary search for the height at which
// its claimed chain diverges from ours (spec §4.2 Probing: "we probe
// at our tip height; if their header differs from ours, we binary-
// search (probe at midpoints) to find the fork height").
type probeState struct {
	lo, hi primitives.Height // [lo, hi]: lo known to agree, hi known (or assumed) to differ
	done   bool
	forkAt primitives.Height
}

// candidate is one peer HeaderDownload is tracking because it claims
// more work than our consensus chain.
type candidate struct {
	id        peer.ConnectionId
	chain     peer.DescriptedChainState
	probe     probeState
	isLeader  bool
	nextBatch primitives.Height // next batch-start height to request (leaders only)

	// lastProbeHeight/lastBatchStart record what the most recent
	// NextProbe/NextBatchRequest call for this candidate handed out,
	// so the Orchestrator can recover the request context a reply's
	// nonce alone doesn't carry.
	lastProbeHeight primitives.Height
	lastBatchStart  primitives.Height
}

// HeaderDownload assembles a complete, PoW-verified header range from
// one or more peers claiming more cumulative work than our consensus
// chain (spec §4.2 HeaderDownload sub-component).
type HeaderDownload struct {
	maxHeadersPerBatch int

	candidates map[peer.ConnectionId]*candidate
	leaders    []peer.ConnectionId

	// assembled holds headers collected from leaders, keyed by height,
	// once probing has established a common ancestor.
	assembled map[primitives.Height]primitives.Header
	// verifierCopies holds the same range as reported by non-leader
	// verifiers, for cross-checking (spec §4.2 "A header returned by a
	// leader that a verifier later contradicts at the same height
	// constitutes BAD_MATCH").
	verifierCopies map[peer.ConnectionId]map[primitives.Height]primitives.Header

	startHeight primitives.Height // first height the assembled range begins at
}

// NewHeaderDownload constructs an empty HeaderDownload.
func NewHeaderDownload(maxHeadersPerBatch int) *HeaderDownload {
	return &HeaderDownload{
		maxHeadersPerBatch: maxHeadersPerBatch,
		candidates:         make(map[peer.ConnectionId]*candidate),
		assembled:          make(map[primitives.Height]primitives.Header),
		verifierCopies:     make(map[peer.ConnectionId]map[primitives.Height]primitives.Header),
	}
}

// Register adds or updates a peer claiming chain as worth downloading
// from (spec §4.2 "Init... Register peer with HeaderDownload").
func (h *HeaderDownload) Register(id peer.ConnectionId, chain peer.DescriptedChainState, ourTip primitives.Height) {
	c, ok := h.candidates[id]
	if !ok {
		c = &candidate{id: id}
		h.candidates[id] = c
	}
	c.chain = chain
	c.probe = probeState{lo: 0, hi: ourTip}
}

// Unregister drops id, e.g. on disconnect (spec §9 per-connection
// table retirement).
func (h *HeaderDownload) Unregister(id peer.ConnectionId) {
	delete(h.candidates, id)
	delete(h.verifierCopies, id)
	for i, lid := range h.leaders {
		if lid == id {
			h.leaders = append(h.leaders[:i], h.leaders[i+1:]...)
			break
		}
	}
}

// NextProbe returns the (descriptor, height) a not-yet-localized
// candidate should be probed at next, continuing its binary search, or
// false if id needs no further probing (either already localized or
// unknown).
func (h *HeaderDownload) NextProbe(id peer.ConnectionId) (descriptor uint32, height primitives.Height, ok bool) {
	c, exists := h.candidates[id]
	if !exists || c.probe.done {
		return 0, 0, false
	}
	mid := (c.probe.lo + c.probe.hi + 1) / 2
	c.lastProbeHeight = mid
	return c.chain.Descriptor, mid, true
}

// pendingProbeHeight returns the height the most recent NextProbe call
// for id asked about, for use once its reply arrives.
func (h *HeaderDownload) pendingProbeHeight(id peer.ConnectionId) (primitives.Height, bool) {
	c, ok := h.candidates[id]
	if !ok {
		return 0, false
	}
	return c.lastProbeHeight, true
}

// lastRequested returns the selector the most recent NextBatchRequest
// call for id handed out, for use once its reply arrives.
func (h *HeaderDownload) lastRequested(id peer.ConnectionId) (wire.Selector, bool) {
	c, ok := h.candidates[id]
	if !ok || c.lastBatchStart == 0 {
		return wire.Selector{}, false
	}
	return wire.Selector{Descriptor: c.chain.Descriptor, StartHeight: uint32(c.lastBatchStart)}, true
}

// HandleProbeReply narrows id's binary search using the peer's header
// at the requested height compared to our own (spec §4.2 ProbeRep
// handling, "Dispatch to HeaderDownload and BlockDownload"). ourHeader
// is our current header at the probed height, if we have one.
func (h *HeaderDownload) HandleProbeReply(id peer.ConnectionId, probedHeight primitives.Height, theirHeader, ourHeader primitives.Header, weHaveOurs bool) error {
	c, ok := h.candidates[id]
	if !ok {
		return chainerr.EProbeDescriptorMismatch
	}
	matches := weHaveOurs && headersEqual(theirHeader, ourHeader)
	if matches {
		if probedHeight > c.probe.lo {
			c.probe.lo = probedHeight
		}
	} else {
		if probedHeight < c.probe.hi || c.probe.hi == 0 {
			c.probe.hi = probedHeight
		}
	}
	if c.probe.hi <= c.probe.lo+1 {
		c.probe.done = true
		c.probe.forkAt = c.probe.lo + 1
		c.nextBatch = c.probe.forkAt
		if h.startHeight == 0 || c.probe.forkAt < h.startHeight {
			h.startHeight = c.probe.forkAt
		}
	}
	return nil
}

func headersEqual(a, b primitives.Header) bool {
	return a.Serialize() == b.Serialize()
}

// ElectLeaders promotes up to maxLeaders localized candidates (highest
// claimed worksum first) to leader status; the rest remain verifiers
// (spec §4.2 "the others are verifiers").
func (h *HeaderDownload) ElectLeaders() []peer.ConnectionId {
	h.leaders = h.leaders[:0]
	var localized []*candidate
	for _, c := range h.candidates {
		if c.probe.done {
			localized = append(localized, c)
		}
	}
	// Simple selection: highest worksum first, stable enough for a
	// bounded candidate set.
	for len(h.leaders) < maxLeaders && len(localized) > 0 {
		best := 0
		for i := 1; i < len(localized); i++ {
			if localized[i].chain.Worksum.Cmp(localized[best].chain.Worksum) > 0 {
				best = i
			}
		}
		localized[best].isLeader = true
		h.leaders = append(h.leaders, localized[best].id)
		localized = append(localized[:best], localized[best+1:]...)
	}
	return h.leaders
}

// NextBatchRequest returns the selector a leader should be asked for
// next, or false if id is not a leader or has nothing left to request
// within its claimed chain length.
func (h *HeaderDownload) NextBatchRequest(id peer.ConnectionId) (wire.Selector, bool) {
	c, ok := h.candidates[id]
	if !ok || !c.isLeader || !c.probe.done {
		return wire.Selector{}, false
	}
	if c.nextBatch > c.chain.Length {
		return wire.Selector{}, false
	}
	length := uint32(h.maxHeadersPerBatch)
	remaining := uint32(c.chain.Length-c.nextBatch) + 1
	if remaining < length {
		length = remaining
	}
	c.lastBatchStart = c.nextBatch
	return wire.Selector{Descriptor: c.chain.Descriptor, StartHeight: uint32(c.nextBatch), Length: length}, true
}

// HandleBatchReply folds a batch of headers returned by id into the
// assembled range. If id is a verifier rather than a leader, the
// headers are cross-checked against the leader's assembled copy
// instead of being merged in, returning EBadMatch if they disagree
// (spec §4.2 "BAD_MATCH").
func (h *HeaderDownload) HandleBatchReply(id peer.ConnectionId, startHeight primitives.Height, headers []primitives.Header) error {
	c, ok := h.candidates[id]
	if !ok {
		return chainerr.EUnrequested
	}
	if c.isLeader {
		for i, hd := range headers {
			height := startHeight + primitives.Height(i)
			if existing, present := h.assembled[height]; present && !headersEqual(existing, hd) {
				return chainerr.EBadMismatch
			}
			h.assembled[height] = hd
		}
		c.nextBatch = startHeight + primitives.Height(len(headers))
		return nil
	}

	copies := h.verifierCopies[id]
	if copies == nil {
		copies = make(map[primitives.Height]primitives.Header)
		h.verifierCopies[id] = copies
	}
	for i, hd := range headers {
		height := startHeight + primitives.Height(i)
		copies[height] = hd
		if leaderHeader, present := h.assembled[height]; present && !headersEqual(leaderHeader, hd) {
			return chainerr.EBadMatch
		}
	}
	return nil
}

// Range returns the contiguous header range assembled so far starting
// at h.startHeight (the probed common fork point across all
// candidates), and whether it currently reaches up to upTo.
func (h *HeaderDownload) Range(upTo primitives.Height) ([]primitives.Header, bool) {
	if h.startHeight == 0 {
		return nil, false
	}
	out := make([]primitives.Header, 0, int(upTo-h.startHeight+1))
	for height := h.startHeight; height <= upTo; height++ {
		hd, ok := h.assembled[height]
		if !ok {
			return out, false
		}
		out = append(out, hd)
	}
	return out, true
}

// StartHeight reports the lowest height the assembled range begins at
// (0 if no candidate has localized yet).
func (h *HeaderDownload) StartHeight() primitives.Height { return h.startHeight }
