// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/internal/staging/primitives"
	"github.com/warthog-network/node/peer"
	"github.com/warthog-network/node/wire"
)

// blockRange is one still-outstanding or already-served body range
// within the target headerchain (spec §4.2 BlockDownload "schedule
// block-body requests in ranges of up to 100 blocks").
type blockRange struct {
	start, length uint32
	assignedTo    peer.ConnectionId
	assigned      bool
	served        bool
}

// BlockDownload assembles block bodies for a target header range
// handed off by HeaderDownload, scheduling ranged requests across
// peers whose descriptor matches the target chain (spec §4.2
// BlockDownload sub-component).
type BlockDownload struct {
	descriptor  uint32
	startHeight primitives.Height
	headers     []primitives.Header // indexed from startHeight
	maxRange    int

	ranges []*blockRange
	bodies map[primitives.Height]primitives.Body
}

// NewTarget (re)initializes BlockDownload for a newly handed-off
// header range (spec §4.2 "A complete, PoW-verified header range...
// is handed off as a Headerchain to BlockDownload").
func NewTarget(descriptor uint32, startHeight primitives.Height, headers []primitives.Header, maxRange int) *BlockDownload {
	bd := &BlockDownload{
		descriptor:  descriptor,
		startHeight: startHeight,
		headers:     headers,
		maxRange:    maxRange,
		bodies:      make(map[primitives.Height]primitives.Body),
	}
	for offset := 0; offset < len(headers); offset += maxRange {
		length := maxRange
		if offset+length > len(headers) {
			length = len(headers) - offset
		}
		bd.ranges = append(bd.ranges, &blockRange{start: uint32(startHeight) + uint32(offset), length: uint32(length)})
	}
	return bd
}

// NextAssignment returns an unassigned range to hand to id (a peer
// whose claimed descriptor matches the target chain), or false if
// nothing remains to assign.
func (bd *BlockDownload) NextAssignment(id peer.ConnectionId) (wire.Selector, bool) {
	for _, r := range bd.ranges {
		if r.served || r.assigned {
			continue
		}
		r.assigned = true
		r.assignedTo = id
		return wire.Selector{Descriptor: bd.descriptor, StartHeight: r.start, Length: r.length}, true
	}
	return wire.Selector{}, false
}

// rangeAt finds the scheduled range starting at start.
func (bd *BlockDownload) rangeAt(start uint32) *blockRange {
	for _, r := range bd.ranges {
		if r.start == start {
			return r
		}
	}
	return nil
}

// HandleBodies records bodies returned for the range starting at
// start, verifying each against its header's Merkle root (spec §4.2
// "verify Merkle roots against the headers"). On mismatch, the range
// is reopened for reassignment and the height of the bad body is
// returned for the caller to offend the serving peer.
func (bd *BlockDownload) HandleBodies(id peer.ConnectionId, start uint32, bodies []primitives.Body, hash func([]byte) chainhash.Hash) (badHeight primitives.Height, ok bool) {
	r := bd.rangeAt(start)
	if r == nil || r.assignedTo != id {
		return 0, false
	}
	for i, body := range bodies {
		height := primitives.Height(start) + primitives.Height(i)
		idx := int(height - bd.startHeight)
		if idx < 0 || idx >= len(bd.headers) {
			continue
		}
		want := bd.headers[idx].MerkleRoot
		got := body.MerkleRoot(hash)
		if want != got {
			r.assigned = false
			r.served = false
			return height, false
		}
		bd.bodies[height] = body
	}
	r.served = true
	return 0, true
}

// Reschedule reopens the range that was assigned to id without having
// completed (e.g. on timeout or disconnect), so another peer can serve
// it (spec §4.2 "that portion is rescheduled").
func (bd *BlockDownload) Reschedule(id peer.ConnectionId) {
	for _, r := range bd.ranges {
		if r.assignedTo == id && !r.served {
			r.assigned = false
		}
	}
}

// AssembledThrough returns the contiguous run of blocks available
// starting at bd.startHeight, and whether every scheduled range has
// been served.
func (bd *BlockDownload) AssembledThrough() ([]primitives.Block, bool) {
	complete := true
	var out []primitives.Block
	for height := bd.startHeight; ; height++ {
		idx := int(height - bd.startHeight)
		if idx >= len(bd.headers) {
			break
		}
		body, ok := bd.bodies[height]
		if !ok {
			complete = false
			break
		}
		out = append(out, primitives.Block{
			Height: primitives.MustNonzeroHeight(height),
			Header: bd.headers[idx],
			Body:   body,
		})
	}
	return out, complete
}

// Done reports whether every scheduled range has been served.
func (bd *BlockDownload) Done() bool {
	for _, r := range bd.ranges {
		if !r.served {
			return false
		}
	}
	return true
}
