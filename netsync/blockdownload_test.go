// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"testing"

	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/internal/staging/primitives"
	"github.com/warthog-network/node/peer"
)

func bodyWithRoot(seed byte) primitives.Body {
	return primitives.Body{RandomSeed: [4]byte{seed, 0, 0, 0}}
}

func TestBlockDownloadSchedulesRangesOf100(t *testing.T) {
	headers := make([]primitives.Header, 150)
	for i := range headers {
		body := bodyWithRoot(byte(i))
		headers[i] = primitives.Header{MerkleRoot: body.MerkleRoot(chainhash.HashFunc)}
	}
	bd := NewTarget(1, 51, headers, 100)
	if len(bd.ranges) != 2 {
		t.Fatalf("got %d ranges, want 2 (100 + 50)", len(bd.ranges))
	}
	if bd.ranges[0].length != 100 || bd.ranges[1].length != 50 {
		t.Fatalf("range lengths = %d,%d, want 100,50", bd.ranges[0].length, bd.ranges[1].length)
	}
}

func TestBlockDownloadAssemblesInOrder(t *testing.T) {
	headers := make([]primitives.Header, 3)
	bodies := make([]primitives.Body, 3)
	for i := range headers {
		bodies[i] = bodyWithRoot(byte(i + 1))
		headers[i] = primitives.Header{MerkleRoot: bodies[i].MerkleRoot(chainhash.HashFunc)}
	}
	bd := NewTarget(1, 1, headers, 100)

	sel, ok := bd.NextAssignment(7)
	if !ok || sel.StartHeight != 1 || sel.Length != 3 {
		t.Fatalf("NextAssignment = %+v, ok=%v", sel, ok)
	}
	if _, done := bd.AssembledThrough(); done {
		t.Fatal("should not be complete before bodies arrive")
	}

	if _, ok := bd.HandleBodies(7, 1, bodies, chainhash.HashFunc); !ok {
		t.Fatal("HandleBodies rejected a correct body set")
	}
	blocks, done := bd.AssembledThrough()
	if !done || len(blocks) != 3 {
		t.Fatalf("AssembledThrough = %d blocks, done=%v, want 3,true", len(blocks), done)
	}
	if !bd.Done() {
		t.Fatal("Done() should be true once every range is served")
	}
}

func TestBlockDownloadRejectsBadMerkleRoot(t *testing.T) {
	headers := []primitives.Header{{MerkleRoot: chainhash.Hash{0xFF}}}
	bodies := []primitives.Body{bodyWithRoot(1)}
	bd := NewTarget(1, 1, headers, 100)
	bd.NextAssignment(7)

	badHeight, ok := bd.HandleBodies(7, 1, bodies, chainhash.HashFunc)
	if ok {
		t.Fatal("expected bad-merkle-root rejection")
	}
	if badHeight != 1 {
		t.Fatalf("badHeight = %d, want 1", badHeight)
	}
	// Range must be reopened for reassignment (spec §4.2 "rescheduled").
	sel, ok := bd.NextAssignment(8)
	if !ok || sel.StartHeight != 1 {
		t.Fatal("range was not reopened after a bad body")
	}
}

func TestBlockDownloadReschedule(t *testing.T) {
	headers := make([]primitives.Header, 1)
	bd := NewTarget(1, 1, headers, 100)
	bd.NextAssignment(peer.ConnectionId(5))
	bd.Reschedule(5)
	_, ok := bd.NextAssignment(6)
	if !ok {
		t.Fatal("expected range to be reassignable after Reschedule")
	}
}
