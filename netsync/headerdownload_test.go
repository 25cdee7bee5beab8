// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"testing"

	"github.com/warthog-network/node/internal/staging/primitives"
	"github.com/warthog-network/node/peer"
)

func header(nonce uint32) primitives.Header {
	return primitives.Header{Nonce: nonce}
}

// TestProbeBinarySearchFindsForkHeight exercises the fork-height
// probe described in spec §4.2 Probing: our tip is 10, the peer's
// chain diverges at height 6, and successive probe replies should
// narrow the search to exactly that height.
func TestProbeBinarySearchFindsForkHeight(t *testing.T) {
	hd := NewHeaderDownload(100)
	hd.Register(1, peer.DescriptedChainState{Descriptor: 1, Length: 20}, 10)

	ours := map[primitives.Height]primitives.Header{}
	theirs := map[primitives.Height]primitives.Header{}
	for h := primitives.Height(1); h <= 10; h++ {
		ours[h] = header(uint32(h))
		if h < 6 {
			theirs[h] = ours[h]
		} else {
			theirs[h] = header(uint32(h) + 1000)
		}
	}

	for {
		_, probeHeight, ok := hd.NextProbe(1)
		if !ok {
			break
		}
		our, weHave := ours[probeHeight]
		their := theirs[probeHeight]
		if err := hd.HandleProbeReply(1, probeHeight, their, our, weHave); err != nil {
			t.Fatalf("HandleProbeReply: %v", err)
		}
	}

	if hd.StartHeight() != 6 {
		t.Fatalf("localized fork height = %d, want 6", hd.StartHeight())
	}
}

func TestElectLeadersPicksHighestWorksum(t *testing.T) {
	hd := NewHeaderDownload(100)
	for i, ws := range []int64{1, 5, 3, 2} {
		id := peer.ConnectionId(i + 1)
		hd.Register(id, peer.DescriptedChainState{Descriptor: 1, Length: 100}, 0)
		c := hd.candidates[id]
		c.probe.done = true
		c.probe.lo = 0
		for n := int64(0); n < ws; n++ {
			c.chain.Worksum = c.chain.Worksum.AddHeader(primitives.GenesisV1(0))
		}
	}
	leaders := hd.ElectLeaders()
	if len(leaders) != maxLeaders {
		t.Fatalf("got %d leaders, want %d", len(leaders), maxLeaders)
	}
	// peer 2 (worksum contributions=5) must be a leader.
	found := false
	for _, id := range leaders {
		if id == 2 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected highest-worksum peer (id 2) to be elected leader")
	}
}

func TestHandleBatchReplyDetectsBadMismatch(t *testing.T) {
	hd := NewHeaderDownload(100)
	hd.Register(1, peer.DescriptedChainState{Descriptor: 1, Length: 10}, 0)
	hd.candidates[1].probe.done = true
	hd.candidates[1].isLeader = true

	if err := hd.HandleBatchReply(1, 1, []primitives.Header{header(1), header(2)}); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	// Same leader now reports a different header at height 1: an
	// internal inconsistency the leader itself introduced.
	if err := hd.HandleBatchReply(1, 1, []primitives.Header{header(99)}); err == nil {
		t.Fatal("expected mismatch error for contradicting header at already-assembled height")
	}
}
