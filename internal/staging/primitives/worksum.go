// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package primitives

import "github.com/warthog-network/node/math/uint256"

// Worksum is the 256-bit cumulative sum of per-block (1/target)
// contributions (spec §3). It totally orders candidate chains: the
// stage chain is promoted over consensus iff its Worksum is strictly
// greater (spec §4.1 stage_add).
type Worksum struct {
	total uint256.Uint256
}

// Zero is the worksum of an empty chain.
func Zero() Worksum { return Worksum{} }

// FromBytes interprets 32 big-endian bytes as a Worksum (spec §3
// "serialized as 32 bytes").
func FromBytes(b [32]byte) Worksum { return Worksum{total: uint256.FromBytes(b)} }

// Bytes serializes the worksum as 32 big-endian bytes.
func (w Worksum) Bytes() [32]byte { return w.total.Bytes() }

// blockWork returns a single block's contribution to the worksum: the
// number of hash attempts expected to find a hash compatible with
// target, i.e. floor((2^256-1) / (expanded(target)+1)), matching the
// standard difficulty->work conversion used throughout the original's
// worksum.cpp.
func blockWork(t Target) uint256.Uint256 {
	denom := t.expanded().Add(uint256.One())
	return uint256.Max().Div(denom)
}

// AddHeader folds header's target contribution into the worksum,
// returning the new total (ChainEngine calls this once per appended
// or staged block).
func (w Worksum) AddHeader(t Target) Worksum {
	return Worksum{total: w.total.Add(blockWork(t))}
}

// Add combines two worksums, used to fold a peer-announced increment
// into a locally tracked running total (e.g. PeerState.OnConsensusAppend).
func (w Worksum) Add(other Worksum) Worksum {
	return Worksum{total: w.total.Add(other.total)}
}

// Sub reverses AddHeader, used when rolling a chain back past blocks
// whose contribution must be removed (spec §4.1 apply_stage rollback).
func (w Worksum) Sub(t Target) Worksum {
	return Worksum{total: w.total.Sub(blockWork(t))}
}

// Cmp totally orders two worksums: -1, 0, 1.
func (w Worksum) Cmp(other Worksum) int { return w.total.Cmp(other.total) }

// GreaterThan reports whether w represents strictly more cumulative
// work than other (the stage-promotion test, spec §4.1).
func (w Worksum) GreaterThan(other Worksum) bool { return w.total.Cmp(other.total) > 0 }

// Float64 approximates the worksum for display (hashrate estimates,
// get_hashrate).
func (w Worksum) Float64() float64 { return w.total.Float64() }
