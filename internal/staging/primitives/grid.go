// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package primitives

import "github.com/warthog-network/node/chaincfg/chainhash"

// Grid is the ordered sequence of the final header's identity hash
// for each completed batch of a chain: an O(sqrt(N))-size summary
// exchanged during peer Init so two nodes can find the highest
// mutually-agreed batch boundary before falling back to per-height
// probing (spec §3, Glossary).
type Grid []chainhash.Hash

// AppendBatch extends the grid with a newly-completed batch's final
// header hash. Non-complete batches (the chain's tail) never appear
// in the grid.
func (g Grid) AppendBatch(b Batch, identityHash func(Header) chainhash.Hash) Grid {
	if !b.Complete() {
		return g
	}
	return append(g, identityHash(b.Final()))
}

// CommonPrefixLen returns the number of leading grid entries shared
// between g and other, the starting point for the batch-level probe
// HeaderDownload performs before falling back to per-height binary
// search (spec §4.2 Probing).
func CommonPrefixLen(g, other Grid) int {
	n := len(g)
	if len(other) < n {
		n = len(other)
	}
	i := 0
	for i < n && g[i] == other[i] {
		i++
	}
	return i
}

// Truncate returns the grid with entries past batchCount removed, used
// when a chain's grid must shrink to match a fork/rollback point.
func (g Grid) Truncate(batchCount int) Grid {
	if batchCount >= len(g) {
		return g
	}
	if batchCount < 0 {
		batchCount = 0
	}
	out := make(Grid, batchCount)
	copy(out, g[:batchCount])
	return out
}
