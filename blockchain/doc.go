// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements ChainEngine (spec §4.1): the
// single-threaded actor owning the canonical consensus chain, the
// stage chain being assembled from peer downloads, the mempool, and
// the replay cache. Every exported operation either fully succeeds or
// leaves Engine's state unchanged (spec §4.1 "any mutation either
// fully succeeds or leaves the engine state unchanged").
//
// Engine itself holds no goroutine or queue: spec §5's "bounded MPSC
// queue with a wake-up signal" is netsync's Orchestrator's concern
// (it is the sole caller of every method here, one at a time, from
// its own event loop). Engine's job is purely to make every mutation
// atomic and every invariant in spec §8 hold after it returns.
package blockchain
