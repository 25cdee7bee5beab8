// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"sync"

	"github.com/warthog-network/node/internal/staging/primitives"
)

// ReplayCache is the set of TxIds of the transactions applied by
// consensus blocks, indexed by the height of the block that applied
// each id. Block application rejects any transaction whose id is
// already present. Rollback removes the ids of rolled-back blocks
// (PruneAboveExclusive); ChainEngine does not prune blocks that fall
// out of the replay window as the chain grows, so ids applied before
// the window stay in the cache.
type ReplayCache struct {
	mu       sync.RWMutex
	byHeight map[primitives.Height]map[primitives.TxId]struct{}
}

// NewReplayCache returns an empty cache.
func NewReplayCache() *ReplayCache {
	return &ReplayCache{byHeight: make(map[primitives.Height]map[primitives.TxId]struct{})}
}

// Insert records id under height, the height of the block applying it,
// rejecting duplicates the way
// apply_stage's per-block validation does (spec §4.1 "DuplicateTxId").
func (c *ReplayCache) Insert(height primitives.Height, id primitives.TxId) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.contains(id) {
		return false
	}
	set, ok := c.byHeight[height]
	if !ok {
		set = make(map[primitives.TxId]struct{})
		c.byHeight[height] = set
	}
	set[id] = struct{}{}
	return true
}

// Contains reports whether id is present anywhere in the cache.
func (c *ReplayCache) Contains(id primitives.TxId) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.contains(id)
}

func (c *ReplayCache) contains(id primitives.TxId) bool {
	for _, set := range c.byHeight {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

// PruneAboveExclusive removes every id recorded at or above height,
// used on rollback to undo the portion of the cache covering blocks
// being rolled back (spec §4.1 apply_stage: "truncate replay cache").
func (c *ReplayCache) PruneAboveExclusive(height primitives.Height) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for h := range c.byHeight {
		if h >= height {
			delete(c.byHeight, h)
		}
	}
}

// PruneBelow removes every id recorded at a height strictly below
// minPin. ChainEngine does not call it.
func (c *ReplayCache) PruneBelow(minPin primitives.Height) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for h := range c.byHeight {
		if h < minPin {
			delete(c.byHeight, h)
		}
	}
}

// IdsAt returns the ids recorded at exactly height; GetTxCache uses it
// to list the ids applied inside the replay window.
func (c *ReplayCache) IdsAt(height primitives.Height) []primitives.TxId {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set, ok := c.byHeight[height]
	if !ok {
		return nil
	}
	out := make([]primitives.TxId, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
