// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mining implements the mining-task cache and subscription
// registry behind the §6.2 `mining.subscribe` operation and the
// `get_mining` template builder (spec §4.1, §9 Design Notes).
//
// The original keeps three scattered CacheValidity counters (db,
// mempool, timestamp) whose invalidation predicates are spread across
// chainserver; spec §9 re-derives the rule as "any ChainEngine mutation
// invalidates" and asks for a single explicit token. blockchain.Engine
// already exposes that token (InvalidationToken); this package is the
// cache built on top of it, grounded on mining_subscription.{hpp,cpp}'s
// subscribe/unsubscribe/dispatch shape.
package mining

import (
	"sync"
	"sync/atomic"

	"github.com/warthog-network/node/internal/staging/primitives"
)

// Template is the cached get_mining result for one address, tagged with
// the engine token it was built against.
type Template struct {
	Token uint64
	Addr  primitives.Address
	Built interface{} // holds *blockchain.MiningTemplate; kept opaque to avoid an import cycle (mining is imported by blockchain's callers, not by blockchain itself)
}

// builder matches blockchain.Engine.GetMining's signature without
// importing the blockchain package (internal/mining sits below
// blockchain in the dependency graph so cmd/warthognode can wire the
// cache over any chainEngine-shaped type, including test fakes).
type builder func(primitives.Address) (interface{}, error)

// Cache memoizes the last template built per address, rebuilding only
// when the caller's observed invalidation token has moved past the one
// the cached entry was built with.
type Cache struct {
	build builder

	mu      sync.Mutex
	entries map[primitives.Address]Template
}

// NewCache constructs a Cache that calls build to (re)generate a
// template on a cache miss or stale token.
func NewCache(build builder) *Cache {
	return &Cache{build: build, entries: make(map[primitives.Address]Template)}
}

// Get returns the cached template for addr if it was built against
// currentToken, otherwise calls build and replaces the cache entry.
func (c *Cache) Get(addr primitives.Address, currentToken uint64) (interface{}, error) {
	c.mu.Lock()
	if t, ok := c.entries[addr]; ok && t.Token == currentToken {
		c.mu.Unlock()
		return t.Built, nil
	}
	c.mu.Unlock()

	built, err := c.build(addr)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[addr] = Template{Token: currentToken, Addr: addr, Built: built}
	c.mu.Unlock()
	return built, nil
}

// Invalidate drops every cached entry, used when a caller wants to
// force a rebuild outside the normal token check (e.g. tests).
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[primitives.Address]Template)
	c.mu.Unlock()
}

// SubscriptionId identifies one mining.subscribe registration, handed
// back so the caller can Unsubscribe later (grounded on
// mining_subscription.hpp's SubscriptionId). Ids come from one
// package-wide atomic counter, so they are unique across every
// Subscriptions registry in the process.
type SubscriptionId uint64

var nextID atomic.Uint64

// Callback receives the (possibly rebuilt) template whenever the
// engine advances, matching the callback_t the original node dispatches
// Result<ChainMiningTask> through (spec §6.2 "invokes callback whenever
// consensus advances or mempool changes affect the block template").
type Callback func(interface{}, error)

type subscriber struct {
	id       SubscriptionId
	callback Callback
}

// Subscriptions is MiningSubscriptions: a multimap from address to the
// set of callbacks waiting on that address's template, plus the reverse
// index Unsubscribe needs (grounded on mining_subscription.cpp's
// subscriptions/lookupSubscription pair).
type Subscriptions struct {
	mu     sync.Mutex
	byAddr map[primitives.Address][]subscriber
	byID   map[SubscriptionId]primitives.Address
}

// NewSubscriptions constructs an empty registry.
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{
		byAddr: make(map[primitives.Address][]subscriber),
		byID:   make(map[SubscriptionId]primitives.Address),
	}
}

// Subscribe registers cb to be invoked with addr's template on every
// Dispatch until Unsubscribe is called.
func (s *Subscriptions) Subscribe(addr primitives.Address, cb Callback) SubscriptionId {
	id := SubscriptionId(nextID.Add(1))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byAddr[addr] = append(s.byAddr[addr], subscriber{id: id, callback: cb})
	s.byID[id] = addr
	return id
}

// Unsubscribe removes a prior subscription; a no-op if id is unknown
// (already unsubscribed, or never existed).
func (s *Subscriptions) Unsubscribe(id SubscriptionId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	subs := s.byAddr[addr]
	for i, sub := range subs {
		if sub.id == id {
			s.byAddr[addr] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(s.byAddr[addr]) == 0 {
		delete(s.byAddr, addr)
	}
}

// Dispatch rebuilds a template per subscribed address via build and
// invokes every subscriber's callback with the result, mirroring
// MiningSubscriptions::dispatch. Called by cmd/warthognode's mining
// dispatch loop each time it sees the ChainEngine's invalidation token
// change.
func (s *Subscriptions) Dispatch(build func(primitives.Address) (interface{}, error)) {
	s.mu.Lock()
	addrs := make([]primitives.Address, 0, len(s.byAddr))
	subsByAddr := make(map[primitives.Address][]subscriber, len(s.byAddr))
	for addr, subs := range s.byAddr {
		addrs = append(addrs, addr)
		subsByAddr[addr] = append([]subscriber(nil), subs...)
	}
	s.mu.Unlock()

	for _, addr := range addrs {
		built, err := build(addr)
		for _, sub := range subsByAddr[addr] {
			sub.callback(built, err)
		}
	}
}

// Count reports the number of live subscriptions, for diagnostics.
func (s *Subscriptions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
