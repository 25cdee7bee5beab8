// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr implements the PeerStore actor (spec §2): it
// persists ban records, the offense log, and recently-seen peer
// addresses, and answers authentication queries ("is this IP allowed
// to connect right now") from the TransportManager/Orchestrator
// without either of them touching storage directly (spec §5 "the
// chain database is accessed only by the ChainEngine actor" extends
// by the same principle to the peer store: only addrmgr touches
// PrefixPeers/PrefixBans/PrefixOffenses).
package addrmgr

import (
	"encoding/binary"
	"net"
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/warthog-network/node/chainerr"
	"github.com/warthog-network/node/database"
	"github.com/warthog-network/node/lru"
)

var log = slog.Disabled

// UseLogger configures package-wide logging (cmd/warthognode wires a
// real backend; tests leave it at slog.Disabled).
func UseLogger(l slog.Logger) { log = l }

// banCacheSize bounds the in-memory ban cache (spec §4.4 "an in-memory
// LRU of (ip -> banUntil)").
const banCacheSize = 4096

// Offense records a single ban-worthy event for audit/inspection via
// get_banned.
type Offense struct {
	IP        string
	Code      chainerr.Code
	At        time.Time
	BanUntil  time.Time
	PeerNotes string
}

// PeerStore owns the ban cache, offense log, and seen-address book. It
// is safe for concurrent use by TransportManager (accept/connect path)
// and Orchestrator (offense reporting), matching spec §2's "answers
// authentication queries from incoming connections" without itself
// being a cooperative single-threaded actor: it is pure bookkeeping
// with no consensus-relevant ordering requirement, so a mutex
// (matching the other actors' private per-queue mutex, spec §5)
// suffices instead of a full event loop.
type PeerStore struct {
	mu       sync.Mutex
	db       *database.DB
	banCache *lru.Cache[string, time.Time]
	offenses []Offense
}

// New constructs a PeerStore backed by db, loading the ban cache from
// persisted records.
func New(db *database.DB) (*PeerStore, error) {
	ps := &PeerStore{
		db:       db,
		banCache: lru.New[string, time.Time](banCacheSize),
	}
	if db == nil {
		return ps, nil
	}
	err := db.View(func(tx *database.Tx) error {
		it := tx.Iterate(database.PrefixBans)
		defer it.Release()
		for it.Next() {
			ip := string(it.Key()[len(database.PrefixBans):])
			until := time.Unix(int64(binary.BigEndian.Uint64(it.Value())), 0)
			if until.After(time.Now()) {
				ps.banCache.Add(ip, until)
			}
		}
		return it.Error()
	})
	return ps, err
}

// IsBanned reports whether ip is currently banned, consulting the
// in-memory cache only (spec §4.4 "consulted on inbound accept and
// outbound connect").
func (ps *PeerStore) IsBanned(ip string) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	until, ok := ps.banCache.Get(ip)
	if !ok {
		return false
	}
	if !time.Now().Before(until) {
		ps.banCache.Remove(ip)
		return false
	}
	return true
}

// Offend records that the peer at ip committed a protocol offense.
// If the code carries a nonzero ban duration, ip is inserted into the
// ban cache and persisted (spec §4.4 "On offense with bantime > 0,
// the IP is inserted into cache and persisted").
func (ps *PeerStore) Offend(ip string, code chainerr.Code) error {
	ban := code.BanSeconds()
	now := time.Now()
	o := Offense{IP: ip, Code: code, At: now}

	ps.mu.Lock()
	if ban > 0 {
		until := now.Add(time.Duration(ban) * time.Second)
		ps.banCache.Add(ip, until)
		o.BanUntil = until
	}
	ps.offenses = append(ps.offenses, o)
	ps.mu.Unlock()

	log.Debugf("offense from %s: %s (ban=%ds)", ip, code.Name(), ban)

	if ban <= 0 || ps.db == nil {
		return nil
	}
	until := now.Add(time.Duration(ban) * time.Second)
	return ps.db.Update(func(tx *database.Tx) error {
		var v [8]byte
		binary.BigEndian.PutUint64(v[:], uint64(until.Unix()))
		return tx.Put(database.StringKey(database.PrefixBans, ip), v[:])
	})
}

// Unban removes any ban record for ip (the get_banned/unban §6.2 RPC).
func (ps *PeerStore) Unban(ip string) error {
	ps.mu.Lock()
	ps.banCache.Remove(ip)
	ps.mu.Unlock()
	if ps.db == nil {
		return nil
	}
	return ps.db.Update(func(tx *database.Tx) error {
		return tx.Delete(database.StringKey(database.PrefixBans, ip))
	})
}

// Banned returns a snapshot of all currently-banned IPs and their
// expiry, for the get_banned RPC.
func (ps *PeerStore) Banned() map[string]time.Time {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	out := make(map[string]time.Time)
	now := time.Now()
	// lru.Cache does not expose iteration; callers needing a live
	// dump rely on Offenses() plus IsBanned for authoritative status.
	for _, o := range ps.offenses {
		if o.BanUntil.After(now) {
			out[o.IP] = o.BanUntil
		}
	}
	return out
}

// Offenses returns a copy of the offense log, most recent last.
func (ps *PeerStore) Offenses() []Offense {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	out := make([]Offense, len(ps.offenses))
	copy(out, ps.offenses)
	return out
}

// NormalizeIP supports the admission policy test (K=3 per source IP,
// spec §4.2) by canonicalizing the comparison key: the host part of
// addr without its port.
func NormalizeIP(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
