// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/warthog-network/node/addrmgr"
	"github.com/warthog-network/node/blockchain"
	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/connmgr"
	"github.com/warthog-network/node/crypto"
	"github.com/warthog-network/node/database"
	"github.com/warthog-network/node/internal/mining"
	"github.com/warthog-network/node/internal/staging/primitives"
	"github.com/warthog-network/node/netsync"
	"github.com/warthog-network/node/transport"
)

// env is the dependency-injection container spec §9's Design Notes
// calls for in place of the original's global()/config() singletons:
// every actor is constructed here and handed only the collaborators it
// needs, so tests can substitute fakes for any of them without package-
// level state.
type env struct {
	cfg *config

	chainDB *database.DB
	peersDB *database.DB

	peers     *addrmgr.PeerStore
	chain     *blockchain.Engine
	transport *transport.Manager
	orch      *netsync.Orchestrator

	miningCache *mining.Cache
	miningSubs  *mining.Subscriptions

	leaderKey *crypto.PrivateKey
}

// doubleSHA256Hasher is a placeholder primitives.PowHasher. Spec §1
// names VerusHash v2.1/v2.2 as an external cryptographic primitive the
// core only ever reaches through this interface; this node wires a
// double-SHA256 stand-in so the binary runs end-to-end against its own
// regtest/testnet chains without depending on an unvendored VerusHash
// implementation. A production deployment replaces this with the real
// primitive at the same seam.
type doubleSHA256Hasher struct{}

func (doubleSHA256Hasher) PowHash(serialized [primitives.HeaderSize]byte, _ primitives.Height) chainhash.Hash {
	first := sha256.Sum256(serialized[:])
	return chainhash.Hash(sha256.Sum256(first[:]))
}

// newEnv wires every actor described by spec §2's component table,
// following the construction order spec §5 shutdown reverses:
// PeerStore, then ChainEngine, then TransportManager, then Orchestrator.
func newEnv(cfg *config) (*env, error) {
	e := &env{cfg: cfg}

	chainDB, err := database.Open(cfg.chainDbPath)
	if err != nil {
		return nil, err
	}
	e.chainDB = chainDB

	peersDB, err := database.Open(cfg.peersDbPath)
	if err != nil {
		return nil, err
	}
	e.peersDB = peersDB

	peers, err := addrmgr.New(peersDB)
	if err != nil {
		return nil, err
	}
	e.peers = peers

	e.chain = blockchain.New(cfg.activeParams, doubleSHA256Hasher{}, chainDB)

	if cfg.LeaderPrivateKey != "" {
		key, err := parseLeaderKey(cfg.LeaderPrivateKey)
		if err != nil {
			return nil, err
		}
		e.leaderKey = &key
	}

	e.miningCache = mining.NewCache(func(addr primitives.Address) (interface{}, error) {
		return e.chain.GetMining(addr)
	})
	e.miningSubs = mining.NewSubscriptions()

	sched := connmgr.New(cfg.Connect)

	var dialer transport.Dialer
	e.transport = transport.New(nil, cfg.activeParams.HandshakeMagicRequest, cfg.activeParams.HandshakeMagicReply, cfg.activeParams.MinPeerVersion, dialer)

	orch := netsync.New(cfg.activeParams, e.chain, e.transport, e.peers, sched)
	orch.SetIsolated(cfg.Isolated)
	e.orch = orch
	e.transport.SetInbox(orch)

	return e, nil
}

// parseLeaderKey decodes the hex-encoded leaderPrivateKey config option
// (spec §6.4) into a usable signing key.
func parseLeaderKey(hexKey string) (crypto.PrivateKey, error) {
	b, err := hex.DecodeString(hexKey)
	if err != nil {
		return crypto.PrivateKey{}, err
	}
	return crypto.ParsePrivateKey(b)
}

// start starts the listener and launches the Orchestrator event loop
// in its own goroutine; it returns without waiting for stop.
func (e *env) start() error {
	if err := e.transport.Listen(e.cfg.Bind, e.orch.AllowIncoming); err != nil {
		return err
	}
	go e.orch.Run()
	return nil
}

// stop shuts every actor down in the reverse topological order spec §5
// requires: Orchestrator, TransportManager, ChainEngine, PeerStore.
func (e *env) stop() {
	e.orch.Close()
	e.transport.Close()
	if e.chainDB != nil {
		e.chainDB.Close()
	}
	if e.peersDB != nil {
		e.peersDB.Close()
	}
}
