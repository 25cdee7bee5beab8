// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command warthognode wires the four core actors (spec §2) into a
// running full node: PeerStore, ChainEngine, TransportManager, and
// Orchestrator. The HTTP/WebSocket/Stratum API, the miners, and the
// relational persistence schema itself are explicitly out of scope
// (spec §1) and are not started here; this binary is the P2P/consensus
// core alone.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/warthog-network/node/internal/staging/primitives"
)

// miningDispatchInterval bounds how often the mining-subscription
// registry re-checks the ChainEngine's invalidation token and pushes a
// rebuilt template to subscribers (spec §6.2 "invokes callback whenever
// consensus advances or mempool changes affect the block template");
// the Orchestrator/ChainEngine boundary has no synchronous hook for
// this, so it is driven by polling the token the way the cache itself
// does.
const miningDispatchInterval = 2 * time.Second

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func realMain() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig: %w", err)
	}

	logPath := filepath.Join(cfg.DataDir, cfg.activeParams.Name, defaultLogFilename)
	if err := initLogRotator(logPath); err != nil {
		return err
	}
	defer logRotator.Close()
	setLogLevels(cfg.DebugLevel)

	e, err := newEnv(cfg)
	if err != nil {
		return fmt.Errorf("newEnv: %w", err)
	}

	if err := e.start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	stopMiningDispatch := make(chan struct{})
	go runMiningDispatch(e, stopMiningDispatch)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	<-sig

	close(stopMiningDispatch)
	e.stop()
	return nil
}

// runMiningDispatch polls the ChainEngine's invalidation token and
// pushes a rebuilt mining template to every mining.subscribe
// registration whenever it moves, until stop is closed (spec §9's "any
// ChainEngine mutation invalidates" rule, driving §6.2's subscription
// push).
func runMiningDispatch(e *env, stop <-chan struct{}) {
	ticker := time.NewTicker(miningDispatchInterval)
	defer ticker.Stop()
	var lastToken uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			token := e.chain.InvalidationToken()
			if token == lastToken {
				continue
			}
			lastToken = token
			e.miningSubs.Dispatch(func(addr primitives.Address) (interface{}, error) {
				return e.miningCache.Get(addr, token)
			})
		}
	}
}
