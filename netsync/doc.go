// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netsync implements the Orchestrator (spec §2, §4.2): the
// network event loop holding the connection table, per-peer chain
// descriptors, the HeaderDownload and BlockDownload sub-components,
// the connection schedule, and per-peer request/timeout tracking. It
// drives sync toward the canonical chain and publishes chain updates
// back to every initialized peer.
//
// Grounded directly on spec §4.2 for the message-handling table and on
// original_source/src/node/eventloop/eventloop.cpp for the probe /
// leader-election / rescheduling flow (DESIGN.md's netsync/ entry).
// The single-threaded cooperative-actor model of spec §5 is carried
// over as one goroutine draining a buffered event channel — the Go
// idiom for the source's libuv-driven async task loop (spec §9 "async
// task loops ... the contract is the invariant to preserve").
package netsync
