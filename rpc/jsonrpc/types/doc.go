// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package types defines the Go-level request/result shapes for the §6.2
// external-interface operations: get_head, get_header, get_hash,
// get_block, get_grid, get_mining, submit_block, get_signed_snapshot,
// get_txcache, get_hashrate, get_balance, get_history, get_richlist,
// put_mempool, get_mempool, lookup_tx, get_peers, get_banned, unban,
// disconnect, and mining.subscribe.
//
// This is not a JSON-RPC router: per spec §1 the HTTP/WebSocket/Stratum
// surface is an external collaborator, and per §6.2 "the JSON schema is
// not specified by the core". What lives here is the narrow set of
// exported Go types a router would marshal to and from JSON, in the
// Cmd-struct-plus-NewXCmd idiom the teacher's retrieved
// rpc/jsonrpc/types/chainsvrwscmds.go uses for every RPC command.
package types
