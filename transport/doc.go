// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transport implements TransportManager (spec §2, §4.3): the
// actor that owns the TCP listener and the pool of connected sockets.
// Every other actor reaches a connection only through its opaque
// peer.ConnectionId (spec §9 "owning handle per actor") — transport
// alone calls Read/Write/Close on the underlying net.Conn.
//
// Grounded on original_source/src/node/transport/tcp/{conman,connection}.cpp
// for the accept/connect/read/write/close shape and on
// original_source/src/node/asyncio/connection_base.cpp for the
// handshake/frame state machine this package's Framer carries forward
// as an explicit enum instead of the source's virtual dispatch (spec
// §9 "sum type Transport = TCP | WS | WebRTC" redesign note — this
// repo only implements the TCP leg, since WS/WebRTC serve the external
// light-client surfaces out of scope per spec §1).
package transport
