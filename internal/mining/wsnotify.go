// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"github.com/gorilla/websocket"
)

// WSPushTarget is the minimal surface this package needs from a
// websocket connection: writing one JSON-encoded notification. The
// external Stratum/HTTP layer (spec §1, §6.2) owns the actual
// *websocket.Conn, its upgrade handshake, and its read loop; this
// package only ever writes to it.
type WSPushTarget interface {
	WriteJSON(v interface{}) error
}

// wsConnAdapter narrows *websocket.Conn to WSPushTarget so callers can
// pass a real connection without this package importing more of
// gorilla/websocket than WriteJSON needs.
type wsConnAdapter struct{ conn *websocket.Conn }

func (a wsConnAdapter) WriteJSON(v interface{}) error { return a.conn.WriteJSON(v) }

// AsPushTarget wraps a live websocket connection for use with
// NewWebSocketCallback.
func AsPushTarget(conn *websocket.Conn) WSPushTarget { return wsConnAdapter{conn: conn} }

// miningNotification is the payload pushed to a mining.subscribe
// websocket client whenever the subscribed address's template is
// rebuilt (spec §6.2 "invokes callback whenever consensus advances or
// mempool changes affect the block template"). Errors are reported as
// a message rather than closing the socket, since a transient
// get_mining failure (e.g. empty chain) should not drop the
// subscription.
type miningNotification struct {
	Template interface{} `json:"template,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// NewWebSocketCallback returns a Callback that pushes every dispatched
// template to target as a JSON-RPC-style notification object. Write
// errors are swallowed here; the caller (the external router) owns
// detecting a dead socket via its own read loop and calling
// Subscriptions.Unsubscribe.
func NewWebSocketCallback(target WSPushTarget) Callback {
	return func(built interface{}, err error) {
		n := miningNotification{Template: built}
		if err != nil {
			n.Error = err.Error()
			n.Template = nil
		}
		_ = target.WriteJSON(n)
	}
}
