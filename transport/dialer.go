// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"net"

	"github.com/decred/go-socks/socks"
)

// Dialer opens outbound TCP connections, abstracting over a direct
// dial and an optional SOCKS5 proxy (spec §6.4's unnamed-but-implied
// outbound transport option; dcrd-family nodes wire this the same way
// for Tor/proxy support).
type Dialer interface {
	Dial(network, addr string) (net.Conn, error)
}

// DirectDialer dials straight out with net.Dial.
type DirectDialer struct{}

func (DirectDialer) Dial(network, addr string) (net.Conn, error) {
	return net.Dial(network, addr)
}

// SocksDialer routes outbound connections through a SOCKS5 proxy,
// used when the scheduler's outbound dial path must traverse Tor or
// another configured proxy (DESIGN.md transport/ entry:
// github.com/decred/go-socks).
type SocksDialer struct {
	proxy *socks.Proxy
}

// NewSocksDialer builds a dialer that connects through the SOCKS5
// proxy at proxyAddr, optionally authenticating with username/password
// (empty strings mean no auth).
func NewSocksDialer(proxyAddr, username, password string) *SocksDialer {
	return &SocksDialer{proxy: &socks.Proxy{Addr: proxyAddr, Username: username, Password: password}}
}

func (d *SocksDialer) Dial(network, addr string) (net.Conn, error) {
	return d.proxy.Dial(network, addr)
}
