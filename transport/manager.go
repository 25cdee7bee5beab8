// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"bufio"
	"net"
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/warthog-network/node/chainerr"
	"github.com/warthog-network/node/peer"
	"github.com/warthog-network/node/wire"
)

var log = slog.Disabled

// UseLogger configures package-wide logging.
func UseLogger(l slog.Logger) { log = l }

// MaxBuffer bounds a connection's outbound send queue (spec §4.3 Flow
// control: "outbound send queue is bounded (MAX_BUFFER bytes);
// overflow closes with BUFFER_FULL").
const MaxBuffer = 8 * 1024 * 1024

// Inbox receives every fully-framed message a connection produces,
// tagged with the connection it arrived on, for the Orchestrator to
// dispatch (spec §2 "TransportManager... dispatches per-connection
// inbound bytes to the Orchestrator").
type Inbox interface {
	// Established is called once a connection completes its handshake,
	// before any message is delivered, so the Orchestrator can create
	// the connection's PeerState (spec §3 "PeerState created on
	// successful TCP accept/connect + handshake").
	Established(id peer.ConnectionId, addr string, inbound bool)
	// Deliver is called once per decoded message. It must not block
	// the calling connection's read loop for long.
	Deliver(id peer.ConnectionId, msg wire.Message)
	// Closed is called exactly once when a connection's socket is
	// retired, with the reason it ended (spec §9 "a single Closed(id)
	// message retires the id from every other actor's table").
	Closed(id peer.ConnectionId, reason error)
}

// socket is one managed TCP connection: its net.Conn, framer state,
// and bounded outbound queue.
type socket struct {
	id      peer.ConnectionId
	conn    net.Conn
	framer  *Framer
	addr    string
	inbound bool

	sendMu    sync.Mutex
	sendQueue int // bytes currently queued, enforced against MaxBuffer

	closeOnce sync.Once
}

// Manager is TransportManager: it owns the listener and every managed
// socket. Other actors never see a net.Conn, only a peer.ConnectionId
// (spec §9 "owning handle per actor").
type Manager struct {
	inbox Inbox

	magicRequest string
	magicReply   string
	minVersion   uint32

	mu       sync.Mutex
	sockets  map[peer.ConnectionId]*socket
	nextID   uint64
	listener net.Listener

	dialer Dialer
}

// New constructs a Manager. magicRequest/magicReply/minVersion come
// from the active chaincfg.Params; dialer is nil for a direct
// net.Dialer or a SOCKS-wrapping Dialer when the config enables a
// proxy (spec §6.4, DESIGN.md transport/ entry).
func New(inbox Inbox, magicRequest, magicReply string, minVersion uint32, dialer Dialer) *Manager {
	if dialer == nil {
		dialer = DirectDialer{}
	}
	return &Manager{
		inbox:        inbox,
		magicRequest: magicRequest,
		magicReply:   magicReply,
		minVersion:   minVersion,
		sockets:      make(map[peer.ConnectionId]*socket),
		dialer:       dialer,
	}
}

// Listen starts accepting inbound connections on bind. allow reports
// whether ip is permitted to connect right now (the Orchestrator's
// AllowIncoming checks the ban cache, spec §4.2/§4.4); it is consulted before the
// handshake begins so a banned IP never even gets a greeting.
func (m *Manager) Listen(bind string, allow func(ip string) error) error {
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.listener = ln
	m.mu.Unlock()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			ip := NormalizeAddr(conn.RemoteAddr())
			if allow != nil {
				if err := allow(ip); err != nil {
					conn.Close()
					continue
				}
			}
			go m.handleAccepted(conn)
		}
	}()
	return nil
}

// Close stops accepting new connections and closes every managed
// socket (spec §5 shutdown: TransportManager is the first actor
// joined after Orchestrator).
func (m *Manager) Close() {
	m.mu.Lock()
	if m.listener != nil {
		m.listener.Close()
	}
	ids := make([]peer.ConnectionId, 0, len(m.sockets))
	for id := range m.sockets {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.CloseConnection(id, chainerr.ESigTerm)
	}
}

func (m *Manager) register(conn net.Conn, inbound bool, addr string) *socket {
	m.mu.Lock()
	m.nextID++
	id := peer.ConnectionId(m.nextID)
	s := &socket{id: id, conn: conn, addr: addr, inbound: inbound, framer: NewFramer(inbound, m.magicRequest, m.magicReply, m.minVersion)}
	m.sockets[id] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) handleAccepted(conn net.Conn) {
	addr := conn.RemoteAddr().String()
	s := m.register(conn, true, addr)
	if err := m.runHandshake(s); err != nil {
		m.retire(s, err)
		return
	}
	m.inbox.Established(s.id, addr, true)
	m.readLoop(s)
}

// Dial opens an outbound connection to addr (spec §4.4 scheduler-
// driven outbound connects), optionally through m.dialer's proxy.
func (m *Manager) Dial(addr string) (peer.ConnectionId, error) {
	conn, err := m.dialer.Dial("tcp", addr)
	if err != nil {
		return 0, err
	}
	s := m.register(conn, false, addr)
	if err := m.runHandshake(s); err != nil {
		m.retire(s, err)
		return 0, err
	}
	m.inbox.Established(s.id, addr, false)
	go m.readLoop(s)
	return s.id, nil
}

// runHandshake drives the UNCONNECTED/HANDSHAKE/ACK progression
// synchronously before the message read loop starts (spec §4.3,
// §4.3 "handshake did not complete in 5s" timeout).
func (m *Manager) runHandshake(s *socket) error {
	s.conn.SetDeadline(time.Now().Add(HandshakeTimeout))
	defer s.conn.SetDeadline(time.Time{})

	version := s.framer.minVersion
	if version == 0 {
		version = 1
	}
	greeting := s.framer.OutgoingGreeting(version)
	if _, err := s.conn.Write(EncodeGreeting(greeting)); err != nil {
		return err
	}

	buf := make([]byte, GreetingSize)
	if _, err := readFull(s.conn, buf); err != nil {
		return err
	}
	peerGreeting, err := DecodeGreeting(buf)
	if err != nil {
		return err
	}
	if err := s.framer.HandleGreeting(peerGreeting); err != nil {
		return err
	}

	if s.inbound {
		ack, err := s.framer.SendAck()
		if err != nil {
			return err
		}
		if _, err := s.conn.Write(ack); err != nil {
			return err
		}
	} else {
		var ackBuf [1]byte
		if _, err := readFull(s.conn, ackBuf[:]); err != nil {
			return err
		}
		if err := s.framer.HandleAck(ackBuf[0]); err != nil {
			return err
		}
	}
	return nil
}

func readFull(r net.Conn, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		k, err := r.Read(buf[n:])
		n += k
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// readLoop reads framed messages until the socket errors or Close is
// called, delivering each to m.inbox in order (spec §5 "bytes are
// delivered to the framer in order and messages dispatched to the
// Orchestrator in order").
func (m *Manager) readLoop(s *socket) {
	br := bufio.NewReaderSize(s.conn, 64*1024)
	for {
		msg, err := s.framer.ReadMessage(br)
		if err != nil {
			m.retire(s, err)
			return
		}
		m.inbox.Deliver(s.id, msg)
	}
}

// SendMessage frames and queues msg for delivery, closing the
// connection with BUFFER_FULL if the outbound queue would overflow
// (spec §4.3 Flow control).
func (m *Manager) SendMessage(id peer.ConnectionId, msg wire.Message) error {
	m.mu.Lock()
	s, ok := m.sockets[id]
	m.mu.Unlock()
	if !ok {
		return chainerr.NewHeightError(chainerr.ENotFound, 0)
	}
	framed, err := s.framer.EncodeMessage(msg)
	if err != nil {
		return err
	}

	s.sendMu.Lock()
	if s.sendQueue+len(framed) > MaxBuffer {
		s.sendMu.Unlock()
		m.retire(s, chainerr.EBufferFull)
		return chainerr.EBufferFull
	}
	s.sendQueue += len(framed)
	s.sendMu.Unlock()

	_, err = s.conn.Write(framed)

	s.sendMu.Lock()
	s.sendQueue -= len(framed)
	s.sendMu.Unlock()

	if err != nil {
		m.retire(s, err)
		return err
	}
	return nil
}

// CloseConnection closes id with reason, the path the Orchestrator
// uses to inject an offense-driven close (spec §4.3 "an offense code
// injected by the Orchestrator").
func (m *Manager) CloseConnection(id peer.ConnectionId, reason error) {
	m.mu.Lock()
	s, ok := m.sockets[id]
	m.mu.Unlock()
	if !ok {
		return
	}
	m.retire(s, reason)
}

func (m *Manager) retire(s *socket, reason error) {
	s.closeOnce.Do(func() {
		s.conn.Close()
		m.mu.Lock()
		delete(m.sockets, s.id)
		m.mu.Unlock()
		log.Debugf("connection %d (%s) closed: %v", s.id, s.addr, reason)
		m.inbox.Closed(s.id, reason)
	})
}

// SetInbox assigns the Inbox that Established/Deliver/Closed are
// reported to. It exists because Manager and its Inbox (typically a
// netsync.Orchestrator, which itself needs a transportSender) are
// mutually dependent at construction time (spec §9 dependency
// injection): callers build the Manager with a nil inbox, construct the
// Orchestrator around it, then call SetInbox once before Listen/Dial
// see any traffic.
func (m *Manager) SetInbox(inbox Inbox) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = inbox
}

// PeerAddr returns the remote address a connection was accepted from
// or dialed to.
func (m *Manager) PeerAddr(id peer.ConnectionId) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sockets[id]
	if !ok {
		return "", false
	}
	return s.addr, true
}

// NormalizeAddr extracts the bare IP from a net.Addr for ban-cache and
// per-IP connection-cap lookups (spec §4.2).
func NormalizeAddr(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
