// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import "testing"

func TestGreetingRoundTrip(t *testing.T) {
	var magic [GreetingMagicSize]byte
	copy(magic[:], "WARTHOG GRUNT?")
	g := Greeting{Magic: magic, Version: 7}
	got, err := DecodeGreeting(EncodeGreeting(g))
	if err != nil {
		t.Fatalf("DecodeGreeting: %v", err)
	}
	if got.Magic != g.Magic || got.Version != g.Version {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, g)
	}
}

func TestFramerHandshakeInboundOutbound(t *testing.T) {
	const reqMagic, repMagic = "WARTHOG GRUNT?", "WARTHOG GRUNT!"

	out := NewFramer(false, reqMagic, repMagic, 1)
	in := NewFramer(true, reqMagic, repMagic, 1)

	outGreeting := out.OutgoingGreeting(1)
	if err := in.HandleGreeting(outGreeting); err != nil {
		t.Fatalf("inbound rejected outbound greeting: %v", err)
	}
	if in.State() != StateAck {
		t.Fatalf("inbound state = %s, want ACK", in.State())
	}

	inGreeting := in.OutgoingGreeting(1)
	if err := out.HandleGreeting(inGreeting); err != nil {
		t.Fatalf("outbound rejected inbound greeting: %v", err)
	}

	ack, err := in.SendAck()
	if err != nil {
		t.Fatalf("SendAck: %v", err)
	}
	if in.State() != StateMessage {
		t.Fatalf("inbound state = %s, want MESSAGE", in.State())
	}
	if err := out.HandleAck(ack[0]); err != nil {
		t.Fatalf("HandleAck: %v", err)
	}
	if out.State() != StateMessage {
		t.Fatalf("outbound state = %s, want MESSAGE", out.State())
	}
}

func TestFramerRejectsWrongMagic(t *testing.T) {
	in := NewFramer(true, "WARTHOG GRUNT?", "WARTHOG GRUNT!", 1)
	var badMagic [GreetingMagicSize]byte
	copy(badMagic[:], "TESTNET GRUNT?")
	if err := in.HandleGreeting(Greeting{Magic: badMagic, Version: 1}); err == nil {
		t.Fatal("expected handshake error for mismatched network magic")
	}
}

func TestFramerRejectsLowVersion(t *testing.T) {
	in := NewFramer(true, "WARTHOG GRUNT?", "WARTHOG GRUNT!", 5)
	var magic [GreetingMagicSize]byte
	copy(magic[:], "WARTHOG GRUNT?")
	if err := in.HandleGreeting(Greeting{Magic: magic, Version: 1}); err == nil {
		t.Fatal("expected EVERSION for peer below MinPeerVersion")
	}
}
