// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameSize bounds any single frame's payload (spec §4.3 "Maximum
// frame size per type is bounded; oversize is MSG_LEN").
const MaxFrameSize = 8 * 1024 * 1024

// FrameHeaderSize is the fixed-size prefix before the payload:
// length:u32 | checksum:u32 | typeHi:u8 | typeLo:u8 (spec §4.3).
const FrameHeaderSize = 4 + 4 + 1 + 1

// Checksum returns the first 4 bytes of SHA256(payload) (spec §4.3).
func Checksum(payload []byte) [4]byte {
	sum := sha256.Sum256(payload)
	var out [4]byte
	copy(out[:], sum[:4])
	return out
}

// EncodeFrame serializes msg as a complete wire frame: header plus
// payload.
func EncodeFrame(msg Message) ([]byte, error) {
	var payload bytes.Buffer
	if err := msg.Encode(&payload); err != nil {
		return nil, err
	}
	hi, lo, err := TypeCode(msg.Command())
	if err != nil {
		return nil, err
	}
	body := payload.Bytes()
	// length counts typeHi+typeLo+payload, per spec §4.3
	// "payload[length-2]" implies length includes the 2 type bytes.
	length := uint32(len(body) + 2)
	if length > MaxFrameSize {
		return nil, messageError("EncodeFrame", fmt.Sprintf("frame of %d bytes exceeds max %d", length, MaxFrameSize))
	}
	checksum := Checksum(body)

	out := make([]byte, 0, FrameHeaderSize+len(body))
	var lenBuf, sumBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], length)
	copy(sumBuf[:], checksum[:])
	out = append(out, lenBuf[:]...)
	out = append(out, sumBuf[:]...)
	out = append(out, hi, lo)
	out = append(out, body...)
	return out, nil
}

// FrameHeader is the parsed fixed-size prefix of a frame, read before
// the payload so the framer knows how many more bytes to buffer.
type FrameHeader struct {
	Length   uint32
	Checksum [4]byte
	TypeHi   uint8
	TypeLo   uint8
}

// PayloadLen returns the number of payload bytes following the header
// (Length includes the 2 type bytes, spec §4.3).
func (h FrameHeader) PayloadLen() uint32 {
	if h.Length < 2 {
		return 0
	}
	return h.Length - 2
}

// ReadFrameHeader reads and validates the fixed-size frame prefix.
func ReadFrameHeader(r io.Reader) (FrameHeader, error) {
	var buf [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return FrameHeader{}, err
	}
	h := FrameHeader{
		Length: binary.BigEndian.Uint32(buf[0:4]),
		TypeHi: buf[8],
		TypeLo: buf[9],
	}
	copy(h.Checksum[:], buf[4:8])
	if h.Length < 2 || h.Length > MaxFrameSize {
		return h, messageError("ReadFrameHeader", fmt.Sprintf("invalid frame length %d", h.Length))
	}
	if h.TypeHi != 0 {
		return h, messageError("ReadFrameHeader", "typeHi must be 0 (reserved)")
	}
	return h, nil
}

// DecodeFrame reads a full frame (header+payload) from r, validates
// its checksum, and decodes it into the appropriate Message type.
func DecodeFrame(r io.Reader) (Message, error) {
	h, err := ReadFrameHeader(r)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, h.PayloadLen())
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	if Checksum(payload) != h.Checksum {
		return nil, messageError("DecodeFrame", "bad checksum")
	}
	cmd, err := CommandForTypeCode(h.TypeHi, h.TypeLo)
	if err != nil {
		return nil, err
	}
	msg := New(cmd)
	if msg == nil {
		return nil, messageError("DecodeFrame", "unknown message type")
	}
	if err := msg.Decode(bytes.NewReader(payload)); err != nil {
		return nil, err
	}
	return msg, nil
}
