// SPDX-License-Identifier: GPL-3.0-or-later

package dnsstub

import (
	"encoding/binary"
	"fmt"

	"github.com/miekg/dns"
)

// HeaderSize is the fixed size of a DNS header in bytes.
const HeaderSize = 12

// Bits of the third and fourth header bytes (RFC 1035 Section 4.1.1).
const (
	headerBitQR = 1 << 7 // byte 2
	headerBitAA = 1 << 2 // byte 2
	headerBitTC = 1 << 1 // byte 2
	headerBitRD = 1 << 0 // byte 2
	headerBitRA = 1 << 7 // byte 3
)

// Header is the decoded DNS message header.
//
// Opcode and Rcode hold 4-bit values and Zero holds a 3-bit value.
type Header struct {
	ID                 uint16
	Response           bool
	Opcode             uint8
	Authoritative      bool
	Truncated          bool
	RecursionDesired   bool
	RecursionAvailable bool
	Zero               uint8
	Rcode              uint8
	QDCount            uint16
	ANCount            uint16
	NSCount            uint16
	ARCount            uint16
}

// ParseHeader decodes the header from the first [HeaderSize] bytes of raw.
func ParseHeader(raw []byte) (Header, error) {
	if len(raw) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, got %d", ErrTruncatedInput, HeaderSize, len(raw))
	}
	b2, b3 := raw[2], raw[3]
	h := Header{
		ID:                 binary.BigEndian.Uint16(raw[0:2]),
		Response:           b2&headerBitQR != 0,
		Opcode:             (b2 >> 3) & 0x0F,
		Authoritative:      b2&headerBitAA != 0,
		Truncated:          b2&headerBitTC != 0,
		RecursionDesired:   b2&headerBitRD != 0,
		RecursionAvailable: b3&headerBitRA != 0,
		Zero:               (b3 >> 4) & 0x07,
		Rcode:              b3 & 0x0F,
		QDCount:            binary.BigEndian.Uint16(raw[4:6]),
		ANCount:            binary.BigEndian.Uint16(raw[6:8]),
		NSCount:            binary.BigEndian.Uint16(raw[8:10]),
		ARCount:            binary.BigEndian.Uint16(raw[10:12]),
	}
	return h, nil
}

// ReplyHeader returns the header of the response to a query with the given
// header, carrying the given number of questions and answers.
//
// The ID, OPCODE and RD bit are echoed. RCODE is NOERROR for standard
// queries and NOTIMP for any other OPCODE. The query counts are ignored.
func ReplyHeader(query Header, questions, answers int) Header {
	rcode := uint8(dns.RcodeSuccess)
	if query.Opcode != dns.OpcodeQuery {
		rcode = dns.RcodeNotImplemented
	}
	return Header{
		ID:               query.ID,
		Response:         true,
		Opcode:           query.Opcode,
		RecursionDesired: query.RecursionDesired,
		Rcode:            rcode,
		QDCount:          uint16(questions),
		ANCount:          uint16(answers),
	}
}

// Append appends the wire representation of h to b and returns the result.
//
// It panics if Opcode, Zero or Rcode do not fit their bit fields.
func (h Header) Append(b []byte) []byte {
	if h.Opcode > 0x0F || h.Zero > 0x07 || h.Rcode > 0x0F {
		panic(fmt.Sprintf("dnsstub: header field out of range: opcode=%d z=%d rcode=%d", h.Opcode, h.Zero, h.Rcode))
	}
	b2 := h.Opcode << 3
	if h.Response {
		b2 |= headerBitQR
	}
	if h.Authoritative {
		b2 |= headerBitAA
	}
	if h.Truncated {
		b2 |= headerBitTC
	}
	if h.RecursionDesired {
		b2 |= headerBitRD
	}
	b3 := h.Zero<<4 | h.Rcode
	if h.RecursionAvailable {
		b3 |= headerBitRA
	}
	b = binary.BigEndian.AppendUint16(b, h.ID)
	b = append(b, b2, b3)
	b = binary.BigEndian.AppendUint16(b, h.QDCount)
	b = binary.BigEndian.AppendUint16(b, h.ANCount)
	b = binary.BigEndian.AppendUint16(b, h.NSCount)
	return binary.BigEndian.AppendUint16(b, h.ARCount)
}

// Bytes returns the [HeaderSize] bytes wire representation of h.
func (h Header) Bytes() []byte {
	return h.Append(make([]byte, 0, HeaderSize))
}
