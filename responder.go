// SPDX-License-Identifier: GPL-3.0-or-later

package dnsstub

import (
	"fmt"
	"net/netip"
)

const (
	// DefaultTTL is the TTL of synthesized answers, in seconds.
	DefaultTTL = 60
)

// DefaultAddr is the address carried by synthesized answers.
var DefaultAddr = netip.AddrFrom4([4]byte{8, 8, 8, 8})

// Responder answers every question with a fabricated A record.
//
// A Responder holds no per-request state and is safe for concurrent use
// as long as its fields are not modified.
type Responder struct {
	// Addr is the IPv4 address placed in every answer.
	Addr netip.Addr

	// TTL is the TTL of every answer.
	TTL uint32
}

// NewResponder constructs a new [*Responder] using [DefaultAddr] and [DefaultTTL].
func NewResponder() *Responder {
	return &Responder{
		Addr: DefaultAddr,
		TTL:  DefaultTTL,
	}
}

// Validate returns an error wrapping [ErrInvalidAnswerAddr] unless Addr
// is an IPv4 or IPv4-mapped IPv6 address.
func (r *Responder) Validate() error {
	if !r.Addr.Unmap().Is4() {
		return fmt.Errorf("%w: %s", ErrInvalidAnswerAddr, r.Addr)
	}
	return nil
}

// Respond builds the response to query.
//
// Every question is echoed and gets exactly one answer, in the same order,
// without deduplication. The header is built last from the final counts.
//
// It fails when [*Responder.Validate] does.
func (r *Responder) Respond(query *Query) (*Message, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	questions := make([]Question, 0, len(query.Questions))
	answers := make([]ResourceRecord, 0, len(query.Questions))
	for _, q := range query.Questions {
		questions = append(questions, q)
		answers = append(answers, NewRecordA(q.Name, r.TTL, r.Addr))
	}
	resp := &Message{
		Header:    ReplyHeader(query.Header, len(questions), len(answers)),
		Questions: questions,
		Answers:   answers,
	}
	return resp, nil
}

// ServeDatagram parses a raw query, answers it, and returns the raw response.
//
// On malformed input it returns an error wrapping [ErrCannotUnmarshalMessage]
// and no response must be sent. A misconfigured responder fails every
// datagram with [ErrInvalidAnswerAddr]. The caller must not modify raw until
// ServeDatagram returns.
func (r *Responder) ServeDatagram(raw []byte) ([]byte, error) {
	query, err := ParseQuery(raw)
	if err != nil {
		return nil, err
	}
	resp, err := r.Respond(query)
	if err != nil {
		return nil, err
	}
	return resp.Serialize(), nil
}
