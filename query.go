// SPDX-License-Identifier: GPL-3.0-or-later

package dnsstub

import (
	"fmt"
	"slices"

	"github.com/miekg/dns"
)

// MaxUDPSize is the maximum size of a classic UDP DNS message.
const MaxUDPSize = 512

// Query is a parsed DNS query: the header as received and its questions.
//
// Construct using [ParseQuery] or [NewQuery].
type Query struct {
	// Header is the query header as found on the wire.
	Header Header

	// Questions contains the questions in wire order.
	Questions []Question
}

// ParseQuery decodes a raw query datagram.
//
// Questions are decoded back to back starting right after the header
// until the datagram is exhausted, only zero padding is left, or the
// number of questions announced by a nonzero QDCOUNT has been read.
// Names in later questions may point into earlier ones.
//
// Any decoding failure is wrapped with [ErrCannotUnmarshalMessage]; no
// partial query is returned.
func ParseQuery(raw []byte) (*Query, error) {
	header, err := ParseHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCannotUnmarshalMessage, err)
	}

	query := &Query{Header: header}
	off := HeaderSize
	for off < len(raw) && !queryOnlyPadding(raw[off:]) {
		if header.QDCount > 0 && len(query.Questions) >= int(header.QDCount) {
			break
		}
		q, next, err := DecodeQuestion(raw, off)
		if err != nil {
			return nil, fmt.Errorf("%w: question #%d: %w", ErrCannotUnmarshalMessage, len(query.Questions)+1, err)
		}
		query.Questions = append(query.Questions, q)
		off = next
	}
	return query, nil
}

func queryOnlyPadding(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// NewQuery constructs a new [*Query] for the given name and type.
//
// The query uses a randomized ID, requests recursion, and uses the IN class.
func NewQuery(name string, qtype uint16) (*Query, error) {
	wireName, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	query := &Query{
		Header: Header{
			ID:               dns.Id(),
			Opcode:           dns.OpcodeQuery,
			RecursionDesired: true,
			QDCount:          1,
		},
		Questions: []Question{{
			Name:  wireName,
			Type:  qtype,
			Class: dns.ClassINET,
		}},
	}
	return query, nil
}

// Clone returns a deep copy of the query.
func (q *Query) Clone() *Query {
	questions := make([]Question, 0, len(q.Questions))
	for _, question := range q.Questions {
		question.Name = slices.Clone(question.Name)
		questions = append(questions, question)
	}
	return &Query{
		Header:    q.Header,
		Questions: questions,
	}
}

// Pack serializes the query. The counts in the header are derived from
// the questions, so a query parsed from the wire packs consistently.
func (q *Query) Pack() []byte {
	header := q.Header
	header.QDCount = uint16(len(q.Questions))
	header.ANCount, header.NSCount, header.ARCount = 0, 0, 0
	b := header.Append(make([]byte, 0, MaxUDPSize))
	for _, question := range q.Questions {
		b = question.Append(b)
	}
	return b
}
