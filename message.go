// SPDX-License-Identifier: GPL-3.0-or-later

package dnsstub

import (
	"fmt"

	"github.com/bassosimone/runtimex"
	"github.com/miekg/dns"
)

// Message is a complete DNS message.
//
// The counts in Header must match the length of each section.
type Message struct {
	Header     Header
	Questions  []Question
	Answers    []ResourceRecord
	Authority  []ResourceRecord
	Additional []ResourceRecord
}

// ParseMessage decodes a complete DNS message, trusting the header counts.
//
// Use [ParseQuery] for inbound queries, whose counts are not trusted.
func ParseMessage(raw []byte) (*Message, error) {
	header, err := ParseHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCannotUnmarshalMessage, err)
	}

	m := &Message{Header: header}
	off := HeaderSize
	for i := 0; i < int(header.QDCount); i++ {
		q, next, err := DecodeQuestion(raw, off)
		if err != nil {
			return nil, fmt.Errorf("%w: question #%d: %w", ErrCannotUnmarshalMessage, i+1, err)
		}
		m.Questions = append(m.Questions, q)
		off = next
	}

	sections := []struct {
		name  string
		count uint16
		dest  *[]ResourceRecord
	}{
		{"answer", header.ANCount, &m.Answers},
		{"authority", header.NSCount, &m.Authority},
		{"additional", header.ARCount, &m.Additional},
	}
	for _, section := range sections {
		for i := 0; i < int(section.count); i++ {
			rr, next, err := DecodeResourceRecord(raw, off)
			if err != nil {
				return nil, fmt.Errorf("%w: %s #%d: %w", ErrCannotUnmarshalMessage, section.name, i+1, err)
			}
			*section.dest = append(*section.dest, rr)
			off = next
		}
	}
	return m, nil
}

// Serialize returns the wire representation of m: the header followed by
// each section in order. Names are never compressed.
//
// It panics if the header counts do not match the sections or if a
// record is inconsistent, since both are programming errors.
func (m *Message) Serialize() []byte {
	if int(m.Header.QDCount) != len(m.Questions) ||
		int(m.Header.ANCount) != len(m.Answers) ||
		int(m.Header.NSCount) != len(m.Authority) ||
		int(m.Header.ARCount) != len(m.Additional) {
		panic(fmt.Sprintf("dnsstub: header counts %d/%d/%d/%d do not match sections %d/%d/%d/%d",
			m.Header.QDCount, m.Header.ANCount, m.Header.NSCount, m.Header.ARCount,
			len(m.Questions), len(m.Answers), len(m.Authority), len(m.Additional)))
	}
	b := m.Header.Append(make([]byte, 0, MaxUDPSize))
	for _, q := range m.Questions {
		b = q.Append(b)
	}
	for _, section := range [][]ResourceRecord{m.Answers, m.Authority, m.Additional} {
		for _, rr := range section {
			b = runtimex.PanicOnError1(rr.Append(b))
		}
	}
	return b
}

// DNSMsg converts m to a [*dns.Msg], which is handy for printing
// messages the way dig does.
func (m *Message) DNSMsg() (*dns.Msg, error) {
	msg := new(dns.Msg)
	if err := msg.Unpack(m.Serialize()); err != nil {
		return nil, err
	}
	return msg, nil
}
