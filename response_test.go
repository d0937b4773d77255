//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/dns/dnscore/response_test.go
//

package dnsstub

import (
	"net/netip"
	"testing"

	"github.com/bassosimone/runtimex"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func TestValidateResponseForQuery(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Query, *Message)
		expected error
	}{
		{
			name: "ValidResponse",
			modify: func(query *Query, resp *Message) {
				// No modification needed, valid response.
			},
			expected: nil,
		},

		{
			name: "ValidResponseDifferentCase",
			modify: func(query *Query, resp *Message) {
				resp.Questions[0].Name = Name("\x07EXAMPLE\x03com\x00")
			},
			expected: nil,
		},

		{
			name: "InvalidResponseID",
			modify: func(query *Query, resp *Message) {
				resp.Header.ID = query.Header.ID + 1
			},
			expected: ErrInvalidResponse,
		},

		{
			name: "InvalidResponseNotAResponse",
			modify: func(query *Query, resp *Message) {
				resp.Header.Response = false
			},
			expected: ErrInvalidResponse,
		},

		{
			name: "InvalidQueryNoQuestion",
			modify: func(query *Query, resp *Message) {
				query.Questions = nil
			},
			expected: ErrInvalidQuery,
		},

		{
			name: "InvalidResponseNoQuestion",
			modify: func(query *Query, resp *Message) {
				resp.Questions = nil
			},
			expected: ErrInvalidResponse,
		},

		{
			name: "InvalidResponseQuestionName",
			modify: func(query *Query, resp *Message) {
				resp.Questions[0].Name = MustParseName("invalid.com")
			},
			expected: ErrInvalidResponse,
		},

		{
			name: "InvalidResponseQuestionClass",
			modify: func(query *Query, resp *Message) {
				resp.Questions[0].Class = dns.ClassCHAOS
			},
			expected: ErrInvalidResponse,
		},

		{
			name: "InvalidResponseQuestionType",
			modify: func(query *Query, resp *Message) {
				resp.Questions[0].Type = dns.TypeAAAA
			},
			expected: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := runtimex.PanicOnError1(NewQuery("example.com", dns.TypeA))
			resp := runtimex.PanicOnError1(NewResponder().Respond(query.Clone()))

			tt.modify(query, resp)

			q0, err := ValidateResponseForQuery(query, resp)
			if tt.expected != nil {
				require.ErrorIs(t, err, tt.expected)
				return
			}
			require.NoError(t, err)
			require.Equal(t, query.Questions[0], q0)
		})
	}
}

func TestResponseErrorFromRCODE(t *testing.T) {
	tests := []struct {
		name     string
		rcode    uint8
		answers  int
		expected error
	}{
		{"NameError", dns.RcodeNameError, 0, ErrNoName},
		{"ServerFailure", dns.RcodeServerFailure, 0, ErrServerTemporarilyMisbehaving},
		{"NotImplemented", dns.RcodeNotImplemented, 1, ErrServerMisbehaving},
		{"LameReferral", dns.RcodeSuccess, 0, ErrNoData},
		{"Success", dns.RcodeSuccess, 1, nil},
		{"Refused", dns.RcodeRefused, 0, ErrServerMisbehaving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &Message{Header: Header{Response: true, Rcode: tt.rcode}}
			for range tt.answers {
				resp.Answers = append(resp.Answers, NewRecordA(MustParseName("example.com"), 60, DefaultAddr))
			}

			err := ResponseErrorFromRCODE(resp)
			if tt.expected != nil {
				require.ErrorIs(t, err, tt.expected)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestResponseExtractValidAnswers(t *testing.T) {
	q0 := Question{Name: MustParseName("example.com"), Type: dns.TypeA, Class: dns.ClassINET}
	good := NewRecordA(Name("\x07Example\x03COM\x00"), 60, DefaultAddr)
	otherName := NewRecordA(MustParseName("example.org"), 60, DefaultAddr)
	otherClass := NewRecordA(MustParseName("example.com"), 60, DefaultAddr)
	otherClass.Class = dns.ClassCHAOS
	otherType := ResourceRecord{Name: MustParseName("example.com"), Type: dns.TypeTXT, Class: dns.ClassINET, Data: []byte("\x01x")}

	t.Run("FiltersByNameAndClass", func(t *testing.T) {
		resp := &Message{Answers: []ResourceRecord{otherName, good, otherClass, otherType}}
		valid, err := ResponseExtractValidAnswers(q0, resp)
		require.NoError(t, err)
		require.Equal(t, []ResourceRecord{good, otherType}, valid)
	})

	t.Run("NoValidAnswers", func(t *testing.T) {
		resp := &Message{Answers: []ResourceRecord{otherName, otherClass}}
		valid, err := ResponseExtractValidAnswers(q0, resp)
		require.ErrorIs(t, err, ErrNoData)
		require.Nil(t, valid)
	})
}

func TestParseResponse(t *testing.T) {
	query := runtimex.PanicOnError1(NewQuery("codecrafters.io", dns.TypeA))
	raw := runtimex.PanicOnError1(NewResponder().ServeDatagram(query.Pack()))

	resp, err := ParseResponse(query, raw)
	require.NoError(t, err)
	require.Same(t, query, resp.Query)
	require.Len(t, resp.ValidRRs, 1)

	addrs, err := resp.RecordsA()
	require.NoError(t, err)
	require.Equal(t, []string{"8.8.8.8"}, addrs)
}

func TestParseResponseErrors(t *testing.T) {
	query := runtimex.PanicOnError1(NewQuery("codecrafters.io", dns.TypeA))

	t.Run("Malformed", func(t *testing.T) {
		_, err := ParseResponse(query, []byte{1, 2, 3})
		require.ErrorIs(t, err, ErrCannotUnmarshalMessage)
	})

	t.Run("WrongID", func(t *testing.T) {
		other := query.Clone()
		other.Header.ID++
		raw := runtimex.PanicOnError1(NewResponder().Respond(other)).Serialize()
		_, err := ParseResponse(query, raw)
		require.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("NotImplemented", func(t *testing.T) {
		other := query.Clone()
		other.Header.Opcode = dns.OpcodeNotify
		raw := runtimex.PanicOnError1(NewResponder().Respond(other)).Serialize()
		_, err := ParseResponse(query, raw)
		require.ErrorIs(t, err, ErrServerMisbehaving)
	})

	t.Run("NoData", func(t *testing.T) {
		resp := runtimex.PanicOnError1(NewResponder().Respond(query))
		resp.Answers[0].Name = MustParseName("example.org")
		_, err := ParseResponse(query, resp.Serialize())
		require.ErrorIs(t, err, ErrNoData)
	})
}

func TestResponseRecordsA(t *testing.T) {
	resp := &Response{ValidRRs: []ResourceRecord{
		{Name: RootName, Type: dns.TypeTXT, Class: dns.ClassINET, Data: []byte("\x01x")},
		NewRecordA(RootName, 1, netip.MustParseAddr("192.0.2.1")),
	}}
	addrs, err := resp.RecordsA()
	require.NoError(t, err)
	require.Equal(t, []string{"192.0.2.1"}, addrs)

	resp.ValidRRs = resp.ValidRRs[:1]
	_, err = resp.RecordsA()
	require.ErrorIs(t, err, ErrNoData)
}
