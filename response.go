//
// SPDX-License-Identifier: BSD-3-Clause
//
// Adapted from: https://github.com/ooni/probe-engine/blob/v0.23.0/netx/resolver/decoder.go
// Adapted from: https://github.com/golang/go/blob/go1.21.10/src/net/dnsclient_unix.go
//

package dnsstub

import (
	"github.com/miekg/dns"
)

// ValidateResponseForQuery validates a DNS response for a given query.
// On success it returns the single validated question from the query.
func ValidateResponseForQuery(query *Query, resp *Message) (Question, error) {
	// 1. make sure the message is actually a response
	if !resp.Header.Response {
		return Question{}, ErrInvalidResponse
	}

	// 2. make sure the response ID matches the query ID
	if resp.Header.ID != query.Header.ID {
		return Question{}, ErrInvalidResponse
	}

	// 3. make sure the query and the response contains a question
	if len(query.Questions) != 1 {
		return Question{}, ErrInvalidQuery
	}
	if len(resp.Questions) != 1 {
		return Question{}, ErrInvalidResponse
	}
	resp0 := resp.Questions[0]
	query0 := query.Questions[0]

	// 4. make sure the question name is correct
	if !resp0.Name.Equal(query0.Name) {
		return Question{}, ErrInvalidResponse
	}
	if resp0.Class != query0.Class {
		return Question{}, ErrInvalidResponse
	}
	if resp0.Type != query0.Type {
		return Question{}, ErrInvalidResponse
	}
	return query0, nil
}

// ResponseErrorFromRCODE maps an RCODE inside a valid DNS response
// to an error string using a suffix compatible with the error strings
// returned by [*net.Resolver].
//
// If the RCODE is zero and there are answers, this function returns nil.
func ResponseErrorFromRCODE(resp *Message) error {
	// 1. handle NXDOMAIN case by mapping it to EAI_NONAME
	if resp.Header.Rcode == dns.RcodeNameError {
		return ErrNoName
	}

	// 2. handle the case of lame referral by mapping it to EAI_NODATA
	if resp.Header.Rcode == dns.RcodeSuccess &&
		!resp.Header.Authoritative &&
		!resp.Header.RecursionAvailable &&
		len(resp.Answers) == 0 {
		return ErrNoData
	}

	// 3. handle any other error by mapping to EAI_FAIL
	if resp.Header.Rcode != dns.RcodeSuccess {
		if resp.Header.Rcode == dns.RcodeServerFailure {
			return ErrServerTemporarilyMisbehaving
		}
		return ErrServerMisbehaving
	}
	return nil
}

// ResponseExtractValidAnswers returns the answers whose name and class
// match the question, in the order in which they appear. If there are
// none, it returns [ErrNoData].
//
// Several RR types may answer a given query, so we do not filter by type.
func ResponseExtractValidAnswers(q0 Question, resp *Message) ([]ResourceRecord, error) {
	valid := []ResourceRecord{}
	for _, answer := range resp.Answers {
		if !answer.Name.Equal(q0.Name) || answer.Class != q0.Class {
			continue
		}
		valid = append(valid, answer)
	}
	if len(valid) < 1 {
		return nil, ErrNoData
	}
	return valid, nil
}

// Response is a DNS response.
//
// Construct a new instance using [ParseResponse].
type Response struct {
	// Query is the original query.
	Query *Query

	// Response is the response message.
	Response *Message

	// ValidRRs contains the valid RRs for the query.
	ValidRRs []ResourceRecord
}

// ParseResponse decodes raw and returns a [*Response] if it is a valid
// response to the given query.
func ParseResponse(query *Query, raw []byte) (*Response, error) {
	resp, err := ParseMessage(raw)
	if err != nil {
		return nil, err
	}

	q0, err := ValidateResponseForQuery(query, resp)
	if err != nil {
		return nil, err
	}

	if err := ResponseErrorFromRCODE(resp); err != nil {
		return nil, err
	}

	rrs, err := ResponseExtractValidAnswers(q0, resp)
	if err != nil {
		return nil, err
	}

	rp := &Response{
		Query:    query,
		Response: resp,
		ValidRRs: rrs,
	}
	return rp, nil
}

// RecordsA returns all the A records in the response.
func (r *Response) RecordsA() ([]string, error) {
	out := make([]string, 0, len(r.ValidRRs))
	for _, rr := range r.ValidRRs {
		if addr, ok := rr.AddrA(); ok {
			out = append(out, addr.String())
		}
	}
	if len(out) < 1 {
		return nil, ErrNoData
	}
	return out, nil
}
