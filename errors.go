// SPDX-License-Identifier: GPL-3.0-or-later

package dnsstub

import "errors"

// Errors emitted while decoding wire data. They are wrapped together
// with [ErrCannotUnmarshalMessage] by [ParseQuery] and [ParseMessage].
var (
	// ErrTruncatedInput means the buffer is shorter than the field being read.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrInvalidLabelLength means a label length byte exceeds 63 or the
	// label content runs past the end of the buffer.
	ErrInvalidLabelLength = errors.New("invalid label length")

	// ErrPointerCycle means a compression pointer does not point strictly
	// before its own offset.
	ErrPointerCycle = errors.New("compression pointer cycle")

	// ErrUnterminatedName means the buffer ended before the zero terminator
	// or a compression pointer.
	ErrUnterminatedName = errors.New("unterminated name")

	// ErrNameTooLong means the expanded name exceeds 255 octets.
	ErrNameTooLong = errors.New("name too long")
)

// ErrInconsistentRecord is a contract violation when encoding a resource record.
var ErrInconsistentRecord = errors.New("inconsistent resource record")

// ErrInvalidAnswerAddr means a [Responder] has no IPv4 address to answer with.
var ErrInvalidAnswerAddr = errors.New("answer address is not IPv4")

// These error messages use the same suffixes used by the Go standard library.
var (
	// ErrCannotUnmarshalMessage indicates that we cannot unmarshal a DNS message.
	ErrCannotUnmarshalMessage = errors.New("cannot unmarshal DNS message")

	// ErrInvalidQuery means that the query does not contain a single question.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidResponse means that the response is not a response message
	// or its questions do not match the query.
	ErrInvalidResponse = errors.New("invalid DNS response")

	// ErrNoName indicates that the server response code is NXDOMAIN.
	ErrNoName = errors.New("no such host")

	// ErrServerMisbehaving indicates that the server response code is
	// neither 0, nor NXDOMAIN, nor SERVFAIL.
	ErrServerMisbehaving = errors.New("server misbehaving")

	// ErrServerTemporarilyMisbehaving indicates that the server answer is SERVFAIL.
	//
	// The error message is same as [ErrServerMisbehaving] for compatibility with the
	// Go standard library, which assigns the same error string to both errors.
	ErrServerTemporarilyMisbehaving = errors.New("server misbehaving")

	// ErrNoData indicates that there is no pertinent answer in the response.
	ErrNoData = errors.New("no answer from DNS server")
)
