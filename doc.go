// SPDX-License-Identifier: GPL-3.0-or-later

// Package dnsstub is a minimal DNS message codec and stub responder.
//
// [ParseQuery] decodes a raw query datagram into a [*Query], following
// label compression pointers. [*Responder] synthesizes one A record per
// question and [*Message.Serialize] packs the response back to the wire.
// [*Responder.ServeDatagram] chains the three steps.
//
// The wire codec is implemented here: [ParseHeader], [DecodeName],
// [DecodeQuestion] and [DecodeResourceRecord], together with the matching
// Append methods. We rely on [github.com/miekg/dns] only for constants,
// presentation-format names and diagnostics.
//
// For clients, [NewQuery] builds a query and [ParseResponse] validates
// the response against it.
package dnsstub
