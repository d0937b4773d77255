// SPDX-License-Identifier: GPL-3.0-or-later

package dnsstub

import (
	"encoding/binary"
	"fmt"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
)

const (
	// maxNameLength is the maximum wire length of a name, terminator included.
	maxNameLength = 255

	// pointerMask selects the two bits marking a compression pointer.
	pointerMask = 0xC0
)

// Name is a domain name in resolved wire format: length-prefixed labels
// followed by a zero terminator, without compression pointers.
type Name []byte

// RootName is the root domain name.
var RootName = Name{0}

// DecodeName decodes the name starting at off inside msg, following any
// compression pointer, and returns the resolved name together with the
// offset of the first byte after the name in the original stream.
//
// A compression pointer must point strictly before the start of the label
// run containing it, so the jump targets strictly decrease and the loop
// terminates after at most off jumps.
func DecodeName(msg []byte, off int) (Name, int, error) {
	if off < 0 {
		return nil, 0, fmt.Errorf("%w: negative name offset %d", ErrTruncatedInput, off)
	}
	name := make(Name, 0, 32)
	pos, runStart, next := off, off, -1
	for {
		if pos >= len(msg) {
			return nil, 0, fmt.Errorf("%w: name starting at %d", ErrUnterminatedName, off)
		}
		length := msg[pos]

		switch length & pointerMask {
		case 0x00: // label of at most 63 bytes, or terminator
			if length == 0 {
				name = append(name, 0)
				if next < 0 {
					next = pos + 1
				}
				return name, next, nil
			}
			end := pos + 1 + int(length)
			if end > len(msg) {
				return nil, 0, fmt.Errorf("%w: label of %d bytes at %d overflows message", ErrInvalidLabelLength, length, pos)
			}
			if len(name)+1+int(length)+1 > maxNameLength {
				return nil, 0, fmt.Errorf("%w: name starting at %d", ErrNameTooLong, off)
			}
			name = append(name, msg[pos:end]...)
			pos = end

		case pointerMask:
			if pos+2 > len(msg) {
				return nil, 0, fmt.Errorf("%w: compression pointer at %d", ErrTruncatedInput, pos)
			}
			target := int(binary.BigEndian.Uint16(msg[pos:pos+2]) & 0x3FFF)
			if target >= runStart {
				return nil, 0, fmt.Errorf("%w: pointer at %d targets %d", ErrPointerCycle, pos, target)
			}
			if next < 0 {
				next = pos + 2
			}
			pos, runStart = target, target

		default:
			return nil, 0, fmt.Errorf("%w: 0x%02x at %d", ErrInvalidLabelLength, length, pos)
		}
	}
}

// ParseName converts a presentation-format name (e.g., "www.example.com")
// into its wire format, applying IDNA to internationalized labels.
func ParseName(s string) (Name, error) {
	if s == "" || s == "." {
		return Name{0}, nil
	}

	// IDNA encode the domain name.
	punyName, err := idna.Lookup.ToASCII(s)
	if err != nil {
		return nil, err
	}

	// Ensure the domain name is fully qualified.
	if !dns.IsFqdn(punyName) {
		punyName = dns.Fqdn(punyName)
	}

	buf := make([]byte, maxNameLength+1)
	n, err := dns.PackDomainName(punyName, buf, 0, nil, false)
	if err != nil {
		return nil, fmt.Errorf("cannot encode name %q: %w", s, err)
	}
	if n > maxNameLength {
		return nil, fmt.Errorf("%w: %q", ErrNameTooLong, s)
	}
	return Name(buf[:n]), nil
}

// MustParseName is like [ParseName] but panics on error.
func MustParseName(s string) Name {
	name, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return name
}

// Append appends the uncompressed wire representation of n to b.
func (n Name) Append(b []byte) []byte {
	return append(b, n...)
}

// Labels returns the labels of n, excluding the terminator.
//
// The returned slices alias n.
func (n Name) Labels() [][]byte {
	var labels [][]byte
	for i := 0; i < len(n) && n[i] != 0; {
		end := i + 1 + int(n[i])
		if end > len(n) {
			break
		}
		labels = append(labels, n[i+1:end])
		i = end
	}
	return labels
}

// Equal reports whether n and other are the same name ignoring ASCII case.
func (n Name) Equal(other Name) bool {
	return responseEqualASCIIName(string(n), string(other))
}

// String returns n in presentation format (e.g., "www.example.com.").
func (n Name) String() string {
	s, _, err := dns.UnpackDomainName(n, 0)
	if err != nil {
		return fmt.Sprintf("<invalid name %q>", []byte(n))
	}
	return s
}

// SPDX-License-Identifier: BSD-3-Clause
//
// Borrowed from Go src/net package.
func responseEqualASCIIName(x, y string) bool {
	if len(x) != len(y) {
		return false
	}
	for i := 0; i < len(x); i++ {
		a := x[i]
		b := y[i]
		if 'A' <= a && a <= 'Z' {
			a += 0x20
		}
		if 'A' <= b && b <= 'Z' {
			b += 0x20
		}
		if a != b {
			return false
		}
	}
	return true
}
