// SPDX-License-Identifier: GPL-3.0-or-later

package dnsstub

import (
	"encoding/binary"
	"fmt"

	"github.com/miekg/dns"
)

// Question is a DNS question with a resolved name.
type Question struct {
	Name  Name
	Type  uint16
	Class uint16
}

// DecodeQuestion decodes the question starting at off inside msg and
// returns it along with the offset of the first byte after it.
//
// The whole message is required because the name may point back into it.
func DecodeQuestion(msg []byte, off int) (Question, int, error) {
	name, off, err := DecodeName(msg, off)
	if err != nil {
		return Question{}, 0, err
	}
	if off+4 > len(msg) {
		return Question{}, 0, fmt.Errorf("%w: question type and class at %d", ErrTruncatedInput, off)
	}
	q := Question{
		Name:  name,
		Type:  binary.BigEndian.Uint16(msg[off : off+2]),
		Class: binary.BigEndian.Uint16(msg[off+2 : off+4]),
	}
	return q, off + 4, nil
}

// Append appends the wire representation of q to b.
func (q Question) Append(b []byte) []byte {
	b = q.Name.Append(b)
	b = binary.BigEndian.AppendUint16(b, q.Type)
	return binary.BigEndian.AppendUint16(b, q.Class)
}

// String returns a dig-like representation of q.
func (q Question) String() string {
	return fmt.Sprintf("%s\t%s\t%s", q.Name, dns.Class(q.Class), dns.Type(q.Type))
}
