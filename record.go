// SPDX-License-Identifier: GPL-3.0-or-later

package dnsstub

import (
	"encoding/binary"
	"fmt"
	"math"
	"net/netip"

	"github.com/miekg/dns"
)

// ResourceRecord is a DNS resource record.
//
// The RDLENGTH field is not stored: it is always len(Data).
type ResourceRecord struct {
	Name  Name
	Type  uint16
	Class uint16
	TTL   uint32
	Data  []byte
}

// NewRecordA returns an A record for name pointing to addr, which must be
// an IPv4 or IPv4-mapped IPv6 address.
func NewRecordA(name Name, ttl uint32, addr netip.Addr) ResourceRecord {
	a4 := addr.As4()
	return ResourceRecord{
		Name:  name,
		Type:  dns.TypeA,
		Class: dns.ClassINET,
		TTL:   ttl,
		Data:  a4[:],
	}
}

// DecodeResourceRecord decodes the record starting at off inside msg and
// returns it along with the offset of the first byte after it.
func DecodeResourceRecord(msg []byte, off int) (ResourceRecord, int, error) {
	name, off, err := DecodeName(msg, off)
	if err != nil {
		return ResourceRecord{}, 0, err
	}
	if off+10 > len(msg) {
		return ResourceRecord{}, 0, fmt.Errorf("%w: record fields at %d", ErrTruncatedInput, off)
	}
	rr := ResourceRecord{
		Name:  name,
		Type:  binary.BigEndian.Uint16(msg[off : off+2]),
		Class: binary.BigEndian.Uint16(msg[off+2 : off+4]),
		TTL:   binary.BigEndian.Uint32(msg[off+4 : off+8]),
	}
	rdlength := int(binary.BigEndian.Uint16(msg[off+8 : off+10]))
	off += 10
	if off+rdlength > len(msg) {
		return ResourceRecord{}, 0, fmt.Errorf("%w: rdata needs %d bytes, have %d", ErrTruncatedInput, rdlength, len(msg)-off)
	}
	rr.Data = append([]byte(nil), msg[off:off+rdlength]...)
	return rr, off + rdlength, nil
}

// Append appends the wire representation of rr to b.
//
// It fails with [ErrInconsistentRecord] when Data does not fit the 16-bit
// RDLENGTH field or when Name is not a terminated name.
func (rr ResourceRecord) Append(b []byte) ([]byte, error) {
	if len(rr.Data) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d bytes of rdata", ErrInconsistentRecord, len(rr.Data))
	}
	if len(rr.Name) < 1 || rr.Name[len(rr.Name)-1] != 0 {
		return nil, fmt.Errorf("%w: unterminated name %q", ErrInconsistentRecord, []byte(rr.Name))
	}
	b = rr.Name.Append(b)
	b = binary.BigEndian.AppendUint16(b, rr.Type)
	b = binary.BigEndian.AppendUint16(b, rr.Class)
	b = binary.BigEndian.AppendUint32(b, rr.TTL)
	b = binary.BigEndian.AppendUint16(b, uint16(len(rr.Data)))
	return append(b, rr.Data...), nil
}

// AddrA returns the address carried by an IN A record.
func (rr ResourceRecord) AddrA() (netip.Addr, bool) {
	if rr.Type != dns.TypeA || rr.Class != dns.ClassINET || len(rr.Data) != 4 {
		return netip.Addr{}, false
	}
	return netip.AddrFrom4([4]byte(rr.Data)), true
}

// String returns a dig-like representation of rr.
func (rr ResourceRecord) String() string {
	data := fmt.Sprintf("%x", rr.Data)
	if addr, ok := rr.AddrA(); ok {
		data = addr.String()
	}
	return fmt.Sprintf("%s\t%d\t%s\t%s\t%s", rr.Name, rr.TTL, dns.Class(rr.Class), dns.Type(rr.Type), data)
}
