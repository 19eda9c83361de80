package wire

import (
	"encoding/binary"

	"github.com/dnsseedd/dnsseed/internal/dnsseed/domain"
)

// writeRRHeader writes the common NAME/TYPE/CLASS/TTL prefix shared by
// every resource record and returns the cursor just past it, pointing at
// where RDLENGTH/RDATA begins. On any failure it returns pos unchanged.
func writeRRHeader(buf []byte, pos int, name string, namePtr int, typ domain.RRType, class domain.RRClass, ttl uint32) (int, error) {
	cur, err := WriteName(buf, pos, name, namePtr)
	if err != nil {
		return pos, err
	}
	if len(buf)-cur < 8 {
		return pos, domain.ErrNoSpace
	}
	binary.BigEndian.PutUint16(buf[cur:], uint16(typ))
	binary.BigEndian.PutUint16(buf[cur+2:], uint16(class))
	binary.BigEndian.PutUint32(buf[cur+4:], ttl)
	return cur + 8, nil
}

// WriteA appends an A record. addr must hold an IPv4 address. On any
// failure buf is left exactly as it was: pos is returned unchanged.
func WriteA(buf []byte, pos int, name string, namePtr int, class domain.RRClass, ttl uint32, addr domain.Address) (int, error) {
	if !addr.IsV4() {
		return pos, domain.ErrWrongFamily
	}
	cur, err := writeRRHeader(buf, pos, name, namePtr, domain.RRTypeA, class, ttl)
	if err != nil {
		return pos, err
	}
	if len(buf)-cur < 6 {
		return pos, domain.ErrNoSpace
	}
	binary.BigEndian.PutUint16(buf[cur:], 4)
	v4 := addr.V4()
	copy(buf[cur+2:], v4[:])
	return cur + 6, nil
}

// WriteAAAA appends an AAAA record. addr must hold an IPv6 address.
func WriteAAAA(buf []byte, pos int, name string, namePtr int, class domain.RRClass, ttl uint32, addr domain.Address) (int, error) {
	if !addr.IsV6() {
		return pos, domain.ErrWrongFamily
	}
	cur, err := writeRRHeader(buf, pos, name, namePtr, domain.RRTypeAAAA, class, ttl)
	if err != nil {
		return pos, err
	}
	if len(buf)-cur < 18 {
		return pos, domain.ErrNoSpace
	}
	binary.BigEndian.PutUint16(buf[cur:], 16)
	v6 := addr.V6()
	copy(buf[cur+2:], v6[:])
	return cur + 18, nil
}

// WriteNS appends an NS record whose RDATA is nsName, written
// uncompressed. RDLENGTH is backpatched once nsName's encoded length is
// known.
func WriteNS(buf []byte, pos int, name string, namePtr int, class domain.RRClass, ttl uint32, nsName string) (int, error) {
	cur, err := writeRRHeader(buf, pos, name, namePtr, domain.RRTypeNS, class, ttl)
	if err != nil {
		return pos, err
	}
	if len(buf)-cur < 2 {
		return pos, domain.ErrNoSpace
	}
	rdlenPos := cur
	rdataStart := cur + 2
	rdataEnd, err := WriteName(buf, rdataStart, nsName, -1)
	if err != nil {
		return pos, err
	}
	binary.BigEndian.PutUint16(buf[rdlenPos:], uint16(rdataEnd-rdataStart))
	return rdataEnd, nil
}

// SOA timer defaults, matching the zone-authority values written by the
// original seed server.
const (
	SOARefresh = uint32(604800)
	SOARetry   = uint32(86400)
	SOAExpire  = uint32(2592000)
	SOAMinimum = uint32(604800)
)

// WriteSOA appends an SOA record. mname and rname are written
// uncompressed; serial/refresh/retry/expire/minimum follow as 32-bit
// fields.
func WriteSOA(buf []byte, pos int, name string, namePtr int, class domain.RRClass, ttl uint32, mname, rname string, serial, refresh, retry, expire, minimum uint32) (int, error) {
	cur, err := writeRRHeader(buf, pos, name, namePtr, domain.RRTypeSOA, class, ttl)
	if err != nil {
		return pos, err
	}
	if len(buf)-cur < 2 {
		return pos, domain.ErrNoSpace
	}
	rdlenPos := cur
	rdataStart := cur + 2

	next, err := WriteName(buf, rdataStart, mname, -1)
	if err != nil {
		return pos, err
	}
	next, err = WriteName(buf, next, rname, -1)
	if err != nil {
		return pos, err
	}
	if len(buf)-next < 20 {
		return pos, domain.ErrNoSpace
	}
	binary.BigEndian.PutUint32(buf[next:], serial)
	binary.BigEndian.PutUint32(buf[next+4:], refresh)
	binary.BigEndian.PutUint32(buf[next+8:], retry)
	binary.BigEndian.PutUint32(buf[next+12:], expire)
	binary.BigEndian.PutUint32(buf[next+16:], minimum)
	next += 20

	binary.BigEndian.PutUint16(buf[rdlenPos:], uint16(next-rdataStart))
	return next, nil
}
