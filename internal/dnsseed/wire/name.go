// Package wire implements the DNS message codec: parsing compressed names
// out of an inbound datagram and writing names and resource records into a
// bounded output buffer. Every function here is a pure transformation over
// caller-owned byte slices (spec.md §4.1) — no allocation beyond the
// strings a parsed name is built from, no I/O, no shared state.
package wire

import (
	"strings"

	"github.com/dnsseedd/dnsseed/internal/dnsseed/domain"
)

// maxNameLength is the RFC 1035 total-name-length cap. The original C
// source enforced this only incidentally, via its 256-byte output buffer;
// spec.md §9 asks for an explicit cap independent of any buffer size.
const maxNameLength = 255

// maxPointerDepth bounds compression-pointer recursion independently of
// the forward-reference check below, per spec.md §9's "either is
// acceptable" guidance on preventing pointer loops.
const maxPointerDepth = 128

// ParseName reads a possibly-compressed DNS name starting at pos within
// msg and returns its dotted ASCII form (no trailing dot) and the cursor
// position immediately following the name (the 1-byte terminator, or the
// 2-byte pointer, whichever ended it).
func ParseName(msg []byte, pos int) (string, int, error) {
	return parseName(msg, pos, len(msg), maxPointerDepth)
}

func parseName(msg []byte, pos, end, depth int) (string, int, error) {
	var labels []string
	cur := pos

	for {
		if cur >= end {
			return "", 0, domain.ErrMalformed
		}
		length := int(msg[cur])
		cur++

		if length == 0 {
			name := strings.Join(labels, ".")
			if len(name) > maxNameLength {
				return "", 0, domain.ErrNameTooLong
			}
			return name, cur, nil
		}

		if length&0xC0 == 0xC0 {
			if cur >= end {
				return "", 0, domain.ErrMalformed
			}
			ref := (length&^0xC0)<<8 | int(msg[cur])
			cur++
			// Forward/self-reference check: the pointer's target must lie
			// strictly before the pointer's own first byte (cur-2).
			if ref >= cur-2 {
				return "", 0, domain.ErrMalformed
			}
			if depth <= 0 {
				return "", 0, domain.ErrMalformed
			}
			suffix, _, err := parseName(msg, ref, cur-2, depth-1)
			if err != nil {
				return "", 0, err
			}
			name := joinNames(labels, suffix)
			if len(name) > maxNameLength {
				return "", 0, domain.ErrNameTooLong
			}
			return name, cur, nil
		}

		if length > 63 {
			return "", 0, domain.ErrMalformed
		}
		if cur+length > end {
			return "", 0, domain.ErrMalformed
		}
		label := msg[cur : cur+length]
		if indexByte(label, '.') >= 0 {
			return "", 0, domain.ErrMalformed
		}
		labels = append(labels, string(label))
		cur += length
	}
}

func joinNames(labels []string, suffix string) string {
	if len(labels) == 0 {
		return suffix
	}
	if suffix == "" {
		return strings.Join(labels, ".")
	}
	return strings.Join(labels, ".") + "." + suffix
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// WriteName writes name into buf starting at pos, as dot-separated
// labels. If ptr is negative the name is terminated with a zero octet;
// otherwise it is terminated with a 2-byte compression pointer to ptr. A
// single trailing dot in name is tolerated (treated as already
// terminated), matching the original source's behavior; a leading dot or
// two consecutive dots is an empty label and an error.
func WriteName(buf []byte, pos int, name string, ptr int) (int, error) {
	cur := pos

	for len(name) > 0 {
		dot := strings.IndexByte(name, '.')
		var label string
		if dot < 0 {
			label = name
		} else {
			label = name[:dot]
		}
		if len(label) == 0 {
			return pos, domain.ErrEmptyLabel
		}
		if len(label) > 63 {
			return pos, domain.ErrLabelTooLong
		}
		if cur+1+len(label) > len(buf) {
			return pos, domain.ErrNoSpace
		}
		buf[cur] = byte(len(label))
		copy(buf[cur+1:], label)
		cur += 1 + len(label)

		if dot < 0 {
			break
		}
		name = name[dot+1:]
	}

	if ptr < 0 {
		if cur >= len(buf) {
			return pos, domain.ErrNoSpace
		}
		buf[cur] = 0
		cur++
	} else {
		if len(buf)-cur < 2 {
			return pos, domain.ErrNoSpace
		}
		buf[cur] = byte(ptr>>8) | 0xC0
		buf[cur+1] = byte(ptr & 0xFF)
		cur += 2
	}
	return cur, nil
}
