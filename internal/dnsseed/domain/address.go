package domain

import (
	"fmt"
	"net"
)

// Family tags which shape an Address holds.
type Family uint8

const (
	FamilyV4 Family = 4
	FamilyV6 Family = 6
)

// Address is an immutable tagged IPv4/IPv6 address, the unit the
// address-lookup callback hands back to the responder (spec.md §3, §6).
type Address struct {
	family Family
	v4     [4]byte
	v6     [16]byte
}

// NewAddressV4 constructs an IPv4 Address from its four octets.
func NewAddressV4(b [4]byte) Address {
	return Address{family: FamilyV4, v4: b}
}

// NewAddressV6 constructs an IPv6 Address from its sixteen octets.
func NewAddressV6(b [16]byte) Address {
	return Address{family: FamilyV6, v6: b}
}

// AddressFromNetIP converts a net.IP into an Address, choosing the
// family based on whether the address has a 4-byte form.
func AddressFromNetIP(ip net.IP) (Address, error) {
	if v4 := ip.To4(); v4 != nil {
		var b [4]byte
		copy(b[:], v4)
		return NewAddressV4(b), nil
	}
	v6 := ip.To16()
	if v6 == nil {
		return Address{}, fmt.Errorf("dnsseed: not a valid IP address: %v", ip)
	}
	var b [16]byte
	copy(b[:], v6)
	return NewAddressV6(b), nil
}

// Family reports whether this is an IPv4 or IPv6 address.
func (a Address) Family() Family { return a.family }

// IsV4 reports whether a holds an IPv4 address.
func (a Address) IsV4() bool { return a.family == FamilyV4 }

// IsV6 reports whether a holds an IPv6 address.
func (a Address) IsV6() bool { return a.family == FamilyV6 }

// V4 returns the four IPv4 octets. Only meaningful when IsV4() is true.
func (a Address) V4() [4]byte { return a.v4 }

// V6 returns the sixteen IPv6 octets. Only meaningful when IsV6() is true.
func (a Address) V6() [16]byte { return a.v6 }

// String renders the address in standard dotted or colon-hex notation.
func (a Address) String() string {
	if a.family == FamilyV4 {
		return net.IP(a.v4[:]).String()
	}
	return net.IP(a.v6[:]).String()
}
