package domain

import (
	"fmt"
	"strings"
)

// ZoneConfig is the static, per-server-lifetime configuration for the zone
// this server answers for (spec.md §3). It is loaded once at startup and
// never mutated afterward.
type ZoneConfig struct {
	// Host is the delegated zone apex, e.g. "seed.example.org". Matching
	// against it is case-insensitive.
	Host string
	// NS is the authoritative nameserver name advertised in NS answers
	// and the SOA MNAME.
	NS string
	// Mbox is the zone contact mailbox in DNS-encoded form (dots instead
	// of '@'). Empty means SOA records are suppressed entirely.
	Mbox string
	// DataTTL is the TTL, in seconds, attached to A/AAAA answers.
	DataTTL uint32
	// NSTTL is the TTL, in seconds, attached to NS and SOA records.
	NSTTL uint32
}

// Validate checks that the zone configuration is well formed.
func (z ZoneConfig) Validate() error {
	if z.Host == "" {
		return fmt.Errorf("dnsseed: zone host must not be empty")
	}
	if z.NS == "" {
		return fmt.Errorf("dnsseed: zone ns must not be empty")
	}
	if strings.HasPrefix(z.Host, ".") || strings.HasSuffix(z.Host, ".") {
		return fmt.Errorf("dnsseed: zone host must not have a leading or trailing dot")
	}
	return nil
}

// HasMbox reports whether SOA records should be synthesized for this zone.
func (z ZoneConfig) HasMbox() bool {
	return z.Mbox != ""
}

// Matches reports whether name falls within this zone: it is exactly the
// apex, or it ends with ".<apex>". The comparison is case-insensitive, per
// spec.md §4.2.2.
func (z ZoneConfig) Matches(name string) bool {
	if strings.EqualFold(name, z.Host) {
		return true
	}
	suffix := "." + z.Host
	return len(name) > len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix)
}
