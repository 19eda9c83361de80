package domain

import "fmt"

// RRType represents a DNS resource record type as carried on the wire.
type RRType uint16

// Record types this server recognizes in questions and emits in answers.
// See spec.md §3: A/AAAA answers, NS/SOA for delegation and negative
// responses, ANY as a query-only wildcard class of type.
const (
	RRTypeA    RRType = 1
	RRTypeNS   RRType = 2
	RRTypeSOA  RRType = 6
	RRTypeAAAA RRType = 28
	RRTypeANY  RRType = 255
)

// IsValid reports whether t is one of the record types this server
// recognizes in a question.
func (t RRType) IsValid() bool {
	switch t {
	case RRTypeA, RRTypeNS, RRTypeSOA, RRTypeAAAA, RRTypeANY:
		return true
	default:
		return false
	}
}

// String returns the textual name of t, or "UNKNOWN(n)" for anything this
// server does not recognize.
func (t RRType) String() string {
	switch t {
	case RRTypeA:
		return "A"
	case RRTypeNS:
		return "NS"
	case RRTypeSOA:
		return "SOA"
	case RRTypeAAAA:
		return "AAAA"
	case RRTypeANY:
		return "ANY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint16(t))
	}
}

// wantsV4 and wantsV6 report whether t is a query type for which A or AAAA
// answers, respectively, are appropriate (ANY calls for both).
func (t RRType) wantsV4() bool { return t == RRTypeA || t == RRTypeANY }
func (t RRType) wantsV6() bool { return t == RRTypeAAAA || t == RRTypeANY }
