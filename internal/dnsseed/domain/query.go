package domain

// QueryDescriptor is the parsed form of an inbound question, derived fresh
// for every request (spec.md §3).
type QueryDescriptor struct {
	// ID is the 16-bit transaction identifier, echoed verbatim in the reply.
	ID uint16
	// FlagsIn carries the two raw flag bytes from the request header,
	// inspected for QR and OPCODE.
	FlagsIn [2]byte
	// QName is the parsed owner name, lowercase-compared against the zone.
	QName string
	// QType and QClass are the 16-bit values following QNAME on the wire.
	QType  RRType
	QClass RRClass
	// QNameOffset is the byte offset within the input buffer at which
	// QName begins. It is reused as the compression-pointer target for
	// every owner name written in the response.
	QNameOffset int
}

// WantsV4 reports whether this query's QTYPE calls for A answers.
func (q QueryDescriptor) WantsV4() bool { return q.QType.wantsV4() }

// WantsV6 reports whether this query's QTYPE calls for AAAA answers.
func (q QueryDescriptor) WantsV6() bool { return q.QType.wantsV6() }

// ClassMatches reports whether this query's QCLASS is IN or ANY.
func (q QueryDescriptor) ClassMatches() bool {
	return q.QClass == RRClassIN || q.QClass == RRClassANY
}
