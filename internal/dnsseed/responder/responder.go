// Package responder implements the budget-aware DNS response assembly
// state machine: it takes a parsed query, a zone, and an address-lookup
// callback, and produces a bounded reply.
package responder

import (
	"context"

	"github.com/dnsseedd/dnsseed/internal/dnsseed/common/clock"
	"github.com/dnsseedd/dnsseed/internal/dnsseed/domain"
	"github.com/dnsseedd/dnsseed/internal/dnsseed/wire"
)

// maxAddressAnswers bounds how many addresses a single Handle call will
// ask the lookup callback to fill.
const maxAddressAnswers = 32

// headerOffset is both the byte length of a DNS header and the offset at
// which QNAME begins in every datagram this server parses or writes —
// also the compression-pointer target reused for every owner name in a
// response.
const headerOffset = 12

// AddressLookup resolves the addresses a query should be answered with.
// It fills out with up to len(out) addresses and returns how many it
// placed.
type AddressLookup interface {
	Lookup(ctx context.Context, name string, out []domain.Address, wantV4, wantV6 bool) int
}

// Recorder observes the outcome of a Handle call. It never influences the
// RCODE chosen or the bytes written — Handle remains a pure transformation
// over its input/output buffers whether or not a Recorder is attached.
// qname is empty when the response was produced before a name was parsed
// (a header error, QDCOUNT 0, or an unparsable name).
type Recorder interface {
	RecordRequest()
	RecordResponse(qname string, rcode domain.RCode)
}

// Responder answers queries for a single zone. It holds no mutable
// per-call state, so a single instance may be shared across goroutines.
type Responder struct {
	Zone     domain.ZoneConfig
	Lookup   AddressLookup
	Clock    clock.Clock
	Recorder Recorder
}

// Handle parses in as a DNS query and writes a response into out,
// returning the number of bytes written. It returns 0 if in is shorter
// than a DNS header, in which case out is left untouched and the caller
// should drop the datagram.
func (r *Responder) Handle(ctx context.Context, in []byte, out []byte) int {
	if r.Recorder != nil {
		r.Recorder.RecordRequest()
	}

	n, qname := r.handle(ctx, in, out)

	if n > 0 && r.Recorder != nil {
		r.Recorder.RecordResponse(qname, domain.RCode(out[3]&0x0F))
	}
	return n
}

func (r *Responder) handle(ctx context.Context, in, out []byte) (int, string) {
	if len(in) < headerOffset {
		return 0, ""
	}

	out[0], out[1] = in[0], in[1]
	out[2], out[3] = in[2], in[3]
	out[3] &^= 0x0F // clear RCODE slot

	if in[2]&0x80 != 0 { // QR set: this is a response, not a query
		return setError(out, domain.RCodeFormErr), ""
	}
	if (in[2]&0x78)>>3 != 0 { // OPCODE != 0
		return setError(out, domain.RCodeFormErr), ""
	}
	out[2] &^= 0x02 // clear TC
	out[3] &^= 0x80 // clear RA

	qdcount := int(in[4])<<8 | int(in[5])
	if qdcount == 0 {
		return setError(out, domain.RCodeNoError), ""
	}
	if qdcount > 1 {
		return setError(out, domain.RCodeNotImp), ""
	}

	qname, pos, err := wire.ParseName(in, headerOffset)
	if err != nil {
		if err == domain.ErrNameTooLong {
			return setError(out, domain.RCodeRefused), ""
		}
		return setError(out, domain.RCodeFormErr), ""
	}

	if !r.Zone.Matches(qname) {
		return setError(out, domain.RCodeRefused), qname
	}

	if len(in)-pos < 4 {
		return setError(out, domain.RCodeFormErr), qname
	}
	query := domain.QueryDescriptor{
		ID:          uint16(in[0])<<8 | uint16(in[1]),
		FlagsIn:     [2]byte{in[2], in[3]},
		QName:       qname,
		QType:       domain.RRType(int(in[pos])<<8 | int(in[pos+1])),
		QClass:      domain.RRClass(int(in[pos+2])<<8 | int(in[pos+3])),
		QNameOffset: headerOffset,
	}
	qend := pos + 4

	copy(out[headerOffset:qend], in[headerOffset:qend])
	out[4], out[5] = 0, 1
	out[6], out[7] = 0, 0
	out[8], out[9] = 0, 0
	out[10], out[11] = 0, 0
	out[2] |= 0x80 // QR

	outpos := qend
	outend := len(out)

	wantsIN := query.ClassMatches()
	wantsNSAnswer := (query.QType == domain.RRTypeNS || query.QType == domain.RRTypeANY) && wantsIN
	wantsSOAAnswer := (query.QType == domain.RRTypeSOA || query.QType == domain.RRTypeANY) && wantsIN && r.Zone.HasMbox()
	wantsAddrAnswer := (query.WantsV4() || query.WantsV6()) && wantsIN

	maxAuthSize := r.authoritySizeBudget(out, outpos, wantsNSAnswer)
	answerLimit := outend - maxAuthSize
	if answerLimit < outpos {
		answerLimit = outpos
	}

	ancount := 0
	haveNS := false

	if wantsNSAnswer {
		if next, werr := wire.WriteNS(out[:answerLimit], outpos, "", headerOffset, domain.RRClassIN, r.Zone.NSTTL, r.Zone.NS); werr == nil {
			outpos = next
			ancount++
			haveNS = true
		}
	}

	if wantsSOAAnswer {
		if next, werr := r.writeSOA(out[:answerLimit], outpos); werr == nil {
			outpos = next
			ancount++
		}
	}

	if wantsAddrAnswer && r.Lookup != nil {
		wantV4 := query.WantsV4()
		wantV6 := query.WantsV6()
		var addrs [maxAddressAnswers]domain.Address
		n := r.Lookup.Lookup(ctx, qname, addrs[:], wantV4, wantV6)
		if n > len(addrs) {
			n = len(addrs)
		}
		for i := 0; i < n; i++ {
			var next int
			var werr error
			if addrs[i].IsV4() {
				next, werr = wire.WriteA(out[:answerLimit], outpos, "", headerOffset, domain.RRClassIN, r.Zone.DataTTL, addrs[i])
			} else {
				next, werr = wire.WriteAAAA(out[:answerLimit], outpos, "", headerOffset, domain.RRClassIN, r.Zone.DataTTL, addrs[i])
			}
			if werr != nil {
				break
			}
			outpos = next
			ancount++
		}
	}

	nscount := 0
	switch {
	case !haveNS && ancount > 0:
		if next, werr := wire.WriteNS(out, outpos, "", headerOffset, domain.RRClassIN, r.Zone.NSTTL, r.Zone.NS); werr == nil {
			outpos = next
			nscount++
		}
	case ancount == 0 && r.Zone.HasMbox():
		if next, werr := r.writeSOA(out, outpos); werr == nil {
			outpos = next
			nscount++
		}
	}

	out[7] = byte(ancount)
	out[9] = byte(nscount)
	out[2] |= 0x04 // AA

	return outpos, qname
}

// authoritySizeBudget returns 0 when an NS will already appear in the
// Answer section. Otherwise it trial-writes an NS record and, if the zone
// has an Mbox, an SOA record, and returns the larger byte count, to be
// reserved at the tail of the output buffer while Answer records are
// emitted.
func (r *Responder) authoritySizeBudget(out []byte, outpos int, wantsNSAnswer bool) int {
	if wantsNSAnswer {
		return 0
	}
	max := 0
	if next, err := wire.WriteNS(out, outpos, "", headerOffset, domain.RRClassIN, 0, r.Zone.NS); err == nil {
		max = next - outpos
	}
	if r.Zone.HasMbox() {
		if next, err := r.writeSOA(out, outpos); err == nil {
			if size := next - outpos; size > max {
				max = size
			}
		}
	}
	return max
}

func (r *Responder) writeSOA(out []byte, outpos int) (int, error) {
	serial := uint32(r.Clock.Now().Unix())
	return wire.WriteSOA(out, outpos, "", headerOffset, domain.RRClassIN, r.Zone.NSTTL,
		r.Zone.NS, r.Zone.Mbox, serial, wire.SOARefresh, wire.SOARetry, wire.SOAExpire, wire.SOAMinimum)
}

// setError rewrites out's header to carry rcode with every section count
// zeroed, per spec.md §4.2.5. ID, QR, OPCODE and RD bits are left exactly
// as they were copied from the request.
func setError(out []byte, rcode domain.RCode) int {
	out[3] = (out[3] &^ 0x0F) | byte(rcode)
	out[4], out[5] = 0, 0
	out[6], out[7] = 0, 0
	out[8], out[9] = 0, 0
	out[10], out[11] = 0, 0
	return headerOffset
}
