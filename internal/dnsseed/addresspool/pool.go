// Package addresspool provides a minimal, file-backed implementation of
// responder.AddressLookup. spec.md treats address selection policy as an
// external collaborator the core never specifies; this is a concrete,
// swappable default so cmd/dnsseedd has something to bind to out of the
// box, not a prescription for how a production seed should pick peers.
package addresspool

import (
	"bufio"
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/dnsseedd/dnsseed/internal/dnsseed/domain"
)

// Pool is a static set of addresses sampled without replacement per
// query, giving each caller a different rotating subset (spec.md §1:
// "a rotating sampling of network peers").
type Pool struct {
	mu   sync.RWMutex
	v4   []domain.Address
	v6   []domain.Address
}

// New returns an empty Pool. Use Set to populate it.
func New() *Pool {
	return &Pool{}
}

// LoadFile reads path as a newline-delimited list of IPv4/IPv6 addresses
// and returns a new Pool holding them. Blank lines and lines starting with
// '#' are ignored. An empty path returns an empty Pool.
func LoadFile(path string) (*Pool, error) {
	p := New()
	if path == "" {
		return p, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var addrs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addrs = append(addrs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := p.Set(addrs); err != nil {
		return nil, err
	}
	return p, nil
}

// Set replaces the pool's contents with the given textual addresses.
func (p *Pool) Set(addrs []string) error {
	var v4, v6 []domain.Address
	for _, raw := range addrs {
		addr, err := parseAddr(raw)
		if err != nil {
			return err
		}
		if addr.IsV4() {
			v4 = append(v4, addr)
		} else {
			v6 = append(v6, addr)
		}
	}
	p.mu.Lock()
	p.v4, p.v6 = v4, v6
	p.mu.Unlock()
	return nil
}

// Lookup implements responder.AddressLookup: it fills out with up to
// len(out) addresses drawn from whichever families wantV4/wantV6 select,
// in a freshly shuffled order each call, and returns how many it placed.
// The name argument is accepted but unused — this pool answers identically
// for every name in the zone.
func (p *Pool) Lookup(ctx context.Context, name string, out []domain.Address, wantV4, wantV6 bool) int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var candidates []domain.Address
	if wantV4 {
		candidates = append(candidates, p.v4...)
	}
	if wantV6 {
		candidates = append(candidates, p.v6...)
	}
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	n := copy(out, candidates)
	return n
}

func parseAddr(raw string) (domain.Address, error) {
	ip := net.ParseIP(raw)
	if ip == nil {
		return domain.Address{}, fmt.Errorf("dnsseed: invalid address %q in peers file", raw)
	}
	return domain.AddressFromNetIP(ip)
}
