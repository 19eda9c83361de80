// Package transport implements the UDP socket plumbing spec.md leaves as
// an external collaborator: binding, destination-address-aware receive
// and reply, and bounded concurrent dispatch into a responder.Responder.
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"golang.org/x/net/ipv4"

	"github.com/dnsseedd/dnsseed/internal/dnsseed/common/log"
)

// maxDatagramSize is the largest query this server will accept or the
// largest reply it will ever produce (spec.md §3).
const maxDatagramSize = 512

// Handler answers one query, writing into out and returning how many
// bytes were written. A return of 0 means the datagram should be dropped
// without a reply.
type Handler interface {
	Handle(ctx context.Context, in []byte, out []byte) int
}

// UDPTransport binds a UDP socket and dispatches each datagram it
// receives to a Handler, replying from the same address the query
// arrived on when the platform reports one.
type UDPTransport struct {
	addr    string
	handler Handler
	logger  log.Logger

	// OnDatagram, if set, is called with each client's source address
	// before its datagram is dispatched to handler. It exists so callers
	// can track source-address cardinality without the transport
	// depending on any particular stats implementation.
	OnDatagram func(src net.Addr)

	mu      sync.RWMutex
	running bool
	conn    *net.UDPConn
	pconn   *ipv4.PacketConn
	stopCh  chan struct{}

	sem chan struct{}
}

// NewUDPTransport returns a transport bound to addr, dispatching to
// handler with at most maxInFlight datagrams processed concurrently.
func NewUDPTransport(addr string, handler Handler, logger log.Logger, maxInFlight int) *UDPTransport {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &UDPTransport{
		addr:    addr,
		handler: handler,
		logger:  logger,
		stopCh:  make(chan struct{}),
		sem:     make(chan struct{}, maxInFlight),
	}
}

// Start binds the UDP socket and begins the receive loop in a background
// goroutine. It returns once the socket is bound.
func (t *UDPTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("dnsseed: UDP transport already running")
	}

	udpAddr, err := net.ResolveUDPAddr("udp", t.addr)
	if err != nil {
		return fmt.Errorf("dnsseed: resolving bind address %s: %w", t.addr, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("dnsseed: binding UDP socket on %s: %w", t.addr, err)
	}

	pconn := ipv4.NewPacketConn(conn)
	if cerr := pconn.SetControlMessage(ipv4.FlagDst, true); cerr != nil {
		t.logger.Warn(map[string]any{
			"error": cerr.Error(),
		}, "failed to enable destination-address control messages, replies will use the default source")
	}

	t.conn = conn
	t.pconn = pconn
	t.running = true

	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   t.addr,
	}, "dns transport started")

	go t.listenLoop(ctx)

	return nil
}

// Stop closes the UDP socket and signals the receive loop to exit.
func (t *UDPTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}
	close(t.stopCh)
	t.running = false

	err := t.conn.Close()
	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   t.addr,
	}, "dns transport stopped")
	return err
}

// Address returns the address the transport is bound to.
func (t *UDPTransport) Address() string {
	return t.addr
}

func (t *UDPTransport) listenLoop(ctx context.Context) {
	buf := make([]byte, maxDatagramSize)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		default:
		}

		n, cm, src, err := t.pconn.ReadFrom(buf)
		if err != nil {
			t.mu.RLock()
			running := t.running
			t.mu.RUnlock()
			if !running {
				return
			}
			t.logger.Warn(map[string]any{
				"error": err.Error(),
			}, "failed to read UDP datagram")
			continue
		}

		query := make([]byte, n)
		copy(query, buf[:n])

		var dst net.IP
		if cm != nil {
			dst = cm.Dst
		}

		select {
		case t.sem <- struct{}{}:
			go t.handleDatagram(ctx, query, src, dst)
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		}
	}
}

func (t *UDPTransport) handleDatagram(ctx context.Context, query []byte, src net.Addr, dst net.IP) {
	defer func() { <-t.sem }()

	if t.OnDatagram != nil {
		t.OnDatagram(src)
	}

	out := make([]byte, maxDatagramSize)
	n := t.handler.Handle(ctx, query, out)
	if n <= 0 {
		return
	}

	var wcm *ipv4.ControlMessage
	if dst != nil {
		wcm = &ipv4.ControlMessage{Src: dst}
	}

	if _, err := t.pconn.WriteTo(out[:n], wcm, src); err != nil {
		t.logger.Error(map[string]any{
			"client": src.String(),
			"error":  err.Error(),
		}, "failed to send DNS response")
	}
}
