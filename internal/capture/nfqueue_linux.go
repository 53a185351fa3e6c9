//go:build linux

package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	nfqueue "github.com/florianl/go-nfqueue/v2"
)

// queueHandle implements Handle on top of an NFQUEUE netlink socket. The
// kernel delivers every packet hitting a `queue num N` verdict in an output
// chain; see internal/netfilter for the rule installer.
//
// Packets are dropped by omission: a packet that was received but never sent
// is finalized as NF_DROP when the next Receive begins. Packets still queued
// in the kernel when the handle closes are dropped by the queue teardown.
type queueHandle struct {
	nf     *nfqueue.Nfqueue
	cancel context.CancelFunc

	packets chan *Packet
	closed  chan struct{}

	mu      sync.Mutex
	pending *Packet
	recvErr error

	closeOnce sync.Once
	closeErr  error
}

// OpenQueue binds to NFQUEUE number num and starts delivering packets.
func OpenQueue(num uint16) (Handle, error) {
	cfg := nfqueue.Config{
		NfQueue:      num,
		MaxPacketLen: 0xffff,
		MaxQueueLen:  255,
		Copymode:     nfqueue.NfQnlCopyPacket,
		WriteTimeout: 15 * time.Millisecond,
	}

	nf, err := nfqueue.Open(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open nfqueue %d: %w", num, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &queueHandle{
		nf:      nf,
		cancel:  cancel,
		packets: make(chan *Packet, 64),
		closed:  make(chan struct{}),
	}

	if err := nf.RegisterWithErrorFunc(ctx, h.onPacket, h.onSocketError); err != nil {
		cancel()
		nf.Close()
		return nil, fmt.Errorf("failed to register nfqueue hook: %w", err)
	}
	return h, nil
}

func (h *queueHandle) onPacket(a nfqueue.Attribute) int {
	if a.PacketID == nil {
		return 0
	}
	pkt := &Packet{id: *a.PacketID}
	if a.Payload != nil {
		pkt.Raw = *a.Payload
		decodeDestination(pkt.Raw, pkt)
	}

	select {
	case h.packets <- pkt:
	case <-h.closed:
		// Shutting down; let the packet continue on its way.
		_ = h.nf.SetVerdict(pkt.id, nfqueue.NfAccept)
	}
	return 0
}

func (h *queueHandle) onSocketError(err error) int {
	select {
	case <-h.closed:
		// Expected: Close tore down the socket under the reader.
	default:
		h.mu.Lock()
		if h.recvErr == nil {
			h.recvErr = err
		}
		h.mu.Unlock()
		_ = h.Close()
	}
	return -1
}

// Receive blocks until the next intercepted packet arrives or the handle is
// closed. It finalizes the previous packet as dropped if it was never sent.
func (h *queueHandle) Receive() (*Packet, error) {
	h.dropPending()

	select {
	case pkt := <-h.packets:
		h.mu.Lock()
		h.pending = pkt
		h.mu.Unlock()
		return pkt, nil
	case <-h.closed:
		h.mu.Lock()
		err := h.recvErr
		h.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("nfqueue receive failed: %w", err)
		}
		return nil, ErrClosed
	}
}

// Send re-injects a previously received packet.
func (h *queueHandle) Send(pkt *Packet) error {
	if err := h.nf.SetVerdict(pkt.id, nfqueue.NfAccept); err != nil {
		return fmt.Errorf("failed to re-inject packet %d: %w", pkt.id, err)
	}

	h.mu.Lock()
	if h.pending == pkt {
		h.pending = nil
	}
	h.mu.Unlock()
	return nil
}

// dropPending issues the deferred drop verdict for an unsent packet.
func (h *queueHandle) dropPending() {
	h.mu.Lock()
	pkt := h.pending
	h.pending = nil
	h.mu.Unlock()

	if pkt != nil {
		_ = h.nf.SetVerdict(pkt.id, nfqueue.NfDrop)
	}
}

// Close tears down the netlink socket, unblocking a pending Receive.
func (h *queueHandle) Close() error {
	h.closeOnce.Do(func() {
		close(h.closed)
		h.cancel()
		h.closeErr = h.nf.Close()
	})
	return h.closeErr
}
