package filter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/TomasB/geoblock/internal/capture"
	"github.com/TomasB/geoblock/internal/metrics"
	"github.com/TomasB/geoblock/internal/policy"
)

// OpenFunc acquires the packet-interception handle.
type OpenFunc func() (capture.Handle, error)

// Loop pulls intercepted packets one at a time, applies the policy engine,
// and re-injects allowed packets. A disallowed packet is simply never sent;
// omission is what makes the drop happen.
type Loop struct {
	open    OpenFunc
	engine  *policy.Engine
	state   *RunState
	journal *Journal
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewLoop wires the loop's collaborators together.
func NewLoop(open OpenFunc, engine *policy.Engine, state *RunState, journal *Journal, m *metrics.Metrics, logger *slog.Logger) *Loop {
	return &Loop{
		open:    open,
		engine:  engine,
		state:   state,
		journal: journal,
		metrics: m,
		logger:  logger,
	}
}

// Run opens the interception handle and processes packets until a stop is
// requested or the receive path fails. The handle reference in the run state
// is published while the handle is open and cleared on every exit path, so a
// concurrent Stop always finds a closable handle or none at all.
func (l *Loop) Run() error {
	h, err := l.open()
	if err != nil {
		return fmt.Errorf("failed to open interception handle: %w", err)
	}

	l.state.publish(h)
	defer func() {
		_ = h.Close()
		l.state.clear()
	}()

	l.logger.Info("interception loop started",
		"port_window", l.engine.Window().String(),
		"blocked_countries", l.engine.Blocked())

	for l.state.Running() {
		pkt, err := h.Receive()
		if err != nil {
			if !l.state.Running() {
				// The shutdown path closed the handle under us.
				l.logger.Info("interception handle closed during shutdown")
				return nil
			}
			l.metrics.ReceiveErrors.Inc()
			return fmt.Errorf("receive failed: %w", err)
		}

		if !l.state.Running() {
			// Stop was requested while this packet was in flight; leave
			// it unsent and exit.
			break
		}

		l.process(h, pkt)
	}

	l.logger.Info("interception loop stopping")
	return nil
}

func (l *Loop) process(h capture.Handle, pkt *capture.Packet) {
	l.metrics.PacketsProcessed.Inc()

	d := l.engine.Decide(pkt.DstAddr, pkt.DstPort, pkt.HasPort)
	l.metrics.Decisions.WithLabelValues(d.Action.String()).Inc()
	l.journal.Add(Record{
		Time:     time.Now(),
		Address:  addrString(pkt),
		Port:     pkt.DstPort,
		Protocol: pkt.Protocol,
		Action:   d.Action.String(),
		Reason:   d.Reason,
		Country:  d.Country,
	})

	if d.Action == policy.Drop {
		l.logger.Info("packet dropped",
			"dst", addrString(pkt), "port", pkt.DstPort,
			"country", d.Country, "reason", d.Reason)
		return
	}

	l.logger.Debug("packet allowed",
		"dst", addrString(pkt), "port", pkt.DstPort, "reason", d.Reason)

	if err := h.Send(pkt); err != nil {
		// Per-packet failure: the packet is lost, the loop keeps going.
		l.metrics.SendErrors.Inc()
		l.logger.Warn("failed to re-inject packet",
			"dst", addrString(pkt), "port", pkt.DstPort, "error", err)
	}
}

func addrString(pkt *capture.Packet) string {
	if !pkt.DstAddr.IsValid() {
		return "invalid"
	}
	return pkt.DstAddr.String()
}
