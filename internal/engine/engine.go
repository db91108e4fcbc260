// Package engine implements the protocol engine (P, spec §4.5): pre-flight
// relay/admission checks, per-message-type dispatch, and the response-hook
// and send-policy pipeline. Grounded on the teacher's internal/dhcp/handler.go
// for shape (a Handler struct owning shared collaborators, a HandlePacket
// dispatch switch, one method per message type) and on the Python original's
// staticdhcpd/dhcp.py for exact DISCOVER/REQUEST/INFORM/DECLINE/RELEASE/
// LEASEQUERY procedural sequencing, which this server's semantics replace
// the teacher's dynamic-allocation logic with.
package engine

import (
	"log/slog"
	"net"
	"time"

	"github.com/staticdhcpd/staticdhcpd/internal/config"
	"github.com/staticdhcpd/staticdhcpd/internal/governance"
	"github.com/staticdhcpd/staticdhcpd/internal/hook"
	"github.com/staticdhcpd/staticdhcpd/internal/metrics"
	"github.com/staticdhcpd/staticdhcpd/internal/record"
	"github.com/staticdhcpd/staticdhcpd/internal/responder"
	"github.com/staticdhcpd/staticdhcpd/internal/wire"
	"github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"
)

// ports is the subset of network configuration the send-policy table reads
// on every packet, copied out of *config.Config once at construction.
type ports struct {
	ServerPort int
	ClientPort int
	PXEPort    int
}

// Engine is P: the shared, concurrency-safe protocol engine invoked once
// per inbound datagram by the listener (spec §5 — one worker per datagram,
// state here must be safe for concurrent use).
type Engine struct {
	cfg        ports
	serverIP   net.IP
	authoritative bool
	nakRenewals   bool
	allowLocal    bool
	allowRelays   bool
	allowedRelays []net.IP
	unknownTimeout   int
	misbehaveTimeout int

	records *record.Cache
	gov     *governance.Governor
	hookFn  hook.Func

	udpResp responder.Responder
	pxeResp responder.Responder // nil unless pxe_port is configured; bound to pxe_port
	rawResp responder.Responder // nil when raw L2 responses are not configured

	logger *slog.Logger
}

// New constructs an Engine. hookFn may be nil, in which case every
// ACK/OFFER is sent unconditionally (spec §4.7's veto power is simply
// unused). pxeResp may be nil when pxe_port is not configured; the
// direct-unicast PXE send-policy row then falls back to udpResp.
func New(cfg *config.Config, records *record.Cache, gov *governance.Governor, udpResp, pxeResp, rawResp responder.Responder, hookFn hook.Func, logger *slog.Logger) *Engine {
	return &Engine{
		cfg: ports{
			ServerPort: cfg.Network.ServerPort,
			ClientPort: cfg.Network.ClientPort,
			PXEPort:    cfg.Network.PXEPort,
		},
		serverIP:         cfg.ServerIP(),
		authoritative:    cfg.Network.Authoritative,
		nakRenewals:      cfg.Network.NakRenewals,
		allowLocal:       cfg.Network.AllowLocalDHCP,
		allowRelays:      cfg.Network.AllowRelays,
		allowedRelays:    cfg.AllowedRelayIPs(),
		unknownTimeout:   cfg.Governance.UnknownTimeout,
		misbehaveTimeout: cfg.Governance.MisbehaveTimeout,
		records:          records,
		gov:              gov,
		hookFn:           hookFn,
		udpResp:          udpResp,
		pxeResp:          pxeResp,
		rawResp:          rawResp,
		logger:           logger,
	}
}

// HandlePacket is the single entry point invoked by the listener's
// per-datagram worker goroutine (spec §5). srcIP is the address the datagram
// arrived from; srcPort is its source port, needed for the PXE send-policy
// row's port-preservation quirk.
func (e *Engine) HandlePacket(pkt *wire.Packet, srcIP net.IP, srcPort int) {
	start := time.Now()
	defer func() { e.gov.RecordDuration(time.Since(start)) }()

	if !e.evaluateRelay(pkt) {
		e.discard(pkt, "policy_reject")
		return
	}

	mac := pkt.CHAddr
	if e.gov.IsIgnored(mac) {
		metrics.GovernanceRejections.Inc()
		e.discard(pkt, "policy_reject")
		return
	}
	if !e.gov.Admit(mac, e.misbehaveTimeout) {
		metrics.GovernanceQuarantines.WithLabelValues("threshold").Inc()
		e.discard(pkt, "policy_reject")
		return
	}

	e.gov.RecordProcessed()
	metrics.PacketsReceived.WithLabelValues(pkt.MessageType().String()).Inc()

	switch pkt.MessageType() {
	case dhcpv4.MessageTypeDiscover:
		e.handleDiscover(pkt, srcIP, srcPort)
	case dhcpv4.MessageTypeRequest:
		e.handleRequest(pkt, srcIP, srcPort)
	case dhcpv4.MessageTypeDecline:
		e.handleDecline(pkt)
	case dhcpv4.MessageTypeRelease:
		e.handleRelease(pkt)
	case dhcpv4.MessageTypeInform:
		e.handleInform(pkt, srcIP, srcPort)
	case dhcpv4.MessageTypeLeaseQuery:
		if !wire.IsLeaseQuery(pkt) {
			e.discard(pkt, "malformed")
			return
		}
		e.handleLeaseQuery(pkt, srcIP, srcPort)
	default:
		e.discard(pkt, "unknown_message_type")
	}
}

// evaluateRelay implements spec §4.5's pre-flight relay-acceptance check,
// grounded on the Python original's _evaluateRelay.
func (e *Engine) evaluateRelay(pkt *wire.Packet) bool {
	if pkt.IsRelayed() {
		if !e.allowRelays {
			return false
		}
		if len(e.allowedRelays) == 0 {
			return true
		}
		for _, relay := range e.allowedRelays {
			if relay.Equal(pkt.GIAddr) {
				return true
			}
		}
		e.logger.Warn("relayed request from unauthorized relay ignored", "giaddr", pkt.GIAddr.String())
		return false
	}
	return e.allowLocal || pkt.FromPXEPort
}

// discard records a discard/reject outcome per the error taxonomy (spec §7):
// a structured log line plus the governance/metrics bookkeeping every
// discard path shares.
func (e *Engine) discard(pkt *wire.Packet, reason string) {
	e.logger.Debug("discarding packet", "mac", pkt.CHAddr.String(), "msg_type", pkt.MessageType().String(), "reason", reason)
	e.gov.RecordDiscarded()
	metrics.PacketsDiscarded.WithLabelValues(reason).Inc()
}

// lookupDefinition queries the record source, falling back to the optional
// unknown-MAC hook on a clean miss (spec §4.5, §6).
func (e *Engine) lookupDefinition(mac net.HardwareAddr) (*record.Definition, error) {
	def, err := e.records.LookupMAC(mac)
	if err != nil {
		metrics.RecordLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	if def != nil {
		metrics.RecordLookups.WithLabelValues("hit").Inc()
		return def, nil
	}
	def, err = e.records.UnknownMACHook(mac)
	if err != nil {
		metrics.RecordLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	if def != nil {
		metrics.RecordLookups.WithLabelValues("unknown_mac_hook").Inc()
		return def, nil
	}
	metrics.RecordLookups.WithLabelValues("miss").Inc()
	return nil, nil
}

// runHook invokes the response hook, if configured, and reports whether
// the response should still be sent (spec §4.7: returning false vetoes).
func (e *Engine) runHook(pkt *wire.Packet, mac net.HardwareAddr, clientIP, relayIP net.IP, subnet string, serial int, req *wire.Packet) bool {
	if e.hookFn == nil {
		return true
	}
	pxe := hook.ExtractPXEOptions(req)
	vendor := hook.ExtractVendorOptions(req)

	start := time.Now()
	allow := e.hookFn(pkt, mac, clientIP, relayIP, subnet, serial, pxe, vendor)
	metrics.HookDuration.Observe(time.Since(start).Seconds())
	if allow {
		metrics.HookInvocations.WithLabelValues("allow").Inc()
	} else {
		metrics.HookInvocations.WithLabelValues("veto").Inc()
	}
	return allow
}

// dispatchSend resolves the send-policy destination and transmits, folding
// TransmitFailure handling (spec §7: logged, no retry) into one place.
func (e *Engine) dispatchSend(pkt *wire.Packet, srcIP net.IP, srcPort int) {
	finalizeServerIdentifier(pkt, e.serverIP)
	d := e.resolveSendPolicy(pkt, srcIP, srcPort)
	if err := e.send(pkt, d); err != nil {
		e.logger.Error("transmit failed", "error", err, "mac", pkt.CHAddr.String())
		metrics.TransmitFailures.WithLabelValues(responderName(d.resp, e)).Inc()
		return
	}
	metrics.PacketsSent.WithLabelValues(pkt.MessageType().String(), responderName(d.resp, e)).Inc()
}

func responderName(r responder.Responder, e *Engine) string {
	switch r {
	case e.rawResp:
		return "raw"
	case e.pxeResp:
		return "pxe"
	default:
		return "udp"
	}
}
