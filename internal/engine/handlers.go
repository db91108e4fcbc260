package engine

import (
	"net"

	"github.com/staticdhcpd/staticdhcpd/internal/metrics"
	"github.com/staticdhcpd/staticdhcpd/internal/wire"
	"github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"
)

// handleDiscover implements spec §4.5's DISCOVER handling, grounded on the
// Python original's _handleDHCPDiscover.
func (e *Engine) handleDiscover(req *wire.Packet, srcIP net.IP, srcPort int) {
	mac := req.CHAddr

	def, err := e.lookupDefinition(mac)
	if err != nil {
		e.logger.Error("record lookup failed", "mac", mac.String(), "error", err)
		e.discard(req, "record_lookup_failure")
		return
	}

	if def == nil {
		if e.authoritative {
			reply := req.NewReply(dhcpv4.MessageTypeNak, e.serverIP)
			e.dispatchSend(reply, srcIP, srcPort)
			return
		}
		e.logger.Info("unknown MAC, quarantining", "mac", mac.String())
		e.gov.Quarantine(mac, e.unknownTimeout)
		metrics.GovernanceQuarantines.WithLabelValues("unknown_mac").Inc()
		return
	}

	rapidCommit := req.HasRapidCommit()
	msgType := dhcpv4.MessageTypeOffer
	if rapidCommit {
		msgType = dhcpv4.MessageTypeAck
	}
	reply := req.NewReply(msgType, e.serverIP)
	if rapidCommit {
		reply.Options.Set(dhcpv4.OptionRapidCommit, []byte{})
	}

	loadDefinition(e.logger, reply, def, false)

	var relayIP net.IP
	if req.IsRelayed() {
		relayIP = req.GIAddr
	}
	if !e.runHook(reply, mac, def.IP, relayIP, def.Subnet, def.Serial, req) {
		e.discard(req, "hook_veto")
		return
	}

	e.dispatchSend(reply, srcIP, srcPort)
}

// handleRequest implements spec §4.5's REQUEST handling across its four
// sub-states, grounded on the Python original's _handleDHCPRequest.
func (e *Engine) handleRequest(req *wire.Packet, srcIP net.IP, srcPort int) {
	mac := req.CHAddr
	sid := normalizeIP(req.ServerIdentifier())
	rip := normalizeIP(req.RequestedIP())
	ciaddr := normalizeIP(req.CIAddr)

	switch classifyRequest(sid, rip, ciaddr) {
	case requestSelecting:
		if !sid.Equal(e.serverIP) {
			e.discard(req, "policy_reject")
			return
		}
		e.respondToClaim(req, rip, srcIP, srcPort, true)
	case requestInitReboot:
		e.respondToClaim(req, rip, srcIP, srcPort, true)
	case requestRenewOrRebind:
		if e.nakRenewals && !req.FromPXEPort {
			reply := req.NewReply(dhcpv4.MessageTypeNak, e.serverIP)
			e.dispatchSend(reply, srcIP, srcPort)
			return
		}
		// Renewing (unicast source) vs rebinding (broadcast/unspecified
		// source) only changes whether a mismatch gets a NAK or a silent
		// drop, to avoid NAK storms against a broadcast rebind (spec §4.5).
		renewing := srcIP != nil && !srcIP.Equal(net.IPv4zero) && !srcIP.Equal(net.IPv4bcast)
		e.respondToClaim(req, ciaddr, srcIP, srcPort, renewing)
	default:
		e.discard(req, "unknown_message_type")
	}
}

// respondToClaim looks up the requesting MAC and ACKs if claimedIP matches
// the record's IP, NAKs on mismatch when nakOnMismatch is set, else drops
// silently. Shared by SELECTING, INIT-REBOOT, and RENEW/REBIND.
func (e *Engine) respondToClaim(req *wire.Packet, claimedIP net.IP, srcIP net.IP, srcPort int, nakOnMismatch bool) {
	mac := req.CHAddr

	def, err := e.lookupDefinition(mac)
	if err != nil {
		e.logger.Error("record lookup failed", "mac", mac.String(), "error", err)
		e.discard(req, "record_lookup_failure")
		return
	}

	if def != nil && (claimedIP == nil || def.IP.Equal(claimedIP)) {
		reply := req.NewReply(dhcpv4.MessageTypeAck, e.serverIP)
		reply.YIAddr = def.IP
		loadDefinition(e.logger, reply, def, false)

		var relayIP net.IP
		if req.IsRelayed() {
			relayIP = req.GIAddr
		}
		if !e.runHook(reply, mac, def.IP, relayIP, def.Subnet, def.Serial, req) {
			e.discard(req, "hook_veto")
			return
		}
		e.dispatchSend(reply, srcIP, srcPort)
		return
	}

	if nakOnMismatch {
		reply := req.NewReply(dhcpv4.MessageTypeNak, e.serverIP)
		e.dispatchSend(reply, srcIP, srcPort)
		return
	}
	e.discard(req, "policy_reject")
}

// handleInform implements spec §4.5's INFORM handling: requires a non-zero
// ciaddr, never sets yiaddr or the lease-time option, and replies unicast
// to ciaddr.
func (e *Engine) handleInform(req *wire.Packet, srcIP net.IP, srcPort int) {
	mac := req.CHAddr
	ciaddr := normalizeIP(req.CIAddr)
	if ciaddr == nil {
		e.gov.Quarantine(mac, e.unknownTimeout)
		metrics.GovernanceQuarantines.WithLabelValues("malformed_inform").Inc()
		e.discard(req, "policy_reject")
		return
	}

	def, err := e.lookupDefinition(mac)
	if err != nil {
		e.logger.Error("record lookup failed", "mac", mac.String(), "error", err)
		e.discard(req, "record_lookup_failure")
		return
	}
	if def == nil {
		e.gov.Quarantine(mac, e.unknownTimeout)
		metrics.GovernanceQuarantines.WithLabelValues("unknown_mac").Inc()
		return
	}

	reply := req.NewReply(dhcpv4.MessageTypeAck, e.serverIP)
	reply.CIAddr = ciaddr
	loadDefinition(e.logger, reply, def, true)

	var relayIP net.IP
	if req.IsRelayed() {
		relayIP = req.GIAddr
	}
	if !e.runHook(reply, mac, ciaddr, relayIP, def.Subnet, def.Serial, req) {
		e.discard(req, "hook_veto")
		return
	}
	e.dispatchSend(reply, ciaddr, srcPort)
}

// handleDecline and handleRelease are advisory-only: they log and never
// reply (spec §4.5), grounded on the Python original's _handleDHCPDecline.
func (e *Engine) handleDecline(req *wire.Packet) {
	mac := req.CHAddr
	sid := req.ServerIdentifier()
	if sid == nil || !sid.Equal(e.serverIP) {
		e.discard(req, "policy_reject")
		return
	}
	declinedIP := req.RequestedIP()

	def, err := e.lookupDefinition(mac)
	if err != nil {
		e.logger.Error("record lookup failed", "mac", mac.String(), "error", err)
		e.discard(req, "record_lookup_failure")
		return
	}
	if def != nil && declinedIP != nil && def.IP.Equal(declinedIP) {
		e.logger.Warn("DHCPDECLINE for assigned address", "mac", mac.String(), "ip", declinedIP.String(), "subnet", def.Subnet, "serial", def.Serial)
		return
	}
	e.logger.Warn("misconfigured client sent DHCPDECLINE", "mac", mac.String(), "ip", declinedIP.String())
}

func (e *Engine) handleRelease(req *wire.Packet) {
	mac := req.CHAddr
	sid := req.ServerIdentifier()
	if sid == nil || !sid.Equal(e.serverIP) {
		e.discard(req, "policy_reject")
		return
	}
	releasedIP := req.CIAddr

	def, err := e.lookupDefinition(mac)
	if err != nil {
		e.logger.Error("record lookup failed", "mac", mac.String(), "error", err)
		e.discard(req, "record_lookup_failure")
		return
	}
	if def != nil && releasedIP != nil && def.IP.Equal(releasedIP) {
		e.logger.Info("DHCPRELEASE", "mac", mac.String(), "ip", releasedIP.String(), "subnet", def.Subnet, "serial", def.Serial)
		return
	}
	e.logger.Warn("misconfigured client sent DHCPRELEASE", "mac", mac.String(), "ip", releasedIP.String())
}

// handleLeaseQuery implements spec §4.5's LEASEQUERY handling (RFC 4388).
// IP-/client-identifier-based lookups are not supported; a missing MAC is
// discarded, grounded on the Python original's _handleDHCPLeaseQuery.
func (e *Engine) handleLeaseQuery(req *wire.Packet, srcIP net.IP, srcPort int) {
	mac := req.CHAddr

	def, err := e.lookupDefinition(mac)
	if err != nil {
		e.logger.Error("record lookup failed", "mac", mac.String(), "error", err)
		e.discard(req, "record_lookup_failure")
		return
	}

	if def != nil {
		reply := req.NewReply(dhcpv4.MessageTypeLeaseActive, e.serverIP)
		reply.YIAddr = def.IP
		e.dispatchSend(reply, srcIP, srcPort)
		return
	}
	reply := req.NewReply(dhcpv4.MessageTypeLeaseUnknown, e.serverIP)
	e.dispatchSend(reply, srcIP, srcPort)
}
