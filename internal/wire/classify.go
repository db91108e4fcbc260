package wire

import "github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"

// IsDHCPPacket reports whether a decoded packet carries a single-byte,
// serviceable message type in option 53 (spec §4.1 Classify).
func IsDHCPPacket(p *Packet) bool {
	data, ok := p.Options.Get(dhcpv4.OptionDHCPMessageType)
	return ok && len(data) == 1 && dhcpv4.MessageType(data[0]).IsServiceable()
}

func IsDiscover(p *Packet) bool { return p.MessageType() == dhcpv4.MessageTypeDiscover }
func IsRequest(p *Packet) bool  { return p.MessageType() == dhcpv4.MessageTypeRequest }
func IsInform(p *Packet) bool   { return p.MessageType() == dhcpv4.MessageTypeInform }
func IsRelease(p *Packet) bool  { return p.MessageType() == dhcpv4.MessageTypeRelease }
func IsDecline(p *Packet) bool  { return p.MessageType() == dhcpv4.MessageTypeDecline }

// IsLeaseQuery classifies a DHCPLEASEQUERY request. Per the resolved open
// question (DESIGN.md), a packet with an empty chaddr (under hlen) never
// classifies as a lease query, so downstream handlers can assume chaddr is
// present.
func IsLeaseQuery(p *Packet) bool {
	if p.MessageType() != dhcpv4.MessageTypeLeaseQuery {
		return false
	}
	return p.HLen > 0 && len(p.CHAddr) > 0
}
