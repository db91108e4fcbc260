// Package responder implements the two outbound-frame responders (spec
// §4.2/§4.3): a UDP-socket sender (R3) and, on platforms that support it, a
// raw Ethernet-frame sender (R2) that bypasses the kernel's ARP lookup.
package responder

import (
	"net"

	"github.com/staticdhcpd/staticdhcpd/internal/wire"
)

// Responder is the polymorphic outbound-frame family's shared capability
// (spec §9 design note: "responders form a polymorphic family over
// capability, injected by the listener").
type Responder interface {
	// Send transmits packet to mac at ip:port from sourcePort and reports
	// the number of bytes written.
	Send(packet *wire.Packet, mac net.HardwareAddr, ip net.IP, port, sourcePort int) (int, error)

	// Close releases any socket held by the responder.
	Close() error
}

// BroadcastMAC is the well-known destination hardware address used whenever a
// send targets 255.255.255.255.
var BroadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
