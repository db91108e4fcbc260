package engine

import (
	"net"

	"github.com/staticdhcpd/staticdhcpd/internal/responder"
	"github.com/staticdhcpd/staticdhcpd/internal/wire"
)

// dispatch is a resolved destination plus the responder that should carry
// it, the result of applying spec §4.5.2's send-policy table.
type dispatch struct {
	resp       responder.Responder
	destMAC    net.HardwareAddr
	destIP     net.IP
	destPort   int
	sourcePort int
}

// resolveSendPolicy implements spec §4.5.2's destination table. sourceIP is
// the address the request arrived from (nil/0.0.0.0/255.255.255.255 count
// as "unspecified", matching the Python original's string-based check).
// sourcePort is the arrival source port, used only for the PXE row.
//
// Priority matches the Python original's sendData/_sendDHCPPacketTo nesting
// (staticDHCPd/staticdhcpd/dhcp.py, libpydhcpserver/dhcp_network.py): relay
// first, then unspecified-source broadcast, and only then, inside the
// direct-unicast case, the PXE-specific port handling. A PXE client behind
// a relay or broadcasting still takes the relay/broadcast row.
func (e *Engine) resolveSendPolicy(pkt *wire.Packet, sourceIP net.IP, sourcePort int) dispatch {
	unspecified := sourceIP == nil || sourceIP.Equal(net.IPv4zero) || sourceIP.Equal(net.IPv4bcast)

	if pkt.IsRelayed() {
		return dispatch{
			resp:       e.udpResp,
			destMAC:    pkt.CHAddr,
			destIP:     sourceIP,
			destPort:   e.cfg.ServerPort,
			sourcePort: e.cfg.ServerPort,
		}
	}

	if unspecified {
		if pkt.IsBroadcast() || e.rawResp == nil {
			return dispatch{
				resp:       e.broadcastResponder(),
				destMAC:    responder.BroadcastMAC,
				destIP:     net.IPv4bcast,
				destPort:   e.cfg.ClientPort,
				sourcePort: e.cfg.ServerPort,
			}
		}
		return dispatch{
			resp:       e.rawResp,
			destMAC:    pkt.CHAddr,
			destIP:     pkt.YIAddr,
			destPort:   e.cfg.ClientPort,
			sourcePort: e.cfg.ServerPort,
		}
	}

	// Direct unicast from a client already holding an address. A PXE
	// client is answered on its own source port, falling back to pxe_port
	// when the inbound read reported port 0 (some BSD-derived stacks do not
	// preserve port information), and replies from pxe_port instead of
	// server_port.
	if pkt.FromPXEPort {
		destPort := sourcePort
		if destPort == 0 {
			destPort = e.cfg.PXEPort
		}
		resp := e.pxeResp
		if resp == nil {
			resp = e.udpResp
		}
		return dispatch{
			resp:       resp,
			destMAC:    pkt.CHAddr,
			destIP:     sourceIP,
			destPort:   destPort,
			sourcePort: e.cfg.PXEPort,
		}
	}

	return dispatch{
		resp:       e.udpResp,
		destMAC:    pkt.CHAddr,
		destIP:     sourceIP,
		destPort:   e.cfg.ClientPort,
		sourcePort: e.cfg.ServerPort,
	}
}

func (e *Engine) broadcastResponder() responder.Responder {
	if e.rawResp != nil {
		return e.rawResp
	}
	return e.udpResp
}

// send applies the hook's response-override slots (spec §4.5.2: they take
// precedence over every table field except when the resolved destination
// is the broadcast address), forces the broadcast flag bit to match the
// resolved destination, transmits, then restores the original flag value
// so the packet remains reusable (the restoration property tested in
// spec §8).
func (e *Engine) send(pkt *wire.Packet, d dispatch) error {
	destMAC, destIP, destPort, sourcePort := d.destMAC, d.destIP, d.destPort, d.sourcePort
	isBroadcastDest := destIP.Equal(net.IPv4bcast)

	if !isBroadcastDest {
		if pkt.OverrideDestMAC != nil {
			destMAC = pkt.OverrideDestMAC
		}
		if pkt.OverrideDestIP != nil {
			destIP = pkt.OverrideDestIP
		}
		if pkt.OverrideDestPort != 0 {
			destPort = pkt.OverrideDestPort
		}
	}
	if pkt.OverrideSrcPort != 0 {
		sourcePort = pkt.OverrideSrcPort
	}

	originalFlags := pkt.Flags
	if destIP.Equal(net.IPv4bcast) {
		pkt.Flags |= 0x8000
	} else {
		pkt.Flags &^= 0x8000
	}
	defer func() { pkt.Flags = originalFlags }()

	_, err := d.resp.Send(pkt, destMAC, destIP, destPort, sourcePort)
	return err
}
