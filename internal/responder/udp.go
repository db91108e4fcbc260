package responder

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"github.com/staticdhcpd/staticdhcpd/internal/wire"
)

// UDPResponder is R3 (spec §4.3): sends a fully-formed DHCP payload through
// a UDP socket with SO_BROADCAST set. Grounded on the teacher's server.go
// (SO_REUSEADDR/SO_BROADCAST setup via net.ListenConfig.Control), narrowed
// to an unconnected, reusable send-only socket since the destination varies
// per call.
type UDPResponder struct {
	conn *net.UDPConn
}

// NewUDPResponder opens a UDP socket bound to 0.0.0.0:bindPort (0 lets the
// kernel choose an ephemeral port) with SO_BROADCAST enabled. The PXE
// responder is a second instance bound to pxe_port.
func NewUDPResponder(bindPort int) (*UDPResponder, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				if err := syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); err != nil {
					sockErr = err
					return
				}
				if err := syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1); err != nil {
					sockErr = err
				}
			}); err != nil {
				return err
			}
			return sockErr
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf("0.0.0.0:%d", bindPort))
	if err != nil {
		return nil, fmt.Errorf("opening UDP responder socket on port %d: %w", bindPort, err)
	}

	return &UDPResponder{conn: pc.(*net.UDPConn)}, nil
}

// Send implements Responder. mac is unused by R3 — the kernel resolves the
// destination hardware address for UDP sends. sourcePort is also unused: a
// kernel UDP socket's local port is fixed at bind time, so sending from a
// particular source port means routing the call to a UDPResponder bound to
// that port (e.g. a second instance bound to pxe_port) rather than acting
// on this parameter.
func (r *UDPResponder) Send(packet *wire.Packet, mac net.HardwareAddr, ip net.IP, port, sourcePort int) (int, error) {
	payload, err := packet.Encode()
	if err != nil {
		return 0, fmt.Errorf("encoding reply: %w", err)
	}

	dst := &net.UDPAddr{IP: ip, Port: port}
	n, err := r.conn.WriteToUDP(payload, dst)
	if err != nil {
		return 0, fmt.Errorf("sending to %s: %w", dst, err)
	}
	return n, nil
}

// Close implements Responder.
func (r *UDPResponder) Close() error {
	return r.conn.Close()
}
