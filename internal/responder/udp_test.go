package responder

import (
	"net"
	"testing"
	"time"

	"github.com/staticdhcpd/staticdhcpd/internal/wire"
	"github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"
)

func TestUDPResponderSendRoundTrip(t *testing.T) {
	responder, err := NewUDPResponder(0)
	if err != nil {
		t.Fatalf("NewUDPResponder: %v", err)
	}
	defer responder.Close()

	listener, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer listener.Close()

	packet := &wire.Packet{
		Op:     1,
		HType:  1,
		HLen:   6,
		XID:    0x11223344,
		CHAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0, 0, 1},
		Options: wire.Options{
			dhcpv4.OptionDHCPMessageType: {byte(dhcpv4.MessageTypeOffer)},
		},
	}

	dst := listener.LocalAddr().(*net.UDPAddr)
	n, err := responder.Send(packet, nil, dst.IP, dst.Port, 67)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n == 0 {
		t.Fatal("Send reported 0 bytes written")
	}

	buf := make([]byte, 2048)
	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	readN, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	got, err := wire.DecodePacket(buf[:readN])
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	if got.XID != packet.XID {
		t.Errorf("XID = %#x, want %#x", got.XID, packet.XID)
	}
}
