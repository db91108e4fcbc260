package wire

import (
	"net"
	"testing"

	"github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"
)

func buildTestDiscover(mac net.HardwareAddr, xid uint32) []byte {
	pkt := make([]byte, 300)
	pkt[0] = byte(dhcpv4.OpCodeBootRequest)
	pkt[1] = byte(dhcpv4.HardwareTypeEthernet)
	pkt[2] = 6
	pkt[3] = 0

	pkt[4] = byte(xid >> 24)
	pkt[5] = byte(xid >> 16)
	pkt[6] = byte(xid >> 8)
	pkt[7] = byte(xid)

	copy(pkt[28:34], mac)
	copy(pkt[236:240], dhcpv4.MagicCookie)

	pkt[240] = byte(dhcpv4.OptionDHCPMessageType)
	pkt[241] = 1
	pkt[242] = byte(dhcpv4.MessageTypeDiscover)
	pkt[243] = byte(dhcpv4.OptionEnd)

	return pkt
}

func TestDecodePacket(t *testing.T) {
	mac := net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	data := buildTestDiscover(mac, 0xDEADBEEF)

	pkt, err := DecodePacket(data)
	if err != nil {
		t.Fatalf("DecodePacket error: %v", err)
	}
	if pkt.XID != 0xDEADBEEF {
		t.Errorf("XID = 0x%08X, want 0xDEADBEEF", pkt.XID)
	}
	if pkt.CHAddr.String() != mac.String() {
		t.Errorf("CHAddr = %s, want %s", pkt.CHAddr, mac)
	}
	if pkt.MessageType() != dhcpv4.MessageTypeDiscover {
		t.Errorf("MessageType = %d, want DISCOVER", pkt.MessageType())
	}
}

func TestDecodePacketTooShort(t *testing.T) {
	data := make([]byte, 100)
	if _, err := DecodePacket(data); err == nil {
		t.Error("expected error for short packet, got nil")
	}
}

func TestDecodePacketBadMagicCookie(t *testing.T) {
	data := make([]byte, 300)
	data[0] = 1
	data[1] = 1
	data[2] = 6
	copy(data[236:240], []byte{1, 2, 3, 4})
	if _, err := DecodePacket(data); err == nil {
		t.Error("expected error for bad magic cookie, got nil")
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	mac := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x00, 0x00, 0x01}
	data := buildTestDiscover(mac, 12345)

	pkt, err := DecodePacket(data)
	if err != nil {
		t.Fatalf("DecodePacket error: %v", err)
	}
	encoded, err := pkt.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	pkt2, err := DecodePacket(encoded)
	if err != nil {
		t.Fatalf("re-decode error: %v", err)
	}
	if pkt2.XID != pkt.XID {
		t.Errorf("XID not preserved across round trip: %d != %d", pkt2.XID, pkt.XID)
	}
	if pkt2.CHAddr.String() != pkt.CHAddr.String() {
		t.Errorf("CHAddr not preserved: %s != %s", pkt2.CHAddr, pkt.CHAddr)
	}
	if pkt2.Op != dhcpv4.OpCodeBootRequest {
		t.Errorf("Op mutated across round trip: %d", pkt2.Op)
	}
	if len(encoded) < dhcpv4.MinPacketSize {
		t.Errorf("encoded length %d below minimum %d", len(encoded), dhcpv4.MinPacketSize)
	}
}

func TestNewReplyPreservesXIDAndCHAddr(t *testing.T) {
	mac := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x00, 0x00, 0x01}
	data := buildTestDiscover(mac, 999)
	req, err := DecodePacket(data)
	if err != nil {
		t.Fatalf("DecodePacket error: %v", err)
	}

	reply := req.NewReply(dhcpv4.MessageTypeOffer, net.ParseIP("192.0.2.1"))
	if reply.XID != req.XID {
		t.Errorf("reply.XID = %d, want %d", reply.XID, req.XID)
	}
	if reply.CHAddr.String() != req.CHAddr.String() {
		t.Errorf("reply.CHAddr = %s, want %s", reply.CHAddr, req.CHAddr)
	}
	if reply.Op != dhcpv4.OpCodeBootReply {
		t.Errorf("reply.Op = %d, want BOOTREPLY", reply.Op)
	}
}

func TestIsBroadcastAndRelayed(t *testing.T) {
	p := &Packet{Flags: 0x8000, GIAddr: net.ParseIP("10.0.0.1")}
	if !p.IsBroadcast() {
		t.Error("IsBroadcast() = false, want true")
	}
	if !p.IsRelayed() {
		t.Error("IsRelayed() = false, want true")
	}

	p2 := &Packet{Flags: 0, GIAddr: net.IPv4zero}
	if p2.IsBroadcast() {
		t.Error("IsBroadcast() = true, want false")
	}
	if p2.IsRelayed() {
		t.Error("IsRelayed() = true, want false")
	}
}
