package wire

import (
	"net"
	"testing"

	"github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"
)

func TestClassifyPredicates(t *testing.T) {
	p := &Packet{Options: make(Options)}
	p.Options.Set(dhcpv4.OptionDHCPMessageType, []byte{byte(dhcpv4.MessageTypeDiscover)})
	if !IsDHCPPacket(p) || !IsDiscover(p) {
		t.Error("expected packet to classify as DISCOVER")
	}
	if IsRequest(p) || IsInform(p) {
		t.Error("DISCOVER packet misclassified as another type")
	}
}

func TestIsLeaseQueryRequiresCHAddr(t *testing.T) {
	p := &Packet{Options: make(Options), HLen: 6, CHAddr: net.HardwareAddr{1, 2, 3, 4, 5, 6}}
	p.Options.Set(dhcpv4.OptionDHCPMessageType, []byte{byte(dhcpv4.MessageTypeLeaseQuery)})
	if !IsLeaseQuery(p) {
		t.Error("expected valid LEASEQUERY to classify")
	}

	p2 := &Packet{Options: make(Options), HLen: 0, CHAddr: nil}
	p2.Options.Set(dhcpv4.OptionDHCPMessageType, []byte{byte(dhcpv4.MessageTypeLeaseQuery)})
	if IsLeaseQuery(p2) {
		t.Error("expected LEASEQUERY without chaddr to be rejected at classify time")
	}
}
