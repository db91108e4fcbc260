package responder

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/soypat/lneto"
	"golang.org/x/sys/unix"

	"github.com/staticdhcpd/staticdhcpd/internal/wire"
)

// RawResponder is R2 (spec §4.2): a raw Ethernet-type socket bound to a
// single named interface with an out-of-band protocol number, so nothing
// incoming is ever delivered to it. It hand-builds Ethernet, IPv4, and UDP
// headers and bypasses the kernel's ARP lookup, which is the reason it
// exists at all — the target's yiaddr has no ARP cache entry yet.
//
// Grounded on the raw-socket/SockaddrLinklayer idiom shared by the
// canonical-maas and dmitry-vovk reference servers (syscall.Socket(AF_PACKET,
// SOCK_RAW, ...) + Sendto with a SockaddrLinklayer), the teacher's
// gratuitous.go for the hand-built frame byte layout, and
// github.com/soypat/lneto's CRC791 for the RFC 1071 checksums.
type RawResponder struct {
	fd      int
	ifIndex int
	srcMAC  net.HardwareAddr
	srcIP   net.IP
}

const ethPSNAP = 0x0005 // ETH_P_SNAP, an out-of-band protocol number; network byte order handled by htons below

func htons(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}

// NewRawResponder opens an AF_PACKET/SOCK_RAW socket bound to ifaceName and
// returns a responder that sends from srcIP via that interface's own
// hardware address. The socket is opened and bound with ETH_P_SNAP, an
// out-of-band protocol number, so ordinary inbound traffic is not delivered
// to it.
func NewRawResponder(ifaceName string, srcIP net.IP) (*RawResponder, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("resolving interface %s: %w", ifaceName, err)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(ethPSNAP)))
	if err != nil {
		return nil, fmt.Errorf("opening raw packet socket on %s: %w", ifaceName, err)
	}

	sa := &unix.SockaddrLinklayer{
		Protocol: htons(ethPSNAP),
		Ifindex:  iface.Index,
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("binding raw packet socket to %s: %w", ifaceName, err)
	}

	return &RawResponder{
		fd:      fd,
		ifIndex: iface.Index,
		srcMAC:  iface.HardwareAddr,
		srcIP:   srcIP.To4(),
	}, nil
}

// Send implements Responder. sourcePort is the UDP source port to embed in
// the hand-built header (port is the UDP destination port).
func (r *RawResponder) Send(packet *wire.Packet, mac net.HardwareAddr, ip net.IP, port, sourcePort int) (int, error) {
	payload, err := packet.Encode()
	if err != nil {
		return 0, fmt.Errorf("encoding reply: %w", err)
	}

	dstMAC := mac
	if dstMAC == nil || ip.Equal(net.IPv4bcast) {
		dstMAC = BroadcastMAC
	}

	frame := buildFrame(r.srcMAC, dstMAC, r.srcIP, ip.To4(), sourcePort, port, payload)

	sa := &unix.SockaddrLinklayer{
		Ifindex: r.ifIndex,
		Halen:   6,
	}
	copy(sa.Addr[:6], dstMAC)

	if err := unix.Sendto(r.fd, frame, 0, sa); err != nil {
		return 0, fmt.Errorf("sending raw frame to %s: %w", dstMAC, err)
	}
	return len(frame), nil
}

// Close implements Responder.
func (r *RawResponder) Close() error {
	return unix.Close(r.fd)
}

// buildFrame constructs an Ethernet + IPv4 + UDP frame carrying payload,
// per spec §4.2's byte layout: 14-byte Ethernet header, 20-byte IPv4 header
// (TTL 128, protocol 17, no options), 8-byte UDP header.
func buildFrame(srcMAC, dstMAC net.HardwareAddr, srcIP, dstIP net.IP, srcPort, dstPort int, payload []byte) []byte {
	const (
		ethHeaderLen = 14
		ipHeaderLen  = 20
		udpHeaderLen = 8
	)

	udpLen := udpHeaderLen + len(payload)
	totalLen := ipHeaderLen + udpLen
	frame := make([]byte, ethHeaderLen+totalLen)

	// Ethernet header.
	copy(frame[0:6], dstMAC)
	copy(frame[6:12], srcMAC)
	binary.BigEndian.PutUint16(frame[12:14], 0x0800) // EtherType IPv4

	ipHeader := frame[ethHeaderLen : ethHeaderLen+ipHeaderLen]
	ipHeader[0] = 0x45 // version 4, IHL 5 words
	ipHeader[1] = 0    // DSCP/ECN
	binary.BigEndian.PutUint16(ipHeader[2:4], uint16(totalLen))
	binary.BigEndian.PutUint16(ipHeader[4:6], 0) // identification
	binary.BigEndian.PutUint16(ipHeader[6:8], 0) // flags/fragment offset
	ipHeader[8] = 128                            // TTL
	ipHeader[9] = 17                             // protocol: UDP
	binary.BigEndian.PutUint16(ipHeader[10:12], 0)
	copy(ipHeader[12:16], srcIP)
	copy(ipHeader[16:20], dstIP)

	var ipChecksum lneto.CRC791
	ipChecksum.WriteEven(ipHeader)
	binary.BigEndian.PutUint16(ipHeader[10:12], ipChecksum.Sum16())

	udpHeader := frame[ethHeaderLen+ipHeaderLen : ethHeaderLen+ipHeaderLen+udpHeaderLen]
	binary.BigEndian.PutUint16(udpHeader[0:2], uint16(srcPort))
	binary.BigEndian.PutUint16(udpHeader[2:4], uint16(dstPort))
	binary.BigEndian.PutUint16(udpHeader[4:6], uint16(udpLen))
	binary.BigEndian.PutUint16(udpHeader[6:8], 0)

	copy(frame[ethHeaderLen+ipHeaderLen+udpHeaderLen:], payload)

	var udpChecksum lneto.CRC791
	udpChecksum.WriteEven(srcIP.To4())
	udpChecksum.WriteEven(dstIP.To4())
	udpChecksum.AddUint16(uint16(17))
	udpChecksum.AddUint16(uint16(udpLen))
	sum := udpChecksum.PayloadSum16(frame[ethHeaderLen+ipHeaderLen:])
	binary.BigEndian.PutUint16(udpHeader[6:8], lneto.NeverZeroChecksum(sum))

	return frame
}
