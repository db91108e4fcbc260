// Package wire implements binary encode/decode of DHCPv4 packets and their
// options, including the RFC-shaped composite options. It has no I/O and no
// state beyond the packet buffer pool.
package wire

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"
)

// Packet represents a decoded DHCPv4 packet (RFC 2131 §2).
type Packet struct {
	Op      dhcpv4.OpCode
	HType   dhcpv4.HardwareType
	HLen    byte
	Hops    byte
	XID     uint32
	Secs    uint16
	Flags   uint16
	CIAddr  net.IP
	YIAddr  net.IP
	SIAddr  net.IP
	GIAddr  net.IP
	CHAddr  net.HardwareAddr
	SName   [64]byte
	File    [128]byte
	Options Options

	// FromPXEPort records whether this packet arrived on the PXE socket.
	// Not part of the wire format.
	FromPXEPort bool

	// Response-override slots (spec §3, §9): set only by the hook, read
	// only by the engine's send step, never mutated elsewhere. Nil/zero means
	// "no override, use the send-policy table".
	OverrideDestMAC  net.HardwareAddr
	OverrideDestIP   net.IP
	OverrideDestPort int
	OverrideSrcPort  int
}

// packetPool reuses packet buffers across workers to reduce allocations in
// the hot path. Grounded on athena-dhcpd's internal/dhcp/packet.go.
var packetPool = sync.Pool{
	New: func() interface{} {
		return make([]byte, dhcpv4.MaxPacketSize)
	},
}

// GetBuffer returns a buffer from the pool.
func GetBuffer() []byte { return packetPool.Get().([]byte) }

// PutBuffer zeroes and returns a buffer to the pool.
func PutBuffer(b []byte) {
	for i := range b {
		b[i] = 0
	}
	packetPool.Put(b)
}

// ErrMalformedPacket indicates a decode failure: short datagram, missing
// magic cookie, an option whose declared length overruns the buffer, or an
// options area with no END option.
type ErrMalformedPacket struct{ Reason string }

func (e *ErrMalformedPacket) Error() string { return "malformed packet: " + e.Reason }

// DecodePacket parses a raw DHCPv4 datagram. RFC 2131 §2.
func DecodePacket(data []byte) (*Packet, error) {
	if len(data) < 240 {
		return nil, &ErrMalformedPacket{Reason: fmt.Sprintf("datagram too short: %d bytes (minimum 240)", len(data))}
	}

	p := &Packet{}
	p.Op = dhcpv4.OpCode(data[0])
	p.HType = dhcpv4.HardwareType(data[1])
	p.HLen = data[2]
	p.Hops = data[3]
	p.XID = binary.BigEndian.Uint32(data[4:8])
	p.Secs = binary.BigEndian.Uint16(data[8:10])
	p.Flags = binary.BigEndian.Uint16(data[10:12])

	p.CIAddr = append(net.IP(nil), data[12:16]...)
	p.YIAddr = append(net.IP(nil), data[16:20]...)
	p.SIAddr = append(net.IP(nil), data[20:24]...)
	p.GIAddr = append(net.IP(nil), data[24:28]...)

	chaddr := make([]byte, 16)
	copy(chaddr, data[28:44])
	hlen := p.HLen
	if hlen > 16 {
		hlen = 16
	}
	p.CHAddr = net.HardwareAddr(chaddr[:hlen])

	copy(p.SName[:], data[44:108])
	copy(p.File[:], data[108:236])

	cookie := data[236:240]
	if cookie[0] != dhcpv4.MagicCookie[0] || cookie[1] != dhcpv4.MagicCookie[1] ||
		cookie[2] != dhcpv4.MagicCookie[2] || cookie[3] != dhcpv4.MagicCookie[3] {
		return nil, &ErrMalformedPacket{Reason: fmt.Sprintf("bad magic cookie: %v", cookie)}
	}

	opts, err := DecodeOptions(data[240:])
	if err != nil {
		return nil, &ErrMalformedPacket{Reason: err.Error()}
	}
	p.Options = opts

	return p, nil
}

// Encode serializes a packet to bytes: fixed header, magic cookie, options
// in canonical ascending order (RFC 3396 split where needed), END, padded
// to the minimum payload size.
func (p *Packet) Encode() ([]byte, error) {
	optBytes := p.Options.Encode()
	totalLen := 240 + len(optBytes)
	if totalLen < dhcpv4.MinPacketSize {
		totalLen = dhcpv4.MinPacketSize
	}

	buf := make([]byte, totalLen)
	buf[0] = byte(p.Op)
	buf[1] = byte(p.HType)
	buf[2] = p.HLen
	buf[3] = p.Hops
	binary.BigEndian.PutUint32(buf[4:8], p.XID)
	binary.BigEndian.PutUint16(buf[8:10], p.Secs)
	binary.BigEndian.PutUint16(buf[10:12], p.Flags)

	if p.CIAddr != nil {
		copy(buf[12:16], p.CIAddr.To4())
	}
	if p.YIAddr != nil {
		copy(buf[16:20], p.YIAddr.To4())
	}
	if p.SIAddr != nil {
		copy(buf[20:24], p.SIAddr.To4())
	}
	if p.GIAddr != nil {
		copy(buf[24:28], p.GIAddr.To4())
	}
	if p.CHAddr != nil {
		copy(buf[28:44], p.CHAddr)
	}
	copy(buf[44:108], p.SName[:])
	copy(buf[108:236], p.File[:])
	copy(buf[236:240], dhcpv4.MagicCookie)
	copy(buf[240:], optBytes)

	// Remainder of buf beyond header+options+END is already zero (PAD),
	// satisfying the "padded to >= MinPacketSize with PAD" rule.
	return buf, nil
}

// MessageType returns the DHCP message type (option 53), or 0 if absent or
// malformed (length != 1).
func (p *Packet) MessageType() dhcpv4.MessageType {
	if data, ok := p.Options.Get(dhcpv4.OptionDHCPMessageType); ok && len(data) == 1 {
		return dhcpv4.MessageType(data[0])
	}
	return 0
}

func (p *Packet) RequestedIP() net.IP {
	if data, ok := p.Options.Get(dhcpv4.OptionRequestedIP); ok && len(data) == 4 {
		return net.IP(data)
	}
	return nil
}

func (p *Packet) ServerIdentifier() net.IP {
	if data, ok := p.Options.Get(dhcpv4.OptionServerIdentifier); ok && len(data) == 4 {
		return net.IP(data)
	}
	return nil
}

func (p *Packet) ClientIdentifier() []byte {
	data, _ := p.Options.Get(dhcpv4.OptionClientIdentifier)
	return data
}

func (p *Packet) Hostname() string {
	data, _ := p.Options.Get(dhcpv4.OptionHostname)
	return string(data)
}

func (p *Packet) ParameterRequestList() []dhcpv4.OptionCode {
	data, ok := p.Options.Get(dhcpv4.OptionParameterRequestList)
	if !ok {
		return nil
	}
	codes := make([]dhcpv4.OptionCode, len(data))
	for i, b := range data {
		codes[i] = dhcpv4.OptionCode(b)
	}
	return codes
}

func (p *Packet) IsBroadcast() bool { return p.Flags&0x8000 != 0 }

func (p *Packet) IsRelayed() bool { return p.GIAddr != nil && !p.GIAddr.Equal(net.IPv4zero) }

// HasRapidCommit reports whether option 80 was present in the request.
func (p *Packet) HasRapidCommit() bool { return p.Options.Has(dhcpv4.OptionRapidCommit) }

// NewReply creates a response packet with the common header fields carried
// over from the request (spec §8 invariant: xid, chaddr, op=2 preserved).
func (p *Packet) NewReply(msgType dhcpv4.MessageType, serverIP net.IP) *Packet {
	reply := &Packet{
		Op:      dhcpv4.OpCodeBootReply,
		HType:   p.HType,
		HLen:    p.HLen,
		Hops:    0,
		XID:     p.XID,
		Secs:    0,
		Flags:   p.Flags,
		CIAddr:  net.IPv4zero,
		YIAddr:  net.IPv4zero,
		SIAddr:  serverIP,
		GIAddr:  append(net.IP(nil), p.GIAddr...),
		CHAddr:  append(net.HardwareAddr(nil), p.CHAddr...),
		Options: make(Options),
	}
	reply.Options.Set(dhcpv4.OptionDHCPMessageType, []byte{byte(msgType)})
	reply.Options.Set(dhcpv4.OptionServerIdentifier, dhcpv4.IPToBytes(serverIP))
	return reply
}

func (p *Packet) VendorClassID() string {
	data, _ := p.Options.Get(dhcpv4.OptionVendorClassID)
	return string(data)
}

func (p *Packet) UserClassID() string {
	data, _ := p.Options.Get(dhcpv4.OptionUserClass)
	return string(data)
}

func (p *Packet) MaxMessageSize() uint16 {
	if data, ok := p.Options.Get(dhcpv4.OptionMaxDHCPMessageSize); ok && len(data) == 2 {
		return binary.BigEndian.Uint16(data)
	}
	return 0
}
