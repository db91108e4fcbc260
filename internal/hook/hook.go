// Package hook defines the response hook (H, spec §4.7): a user-supplied
// function invoked immediately before transmission on every outgoing
// ACK/OFFER, with the power to mutate the reply and veto the send.
package hook

import (
	"net"

	"github.com/staticdhcpd/staticdhcpd/internal/wire"
)

// PXEOptions holds the decoded PXE client-identification options (93, 94,
// 97), present only when the request carried them.
type PXEOptions struct {
	ClientArch      []byte
	ClientNetIface  []byte
	ClientMachineID []byte
}

// VendorOptions holds the decoded vendor-identification options (43, 60,
// 124, 125), present only when the request carried them.
type VendorOptions struct {
	VendorSpecific   []byte
	VendorClassID    string
	VIVendorClass    []wire.VendorClassEntry
	VIVendorSpecific []wire.VendorSpecificEntry
}

// Func is the response hook signature (spec §4.7): invoked with the
// outgoing packet (mutable), the client MAC, the client IP being offered,
// the relay IP (nil when not relayed), the subnet/serial identifying the
// matched record, and the decoded PXE/vendor options (nil when absent).
// Returning false drops the response silently.
type Func func(packet *wire.Packet, mac net.HardwareAddr, clientIP net.IP, relayIP net.IP, subnet string, serial int, pxe *PXEOptions, vendor *VendorOptions) bool

// ExtractPXEOptions decodes options 93/94/97 from the request packet, or
// returns nil if none of them are present.
func ExtractPXEOptions(p *wire.Packet) *PXEOptions {
	arch, hasArch := p.Options.Get(93)
	iface, hasIface := p.Options.Get(94)
	machineID, hasMachineID := p.Options.Get(97)
	if !hasArch && !hasIface && !hasMachineID {
		return nil
	}
	return &PXEOptions{ClientArch: arch, ClientNetIface: iface, ClientMachineID: machineID}
}

// ExtractVendorOptions decodes options 43/60/124/125 from the request
// packet, or returns nil if none of them are present.
func ExtractVendorOptions(p *wire.Packet) *VendorOptions {
	vs, hasVS := p.Options.Get(43)
	vcid, hasVCID := p.Options.Get(60)
	viVendorClassRaw, hasVIClass := p.Options.Get(124)
	viVendorSpecificRaw, hasVISpecific := p.Options.Get(125)

	if !hasVS && !hasVCID && !hasVIClass && !hasVISpecific {
		return nil
	}

	v := &VendorOptions{VendorSpecific: vs, VendorClassID: string(vcid)}
	if hasVIClass {
		if entries, err := wire.DecodeVendorClass(viVendorClassRaw); err == nil {
			v.VIVendorClass = entries
		}
	}
	if hasVISpecific {
		if entries, err := wire.DecodeVendorSpecific(viVendorSpecificRaw); err == nil {
			v.VIVendorSpecific = entries
		}
	}
	return v
}
