package engine

import (
	"log/slog"
	"net"

	"github.com/staticdhcpd/staticdhcpd/internal/record"
	"github.com/staticdhcpd/staticdhcpd/internal/wire"
	"github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"
)

// loadDefinition sets reply fields from a Definition per spec §4.5.1.
// inform suppresses yiaddr and the lease-time option, per the original's
// _loadDHCPPacket(packet, result, inform=True) call shape for DHCPINFORM.
// Every option whose source value fails to encode is logged and skipped;
// the rest of the load proceeds.
func loadDefinition(logger *slog.Logger, reply *wire.Packet, def *record.Definition, inform bool) {
	if !inform {
		reply.YIAddr = def.IP
		reply.Options.SetUint32(dhcpv4.OptionIPLeaseTime, def.LeaseTime)
	}

	if def.Gateway != nil {
		setOptionIP(logger, reply, dhcpv4.OptionRouter, def.Gateway, def.Subnet, def.Serial)
	}
	if def.SubnetMask != nil {
		setOptionIP(logger, reply, dhcpv4.OptionSubnetMask, def.SubnetMask, def.Subnet, def.Serial)
	}
	if def.BroadcastAddress != nil {
		setOptionIP(logger, reply, dhcpv4.OptionBroadcastAddress, def.BroadcastAddress, def.Subnet, def.Serial)
	}
	if def.Hostname != "" {
		reply.Options.SetString(dhcpv4.OptionHostname, def.Hostname)
	}
	if def.DomainName != "" {
		reply.Options.SetString(dhcpv4.OptionDomainName, def.DomainName)
	}
	if len(def.DomainNameServers) > 0 {
		setOptionIPList(logger, reply, dhcpv4.OptionDomainNameServer, capIPs(def.DomainNameServers, 3), def.Subnet, def.Serial)
	}
	if len(def.NTPServers) > 0 {
		setOptionIPList(logger, reply, dhcpv4.OptionNTPServers, capIPs(def.NTPServers, 3), def.Subnet, def.Serial)
	}
}

func capIPs(ips []net.IP, max int) []net.IP {
	if len(ips) <= max {
		return ips
	}
	return ips[:max]
}

func setOptionIP(logger *slog.Logger, p *wire.Packet, code dhcpv4.OptionCode, ip net.IP, subnet string, serial int) {
	v4 := ip.To4()
	if v4 == nil {
		logger.Warn("invalid option value, skipping", "option", code, "value", ip, "subnet", subnet, "serial", serial)
		return
	}
	p.Options.Set(code, v4)
}

func setOptionIPList(logger *slog.Logger, p *wire.Packet, code dhcpv4.OptionCode, ips []net.IP, subnet string, serial int) {
	for _, ip := range ips {
		if ip.To4() == nil {
			logger.Warn("invalid option value, skipping", "option", code, "value", ips, "subnet", subnet, "serial", serial)
			return
		}
	}
	p.Options.Set(code, dhcpv4.IPListToBytes(ips))
}

// finalizeServerIdentifier sets option 54 to the server's own address,
// the final step of spec §4.5.1's packet load.
func finalizeServerIdentifier(reply *wire.Packet, serverIP net.IP) {
	reply.Options.Set(dhcpv4.OptionServerIdentifier, dhcpv4.IPToBytes(serverIP))
}
