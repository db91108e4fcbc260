package wire

import (
	"fmt"

	"github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"
)

// RelayAgentInfo holds parsed option 82 sub-options (RFC 3046).
type RelayAgentInfo struct {
	CircuitID  string
	RemoteID   string
	LinkSelect []byte // RFC 3527 sub-option 5
	Raw        []byte
}

// DecodeRelayAgentInfo decodes option 82 sub-options: list of
// (sub-id:u8, len:u8, data).
func DecodeRelayAgentInfo(data []byte) (*RelayAgentInfo, error) {
	info := &RelayAgentInfo{Raw: data}
	i := 0
	for i < len(data) {
		if i+1 >= len(data) {
			return nil, fmt.Errorf("truncated relay agent sub-option at offset %d", i)
		}
		subType := data[i]
		subLen := int(data[i+1])
		i += 2
		if i+subLen > len(data) {
			return nil, fmt.Errorf("truncated relay agent sub-option %d at offset %d", subType, i-2)
		}
		subData := data[i : i+subLen]
		i += subLen

		switch subType {
		case dhcpv4.RelaySubOptionCircuitID:
			info.CircuitID = string(subData)
		case dhcpv4.RelaySubOptionRemoteID:
			info.RemoteID = string(subData)
		case dhcpv4.RelaySubOptionLinkSelect:
			info.LinkSelect = append([]byte(nil), subData...)
		}
	}
	return info, nil
}

// EncodeRelayAgentInfo encodes option 82 sub-options to bytes.
func EncodeRelayAgentInfo(info *RelayAgentInfo) []byte {
	var buf []byte
	if info.CircuitID != "" {
		buf = append(buf, dhcpv4.RelaySubOptionCircuitID, byte(len(info.CircuitID)))
		buf = append(buf, []byte(info.CircuitID)...)
	}
	if info.RemoteID != "" {
		buf = append(buf, dhcpv4.RelaySubOptionRemoteID, byte(len(info.RemoteID)))
		buf = append(buf, []byte(info.RemoteID)...)
	}
	if len(info.LinkSelect) > 0 {
		buf = append(buf, dhcpv4.RelaySubOptionLinkSelect, byte(len(info.LinkSelect)))
		buf = append(buf, info.LinkSelect...)
	}
	return buf
}

// GetRelayInfo extracts option 82 from a packet, if present and well-formed.
func GetRelayInfo(p *Packet) *RelayAgentInfo {
	data, ok := p.Options.Get(dhcpv4.OptionRelayAgentInfo)
	if !ok {
		return nil
	}
	info, err := DecodeRelayAgentInfo(data)
	if err != nil {
		return nil
	}
	return info
}
