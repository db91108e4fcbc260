package wire

import (
	"bytes"
	"net"
	"testing"
)

func TestFQDNListRoundTrip(t *testing.T) {
	names := []string{"example.com", "a.b.example.org"}
	encoded, err := EncodeFQDNList(names)
	if err != nil {
		t.Fatalf("EncodeFQDNList error: %v", err)
	}
	decoded, err := DecodeFQDNList(encoded)
	if err != nil {
		t.Fatalf("DecodeFQDNList error: %v", err)
	}
	if len(decoded) != len(names) {
		t.Fatalf("decoded %d names, want %d", len(decoded), len(names))
	}
}

func TestSIPServersExactlyOneMode(t *testing.T) {
	if _, err := EncodeSIPServers([]string{"sip.example.com"}, []net.IP{net.ParseIP("192.0.2.1")}); err == nil {
		t.Error("expected error when both names and ips are given")
	}

	encoded, err := EncodeSIPServers(nil, []net.IP{net.ParseIP("192.0.2.1"), net.ParseIP("192.0.2.2")})
	if err != nil {
		t.Fatalf("EncodeSIPServers error: %v", err)
	}
	if encoded[0] != 1 {
		t.Fatalf("mode byte = %d, want 1 (IPv4 list)", encoded[0])
	}
	_, ips, err := DecodeSIPServers(encoded)
	if err != nil {
		t.Fatalf("DecodeSIPServers error: %v", err)
	}
	if len(ips) != 2 {
		t.Errorf("decoded %d ips, want 2", len(ips))
	}
}

func TestVendorClassRoundTrip(t *testing.T) {
	entries := []VendorClassEntry{
		{EnterpriseNumber: 9, Data: []byte("cisco")},
		{EnterpriseNumber: 311, Data: []byte("msft")},
	}
	encoded := EncodeVendorClass(entries)
	decoded, err := DecodeVendorClass(encoded)
	if err != nil {
		t.Fatalf("DecodeVendorClass error: %v", err)
	}
	if len(decoded) != 2 || decoded[0].EnterpriseNumber != 9 || !bytes.Equal(decoded[0].Data, []byte("cisco")) {
		t.Errorf("decoded vendor-class entries mismatch: %+v", decoded)
	}
}

func TestVendorSpecificRoundTrip(t *testing.T) {
	entries := []VendorSpecificEntry{
		{
			EnterpriseNumber: 9,
			SubOptions: []VendorSpecificSubOption{
				{Code: 1, Data: []byte{0x01}},
				{Code: 2, Data: []byte("value")},
			},
		},
	}
	encoded := EncodeVendorSpecific(entries)
	decoded, err := DecodeVendorSpecific(encoded)
	if err != nil {
		t.Fatalf("DecodeVendorSpecific error: %v", err)
	}
	if len(decoded) != 1 || len(decoded[0].SubOptions) != 2 {
		t.Fatalf("decoded vendor-specific mismatch: %+v", decoded)
	}
	if decoded[0].SubOptions[1].Code != 2 || !bytes.Equal(decoded[0].SubOptions[1].Data, []byte("value")) {
		t.Errorf("sub-option mismatch: %+v", decoded[0].SubOptions[1])
	}
}

func TestSLPDirectoryAgentRoundTrip(t *testing.T) {
	agents := []net.IP{net.ParseIP("192.0.2.10")}
	encoded := EncodeSLPDirectoryAgent(true, agents)
	mandatory, decoded, err := DecodeSLPDirectoryAgent(encoded)
	if err != nil {
		t.Fatalf("DecodeSLPDirectoryAgent error: %v", err)
	}
	if !mandatory {
		t.Error("mandatory flag lost in round trip")
	}
	if len(decoded) != 1 {
		t.Fatalf("decoded %d agents, want 1", len(decoded))
	}
}

func TestISNSRoundTrip(t *testing.T) {
	v := ISNS{Functions: 1, DDAccess: 2, AdminFlags: 3, Security: 4, Servers: []net.IP{net.ParseIP("192.0.2.20")}}
	encoded := EncodeISNS(v)
	decoded, err := DecodeISNS(encoded)
	if err != nil {
		t.Fatalf("DecodeISNS error: %v", err)
	}
	if decoded.Functions != 1 || decoded.Security != 4 || len(decoded.Servers) != 1 {
		t.Errorf("ISNS round trip mismatch: %+v", decoded)
	}
}

func TestRelayAgentInfoRoundTrip(t *testing.T) {
	info := &RelayAgentInfo{CircuitID: "eth0", RemoteID: "switch1"}
	encoded := EncodeRelayAgentInfo(info)
	decoded, err := DecodeRelayAgentInfo(encoded)
	if err != nil {
		t.Fatalf("DecodeRelayAgentInfo error: %v", err)
	}
	if decoded.CircuitID != "eth0" || decoded.RemoteID != "switch1" {
		t.Errorf("relay info round trip mismatch: %+v", decoded)
	}
}
