package wire

import (
	"bytes"
	"testing"

	"github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"
)

func TestDecodeOptionsConcatenatesRepeatedCodes(t *testing.T) {
	// RFC 3396: two occurrences of option 6 (domain_name_servers) must
	// concatenate, not overwrite.
	data := []byte{
		byte(dhcpv4.OptionDomainNameServer), 4, 10, 0, 0, 1,
		byte(dhcpv4.OptionDomainNameServer), 4, 10, 0, 0, 2,
		byte(dhcpv4.OptionEnd),
	}
	opts, err := DecodeOptions(data)
	if err != nil {
		t.Fatalf("DecodeOptions error: %v", err)
	}
	want := []byte{10, 0, 0, 1, 10, 0, 0, 2}
	got, ok := opts.Get(dhcpv4.OptionDomainNameServer)
	if !ok {
		t.Fatal("option 6 missing after decode")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("concatenated option 6 = %v, want %v", got, want)
	}
}

func TestDecodeOptionsMissingEndIsMalformed(t *testing.T) {
	data := []byte{byte(dhcpv4.OptionDomainNameServer), 4, 10, 0, 0, 1}
	if _, err := DecodeOptions(data); err == nil {
		t.Fatal("DecodeOptions with no END option should return an error")
	}
}

func TestEncodeCanonicalOrderAndSplit(t *testing.T) {
	opts := make(Options)
	opts.Set(dhcpv4.OptionEnd-1, []byte{1}) // high code, arbitrary
	opts.Set(dhcpv4.OptionDHCPMessageType, []byte{1})
	big := bytes.Repeat([]byte{0xAB}, 300) // forces RFC 3396 split
	opts.Set(dhcpv4.OptionDomainNameServer, big)

	encoded := opts.Encode()

	// First byte must be the lowest code present (53 < 254 < ...), but
	// option 6 (value 300 bytes) is lower than 53 numerically, so it
	// must come first.
	if encoded[0] != byte(dhcpv4.OptionDomainNameServer) {
		t.Fatalf("first option code = %d, want %d (ascending order)", encoded[0], dhcpv4.OptionDomainNameServer)
	}
	// First chunk must be capped at 255 bytes.
	if encoded[1] != 255 {
		t.Errorf("first chunk length = %d, want 255", encoded[1])
	}

	decoded, err := DecodeOptions(encoded)
	if err != nil {
		t.Fatalf("decode of re-encoded options failed: %v", err)
	}
	got, _ := decoded.Get(dhcpv4.OptionDomainNameServer)
	if !bytes.Equal(got, big) {
		t.Errorf("round-tripped split option mismatch: got %d bytes, want %d", len(got), len(big))
	}
}

func TestEncodeZeroLengthOption(t *testing.T) {
	// Rapid commit (option 80) is a bare (80, 0) option with no payload.
	opts := make(Options)
	opts.Set(dhcpv4.OptionRapidCommit, []byte{})
	encoded := opts.Encode()
	if len(encoded) < 2 || encoded[0] != byte(dhcpv4.OptionRapidCommit) || encoded[1] != 0 {
		t.Errorf("rapid-commit encoding = %v, want [80 0 ...]", encoded)
	}
}

func TestOptionsCloneIsDeep(t *testing.T) {
	opts := make(Options)
	opts.Set(dhcpv4.OptionHostname, []byte("host"))
	clone := opts.Clone()
	clone.Get(dhcpv4.OptionHostname)
	v, _ := clone.Get(dhcpv4.OptionHostname)
	v[0] = 'X'
	orig, _ := opts.Get(dhcpv4.OptionHostname)
	if orig[0] == 'X' {
		t.Error("Clone() did not deep-copy option values")
	}
}
