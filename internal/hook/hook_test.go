package hook

import (
	"testing"

	"github.com/staticdhcpd/staticdhcpd/internal/wire"
)

func TestExtractPXEOptionsNilWhenAbsent(t *testing.T) {
	p := &wire.Packet{Options: wire.Options{}}
	if got := ExtractPXEOptions(p); got != nil {
		t.Errorf("ExtractPXEOptions() = %+v, want nil", got)
	}
}

func TestExtractPXEOptionsPresent(t *testing.T) {
	p := &wire.Packet{Options: wire.Options{
		93: {0x00, 0x07},
	}}
	got := ExtractPXEOptions(p)
	if got == nil {
		t.Fatal("ExtractPXEOptions() = nil, want non-nil")
	}
	if len(got.ClientArch) != 2 {
		t.Errorf("ClientArch = %v", got.ClientArch)
	}
}

func TestExtractVendorOptionsNilWhenAbsent(t *testing.T) {
	p := &wire.Packet{Options: wire.Options{}}
	if got := ExtractVendorOptions(p); got != nil {
		t.Errorf("ExtractVendorOptions() = %+v, want nil", got)
	}
}

func TestExtractVendorOptionsDecodesVIVendorClass(t *testing.T) {
	encoded := wire.EncodeVendorClass([]wire.VendorClassEntry{{EnterpriseNumber: 311, Data: []byte("MSFT")}})
	p := &wire.Packet{Options: wire.Options{124: encoded}}

	got := ExtractVendorOptions(p)
	if got == nil {
		t.Fatal("ExtractVendorOptions() = nil, want non-nil")
	}
	if len(got.VIVendorClass) != 1 || got.VIVendorClass[0].EnterpriseNumber != 311 {
		t.Errorf("VIVendorClass = %+v", got.VIVendorClass)
	}
}
