package record

import (
	"net"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("OpenBoltStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStorePutLookupDelete(t *testing.T) {
	store := openTestStore(t)
	mac := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	def := &Definition{
		IP:                net.IPv4(192, 168, 1, 50),
		LeaseTime:         3600,
		Hostname:          "printer-1",
		SubnetMask:        net.IPv4(255, 255, 255, 0),
		DomainNameServers: []net.IP{net.IPv4(192, 168, 1, 1)},
	}

	if err := store.Put(mac, def); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.LookupMAC(mac)
	if err != nil {
		t.Fatalf("LookupMAC: %v", err)
	}
	if got == nil || !got.IP.Equal(def.IP) || got.Hostname != def.Hostname {
		t.Fatalf("LookupMAC = %+v, want %+v", got, def)
	}

	if err := store.Delete(mac); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = store.LookupMAC(mac)
	if err != nil {
		t.Fatalf("LookupMAC after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("LookupMAC after delete = %+v, want nil", got)
	}
}

func TestBoltStoreLookupUnknownMACReturnsNilNil(t *testing.T) {
	store := openTestStore(t)
	mac := net.HardwareAddr{1, 1, 1, 1, 1, 1}

	def, err := store.LookupMAC(mac)
	if err != nil {
		t.Fatalf("LookupMAC: %v", err)
	}
	if def != nil {
		t.Fatalf("LookupMAC = %+v, want nil for unknown MAC", def)
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.db")
	mac := net.HardwareAddr{2, 2, 2, 2, 2, 2}

	store, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("OpenBoltStore: %v", err)
	}
	if err := store.Put(mac, &Definition{IP: net.IPv4(10, 1, 1, 1)}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	store.Close()

	reopened, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("reopen OpenBoltStore: %v", err)
	}
	defer reopened.Close()

	def, err := reopened.LookupMAC(mac)
	if err != nil {
		t.Fatalf("LookupMAC after reopen: %v", err)
	}
	if def == nil || !def.IP.Equal(net.IPv4(10, 1, 1, 1)) {
		t.Fatalf("LookupMAC after reopen = %+v", def)
	}
}
