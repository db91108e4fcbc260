package listener

import (
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/staticdhcpd/staticdhcpd/internal/wire"
	"github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"
)

type recordingHandler struct {
	mu      sync.Mutex
	handled []bool // FromPXEPort per call
	done    chan struct{}
}

func (h *recordingHandler) HandlePacket(pkt *wire.Packet, srcIP net.IP, srcPort int) {
	h.mu.Lock()
	h.handled = append(h.handled, pkt.FromPXEPort)
	h.mu.Unlock()
	select {
	case h.done <- struct{}{}:
	default:
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildDiscoverDatagram(t *testing.T) []byte {
	t.Helper()
	pkt := &wire.Packet{
		Op: dhcpv4.OpCodeBootRequest, HType: dhcpv4.HardwareTypeEthernet, HLen: 6,
		XID: 1, CHAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0, 0, 1},
		Options: wire.Options{dhcpv4.OptionDHCPMessageType: {byte(dhcpv4.MessageTypeDiscover)}},
	}
	data, err := pkt.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func TestListenerDispatchesServerPortDatagram(t *testing.T) {
	h := &recordingHandler{done: make(chan struct{}, 1)}
	l, err := New(0, 0, h, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Stop()
	l.Start()

	addr := l.serverConn.LocalAddr().(*net.UDPAddr)
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		t.Fatalf("DialUDP: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write(buildDiscoverDatagram(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked within timeout")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.handled) != 1 || h.handled[0] != false {
		t.Errorf("handled = %v, want [false]", h.handled)
	}
}

func TestListenerTagsPXEDatagrams(t *testing.T) {
	h := &recordingHandler{done: make(chan struct{}, 1)}
	l, err := New(0, 0, h, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Swap in a PXE socket for this test since New(0,0,...) leaves pxeConn nil.
	pxeConn, err := listenReusable(0)
	if err != nil {
		t.Fatalf("listenReusable: %v", err)
	}
	l.pxeConn = pxeConn
	defer l.Stop()
	l.Start()

	addr := l.pxeConn.LocalAddr().(*net.UDPAddr)
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		t.Fatalf("DialUDP: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write(buildDiscoverDatagram(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked within timeout")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.handled) != 1 || h.handled[0] != true {
		t.Errorf("handled = %v, want [true]", h.handled)
	}
}
