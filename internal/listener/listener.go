// Package listener implements L (spec §4.6): the UDP read loop that binds
// the server-port and (optionally) PXE-port sockets, reads one datagram at
// a time, and hands each off to the protocol engine in its own worker
// goroutine. Grounded on the teacher's internal/dhcp/server.go (SO_REUSEADDR
// socket setup via net.ListenConfig.Control, GetBuffer/PutBuffer pool,
// goroutine-per-packet serve loop), collapsed to spec §4.6's simpler
// two-socket model (no interface-group fan-out).
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"github.com/staticdhcpd/staticdhcpd/internal/wire"
)

// PacketHandler is implemented by the protocol engine.
type PacketHandler interface {
	HandlePacket(pkt *wire.Packet, srcIP net.IP, srcPort int)
}

// Listener owns the server-port socket and, when configured, the PXE-port
// socket (spec §4.6).
type Listener struct {
	serverConn *net.UDPConn
	pxeConn    *net.UDPConn

	handler PacketHandler
	logger  *slog.Logger

	wg   sync.WaitGroup
	done chan struct{}
}

// New binds the server-port socket and, when pxePort != 0, the PXE-port
// socket, both with SO_REUSEADDR set (spec §4.6).
func New(serverPort, pxePort int, handler PacketHandler, logger *slog.Logger) (*Listener, error) {
	serverConn, err := listenReusable(serverPort)
	if err != nil {
		return nil, fmt.Errorf("binding server port %d: %w", serverPort, err)
	}

	l := &Listener{
		serverConn: serverConn,
		handler:    handler,
		logger:     logger,
		done:       make(chan struct{}),
	}

	if pxePort != 0 {
		pxeConn, err := listenReusable(pxePort)
		if err != nil {
			serverConn.Close()
			return nil, fmt.Errorf("binding PXE port %d: %w", pxePort, err)
		}
		l.pxeConn = pxeConn
	}

	return l, nil
}

func listenReusable(port int) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				if err := syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); err != nil {
					sockErr = err
				}
			}); err != nil {
				return err
			}
			return sockErr
		},
	}
	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return nil, err
	}
	return pc.(*net.UDPConn), nil
}

// Start launches one read loop per bound socket. Each datagram is handed
// to the protocol engine on its own goroutine (spec §5: parallel
// per-request workers, no ordering guarantee).
func (l *Listener) Start() {
	l.wg.Add(1)
	go l.serve(l.serverConn, false)

	if l.pxeConn != nil {
		l.wg.Add(1)
		go l.serve(l.pxeConn, true)
	}
}

func (l *Listener) serve(conn *net.UDPConn, fromPXE bool) {
	defer l.wg.Done()

	for {
		select {
		case <-l.done:
			return
		default:
		}

		buf := wire.GetBuffer()
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-l.done:
				wire.PutBuffer(buf)
				return
			default:
			}
			l.logger.Error("reading UDP packet", "error", err)
			wire.PutBuffer(buf)
			continue
		}

		l.wg.Add(1)
		go func(data []byte, length int, srcAddr *net.UDPAddr) {
			defer l.wg.Done()
			defer wire.PutBuffer(data)
			l.process(data[:length], srcAddr, fromPXE)
		}(buf, n, src)
	}
}

func (l *Listener) process(data []byte, src *net.UDPAddr, fromPXE bool) {
	pkt, err := wire.DecodePacket(data)
	if err != nil {
		l.logger.Warn("dropping malformed packet", "error", err, "src", src.String(), "size", len(data))
		return
	}
	pkt.FromPXEPort = fromPXE
	l.handler.HandlePacket(pkt, src.IP, src.Port)
}

// Stop closes both sockets and waits for in-flight workers to drain.
func (l *Listener) Stop() {
	close(l.done)
	l.serverConn.Close()
	if l.pxeConn != nil {
		l.pxeConn.Close()
	}
	l.wg.Wait()
}
