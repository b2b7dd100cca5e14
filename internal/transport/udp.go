// Package transport provides the datagram socket used to talk to a terminal.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// MaxDatagramSize bounds a single receive.
const MaxDatagramSize = 64 * 1024

var ErrNotOpen = errors.New("transport not open")

// UDPTransport is a UDP socket bound locally and pointed at one device.
// Datagrams from any other address are dropped.
type UDPTransport struct {
	localAddr    string
	remoteAddr   string
	remote       *net.UDPAddr
	conn         *net.UDPConn
	mu           sync.RWMutex
	readTimeout  time.Duration
	writeTimeout time.Duration
	closed       bool
}

func NewUDPTransport(localAddr, remoteAddr string) *UDPTransport {
	return &UDPTransport{
		localAddr:    localAddr,
		remoteAddr:   remoteAddr,
		readTimeout:  3 * time.Second,
		writeTimeout: 3 * time.Second,
	}
}

// SetReadTimeout sets the read timeout used when the context has no deadline.
func (t *UDPTransport) SetReadTimeout(d time.Duration) {
	t.mu.Lock()
	t.readTimeout = d
	t.mu.Unlock()
}

func (t *UDPTransport) SetWriteTimeout(d time.Duration) {
	t.mu.Lock()
	t.writeTimeout = d
	t.mu.Unlock()
}

// Open resolves the device address and binds the local socket.
func (t *UDPTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil && !t.closed {
		return nil
	}

	remote, err := net.ResolveUDPAddr("udp4", t.remoteAddr)
	if err != nil {
		return fmt.Errorf("resolve remote address: %w", err)
	}

	var local *net.UDPAddr
	if t.localAddr != "" {
		local, err = net.ResolveUDPAddr("udp4", t.localAddr)
		if err != nil {
			return fmt.Errorf("resolve local address: %w", err)
		}
	}

	conn, err := net.ListenUDP("udp4", local)
	if err != nil {
		return fmt.Errorf("listen UDP: %w", err)
	}

	t.remote = remote
	t.conn = conn
	t.closed = false
	return nil
}

// Close releases the socket. Closing twice is a no-op.
func (t *UDPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil || t.closed {
		return nil
	}

	t.closed = true
	return t.conn.Close()
}

func (t *UDPTransport) LocalAddr() net.Addr {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.conn == nil {
		return nil
	}
	return t.conn.LocalAddr()
}

// Send writes one datagram to the device.
func (t *UDPTransport) Send(ctx context.Context, data []byte) error {
	t.mu.RLock()
	conn, remote, closed := t.conn, t.remote, t.closed
	writeTimeout := t.writeTimeout
	t.mu.RUnlock()

	if conn == nil || closed {
		return ErrNotOpen
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeTimeout)
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	n, err := conn.WriteToUDP(data, remote)
	if err != nil {
		return fmt.Errorf("write UDP: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("partial write: %d of %d bytes", n, len(data))
	}

	return nil
}

// Receive reads the next datagram sent by the device. It returns when the
// context deadline (or the default read timeout) passes or the context is
// cancelled.
func (t *UDPTransport) Receive(ctx context.Context) ([]byte, error) {
	t.mu.RLock()
	conn, remote, closed := t.conn, t.remote, t.closed
	readTimeout := t.readTimeout
	t.mu.RUnlock()

	if conn == nil || closed {
		return nil, ErrNotOpen
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(readTimeout)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	// unblock the read on cancellation
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, MaxDatagramSize)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		if remote != nil && !sameEndpoint(addr, remote) {
			continue
		}
		out := make([]byte, n)
		copy(out, buf[:n])
		return out, nil
	}
}

func (t *UDPTransport) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

func sameEndpoint(a, b *net.UDPAddr) bool {
	if a.Port != b.Port {
		return false
	}
	// an unspecified remote accepts any host on the port
	return b.IP == nil || b.IP.IsUnspecified() || a.IP.Equal(b.IP)
}
