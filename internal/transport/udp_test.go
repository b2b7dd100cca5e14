package transport

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoDevice answers every datagram with its reverse.
func echoDevice(t *testing.T) *net.UDPConn {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 2048)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			out := make([]byte, n)
			for i := 0; i < n; i++ {
				out[i] = buf[n-1-i]
			}
			conn.WriteToUDP(out, addr)
		}
	}()
	return conn
}

func TestUDPTransportRoundTrip(t *testing.T) {
	dev := echoDevice(t)

	tr := NewUDPTransport("127.0.0.1:0", dev.LocalAddr().String())
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	require.NotNil(t, tr.LocalAddr())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, tr.Send(ctx, []byte{1, 2, 3}))
	got, err := tr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 2, 1}, got)
}

func TestUDPTransportReceiveTimeout(t *testing.T) {
	dev := echoDevice(t)

	tr := NewUDPTransport("127.0.0.1:0", dev.LocalAddr().String())
	tr.SetReadTimeout(50 * time.Millisecond)
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	_, err := tr.Receive(context.Background())
	var ne net.Error
	require.True(t, errors.As(err, &ne))
	assert.True(t, ne.Timeout())
}

func TestUDPTransportReceiveCancel(t *testing.T) {
	dev := echoDevice(t)

	tr := NewUDPTransport("127.0.0.1:0", dev.LocalAddr().String())
	tr.SetReadTimeout(5 * time.Second)
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	_, err := tr.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestUDPTransportDropsOtherSenders(t *testing.T) {
	dev := echoDevice(t)

	tr := NewUDPTransport("127.0.0.1:0", dev.LocalAddr().String())
	tr.SetReadTimeout(100 * time.Millisecond)
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	stranger, err := net.DialUDP("udp4", nil, tr.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer stranger.Close()
	_, err = stranger.Write([]byte("noise"))
	require.NoError(t, err)

	_, err = tr.Receive(context.Background())
	assert.Error(t, err)
}

func TestUDPTransportClose(t *testing.T) {
	tr := NewUDPTransport("127.0.0.1:0", "127.0.0.1:4370")

	assert.ErrorIs(t, tr.Send(context.Background(), []byte{1}), ErrNotOpen)

	require.NoError(t, tr.Open(context.Background()))
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.True(t, tr.IsClosed())

	_, err := tr.Receive(context.Background())
	assert.ErrorIs(t, err, ErrNotOpen)
}
