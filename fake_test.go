package zkudp

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSession = 0x1234

// fakeConn plays the device side of a session. handler answers every sent
// packet with zero or more datagrams, which Receive hands out in order. An
// empty queue reads as a timeout.
type fakeConn struct {
	handler func(p *Packet) [][]byte

	queue  [][]byte
	sent   []*Packet
	opened bool
	closed bool
}

func (f *fakeConn) Open(ctx context.Context) error {
	f.opened = true
	return nil
}

func (f *fakeConn) Send(ctx context.Context, data []byte) error {
	p, err := ParsePacket(append([]byte{}, data...))
	if err != nil {
		return err
	}
	f.sent = append(f.sent, p)
	if f.handler != nil {
		f.queue = append(f.queue, f.handler(p)...)
	}
	return nil
}

func (f *fakeConn) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(f.queue) == 0 {
		return nil, context.DeadlineExceeded
	}
	d := f.queue[0]
	f.queue = f.queue[1:]
	return d, nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

// commands lists the command codes sent so far, CMD_CONNECT included.
func (f *fakeConn) commands() []uint16 {
	out := make([]uint16, 0, len(f.sent))
	for _, p := range f.sent {
		out = append(out, p.Command)
	}
	return out
}

func (f *fakeConn) reset() {
	f.sent = nil
}

func reply(code uint16, p *Packet, payload []byte) []byte {
	return EncodePacket(code, testSession, p.ReplyNo, payload)
}

// ackAll acknowledges every command and answers CMD_CONNECT with testSession.
func ackAll(p *Packet) [][]byte {
	return [][]byte{reply(CMD_ACK_OK, p, nil)}
}

// device routes commands to per-command handlers and acks everything else.
type device map[uint16]func(p *Packet) [][]byte

func (d device) handle(p *Packet) [][]byte {
	if h, ok := d[p.Command]; ok {
		return h(p)
	}
	return ackAll(p)
}

func newTestZK(t *testing.T, handler func(p *Packet) [][]byte, opts ...Option) (*ZK, *fakeConn) {
	t.Helper()

	fc := &fakeConn{handler: handler}
	base := []Option{
		WithProber(nil),
		WithRetries(0),
		WithTimeout(100 * time.Millisecond),
		WithTimezone("UTC"),
		WithLogger(NewLogger(zerolog.Nop())),
	}
	zk := NewZK("192.0.2.10", DefaultPort, append(base, opts...)...)
	zk.dial = func() datagramConn { return fc }
	return zk, fc
}

// connectedZK returns a client with an open session and a cleared send log.
func connectedZK(t *testing.T, handler func(p *Packet) [][]byte, opts ...Option) (*ZK, *fakeConn) {
	t.Helper()

	zk, fc := newTestZK(t, handler, opts...)
	require.NoError(t, zk.Connect(context.Background()))
	fc.reset()
	return zk, fc
}
