package zkudp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/siwa2904/zkudp/internal/transport"
)

const (
	DefaultTimezone = "Asia/Shanghai"
)

type datagramConn interface {
	Open(ctx context.Context) error
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// ZK is a session with one terminal. The protocol allows a single outstanding
// command per connection, so a ZK must not be used from several goroutines
// at once.
type ZK struct {
	host string
	port int
	opts *clientOptions

	dial      func() datagramConn
	conn      datagramConn
	sessionID uint16
	replySeq  uint16

	authenticated bool
	disabled      bool

	loc     *time.Location
	metrics *Metrics
	Log     Logger
}

// host 机器IP
// port 端口 一般是 4370
func NewZK(host string, port int, opts ...Option) *ZK {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if Log == nil {
		Log = defaultLogger()
	}
	logger := o.logger
	if logger == nil {
		logger = Log
	}

	zk := &ZK{
		host:    host,
		port:    port,
		opts:    o,
		loc:     o.loc,
		metrics: newMetrics(),
		Log:     logger,
	}
	zk.dial = func() datagramConn {
		t := transport.NewUDPTransport(o.localAddress, net.JoinHostPort(host, strconv.Itoa(port)))
		t.SetReadTimeout(o.timeout)
		t.SetWriteTimeout(o.timeout)
		return t
	}
	return zk
}

func (zk *ZK) Host() string {
	return zk.host
}

func (zk *ZK) SessionID() uint16 {
	return zk.sessionID
}

func (zk *ZK) Metrics() *Metrics {
	return zk.metrics
}

// Location is the time zone device timestamps are decoded in.
func (zk *ZK) Location() *time.Location {
	return zk.loc
}

func (zk *ZK) Mode() Mode {
	switch {
	case zk.conn == nil:
		return ModeClosed
	case zk.disabled:
		return ModeDisabled
	case zk.authenticated:
		return ModeAuthenticated
	default:
		return ModeConnected
	}
}

// Connect probes the device, opens the socket and starts a session. When the
// device requires a communication key and one was configured with
// WithCommKey, the session is authenticated as well.
func (zk *ZK) Connect(ctx context.Context) error {
	if zk.conn != nil {
		zk.Log.Debugf("[%s] already connected", zk.host)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, zk.opts.connectTimeout)
	defer cancel()

	if zk.opts.prober != nil {
		if err := zk.opts.prober.Probe(ctx, zk.host); err != nil {
			return fmt.Errorf("%w: %w", ErrDeviceUnreachable, err)
		}
	}

	conn := zk.dial()
	if err := conn.Open(ctx); err != nil {
		return wrapIO("open", err)
	}

	zk.conn = conn
	zk.sessionID = 0
	zk.replySeq = 0
	zk.authenticated = false
	zk.disabled = false

	res, err := zk.SendCommand(ctx, CMD_CONNECT, nil)
	if err != nil {
		zk.release()
		return err
	}

	zk.sessionID = res.SessionID

	switch res.Code {
	case CMD_ACK_OK:
	case CMD_ACK_UNAUTH:
		if !zk.opts.hasCommKey {
			zk.Log.Infof("[%s] device requires a communication key", zk.host)
			break
		}
		if err := zk.Authenticate(ctx, zk.opts.commKey); err != nil {
			zk.release()
			return err
		}
	default:
		zk.release()
		return &ReplyError{Command: CMD_CONNECT, Reply: res}
	}

	zk.Log.Infof("[%s] connected with session id %d", zk.host, zk.sessionID)
	return nil
}

// Authenticate sends CMD_AUTH with a key derived from key and the session id.
func (zk *ZK) Authenticate(ctx context.Context, key uint32) error {
	res, err := zk.SendCommand(ctx, CMD_AUTH, MakeCommKey(key, zk.sessionID, commKeyTicks))
	if err != nil {
		return err
	}
	if err := expectAck(CMD_AUTH, res); err != nil {
		return err
	}
	zk.authenticated = true
	zk.Log.Debugf("[%s] session %d authenticated", zk.host, zk.sessionID)
	return nil
}

// Disconnect ends the session and releases the socket. The socket is
// released even when CMD_EXIT fails. Disconnecting a closed client is a no-op.
func (zk *ZK) Disconnect(ctx context.Context) error {
	if zk.conn == nil {
		return nil
	}

	_, err := zk.SendCommand(ctx, CMD_EXIT, nil)
	if cerr := zk.release(); err == nil {
		err = cerr
	}
	zk.Log.Infof("[%s] disconnected", zk.host)
	return err
}

func (zk *ZK) release() error {
	if zk.conn == nil {
		return nil
	}
	err := zk.conn.Close()
	zk.conn = nil
	zk.authenticated = false
	zk.disabled = false
	if err != nil {
		return wrapIO("close", err)
	}
	return nil
}

// SendCommand performs one request/reply round trip. The reply is returned
// whatever its code; only transport and framing failures are errors.
// Datagrams whose reply number differs from the one just sent are late
// answers to earlier commands and are dropped.
func (zk *ZK) SendCommand(ctx context.Context, command uint16, payload []byte) (*CommandReply, error) {
	if zk.conn == nil {
		return nil, ErrNotConnected
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, zk.opts.timeout)
		defer cancel()
	}

	replyNo := zk.replySeq
	packet := EncodePacket(command, zk.sessionID, replyNo, payload)
	zk.Log.Debugf("[%s] send cmd=%d session=%d reply=%d raw=%s", zk.host, command, zk.sessionID, replyNo, hexString(packet))

	start := time.Now()
	if err := zk.conn.Send(ctx, packet); err != nil {
		return nil, wrapIO("send", err)
	}
	zk.replySeq++
	zk.metrics.CommandsSent.Inc()
	zk.metrics.BytesSent.Add(int64(len(packet)))

	for {
		data, err := zk.receive(ctx)
		if err != nil {
			return nil, err
		}

		p, err := ParsePacket(data)
		if err != nil {
			return nil, err
		}
		if p.ReplyNo != replyNo {
			zk.metrics.StaleReplies.Inc()
			zk.Log.Debugf("[%s] dropping %s with reply=%d, waiting for reply=%d", zk.host, ReplyCode(p.Command), p.ReplyNo, replyNo)
			continue
		}

		zk.metrics.LastLatency.Store(time.Since(start))
		reply := p.reply()
		zk.metrics.RepliesReceived.Inc()
		zk.Log.Debugf("[%s] reply %s to cmd=%d (%d payload bytes)", zk.host, reply.Code, command, len(reply.Payload))
		return reply, nil
	}
}

// receive reads one raw datagram.
func (zk *ZK) receive(ctx context.Context) ([]byte, error) {
	if zk.conn == nil {
		return nil, ErrNotConnected
	}
	data, err := zk.conn.Receive(ctx)
	if err != nil {
		err = wrapIO("receive", err)
		if IsTimeout(err) {
			zk.metrics.Timeouts.Inc()
		}
		return nil, err
	}
	zk.metrics.BytesReceived.Add(int64(len(data)))
	zk.Log.Debugf("[%s] recv raw=%s", zk.host, hexString(data))
	return data, nil
}

// exec sends a command once and requires an ACK_OK.
func (zk *ZK) exec(ctx context.Context, command uint16, payload []byte) (*CommandReply, error) {
	res, err := zk.SendCommand(ctx, command, payload)
	if err != nil {
		return nil, err
	}
	return res, expectAck(command, res)
}

// EnableDevice enables the connected device
func (zk *ZK) EnableDevice(ctx context.Context) error {
	if _, err := zk.exec(ctx, CMD_ENABLEDEVICE, nil); err != nil {
		return err
	}
	zk.disabled = false
	return nil
}

// DisableDevice disable the connected device
func (zk *ZK) DisableDevice(ctx context.Context) error {
	if _, err := zk.exec(ctx, CMD_DISABLEDEVICE, nil); err != nil {
		return err
	}
	zk.disabled = true
	return nil
}
