package zkudp

import (
	"time"

	"golang.org/x/text/encoding"
)

type clientOptions struct {
	localAddress string

	connectTimeout time.Duration
	timeout        time.Duration
	retries        int
	retryDelay     time.Duration

	commKey    uint32
	hasCommKey bool

	loc       *time.Location
	chunkSize int
	charset   encoding.Encoding

	prober Prober
	logger Logger
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		connectTimeout: 5 * time.Second,
		timeout:        3 * time.Second,
		retries:        2,
		retryDelay:     200 * time.Millisecond,
		loc:            time.Local,
		chunkSize:      1000,
		prober:         PingProber{},
	}
}

// Option configures a ZK client.
type Option func(*clientOptions)

// WithLocalAddress sets the local UDP address to bind, e.g. ":4370".
func WithLocalAddress(addr string) Option {
	return func(o *clientOptions) {
		o.localAddress = addr
	}
}

// WithConnectTimeout bounds the liveness probe and the CMD_CONNECT round trip.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.connectTimeout = d
	}
}

// WithTimeout sets the per-command reply timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithRetries sets how many times a timed out read command is resent.
func WithRetries(n int) Option {
	return func(o *clientOptions) {
		o.retries = n
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(o *clientOptions) {
		o.retryDelay = d
	}
}

// WithCommKey makes Connect authenticate when the device answers ACK_UNAUTH.
func WithCommKey(key uint32) Option {
	return func(o *clientOptions) {
		o.commKey = key
		o.hasCommKey = true
	}
}

// WithTimezone sets the location device timestamps are interpreted in.
func WithTimezone(timezone string) Option {
	return func(o *clientOptions) {
		o.loc = LoadLocation(timezone)
	}
}

// WithDataChunkSize sets the largest CMD_DATA payload sent during a
// template upload.
func WithDataChunkSize(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithNameCharset sets the encoding of user names stored on the device,
// e.g. charmap.Windows1251.
func WithNameCharset(e encoding.Encoding) Option {
	return func(o *clientOptions) {
		o.charset = e
	}
}

// WithProber replaces the liveness probe run before connecting. nil disables it.
func WithProber(p Prober) Option {
	return func(o *clientOptions) {
		o.prober = p
	}
}

func WithLogger(l Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}
