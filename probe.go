package zkudp

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Prober checks that a device answers before a session is opened.
type Prober interface {
	Probe(ctx context.Context, host string) error
}

type ProberFunc func(ctx context.Context, host string) error

func (f ProberFunc) Probe(ctx context.Context, host string) error {
	return f(ctx, host)
}

// PingProber sends a single ICMP echo with the system ping tool.
type PingProber struct{}

func (PingProber) Probe(ctx context.Context, host string) error {
	args := []string{"-c", "1", host}
	if runtime.GOOS == "windows" {
		args = []string{"-n", "1", host}
	}
	if out, err := exec.CommandContext(ctx, "ping", args...).CombinedOutput(); err != nil {
		return fmt.Errorf("ping %s: %w (%s)", host, err, out)
	}
	return nil
}
