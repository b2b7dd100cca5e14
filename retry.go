package zkudp

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
)

// request sends an idempotent read command with a per-attempt timeout and
// resends it after a timeout, up to the configured retry count. Any other
// failure is returned at once.
func (zk *ZK) request(ctx context.Context, command uint16, payload []byte) (*CommandReply, error) {
	var reply *CommandReply

	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, zk.opts.timeout)
		defer cancel()

		res, err := zk.SendCommand(attemptCtx, command, payload)
		if err != nil {
			if IsTimeout(err) && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}
		reply = res
		return nil
	}

	notify := func(err error, wait time.Duration) {
		zk.metrics.Retries.Inc()
		zk.Log.Debugf("[%s] cmd=%d: %v, retrying in %s", zk.host, command, err, wait)
	}

	if err := backoff.RetryNotify(op, zk.retryPolicy(ctx), notify); err != nil {
		return nil, err
	}
	return reply, nil
}

func (zk *ZK) retryPolicy(ctx context.Context) backoff.BackOff {
	if zk.opts.retries <= 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = zk.opts.retryDelay
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(zk.opts.retries)), ctx)
}

// query is request plus the ACK_OK check.
func (zk *ZK) query(ctx context.Context, command uint16, payload []byte) (*CommandReply, error) {
	res, err := zk.request(ctx, command, payload)
	if err != nil {
		return nil, err
	}
	return res, expectAck(command, res)
}
