package zkudp

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrDeviceUnreachable = errors.New("zk: device unreachable")
	ErrShortPacket       = errors.New("zk: short packet")
	ErrMalformedReply    = errors.New("zk: malformed reply")
	ErrUserNotFound      = errors.New("zk: user not found")
	ErrNotConnected      = errors.New("zk: not connected")
	ErrTimeout           = errors.New("zk: timeout")
	ErrIO                = errors.New("zk: socket i/o")
)

// ReplyError is returned when the device answers a command with anything
// other than the expected acknowledgement.
type ReplyError struct {
	Command uint16
	Reply   *CommandReply
}

func (e *ReplyError) Error() string {
	if e.Reply == nil {
		return fmt.Sprintf("zk: command %d rejected", e.Command)
	}
	return fmt.Sprintf("zk: command %d rejected with %s", e.Command, e.Reply.Code)
}

// Is matches any *ReplyError, or one with the same command when the target
// sets it.
func (e *ReplyError) Is(target error) bool {
	t, ok := target.(*ReplyError)
	if !ok {
		return false
	}
	return t.Command == 0 || t.Command == e.Command
}

// IsReplyCode reports whether err is a ReplyError carrying code.
func IsReplyCode(err error, code ReplyCode) bool {
	var re *ReplyError
	if errors.As(err, &re) && re.Reply != nil {
		return re.Reply.Code == code
	}
	return false
}

// IsTimeout reports whether err is a read or write deadline expiry.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// wrapIO classifies a transport error.
func wrapIO(op string, err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}

func expectAck(command uint16, reply *CommandReply) error {
	if reply.IsAck() {
		return nil
	}
	return &ReplyError{Command: command, Reply: reply}
}
