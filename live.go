package zkudp

import (
	"context"
	"encoding/binary"
	"strconv"
	"strings"
)

// LiveCapture subscribes to attendance events and calls fn for each one
// until ctx is done. The subscription is removed before returning. The
// session cannot be used for other commands while capturing.
func (zk *ZK) LiveCapture(ctx context.Context, fn func(LiveEvent)) error {
	if zk.conn == nil {
		return ErrNotConnected
	}

	if zk.disabled {
		if err := zk.EnableDevice(ctx); err != nil {
			return err
		}
	}

	if err := zk.RegisterEvents(ctx, EF_ATTLOG); err != nil {
		return err
	}
	zk.Log.Infof("[%s] start capturing", zk.host)

	defer func() {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), zk.opts.timeout)
		defer cancel()
		if err := zk.RegisterEvents(cctx, 0); err != nil {
			zk.Log.Errorf("[%s] unregister events: %v", zk.host, err)
		}
		zk.Log.Infof("[%s] stopped capturing", zk.host)
	}()

	for {
		data, err := zk.conn.Receive(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			if err = wrapIO("receive event", err); IsTimeout(err) {
				continue
			}
			return err
		}

		p, err := ParsePacket(data)
		if err != nil {
			zk.Log.Debugf("[%s] dropping event datagram: %v", zk.host, err)
			continue
		}
		if p.Command != CMD_REG_EVENT {
			zk.Log.Debugf("[%s] unexpected %s while capturing", zk.host, ReplyCode(p.Command))
			continue
		}

		zk.ackEvent(ctx)

		for _, ev := range zk.decodeLiveEvents(p.Payload) {
			zk.Log.Debug(zk.host, " 打卡记录 ", ev.UserID, " ", ev.AttendedAt)
			fn(ev)
		}
	}
}

func (zk *ZK) ackEvent(ctx context.Context) {
	ack := EncodePacket(CMD_ACK_OK, zk.sessionID, USHRT_MAX-1, nil)
	if err := zk.conn.Send(ctx, ack); err != nil {
		zk.Log.Errorf("[%s] ack event: %v", zk.host, err)
	}
}

// liveEventSize picks the record width for a whole event payload. Firmware
// sends 12, 32, 36 or 52 byte records depending on the user id width and
// work code support, and a datagram may carry several records of one width.
func liveEventSize(n int) int {
	for _, size := range []int{52, 36, 32, 12} {
		if n >= size && n%size == 0 {
			return size
		}
	}
	if n >= 52 {
		return 52
	}
	return 0
}

// decodeLiveEvents splits an event payload into records of one width.
func (zk *ZK) decodeLiveEvents(data []byte) []LiveEvent {
	size := liveEventSize(len(data))
	var format []string
	switch size {
	case 0:
		zk.Log.Debugf("[%s] unknown event size %d", zk.host, len(data))
		return nil
	case 32:
		format = []string{"24s", "B", "B", "6s"}
	case 36:
		format = []string{"24s", "B", "B", "6s", "4s"}
	case 52:
		format = []string{"24s", "B", "B", "6s", "20s"}
	}

	var events []LiveEvent
	for ; len(data) >= size; data = data[size:] {
		var ev LiveEvent
		if size == 12 {
			ev.UserID = strconv.FormatUint(uint64(binary.LittleEndian.Uint32(data[0:4])), 10)
			ev.VerifyType = VerifyType(data[4])
			ev.State = AttendanceState(data[5])
			ev.AttendedAt = decodeTimeHex(data[6:12], zk.loc)
			events = append(events, ev)
			continue
		}

		v, err := newBP().UnPack(format, data[:size])
		if err != nil {
			zk.Log.Errorf("[%s] decode event: %v", zk.host, err)
			return events
		}

		userID, _ := v[0].(string)
		verify, _ := v[1].(int)
		state, _ := v[2].(int)
		timeHex, _ := v[3].(string)

		ev.UserID = strings.TrimRight(userID, "\x00")
		ev.VerifyType = VerifyType(uint8(verify))
		ev.State = AttendanceState(uint8(state))
		ev.AttendedAt = decodeTimeHex([]byte(timeHex), zk.loc)
		events = append(events, ev)
	}
	if len(data) > 0 {
		zk.Log.Debugf("[%s] %d trailing event bytes", zk.host, len(data))
	}
	return events
}
