package zkudp

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// DeviceStatus reads the capacity and usage counters. ok is false when the
// device returned fewer counters than expected.
func (zk *ZK) DeviceStatus(ctx context.Context) (status DeviceStatus, ok bool, err error) {
	res, err := zk.query(ctx, CMD_GET_FREE_SIZES, nil)
	if err != nil {
		return DeviceStatus{}, false, err
	}
	status, ok = DecodeDeviceStatus(res.Payload)
	if !ok {
		zk.Log.Debugf("[%s] status block has %d bytes, no counters", zk.host, len(res.Payload))
	}
	return status, ok, nil
}

// FirmwareVersion returns the firmware version string.
func (zk *ZK) FirmwareVersion(ctx context.Context) (string, error) {
	res, err := zk.query(ctx, CMD_GET_VERSION, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(nullTerminated(res.Payload)), nil
}

// Restart reboots the device. The session ends with it, so the socket is
// released.
func (zk *ZK) Restart(ctx context.Context) error {
	if _, err := zk.exec(ctx, CMD_RESTART, nil); err != nil {
		return err
	}
	return zk.release()
}

// PowerOff shuts the device down and releases the socket.
func (zk *ZK) PowerOff(ctx context.Context) error {
	if _, err := zk.exec(ctx, CMD_POWEROFF, nil); err != nil {
		return err
	}
	return zk.release()
}

func (zk *ZK) ClearAdmin(ctx context.Context) error {
	_, err := zk.exec(ctx, CMD_CLEAR_ADMIN, nil)
	return err
}

func (zk *ZK) ClearOpLog(ctx context.Context) error {
	_, err := zk.exec(ctx, CMD_CLEAR_OPLOG, nil)
	return err
}

// ClearData wipes users, templates and logs.
func (zk *ZK) ClearData(ctx context.Context) error {
	_, err := zk.exec(ctx, CMD_CLEAR_DATA, nil)
	return err
}

// RefreshData makes the device reload its in-memory index.
func (zk *ZK) RefreshData(ctx context.Context) error {
	_, err := zk.exec(ctx, CMD_REFRESHDATA, nil)
	return err
}

// FreeData releases the device side transfer buffer.
func (zk *ZK) FreeData(ctx context.Context) error {
	_, err := zk.exec(ctx, CMD_FREE_DATA, nil)
	return err
}

// TestVoice plays the voice prompt with the given index.
func (zk *ZK) TestVoice(ctx context.Context, index uint8) error {
	_, err := zk.exec(ctx, CMD_TESTVOICE, []byte{index})
	return err
}

func (zk *ZK) StartVerify(ctx context.Context) error {
	_, err := zk.exec(ctx, CMD_STARTVERIFY, nil)
	return err
}

func (zk *ZK) CancelCapture(ctx context.Context) error {
	_, err := zk.exec(ctx, CMD_CANCELCAPTURE, nil)
	return err
}

// StartEnroll puts the device into on-screen finger enrollment for userID.
func (zk *ZK) StartEnroll(ctx context.Context, userID string, finger uint8) error {
	payload, err := newBP().Pack([]string{"24s", "B", "B"}, []interface{}{clip(userID, 24), int(finger), 1})
	if err != nil {
		return fmt.Errorf("pack enroll request: %w", err)
	}
	_, err = zk.exec(ctx, CMD_STARTENROLL, payload)
	return err
}

// State returns the machine state word.
func (zk *ZK) State(ctx context.Context) (uint32, error) {
	res, err := zk.query(ctx, CMD_STATE_RRQ, nil)
	if err != nil {
		return 0, err
	}
	if len(res.Payload) < 4 {
		return 0, fmt.Errorf("%w: state reply is %d bytes", ErrMalformedReply, len(res.Payload))
	}
	return binary.LittleEndian.Uint32(res.Payload), nil
}

// DeviceTime reads the device clock.
func (zk *ZK) DeviceTime(ctx context.Context) (time.Time, error) {
	res, err := zk.query(ctx, CMD_GET_TIME, nil)
	if err != nil {
		return time.Time{}, err
	}
	if len(res.Payload) < 4 {
		return time.Time{}, fmt.Errorf("%w: time reply is %d bytes", ErrMalformedReply, len(res.Payload))
	}
	return DecodeTime(binary.LittleEndian.Uint32(res.Payload), zk.loc), nil
}

// SetDeviceTime sets the device clock to t, expressed in the client's zone.
func (zk *ZK) SetDeviceTime(ctx context.Context, t time.Time) error {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, EncodeTime(t.In(zk.loc)))
	_, err := zk.exec(ctx, CMD_SET_TIME, payload)
	return err
}

// SyncTime sets the device clock to the local clock.
func (zk *ZK) SyncTime(ctx context.Context) error {
	return zk.SetDeviceTime(ctx, time.Now())
}

// RegisterEvents subscribes to the EF_* realtime events in mask. A zero mask
// unsubscribes.
func (zk *ZK) RegisterEvents(ctx context.Context, mask uint32) error {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, mask)
	_, err := zk.exec(ctx, CMD_REG_EVENT, payload)
	return err
}
