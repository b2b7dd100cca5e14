package zkudp

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// GetUsers returns every user record on the device. The transfer is skipped
// when the device reports no users or no counters at all.
func (zk *ZK) GetUsers(ctx context.Context) ([]User, error) {
	status, ok, err := zk.DeviceStatus(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || status.UserCount == 0 {
		return []User{}, nil
	}

	buf, err := zk.readWithBuffer(ctx, CMD_USERTEMP_RRQ, nil)
	if err != nil {
		return nil, err
	}
	return decodeUsers(buf, zk.opts.charset), nil
}

// FindUser looks a user up by external user id.
func (zk *ZK) FindUser(ctx context.Context, userID string) (*User, error) {
	users, err := zk.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].UserID == userID {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUserNotFound, userID)
}

// SetUser creates or overwrites the user with u.UID.
func (zk *ZK) SetUser(ctx context.Context, u User) error {
	record, err := EncodeUser(u, zk.opts.charset)
	if err != nil {
		return err
	}
	_, err = zk.exec(ctx, CMD_USER_WRQ, record)
	return err
}

func (zk *ZK) DeleteUser(ctx context.Context, uid uint16) error {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, uid)
	_, err := zk.exec(ctx, CMD_DELETE_USER, payload)
	return err
}

// resolveUserSerial maps an external user id to the device's user serial
// (the uid field). Ids missing from the user list are tried as numbers.
func (zk *ZK) resolveUserSerial(ctx context.Context, userID string) (uint16, error) {
	users, err := zk.GetUsers(ctx)
	if err != nil {
		return 0, err
	}
	for _, u := range users {
		if u.UserID == userID {
			return u.UID, nil
		}
	}

	clean := userID
	if i := strings.IndexByte(clean, 0); i >= 0 {
		clean = clean[:i]
	}
	serial, err := strconv.ParseUint(strings.TrimSpace(clean), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUserNotFound, userID)
	}
	return uint16(serial), nil
}
