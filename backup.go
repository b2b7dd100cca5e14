package zkudp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// Backup is a snapshot of everything readable from a device.
type Backup struct {
	ID          string            `json:"id"`
	Host        string            `json:"host"`
	TakenAt     time.Time         `json:"taken_at"`
	Firmware    string            `json:"firmware"`
	Options     map[string]string `json:"options"`
	Status      *DeviceStatus     `json:"status,omitempty"`
	Users       []User            `json:"users"`
	Attendances []Attendance      `json:"attendances"`
}

// CreateBackup reads firmware version, every option in OptionNames, the
// status counters, users and the attendance log. Options the device rejects
// are left out.
func (zk *ZK) CreateBackup(ctx context.Context) (*Backup, error) {
	b := &Backup{
		ID:      uuid.NewString(),
		Host:    zk.host,
		TakenAt: time.Now(),
		Options: make(map[string]string, len(OptionNames)),
	}

	var err error
	if b.Firmware, err = zk.FirmwareVersion(ctx); err != nil {
		return nil, err
	}

	for _, name := range SortedOptionNames() {
		v, err := zk.GetOption(ctx, name)
		if err != nil {
			var re *ReplyError
			if errors.As(err, &re) {
				zk.Log.Debugf("[%s] backup: option %s unavailable", zk.host, name)
				continue
			}
			return nil, err
		}
		b.Options[name] = v
	}

	status, ok, err := zk.DeviceStatus(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		b.Status = &status
	}

	if b.Users, err = zk.GetUsers(ctx); err != nil {
		return nil, err
	}
	if b.Attendances, err = zk.GetAttendances(ctx); err != nil {
		return nil, err
	}

	zk.Log.Infof("[%s] backup %s: %d users, %d attendance records", zk.host, b.ID, len(b.Users), len(b.Attendances))
	return b, nil
}

// WriteJSON writes b as indented JSON.
func (b *Backup) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}
