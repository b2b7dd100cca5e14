package zkudp

import (
	"context"
	"time"
)

// GetAttendances returns the whole attendance log.
func (zk *ZK) GetAttendances(ctx context.Context) ([]Attendance, error) {
	buf, err := zk.readWithBuffer(ctx, CMD_ATTLOG_RRQ, nil)
	if err != nil {
		return nil, err
	}
	return decodeAttendances(buf, zk.loc), nil
}

// GetAttendancesBetween returns the records strictly after from and strictly
// before to. The device has no server-side filter, so the full log is read.
func (zk *ZK) GetAttendancesBetween(ctx context.Context, from, to time.Time) ([]Attendance, error) {
	all, err := zk.GetAttendances(ctx)
	if err != nil {
		return nil, err
	}
	return filterAttendances(all, from, to), nil
}

func filterAttendances(records []Attendance, from, to time.Time) []Attendance {
	out := make([]Attendance, 0, len(records))
	for _, a := range records {
		if a.AttendedAt.After(from) && a.AttendedAt.Before(to) {
			out = append(out, a)
		}
	}
	return out
}

func (zk *ZK) ClearAttendance(ctx context.Context) error {
	_, err := zk.exec(ctx, CMD_CLEAR_ATTLOG, nil)
	return err
}
