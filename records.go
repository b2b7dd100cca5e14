package zkudp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/text/encoding"
)

// User record layout (72 bytes):
//
//	0  uid       u16
//	2  role      u8
//	3  password  8 bytes
//	11 name      24 bytes
//	35 card no   u16
//	40 reserved  4 bytes
//	48 user id   9 bytes
//
// Writers historically stored role as a u16 and then wrote the password from
// offset 3, so the password overlaps role's high byte. The layout is kept
// as devices expect it.
var userRecordFormat = []string{"H", "B", "8s", "24s", "H", "3s", "I", "4s", "9s", "15s"}

// DecodeUser decodes one user record.
func DecodeUser(b []byte, charset encoding.Encoding) (User, error) {
	if len(b) < userRecordSize {
		return User{}, fmt.Errorf("%w: user record is %d bytes, want %d", ErrMalformedReply, len(b), userRecordSize)
	}
	return User{
		UID:      binary.LittleEndian.Uint16(b[0:2]),
		Role:     b[2],
		Password: nullTerminated(b[3:11]),
		Name:     decodeName(b[11:35], charset),
		CardNo:   binary.LittleEndian.Uint16(b[35:37]),
		UserID:   nullTerminated(b[48:57]),
	}, nil
}

// decodeUsers slices buf into user records, ignoring a trailing partial one.
func decodeUsers(buf []byte, charset encoding.Encoding) []User {
	users := make([]User, 0, len(buf)/userRecordSize)
	for len(buf) >= userRecordSize {
		u, _ := DecodeUser(buf[:userRecordSize], charset)
		users = append(users, u)
		buf = buf[userRecordSize:]
	}
	return users
}

// EncodeUser builds the CMD_USER_WRQ record for u.
func EncodeUser(u User, charset encoding.Encoding) ([]byte, error) {
	values := []interface{}{
		int(u.UID),
		int(u.Role),
		clip(u.Password, 8),
		clip(encodeName(u.Name, charset), 24),
		int(u.CardNo),
		"",
		0,
		"",
		clip(u.UserID, 9),
		"",
	}
	buf, err := newBP().Pack(userRecordFormat, values)
	if err != nil {
		return nil, fmt.Errorf("pack user record: %w", err)
	}
	return buf, nil
}

// Attendance record layout (40 bytes):
//
//	0  sequence  u16
//	2  user id   9 bytes, NUL padded
//	11 reserved  15 bytes
//	26 verify    u8
//	27 time      u32, device timestamp
//	31 state     u8
//	32 reserved  8 bytes
//
// The sequence is stored low byte first, the reverse of how it reads in a
// hex dump of the record.
func DecodeAttendance(b []byte, loc *time.Location) (Attendance, error) {
	if len(b) < attendanceRecordSize {
		return Attendance{}, fmt.Errorf("%w: attendance record is %d bytes, want %d", ErrMalformedReply, len(b), attendanceRecordSize)
	}
	return Attendance{
		Sequence:   uint16(b[1])<<8 | uint16(b[0]),
		UserID:     string(bytes.TrimRight(b[2:11], "\x00")),
		VerifyType: VerifyType(b[26]),
		AttendedAt: DecodeTime(binary.LittleEndian.Uint32(b[27:31]), loc),
		State:      AttendanceState(b[31]),
	}, nil
}

func decodeAttendances(buf []byte, loc *time.Location) []Attendance {
	records := make([]Attendance, 0, len(buf)/attendanceRecordSize)
	for len(buf) >= attendanceRecordSize {
		a, _ := DecodeAttendance(buf[:attendanceRecordSize], loc)
		records = append(records, a)
		buf = buf[attendanceRecordSize:]
	}
	return records
}

// DecodeDeviceStatus reads the CMD_GET_FREE_SIZES counters. ok is false when
// the block is too short; devices do not always fill every counter.
func DecodeDeviceStatus(b []byte) (status DeviceStatus, ok bool) {
	if len(b) < deviceStatusSize {
		return DeviceStatus{}, false
	}
	u32 := func(off int) uint32 {
		return binary.LittleEndian.Uint32(b[off : off+4])
	}
	return DeviceStatus{
		UserCount:       u32(16),
		FPCount:         u32(24),
		AttLogCount:     u32(32),
		OpLogCount:      u32(40),
		AdminCount:      u32(48),
		PasswordCount:   u32(52),
		FPCapacity:      u32(56),
		UserCapacity:    u32(60),
		AttLogCapacity:  u32(64),
		RemainingFP:     u32(68),
		RemainingUser:   u32(72),
		RemainingAttLog: u32(76),
		FaceCount:       u32(80),
		FaceCapacity:    u32(88),
	}, true
}

// DecodeOptionValue extracts value from a "key=value\x00..." payload. A
// payload without '=' yields "".
func DecodeOptionValue(b []byte) string {
	i := bytes.IndexByte(b, '=')
	if i < 0 {
		return ""
	}
	return nullTerminated(b[i+1:])
}
