package zkudp

import (
	"fmt"
	"time"
)

// ReplyCode is the command code field of a device reply.
type ReplyCode uint16

func (c ReplyCode) String() string {
	if name, ok := replyNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE(%d)", uint16(c))
}

// CommandReply is one decoded reply datagram.
type CommandReply struct {
	Code      ReplyCode
	SessionID uint16
	ReplyID   uint16
	Payload   []byte
}

// IsAck reports whether the device accepted the command.
func (r *CommandReply) IsAck() bool {
	return r != nil && r.Code == CMD_ACK_OK
}

func (r CommandReply) String() string {
	return fmt.Sprintf("Code %s Session %d Reply %d Payload %d bytes", r.Code, r.SessionID, r.ReplyID, len(r.Payload))
}

// Mode is the connection state of a ZK client.
type Mode int

const (
	ModeClosed Mode = iota
	ModeConnected
	ModeAuthenticated
	ModeDisabled
)

func (m Mode) String() string {
	switch m {
	case ModeConnected:
		return "connected"
	case ModeAuthenticated:
		return "authenticated"
	case ModeDisabled:
		return "disabled"
	default:
		return "closed"
	}
}

// User is one 72-byte user record.
type User struct {
	UID      uint16 `json:"uid"`
	Role     uint8  `json:"role"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name"`
	CardNo   uint16 `json:"card_no"`
	UserID   string `json:"user_id"` // external id chosen by the operator
}

type VerifyType uint8

const (
	VerifyPassword VerifyType = iota
	VerifyFingerprint
	VerifyCard
)

func (v VerifyType) String() string {
	switch v {
	case VerifyPassword:
		return "password"
	case VerifyFingerprint:
		return "fingerprint"
	case VerifyCard:
		return "card"
	}
	return fmt.Sprintf("verify(%d)", uint8(v))
}

type AttendanceState uint8

const (
	StateCheckIn AttendanceState = iota
	StateCheckOut
	StateBreakOut
	StateBreakIn
	StateOvertimeIn
	StateOvertimeOut
)

var attendanceStateNames = []string{"check-in", "check-out", "break-out", "break-in", "overtime-in", "overtime-out"}

func (s AttendanceState) String() string {
	if int(s) < len(attendanceStateNames) {
		return attendanceStateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Attendance is one 40-byte attendance log record.
type Attendance struct {
	Sequence   uint16          `json:"sequence"`
	UserID     string          `json:"user_id"`
	VerifyType VerifyType      `json:"verify_type"`
	AttendedAt time.Time       `json:"attended_at"`
	State      AttendanceState `json:"state"`
}

// DeviceStatus holds the counters reported by CMD_GET_FREE_SIZES.
type DeviceStatus struct {
	UserCount       uint32 `json:"user_count"`
	FPCount         uint32 `json:"fp_count"`
	AttLogCount     uint32 `json:"attlog_count"`
	OpLogCount      uint32 `json:"oplog_count"`
	AdminCount      uint32 `json:"admin_count"`
	PasswordCount   uint32 `json:"password_count"`
	FPCapacity      uint32 `json:"fp_capacity"`
	UserCapacity    uint32 `json:"user_capacity"`
	AttLogCapacity  uint32 `json:"attlog_capacity"`
	RemainingFP     uint32 `json:"remaining_fp"`
	RemainingUser   uint32 `json:"remaining_user"`
	RemainingAttLog uint32 `json:"remaining_attlog"`
	FaceCount       uint32 `json:"face_count"`
	FaceCapacity    uint32 `json:"face_capacity"`
}

// FingerprintTemplate is a template to upload into a user's finger slot.
type FingerprintTemplate struct {
	FingerIndex uint8
	Flag        uint8 // FP_FLAG_*
	Data        []byte
}

// LiveEvent is an attendance event pushed by the device after CMD_REG_EVENT.
type LiveEvent struct {
	UserID     string
	VerifyType VerifyType
	State      AttendanceState
	AttendedAt time.Time
}
