package zkudp

import (
	"bytes"
	"encoding/hex"
	"time"

	binarypack "github.com/canhlinh/go-binary-pack"
	"golang.org/x/text/encoding"
)

func LoadLocation(timezone string) *time.Location {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Local
	}

	return location
}

func newBP() *binarypack.BinaryPack {
	return &binarypack.BinaryPack{}
}

// Checksum is the device's 16 bit one's complement sum over little-endian
// words. An odd trailing byte is added as is.
func Checksum(p []byte) uint16 {
	checksum := 0
	for len(p) > 1 {
		checksum += int(p[0]) | int(p[1])<<8
		p = p[2:]
		if checksum > USHRT_MAX {
			checksum -= USHRT_MAX
		}
	}

	if len(p) > 0 {
		checksum += int(p[0])
	}

	for checksum > USHRT_MAX {
		checksum -= USHRT_MAX
	}

	checksum = ^checksum
	for checksum < 0 {
		checksum += USHRT_MAX
	}

	return uint16(checksum)
}

// MakeCommKey derives the CMD_AUTH payload from the communication key and the
// session id handed out by CMD_CONNECT.
func MakeCommKey(key uint32, sessionID uint16, ticks uint8) []byte {
	var k uint32
	// bit reversal
	for i := 31; i >= 0 && key != 0; i-- {
		k |= (key & 1) << uint(i)
		key >>= 1
	}
	k += uint32(sessionID)
	k ^= 0x4f534b5a // "ZKSO"
	k = (k&0xffff)<<16 | k>>16

	t := uint32(ticks)
	k = (k & 0xFF00FFFF) ^ (t | t<<8 | t<<16 | t<<24)

	return []byte{byte(k), byte(k >> 8), byte(k >> 16), byte(k >> 24)}
}

// EncodeTime packs t into the device's 32 bit timestamp. Years are stored
// modulo 100 from 2000 and every month is 31 days long.
func EncodeTime(t time.Time) uint32 {
	d := ((t.Year()%100)*12*31+(int(t.Month())-1)*31+t.Day()-1)*(24*60*60) +
		(t.Hour()*60+t.Minute())*60 + t.Second()
	return uint32(d)
}

// DecodeTime is the inverse of EncodeTime.
func DecodeTime(v uint32, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t := int(v)
	second := t % 60
	t /= 60
	minute := t % 60
	t /= 60
	hour := t % 24
	t /= 24
	day := t%31 + 1
	t /= 31
	month := t%12 + 1
	t /= 12
	year := t + 2000

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
}

// decodeTimeHex reads the six byte y/m/d/h/m/s form used by realtime events.
func decodeTimeHex(b []byte, loc *time.Location) time.Time {
	if len(b) < 6 {
		return time.Time{}
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(int(b[0])+2000, time.Month(b[1]), int(b[2]), int(b[3]), int(b[4]), int(b[5]), 0, loc)
}

// nullTerminated returns b up to the first NUL.
func nullTerminated(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// clip keeps at most n bytes of s so fixed width fields never overflow.
func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func decodeName(b []byte, charset encoding.Encoding) string {
	s := nullTerminated(b)
	if charset == nil {
		return s
	}
	out, err := charset.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

func encodeName(s string, charset encoding.Encoding) string {
	if charset == nil {
		return s
	}
	out, err := charset.NewEncoder().String(s)
	if err != nil {
		return s
	}
	return out
}

func hexString(b []byte) string {
	return hex.EncodeToString(b)
}
