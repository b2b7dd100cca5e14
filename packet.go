package zkudp

import (
	"encoding/binary"
	"fmt"
)

const headerSize = 8

// Packet is one datagram: [command][checksum][session][reply no] + payload,
// every header field a little-endian u16.
type Packet struct {
	Command   uint16
	Checksum  uint16
	SessionID uint16
	ReplyNo   uint16
	Payload   []byte
}

// checksumInput lays the fields out as [command][session][reply no][payload].
// The checksum field is not part of its own input.
func checksumInput(command, sessionID, replyNo uint16, payload []byte) []byte {
	buf := make([]byte, 6, 6+len(payload))
	binary.LittleEndian.PutUint16(buf[0:], command)
	binary.LittleEndian.PutUint16(buf[2:], sessionID)
	binary.LittleEndian.PutUint16(buf[4:], replyNo)
	return append(buf, payload...)
}

// EncodePacket builds the wire form of a command.
func EncodePacket(command, sessionID, replyNo uint16, payload []byte) []byte {
	checksum := Checksum(checksumInput(command, sessionID, replyNo, payload))

	buf := make([]byte, headerSize, headerSize+len(payload))
	binary.LittleEndian.PutUint16(buf[0:], command)
	binary.LittleEndian.PutUint16(buf[2:], checksum)
	binary.LittleEndian.PutUint16(buf[4:], sessionID)
	binary.LittleEndian.PutUint16(buf[6:], replyNo)
	return append(buf, payload...)
}

// ParsePacket decodes a received datagram. The payload aliases data.
func ParsePacket(data []byte) (*Packet, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(data))
	}
	return &Packet{
		Command:   binary.LittleEndian.Uint16(data[0:]),
		Checksum:  binary.LittleEndian.Uint16(data[2:]),
		SessionID: binary.LittleEndian.Uint16(data[4:]),
		ReplyNo:   binary.LittleEndian.Uint16(data[6:]),
		Payload:   data[headerSize:],
	}, nil
}

func (p *Packet) reply() *CommandReply {
	return &CommandReply{
		Code:      ReplyCode(p.Command),
		SessionID: p.SessionID,
		ReplyID:   p.ReplyNo,
		Payload:   p.Payload,
	}
}
