package zkudp

import (
	"context"
	"fmt"
)

// readWithBuffer sends a read command and returns the logical buffer it
// yields, whether the device answers with a single ACK_OK or with
// PREPARE_DATA followed by data datagrams.
func (zk *ZK) readWithBuffer(ctx context.Context, command uint16, payload []byte) ([]byte, error) {
	res, err := zk.request(ctx, command, payload)
	if err != nil {
		return nil, err
	}
	return zk.readBulk(ctx, command, res)
}

// readBulk collects the data announced by first.
//
// A plain ACK_OK is a single chunk; its first 12 bytes (header plus a size
// word) are dropped. After PREPARE_DATA the device sends follow-up datagrams
// without further commands: the first loses 12 bytes, the rest lose their
// 8 byte header, and any datagram shorter or longer than MaxChunkSize is the
// last one.
func (zk *ZK) readBulk(ctx context.Context, command uint16, first *CommandReply) ([]byte, error) {
	switch first.Code {
	case CMD_ACK_OK:
		// payload already has the 8 byte header removed
		if len(first.Payload) < firstChunkHeaderSize-headerSize {
			return []byte{}, nil
		}
		return first.Payload[firstChunkHeaderSize-headerSize:], nil
	case CMD_PREPARE_DATA:
	default:
		return nil, &ReplyError{Command: command, Reply: first}
	}

	var buf []byte
	for chunk := 0; ; chunk++ {
		readCtx, cancel := context.WithTimeout(ctx, zk.opts.timeout)
		data, err := zk.receive(readCtx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("bulk chunk %d: %w", chunk, err)
		}
		zk.metrics.BulkChunks.Inc()

		skip := headerSize
		if chunk == 0 {
			skip = firstChunkHeaderSize
		}
		if len(data) < skip {
			return nil, fmt.Errorf("bulk chunk %d: %w: %d bytes", chunk, ErrShortPacket, len(data))
		}
		buf = append(buf, data[skip:]...)

		if len(data) != MaxChunkSize {
			break
		}
	}

	zk.Log.Debugf("[%s] bulk read for cmd=%d: %d bytes", zk.host, command, len(buf))
	return buf, nil
}
