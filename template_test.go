package zkudp

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusWithUsers is a GET_FREE_SIZES reply payload reporting n users.
func statusWithUsers(n uint32) []byte {
	b := make([]byte, deviceStatusSize)
	binary.LittleEndian.PutUint32(b[16:], n)
	return b
}

// userListDevice serves a user list containing users and acks the rest.
func userListDevice(users ...User) device {
	return device{
		CMD_GET_FREE_SIZES: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_OK, p, statusWithUsers(uint32(len(users))))}
		},
		CMD_USERTEMP_RRQ: func(p *Packet) [][]byte {
			if len(p.Payload) != 0 {
				return [][]byte{reply(CMD_ACK_ERROR, p, nil)}
			}
			body := []byte{0, 0, 0, 0}
			for _, u := range users {
				rec, _ := EncodeUser(u, nil)
				body = append(body, rec...)
			}
			return [][]byte{reply(CMD_ACK_OK, p, body)}
		},
	}
}

var uploadSequence = []uint16{
	CMD_DISABLEDEVICE,
	CMD_PREPARE_DATA,
	CMD_DATA,
	CMD_CHECKSUM_BUFFER,
	CMD_TMP_WRITE,
	CMD_FREE_DATA,
	CMD_REFRESHDATA,
	CMD_ENABLEDEVICE,
}

func TestUploadTemplate(t *testing.T) {
	zk, fc := connectedZK(t, userListDevice(User{UID: 5, UserID: "E-77"}).handle)

	tmpl := FingerprintTemplate{FingerIndex: 6, Flag: FP_FLAG_VALID, Data: bytes.Repeat([]byte{0xA5}, 300)}
	require.NoError(t, zk.UploadTemplate(context.Background(), "E-77", tmpl, EncodingBinary))

	cmds := fc.commands()
	require.Equal(t, []uint16{CMD_GET_FREE_SIZES, CMD_USERTEMP_RRQ}, cmds[:2])
	assert.Equal(t, uploadSequence, cmds[2:])

	sent := fc.sent[2:]
	assert.Equal(t, []byte{0x2C, 0x01, 0, 0}, sent[1].Payload, "prepare announces the length")
	assert.Equal(t, tmpl.Data, sent[2].Payload)
	assert.Empty(t, sent[3].Payload)
	assert.Equal(t, []byte{5, 0, 6, 1, 0x2C, 0x01}, sent[4].Payload, "binding uses the resolved serial")
	assert.Equal(t, ModeConnected, zk.Mode())
}

func TestUploadTemplateChunksData(t *testing.T) {
	zk, fc := connectedZK(t, ackAll, WithDataChunkSize(100))

	data := make([]byte, 250)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, zk.uploadTemplate(context.Background(), 9, FingerprintTemplate{FingerIndex: 1, Flag: 1, Data: data}, EncodingBinary))

	var chunks [][]byte
	for _, p := range fc.sent {
		if p.Command == CMD_DATA {
			chunks = append(chunks, p.Payload)
		}
	}
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)
	assert.Equal(t, data, bytes.Join(chunks, nil))
}

func TestUploadTemplateEncodings(t *testing.T) {
	cases := []struct {
		enc  TemplateEncoding
		want []byte
	}{
		{EncodingBinary, []byte("abc")},
		{EncodingNullTerminated, []byte("abc\x00")},
		{EncodingBase64, []byte("YWJj")},
		{EncodingBase64NullTerminated, []byte("YWJj\x00")},
	}
	for _, tc := range cases {
		t.Run(tc.enc.String(), func(t *testing.T) {
			zk, fc := connectedZK(t, ackAll)
			require.NoError(t, zk.uploadTemplate(context.Background(), 1, FingerprintTemplate{Data: []byte("abc")}, tc.enc))
			assert.Equal(t, tc.want, fc.sent[2].Payload)
			assert.Equal(t, uint16(len(tc.want)), binary.LittleEndian.Uint16(fc.sent[1].Payload))
		})
	}
}

func TestUploadTemplateFailureStillEnables(t *testing.T) {
	zk, fc := connectedZK(t, device{
		CMD_PREPARE_DATA: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_ERROR, p, nil)}
		},
	}.handle)

	err := zk.uploadTemplate(context.Background(), 1, FingerprintTemplate{Data: []byte{1, 2, 3}}, EncodingBinary)
	require.Error(t, err)
	assert.True(t, IsReplyCode(err, CMD_ACK_ERROR))
	assert.Contains(t, err.Error(), "prepare step")

	assert.Equal(t, []uint16{CMD_DISABLEDEVICE, CMD_PREPARE_DATA, CMD_ENABLEDEVICE}, fc.commands())
	assert.Equal(t, ModeConnected, zk.Mode())
}

func TestUploadTemplateCancelledStillEnables(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zk, fc := connectedZK(t, device{
		CMD_DISABLEDEVICE: func(p *Packet) [][]byte {
			cancel()
			return ackAll(p)
		},
	}.handle)

	err := zk.uploadTemplate(ctx, 1, FingerprintTemplate{Data: []byte{1}}, EncodingBinary)
	assert.ErrorIs(t, err, context.Canceled)

	cmds := fc.commands()
	assert.Equal(t, uint16(CMD_ENABLEDEVICE), cmds[len(cmds)-1])
	assert.NotContains(t, cmds, uint16(CMD_TMP_WRITE))
}

func TestUploadTemplateEnableFailure(t *testing.T) {
	zk, _ := connectedZK(t, device{
		CMD_ENABLEDEVICE: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_ERROR, p, nil)}
		},
	}.handle)

	err := zk.uploadTemplate(context.Background(), 1, FingerprintTemplate{Data: []byte{1}}, EncodingBinary)
	assert.True(t, IsReplyCode(err, CMD_ACK_ERROR))
	assert.Contains(t, err.Error(), "enable step")
}

func TestUploadTemplateRejectsEmpty(t *testing.T) {
	zk, fc := connectedZK(t, ackAll)

	err := zk.uploadTemplate(context.Background(), 1, FingerprintTemplate{}, EncodingBinary)
	assert.Error(t, err)
	assert.Empty(t, fc.sent)
}

func TestResolveUserSerial(t *testing.T) {
	zk, _ := connectedZK(t, userListDevice(
		User{UID: 3, UserID: "1001"},
		User{UID: 4, UserID: "badge-7"},
	).handle)
	ctx := context.Background()

	serial, err := zk.resolveUserSerial(ctx, "badge-7")
	require.NoError(t, err)
	assert.Equal(t, uint16(4), serial)

	serial, err = zk.resolveUserSerial(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, uint16(3), serial, "list match wins over the numeric form")

	serial, err = zk.resolveUserSerial(ctx, "42\x00\x00")
	require.NoError(t, err)
	assert.Equal(t, uint16(42), serial)

	_, err = zk.resolveUserSerial(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = zk.resolveUserSerial(ctx, "70000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUploadTemplateUnknownUser(t *testing.T) {
	zk, fc := connectedZK(t, ackAll)

	err := zk.UploadTemplate(context.Background(), "nobody", FingerprintTemplate{Data: []byte{1}}, EncodingBinary)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NotContains(t, fc.commands(), uint16(CMD_DISABLEDEVICE))
}

func TestReadTemplate(t *testing.T) {
	zk, fc := connectedZK(t, device{
		CMD_USERTEMP_RRQ: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_PREPARE_DATA, p, nil), dataChunk(60, firstChunkHeaderSize, 0x7E)}
		},
	}.handle)

	data, err := zk.ReadTemplate(context.Background(), "12", 6)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0x7E}, 48), data)

	last := fc.sent[len(fc.sent)-1]
	assert.Equal(t, uint16(CMD_USERTEMP_RRQ), last.Command)
	assert.Equal(t, []byte{12, 0, 6, 0}, last.Payload)
	assert.NotContains(t, fc.commands(), uint16(CMD_DISABLEDEVICE))
}

func TestFingerprintStatus(t *testing.T) {
	zk, _ := connectedZK(t, device{
		CMD_USERTEMP_RRQ: func(p *Packet) [][]byte {
			if len(p.Payload) == 4 && (p.Payload[2] == 0 || p.Payload[2] == 6) {
				return [][]byte{reply(CMD_ACK_OK, p, []byte{3, 0, 0, 0, 1, 2, 3})}
			}
			return [][]byte{reply(CMD_ACK_ERROR, p, nil)}
		},
	}.handle)

	status, err := zk.FingerprintStatus(context.Background(), "8")
	require.NoError(t, err)
	require.Len(t, status, 10)
	assert.True(t, status[0])
	assert.True(t, status[6])
	assert.False(t, status[1])
	assert.False(t, status[9])

	ok, err := zk.HasTemplate(context.Background(), "8", 6)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReadTemplateSingleReply(t *testing.T) {
	zk, _ := connectedZK(t, device{
		CMD_USERTEMP_RRQ: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_OK, p, []byte{3, 0, 0, 0, 0xA1, 0xA2, 0xA3})}
		},
	}.handle)

	data, err := zk.ReadTemplate(context.Background(), "12", 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xA1, 0xA2, 0xA3}, data, "size word is stripped like a bulk read")
}

func TestHasTemplateEmptyReply(t *testing.T) {
	zk, _ := connectedZK(t, device{
		CMD_USERTEMP_RRQ: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_OK, p, []byte{0, 0, 0, 0})}
		},
	}.handle)

	ok, err := zk.HasTemplate(context.Background(), "12", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTemplatePresenceOtherRepliesFail(t *testing.T) {
	zk, _ := connectedZK(t, device{
		CMD_USERTEMP_RRQ: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_UNAUTH, p, nil)}
		},
	}.handle)

	ok, err := zk.HasTemplate(context.Background(), "8", 0)
	assert.False(t, ok)
	assert.True(t, IsReplyCode(err, CMD_ACK_UNAUTH))

	status, err := zk.FingerprintStatus(context.Background(), "8")
	assert.Nil(t, status)
	assert.True(t, IsReplyCode(err, CMD_ACK_UNAUTH))
}

func TestSplitChunks(t *testing.T) {
	assert.Equal(t, [][]byte{{1, 2}}, splitChunks([]byte{1, 2}, 5))
	assert.Equal(t, [][]byte{{1, 2}, {3}}, splitChunks([]byte{1, 2, 3}, 2))
	assert.Equal(t, [][]byte{{1, 2, 3}}, splitChunks([]byte{1, 2, 3}, 0))
}

func TestParseTemplateEncoding(t *testing.T) {
	for _, e := range []TemplateEncoding{EncodingBinary, EncodingNullTerminated, EncodingBase64, EncodingBase64NullTerminated} {
		got, err := ParseTemplateEncoding(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
	_, err := ParseTemplateEncoding("hex")
	assert.Error(t, err)
}
