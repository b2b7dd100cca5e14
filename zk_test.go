package zkudp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectTakesSessionFromReply(t *testing.T) {
	zk, fc := newTestZK(t, ackAll)

	require.NoError(t, zk.Connect(context.Background()))
	assert.True(t, fc.opened)
	assert.Equal(t, uint16(testSession), zk.SessionID())
	assert.Equal(t, ModeConnected, zk.Mode())

	require.Len(t, fc.sent, 1)
	connect := fc.sent[0]
	assert.Equal(t, uint16(CMD_CONNECT), connect.Command)
	assert.Equal(t, uint16(0), connect.SessionID)
	assert.Equal(t, uint16(0), connect.ReplyNo)
	assert.Empty(t, connect.Payload)
}

func TestReplySequenceIncrements(t *testing.T) {
	zk, fc := connectedZK(t, ackAll)

	for i := 0; i < 3; i++ {
		res, err := zk.SendCommand(context.Background(), CMD_GET_TIME, nil)
		require.NoError(t, err)
		assert.Equal(t, uint16(i+1), res.ReplyID)
	}

	require.Len(t, fc.sent, 3)
	for i, p := range fc.sent {
		assert.Equal(t, uint16(i+1), p.ReplyNo)
		assert.Equal(t, uint16(testSession), p.SessionID)
	}
}

func TestSendCommandDropsMismatchedReply(t *testing.T) {
	zk, _ := connectedZK(t, func(p *Packet) [][]byte {
		return [][]byte{
			EncodePacket(CMD_ACK_ERROR, testSession, p.ReplyNo+7, nil),
			reply(CMD_ACK_OK, p, []byte("ok")),
		}
	})

	res, err := zk.SendCommand(context.Background(), CMD_GET_TIME, nil)
	require.NoError(t, err)
	assert.True(t, res.IsAck())
	assert.Equal(t, []byte("ok"), res.Payload)
	assert.Equal(t, int64(1), zk.Metrics().StaleReplies.Load())
}

func TestSendCommandOnlyMismatchedReplyTimesOut(t *testing.T) {
	zk, _ := connectedZK(t, func(p *Packet) [][]byte {
		return [][]byte{EncodePacket(CMD_ACK_OK, testSession, 999, nil)}
	})

	_, err := zk.SendCommand(context.Background(), CMD_GET_TIME, nil)
	assert.True(t, IsTimeout(err))
}

func TestLateReplyAfterResendIsDropped(t *testing.T) {
	// the answer to the first attempt arrives together with the answer to
	// the resend; the command after it must still get its own reply
	var held []byte
	zk, _ := connectedZK(t, device{
		CMD_OPTIONS_RRQ: func(p *Packet) [][]byte {
			r := reply(CMD_ACK_OK, p, []byte("IPAddress=10.0.0.5\x00"))
			if held == nil {
				held = r
				return nil
			}
			return [][]byte{held, r}
		},
		CMD_GET_VERSION: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_OK, p, []byte("Ver 6.60\x00"))}
		},
	}.handle, WithRetries(1), WithRetryDelay(1))
	ctx := context.Background()

	ip, err := zk.GetOption(ctx, OptionIPAddress)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", ip)

	fw, err := zk.FirmwareVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ver 6.60", fw)
}

func TestConnectAuthenticates(t *testing.T) {
	zk, fc := newTestZK(t, device{
		CMD_CONNECT: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_UNAUTH, p, nil)}
		},
	}.handle, WithCommKey(1234))

	require.NoError(t, zk.Connect(context.Background()))
	assert.Equal(t, ModeAuthenticated, zk.Mode())

	require.Equal(t, []uint16{CMD_CONNECT, CMD_AUTH}, fc.commands())
	assert.Equal(t, MakeCommKey(1234, testSession, commKeyTicks), fc.sent[1].Payload)
	assert.Equal(t, uint16(testSession), fc.sent[1].SessionID)
}

func TestConnectUnauthWithoutKey(t *testing.T) {
	zk, fc := newTestZK(t, device{
		CMD_CONNECT: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_UNAUTH, p, nil)}
		},
	}.handle)

	require.NoError(t, zk.Connect(context.Background()))
	assert.Equal(t, ModeConnected, zk.Mode())
	assert.Equal(t, []uint16{CMD_CONNECT}, fc.commands())
}

func TestConnectAuthRejected(t *testing.T) {
	zk, fc := newTestZK(t, device{
		CMD_CONNECT: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_UNAUTH, p, nil)}
		},
		CMD_AUTH: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_UNAUTH, p, nil)}
		},
	}.handle, WithCommKey(1))

	err := zk.Connect(context.Background())
	assert.True(t, IsReplyCode(err, CMD_ACK_UNAUTH))
	assert.True(t, fc.closed)
	assert.Equal(t, ModeClosed, zk.Mode())
}

func TestConnectRejected(t *testing.T) {
	zk, fc := newTestZK(t, device{
		CMD_CONNECT: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_ERROR, p, nil)}
		},
	}.handle)

	err := zk.Connect(context.Background())
	assert.True(t, IsReplyCode(err, CMD_ACK_ERROR))
	assert.True(t, fc.closed)
}

func TestConnectNoReply(t *testing.T) {
	zk, fc := newTestZK(t, func(p *Packet) [][]byte { return nil })

	err := zk.Connect(context.Background())
	assert.True(t, IsTimeout(err))
	assert.True(t, fc.closed)
}

func TestConnectUnreachable(t *testing.T) {
	probeErr := errors.New("no route")
	zk, fc := newTestZK(t, ackAll, WithProber(ProberFunc(func(ctx context.Context, host string) error {
		assert.Equal(t, "192.0.2.10", host)
		return probeErr
	})))

	err := zk.Connect(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnreachable)
	assert.ErrorIs(t, err, probeErr)
	assert.False(t, fc.opened)
}

func TestDisconnect(t *testing.T) {
	zk, fc := connectedZK(t, ackAll)

	require.NoError(t, zk.Disconnect(context.Background()))
	assert.Equal(t, []uint16{CMD_EXIT}, fc.commands())
	assert.True(t, fc.closed)
	assert.Equal(t, ModeClosed, zk.Mode())

	require.NoError(t, zk.Disconnect(context.Background()))
	assert.Len(t, fc.sent, 1)
}

func TestDisconnectReleasesOnFailure(t *testing.T) {
	zk, fc := connectedZK(t, device{
		CMD_EXIT: func(p *Packet) [][]byte { return nil },
	}.handle)

	err := zk.Disconnect(context.Background())
	assert.True(t, IsTimeout(err))
	assert.True(t, fc.closed)
	assert.Equal(t, ModeClosed, zk.Mode())
}

func TestSendCommandNotConnected(t *testing.T) {
	zk, _ := newTestZK(t, ackAll)

	_, err := zk.SendCommand(context.Background(), CMD_GET_TIME, nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestDisableEnableTracksMode(t *testing.T) {
	zk, fc := connectedZK(t, ackAll)

	require.NoError(t, zk.DisableDevice(context.Background()))
	assert.Equal(t, ModeDisabled, zk.Mode())
	require.NoError(t, zk.EnableDevice(context.Background()))
	assert.Equal(t, ModeConnected, zk.Mode())
	assert.Equal(t, []uint16{CMD_DISABLEDEVICE, CMD_ENABLEDEVICE}, fc.commands())
}

func TestRequestRetriesTimeouts(t *testing.T) {
	attempts := 0
	zk, fc := connectedZK(t, device{
		CMD_GET_TIME: func(p *Packet) [][]byte {
			attempts++
			if attempts < 3 {
				return nil
			}
			return [][]byte{reply(CMD_ACK_OK, p, []byte{1, 0, 0, 0})}
		},
	}.handle, WithRetries(2), WithRetryDelay(1))

	res, err := zk.request(context.Background(), CMD_GET_TIME, nil)
	require.NoError(t, err)
	assert.True(t, res.IsAck())
	assert.Len(t, fc.sent, 3)
	assert.Equal(t, int64(2), zk.Metrics().Retries.Load())
	assert.Equal(t, int64(2), zk.Metrics().Timeouts.Load())
}

func TestRequestGivesUpAfterRetries(t *testing.T) {
	zk, fc := connectedZK(t, device{
		CMD_GET_TIME: func(p *Packet) [][]byte { return nil },
	}.handle, WithRetries(1), WithRetryDelay(1))

	_, err := zk.request(context.Background(), CMD_GET_TIME, nil)
	assert.True(t, IsTimeout(err))
	assert.Len(t, fc.sent, 2)
}

func TestRequestDoesNotRetryRejection(t *testing.T) {
	zk, fc := connectedZK(t, device{
		CMD_OPTIONS_RRQ: func(p *Packet) [][]byte {
			return [][]byte{reply(CMD_ACK_ERROR, p, nil)}
		},
	}.handle, WithRetries(3))

	_, err := zk.query(context.Background(), CMD_OPTIONS_RRQ, []byte("Nope"))
	assert.True(t, IsReplyCode(err, CMD_ACK_ERROR))
	assert.Len(t, fc.sent, 1)
}
