package zkudp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
)

// TemplateEncoding selects how template bytes are put on the wire. Binary is
// the native form; the text forms exist because some firmware expects them.
type TemplateEncoding int

const (
	EncodingBinary TemplateEncoding = iota
	EncodingNullTerminated
	EncodingBase64
	EncodingBase64NullTerminated
)

func (e TemplateEncoding) String() string {
	switch e {
	case EncodingNullTerminated:
		return "null-terminated"
	case EncodingBase64:
		return "base64"
	case EncodingBase64NullTerminated:
		return "base64-null-terminated"
	default:
		return "binary"
	}
}

// ParseTemplateEncoding is the inverse of TemplateEncoding.String.
func ParseTemplateEncoding(s string) (TemplateEncoding, error) {
	for _, e := range []TemplateEncoding{EncodingBinary, EncodingNullTerminated, EncodingBase64, EncodingBase64NullTerminated} {
		if e.String() == s {
			return e, nil
		}
	}
	return EncodingBinary, fmt.Errorf("unknown template encoding %q", s)
}

func (e TemplateEncoding) encode(b []byte) []byte {
	switch e {
	case EncodingNullTerminated:
		return append(append([]byte{}, b...), 0)
	case EncodingBase64:
		return []byte(base64.StdEncoding.EncodeToString(b))
	case EncodingBase64NullTerminated:
		return append([]byte(base64.StdEncoding.EncodeToString(b)), 0)
	default:
		return b
	}
}

// Upload states. The device is in maintenance mode from disabled until
// enabled.
const (
	stateIdle             = "idle"
	stateDisabled         = "disabled"
	stateDataPrepared     = "data_prepared"
	stateDataSent         = "data_sent"
	stateChecksumVerified = "checksum_verified"
	stateTemplateBound    = "template_bound"
	stateDataFreed        = "data_freed"
	stateRefreshed        = "refreshed"
	stateEnabled          = "enabled"
)

const (
	eventDisable  = "disable"
	eventPrepare  = "prepare"
	eventSend     = "send"
	eventChecksum = "checksum"
	eventBind     = "bind"
	eventFree     = "free"
	eventRefresh  = "refresh"
	eventEnable   = "enable"
)

func newUploadFSM(zk *ZK, opID uuid.UUID) *fsm.FSM {
	return fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: eventDisable, Src: []string{stateIdle}, Dst: stateDisabled},
			{Name: eventPrepare, Src: []string{stateDisabled}, Dst: stateDataPrepared},
			{Name: eventSend, Src: []string{stateDataPrepared}, Dst: stateDataSent},
			{Name: eventChecksum, Src: []string{stateDataSent}, Dst: stateChecksumVerified},
			{Name: eventBind, Src: []string{stateChecksumVerified}, Dst: stateTemplateBound},
			{Name: eventFree, Src: []string{stateTemplateBound}, Dst: stateDataFreed},
			{Name: eventRefresh, Src: []string{stateDataFreed}, Dst: stateRefreshed},
			// re-enabling is allowed from anywhere so an aborted upload can
			// always leave maintenance mode
			{Name: eventEnable, Src: []string{
				stateIdle, stateDisabled, stateDataPrepared, stateDataSent,
				stateChecksumVerified, stateTemplateBound, stateDataFreed, stateRefreshed,
			}, Dst: stateEnabled},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				zk.Log.Debugf("[%s] upload %s: %s -> %s", zk.host, opID, e.Src, e.Dst)
			},
		},
	)
}

type uploadStep struct {
	event    string
	command  uint16
	payloads [][]byte
}

// UploadTemplate stores tmpl in the finger slot of the user with the given
// external id. The device is disabled for the duration of the upload and is
// re-enabled afterwards even when a step fails or ctx is cancelled.
func (zk *ZK) UploadTemplate(ctx context.Context, userID string, tmpl FingerprintTemplate, enc TemplateEncoding) error {
	serial, err := zk.resolveUserSerial(ctx, userID)
	if err != nil {
		return err
	}
	return zk.uploadTemplate(ctx, serial, tmpl, enc)
}

func (zk *ZK) uploadTemplate(ctx context.Context, serial uint16, tmpl FingerprintTemplate, enc TemplateEncoding) (err error) {
	data := enc.encode(tmpl.Data)
	if len(data) == 0 || len(data) > USHRT_MAX {
		return fmt.Errorf("template size %d out of range", len(data))
	}

	prepare, err := newBP().Pack([]string{"H", "H"}, []interface{}{len(data), 0})
	if err != nil {
		return fmt.Errorf("pack prepare request: %w", err)
	}
	bind, err := newBP().Pack([]string{"H", "B", "B", "H"}, []interface{}{int(serial), int(tmpl.FingerIndex), int(tmpl.Flag), len(data)})
	if err != nil {
		return fmt.Errorf("pack template binding: %w", err)
	}

	steps := []uploadStep{
		{eventDisable, CMD_DISABLEDEVICE, nil},
		{eventPrepare, CMD_PREPARE_DATA, [][]byte{prepare}},
		{eventSend, CMD_DATA, splitChunks(data, zk.opts.chunkSize)},
		{eventChecksum, CMD_CHECKSUM_BUFFER, nil},
		{eventBind, CMD_TMP_WRITE, [][]byte{bind}},
		{eventFree, CMD_FREE_DATA, nil},
		{eventRefresh, CMD_REFRESHDATA, nil},
	}

	opID := uuid.New()
	machine := newUploadFSM(zk, opID)
	zk.Log.Infof("[%s] upload %s: %d bytes (%s) to user %d finger %d", zk.host, opID, len(data), enc, serial, tmpl.FingerIndex)

	defer func() {
		if eerr := zk.leaveMaintenance(ctx, machine, opID); eerr != nil {
			if err == nil {
				err = eerr
			} else {
				zk.Log.Errorf("[%s] upload %s: re-enable after failure: %v", zk.host, opID, eerr)
			}
		}
	}()

	for _, step := range steps {
		payloads := step.payloads
		if len(payloads) == 0 {
			payloads = [][]byte{nil}
		}
		for _, p := range payloads {
			if _, err := zk.exec(ctx, step.command, p); err != nil {
				return fmt.Errorf("upload template, %s step: %w", step.event, err)
			}
		}
		if step.command == CMD_DISABLEDEVICE {
			zk.disabled = true
		}
		if err := machine.Event(ctx, step.event); err != nil {
			return fmt.Errorf("upload template, %s step: %w", step.event, err)
		}
	}

	zk.Log.Infof("[%s] upload %s: done", zk.host, opID)
	return nil
}

// leaveMaintenance sends CMD_ENABLEDEVICE on a context that survives
// cancellation of the upload.
func (zk *ZK) leaveMaintenance(ctx context.Context, machine *fsm.FSM, opID uuid.UUID) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), zk.opts.timeout)
	defer cancel()

	if _, err := zk.exec(cctx, CMD_ENABLEDEVICE, nil); err != nil {
		return fmt.Errorf("upload template, %s step: %w", eventEnable, err)
	}
	zk.disabled = false
	if err := machine.Event(cctx, eventEnable); err != nil {
		zk.Log.Debugf("[%s] upload %s: %v", zk.host, opID, err)
	}
	return nil
}

func splitChunks(data []byte, size int) [][]byte {
	if size <= 0 || len(data) <= size {
		return [][]byte{data}
	}
	chunks := make([][]byte, 0, (len(data)+size-1)/size)
	for len(data) > size {
		chunks = append(chunks, data[:size])
		data = data[size:]
	}
	return append(chunks, data)
}

// ReadTemplate fetches the template stored in a user's finger slot.
func (zk *ZK) ReadTemplate(ctx context.Context, userID string, finger uint8) ([]byte, error) {
	serial, err := zk.resolveUserSerial(ctx, userID)
	if err != nil {
		return nil, err
	}
	return zk.readTemplate(ctx, serial, finger)
}

func (zk *ZK) readTemplate(ctx context.Context, serial uint16, finger uint8) ([]byte, error) {
	payload, err := newBP().Pack([]string{"H", "B", "B"}, []interface{}{int(serial), int(finger), 0})
	if err != nil {
		return nil, fmt.Errorf("pack template query: %w", err)
	}
	return zk.readWithBuffer(ctx, CMD_USERTEMP_RRQ, payload)
}

// HasTemplate reports whether the finger slot holds a template.
func (zk *ZK) HasTemplate(ctx context.Context, userID string, finger uint8) (bool, error) {
	data, err := zk.ReadTemplate(ctx, userID, finger)
	return templatePresent(data, err)
}

// FingerprintStatus reports template presence for fingers 0-9.
func (zk *ZK) FingerprintStatus(ctx context.Context, userID string) (map[uint8]bool, error) {
	serial, err := zk.resolveUserSerial(ctx, userID)
	if err != nil {
		return nil, err
	}
	status := make(map[uint8]bool, 10)
	for finger := uint8(0); finger < 10; finger++ {
		ok, err := templatePresent(zk.readTemplate(ctx, serial, finger))
		if err != nil {
			return nil, err
		}
		status[finger] = ok
	}
	return status, nil
}

// templatePresent maps a template read to presence. The device answers
// ACK_ERROR for an empty slot; any other failure is returned.
func templatePresent(data []byte, err error) (bool, error) {
	if err == nil {
		return len(data) > 0, nil
	}
	var re *ReplyError
	if errors.As(err, &re) && re.Reply != nil && re.Reply.Code == CMD_ACK_ERROR {
		return false, nil
	}
	return false, err
}
