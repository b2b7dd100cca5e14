package zkudp

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

// Option keys understood by CMD_OPTIONS_RRQ / CMD_OPTIONS_WRQ. Keys starting
// with '~' are read-only factory values.
const (
	OptionDeviceName     = "~DeviceName"
	OptionSerialNumber   = "~SerialNumber"
	OptionPlatform       = "~Platform"
	OptionProductTime    = "~ProductTime"
	OptionOEMVendor      = "~OEMVendor"
	OptionFPVersion      = "~ZKFPVersion"
	OptionOnlyRFMachine  = "~IsOnlyRFMachine"
	OptionPIN2Width      = "~PIN2Width"
	OptionShowState      = "~ShowState"
	OptionFaceVersion    = "ZKFaceVersion"
	OptionMAC            = "MAC"
	OptionIPAddress      = "IPAddress"
	OptionUDPPort        = "UDPPort"
	OptionCommKey        = "COMKey"
	OptionDeviceID       = "DeviceID"
	OptionDHCP           = "DHCP"
	OptionDNS            = "DNS"
	OptionProxyEnabled   = "EnableProxyServer"
	OptionProxyIP        = "ProxyServerIP"
	OptionProxyPort      = "ProxyServerPort"
	OptionDaylightSaving = "DaylightSavingTime"
	OptionLanguage       = "Language"
	OptionLockPowerKey   = "LockPowerKey"
	OptionVoiceOn        = "VoiceOn"
	OptionWorkCode       = "WorkCode"
)

// OptionNames maps the names used on the command line to option keys.
var OptionNames = map[string]string{
	"device-name":     OptionDeviceName,
	"serial-number":   OptionSerialNumber,
	"platform":        OptionPlatform,
	"product-time":    OptionProductTime,
	"oem-vendor":      OptionOEMVendor,
	"fp-version":      OptionFPVersion,
	"only-rf":         OptionOnlyRFMachine,
	"pin2-width":      OptionPIN2Width,
	"show-state":      OptionShowState,
	"face-version":    OptionFaceVersion,
	"mac":             OptionMAC,
	"ip-address":      OptionIPAddress,
	"udp-port":        OptionUDPPort,
	"comm-key":        OptionCommKey,
	"device-id":       OptionDeviceID,
	"dhcp":            OptionDHCP,
	"dns":             OptionDNS,
	"proxy-enabled":   OptionProxyEnabled,
	"proxy-ip":        OptionProxyIP,
	"proxy-port":      OptionProxyPort,
	"daylight-saving": OptionDaylightSaving,
	"language":        OptionLanguage,
	"lock-power-key":  OptionLockPowerKey,
	"voice":           OptionVoiceOn,
	"work-code":       OptionWorkCode,
}

// OptionKey resolves a friendly name from OptionNames; anything else is taken
// to be a raw key.
func OptionKey(name string) string {
	if key, ok := OptionNames[name]; ok {
		return key
	}
	return name
}

// SortedOptionNames lists OptionNames alphabetically.
func SortedOptionNames() []string {
	names := make([]string, 0, len(OptionNames))
	for n := range OptionNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GetOption reads one option value.
func (zk *ZK) GetOption(ctx context.Context, name string) (string, error) {
	key := OptionKey(name)
	res, err := zk.query(ctx, CMD_OPTIONS_RRQ, []byte(key))
	if err != nil {
		return "", err
	}
	return DecodeOptionValue(res.Payload), nil
}

// SetOption writes name=value and returns the device's reply code. A reply
// other than ACK_OK is also returned as a *ReplyError.
func (zk *ZK) SetOption(ctx context.Context, name, value string) (ReplyCode, error) {
	key := OptionKey(name)
	res, err := zk.SendCommand(ctx, CMD_OPTIONS_WRQ, []byte(key+"="+value))
	if err != nil {
		return 0, err
	}
	return res.Code, expectAck(CMD_OPTIONS_WRQ, res)
}

func (zk *ZK) SerialNumber(ctx context.Context) (string, error) {
	return zk.GetOption(ctx, OptionSerialNumber)
}

func (zk *ZK) DeviceName(ctx context.Context) (string, error) {
	return zk.GetOption(ctx, OptionDeviceName)
}

func (zk *ZK) Platform(ctx context.Context) (string, error) {
	return zk.GetOption(ctx, OptionPlatform)
}

// FingerprintVersion returns the fingerprint algorithm version (9 or 10).
func (zk *ZK) FingerprintVersion(ctx context.Context) (int, error) {
	v, err := zk.GetOption(ctx, OptionFPVersion)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: fingerprint version %q", ErrMalformedReply, v)
	}
	return n, nil
}

// WorkCode reports whether work codes are enabled.
func (zk *ZK) WorkCode(ctx context.Context) (bool, error) {
	v, err := zk.GetOption(ctx, OptionWorkCode)
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

func (zk *ZK) SetIPAddress(ctx context.Context, ip string) error {
	_, err := zk.SetOption(ctx, OptionIPAddress, ip)
	return err
}

func (zk *ZK) SetCommKey(ctx context.Context, key uint32) error {
	_, err := zk.SetOption(ctx, OptionCommKey, strconv.FormatUint(uint64(key), 10))
	return err
}

func (zk *ZK) SetVoice(ctx context.Context, on bool) error {
	_, err := zk.SetOption(ctx, OptionVoiceOn, onOff(on))
	return err
}

func onOff(on bool) string {
	if on {
		return "1"
	}
	return "0"
}
