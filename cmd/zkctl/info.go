package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/siwa2904/zkudp"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display device information",
	Long: `Info reads identification options, firmware version and the
capacity counters of a device.

Examples:
  zkctl info -H 192.168.1.201
  zkctl info -H 192.168.1.201 -o json`,

	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
		info := make(map[string]interface{})
		order := []string{"Serial Number", "Device Name", "Platform", "Firmware", "FP Version", "MAC", "IP Address"}

		readers := map[string]func(context.Context) (string, error){
			"Serial Number": zk.SerialNumber,
			"Device Name":   zk.DeviceName,
			"Platform":      zk.Platform,
			"Firmware":      zk.FirmwareVersion,
			"FP Version": func(ctx context.Context) (string, error) {
				return zk.GetOption(ctx, zkudp.OptionFPVersion)
			},
			"MAC": func(ctx context.Context) (string, error) {
				return zk.GetOption(ctx, zkudp.OptionMAC)
			},
			"IP Address": func(ctx context.Context) (string, error) {
				return zk.GetOption(ctx, zkudp.OptionIPAddress)
			},
		}
		for _, name := range order {
			v, err := readers[name](ctx)
			if err != nil {
				logger.Debug().Err(err).Str("field", name).Msg("read failed")
				continue
			}
			info[name] = v
		}

		status, ok, err := zk.DeviceStatus(ctx)
		if err != nil {
			return err
		}
		if ok {
			counters := []struct {
				name  string
				value uint32
			}{
				{"Users", status.UserCount},
				{"User Capacity", status.UserCapacity},
				{"Fingerprints", status.FPCount},
				{"FP Capacity", status.FPCapacity},
				{"Attendance Logs", status.AttLogCount},
				{"Log Capacity", status.AttLogCapacity},
				{"Admins", status.AdminCount},
				{"Faces", status.FaceCount},
			}
			for _, c := range counters {
				info[c.name] = c.value
				order = append(order, c.name)
			}
		}

		f := formatter()
		return f.Print(info, func() {
			f.PrintKeyValue(info, order)
		})
	})
}
