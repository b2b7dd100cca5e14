package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/siwa2904/zkudp"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Control the device",
}

// simpleDeviceCmd builds a subcommand that runs one device operation.
func simpleDeviceCmd(use, short string, op func(*zkudp.ZK, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
				return op(zk, ctx)
			})
		},
	}
}

var deviceVoiceCmd = &cobra.Command{
	Use:   "voice <index>",
	Short: "Play a voice prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return fmt.Errorf("parse voice index: %w", err)
		}
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			return zk.TestVoice(ctx, uint8(index))
		})
	},
}

var deviceStateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the machine state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			state, err := zk.State(ctx)
			if err != nil {
				return err
			}
			info := map[string]interface{}{
				"State":   state,
				"Session": zk.SessionID(),
				"Mode":    zk.Mode().String(),
			}
			f := formatter()
			return f.Print(info, func() {
				f.PrintKeyValue(info, []string{"State", "Session", "Mode"})
			})
		})
	},
}

func init() {
	deviceCmd.AddCommand(simpleDeviceCmd("enable", "Enable the keypad and sensors", (*zkudp.ZK).EnableDevice))
	deviceCmd.AddCommand(simpleDeviceCmd("disable", "Disable the keypad and sensors", (*zkudp.ZK).DisableDevice))
	deviceCmd.AddCommand(simpleDeviceCmd("restart", "Restart the device", (*zkudp.ZK).Restart))
	deviceCmd.AddCommand(simpleDeviceCmd("poweroff", "Power the device off", (*zkudp.ZK).PowerOff))
	deviceCmd.AddCommand(simpleDeviceCmd("refresh", "Refresh device data", (*zkudp.ZK).RefreshData))
	deviceCmd.AddCommand(simpleDeviceCmd("clear-admin", "Remove administrator privileges", (*zkudp.ZK).ClearAdmin))
	deviceCmd.AddCommand(deviceVoiceCmd)
	deviceCmd.AddCommand(deviceStateCmd)
}
