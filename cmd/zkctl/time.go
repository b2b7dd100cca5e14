package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/siwa2904/zkudp"
)

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Read or set the device clock",
}

var timeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the device clock and its drift from this host",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			t, err := zk.DeviceTime(ctx)
			if err != nil {
				return err
			}
			drift := time.Since(t).Round(time.Second)
			info := map[string]interface{}{
				"Device Time": t.Format(dateLayout),
				"Drift":       drift.String(),
			}
			f := formatter()
			return f.Print(info, func() {
				f.PrintKeyValue(info, []string{"Device Time", "Drift"})
			})
		})
	},
}

var timeSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Set the device clock to the time of this host",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			if err := zk.SyncTime(ctx); err != nil {
				return err
			}
			logger.Info().Str("host", zk.Host()).Msg("clock synchronised")
			return nil
		})
	},
}

func init() {
	timeCmd.AddCommand(timeGetCmd)
	timeCmd.AddCommand(timeSyncCmd)
}
