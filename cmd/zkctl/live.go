package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/siwa2904/zkudp"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Stream attendance events until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			f := formatter()
			logger.Info().Str("host", zk.Host()).Msg("waiting for events, press Ctrl+C to stop")
			err := zk.LiveCapture(ctx, func(e zkudp.LiveEvent) {
				if f.IsJSON() {
					if err := f.PrintJSON(e); err != nil {
						logger.Error().Err(err).Msg("print event")
					}
					return
				}
				logger.Info().
					Str("user", e.UserID).
					Stringer("verify", e.VerifyType).
					Stringer("state", e.State).
					Time("at", e.AttendedAt).
					Msg("attendance")
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	},
}
