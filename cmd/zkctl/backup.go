package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/siwa2904/zkudp"
)

var backupOut string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write users, attendance and options to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			b, err := zk.CreateBackup(ctx)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if backupOut != "" && backupOut != "-" {
				file, err := os.Create(backupOut)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if err := b.WriteJSON(w); err != nil {
				return err
			}
			logger.Info().
				Str("id", b.ID).
				Int("users", len(b.Users)).
				Int("attendances", len(b.Attendances)).
				Msg("backup written")
			return nil
		})
	},
}

func init() {
	backupCmd.Flags().StringVarP(&backupOut, "out", "O", "", "output file (default stdout)")
}
