package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/siwa2904/zkudp"
)

var (
	tmplUser     string
	tmplFinger   uint8
	tmplFlag     uint8
	tmplFile     string
	tmplEncoding string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage fingerprint templates",
}

var templateUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a fingerprint template for a user",
	Long: `Upload writes a raw template file to the device. The device is
disabled while the template is transferred and enabled again afterwards,
also when the upload fails.

Example:
  zkctl template upload --user 1024 --finger 6 --file finger.bin --encoding base64`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tmplUser == "" || tmplFile == "" {
			return fmt.Errorf("--user and --file are required")
		}
		if tmplFinger > 9 {
			return fmt.Errorf("finger index must be 0-9")
		}
		enc, err := zkudp.ParseTemplateEncoding(tmplEncoding)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(tmplFile)
		if err != nil {
			return err
		}
		tmpl := zkudp.FingerprintTemplate{
			FingerIndex: tmplFinger,
			Flag:        tmplFlag,
			Data:        data,
		}
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			if err := zk.UploadTemplate(ctx, tmplUser, tmpl, enc); err != nil {
				return err
			}
			logger.Info().Str("user", tmplUser).Uint8("finger", tmplFinger).Int("bytes", len(data)).Msg("template uploaded")
			return nil
		})
	},
}

var templateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which fingers of a user have a template",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tmplUser == "" {
			return fmt.Errorf("--user is required")
		}
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			status, err := zk.FingerprintStatus(ctx, tmplUser)
			if err != nil {
				return err
			}
			fingers := make([]int, 0, len(status))
			for finger := range status {
				fingers = append(fingers, int(finger))
			}
			sort.Ints(fingers)

			f := formatter()
			return f.Print(status, func() {
				rows := make([][]string, 0, len(fingers))
				for _, finger := range fingers {
					rows = append(rows, []string{strconv.Itoa(finger), strconv.FormatBool(status[uint8(finger)])})
				}
				f.PrintTable([]string{"FINGER", "ENROLLED"}, rows)
			})
		})
	},
}

var templateDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Save a user's fingerprint template to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tmplUser == "" || tmplFile == "" {
			return fmt.Errorf("--user and --file are required")
		}
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			data, err := zk.ReadTemplate(ctx, tmplUser, tmplFinger)
			if err != nil {
				return err
			}
			return os.WriteFile(tmplFile, data, 0o600)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{templateUploadCmd, templateStatusCmd, templateDownloadCmd} {
		c.Flags().StringVar(&tmplUser, "user", "", "external user id")
	}
	for _, c := range []*cobra.Command{templateUploadCmd, templateDownloadCmd} {
		c.Flags().Uint8Var(&tmplFinger, "finger", 0, "finger index (0-9)")
		c.Flags().StringVar(&tmplFile, "file", "", "template file")
	}
	templateUploadCmd.Flags().Uint8Var(&tmplFlag, "flag", zkudp.FP_FLAG_VALID, "template flag (0 empty, 1 valid, 3 duress)")
	templateUploadCmd.Flags().StringVar(&tmplEncoding, "encoding", "binary", "payload encoding (binary, null-terminated, base64, base64-null-terminated)")

	templateCmd.AddCommand(templateUploadCmd)
	templateCmd.AddCommand(templateStatusCmd)
	templateCmd.AddCommand(templateDownloadCmd)
}
