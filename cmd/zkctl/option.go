package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siwa2904/zkudp"
)

var optionCmd = &cobra.Command{
	Use:   "option",
	Short: "Read and write device options",
}

var optionGetCmd = &cobra.Command{
	Use:   "get <name>...",
	Short: "Read options by name or raw key",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			values := make(map[string]interface{}, len(args))
			for _, name := range args {
				v, err := zk.GetOption(ctx, name)
				if err != nil {
					return fmt.Errorf("option %s: %w", name, err)
				}
				values[name] = v
			}
			f := formatter()
			return f.Print(values, func() {
				f.PrintKeyValue(values, args)
			})
		})
	},
}

var optionSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Write an option",
	Long: `Set writes name=value to the device and refreshes its data.

Example:
  zkctl option set voice 0`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			code, err := zk.SetOption(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			logger.Info().Str("option", zkudp.OptionKey(args[0])).Stringer("reply", code).Msg("option written")
			return zk.RefreshData(ctx)
		})
	},
}

var optionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known option names",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := zkudp.SortedOptionNames()
		f := formatter()
		return f.Print(zkudp.OptionNames, func() {
			rows := make([][]string, 0, len(names))
			for _, n := range names {
				rows = append(rows, []string{n, zkudp.OptionNames[n]})
			}
			f.PrintTable([]string{"NAME", "KEY"}, rows)
		})
	},
}

func init() {
	optionCmd.AddCommand(optionGetCmd)
	optionCmd.AddCommand(optionSetCmd)
	optionCmd.AddCommand(optionListCmd)
}
