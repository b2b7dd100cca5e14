package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/siwa2904/zkudp"
)

var (
	attFrom  string
	attTo    string
	attClear bool
)

const dateLayout = "2006-01-02 15:04:05"

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Read the attendance log",
	Long: `Attendance downloads the attendance log. --from and --to limit the
output to records strictly between the two times ("2006-01-02 15:04:05",
device time zone).`,
	RunE: runAttendance,
}

func init() {
	attendanceCmd.Flags().StringVar(&attFrom, "from", "", "only records after this time")
	attendanceCmd.Flags().StringVar(&attTo, "to", "", "only records before this time")
	attendanceCmd.Flags().BoolVar(&attClear, "clear", false, "clear the log after reading it")
}

func runAttendance(cmd *cobra.Command, args []string) error {
	return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
		var (
			records []zkudp.Attendance
			err     error
		)
		if attFrom != "" || attTo != "" {
			from, to, perr := parseRange(attFrom, attTo, zk.Location())
			if perr != nil {
				return perr
			}
			records, err = zk.GetAttendancesBetween(ctx, from, to)
		} else {
			records, err = zk.GetAttendances(ctx)
		}
		if err != nil {
			return err
		}

		f := formatter()
		if err := f.Print(records, func() {
			rows := make([][]string, 0, len(records))
			for _, a := range records {
				rows = append(rows, []string{
					strconv.Itoa(int(a.Sequence)), a.UserID, a.AttendedAt.Format(dateLayout),
					a.VerifyType.String(), a.State.String(),
				})
			}
			f.PrintTable([]string{"SEQ", "USER ID", "TIME", "VERIFY", "STATE"}, rows)
		}); err != nil {
			return err
		}

		if attClear {
			return zk.ClearAttendance(ctx)
		}
		return nil
	})
}

func parseRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Date(9999, 1, 1, 0, 0, 0, 0, loc)
	var err error
	if from != "" {
		if start, err = time.ParseInLocation(dateLayout, from, loc); err != nil {
			return start, end, fmt.Errorf("parse --from: %w", err)
		}
	}
	if to != "" {
		if end, err = time.ParseInLocation(dateLayout, to, loc); err != nil {
			return start, end, fmt.Errorf("parse --to: %w", err)
		}
	}
	return start, end, nil
}
