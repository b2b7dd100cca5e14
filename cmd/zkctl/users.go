package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/siwa2904/zkudp"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			users, err := zk.GetUsers(ctx)
			if err != nil {
				return err
			}
			f := formatter()
			return f.Print(users, func() {
				rows := make([][]string, 0, len(users))
				for _, u := range users {
					rows = append(rows, []string{
						strconv.Itoa(int(u.UID)), u.UserID, u.Name,
						strconv.Itoa(int(u.Role)), strconv.Itoa(int(u.CardNo)),
					})
				}
				f.PrintTable([]string{"UID", "USER ID", "NAME", "ROLE", "CARD"}, rows)
			})
		})
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage a single user",
}

var (
	userUID      uint16
	userID       string
	userName     string
	userPassword string
	userRole     uint8
	userCard     uint16
)

var userSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or overwrite a user",
	Long: `Set writes a user record. The record with the same UID is replaced.

Example:
  zkctl user set --uid 12 --user-id 1024 --name "Ivan Petrenko"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if userUID == 0 {
			return fmt.Errorf("--uid is required")
		}
		u := zkudp.User{
			UID:      userUID,
			Role:     userRole,
			Password: userPassword,
			Name:     userName,
			CardNo:   userCard,
			UserID:   userID,
		}
		if u.UserID == "" {
			u.UserID = strconv.Itoa(int(userUID))
		}
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			if err := zk.SetUser(ctx, u); err != nil {
				return err
			}
			return zk.RefreshData(ctx)
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <uid>",
	Short: "Delete a user by UID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return fmt.Errorf("parse uid: %w", err)
		}
		return withClient(cmd.Context(), func(ctx context.Context, zk *zkudp.ZK) error {
			return zk.DeleteUser(ctx, uint16(uid))
		})
	},
}

func init() {
	userSetCmd.Flags().Uint16Var(&userUID, "uid", 0, "device user serial")
	userSetCmd.Flags().StringVar(&userID, "user-id", "", "external user id (default: the uid)")
	userSetCmd.Flags().StringVar(&userName, "name", "", "display name")
	userSetCmd.Flags().StringVar(&userPassword, "password", "", "password")
	userSetCmd.Flags().Uint8Var(&userRole, "role", 0, "role (0 user, 14 admin)")
	userSetCmd.Flags().Uint16Var(&userCard, "card", 0, "card number")

	userCmd.AddCommand(userSetCmd)
	userCmd.AddCommand(userDeleteCmd)
}
