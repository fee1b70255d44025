package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcentra/console/pkg/filter"
	"github.com/arcentra/console/pkg/model"
)

func newUsersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}
	cmd.AddCommand(
		newUsersListCommand(a),
		newUsersInviteCommand(a),
		newUsersUpdateCommand(a),
		newUsersResetPasswordCommand(a),
		newUsersPasswdCommand(a),
	)
	return cmd
}

func newUsersListCommand(a *app) *cobra.Command {
	var (
		page, pageSize int
		f              filter.UserFilter
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			resp, err := a.apis.UserManagement.ListUsers(cmd.Context(), page, pageSize)
			if err != nil {
				return err
			}
			users := filter.Users(resp.Users, f)

			tw := newTable(a.out)
			fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tSTATUS\tINVITATION")
			for _, u := range users {
				status := "active"
				if u.IsEnabled != 1 {
					status = "inactive"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					u.UserID, u.Username, u.Email, orDash(string(u.Role)), status, orDash(string(u.InvitationStatus)))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d of %d users (page %d)\n", len(users), resp.Count, resp.PageNum)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "users per page")
	cmd.Flags().StringVar(&f.Role, "role", "", "filter by role")
	cmd.Flags().StringVar(&f.Status, "status", "", "filter by status (active|inactive)")
	cmd.Flags().StringVar(&f.Search, "search", "", "search username, email and name")
	return cmd
}

func newUsersInviteCommand(a *app) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "invite <email>",
		Short: "Invite a user by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			err := a.apis.UserManagement.InviteUser(cmd.Context(), model.InviteUserRequest{
				Email: args[0],
				Role:  model.UserRole(role),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Invited %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(model.UserRoleUser), "role of the invited user")
	return cmd
}

func newUsersUpdateCommand(a *app) *cobra.Command {
	var (
		username, email, firstName, lastName, phone, role string
		enable, disable                                   bool
	)
	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Update a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if enable && disable {
				return errors.New("--enable and --disable are mutually exclusive")
			}

			flags := cmd.Flags()
			var req model.UpdateUserRequest
			if flags.Changed("username") {
				req.Username = &username
			}
			if flags.Changed("email") {
				req.Email = &email
			}
			if flags.Changed("first-name") {
				req.FirstName = &firstName
			}
			if flags.Changed("last-name") {
				req.LastName = &lastName
			}
			if flags.Changed("phone") {
				req.Phone = &phone
			}
			if flags.Changed("role") {
				r := model.UserRole(role)
				req.Role = &r
			}
			if enable || disable {
				v := 0
				if enable {
					v = 1
				}
				req.IsEnabled = &v
			}

			u, err := a.apis.UserManagement.UpdateUser(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated %s (%s, %s)\n", u.Username, orDash(string(u.Role)), enabledLabel(u.IsEnabled))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&username, "username", "", "new username")
	f.StringVar(&email, "email", "", "new email address")
	f.StringVar(&firstName, "first-name", "", "new first name")
	f.StringVar(&lastName, "last-name", "", "new last name")
	f.StringVar(&phone, "phone", "", "new phone number")
	f.StringVar(&role, "role", "", "new role")
	f.BoolVar(&enable, "enable", false, "enable the user")
	f.BoolVar(&disable, "disable", false, "disable the user")
	return cmd
}

func newUsersResetPasswordCommand(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "reset-password <user-id>",
		Short: "Set a new password for another user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			if err := a.apis.UserManagement.ResetUserPassword(cmd.Context(), args[0], pw); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Password updated")
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password (read from stdin when omitted)")
	return cmd
}

func newUsersPasswdCommand(a *app) *cobra.Command {
	var oldPassword, newPassword string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your own password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.apis.UserManagement.ResetPassword(cmd.Context(), oldPassword, newPassword); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Password updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&oldPassword, "old", "", "current password")
	cmd.Flags().StringVar(&newPassword, "new", "", "new password")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}
