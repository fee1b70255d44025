package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcentra/console/pkg/filter"
	"github.com/arcentra/console/pkg/model"
)

func newRolesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage roles",
	}
	cmd.AddCommand(
		newRolesListCommand(a),
		newRolesGetCommand(a),
		newRolesToggleCommand(a),
		newRolesDeleteCommand(a),
		newRolesPermissionsCommand(a),
	)
	return cmd
}

// resolvePageSize は名前解決のために一度に取得するロール数。
const resolvePageSize = 1000

// resolveRole はロールIDまたは名前からロールを特定する。
func (a *app) resolveRole(ctx context.Context, idOrName string) (model.Role, error) {
	resp, err := a.apis.Role.ListRoles(ctx, 1, resolvePageSize, "")
	if err != nil {
		return model.Role{}, err
	}
	role, ok := filter.FindRole(resp.Roles, idOrName)
	if !ok {
		return model.Role{}, fmt.Errorf("role not found: %s", idOrName)
	}
	return role, nil
}

func newRolesListCommand(a *app) *cobra.Command {
	var (
		page, pageSize int
		f              filter.RoleFilter
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			resp, err := a.apis.Role.ListRoles(cmd.Context(), page, pageSize, "")
			if err != nil {
				return err
			}
			roles := filter.Roles(resp.Roles, f)

			tw := newTable(a.out)
			fmt.Fprintln(tw, "ROLE ID\tNAME\tDISPLAY NAME\tSCOPE\tSTATUS\tBUILTIN")
			for _, r := range roles {
				builtin := "no"
				if r.IsBuiltin == 1 {
					builtin = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.RoleID, r.Name, orDash(r.DisplayName), r.Scope, enabledLabel(r.IsEnabled), builtin)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d of %d roles; scopes: %s\n",
				len(roles), resp.Total, strings.Join(filter.AvailableScopes(resp.Roles), ", "))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "roles per page")
	cmd.Flags().StringVar(&f.Scope, "scope", "", "filter by scope (project|team|org)")
	cmd.Flags().StringVar(&f.Status, "status", "", "filter by status (enabled|disabled)")
	cmd.Flags().StringVar(&f.Search, "search", "", "search name, display name and description")
	return cmd
}

func newRolesGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <role-id|name>",
		Short: "Show a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			found, err := a.resolveRole(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r, err := a.apis.Role.GetRole(cmd.Context(), found.RoleID)
			if err != nil {
				return err
			}

			tw := newTable(a.out)
			fmt.Fprintf(tw, "Role ID:\t%s\n", r.RoleID)
			fmt.Fprintf(tw, "Name:\t%s\n", r.Name)
			fmt.Fprintf(tw, "Display name:\t%s\n", orDash(r.DisplayName))
			fmt.Fprintf(tw, "Description:\t%s\n", orDash(r.Description))
			fmt.Fprintf(tw, "Scope:\t%s\n", r.Scope)
			fmt.Fprintf(tw, "Status:\t%s\n", enabledLabel(r.IsEnabled))
			fmt.Fprintf(tw, "Priority:\t%d\n", r.Priority)
			fmt.Fprintf(tw, "Permissions:\t%s\n", orDash(strings.Join(r.Permissions, ", ")))
			return tw.Flush()
		},
	}
}

func newRolesToggleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <role-id|name>",
		Short: "Enable or disable a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			found, err := a.resolveRole(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r, err := a.apis.Role.ToggleRole(cmd.Context(), found.RoleID)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Role %s is now %s\n", r.Name, enabledLabel(r.IsEnabled))
			return nil
		},
	}
}

func newRolesDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <role-id|name>",
		Short: "Delete a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			found, err := a.resolveRole(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.apis.Role.DeleteRole(cmd.Context(), found.RoleID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted role %s\n", found.Name)
			return nil
		},
	}
}

func newRolesPermissionsCommand(a *app) *cobra.Command {
	var set []string
	cmd := &cobra.Command{
		Use:   "permissions <role-id|name>",
		Short: "Show or replace the permissions of a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			found, err := a.resolveRole(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			perms := set
			if cmd.Flags().Changed("set") {
				if _, err := a.apis.Role.UpdateRolePermissions(cmd.Context(), found.RoleID, set); err != nil {
					return err
				}
			} else {
				if perms, err = a.apis.Role.GetRolePermissions(cmd.Context(), found.RoleID); err != nil {
					return err
				}
			}
			for _, p := range perms {
				fmt.Fprintln(a.out, p)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&set, "set", nil, "replace the permissions (comma separated)")
	return cmd
}
