package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcentra/console/pkg/filter"
)

func newProvidersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Manage identity providers",
	}
	cmd.AddCommand(
		newProvidersListCommand(a),
		newProvidersTypesCommand(a),
		newProvidersToggleCommand(a),
		newProvidersDeleteCommand(a),
	)
	return cmd
}

func newProvidersListCommand(a *app) *cobra.Command {
	var f filter.ProviderFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List identity providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			providers, err := a.apis.Identity.ListIdentityProviders(cmd.Context(), "")
			if err != nil {
				return err
			}

			tw := newTable(a.out)
			fmt.Fprintln(tw, "NAME\tTYPE\tSTATUS\tPRIORITY\tDESCRIPTION")
			for _, p := range filter.Providers(providers, f) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					p.Name, p.ProviderType, enabledLabel(p.IsEnabled), p.Priority, orDash(p.Description))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&f.Type, "type", "", "filter by type (oauth|ldap|oidc|saml)")
	cmd.Flags().StringVar(&f.Status, "status", "", "filter by status (enabled|disabled)")
	cmd.Flags().StringVar(&f.Search, "search", "", "search name and description")
	return cmd
}

func newProvidersTypesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List supported provider types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			types, err := a.apis.Identity.ListProviderTypes(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range types {
				fmt.Fprintln(a.out, t)
			}
			return nil
		},
	}
}

func newProvidersToggleCommand(a *app) *cobra.Command {
	var enabled bool
	cmd := &cobra.Command{
		Use:   "toggle <name>",
		Short: "Enable or disable an identity provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			p, err := a.apis.Identity.ToggleIdentityProvider(cmd.Context(), args[0], enabled)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Provider %s is now %s\n", p.Name, enabledLabel(p.IsEnabled))
			return nil
		},
	}
	cmd.Flags().BoolVar(&enabled, "enabled", true, "desired state (--enabled=false disables)")
	return cmd
}

func newProvidersDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an identity provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.apis.Identity.DeleteIdentityProvider(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted provider %s\n", args[0])
			return nil
		},
	}
}
