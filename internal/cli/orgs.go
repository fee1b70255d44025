package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcentra/console/pkg/model"
)

func newOrgsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orgs",
		Short: "List and switch organizations",
	}
	cmd.AddCommand(
		newOrgsListCommand(a),
		newOrgsCreateCommand(a),
		newOrgsSwitchCommand(a),
		newOrgsCurrentCommand(a),
	)
	return cmd
}

func newOrgsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organizations (* marks the current one)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			resp, err := a.apis.Organization.ListOrganizations(cmd.Context())
			if err != nil {
				return err
			}
			current := a.store.CurrentOrganization()

			tw := newTable(a.out)
			fmt.Fprintln(tw, "\tID\tNAME\tPLAN")
			for _, o := range resp.Organizations {
				mark := ""
				if o.ID == current {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, o.ID, o.Name, o.Plan)
			}
			return tw.Flush()
		},
	}
}

func newOrgsCreateCommand(a *app) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			org, err := a.apis.Organization.CreateOrganization(cmd.Context(), model.CreateOrganizationRequest{
				Name:        args[0],
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s\t%s\n", org.ID, org.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "description of the organization")
	return cmd
}

func newOrgsSwitchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <org-id>",
		Short: "Select the organization used by later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			org, err := a.apis.Organization.GetOrganization(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.store.SetCurrentOrganization(cmd.Context(), org.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Switched to %s\n", org.Name)
			return nil
		},
	}
}

func newOrgsCurrentCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the selected organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := a.store.CurrentOrganization()
			if id == "" {
				fmt.Fprintln(a.out, "No organization selected")
				return nil
			}
			if !a.store.Snapshot().LoggedIn() {
				fmt.Fprintln(a.out, id)
				return nil
			}
			org, err := a.apis.Organization.GetOrganization(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s\t%s\n", org.ID, org.Name)
			return nil
		},
	}
}
