package policy

import (
	"github.com/spf13/cobra"

	"warden/internal/interfaces/cli/app"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect and rebuild the casbin policy set",
	}

	cmd.AddCommand(newSyncCommand(), newListCommand())

	return cmd
}

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Rebuild casbin policies from roles, permissions and members",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			return c.PolicySync.SyncToCasbin(cmd.Context())
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the role/permission policies and member groupings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			policies, err := c.Enforcer.GetPolicies()
			if err != nil {
				return err
			}
			groupings, err := c.Enforcer.GetGroupings()
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd.OutOrStdout(), map[string][][]string{
				"policies":  policies,
				"groupings": groupings,
			})
		},
	}
}
