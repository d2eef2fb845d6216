package permission

import (
	"github.com/spf13/cobra"

	permissionApp "warden/internal/application/permission"
	"warden/internal/application/permission/dto"
	"warden/internal/interfaces/cli/app"
)

var (
	key         string
	name        string
	description string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission",
		Short: "Manage permissions",
	}

	cmd.AddCommand(newListCommand(), newCreateCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List permissions ordered by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			perms, err := c.Authorizer.ListPermissions(cmd.Context())
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd.OutOrStdout(), dto.ToPermissionDTOList(perms))
		},
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a permission",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			perm, err := c.Authorizer.CreatePermission(cmd.Context(), permissionApp.CreatePermissionCommand{
				Key:         key,
				Name:        name,
				Description: description,
			})
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd.OutOrStdout(), dto.ToPermissionDTO(perm))
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "Permission key, lower snake case (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
