package role

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	permissionApp "warden/internal/application/permission"
	"warden/internal/application/permission/dto"
	"warden/internal/domain/permission"
	"warden/internal/interfaces/cli/app"
	"warden/internal/shared/errors"
)

var (
	description string
	defaultPath string
	permissions []string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage roles and their permissions",
		Long:  `Roles are looked up by canonical name: "content_editor" and "content editor" both find "Content Editor".`,
	}

	cmd.AddCommand(
		newListCommand(),
		newShowCommand(),
		newCreateCommand(),
		newSyncCommand(),
		newCheckCommand(),
		newMembersCommand(),
		newDeleteCommand(),
	)

	return cmd
}

func findRole(ctx context.Context, c *app.Container, raw string) (*permission.Role, error) {
	role, err := c.Authorizer.FindByCanonicalName(ctx, raw)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.NewNotFoundError("role not found", raw)
	}
	return role, nil
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List roles with their permission ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			roles, err := c.Authorizer.ListRoles(cmd.Context())
			if err != nil {
				return err
			}
			projected, err := c.Authorizer.ProjectAll(cmd.Context(), roles)
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd.OutOrStdout(), projected)
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <role>",
		Short: "Show a role and its permission keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			role, err := findRole(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			projected, err := c.Authorizer.Project(cmd.Context(), role)
			if err != nil {
				return err
			}
			keys, err := c.Authorizer.PermissionKeys(cmd.Context(), role)
			if err != nil {
				return err
			}

			return app.PrintJSON(cmd.OutOrStdout(), struct {
				*dto.RoleDTO
				DefaultPath    string   `json:"default_path"`
				PermissionKeys []string `json:"permission_keys"`
			}{projected, role.DefaultPath(), keys})
		},
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			createCmd := permissionApp.CreateRoleCommand{
				Name:        args[0],
				Description: description,
				DefaultPath: defaultPath,
			}
			if cmd.Flags().Changed("permissions") {
				createCmd.Permissions = permissions
			}

			role, err := c.Authorizer.CreateRole(cmd.Context(), createCmd)
			if err != nil {
				return err
			}
			projected, err := c.Authorizer.Project(cmd.Context(), role)
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd.OutOrStdout(), projected)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().StringVarP(&defaultPath, "default-path", "p", "", "Landing path for members of the role (required)")
	cmd.Flags().StringSliceVar(&permissions, "permissions", nil, "Permission keys, comma separated")
	_ = cmd.MarkFlagRequired("default-path")

	return cmd
}

func newSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <role>",
		Short: "Replace a role's permissions with the given keys",
		Long:  `Replace a role's permissions with the given keys. Duplicates are ignored; unknown keys are dropped unless authorization.strict_permission_keys is set. An empty list removes every permission.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			role, err := findRole(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}

			keys, err := c.Authorizer.SetRolePermissions(cmd.Context(), role.ID(), permissions)
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd.OutOrStdout(), keys)
		},
	}

	cmd.Flags().StringSliceVar(&permissions, "permissions", nil, `Permission keys, comma separated; "" clears the role (required)`)
	_ = cmd.MarkFlagRequired("permissions")

	return cmd
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <role> <predicate>",
		Short: `Ask a role predicate such as "admin?"`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			role, err := findRole(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}

			ok, err := c.Authorizer.Check(cmd.Context(), role, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
}

func newMembersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "members <role>",
		Short: "List a role's members ordered by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			role, err := findRole(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			members, err := c.Authorizer.ListMembers(cmd.Context(), role.ID())
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd.OutOrStdout(), dto.ToMemberDTOList(members))
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <role>",
		Short: "Delete a role; its members are left without a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			role, err := findRole(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			if err := c.Authorizer.DeleteRole(cmd.Context(), role.ID()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted role %s\n", role.Name())
			return nil
		},
	}
}
