package member

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	permissionApp "warden/internal/application/permission"
	"warden/internal/application/permission/dto"
	"warden/internal/interfaces/cli/app"
	"warden/internal/shared/errors"
)

var (
	firstName string
	lastName  string
	email     string
	roleName  string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage members and their role",
	}

	cmd.AddCommand(newCreateCommand(), newAssignCommand(), newCanCommand())

	return cmd
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("invalid member id", raw)
	}
	return uint(id), nil
}

// roleID resolves --role to an id; an empty flag means no role.
func roleID(cmd *cobra.Command, c *app.Container) (*uint, error) {
	if roleName == "" {
		return nil, nil
	}
	role, err := c.Authorizer.FindByCanonicalName(cmd.Context(), roleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.NewNotFoundError("role not found", roleName)
	}
	id := role.ID()
	return &id, nil
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			rid, err := roleID(cmd, c)
			if err != nil {
				return err
			}

			m, err := c.Authorizer.CreateMember(cmd.Context(), permissionApp.CreateMemberCommand{
				FirstName: firstName,
				LastName:  lastName,
				Email:     email,
				RoleID:    rid,
			})
			if err != nil {
				return err
			}
			return app.PrintJSON(cmd.OutOrStdout(), dto.ToMemberDTO(m))
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name (required)")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVarP(&roleName, "role", "r", "", "Role name")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAssignCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <member-id>",
		Short: "Move a member to a role; without --role the member is unassigned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			rid, err := roleID(cmd, c)
			if err != nil {
				return err
			}
			return c.Authorizer.AssignMember(cmd.Context(), id, rid)
		},
	}

	cmd.Flags().StringVarP(&roleName, "role", "r", "", "Role name")

	return cmd
}

func newCanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "can <member-id> <permission-key>",
		Short: "Ask whether a member's role grants a permission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			c, err := app.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			ok, err := c.Authorizer.MemberCan(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
}
