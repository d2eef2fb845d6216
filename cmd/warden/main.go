package main

import (
	"os"

	"github.com/spf13/cobra"

	"warden/internal/interfaces/cli/app"
	"warden/internal/interfaces/cli/member"
	"warden/internal/interfaces/cli/migrate"
	"warden/internal/interfaces/cli/permission"
	"warden/internal/interfaces/cli/policy"
	"warden/internal/interfaces/cli/role"
	"warden/internal/interfaces/cli/seed"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "warden",
		Short:         "Warden - role and permission administration",
		Long:          `Warden manages roles, their permission sets and member assignments, and answers authorization checks against them.`,
		SilenceUsage: true,
	}

	app.BindFlags(rootCmd)

	rootCmd.AddCommand(
		migrate.NewCommand(),
		seed.NewCommand(),
		permission.NewCommand(),
		role.NewCommand(),
		member.NewCommand(),
		policy.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
