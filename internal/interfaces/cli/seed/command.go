package seed

import (
	"github.com/spf13/cobra"

	"warden/internal/interfaces/cli/app"
)

var file string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Apply the permission catalog",
		Long:  `Create or update the permissions and roles listed in a catalog file. Re-running a catalog is safe.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Catalog file (default: authorization.seed_file)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	c, err := app.NewContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	path := file
	if path == "" {
		path = c.Config.Authorization.SeedFile
	}

	result, err := c.Seeder.Seed(cmd.Context(), path)
	if err != nil {
		return err
	}
	return app.PrintJSON(cmd.OutOrStdout(), result)
}
