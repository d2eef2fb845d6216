package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"warden/internal/infrastructure/database"
	"warden/internal/infrastructure/migration"
	"warden/internal/interfaces/cli/app"
)

var (
	name        string
	steps       int
	scriptsPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations using the configured strategy.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and status of the database.`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create new migration files for every supported dialect.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.Flags().StringVar(&scriptsPath, "dir", "./internal/infrastructure/migration/scripts", "Scripts root directory")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newManager() (*migration.Manager, error) {
	cfg, log, err := app.Bootstrap()
	if err != nil {
		return nil, err
	}
	return migration.NewManager(&cfg.Migration, cfg.Database.Driver, log), nil
}

func gooseManager() (*migration.GooseStrategy, error) {
	manager, err := newManager()
	if err != nil {
		return nil, err
	}
	goose, ok := manager.Goose()
	if !ok {
		database.Close()
		return nil, fmt.Errorf("only supported with goose strategy, configured: %s", manager.GetStrategy().GetName())
	}
	return goose, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	defer database.Close()

	return manager.Migrate(database.Get())
}

func runDown(cmd *cobra.Command, args []string) error {
	goose, err := gooseManager()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := goose.MigrateDown(database.Get(), steps); err != nil {
		return fmt.Errorf("down migration failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s)\n", steps)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	goose, err := gooseManager()
	if err != nil {
		return err
	}
	defer database.Close()

	version, err := goose.GetVersion(database.Get())
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMigration Status:\n")
	fmt.Fprintf(out, "  Strategy:        %s\n", goose.GetName())
	fmt.Fprintf(out, "  Current Version: %d\n", version)

	return goose.Status(database.Get())
}

func runCreate(cmd *cobra.Command, args []string) error {
	_, log, err := app.Bootstrap()
	if err != nil {
		return err
	}
	defer database.Close()

	files, err := migration.NewGenerator(scriptsPath, log).CreateMigration(name)
	if err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	for _, f := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", f)
	}
	return nil
}
