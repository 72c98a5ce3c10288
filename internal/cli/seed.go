package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajoker/ifm-backend/internal/database"
)

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "seed",
		Short:        "Insert demo users and ideas",
		Long:         "Migrates the schema, then inserts the demo accounts and ideas. Existing rows are left alone.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}

			db, err := database.Initialize(cfg.Database)
			if err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}
			defer database.Close(db)

			if err := database.RunMigrations(db); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			seedCfg := cfg.Seed
			seedCfg.Enabled = true
			database.SeedInitialData(db, seedCfg)
			return nil
		},
	}
}
