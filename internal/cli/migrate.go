package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javajoker/ifm-backend/internal/database"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create or update the database schema",
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

			logrus.Info("Migrations complete")
			return nil
		},
	}
}
