package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/AlibekovAA/authd/internal/common/bootstrap"
)

func NewMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  `Apply all pending migrations to the configured SQLite or PostgreSQL store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}

			log, err := bootstrap.NewLogger(cfg)
			if err != nil {
				return oops.Code("LOGGER_INIT_FAILED").Wrap(err)
			}
			defer log.Close()

			if err := bootstrap.Migrate(cmd.Context(), cfg, log); err != nil {
				return oops.Code("MIGRATION_FAILED").With("store", cfg.StoreDriver).Wrap(err)
			}

			cmd.Println("Migrations completed successfully")
			return nil
		},
	}
}
