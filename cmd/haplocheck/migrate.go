package main

import (
	"github.com/spf13/cobra"

	"haplocheck/internal/migration"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the report storage schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			runner := migration.NewRunner()
			if err := runner.Run(cmd.Context(), db); err != nil {
				return err
			}
			opts.logger.Info("schema version %s applied", runner.Version())
			return nil
		},
	}
}
