package main

import (
	"github.com/spf13/cobra"

	"haplocheck/adapters/api"
	"haplocheck/adapters/excel"
	"haplocheck/adapters/postgres"
	"haplocheck/internal/migration"
	"haplocheck/ports"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := opts.cfg
			if port != "" {
				cfg.Server.Port = port
			}

			var repo ports.ReportRepository
			if cfg.Database.URL != "" {
				db, err := opts.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				if err := migration.NewRunner().Run(ctx, db); err != nil {
					return err
				}
				repo = postgres.NewReportRepository(db)
				opts.logger.Info("report storage enabled")
			}

			server := api.NewServer(api.Config{
				Port:              cfg.Server.Port,
				DataDir:           cfg.Server.DataDir,
				Sheet:             cfg.Dataset.Sheet,
				Schema:            cfg.Dataset.Schema,
				Run:               cfg.RunConfig(),
				Scan:              cfg.ScanConfig(),
				MaxConcurrentRuns: cfg.Server.MaxConcurrentRuns,
			}, excel.NewLoader(), repo, opts.logger)
			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default from config)")
	return cmd
}
