package main

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"haplocheck/adapters/excel"
	"haplocheck/internal"
	"haplocheck/internal/config"
	"haplocheck/internal/errors"
	"haplocheck/ports"
)

type rootOptions struct {
	configFile string
	logLevel   string
	jsonLogs   bool

	cfg    *config.Config
	logger *internal.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "haplocheck",
		Short: "Compare inflammatory mediator levels between SNP haplotype groups",
		Long: `haplocheck reads a clinical genotype/mediator table, builds two-marker
haplotype groups, pairs each homozygous group with its genotype-flipped
counterpart and runs Mann-Whitney U tests on the requested mediators.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := cfg.Logging.Level
			if opts.logLevel != "" {
				level = opts.logLevel
			}
			opts.logger = internal.NewLogger(internal.ParseLevel(level))
			opts.logger.SetJSON(cfg.Logging.JSON || opts.jsonLogs)
			internal.DefaultLogger = opts.logger
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default ./haplocheck.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: error|warn|info|debug|trace")
	cmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false, "Emit logs as JSON")

	cmd.AddCommand(
		newRunCmd(opts),
		newScanCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
		newGenerateCmd(),
	)
	return cmd
}

// openDB connects to the configured database
func (o *rootOptions) openDB() (*sqlx.DB, error) {
	if o.cfg.Database.URL == "" {
		return nil, errors.ConfigInvalid("database.url (HAPLO_DATABASE_URL) is not set")
	}
	db, err := sqlx.Connect("postgres", o.cfg.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(o.cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(o.cfg.Database.MaxIdleConns)
	return db, nil
}

// reportWriter picks the writer for the requested format and output name
func (o *rootOptions) reportWriter(format, dir, base string) (ports.ReportWriter, error) {
	if format == "" {
		format = o.cfg.Output.Format
	}
	if dir == "" {
		dir = o.cfg.Output.Directory
	}
	if base == "" {
		base = o.cfg.Output.Base
	}
	switch format {
	case "csv":
		return excel.NewCSVReportWriter(dir, base), nil
	case "xlsx":
		return excel.NewXLSXReportWriter(dir, base), nil
	}
	return nil, errors.ConfigInvalid("format must be csv or xlsx, got " + format)
}
