package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"haplocheck/adapters/excel"
	"haplocheck/app"
	"haplocheck/domain/haplotype"
	"haplocheck/internal/combination"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	var (
		flags     outputFlags
		markers   string
		minCohort int
		tolerance float64
		prefix    string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Test AA against BB carriers of every balanced marker",
		Long: `scan screens single markers whose AA and BB cohorts are both larger than
--min-cohort and within --tolerance of each other, then compares the two
cohorts on every mediator. Without --param, mediators are selected by prefix.`,
		Example: `  haplocheck scan -f cohort.xlsx
  haplocheck scan -f cohort.xlsx --markers "rs1800795 rs16944" -p IL6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := excel.LoadDataset(ctx, excel.NewLoader(), flags.file, sheetOrDefault(flags.sheet, opts), opts.cfg.Dataset.Schema)
			if err != nil {
				return err
			}

			cfg := opts.cfg.ScanConfig()
			cfg.Markers = combination.ParseMarkers(markers)
			cfg.Parameters = flags.params
			cfg.AllowPartialParameters = cfg.AllowPartialParameters || flags.allow
			if cmd.Flags().Changed("min-cohort") {
				cfg.Criteria.MinCohort = minCohort
			}
			if cmd.Flags().Changed("tolerance") {
				cfg.Criteria.Tolerance = tolerance
			}
			if cmd.Flags().Changed("prefix") {
				cfg.MediatorPrefix = prefix
			}

			report, err := app.NewScanService(opts.logger).Run(ctx, ds, cfg)
			if err != nil {
				return err
			}

			writer, err := opts.reportWriter(flags.format, flags.dir, flags.out)
			if err != nil {
				return err
			}
			if err := writer.WriteScan(ctx, report); err != nil {
				return err
			}
			printScan(cmd.OutOrStdout(), report)
			return nil
		},
	}

	flags.register(cmd)
	defaults := app.DefaultScanConfig()
	cmd.Flags().StringVarP(&markers, "markers", "m", "", "Whitespace-separated SNP names (default every marker)")
	cmd.Flags().IntVar(&minCohort, "min-cohort", defaults.Criteria.MinCohort, "Both homozygous cohorts must be larger than this")
	cmd.Flags().Float64Var(&tolerance, "tolerance", defaults.Criteria.Tolerance, "Allowed relative size difference between AA and BB")
	cmd.Flags().StringVar(&prefix, "prefix", defaults.MediatorPrefix, "Mediator prefix used when no --param is given")
	return cmd
}

func printScan(w io.Writer, r *haplotype.ScanReport) {
	fmt.Fprintf(w, "run %s\n", r.RunID)
	fmt.Fprintf(w, "markers scanned: %d  balanced: %d  mediators: %d  excluded patients: %d\n",
		r.Scanned, len(r.Candidates), len(r.Parameters), len(r.Excluded))
	if len(r.Summary) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SNP\tSIGNIFICANT")
	for _, s := range r.Summary {
		fmt.Fprintf(tw, "%s\t%d\n", s.Marker, s.Significant)
	}
	tw.Flush()
}
