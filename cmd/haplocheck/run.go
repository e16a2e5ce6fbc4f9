package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"haplocheck/adapters/excel"
	"haplocheck/adapters/postgres"
	"haplocheck/app"
	"haplocheck/domain/haplotype"
	"haplocheck/internal/combination"
)

type outputFlags struct {
	file   string
	sheet  string
	params []string
	out    string
	dir    string
	format string
	allow  bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Input .xlsx or .csv file")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet name (default from config)")
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "Mediator parameter to test (repeatable, substring match)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output base name (default from config)")
	cmd.Flags().StringVar(&f.dir, "dir", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: csv|xlsx")
	cmd.Flags().BoolVar(&f.allow, "allow-partial", false, "Continue when some parameters match no mediator")
	_ = cmd.MarkFlagRequired("file")
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		flags   outputFlags
		markers string
		minimum int
		store   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the haplotype comparison and write the three report tables",
		Example: `  haplocheck run -f cohort.xlsx --markers "rs1800795 rs1800629 rs16944" -p IL6 -p TNF
  haplocheck run -f cohort.csv --markers "rs1 rs2" -p IL10 --format xlsx --store`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := excel.LoadDataset(ctx, excel.NewLoader(), flags.file, sheetOrDefault(flags.sheet, opts), opts.cfg.Dataset.Schema)
			if err != nil {
				return err
			}

			cfg := opts.cfg.RunConfig()
			cfg.Markers = combination.ParseMarkers(markers)
			cfg.Parameters = flags.params
			cfg.AllowPartialParameters = cfg.AllowPartialParameters || flags.allow
			if cmd.Flags().Changed("min-intersection") {
				cfg.MinIntersection = minimum
			}

			report, err := app.NewHaplotypeService(opts.logger).Run(ctx, ds, cfg)
			if err != nil {
				return err
			}

			writer, err := opts.reportWriter(flags.format, flags.dir, flags.out)
			if err != nil {
				return err
			}
			if err := writer.WriteReport(ctx, report); err != nil {
				return err
			}

			if store {
				db, err := opts.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				if err := postgres.NewReportRepository(db).SaveReport(ctx, report); err != nil {
					return err
				}
			}

			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&markers, "markers", "m", "", "Whitespace-separated SNP names (at least two)")
	cmd.Flags().IntVar(&minimum, "min-intersection", app.DefaultRunConfig().MinIntersection, "Minimum haplotype group size")
	cmd.Flags().BoolVar(&store, "store", false, "Also save the report to the configured database")
	_ = cmd.MarkFlagRequired("markers")
	return cmd
}

func sheetOrDefault(sheet string, opts *rootOptions) string {
	if sheet != "" {
		return sheet
	}
	return opts.cfg.Dataset.Sheet
}

func printReport(w io.Writer, r *haplotype.Report) {
	fmt.Fprintf(w, "run %s\n", r.RunID)
	fmt.Fprintf(w, "markers: %d  mediators: %d  intersections: %d  pairings: %d  tests: %d\n",
		len(r.Markers), len(r.Parameters), len(r.Intersection), len(r.Summary), len(r.Significance))
	if len(r.Missing) > 0 {
		fmt.Fprintf(w, "parameters not found: %v\n", r.Missing)
	}
	if len(r.Excluded) > 0 {
		fmt.Fprintf(w, "excluded patients: %d\n", len(r.Excluded))
	}
	if len(r.Summary) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP 1\tN 1\tGROUP 2\tN 2\tSIGNIFICANT")
	for _, s := range r.Summary {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\n", s.Group1, s.Count1, s.Group2, s.Count2, s.Significant)
	}
	tw.Flush()
}
