package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"haplocheck/adapters/excel"
	"haplocheck/internal/errors"
	"haplocheck/internal/testkit"
)

func newGenerateCmd() *cobra.Command {
	cfg := testkit.DefaultCohortConfig()
	var out, sheet string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic cohort in the clinical export layout",
		Example: `  haplocheck generate -o cohort.xlsx --patients 400 --effect-marker rs1800795 --effect 25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.PatientCount < 1 {
				return errors.InvalidInput("patients must be at least 1")
			}
			if cfg.EffectMarker != "" && !slices.Contains(cfg.Markers, cfg.EffectMarker) {
				return errors.InvalidInput(fmt.Sprintf("effect marker %q is not one of the generated markers", cfg.EffectMarker))
			}
			table := testkit.NewCohortGenerator(cfg).GenerateTable()
			if err := excel.WriteTable(out, sheet, table); err != nil {
				return errors.Wrapf(err, "failed to write %s", out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d patients, %d markers, %d mediators to %s\n",
				cfg.PatientCount, len(cfg.Markers), len(cfg.Mediators), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "cohort.xlsx", "Output .xlsx or .csv file")
	cmd.Flags().StringVar(&sheet, "sheet", "Sheet1", "Worksheet name for .xlsx output")
	cmd.Flags().IntVar(&cfg.PatientCount, "patients", cfg.PatientCount, "Number of patient columns")
	cmd.Flags().StringSliceVar(&cfg.Markers, "markers", cfg.Markers, "Marker names")
	cmd.Flags().StringSliceVar(&cfg.Mediators, "mediators", cfg.Mediators, "Mediator identifiers")
	cmd.Flags().StringVar(&cfg.EffectMarker, "effect-marker", "", "Marker whose BB carriers get shifted mediator levels")
	cmd.Flags().Float64Var(&cfg.EffectSize, "effect", 25, "Mediator shift for BB carriers of the effect marker")
	cmd.Flags().Float64Var(&cfg.MissingRate, "missing", cfg.MissingRate, "Probability of a blank mediator cell")
	cmd.Flags().Float64Var(&cfg.MajorFrequency, "major-frequency", cfg.MajorFrequency, "Probability of an A allele")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	return cmd
}
