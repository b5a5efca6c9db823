package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jyotish-systemv1/internal/ephemeris"
	sqlitestore "jyotish-systemv1/internal/store/sqlite"
)

func newEphemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ephem",
		Short: "Manage the SQLite ephemeris table",
	}
	cmd.AddCommand(newEphemBuildCmd(a))
	return cmd
}

func newEphemBuildCmd(a *app) *cobra.Command {
	var (
		out      string
		from, to string
		step     float64
	)
	cmd := &cobra.Command{
		Use:     "build",
		Short:   "Sample the analytic source into an ephemeris table",
		Example: "  jyotish ephem build --from 1900-01-01 --to 2100-01-01 --step 0.25 --out data/ephemeris.db",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseDay(from)
			if err != nil {
				return err
			}
			end, err := parseDay(to)
			if err != nil {
				return err
			}
			if out == "" {
				out = a.cfg.Ephemeris.Path
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}

			w, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: out})
			if err != nil {
				return err
			}
			defer w.Close()

			r := sqlitestore.Range{
				StartJD:  ephemeris.JulianDay(start),
				EndJD:    ephemeris.JulianDay(end),
				StepDays: step,
			}
			n, err := w.Generate(cmd.Context(), ephemeris.NewAnalytic(), r)
			if err != nil {
				return fmt.Errorf("build %s: %w", out, err)
			}
			return emit(cmd.OutOrStdout(), a.format, struct {
				Path     string  `json:"path"`
				Rows     int     `json:"rows"`
				StartJD  float64 `json:"start_jd"`
				EndJD    float64 `json:"end_jd"`
				StepDays float64 `json:"step_days"`
			}{out, n, r.StartJD, r.EndJD, step})
		},
	}
	f := cmd.Flags()
	f.StringVar(&out, "out", "", "table file, default ephemeris.path from config")
	f.StringVar(&from, "from", "", "first day sampled")
	f.StringVar(&to, "to", "", "last day sampled")
	f.Float64Var(&step, "step", 0.25, "sample spacing in days")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}
