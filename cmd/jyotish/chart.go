package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jyotish-systemv1/internal/analysis"
	"jyotish-systemv1/internal/house"
	"jyotish-systemv1/internal/model"
	"jyotish-systemv1/internal/strength"
	"jyotish-systemv1/pkg/jyotish"
)

// natal builds the birth chart from the birth flags.
func (a *app) natal(cmd *cobra.Command) (*jyotish.Engine, *model.NatalChart, error) {
	eng, err := a.engine()
	if err != nil {
		return nil, nil, err
	}
	natal, err := eng.BuildNatal(cmd.Context(), a.birth)
	if err != nil {
		return nil, nil, err
	}
	return eng, natal, nil
}

func newChartCmd(a *app) *cobra.Command {
	var enrich bool
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Build the natal chart",
		Example: `  jyotish chart --date 1985-08-15 --time 14:30 --tz UTC+5:30 --lat 28.6139 --lon 77.2090
  jyotish chart ... --enrich -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, natal, err := a.natal(cmd)
			if err != nil {
				return err
			}
			if !enrich {
				return emit(cmd.OutOrStdout(), a.format, natal)
			}
			e, err := analysis.Enrich(natal)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a.format, e)
		},
	}
	addBirthFlags(cmd, &a.birth)
	cmd.Flags().BoolVar(&enrich, "enrich", false, "include dignities, relationships, strengths and yogi points")
	return cmd
}

func newVargaCmd(a *app) *cobra.Command {
	var division int
	cmd := &cobra.Command{
		Use:   "varga",
		Short: "Build divisional charts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, natal, err := a.natal(cmd)
			if err != nil {
				return err
			}
			if division == 0 {
				all, err := eng.BuildAllDivisionals(natal)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.format, all)
			}
			d, err := eng.BuildDivisional(natal, division)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a.format, d)
		},
	}
	addBirthFlags(cmd, &a.birth)
	cmd.Flags().IntVarP(&division, "division", "d", 9, "division number; 0 builds all sixteen")
	return cmd
}

func newStrengthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strength",
		Short: "Compute shadbala and ashtakavarga",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, natal, err := a.natal(cmd)
			if err != nil {
				return err
			}
			sb, err := eng.ComputeShadbala(natal)
			if err != nil {
				return err
			}
			av, err := eng.ComputeAshtakavarga(natal)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a.format, struct {
				Shadbala     strength.Shadbala     `json:"shadbala"`
				Ashtakavarga strength.Ashtakavarga `json:"ashtakavarga"`
			}{sb, av})
		},
	}
	addBirthFlags(cmd, &a.birth)
	return cmd
}

func newHouseCmd(a *app) *cobra.Command {
	var h int
	cmd := &cobra.Command{
		Use:   "house",
		Short: "Analyse one house, or all twelve",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, natal, err := a.natal(cmd)
			if err != nil {
				return err
			}
			if h != 0 {
				r, err := eng.AnalyzeHouse(natal, h)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a.format, r)
			}
			var all [12]house.Report
			for i := range all {
				if all[i], err = eng.AnalyzeHouse(natal, i+1); err != nil {
					return fmt.Errorf("house %d: %w", i+1, err)
				}
			}
			return emit(cmd.OutOrStdout(), a.format, all)
		},
	}
	addBirthFlags(cmd, &a.birth)
	cmd.Flags().IntVar(&h, "house", 0, "house number 1..12; 0 analyses all")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var (
		req jyotish.Request
		at  string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute the full chart report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			if req.At, err = parseDay(at); err != nil {
				return err
			}
			req.Birth = a.birth
			rep, err := eng.Report(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a.format, rep)
		},
	}
	addBirthFlags(cmd, &a.birth)
	f := cmd.Flags()
	f.StringVar(&req.ID, "id", "", "request id echoed in the report")
	f.StringVar(&req.System, "system", "vimshottari", "dasha system")
	f.StringVar(&at, "at", "", "date for the active dasha, default today")
	f.BoolVar(&req.Vargas, "vargas", false, "include all sixteen divisional charts")
	f.IntVar(&req.EventsYear, "events-year", 0, "compose monthly events for this year")
	return cmd
}
