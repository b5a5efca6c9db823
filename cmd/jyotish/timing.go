package main

import (
	"strings"

	"github.com/spf13/cobra"

	"jyotish-systemv1/internal/dasha"
	"jyotish-systemv1/internal/model"
	"jyotish-systemv1/internal/transit"
	"jyotish-systemv1/pkg/jyotish"
)

func newDashaCmd(a *app) *cobra.Command {
	var (
		system string
		at     string
		years  float64
		tree   bool
	)
	cmd := &cobra.Command{
		Use:   "dasha",
		Short: "Build a dasha tree and find the running periods",
		Long: "dasha builds the period tree of one system and prints the periods running at --at, " +
			"or the whole tree with --tree. Systems: " + strings.Join(systemNames(), ", ") + ".",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sys, err := dasha.ParseSystem(system)
			if err != nil {
				return err
			}
			when, err := parseDay(at)
			if err != nil {
				return err
			}
			eng, natal, err := a.natal(cmd)
			if err != nil {
				return err
			}
			t, err := eng.BuildDasha(cmd.Context(), natal, sys, years)
			if err != nil {
				return err
			}
			if tree {
				return emit(cmd.OutOrStdout(), a.format, t)
			}
			c, err := eng.FindActiveDashas(t, when)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a.format, c)
		},
	}
	addBirthFlags(cmd, &a.birth)
	f := cmd.Flags()
	f.StringVar(&system, "system", "vimshottari", "dasha system")
	f.StringVar(&at, "at", "", "date for the running periods, default today")
	f.Float64Var(&years, "years", 0, "tree horizon in years, default from config")
	f.BoolVar(&tree, "tree", false, "print the whole tree")
	return cmd
}

func systemNames() []string {
	out := make([]string, 0, len(dasha.Systems))
	for _, s := range dasha.Systems {
		out = append(out, string(s))
	}
	return out
}

func parseGrahas(names []string) ([]model.Graha, error) {
	out := make([]model.Graha, 0, len(names))
	for _, n := range names {
		g, err := model.ParseGraha(n)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func newTransitsCmd(a *app) *cobra.Command {
	var (
		from, to        string
		movers, targets []string
		orbScale        float64
	)
	cmd := &cobra.Command{
		Use:   "transits",
		Short: "Find transit activations of natal points",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var q transit.Query
			var err error
			if q.Start, err = parseDay(from); err != nil {
				return err
			}
			if to == "" {
				q.End = q.Start.AddDate(0, 1, 0)
			} else if q.End, err = parseDay(to); err != nil {
				return err
			}
			if q.Transits, err = parseGrahas(movers); err != nil {
				return err
			}
			if q.Targets, err = parseGrahas(targets); err != nil {
				return err
			}
			q.OrbScale = orbScale

			eng, natal, err := a.natal(cmd)
			if err != nil {
				return err
			}
			acts, err := eng.FindTransits(cmd.Context(), natal, q)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a.format, acts)
		},
	}
	addBirthFlags(cmd, &a.birth)
	f := cmd.Flags()
	f.StringVar(&from, "from", "", "first day scanned, default today")
	f.StringVar(&to, "to", "", "last day scanned, default one month after --from")
	f.StringSliceVar(&movers, "transit", nil, "transiting grahas, default all nine")
	f.StringSliceVar(&targets, "target", nil, "natal targets, default all nine")
	f.Float64Var(&orbScale, "orb-scale", 0, "orb multiplier, default from config")
	return cmd
}

func newEventsCmd(a *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Compose the monthly event calendar of one year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, natal, err := a.natal(cmd)
			if err != nil {
				return err
			}
			ms, err := eng.ComposeMonthlyEvents(cmd.Context(), natal, year)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a.format, ms)
		},
	}
	addBirthFlags(cmd, &a.birth)
	cmd.Flags().IntVar(&year, "year", 0, "calendar year")
	cmd.MarkFlagRequired("year")
	return cmd
}

func newPanchangCmd(a *app) *cobra.Command {
	var r jyotish.PanchangRequest
	cmd := &cobra.Command{
		Use:     "panchang",
		Short:   "Compute the panchang of one civil day",
		Example: "  jyotish panchang --date 2024-06-15 --tz Asia/Kolkata --lat 28.6139 --lon 77.2090",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			p, err := eng.ComputePanchang(cmd.Context(), r)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a.format, p)
		},
	}
	f := cmd.Flags()
	f.StringVar(&r.Date, "date", "", "civil date, 2006-01-02")
	f.StringVar(&r.Timezone, "tz", "", "UTC offset or IANA zone")
	f.Float64Var(&r.Latitude, "lat", 0, "latitude, degrees north")
	f.Float64Var(&r.Longitude, "lon", 0, "longitude, degrees east")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("tz")
	return cmd
}
