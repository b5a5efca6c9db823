package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jyotish-systemv1/config"
	"jyotish-systemv1/internal/logger"
	"jyotish-systemv1/pkg/jyotish"
)

// app carries the state shared by every command of one invocation.
type app struct {
	cfgPath string
	format  string

	cfg    *config.Config
	eng    *jyotish.Engine
	closer io.Closer

	birth jyotish.Birth
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "jyotish",
		Short:         "Sidereal chart engine",
		Long:          "jyotish builds natal and divisional charts, dasha trees, panchang, transits and strength tables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (default ./jyotish.toml or ./jyotish.yaml)")
	pf.StringVarP(&a.format, "format", "o", "json", "output format: json, yaml or toml")
	pf.String("ephemeris", "analytic", "position source: analytic or sqlite")
	pf.String("ephemeris-path", "", "ephemeris table file for the sqlite source")

	root.AddCommand(
		newChartCmd(a),
		newVargaCmd(a),
		newStrengthCmd(a),
		newHouseCmd(a),
		newDashaCmd(a),
		newTransitsCmd(a),
		newEventsCmd(a),
		newPanchangCmd(a),
		newReportCmd(a),
		newEphemCmd(a),
	)
	return root
}

// initConfig loads defaults, file and environment, then applies the
// persistent flags on top.
func (a *app) initConfig(cmd *cobra.Command) error {
	switch a.format {
	case "json", "yaml", "toml":
	default:
		return fmt.Errorf("unknown format %q", a.format)
	}

	v, err := config.New(a.cfgPath)
	if err != nil {
		return err
	}
	pf := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("ephemeris.source", pf.Lookup("ephemeris")); err != nil {
		return err
	}
	if err := v.BindPFlag("ephemeris.path", pf.Lookup("ephemeris-path")); err != nil {
		return err
	}
	a.cfg, err = config.FromViper(v)
	return err
}

// engine builds the Engine on first use.
func (a *app) engine() (*jyotish.Engine, error) {
	if a.eng != nil {
		return a.eng, nil
	}
	log := logger.New(os.Stderr, "jyotish", logger.ParseLevel(a.cfg.Log.Level))
	eng, closer, err := jyotish.NewFromConfig(a.cfg, log, nil)
	if err != nil {
		return nil, err
	}
	a.eng, a.closer = eng, closer
	return eng, nil
}

func addBirthFlags(cmd *cobra.Command, b *jyotish.Birth) {
	f := cmd.Flags()
	f.StringVar(&b.Date, "date", "", "birth date, 2006-01-02")
	f.StringVar(&b.Time, "time", "", "birth time, 15:04 or 15:04:05")
	f.StringVar(&b.Timezone, "tz", "", "UTC offset (UTC+5:30) or IANA zone (Asia/Kolkata)")
	f.Float64Var(&b.Latitude, "lat", 0, "latitude, degrees north")
	f.Float64Var(&b.Longitude, "lon", 0, "longitude, degrees east")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("time")
	cmd.MarkFlagRequired("tz")
}

// parseDay reads a 2006-01-02 date as UTC midnight. Empty means today.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		y, m, d := time.Now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: want 2006-01-02", s)
	}
	return t, nil
}
