// Package jyotish is the library surface of the chart engine.
//
// An Engine owns the ephemeris setup handle and exposes the chart operations.
// It holds no per-request state and is safe for concurrent use.
//
//	eng := jyotish.New(jyotish.Config{})
//	natal, err := eng.BuildNatal(ctx, jyotish.Birth{
//	    Date: "1985-08-15", Time: "14:30", Timezone: "Asia/Kolkata",
//	    Latitude: 28.6139, Longitude: 77.2090,
//	})
//	if err != nil { return err }
//	tree, err := eng.BuildDasha(ctx, natal, dasha.Vimshottari, 0)
package jyotish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jyotish-systemv1/internal/analysis"
	"jyotish-systemv1/internal/chart"
	"jyotish-systemv1/internal/dasha"
	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/events"
	"jyotish-systemv1/internal/house"
	"jyotish-systemv1/internal/logger"
	"jyotish-systemv1/internal/metrics"
	"jyotish-systemv1/internal/model"
	"jyotish-systemv1/internal/panchang"
	"jyotish-systemv1/internal/strength"
	"jyotish-systemv1/internal/timeloc"
	"jyotish-systemv1/internal/transit"
	"jyotish-systemv1/internal/varga"
)

// Birth is the raw birth input.
type Birth = timeloc.Birth

// Config configures an Engine. Zero values take the package defaults.
type Config struct {
	Source  ephemeris.Source // nil selects the analytic source
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	MaxYears      float64 // dasha horizon
	Depth         int     // dasha levels built eagerly
	SkipThreshold *float64 // Jaimini skip threshold; nil takes the default, negative disables skipping
	OrbScale      float64 // transit orb multiplier
}

// Engine runs chart operations against one ephemeris handle.
type Engine struct {
	eph *ephemeris.Ephemeris
	cfg Config
	log *slog.Logger
	m   *metrics.Metrics
}

// New performs the ephemeris setup and returns an Engine.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	opts := []ephemeris.Option{ephemeris.WithLogger(log)}
	if cfg.Metrics != nil {
		opts = append(opts, ephemeris.WithRetryHook(cfg.Metrics.EphemerisRetries.Inc))
	}
	return &Engine{
		eph: ephemeris.New(cfg.Source, opts...),
		cfg: cfg,
		log: log,
		m:   cfg.Metrics,
	}
}

// Ephemeris returns the setup handle.
func (e *Engine) Ephemeris() *ephemeris.Ephemeris { return e.eph }

func (e *Engine) dashaOptions() dasha.Options {
	return dasha.Options{Depth: e.cfg.Depth, SkipThreshold: e.cfg.SkipThreshold}
}

// BuildNatal normalizes birth and computes the natal chart.
func (e *Engine) BuildNatal(ctx context.Context, b Birth) (c *model.NatalChart, err error) {
	defer e.m.Track("natal", &err)()
	n, err := timeloc.Normalize(b)
	if err != nil {
		return nil, err
	}
	c, err = chart.Build(e.eph, n)
	if err != nil {
		e.log.Warn("[jyotish] natal chart failed", append(logger.LogWithTrace(ctx), slog.Any("error", err))...)
		return nil, err
	}
	e.log.Debug("[jyotish] natal chart built", append(logger.LogWithTrace(ctx),
		slog.String("lagna", c.AscendantSign.String()), slog.Float64("jd", c.JD))...)
	return c, nil
}

// BuildDivisional computes divisional chart D<division>.
func (e *Engine) BuildDivisional(natal *model.NatalChart, division int) (d *model.DivisionalChart, err error) {
	defer e.m.Track("divisional", &err)()
	if natal == nil {
		return nil, errs.Invalid("", "missing natal chart")
	}
	return varga.Build(natal, division)
}

// BuildAllDivisionals computes the sixteen divisional charts.
func (e *Engine) BuildAllDivisionals(natal *model.NatalChart) (ds []*model.DivisionalChart, err error) {
	defer e.m.Track("divisional_all", &err)()
	if natal == nil {
		return nil, errs.Invalid("", "missing natal chart")
	}
	return varga.BuildAll(natal)
}

// ComputeShadbala scores the seven planets.
func (e *Engine) ComputeShadbala(natal *model.NatalChart) (s strength.Shadbala, err error) {
	defer e.m.Track("shadbala", &err)()
	if natal == nil {
		return s, errs.Invalid("", "missing natal chart")
	}
	return strength.ComputeShadbala(natal), nil
}

// ComputeAshtakavarga places the bindus of the chart.
func (e *Engine) ComputeAshtakavarga(natal *model.NatalChart) (a strength.Ashtakavarga, err error) {
	defer e.m.Track("ashtakavarga", &err)()
	if natal == nil {
		return a, errs.Invalid("", "missing natal chart")
	}
	return strength.ComputeAshtakavarga(natal), nil
}

// PanchangRequest names a civil date and place.
type PanchangRequest struct {
	Date      string  `json:"date"` // 2006-01-02
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ComputePanchang computes the five limbs and the day's periods.
func (e *Engine) ComputePanchang(ctx context.Context, r PanchangRequest) (p *panchang.Panchang, err error) {
	defer e.m.Track("panchang", &err)()
	if err := timeloc.ValidateLocation(r.Latitude, r.Longitude); err != nil {
		return nil, err
	}
	noon, err := timeloc.ParseBirth(r.Date, "12:00")
	if err != nil {
		return nil, err
	}
	off, err := timeloc.ParseOffset(r.Timezone, noon)
	if err != nil {
		return nil, err
	}
	p, err = panchang.Compute(e.eph, noon, model.Location{Latitude: r.Latitude, Longitude: r.Longitude}, off)
	if err != nil {
		e.log.Warn("[jyotish] panchang failed", append(logger.LogWithTrace(ctx), slog.Any("error", err))...)
		return nil, err
	}
	return p, nil
}

// BuildDasha builds the period tree of system. A zero maxYears uses the
// configured horizon.
func (e *Engine) BuildDasha(ctx context.Context, natal *model.NatalChart, system dasha.System, maxYears float64) (t *dasha.Tree, err error) {
	defer e.m.Track("dasha", &err)()
	en, err := analysis.Enrich(natal)
	if err != nil {
		return nil, err
	}
	if maxYears == 0 {
		maxYears = e.cfg.MaxYears
	}
	return dasha.Build(ctx, en, system, maxYears, e.dashaOptions())
}

// FindActiveDashas returns the five nested periods running at at.
func (e *Engine) FindActiveDashas(tree *dasha.Tree, at time.Time) (c dasha.Context, err error) {
	defer e.m.Track("dasha_active", &err)()
	if tree == nil {
		return c, errs.Invalid("", "missing dasha tree")
	}
	return dasha.FindActive(tree, at)
}

// FindTransits scans the sky over q against the natal chart.
func (e *Engine) FindTransits(ctx context.Context, natal *model.NatalChart, q transit.Query) (acts []transit.Activation, err error) {
	defer e.m.Track("transits", &err)()
	if natal == nil {
		return nil, errs.Invalid("", "missing natal chart")
	}
	if q.OrbScale == 0 {
		q.OrbScale = e.cfg.OrbScale
	}
	return transit.Scan(ctx, e.eph, natal, q)
}

// AnalyzeHouse scores house h (1..12).
func (e *Engine) AnalyzeHouse(natal *model.NatalChart, h int) (r house.Report, err error) {
	defer e.m.Track("house", &err)()
	en, err := analysis.Enrich(natal)
	if err != nil {
		return r, err
	}
	return house.Analyze(en, h)
}

// ComposeMonthlyEvents forecasts the twelve months of year from the
// Vimshottari periods.
func (e *Engine) ComposeMonthlyEvents(ctx context.Context, natal *model.NatalChart, year int) (ms []events.Month, err error) {
	defer e.m.Track("events", &err)()
	en, err := analysis.Enrich(natal)
	if err != nil {
		return nil, err
	}
	tree, err := dasha.Build(ctx, en, dasha.Vimshottari, e.horizonFor(natal, year), dasha.Options{Depth: 2})
	if err != nil {
		return nil, err
	}
	return events.Compose(ctx, e.eph, en, tree, year)
}

// horizonFor stretches the dasha horizon to cover the end of year.
func (e *Engine) horizonFor(natal *model.NatalChart, year int) float64 {
	years := e.cfg.MaxYears
	if years == 0 {
		years = dasha.DefaultMaxYears
	}
	if need := float64(year-natal.UT.Year()) + 2; need > years {
		years = need
	}
	return years
}

func (e *Engine) String() string {
	return fmt.Sprintf("jyotish.Engine(%s)", e.eph)
}
