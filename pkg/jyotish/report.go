package jyotish

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"jyotish-systemv1/internal/analysis"
	"jyotish-systemv1/internal/dasha"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/events"
	"jyotish-systemv1/internal/house"
	"jyotish-systemv1/internal/logger"
	"jyotish-systemv1/internal/model"
	"jyotish-systemv1/internal/strength"
	"jyotish-systemv1/internal/varga"
	"jyotish-systemv1/internal/yogi"
)

// Request asks for a full chart report.
type Request struct {
	ID         string    `json:"id"`
	Birth      Birth     `json:"birth"`
	System     string    `json:"system,omitempty"`      // dasha system, default vimshottari
	At         time.Time `json:"at,omitempty"`          // active-dasha instant, default now
	Vargas     bool      `json:"vargas,omitempty"`      // include all sixteen divisional charts
	EventsYear int       `json:"events_year,omitempty"` // compose monthly events for this year
}

// Report is everything computed for one birth.
type Report struct {
	ID           string                   `json:"id"`
	TraceID      string                   `json:"trace_id"`
	Natal        *model.NatalChart        `json:"natal"`
	Navamsa      *model.DivisionalChart   `json:"navamsa"`
	Vargas       []*model.DivisionalChart `json:"vargas,omitempty"`
	Shadbala     strength.Shadbala        `json:"shadbala"`
	Ashtakavarga strength.Ashtakavarga    `json:"ashtakavarga"`
	Yogi         yogi.Points              `json:"yogi"`
	Houses       [12]house.Report         `json:"houses"`
	Dasha        dasha.Context            `json:"dasha"`
	Events       []events.Month           `json:"events,omitempty"`
}

// Report computes the full bundle for r. The vargas and the events, when
// requested, are computed concurrently.
func (e *Engine) Report(ctx context.Context, r Request) (rep *Report, err error) {
	defer e.m.Track("report", &err)()
	tid := logger.TraceID(ctx)
	if tid == "" {
		tid = logger.NewTraceID()
		ctx = logger.WithTraceID(ctx, tid)
	}

	system := dasha.Vimshottari
	if r.System != "" {
		if system, err = dasha.ParseSystem(r.System); err != nil {
			return nil, err
		}
	}
	at := r.At
	if at.IsZero() {
		at = time.Now()
	}

	natal, err := e.BuildNatal(ctx, r.Birth)
	if err != nil {
		return nil, err
	}
	en, err := analysis.Enrich(natal)
	if err != nil {
		return nil, err
	}
	rep = &Report{
		ID:           r.ID,
		TraceID:      tid,
		Natal:        natal,
		Navamsa:      en.Navamsa,
		Shadbala:     en.Shadbala,
		Ashtakavarga: en.Ashtakavarga,
		Yogi:         en.Yogi,
		Houses:       house.AnalyzeAll(en),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tree, err := dasha.Build(gctx, en, system, e.horizonFor(natal, at.Year()), dasha.Options{Depth: 1, SkipThreshold: e.cfg.SkipThreshold})
		if err != nil {
			return err
		}
		rep.Dasha, err = dasha.FindActive(tree, at)
		return err
	})
	if r.Vargas {
		g.Go(func() error {
			vs, err := varga.BuildAll(natal)
			rep.Vargas = vs
			return err
		})
	}
	if r.EventsYear != 0 {
		g.Go(func() error {
			tree, err := dasha.Build(gctx, en, dasha.Vimshottari, e.horizonFor(natal, r.EventsYear), dasha.Options{Depth: 2})
			if err != nil {
				return err
			}
			ms, err := events.Compose(gctx, e.eph, en, tree, r.EventsYear)
			rep.Events = ms
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, errs.Cancelled(ctx)
		}
		return nil, err
	}
	return rep, nil
}
