// Package dasha builds the planetary period hierarchies: Vimshottari, the
// BPHS Kalchakra and the Jaimini Kalchakra.
//
// Every system produces a Tree of top-level periods, each subdivided to
// five levels. Boundaries are Julian Days computed from cumulative day
// offsets inside the parent, with the last child pinned to the parent's
// end, so children always roll up to their parent exactly.
package dasha

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jyotish-systemv1/internal/analysis"
	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

// DaysPerYear is the Gregorian mean year.
const DaysPerYear = 365.2425

// MaxLevel is the deepest subdivision: mahā, antara, pratyantara,
// sookshma, prana.
const MaxLevel = 5

// Defaults applied by Build when an Options field is zero.
const (
	DefaultMaxYears      = 120.0
	DefaultDepth         = 3
	DefaultSkipThreshold = 25.0
)

// System names a dasha scheme.
type System string

const (
	Vimshottari      System = "vimshottari"
	KalchakraBPHS    System = "kalchakra_bphs"
	KalchakraJaimini System = "kalchakra_jaimini"
)

// Systems lists every supported scheme.
var Systems = []System{Vimshottari, KalchakraBPHS, KalchakraJaimini}

// ParseSystem accepts a case-insensitive system name.
func ParseSystem(s string) (System, error) {
	n := System(strings.ToLower(strings.TrimSpace(s)))
	for _, sys := range Systems {
		if n == sys {
			return sys, nil
		}
	}
	return "", errs.NotFound("unknown dasha system %q", s)
}

// Lord rules a period: a graha for Vimshottari, a rashi for the Kalchakras.
type Lord struct {
	Graha model.Graha
	Sign  model.Sign
	Rashi bool
}

// GrahaLord and SignLord construct the two lord shapes.
func GrahaLord(g model.Graha) Lord { return Lord{Graha: g} }
func SignLord(s model.Sign) Lord   { return Lord{Sign: s, Rashi: true, Graha: s.Lord()} }

func (l Lord) String() string {
	if l.Rashi {
		return l.Sign.String()
	}
	return l.Graha.String()
}

func (l Lord) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText accepts a sign name, then a graha name.
func (l *Lord) UnmarshalText(b []byte) error {
	var s model.Sign
	if s.UnmarshalText(b) == nil {
		*l = SignLord(s)
		return nil
	}
	g, err := model.ParseGraha(string(b))
	if err != nil {
		return fmt.Errorf("unknown period lord %q", string(b))
	}
	*l = GrahaLord(g)
	return nil
}

// Ruler is the graha behind the period: the lord itself, or the ruler of
// the rashi.
func (l Lord) Ruler() model.Graha { return l.Graha }

// Period is a half-open interval [Start, End).
type Period struct {
	Lord     Lord      `json:"lord"`
	Level    int       `json:"level"`
	StartJD  float64   `json:"start_jd"`
	EndJD    float64   `json:"end_jd"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Skipped  bool      `json:"skipped,omitempty"`
	Children []*Period `json:"children,omitempty"`

	// dir is the traversal direction of sign-based sequences.
	dir int
	// fullJD is the untruncated end. Children are laid out over
	// [StartJD, fullJD) and clipped at EndJD.
	fullJD float64
}

// Years is the span in years.
func (p *Period) Years() float64 { return (p.EndJD - p.StartJD) / DaysPerYear }

// Duration is the span as a time.Duration.
func (p *Period) Duration() time.Duration { return p.End.Sub(p.Start) }

// Contains reports whether jd falls in [StartJD, EndJD).
func (p *Period) Contains(jd float64) bool { return jd >= p.StartJD && jd < p.EndJD }

// Truncated reports whether the horizon cut the period short.
func (p *Period) Truncated() bool { return p.fullJD > p.EndJD }

func (p *Period) nominalEnd() float64 {
	if p.fullJD > p.EndJD {
		return p.fullJD
	}
	return p.EndJD
}

func (p *Period) String() string {
	return fmt.Sprintf("L%d %s %s..%s", p.Level, p.Lord, p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}

// Options tune Build. Zero values take the package defaults.
type Options struct {
	Depth int // levels materialized eagerly, 1..5
	// SkipThreshold is the Jaimini rashi strength below which later cycles
	// skip the rashi. Nil takes DefaultSkipThreshold; negative disables.
	SkipThreshold *float64
}

// Threshold returns a SkipThreshold option value.
func Threshold(v float64) *float64 { return &v }

func (o Options) withDefaults() Options {
	if o.Depth <= 0 {
		o.Depth = DefaultDepth
	}
	if o.Depth > MaxLevel {
		o.Depth = MaxLevel
	}
	if o.SkipThreshold == nil {
		o.SkipThreshold = Threshold(DefaultSkipThreshold)
	}
	return o
}

// share is one child's slot in a subdivision.
type share struct {
	lord    Lord
	weight  float64
	skipped bool
	dir     int
}

type subdivider func(parent *Period) []share

// Tree is the period hierarchy for one chart and system.
type Tree struct {
	System    System    `json:"system"`
	BirthJD   float64   `json:"birth_jd"`
	Birth     time.Time `json:"birth"`
	HorizonJD float64   `json:"horizon_jd"`
	Depth     int       `json:"depth"`
	Periods   []*Period `json:"periods"`

	// Strengths holds the Jaimini rashi strengths used for skipping.
	Strengths map[model.Sign]float64 `json:"rashi_strengths,omitempty"`

	sub subdivider
}

// Build constructs the tree for system from birth out to maxYears
// (DefaultMaxYears when zero). The BPHS Kalchakra is further bounded by its
// 100-year cycle.
func Build(ctx context.Context, e *analysis.Enriched, system System, maxYears float64, opts Options) (*Tree, error) {
	if e == nil || e.Natal == nil {
		return nil, errs.Invalid("", "dasha: missing natal chart")
	}
	if maxYears < 0 {
		return nil, errs.Invalid(fmt.Sprint(maxYears), "dasha: negative horizon")
	}
	if maxYears == 0 {
		maxYears = DefaultMaxYears
	}
	opts = opts.withDefaults()

	t := &Tree{
		System:  system,
		BirthJD: e.Natal.JD,
		Birth:   ephemeris.TimeFromJulianDay(e.Natal.JD),
		Depth:   opts.Depth,
	}
	var err error
	switch system {
	case Vimshottari:
		err = buildVimshottari(ctx, t, e, maxYears)
	case KalchakraBPHS:
		err = buildBPHS(ctx, t, e, maxYears)
	case KalchakraJaimini:
		err = buildJaimini(ctx, t, e, maxYears, *opts.SkipThreshold)
	default:
		return nil, errs.NotFound("unknown dasha system %q", system)
	}
	if err != nil {
		return nil, err
	}

	for _, p := range t.Periods {
		if err := errs.Cancelled(ctx); err != nil {
			return nil, err
		}
		t.materialize(p)
	}
	return t, nil
}

// appendTop adds the next top-level period, truncating it at the horizon.
// The full length is kept so sub-periods match an untruncated tree. It
// reports whether the horizon has been reached.
func (t *Tree) appendTop(l Lord, startJD, days float64, skipped bool, dir int) bool {
	full := startJD + days
	end := full
	done := false
	if end >= t.HorizonJD {
		end, done = t.HorizonJD, true
	}
	p := newPeriod(l, 1, startJD, end, skipped, dir)
	p.fullJD = full
	t.Periods = append(t.Periods, p)
	return done
}

func newPeriod(l Lord, level int, start, end float64, skipped bool, dir int) *Period {
	return &Period{
		Lord:    l,
		Level:   level,
		StartJD: start,
		EndJD:   end,
		Start:   ephemeris.TimeFromJulianDay(start),
		End:     ephemeris.TimeFromJulianDay(end),
		Skipped: skipped,
		dir:     dir,
	}
}

func (t *Tree) materialize(p *Period) {
	if p.Level >= t.Depth {
		return
	}
	p.Children = t.split(p)
	for _, c := range p.Children {
		t.materialize(c)
	}
}

// Children returns p's sub-periods, computing them when they lie below the
// materialized depth. The tree itself is never modified.
func (t *Tree) Children(p *Period) []*Period {
	if p.Level >= MaxLevel {
		return nil
	}
	if p.Children != nil {
		return p.Children
	}
	return t.split(p)
}

// split divides p among its sub-lords by weight using cumulative offsets
// over p's full length. Children past a truncated end are dropped and the
// one straddling it is clipped.
func (t *Tree) split(p *Period) []*Period {
	shares := t.sub(p)
	total := 0.0
	for _, s := range shares {
		total += s.weight
	}
	full := p.nominalEnd()
	span := full - p.StartJD
	out := make([]*Period, 0, len(shares))
	cum := 0.0
	start := p.StartJD
	for i, s := range shares {
		if p.Truncated() && start >= p.EndJD {
			break
		}
		cum += s.weight
		end := full
		if i < len(shares)-1 && total > 0 {
			end = p.StartJD + span*cum/total
		}
		if total == 0 {
			end = p.StartJD
			if i == len(shares)-1 {
				end = full
			}
		}
		c := newPeriod(s.lord, p.Level+1, start, min(end, p.EndJD), s.skipped || p.Skipped, s.dir)
		c.fullJD = end
		out = append(out, c)
		start = end
	}
	return out
}

// Context is the chain of active periods, mahā first.
type Context struct {
	At      time.Time `json:"at"`
	System  System    `json:"system"`
	Periods []*Period `json:"periods"`
}

// Level returns the active period at level 1..5, or nil.
func (c Context) Level(n int) *Period {
	if n < 1 || n > len(c.Periods) {
		return nil
	}
	return c.Periods[n-1]
}

// Lords lists the rulers of the active periods, mahā first.
func (c Context) Lords() []model.Graha {
	out := make([]model.Graha, len(c.Periods))
	for i, p := range c.Periods {
		out[i] = p.Lord.Ruler()
	}
	return out
}

// FindActive returns the five nested periods containing at.
func FindActive(t *Tree, at time.Time) (Context, error) {
	if t == nil || len(t.Periods) == 0 {
		return Context{}, errs.Invalid("", "dasha: empty tree")
	}
	jd := ephemeris.JulianDay(at)
	ctx := Context{At: at, System: t.System}
	level := t.Periods
	for depth := 1; depth <= MaxLevel; depth++ {
		p := find(level, jd)
		if p == nil {
			return Context{}, errs.Invalid(at.Format(time.RFC3339), "dasha: date outside the %s range", t.System)
		}
		ctx.Periods = append(ctx.Periods, p)
		level = t.Children(p)
	}
	return ctx, nil
}

func find(ps []*Period, jd float64) *Period {
	for _, p := range ps {
		if p.Contains(jd) {
			return p
		}
	}
	return nil
}

// Walk visits every materialized period depth first.
func (t *Tree) Walk(fn func(*Period)) {
	var visit func([]*Period)
	visit = func(ps []*Period) {
		for _, p := range ps {
			fn(p)
			visit(p.Children)
		}
	}
	visit(t.Periods)
}
