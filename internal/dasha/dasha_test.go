package dasha

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"jyotish-systemv1/internal/analysis"
	"jyotish-systemv1/internal/chart/charttest"
	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol %.6f)", label, got, want, tol)
	}
}

func delhi(t *testing.T) *analysis.Enriched {
	t.Helper()
	e, err := analysis.Enrich(charttest.Build(t, charttest.Delhi1985))
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func build(t *testing.T, e *analysis.Enriched, sys System, opts Options) *Tree {
	t.Helper()
	tree, err := Build(context.Background(), e, sys, 0, opts)
	if err != nil {
		t.Fatalf("%s: %v", sys, err)
	}
	return tree
}

// checkRollup verifies exact roll-up and contiguity below p down to level
// max, expanding on demand.
func checkRollup(t *testing.T, tree *Tree, p *Period, max int) {
	t.Helper()
	if p.Level >= max {
		return
	}
	kids := tree.Children(p)
	if len(kids) == 0 {
		t.Fatalf("%s: no children", p)
	}
	if kids[0].StartJD != p.StartJD || kids[len(kids)-1].EndJD != p.EndJD {
		t.Fatalf("%s: children do not span the parent", p)
	}
	var sum time.Duration
	for i, k := range kids {
		if k.Level != p.Level+1 {
			t.Fatalf("%s: child level %d", p, k.Level)
		}
		if i > 0 && !k.Start.Equal(kids[i-1].End) {
			t.Fatalf("%s: gap between %s and %s", p, kids[i-1], k)
		}
		if k.EndJD < k.StartJD {
			t.Fatalf("%s: negative span", k)
		}
		sum += k.Duration()
	}
	if d := sum - p.Duration(); d > time.Millisecond || d < -time.Millisecond {
		t.Fatalf("%s: children sum differs by %v", p, d)
	}
	for _, k := range kids {
		checkRollup(t, tree, k, max)
	}
}

func TestParseSystem(t *testing.T) {
	for _, s := range []string{"vimshottari", " Kalchakra_BPHS", "KALCHAKRA_JAIMINI"} {
		if _, err := ParseSystem(s); err != nil {
			t.Errorf("%q: %v", s, err)
		}
	}
	if _, err := ParseSystem("yogini"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown system: got %v", err)
	}
	if _, err := Build(context.Background(), delhi(t), System("chara"), 0, Options{}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("build unknown system: got %v", err)
	}
}

func TestVimshottari_Delhi1985(t *testing.T) {
	e := delhi(t)
	tree := build(t, e, Vimshottari, Options{})

	first := tree.Periods[0]
	if first.Lord.Graha != model.Saturn {
		t.Fatalf("birth mahadasha: got %s, want Saturn", first.Lord)
	}
	// Moon at 105.39° is 90% through Pushya: 19 × 0.0957 years remain.
	assertClose(t, "saturn balance", first.Years(), 1.8192, 0.01)
	if first.StartJD != e.Natal.JD {
		t.Error("first mahadasha must start at birth")
	}
	if tree.Periods[1].Lord.Graha != model.Mercury {
		t.Errorf("second mahadasha: got %s", tree.Periods[1].Lord)
	}
	assertClose(t, "mercury years", tree.Periods[1].Years(), 17, 1e-9)

	// Antardashas of the birth period start with Saturn.
	if first.Children[0].Lord.Graha != model.Saturn || len(first.Children) != 9 {
		t.Errorf("antardashas: %v", first.Children)
	}
	assertClose(t, "saturn-saturn share", first.Children[0].Years(), first.Years()*19/120, 1e-9)

	last := tree.Periods[len(tree.Periods)-1]
	assertClose(t, "horizon", last.EndJD-e.Natal.JD, 120*DaysPerYear, 1e-6)
}

func TestRollup_AllSystems(t *testing.T) {
	e := delhi(t)
	for _, sys := range Systems {
		t.Run(string(sys), func(t *testing.T) {
			tree := build(t, e, sys, Options{})
			for i, p := range tree.Periods {
				if i > 0 && p.StartJD != tree.Periods[i-1].EndJD {
					t.Fatalf("mahadasha gap before %s", p)
				}
				max := 3
				if i == 0 {
					max = MaxLevel
				}
				checkRollup(t, tree, p, max)
			}
		})
	}
}

func TestDepth_OnDemandExpansion(t *testing.T) {
	e := delhi(t)
	shallow := build(t, e, Vimshottari, Options{Depth: 1})
	for _, p := range shallow.Periods {
		if p.Children != nil {
			t.Fatalf("%s: materialized below depth 1", p)
		}
	}
	deep := build(t, e, Vimshottari, Options{Depth: 5})

	at := e.Natal.UT.AddDate(10, 3, 7)
	a, err := FindActive(shallow, at)
	if err != nil {
		t.Fatal(err)
	}
	b, err := FindActive(deep, at)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Periods) != MaxLevel || len(b.Periods) != MaxLevel {
		t.Fatalf("levels: %d and %d", len(a.Periods), len(b.Periods))
	}
	for i := range a.Periods {
		if a.Periods[i].Lord != b.Periods[i].Lord || a.Periods[i].StartJD != b.Periods[i].StartJD {
			t.Errorf("level %d: %s vs %s", i+1, a.Periods[i], b.Periods[i])
		}
	}
	// Expansion never mutates the tree.
	if shallow.Periods[0].Children != nil {
		t.Error("FindActive modified the tree")
	}
}

func TestFindActive(t *testing.T) {
	e := delhi(t)
	tree := build(t, e, Vimshottari, Options{})

	ctx, err := FindActive(tree, e.Natal.UT.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range ctx.Periods {
		if p.Level != i+1 {
			t.Errorf("period %d has level %d", i, p.Level)
		}
		if !p.Contains(ephemeris.JulianDay(ctx.At)) {
			t.Errorf("%s does not contain %v", p, ctx.At)
		}
	}
	if ctx.Level(1).Lord.Graha != model.Saturn || ctx.Level(2).Lord.Graha != model.Saturn {
		t.Errorf("active at birth: %v", ctx.Lords())
	}
	if ctx.Level(6) != nil || ctx.Level(0) != nil {
		t.Error("levels outside 1..5 must be nil")
	}

	if _, err := FindActive(tree, e.Natal.UT.AddDate(-1, 0, 0)); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("before birth: got %v", err)
	}
	if _, err := FindActive(tree, e.Natal.UT.AddDate(121, 0, 0)); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("after horizon: got %v", err)
	}
}

func TestHorizon_KeepsFullSubdivision(t *testing.T) {
	e := delhi(t)
	full := build(t, e, Vimshottari, Options{})
	short, err := Build(context.Background(), e, Vimshottari, 30, Options{})
	if err != nil {
		t.Fatal(err)
	}

	last := short.Periods[len(short.Periods)-1]
	if last.Lord.Graha != model.Venus || !last.Truncated() {
		t.Fatalf("last mahadasha of a 30-year tree: %s truncated=%v", last, last.Truncated())
	}
	assertClose(t, "cut at horizon", last.EndJD-e.Natal.JD, 30*DaysPerYear, 1e-6)

	// Venus-Venus runs its full 20×20/120 years even though the horizon
	// falls inside Venus-Sun.
	first := short.Children(last)[0]
	if first.Lord.Graha != model.Venus {
		t.Fatalf("first antara: %s", first)
	}
	assertClose(t, "venus-venus years", first.Years(), 20*20/120.0, 1e-9)
	if got := first.End.Format("2006-01-02"); got != "2014-10-10" {
		t.Errorf("venus-venus ends %s, want 2014-10-10", got)
	}
	kids := short.Children(last)
	if k := kids[len(kids)-1]; k.EndJD != last.EndJD || k.Lord.Graha != model.Sun {
		t.Errorf("clipped antara: %s", k)
	}

	for _, at := range []time.Time{
		time.Date(2012, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2014, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2015, 1, 20, 0, 0, 0, 0, time.UTC),
	} {
		a, err := FindActive(short, at)
		if err != nil {
			t.Fatalf("%s: %v", at.Format("2006-01-02"), err)
		}
		b, err := FindActive(full, at)
		if err != nil {
			t.Fatal(err)
		}
		for i := range a.Periods {
			pa, pb := a.Periods[i], b.Periods[i]
			if pa.Lord != pb.Lord || pa.StartJD != pb.StartJD {
				t.Errorf("%s level %d: %s vs %s", at.Format("2006-01-02"), i+1, pa, pb)
			}
		}
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, sys := range Systems {
		tree, err := Build(ctx, delhi(t), sys, 0, Options{})
		if !errors.Is(err, errs.ErrCancelled) || tree != nil {
			t.Errorf("%s: got %v, %v", sys, tree, err)
		}
	}
}

func TestBPHS_Delhi1985(t *testing.T) {
	e := delhi(t)
	sign, dir := BPHSStart(e)
	// Moon's navamsa is Scorpio; Pushya is in the third group of three.
	if sign != model.Scorpio || dir != 1 {
		t.Fatalf("start: %s dir %d", sign, dir)
	}
	tree := build(t, e, KalchakraBPHS, Options{})
	first := tree.Periods[0]
	if first.Lord.Sign != model.Scorpio || !first.Lord.Rashi || first.Lord.Ruler() != model.Mars {
		t.Fatalf("first period: %s", first.Lord)
	}
	// 7 years less the 62% of pada 4 already traversed.
	assertClose(t, "scorpio balance", first.Years(), 2.6809, 0.01)
	if tree.Periods[1].Lord.Sign != model.Sagittarius {
		t.Errorf("second period: %s", tree.Periods[1].Lord)
	}
	last := tree.Periods[len(tree.Periods)-1]
	assertClose(t, "100-year cycle", last.EndJD-e.Natal.JD, 100*DaysPerYear, 1e-6)
}

func TestJaimini_Delhi1985(t *testing.T) {
	e := delhi(t)
	tree := build(t, e, KalchakraJaimini, Options{})
	first := tree.Periods[0]
	// Moon in its own even rashi Cancer: 12 years, less the 15.39° traversed.
	if first.Lord.Sign != model.Cancer {
		t.Fatalf("first period: %s", first.Lord)
	}
	assertClose(t, "cancer balance", first.Years(), 5.8440, 0.01)
	// Even rashi: backward.
	if tree.Periods[1].Lord.Sign != model.Gemini {
		t.Errorf("second period: %s", tree.Periods[1].Lord)
	}
	if len(tree.Strengths) != 12 {
		t.Fatalf("strengths: %d", len(tree.Strengths))
	}
	for s, v := range tree.Strengths {
		if v < 0 || v > 100 {
			t.Errorf("%s strength %.2f", s, v)
		}
	}
}

func TestJaimini_Skipping(t *testing.T) {
	e := delhi(t)
	all := build(t, e, KalchakraJaimini, Options{SkipThreshold: Threshold(101)})
	for i, p := range all.Periods {
		if i < 12 {
			if p.Skipped {
				t.Errorf("first cycle never skips: %s", p)
			}
			continue
		}
		if !p.Skipped || p.EndJD != p.StartJD {
			t.Errorf("later cycle rashi not skipped: %s", p)
		}
	}
	// Skipped shares are not redistributed: the sequence ends early.
	if got := len(all.Periods); got != 24 {
		t.Errorf("periods: got %d, want 24", got)
	}
	if _, err := FindActive(all, e.Natal.UT.AddDate(110, 0, 0)); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("past the shortened sequence: got %v", err)
	}

	none := build(t, e, KalchakraJaimini, Options{SkipThreshold: Threshold(-1)})
	for _, p := range none.Periods {
		if p.Skipped {
			t.Fatalf("negative threshold skipped %s", p)
		}
	}
}

func TestJaimini_ThresholdZeroIsKept(t *testing.T) {
	e := delhi(t)
	zero := build(t, e, KalchakraJaimini, Options{SkipThreshold: Threshold(0)})
	for _, p := range zero.Periods {
		if p.Skipped {
			t.Fatalf("threshold 0 skipped %s", p)
		}
	}

	def := build(t, e, KalchakraJaimini, Options{})
	for i, p := range def.Periods {
		want := i >= 12 && def.Strengths[p.Lord.Sign] < DefaultSkipThreshold
		if p.Skipped != want {
			t.Errorf("%s: skipped=%v at strength %.2f", p, p.Skipped, def.Strengths[p.Lord.Sign])
		}
	}
}

func TestCycleOrder(t *testing.T) {
	got, dirs := CycleOrder(model.Aries, 1)
	want := []model.Sign{
		model.Aries, model.Taurus, model.Gemini, model.Cancer, model.Leo, model.Virgo,
		model.Libra, model.Scorpio, model.Pisces, model.Aquarius, model.Capricorn, model.Sagittarius,
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if dirs[0] != 1 || dirs[8] != -1 {
		t.Errorf("directions: %v", dirs)
	}
}

func TestCharaYears(t *testing.T) {
	c := charttest.New(t, charttest.Fixture{
		Ascendant: 0,
		Longitudes: map[model.Graha]float64{
			model.Sun: 10, model.Moon: 100, model.Mars: 5, model.Mercury: 20,
			model.Jupiter: 95, model.Venus: 40, model.Saturn: 200, model.Rahu: 50,
		},
	})
	tests := []struct {
		s    model.Sign
		want float64
	}{
		{model.Aries, 12},  // Mars in Aries
		{model.Leo, 8},     // odd, forward Leo -> Aries
		{model.Cancer, 12}, // Moon in Cancer
		{model.Taurus, 12}, // Venus in Taurus
		{model.Virgo, 5},   // even, backward Virgo -> Aries
		{model.Capricorn, 3},
	}
	for _, tt := range tests {
		if got := CharaYears(c, tt.s); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestRashiAspects(t *testing.T) {
	tests := []struct {
		from, to model.Sign
		want     bool
	}{
		{model.Aries, model.Leo, true},
		{model.Aries, model.Taurus, false},
		{model.Aries, model.Aquarius, true},
		{model.Taurus, model.Cancer, true},
		{model.Taurus, model.Aries, false},
		{model.Gemini, model.Pisces, true},
		{model.Gemini, model.Gemini, false},
		{model.Gemini, model.Leo, false},
	}
	for _, tt := range tests {
		if got := RashiAspects(tt.from, tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v", tt.from, tt.to, got)
		}
	}
}

func TestLord_Text(t *testing.T) {
	for _, l := range []Lord{GrahaLord(model.Saturn), GrahaLord(model.Ketu), SignLord(model.Scorpio), SignLord(model.Aries)} {
		b, err := l.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Lord
		if err := back.UnmarshalText(b); err != nil || back != l {
			t.Errorf("%s: got %+v, %v", b, back, err)
		}
	}
	var l Lord
	if err := l.UnmarshalText([]byte("Pluto")); err == nil {
		t.Error("expected an error for an unknown lord")
	}
}
