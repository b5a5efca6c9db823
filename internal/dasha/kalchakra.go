package dasha

import (
	"context"

	"jyotish-systemv1/internal/analysis"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

// bphsCycleYears caps the BPHS Kalchakra.
const bphsCycleYears = 100.0

// BPHSYears is the period of a rashi, keyed by its lord.
var BPHSYears = map[model.Graha]float64{
	model.Sun: 5, model.Moon: 21, model.Mars: 7, model.Mercury: 9,
	model.Jupiter: 10, model.Venus: 16, model.Saturn: 4,
}

func bphsYears(s model.Sign) float64 { return BPHSYears[s.Lord()] }

// BPHSStart returns the first rashi and direction: the Moon's navamsa sign,
// savya (+1) when the Moon's nakshatra falls in an even group of three,
// apasavya (-1) otherwise.
func BPHSStart(e *analysis.Enriched) (model.Sign, int) {
	n := e.Natal.Position(model.Moon).Nakshatra
	dir := 1
	if (n.Index/3)%2 == 1 {
		dir = -1
	}
	return e.Navamsa.Position(model.Moon).Sign, dir
}

// padaElapsed is the fraction of the Moon's pada already traversed.
func padaElapsed(n model.Nakshatra) float64 {
	f := n.Elapsed*4 - float64(n.Pada-1)
	if f < 0 {
		f = 0
	}
	if f >= 1 {
		f = 0
	}
	return f
}

func buildBPHS(ctx context.Context, t *Tree, e *analysis.Enriched, maxYears float64) error {
	if maxYears > bphsCycleYears {
		maxYears = bphsCycleYears
	}
	t.HorizonJD = t.BirthJD + maxYears*DaysPerYear
	t.sub = signSub(bphsYears)

	sign, dir := BPHSStart(e)
	start := t.BirthJD
	years := bphsYears(sign) * (1 - padaElapsed(e.Natal.Position(model.Moon).Nakshatra))
	for {
		if err := errs.Cancelled(ctx); err != nil {
			return err
		}
		if t.appendTop(SignLord(sign), start, years*DaysPerYear, false, dir) {
			return nil
		}
		start = t.Periods[len(t.Periods)-1].EndJD
		sign = sign.Add(dir)
		years = bphsYears(sign)
	}
}

// signSub divides a rashi period over the twelve rashis from the parent, in
// the parent's direction, weighted by years.
func signSub(years func(model.Sign) float64) subdivider {
	return func(p *Period) []share {
		dir := p.dir
		if dir == 0 {
			dir = 1
		}
		out := make([]share, 12)
		for i := range out {
			s := p.Lord.Sign.Add(i * dir)
			out[i] = share{lord: SignLord(s), weight: years(s), dir: dir}
		}
		return out
	}
}
