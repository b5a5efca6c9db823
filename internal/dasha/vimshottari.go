package dasha

import (
	"context"

	"jyotish-systemv1/internal/analysis"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

// VimshottariYears per lord; the nine sum to 120.
var VimshottariYears = map[model.Graha]float64{
	model.Ketu: 7, model.Venus: 20, model.Sun: 6, model.Moon: 10, model.Mars: 7,
	model.Rahu: 18, model.Jupiter: 16, model.Saturn: 19, model.Mercury: 17,
}

const vimshottariCycle = 120.0

func vimshottariIndex(g model.Graha) int {
	for i, l := range model.VimshottariOrder {
		if l == g {
			return i
		}
	}
	return 0
}

// VimshottariBalance returns the birth lord and the years left in its
// mahādaśā from the Moon's nakshatra.
func VimshottariBalance(moonLon float64) (model.Graha, float64) {
	n := model.NakshatraOf(moonLon)
	return n.Lord, VimshottariYears[n.Lord] * (1 - n.Elapsed)
}

// buildVimshottari lays out mahādaśās from birth. The first covers only the
// balance; its sub-periods divide that balance proportionally.
func buildVimshottari(ctx context.Context, t *Tree, e *analysis.Enriched, maxYears float64) error {
	t.HorizonJD = t.BirthJD + maxYears*DaysPerYear
	t.sub = vimshottariSub

	lord, balance := VimshottariBalance(e.Natal.Position(model.Moon).Longitude)
	idx := vimshottariIndex(lord)
	start := t.BirthJD
	years := balance
	for {
		if err := errs.Cancelled(ctx); err != nil {
			return err
		}
		g := model.VimshottariOrder[idx%9]
		if t.appendTop(GrahaLord(g), start, years*DaysPerYear, false, 1) {
			return nil
		}
		start = t.Periods[len(t.Periods)-1].EndJD
		idx++
		years = VimshottariYears[model.VimshottariOrder[idx%9]]
	}
}

func vimshottariSub(p *Period) []share {
	out := make([]share, 9)
	first := vimshottariIndex(p.Lord.Graha)
	for i := range out {
		g := model.VimshottariOrder[(first+i)%9]
		out[i] = share{lord: GrahaLord(g), weight: VimshottariYears[g] / vimshottariCycle, dir: 1}
	}
	return out
}
