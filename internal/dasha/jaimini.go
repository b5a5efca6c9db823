package dasha

import (
	"context"
	"math"

	"jyotish-systemv1/internal/analysis"
	"jyotish-systemv1/internal/dignity"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

// Rashi strength weights.
const (
	wPlanetary = 0.40
	wAspect    = 0.25
	wLord      = 0.25
	wKaraka    = 0.10
)

// firstChakra is the number of rashis traversed in the cycle direction
// before the second chakra turns back over the remaining four.
const firstChakra = 8

// CharaYears counts from s to its lord's rashi, forward for odd rashis and
// backward for even ones, less one; a lord in its own rashi gives 12.
func CharaYears(c *model.NatalChart, s model.Sign) float64 {
	ls := c.Position(s.Lord()).Sign
	var n int
	if s.IsOdd() {
		n = s.HouseFrom(ls) - 1
	} else {
		n = ls.HouseFrom(s) - 1
	}
	if n == 0 {
		n = 12
	}
	return float64(n)
}

// CycleOrder is the rashi sequence of one cycle from start: eight rashis in
// direction dir, then the remaining four walked back. The second return
// value holds each rashi's traversal direction.
func CycleOrder(start model.Sign, dir int) ([]model.Sign, []int) {
	signs := make([]model.Sign, 0, 12)
	dirs := make([]int, 0, 12)
	for i := 0; i < firstChakra; i++ {
		signs = append(signs, start.Add(i*dir))
		dirs = append(dirs, dir)
	}
	for i := 11; i >= firstChakra; i-- {
		signs = append(signs, start.Add(i*dir))
		dirs = append(dirs, -dir)
	}
	return signs, dirs
}

func buildJaimini(ctx context.Context, t *Tree, e *analysis.Enriched, maxYears, threshold float64) error {
	t.HorizonJD = t.BirthJD + maxYears*DaysPerYear
	t.sub = jaiminiSub
	t.Strengths = RashiStrengths(e)

	moon := e.Natal.Position(model.Moon)
	dir := -1
	if moon.Sign.IsOdd() {
		dir = 1
	}
	order, dirs := CycleOrder(moon.Sign, dir)

	start := t.BirthJD
	for cycle := 1; ; cycle++ {
		cycleDays := 0.0
		for i, s := range order {
			if err := errs.Cancelled(ctx); err != nil {
				return err
			}
			years := CharaYears(e.Natal, s)
			skipped := false
			if cycle > 1 {
				years = 12 - years
				if threshold >= 0 && t.Strengths[s] < threshold {
					years, skipped = 0, true
				}
			}
			if cycle == 1 && i == 0 {
				years *= 1 - moon.Degree/30
			}
			days := years * DaysPerYear
			cycleDays += days
			if t.appendTop(SignLord(s), start, days, skipped, dirs[i]) {
				return nil
			}
			start = t.Periods[len(t.Periods)-1].EndJD
		}
		// Every rashi skipped: the sequence cannot advance further.
		if cycleDays == 0 {
			return nil
		}
	}
}

// jaiminiSub splits a rashi period into twelve equal sub-periods starting
// from the rashi itself.
func jaiminiSub(p *Period) []share {
	return signSub(func(model.Sign) float64 { return 1 })(p)
}

// RashiStrengths scores every rashi 0..100.
func RashiStrengths(e *analysis.Enriched) map[model.Sign]float64 {
	ak := Atmakaraka(e.Natal)
	out := make(map[model.Sign]float64, 12)
	for s := model.Aries; s <= model.Pisces; s++ {
		v := wPlanetary*planetaryScore(e, s) +
			wAspect*aspectScore(e.Natal, s) +
			wLord*lordScore(e, s) +
			wKaraka*karakaScore(e.Natal, s, ak)
		out[s] = clamp100(v)
	}
	return out
}

// multiplierScore maps a dignity multiplier 0.5..1.8 onto 0..100.
func multiplierScore(m float64) float64 { return clamp100((m - 0.5) / 1.3 * 100) }

func planetaryScore(e *analysis.Enriched, s model.Sign) float64 {
	n, sum := 0, 0.0
	for _, g := range model.Grahas {
		if e.Natal.Position(g).Sign == s {
			sum += multiplierScore(e.Dignity(g).Multiplier)
			n++
		}
	}
	if n == 0 {
		return 40
	}
	return sum / float64(n)
}

// RashiAspects reports Jaimini rashi drishti: movable rashis aspect the fixed
// ones except their neighbour, fixed rashis the movable ones except their
// neighbour, and dual rashis each other.
func RashiAspects(from, to model.Sign) bool {
	if from == to {
		return false
	}
	switch from.Modality() {
	case model.Movable:
		return to.Modality() == model.Fixed && to != from.Add(1)
	case model.Fixed:
		return to.Modality() == model.Movable && to != from.Add(-1)
	default:
		return to.Modality() == model.Dual
	}
}

func aspectScore(c *model.NatalChart, s model.Sign) float64 {
	v := 0.0
	for _, g := range model.Grahas {
		if !RashiAspects(c.Position(g).Sign, s) {
			continue
		}
		if g.IsNaturalBenefic() {
			v += 20
		} else {
			v += 10
		}
	}
	return clamp100(v)
}

func lordScore(e *analysis.Enriched, s model.Sign) float64 {
	lord := s.Lord()
	st := e.Dignity(lord)
	v := multiplierScore(st.Multiplier)
	if st.Combustion == dignity.Combust {
		v -= 20
	}
	switch s.HouseFrom(st.Sign) {
	case 1, 4, 7, 10:
		v += 10
	case 6, 8, 12:
		v -= 10
	}
	return clamp100(v)
}

func karakaScore(c *model.NatalChart, s model.Sign, ak model.Graha) float64 {
	v := 0.0
	aks := c.Position(ak).Sign
	switch {
	case aks == s:
		v += 50
	case RashiAspects(aks, s):
		v += 25
	}
	for _, h := range []int{2, 4, 11} {
		for _, g := range model.Grahas {
			if g.IsNaturalBenefic() && c.Position(g).Sign == s.Add(h-1) {
				v += 15
			}
		}
	}
	return clamp100(v)
}

// Atmakaraka is the planet furthest advanced within its sign.
func Atmakaraka(c *model.NatalChart) model.Graha {
	best, deg := model.Sun, -1.0
	for _, g := range model.Planets {
		if d := c.Position(g).Degree; d > deg {
			best, deg = g, d
		}
	}
	return best
}

func clamp100(v float64) float64 { return math.Max(0, math.Min(100, v)) }
