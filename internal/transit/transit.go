// Package transit samples the sky over a date range and records when a
// transiting graha forms an aspect with a natal point.
package transit

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

// Kind of aspect.
type Kind string

const (
	Conjunction Kind = "conjunction"
	Opposition  Kind = "opposition"
	Special     Kind = "special"
)

// step advances a sample time.
type step func(time.Time) time.Time

func days(n int) step   { return func(t time.Time) time.Time { return t.AddDate(0, 0, n) } }
func months(n int) step { return func(t time.Time) time.Time { return t.AddDate(0, n, 0) } }

// profile holds the sampling and aspect constants of one transiting graha.
type profile struct {
	step        step
	orb         float64
	special     []float64
	conjunction float64
	opposition  float64
	specialStr  float64
}

var profiles = map[model.Graha]profile{
	model.Sun:     {step: days(7), orb: 4, conjunction: 70, opposition: 60},
	model.Moon:    {step: days(1), orb: 8, conjunction: 60, opposition: 50},
	model.Mars:    {step: months(1), orb: 12, special: []float64{90, 210}, conjunction: 75, opposition: 65, specialStr: 70},
	model.Mercury: {step: days(7), orb: 8, conjunction: 65, opposition: 55},
	model.Jupiter: {step: months(1), orb: 4, special: []float64{120, 240}, conjunction: 85, opposition: 75, specialStr: 75},
	model.Venus:   {step: days(7), orb: 5, conjunction: 70, opposition: 60},
	model.Saturn:  {step: months(1), orb: 3, special: []float64{60, 270}, conjunction: 80, opposition: 70, specialStr: 70},
	model.Rahu:    {step: months(1), orb: 2, special: []float64{60, 300}, conjunction: 75, opposition: 65, specialStr: 60},
	model.Ketu:    {step: months(1), orb: 2, special: []float64{60, 300}, conjunction: 70, opposition: 60, specialStr: 60},
}

// Orb returns g's aspect orb in degrees.
func Orb(g model.Graha) float64 { return profiles[g].orb }

// Strength returns the constant strength of g forming an aspect of kind k.
func Strength(g model.Graha, k Kind) float64 {
	p := profiles[g]
	switch k {
	case Conjunction:
		return p.conjunction
	case Opposition:
		return p.opposition
	}
	return p.specialStr
}

// Activation is one sampled aspect.
type Activation struct {
	Date             time.Time   `json:"date"`
	Transit          model.Graha `json:"transit"`
	Natal            model.Graha `json:"natal"`
	Aspect           Kind        `json:"aspect"`
	Angle            float64     `json:"angle"`
	Deviation        float64     `json:"deviation"`
	Strength         float64     `json:"strength"`
	TransitLongitude float64     `json:"transit_longitude"`
	Retrograde       bool        `json:"retrograde"`
}

func (a Activation) String() string {
	return fmt.Sprintf("%s %s %s natal %s (%.0f°, %.2f off)", a.Date.Format("2006-01-02"), a.Transit, a.Aspect, a.Natal, a.Angle, a.Deviation)
}

// Query selects the range and the grahas to scan. Empty graha lists mean
// all nine.
type Query struct {
	Start    time.Time
	End      time.Time
	Transits []model.Graha
	Targets  []model.Graha
	OrbScale float64 // multiplies every orb; zero means 1
}

func (q Query) validate() error {
	if q.End.Before(q.Start) {
		return errs.Invalid(q.Start.Format("2006-01-02")+".."+q.End.Format("2006-01-02"), "transit range ends before it starts")
	}
	for _, g := range append(append([]model.Graha{}, q.Transits...), q.Targets...) {
		if !g.Valid() || g.IsShadow() {
			return errs.Invalid(g.String(), "transit grahas must be one of the nine")
		}
	}
	if q.OrbScale < 0 {
		return errs.Invalid(fmt.Sprint(q.OrbScale), "negative orb scale")
	}
	return nil
}

// Scan walks [Start, End] in per-graha steps and returns the activations
// sorted by date, then transiting graha, then natal graha. The context is
// checked once per calendar month of the range.
func Scan(ctx context.Context, eph *ephemeris.Ephemeris, natal *model.NatalChart, q Query) ([]Activation, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	transits := q.Transits
	if len(transits) == 0 {
		transits = model.Grahas
	}
	targets := q.Targets
	if len(targets) == 0 {
		targets = model.Grahas
	}
	scale := q.OrbScale
	if scale == 0 {
		scale = 1
	}

	next := make(map[model.Graha]time.Time, len(transits))
	for _, g := range transits {
		next[g] = q.Start
	}

	var out []Activation
	for month := q.Start; !month.After(q.End); month = month.AddDate(0, 1, 0) {
		if err := errs.Cancelled(ctx); err != nil {
			return nil, err
		}
		monthEnd := month.AddDate(0, 1, 0)
		for _, g := range transits {
			for {
				t := next[g]
				if !t.Before(monthEnd) || t.After(q.End) {
					break
				}
				pos, err := position(eph, g, ephemeris.JulianDay(t))
				if err != nil {
					return nil, err
				}
				for _, n := range targets {
					if a, ok := match(g, pos, natal.Position(n).Longitude, scale); ok {
						a.Date, a.Natal = t, n
						out = append(out, a)
					}
				}
				next[g] = profiles[g].step(t)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Transit != out[j].Transit {
			return out[i].Transit < out[j].Transit
		}
		return out[i].Natal < out[j].Natal
	})
	return out, nil
}

// position fetches a transiting graha; Ketu is Rahu's opposite point.
func position(eph *ephemeris.Ephemeris, g model.Graha, jd float64) (ephemeris.Position, error) {
	if g != model.Ketu {
		return eph.SiderealPosition(jd, g, ephemeris.FlagSpeed)
	}
	p, err := eph.SiderealPosition(jd, model.Rahu, ephemeris.FlagSpeed)
	if err != nil {
		return p, err
	}
	p.Longitude = model.NormDeg(p.Longitude + 180)
	p.Latitude = -p.Latitude
	return p, nil
}

// match finds the closest aspect angle, measured from the transiting graha
// forward to the natal point, within the graha's orb.
func match(g model.Graha, pos ephemeris.Position, natalLon, scale float64) (Activation, bool) {
	p := profiles[g]
	sep := model.NormDeg(natalLon - pos.Longitude)
	best := Activation{Deviation: math.Inf(1)}
	try := func(angle float64, k Kind) {
		d := model.SepDeg(sep, angle)
		if d < best.Deviation {
			best = Activation{Aspect: k, Angle: angle, Deviation: d, Strength: Strength(g, k)}
		}
	}
	try(0, Conjunction)
	try(180, Opposition)
	for _, a := range p.special {
		try(a, Special)
	}
	if best.Deviation > p.orb*scale {
		return Activation{}, false
	}
	best.Transit = g
	best.TransitLongitude = pos.Longitude
	best.Retrograde = pos.Retrograde
	return best, true
}
