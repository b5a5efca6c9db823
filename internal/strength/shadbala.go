// Package strength computes Shadbala, the six-fold strength of the seven
// planets, and the Ashtakavarga bindu tables.
package strength

import (
	"math"

	"jyotish-systemv1/internal/dignity"
	"jyotish-systemv1/internal/model"
)

// Ceilings in virupas. Drik may also go negative down to -drikCeiling.
const (
	sthanaCeiling     = 180
	digCeiling        = 60
	kalaCeiling       = 180
	chestaCeiling     = 60
	naisargikaCeiling = 60
	drikCeiling       = 60
)

var naisargika = map[model.Graha]float64{
	model.Sun:     60,
	model.Moon:    51.43,
	model.Venus:   42.85,
	model.Jupiter: 34.28,
	model.Mercury: 25.70,
	model.Mars:    17.14,
	model.Saturn:  8.57,
}

// RequiredRupas is the classical minimum for a planet to be considered strong.
var RequiredRupas = map[model.Graha]float64{
	model.Sun:     6.5,
	model.Moon:    6,
	model.Mars:    5,
	model.Mercury: 7,
	model.Jupiter: 6.5,
	model.Venus:   5.5,
	model.Saturn:  5,
}

// digPeak is the house of full directional strength.
var digPeak = map[model.Graha]int{
	model.Sun:     10,
	model.Mars:    10,
	model.Moon:    4,
	model.Venus:   4,
	model.Mercury: 1,
	model.Jupiter: 1,
	model.Saturn:  7,
}

// drekkanaGender: 0 male (1st decanate), 1 neuter (2nd), 2 female (3rd).
var drekkanaGender = map[model.Graha]int{
	model.Sun: 0, model.Mars: 0, model.Jupiter: 0,
	model.Mercury: 1, model.Saturn: 1,
	model.Moon: 2, model.Venus: 2,
}

// Sthana is positional strength and its parts.
type Sthana struct {
	Uccha    float64 `json:"uccha"`
	Kendra   float64 `json:"kendra"`
	OwnSign  float64 `json:"own_sign"`
	Drekkana float64 `json:"drekkana"`
	Total    float64 `json:"total"`
}

// Kala is temporal strength and its parts.
type Kala struct {
	Nathonnatha float64 `json:"nathonnatha"`
	Paksha      float64 `json:"paksha"`
	Total       float64 `json:"total"`
}

// Planet is the full Shadbala record for one planet.
type Planet struct {
	Graha         model.Graha `json:"graha"`
	Sthana        Sthana      `json:"sthana"`
	Dig           float64     `json:"dig"`
	Kala          Kala        `json:"kala"`
	Chesta        float64     `json:"chesta"`
	Naisargika    float64     `json:"naisargika"`
	Drik          float64     `json:"drik"`
	Virupas       float64     `json:"virupas"`
	Rupas         float64     `json:"rupas"`
	Required      float64     `json:"required"`
	MeetsRequired bool        `json:"meets_required"`
	Grade         string      `json:"grade"`
}

// Shadbala is the report for the seven planets.
type Shadbala struct {
	Planets   map[model.Graha]Planet `json:"planets"`
	Strongest model.Graha            `json:"strongest"`
	Weakest   model.Graha            `json:"weakest"`
}

// ComputeShadbala scores the seven planets of a chart.
func ComputeShadbala(c *model.NatalChart) Shadbala {
	rep := Shadbala{Planets: make(map[model.Graha]Planet, len(model.Planets))}
	best, worst := math.Inf(-1), math.Inf(1)
	for _, g := range model.Planets {
		p := planet(c, g)
		rep.Planets[g] = p
		if p.Rupas > best {
			best, rep.Strongest = p.Rupas, g
		}
		if p.Rupas < worst {
			worst, rep.Weakest = p.Rupas, g
		}
	}
	return rep
}

func planet(c *model.NatalChart, g model.Graha) Planet {
	pos := c.Position(g)
	p := Planet{
		Graha:      g,
		Sthana:     sthana(g, pos),
		Dig:        clamp(dig(g, pos.House), 0, digCeiling),
		Kala:       kala(c, g),
		Chesta:     clamp(chesta(c, g, pos), 0, chestaCeiling),
		Naisargika: clamp(naisargika[g], 0, naisargikaCeiling),
		Drik:       clamp(drik(c, g), -drikCeiling, drikCeiling),
		Required:   RequiredRupas[g],
	}
	p.Virupas = p.Sthana.Total + p.Dig + p.Kala.Total + p.Chesta + p.Naisargika + p.Drik
	p.Rupas = math.Max(0, p.Virupas) / 60
	p.MeetsRequired = p.Rupas >= p.Required
	p.Grade = Grade(p.Rupas)
	return p
}

func sthana(g model.Graha, pos model.ChartPosition) Sthana {
	var s Sthana
	if ex, ok := dignity.ExaltationPoint(g); ok {
		s.Uccha = 60 * (1 - model.SepDeg(pos.Longitude, ex)/180)
	}
	switch pos.House % 3 {
	case 1: // 1, 4, 7, 10
		s.Kendra = 60
	case 2: // 2, 5, 8, 11
		s.Kendra = 30
	default:
		s.Kendra = 15
	}
	if pos.Sign.Lord() == g {
		s.OwnSign = 30
	}
	if int(pos.Degree/10) == drekkanaGender[g] {
		s.Drekkana = 15
	}
	s.Total = clamp(s.Uccha+s.Kendra+s.OwnSign+s.Drekkana, 0, sthanaCeiling)
	return s
}

// dig is 60 at the peak house, 0 at the opposite house and linear in the
// house distance between, never below 15.
func dig(g model.Graha, house int) float64 {
	d := house - digPeak[g]
	if d < 0 {
		d = -d
	}
	if d > 6 {
		d = 12 - d
	}
	switch d {
	case 0:
		return 60
	case 6:
		return 0
	}
	return math.Max(15, 60*float64(6-d)/6)
}

func kala(c *model.NatalChart, g model.Graha) Kala {
	var k Kala
	day := c.IsDaytime()
	switch g {
	case model.Mercury:
		k.Nathonnatha = 60
	case model.Sun, model.Jupiter, model.Venus:
		if day {
			k.Nathonnatha = 60
		}
	default:
		if !day {
			k.Nathonnatha = 60
		}
	}
	waxing := c.Elongation() / 3
	if g.IsNaturalBenefic() {
		k.Paksha = waxing
	} else {
		k.Paksha = 60 - waxing
	}
	if g == model.Moon {
		k.Paksha *= 2
	}
	k.Total = clamp(k.Nathonnatha+k.Paksha, 0, kalaCeiling)
	return k
}

func chesta(c *model.NatalChart, g model.Graha, pos model.ChartPosition) float64 {
	switch g {
	case model.Sun:
		return 60
	case model.Moon:
		return c.Elongation() / 180 * 60
	}
	if pos.Retrograde {
		return 60
	}
	return 15
}

// drik adds 10 for each natural benefic planet aspecting g and subtracts
// 10 for each malefic.
func drik(c *model.NatalChart, g model.Graha) float64 {
	target := c.Position(g).Sign
	var sum float64
	for _, a := range model.Planets {
		if a == g || !a.Aspects(c.Position(a).Sign, target) {
			continue
		}
		if a.IsNaturalBenefic() {
			sum += 10
		} else {
			sum -= 10
		}
	}
	return sum
}

// Grade maps total rupas to a four-step ladder.
func Grade(rupas float64) string {
	switch {
	case rupas >= 6:
		return "excellent"
	case rupas >= 4.5:
		return "good"
	case rupas >= 3:
		return "average"
	}
	return "weak"
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
