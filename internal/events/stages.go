package events

import (
	"math"

	"jyotish-systemv1/internal/model"
	"jyotish-systemv1/internal/transit"
)

// Score constants.
const (
	base            = 50.0
	mahaBonus       = 15.0
	antaraBonus     = 10.0
	transitFloor    = 60.0
	transitWeight   = 0.3
	transitCap      = 25.0
	yogiWeight      = 0.2
	solarAttenuator = 0.7
)

// Probability buckets a score.
type Probability string

const (
	VeryHigh Probability = "Very High"
	High     Probability = "High"
	Medium   Probability = "Medium"
	Low      Probability = "Low"
	VeryLow  Probability = "Very Low"
)

// ProbabilityOf maps a 0..100 score onto the ladder.
func ProbabilityOf(score float64) Probability {
	switch {
	case score >= 85:
		return VeryHigh
	case score >= 75:
		return High
	case score >= 60:
		return Medium
	case score >= 45:
		return Low
	}
	return VeryLow
}

// IsEvent reports whether a probability is reported as an event.
func (p Probability) IsEvent() bool { return p == VeryHigh || p == High || p == Medium }

// ActivationSet is the house lord, the residents and every graha aspecting
// the house, in canonical order.
func ActivationSet(c *model.NatalChart, h int) []model.Graha {
	lord := c.Lord(h)
	target := c.House(h).Sign
	var out []model.Graha
	for _, g := range model.Grahas {
		p := c.Position(g)
		if g == lord || p.House == h || g.Aspects(p.Sign, target) {
			out = append(out, g)
		}
	}
	return out
}

// DashaFilter keeps the grahas ruling at least one active period.
func DashaFilter(activated, lords []model.Graha) []model.Graha {
	var out []model.Graha
	for _, g := range activated {
		if contains(lords, g) {
			out = append(out, g)
		}
	}
	return out
}

// TransitFilter keeps the grahas that appear, transiting or natal, in one of
// the month's activations.
func TransitFilter(grahas []model.Graha, acts []transit.Activation) []model.Graha {
	var out []model.Graha
	for _, g := range grahas {
		for _, a := range acts {
			if a.Transit == g || a.Natal == g {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

// SolarActivation reports whether the transiting Sun occupies or aspects
// (7th) the house sign in any of the given signs.
func SolarActivation(houseSign model.Sign, sunSigns []model.Sign) bool {
	for _, s := range sunSigns {
		if s == houseSign || model.Sun.Aspects(s, houseSign) {
			return true
		}
	}
	return false
}

// Inputs are the stage results feeding the score of one house in one month.
type Inputs struct {
	MahaRelevant   bool
	AntaraRelevant bool
	Strengths      []float64 // strengths of activations touching the filtered grahas
	YogiImpact     float64
	Solar          bool
}

// Breakdown is a scored house.
type Breakdown struct {
	Dasha       float64     `json:"dasha"`
	Transit     float64     `json:"transit"`
	Yogi        float64     `json:"yogi"`
	Score       float64     `json:"score"`
	Probability Probability `json:"probability"`
}

// Score combines the stage results.
func Score(in Inputs) Breakdown {
	var b Breakdown
	if in.MahaRelevant {
		b.Dasha += mahaBonus
	}
	if in.AntaraRelevant {
		b.Dasha += antaraBonus
	}
	sum := 0.0
	for _, s := range in.Strengths {
		if s > transitFloor {
			sum += s
		}
	}
	b.Transit = math.Min(transitCap, sum*transitWeight)
	b.Yogi = (in.YogiImpact - 50) * yogiWeight

	score := base + b.Dasha + b.Transit + b.Yogi
	if !in.Solar {
		score = base + (score-base)*solarAttenuator
	}
	b.Score = math.Max(0, math.Min(100, score))
	b.Probability = ProbabilityOf(b.Score)
	return b
}

func contains(gs []model.Graha, g model.Graha) bool {
	for _, x := range gs {
		if x == g {
			return true
		}
	}
	return false
}
