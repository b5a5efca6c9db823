// Package house scores each of the twelve houses of a chart from its lord,
// residents, aspects, Sarvashtakavarga bindus and position, adjusted by the
// Yogi set.
package house

import (
	"fmt"
	"math"

	"jyotish-systemv1/internal/analysis"
	"jyotish-systemv1/internal/dignity"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

// Component weights of the house score.
const (
	wLord       = 0.35
	wResidents  = 0.25
	wAspects    = 0.20
	wSign       = 0.10
	wPositional = 0.10
)

// yogiWeight scales the Yogi impact's deviation from neutral.
const yogiWeight = 0.1

// Positional is the intrinsic strength of each house.
var Positional = [13]float64{0, 90, 60, 55, 80, 85, 35, 75, 25, 90, 85, 70, 30}

// Significations are the matters each house governs.
var Significations = [13][]string{
	{},
	{"self", "health", "appearance", "personality"},
	{"wealth", "family", "speech", "food"},
	{"courage", "siblings", "communication", "short journeys"},
	{"home", "mother", "property", "vehicles", "education"},
	{"children", "creativity", "intelligence", "romance", "speculation"},
	{"illness", "enemies", "debts", "service"},
	{"marriage", "partnerships", "business"},
	{"longevity", "transformation", "inheritance", "occult"},
	{"fortune", "father", "dharma", "higher learning", "long journeys"},
	{"career", "status", "authority", "karma"},
	{"gains", "income", "friends", "aspirations"},
	{"expenses", "losses", "foreign lands", "liberation"},
}

// Resident is a graha occupying the house.
type Resident struct {
	Graha         model.Graha      `json:"graha"`
	Dignity       dignity.Dignity  `json:"dignity"`
	Compatibility dignity.Compound `json:"compatibility"` // toward the house lord
	Score         float64          `json:"score"`
}

// Aspect is a graha casting its sight on the house from elsewhere.
type Aspect struct {
	Graha     model.Graha `json:"graha"`
	FromHouse int         `json:"from_house"`
	Benefic   bool        `json:"benefic"`
}

// Report is the analysis of one house.
type Report struct {
	House       int             `json:"house"`
	Sign        model.Sign      `json:"sign"`
	Lord        model.Graha     `json:"lord"`
	LordHouse   int             `json:"lord_house"`
	LordDignity dignity.Dignity `json:"lord_dignity"`
	Residents   []Resident      `json:"residents"`
	Aspects     []Aspect        `json:"aspects"`
	Bindus      int             `json:"bindus"`

	LordScore       float64 `json:"lord_score"`
	ResidentScore   float64 `json:"resident_score"`
	AspectScore     float64 `json:"aspect_score"`
	SignScore       float64 `json:"sign_score"`
	PositionalScore float64 `json:"positional_score"`
	YogiImpact      float64 `json:"yogi_impact"`
	Badhaka         bool    `json:"badhaka"`

	Score          float64  `json:"score"`
	Grade          string   `json:"grade"`
	Significations []string `json:"significations"`
}

func (r Report) String() string {
	return fmt.Sprintf("house %d (%s, lord %s): %.1f %s", r.House, r.Sign, r.Lord, r.Score, r.Grade)
}

// Analyze scores house h (1..12).
func Analyze(e *analysis.Enriched, h int) (Report, error) {
	if h < 1 || h > 12 {
		return Report{}, errs.Invalid(fmt.Sprint(h), "house must be 1..12")
	}
	c := e.Natal
	lord := c.Lord(h)
	ls := e.Dignity(lord)
	r := Report{
		House:          h,
		Sign:           c.House(h).Sign,
		Lord:           lord,
		LordHouse:      ls.House,
		LordDignity:    ls.Dignity,
		Bindus:         e.Ashtakavarga.Bindus(c.House(h).Sign),
		YogiImpact:     e.Yogi.Impact(c, h),
		Badhaka:        e.Yogi.IsBadhaka(h),
		Significations: Significations[h],
	}

	r.LordScore = lordScore(e, h, lord)
	r.Residents, r.ResidentScore = residents(e, h, lord)
	r.Aspects, r.AspectScore = aspects(e, h, lord)
	r.SignScore = clamp(50 + float64(r.Bindus-28)*5)
	r.PositionalScore = Positional[h]

	score := wLord*r.LordScore +
		wResidents*r.ResidentScore +
		wAspects*r.AspectScore +
		wSign*r.SignScore +
		wPositional*r.PositionalScore
	score += (r.YogiImpact - 50) * yogiWeight
	r.Score = clamp(score)
	r.Grade = Grade(r.Score)
	return r, nil
}

// AnalyzeAll scores the twelve houses in order.
func AnalyzeAll(e *analysis.Enriched) [12]Report {
	var out [12]Report
	for h := 1; h <= 12; h++ {
		out[h-1], _ = Analyze(e, h)
	}
	return out
}

// Grade maps a 0..100 score onto A+..F.
func Grade(score float64) string {
	switch {
	case score >= 85:
		return "A+"
	case score >= 75:
		return "A"
	case score >= 65:
		return "B+"
	case score >= 55:
		return "B"
	case score >= 45:
		return "C"
	case score >= 35:
		return "D"
	}
	return "F"
}

// dignityScore maps a dignity multiplier 0.5..1.8 onto 0..100.
func dignityScore(m float64) float64 { return clamp((m - 0.5) / 1.3 * 100) }

// compatibilityScore maps a compound relationship onto 0..100.
func compatibilityScore(c dignity.Compound) float64 { return float64(int(c)+2) * 25 }

func lordScore(e *analysis.Enriched, h int, lord model.Graha) float64 {
	st := e.Dignity(lord)
	v := 0.6*dignityScore(st.Multiplier) + 0.4*Positional[st.House]
	if st.House == h {
		v += 10
	}
	if st.Combustion == dignity.Combust {
		v -= 15
	}
	if p, ok := e.Shadbala.Planets[lord]; ok && p.MeetsRequired {
		v += 5
	}
	return clamp(v)
}

func residents(e *analysis.Enriched, h int, lord model.Graha) ([]Resident, float64) {
	occ := e.Natal.Occupants(h)
	if len(occ) == 0 {
		return nil, 50
	}
	out := make([]Resident, 0, len(occ))
	sum := 0.0
	for _, g := range occ {
		st := e.Dignity(g)
		res := Resident{Graha: g, Dignity: st.Dignity}
		compat := 100.0
		if g != lord {
			res.Compatibility = e.Relations.Between(g, lord)
			compat = compatibilityScore(res.Compatibility)
		} else {
			res.Compatibility = dignity.GreatFriend
		}
		res.Score = 0.6*dignityScore(st.Multiplier) + 0.4*compat
		sum += res.Score
		out = append(out, res)
	}
	return out, sum / float64(len(out))
}

func aspects(e *analysis.Enriched, h int, lord model.Graha) ([]Aspect, float64) {
	c := e.Natal
	target := c.House(h).Sign
	var out []Aspect
	v := 50.0
	for _, g := range model.Grahas {
		p := c.Position(g)
		if p.House == h || !g.Aspects(p.Sign, target) {
			continue
		}
		out = append(out, Aspect{Graha: g, FromHouse: p.House, Benefic: g.IsNaturalBenefic()})
		switch {
		case g == lord:
			v += 15
		case g == model.Jupiter:
			v += 20
		case g.IsNaturalBenefic():
			v += 10
		default:
			v -= 10
		}
	}
	return out, clamp(v)
}

func clamp(v float64) float64 { return math.Max(0, math.Min(100, v)) }
