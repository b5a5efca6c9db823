// Package varga computes divisional charts from natal longitudes. Each
// division is one entry in a rule table; adding a varga is adding a row.
package varga

import (
	"math"

	"jyotish-systemv1/internal/model"
)

// Rule maps a natal sign and a zero-based part index to a divisional sign.
// Rules with equal parts set Start and the sign is Start(sign)+part; rules
// with unequal or non-sequential parts set Map instead.
type Rule struct {
	Division int
	Name     string
	Start    func(s model.Sign) model.Sign
	Map      func(s model.Sign, part int, deg float64) model.Sign
}

// Divisions lists the supported divisions in ascending order.
var Divisions = []int{1, 2, 3, 4, 7, 9, 10, 12, 16, 20, 24, 27, 30, 40, 45, 60}

var rules = map[int]Rule{
	1:  {Division: 1, Name: "Rasi", Start: same},
	2:  {Division: 2, Name: "Hora", Map: hora},
	3:  {Division: 3, Name: "Drekkana", Map: step(4)},
	4:  {Division: 4, Name: "Chaturthamsa", Map: step(3)},
	7:  {Division: 7, Name: "Saptamsa", Start: oddEven(0, 6)},
	9:  {Division: 9, Name: "Navamsa", Start: byModality(0, 8, 4)},
	10: {Division: 10, Name: "Dasamsa", Start: oddEven(0, 8)},
	12: {Division: 12, Name: "Dwadasamsa", Start: same},
	16: {Division: 16, Name: "Shodasamsa", Start: fromModality(model.Aries, model.Leo, model.Sagittarius)},
	20: {Division: 20, Name: "Vimsamsa", Start: fromModality(model.Aries, model.Sagittarius, model.Leo)},
	24: {Division: 24, Name: "Chaturvimsamsa", Start: func(s model.Sign) model.Sign {
		if s.IsOdd() {
			return model.Leo
		}
		return model.Cancer
	}},
	27: {Division: 27, Name: "Bhamsa", Start: fromElement},
	30: {Division: 30, Name: "Trimsamsa", Map: trimsamsa},
	40: {Division: 40, Name: "Khavedamsa", Start: fromModality(model.Aries, model.Leo, model.Sagittarius)},
	45: {Division: 45, Name: "Akshavedamsa", Start: fromModality(model.Aries, model.Leo, model.Sagittarius)},
	60: {Division: 60, Name: "Shashtiamsa", Start: fromModality(model.Aries, model.Leo, model.Sagittarius)},
}

// Lookup returns the rule for division n.
func Lookup(n int) (Rule, bool) {
	r, ok := rules[n]
	return r, ok
}

func same(s model.Sign) model.Sign { return s }

// oddEven starts classically odd signs at sign+odd and even signs at sign+even.
func oddEven(odd, even int) func(model.Sign) model.Sign {
	return func(s model.Sign) model.Sign {
		if s.IsOdd() {
			return s.Add(odd)
		}
		return s.Add(even)
	}
}

// byModality offsets the start from the sign itself.
func byModality(movable, fixed, dual int) func(model.Sign) model.Sign {
	return func(s model.Sign) model.Sign {
		return s.Add([3]int{movable, fixed, dual}[s.Modality()])
	}
}

// fromModality starts at a fixed sign chosen by modality.
func fromModality(movable, fixed, dual model.Sign) func(model.Sign) model.Sign {
	return func(s model.Sign) model.Sign {
		return [3]model.Sign{movable, fixed, dual}[s.Modality()]
	}
}

func fromElement(s model.Sign) model.Sign {
	return [4]model.Sign{model.Aries, model.Cancer, model.Libra, model.Capricorn}[s.Element()]
}

// step jumps k signs per part: the drekkana goes 1st, 5th, 9th.
func step(k int) func(model.Sign, int, float64) model.Sign {
	return func(s model.Sign, part int, _ float64) model.Sign {
		return s.Add(k * part)
	}
}

func hora(s model.Sign, part int, _ float64) model.Sign {
	if s.IsOdd() == (part == 0) {
		return model.Leo
	}
	return model.Cancer
}

type band struct {
	upTo float64
	sign model.Sign
}

// Trimsamsa bands. Odd signs: Mars, Saturn, Jupiter, Mercury, Venus over
// 5/5/8/7/5 degrees; even signs reverse the lords over 5/7/8/5/5. Each band
// maps to the ruling graha's odd sign in odd signs and its even sign in
// even signs.
var (
	trimsamsaOdd = []band{
		{5, model.Aries}, {10, model.Aquarius}, {18, model.Sagittarius}, {25, model.Gemini}, {30, model.Libra},
	}
	trimsamsaEven = []band{
		{5, model.Taurus}, {12, model.Virgo}, {20, model.Pisces}, {25, model.Capricorn}, {30, model.Scorpio},
	}
)

func trimsamsa(s model.Sign, _ int, deg float64) model.Sign {
	bands := trimsamsaEven
	if s.IsOdd() {
		bands = trimsamsaOdd
	}
	for _, b := range bands {
		if deg < b.upTo {
			return b.sign
		}
	}
	return bands[len(bands)-1].sign
}

// place returns the divisional sign of lon and its offset inside that
// sign, both from the same part computation.
func (r Rule) place(lon float64) (model.Sign, float64) {
	lon = model.NormDeg(lon)
	s := model.SignOf(lon)
	deg := lon - float64(s)*30
	x := deg * float64(r.Division) / 30
	p := int(math.Floor(x))
	if p >= r.Division {
		p = r.Division - 1
	}
	within := (x - float64(p)) * 30
	if within >= 30 {
		within = math.Nextafter(30, 0)
	}
	var sign model.Sign
	if r.Map != nil {
		sign = r.Map(s, p, deg).Norm()
	} else {
		sign = r.Start(s).Add(p)
	}
	return sign, within
}

// SignOf returns the divisional sign for a natal longitude under rule r.
func (r Rule) SignOf(lon float64) model.Sign {
	s, _ := r.place(lon)
	return s
}

// Longitude places lon inside its divisional sign: sign*30 + (lon*n mod 30).
func (r Rule) Longitude(lon float64) float64 {
	s, within := r.place(lon)
	return float64(s)*30 + within
}
