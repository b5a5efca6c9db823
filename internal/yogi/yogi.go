// Package yogi derives the Sun+Moon sensitive points (Yogi, Avayogi,
// Dagdha), the Badhaka house and lord, and their influence on each house.
package yogi

import (
	"math"

	"jyotish-systemv1/internal/model"
)

// avayogiOffset is 186°40′.
const avayogiOffset = 186.0 + 40.0/60

// dagdhaOffset is measured from the Avayogi point.
const dagdhaOffset = 12.0

// Point is a sensitive degree and the lord of its sign.
type Point struct {
	Longitude float64     `json:"longitude"`
	Sign      model.Sign  `json:"sign"`
	Lord      model.Graha `json:"lord"`
}

func newPoint(lon float64) Point {
	lon = model.NormDeg(lon)
	s := model.SignOf(lon)
	return Point{Longitude: lon, Sign: s, Lord: s.Lord()}
}

// Points are the Yogi set for one chart.
type Points struct {
	Yogi          Point       `json:"yogi"`
	NakshatraLord model.Graha `json:"yogi_nakshatra_lord"`
	Avayogi       Point       `json:"avayogi"`
	Dagdha        Point       `json:"dagdha"`
	BadhakaHouse  int         `json:"badhaka_house"`
	BadhakaSign   model.Sign  `json:"badhaka_sign"`
	BadhakaLord   model.Graha `json:"badhaka_lord"`
}

// Compute derives the points from the natal Sun and Moon and the lagna.
func Compute(c *model.NatalChart) Points {
	y := newPoint(c.Position(model.Sun).Longitude + c.Position(model.Moon).Longitude)
	av := newPoint(y.Longitude + avayogiOffset)
	h := BadhakaHouse(c.AscendantSign)
	return Points{
		Yogi:          y,
		NakshatraLord: model.NakshatraOf(y.Longitude).Lord,
		Avayogi:       av,
		Dagdha:        newPoint(av.Longitude + dagdhaOffset),
		BadhakaHouse:  h,
		BadhakaSign:   c.House(h).Sign,
		BadhakaLord:   c.Lord(h),
	}
}

// BadhakaHouse is 11 for movable lagnas, 9 for fixed and 7 for dual.
func BadhakaHouse(lagna model.Sign) int {
	return [3]int{11, 9, 7}[lagna.Modality()]
}

// IsBadhaka reports whether house is the obstruction house.
func (p Points) IsBadhaka(house int) bool { return house == p.BadhakaHouse }

// Impact scores the Yogi set's influence on a house from 0 (obstructed) to
// 100 (supported); 50 is neutral. The house lord and the grahas resident in
// the house are compared with the Yogi, Avayogi and Dagdha lords and the
// Badhaka lord.
func (p Points) Impact(c *model.NatalChart, house int) float64 {
	lord := c.Lord(house)
	in := func(g model.Graha) bool { return c.Position(g).House == house }

	score := 50.0
	if lord == p.Yogi.Lord {
		score += 20
	}
	if in(p.Yogi.Lord) {
		score += 15
	}
	if lord == p.NakshatraLord || in(p.NakshatraLord) {
		score += 10
	}
	if lord == p.Avayogi.Lord {
		score -= 20
	}
	if in(p.Avayogi.Lord) {
		score -= 15
	}
	if lord == p.Dagdha.Lord || in(p.Dagdha.Lord) {
		score -= 10
	}
	if p.IsBadhaka(house) {
		score -= 15
	}
	if in(p.BadhakaLord) {
		score -= 10
	}
	return math.Max(0, math.Min(100, score))
}
