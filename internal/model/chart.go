package model

import (
	"math"
	"sort"
	"time"
)

// Location is a geographic position in decimal degrees, east and north positive.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ChartPosition places one point in a chart.
type ChartPosition struct {
	Longitude  float64   `json:"longitude"` // sidereal, [0,360)
	Latitude   float64   `json:"latitude"`
	Speed      float64   `json:"speed"` // deg/day
	Sign       Sign      `json:"sign"`
	Degree     float64   `json:"degree"` // within sign, [0,30)
	House      int       `json:"house"`  // 1..12, whole sign
	Retrograde bool      `json:"retrograde"`
	Nakshatra  Nakshatra `json:"nakshatra"`
}

// NewPosition derives sign, degree, house and nakshatra from a longitude
// and the ascendant sign.
func NewPosition(lon, lat, speed float64, retro bool, asc Sign) ChartPosition {
	lon = NormDeg(lon)
	sign := SignOf(lon)
	return ChartPosition{
		Longitude:  lon,
		Latitude:   lat,
		Speed:      speed,
		Sign:       sign,
		Degree:     lon - float64(sign)*30,
		House:      asc.HouseFrom(sign),
		Retrograde: retro,
		Nakshatra:  NakshatraOf(lon),
	}
}

// HouseCell is one whole-sign house.
type HouseCell struct {
	Number int     `json:"number"` // 1..12
	Sign   Sign    `json:"sign"`
	Cusp   float64 `json:"cusp"` // sign start + ascendant degree
}

// NatalChart is the canonical chart for one birth. It is built by package
// chart and must not be modified afterwards; every derived artifact is a
// pure function of it.
type NatalChart struct {
	UT          time.Time `json:"ut"`
	JD          float64   `json:"jd"`
	Location    Location  `json:"location"`
	OffsetHours float64   `json:"offset_hours"`

	Ascendant     float64 `json:"ascendant"`
	AscendantSign Sign    `json:"ascendant_sign"`
	Ayanamsa      float64 `json:"ayanamsa"`

	Houses    [12]HouseCell           `json:"houses"`
	Positions map[Graha]ChartPosition `json:"positions"`

	Sunrise   float64      `json:"sunrise_jd"`
	Sunset    float64      `json:"sunset_jd"`
	Weekday   time.Weekday `json:"weekday"` // civil local weekday of the birth
	InduLagna Sign         `json:"indu_lagna"`
}

// House returns house h (1..12).
func (c *NatalChart) House(h int) HouseCell { return c.Houses[(h-1+120)%12] }

// Position returns the placement of g.
func (c *NatalChart) Position(g Graha) ChartPosition { return c.Positions[g] }

// Lord returns the ruler of house h.
func (c *NatalChart) Lord(h int) Graha { return c.House(h).Sign.Lord() }

// Occupants lists the nine grahas in house h in canonical order. Shadow
// points are excluded.
func (c *NatalChart) Occupants(h int) []Graha { return occupants(c.Positions, h) }

// IsDaytime reports whether the birth instant falls between sunrise and sunset.
func (c *NatalChart) IsDaytime() bool { return c.JD >= c.Sunrise && c.JD < c.Sunset }

// Elongation is the Moon's angular distance from the Sun in [0,180].
func (c *NatalChart) Elongation() float64 {
	return SepDeg(c.Positions[Moon].Longitude, c.Positions[Sun].Longitude)
}

// DivisionalChart has the natal shape with a division number.
type DivisionalChart struct {
	Division      int                     `json:"division"`
	Name          string                  `json:"name"`
	AscendantSign Sign                    `json:"ascendant_sign"`
	Houses        [12]HouseCell           `json:"houses"`
	Positions     map[Graha]ChartPosition `json:"positions"`
}

// House returns house h (1..12).
func (d *DivisionalChart) House(h int) HouseCell { return d.Houses[(h-1+120)%12] }

// Position returns the placement of g.
func (d *DivisionalChart) Position(g Graha) ChartPosition { return d.Positions[g] }

// Occupants lists the nine grahas in house h.
func (d *DivisionalChart) Occupants(h int) []Graha { return occupants(d.Positions, h) }

// WholeSignHouses lays out twelve houses from the ascendant sign.
func WholeSignHouses(asc Sign, ascDegree float64) [12]HouseCell {
	var hs [12]HouseCell
	for k := 1; k <= 12; k++ {
		s := asc.Add(k - 1)
		hs[k-1] = HouseCell{Number: k, Sign: s, Cusp: float64(s)*30 + math.Mod(ascDegree, 30)}
	}
	return hs
}

func occupants(pos map[Graha]ChartPosition, h int) []Graha {
	var out []Graha
	for _, g := range Grahas {
		if p, ok := pos[g]; ok && p.House == h {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
