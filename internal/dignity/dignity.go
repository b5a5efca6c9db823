// Package dignity classifies each graha's placement (exaltation through
// debilitation), combustion by the Sun, and the natural, temporal and
// compound relationships between grahas.
package dignity

import (
	"fmt"

	"jyotish-systemv1/internal/model"
)

// Dignity of a graha in a sign, strongest first.
type Dignity int

const (
	Exalted Dignity = iota
	Moolatrikona
	Own
	Friend
	Neutral
	Enemy
	Debilitated
)

var dignityNames = [...]string{"exalted", "moolatrikona", "own", "friend", "neutral", "enemy", "debilitated"}

var multipliers = [...]float64{1.8, 1.5, 1.3, 1.1, 1.0, 0.8, 0.5}

func (d Dignity) String() string {
	if d < Exalted || d > Debilitated {
		return fmt.Sprintf("Dignity(%d)", int(d))
	}
	return dignityNames[d]
}

func (d Dignity) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Dignity) UnmarshalText(b []byte) error {
	i, err := indexOf(dignityNames[:], b, "dignity")
	*d = Dignity(i)
	return err
}

func indexOf(names []string, b []byte, kind string) (int, error) {
	for i, n := range names {
		if n == string(b) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, string(b))
}

// Multiplier is the strength factor in [0.5, 1.8].
func (d Dignity) Multiplier() float64 { return multipliers[d] }

// exaltation holds the exaltation sign and deepest degree.
type exaltation struct {
	sign model.Sign
	deg  float64
}

var exaltations = map[model.Graha]exaltation{
	model.Sun:     {model.Aries, 10},
	model.Moon:    {model.Taurus, 3},
	model.Mars:    {model.Capricorn, 28},
	model.Mercury: {model.Virgo, 15},
	model.Jupiter: {model.Cancer, 5},
	model.Venus:   {model.Pisces, 27},
	model.Saturn:  {model.Libra, 20},
	model.Rahu:    {model.Taurus, 20},
	model.Ketu:    {model.Scorpio, 20},
}

type window struct {
	sign     model.Sign
	from, to float64
}

var moolatrikona = map[model.Graha]window{
	model.Sun:     {model.Leo, 0, 20},
	model.Moon:    {model.Taurus, 3, 30},
	model.Mars:    {model.Aries, 0, 12},
	model.Mercury: {model.Virgo, 15, 20},
	model.Jupiter: {model.Sagittarius, 0, 10},
	model.Venus:   {model.Libra, 0, 15},
	model.Saturn:  {model.Aquarius, 0, 20},
}

// ExaltationPoint returns the sidereal longitude of deepest exaltation.
// Shadow points have none.
func ExaltationPoint(g model.Graha) (float64, bool) {
	e, ok := exaltations[g]
	if !ok {
		return 0, false
	}
	return float64(e.sign)*30 + e.deg, true
}

// ExaltationSign returns the sign of exaltation.
func ExaltationSign(g model.Graha) (model.Sign, bool) {
	e, ok := exaltations[g]
	return e.sign, ok
}

// Of classifies g at sidereal longitude lon. Precedence: exalted,
// debilitated, moolatrikona (inside its degree window), own sign, then the
// natural relationship with the sign lord. Shadow points are neutral.
func Of(g model.Graha, lon float64) Dignity {
	if g.IsShadow() {
		return Neutral
	}
	sign := model.SignOf(lon)
	deg := lon - float64(sign)*30
	if e, ok := exaltations[g]; ok {
		if sign == e.sign {
			return Exalted
		}
		if sign == e.sign.Add(6) {
			return Debilitated
		}
	}
	if w, ok := moolatrikona[g]; ok && sign == w.sign && deg >= w.from && deg < w.to {
		return Moolatrikona
	}
	lord := sign.Lord()
	if lord == g {
		return Own
	}
	switch Natural(g, lord) {
	case Friendly:
		return Friend
	case Hostile:
		return Enemy
	}
	return Neutral
}

// Combustion of a graha by proximity to the Sun.
type Combustion int

const (
	Normal Combustion = iota
	Combust
	Cazimi
)

var combustionNames = [...]string{"normal", "combust", "cazimi"}

func (c Combustion) String() string { return combustionNames[c] }

func (c Combustion) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Combustion) UnmarshalText(b []byte) error {
	i, err := indexOf(combustionNames[:], b, "combustion")
	*c = Combustion(i)
	return err
}

// cazimiOrb is 17 arcminutes.
const cazimiOrb = 17.0 / 60

// CombustionOrb returns the combustion orb in degrees. Mercury and Venus use
// a narrower orb when retrograde. The Sun and the nodes are never combust.
func CombustionOrb(g model.Graha, retrograde bool) (float64, bool) {
	switch g {
	case model.Moon:
		return 12, true
	case model.Mars:
		return 17, true
	case model.Mercury:
		if retrograde {
			return 12, true
		}
		return 14, true
	case model.Jupiter:
		return 11, true
	case model.Venus:
		if retrograde {
			return 8, true
		}
		return 10, true
	case model.Saturn:
		return 15, true
	}
	return 0, false
}

// CombustionOf compares a graha's longitude with the Sun's.
func CombustionOf(g model.Graha, lon, sunLon float64, retrograde bool) Combustion {
	orb, ok := CombustionOrb(g, retrograde)
	if !ok {
		return Normal
	}
	sep := model.SepDeg(lon, sunLon)
	switch {
	case sep <= cazimiOrb:
		return Cazimi
	case sep <= orb:
		return Combust
	}
	return Normal
}

// Status is the full dignity record for one graha in one chart.
type Status struct {
	Graha      model.Graha `json:"graha"`
	Sign       model.Sign  `json:"sign"`
	House      int         `json:"house"`
	Dignity    Dignity     `json:"dignity"`
	Multiplier float64     `json:"multiplier"`
	Combustion Combustion  `json:"combustion"`
	Retrograde bool        `json:"retrograde"`
}

// Assess computes the status of the nine grahas of a chart.
func Assess(c *model.NatalChart) map[model.Graha]Status {
	sun := c.Position(model.Sun).Longitude
	out := make(map[model.Graha]Status, len(model.Grahas))
	for _, g := range model.Grahas {
		p := c.Position(g)
		d := Of(g, p.Longitude)
		out[g] = Status{
			Graha:      g,
			Sign:       p.Sign,
			House:      p.House,
			Dignity:    d,
			Multiplier: d.Multiplier(),
			Combustion: CombustionOf(g, p.Longitude, sun, p.Retrograde),
			Retrograde: p.Retrograde,
		}
	}
	return out
}
