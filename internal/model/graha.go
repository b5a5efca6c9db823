// Package model holds the closed domain records shared by every component:
// grahas, signs, chart positions, natal and divisional charts.
//
// Records are built once by their owning package (chart, varga) and are
// treated as immutable afterwards.
package model

import (
	"fmt"
	"strings"
)

// Graha identifies one of the nine grahas or one of the two shadow points.
type Graha int

const (
	Sun Graha = iota
	Moon
	Mars
	Mercury
	Jupiter
	Venus
	Saturn
	Rahu
	Ketu
	Gulika
	Mandi
)

var grahaNames = [...]string{
	"Sun", "Moon", "Mars", "Mercury", "Jupiter", "Venus", "Saturn",
	"Rahu", "Ketu", "Gulika", "Mandi",
}

// Planets are the seven classical bodies, Sun..Saturn.
var Planets = []Graha{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn}

// Grahas are the nine true grahas in canonical order.
var Grahas = []Graha{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn, Rahu, Ketu}

// AllPoints is every point carried by a chart: nine grahas plus Gulika and Mandi.
var AllPoints = []Graha{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn, Rahu, Ketu, Gulika, Mandi}

func (g Graha) String() string {
	if g < 0 || int(g) >= len(grahaNames) {
		return fmt.Sprintf("Graha(%d)", int(g))
	}
	return grahaNames[g]
}

// Valid reports whether g is a known graha or shadow point.
func (g Graha) Valid() bool { return g >= Sun && g <= Mandi }

// IsNode is true for Rahu and Ketu.
func (g Graha) IsNode() bool { return g == Rahu || g == Ketu }

// IsShadow is true for the time-of-day points Gulika and Mandi.
func (g Graha) IsShadow() bool { return g == Gulika || g == Mandi }

// IsPlanet is true for the seven classical bodies.
func (g Graha) IsPlanet() bool { return g >= Sun && g <= Saturn }

// IsNaturalBenefic follows the fixed classical grouping: Jupiter, Venus,
// Mercury and Moon are benefic, everything else malefic.
func (g Graha) IsNaturalBenefic() bool {
	switch g {
	case Jupiter, Venus, Mercury, Moon:
		return true
	}
	return false
}

func (g Graha) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid graha %d", int(g))
	}
	return []byte(g.String()), nil
}

func (g *Graha) UnmarshalText(b []byte) error {
	v, err := ParseGraha(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// ParseGraha accepts a case-insensitive graha name.
func ParseGraha(s string) (Graha, error) {
	for i, n := range grahaNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return Graha(i), nil
		}
	}
	return 0, fmt.Errorf("unknown graha %q", s)
}
