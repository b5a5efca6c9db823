package model

import (
	"fmt"
	"math"
)

// Sign is a rashi, 0 (Aries) .. 11 (Pisces).
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// Element of a sign.
type Element int

const (
	Fire Element = iota
	Earth
	Air
	Water
)

func (e Element) String() string {
	return [...]string{"fire", "earth", "air", "water"}[e]
}

// Modality of a sign.
type Modality int

const (
	Movable Modality = iota
	Fixed
	Dual
)

func (m Modality) String() string {
	return [...]string{"movable", "fixed", "dual"}[m]
}

var signLords = [12]Graha{Mars, Venus, Mercury, Moon, Sun, Mercury, Venus, Mars, Jupiter, Saturn, Saturn, Jupiter}

func (s Sign) String() string {
	if s < 0 || s > 11 {
		return fmt.Sprintf("Sign(%d)", int(s))
	}
	return signNames[s]
}

func (s Sign) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Sign) UnmarshalText(b []byte) error {
	for i, n := range signNames {
		if n == string(b) {
			*s = Sign(i)
			return nil
		}
	}
	return fmt.Errorf("unknown sign %q", string(b))
}

// Lord returns the classical ruler of the sign.
func (s Sign) Lord() Graha { return signLords[s.Norm()] }

// Element cycles fire, earth, air, water from Aries.
func (s Sign) Element() Element { return Element(int(s.Norm()) % 4) }

// Modality cycles movable, fixed, dual from Aries.
func (s Sign) Modality() Modality { return Modality(int(s.Norm()) % 3) }

// IsOdd reports a classically odd (masculine) sign: Aries, Gemini, Leo, ...
// These have even zero-based indices.
func (s Sign) IsOdd() bool { return s.Norm()%2 == 0 }

// Add moves n signs forward (negative n moves backward), wrapping.
func (s Sign) Add(n int) Sign { return Sign(int(s) + n).Norm() }

// Norm wraps any integer sign into 0..11.
func (s Sign) Norm() Sign {
	v := int(s) % 12
	if v < 0 {
		v += 12
	}
	return Sign(v)
}

// HouseFrom counts houses from s to other, inclusive: the same sign is 1.
func (s Sign) HouseFrom(other Sign) int {
	return int(other.Add(-int(s))) + 1
}

// SignOf returns floor(lon/30) for a longitude wrapped into [0,360).
func SignOf(lon float64) Sign {
	return Sign(int(math.Floor(NormDeg(lon) / 30)))
}

// NormDeg wraps an angle into [0,360).
func NormDeg(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	if x >= 360 {
		x = 0
	}
	return x
}

// SepDeg is the shortest angular distance between a and b, in [0,180].
func SepDeg(a, b float64) float64 {
	d := math.Abs(NormDeg(a) - NormDeg(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}
