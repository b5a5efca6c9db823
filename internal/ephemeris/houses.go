package ephemeris

import (
	"math"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"

	"jyotish-systemv1/internal/model"
)

// Obliquity is the mean obliquity of the ecliptic in degrees.
func Obliquity(jd float64) float64 {
	return nutation.MeanObliquity(dynamicalJD(jd)).Deg()
}

// GMST is Greenwich mean sidereal time in degrees.
func GMST(jd float64) float64 {
	return sidereal.Mean(jd).Angle().Deg()
}

// TropicalAscendant is the ecliptic longitude rising on the eastern horizon.
func TropicalAscendant(jd, lat, lon float64) float64 {
	ramc := model.NormDeg(GMST(jd) + lon)
	eps := Obliquity(jd)
	y := cosd(ramc)
	x := -(sind(ramc)*cosd(eps) + math.Tan(lat*math.Pi/180)*sind(eps))
	return model.NormDeg(atan2d(y, x))
}

// SiderealAscendant subtracts the ayanamsa from the tropical ascendant.
func (e *Ephemeris) SiderealAscendant(jd, lat, lon float64) float64 {
	return model.NormDeg(TropicalAscendant(jd, lat, lon) - e.Ayanamsa(jd))
}

// equatorial converts an ecliptic longitude (latitude 0) to right ascension
// and declination.
func equatorial(lambda, jd float64) (ra, dec float64) {
	se, ce := math.Sincos(Obliquity(jd) * math.Pi / 180)
	a, d := coord.EclToEq(unit.AngleFromDeg(lambda), 0, se, ce)
	return a.Deg(), d.Deg()
}
