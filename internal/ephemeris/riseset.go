package ephemeris

import (
	"math"

	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/meeus/v3/rise"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"jyotish-systemv1/internal/errs"
)

// SunRiseSet returns the Julian Days of sunrise and sunset for the civil
// date whose local midnight is localMidnightJD (UT). Both events fall in
// [localMidnightJD, localMidnightJD+1). Days without a rise or set at the
// given latitude fail with EphemerisError.
//
// The Sun's apparent place comes from the meeus solar theory, not from the
// configured Source.
func (e *Ephemeris) SunRiseSet(localMidnightJD, lat, lon float64) (riseJD, setJD float64, err error) {
	// The local day straddles at most two UT days.
	day := math.Floor(localMidnightJD-0.5) + 0.5
	inDay := func(jd float64) bool { return jd >= localMidnightJD && jd < localMidnightJD+1 }
	var riseOK, setOK bool
	var lastErr error
	for _, d := range []float64{day, day + 1} {
		r, s, err := sunTimes(d, lat, lon)
		if err != nil {
			lastErr = err
			continue
		}
		if !riseOK && inDay(r) {
			riseJD, riseOK = r, true
		}
		if !setOK && inDay(s) {
			setJD, setOK = s, true
		}
	}
	switch {
	case riseOK && setOK:
		return riseJD, setJD, nil
	case lastErr != nil:
		return 0, 0, errs.Wrap(errs.KindEphemeris, lastErr, "sun does not rise or set at latitude %.2f", lat)
	default:
		return 0, 0, errs.New(errs.KindEphemeris, "no sunrise or sunset on this day at latitude %.2f", lat)
	}
}

// sunTimes returns the sunrise and sunset on the UT day starting at day0
// (a JD ending in .5).
func sunTimes(day0, lat, lon float64) (riseJD, setJD float64, err error) {
	ra := make([]unit.RA, 3)
	dec := make([]unit.Angle, 3)
	for i := range ra {
		ra[i], dec[i] = solar.ApparentEquatorial(day0 + float64(i-1))
	}
	// Keep right ascension continuous across 24h for the interpolation.
	for i := 1; i < 3; i++ {
		if ra[i] < ra[i-1] {
			ra[i] += unit.RA(2 * math.Pi)
		}
	}
	// meeus measures longitude positive west.
	pos := globe.Coord{Lat: unit.AngleFromDeg(lat), Lon: unit.AngleFromDeg(-lon)}
	deltaT := unit.TimeFromDay(dynamicalJD(day0) - day0)

	tRise, _, tSet, err := rise.Times(pos, deltaT, rise.Stdh0Solar, sidereal.Mean0UT(day0), ra, dec)
	if err != nil {
		return 0, 0, err
	}
	return day0 + tRise.Day(), day0 + tSet.Day(), nil
}
