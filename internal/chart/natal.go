// Package chart builds the canonical natal chart. It is the only producer
// of model.NatalChart values; everything downstream reads them.
package chart

import (
	"time"

	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
	"jyotish-systemv1/internal/timeloc"
)

// fetched are the bodies read from the ephemeris; Ketu and the shadow points
// are derived.
var fetched = []model.Graha{
	model.Sun, model.Moon, model.Mars, model.Mercury,
	model.Jupiter, model.Venus, model.Saturn, model.Rahu,
}

// Raw is the astronomical input to Assemble: sidereal longitudes already
// corrected for ayanamsa, plus the day's sunrise and sunset.
type Raw struct {
	UT          time.Time
	JD          float64
	Location    model.Location
	OffsetHours float64
	Ayanamsa    float64
	Ascendant   float64
	Sunrise     float64
	Sunset      float64
	Weekday     time.Weekday

	// Bodies holds Sun..Saturn, Rahu, Gulika and Mandi. Ketu is derived.
	Bodies map[model.Graha]ephemeris.Position
}

// Build computes the natal chart for a normalized birth. Any ephemeris
// failure aborts the build; no partial chart is returned.
func Build(eph *ephemeris.Ephemeris, birth timeloc.Normalized) (*model.NatalChart, error) {
	if err := timeloc.ValidateLocation(birth.Location.Latitude, birth.Location.Longitude); err != nil {
		return nil, err
	}
	jd := ephemeris.JulianDay(birth.UT)
	lat, lon := birth.Location.Latitude, birth.Location.Longitude

	raw := Raw{
		UT:          birth.UT.UTC(),
		JD:          jd,
		Location:    birth.Location,
		OffsetHours: birth.OffsetHours,
		Ayanamsa:    eph.Ayanamsa(jd),
		Ascendant:   eph.SiderealAscendant(jd, lat, lon),
		Weekday:     birth.Local.Weekday(),
		Bodies:      make(map[model.Graha]ephemeris.Position, len(fetched)+2),
	}
	for _, g := range fetched {
		p, err := eph.SiderealPosition(jd, g, ephemeris.FlagSpeed)
		if err != nil {
			return nil, err
		}
		raw.Bodies[g] = p
	}

	midnight := ephemeris.JulianDay(timeloc.LocalMidnight(birth.Local, birth.OffsetHours))
	rise, set, err := eph.SunRiseSet(midnight, lat, lon)
	if err != nil {
		return nil, err
	}
	raw.Sunrise, raw.Sunset = rise, set

	span, err := timeOfDaySpan(eph, jd, midnight, lat, lon, rise, set)
	if err != nil {
		return nil, err
	}
	gulikaJD, mandiJD := span.saturnPortion(raw.Weekday)
	raw.Bodies[model.Gulika] = ephemeris.Position{Longitude: eph.SiderealAscendant(gulikaJD, lat, lon)}
	raw.Bodies[model.Mandi] = ephemeris.Position{Longitude: eph.SiderealAscendant(mandiJD, lat, lon)}

	return Assemble(raw)
}

// Assemble turns raw longitudes into a verified chart: Ketu, whole-sign
// houses, house placement and Indu Lagna.
func Assemble(r Raw) (*model.NatalChart, error) {
	for _, g := range append(append([]model.Graha{}, fetched...), model.Gulika, model.Mandi) {
		if _, ok := r.Bodies[g]; !ok {
			return nil, errs.Invalid(g.String(), "chart input is missing %s", g)
		}
	}
	asc := model.NormDeg(r.Ascendant)
	ascSign := model.SignOf(asc)

	c := &model.NatalChart{
		UT:            r.UT,
		JD:            r.JD,
		Location:      r.Location,
		OffsetHours:   r.OffsetHours,
		Ascendant:     asc,
		AscendantSign: ascSign,
		Ayanamsa:      r.Ayanamsa,
		Houses:        model.WholeSignHouses(ascSign, asc),
		Positions:     make(map[model.Graha]model.ChartPosition, len(model.AllPoints)),
		Sunrise:       r.Sunrise,
		Sunset:        r.Sunset,
		Weekday:       r.Weekday,
	}
	for g, p := range r.Bodies {
		if g == model.Ketu {
			continue
		}
		c.Positions[g] = model.NewPosition(p.Longitude, p.Latitude, p.Speed, p.Retrograde, ascSign)
	}
	rahu := r.Bodies[model.Rahu]
	c.Positions[model.Ketu] = model.NewPosition(rahu.Longitude+180, -rahu.Latitude, rahu.Speed, false, ascSign)

	c.InduLagna = InduLagna(ascSign, c.Positions[model.Moon].Sign)

	if err := Verify(c); err != nil {
		return nil, err
	}
	return c, nil
}
