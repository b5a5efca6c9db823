// Package charttest builds natal charts for tests in other packages.
package charttest

import (
	"testing"
	"time"

	"jyotish-systemv1/internal/chart"
	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/model"
	"jyotish-systemv1/internal/timeloc"
)

// Fixture describes a synthetic chart. Longitudes must cover Sun..Saturn
// and Rahu; Gulika and Mandi default to the ascendant.
type Fixture struct {
	Ascendant  float64
	Longitudes map[model.Graha]float64
	Retrograde []model.Graha
	JD         float64 // default J2000
	Night      bool    // birth after sunset; daytime otherwise
	Weekday    time.Weekday
}

// New assembles the fixture through chart.Assemble and fails the test on error.
func New(t testing.TB, f Fixture) *model.NatalChart {
	t.Helper()
	jd := f.JD
	if jd == 0 {
		jd = 2451545.0
	}
	rise, set := jd-0.25, jd+0.25
	if f.Night {
		rise, set = jd+0.2, jd+0.7
	}
	retro := make(map[model.Graha]bool, len(f.Retrograde))
	for _, g := range f.Retrograde {
		retro[g] = true
	}
	bodies := make(map[model.Graha]ephemeris.Position, len(f.Longitudes)+2)
	for g, lon := range f.Longitudes {
		speed := 1.0
		switch {
		case g == model.Rahu:
			speed = -0.053
		case retro[g]:
			speed = -0.1
		}
		bodies[g] = ephemeris.Position{Longitude: lon, Speed: speed, Retrograde: retro[g]}
	}
	for _, g := range []model.Graha{model.Gulika, model.Mandi} {
		if _, ok := bodies[g]; !ok {
			bodies[g] = ephemeris.Position{Longitude: f.Ascendant}
		}
	}
	c, err := chart.Assemble(chart.Raw{
		UT:        ephemeris.TimeFromJulianDay(jd),
		JD:        jd,
		Location:  model.Location{Latitude: 28.6139, Longitude: 77.2090},
		Ayanamsa:  23.85709,
		Ascendant: f.Ascendant,
		Sunrise:   rise,
		Sunset:    set,
		Weekday:   f.Weekday,
		Bodies:    bodies,
	})
	if err != nil {
		t.Fatalf("charttest: %v", err)
	}
	return c
}

// Delhi1985 is the reference birth: 1985-08-15 14:30 IST, New Delhi.
var Delhi1985 = timeloc.Birth{
	Date:      "1985-08-15",
	Time:      "14:30",
	Timezone:  "UTC+5:30",
	Latitude:  28.6139,
	Longitude: 77.2090,
}

// Build computes a real chart with the analytic ephemeris.
func Build(t testing.TB, b timeloc.Birth) *model.NatalChart {
	t.Helper()
	n, err := timeloc.Normalize(b)
	if err != nil {
		t.Fatalf("charttest: normalize: %v", err)
	}
	c, err := chart.Build(ephemeris.New(nil), n)
	if err != nil {
		t.Fatalf("charttest: build: %v", err)
	}
	return c
}
