package chart_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"jyotish-systemv1/internal/chart"
	"jyotish-systemv1/internal/chart/charttest"
	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
	"jyotish-systemv1/internal/timeloc"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol %.6f)", label, got, want, tol)
	}
}

func TestBuild_Delhi1985(t *testing.T) {
	c := charttest.Build(t, charttest.Delhi1985)

	assertClose(t, "jd", c.JD, 2446292.875, 1e-9)
	assertClose(t, "ascendant", c.Ascendant, 230.547, 0.01)
	if c.AscendantSign != model.Scorpio {
		t.Errorf("lagna: got %s, want Scorpio", c.AscendantSign)
	}
	if c.Weekday != time.Thursday {
		t.Errorf("weekday: got %s", c.Weekday)
	}

	want := map[model.Graha]struct {
		sign  model.Sign
		house int
	}{
		model.Sun:     {model.Cancer, 9},
		model.Moon:    {model.Cancer, 9},
		model.Venus:   {model.Gemini, 8},
		model.Jupiter: {model.Capricorn, 3},
		model.Saturn:  {model.Libra, 12},
		model.Rahu:    {model.Aries, 6},
		model.Ketu:    {model.Libra, 12},
		model.Gulika:  {model.Virgo, 11},
		model.Mandi:   {model.Virgo, 11},
	}
	for g, w := range want {
		p := c.Position(g)
		if p.Sign != w.sign || p.House != w.house {
			t.Errorf("%s: got %s/h%d, want %s/h%d", g, p.Sign, p.House, w.sign, w.house)
		}
	}
	if !c.Position(model.Jupiter).Retrograde || !c.Position(model.Mercury).Retrograde {
		t.Error("Jupiter and Mercury should be retrograde")
	}
	if c.Position(model.Rahu).Retrograde || c.Position(model.Ketu).Retrograde {
		t.Error("nodes report retrograde=false")
	}
	if moon := c.Position(model.Moon).Nakshatra; moon.Name != "Pushya" || moon.Lord != model.Saturn {
		t.Errorf("moon nakshatra: got %s/%s", moon.Name, moon.Lord)
	}
	assertClose(t, "gulika", c.Position(model.Gulika).Longitude, 160.886, 0.05)
	assertClose(t, "mandi", c.Position(model.Mandi).Longitude, 171.775, 0.05)
	if !c.IsDaytime() {
		t.Error("14:30 birth should be daytime")
	}
	// Moon-sign lord Moon (16) + 9th lord from Scorpio, Moon (16) = 32 -> 8th from Cancer.
	if c.InduLagna != model.Aquarius {
		t.Errorf("indu lagna: got %s, want Aquarius", c.InduLagna)
	}
}

func TestBuild_Invariants(t *testing.T) {
	births := []timeloc.Birth{
		charttest.Delhi1985,
		{Date: "2000-01-01", Time: "12:00", Timezone: "UTC", Latitude: 51.48, Longitude: -0.0015},
		{Date: "1969-07-20", Time: "20:17", Timezone: "UTC", Latitude: 28.57, Longitude: -80.65},
		{Date: "2024-06-15", Time: "03:10", Timezone: "Asia/Kolkata", Latitude: 19.07, Longitude: 72.88},
		{Date: "1950-03-21", Time: "23:45", Timezone: "UTC-3", Latitude: -34.6, Longitude: -58.38},
	}
	for _, b := range births {
		c := charttest.Build(t, b)
		rahu, ketu := c.Position(model.Rahu), c.Position(model.Ketu)
		assertClose(t, b.Date+" ketu", ketu.Longitude, model.NormDeg(rahu.Longitude+180), 1e-6)
		for _, g := range model.AllPoints {
			p := c.Position(g)
			if want := int(p.Sign-c.AscendantSign+12)%12 + 1; p.House != want {
				t.Errorf("%s %s: house %d, want %d", b.Date, g, p.House, want)
			}
		}
		for h := 1; h <= 12; h++ {
			sign := c.House(h).Sign
			for _, g := range c.Occupants(h) {
				if c.Position(g).Sign != sign {
					t.Errorf("%s: %s in house %d but sign %s", b.Date, g, h, c.Position(g).Sign)
				}
			}
		}
		if len(c.Positions) != 11 {
			t.Errorf("%s: %d points", b.Date, len(c.Positions))
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := charttest.Build(t, charttest.Delhi1985)
	b := charttest.Build(t, charttest.Delhi1985)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("charts differ (-a +b):\n%s", diff)
	}
}

func TestBuild_NightBirthUsesNightPortion(t *testing.T) {
	c := charttest.Build(t, timeloc.Birth{Date: "1985-08-15", Time: "23:30", Timezone: "UTC+5:30", Latitude: 28.6139, Longitude: 77.2090})
	if c.IsDaytime() {
		t.Fatal("23:30 birth should be at night")
	}
	// Thursday night starts with the Moon; Saturn rules the sixth portion.
	if got := chart.SaturnPortion(time.Thursday, true); got != 5 {
		t.Errorf("saturn night portion: got %d", got)
	}
}

func TestSaturnPortion(t *testing.T) {
	day := []int{6, 5, 4, 3, 2, 1, 0}
	night := []int{2, 1, 0, 6, 5, 4, 3}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if got := chart.SaturnPortion(wd, false); got != day[wd] {
			t.Errorf("%s day: got %d, want %d", wd, got, day[wd])
		}
		if got := chart.SaturnPortion(wd, true); got != night[wd] {
			t.Errorf("%s night: got %d, want %d", wd, got, night[wd])
		}
	}
}

func TestInduLagna(t *testing.T) {
	tests := []struct {
		lagna, moon, want model.Sign
	}{
		// Moon lord Moon 16 + 9th from Scorpio (Cancer) Moon 16 = 32 -> 8
		{model.Scorpio, model.Cancer, model.Aquarius},
		// Moon lord Mars 6 + 9th from Aries (Sagittarius) Jupiter 10 = 16 -> 4
		{model.Aries, model.Aries, model.Cancer},
		// Moon lord Jupiter 10 + 9th from Cancer (Pisces) Jupiter 10 = 20 -> 8
		{model.Cancer, model.Pisces, model.Libra},
		// Moon lord Venus 12 + 9th from Leo (Aries) Mars 6 = 18 -> 6
		{model.Leo, model.Taurus, model.Libra},
		// Moon lord Saturn 1 + 9th from Gemini (Aquarius) Saturn 1 = 2 -> 2
		{model.Gemini, model.Capricorn, model.Aquarius},
		// Moon lord Venus 12 + 9th from Cancer (Pisces) Jupiter 10 = 22 -> 10
		{model.Cancer, model.Libra, model.Cancer},
		// Moon lord Sun 30 + 9th from Pisces (Scorpio) Mars 6 = 36 -> 0 counts as 12
		{model.Pisces, model.Leo, model.Cancer},
	}
	for _, tt := range tests {
		if got := chart.InduLagna(tt.lagna, tt.moon); got != tt.want {
			t.Errorf("lagna %s moon %s: got %s, want %s", tt.lagna, tt.moon, got, tt.want)
		}
	}
}

func TestAssemble_MissingBody(t *testing.T) {
	_, err := chart.Assemble(chart.Raw{
		Ascendant: 10,
		Bodies: map[model.Graha]ephemeris.Position{
			model.Sun: {Longitude: 10},
		},
	})
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestVerify_DetectsCorruption(t *testing.T) {
	c := charttest.Build(t, charttest.Delhi1985)

	bad := *c
	bad.Positions = make(map[model.Graha]model.ChartPosition, len(c.Positions))
	for g, p := range c.Positions {
		bad.Positions[g] = p
	}
	k := bad.Positions[model.Ketu]
	k.Longitude = model.NormDeg(k.Longitude + 0.5)
	bad.Positions[model.Ketu] = k

	err := chart.Verify(&bad)
	if !errors.Is(err, errs.ErrInconsistentChart) {
		t.Fatalf("expected InconsistentChart, got %v", err)
	}
	var e *errs.Error
	if errors.As(err, &e) && e.OffendingInput == "" {
		t.Error("expected a diagnostic dump")
	}

	s := bad.Positions[model.Saturn]
	bad.Positions[model.Ketu] = c.Positions[model.Ketu]
	s.House = s.House%12 + 1
	bad.Positions[model.Saturn] = s
	if err := chart.Verify(&bad); !errors.Is(err, errs.ErrInconsistentChart) {
		t.Fatalf("house mismatch: expected InconsistentChart, got %v", err)
	}
}

func TestBuild_RejectsMissingLocation(t *testing.T) {
	n := timeloc.Normalized{UT: time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)}
	if _, err := chart.Build(ephemeris.New(nil), n); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}
