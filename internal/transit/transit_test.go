package transit

import (
	"context"
	"errors"
	"testing"
	"time"

	"jyotish-systemv1/internal/chart/charttest"
	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

var year2024 = Query{
	Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
}

func natalSunLeo27(t *testing.T) *model.NatalChart {
	return charttest.New(t, charttest.Fixture{
		Ascendant: 0,
		Longitudes: map[model.Graha]float64{
			model.Sun: 147, model.Moon: 20, model.Mars: 60, model.Mercury: 130,
			model.Jupiter: 200, model.Venus: 160, model.Saturn: 250, model.Rahu: 10,
		},
	})
}

func TestScan_SaturnOppositionBands(t *testing.T) {
	q := year2024
	q.Transits = []model.Graha{model.Saturn}
	q.Targets = []model.Graha{model.Sun}
	acts, err := Scan(context.Background(), ephemeris.New(nil), natalSunLeo27(t), q)
	if err != nil {
		t.Fatal(err)
	}
	// Saturn hovers near 325° in Aquarius from June to August as it turns
	// retrograde, re-entering the 3° orb of the point opposite 147°.
	if len(acts) != 3 {
		t.Fatalf("got %d activations: %v", len(acts), acts)
	}
	for i, m := range []time.Month{time.June, time.July, time.August} {
		a := acts[i]
		if a.Date.Month() != m || a.Aspect != Opposition || a.Strength != 70 {
			t.Errorf("activation %d: %s", i, a)
		}
		if model.SignOf(a.TransitLongitude) != model.Aquarius || a.Deviation > 3 {
			t.Errorf("activation %d: %s at %.2f", i, a, a.TransitLongitude)
		}
	}
	if !acts[2].Retrograde {
		t.Error("saturn should be retrograde in August 2024")
	}
}

func TestScan_SortedAndInOrb(t *testing.T) {
	q := year2024
	q.End = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	acts, err := Scan(context.Background(), ephemeris.New(nil), natalSunLeo27(t), q)
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) == 0 {
		t.Fatal("a quarter of all nine grahas must produce activations")
	}
	moon := 0
	for i, a := range acts {
		if a.Deviation > Orb(a.Transit) {
			t.Errorf("%s outside orb %.1f", a, Orb(a.Transit))
		}
		if a.Strength != Strength(a.Transit, a.Aspect) {
			t.Errorf("%s: strength %.0f", a, a.Strength)
		}
		if a.Date.Before(q.Start) || a.Date.After(q.End) {
			t.Errorf("%s outside range", a)
		}
		if i == 0 {
			continue
		}
		p := acts[i-1]
		if a.Date.Before(p.Date) ||
			(a.Date.Equal(p.Date) && a.Transit < p.Transit) ||
			(a.Date.Equal(p.Date) && a.Transit == p.Transit && a.Natal < p.Natal) {
			t.Errorf("out of order: %s after %s", a, p)
		}
		if a.Transit == model.Moon {
			moon++
		}
	}
	// The Moon circles the zodiac three times in a quarter.
	if moon < 9 {
		t.Errorf("moon activations: %d", moon)
	}
}

func TestScan_KetuOppositeRahu(t *testing.T) {
	q := year2024
	q.Transits = []model.Graha{model.Rahu, model.Ketu}
	q.OrbScale = 200 // every sample matches
	q.End = q.Start
	acts, err := Scan(context.Background(), ephemeris.New(nil), natalSunLeo27(t), q)
	if err != nil {
		t.Fatal(err)
	}
	var rahu, ketu float64
	for _, a := range acts {
		switch a.Transit {
		case model.Rahu:
			rahu = a.TransitLongitude
		case model.Ketu:
			ketu = a.TransitLongitude
		}
	}
	if model.SepDeg(rahu, ketu) < 179.999 {
		t.Errorf("rahu %.3f ketu %.3f", rahu, ketu)
	}
}

func TestScan_Errors(t *testing.T) {
	eph := ephemeris.New(nil)
	c := natalSunLeo27(t)

	bad := year2024
	bad.Start, bad.End = bad.End, bad.Start
	if _, err := Scan(context.Background(), eph, c, bad); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("reversed range: got %v", err)
	}
	shadow := year2024
	shadow.Targets = []model.Graha{model.Gulika}
	if _, err := Scan(context.Background(), eph, c, shadow); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("shadow target: got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	acts, err := Scan(ctx, eph, c, year2024)
	if !errors.Is(err, errs.ErrCancelled) || acts != nil {
		t.Errorf("cancelled: got %d activations, %v", len(acts), err)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		g       model.Graha
		transit float64
		natal   float64
		kind    Kind
		ok      bool
	}{
		{model.Jupiter, 10, 12, Conjunction, true},
		{model.Jupiter, 10, 132, Special, true}, // 5th-house aspect
		{model.Jupiter, 10, 250, Special, true}, // 9th-house aspect
		{model.Jupiter, 10, 60, "", false},
		{model.Saturn, 100, 280, Opposition, true},
		{model.Saturn, 100, 10, Special, true}, // 10th-house aspect, 270° ahead
		{model.Mars, 0, 92, Special, true},
		{model.Sun, 0, 90, "", false},
	}
	for _, tt := range tests {
		a, ok := match(tt.g, ephemeris.Position{Longitude: tt.transit}, tt.natal, 1)
		if ok != tt.ok || a.Aspect != tt.kind {
			t.Errorf("%s at %.0f to %.0f: got %v %q", tt.g, tt.transit, tt.natal, ok, a.Aspect)
		}
	}
}
