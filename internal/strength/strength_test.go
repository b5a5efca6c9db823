package strength

import (
	"math"
	"testing"

	"jyotish-systemv1/internal/chart/charttest"
	"jyotish-systemv1/internal/model"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol %.6f)", label, got, want, tol)
	}
}

// Aries lagna, daytime, full moon: Sun exalted in the 1st, Moon and Saturn
// in Libra, Mars and Jupiter in Cancer.
func fixture(t *testing.T) *model.NatalChart {
	return charttest.New(t, charttest.Fixture{
		Ascendant: 0,
		Longitudes: map[model.Graha]float64{
			model.Sun:     10,
			model.Moon:    190,
			model.Mars:    100,
			model.Mercury: 20,
			model.Jupiter: 95,
			model.Venus:   40,
			model.Saturn:  200,
			model.Rahu:    50,
		},
	})
}

func TestShadbala_HandCalculated(t *testing.T) {
	rep := ComputeShadbala(fixture(t))

	sun := rep.Planets[model.Sun]
	assertClose(t, "sun uccha", sun.Sthana.Uccha, 60, 1e-9)
	assertClose(t, "sun kendra", sun.Sthana.Kendra, 60, 1e-9)
	assertClose(t, "sun sthana", sun.Sthana.Total, 120, 1e-9)
	assertClose(t, "sun dig", sun.Dig, 30, 1e-9)
	assertClose(t, "sun kala", sun.Kala.Total, 60, 1e-9)
	assertClose(t, "sun chesta", sun.Chesta, 60, 1e-9)
	assertClose(t, "sun drik", sun.Drik, 0, 1e-9)
	assertClose(t, "sun rupas", sun.Rupas, 5.5, 1e-9)
	if sun.Grade != "good" || sun.MeetsRequired {
		t.Errorf("sun: grade %s meets %v", sun.Grade, sun.MeetsRequired)
	}

	moon := rep.Planets[model.Moon]
	assertClose(t, "moon uccha", moon.Sthana.Uccha, 60*23.0/180, 1e-9)
	assertClose(t, "moon dig", moon.Dig, 30, 1e-9)
	assertClose(t, "moon paksha", moon.Kala.Paksha, 120, 1e-9)
	assertClose(t, "moon chesta", moon.Chesta, 60, 1e-9)
	assertClose(t, "moon drik", moon.Drik, -10, 1e-9)
	assertClose(t, "moon virupas", moon.Virupas, 319.096667, 1e-5)

	sat := rep.Planets[model.Saturn]
	assertClose(t, "saturn dig", sat.Dig, 60, 1e-9)
	assertClose(t, "saturn kala", sat.Kala.Total, 0, 1e-9)
	assertClose(t, "saturn chesta", sat.Chesta, 15, 1e-9)
	assertClose(t, "saturn virupas", sat.Virupas, 193.57, 1e-9)
	if sat.Grade != "average" {
		t.Errorf("saturn grade: got %s", sat.Grade)
	}
	if rep.Weakest == model.Sun {
		t.Error("sun should not be weakest")
	}
}

func TestShadbala_NonNegative(t *testing.T) {
	for _, c := range []*model.NatalChart{fixture(t), charttest.Build(t, charttest.Delhi1985)} {
		rep := ComputeShadbala(c)
		if len(rep.Planets) != 7 {
			t.Fatalf("got %d planets", len(rep.Planets))
		}
		for g, p := range rep.Planets {
			if p.Rupas < 0 {
				t.Errorf("%s: negative rupas %.3f", g, p.Rupas)
			}
			if p.Dig < 0 || p.Dig > 60 || p.Chesta > 60 || p.Drik < -60 || p.Drik > 60 {
				t.Errorf("%s: bala outside ceiling %+v", g, p)
			}
			if p.Required != RequiredRupas[g] {
				t.Errorf("%s: required %.2f", g, p.Required)
			}
		}
	}
}

func TestDig(t *testing.T) {
	tests := []struct {
		g     model.Graha
		house int
		want  float64
	}{
		{model.Sun, 10, 60},
		{model.Sun, 4, 0},
		{model.Sun, 11, 50},
		{model.Sun, 9, 50},
		{model.Sun, 1, 30},
		{model.Sun, 5, 15},
		{model.Jupiter, 12, 50},
		{model.Saturn, 1, 0},
	}
	for _, tt := range tests {
		if got := dig(tt.g, tt.house); got != tt.want {
			t.Errorf("%s house %d: got %v, want %v", tt.g, tt.house, got, tt.want)
		}
	}
}

func TestGrade(t *testing.T) {
	for _, c := range []struct {
		r    float64
		want string
	}{{6, "excellent"}, {5.99, "good"}, {4.5, "good"}, {3, "average"}, {2.99, "weak"}, {0, "weak"}} {
		if got := Grade(c.r); got != c.want {
			t.Errorf("%.2f: got %s, want %s", c.r, got, c.want)
		}
	}
}

func TestAshtakavarga_TableTotals(t *testing.T) {
	want := map[model.Graha]int{
		model.Sun: 48, model.Moon: 49, model.Mars: 39, model.Mercury: 54,
		model.Jupiter: 56, model.Venus: 52, model.Saturn: 39,
	}
	sum := 0
	for g, n := range want {
		if got := TableTotal(g); got != n {
			t.Errorf("%s: table total %d, want %d", g, got, n)
		}
		sum += n
	}
	if sum != 337 {
		t.Fatalf("tables sum to %d", sum)
	}
}

func TestAshtakavarga_Chart(t *testing.T) {
	for _, c := range []*model.NatalChart{fixture(t), charttest.Build(t, charttest.Delhi1985)} {
		a := ComputeAshtakavarga(c)
		if a.Total != 337 {
			t.Errorf("total: got %d", a.Total)
		}
		sav := 0
		for s, n := range a.SAV {
			if n < 0 || n > 56 {
				t.Errorf("sign %d: %d bindus", s, n)
			}
			sav += n
		}
		if sav != 337 {
			t.Errorf("SAV sums to %d", sav)
		}
		for g, row := range a.BAV {
			n := 0
			for _, b := range row {
				if b < 0 || b > 8 {
					t.Errorf("%s: bindu count %d out of range", g, b)
				}
				n += b
			}
			if n != TableTotal(g) || a.Totals[g] != n {
				t.Errorf("%s: BAV sums to %d", g, n)
			}
		}
	}

	a := ComputeAshtakavarga(fixture(t))
	// Sun's BAV in Aries: bindus from the Sun, Mars, Venus and Saturn.
	if got := a.BAV[model.Sun][model.Aries]; got != 4 {
		t.Errorf("sun bav aries: got %d, want 4", got)
	}
}
