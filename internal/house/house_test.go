package house

import (
	"errors"
	"math"
	"testing"

	"jyotish-systemv1/internal/analysis"
	"jyotish-systemv1/internal/chart/charttest"
	"jyotish-systemv1/internal/dignity"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol %.6f)", label, got, want, tol)
	}
}

// Capricorn lagna with Saturn exalted and Venus in moolatrikona in the 10th,
// aspected by the Moon and Jupiter.
func exaltedSaturn(t *testing.T) *analysis.Enriched {
	c := charttest.New(t, charttest.Fixture{
		Ascendant: 285,
		Longitudes: map[model.Graha]float64{
			model.Sun: 140, model.Moon: 10, model.Mars: 280, model.Mercury: 130,
			model.Jupiter: 310, model.Venus: 190, model.Saturn: 200, model.Rahu: 50,
		},
	})
	e, err := analysis.Enrich(c)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestAnalyze_ExaltedSaturnInTenth(t *testing.T) {
	e := exaltedSaturn(t)
	r, err := Analyze(e, 10)
	if err != nil {
		t.Fatal(err)
	}
	if r.Sign != model.Libra || r.Lord != model.Venus || r.LordHouse != 10 {
		t.Fatalf("house 10: %s", r)
	}
	if r.Score < 80 || (r.Grade != "A" && r.Grade != "A+") {
		t.Errorf("score %.2f grade %s, want >= 80 and A/A+", r.Score, r.Grade)
	}
	if r.Badhaka {
		t.Error("10th is not the Badhaka house of a movable lagna")
	}

	if len(r.Residents) != 2 || r.Residents[0].Graha != model.Venus || r.Residents[1].Graha != model.Saturn {
		t.Fatalf("residents: %+v", r.Residents)
	}
	sat := r.Residents[1]
	if sat.Dignity != dignity.Exalted || sat.Compatibility != dignity.CompoundNeutral {
		t.Errorf("saturn: %+v", sat)
	}
	assertClose(t, "saturn resident", sat.Score, 80, 1e-9)
	assertClose(t, "resident score", r.ResidentScore, (80+0.6*100/1.3+40)/2, 1e-9)

	if len(r.Aspects) != 2 || r.Aspects[0].Graha != model.Moon || r.Aspects[1].Graha != model.Jupiter {
		t.Errorf("aspects: %+v", r.Aspects)
	}
	assertClose(t, "aspect score", r.AspectScore, 80, 1e-9)
	if r.Bindus != 29 {
		t.Errorf("bindus: got %d", r.Bindus)
	}
	assertClose(t, "sign score", r.SignScore, 55, 1e-9)
	assertClose(t, "positional", r.PositionalScore, 85, 1e-9)
	assertClose(t, "yogi impact", r.YogiImpact, 50, 1e-9)
	if r.LordScore < 90 || r.LordScore > 95.2 {
		t.Errorf("lord score: %.2f", r.LordScore)
	}
	if len(r.Significations) == 0 || r.Significations[0] != "career" {
		t.Errorf("significations: %v", r.Significations)
	}
}

func TestAnalyze_Range(t *testing.T) {
	e := exaltedSaturn(t)
	for _, h := range []int{0, 13, -1} {
		if _, err := Analyze(e, h); !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("house %d: got %v", h, err)
		}
	}
}

func TestAnalyzeAll_Delhi1985(t *testing.T) {
	e, err := analysis.Enrich(charttest.Build(t, charttest.Delhi1985))
	if err != nil {
		t.Fatal(err)
	}
	all := AnalyzeAll(e)
	badhaka := 0
	for i, r := range all {
		if r.House != i+1 {
			t.Errorf("report %d has house %d", i, r.House)
		}
		if r.Score < 0 || r.Score > 100 || r.Grade == "" {
			t.Errorf("%s", r)
		}
		if r.Badhaka {
			badhaka++
		}
		for _, res := range r.Residents {
			if e.Natal.Position(res.Graha).House != r.House {
				t.Errorf("%s lists non-resident %s", r, res.Graha)
			}
		}
	}
	// Scorpio is fixed: the 9th obstructs.
	if badhaka != 1 || !all[8].Badhaka {
		t.Errorf("badhaka flags: %d", badhaka)
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "A+"}, {85, "A+"}, {84.9, "A"}, {75, "A"}, {65, "B+"},
		{55, "B"}, {45, "C"}, {35, "D"}, {34.9, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		if got := Grade(tt.score); got != tt.want {
			t.Errorf("%.1f: got %s, want %s", tt.score, got, tt.want)
		}
	}
}
