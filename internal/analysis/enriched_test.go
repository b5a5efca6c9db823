package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"jyotish-systemv1/internal/chart/charttest"
	"jyotish-systemv1/internal/model"
)

func TestEnrich_Delhi1985(t *testing.T) {
	c := charttest.Build(t, charttest.Delhi1985)
	e, err := Enrich(c)
	if err != nil {
		t.Fatal(err)
	}
	if e.Natal != c {
		t.Error("bundle must reference the natal chart it was built from")
	}
	if e.Navamsa.Division != 9 {
		t.Errorf("navamsa division: %d", e.Navamsa.Division)
	}
	if len(e.Dignities) != 9 || len(e.Shadbala.Planets) != 7 || e.Ashtakavarga.Total != 337 {
		t.Errorf("incomplete bundle: %d dignities, %d shadbala, %d bindus",
			len(e.Dignities), len(e.Shadbala.Planets), e.Ashtakavarga.Total)
	}
	// Rahu in Aries borrows Mars's strength.
	if e.Rupas(model.Rahu) != e.Shadbala.Planets[model.Mars].Rupas {
		t.Error("rahu should borrow its dispositor's rupas")
	}
}

func TestEnrich_Deterministic(t *testing.T) {
	c := charttest.Build(t, charttest.Delhi1985)
	a, _ := Enrich(c)
	b, _ := Enrich(c)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("bundles differ:\n%s", diff)
	}
}
