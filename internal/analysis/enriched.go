// Package analysis computes the enriched chart bundle once per natal chart.
// Downstream analyzers (dasha, house, transit, events) read the bundle and
// never recompute what it holds.
package analysis

import (
	"jyotish-systemv1/internal/dignity"
	"jyotish-systemv1/internal/model"
	"jyotish-systemv1/internal/strength"
	"jyotish-systemv1/internal/varga"
	"jyotish-systemv1/internal/yogi"
)

// Enriched is immutable once returned by Enrich.
type Enriched struct {
	Natal        *model.NatalChart              `json:"natal"`
	Navamsa      *model.DivisionalChart         `json:"navamsa"`
	Dignities    map[model.Graha]dignity.Status `json:"dignities"`
	Relations    dignity.Relationships          `json:"relations"`
	Shadbala     strength.Shadbala              `json:"shadbala"`
	Ashtakavarga strength.Ashtakavarga          `json:"ashtakavarga"`
	Yogi         yogi.Points                    `json:"yogi"`
}

// Enrich derives every per-chart layer in dependency order.
func Enrich(c *model.NatalChart) (*Enriched, error) {
	d9, err := varga.Build(c, 9)
	if err != nil {
		return nil, err
	}
	return &Enriched{
		Natal:        c,
		Navamsa:      d9,
		Dignities:    dignity.Assess(c),
		Relations:    dignity.Relate(c),
		Shadbala:     strength.ComputeShadbala(c),
		Ashtakavarga: strength.ComputeAshtakavarga(c),
		Yogi:         yogi.Compute(c),
	}, nil
}

// Dignity returns the status of g.
func (e *Enriched) Dignity(g model.Graha) dignity.Status { return e.Dignities[g] }

// Rupas returns g's Shadbala in rupas; the nodes, which have no Shadbala,
// borrow their dispositor's.
func (e *Enriched) Rupas(g model.Graha) float64 {
	if g.IsNode() {
		g = e.Natal.Position(g).Sign.Lord()
	}
	return e.Shadbala.Planets[g].Rupas
}
