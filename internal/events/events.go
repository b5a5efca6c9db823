// Package events composes a monthly forecast from the active dasha periods,
// the transit activations and the Yogi set. Each month runs the staged
// pipeline activation set → dasha filter → transit filter → solar filter →
// score → probability for every house.
package events

import (
	"context"
	"fmt"
	"sort"
	"time"

	"jyotish-systemv1/internal/analysis"
	"jyotish-systemv1/internal/dasha"
	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/house"
	"jyotish-systemv1/internal/model"
	"jyotish-systemv1/internal/timeloc"
	"jyotish-systemv1/internal/transit"
)

// HouseMonth is the pipeline trace for one house in one month.
type HouseMonth struct {
	House     int           `json:"house"`
	Activated []model.Graha `json:"activated"`
	InDasha   []model.Graha `json:"in_dasha"`
	InTransit []model.Graha `json:"in_transit"`
	Solar     bool          `json:"solar"`
	Breakdown
}

// Event is a house expected to be active in a month.
type Event struct {
	House          int           `json:"house"`
	Score          float64       `json:"score"`
	Probability    Probability   `json:"probability"`
	Grahas         []model.Graha `json:"grahas"`
	Significations []string      `json:"significations"`
}

func (e Event) String() string {
	return fmt.Sprintf("house %d %s (%.1f)", e.House, e.Probability, e.Score)
}

// Month is one month of the forecast.
type Month struct {
	Year        int            `json:"year"`
	Month       time.Month     `json:"month"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	DashaLords  []model.Graha  `json:"dasha_lords"`
	Activations int            `json:"activations"`
	Houses      [12]HouseMonth `json:"houses"`
	Events      []Event        `json:"events"`
}

// Compose forecasts the twelve months of year. Months run in the natal
// chart's time zone; the dasha tree must cover the whole year.
func Compose(ctx context.Context, eph *ephemeris.Ephemeris, e *analysis.Enriched, tree *dasha.Tree, year int) ([]Month, error) {
	if e == nil || tree == nil {
		return nil, errs.Invalid("", "events: missing chart or dasha tree")
	}
	zone := timeloc.Zone(e.Natal.OffsetHours)
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, zone)
	end := start.AddDate(1, 0, 0)

	acts, err := transit.Scan(ctx, eph, e.Natal, transit.Query{Start: start, End: end.Add(-time.Second)})
	if err != nil {
		return nil, err
	}

	out := make([]Month, 0, 12)
	for m := start; m.Before(end); m = m.AddDate(0, 1, 0) {
		if err := errs.Cancelled(ctx); err != nil {
			return nil, err
		}
		month, err := composeMonth(eph, e, tree, m, m.AddDate(0, 1, 0), acts)
		if err != nil {
			return nil, err
		}
		out = append(out, month)
	}
	return out, nil
}

func composeMonth(eph *ephemeris.Ephemeris, e *analysis.Enriched, tree *dasha.Tree, from, to time.Time, all []transit.Activation) (Month, error) {
	c := e.Natal
	mid := from.AddDate(0, 0, 14)
	active, err := dasha.FindActive(tree, mid)
	if err != nil {
		return Month{}, err
	}
	lords := active.Lords()

	var acts []transit.Activation
	for _, a := range all {
		if !a.Date.Before(from) && a.Date.Before(to) {
			acts = append(acts, a)
		}
	}
	sunSigns, err := sunSigns(eph, from, to)
	if err != nil {
		return Month{}, err
	}

	month := Month{
		Year:        from.Year(),
		Month:       from.Month(),
		Start:       from,
		End:         to,
		DashaLords:  lords,
		Activations: len(acts),
	}
	for h := 1; h <= 12; h++ {
		hm := HouseMonth{House: h}
		hm.Activated = ActivationSet(c, h)
		hm.InDasha = DashaFilter(hm.Activated, lords)
		hm.InTransit = TransitFilter(hm.InDasha, acts)
		hm.Solar = SolarActivation(c.House(h).Sign, sunSigns)
		hm.Breakdown = Score(Inputs{
			MahaRelevant:   contains(hm.Activated, lords[0]),
			AntaraRelevant: len(lords) > 1 && contains(hm.Activated, lords[1]),
			Strengths:      strengths(hm.InTransit, acts),
			YogiImpact:     e.Yogi.Impact(c, h),
			Solar:          hm.Solar,
		})
		month.Houses[h-1] = hm
		if hm.Probability.IsEvent() {
			month.Events = append(month.Events, Event{
				House:          h,
				Score:          hm.Score,
				Probability:    hm.Probability,
				Grahas:         hm.InTransit,
				Significations: house.Significations[h],
			})
		}
	}
	sort.SliceStable(month.Events, func(i, j int) bool { return month.Events[i].Score > month.Events[j].Score })
	return month, nil
}

// strengths collects the strengths of activations touching any of grahas.
func strengths(grahas []model.Graha, acts []transit.Activation) []float64 {
	var out []float64
	for _, a := range acts {
		if contains(grahas, a.Transit) || contains(grahas, a.Natal) {
			out = append(out, a.Strength)
		}
	}
	return out
}

// sunSigns samples the Sun's sign at the start, middle and end of a month.
func sunSigns(eph *ephemeris.Ephemeris, from, to time.Time) ([]model.Sign, error) {
	var out []model.Sign
	for _, t := range []time.Time{from, from.Add(to.Sub(from) / 2), to.Add(-time.Second)} {
		p, err := eph.SiderealPosition(ephemeris.JulianDay(t), model.Sun, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, model.SignOf(p.Longitude))
	}
	return out, nil
}
