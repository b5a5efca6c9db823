package varga

import (
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

// SignOf returns the divisional sign of a natal longitude in division n.
func SignOf(lon float64, n int) (model.Sign, error) {
	r, ok := Lookup(n)
	if !ok {
		return 0, errs.NotFound("division D%d is not supported", n)
	}
	return r.SignOf(lon), nil
}

// Build derives division n from the natal longitudes. The divisional
// ascendant comes from the natal ascendant longitude and houses are rebuilt
// whole-sign from it. Gulika and Mandi keep their natal longitude and are
// only re-housed.
func Build(natal *model.NatalChart, n int) (*model.DivisionalChart, error) {
	r, ok := Lookup(n)
	if !ok {
		return nil, errs.NotFound("division D%d is not supported", n)
	}
	ascLon := r.Longitude(natal.Ascendant)
	asc := model.SignOf(ascLon)
	d := &model.DivisionalChart{
		Division:      n,
		Name:          r.Name,
		AscendantSign: asc,
		Houses:        model.WholeSignHouses(asc, ascLon),
		Positions:     make(map[model.Graha]model.ChartPosition, len(natal.Positions)),
	}
	for g, p := range natal.Positions {
		lon := p.Longitude
		if !g.IsShadow() {
			lon = r.Longitude(p.Longitude)
		}
		d.Positions[g] = model.NewPosition(lon, p.Latitude, p.Speed, p.Retrograde, asc)
	}
	return d, nil
}

// BuildAll returns every supported division in ascending order.
func BuildAll(natal *model.NatalChart) ([]*model.DivisionalChart, error) {
	out := make([]*model.DivisionalChart, 0, len(Divisions))
	for _, n := range Divisions {
		d, err := Build(natal, n)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
