package strength

import "jyotish-systemv1/internal/model"

// bav[g][c] lists the houses, counted from contributor c, where c gives g
// a bindu. Contributors are Sun..Saturn followed by the lagna.
var bav = map[model.Graha][8][]int{
	model.Sun: {
		{1, 2, 4, 7, 8, 9, 10, 11},
		{3, 6, 10, 11},
		{1, 2, 4, 7, 8, 9, 10, 11},
		{3, 5, 6, 9, 10, 11, 12},
		{5, 6, 9, 11},
		{6, 7, 12},
		{1, 2, 4, 7, 8, 9, 10, 11},
		{3, 4, 6, 10, 11, 12},
	},
	model.Moon: {
		{3, 6, 7, 8, 10, 11},
		{1, 3, 6, 7, 10, 11},
		{2, 3, 5, 6, 9, 10, 11},
		{1, 3, 4, 5, 7, 8, 10, 11},
		{1, 4, 7, 8, 10, 11, 12},
		{3, 4, 5, 7, 9, 10, 11},
		{3, 5, 6, 11},
		{3, 6, 10, 11},
	},
	model.Mars: {
		{3, 5, 6, 10, 11},
		{3, 6, 11},
		{1, 2, 4, 7, 8, 10, 11},
		{3, 5, 6, 11},
		{6, 10, 11, 12},
		{6, 8, 11, 12},
		{1, 4, 7, 8, 9, 10, 11},
		{1, 3, 6, 10, 11},
	},
	model.Mercury: {
		{5, 6, 9, 11, 12},
		{2, 4, 6, 8, 10, 11},
		{1, 2, 4, 7, 8, 9, 10, 11},
		{1, 3, 5, 6, 9, 10, 11, 12},
		{6, 8, 11, 12},
		{1, 2, 3, 4, 5, 8, 9, 11},
		{1, 2, 4, 7, 8, 9, 10, 11},
		{1, 2, 4, 6, 8, 10, 11},
	},
	model.Jupiter: {
		{1, 2, 3, 4, 7, 8, 9, 10, 11},
		{2, 5, 7, 9, 11},
		{1, 2, 4, 7, 8, 10, 11},
		{1, 2, 4, 5, 6, 9, 10, 11},
		{1, 2, 3, 4, 7, 8, 10, 11},
		{2, 5, 6, 9, 10, 11},
		{3, 5, 6, 12},
		{1, 2, 4, 5, 6, 7, 9, 10, 11},
	},
	model.Venus: {
		{8, 11, 12},
		{1, 2, 3, 4, 5, 8, 9, 11, 12},
		{3, 5, 6, 9, 11, 12},
		{3, 5, 6, 9, 11},
		{5, 8, 9, 10, 11},
		{1, 2, 3, 4, 5, 8, 9, 10, 11},
		{3, 4, 5, 8, 9, 10, 11},
		{1, 2, 3, 4, 5, 8, 9, 11},
	},
	model.Saturn: {
		{1, 2, 4, 7, 8, 10, 11},
		{3, 6, 11},
		{3, 5, 6, 10, 11, 12},
		{6, 8, 9, 10, 11, 12},
		{5, 6, 11, 12},
		{6, 11, 12},
		{3, 5, 6, 11},
		{1, 3, 4, 6, 10, 11},
	},
}

// Ashtakavarga holds the Bhinnashtakavarga of each planet and the
// Sarvashtakavarga per sign.
type Ashtakavarga struct {
	BAV    map[model.Graha][12]int `json:"bav"`
	SAV    [12]int                 `json:"sav"`
	Totals map[model.Graha]int     `json:"totals"`
	Total  int                     `json:"total"`
}

// ComputeAshtakavarga places the bindus of the seven planets.
func ComputeAshtakavarga(c *model.NatalChart) Ashtakavarga {
	var from [8]model.Sign
	for i, g := range model.Planets {
		from[i] = c.Position(g).Sign
	}
	from[7] = c.AscendantSign

	a := Ashtakavarga{
		BAV:    make(map[model.Graha][12]int, len(model.Planets)),
		Totals: make(map[model.Graha]int, len(model.Planets)),
	}
	for _, g := range model.Planets {
		var row [12]int
		for ci, houses := range bav[g] {
			for _, h := range houses {
				row[from[ci].Add(h-1)]++
			}
		}
		a.BAV[g] = row
		for s, n := range row {
			a.SAV[s] += n
			a.Totals[g] += n
			a.Total += n
		}
	}
	return a
}

// Bindus returns the Sarvashtakavarga bindus of sign s.
func (a Ashtakavarga) Bindus(s model.Sign) int { return a.SAV[s.Norm()] }

// TableTotal is the fixed bindu count of g's table regardless of chart.
func TableTotal(g model.Graha) int {
	n := 0
	for _, houses := range bav[g] {
		n += len(houses)
	}
	return n
}
