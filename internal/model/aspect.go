package model

// aspectHouses counts from the aspecting graha's own house (1 = same house).
var aspectHouses = map[Graha][]int{
	Sun:     {7},
	Moon:    {7},
	Mercury: {7},
	Venus:   {7},
	Mars:    {4, 7, 8},
	Jupiter: {5, 7, 9},
	Saturn:  {3, 7, 10},
	Rahu:    {3, 7, 11},
	Ketu:    {3, 7, 11},
}

// AspectHouses lists the houses, counted from its own, that g aspects.
// Shadow points cast no aspect.
func (g Graha) AspectHouses() []int { return aspectHouses[g] }

// Aspects reports whether a graha in sign from aspects sign to.
func (g Graha) Aspects(from, to Sign) bool {
	h := from.HouseFrom(to)
	for _, a := range aspectHouses[g] {
		if a == h {
			return true
		}
	}
	return false
}
