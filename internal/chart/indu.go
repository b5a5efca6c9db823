package chart

import "jyotish-systemv1/internal/model"

// kala are the fixed ray values used for Indu Lagna.
var kala = map[model.Graha]int{
	model.Sun:     30,
	model.Moon:    16,
	model.Mars:    6,
	model.Mercury: 8,
	model.Jupiter: 10,
	model.Venus:   12,
	model.Saturn:  1,
}

// InduLagna adds the kala of the Moon-sign lord and of the 9th lord from
// the lagna, reduces the sum modulo 12 (a remainder of 0 counts as 12) and
// counts that many signs from the Moon's sign.
func InduLagna(lagna, moonSign model.Sign) model.Sign {
	sum := kala[moonSign.Lord()] + kala[lagna.Add(8).Lord()]
	r := sum % 12
	if r == 0 {
		r = 12
	}
	return moonSign.Add(r - 1)
}
