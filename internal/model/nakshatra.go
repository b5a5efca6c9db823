package model

import "math"

// NakshatraSpan is the arc of one lunar mansion, 13°20′.
const NakshatraSpan = 360.0 / 27

// PadaSpan is a quarter of a nakshatra, 3°20′.
const PadaSpan = 360.0 / 108

// NakshatraNames in zodiacal order from Ashwini.
var NakshatraNames = [27]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra",
	"Punarvasu", "Pushya", "Ashlesha", "Magha", "Purva Phalguni", "Uttara Phalguni",
	"Hasta", "Chitra", "Swati", "Vishakha", "Anuradha", "Jyeshtha",
	"Mula", "Purva Ashadha", "Uttara Ashadha", "Shravana", "Dhanishta", "Shatabhisha",
	"Purva Bhadrapada", "Uttara Bhadrapada", "Revati",
}

// VimshottariOrder is the lord sequence starting at Ashwini.
var VimshottariOrder = [9]Graha{Ketu, Venus, Sun, Moon, Mars, Rahu, Jupiter, Saturn, Mercury}

// Nakshatra locates a longitude among the 27 mansions.
type Nakshatra struct {
	Index   int     `json:"index"` // 0..26
	Name    string  `json:"name"`
	Pada    int     `json:"pada"` // 1..4
	Lord    Graha   `json:"lord"`
	Elapsed float64 `json:"elapsed"` // fraction of the mansion traversed, [0,1)
}

// NakshatraOf returns the mansion containing lon.
func NakshatraOf(lon float64) Nakshatra {
	lon = NormDeg(lon)
	idx := int(math.Floor(lon / NakshatraSpan))
	if idx > 26 {
		idx = 26
	}
	within := lon - float64(idx)*NakshatraSpan
	pada := int(math.Floor(within/PadaSpan)) + 1
	if pada > 4 {
		pada = 4
	}
	return Nakshatra{
		Index:   idx,
		Name:    NakshatraNames[idx],
		Pada:    pada,
		Lord:    VimshottariOrder[idx%9],
		Elapsed: within / NakshatraSpan,
	}
}
