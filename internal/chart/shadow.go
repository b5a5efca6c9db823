package chart

import (
	"time"

	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/model"
)

// weekdayLords rules each civil weekday, Sunday first.
var weekdayLords = [7]model.Graha{
	model.Sun, model.Moon, model.Mars, model.Mercury, model.Jupiter, model.Venus, model.Saturn,
}

// span is the daytime (sunrise to sunset) or night (sunset to next sunrise)
// that contains the birth instant.
type span struct {
	start, end float64
	night      bool
}

// timeOfDaySpan locates the birth inside its day or night. A birth before
// sunrise belongs to the night that began at the previous sunset; a birth
// after sunset to the night ending at the next sunrise.
func timeOfDaySpan(eph *ephemeris.Ephemeris, jd, midnight, lat, lon, rise, set float64) (span, error) {
	switch {
	case jd >= rise && jd < set:
		return span{start: rise, end: set}, nil
	case jd < rise:
		_, prevSet, err := eph.SunRiseSet(midnight-1, lat, lon)
		if err != nil {
			return span{}, err
		}
		return span{start: prevSet, end: rise, night: true}, nil
	default:
		nextRise, _, err := eph.SunRiseSet(midnight+1, lat, lon)
		if err != nil {
			return span{}, err
		}
		return span{start: set, end: nextRise, night: true}, nil
	}
}

// SaturnPortion returns the zero-based index of Saturn's eighth of the day
// (or night) for a civil weekday. Day portions start with the weekday lord,
// night portions with the lord of the fifth weekday from it, both following
// the weekday order; the eighth portion is unruled.
func SaturnPortion(wd time.Weekday, night bool) int {
	first := int(wd)
	if night {
		first = (first + 4) % 7
	}
	return (6 - first + 7) % 7
}

// saturnPortion returns the JD at the start (Gulika) and the midpoint
// (Mandi) of Saturn's portion.
func (s span) saturnPortion(wd time.Weekday) (gulika, mandi float64) {
	part := (s.end - s.start) / 8
	k := float64(SaturnPortion(wd, s.night))
	gulika = s.start + k*part
	return gulika, gulika + part/2
}
