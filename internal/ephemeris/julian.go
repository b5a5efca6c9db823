package ephemeris

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// unixEpochJD is the Julian Day of 1970-01-01T00:00:00Z.
const unixEpochJD = 2440587.5

// JulianDayFromCalendar converts a Gregorian date plus UT hours to a Julian Day.
func JulianDayFromCalendar(year, month, day int, utHours float64) float64 {
	return julian.CalendarGregorianToJD(year, month, float64(day)+utHours/24)
}

// CalendarFromJulianDay is the inverse of JulianDayFromCalendar.
func CalendarFromJulianDay(jd float64) (year, month, day int, utHours float64) {
	y, m, d := julian.JDToCalendar(jd)
	whole := math.Floor(d)
	return y, m, int(whole), (d - whole) * 24
}

// JulianDay converts an instant to a Julian Day (UT).
func JulianDay(t time.Time) float64 {
	t = t.UTC()
	secs := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	return unixEpochJD + secs/86400
}

// TimeFromJulianDay converts a Julian Day (UT) to an instant, rounded to the
// nearest microsecond.
func TimeFromJulianDay(jd float64) time.Time {
	secs := (jd - unixEpochJD) * 86400
	whole := math.Floor(secs)
	micros := math.Round((secs - whole) * 1e6)
	return time.Unix(int64(whole), int64(micros)*1000).UTC()
}
