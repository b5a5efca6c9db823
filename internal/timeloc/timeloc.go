// Package timeloc is the only place raw date, time, timezone and coordinate
// strings are parsed. Everything downstream receives a Normalized birth.
package timeloc

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

// IST is Indian Standard Time, the most common birth zone.
var IST = time.FixedZone("IST", 5*3600+30*60)

// maxOffsetHours bounds fixed offsets to the range real zones use.
const maxOffsetHours = 14

var offsetRe = regexp.MustCompile(`^(?:UTC|GMT)?\s*([+-])\s*(\d{1,2})(?::?(\d{2}))?$`)

// Birth is the raw input for one chart request.
type Birth struct {
	Date      string  `json:"date" mapstructure:"date"`         // 2006-01-02
	Time      string  `json:"time" mapstructure:"time"`         // 15:04 or 15:04:05
	Timezone  string  `json:"timezone" mapstructure:"timezone"` // UTC+5:30 or Asia/Kolkata
	Latitude  float64 `json:"latitude" mapstructure:"latitude"`
	Longitude float64 `json:"longitude" mapstructure:"longitude"`
}

// Normalized is a validated birth: civil wall time, its UT instant, the
// offset in effect, and the location.
type Normalized struct {
	Local       time.Time      `json:"local"`
	UT          time.Time      `json:"ut"`
	OffsetHours float64        `json:"offset_hours"`
	Location    model.Location `json:"location"`
}

// Normalize parses and validates every field of b.
func Normalize(b Birth) (Normalized, error) {
	if err := ValidateLocation(b.Latitude, b.Longitude); err != nil {
		return Normalized{}, err
	}
	wall, err := ParseBirth(b.Date, b.Time)
	if err != nil {
		return Normalized{}, err
	}
	off, err := ParseOffset(b.Timezone, wall)
	if err != nil {
		return Normalized{}, err
	}
	ut := ToUT(wall, off)
	return Normalized{
		Local:       FromUT(ut, off),
		UT:          ut,
		OffsetHours: off,
		Location:    model.Location{Latitude: b.Latitude, Longitude: b.Longitude},
	}, nil
}

// ParseBirth strictly parses a civil date and clock time. The result carries
// the wall-clock fields in UTC; it is not yet an instant.
func ParseBirth(date, clock string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, errs.Invalid(date, "malformed birth date")
	}
	clock = strings.TrimSpace(clock)
	layout := "15:04:05"
	if strings.Count(clock, ":") == 1 {
		layout = "15:04"
	}
	c, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, errs.Invalid(clock, "malformed birth time")
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, time.UTC), nil
}

// ParseOffset resolves a timezone string to an offset in hours. Fixed
// offsets ("UTC+5:30", "+05:30", "GMT-3", "UTC") are parsed directly; any
// other value is looked up as an IANA name at the given wall-clock time so
// daylight saving in effect at birth is honoured. "Local" is rejected.
func ParseOffset(tz string, wall time.Time) (float64, error) {
	s := strings.TrimSpace(tz)
	switch strings.ToUpper(s) {
	case "":
		return 0, errs.Invalid(tz, "missing timezone")
	case "UTC", "GMT", "Z":
		return 0, nil
	case "LOCAL":
		// LoadLocation would hand back the host zone.
		return 0, errs.Invalid(tz, "unknown timezone")
	}
	if m := offsetRe.FindStringSubmatch(strings.ToUpper(s)); m != nil {
		h, _ := strconv.Atoi(m[2])
		mins := 0
		if m[3] != "" {
			mins, _ = strconv.Atoi(m[3])
		}
		if h > maxOffsetHours || mins >= 60 || (h == maxOffsetHours && mins > 0) {
			return 0, errs.Invalid(tz, "timezone offset out of range")
		}
		off := float64(h) + float64(mins)/60
		if m[1] == "-" {
			off = -off
		}
		return off, nil
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return 0, errs.Invalid(tz, "unknown timezone")
	}
	at := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, loc)
	_, secs := at.Zone()
	return float64(secs) / 3600, nil
}

// ValidateLocation rejects out-of-range coordinates and the (0,0) point,
// which almost always means the coordinates were never filled in.
func ValidateLocation(lat, lon float64) error {
	raw := fmt.Sprintf("%g,%g", lat, lon)
	switch {
	case math.IsNaN(lat) || math.IsNaN(lon):
		return errs.Invalid(raw, "invalid location: coordinates are not numbers")
	case lat < -90 || lat > 90:
		return errs.Invalid(raw, "invalid location: latitude out of range")
	case lon < -180 || lon > 180:
		return errs.Invalid(raw, "invalid location: longitude out of range")
	case lat == 0 && lon == 0:
		return errs.Invalid(raw, "invalid location: coordinates missing")
	}
	return nil
}

// offsetSeconds rounds an hour offset to whole minutes.
func offsetSeconds(offsetHours float64) int {
	return int(math.Round(offsetHours*60)) * 60
}

// Zone returns a fixed zone for the offset, named like "UTC+05:30".
func Zone(offsetHours float64) *time.Location {
	secs := offsetSeconds(offsetHours)
	sign := '+'
	abs := secs
	if secs < 0 {
		sign = '-'
		abs = -secs
	}
	return time.FixedZone(fmt.Sprintf("UTC%c%02d:%02d", sign, abs/3600, abs%3600/60), secs)
}

// ToUT converts a wall-clock time (its zone is ignored) to the UT instant:
// utc = local - offset.
func ToUT(wall time.Time, offsetHours float64) time.Time {
	local := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), time.UTC)
	return local.Add(-time.Duration(offsetSeconds(offsetHours)) * time.Second)
}

// FromUT expresses a UT instant as local civil time at the offset.
func FromUT(ut time.Time, offsetHours float64) time.Time {
	return ut.In(Zone(offsetHours))
}

// LocalMidnight returns the UT instant of 00:00 local time on the civil
// date of wall.
func LocalMidnight(wall time.Time, offsetHours float64) time.Time {
	return ToUT(time.Date(wall.Year(), wall.Month(), wall.Day(), 0, 0, 0, 0, time.UTC), offsetHours)
}
