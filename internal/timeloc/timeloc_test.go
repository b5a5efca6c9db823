package timeloc

import (
	"errors"
	"strings"
	"testing"
	"time"

	"jyotish-systemv1/internal/errs"
)

func TestParseOffset_Fixed(t *testing.T) {
	wall := time.Date(1985, 8, 15, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want float64
	}{
		{"UTC+5:30", 5.5},
		{"UTC+05:30", 5.5},
		{"+05:30", 5.5},
		{"+0530", 5.5},
		{"UTC+5:45", 5.75},
		{"UTC-3", -3},
		{"GMT-03:30", -3.5},
		{"utc+9", 9},
		{"UTC", 0},
		{"Z", 0},
		{"UTC+14", 14},
	}
	for _, tt := range tests {
		got, err := ParseOffset(tt.in, wall)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseOffset_IANA(t *testing.T) {
	if _, err := time.LoadLocation("America/New_York"); err != nil {
		t.Skip("tz database unavailable")
	}
	summer := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	winter := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	if got, _ := ParseOffset("Asia/Kolkata", summer); got != 5.5 {
		t.Errorf("Asia/Kolkata: got %v", got)
	}
	if got, _ := ParseOffset("Asia/Kathmandu", summer); got != 5.75 {
		t.Errorf("Asia/Kathmandu: got %v", got)
	}
	if got, _ := ParseOffset("America/New_York", summer); got != -4 {
		t.Errorf("New York summer: got %v", got)
	}
	if got, _ := ParseOffset("America/New_York", winter); got != -5 {
		t.Errorf("New York winter: got %v", got)
	}
}

func TestParseOffset_Invalid(t *testing.T) {
	wall := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"", "UTC+15", "UTC+5:75", "Mars/Olympus", "+14:30", "Local", " local "} {
		_, err := ParseOffset(in, wall)
		if !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("%q: expected InvalidInput, got %v", in, err)
		}
	}
}

func TestValidateLocation(t *testing.T) {
	if err := ValidateLocation(28.6139, 77.2090); err != nil {
		t.Fatalf("delhi: %v", err)
	}
	if err := ValidateLocation(-90, 180); err != nil {
		t.Fatalf("edge: %v", err)
	}
	bad := [][2]float64{{0, 0}, {91, 10}, {-91, 10}, {10, 181}, {10, -180.5}}
	for _, c := range bad {
		err := ValidateLocation(c[0], c[1])
		if !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("%v: expected InvalidInput, got %v", c, err)
			continue
		}
		var e *errs.Error
		errors.As(err, &e)
		if strings.ContainsAny(e.OffendingInput, "123456789") {
			t.Errorf("%v: offending input not redacted: %q", c, e.OffendingInput)
		}
	}
}

func TestParseBirth(t *testing.T) {
	got, err := ParseBirth("1985-08-15", "14:30")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(1985, 8, 15, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, _ := ParseBirth("2000-01-01", "12:00:05"); got.Second() != 5 {
		t.Errorf("seconds dropped: %v", got)
	}
	for _, c := range [][2]string{{"1985-13-01", "10:00"}, {"15/08/1985", "10:00"}, {"1985-08-15", "25:00"}, {"1985-08-15", "noon"}} {
		if _, err := ParseBirth(c[0], c[1]); !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("%v: expected InvalidInput, got %v", c, err)
		}
	}
}

func TestToUT_FractionalOffsets(t *testing.T) {
	wall := time.Date(1985, 8, 15, 14, 30, 0, 0, time.UTC)

	ut := ToUT(wall, 5.5)
	if want := time.Date(1985, 8, 15, 9, 0, 0, 0, time.UTC); !ut.Equal(want) {
		t.Errorf("+5:30: got %v, want %v", ut, want)
	}
	ut = ToUT(wall, 5.75)
	if want := time.Date(1985, 8, 15, 8, 45, 0, 0, time.UTC); !ut.Equal(want) {
		t.Errorf("+5:45: got %v, want %v", ut, want)
	}
	ut = ToUT(time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), 9.5)
	if want := time.Date(2023, 12, 31, 15, 30, 0, 0, time.UTC); !ut.Equal(want) {
		t.Errorf("date rollover: got %v, want %v", ut, want)
	}
}

func TestLocalUTRoundTrip(t *testing.T) {
	offsets := []float64{-12, -9.5, -3.5, 0, 3, 5.5, 5.75, 8.75, 12.75, 14}
	wall := time.Date(1999, 12, 31, 23, 59, 0, 0, time.UTC)
	for _, off := range offsets {
		local := FromUT(ToUT(wall, off), off)
		if local.Year() != wall.Year() || local.YearDay() != wall.YearDay() ||
			local.Hour() != wall.Hour() || local.Minute() != wall.Minute() {
			t.Errorf("offset %v: round trip gave %v", off, local)
		}
	}
}

func TestNormalize(t *testing.T) {
	n, err := Normalize(Birth{Date: "1985-08-15", Time: "14:30:00", Timezone: "UTC+5:30", Latitude: 28.6139, Longitude: 77.2090})
	if err != nil {
		t.Fatal(err)
	}
	if n.OffsetHours != 5.5 {
		t.Errorf("offset: got %v", n.OffsetHours)
	}
	if !n.UT.Equal(time.Date(1985, 8, 15, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("ut: got %v", n.UT)
	}
	if n.Local.Format("2006-01-02 15:04 MST") != "1985-08-15 14:30 UTC+05:30" {
		t.Errorf("local: got %s", n.Local.Format("2006-01-02 15:04 MST"))
	}

	_, err = Normalize(Birth{Date: "2000-01-01", Time: "12:00", Timezone: "UTC"})
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("missing coordinates: expected InvalidInput, got %v", err)
	}
}

func TestLocalMidnight(t *testing.T) {
	wall := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	got := LocalMidnight(wall, 5.5)
	if want := time.Date(2024, 6, 14, 18, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got.In(IST).Format("15:04") != "00:00" {
		t.Errorf("IST midnight: got %s", got.In(IST).Format("15:04"))
	}
}
