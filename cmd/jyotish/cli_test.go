package main

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

var delhi = []string{"--date", "1985-08-15", "--time", "14:30", "--tz", "UTC+5:30", "--lat", "28.6139", "--lon", "77.2090"}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func withBirth(args ...string) []string {
	return append(args, delhi...)
}

func TestChart_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"json", []string{`"ascendant_sign": "Scorpio"`}},
		{"yaml", []string{"ascendant_sign: Scorpio"}},
		{"toml", []string{"[result]", "ascendant_sign = ", "Scorpio"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := run(t, withBirth("chart", "-o", tt.format)...)
			if err != nil {
				t.Fatalf("chart: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%.400s", w, out)
				}
			}
		})
	}
}

func TestDasha_Running(t *testing.T) {
	out, err := run(t, withBirth("dasha", "--at", "2024-06-01")...)
	if err != nil {
		t.Fatal(err)
	}
	var c struct {
		System  string `json:"system"`
		Periods []struct {
			Lord  string `json:"lord"`
			Level int    `json:"level"`
		} `json:"periods"`
	}
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.System != "vimshottari" || len(c.Periods) == 0 || c.Periods[0].Lord != "Venus" {
		t.Errorf("running periods: %+v", c)
	}
}

func TestVarga_All(t *testing.T) {
	out, err := run(t, withBirth("varga", "-d", "0")...)
	if err != nil {
		t.Fatal(err)
	}
	var all []map[string]any
	if err := json.Unmarshal([]byte(out), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 16 {
		t.Errorf("vargas: %d", len(all))
	}
}

func TestPanchang(t *testing.T) {
	out, err := run(t, "panchang", "--date", "2024-06-15", "--tz", "UTC+5:30", "--lat", "28.6139", "--lon", "77.2090")
	if err != nil {
		t.Fatal(err)
	}
	var p struct {
		Tithi struct {
			Number int `json:"number"`
		} `json:"tithi"`
		Nakshatra struct {
			Name string `json:"name"`
		} `json:"nakshatra"`
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Nakshatra.Name != "Hasta" {
		t.Errorf("nakshatra: %q", p.Nakshatra.Name)
	}
}

func TestEphemBuild_ThenChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eph", "table.db")
	out, err := run(t, "ephem", "build", "--from", "1985-08-13", "--to", "1985-08-18", "--step", "0.25", "--out", path)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var sum struct {
		Rows int `json:"rows"`
	}
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Rows != 21*8 {
		t.Errorf("rows: %d", sum.Rows)
	}

	out, err = run(t, withBirth("chart", "--ephemeris", "sqlite", "--ephemeris-path", path)...)
	if err != nil {
		t.Fatalf("chart from table: %v", err)
	}
	if !strings.Contains(out, `"ascendant_sign": "Scorpio"`) {
		t.Errorf("chart from table:\n%.400s", out)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format", withBirth("chart", "-o", "xml"), "unknown format"},
		{"missing birth flags", []string{"chart"}, "required flag"},
		{"unknown dasha system", withBirth("dasha", "--system", "yogini"), "yogini"},
		{"bad date", withBirth("dasha", "--at", "June"), "bad date"},
		{"house out of range", withBirth("house", "--house", "13"), "input: ##"},
		{"missing table", withBirth("chart", "--ephemeris", "sqlite", "--ephemeris-path", filepath.Join(t.TempDir(), "none.db")), "ephemeris"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}
