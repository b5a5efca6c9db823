package panchang

import (
	"time"

	"jyotish-systemv1/internal/model"
)

// Choghadiya names, each ruled by the weekday lord at the same index.
var choghadiyaNames = [7]string{"Udvega", "Amrita", "Roga", "Labha", "Shubha", "Chara", "Kala"}

var choghadiyaQuality = map[string]string{
	"Amrita": "good", "Shubha": "good", "Labha": "good",
	"Chara":  "neutral",
	"Udvega": "bad", "Roga": "bad", "Kala": "bad",
}

// Step through the name cycle between consecutive day and night parts.
const (
	dayStep   = 5
	nightStep = 4
)

// chaldean is the planetary hour order.
var chaldean = [7]model.Graha{
	model.Saturn, model.Jupiter, model.Mars, model.Sun, model.Venus, model.Mercury, model.Moon,
}

// Part of the daytime (0..7 from sunrise) for each weekday from Sunday.
var (
	rahuPart   = [7]int{7, 1, 6, 4, 5, 3, 2}
	yamaPart   = [7]int{4, 3, 2, 1, 0, 6, 5}
	gulikaPart = [7]int{6, 5, 4, 3, 2, 1, 0}
)

// Muhurta is one Choghadiya.
type Muhurta struct {
	Name    string    `json:"name"`
	Quality string    `json:"quality"`
	Night   bool      `json:"night"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Hora is one planetary hour.
type Hora struct {
	Lord  model.Graha `json:"lord"`
	Night bool        `json:"night"`
	Start time.Time   `json:"start"`
	End   time.Time   `json:"end"`
}

// ChoghadiyaStart returns the first name index of the day and of the night.
func ChoghadiyaStart(weekday int) (day, night int) {
	return weekday % 7, (weekday + 4) % 7
}

func choghadiya(weekday int, rise, set, next float64, at func(float64) time.Time) []Muhurta {
	out := make([]Muhurta, 0, 16)
	dayIdx, nightIdx := ChoghadiyaStart(weekday)
	add := func(idx, step int, from, to float64, night bool) {
		part := (to - from) / 8
		for k := 0; k < 8; k++ {
			end := from + float64(k+1)*part
			if k == 7 {
				end = to
			}
			name := choghadiyaNames[idx]
			out = append(out, Muhurta{
				Name:    name,
				Quality: choghadiyaQuality[name],
				Night:   night,
				Start:   at(from + float64(k)*part),
				End:     at(end),
			})
			idx = (idx + step) % 7
		}
	}
	add(dayIdx, dayStep, rise, set, false)
	add(nightIdx, nightStep, set, next, true)
	return out
}

func chaldeanIndex(g model.Graha) int {
	for i, c := range chaldean {
		if c == g {
			return i
		}
	}
	return 0
}

func horas(weekday int, rise, set, next float64, at func(float64) time.Time) []Hora {
	out := make([]Hora, 0, 24)
	idx := chaldeanIndex(WeekdayLords[weekday])
	add := func(from, to float64, night bool) {
		part := (to - from) / 12
		for k := 0; k < 12; k++ {
			end := from + float64(k+1)*part
			if k == 11 {
				end = to
			}
			out = append(out, Hora{Lord: chaldean[idx], Night: night, Start: at(from + float64(k)*part), End: at(end)})
			idx = (idx + 1) % 7
		}
	}
	add(rise, set, false)
	add(set, next, true)
	return out
}

// dayPart returns the k-th eighth of the daytime.
func dayPart(k int, rise, set float64, at func(float64) time.Time) Window {
	part := (set - rise) / 8
	return Window{Start: at(rise + float64(k)*part), End: at(rise + float64(k+1)*part)}
}
