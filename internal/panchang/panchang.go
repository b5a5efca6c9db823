// Package panchang computes the five limbs of the Hindu almanac for a civil
// date and place, plus sunrise/sunset, Choghadiya, Hora and the weekday
// forbidden periods.
package panchang

import (
	"fmt"
	"math"
	"time"

	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/model"
	"jyotish-systemv1/internal/timeloc"
)

var tithiNames = [15]string{
	"Pratipada", "Dwitiya", "Tritiya", "Chaturthi", "Panchami",
	"Shashthi", "Saptami", "Ashtami", "Navami", "Dashami",
	"Ekadashi", "Dwadashi", "Trayodashi", "Chaturdashi", "Purnima",
}

var yogaNames = [27]string{
	"Vishkambha", "Priti", "Ayushman", "Saubhagya", "Shobhana", "Atiganda",
	"Sukarma", "Dhriti", "Shula", "Ganda", "Vriddhi", "Dhruva",
	"Vyaghata", "Harshana", "Vajra", "Siddhi", "Vyatipata", "Variyana",
	"Parigha", "Shiva", "Siddha", "Sadhya", "Shubha", "Shukla",
	"Brahma", "Indra", "Vaidhriti",
}

var varaNames = [7]string{
	"Ravivara", "Somavara", "Mangalavara", "Budhavara", "Guruvara", "Shukravara", "Shanivara",
}

// WeekdayLords rule the days from Sunday.
var WeekdayLords = [7]model.Graha{
	model.Sun, model.Moon, model.Mars, model.Mercury, model.Jupiter, model.Venus, model.Saturn,
}

var movableKaranas = [7]string{"Bava", "Balava", "Kaulava", "Taitila", "Gara", "Vanija", "Vishti"}

// Tithi is the lunar day, 1..30.
type Tithi struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Paksha string `json:"paksha"`
}

// Vara is the weekday, 0 = Sunday.
type Vara struct {
	Number int         `json:"number"`
	Name   string      `json:"name"`
	Lord   model.Graha `json:"lord"`
}

// Nakshatra is the Moon's mansion, 1..27.
type Nakshatra struct {
	Number int         `json:"number"`
	Name   string      `json:"name"`
	Pada   int         `json:"pada"`
	Lord   model.Graha `json:"lord"`
}

// Yoga is the Sun+Moon combination, 1..27.
type Yoga struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Karana is the half-tithi, 1..60.
type Karana struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Fixed  bool   `json:"fixed"`
}

// Window is a half-open local time interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Panchang is the almanac for one civil date at one place, evaluated at
// local noon.
type Panchang struct {
	Date        string         `json:"date"`
	Location    model.Location `json:"location"`
	OffsetHours float64        `json:"offset_hours"`
	JD          float64        `json:"jd"`

	Tithi     Tithi     `json:"tithi"`
	Vara      Vara      `json:"vara"`
	Nakshatra Nakshatra `json:"nakshatra"`
	Yoga      Yoga      `json:"yoga"`
	Karana    Karana    `json:"karana"`

	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	NextSunrise time.Time `json:"next_sunrise"`

	Choghadiya  []Muhurta `json:"choghadiya"`
	Horas       []Hora    `json:"horas"`
	RahuKalam   Window    `json:"rahu_kalam"`
	Yamagandam  Window    `json:"yamagandam"`
	GulikaKalam Window    `json:"gulika_kalam"`
}

// Compute evaluates the panchang for the civil date of date at loc. Only
// the year, month and day of date are used.
func Compute(eph *ephemeris.Ephemeris, date time.Time, loc model.Location, offsetHours float64) (*Panchang, error) {
	if err := timeloc.ValidateLocation(loc.Latitude, loc.Longitude); err != nil {
		return nil, err
	}
	midnight := timeloc.LocalMidnight(date, offsetHours)
	midJD := ephemeris.JulianDay(midnight)
	noon := midJD + 0.5

	sun, err := eph.SiderealPosition(noon, model.Sun, 0)
	if err != nil {
		return nil, fmt.Errorf("panchang sun: %w", err)
	}
	moon, err := eph.SiderealPosition(noon, model.Moon, 0)
	if err != nil {
		return nil, fmt.Errorf("panchang moon: %w", err)
	}
	rise, set, err := eph.SunRiseSet(midJD, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, err
	}
	next, _, err := eph.SunRiseSet(midJD+1, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, err
	}

	zone := timeloc.Zone(offsetHours)
	at := func(jd float64) time.Time { return ephemeris.TimeFromJulianDay(jd).In(zone) }

	vara := VaraOf(noon)
	p := &Panchang{
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		Location:    loc,
		OffsetHours: offsetHours,
		JD:          noon,
		Tithi:       TithiOf(sun.Longitude, moon.Longitude),
		Vara:        Vara{Number: vara, Name: varaNames[vara], Lord: WeekdayLords[vara]},
		Nakshatra:   NakshatraOf(moon.Longitude),
		Yoga:        YogaOf(sun.Longitude, moon.Longitude),
		Karana:      KaranaOf(sun.Longitude, moon.Longitude),
		Sunrise:     at(rise),
		Sunset:      at(set),
		NextSunrise: at(next),
	}
	p.Choghadiya = choghadiya(vara, rise, set, next, at)
	p.Horas = horas(vara, rise, set, next, at)
	p.RahuKalam = dayPart(rahuPart[vara], rise, set, at)
	p.Yamagandam = dayPart(yamaPart[vara], rise, set, at)
	p.GulikaKalam = dayPart(gulikaPart[vara], rise, set, at)
	return p, nil
}

// elongation is (Moon - Sun) mod 360.
func elongation(sun, moon float64) float64 { return model.NormDeg(moon - sun) }

// TithiOf numbers the lunar day from the Moon's lead over the Sun.
func TithiOf(sun, moon float64) Tithi {
	n := int(math.Floor(elongation(sun, moon)/12)) + 1
	if n > 30 {
		n = 30
	}
	t := Tithi{Number: n, Name: tithiNames[(n-1)%15], Paksha: "Shukla"}
	if n > 15 {
		t.Paksha = "Krishna"
	}
	if n == 30 {
		t.Name = "Amavasya"
	}
	return t
}

// VaraOf is floor(JD + 1.5) mod 7, 0 = Sunday.
func VaraOf(jd float64) int {
	return int(math.Mod(math.Floor(jd+1.5), 7))
}

// NakshatraOf numbers the Moon's mansion from 1.
func NakshatraOf(moon float64) Nakshatra {
	n := model.NakshatraOf(moon)
	return Nakshatra{Number: n.Index + 1, Name: n.Name, Pada: n.Pada, Lord: n.Lord}
}

// YogaOf numbers the Sun+Moon sum in nakshatra-sized arcs from 1.
func YogaOf(sun, moon float64) Yoga {
	i := int(math.Floor(model.NormDeg(sun+moon) / model.NakshatraSpan))
	if i > 26 {
		i = 26
	}
	return Yoga{Number: i + 1, Name: yogaNames[i]}
}

// KaranaOf numbers the half-tithi from 1. The first is Kimstughna, the last
// three Shakuni, Chatushpada and Naga; the 56 between cycle the seven
// movable karanas.
func KaranaOf(sun, moon float64) Karana {
	n := int(math.Floor(elongation(sun, moon)/6)) + 1
	if n > 60 {
		n = 60
	}
	switch {
	case n == 1:
		return Karana{Number: n, Name: "Kimstughna", Fixed: true}
	case n >= 58:
		return Karana{Number: n, Name: [3]string{"Shakuni", "Chatushpada", "Naga"}[n-58], Fixed: true}
	}
	return Karana{Number: n, Name: movableKaranas[(n-2)%7]}
}
