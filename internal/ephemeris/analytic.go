package ephemeris

import (
	"fmt"
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/deltat"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"jyotish-systemv1/internal/model"
)

// Analytic computes geocentric tropical positions, mean equinox of date.
// The Sun, Moon and mean node come from the meeus solar and lunar theories.
// Mercury through Saturn use mean orbital elements (epoch 1999-12-31 0h)
// with the Jupiter/Saturn great-inequality terms, good to a few arcminutes
// over several centuries around 2000.
type Analytic struct{}

// NewAnalytic returns the built-in source. It holds no state.
func NewAnalytic() *Analytic { return &Analytic{} }

type elements struct {
	N, i, w, a, e, M float64
}

// dayNumber counts days from 1999-12-31 0h.
func dayNumber(jde float64) float64 { return jde - 2451543.5 }

func orbitalElements(body model.Graha, d float64) elements {
	switch body {
	case model.Mercury:
		return elements{48.3313 + 3.24587e-5*d, 7.0047 + 5.00e-8*d, 29.1241 + 1.01444e-5*d, 0.387098, 0.205635 + 5.59e-10*d, 168.6562 + 4.0923344368*d}
	case model.Venus:
		return elements{76.6799 + 2.46590e-5*d, 3.3946 + 2.75e-8*d, 54.8910 + 1.38374e-5*d, 0.723330, 0.006773 - 1.302e-9*d, 48.0052 + 1.6021302244*d}
	case model.Mars:
		return elements{49.5574 + 2.11081e-5*d, 1.8497 - 1.78e-8*d, 286.5016 + 2.92961e-5*d, 1.523688, 0.093405 + 2.516e-9*d, 18.6021 + 0.5240207766*d}
	case model.Jupiter:
		return elements{100.4542 + 2.76854e-5*d, 1.3030 - 1.557e-7*d, 273.8777 + 1.64505e-5*d, 5.20256, 0.048498 + 4.469e-9*d, 19.8950 + 0.0830853001*d}
	case model.Saturn:
		return elements{113.6634 + 2.38980e-5*d, 2.4886 - 1.081e-7*d, 339.3939 + 2.97661e-5*d, 9.55475, 0.055546 - 9.499e-9*d, 316.9670 + 0.0334442282*d}
	}
	return elements{}
}

// Tropical implements Source.
func (Analytic) Tropical(jd float64, body model.Graha) (float64, float64, error) {
	jde := dynamicalJD(jd)
	switch body {
	case model.Sun:
		s, _ := solar.True(base.J2000Century(jde))
		return s.Deg(), 0, nil
	case model.Moon:
		lon, lat, _ := moonposition.Position(jde)
		return model.NormDeg(lon.Deg()), lat.Deg(), nil
	case model.Rahu:
		return moonposition.Node(jde).Deg(), 0, nil
	case model.Mercury, model.Venus, model.Mars, model.Jupiter, model.Saturn:
		lon, lat := planetEcliptic(body, jde)
		return lon, lat, nil
	}
	return 0, 0, fmt.Errorf("analytic source has no body %s", body)
}

// dynamicalJD converts a UT Julian Day to dynamical time (JDE).
func dynamicalJD(jd float64) float64 {
	y, m, _, _ := CalendarFromJulianDay(jd)
	year := float64(y) + float64(m-1)/12
	var dt unit.Time
	switch {
	case year < 948:
		dt = deltat.PolyBefore948(year)
	case year < 1620:
		dt = deltat.Poly948to1600(year)
	case year < 2010:
		dt = deltat.Interp10A(jd)
	default:
		dt = deltat.PolyAfter2000(year)
	}
	return jd + dt.Day()
}

func sind(x float64) float64 { return math.Sin(x * math.Pi / 180) }
func cosd(x float64) float64 { return math.Cos(x * math.Pi / 180) }
func atan2d(y, x float64) float64 {
	return math.Atan2(y, x) * 180 / math.Pi
}

// eccentricAnomaly solves Kepler's equation by Newton iteration, degrees.
func eccentricAnomaly(M, e float64) float64 {
	M = model.NormDeg(M)
	k := e * 180 / math.Pi
	E := M + k*sind(M)*(1+e*cosd(M))
	for i := 0; i < 20; i++ {
		E1 := E - (E-k*sind(E)-M)/(1-e*cosd(E))
		if math.Abs(E1-E) < 1e-9 {
			return E1
		}
		E = E1
	}
	return E
}

// heliocentric returns ecliptic rectangular coordinates plus distance.
func heliocentric(el elements) (x, y, z, r float64) {
	E := eccentricAnomaly(el.M, el.e)
	xv := el.a * (cosd(E) - el.e)
	yv := el.a * math.Sqrt(1-el.e*el.e) * sind(E)
	v := atan2d(yv, xv)
	r = math.Hypot(xv, yv)
	vw := v + el.w
	x = r * (cosd(el.N)*cosd(vw) - sind(el.N)*sind(vw)*cosd(el.i))
	y = r * (sind(el.N)*cosd(vw) + cosd(el.N)*sind(vw)*cosd(el.i))
	z = r * (sind(vw) * sind(el.i))
	return x, y, z, r
}

func planetEcliptic(body model.Graha, jde float64) (lon, lat float64) {
	d := dayNumber(jde)
	el := orbitalElements(body, d)
	x, y, z, r := heliocentric(el)
	lon = atan2d(y, x)
	latH := atan2d(z, math.Hypot(x, y))

	Mj := orbitalElements(model.Jupiter, d).M
	Ms := orbitalElements(model.Saturn, d).M
	switch body {
	case model.Jupiter:
		lon += -0.332*sind(2*Mj-5*Ms-67.6) -
			0.056*sind(2*Mj-2*Ms+21) +
			0.042*sind(3*Mj-5*Ms+21) -
			0.036*sind(Mj-2*Ms) +
			0.022*cosd(Mj-Ms) +
			0.023*sind(2*Mj-3*Ms+52) -
			0.016*sind(Mj-5*Ms-69)
	case model.Saturn:
		lon += 0.812*sind(2*Mj-5*Ms-67.6) -
			0.229*cosd(2*Mj-4*Ms-2) +
			0.119*sind(Mj-2*Ms-3) +
			0.046*sind(2*Mj-6*Ms-69) +
			0.014*sind(Mj-3*Ms+32)
		latH += -0.020*cosd(2*Mj-4*Ms-2) + 0.018*sind(2*Mj-6*Ms-49)
	}

	// back to rectangular with the perturbed longitude
	xh := r * cosd(lon) * cosd(latH)
	yh := r * sind(lon) * cosd(latH)
	zh := r * sind(latH)

	T := base.J2000Century(jde)
	s, _ := solar.True(T)
	sl, sr := s.Deg(), solar.Radius(T)
	xg := xh + sr*cosd(sl)
	yg := yh + sr*sind(sl)
	return model.NormDeg(atan2d(yg, xg)), atan2d(zh, math.Hypot(xg, yg))
}
