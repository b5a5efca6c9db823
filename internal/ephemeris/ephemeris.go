// Package ephemeris wraps a tropical position source and exposes sidereal
// (Lahiri) positions, the ascendant, and sunrise/sunset.
//
// An *Ephemeris is the process-wide setup handle: it is created once with
// New, fixes the ayanamsa for its lifetime, and is safe for concurrent use.
// No computation ever changes the ayanamsa mode.
package ephemeris

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/logger"
	"jyotish-systemv1/internal/model"
)

// ErrTransient marks a source failure that may succeed after Reopen.
var ErrTransient = errors.New("ephemeris: transient source failure")

// Source provides geocentric tropical ecliptic coordinates (degrees) for a
// body at a Julian Day (UT). Bodies are Sun..Saturn and Rahu (mean node).
type Source interface {
	Tropical(jd float64, body model.Graha) (lon, lat float64, err error)
}

// Reopener is implemented by sources backed by files that can be reopened
// after a transient failure.
type Reopener interface {
	Reopen() error
}

// Flags select optional computations for SiderealPosition.
type Flags uint8

const (
	FlagSpeed    Flags = 1 << iota // compute speed by finite difference
	FlagTropical                   // skip the ayanamsa correction
)

// Ayanamsa identifies the sidereal mode. Only Lahiri is supported.
type Ayanamsa int

const AyanamsaLahiri Ayanamsa = 1

// Position is one body at one instant.
type Position struct {
	Longitude  float64 `json:"longitude"`
	Latitude   float64 `json:"latitude"`
	Speed      float64 `json:"speed"`
	Retrograde bool    `json:"retrograde"`
}

// Ephemeris is the setup handle passed to every component that needs positions.
type Ephemeris struct {
	src     Source
	mode    Ayanamsa
	log     *slog.Logger
	onRetry func()
}

// Option configures New.
type Option func(*Ephemeris)

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Ephemeris) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRetryHook is called each time a transient failure triggers a reopen.
func WithRetryHook(fn func()) Option {
	return func(e *Ephemeris) { e.onRetry = fn }
}

// New performs the one-time setup: it binds the source and fixes Lahiri.
func New(src Source, opts ...Option) *Ephemeris {
	if src == nil {
		src = NewAnalytic()
	}
	e := &Ephemeris{src: src, mode: AyanamsaLahiri, log: logger.Discard()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Mode reports the ayanamsa fixed at setup.
func (e *Ephemeris) Mode() Ayanamsa { return e.mode }

// Ayanamsa returns the Lahiri ayanamsa in degrees at jd.
func (e *Ephemeris) Ayanamsa(jd float64) float64 {
	T := (jd - 2451545.0) / 36525
	return 23.85709 + 1.396971*T + 0.0003086*T*T
}

// SiderealPosition returns the sidereal longitude, latitude and speed of
// body. Ketu and the shadow points are derived by the chart builder and are
// rejected here.
func (e *Ephemeris) SiderealPosition(jd float64, body model.Graha, flags Flags) (Position, error) {
	if !(body.IsPlanet() || body == model.Rahu) {
		return Position{}, errs.Invalid(body.String(), "body %s is not provided by the ephemeris", body)
	}
	lon, lat, err := e.tropical(jd, body)
	if err != nil {
		return Position{}, err
	}
	p := Position{Longitude: lon, Latitude: lat}
	if flags&FlagSpeed != 0 {
		before, _, err := e.tropical(jd-0.5, body)
		if err != nil {
			return Position{}, err
		}
		after, _, err := e.tropical(jd+0.5, body)
		if err != nil {
			return Position{}, err
		}
		p.Speed = signedDelta(before, after)
	}
	if flags&FlagTropical == 0 {
		p.Longitude = model.NormDeg(p.Longitude - e.Ayanamsa(jd))
	}
	// mean nodes always move backwards; report them direct by convention
	p.Retrograde = p.Speed < 0 && body != model.Rahu
	return p, nil
}

// tropical reads from the source, retrying once after a reopen when the
// failure is transient, and rejects non-finite output.
func (e *Ephemeris) tropical(jd float64, body model.Graha) (float64, float64, error) {
	lon, lat, err := e.src.Tropical(jd, body)
	if err != nil && errors.Is(err, ErrTransient) {
		if r, ok := e.src.(Reopener); ok {
			e.log.Warn("[ephemeris] transient source failure, reopening",
				slog.String("body", body.String()), slog.Any("error", err))
			if e.onRetry != nil {
				e.onRetry()
			}
			if rerr := r.Reopen(); rerr != nil {
				return 0, 0, errs.Wrap(errs.KindEphemeris, rerr, "reopen ephemeris source")
			}
			lon, lat, err = e.src.Tropical(jd, body)
		}
	}
	if err != nil {
		return 0, 0, errs.Wrap(errs.KindEphemeris, err, "position of %s at JD %.5f", body, jd)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return 0, 0, errs.New(errs.KindEphemeris, "non-finite position for %s at JD %.5f", body, jd)
	}
	return model.NormDeg(lon), lat, nil
}

// signedDelta is the change from a to b in (-180,180].
func signedDelta(a, b float64) float64 {
	d := math.Mod(b-a+540, 360) - 180
	if d == -180 {
		d = 180
	}
	return d
}

func (e *Ephemeris) String() string {
	return fmt.Sprintf("ephemeris(%T, lahiri)", e.src)
}
