package chart

import (
	"fmt"
	"math"
	"strings"

	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"
)

// ketuTolerance bounds |Ketu - (Rahu+180)| in degrees.
const ketuTolerance = 1e-6

// Verify checks the chart-wide invariants. A failure is always a bug and is
// reported as InconsistentChart with a dump of the positions.
func Verify(c *model.NatalChart) error {
	fail := func(format string, args ...any) error {
		return errs.Inconsistent(dump(c), format, args...)
	}
	if model.SignOf(c.Ascendant) != c.AscendantSign {
		return fail("ascendant %.6f is not in lagna sign %s", c.Ascendant, c.AscendantSign)
	}
	if h := c.House(1); h.Sign != c.AscendantSign || h.Number != 1 {
		return fail("house 1 is %s, lagna is %s", h.Sign, c.AscendantSign)
	}
	if len(c.Positions) != len(model.AllPoints) {
		return fail("chart has %d points, want %d", len(c.Positions), len(model.AllPoints))
	}
	for _, g := range model.AllPoints {
		p, ok := c.Positions[g]
		if !ok {
			return fail("%s missing", g)
		}
		if p.Longitude < 0 || p.Longitude >= 360 || math.IsNaN(p.Longitude) {
			return fail("%s longitude %.6f out of range", g, p.Longitude)
		}
		if p.Sign != model.SignOf(p.Longitude) {
			return fail("%s sign %s does not match longitude %.6f", g, p.Sign, p.Longitude)
		}
		if want := c.AscendantSign.HouseFrom(p.Sign); p.House != want {
			return fail("%s in house %d, sign %s gives house %d", g, p.House, p.Sign, want)
		}
		if c.House(p.House).Sign != p.Sign {
			return fail("%s house %d has sign %s, graha sign %s", g, p.House, c.House(p.House).Sign, p.Sign)
		}
	}
	rahu, ketu := c.Positions[model.Rahu], c.Positions[model.Ketu]
	if d := math.Abs(model.SepDeg(ketu.Longitude, rahu.Longitude) - 180); d > ketuTolerance {
		return fail("Ketu is %.9f from opposite Rahu", d)
	}
	if (rahu.House+5)%12+1 != ketu.House {
		return fail("Ketu house %d is not opposite Rahu house %d", ketu.House, rahu.House)
	}
	return nil
}

func dump(c *model.NatalChart) string {
	var b strings.Builder
	fmt.Fprintf(&b, "asc=%.6f(%s)", c.Ascendant, c.AscendantSign)
	for _, g := range model.AllPoints {
		if p, ok := c.Positions[g]; ok {
			fmt.Fprintf(&b, " %s=%.6f/%s/h%d", g, p.Longitude, p.Sign, p.House)
		}
	}
	return b.String()
}
