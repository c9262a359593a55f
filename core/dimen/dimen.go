/*
Package dimen implements font size dimensions and units.

Sizes are given in CSS-like syntax, e.g. "12pt", "10.5bp" or "4mm", and are
converted to device pixels for a given resolution. A bare number is taken
as pixels.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package dimen

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/fixedpt"
)

// Online dimension conversion for print:
// http://www.unitconversion.org/unit_converter/typography-ex.html

// Dimen is a dimension type.
// Values are in scaled big points (different from TeX).
type Dimen int32

// Some pre-defined dimensions
const (
	Zero Dimen = 0
	SP   Dimen = 1       // scaled point = BP / 65536
	BP   Dimen = 65536   // big point (PDF) = 1/72 inch
	PT   Dimen = 65291   // printers point 1/72.27 inch
	MM   Dimen = 185771  // millimeters
	CM   Dimen = 1857710 // centimeters
	IN   Dimen = 4718592 // inch
)

// DefaultDPI is the resolution at which a big point is one pixel.
const DefaultDPI = 72

// Stringer implementation.
func (d Dimen) String() string {
	return fmt.Sprintf("%.2fbp", d.Points())
}

// Points returns a dimension in big (PDF) points.
func (d Dimen) Points() float64 {
	return float64(d) / float64(BP)
}

// Pixels converts a dimension to 16.16 pixels at a resolution of dpi.
func (d Dimen) Pixels(dpi int) fixedpt.F16Dot16 {
	return fixedpt.F16Dot16(fixedpt.MulDiv(int32(d), int32(dpi), DefaultDPI))
}

// ---------------------------------------------------------------------------

var dimenPattern = regexp.MustCompile(`^([+\-]?[0-9]+(?:\.[0-9]+)?)([a-zA-Z]{2})?$`)

// ParseDimen parses a string to return a dimension. Syntax is CSS Unit.
// A value without unit is taken as pixels; pixels and big points are
// interchangeable at DefaultDPI.
func ParseDimen(s string) (Dimen, error) {
	d := dimenPattern.FindStringSubmatch(strings.TrimSpace(s))
	if len(d) < 2 {
		return 0, core.Error(core.EINVALID, "format error parsing dimension %q", s)
	}
	var scale Dimen
	switch strings.ToLower(d[2]) {
	case "pt":
		scale = PT
	case "mm":
		scale = MM
	case "bp", "px", "":
		scale = BP
	case "cm":
		scale = CM
	case "in":
		scale = IN
	case "sp":
		scale = SP
	default:
		return 0, core.Error(core.EINVALID, "unknown unit in dimension %q", s)
	}
	n, err := strconv.ParseFloat(d[1], 64)
	if err != nil {
		return 0, core.WrapError(err, core.EINVALID, "format error parsing dimension %q", s)
	}
	return Dimen(math.Round(n * float64(scale))), nil
}
