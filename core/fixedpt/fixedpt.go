/*
Package fixedpt implements the fixed-point arithmetic used throughout font
scaling: 16.16 values for transforms, advances and font-wide metrics, and
26.6 values for outline coordinates and bounding boxes.

All operations are integer-only and bit-for-bit reproducible. Glyph positions
computed on different platforms must not drift apart, therefore no function in
this package resorts to floating point (with the exception of the explicitly
named conversion helpers).

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fixedpt

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/npillmayer/fontengines/core"
	"golang.org/x/image/math/fixed"
)

// F16Dot16 is a signed fixed-point number with 16 fractional bits.
type F16Dot16 int32

// F26Dot6 is a signed fixed-point number with 6 fractional bits, as used
// for outline coordinates.
type F26Dot6 int32

// Well known constants.
const (
	One    F16Dot16 = 1 << 16
	Half   F16Dot16 = 1 << 15
	MaxS32 int32    = math.MaxInt32
	One266 F26Dot6  = 1 << 6
)

// Int16Dot16 converts an integer to 16.16.
func Int16Dot16(n int) F16Dot16 {
	return F16Dot16(n << 16)
}

// FromFloat converts a float to 16.16, truncating towards zero.
func FromFloat(f float64) F16Dot16 {
	return F16Dot16(f * 65536.0)
}

// Float returns x as a float64.
func (x F16Dot16) Float() float64 {
	return float64(x) / 65536.0
}

// To26Dot6 converts a 16.16 value to 26.6.
func (x F16Dot16) To26Dot6() F26Dot6 {
	return F26Dot6(x >> 10)
}

// Round returns x rounded to the nearest integer.
func (x F16Dot16) Round() int {
	return int((x + Half) >> 16)
}

func (x F16Dot16) String() string {
	return fmt.Sprintf("%.4f", x.Float())
}

// To16Dot16 converts a 26.6 value to 16.16.
func (x F26Dot6) To16Dot16() F16Dot16 {
	return F16Dot16(x << 10)
}

// Floor rounds x down to a multiple of 64 (one pixel).
func (x F26Dot6) Floor() F26Dot6 {
	return x &^ 63
}

// Ceil rounds x up to a multiple of 64.
func (x F26Dot6) Ceil() F26Dot6 {
	return (x + 63) &^ 63
}

// Pixels returns the integral pixel part of x (arithmetic shift).
func (x F26Dot6) Pixels() int {
	return int(x >> 6)
}

// Fixed converts x to the x/image representation.
func (x F26Dot6) Fixed() fixed.Int26_6 {
	return fixed.Int26_6(x)
}

// From26Dot6 converts from the x/image representation.
func From26Dot6(x fixed.Int26_6) F26Dot6 {
	return F26Dot6(x)
}

// --- Sign handling ---------------------------------------------------------

// Abs returns the absolute value of v. Abs(math.MinInt32) wraps, as its
// two's complement counterpart does.
func Abs(v int32) int32 {
	mask := v >> 31
	return (v ^ mask) - mask
}

// ExtractSign returns -1 if n < 0, else 0.
func ExtractSign(n int32) int32 {
	return n >> 31
}

// ApplySign returns -n if sign == -1, and n if sign == 0.
// Any other value for sign is a programming error.
func ApplySign(n, sign int32) int32 {
	core.Assert(sign == 0 || sign == -1, "ApplySign: sign must be 0 or -1, is %d", sign)
	return (n ^ sign) - sign
}

// Avg returns the average of a and b, rounded towards negative infinity.
func Avg(a, b F16Dot16) F16Dot16 {
	return (a + b) >> 1
}

// --- Division --------------------------------------------------------------

// DivBits computes (numer << shift) / denom with 64 bit intermediate
// precision. It is used for every division in scale and advance
// computations.
//
// The result is truncated towards zero. If the result would need more than 31
// bits, DivBits saturates to ±MaxS32. If no result bit would be produced at
// all, it returns 0. A zero denominator is a programming error and will panic.
func DivBits(numer, denom int32, shift int) int32 {
	core.Assert(denom != 0, "DivBits: division by zero")
	if numer == 0 {
		return 0
	}
	sign := ExtractSign(numer ^ denom)
	n, d := magnitude(numer), magnitude(denom)
	nbits := bits.LeadingZeros32(n)
	dbits := bits.LeadingZeros32(d)
	rbits := shift - nbits + dbits
	if rbits < 0 { // answer will underflow
		return 0
	}
	if rbits > 31 { // answer will overflow
		return ApplySign(MaxS32, sign)
	}
	// normalize both operands to have their top bit at bit 31
	num := int64(n) << nbits
	den := int64(d) << dbits
	var result int64
	if num -= den; num >= 0 {
		result = 1
	} else {
		num += den
	}
	if rbits > 0 {
		result <<= rbits
		for i := rbits; i > 0; i-- {
			if num = num<<1 - den; num >= 0 {
				result |= 1 << (i - 1)
			} else {
				num += den
			}
		}
	}
	if result > int64(MaxS32) {
		result = int64(MaxS32)
	}
	return ApplySign(int32(result), sign)
}

func magnitude(v int32) uint32 {
	if v < 0 {
		return uint32(-int64(v))
	}
	return uint32(v)
}

// Div divides two 16.16 values.
func Div(a, b F16Dot16) F16Dot16 {
	return F16Dot16(DivBits(int32(a), int32(b), 16))
}

// Invert returns 1/x in 16.16.
func Invert(x F16Dot16) F16Dot16 {
	return F16Dot16(DivBits(int32(One), int32(x), 16))
}

// --- Multiplication --------------------------------------------------------

// MulFix multiplies a by a 16.16 factor b, rounding to nearest.
// a may be of any fixed-point format; the result has the format of a.
func MulFix(a, b int32) int32 {
	sign := int32(1)
	ua, ub := int64(a), int64(b)
	if ua < 0 {
		ua, sign = -ua, -sign
	}
	if ub < 0 {
		ub, sign = -ub, -sign
	}
	c := (ua*ub + 0x8000) >> 16
	if c > int64(MaxS32) {
		c = int64(MaxS32)
	}
	return sign * int32(c)
}

// MulDiv computes (a*b)/c with 64 bit intermediate precision, rounding to
// nearest. A zero c saturates to ±MaxS32.
func MulDiv(a, b, c int32) int32 {
	sign := int32(1)
	ua, ub, uc := int64(a), int64(b), int64(c)
	if ua < 0 {
		ua, sign = -ua, -sign
	}
	if ub < 0 {
		ub, sign = -ub, -sign
	}
	if uc < 0 {
		uc, sign = -uc, -sign
	}
	d := int64(MaxS32)
	if uc > 0 {
		d = (ua*ub + uc>>1) / uc
		if d > int64(MaxS32) {
			d = int64(MaxS32)
		}
	}
	return sign * int32(d)
}

// Mul multiplies two 16.16 values.
func Mul(a, b F16Dot16) F16Dot16 {
	return F16Dot16(MulFix(int32(a), int32(b)))
}
