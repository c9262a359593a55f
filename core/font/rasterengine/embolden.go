package rasterengine

import (
	"math/bits"

	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font/fem"
	"golang.org/x/image/math/fixed"
)

// Synthetic emboldening of outlines and bitmaps.

// bitmapEmboldenStrength is the horizontal dilation of bitmap glyphs in 26.6.
const bitmapEmboldenStrength = 1 << 6

// emboldenStrength returns the outline emboldening strength for a face at a
// vertical scale: 1/24 of the em size in 26.6 pixels.
func emboldenStrength(upem int, scaleY fixedpt.F16Dot16) fixedpt.F26Dot6 {
	if upem <= 0 {
		return 0
	}
	yScale := fixedpt.MulDiv(int32(scaleY.To26Dot6()), 0x10000, int32(upem))
	return fixedpt.F26Dot6(fixedpt.MulFix(int32(upem), yScale) / 24)
}

type orientation int8

const (
	orientationNone       orientation = 0
	orientationTrueType   orientation = 1 // outer contours clockwise
	orientationPostScript orientation = 2 // outer contours counter-clockwise
)

// outlineOrientation computes the orientation of an outline from the signed
// area of its contours.
func outlineOrientation(o *fem.GlyphOutline) orientation {
	var area int64
	first := 0
	for _, last := range o.Contours {
		prev := o.Points[last]
		for n := first; n <= int(last); n++ {
			cur := o.Points[n]
			area += int64(cur.Y-prev.Y) * int64(cur.X+prev.X)
			prev = cur
		}
		first = int(last) + 1
	}
	switch {
	case area > 0:
		return orientationPostScript
	case area < 0:
		return orientationTrueType
	}
	return orientationNone
}

// emboldenOutline widens the strokes of an outline by strength, in both
// directions. Points are moved along the bisector of the adjacent edges;
// the shift is limited for short edges, so collapsing segments are handled
// gracefully. Outlines without a detectable orientation are left unchanged.
func emboldenOutline(o *fem.GlyphOutline, xstrength, ystrength fixedpt.F26Dot6) {
	xstr, ystr := int32(xstrength/2), int32(ystrength/2)
	if (xstr <= 0 && ystr <= 0) || o.ContourCount() == 0 {
		return
	}
	orient := outlineOrientation(o)
	if orient == orientationNone {
		return
	}
	points := o.Points
	first := 0
	for _, c := range o.Contours {
		last := int(c)
		var in, out, anchor vec
		var lIn, lOut, lAnchor int32
		next := func(j int) int {
			if j < last {
				return j + 1
			}
			return first
		}
		// j cycles through the points, i advances only when points are
		// moved, k marks the first moved point.
		for i, j, k := last, first, -1; j != i && i != k; j = next(j) {
			if j != k {
				out = vec{int32(points[j].X - points[i].X), int32(points[j].Y - points[i].Y)}
				if lOut = out.normalize(); lOut == 0 {
					continue
				}
			} else {
				out, lOut = anchor, lAnchor
			}
			if lIn != 0 {
				if k < 0 {
					k, anchor, lAnchor = i, in, lIn
				}
				var shift vec
				d := fixedpt.MulFix(in.x, out.x) + fixedpt.MulFix(in.y, out.y)
				if d > -0xF000 { // shift only if turn is less than ~160 degrees
					d += 0x10000
					shift = vec{in.y + out.y, in.x + out.x}
					if orient == orientationTrueType {
						shift.x = -shift.x
					} else {
						shift.y = -shift.y
					}
					q := fixedpt.MulFix(out.x, in.y) - fixedpt.MulFix(out.y, in.x)
					if orient == orientationTrueType {
						q = -q
					}
					l := lIn
					if lOut < l {
						l = lOut
					}
					if fixedpt.MulFix(xstr, q) <= fixedpt.MulFix(l, d) {
						shift.x = fixedpt.MulDiv(shift.x, xstr, d)
					} else {
						shift.x = fixedpt.MulDiv(shift.x, l, q)
					}
					if fixedpt.MulFix(ystr, q) <= fixedpt.MulFix(l, d) {
						shift.y = fixedpt.MulDiv(shift.y, ystr, d)
					} else {
						shift.y = fixedpt.MulDiv(shift.y, l, q)
					}
				}
				for ; i != j; i = next(i) {
					points[i].X += fixed.Int26_6(xstr + shift.x)
					points[i].Y += fixed.Int26_6(ystr + shift.y)
				}
			} else {
				i = j
			}
			in, lIn = out, lOut
		}
		first = last + 1
	}
}

// vec is a vector, either in 26.6 or, after normalization, a unit vector
// in 16.16.
type vec struct {
	x, y int32
}

// normalize converts v to a unit vector in 16.16 and returns the original
// length.
func (v *vec) normalize() int32 {
	sq := uint64(int64(v.x)*int64(v.x)) + uint64(int64(v.y)*int64(v.y))
	if sq == 0 {
		return 0
	}
	l := isqrt(sq)
	v.x = int32((int64(v.x) << 16) / int64(l))
	v.y = int32((int64(v.y) << 16) / int64(l))
	return int32(l)
}

func isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := uint64(1) << ((bits.Len64(n) + 1) / 2)
	for {
		y := (x + n/x) / 2
		if y >= x {
			return x
		}
		x = y
	}
}

// emboldenBitmap dilates a bitmap horizontally by one pixel. The bitmap
// grows by one column. Gray pixels are the saturated sum of a pixel and its
// left neighbour, mono pixels are or'ed.
func emboldenBitmap(bm *Bitmap) {
	const xstr = bitmapEmboldenStrength >> 6
	w := bm.Width + xstr
	grown := NewBitmap(w, bm.Rows, bm.Mode)
	n := bm.Pitch
	if grown.Pitch < n {
		n = grown.Pitch
	}
	for y := 0; y < bm.Rows; y++ {
		copy(grown.Buffer[y*grown.Pitch:y*grown.Pitch+n], bm.Buffer[y*bm.Pitch:])
	}
	for y := 0; y < grown.Rows; y++ {
		p := grown.Buffer[y*grown.Pitch : (y+1)*grown.Pitch]
		for x := len(p) - 1; x >= 0; x-- {
			if grown.Mode == PixelMono {
				p[x] |= p[x] >> 1
				if x > 0 {
					p[x] |= p[x-1] << 7
				}
				continue
			}
			if x >= xstr {
				sum := int(p[x]) + int(p[x-xstr])
				if sum > 0xff {
					sum = 0xff
				}
				p[x] = uint8(sum)
			}
		}
	}
	*bm = *grown
}
