package rasterengine

import (
	"fmt"

	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font/fem"
	"golang.org/x/image/math/fixed"
)

// Matrix is a 2x2 transform in 16.16, applied to outlines in a y-up
// coordinate system.
type Matrix struct {
	XX, XY fixedpt.F16Dot16
	YX, YY fixedpt.F16Dot16
}

// Identity is the identity matrix.
var Identity = Matrix{XX: fixedpt.One, YY: fixedpt.One}

// IsIdentity is a predicate.
func (m Matrix) IsIdentity() bool {
	return m == Identity
}

// Apply transforms a 26.6 vector.
func (m Matrix) Apply(p fixed.Point26_6) fixed.Point26_6 {
	x, y := int32(p.X), int32(p.Y)
	return fixed.Point26_6{
		X: fixed.Int26_6(fixedpt.MulFix(x, int32(m.XX)) + fixedpt.MulFix(y, int32(m.XY))),
		Y: fixed.Int26_6(fixedpt.MulFix(x, int32(m.YX)) + fixedpt.MulFix(y, int32(m.YY))),
	}
}

func (m Matrix) String() string {
	return fmt.Sprintf("[%s %s %s %s]", m.XX, m.XY, m.YX, m.YY)
}

// transform holds the parameters a scaler request resolves to. Requests
// resolving to equal transforms share a font instance.
type transform struct {
	matrix         Matrix
	scaleX, scaleY fixedpt.F16Dot16
	loadFlags      LoadFlags
}

// instanceKey identifies a font instance within a font.
type instanceKey struct {
	transform
	flags fem.Flags
}

// resolveTransform computes the normalized matrix, the scale and the load
// flags for a request.
//
// Axis aligned requests get the identity matrix and are scaled directly.
// For skewed, flipped or mirrored requests we give up on exact hinting and
// scale isotropically by the average of the dominant components, leaving the
// rest to the matrix. The matrix' skew elements are negated to convert from
// the request's y-down system to the outline's y-up system.
func resolveTransform(req *fem.ScalerRequest, lcdSupport bool) transform {
	var t transform
	sx, sy := req.ScaleX, req.ScaleY
	if req.SkewX != 0 || req.SkewY != 0 || sx < 0 || sy < 0 {
		sx = maxAbs(sx, req.SkewX)
		sy = maxAbs(req.SkewY, sy)
		sx = fixedpt.Avg(sx, sy)
		sy = sx
		inv := fixedpt.Invert(sx)
		t.matrix = Matrix{
			XX: fixedpt.Mul(req.ScaleX, inv),
			XY: -fixedpt.Mul(req.SkewX, inv),
			YX: -fixedpt.Mul(req.SkewY, inv),
			YY: fixedpt.Mul(req.ScaleY, inv),
		}
	} else {
		t.matrix = Identity
	}
	t.scaleX, t.scaleY = sx, sy
	t.loadFlags = loadFlagsFor(req, lcdSupport)
	return t
}

func maxAbs(a, b fixedpt.F16Dot16) fixedpt.F16Dot16 {
	a = fixedpt.F16Dot16(fixedpt.Abs(int32(a)))
	b = fixedpt.F16Dot16(fixedpt.Abs(int32(b)))
	if a > b {
		return a
	}
	return b
}

// loadFlagsFor selects the load flags for a request's hinting level.
// Without subpixel positioning light hinting stays light, normal and full
// hinting use the normal target. With subpixel positioning light and normal
// hinting are light, only full hinting uses the normal target. Normal
// targets are replaced by LCD targets for LCD mask formats, if the backend
// supports LCD rendering.
func loadFlagsFor(req *fem.ScalerRequest, lcdSupport bool) LoadFlags {
	var flags LoadFlags
	lcdTarget := func() LoadFlags {
		if lcdSupport {
			switch req.MaskFormat {
			case fem.AliasLCDH:
				return TargetLCD
			case fem.AliasLCDV:
				return TargetLCDV
			}
		}
		return TargetNormal
	}
	switch h := req.Hinting(); {
	case h == fem.HintingNone:
		flags = LoadNoHinting
	case h == fem.HintingFull:
		flags = lcdTarget()
	case h == fem.HintingNormal && !req.SubpixelPositioning:
		flags = lcdTarget()
	default:
		flags = TargetLight
	}
	if req.Flags&fem.FlagEmbeddedBitmap == 0 {
		flags |= LoadNoBitmap
	}
	return flags
}

// --- Outline helpers -------------------------------------------------------

// cbox is the control box of an outline in 26.6.
type cbox struct {
	xMin, yMin, xMax, yMax fixedpt.F26Dot6
}

// controlBox computes the bounding box of all points of an outline,
// including control points. An empty outline has an empty box at the origin.
func controlBox(o *fem.GlyphOutline) cbox {
	if o.PointCount() == 0 {
		return cbox{}
	}
	p := o.Points[0]
	b := cbox{
		xMin: fixedpt.F26Dot6(p.X), xMax: fixedpt.F26Dot6(p.X),
		yMin: fixedpt.F26Dot6(p.Y), yMax: fixedpt.F26Dot6(p.Y),
	}
	for _, p := range o.Points[1:] {
		x, y := fixedpt.F26Dot6(p.X), fixedpt.F26Dot6(p.Y)
		if x < b.xMin {
			b.xMin = x
		} else if x > b.xMax {
			b.xMax = x
		}
		if y < b.yMin {
			b.yMin = y
		} else if y > b.yMax {
			b.yMax = y
		}
	}
	return b
}

// quantize expands a box outwards to whole pixels.
func (b cbox) quantize() cbox {
	return cbox{
		xMin: b.xMin.Floor(), yMin: b.yMin.Floor(),
		xMax: b.xMax.Ceil(), yMax: b.yMax.Ceil(),
	}
}

func translateOutline(o *fem.GlyphOutline, dx, dy fixedpt.F26Dot6) {
	if dx == 0 && dy == 0 {
		return
	}
	for i := range o.Points {
		o.Points[i].X += fixed.Int26_6(dx)
		o.Points[i].Y += fixed.Int26_6(dy)
	}
}

func transformOutline(o *fem.GlyphOutline, m Matrix) {
	for i, p := range o.Points {
		o.Points[i] = m.Apply(p)
	}
}

func copyOutline(o *fem.GlyphOutline) *fem.GlyphOutline {
	c := fem.NewGlyphOutline(o.PointCount(), o.ContourCount())
	copy(c.Points, o.Points)
	copy(c.Contours, o.Contours)
	for i, tag := range o.Tags {
		c.Tags[i] = tag & 0x03
	}
	return c
}
