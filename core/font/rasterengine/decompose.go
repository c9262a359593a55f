package rasterengine

import (
	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/font/fem"
	"golang.org/x/image/math/fixed"
)

// Pen receives the segments of a decomposed outline. Coordinates are 26.6
// with y pointing up, as in the outline.
type Pen interface {
	MoveTo(p fixed.Point26_6)
	LineTo(p fixed.Point26_6)
	QuadTo(c, p fixed.Point26_6)
	CubeTo(c1, c2, p fixed.Point26_6)
	Close()
}

// Decompose walks the contours of an outline and emits lines, quadratic
// and cubic arcs. Two consecutive quadratic control points imply an on-curve
// point halfway between them. A contour consisting of control points only
// starts at the midpoint of its last and first point.
func Decompose(o *fem.GlyphOutline, pen Pen) error {
	first := 0
	for c, end := range o.Contours {
		last := int(end)
		if last < first || last >= o.PointCount() {
			return core.Error(core.EINVALID, "contour %d has invalid end point %d", c, last)
		}
		if err := decomposeContour(o.Points[first:last+1], o.Tags[first:last+1], pen); err != nil {
			return err
		}
		first = last + 1
	}
	return nil
}

func decomposeContour(pts []fixed.Point26_6, tags []uint8, pen Pen) error {
	n := len(pts)
	onCurve := func(i int) bool { return tags[i]&fem.TagOnCurve != 0 }
	cubic := func(i int) bool { return tags[i]&(fem.TagOnCurve|fem.TagCubic) == fem.TagCubic }
	startAt := -1
	for i := range pts {
		if onCurve(i) {
			startAt = i
			break
		}
	}
	var start fixed.Point26_6
	order := make([]int, 0, n)
	if startAt >= 0 {
		start = pts[startAt]
		for i := 1; i < n; i++ {
			order = append(order, (startAt+i)%n)
		}
	} else {
		for i := range pts {
			if cubic(i) {
				return core.Error(core.EINVALID, "contour of cubic control points only")
			}
			order = append(order, i)
		}
		start = midpoint(pts[n-1], pts[0])
	}
	pen.MoveTo(start)
	var ctrl []fixed.Point26_6 // pending control points
	isCubic := false
	segmentTo := func(p fixed.Point26_6) error {
		switch {
		case len(ctrl) == 0:
			pen.LineTo(p)
		case !isCubic:
			pen.QuadTo(ctrl[0], p)
		case len(ctrl) == 2:
			pen.CubeTo(ctrl[0], ctrl[1], p)
		default:
			return core.Error(core.EINVALID, "cubic arc with %d control points", len(ctrl))
		}
		ctrl = ctrl[:0]
		return nil
	}
	for _, i := range order {
		p := pts[i]
		switch {
		case onCurve(i):
			if err := segmentTo(p); err != nil {
				return err
			}
		case cubic(i):
			if len(ctrl) > 0 && !isCubic {
				return core.Error(core.EINVALID, "cubic control point follows quadratic one")
			}
			isCubic = true
			if ctrl = append(ctrl, p); len(ctrl) > 2 {
				return core.Error(core.EINVALID, "too many cubic control points")
			}
		default:
			if len(ctrl) > 0 {
				if isCubic {
					return core.Error(core.EINVALID, "quadratic control point follows cubic one")
				}
				mid := midpoint(ctrl[0], p)
				pen.QuadTo(ctrl[0], mid)
				ctrl = ctrl[:0]
			}
			isCubic = false
			ctrl = append(ctrl, p)
		}
	}
	if err := segmentTo(start); err != nil {
		return err
	}
	pen.Close()
	return nil
}

func midpoint(a, b fixed.Point26_6) fixed.Point26_6 {
	return fixed.Point26_6{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
