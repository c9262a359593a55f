package rasterengine

import (
	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font/fem"
	"github.com/npillmayer/fontengines/core/font/opentype/ot"
	"github.com/npillmayer/fontengines/core/font/opentype/otquery"
)

// scaler is a client handle for a font instance.
type scaler struct {
	engine   *Engine
	inst     *cachedInstance
	subpixel bool
	mask     fem.AliasMode
	closed   bool
}

var _ fem.Scaler = (*scaler)(nil)

// Close releases the scaler's font instance. Calling Close more than once
// has no effect.
func (sc *scaler) Close() error {
	sc.engine.Lock()
	defer sc.engine.Unlock()
	if sc.closed {
		return nil
	}
	sc.closed = true
	sc.engine.releaseInstance(sc.inst)
	return nil
}

// prepare activates the instance's size. The engine must be locked.
func (sc *scaler) prepare() (Face, error) {
	if sc.closed {
		return nil, core.Error(core.EINVALID, "scaler is closed")
	}
	if err := sc.inst.activate(); err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot activate size of %s", sc.inst.font)
	}
	return sc.inst.font.face, nil
}

// loadGlyph loads a glyph and transforms it with the instance's matrix.
func (sc *scaler) loadGlyph(face Face, gid uint16, flags LoadFlags) (*Glyph, error) {
	if int(gid) >= face.NumGlyphs() {
		return nil, core.Error(core.EINVALID, "glyph index %d out of range", gid)
	}
	g, err := face.LoadGlyph(gid, flags)
	if err != nil {
		return nil, err
	}
	if m := sc.inst.key.matrix; !m.IsIdentity() {
		if g.Format == OutlineGlyph && g.Outline != nil {
			transformOutline(g.Outline, m)
		}
		g.Advance = m.Apply(g.Advance)
	}
	return g, nil
}

func (sc *scaler) embolden() bool {
	return sc.inst.key.flags&fem.FlagEmbolden != 0
}

// emboldenOutline emboldens with a strength relative to the em size.
func (sc *scaler) emboldenOutline(face Face, o *fem.GlyphOutline) {
	s := emboldenStrength(face.UnitsPerEm(), sc.inst.key.scaleY)
	emboldenOutline(o, s, s)
}

func (sc *scaler) otf() *ot.Font {
	return sc.inst.font.otf
}

// GlyphCount returns the number of glyphs in the font.
func (sc *scaler) GlyphCount() int {
	return sc.inst.font.face.NumGlyphs()
}

// CharToGlyphID maps a code point to a glyph, using the font's Unicode
// character map. Unmapped code points map to glyph 0.
func (sc *scaler) CharToGlyphID(r rune) uint16 {
	sc.engine.Lock()
	defer sc.engine.Unlock()
	if sc.closed {
		return 0
	}
	return uint16(otquery.GlyphIndex(sc.otf(), r))
}

// GlyphIDToChar returns the lowest code point mapping to a glyph, or 0.
func (sc *scaler) GlyphIDToChar(gid uint16) rune {
	sc.engine.Lock()
	defer sc.engine.Unlock()
	if sc.closed {
		return 0
	}
	return otquery.CodePointForGlyph(sc.otf(), ot.GlyphIndex(gid))
}

// GlyphAdvance returns the advance of a glyph. Unhinted and light hinted
// instances have linearly scaled advances, which are computed from the
// font's metrics without loading the glyph. Otherwise the glyph is loaded
// as for GlyphMetrics.
func (sc *scaler) GlyphAdvance(gid uint16, fracX, fracY fixedpt.F16Dot16) (gm fem.GlyphMetrics) {
	sc.engine.Lock()
	defer sc.engine.Unlock()
	face, err := sc.prepare()
	if err != nil {
		tracer().Errorf("glyph advance: %v", err)
		return
	}
	flags := sc.inst.key.loadFlags
	if flags&(LoadNoHinting|LoadNoScale) == 0 && flags.Target() != TargetLight {
		return sc.glyphMetrics(face, gid, fracX, fracY)
	}
	units, err := face.UnscaledAdvance(gid)
	if err != nil {
		tracer().Errorf("glyph advance of %d: %v", gid, err)
		return
	}
	if upem := face.UnitsPerEm(); upem > 0 {
		gm.AdvanceX = fixedpt.F16Dot16(fixedpt.MulDiv(int32(units), int32(sc.inst.key.scaleX), int32(upem)))
	}
	return
}

// GlyphMetrics loads a glyph and measures its bitmap, which is the
// outline's control box expanded to whole pixels.
func (sc *scaler) GlyphMetrics(gid uint16, fracX, fracY fixedpt.F16Dot16) fem.GlyphMetrics {
	sc.engine.Lock()
	defer sc.engine.Unlock()
	face, err := sc.prepare()
	if err != nil {
		tracer().Errorf("glyph metrics: %v", err)
		return fem.GlyphMetrics{}
	}
	return sc.glyphMetrics(face, gid, fracX, fracY)
}

func (sc *scaler) glyphMetrics(face Face, gid uint16, fracX, fracY fixedpt.F16Dot16) (gm fem.GlyphMetrics) {
	flags := sc.inst.key.loadFlags
	g, err := sc.loadGlyph(face, gid, flags)
	if err != nil {
		tracer().Errorf("cannot load glyph %d with %s: %v", gid, flags, err)
		return
	}
	switch g.Format {
	case OutlineGlyph:
		if sc.embolden() {
			sc.emboldenOutline(face, g.Outline)
		}
		box := controlBox(g.Outline)
		if sc.subpixel {
			dx, dy := subpixelOffset(fracX, fracY)
			box.xMin += dx
			box.xMax += dx
			box.yMin += dy
			box.yMax += dy
		}
		box = box.quantize()
		gm.Width = uint16((box.xMax - box.xMin) >> 6)
		gm.Height = uint16((box.yMax - box.yMin) >> 6)
		gm.Top = -int16(box.yMax >> 6)
		gm.Left = int16(box.xMin >> 6)
	case BitmapGlyph:
		if sc.embolden() {
			emboldenBitmap(g.Bitmap)
		}
		gm.Width = uint16(g.Bitmap.Width)
		gm.Height = uint16(g.Bitmap.Rows)
		gm.Top = -int16(g.BitmapTop)
		gm.Left = int16(g.BitmapLeft)
	default:
		core.Fatal("unknown glyph format %d", g.Format)
	}
	if !sc.subpixel {
		gm.AdvanceX = fixedpt.F26Dot6(g.Advance.X).To16Dot16()
		gm.AdvanceY = -fixedpt.F26Dot6(g.Advance.Y).To16Dot16()
		if sc.inst.key.flags&fem.FlagDevKern != 0 {
			gm.RsbDelta = int8(g.RsbDelta)
			gm.LsbDelta = int8(g.LsbDelta)
		}
	} else {
		m := sc.inst.key.matrix
		gm.AdvanceX = fixedpt.F16Dot16(fixedpt.MulFix(int32(m.XX), int32(g.LinearHoriAdvance)))
		gm.AdvanceY = -fixedpt.F16Dot16(fixedpt.MulFix(int32(m.YX), int32(g.LinearHoriAdvance)))
	}
	return
}

// subpixelOffset converts a fractional pen position in 16.16 to a 26.6
// offset in outline space, where y points up.
func subpixelOffset(fracX, fracY fixedpt.F16Dot16) (dx, dy fixedpt.F26Dot6) {
	return fixedpt.F26Dot6(fracX >> 10), -fixedpt.F26Dot6(fracY >> 10)
}

// GlyphOutline returns the scaled outline of a glyph, ignoring embedded
// bitmaps. The outline is owned by the caller.
func (sc *scaler) GlyphOutline(gid uint16, fracX, fracY fixedpt.F16Dot16) *fem.GlyphOutline {
	sc.engine.Lock()
	defer sc.engine.Unlock()
	face, err := sc.prepare()
	if err != nil {
		tracer().Errorf("glyph outline: %v", err)
		return nil
	}
	flags := (sc.inst.key.loadFlags | LoadNoBitmap) &^ LoadRender
	g, err := sc.loadGlyph(face, gid, flags)
	if err != nil {
		tracer().Errorf("cannot load outline of glyph %d with %s: %v", gid, flags, err)
		return nil
	}
	if g.Format != OutlineGlyph || g.Outline == nil {
		return nil
	}
	if sc.embolden() {
		sc.emboldenOutline(face, g.Outline)
	}
	return copyOutline(g.Outline)
}

// --- Font metrics ----------------------------------------------------------

// FontMetrics returns the font-wide metrics at the instance's size. The
// vertical metrics are projected through the instance's matrix, resulting
// in a set for each axis.
func (sc *scaler) FontMetrics() (mx, my fem.FontMetrics) {
	sc.engine.Lock()
	defer sc.engine.Unlock()
	face, err := sc.prepare()
	if err != nil {
		tracer().Errorf("font metrics: %v", err)
		return
	}
	upem := int32(face.UnitsPerEm())
	if upem <= 0 {
		return
	}
	otf := sc.otf()
	fm := otquery.FontMetrics(otf)
	xmin := fixedpt.F16Dot16((int32(fm.XMin) << 16) / upem)
	xmax := fixedpt.F16Dot16((int32(fm.XMax) << 16) / upem)
	leading := int32(fm.Height) - (int32(fm.Ascent) - int32(fm.Descent))
	if leading < 0 {
		leading = 0
	}
	ys := [6]int32{
		-int32(fm.YMax),
		-int32(fm.Ascent),
		-int32(fm.Descent),
		-int32(fm.YMin),
		leading,
		int32(otquery.AvgCharWidth(otf)),
	}
	xHeight := sc.xHeight(face, upem)
	var px, py [6]fixedpt.F16Dot16
	m := sc.inst.key.matrix
	for i, v := range ys {
		y := fixedpt.MulDiv(int32(sc.inst.key.scaleY), v, upem)
		px[i] = fixedpt.F16Dot16(fixedpt.MulFix(int32(m.XY), y))
		py[i] = fixedpt.F16Dot16(fixedpt.MulFix(int32(m.YY), y))
	}
	fill := func(dst *fem.FontMetrics, p [6]fixedpt.F16Dot16) {
		dst.Top, dst.Ascent, dst.Descent, dst.Bottom = p[0], p[1], p[2], p[3]
		dst.Leading, dst.AvgCharWidth = p[4], p[5]
		dst.XMin, dst.XMax, dst.XHeight = xmin, xmax, xHeight
	}
	fill(&mx, px)
	fill(&my, py)
	return
}

// xHeight returns the x-height from table OS/2, or else measures the glyph
// for 'x'.
func (sc *scaler) xHeight(face Face, upem int32) fixedpt.F16Dot16 {
	if h, ok := otquery.XHeight(sc.otf()); ok {
		return fixedpt.F16Dot16(fixedpt.MulDiv(int32(sc.inst.key.scaleX), int32(h), upem))
	}
	gid := otquery.GlyphIndex(sc.otf(), 'x')
	if gid == 0 {
		return 0
	}
	g, err := sc.loadGlyph(face, uint16(gid), sc.inst.key.loadFlags)
	if err != nil || g.Format != OutlineGlyph {
		tracer().Debugf("cannot measure 'x' of %s", sc.inst.font)
		return 0
	}
	if sc.embolden() {
		sc.emboldenOutline(face, g.Outline)
	}
	box := controlBox(g.Outline)
	return fixedpt.F16Dot16(int32(box.yMax) << 10)
}
