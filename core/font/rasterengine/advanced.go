package rasterengine

import (
	"math"

	"github.com/npillmayer/fontengines/core/font"
	"github.com/npillmayer/fontengines/core/font/fem"
	"github.com/npillmayer/fontengines/core/font/opentype/otquery"
)

// AdvancedMetrics returns typeface information for embedding a font into
// PDF files, or nil if the font cannot be loaded. All lengths are in font
// units.
func (e *Engine) AdvancedMetrics(src font.Source) *fem.AdvancedTypefaceMetrics {
	e.Lock()
	defer e.Unlock()
	f, err := e.acquireFont(src)
	if err != nil {
		tracer().Errorf("%s: advanced metrics: %v", e.name, err)
		return nil
	}
	defer e.releaseFont(f)
	return advancedMetrics(f)
}

func advancedMetrics(f *cachedFont) *fem.AdvancedTypefaceMetrics {
	otf, face := f.otf, f.face
	atm := &fem.AdvancedTypefaceMetrics{
		FontName:    otquery.PostScriptName(otf),
		NumGlyphs:   int32(face.NumGlyphs()),
		NumCharmaps: int32(len(otf.CMap.Encodings)),
		EmSize:      1000,
		MultiMaster: otf.HasTable("fvar"),
	}
	switch face.Format() {
	case "Type 1":
		atm.Type = fem.Type1Font
	case "CID Type 1":
		atm.Type = fem.Type1CIDFont
		atm.CID = true
	case "CFF":
		atm.Type = fem.CFFFont
	case "TrueType":
		atm.Type = fem.TrueTypeFont
		atm.CID = true
		atm.EmSize = uint16(face.UnitsPerEm())
	default:
		atm.Type = fem.OtherFont
	}
	if otquery.IsFixedPitch(otf) {
		atm.Style |= fem.FixedPitchStyle
	}
	if _, italic := otquery.Style(otf); italic {
		atm.Style |= fem.ItalicStyle
	}
	// we cannot tell if the character set is a subset of Adobe standard Latin
	atm.Style |= fem.SymbolicStyle
	atm.ItalicAngle = otquery.ItalicAngle(otf)
	fm := otquery.FontMetrics(otf)
	atm.Ascent = int16(fm.Ascent)
	atm.Descent = int16(fm.Descent)
	atm.StemV = stemWidth(f)
	if h, ok := otquery.CapHeight(otf); ok {
		atm.CapHeight = h
		serif, script := otquery.SerifStyle(otf)
		if serif {
			atm.Style |= fem.SerifStyle
		} else if script {
			atm.Style |= fem.ScriptStyle
		}
	} else {
		atm.CapHeight = capHeightFromGlyphs(f)
	}
	atm.MaxAdvWidth = int16(fm.MaxAdvance)
	atm.XMin, atm.YMin = int32(fm.XMin), int32(fm.YMin)
	atm.XMax, atm.YMax = int32(fm.XMax), int32(fm.YMax)
	atm.Scalable = otf.HasTable("glyf") || otf.IsCFF()
	atm.VerticalMetrics = otquery.HasVerticalMetrics(otf)
	if !otquery.CanEmbed(otf) || !atm.Scalable {
		atm.Type = fem.NotEmbeddableFont
	}
	return atm
}

// stemWidth guesses the width of vertical stems as the narrowest of the
// glyphs for 'i', 'I', '!' and '1'. This is not very good for italic fonts.
func stemWidth(f *cachedFont) int16 {
	minWidth := int16(math.MaxInt16)
	stemV := int16(0)
	for _, r := range []rune{'i', 'I', '!', '1'} {
		if box, ok := letterBox(f, r); ok {
			w := int16(box.xMax - box.xMin)
			if w > 0 && w < minWidth {
				minWidth = w
				stemV = w
			}
		}
	}
	return stemV
}

// capHeightFromGlyphs averages the heights of 'M' and 'X'.
func capHeightFromGlyphs(f *cachedFont) int16 {
	m, gotM := letterBox(f, 'M')
	x, gotX := letterBox(f, 'X')
	switch {
	case gotM && gotX:
		return int16((m.yMax - m.yMin + x.yMax - x.yMin) / 2)
	case gotM:
		return int16(m.yMax - m.yMin)
	case gotX:
		return int16(x.yMax - x.yMin)
	}
	return 0
}

// letterBox returns the control box of the unscaled glyph for a letter.
// It returns false if the font has no glyph for the letter.
func letterBox(f *cachedFont, r rune) (cbox, bool) {
	gid := otquery.GlyphIndex(f.otf, r)
	if gid == 0 {
		return cbox{}, false
	}
	g, err := f.face.LoadGlyph(uint16(gid), LoadNoScale)
	if err != nil || g.Format != OutlineGlyph {
		tracer().Debugf("cannot load unscaled glyph for %q: %v", r, err)
		return cbox{}, true
	}
	return controlBox(g.Outline), true
}
