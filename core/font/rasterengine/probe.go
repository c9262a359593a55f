package rasterengine

import (
	"unicode/utf8"

	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font"
	"github.com/npillmayer/fontengines/core/font/fem"
	"github.com/npillmayer/fontengines/core/font/opentype/otquery"
)

// Probing operations load a font for the duration of a single call. If a
// scaler holds the font, its face is shared.

// withFont calls f with the font for a source. The engine is locked for
// the duration of the call.
func (e *Engine) withFont(src font.Source, op string, f func(*cachedFont)) error {
	e.Lock()
	defer e.Unlock()
	cf, err := e.acquireFont(src)
	if err != nil {
		tracer().Debugf("%s: %s: cannot load %s: %v", e.name, op, src, err)
		return err
	}
	defer e.releaseFont(cf)
	f(cf)
	return nil
}

// NameAndStyle returns the family name of a font, its style and whether it
// is fixed-pitch. Names longer than maxLen bytes are truncated, if
// maxLen > 0, without splitting a UTF-8 sequence.
func (e *Engine) NameAndStyle(src font.Source, maxLen int) (name string, style fem.FontStyle, fixedWidth bool) {
	e.withFont(src, "name and style", func(f *cachedFont) {
		name = truncateName(otquery.FamilyName(f.otf), maxLen)
		bold, italic := otquery.Style(f.otf)
		if bold {
			style |= fem.StyleBold
		}
		if italic {
			style |= fem.StyleItalic
		}
		fixedWidth = otquery.IsFixedPitch(f.otf)
	})
	return
}

func truncateName(name string, maxLen int) string {
	if maxLen <= 0 || len(name) <= maxLen {
		return name
	}
	n := maxLen
	for n > 0 && !utf8.RuneStart(name[n]) {
		n--
	}
	return name[:n]
}

// SupportsFormat checks if the engine is able to load a font. With
// load=false, the file extension of a path source is compared with the
// configured font formats. Buffer and stream sources are always loaded.
func (e *Engine) SupportsFormat(src font.Source, load bool) bool {
	if !load && src.Kind() == font.PathSource {
		ext := src.Ext()
		for _, f := range e.formats {
			if f == ext {
				return true
			}
		}
		return false
	}
	err := e.withFont(src, "format check", func(*cachedFont) {})
	if core.Code(err) == core.EUNSUPPORTED {
		tracer().Infof("%s: format of %s not supported", e.name, src)
	}
	return err == nil
}

// UnitsPerEm returns the number of font units per em, or 0.
func (e *Engine) UnitsPerEm(src font.Source) (upem uint32) {
	e.withFont(src, "units per em", func(f *cachedFont) {
		upem = uint32(f.face.UnitsPerEm())
	})
	return
}

// CanEmbed is false for fonts with a restricted license and for fonts
// allowing the embedding of bitmaps only.
func (e *Engine) CanEmbed(src font.Source) (ok bool) {
	e.withFont(src, "embedding", func(f *cachedFont) {
		ok = otquery.CanEmbed(f.otf)
	})
	return
}

// GlyphAdvances returns the advance widths of glyphs start…start+count-1 in
// font units.
func (e *Engine) GlyphAdvances(src font.Source, start, count int) (adv []fixedpt.F16Dot16, ecode fem.ErrCode) {
	err := e.withFont(src, "glyph advances", func(f *cachedFont) {
		if ecode = checkGlyphRange(f, start, count); ecode != fem.ErrOK {
			return
		}
		adv = make([]fixedpt.F16Dot16, count)
		for i := range adv {
			a, err := f.face.UnscaledAdvance(uint16(start + i))
			if err != nil {
				tracer().Errorf("advance of glyph %d: %v", start+i, err)
				adv, ecode = nil, errCode(err)
				return
			}
			adv[i] = fixedpt.F16Dot16(a)
		}
	})
	if err != nil {
		return nil, openErrCode(err)
	}
	return
}

// GlyphNames returns the names of glyphs start…start+count-1.
func (e *Engine) GlyphNames(src font.Source, start, count int) (names []string, ecode fem.ErrCode) {
	err := e.withFont(src, "glyph names", func(f *cachedFont) {
		if ecode = checkGlyphRange(f, start, count); ecode != fem.ErrOK {
			return
		}
		names = make([]string, count)
		for i := range names {
			n, err := f.face.GlyphName(uint16(start + i))
			if err != nil {
				tracer().Errorf("name of glyph %d: %v", start+i, err)
				names, ecode = nil, errCode(err)
				return
			}
			names[i] = n
		}
	})
	if err != nil {
		return nil, openErrCode(err)
	}
	return
}

// GlyphUnicodes returns the code points of glyphs start…start+count-1. Glyphs
// are looked up in all Unicode character maps of the font; see
// otquery.GlyphUnicodes.
func (e *Engine) GlyphUnicodes(src font.Source, start, count int) (runes []rune, ecode fem.ErrCode) {
	err := e.withFont(src, "glyph unicodes", func(f *cachedFont) {
		if ecode = checkGlyphRange(f, start, count); ecode != fem.ErrOK {
			return
		}
		runes = otquery.GlyphUnicodes(f.otf, start, count)
	})
	if err != nil {
		return nil, openErrCode(err)
	}
	return
}

func checkGlyphRange(f *cachedFont, start, count int) fem.ErrCode {
	n := f.face.NumGlyphs()
	if start < 0 || count < 0 || (count > 0 && (start >= n || start+count > n)) {
		return fem.ErrInvalidArgument
	}
	return fem.ErrOK
}

// openErrCode maps an error from loading a font to the error code reported
// across the engine interface.
func openErrCode(err error) fem.ErrCode {
	switch core.Code(err) {
	case core.NOERROR:
		return fem.ErrOK
	case core.EMISSING, core.EIO:
		return fem.ErrCannotOpen
	}
	return fem.ErrUnknownFormat
}

// errCode maps an error from a glyph operation to an error code.
func errCode(err error) fem.ErrCode {
	if err == nil {
		return fem.ErrOK
	}
	return fem.ErrInvalidArgument
}
