package otquery

import (
	"github.com/npillmayer/fontengines/core/font/opentype/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font metrics ----------------------------------------------------------

// FontMetricsInfo contains selected metric information for a font, in font units.
type FontMetricsInfo struct {
	UnitsPerEm      sfnt.Units // ad-hoc units per em
	Ascent, Descent sfnt.Units // ascender and descender
	LineGap         sfnt.Units // typographic line gap
	Height          sfnt.Units // default baseline-to-baseline distance
	MaxAdvance      sfnt.Units // maximum advance width value in 'hmtx' table
	XMin, YMin      sfnt.Units // bounding box of all glyphs
	XMax, YMax      sfnt.Units
}

// FontMetrics retrieves selected metrics of a font.
//
// Ascent and descent are taken from table hhea. If both are 0, the typographic
// values of table OS/2 are used, and if these are 0 as well, the Windows
// metrics.
func FontMetrics(otf *ot.Font) FontMetricsInfo {
	metrics := FontMetricsInfo{}
	hhea := otf.HHea // hhea is a required table
	metrics.Ascent = sfnt.Units(hhea.Ascender)
	metrics.Descent = sfnt.Units(hhea.Descender)
	metrics.LineGap = sfnt.Units(hhea.LineGap)
	metrics.MaxAdvance = sfnt.Units(hhea.AdvanceWidthMax)
	metrics.Height = metrics.Ascent - metrics.Descent + metrics.LineGap
	if metrics.Ascent == 0 && metrics.Descent == 0 {
		if os2 := otf.OS2; os2 != nil {
			if os2.TypoAscender != 0 || os2.TypoDescender != 0 {
				tracer().Debugf("override of ascent/descent from OS/2 typo metrics")
				metrics.Ascent = sfnt.Units(os2.TypoAscender)
				metrics.Descent = sfnt.Units(os2.TypoDescender)
				metrics.LineGap = sfnt.Units(os2.TypoLineGap)
				metrics.Height = metrics.Ascent - metrics.Descent + metrics.LineGap
			} else {
				tracer().Debugf("override of ascent/descent from OS/2 win metrics")
				metrics.Ascent = sfnt.Units(os2.WinAscent)
				metrics.Descent = -sfnt.Units(os2.WinDescent)
				metrics.LineGap = 0
				metrics.Height = metrics.Ascent - metrics.Descent
			}
		}
	}
	head := otf.Head // head is a required table
	metrics.UnitsPerEm = sfnt.Units(head.UnitsPerEm)
	metrics.XMin, metrics.YMin = sfnt.Units(head.XMin), sfnt.Units(head.YMin)
	metrics.XMax, metrics.YMax = sfnt.Units(head.XMax), sfnt.Units(head.YMax)
	return metrics
}

// CapHeight returns the height of flat capitals in font units. Table PCLT
// is consulted first, then table OS/2. If neither is present, ok is false and
// clients should measure capital letters instead.
//
// OS/2 tables before version 2 have no cap height; for them 0 is returned
// with ok set to true.
func CapHeight(otf *ot.Font) (h int16, ok bool) {
	if otf.PCLT != nil {
		return int16(otf.PCLT.CapHeight), true
	}
	if otf.OS2 != nil {
		return otf.OS2.CapHeight, true
	}
	return 0, false
}

// XHeight returns the height of lower case letters as stated in table OS/2.
// If the font does not state it, ok is false.
func XHeight(otf *ot.Font) (h int16, ok bool) {
	if otf.OS2 == nil || otf.OS2.XHeight == 0 {
		return 0, false
	}
	return otf.OS2.XHeight, true
}

// AvgCharWidth returns the average width of glyphs in font units, or 0 if
// the font has no OS/2 table.
func AvgCharWidth(otf *ot.Font) int16 {
	if otf.OS2 == nil {
		return 0
	}
	return otf.OS2.XAvgCharWidth
}

// HasVerticalMetrics is true if the font contains a table vhea.
func HasVerticalMetrics(otf *ot.Font) bool {
	return otf.HasTable("vhea")
}

// --- Glyph Routines --------------------------------------------------------

// GlyphIndex returns the glyph index for a give code-point.
// If the code-point cannot be found, 0 is returned.
//
// From the OpenType specification: character codes that do not correspond to any glyph in
// the font should be mapped to glyph index 0. The glyph at this location must be a special
// glyph representing a missing character, commonly known as '.notdef'.
func GlyphIndex(otf *ot.Font, codepoint rune) ot.GlyphIndex {
	return otf.CMap.GlyphIndexMap.Lookup(codepoint)
}

// CodePointForGlyph returns the code-point for a given glyph index.
//
// This is an inefficient operation: All code-points contained in the font's CMap
// are checked sequentially if they produce the given glyph.
// If the glyph index does not correspond to a code-point, 0 is returned.
func CodePointForGlyph(otf *ot.Font, gid ot.GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	return otf.CMap.GlyphIndexMap.ReverseLookup(gid)
}

// GlyphUnicodes returns the Unicode code-points for glyphs start … start+count-1.
// Glyphs not reachable from a Unicode character map get code-point 0.
//
// All Unicode character maps of the font are consulted, in the order of their
// encoding records. Entries of a preferred map (Windows UCS-4 or Apple Unicode 2.0)
// override entries from other maps. Within a map, code-points are visited in
// ascending order and the first one found for a glyph is kept, except for
// preferred maps, where the last one wins. Code-point 0 is never reported.
func GlyphUnicodes(otf *ot.Font, start, count int) []rune {
	unicodes := make([]rune, count)
	if count <= 0 {
		return unicodes
	}
	end := start + count - 1
	for _, enc := range otf.CMap.Encodings {
		if !enc.IsUnicode() || enc.Index == nil {
			continue
		}
		preferred := isPreferredMap(enc)
		tracer().Debugf("walking cmap (%d|%d), preferred = %v", enc.PlatformID, enc.EncodingID, preferred)
		enc.Index.Walk(func(r rune, gid ot.GlyphIndex) bool {
			g := int(gid)
			if r != 0 && g >= start && g <= end {
				if unicodes[g-start] == 0 || preferred {
					unicodes[g-start] = r
				}
			}
			return true
		})
	}
	return unicodes
}

func isPreferredMap(enc ot.CMapEncoding) bool {
	return (enc.PlatformID == 3 && enc.EncodingID == 10) ||
		(enc.PlatformID == 0 && enc.EncodingID == 3)
}
