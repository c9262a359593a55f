package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Code comment often will cite passage from the
// OpenType specification version 1.8.4;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Parse parses an OpenType font from a byte slice.
// An ot.Font needs ongoing access to the fonts byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
//
// Errors are core errors with code EINVALID for broken font data and
// EUNSUPPORTED for font formats this package does not handle.
func Parse(font []byte) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	r := bytes.NewReader(font)
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, errFontFormat("font header")
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	if h.FontType == TypeCollection {
		return nil, errUnsupported("font collection")
	}
	if !(h.FontType == TypeOpenType ||
		h.FontType == TypeTrueType ||
		h.FontType == TypeAppleTrue) {
		return nil, errUnsupported(fmt.Sprintf("font type %x", h.FontType))
	}
	otf := &Font{Header: &h, tables: make(map[Tag]Table)}
	src := binarySegm(font)
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.view(12, 16*int(h.TableCount))
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			return nil, errFontFormat("table order")
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			return nil, errFontFormat("invalid table offset")
		}
		data, err := src.view(int(off), int(size))
		if err != nil {
			return nil, errFontFormat(fmt.Sprintf("table %s exceeds font data", tag))
		}
		otf.tables[tag], err = parseTable(tag, data, off, size)
		if err != nil {
			return nil, err
		}
	}
	if err := extractFontInfo(otf); err != nil {
		return nil, err
	}
	return otf, nil
}

// RequiredTables lists the tables a font must contain to be usable for
// a font engine.
var RequiredTables = []string{
	"cmap", "head", "hhea", "maxp",
}

// Consistency check and shortcuts to essential tables.
func extractFontInfo(otf *Font) error {
	for _, tag := range RequiredTables {
		h := otf.tables[T(tag)]
		if h == nil {
			return errFontFormat("missing required table " + tag)
		}
	}
	otf.CMap = otf.tables[T("cmap")].Self().AsCMap()
	otf.Head = otf.tables[T("head")].Self().AsHead()
	otf.HHea = otf.tables[T("hhea")].Self().AsHHea()
	otf.MaxP = otf.tables[T("maxp")].Self().AsMaxP()
	if t := otf.Table(T("OS/2")); t != nil {
		otf.OS2 = t.Self().AsOS2()
	}
	if t := otf.Table(T("post")); t != nil {
		otf.Post = t.Self().AsPost()
	}
	if t := otf.Table(T("PCLT")); t != nil {
		otf.PCLT = t.Self().AsPCLT()
	}
	if t := otf.Table(T("name")); t != nil {
		otf.Name = t.Self().AsName()
	}
	return nil
}

func parseTable(t Tag, b binarySegm, offset, size uint32) (Table, error) {
	switch t {
	case T("cmap"):
		return parseCMap(t, b, offset, size)
	case T("head"):
		return parseHead(t, b, offset, size)
	case T("hhea"):
		return parseHHea(t, b, offset, size)
	case T("maxp"):
		return parseMaxP(t, b, offset, size)
	case T("name"):
		return parseName(t, b, offset, size)
	case T("OS/2"):
		return parseOS2(t, b, offset, size)
	case T("PCLT"):
		return parsePCLT(t, b, offset, size)
	case T("post"):
		return parsePost(t, b, offset, size)
	}
	tracer().Debugf("font contains table (%s), will not be interpreted", t)
	return newTable(t, b, offset, size), nil
}

// --- Head table ------------------------------------------------------------

func parseHead(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < 54 {
		return nil, errFontFormat("size of head table")
	}
	t := newHeadTable(tag, b, offset, size)
	t.Flags = b.U16(16)      // flags
	t.UnitsPerEm = b.U16(18) // units per em
	t.XMin, t.YMin = b.I16(36), b.I16(38)
	t.XMax, t.YMax = b.I16(40), b.I16(42)
	t.MacStyle = b.U16(44)
	// IndexToLocFormat is needed to interpret the loca table:
	// 0 for short offsets, 1 for long
	t.IndexToLocFormat = b.U16(50)
	if t.UnitsPerEm == 0 {
		return nil, errFontFormat("head table: units per em is 0")
	}
	return t, nil
}

// --- HHea table ------------------------------------------------------------

// This table contains information for horizontal layout.
func parseHHea(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < 36 {
		return nil, errFontFormat("size of hhea table")
	}
	t := newHHeaTable(tag, b, offset, size)
	t.Ascender = b.I16(4)
	t.Descender = b.I16(6)
	t.LineGap = b.I16(8)
	t.AdvanceWidthMax = b.U16(10)
	t.NumberOfHMetrics = int(b.U16(34))
	return t, nil
}

// --- MaxP table ------------------------------------------------------------

// This table establishes the memory requirements for this font. Fonts with CFF data
// must use Version 0.5 of this table, specifying only the numGlyphs field. Fonts
// with TrueType outlines must use Version 1.0 of this table, where all data is required.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < 6 {
		return nil, errFontFormat("size of maxp table")
	}
	t := newMaxPTable(tag, b, offset, size)
	t.NumGlyphs = int(b.U16(4))
	return t, nil
}

// --- OS/2 table ------------------------------------------------------------

// The OS/2 table consists of a set of metrics and other data that are required
// in OpenType fonts. Six versions of the table exist, all of them sharing a
// common prefix. Versions 2 and up add x-height and cap-height.
//
// Old Apple fonts may carry a truncated table of 68 bytes.
func parseOS2(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < 68 {
		return nil, errFontFormat("size of OS/2 table")
	}
	t := newOS2Table(tag, b, offset, size)
	t.Version = b.U16(0)
	t.XAvgCharWidth = b.I16(2)
	t.WeightClass = b.U16(4)
	t.FsType = b.U16(8)
	t.FsSelection = b.U16(62)
	if size >= 78 {
		t.TypoAscender = b.I16(68)
		t.TypoDescender = b.I16(70)
		t.TypoLineGap = b.I16(72)
		t.WinAscent = b.U16(74)
		t.WinDescent = b.U16(76)
	}
	if t.Version >= 2 && size >= 90 {
		t.XHeight = b.I16(86)
		t.CapHeight = b.I16(88)
	}
	return t, nil
}

// --- Post table ------------------------------------------------------------

// This table contains additional information needed to use TrueType or OpenType
// fonts on PostScript printers. We do not interpret glyph names; font engines
// get them from their rasterizer libraries.
func parsePost(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < 32 {
		return nil, errFontFormat("size of post table")
	}
	t := newPostTable(tag, b, offset, size)
	t.Version = b.U32(0)
	t.ItalicAngle = int32(b.U32(4))
	t.UnderlinePosition = b.I16(8)
	t.UnderlineThickness = b.I16(10)
	t.IsFixedPitch = b.U32(12)
	return t, nil
}

// --- PCLT table ------------------------------------------------------------

func parsePCLT(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < 54 {
		return nil, errFontFormat("size of PCLT table")
	}
	t := newPCLTTable(tag, b, offset, size)
	t.Version = b.U32(0)
	t.XHeight = b.U16(10)
	t.Style = b.U16(12)
	t.CapHeight = b.U16(16)
	t.SerifStyle = b[52]
	return t, nil
}
