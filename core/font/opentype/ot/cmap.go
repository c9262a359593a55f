package ot

/*
We replicate some of the code of the Go core team here, available from
https://github.com/golang/image/tree/master/font/sfnt.
I understand it's legal to do so, as long as the license information stays intact.

   Copyright 2017 The Go Authors. All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

// CMapTable represents an OpenType cmap table, i.e. the table to receive glyphs
// from code-points.
//
// See https://docs.microsoft.com/de-de/typography/opentype/spec/cmap
//
// Consulting the cmap table is a very frequent operation on fonts. We therefore
// construct an internal representation of the most appropriate Unicode lookup
// table as GlyphIndexMap. Font engines sometimes need access to all of the
// lookup tables (e.g., to compute the Unicode code-points for glyphs).
// Encodings therefore lists every sub-table, in the order of the font's
// encoding records.
type CMapTable struct {
	tableBase
	GlyphIndexMap CMapGlyphIndex
	Encodings     []CMapEncoding
}

// CMapEncoding is an encoding record of a cmap table, i.e. a character map for
// a platform and encoding. Index is nil for sub-table formats we do not support.
type CMapEncoding struct {
	PlatformID uint16
	EncodingID uint16
	Format     uint16
	Index      CMapGlyphIndex
}

// IsUnicode is true for character maps using Unicode code-points.
// This is the case for the Unicode platform and for Windows encodings 1 (BMP)
// and 10 (full repertoire).
func (enc CMapEncoding) IsUnicode() bool {
	return enc.PlatformID == 0 ||
		(enc.PlatformID == 3 && (enc.EncodingID == 1 || enc.EncodingID == 10))
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// --- Parsing ---------------------------------------------------------------

// This table defines mapping of character codes to a default glyph index. Different
// subtables may be defined that each contain mappings for different character encoding
// schemes. The table header indicates the character encodings for which subtables are
// present.
//
// From the OpenType spec: “Apart from a format 14 subtable, all other subtables are exclusive:
// applications should select and use one and ignore the others. […]
// If a font includes Unicode subtables for both 16-bit encoding (typically, format 4)
// and also 32-bit encoding (formats 10 or 12), then the characters supported by the
// subtable for 32-bit encoding should be a superset of the characters supported by
// the subtable for 16-bit encoding, and the 32-bit encoding should be used by
// applications.”
//
// For GlyphIndexMap we select the Unicode sub-table with the largest encoding width.
// If more than one sub-table qualifies, the first one wins.
func parseCMap(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	n, _ := b.u16(2) // number of sub-tables
	tracer().Debugf("font cmap has %d sub-tables in %d|%d bytes", n, len(b), size)
	t := newCMapTable(tag, b, offset, size)
	const headerSize, entrySize = 4, 8
	if size < headerSize+entrySize*uint32(n) {
		return nil, errFontFormat("size of cmap table")
	}
	width := 0
	for i := 0; i < int(n); i++ {
		rec, _ := b.view(headerSize+entrySize*i, entrySize)
		enc := CMapEncoding{PlatformID: u16(rec), EncodingID: u16(rec[2:])}
		link := int(u32(rec[4:]))
		subtable, err := b.view(link, len(b)-link)
		if err != nil || len(subtable) < 4 {
			tracer().Infof("cmap sub-table cannot be parsed")
			continue
		}
		enc.Format = subtable.U16(0)
		tracer().Debugf("cmap table contains subtable (%d | %d | format %d)",
			enc.PlatformID, enc.EncodingID, enc.Format)
		if enc.Index, err = makeGlyphIndex(subtable, enc.Format); err != nil {
			tracer().Infof("cmap sub-table (%d|%d) broken: %v", enc.PlatformID, enc.EncodingID, err)
			enc.Index = nil
		}
		t.Encodings = append(t.Encodings, enc)
		w := platformEncodingWidth(enc.PlatformID, enc.EncodingID)
		if enc.Index != nil && w > width && supportedCmapFormat(enc.Format, enc.PlatformID, enc.EncodingID) {
			width = w
			t.GlyphIndexMap = enc.Index
		}
	}
	if t.GlyphIndexMap == nil { // symbol fonts and the like
		for _, enc := range t.Encodings {
			if enc.Index != nil {
				tracer().Infof("no Unicode cmap found, using (%d|%d)", enc.PlatformID, enc.EncodingID)
				t.GlyphIndexMap = enc.Index
				break
			}
		}
	}
	if t.GlyphIndexMap == nil {
		return nil, errFontFormat("no supported cmap format found")
	}
	return t, nil
}

// platformEncodingWidth returns the number of bytes per character assumed by
// the given Platform ID and Platform Specific ID.
//
// Old fonts, from when Unicode meant the Basic Multilingual Plane (BMP),
// assume that 2 bytes per character is sufficient.
//
// Recent fonts naturally support the full range of Unicode code points, which
// can take up to 4 bytes per character. Such fonts might still choose one of
// the legacy encodings if e.g. their repertoire is limited to the BMP, for
// greater compatibility with older software, or because the resultant file
// size can be smaller.
func platformEncodingWidth(pid, psid uint16) int {
	switch pid {
	case 0: // Unicode platform
		switch psid {
		case 3: // Unicode BMB
			return 2
		case 4, 10: // Unicode full  (include 10 from FontForge bug)
			return 4
		}
	case 3: // Windows platform
		switch psid {
		case 1: // Unicode BMP
			return 2
		case 10: // Unicode full
			return 4
		}
	}
	return 0 // width 0 will never get selected
}

// The various cmap formats are described at
// https://www.microsoft.com/typography/otspec/cmap.htm
//
// For GlyphIndexMap we support the following plaform/encoding/format combinations:
//
//	0 (Unicode)  3    4   Unicode BMB
//	0 (Unicode)  4    12  Unicode full  (10 from FontForge, error)
//	3 (Win)      1    4   Unicode BMP
//	3 (Win)      10   12  Unicode full
//
// Note that FontForge may generate a bogus Platform Specific ID (value 10)
// for the Unicode Platform ID (value 0). See
// https://github.com/fontforge/fontforge/issues/2728
func supportedCmapFormat(format, pid, psid uint16) bool {
	return (pid == 0 && psid == 3 && format == 4) ||
		(pid == 0 && (psid == 4 || psid == 10) && format == 12) ||
		(pid == 3 && psid == 1 && format == 4) ||
		(pid == 3 && psid == 10 && format == 12)
}

// Dispatcher to create the correct implementation of a CMapGlyphIndex from a given format.
// Returns nil for formats we do not support.
func makeGlyphIndex(subtable binarySegm, format uint16) (CMapGlyphIndex, error) {
	switch format {
	case 0:
		return makeGlyphIndexFormat0(subtable)
	case 4:
		return makeGlyphIndexFormat4(subtable)
	case 6:
		return makeGlyphIndexFormat6(subtable)
	case 12:
		return makeGlyphIndexFormat12(subtable)
	}
	return nil, nil
}

// CMapGlyphIndex represents a CMap table index to receive a glyph index from
// a code-point.
type CMapGlyphIndex interface {
	Lookup(rune) GlyphIndex        // central activiy of CMap
	ReverseLookup(GlyphIndex) rune // first code-point mapping to a glyph, or 0
	// Walk calls f for every code-point mapped to a glyph other than 0, in
	// ascending order of code-points, until f returns false.
	Walk(f func(rune, GlyphIndex) bool)
}

// reverseLookup is inefficient, as cmap tables do not support this operation.
// However, for testing and debugging purposes it is often useful.
func reverseLookup(idx CMapGlyphIndex, gid GlyphIndex) (r rune) {
	if gid == 0 {
		return 0
	}
	idx.Walk(func(c rune, g GlyphIndex) bool {
		if g == gid {
			r = c
			return false
		}
		return true
	})
	return
}

// --- Format 0 --------------------------------------------------------------

// Format 0: Byte encoding table, used for legacy Macintosh character maps.
type format0GlyphIndex struct {
	glyphIds binarySegm
}

func makeGlyphIndexFormat0(b binarySegm) (CMapGlyphIndex, error) {
	ids, err := b.view(6, 256)
	if err != nil {
		return nil, errFontFormat("cmap subtable bounds overflow")
	}
	return format0GlyphIndex{glyphIds: ids}, nil
}

func (f0 format0GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xff {
		return 0
	}
	return GlyphIndex(f0.glyphIds[r])
}

func (f0 format0GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	return reverseLookup(f0, gid)
}

func (f0 format0GlyphIndex) Walk(f func(rune, GlyphIndex) bool) {
	for c, g := range f0.glyphIds {
		if g != 0 && !f(rune(c), GlyphIndex(g)) {
			return
		}
	}
}

// --- Format 4 --------------------------------------------------------------

// Format 4: Segment mapping to delta values
// This is the standard character-to-glyph-index mapping subtable for fonts that support
// only Unicode Basic Multilingual Plane characters (U+0000 to U+FFFF).
//
// This format is used when the character codes for the characters represented by a font
// fall into several contiguous ranges, possibly with holes in some or all of the ranges
// (that is, some of the codes in a range may not have a representation in the font).
type format4GlyphIndex struct {
	entries  []cmapEntry16
	glyphIds binarySegm
}

// Format 4 holds four parallel arrays to describe the segments (one segment for
// each contiguous range of codes).
// see https://docs.microsoft.com/en-us/typography/opentype/spec/cmap#format-4-segment-mapping-to-delta-values
type cmapEntry16 struct {
	end, start, delta, offset uint16
}

func (f4 format4GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xffff { // format 4 is for BMP code-points only
		return 0 // return index for 'missing character'
	}
	c := uint16(r)
	N := len(f4.entries)
	for i, j := 0, N; i < j; {
		h := i + (j-i)/2 // do a binary search on f4.entries (which may get large)
		entry := &f4.entries[h]
		if c < entry.start {
			j = h
		} else if entry.end < c {
			i = h + 1
		} else {
			return f4.glyph(h, c)
		}
	}
	return GlyphIndex(0)
}

// glyph calculates the glyph for code c within segment h.
func (f4 format4GlyphIndex) glyph(h int, c uint16) GlyphIndex {
	entry := &f4.entries[h]
	if entry.offset == 0 {
		return GlyphIndex(c + entry.delta) // modulo 65536
	}
	// The OpenType spec describes the calculation the find the link into the glyph ID array
	// as follows:
	// “The character code offset from startCode is added to the idRangeOffset value.
	//  This sum is used as an offset from the current location within idRangeOffset
	//  itself to index out the correct glyphIdArray value.”
	// We already sliced the cmap into sub-segments, so we calculate a clean
	// index into the glyph ID array instead. First cut off the part of the offset
	// which results from skipping over to the start of the glyph ID array:
	deltaToEndOfEntries := (len(f4.entries) - h) * 2 // 2 = byte size of offset array entry
	index := (int(entry.offset)-deltaToEndOfEntries)/2 + int(c-entry.start)
	glyphInx, err := f4.glyphIds.u16(index * 2)
	if err != nil || glyphInx == 0 {
		return 0
	}
	// If the value obtained from the indexing operation is not 0 (which indicates
	// missingGlyph), idDelta[i] is added to it to get the glyph index
	return GlyphIndex(glyphInx + entry.delta)
}

func (f4 format4GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	return reverseLookup(f4, gid)
}

func (f4 format4GlyphIndex) Walk(f func(rune, GlyphIndex) bool) {
	for h, entry := range f4.entries {
		if entry.end < entry.start {
			continue
		}
		for c := uint32(entry.start); c <= uint32(entry.end); c++ {
			if c == 0xffff { // final segment, mapping to .notdef
				break
			}
			if g := f4.glyph(h, uint16(c)); g != 0 && !f(rune(c), g) {
				return
			}
		}
	}
}

// The format's data is divided into three parts, which must occur in the following order:
//
// - A four-word header gives parameters for an optimized search of the segment list;
// - Four parallel arrays describe the segments (one segment for each contiguous range of codes);
// - A variable-length array of glyph IDs (unsigned words).
func makeGlyphIndexFormat4(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 14
	if headerSize > b.Size() {
		return nil, errFontFormat("cmap subtable bounds overflow")
	}
	size := int(b.U16(2))
	segCount := int(b.U16(6))
	if segCount&1 != 0 {
		tracer().Debugf("cmap format 4 segment count is %d", segCount)
		return nil, errFontFormat("cmap table format, illegal segment count")
	}
	segCount /= 2
	eLength := 8*segCount + 2
	if size > b.Size() || headerSize+eLength > size {
		return nil, errFontFormat("cmap internal structure")
	}
	b = b[headerSize:size]
	entries := make([]cmapEntry16, segCount)
	for i := range entries {
		entries[i] = cmapEntry16{
			end:    b.U16(2 * i),
			start:  b.U16(2*segCount + 2 + 2*i), // 2 is a padding entry
			delta:  b.U16(4*segCount + 2 + 2*i),
			offset: b.U16(6*segCount + 2 + 2*i),
		}
	}
	return format4GlyphIndex{
		entries:  entries,
		glyphIds: b[eLength:],
	}, nil
}

// --- Format 6 --------------------------------------------------------------

// Format 6: Trimmed table mapping, i.e. a dense array of glyph IDs for a
// contiguous range of codes.
type format6GlyphIndex struct {
	first    uint16
	count    int
	glyphIds binarySegm
}

func makeGlyphIndexFormat6(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 10
	if headerSize > b.Size() {
		return nil, errFontFormat("cmap subtable bounds overflow")
	}
	f6 := format6GlyphIndex{first: b.U16(6), count: int(b.U16(8))}
	ids, err := b.view(headerSize, 2*f6.count)
	if err != nil {
		return nil, errFontFormat("cmap internal structure")
	}
	f6.glyphIds = ids
	return f6, nil
}

func (f6 format6GlyphIndex) Lookup(r rune) GlyphIndex {
	i := int(r) - int(f6.first)
	if i < 0 || i >= f6.count {
		return 0
	}
	return GlyphIndex(f6.glyphIds.U16(2 * i))
}

func (f6 format6GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	return reverseLookup(f6, gid)
}

func (f6 format6GlyphIndex) Walk(f func(rune, GlyphIndex) bool) {
	for i := 0; i < f6.count; i++ {
		g := GlyphIndex(f6.glyphIds.U16(2 * i))
		if g != 0 && !f(rune(int(f6.first)+i), g) {
			return
		}
	}
}

// --- Format 12 -------------------------------------------------------------

type cmapEntry32 struct {
	start, end, delta uint32
}

// Each sequential map group record specifies a character range and the starting glyph ID
// mapped from the first character. Glyph IDs for subsequent characters follow in sequence.
type format12GlyphIndex struct {
	entries []cmapEntry32
}

func (f12 format12GlyphIndex) Lookup(r rune) GlyphIndex {
	c := uint32(r)
	for i, j := 0, len(f12.entries); i < j; {
		h := i + (j-i)/2 // do a binary search on f12.entries (which may get large)
		entry := &f12.entries[h]
		if c < entry.start {
			j = h
		} else if entry.end < c {
			i = h + 1
		} else {
			return GlyphIndex(c - entry.start + entry.delta)
		}
	}
	return 0
}

func (f12 format12GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	return reverseLookup(f12, gid)
}

func (f12 format12GlyphIndex) Walk(f func(rune, GlyphIndex) bool) {
	for _, entry := range f12.entries {
		for c := entry.start; c <= entry.end && c <= 0x10ffff; c++ {
			g := GlyphIndex(c - entry.start + entry.delta)
			if g != 0 && !f(rune(c), g) {
				return
			}
		}
	}
}

// This is the standard character-to-glyph-index mapping subtable for fonts supporting
// Unicode character repertoires that include supplementary-plane characters (U+10000 to
// U+10FFFF).
//
// Format 12 is similar to format 4 in that it defines segments for sparse representation.
// It differs, however, in that it uses 32-bit character codes, and Glyph ID lookup
// and calculation is a lot simpler.
func makeGlyphIndexFormat12(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 16
	if headerSize > b.Size() {
		return nil, errFontFormat("cmap subtable bounds overflow")
	}
	size := int(b.U32(4))
	grpCount := int(b.U32(12))
	eLength := 12 * grpCount
	if size > b.Size() || eLength+headerSize > size {
		return nil, errFontFormat("cmap internal structure")
	}
	b = b[headerSize:size]
	// SequentialMapGroup Record:
	// Type     Name            Description
	// uint32   startCharCode   First character code in this group
	// uint32   endCharCode     Last character code in this group
	// uint32   startGlyphID    Glyph index corresponding to the starting character code
	entries := make([]cmapEntry32, grpCount)
	for i := range entries {
		entries[i] = cmapEntry32{
			start: b.U32(12 * i),
			end:   b.U32(12*i + 4),
			delta: b.U32(12*i + 8),
		}
	}
	return format12GlyphIndex{entries: entries}, nil
}
