package ot

import (
	"encoding/binary"
	"sort"
	"testing"

	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

func TestTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	tag := Tag(0x636d6170)
	assert.Equal(t, "cmap", tag.String())
	assert.Equal(t, "cmap", MakeTag([]byte("cmap")).String())
	assert.Equal(t, "cmap", T("cmap").String())
	assert.Equal(t, "CFF ", T("CFF").String())
	tb := tableBase{name: 0x636d6170}
	assert.Equal(t, "cmap", tb.Self().NameTag().String())
	assert.Nil(t, tb.Self().AsHead(), "table without self must not convert")
}

func parseFont(t *testing.T, data []byte) *Font {
	otf, err := Parse(data)
	if err != nil {
		core.UserError(err)
		t.Fatal(err)
	}
	return otf
}

func TestParseGoRegular(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	otf := parseFont(t, goregular.TTF)
	assert.Equal(t, TypeTrueType, otf.Header.FontType)
	assert.Equal(t, 14, len(otf.TableTags()))
	assert.False(t, otf.IsCFF())
	assert.False(t, otf.HasTable("vhea"))
	assert.True(t, otf.HasTable("glyf"))
	//
	assert.Equal(t, uint16(2048), otf.Head.UnitsPerEm)
	assert.Equal(t, [4]int16{-440, -543, 2160, 2291},
		[4]int16{otf.Head.XMin, otf.Head.YMin, otf.Head.XMax, otf.Head.YMax})
	assert.Equal(t, uint16(0), otf.Head.MacStyle)
	assert.Equal(t, int16(1935), otf.HHea.Ascender)
	assert.Equal(t, int16(-432), otf.HHea.Descender)
	assert.Equal(t, int16(0), otf.HHea.LineGap)
	assert.Equal(t, uint16(2240), otf.HHea.AdvanceWidthMax)
	assert.Equal(t, 711, otf.HHea.NumberOfHMetrics)
	assert.Equal(t, 712, otf.NumGlyphs())
	//
	require.NotNil(t, otf.OS2)
	assert.Equal(t, uint16(3), otf.OS2.Version)
	assert.Equal(t, int16(1202), otf.OS2.XAvgCharWidth)
	assert.Equal(t, uint16(400), otf.OS2.WeightClass)
	assert.Equal(t, uint16(0), otf.OS2.FsType)
	assert.Equal(t, FsSelectionRegular, otf.OS2.FsSelection)
	assert.Equal(t, int16(1579), otf.OS2.TypoAscender)
	assert.Equal(t, int16(-395), otf.OS2.TypoDescender)
	assert.Equal(t, uint16(1935), otf.OS2.WinAscent)
	assert.Equal(t, int16(1086), otf.OS2.XHeight)
	assert.Equal(t, int16(1480), otf.OS2.CapHeight)
	//
	require.NotNil(t, otf.Post)
	assert.Equal(t, uint32(0x00020000), otf.Post.Version)
	assert.Equal(t, int32(0), otf.Post.ItalicAngle)
	assert.Equal(t, uint32(0), otf.Post.IsFixedPitch)
	assert.Nil(t, otf.PCLT)
	assert.NotNil(t, otf.Table(T("OS/2")).Self().AsOS2())
}

func TestParseStyles(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	italic := parseFont(t, goitalic.TTF)
	assert.Equal(t, MacStyleItalic, italic.Head.MacStyle)
	assert.Equal(t, FsSelectionItalic, italic.OS2.FsSelection)
	assert.Equal(t, int32(-11*65536), italic.Post.ItalicAngle)
	bold := parseFont(t, gobold.TTF)
	assert.Equal(t, MacStyleBold, bold.Head.MacStyle)
	assert.Equal(t, FsSelectionBold, bold.OS2.FsSelection)
	assert.Equal(t, uint16(600), bold.OS2.WeightClass)
	mono := parseFont(t, gomono.TTF)
	assert.NotEqual(t, uint32(0), mono.Post.IsFixedPitch)
	assert.Equal(t, 1, mono.HHea.NumberOfHMetrics)
	assert.Equal(t, uint16(1229), mono.HHea.AdvanceWidthMax)
}

func TestCMapEncodings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	otf := parseFont(t, goregular.TTF)
	cmap := otf.CMap
	require.NotNil(t, cmap)
	assert.Equal(t, GlyphIndex(36), cmap.GlyphIndexMap.Lookup('A'))
	assert.Equal(t, GlyphIndex(91), cmap.GlyphIndexMap.Lookup('x'))
	assert.Equal(t, GlyphIndex(0), cmap.GlyphIndexMap.Lookup(0x10000))
	assert.Equal(t, 'A', cmap.GlyphIndexMap.ReverseLookup(36))
	assert.Equal(t, rune(13), cmap.GlyphIndexMap.ReverseLookup(2))
	assert.Equal(t, rune(0), cmap.GlyphIndexMap.ReverseLookup(0))
	//
	require.Equal(t, 3, len(cmap.Encodings))
	expected := [][3]uint16{{0, 3, 4}, {1, 0, 6}, {3, 1, 4}}
	for i, enc := range cmap.Encodings {
		assert.Equal(t, expected[i], [3]uint16{enc.PlatformID, enc.EncodingID, enc.Format})
		assert.NotNil(t, enc.Index)
	}
	assert.True(t, cmap.Encodings[0].IsUnicode())
	assert.False(t, cmap.Encodings[1].IsUnicode())
	assert.True(t, cmap.Encodings[2].IsUnicode())
	assert.Equal(t, GlyphIndex(36), cmap.Encodings[1].Index.Lookup('A'))
}

func TestCMapWalk(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	otf := parseFont(t, goregular.TTF)
	var codes []rune
	var glyphs []GlyphIndex
	otf.CMap.Encodings[2].Index.Walk(func(c rune, g GlyphIndex) bool {
		codes = append(codes, c)
		glyphs = append(glyphs, g)
		return len(codes) < 5
	})
	assert.Equal(t, []rune{0, 13, 32, 33, 34}, codes)
	assert.Equal(t, []GlyphIndex{1, 2, 3, 4, 5}, glyphs)
	//
	n := 0
	prev := rune(-1)
	sorted := true
	otf.CMap.Encodings[0].Index.Walk(func(c rune, g GlyphIndex) bool {
		sorted = sorted && c > prev
		prev = c
		n++
		return true
	})
	assert.True(t, sorted, "walk must be in ascending code-point order")
	assert.Equal(t, 709, n)
	mac := 0
	otf.CMap.Encodings[1].Index.Walk(func(c rune, g GlyphIndex) bool {
		mac++
		return c < 9
	})
	assert.Equal(t, 3, mac, "walk stops when asked to")
}

func TestNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	otf := parseFont(t, goregular.TTF)
	require.NotNil(t, otf.Name)
	assert.Equal(t, "Go", otf.Name.Name(NameFontFamily))
	assert.Equal(t, "Regular", otf.Name.Name(NameFontSubfamily))
	assert.Equal(t, "Go Regular", otf.Name.Name(NameFullName))
	assert.Equal(t, "GoRegular", otf.Name.Name(NamePostScriptName))
	assert.Equal(t, "", otf.Name.Name(NameID(999)))
	macFound := false
	for _, rec := range otf.Name.Records {
		if rec.PlatformID == 1 && rec.NameID == NameFontFamily {
			s, err := rec.Decode()
			require.NoError(t, err)
			assert.Equal(t, "Go", s)
			macFound = true
		}
	}
	assert.True(t, macFound)
	assert.Equal(t, "Go Mono", parseFont(t, gomono.TTF).Name.Name(NameFontFamily))
	var nilTable *NameTable
	assert.Equal(t, "", nilTable.Name(NameFontFamily))
}

func TestParseErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	_, err := Parse(nil)
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = Parse(goregular.TTF[:100])
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = Parse([]byte("ttcf\x00\x01\x00\x00\x00\x00\x00\x00"))
	assert.Equal(t, core.EUNSUPPORTED, core.Code(err))
	_, err = Parse([]byte("wOFF\x00\x01\x00\x00\x00\x00\x00\x00"))
	assert.Equal(t, core.EUNSUPPORTED, core.Code(err))
	_, err = Parse(buildFont(map[string][]byte{
		"head": headTable(1000),
		"hhea": make([]byte, 36),
		"cmap": cmapFormat6('A', 1, 2),
	}))
	assert.Equal(t, core.EINVALID, core.Code(err), "maxp is missing")
	_, err = Parse(buildFont(map[string][]byte{
		"head": headTable(1000),
		"hhea": make([]byte, 36),
		"maxp": maxpTable(3),
		"cmap": cmapFormat6('A', 1, 2),
		"PCLT": make([]byte, 20),
	}))
	assert.Equal(t, core.EINVALID, core.Code(err), "PCLT is truncated")
}

func TestSyntheticFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	pclt := make([]byte, 54)
	binary.BigEndian.PutUint32(pclt, 0x00010000)
	binary.BigEndian.PutUint16(pclt[16:], 700)
	pclt[52] = 0x42
	otf := parseFont(t, buildFont(map[string][]byte{
		"head": headTable(1000),
		"hhea": make([]byte, 36),
		"maxp": maxpTable(3),
		"cmap": cmapFormat6('A', 1, 2),
		"PCLT": pclt,
	}))
	require.NotNil(t, otf.PCLT)
	assert.Equal(t, uint16(700), otf.PCLT.CapHeight)
	assert.Equal(t, uint8(2), otf.PCLT.SerifStyle&0x3f)
	assert.Nil(t, otf.OS2)
	assert.Nil(t, otf.Post)
	assert.Nil(t, otf.Name)
	assert.Equal(t, 3, otf.NumGlyphs())
	// format 6 on the Windows platform is not a preferred Unicode map, but
	// it is the only one, so we use it
	assert.Equal(t, GlyphIndex(2), otf.CMap.GlyphIndexMap.Lookup('B'))
	assert.Equal(t, GlyphIndex(0), otf.CMap.GlyphIndexMap.Lookup('C'))
	assert.Equal(t, 'A', otf.CMap.GlyphIndexMap.ReverseLookup(1))
}

// --- Synthetic fonts -------------------------------------------------------

// buildFont assembles a font file from a set of tables.
func buildFont(tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return T(tags[i]) < T(tags[j]) })
	n := len(tags)
	font := make([]byte, 12+16*n)
	binary.BigEndian.PutUint32(font, TypeTrueType)
	binary.BigEndian.PutUint16(font[4:], uint16(n))
	for i, tag := range tags {
		data := tables[tag]
		rec := font[12+16*i:]
		copy(rec, (tag + "    ")[:4])
		binary.BigEndian.PutUint32(rec[8:], uint32(len(font)))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(data)))
		font = append(font, data...)
		for len(font)%4 != 0 {
			font = append(font, 0)
		}
	}
	return font
}

func headTable(upem uint16) []byte {
	head := make([]byte, 54)
	binary.BigEndian.PutUint32(head, 0x00010000)
	binary.BigEndian.PutUint16(head[18:], upem)
	return head
}

func maxpTable(n uint16) []byte {
	maxp := make([]byte, 6)
	binary.BigEndian.PutUint32(maxp, 0x00005000)
	binary.BigEndian.PutUint16(maxp[4:], n)
	return maxp
}

// cmapFormat6 creates a cmap with a single Windows/BMP sub-table of format 6,
// mapping consecutive code-points, starting at first, to glyphs.
func cmapFormat6(first rune, glyphs ...uint16) []byte {
	sub := make([]byte, 10+2*len(glyphs))
	binary.BigEndian.PutUint16(sub, 6)
	binary.BigEndian.PutUint16(sub[2:], uint16(len(sub)))
	binary.BigEndian.PutUint16(sub[6:], uint16(first))
	binary.BigEndian.PutUint16(sub[8:], uint16(len(glyphs)))
	for i, g := range glyphs {
		binary.BigEndian.PutUint16(sub[10+2*i:], g)
	}
	cmap := make([]byte, 12)
	binary.BigEndian.PutUint16(cmap[2:], 1)
	binary.BigEndian.PutUint16(cmap[4:], 3)  // Windows
	binary.BigEndian.PutUint16(cmap[6:], 0)  // Symbol encoding
	binary.BigEndian.PutUint32(cmap[8:], 12) // offset of sub-table
	return append(cmap, sub...)
}
