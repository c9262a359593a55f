package ot

// Font represents the internal structure of an OpenType or TrueType font,
// as far as it is of interest for font engines.
//
// Required tables are available as fields; optional tables are nil if missing.
type Font struct {
	Header *FontHeader
	tables map[Tag]Table
	CMap   *CMapTable // cmap table is mandatory
	Head   *HeadTable // head table is mandatory
	HHea   *HHeaTable // hhea table is mandatory
	MaxP   *MaxPTable // maxp table is mandatory
	OS2    *OS2Table  // may be nil, e.g. for older Mac fonts
	Post   *PostTable // may be nil
	PCLT   *PCLTTable // may be nil
	Name   *NameTable // may be nil
}

// FontHeader is a directory of the top-level tables in a font.
//
// OpenType fonts that contain TrueType outlines should use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2) should
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
// The Apple specification for TrueType fonts allows for 'true' and 'typ1',
// but these version tags should not be used for OpenType fonts.
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Font types as found in a font header.
const (
	TypeTrueType   uint32 = 0x00010000
	TypeOpenType   uint32 = 0x4f54544f // OTTO
	TypeAppleTrue  uint32 = 0x74727565 // true
	TypeCollection uint32 = 0x74746366 // ttcf
)

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
//
// Table tag names are case-sensitive, following the names in the OpenType specification.
// To check for vertical metrics, clients may call
//
//	hasVertical := otf.Table(ot.T("vhea")) != nil
func (otf *Font) Table(tag Tag) Table {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// HasTable is a shortcut for checking the presence of a table.
func (otf *Font) HasTable(tag string) bool {
	return otf.Table(T(tag)) != nil
}

// TableTags returns a list of tags, one for each table contained in the font.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	return tags
}

// IsCFF returns true if the font contains PostScript (CFF) outlines.
func (otf *Font) IsCFF() bool {
	return otf.HasTable("CFF ") || otf.HasTable("CFF2")
}

// NumGlyphs returns the number of glyphs as stated in table maxp.
func (otf *Font) NumGlyphs() int {
	if otf.MaxP == nil {
		return 0
	}
	return otf.MaxP.NumGlyphs
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the OpenType spec as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables.
//
// Tables not interpreted by this package are represented by a generic table type,
// i.e. no table information will be dropped.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treatet as read-only by clients
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	},
	}
	t.self = t
	return t
}

type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   interface{}
}

func makeTableBase(tag Tag, b binarySegm, offset, size uint32) tableBase {
	return tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treatet as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	if tself.tableBase == nil {
		return 0
	}
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) interface{} {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return TableSelf{}
	}
	return tself.tableBase.self
}

// AsCMap returns this table as a cmap table, or nil.
func (tself TableSelf) AsCMap() *CMapTable {
	if k, ok := safeSelf(tself).(*CMapTable); ok {
		return k
	}
	return nil
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable {
	if k, ok := safeSelf(tself).(*HeadTable); ok {
		return k
	}
	return nil
}

// AsHHea returns this table as a hhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable {
	if k, ok := safeSelf(tself).(*HHeaTable); ok {
		return k
	}
	return nil
}

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable {
	if k, ok := safeSelf(tself).(*MaxPTable); ok {
		return k
	}
	return nil
}

// AsOS2 returns this table as an OS/2 table, or nil.
func (tself TableSelf) AsOS2() *OS2Table {
	if k, ok := safeSelf(tself).(*OS2Table); ok {
		return k
	}
	return nil
}

// AsPost returns this table as a post table, or nil.
func (tself TableSelf) AsPost() *PostTable {
	if k, ok := safeSelf(tself).(*PostTable); ok {
		return k
	}
	return nil
}

// AsPCLT returns this table as a PCLT table, or nil.
func (tself TableSelf) AsPCLT() *PCLTTable {
	if k, ok := safeSelf(tself).(*PCLTTable); ok {
		return k
	}
	return nil
}

// AsName returns this table as a name table, or nil.
func (tself TableSelf) AsName() *NameTable {
	if k, ok := safeSelf(tself).(*NameTable); ok {
		return k
	}
	return nil
}

// --- Concrete table implementations ----------------------------------------

// HeadTable gives global information about the font.
// Only a subset of fields are made public by HeadTable. To read any of the other
// fields of table 'head', clients have to consult the table's Binary().
type HeadTable struct {
	tableBase
	Flags            uint16 // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	XMin, YMin       int16  // bounding box over all glyphs
	XMax, YMax       int16
	MacStyle         uint16 // bit 0 = bold, bit 1 = italic
	IndexToLocFormat uint16 // needed to interpret loca table
}

// Style bits of HeadTable.MacStyle.
const (
	MacStyleBold   uint16 = 0x0001
	MacStyleItalic uint16 = 0x0002
)

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) *HeadTable {
	t := &HeadTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Ascender         int16  // typographic ascent in font units
	Descender        int16  // typographic descent, negative below the baseline
	LineGap          int16  // typographic line gap
	AdvanceWidthMax  uint16 // maximum advance width in hmtx
	NumberOfHMetrics int
}

func newHHeaTable(tag Tag, b binarySegm, offset, size uint32) *HHeaTable {
	t := &HHeaTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// MaxPTable establishes the memory requirements for this font.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) *MaxPTable {
	t := &MaxPTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// OS2Table holds the OS/2 and Windows specific metrics of a font.
// Fields not present in the table's version are 0.
type OS2Table struct {
	tableBase
	Version       uint16
	XAvgCharWidth int16
	WeightClass   uint16
	FsType        uint16 // embedding licensing rights
	FsSelection   uint16 // font selection flags
	TypoAscender  int16
	TypoDescender int16
	TypoLineGap   int16
	WinAscent     uint16
	WinDescent    uint16
	XHeight       int16 // version 2 and up
	CapHeight     int16 // version 2 and up
}

// Bits of OS2Table.FsType and OS2Table.FsSelection.
const (
	FsTypeRestricted     uint16 = 0x0002 // restricted license embedding
	FsTypeBitmapOnly     uint16 = 0x0200 // bitmap embedding only
	FsSelectionItalic    uint16 = 0x0001
	FsSelectionBold      uint16 = 0x0020
	FsSelectionRegular   uint16 = 0x0040
	FsSelectionOblique   uint16 = 0x0200
	FsTypeNoOutlineEmbed        = FsTypeRestricted | FsTypeBitmapOnly
)

func newOS2Table(tag Tag, b binarySegm, offset, size uint32) *OS2Table {
	t := &OS2Table{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// PostTable contains additional information needed to use TrueType or OpenType
// fonts on PostScript printers.
type PostTable struct {
	tableBase
	Version            uint32
	ItalicAngle        int32 // 16.16 fixed-point degrees, counter-clockwise from the vertical
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       uint32 // 0 if the font is proportionally spaced
}

func newPostTable(tag Tag, b binarySegm, offset, size uint32) *PostTable {
	t := &PostTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// PCLTTable holds information for PCL 5 printers. It is deprecated, but
// older fonts sometimes carry more reliable cap heights in it than in OS/2.
type PCLTTable struct {
	tableBase
	Version    uint32
	XHeight    uint16
	Style      uint16
	CapHeight  uint16
	SerifStyle uint8
}

func newPCLTTable(tag Tag, b binarySegm, offset, size uint32) *PCLTTable {
	t := &PCLTTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}
