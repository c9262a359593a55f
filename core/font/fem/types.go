package fem

import (
	"fmt"

	"github.com/npillmayer/fontengines/core/fixedpt"
	"golang.org/x/image/math/fixed"
)

// FontStyle specifies the intrinsic style attributes of a typeface.
type FontStyle uint8

// Typeface styles
const (
	StyleNormal     FontStyle = 0
	StyleBold       FontStyle = 0x1
	StyleItalic     FontStyle = 0x2
	StyleBoldItalic FontStyle = 0x3
)

func (s FontStyle) String() string {
	switch s {
	case StyleBold:
		return "bold"
	case StyleItalic:
		return "italic"
	case StyleBoldItalic:
		return "bold-italic"
	}
	return "normal"
}

// AliasMode is the pixel format of a glyph image (a.k.a. mask format).
type AliasMode uint8

// Alias modes
const (
	AliasMono  AliasMode = 0 // 1 bit per pixel
	AliasGray  AliasMode = 1 // 8 bit per pixel
	AliasLCDH  AliasMode = 2 // horizontal subpixels, one byte per subpixel
	AliasLCDV  AliasMode = 3 // vertical subpixels, one byte per subpixel
	AliasLCD16 AliasMode = 4 // RGB565, 2 bytes per pixel
)

var aliasModeNames = [...]string{"mono", "gray", "lcd", "lcdv", "lcd16"}

func (m AliasMode) String() string {
	if int(m) < len(aliasModeNames) {
		return aliasModeNames[m]
	}
	return fmt.Sprintf("alias(%d)", m)
}

// IsLCD is true for all subpixel formats.
func (m AliasMode) IsLCD() bool {
	return m == AliasLCDH || m == AliasLCDV || m == AliasLCD16
}

// Hinting specifies whether and how outlines are fitted to the pixel grid.
type Hinting uint8

// Hinting levels
const (
	HintingNone   Hinting = 0
	HintingLight  Hinting = 1
	HintingNormal Hinting = 2
	HintingFull   Hinting = 3
)

var hintingNames = [...]string{"none", "light", "normal", "full"}

func (h Hinting) String() string {
	return hintingNames[h&3]
}

// Capability is a set of render targets a font engine supports.
// Monochrome rendering is always possible and therefore has no bit.
type Capability uint8

// Engine capabilities
const (
	CanRenderMono Capability = 0
	CanRenderGray Capability = 0x1
	CanRenderLCDH Capability = 0x2
	CanRenderLCDV Capability = 0x4
	CanRenderLCD  Capability = CanRenderLCDH | CanRenderLCDV
)

// Flags are rendering options of a scaler request.
type Flags uint8

// Request flags
const (
	FlagDevKern        Flags = 0x01 // report lsb/rsb deltas in glyph metrics
	FlagHintingMask    Flags = 0x06 // 2 bits of Hinting
	FlagEmbeddedBitmap Flags = 0x08 // use embedded bitmap strikes if present
	FlagEmbolden       Flags = 0x10 // synthetic emboldening
)

const flagHintingShift = 1

// Hinting extracts the hinting level from a set of flags.
func (f Flags) Hinting() Hinting {
	return Hinting((f & FlagHintingMask) >> flagHintingShift)
}

// WithHinting returns f with its hinting bits replaced by h.
func (f Flags) WithHinting(h Hinting) Flags {
	return f&^FlagHintingMask | Flags(h&3)<<flagHintingShift
}

// FontType classifies the font program of a typeface, as used for PDF
// embedding.
type FontType uint8

// Font types
const (
	Type1Font         FontType = 0
	Type1CIDFont      FontType = 1
	CFFFont           FontType = 2
	TrueTypeFont      FontType = 3
	OtherFont         FontType = 4
	NotEmbeddableFont FontType = 5
)

var fontTypeNames = [...]string{"Type1", "Type1CID", "CFF", "TrueType", "other", "not-embeddable"}

func (t FontType) String() string {
	if int(t) < len(fontTypeNames) {
		return fontTypeNames[t]
	}
	return "?"
}

// StyleFlags hold font descriptor flags. The values match the ones used in
// the PDF file format.
type StyleFlags uint32

// PDF font descriptor flags
const (
	FixedPitchStyle  StyleFlags = 0x00001
	SerifStyle       StyleFlags = 0x00002
	SymbolicStyle    StyleFlags = 0x00004
	ScriptStyle      StyleFlags = 0x00008
	NonsymbolicStyle StyleFlags = 0x00020
	ItalicStyle      StyleFlags = 0x00040
	AllCapsStyle     StyleFlags = 0x10000
	SmallCapsStyle   StyleFlags = 0x20000
	ForceBoldStyle   StyleFlags = 0x40000
)

// --- Glyph metrics ---------------------------------------------------------

// GlyphMetrics holds the measurements of a single glyph in device space.
// Top and Left are in whole pixels, with Top using the "positive y downwards"
// convention (Top is negative for glyphs extending above the baseline).
type GlyphMetrics struct {
	LsbDelta int8             // left side bearing change due to hinting
	RsbDelta int8             // right side bearing change due to hinting
	Width    uint16           // bitmap width in pixels
	Height   uint16           // bitmap height in pixels
	AdvanceX fixedpt.F16Dot16 // horizontal advance
	AdvanceY fixedpt.F16Dot16 // vertical advance
	Left     int16            // left edge of the bitmap
	Top      int16            // top edge of the bitmap
}

// Clear zeroes all fields.
func (gm *GlyphMetrics) Clear() {
	*gm = GlyphMetrics{}
}

// IsEmpty is true if the glyph has no extent and no advance.
func (gm GlyphMetrics) IsEmpty() bool {
	return gm == GlyphMetrics{}
}

func (gm GlyphMetrics) String() string {
	return fmt.Sprintf("[%dx%d at (%d,%d), adv=(%s,%s), δ=(%d,%d)]",
		gm.Width, gm.Height, gm.Left, gm.Top, gm.AdvanceX, gm.AdvanceY,
		gm.LsbDelta, gm.RsbDelta)
}

// --- Outlines --------------------------------------------------------------

// Point tags of a glyph outline.
const (
	TagOnCurve uint8 = 0x1 // point is on the curve, else a control point
	TagCubic   uint8 = 0x2 // control point of a cubic (third-order) arc
)

// GlyphOutline is the outline of a glyph in device space, in 26.6 fractional
// pixels. Once returned to a client, it is owned by the client.
//
// Contours holds the index of the last point of every contour. Decomposition
// follows the usual rules: two on-points are a line, an off-point between
// two on-points is a quadratic arc, two off-points between on-points are the
// control points of a cubic arc.
type GlyphOutline struct {
	Points   []fixed.Point26_6
	Tags     []uint8
	Contours []int16
}

// NewGlyphOutline creates an outline with space for a number of points and
// contours.
func NewGlyphOutline(npoints, ncontours int) *GlyphOutline {
	return &GlyphOutline{
		Points:   make([]fixed.Point26_6, npoints),
		Tags:     make([]uint8, npoints),
		Contours: make([]int16, ncontours),
	}
}

// PointCount returns the number of points of all contours.
func (o *GlyphOutline) PointCount() int {
	if o == nil {
		return 0
	}
	return len(o.Points)
}

// ContourCount returns the number of contours.
func (o *GlyphOutline) ContourCount() int {
	if o == nil {
		return 0
	}
	return len(o.Contours)
}

// --- Font-wide metrics -----------------------------------------------------

// FontMetrics are font-wide metrics along one axis, in 16.16 fractional
// pixels. Vertical values are "positive y downwards": Top and Ascent are
// negative for a regular horizontal font.
type FontMetrics struct {
	Top          fixedpt.F16Dot16 // greatest extent above the baseline
	Ascent       fixedpt.F16Dot16 // distance above the baseline to reserve
	Descent      fixedpt.F16Dot16 // distance below the baseline to reserve
	Bottom       fixedpt.F16Dot16 // greatest extent below the baseline
	Leading      fixedpt.F16Dot16 // space to add between lines
	AvgCharWidth fixedpt.F16Dot16 // average character width
	XMin         fixedpt.F16Dot16 // minimum x of all glyph bounding boxes
	XMax         fixedpt.F16Dot16 // maximum x of all glyph bounding boxes
	XHeight      fixedpt.F16Dot16 // height of a lower case 'x'
}

// --- Advanced typeface metrics ---------------------------------------------

// AdvancedTypefaceMetrics describe a typeface for embedding into PDF files.
// All lengths are in font design units. If Type is OtherFont or
// NotEmbeddableFont, the font program should not be embedded.
type AdvancedTypefaceMetrics struct {
	FontName        string   // PostScript name
	Type            FontType // type of the font program
	CID             bool     // multi-byte glyph indexing
	XMin, YMin      int32    // bounding box of all glyphs
	XMax, YMax      int32
	NumGlyphs       int32
	NumCharmaps     int32
	Style           StyleFlags
	EmSize          uint16 // size of the em box (defines font units)
	ItalicAngle     int16  // counter-clockwise degrees from vertical
	Ascent          int16  // max height above baseline, not including accents
	Descent         int16  // max depth below baseline (negative)
	StemV           int16  // thickness of the dominant vertical stem
	CapHeight       int16  // height of flat capitals
	MaxAdvWidth     int16  // maximum advance width of all glyphs
	MultiMaster     bool
	Scalable        bool
	VerticalMetrics bool
}

// --- Glyph images ----------------------------------------------------------

// GlyphImage is a client-owned buffer a glyph is rendered into. Rows are
// stored top to bottom, each RowBytes long; the glyph origin is aligned with
// the lower-left corner of the buffer, as given by the glyph's metrics.
type GlyphImage struct {
	Width    int
	Height   int
	RowBytes int
	Format   AliasMode
	Pixels   []byte
}

// NewGlyphImage allocates a buffer suitable for a glyph with metrics gm in
// a given format.
func NewGlyphImage(gm GlyphMetrics, format AliasMode) *GlyphImage {
	w, h := int(gm.Width), int(gm.Height)
	img := &GlyphImage{Width: w, Height: h, Format: format}
	img.RowBytes = RowBytes(format, w)
	img.Pixels = make([]byte, img.RowBytes*h)
	return img
}

// RowBytes returns the minimal row length in bytes for a given width and
// pixel format.
func RowBytes(format AliasMode, width int) int {
	switch format {
	case AliasMono:
		return (width + 7) >> 3
	case AliasLCD16:
		return width * 2
	}
	return width
}

// Clear zeroes all pixels.
func (img *GlyphImage) Clear() {
	for i := range img.Pixels {
		img.Pixels[i] = 0
	}
}

// Valid checks if the buffer is large enough for its dimensions.
func (img *GlyphImage) Valid() bool {
	return img != nil && img.Width >= 0 && img.Height >= 0 &&
		img.RowBytes >= RowBytes(img.Format, img.Width) &&
		len(img.Pixels) >= img.RowBytes*img.Height
}
