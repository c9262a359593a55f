package fem

import (
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font"
)

// ErrCode is a numeric error code returned by the bulk glyph queries of a
// FontEngine. Zero means success.
type ErrCode uint32

// Error codes of bulk glyph queries. The values match the ones of the
// FreeType library.
const (
	ErrOK                ErrCode = 0x00
	ErrCannotOpen        ErrCode = 0x01 // font resource cannot be opened
	ErrUnknownFormat     ErrCode = 0x02 // font format not recognized
	ErrInvalidArgument   ErrCode = 0x06 // e.g., glyph range out of bounds
	ErrInvalidGlyphIndex ErrCode = 0x10
)

// Scaler is a handle to a font at a concrete transform. All glyph operations
// are issued through a scaler. Glyph operations never fail loudly: for
// invalid glyph IDs or backend failures they return zero values.
//
// fracX and fracY are fractional pen positions in 16.16 pixels, used with
// subpixel positioning. Usually they are zero.
//
// Clients must call Close when done with a scaler. Close is idempotent.
type Scaler interface {
	GlyphCount() int
	CharToGlyphID(r rune) uint16
	GlyphIDToChar(gid uint16) rune
	GlyphAdvance(gid uint16, fracX, fracY fixedpt.F16Dot16) GlyphMetrics
	GlyphMetrics(gid uint16, fracX, fracY fixedpt.F16Dot16) GlyphMetrics
	GlyphImage(gid uint16, fracX, fracY fixedpt.F16Dot16, img *GlyphImage)
	GlyphOutline(gid uint16, fracX, fracY fixedpt.F16Dot16) *GlyphOutline
	FontMetrics() (mx, my FontMetrics)
	Close() error
}

// FontEngine is the interface every font rasterizer implements.
//
// Operations never panic and never return errors across this interface.
// Failures are signalled by sentinels: nil, empty strings, 0, false or a
// non-zero ErrCode. Engines must return an untyped nil for a failed
// CreateScaler.
type FontEngine interface {
	// Name returns the name of the engine.
	Name() string
	// Capabilities returns the render targets available for a request.
	Capabilities(req *ScalerRequest) Capability
	// NameAndStyle returns the family name of a font, truncated to maxLen
	// bytes if maxLen > 0, its style and whether it is fixed-pitch.
	// name is empty on failure.
	NameAndStyle(src font.Source, maxLen int) (name string, style FontStyle, fixedWidth bool)
	// SupportsFormat checks if the engine can handle a font. With load=false
	// only the file extension of a path source is checked.
	SupportsFormat(src font.Source, load bool) bool
	// CreateScaler returns a scaler for a request, or nil.
	CreateScaler(req *ScalerRequest) Scaler
	// UnitsPerEm returns the number of font units per em, or 0.
	UnitsPerEm(src font.Source) uint32
	// CanEmbed checks the embedding permissions of a font.
	CanEmbed(src font.Source) bool
	// GlyphAdvances returns unhinted advances of glyphs start…start+count-1,
	// in raw font units.
	GlyphAdvances(src font.Source, start, count int) ([]fixedpt.F16Dot16, ErrCode)
	// GlyphNames returns the names of glyphs start…start+count-1.
	GlyphNames(src font.Source, start, count int) ([]string, ErrCode)
	// GlyphUnicodes returns the code points of glyphs start…start+count-1,
	// with 0 for glyphs not reachable from a Unicode character map.
	GlyphUnicodes(src font.Source, start, count int) ([]rune, ErrCode)
	// AdvancedMetrics returns typeface information for PDF embedding, or nil.
	AdvancedMetrics(src font.Source) *AdvancedTypefaceMetrics
}
