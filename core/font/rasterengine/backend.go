package rasterengine

import (
	"fmt"
	"image"

	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font/fem"
	"golang.org/x/image/math/fixed"
)

// Backend is a glyph rasterizer library. A backend is initialized before the
// first face is opened and shut down after the last face is closed.
type Backend interface {
	Name() string
	// Init sets up library state. It is called again after a Done.
	Init() error
	// Done releases library state.
	Done()
	// SupportsLCD is true if the backend is able to render LCD targets.
	SupportsLCD() bool
	// OpenFace parses font data. Unsupported formats should be reported
	// with an error of code core.EUNSUPPORTED.
	OpenFace(data []byte) (Face, error)
	// Render scan converts an outline into a bitmap of mode PixelMono or
	// PixelGray. Outline coordinates are 26.6 pixels with y pointing up; the
	// lower left corner of the bitmap is at the origin. The bitmap is
	// cleared by the caller.
	Render(outline *fem.GlyphOutline, target *Bitmap) error
}

// Face is a font loaded by a backend. A face has a single active size,
// which has to be set with Activate before glyphs are loaded.
type Face interface {
	// Format returns "TrueType" or "CFF".
	Format() string
	NumGlyphs() int
	UnitsPerEm() int
	GlyphName(gid uint16) (string, error)
	// UnscaledAdvance returns the advance width of a glyph in font units.
	UnscaledAdvance(gid uint16) (int, error)
	// NewSize creates a size context for a scale in 16.16 pixels per em.
	NewSize(scaleX, scaleY fixedpt.F16Dot16) (Size, error)
	// Activate makes a size the active size of the face.
	Activate(size Size) error
	// LoadGlyph loads a glyph at the active size. With LoadNoScale outline
	// coordinates are in font units and no size is needed. The glyph is
	// owned by the caller.
	LoadGlyph(gid uint16, flags LoadFlags) (*Glyph, error)
	Close() error
}

// Size is a backend's context for a face at a concrete scale.
type Size interface {
	Done()
}

// LoadFlags control glyph loading. The values follow FreeType.
type LoadFlags uint32

// Load flags
const (
	LoadDefault   LoadFlags = 0x0
	LoadNoScale   LoadFlags = 0x1 // outline in font units, implies no hinting
	LoadNoHinting LoadFlags = 0x2
	LoadRender    LoadFlags = 0x4
	LoadNoBitmap  LoadFlags = 0x8 // ignore embedded bitmap strikes
)

// Hinting targets, stored in bits 16…19 of load flags.
const (
	TargetNormal LoadFlags = 0 << 16
	TargetLight  LoadFlags = 1 << 16
	TargetMono   LoadFlags = 2 << 16
	TargetLCD    LoadFlags = 3 << 16
	TargetLCDV   LoadFlags = 4 << 16
	targetMask   LoadFlags = 15 << 16
)

// Target returns the hinting target of a set of load flags.
func (f LoadFlags) Target() LoadFlags {
	return f & targetMask
}

// Hinted is true if flags ask for grid fitting.
func (f LoadFlags) Hinted() bool {
	return f&(LoadNoHinting|LoadNoScale) == 0 && f.Target() != TargetLight
}

func (f LoadFlags) String() string {
	return fmt.Sprintf("load(%#x)", uint32(f))
}

// GlyphFormat tells if a glyph has been loaded as an outline or a bitmap.
type GlyphFormat uint8

// Glyph formats
const (
	OutlineGlyph GlyphFormat = iota
	BitmapGlyph
)

// PixelMode is the pixel format of a bitmap.
type PixelMode uint8

// Pixel modes
const (
	PixelMono PixelMode = iota // 1 bit per pixel, most significant bit first
	PixelGray                  // 8 bit per pixel
)

// Bitmap is a raster image, rows top down.
type Bitmap struct {
	Width  int
	Rows   int
	Pitch  int // bytes per row
	Mode   PixelMode
	Buffer []byte
}

// NewBitmap allocates a cleared bitmap.
func NewBitmap(width, rows int, mode PixelMode) *Bitmap {
	pitch := width
	if mode == PixelMono {
		pitch = (width + 7) >> 3
	}
	return &Bitmap{
		Width:  width,
		Rows:   rows,
		Pitch:  pitch,
		Mode:   mode,
		Buffer: make([]byte, pitch*rows),
	}
}

// Alpha returns a view of a gray bitmap as an image. The image shares the
// bitmap's buffer.
func (bm *Bitmap) Alpha() *image.Alpha {
	return &image.Alpha{
		Pix:    bm.Buffer,
		Stride: bm.Pitch,
		Rect:   image.Rect(0, 0, bm.Width, bm.Rows),
	}
}

// SetCoverage sets the pixels of a bitmap from an image of coverage values
// of the same size. Mono pixels are set where the coverage is at least 50%.
func (bm *Bitmap) SetCoverage(cov *image.Alpha) {
	for y := 0; y < bm.Rows; y++ {
		src := cov.Pix[y*cov.Stride : y*cov.Stride+bm.Width]
		dst := bm.Buffer[y*bm.Pitch : (y+1)*bm.Pitch]
		if bm.Mode == PixelGray {
			copy(dst, src)
			continue
		}
		for i := range dst {
			dst[i] = 0
		}
		for x, a := range src {
			if a >= 0x80 {
				dst[x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
}

// Glyph is a glyph loaded by a face at its active size.
//
// Outlines are in 26.6 pixels with y pointing up, untransformed. Advance
// is the (possibly hinted) advance in 26.6, LinearHoriAdvance the unhinted
// advance in 16.16 pixels.
type Glyph struct {
	Format            GlyphFormat
	Outline           *fem.GlyphOutline
	Bitmap            *Bitmap
	BitmapLeft        int
	BitmapTop         int // distance from the baseline to the top row, y up
	Advance           fixed.Point26_6
	LinearHoriAdvance fixedpt.F16Dot16
	LsbDelta          int // change of left side bearing due to hinting
	RsbDelta          int // change of right side bearing due to hinting
}
