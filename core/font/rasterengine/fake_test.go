package rasterengine

import (
	"errors"
	"fmt"

	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font/fem"
	"github.com/npillmayer/fontengines/core/font/opentype/ot"
	"golang.org/x/image/math/fixed"
)

// fakeBackend produces synthetic glyphs for real font files: every glyph is
// a box, except bitmapGlyph, which is a 5x1 mono bitmap if embedded bitmaps
// are allowed.
type fakeBackend struct {
	format    string
	lcd       bool
	failSize  bool
	inits     int
	dones     int
	opened    int
	closed    int
	sizes     int
	sizesDone int
	renders   int
	rendered  cbox // control box of the last outline rendered
}

const bitmapGlyph = 3

var _ Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{format: "TrueType", lcd: true}
}

func (fb *fakeBackend) Name() string      { return "fake" }
func (fb *fakeBackend) Init() error       { fb.inits++; return nil }
func (fb *fakeBackend) Done()             { fb.dones++ }
func (fb *fakeBackend) SupportsLCD() bool { return fb.lcd }

func (fb *fakeBackend) OpenFace(data []byte) (Face, error) {
	otf, err := ot.Parse(data)
	if err != nil {
		return nil, err
	}
	fb.opened++
	return &fakeFace{backend: fb, numGlyphs: otf.NumGlyphs(), upem: int(otf.Head.UnitsPerEm)}, nil
}

func (fb *fakeBackend) Render(o *fem.GlyphOutline, target *Bitmap) error {
	fb.renders++
	fb.rendered = controlBox(o)
	for y := 0; y < target.Rows; y++ {
		row := target.Buffer[y*target.Pitch : (y+1)*target.Pitch]
		n := target.Width
		if target.Mode == PixelMono {
			n = target.Pitch
		}
		for x := 0; x < n; x++ {
			row[x] = 0xff
		}
	}
	return nil
}

type fakeSize struct {
	face           *fakeFace
	scaleX, scaleY fixedpt.F16Dot16
}

func (s *fakeSize) Done() { s.face.backend.sizesDone++ }

type fakeFace struct {
	backend     *fakeBackend
	numGlyphs   int
	upem        int
	active      *fakeSize
	activations int
	lastFlags   LoadFlags
}

func (ff *fakeFace) Format() string  { return ff.backend.format }
func (ff *fakeFace) NumGlyphs() int  { return ff.numGlyphs }
func (ff *fakeFace) UnitsPerEm() int { return ff.upem }
func (ff *fakeFace) Close() error    { ff.backend.closed++; return nil }

func (ff *fakeFace) GlyphName(gid uint16) (string, error) {
	return fmt.Sprintf("g%d", gid), nil
}

func (ff *fakeFace) UnscaledAdvance(gid uint16) (int, error) {
	return 1000 + int(gid), nil
}

func (ff *fakeFace) NewSize(scaleX, scaleY fixedpt.F16Dot16) (Size, error) {
	if ff.backend.failSize {
		return nil, errors.New("no size for you")
	}
	ff.backend.sizes++
	return &fakeSize{face: ff, scaleX: scaleX, scaleY: scaleY}, nil
}

func (ff *fakeFace) Activate(size Size) error {
	s, ok := size.(*fakeSize)
	if !ok || s.face != ff {
		return errors.New("size does not belong to face")
	}
	ff.active = s
	ff.activations++
	return nil
}

// LoadGlyph returns a box (10,-20)…(330,700) in 26.6, or a box
// (100,0)…(300,1400) in font units.
func (ff *fakeFace) LoadGlyph(gid uint16, flags LoadFlags) (*Glyph, error) {
	ff.lastFlags = flags
	if flags&LoadNoScale != 0 {
		return &Glyph{Format: OutlineGlyph, Outline: box(100, 0, 300, 1400)}, nil
	}
	if ff.active == nil {
		return nil, errors.New("no active size")
	}
	if gid == bitmapGlyph && flags&LoadNoBitmap == 0 {
		bm := NewBitmap(5, 1, PixelMono)
		bm.Buffer[0] = 0xb0
		return &Glyph{
			Format:            BitmapGlyph,
			Bitmap:            bm,
			BitmapLeft:        1,
			BitmapTop:         7,
			Advance:           fixed.Point26_6{X: 6 << 6},
			LinearHoriAdvance: fixedpt.Int16Dot16(6),
		}, nil
	}
	return &Glyph{
		Format:            OutlineGlyph,
		Outline:           box(10, -20, 330, 700),
		Advance:           fixed.Point26_6{X: 10 << 6},
		LinearHoriAdvance: fixedpt.Int16Dot16(10),
		LsbDelta:          -3,
		RsbDelta:          5,
	}, nil
}

// box creates a counter-clockwise rectangle.
func box(xmin, ymin, xmax, ymax fixed.Int26_6) *fem.GlyphOutline {
	o := fem.NewGlyphOutline(4, 1)
	o.Points[0] = fixed.Point26_6{X: xmin, Y: ymin}
	o.Points[1] = fixed.Point26_6{X: xmax, Y: ymin}
	o.Points[2] = fixed.Point26_6{X: xmax, Y: ymax}
	o.Points[3] = fixed.Point26_6{X: xmin, Y: ymax}
	for i := range o.Tags {
		o.Tags[i] = fem.TagOnCurve | 0x10
	}
	o.Contours[0] = 3
	return o
}
