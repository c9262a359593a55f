package sfntbackend

import (
	"bytes"
	"image"
	"image/draw"
	"strings"

	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font/fem"
	"github.com/npillmayer/fontengines/core/font/rasterengine"
	"github.com/npillmayer/schuko"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Name is the name of the backend and of engines using it.
const Name = "sfnt"

func init() {
	fem.RegisterDiscovery(Name, func() fem.FontEngine {
		return NewEngine(nil)
	})
}

// NewEngine creates a font engine on top of an sfnt backend.
func NewEngine(conf schuko.Configuration) *rasterengine.Engine {
	return rasterengine.New(New(), conf)
}

// Backend implements rasterengine.Backend with packages sfnt and vector.
type Backend struct{}

var _ rasterengine.Backend = (*Backend)(nil)

// New creates a backend.
func New() *Backend {
	return &Backend{}
}

// Name returns "sfnt".
func (b *Backend) Name() string { return Name }

// Init has no library state to set up.
func (b *Backend) Init() error {
	tracer().Debugf("sfnt backend up")
	return nil
}

// Done has no library state to release.
func (b *Backend) Done() {
	tracer().Debugf("sfnt backend down")
}

// SupportsLCD is true: coverage is computed exactly, which makes oversampled
// rendering meaningful.
func (b *Backend) SupportsLCD() bool { return true }

// OpenFace parses a font. Collections are not supported.
func (b *Backend) OpenFace(data []byte) (rasterengine.Face, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		// sfnt reports unsupported features and collections by message only
		if msg := err.Error(); strings.Contains(msg, "unsupported") || strings.Contains(msg, "collection") {
			return nil, core.WrapError(err, core.EUNSUPPORTED, "sfnt cannot handle font")
		}
		return nil, core.WrapError(err, core.EINVALID, "sfnt cannot parse font")
	}
	format := "TrueType"
	if bytes.HasPrefix(data, []byte("OTTO")) {
		format = "CFF"
	}
	return &face{font: f, format: format, upem: int(f.UnitsPerEm())}, nil
}

// Render scan converts an outline with an anti-aliasing rasterizer.
func (b *Backend) Render(o *fem.GlyphOutline, target *rasterengine.Bitmap) error {
	if target.Width <= 0 || target.Rows <= 0 {
		return nil
	}
	z := vector.NewRasterizer(target.Width, target.Rows)
	z.DrawOp = draw.Src
	if err := rasterengine.Decompose(o, &pen{z: z, height: float32(target.Rows)}); err != nil {
		return err
	}
	if target.Mode == rasterengine.PixelGray {
		dst := target.Alpha()
		z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
		return nil
	}
	cov := image.NewAlpha(image.Rect(0, 0, target.Width, target.Rows))
	z.Draw(cov, cov.Bounds(), image.Opaque, image.Point{})
	target.SetCoverage(cov)
	return nil
}

// pen feeds outline segments to a rasterizer, flipping the y-axis.
type pen struct {
	z      *vector.Rasterizer
	height float32
}

func (p *pen) xy(q fixed.Point26_6) (float32, float32) {
	return float32(q.X) / 64, p.height - float32(q.Y)/64
}

func (p *pen) MoveTo(q fixed.Point26_6) {
	p.z.MoveTo(p.xy(q))
}

func (p *pen) LineTo(q fixed.Point26_6) {
	p.z.LineTo(p.xy(q))
}

func (p *pen) QuadTo(c, q fixed.Point26_6) {
	cx, cy := p.xy(c)
	x, y := p.xy(q)
	p.z.QuadTo(cx, cy, x, y)
}

func (p *pen) CubeTo(c1, c2, q fixed.Point26_6) {
	c1x, c1y := p.xy(c1)
	c2x, c2y := p.xy(c2)
	x, y := p.xy(q)
	p.z.CubeTo(c1x, c1y, c2x, c2y, x, y)
}

func (p *pen) Close() {
	p.z.ClosePath()
}

// --- Faces -----------------------------------------------------------------

type face struct {
	font   *sfnt.Font
	buf    sfnt.Buffer
	format string
	upem   int
	active *size
}

type size struct {
	face           *face
	scaleX, scaleY fixedpt.F16Dot16
}

// Done has nothing to release.
func (s *size) Done() {}

func (f *face) Format() string  { return f.format }
func (f *face) NumGlyphs() int  { return f.font.NumGlyphs() }
func (f *face) UnitsPerEm() int { return f.upem }
func (f *face) Close() error    { f.active = nil; return nil }

func (f *face) GlyphName(gid uint16) (string, error) {
	return f.font.GlyphName(&f.buf, sfnt.GlyphIndex(gid))
}

// UnscaledAdvance reads the advance from table hmtx. Scaling to an em size
// equal to the units per em leaves 26.6 values which are font units.
func (f *face) UnscaledAdvance(gid uint16) (int, error) {
	adv, err := f.font.GlyphAdvance(&f.buf, sfnt.GlyphIndex(gid), fixed.Int26_6(f.upem), font.HintingNone)
	return int(adv), err
}

func (f *face) NewSize(scaleX, scaleY fixedpt.F16Dot16) (rasterengine.Size, error) {
	if scaleY <= 0 || scaleX <= 0 {
		return nil, core.Error(core.EINVALID, "invalid scale %s×%s", scaleX, scaleY)
	}
	return &size{face: f, scaleX: scaleX, scaleY: scaleY}, nil
}

func (f *face) Activate(s rasterengine.Size) error {
	sz, ok := s.(*size)
	if !ok || sz.face != f {
		return core.Error(core.EINVALID, "size does not belong to face")
	}
	f.active = sz
	return nil
}

// LoadGlyph loads the outline of a glyph. sfnt loads at a single em size,
// so non-square scales are loaded at the vertical scale and stretched
// horizontally.
func (f *face) LoadGlyph(gid uint16, flags rasterengine.LoadFlags) (*rasterengine.Glyph, error) {
	x := sfnt.GlyphIndex(gid)
	if flags&rasterengine.LoadNoScale != 0 {
		ppem := fixed.Int26_6(f.upem)
		segs, err := f.font.LoadGlyph(&f.buf, x, ppem, nil)
		if err != nil {
			return nil, err
		}
		g := &rasterengine.Glyph{Format: rasterengine.OutlineGlyph}
		g.Outline = outlineFromSegments(segs, nil)
		adv, err := f.font.GlyphAdvance(&f.buf, x, ppem, font.HintingNone)
		if err != nil {
			return nil, err
		}
		g.Advance.X = adv
		g.LinearHoriAdvance = fixedpt.F16Dot16(adv)
		return g, nil
	}
	if f.active == nil {
		return nil, core.Error(core.EINVALID, "no active size")
	}
	sx, sy := f.active.scaleX, f.active.scaleY
	ppem := fixed.Int26_6(sy.To26Dot6())
	var stretch func(fixed.Int26_6) fixed.Int26_6
	if sx != sy {
		stretch = func(v fixed.Int26_6) fixed.Int26_6 {
			return fixed.Int26_6(fixedpt.MulDiv(int32(v), int32(sx), int32(sy)))
		}
	}
	segs, err := f.font.LoadGlyph(&f.buf, x, ppem, nil)
	if err != nil {
		return nil, err
	}
	g := &rasterengine.Glyph{Format: rasterengine.OutlineGlyph}
	g.Outline = outlineFromSegments(segs, stretch)
	hinting := font.HintingNone
	if flags.Hinted() {
		hinting = font.HintingFull
	}
	adv, err := f.font.GlyphAdvance(&f.buf, x, ppem, hinting)
	if err != nil {
		return nil, err
	}
	if stretch != nil {
		adv = stretch(adv)
		if hinting == font.HintingFull {
			adv = (adv + 32) &^ 63
		}
	}
	g.Advance.X = adv
	units, err := f.UnscaledAdvance(gid)
	if err != nil {
		return nil, err
	}
	g.LinearHoriAdvance = fixedpt.F16Dot16(fixedpt.MulDiv(int32(units), int32(sx), int32(f.upem)))
	tracer().Debugf("sfnt: loaded glyph %d, %d segments", gid, len(segs))
	return g, nil
}

// outlineFromSegments converts sfnt segments, y pointing down, to an outline
// with y pointing up. A closing point equal to the start of its contour is
// dropped.
func outlineFromSegments(segs sfnt.Segments, stretch func(fixed.Int26_6) fixed.Int26_6) *fem.GlyphOutline {
	o := &fem.GlyphOutline{}
	first := 0
	add := func(p fixed.Point26_6, tag uint8) {
		if stretch != nil {
			p.X = stretch(p.X)
		}
		p.Y = -p.Y
		o.Points = append(o.Points, p)
		o.Tags = append(o.Tags, tag)
	}
	closeContour := func() {
		last := len(o.Points) - 1
		if last < first {
			return
		}
		if last > first && o.Tags[last] == fem.TagOnCurve && o.Points[last] == o.Points[first] {
			o.Points = o.Points[:last]
			o.Tags = o.Tags[:last]
			last--
		}
		o.Contours = append(o.Contours, int16(last))
		first = last + 1
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			closeContour()
			add(seg.Args[0], fem.TagOnCurve)
		case sfnt.SegmentOpLineTo:
			add(seg.Args[0], fem.TagOnCurve)
		case sfnt.SegmentOpQuadTo:
			add(seg.Args[0], 0)
			add(seg.Args[1], fem.TagOnCurve)
		case sfnt.SegmentOpCubeTo:
			add(seg.Args[0], fem.TagCubic)
			add(seg.Args[1], fem.TagCubic)
			add(seg.Args[2], fem.TagOnCurve)
		}
	}
	closeContour()
	return o
}
