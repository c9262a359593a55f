package ttbackend

import (
	"bytes"
	"image"

	"github.com/golang/freetype/raster"
	"github.com/golang/freetype/truetype"
	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font/fem"
	"github.com/npillmayer/fontengines/core/font/rasterengine"
	"github.com/npillmayer/schuko"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Name is the name of the backend and of engines using it.
const Name = "freetype"

func init() {
	fem.RegisterDiscovery(Name, func() fem.FontEngine {
		return NewEngine(nil)
	})
}

// NewEngine creates a font engine on top of a freetype backend.
func NewEngine(conf schuko.Configuration) *rasterengine.Engine {
	return rasterengine.New(New(), conf)
}

// Backend implements rasterengine.Backend with packages truetype and raster.
// A backend serves a single engine, which brackets its use with Init and
// Done.
type Backend struct {
	live bool
}

var _ rasterengine.Backend = (*Backend)(nil)

// New creates a backend.
func New() *Backend {
	return &Backend{}
}

// Name returns "freetype".
func (b *Backend) Name() string { return Name }

// Init marks the backend as live; the library has no global state.
func (b *Backend) Init() error {
	core.Assert(!b.live, "freetype backend initialized twice")
	b.live = true
	tracer().Debugf("freetype backend up")
	return nil
}

// Done marks the backend as shut down.
func (b *Backend) Done() {
	core.Assert(b.live, "freetype backend shut down without being initialized")
	b.live = false
	tracer().Debugf("freetype backend down")
}

// SupportsLCD is false: hinting is done for square pixels only.
func (b *Backend) SupportsLCD() bool { return false }

// OpenFace parses a TrueType font. Glyph names and the number of glyphs are
// read with package sfnt, as truetype does not export them.
func (b *Backend) OpenFace(data []byte) (rasterengine.Face, error) {
	if bytes.HasPrefix(data, []byte("OTTO")) {
		return nil, core.Error(core.EUNSUPPORTED, "freetype backend cannot handle CFF outlines")
	}
	f, err := truetype.Parse(data)
	if err != nil {
		if _, ok := err.(truetype.UnsupportedError); ok {
			return nil, core.WrapError(err, core.EUNSUPPORTED, "freetype cannot handle font")
		}
		return nil, core.WrapError(err, core.EINVALID, "freetype cannot parse font")
	}
	names, err := sfnt.Parse(data)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read glyph names")
	}
	return &face{
		font:      f,
		names:     names,
		numGlyphs: names.NumGlyphs(),
		upem:      int(f.FUnitsPerEm()),
	}, nil
}

// Render scan converts an outline with the non-zero winding rule.
func (b *Backend) Render(o *fem.GlyphOutline, target *rasterengine.Bitmap) error {
	if target.Width <= 0 || target.Rows <= 0 {
		return nil
	}
	r := raster.NewRasterizer(target.Width, target.Rows)
	r.UseNonZeroWinding = true
	if err := rasterengine.Decompose(o, &pen{r: r, height: fixed.I(target.Rows)}); err != nil {
		return err
	}
	if target.Mode == rasterengine.PixelGray {
		r.Rasterize(raster.NewAlphaSrcPainter(target.Alpha()))
		return nil
	}
	cov := image.NewAlpha(image.Rect(0, 0, target.Width, target.Rows))
	r.Rasterize(raster.NewMonochromePainter(raster.NewAlphaSrcPainter(cov)))
	target.SetCoverage(cov)
	return nil
}

// pen feeds outline segments to a rasterizer, flipping the y-axis. The
// rasterizer does not close contours by itself.
type pen struct {
	r      *raster.Rasterizer
	height fixed.Int26_6
	start  fixed.Point26_6
	cur    fixed.Point26_6
}

func (p *pen) flip(q fixed.Point26_6) fixed.Point26_6 {
	return fixed.Point26_6{X: q.X, Y: p.height - q.Y}
}

func (p *pen) MoveTo(q fixed.Point26_6) {
	p.start, p.cur = p.flip(q), p.flip(q)
	p.r.Start(p.start)
}

func (p *pen) LineTo(q fixed.Point26_6) {
	p.cur = p.flip(q)
	p.r.Add1(p.cur)
}

func (p *pen) QuadTo(c, q fixed.Point26_6) {
	p.cur = p.flip(q)
	p.r.Add2(p.flip(c), p.cur)
}

func (p *pen) CubeTo(c1, c2, q fixed.Point26_6) {
	p.cur = p.flip(q)
	p.r.Add3(p.flip(c1), p.flip(c2), p.cur)
}

func (p *pen) Close() {
	if p.cur != p.start {
		p.r.Add1(p.start)
		p.cur = p.start
	}
}

// --- Faces -----------------------------------------------------------------

type face struct {
	font      *truetype.Font
	names     *sfnt.Font
	buf       sfnt.Buffer
	glyph     truetype.GlyphBuf
	numGlyphs int
	upem      int
	active    *size
}

type size struct {
	face           *face
	scaleX, scaleY fixedpt.F16Dot16
}

// Done has nothing to release.
func (s *size) Done() {}

func (f *face) Format() string  { return "TrueType" }
func (f *face) NumGlyphs() int  { return f.numGlyphs }
func (f *face) UnitsPerEm() int { return f.upem }
func (f *face) Close() error    { f.active = nil; return nil }

func (f *face) GlyphName(gid uint16) (string, error) {
	return f.names.GlyphName(&f.buf, sfnt.GlyphIndex(gid))
}

func (f *face) checkGlyph(gid uint16) error {
	if int(gid) >= f.numGlyphs {
		return core.Error(core.EINVALID, "glyph index %d out of range", gid)
	}
	return nil
}

// UnscaledAdvance reads the advance from table hmtx.
func (f *face) UnscaledAdvance(gid uint16) (int, error) {
	if err := f.checkGlyph(gid); err != nil {
		return 0, err
	}
	hm := f.font.HMetric(fixed.Int26_6(f.upem), truetype.Index(gid))
	return int(hm.AdvanceWidth), nil
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

// LoadGlyph loads and, for hinted targets, hints the outline of a glyph.
// Glyphs are hinted at the vertical scale; non-square scales are stretched
// horizontally afterwards.
func (f *face) LoadGlyph(gid uint16, flags rasterengine.LoadFlags) (*rasterengine.Glyph, error) {
	if err := f.checkGlyph(gid); err != nil {
		return nil, err
	}
	idx := truetype.Index(gid)
	if flags&rasterengine.LoadNoScale != 0 {
		if err := f.glyph.Load(f.font, fixed.Int26_6(f.upem), idx, font.HintingNone); err != nil {
			return nil, err
		}
		return &rasterengine.Glyph{
			Format:            rasterengine.OutlineGlyph,
			Outline:           outlineFromPoints(f.glyph.Points, f.glyph.Ends, nil),
			Advance:           fixed.Point26_6{X: f.glyph.AdvanceWidth},
			LinearHoriAdvance: fixedpt.F16Dot16(f.glyph.AdvanceWidth),
		}, nil
	}
	if f.active == nil {
		return nil, core.Error(core.EINVALID, "no active size")
	}
	sx, sy := f.active.scaleX, f.active.scaleY
	scale := fixed.Int26_6(sy.To26Dot6())
	hinting := font.HintingNone
	if flags.Hinted() {
		hinting = font.HintingFull
	}
	if err := f.glyph.Load(f.font, scale, idx, hinting); err != nil {
		return nil, err
	}
	var stretch func(fixed.Int26_6) fixed.Int26_6
	if sx != sy {
		stretch = func(v fixed.Int26_6) fixed.Int26_6 {
			return fixed.Int26_6(fixedpt.MulDiv(int32(v), int32(sx), int32(sy)))
		}
	}
	g := &rasterengine.Glyph{
		Format:  rasterengine.OutlineGlyph,
		Outline: outlineFromPoints(f.glyph.Points, f.glyph.Ends, stretch),
	}
	adv := f.glyph.AdvanceWidth
	if stretch != nil {
		adv = stretch(adv)
		if hinting == font.HintingFull {
			adv = (adv + 32) &^ 63
		}
	}
	g.Advance.X = adv
	units := f.font.HMetric(fixed.Int26_6(f.upem), idx).AdvanceWidth
	g.LinearHoriAdvance = fixedpt.F16Dot16(fixedpt.MulDiv(int32(units), int32(sx), int32(f.upem)))
	if hinting == font.HintingFull && stretch == nil && len(f.glyph.Unhinted) > 0 {
		unhintedAdv := f.font.HMetric(scale, idx).AdvanceWidth
		g.LsbDelta, g.RsbDelta = sideBearingDeltas(f.glyph.Points, f.glyph.Unhinted,
			f.glyph.AdvanceWidth, unhintedAdv)
	}
	return g, nil
}

// sideBearingDeltas computes the change of the side bearings due to hinting,
// in 26.6.
func sideBearingDeltas(hinted, unhinted []truetype.Point, adv, unhintedAdv fixed.Int26_6) (lsb, rsb int) {
	hmin, hmax := xRange(hinted)
	umin, umax := xRange(unhinted)
	lsb = int(hmin - umin)
	rsb = int((adv - hmax) - (unhintedAdv - umax))
	return
}

func xRange(pts []truetype.Point) (min, max fixed.Int26_6) {
	if len(pts) == 0 {
		return
	}
	min, max = pts[0].X, pts[0].X
	for _, p := range pts[1:] {
		if p.X < min {
			min = p.X
		} else if p.X > max {
			max = p.X
		}
	}
	return
}

// outlineFromPoints converts the contours of a glyph buffer, y pointing up,
// to an outline. ends holds exclusive end indices.
func outlineFromPoints(pts []truetype.Point, ends []int, stretch func(fixed.Int26_6) fixed.Int26_6) *fem.GlyphOutline {
	o := fem.NewGlyphOutline(len(pts), len(ends))
	for i, p := range pts {
		x := p.X
		if stretch != nil {
			x = stretch(x)
		}
		o.Points[i] = fixed.Point26_6{X: x, Y: p.Y}
		if p.Flags&0x01 != 0 {
			o.Tags[i] = fem.TagOnCurve
		}
	}
	for i, e := range ends {
		o.Contours[i] = int16(e - 1)
	}
	return o
}
