package sfntbackend

import (
	"testing"

	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font"
	"github.com/npillmayer/fontengines/core/font/fem"
	"github.com/npillmayer/fontengines/core/font/rasterengine"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// --- Test Suite Preparation ------------------------------------------------

type SfntTestEnviron struct {
	suite.Suite
	engine *rasterengine.Engine
}

// listen for 'go test' command --> run test methods
func TestSfntBackend(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	suite.Run(t, new(SfntTestEnviron))
}

// run before each test method
func (env *SfntTestEnviron) SetupTest() {
	env.engine = NewEngine(testconfig.Conf{})
}

func (env *SfntTestEnviron) scaler(size int, setup func(*fem.ScalerRequest)) fem.Scaler {
	req := fem.NewRequest(font.FromBuffer(goregular.TTF), fixedpt.Int16Dot16(size))
	if setup != nil {
		setup(req)
	}
	s := env.engine.CreateScaler(req)
	env.Require().NotNil(s, "expected scaler for %s", req)
	return s
}

// --- Tests -----------------------------------------------------------------

func (env *SfntTestEnviron) TestDiscovery() {
	env.Contains(fem.Discovered(), Name)
	env.Equal(Name, env.engine.Name())
	env.Equal(fem.CanRenderGray|fem.CanRenderLCD, env.engine.Capabilities(nil))
}

func (env *SfntTestEnviron) TestGlyphMetrics() {
	s := env.scaler(48, nil)
	defer s.Close()
	gid := s.CharToGlyphID('H')
	env.NotZero(gid)
	gm := s.GlyphMetrics(gid, 0, 0)
	env.Greater(gm.Width, uint16(20))
	env.Greater(gm.Height, uint16(30))
	env.Less(gm.Top, int16(-30), "capital letter extends above the baseline")
	env.Equal(0, int(gm.AdvanceX)&0xffff, "hinted advances are whole pixels")
	env.Greater(gm.AdvanceX, fixedpt.Int16Dot16(20))
	space := s.GlyphMetrics(s.CharToGlyphID(' '), 0, 0)
	env.Zero(space.Width, "space has no ink")
	env.Greater(space.AdvanceX, fixedpt.F16Dot16(0))
}

func (env *SfntTestEnviron) TestGrayImage() {
	s := env.scaler(48, nil)
	defer s.Close()
	gid := s.CharToGlyphID('H')
	gm := s.GlyphMetrics(gid, 0, 0)
	img := fem.NewGlyphImage(gm, fem.AliasGray)
	s.GlyphImage(gid, 0, 0, img)
	full, empty := 0, 0
	for _, p := range img.Pixels {
		switch p {
		case 0xff:
			full++
		case 0:
			empty++
		}
	}
	env.Greater(full, 0, "stems must have full coverage")
	env.Greater(empty, 0, "counters must be empty")
	// the stems of 'H' touch the left and right columns of the image
	env.NotZero(img.Pixels[img.Height/4*img.RowBytes], "left stem")
	env.NotZero(img.Pixels[img.Height/4*img.RowBytes+img.Width-1], "right stem")
	env.Zero(img.Pixels[img.Height/4*img.RowBytes+img.Width/2], "counter above crossbar")
}

func (env *SfntTestEnviron) TestMonoImage() {
	s := env.scaler(48, func(req *fem.ScalerRequest) { req.MaskFormat = fem.AliasMono })
	defer s.Close()
	gid := s.CharToGlyphID('H')
	gm := s.GlyphMetrics(gid, 0, 0)
	img := fem.NewGlyphImage(gm, fem.AliasMono)
	s.GlyphImage(gid, 0, 0, img)
	ones := 0
	for _, b := range img.Pixels {
		for ; b != 0; b &= b - 1 {
			ones++
		}
	}
	env.Greater(ones, 100)
}

func (env *SfntTestEnviron) TestLCD16Image() {
	s := env.scaler(24, func(req *fem.ScalerRequest) { req.MaskFormat = fem.AliasLCD16 })
	defer s.Close()
	gid := s.CharToGlyphID('o')
	gm := s.GlyphMetrics(gid, 0, 0)
	img := fem.NewGlyphImage(gm, fem.AliasLCD16)
	s.GlyphImage(gid, 0, 0, img)
	env.Equal(int(gm.Width)*2, img.RowBytes)
	lit := 0
	for i := 0; i < len(img.Pixels); i += 2 {
		if img.Pixels[i] != 0 || img.Pixels[i+1] != 0 {
			lit++
		}
	}
	env.Greater(lit, 0)
}

func (env *SfntTestEnviron) TestEmbolden() {
	coverage := func(bold bool) (int, uint16) {
		s := env.scaler(32, func(req *fem.ScalerRequest) {
			if bold {
				req.Flags |= fem.FlagEmbolden
			}
		})
		defer s.Close()
		gid := s.CharToGlyphID('l')
		gm := s.GlyphMetrics(gid, 0, 0)
		img := fem.NewGlyphImage(gm, fem.AliasGray)
		s.GlyphImage(gid, 0, 0, img)
		sum := 0
		for _, p := range img.Pixels {
			sum += int(p)
		}
		return sum, gm.Width
	}
	regular, w := coverage(false)
	bold, wb := coverage(true)
	env.Greater(bold, regular)
	env.GreaterOrEqual(wb, w)
}

func (env *SfntTestEnviron) TestOutline() {
	s := env.scaler(16, nil)
	defer s.Close()
	o := s.GlyphOutline(s.CharToGlyphID('O'), 0, 0)
	env.Require().NotNil(o)
	env.Equal(2, o.ContourCount(), "'O' has an outer and an inner contour")
	o = s.GlyphOutline(s.CharToGlyphID('H'), 0, 0)
	env.Require().NotNil(o)
	env.Equal(1, o.ContourCount())
	env.NotEqual(o.Points[0], o.Points[o.PointCount()-1], "closing point must not repeat the start point")
}

func (env *SfntTestEnviron) TestStretchedScale() {
	s := env.scaler(20, func(req *fem.ScalerRequest) {
		req.ScaleX = fixedpt.Int16Dot16(40)
		req.SetHinting(fem.HintingNone)
	})
	defer s.Close()
	wide := s.GlyphMetrics(s.CharToGlyphID('H'), 0, 0)
	n := env.scaler(20, func(req *fem.ScalerRequest) { req.SetHinting(fem.HintingNone) })
	defer n.Close()
	normal := n.GlyphMetrics(n.CharToGlyphID('H'), 0, 0)
	env.Equal(normal.Height, wide.Height)
	env.InDelta(2*int(normal.Width), int(wide.Width), 2)
	env.InDelta(2*int(normal.AdvanceX), int(wide.AdvanceX), 2)
}

func (env *SfntTestEnviron) TestFontMetrics() {
	s := env.scaler(2048, nil) // 1 font unit = 1 pixel
	defer s.Close()
	_, my := s.FontMetrics()
	env.Equal(-fixedpt.Int16Dot16(1935), my.Ascent)
	env.Equal(fixedpt.Int16Dot16(432), my.Descent)
	env.Equal(fixedpt.Int16Dot16(1086), my.XHeight)
}

func (env *SfntTestEnviron) TestProbes() {
	src := font.FromBuffer(goregular.TTF)
	names, ecode := env.engine.GlyphNames(src, 36, 2)
	env.Equal(fem.ErrOK, ecode)
	env.Equal([]string{"A", "B"}, names)
	adv, ecode := env.engine.GlyphAdvances(src, 36, 1)
	env.Equal(fem.ErrOK, ecode)
	s := env.scaler(2048, func(req *fem.ScalerRequest) { req.SetHinting(fem.HintingNone) })
	defer s.Close()
	env.Equal(fixedpt.Int16Dot16(int(adv[0])), s.GlyphAdvance(36, 0, 0).AdvanceX,
		"advance at 1 pixel per unit equals the advance in font units")
	name, _, monospace := env.engine.NameAndStyle(font.FromBuffer(gomono.TTF), 0)
	env.Equal("Go Mono", name)
	env.True(monospace)
	env.Equal(uint32(2048), env.engine.UnitsPerEm(src))
}

func (env *SfntTestEnviron) TestAdvancedMetrics() {
	atm := env.engine.AdvancedMetrics(font.FromBuffer(goregular.TTF))
	env.Require().NotNil(atm)
	env.Equal(fem.TrueTypeFont, atm.Type)
	env.Equal("GoRegular", atm.FontName)
	env.Equal(int16(1480), atm.CapHeight)
	env.Greater(atm.StemV, int16(100))
	env.Less(atm.StemV, int16(300))
}

func (env *SfntTestEnviron) TestUnknownFormat() {
	env.False(env.engine.SupportsFormat(font.FromBuffer([]byte("OTTO but not really")), true))
}

// --- Outline conversion ----------------------------------------------------

func TestOutlineFromSegments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	pt := func(x, y fixed.Int26_6) fixed.Point26_6 { return fixed.Point26_6{X: x, Y: y} }
	segs := sfnt.Segments{
		{Op: sfnt.SegmentOpMoveTo, Args: [3]fixed.Point26_6{pt(0, 0)}},
		{Op: sfnt.SegmentOpLineTo, Args: [3]fixed.Point26_6{pt(64, 0)}},
		{Op: sfnt.SegmentOpQuadTo, Args: [3]fixed.Point26_6{pt(64, -64), pt(0, -64)}},
		{Op: sfnt.SegmentOpLineTo, Args: [3]fixed.Point26_6{pt(0, 0)}},
	}
	o := outlineFromSegments(segs, nil)
	require.Equal(t, 1, o.ContourCount())
	require.Equal(t, 4, o.PointCount(), "closing point must be dropped")
	assert.Equal(t, []int16{3}, o.Contours)
	assert.Equal(t, pt(64, 64), o.Points[2], "y must point up")
	assert.Equal(t, []uint8{fem.TagOnCurve, fem.TagOnCurve, 0, fem.TagOnCurve}, o.Tags)
	//
	double := func(v fixed.Int26_6) fixed.Int26_6 { return 2 * v }
	o = outlineFromSegments(segs, double)
	assert.Equal(t, pt(128, 0), o.Points[1])
	assert.Equal(t, 0, outlineFromSegments(nil, nil).ContourCount())
}
