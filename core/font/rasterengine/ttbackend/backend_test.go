package ttbackend

import (
	"testing"

	"github.com/golang/freetype/truetype"
	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font"
	"github.com/npillmayer/fontengines/core/font/fem"
	"github.com/npillmayer/fontengines/core/font/rasterengine"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// --- Test Suite Preparation ------------------------------------------------

type TTTestEnviron struct {
	suite.Suite
	engine *rasterengine.Engine
}

// listen for 'go test' command --> run test methods
func TestFreetypeBackend(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	suite.Run(t, new(TTTestEnviron))
}

// run before each test method
func (env *TTTestEnviron) SetupTest() {
	env.engine = NewEngine(testconfig.Conf{})
}

func (env *TTTestEnviron) scaler(ttf []byte, size int, setup func(*fem.ScalerRequest)) fem.Scaler {
	req := fem.NewRequest(font.FromBuffer(ttf), fixedpt.Int16Dot16(size))
	if setup != nil {
		setup(req)
	}
	s := env.engine.CreateScaler(req)
	env.Require().NotNil(s, "expected scaler for %s", req)
	return s
}

// --- Tests -----------------------------------------------------------------

func (env *TTTestEnviron) TestDiscovery() {
	env.Contains(fem.Discovered(), Name)
	env.Equal(Name, env.engine.Name())
	env.Equal(fem.CanRenderGray, env.engine.Capabilities(nil), "no LCD rendering")
}

func (env *TTTestEnviron) TestHintedMetrics() {
	s := env.scaler(goregular.TTF, 16, nil)
	defer s.Close()
	gid := s.CharToGlyphID('H')
	env.Equal(uint16(43), gid)
	gm := s.GlyphMetrics(gid, 0, 0)
	env.Greater(gm.Width, uint16(5))
	env.Greater(gm.Height, uint16(8))
	env.Less(gm.Top, int16(-8))
	env.Equal(0, int(gm.AdvanceX)&0xffff, "hinted advances are whole pixels")
	adv := s.GlyphAdvance(gid, 0, 0)
	env.Equal(gm.AdvanceX, adv.AdvanceX)
}

func (env *TTTestEnviron) TestUnhintedAdvance() {
	s := env.scaler(goregular.TTF, 2048, func(req *fem.ScalerRequest) { req.SetHinting(fem.HintingNone) })
	defer s.Close()
	adv, ecode := env.engine.GlyphAdvances(font.FromBuffer(goregular.TTF), 36, 1)
	env.Require().Equal(fem.ErrOK, ecode)
	env.Equal(fixedpt.Int16Dot16(int(adv[0])), s.GlyphAdvance(36, 0, 0).AdvanceX)
}

func (env *TTTestEnviron) TestGrayImage() {
	s := env.scaler(goregular.TTF, 48, func(req *fem.ScalerRequest) { req.SetHinting(fem.HintingNone) })
	defer s.Close()
	gid := s.CharToGlyphID('H')
	gm := s.GlyphMetrics(gid, 0, 0)
	img := fem.NewGlyphImage(gm, fem.AliasGray)
	s.GlyphImage(gid, 0, 0, img)
	row := img.Height / 4 * img.RowBytes
	env.NotZero(img.Pixels[row], "left stem")
	env.NotZero(img.Pixels[row+img.Width-1], "right stem")
	env.Zero(img.Pixels[row+img.Width/2], "counter above crossbar")
}

func (env *TTTestEnviron) TestMonoImage() {
	s := env.scaler(goregular.TTF, 32, func(req *fem.ScalerRequest) { req.MaskFormat = fem.AliasMono })
	defer s.Close()
	gid := s.CharToGlyphID('I')
	gm := s.GlyphMetrics(gid, 0, 0)
	img := fem.NewGlyphImage(gm, fem.AliasMono)
	s.GlyphImage(gid, 0, 0, img)
	ones := 0
	for _, b := range img.Pixels {
		for ; b != 0; b &= b - 1 {
			ones++
		}
	}
	env.Greater(ones, 20)
}

func (env *TTTestEnviron) TestBoldIsWider() {
	r := env.scaler(goregular.TTF, 48, nil)
	defer r.Close()
	b := env.scaler(gobold.TTF, 48, nil)
	defer b.Close()
	wr := r.GlyphMetrics(r.CharToGlyphID('l'), 0, 0).Width
	wb := b.GlyphMetrics(b.CharToGlyphID('l'), 0, 0).Width
	env.Greater(wb, wr)
}

func (env *TTTestEnviron) TestOutline() {
	s := env.scaler(goregular.TTF, 12, nil)
	defer s.Close()
	o := s.GlyphOutline(s.CharToGlyphID('O'), 0, 0)
	env.Require().NotNil(o)
	env.Equal(2, o.ContourCount())
}

func (env *TTTestEnviron) TestGlyphNames() {
	names, ecode := env.engine.GlyphNames(font.FromBuffer(goregular.TTF), 36, 2)
	env.Equal(fem.ErrOK, ecode)
	env.Equal([]string{"A", "B"}, names)
}

func (env *TTTestEnviron) TestCFFRejected() {
	env.False(env.engine.SupportsFormat(font.FromBuffer([]byte("OTTO and then some")), true))
	env.True(env.engine.SupportsFormat(font.FromBuffer(goregular.TTF), true))
}

// --- Plain tests -----------------------------------------------------------

func TestOpenFaceErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	b := New()
	_, err := b.OpenFace([]byte("OTTO0000000000000000"))
	require.Error(t, err)
	assert.Equal(t, core.EUNSUPPORTED, core.Code(err))
	_, err = b.OpenFace([]byte("junk"))
	require.Error(t, err)
	assert.Equal(t, core.EINVALID, core.Code(err))
	f, err := b.OpenFace(goregular.TTF)
	require.NoError(t, err)
	assert.Equal(t, 2048, f.UnitsPerEm())
	assert.Equal(t, "TrueType", f.Format())
	_, err = f.UnscaledAdvance(uint16(f.NumGlyphs()))
	assert.Error(t, err)
	_, err = f.LoadGlyph(36, 0)
	assert.Error(t, err, "no active size")
}

func TestOutlineFromPoints(t *testing.T) {
	pts := []truetype.Point{
		{X: 0, Y: 0, Flags: 1}, {X: 64, Y: 0, Flags: 1}, {X: 64, Y: 64, Flags: 0},
		{X: 10, Y: 10, Flags: 1}, {X: 20, Y: 10, Flags: 1}, {X: 20, Y: 20, Flags: 1 | 0x02},
	}
	o := outlineFromPoints(pts, []int{3, 6}, nil)
	assert.Equal(t, []int16{2, 5}, o.Contours)
	assert.Equal(t, []uint8{fem.TagOnCurve, fem.TagOnCurve, 0, fem.TagOnCurve, fem.TagOnCurve, fem.TagOnCurve}, o.Tags)
	assert.Equal(t, fixed.Point26_6{X: 64, Y: 64}, o.Points[2], "y points up")
	o = outlineFromPoints(pts, []int{3, 6}, func(v fixed.Int26_6) fixed.Int26_6 { return v * 2 })
	assert.Equal(t, fixed.Int26_6(128), o.Points[1].X)
}

func TestSideBearingDeltas(t *testing.T) {
	hinted := []truetype.Point{{X: 64}, {X: 640}}
	unhinted := []truetype.Point{{X: 70}, {X: 630}}
	lsb, rsb := sideBearingDeltas(hinted, unhinted, 704, 700)
	assert.Equal(t, -6, lsb)
	assert.Equal(t, -6, rsb)
}

func TestBackendLifecycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	b := New()
	require.NoError(t, b.Init())
	assert.Panics(t, func() { b.Init() }, "double initialization")
	b.Done()
	assert.Panics(t, b.Done, "shutdown without initialization")
	//
	b = New()
	e := rasterengine.New(b, testconfig.Conf{})
	for i := 0; i < 2; i++ {
		s := e.CreateScaler(fem.NewRequest(font.FromBuffer(goregular.TTF), fixedpt.Int16Dot16(12)))
		require.NotNil(t, s)
		assert.True(t, b.live)
		require.NoError(t, s.Close())
		assert.False(t, b.live, "last font released shuts the backend down")
	}
}
