package fem

import (
	"testing"

	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font"
	"github.com/stretchr/testify/assert"
)

func TestGlyphMetricsClear(t *testing.T) {
	gm := GlyphMetrics{LsbDelta: -3, RsbDelta: 2, Width: 7, Height: 9,
		AdvanceX: fixedpt.One, AdvanceY: -fixedpt.One, Left: -1, Top: -8}
	assert.False(t, gm.IsEmpty())
	gm.Clear()
	assert.True(t, gm.IsEmpty())
	assert.Equal(t, GlyphMetrics{}, gm)
}

func TestFlagsHinting(t *testing.T) {
	f := FlagDevKern | FlagEmbolden
	for h := HintingNone; h <= HintingFull; h++ {
		g := f.WithHinting(h)
		assert.Equal(t, h, g.Hinting())
		assert.Equal(t, f, g&^FlagHintingMask, "other flags untouched")
	}
	assert.Equal(t, Flags(0x06), Flags(0).WithHinting(HintingFull))
	assert.Equal(t, "full", HintingFull.String())
}

func TestRequest(t *testing.T) {
	req := NewRequest(font.FromPath("/x.ttf"), fixedpt.Int16Dot16(16))
	assert.NoError(t, req.Validate())
	assert.Equal(t, HintingNormal, req.Hinting())
	assert.True(t, req.IsAxisAligned())
	req.ScaleX = -req.ScaleX
	assert.False(t, req.IsAxisAligned())
	req.SetHinting(HintingLight)
	assert.Equal(t, HintingLight, req.Hinting())
	req.MaskFormat = 9
	assert.Equal(t, core.EINVALID, core.Code(req.Validate()))
	assert.Equal(t, core.EINVALID, core.Code((&ScalerRequest{}).Validate()))
	var nilreq *ScalerRequest
	assert.Error(t, nilreq.Validate())
}

func TestGlyphImageBuffer(t *testing.T) {
	gm := GlyphMetrics{Width: 10, Height: 3}
	img := NewGlyphImage(gm, AliasMono)
	assert.Equal(t, 2, img.RowBytes)
	assert.Len(t, img.Pixels, 6)
	assert.True(t, img.Valid())
	assert.Equal(t, 20, NewGlyphImage(gm, AliasLCD16).RowBytes)
	assert.Equal(t, 10, NewGlyphImage(gm, AliasGray).RowBytes)
	img.Pixels = img.Pixels[:5]
	assert.False(t, img.Valid())
	assert.True(t, AliasLCD16.IsLCD())
	assert.False(t, AliasGray.IsLCD())
	o := NewGlyphOutline(4, 1)
	assert.Equal(t, 4, o.PointCount())
	assert.Equal(t, 1, o.ContourCount())
	var none *GlyphOutline
	assert.Equal(t, 0, none.PointCount())
}
