package dimen

import (
	"testing"

	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimen(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontengines.fonts")
	defer teardown()
	//
	for _, c := range []struct {
		in  string
		out Dimen
	}{
		{"12px", 12 * BP},
		{"12", 12 * BP},
		{"0", 0},
		{"10.5bp", 10*BP + BP/2},
		{"2PT", 2 * PT},
		{"1in", IN},
		{"3mm", 3 * MM},
		{"100sp", 100},
	} {
		d, err := ParseDimen(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.out, d, c.in)
	}
	for _, bad := range []string{"", "pt", "12xx", "20%", "1.pt"} {
		_, err := ParseDimen(bad)
		assert.Equal(t, core.EINVALID, core.Code(err), bad)
	}
}

func TestPixels(t *testing.T) {
	assert.Equal(t, fixedpt.Int16Dot16(12), (12 * BP).Pixels(DefaultDPI))
	assert.Equal(t, fixedpt.Int16Dot16(24), (12 * BP).Pixels(144))
	assert.Equal(t, fixedpt.Int16Dot16(96), IN.Pixels(96))
	assert.Equal(t, "1.50bp", (BP + BP/2).String())
}
