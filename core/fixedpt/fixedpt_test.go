package fixedpt

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type FixedTestEnviron struct {
	suite.Suite
}

func TestFixedPoint(t *testing.T) {
	suite.Run(t, new(FixedTestEnviron))
}

// reference computes sign(n/d) * min(floor(|n|·2^shift / |d|), MaxS32).
func reference(n, d int32, shift int) int32 {
	num := new(big.Int).Abs(big.NewInt(int64(n)))
	num.Lsh(num, uint(shift))
	den := new(big.Int).Abs(big.NewInt(int64(d)))
	q := new(big.Int).Quo(num, den)
	if q.Cmp(big.NewInt(int64(MaxS32))) > 0 {
		q = big.NewInt(int64(MaxS32))
	}
	r := int32(q.Int64())
	if (n < 0) != (d < 0) {
		r = -r
	}
	return r
}

func (env *FixedTestEnviron) TestDivBitsZeroNumerator() {
	for _, d := range []int32{1, -1, 3, 65536, math.MaxInt32, math.MinInt32} {
		for _, s := range []int{0, 1, 16, 31} {
			env.Equal(int32(0), DivBits(0, d, s))
		}
	}
}

func (env *FixedTestEnviron) TestDivBitsAgainstReference() {
	values := []int32{1, 2, 3, 7, 10, 100, 255, 1000, 65535, 65536, 65537,
		0x12345, 0x7FFF, 0x10000000, 0x3FFFFFFF, math.MaxInt32,
		-1, -3, -65536, -99999, math.MinInt32 + 1, math.MinInt32}
	for _, n := range values {
		for _, d := range values {
			for _, s := range []int{0, 6, 10, 16, 24, 30} {
				env.Equalf(reference(n, d, s), DivBits(n, d, s),
					"DivBits(%d, %d, %d)", n, d, s)
			}
		}
	}
}

func (env *FixedTestEnviron) TestDivBitsTruncates() {
	env.Equal(int32(43690), DivBits(2, 3, 16)) // 43690.67
	env.Equal(int32(-43690), DivBits(-2, 3, 16))
	env.Equal(int32(21845), DivBits(1, 3, 16))
}

func (env *FixedTestEnviron) TestDivBitsSaturates() {
	env.Equal(MaxS32, DivBits(math.MaxInt32, 1, 16))
	env.Equal(-MaxS32, DivBits(math.MaxInt32, -1, 16))
	env.Equal(int32(0), DivBits(1, math.MaxInt32, 0))
}

func (env *FixedTestEnviron) TestDivBitsZeroDenominatorPanics() {
	env.Panics(func() { DivBits(1, 0, 16) })
}

func (env *FixedTestEnviron) TestInvert() {
	env.Equal(One, Invert(One))
	env.Equal(One/2, Invert(2*One))
	env.Equal(-One, Invert(-One))
	env.Equal(F16Dot16(0x8000), Invert(0x20000))
}

func (env *FixedTestEnviron) TestSignHelpers() {
	env.Equal(int32(5), Abs(-5))
	env.Equal(int32(5), Abs(5))
	env.Equal(int32(-1), ExtractSign(-7))
	env.Equal(int32(0), ExtractSign(7))
	env.Equal(int32(-9), ApplySign(9, -1))
	env.Equal(int32(9), ApplySign(9, 0))
	env.Panics(func() { ApplySign(9, 1) })
	env.Equal(F16Dot16(3), Avg(2, 4))
	env.Equal(F16Dot16(-2), Avg(-1, -2))
}

func (env *FixedTestEnviron) TestMulFixAndMulDiv() {
	env.Equal(int32(3*65536), MulFix(3*65536, 65536))
	env.Equal(int32(32768), MulFix(65536, 32768))
	env.Equal(int32(-32768), MulFix(-65536, 32768))
	env.Equal(int32(1), MulFix(1, 32768), "0.5 rounds up")
	env.Equal(int32(50), MulDiv(100, 1, 2))
	env.Equal(int32(-50), MulDiv(100, -1, 2))
	env.Equal(int32(1229), MulDiv(1024*65536/1000, 1200, 65536))
	env.Equal(MaxS32, MulDiv(1, 1, 0))
}

func (env *FixedTestEnviron) Test26Dot6() {
	env.Equal(F26Dot6(64), F26Dot6(1).Ceil())
	env.Equal(F26Dot6(0), F26Dot6(63).Floor())
	env.Equal(F26Dot6(-64), F26Dot6(-1).Floor())
	env.Equal(F26Dot6(0), F26Dot6(-1).Ceil())
	env.Equal(F26Dot6(64), One.To26Dot6())
	env.Equal(One, F26Dot6(64).To16Dot16())
	env.Equal(-1, F26Dot6(-1).Pixels())
}

// --- LCD -------------------------------------------------------------------

func (env *FixedTestEnviron) TestBlendStrengthZeroIsNoOp() {
	for _, c := range [][3]uint8{{0, 0, 0}, {255, 0, 0}, {10, 200, 30}, {255, 255, 255}} {
		r, g, b := BlendTriple(c[0], c[1], c[2], 0)
		env.Equal(c, [3]uint8{r, g, b})
	}
}

func (env *FixedTestEnviron) TestBlendFullStrengthIsGray() {
	for _, c := range [][3]uint8{{255, 0, 0}, {10, 200, 30}, {0, 0, 255}, {77, 77, 78}} {
		r, g, b := BlendTriple(c[0], c[1], c[2], 256)
		env.Equal(r, g)
		env.Equal(g, b)
	}
}

func (env *FixedTestEnviron) TestPackTriple() {
	env.Equal(uint16(0xFFFF), PackTriple(255, 255, 255, DefaultLCDLerp))
	env.Equal(uint16(0), PackTriple(0, 0, 0, DefaultLCDLerp))
	p := PackTriple(255, 0, 0, 0)
	r, g, b := UnpackRGB16(p)
	env.Equal([3]uint32{31, 0, 0}, [3]uint32{r, g, b})
	env.Panics(func() { PackRGB16(32, 0, 0) })
}

func (env *FixedTestEnviron) TestFilterLCD() {
	line := []uint8{0, 0, 255, 0, 0}
	FilterLCD(line, DefaultLCDFilter)
	env.Equal([]uint8{7, 76, 85, 76, 7}, line)
	flat := []uint8{200, 200, 200, 200, 200, 200}
	FilterLCD(flat, DefaultLCDFilter)
	env.Equal(uint8(200), flat[2], "filter must preserve flat coverage")
}

func TestLerp(t *testing.T) {
	assert.Equal(t, 10, Lerp(10, 20, 0))
	assert.Equal(t, 20, Lerp(10, 20, 256))
	assert.Equal(t, 128, Lerp(0, 256, 128))
	assert.Equal(t, 15, Lerp(20, 10, 128), "interpolation works downwards")
	assert.Panics(t, func() { Lerp(0, 100, 257) })
	assert.Panics(t, func() { Lerp(0, 100, -1) })
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 3, (Int16Dot16(2) + Half).Round(), "halves round up")
	assert.Equal(t, 2, FromFloat(2.25).Round())
	assert.Equal(t, -1, FromFloat(-1.5).Round())
	assert.Equal(t, "1.5000", FromFloat(1.5).String())
}
