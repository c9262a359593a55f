package fixedpt

import "github.com/npillmayer/fontengines/core"

// RGB565 bit layout.
const (
	R16Bits = 5
	G16Bits = 6
	B16Bits = 5

	R16Mask = (1 << R16Bits) - 1
	G16Mask = (1 << G16Bits) - 1
	B16Mask = (1 << B16Bits) - 1

	R16Shift = B16Bits + G16Bits
	G16Shift = B16Bits
	B16Shift = 0
)

// DefaultLCDLerp is the default blend strength for LCD colour reduction.
// 0 keeps the colour fringes as rendered, 256 collapses to gray.
const DefaultLCDLerp = 96

// PackRGB16 packs 5/6/5 bit channel values into a 16 bit pixel.
func PackRGB16(r, g, b uint32) uint16 {
	core.Assert(r <= R16Mask && g <= G16Mask && b <= B16Mask,
		"PackRGB16: channel out of range (%d,%d,%d)", r, g, b)
	return uint16(r<<R16Shift | g<<G16Shift | b<<B16Shift)
}

// UnpackRGB16 splits a 16 bit pixel into its 5/6/5 bit channels.
func UnpackRGB16(c uint16) (r, g, b uint32) {
	r = uint32(c>>R16Shift) & R16Mask
	g = uint32(c>>G16Shift) & G16Mask
	b = uint32(c>>B16Shift) & B16Mask
	return
}

// Lerp interpolates between start and end, with strength in 0…256.
func Lerp(start, end, strength int) int {
	core.Assert(uint(strength) <= 256, "Lerp: strength must be in 0…256, is %d", strength)
	return start + ((end - start) * strength >> 8)
}

// BlendTriple moves each of the 8 bit channels r, g and b towards their
// average by a factor of strength/256.
func BlendTriple(r, g, b uint8, strength int) (uint8, uint8, uint8) {
	if strength == 0 {
		return r, g, b
	}
	// want (r+g+b)/3, but approximate it without a divide
	ave := (5*(int(r)+int(g)+int(b)) + int(b)) >> 4
	return uint8(Lerp(int(r), ave, strength)),
		uint8(Lerp(int(g), ave, strength)),
		uint8(Lerp(int(b), ave, strength))
}

// PackTriple blends a subpixel triple and packs it to RGB565.
func PackTriple(r, g, b uint8, strength int) uint16 {
	r, g, b = BlendTriple(r, g, b, strength)
	return PackRGB16(uint32(r)>>3, uint32(g)>>2, uint32(b)>>3)
}

// --- LCD filtering ---------------------------------------------------------

// DefaultLCDFilter holds the weights of FreeType's default 5-tap FIR filter.
// The weights sum up to 0x100.
var DefaultLCDFilter = [5]int{0x08, 0x4D, 0x56, 0x4D, 0x08}

// FilterLCD applies a 5-tap FIR filter to a line of subpixel coverage values,
// in place. Values outside of line are treated as 0.
func FilterLCD(line []uint8, weights [5]int) {
	if len(line) == 0 {
		return
	}
	src := make([]uint8, len(line))
	copy(src, line)
	for i := range line {
		sum := 0
		for k := -2; k <= 2; k++ {
			if j := i + k; j >= 0 && j < len(src) {
				sum += int(src[j]) * weights[k+2]
			}
		}
		sum >>= 8
		if sum > 255 {
			sum = 255
		}
		line[i] = uint8(sum)
	}
}
