package rasterengine

import (
	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font/fem"
	"golang.org/x/image/math/fixed"
)

// lcdPadding is the number of subpixels rendered left and right of an LCD
// glyph, to give the LCD filter room to spread.
const lcdPadding = 3

// GlyphImage renders a glyph into a client buffer, which must have been
// allocated for the glyph's metrics in the scaler's mask format. On failure
// the buffer is cleared.
func (sc *scaler) GlyphImage(gid uint16, fracX, fracY fixedpt.F16Dot16, img *fem.GlyphImage) {
	if !img.Valid() {
		tracer().Errorf("glyph image: invalid image buffer for glyph %d", gid)
		return
	}
	if img.Format != sc.mask {
		tracer().Errorf("glyph image: %s buffer for glyph %d, scaler renders %s",
			img.Format, gid, sc.mask)
		img.Clear()
		return
	}
	sc.engine.Lock()
	defer sc.engine.Unlock()
	face, err := sc.prepare()
	if err != nil {
		tracer().Errorf("glyph image: %v", err)
		img.Clear()
		return
	}
	flags := sc.inst.key.loadFlags
	g, err := sc.loadGlyph(face, gid, flags)
	if err != nil {
		tracer().Errorf("cannot load glyph %d with %s into %dx%d image: %v",
			gid, flags, img.Width, img.Height, err)
		img.Clear()
		return
	}
	switch g.Format {
	case OutlineGlyph:
		o := g.Outline
		if sc.embolden() {
			sc.emboldenOutline(face, o)
		}
		var dx, dy fixedpt.F26Dot6
		if sc.subpixel {
			dx, dy = subpixelOffset(fracX, fracY)
		}
		box := controlBox(o)
		translateOutline(o, dx-(box.xMin+dx).Floor(), dy-(box.yMin+dy).Floor())
		err = sc.renderOutline(o, img)
	case BitmapGlyph:
		if sc.embolden() {
			emboldenBitmap(g.Bitmap)
		}
		if g.Bitmap.Width != img.Width || g.Bitmap.Rows != img.Height {
			tracer().Debugf("glyph %d: bitmap is %dx%d, image is %dx%d", gid,
				g.Bitmap.Width, g.Bitmap.Rows, img.Width, img.Height)
		}
		copyBitmap(g.Bitmap, img, sc.mask)
	default:
		core.Fatal("unknown glyph format %d", g.Format)
	}
	if err != nil {
		tracer().Errorf("cannot render glyph %d: %v", gid, err)
		img.Clear()
	}
}

// renderOutline scan converts an outline, positioned with the lower left
// corner of its box at the origin, into an image. LCD16 images are rendered
// with horizontal oversampling; for the other LCD formats gray coverage is
// rendered.
func (sc *scaler) renderOutline(o *fem.GlyphOutline, img *fem.GlyphImage) error {
	backend := sc.engine.backend
	if sc.mask == fem.AliasLCD16 {
		return renderLCD16(backend, o, img, sc.engine.lcdLerp)
	}
	mode := PixelGray
	if sc.mask == fem.AliasMono {
		mode = PixelMono
	}
	img.Clear()
	target := &Bitmap{
		Width:  img.Width,
		Rows:   img.Height,
		Pitch:  img.RowBytes,
		Mode:   mode,
		Buffer: img.Pixels,
	}
	return backend.Render(o, target)
}

// renderLCD16 renders an outline at three times the horizontal resolution,
// filters the subpixels and packs each triple into a 16 bit pixel.
func renderLCD16(backend Backend, o *fem.GlyphOutline, img *fem.GlyphImage, lerp int) error {
	for i, p := range o.Points {
		o.Points[i].X = p.X*3 + fixed.Int26_6(lcdPadding<<6)
	}
	bm := NewBitmap(img.Width*3+2*lcdPadding, img.Height, PixelGray)
	if err := backend.Render(o, bm); err != nil {
		return err
	}
	copyLCD16(bm, img, lerp)
	return nil
}

// copyLCD16 filters the rows of a subpixel bitmap and packs them into an
// LCD16 image. The bitmap has lcdPadding subpixels left and right of the
// glyph.
func copyLCD16(bm *Bitmap, img *fem.GlyphImage, lerp int) {
	core.Assert(bm.Width == img.Width*3+2*lcdPadding, "LCD bitmap width %d does not match image width %d",
		bm.Width, img.Width)
	core.Assert(bm.Rows == img.Height, "LCD bitmap height %d does not match image height %d",
		bm.Rows, img.Height)
	for y := 0; y < img.Height; y++ {
		row := bm.Buffer[y*bm.Pitch : y*bm.Pitch+bm.Width]
		fixedpt.FilterLCD(row, fixedpt.DefaultLCDFilter)
		src := row[lcdPadding:]
		dst := img.Pixels[y*img.RowBytes:]
		for x := 0; x < img.Width; x++ {
			c := fixedpt.PackTriple(src[3*x], src[3*x+1], src[3*x+2], lerp)
			dst[2*x] = byte(c)
			dst[2*x+1] = byte(c >> 8)
		}
	}
}

// copyBitmap copies an embedded bitmap into an image. Gray bitmaps, and mono
// bitmaps into mono images, are copied row by row. Mono bitmaps into gray
// or LCD images are expanded, one byte per bit. Any other combination is a
// programming error.
func copyBitmap(bm *Bitmap, img *fem.GlyphImage, mask fem.AliasMode) {
	rows := bm.Rows
	if rows > img.Height {
		rows = img.Height
	}
	switch {
	case bm.Mode == PixelGray || (bm.Mode == PixelMono && mask == fem.AliasMono):
		n := bm.Pitch
		if img.RowBytes < n {
			n = img.RowBytes
		}
		for y := 0; y < rows; y++ {
			dst := img.Pixels[y*img.RowBytes : (y+1)*img.RowBytes]
			copy(dst[:n], bm.Buffer[y*bm.Pitch:])
			for i := n; i < len(dst); i++ {
				dst[i] = 0
			}
		}
	case bm.Mode == PixelMono && (mask == fem.AliasGray || mask == fem.AliasLCDH || mask == fem.AliasLCDV):
		w := bm.Width
		if w > img.RowBytes {
			w = img.RowBytes
		}
		for y := 0; y < rows; y++ {
			src := bm.Buffer[y*bm.Pitch : (y+1)*bm.Pitch]
			dst := img.Pixels[y*img.RowBytes : (y+1)*img.RowBytes]
			for x := 0; x < w; x++ {
				if src[x>>3]&(0x80>>(x&7)) != 0 {
					dst[x] = 0xff
				} else {
					dst[x] = 0
				}
			}
		}
	default:
		core.Fatal("unknown glyph bitmap transform needed: %d bitmap to %s image", bm.Mode, mask)
	}
}
