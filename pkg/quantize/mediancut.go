package quantize

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

// MedianCut quantizes with go-quantize's median cut and maps pixels to the
// nearest palette entry. Unlike Octree it weighs colors by frequency, which
// suits photographic sprites better than flat pixel art. Alpha is ignored as
// it is by Octree.
type MedianCut struct{}

// Quantize implements Quantizer
func (MedianCut) Quantize(img image.Image, maxColors int) (*image.Paletted, error) {
	if err := validate(img, maxColors); err != nil {
		return nil, err
	}
	src := opaqueCopy(img)
	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, maxColors), src)
	if len(p) > maxColors {
		p = p[:maxColors]
	}
	opaque := make(color.Palette, len(p))
	for i, c := range p {
		r, g, bl, _ := c.RGBA()
		opaque[i] = color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: 0xFF}
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	m := newIndexed(w, h, opaque)
	seen := make(map[color.RGBA]uint8)
	for y := range h {
		row := src.Pix[y*src.Stride:]
		for x := range w {
			c := color.RGBA{R: row[4*x], G: row[4*x+1], B: row[4*x+2], A: 0xFF}
			idx, ok := seen[c]
			if !ok {
				idx = uint8(opaque.Index(c))
				seen[c] = idx
			}
			m.Pix[y*m.Stride+x] = idx
		}
	}
	return m, nil
}

// opaqueCopy returns img at origin (0,0) with every alpha forced to 0xFF
func opaqueCopy(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := out.PixOffset(x-b.Min.X, y-b.Min.Y)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = rgbAt(img, x, y)
			out.Pix[i+3] = 0xFF
		}
	}
	return out
}
