// Package quantize reduces true-color images to indexed images with at most
// 256 palette entries.
//
// The default quantizer is an octree: colors are inserted into a depth-8 tree
// keyed by their RGB bit planes and the deepest, earliest created interior
// node is folded into a leaf whenever the number of leaves exceeds the target.
// The result is deterministic for a given image and palette size.
//
// A median-cut quantizer backed by github.com/ericpauley/go-quantize is
// available as an alternative with the same contract.
//
// Basic usage:
//
//	m, err := quantize.Quantize(img, 256)
//	if err != nil {
//		return err
//	}
//	b, err := bmp8.Marshal(m)
package quantize

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// MaxColors is the largest palette an 8-bit indexed image can address
const MaxColors = 256

// ErrInvalidArgument is returned for empty images or palette sizes outside 1..MaxColors.
var ErrInvalidArgument = errors.New("quantize: invalid argument")

// Quantizer reduces img to an indexed image with at most maxColors palette entries.
//
// The returned image has its origin at (0,0) and a Stride padded to a multiple
// of 4 bytes so it can be written row by row as a bitmap.
type Quantizer interface {
	Quantize(img image.Image, maxColors int) (*image.Paletted, error)
}

// Quantize reduces img with the octree quantizer.
func Quantize(img image.Image, maxColors int) (*image.Paletted, error) {
	return Octree{}.Quantize(img, maxColors)
}

// ByName returns the quantizer registered under name ("octree" or "median").
func ByName(name string) (Quantizer, error) {
	switch name {
	case "", "octree":
		return Octree{}, nil
	case "median", "mediancut":
		return MedianCut{}, nil
	}
	return nil, fmt.Errorf("%w: unknown quantizer %q", ErrInvalidArgument, name)
}

func validate(img image.Image, maxColors int) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidArgument)
	}
	if maxColors < 1 || maxColors > MaxColors {
		return fmt.Errorf("%w: palette size %d outside 1..%d", ErrInvalidArgument, maxColors, MaxColors)
	}
	if img.Bounds().Empty() {
		return fmt.Errorf("%w: empty image %v", ErrInvalidArgument, img.Bounds())
	}
	return nil
}

// newIndexed allocates a zero-origin paletted image with 4 byte aligned rows.
func newIndexed(width, height int, p color.Palette) *image.Paletted {
	stride := (width + 3) &^ 3
	return &image.Paletted{
		Pix:     make([]uint8, stride*height),
		Stride:  stride,
		Rect:    image.Rect(0, 0, width, height),
		Palette: p,
	}
}

// rgbAt returns the non-premultiplied 8-bit RGB components at (x, y); alpha is ignored.
func rgbAt(img image.Image, x, y int) (r, g, b uint8) {
	switch m := img.(type) {
	case *image.NRGBA:
		i := m.PixOffset(x, y)
		return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
	case *image.RGBA:
		i := m.PixOffset(x, y)
		a := m.Pix[i+3]
		if a == 0xFF || a == 0 {
			return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
		}
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return c.R, c.G, c.B
}
