/*
Package bmp8 implements a minimal 8 bits-per-pixel BMP encoder and a header
decoder.

The encoder writes a 14 byte file header, a 40 byte BITMAPINFOHEADER, only as
many B,G,R,0 palette entries as the image actually uses (not padded to 256),
then the pixel rows bottom-to-top, each row padded to a multiple of 4 bytes.
Pixel decoding is left to golang.org/x/image/bmp which reads these files.
*/
package bmp8

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
)

const (
	fileHeaderLen = 14
	infoHeaderLen = 40
	headerLen     = fileHeaderLen + infoHeaderLen

	// 72 dpi
	pixelsPerMeter = 2835
	maxColors      = 256
)

var (
	// ErrInvalidHeader is returned for a bad signature or non-positive dimensions.
	ErrInvalidHeader = errors.New("bmp8: invalid BMP header")
	// ErrInvalidImage is returned when an image cannot be written as 8bpp.
	ErrInvalidImage = errors.New("bmp8: invalid indexed image")
)

var signature = [2]byte{'B', 'M'}

// FileHeader is the BITMAPFILEHEADER structure
type FileHeader struct {
	Type      [2]byte // "BM"
	Size      uint32  // size of the whole file in bytes
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32 // offset to the pixel array
}

// InfoHeader is the BITMAPINFOHEADER structure
type InfoHeader struct {
	Size            uint32
	Width           int32
	Height          int32 // positive for bottom-up rows
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	SizeImage       uint32
	XPixelsPerM     int32
	YPixelsPerM     int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// Header holds both BMP headers
type Header struct {
	File FileHeader
	Info InfoHeader
}

// Stride returns the padded row length in bytes for the header's width and bit count.
func (h Header) Stride() int {
	return (int(h.Info.Width)*int(h.Info.BitCount) + 31) / 32 * 4
}

// Stride8 returns the 4 byte aligned row length of an 8bpp image of the given width.
func Stride8(width int) int {
	return (width + 3) &^ 3
}

// DecodeHeader parses the file and info headers at the start of b.
func DecodeHeader(b []byte) (Header, error) {
	var h Header
	if len(b) < headerLen {
		return h, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidHeader, headerLen, len(b))
	}
	if err := binary.Read(bytes.NewReader(b[:headerLen]), binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if h.File.Type != signature {
		return h, fmt.Errorf("%w: signature %q", ErrInvalidHeader, h.File.Type[:])
	}
	if h.Info.Width <= 0 || h.Info.Height == 0 {
		return h, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidHeader, h.Info.Width, h.Info.Height)
	}
	return h, nil
}

// Marshal returns the BMP encoding of m
func Marshal(m *image.Paletted) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes m to w as an uncompressed 8bpp BMP.
func Encode(w io.Writer, m *image.Paletted) error {
	if m == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := m.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, width, height)
	}
	if len(m.Palette) == 0 || len(m.Palette) > maxColors {
		return fmt.Errorf("%w: palette has %d entries", ErrInvalidImage, len(m.Palette))
	}

	stride := Stride8(width)
	paletteLen := len(m.Palette) * 4
	imageSize := stride * height

	h := Header{
		File: FileHeader{
			Type:    signature,
			Size:    uint32(headerLen + paletteLen + imageSize),
			OffBits: uint32(headerLen + paletteLen),
		},
		Info: InfoHeader{
			Size:        infoHeaderLen,
			Width:       int32(width),
			Height:      int32(height),
			Planes:      1,
			BitCount:    8,
			SizeImage:   uint32(imageSize),
			XPixelsPerM: pixelsPerMeter,
			YPixelsPerM: pixelsPerMeter,
			ColorsUsed:  uint32(len(m.Palette)),
		},
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}

	pal := make([]byte, 0, paletteLen)
	for _, c := range m.Palette {
		r, g, bl, _ := c.RGBA()
		pal = append(pal, byte(bl>>8), byte(g>>8), byte(r>>8), 0)
	}
	if _, err := w.Write(pal); err != nil {
		return err
	}

	row := make([]byte, stride)
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		i := m.PixOffset(b.Min.X, y)
		copy(row, m.Pix[i:i+width])
		for x := range row[:width] {
			if int(row[x]) >= len(m.Palette) {
				return fmt.Errorf("%w: index %d at (%d,%d) outside palette of %d", ErrInvalidImage, row[x], b.Min.X+x, y, len(m.Palette))
			}
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
