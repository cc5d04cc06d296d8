package pak

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"

	"github.com/jpfielding/spritepak/pkg/binio"
	"github.com/jpfielding/spritepak/pkg/bmp8"
	"github.com/jpfielding/spritepak/pkg/quantize"
	"golang.org/x/image/bmp"
)

// Rectangle is a frame or hit-box within a sprite image, anchored at a pivot.
// Values are not checked against the image bounds.
type Rectangle struct {
	X      int16 `json:"x"`
	Y      int16 `json:"y"`
	Width  int16 `json:"width"`
	Height int16 `json:"height"`
	PivotX int16 `json:"pivotX"`
	PivotY int16 `json:"pivotY"`
}

// Bounds returns the rectangle in image coordinates
func (r Rectangle) Bounds() image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(int(r.X), int(r.Y)),
		Max: image.Pt(int(r.X)+int(r.Width), int(r.Y)+int(r.Height)),
	}
}

// Sprite is one encoded image plus its ordered rectangles
type Sprite struct {
	Data  []byte
	Rects []Rectangle
}

// Format sniffs the image encoding
func (s *Sprite) Format() ImageFormat {
	return Sniff(s.Data)
}

// Image decodes the sprite's image bytes
func (s *Sprite) Image() (image.Image, error) {
	r := bytes.NewReader(s.Data)
	var (
		img image.Image
		err error
	)
	switch s.Format() {
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatGIF:
		img, err = gif.Decode(r)
	default:
		return nil, fmt.Errorf("%w: % x", ErrUnsupportedImageFormat, head(s.Data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %v: %w", s.Format(), err)
	}
	return img, nil
}

// Config returns the dimensions and color model without decoding pixels
func (s *Sprite) Config() (image.Config, error) {
	r := bytes.NewReader(s.Data)
	var (
		cfg image.Config
		err error
	)
	switch s.Format() {
	case FormatPNG:
		cfg, err = png.DecodeConfig(r)
	case FormatBMP:
		cfg, err = bmp.DecodeConfig(r)
	case FormatJPEG:
		cfg, err = jpeg.DecodeConfig(r)
	case FormatGIF:
		cfg, err = gif.DecodeConfig(r)
	default:
		return cfg, fmt.Errorf("%w: % x", ErrUnsupportedImageFormat, head(s.Data))
	}
	if err != nil {
		return cfg, fmt.Errorf("decode %v config: %w", s.Format(), err)
	}
	return cfg, nil
}

// ReduceColors replaces the image with an 8bpp BMP of at most maxColors colors.
// A nil q selects the octree quantizer.
func (s *Sprite) ReduceColors(q quantize.Quantizer, maxColors int) error {
	if q == nil {
		q = quantize.Octree{}
	}
	img, err := s.Image()
	if err != nil {
		return err
	}
	m, err := q.Quantize(img, maxColors)
	if err != nil {
		return err
	}
	data, err := bmp8.Marshal(m)
	if err != nil {
		return err
	}
	slog.Debug("reduced sprite colors", "colors", len(m.Palette), "before", len(s.Data), "after", len(data))
	s.Data = data
	return nil
}

// head returns up to the first 8 bytes for error messages
func head(b []byte) []byte {
	return b[:min(len(b), 8)]
}

// DecodeSprite reads one sprite record starting at the reader's position. The
// record must end at or before end; bytes between the image and end are skipped.
func DecodeSprite(r *binio.Reader, end int) (*Sprite, error) {
	start := r.Pos()
	if end < start || end > r.Len() {
		return nil, fmt.Errorf("%w: record [%d,%d) in %d bytes", ErrUnexpectedEOF, start, end, r.Len())
	}
	window, err := r.Peek(end - start)
	if err != nil {
		return nil, err
	}
	rec := binio.NewReader(window)

	magic, err := rec.Peek(len(spriteMagic))
	if err != nil {
		return nil, err
	}
	if string(magic) != spriteMagic {
		return nil, fmt.Errorf("%w: % x", ErrInvalidSpriteHeader, magic)
	}
	if err := rec.Skip(spriteHeaderLen); err != nil {
		return nil, err
	}

	count, err := rec.ReadInt32(nil)
	if err != nil {
		return nil, err
	}
	if count < 0 || int(count) > rec.Remaining()/rectLen {
		return nil, fmt.Errorf("%w: %d rectangles with %d bytes left", ErrUnexpectedEOF, count, rec.Remaining())
	}
	s := &Sprite{Rects: make([]Rectangle, 0, count)}
	for range count {
		var f [6]int16
		for j := range f {
			if f[j], err = rec.ReadInt16(nil); err != nil {
				return nil, err
			}
		}
		s.Rects = append(s.Rects, Rectangle{X: f[0], Y: f[1], Width: f[2], Height: f[3], PivotX: f[4], PivotY: f[5]})
	}

	size, err := rec.ReadInt32(nil)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: image size %d", ErrUnexpectedEOF, size)
	}
	if s.Data, err = rec.ReadBytes(int(size)); err != nil {
		return nil, fmt.Errorf("image of %d bytes: %w", size, err)
	}
	if rec.Remaining() > 0 {
		slog.Debug("sprite record has trailing bytes", "offset", start, "trailing", rec.Remaining())
	}

	if s.Format() == FormatBMP {
		// the record size is authoritative; the bitmap's own size is only a cross check
		h, err := bmp8.DecodeHeader(s.Data)
		switch {
		case err != nil:
			slog.Warn("sprite bitmap header", "offset", start, "error", err)
		case int(h.File.Size) != len(s.Data):
			slog.Warn("sprite bitmap size mismatch", "offset", start, "declared", h.File.Size, "record", len(s.Data))
		}
	}
	return s, r.Skip(end - start)
}

// EncodeSprite appends one sprite record to w
func EncodeSprite(w *binio.Writer, s *Sprite) error {
	if s == nil {
		return errors.New("pak: nil sprite")
	}
	if len(s.Rects) > math.MaxInt32 || len(s.Data) > math.MaxInt32 {
		return fmt.Errorf("pak: sprite too large (%d rectangles, %d bytes)", len(s.Rects), len(s.Data))
	}
	if err := w.WriteFixedString(spriteMagic, spriteHeaderLen); err != nil {
		return err
	}
	w.WriteInt32(nil, int32(len(s.Rects)))
	for _, rc := range s.Rects {
		for _, v := range [6]int16{rc.X, rc.Y, rc.Width, rc.Height, rc.PivotX, rc.PivotY} {
			w.WriteInt16(nil, v)
		}
	}
	w.WriteInt32(nil, int32(len(s.Data)))
	_, err := w.Write(s.Data)
	return err
}
