// Package atlas packs sprite frames into sprite sheets.
//
// Items are (source image, rectangle) pairs. Pack places a prefix of the
// items on one sheet and reports how many it consumed; callers resume with the
// remainder until everything is placed, or use PackAll. Pixels are copied
// verbatim and every placed rectangle keeps its original pivot.
package atlas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/jpfielding/spritepak/pkg/pak"
)

// DefaultMaxSize is used for a zero MaxWidth or MaxHeight
const DefaultMaxSize = 2048

var (
	// ErrPackingOverflow is returned when an item cannot fit an empty sheet, or
	// the sheet would need coordinates beyond int16.
	ErrPackingOverflow = errors.New("atlas: packing overflow")
	// ErrInvalidArgument is returned for empty input, bad rectangles or a bad Config
	ErrInvalidArgument = errors.New("atlas: invalid argument")
)

// Strategy selects how items are placed on a sheet
type Strategy int

const (
	// Grid places Columns items per row, at most Rows rows per sheet
	Grid Strategy = iota
	// Shelf fills rows left to right, wrapping at MaxWidth and stopping at MaxHeight
	Shelf
	// Tight places the largest items first at the lowest free corner of the items already placed
	Tight
)

var strategyNames = []string{"grid", "shelf", "tight"}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ParseStrategy maps a name such as "shelf" to its Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "grid":
		return Grid, nil
	case "shelf", "row", "rows":
		return Shelf, nil
	case "tight":
		return Tight, nil
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, name)
}

// Config controls packing. Zero MaxWidth and MaxHeight mean DefaultMaxSize,
// zero Columns means a square-ish grid and zero Rows means no row limit.
type Config struct {
	Strategy Strategy
	// Spacing is the gap in pixels kept to the right of and below every item
	Spacing   int
	MaxWidth  int
	MaxHeight int
	Columns   int
	Rows      int
}

func (c Config) withDefaults(n int) Config {
	if c.MaxWidth == 0 {
		c.MaxWidth = DefaultMaxSize
	}
	if c.MaxHeight == 0 {
		c.MaxHeight = DefaultMaxSize
	}
	if c.Columns == 0 {
		c.Columns = max(1, int(math.Ceil(math.Sqrt(float64(n)))))
	}
	return c
}

// Item is one frame to pack: Rect is relative to the Source bounds.
// Sprite and Index identify where the frame came from.
type Item struct {
	Source image.Image
	Rect   pak.Rectangle
	Sprite int
	Index  int
}

func (it Item) size() image.Point {
	return image.Pt(int(it.Rect.Width), int(it.Rect.Height))
}

// Sheet is one packed atlas
type Sheet struct {
	Image *image.NRGBA
	// Rects are the placed frames in sheet coordinates with their original pivots
	Rects []pak.Rectangle
	// Placed[i] is the index into the packed items of Rects[i]
	Placed []int
	// Consumed counts how many items, in Order, this sheet took
	Consumed int
}

// Sprite encodes the sheet as a PNG sprite carrying the placed rectangles
func (s *Sheet) Sprite() (*pak.Sprite, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Image); err != nil {
		return nil, err
	}
	return &pak.Sprite{Data: buf.Bytes(), Rects: slices.Clone(s.Rects)}, nil
}

// Items flattens an archive into packable items, decoding each image once. A
// sprite without rectangles contributes its whole image with Index -1.
// Rectangles that are empty or reach outside their image are legal archive
// data but cannot be packed; they are skipped with a warning.
func Items(a *pak.Archive) ([]Item, error) {
	var items []Item
	for si, s := range a.Sprites {
		img, err := s.Image()
		if err != nil {
			return nil, fmt.Errorf("sprite %d: %w", si, err)
		}
		if len(s.Rects) == 0 {
			b := img.Bounds()
			if b.Dx() > math.MaxInt16 || b.Dy() > math.MaxInt16 {
				return nil, fmt.Errorf("%w: sprite %d is %dx%d", ErrPackingOverflow, si, b.Dx(), b.Dy())
			}
			items = append(items, Item{
				Source: img,
				Rect:   pak.Rectangle{Width: int16(b.Dx()), Height: int16(b.Dy())},
				Sprite: si,
				Index:  -1,
			})
			continue
		}
		b := img.Bounds()
		for ri, r := range s.Rects {
			if rb := r.Bounds().Add(b.Min); r.Width <= 0 || r.Height <= 0 || !rb.In(b) {
				slog.Warn("skipping unpackable rectangle", "sprite", si, "rect", ri, "bounds", rb, "image", b)
				continue
			}
			items = append(items, Item{Source: img, Rect: r, Sprite: si, Index: ri})
		}
	}
	return items, nil
}

// Order returns items in the order the strategy consumes them. Tight sorts by
// area then height, both descending; the other strategies keep input order.
func Order(items []Item, cfg Config) []Item {
	out := make([]Item, 0, len(items))
	for _, i := range order(items, cfg) {
		out = append(out, items[i])
	}
	return out
}

func order(items []Item, cfg Config) []int {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	if cfg.Strategy == Tight {
		slices.SortStableFunc(idx, func(a, b int) int {
			sa, sb := items[a].size(), items[b].size()
			if d := sb.X*sb.Y - sa.X*sa.Y; d != 0 {
				return d
			}
			return sb.Y - sa.Y
		})
	}
	return idx
}

// Pack places as many items as fit on one sheet, starting from the front of
// Order(items, cfg). Resume with Order(items, cfg)[sheet.Consumed:].
func Pack(items []Item, cfg Config) (*Sheet, error) {
	if err := validate(items, cfg); err != nil {
		return nil, err
	}
	return pack(items, order(items, cfg), cfg.withDefaults(len(items)))
}

// PackAll packs every item, returning one sheet per call of the strategy.
// Placed indices refer to items. A zero Columns is resolved once from
// len(items), so every grid sheet has the same number of columns.
func PackAll(items []Item, cfg Config) ([]*Sheet, error) {
	if err := validate(items, cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults(len(items))
	var sheets []*Sheet
	for idx := order(items, cfg); len(idx) > 0; {
		s, err := pack(items, idx, cfg)
		if err != nil {
			return nil, fmt.Errorf("sheet %d: %w", len(sheets), err)
		}
		sheets = append(sheets, s)
		idx = idx[s.Consumed:]
	}
	return sheets, nil
}

func validate(items []Item, cfg Config) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: nothing to pack", ErrInvalidArgument)
	}
	if cfg.Strategy < Grid || cfg.Strategy > Tight {
		return fmt.Errorf("%w: strategy %v", ErrInvalidArgument, cfg.Strategy)
	}
	if cfg.Spacing < 0 || cfg.MaxWidth < 0 || cfg.MaxHeight < 0 || cfg.Columns < 0 || cfg.Rows < 0 {
		return fmt.Errorf("%w: negative config value %+v", ErrInvalidArgument, cfg)
	}
	for i, it := range items {
		if it.Source == nil {
			return fmt.Errorf("%w: item %d has no source image", ErrInvalidArgument, i)
		}
		if it.Rect.Width <= 0 || it.Rect.Height <= 0 {
			return fmt.Errorf("%w: item %d is %dx%d", ErrInvalidArgument, i, it.Rect.Width, it.Rect.Height)
		}
		b := it.Source.Bounds()
		if r := it.Rect.Bounds().Add(b.Min); !r.In(b) {
			return fmt.Errorf("%w: item %d crop %v outside source %v", ErrInvalidArgument, i, r, b)
		}
	}
	return nil
}

// placement puts items[item] with its top-left corner at at
type placement struct {
	item int
	at   image.Point
}

func pack(items []Item, idx []int, cfg Config) (*Sheet, error) {
	var ps []placement
	switch cfg.Strategy {
	case Grid:
		ps = grid(items, idx, cfg)
	case Shelf:
		ps = shelf(items, idx, cfg)
	case Tight:
		ps = tight(items, idx, cfg)
	}
	if len(ps) == 0 {
		it := items[idx[0]]
		return nil, fmt.Errorf("%w: item %d (%dx%d, spacing %d) exceeds %dx%d",
			ErrPackingOverflow, idx[0], it.Rect.Width, it.Rect.Height, cfg.Spacing, cfg.MaxWidth, cfg.MaxHeight)
	}
	s, err := compose(items, ps)
	if err != nil {
		return nil, err
	}
	slog.Debug("packed sheet", "strategy", cfg.Strategy, "items", s.Consumed, "size", s.Image.Bounds().Size())
	return s, nil
}

// compose crops the sheet to the placed area and copies every frame into it
func compose(items []Item, ps []placement) (*Sheet, error) {
	var used image.Rectangle
	for _, p := range ps {
		used = used.Union(image.Rectangle{Min: p.at, Max: p.at.Add(items[p.item].size())})
	}
	if used.Max.X > math.MaxInt16 || used.Max.Y > math.MaxInt16 {
		return nil, fmt.Errorf("%w: sheet would be %dx%d", ErrPackingOverflow, used.Max.X, used.Max.Y)
	}

	s := &Sheet{
		Image:    image.NewNRGBA(image.Rect(0, 0, used.Max.X, used.Max.Y)),
		Rects:    make([]pak.Rectangle, 0, len(ps)),
		Placed:   make([]int, 0, len(ps)),
		Consumed: len(ps),
	}
	for _, p := range ps {
		it := items[p.item]
		src := it.Rect.Bounds().Add(it.Source.Bounds().Min)
		draw.Draw(s.Image, image.Rectangle{Min: p.at, Max: p.at.Add(src.Size())}, it.Source, src.Min, draw.Src)
		s.Rects = append(s.Rects, pak.Rectangle{
			X:      int16(p.at.X),
			Y:      int16(p.at.Y),
			Width:  it.Rect.Width,
			Height: it.Rect.Height,
			PivotX: it.Rect.PivotX,
			PivotY: it.Rect.PivotY,
		})
		s.Placed = append(s.Placed, p.item)
	}
	return s, nil
}
