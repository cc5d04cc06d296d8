package pak

import (
	"bytes"
	"fmt"
	"slices"
)

// Archive is an ordered list of sprites. Sprites are identified by position;
// removing one shifts every later index down by one.
//
// An Archive is not safe for concurrent mutation.
type Archive struct {
	Sprites []*Sprite
}

// New returns an empty archive
func New() *Archive {
	return &Archive{}
}

// Len returns the number of sprites
func (a *Archive) Len() int {
	return len(a.Sprites)
}

// Sprite returns the sprite at index i
func (a *Archive) Sprite(i int) (*Sprite, error) {
	if err := a.checkSprite(i); err != nil {
		return nil, err
	}
	return a.Sprites[i], nil
}

// AddSprite appends a sprite holding a copy of data and returns its index.
func (a *Archive) AddSprite(data []byte) (int, error) {
	if err := a.InsertSprite(len(a.Sprites), data); err != nil {
		return -1, err
	}
	return len(a.Sprites) - 1, nil
}

// InsertSprite inserts a sprite at index i in [0, Len()].
func (a *Archive) InsertSprite(i int, data []byte) error {
	if i < 0 || i > len(a.Sprites) {
		return fmt.Errorf("%w: sprite %d of %d", ErrIndexOutOfRange, i, len(a.Sprites))
	}
	if err := checkImage(data); err != nil {
		return err
	}
	a.Sprites = slices.Insert(a.Sprites, i, &Sprite{Data: bytes.Clone(data)})
	return nil
}

// RemoveSprite deletes the sprite at index i together with its rectangles.
func (a *Archive) RemoveSprite(i int) error {
	if err := a.checkSprite(i); err != nil {
		return err
	}
	a.Sprites = slices.Delete(a.Sprites, i, i+1)
	return nil
}

// ReplaceSprite swaps the image of sprite i and keeps its rectangles.
func (a *Archive) ReplaceSprite(i int, data []byte) error {
	if err := a.checkSprite(i); err != nil {
		return err
	}
	if err := checkImage(data); err != nil {
		return err
	}
	a.Sprites[i].Data = bytes.Clone(data)
	return nil
}

// AddRectangle appends r to sprite si and returns the rectangle's index.
func (a *Archive) AddRectangle(si int, r Rectangle) (int, error) {
	if err := a.checkSprite(si); err != nil {
		return -1, err
	}
	s := a.Sprites[si]
	s.Rects = append(s.Rects, r)
	return len(s.Rects) - 1, nil
}

// InsertRectangle inserts r at index ri in [0, len(Rects)] of sprite si.
func (a *Archive) InsertRectangle(si, ri int, r Rectangle) error {
	if err := a.checkSprite(si); err != nil {
		return err
	}
	s := a.Sprites[si]
	if ri < 0 || ri > len(s.Rects) {
		return fmt.Errorf("%w: rectangle %d of %d in sprite %d", ErrIndexOutOfRange, ri, len(s.Rects), si)
	}
	s.Rects = slices.Insert(s.Rects, ri, r)
	return nil
}

// RemoveRectangle deletes rectangle ri of sprite si
func (a *Archive) RemoveRectangle(si, ri int) error {
	s, err := a.rect(si, ri)
	if err != nil {
		return err
	}
	s.Rects = slices.Delete(s.Rects, ri, ri+1)
	return nil
}

// SetRectangle overwrites rectangle ri of sprite si
func (a *Archive) SetRectangle(si, ri int, r Rectangle) error {
	s, err := a.rect(si, ri)
	if err != nil {
		return err
	}
	s.Rects[ri] = r
	return nil
}

func (a *Archive) checkSprite(i int) error {
	if i < 0 || i >= len(a.Sprites) {
		return fmt.Errorf("%w: sprite %d of %d", ErrIndexOutOfRange, i, len(a.Sprites))
	}
	return nil
}

func (a *Archive) rect(si, ri int) (*Sprite, error) {
	if err := a.checkSprite(si); err != nil {
		return nil, err
	}
	s := a.Sprites[si]
	if ri < 0 || ri >= len(s.Rects) {
		return nil, fmt.Errorf("%w: rectangle %d of %d in sprite %d", ErrIndexOutOfRange, ri, len(s.Rects), si)
	}
	return s, nil
}

func checkImage(data []byte) error {
	if Sniff(data) == FormatUnknown {
		return fmt.Errorf("%w: % x", ErrUnsupportedImageFormat, head(data))
	}
	return nil
}
