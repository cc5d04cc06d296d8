package pak

import (
	"bytes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/jpfielding/spritepak/pkg/binio"
	"github.com/jpfielding/spritepak/pkg/quantize"
	"golang.org/x/crypto/blowfish"
)

// WriteOptions controls Encode. The zero value writes a plaintext archive with
// every image passed through unchanged.
type WriteOptions struct {
	// Key encrypts everything after the header; empty means plaintext
	Key []byte
	// MaxColors > 0 re-encodes every image as an 8bpp BMP of at most MaxColors colors.
	// The archive itself is not modified.
	MaxColors int
	// Quantizer used when MaxColors > 0; nil selects the octree
	Quantizer quantize.Quantizer
}

// crypt applies the keystream for key to b in place. Encrypting and decrypting
// are the same operation. An empty key leaves b untouched.
func crypt(key, b []byte) error {
	if len(key) == 0 {
		return nil
	}
	block, err := blowfish.NewCipher(key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	iv := sha256.Sum256(key)
	cipher.NewCTR(block, iv[:blowfish.BlockSize]).XORKeyStream(b, b)
	return nil
}

// Read decodes an archive from r
func Read(r io.Reader, key []byte) (*Archive, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(b, key)
}

// Decode parses a complete archive. b is not modified. Any error aborts the
// whole decode; no partial archive is returned. With a key, every failure past
// the header also matches ErrInvalidSpriteHeader.
func Decode(b []byte, key []byte) (*Archive, error) {
	if len(b) < headerLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidHeader, len(b))
	}
	if string(b[:len(archiveMagic)]) != archiveMagic {
		return nil, fmt.Errorf("%w: magic % x", ErrInvalidHeader, b[:len(archiveMagic)])
	}
	stream := bytes.Clone(b)
	if err := crypt(key, stream[headerLen:]); err != nil {
		return nil, err
	}
	a, err := decode(stream)
	if err != nil && len(key) > 0 {
		// a wrong key turns the whole stream after the header into noise
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpriteHeader, err)
	}
	return a, err
}

// decode parses a decrypted stream whose magic has already been checked
func decode(stream []byte) (*Archive, error) {
	r := binio.NewReader(stream)
	if err := r.Seek(headerLen); err != nil {
		return nil, err
	}
	count, err := r.ReadInt32(nil)
	if err != nil {
		return nil, fmt.Errorf("sprite count: %w", err)
	}
	if count < 0 || int(count) > r.Remaining()/8 {
		return nil, fmt.Errorf("%w: %d sprites with %d bytes left", ErrUnexpectedEOF, count, r.Remaining())
	}

	offsets := make([][2]int, count)
	for i := range offsets {
		off, err := r.ReadInt32(nil)
		if err != nil {
			return nil, err
		}
		end, err := r.ReadInt32(nil)
		if err != nil {
			return nil, err
		}
		offsets[i] = [2]int{int(off), int(end)}
	}
	table := r.Pos()
	for i, o := range offsets {
		if o[0] < table || o[0] > o[1] || o[1] > len(stream) {
			return nil, fmt.Errorf("%w: sprite %d at [%d,%d), records start at %d in %d bytes",
				ErrInvalidHeader, i, o[0], o[1], table, len(stream))
		}
	}

	a := &Archive{Sprites: make([]*Sprite, 0, count)}
	prev := table
	for i, o := range offsets {
		if o[0] != prev {
			slog.Warn("gap in sprite index", "sprite", i, "offset", o[0], "expected", prev)
		}
		prev = o[1]
		if err := r.Seek(o[0]); err != nil {
			return nil, fmt.Errorf("sprite %d: %w", i, err)
		}
		s, err := DecodeSprite(r, o[1])
		if err != nil {
			return nil, fmt.Errorf("sprite %d: %w", i, err)
		}
		slog.Debug("decoded sprite", "sprite", i, "format", s.Format(), "bytes", len(s.Data), "rects", len(s.Rects))
		a.Sprites = append(a.Sprites, s)
	}
	return a, nil
}

// Write encodes a to w and returns the number of bytes written
func Write(w io.Writer, a *Archive, opts WriteOptions) (int64, error) {
	b, err := Encode(a, opts)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Encode serializes a. The index table is reserved up front and back-patched
// once every record's position is known.
func Encode(a *Archive, opts WriteOptions) ([]byte, error) {
	if a == nil {
		a = New()
	}
	if len(a.Sprites) > math.MaxInt32 {
		return nil, fmt.Errorf("pak: %d sprites", len(a.Sprites))
	}
	w := binio.NewWriter()
	if err := w.WriteFixedString(archiveMagic, headerLen); err != nil {
		return nil, err
	}
	w.WriteInt32(nil, int32(len(a.Sprites)))
	table := w.Pos()
	w.WriteZeros(8 * len(a.Sprites))

	offsets := make([][2]int, len(a.Sprites))
	for i, s := range a.Sprites {
		if opts.MaxColors > 0 && s != nil {
			reduced := &Sprite{Data: s.Data, Rects: s.Rects}
			if err := reduced.ReduceColors(opts.Quantizer, opts.MaxColors); err != nil {
				return nil, fmt.Errorf("sprite %d: %w", i, err)
			}
			s = reduced
		}
		offsets[i][0] = w.Pos()
		if err := EncodeSprite(w, s); err != nil {
			return nil, fmt.Errorf("sprite %d: %w", i, err)
		}
		offsets[i][1] = w.Pos()
		if offsets[i][1] > math.MaxInt32 {
			return nil, fmt.Errorf("pak: archive exceeds %d bytes at sprite %d", math.MaxInt32, i)
		}
	}

	if err := w.Seek(table); err != nil {
		return nil, err
	}
	for _, o := range offsets {
		w.WriteInt32(nil, int32(o[0]))
		w.WriteInt32(nil, int32(o[1]))
	}

	b := w.Bytes()
	if err := crypt(opts.Key, b[headerLen:]); err != nil {
		return nil, err
	}
	return b, nil
}
