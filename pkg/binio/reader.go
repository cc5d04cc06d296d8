package binio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Reader reads primitives from a byte slice
type Reader struct {
	buf []byte
	pos int
	enc encoding.Encoding
}

// NewReader creates a reader positioned at the start of b. The slice is not copied.
func NewReader(b []byte) *Reader {
	return &Reader{
		buf: b,
		enc: unicode.UTF8,
	}
}

// SetEncoding selects the text encoding used by ReadFixedString and ReadCString.
// The default is UTF-8; legacy archives may need a code page such as charmap.CodePage866.
func (r *Reader) SetEncoding(enc encoding.Encoding) {
	if enc == nil {
		enc = unicode.UTF8
	}
	r.enc = enc
}

// Pos returns the current read offset
func (r *Reader) Pos() int { return r.pos }

// Len returns the size of the underlying buffer
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Seek moves the cursor to an absolute position in [0, Len()].
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return fmt.Errorf("%w: %d (len %d)", ErrInvalidSeek, pos, len(r.buf))
	}
	r.pos = pos
	return nil
}

// Skip advances the cursor by n bytes
func (r *Reader) Skip(n int) error {
	if _, err := r.take(n); err != nil {
		return err
	}
	return nil
}

// Peek returns the next n bytes without advancing. The result aliases the buffer.
func (r *Reader) Peek(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: peek %d at %d (len %d)", ErrUnexpectedEOF, n, r.pos, len(r.buf))
	}
	return r.buf[r.pos : r.pos+n], nil
}

// take returns the next n bytes and advances; on failure the position is unchanged
func (r *Reader) take(n int) ([]byte, error) {
	b, err := r.Peek(n)
	if err != nil {
		return nil, err
	}
	r.pos += n
	return b, nil
}

// ReadBytes returns a copy of the next n bytes
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadUint16(order binary.ByteOrder) (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return orderOf(order).Uint16(b), nil
}

func (r *Reader) ReadUint32(order binary.ByteOrder) (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return orderOf(order).Uint32(b), nil
}

func (r *Reader) ReadUint64(order binary.ByteOrder) (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return orderOf(order).Uint64(b), nil
}

func (r *Reader) ReadInt16(order binary.ByteOrder) (int16, error) {
	v, err := r.ReadUint16(order)
	return int16(v), err
}

func (r *Reader) ReadInt32(order binary.ByteOrder) (int32, error) {
	v, err := r.ReadUint32(order)
	return int32(v), err
}

func (r *Reader) ReadInt64(order binary.ByteOrder) (int64, error) {
	v, err := r.ReadUint64(order)
	return int64(v), err
}

func (r *Reader) ReadFloat32(order binary.ByteOrder) (float32, error) {
	v, err := r.ReadUint32(order)
	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64(order binary.ByteOrder) (float64, error) {
	v, err := r.ReadUint64(order)
	return math.Float64frombits(v), err
}

// ReadFixedString decodes exactly n bytes as text. Trailing NUL padding is trimmed.
func (r *Reader) ReadFixedString(n int) (string, error) {
	b, err := r.Peek(n)
	if err != nil {
		return "", err
	}
	s, err := r.decode(bytes.TrimRight(b, "\x00"))
	if err != nil {
		return "", err
	}
	r.pos += n
	return s, nil
}

// ReadCString reads up to and including a NUL byte and returns the text before it.
func (r *Reader) ReadCString() (string, error) {
	i := bytes.IndexByte(r.buf[r.pos:], 0)
	if i < 0 {
		return "", fmt.Errorf("%w: unterminated string at %d", ErrUnexpectedEOF, r.pos)
	}
	s, err := r.decode(r.buf[r.pos : r.pos+i])
	if err != nil {
		return "", err
	}
	r.pos += i + 1
	return s, nil
}

func (r *Reader) decode(b []byte) (string, error) {
	out, err := r.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("binio: decoding string at %d: %w", r.pos, err)
	}
	return string(out), nil
}
