package binio

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Writer writes primitives into a growable buffer. Writes land at Pos();
// writing inside the buffer overwrites, writing at the end grows it.
type Writer struct {
	buf []byte
	pos int
	enc encoding.Encoding
}

// NewWriter creates an empty writer
func NewWriter() *Writer {
	return &Writer{enc: unicode.UTF8}
}

// SetEncoding selects the text encoding used by the string writers.
func (w *Writer) SetEncoding(enc encoding.Encoding) {
	if enc == nil {
		enc = unicode.UTF8
	}
	w.enc = enc
}

// Pos returns the current write offset
func (w *Writer) Pos() int { return w.pos }

// Len returns the number of bytes in the buffer
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the buffer. It aliases the writer's storage.
func (w *Writer) Bytes() []byte { return w.buf }

// Seek moves the write position to an absolute offset in [0, Len()].
func (w *Writer) Seek(pos int) error {
	if pos < 0 || pos > len(w.buf) {
		return fmt.Errorf("%w: %d (len %d)", ErrInvalidSeek, pos, len(w.buf))
	}
	w.pos = pos
	return nil
}

// Write implements io.Writer
func (w *Writer) Write(p []byte) (int, error) {
	end := w.pos + len(p)
	if end > len(w.buf) {
		w.buf = append(w.buf[:w.pos], p...)
	} else {
		copy(w.buf[w.pos:], p)
	}
	w.pos = end
	return len(p), nil
}

// WriteZeros writes n zero bytes, typically to reserve space for a later patch.
func (w *Writer) WriteZeros(n int) {
	if n <= 0 {
		return
	}
	w.Write(make([]byte, n))
}

func (w *Writer) WriteUint8(v uint8) {
	w.Write([]byte{v})
}

func (w *Writer) WriteUint16(order binary.ByteOrder, v uint16) {
	var b [2]byte
	orderOf(order).PutUint16(b[:], v)
	w.Write(b[:])
}

func (w *Writer) WriteUint32(order binary.ByteOrder, v uint32) {
	var b [4]byte
	orderOf(order).PutUint32(b[:], v)
	w.Write(b[:])
}

func (w *Writer) WriteUint64(order binary.ByteOrder, v uint64) {
	var b [8]byte
	orderOf(order).PutUint64(b[:], v)
	w.Write(b[:])
}

func (w *Writer) WriteInt16(order binary.ByteOrder, v int16) {
	w.WriteUint16(order, uint16(v))
}

func (w *Writer) WriteInt32(order binary.ByteOrder, v int32) {
	w.WriteUint32(order, uint32(v))
}

func (w *Writer) WriteInt64(order binary.ByteOrder, v int64) {
	w.WriteUint64(order, uint64(v))
}

func (w *Writer) WriteFloat32(order binary.ByteOrder, v float32) {
	w.WriteUint32(order, math.Float32bits(v))
}

func (w *Writer) WriteFloat64(order binary.ByteOrder, v float64) {
	w.WriteUint64(order, math.Float64bits(v))
}

// WriteFixedString encodes s into exactly n bytes, zero padded.
func (w *Writer) WriteFixedString(s string, n int) error {
	b, err := w.encode(s)
	if err != nil {
		return err
	}
	if len(b) > n {
		return fmt.Errorf("%w: %q needs %d bytes, field has %d", ErrStringTooLong, s, len(b), n)
	}
	w.Write(b)
	w.WriteZeros(n - len(b))
	return nil
}

// WriteCString encodes s followed by a NUL byte
func (w *Writer) WriteCString(s string) error {
	b, err := w.encode(s)
	if err != nil {
		return err
	}
	w.Write(b)
	w.WriteUint8(0)
	return nil
}

func (w *Writer) encode(s string) ([]byte, error) {
	b, err := w.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("binio: encoding %q: %w", s, err)
	}
	return b, nil
}
