package binio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReader_Endianness(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}

	tests := []struct {
		name  string
		order binary.ByteOrder
		want  uint32
	}{
		{"Default", nil, 0x04030201},
		{"Little", binary.LittleEndian, 0x04030201},
		{"Big", binary.BigEndian, 0x01020304},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(data)
			v, err := r.ReadUint32(tt.order)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, 4, r.Pos())
		})
	}
}

func TestWriterReader_RoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteUint8(0xAB)
	w.WriteUint16(nil, 0xBEEF)
	w.WriteInt16(binary.BigEndian, -2)
	w.WriteUint32(nil, 0xDEADBEEF)
	w.WriteInt32(nil, -123456)
	w.WriteUint64(binary.BigEndian, 0x0102030405060708)
	w.WriteInt64(nil, -1)
	w.WriteFloat32(nil, 1.5)
	w.WriteFloat64(binary.BigEndian, -0.25)
	require.NoError(t, w.WriteFixedString("abc", 8))
	require.NoError(t, w.WriteCString("hello"))

	r := NewReader(w.Bytes())

	u8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)

	u16, err := r.ReadUint16(nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), u16)

	i16, err := r.ReadInt16(binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, int16(-2), i16)

	u32, err := r.ReadUint32(nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	i32, err := r.ReadInt32(nil)
	require.NoError(t, err)
	assert.Equal(t, int32(-123456), i32)

	u64, err := r.ReadUint64(binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)

	i64, err := r.ReadInt64(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), i64)

	f32, err := r.ReadFloat32(nil)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f32)

	f64, err := r.ReadFloat64(binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, -0.25, f64)

	s, err := r.ReadFixedString(8)
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	c, err := r.ReadCString()
	require.NoError(t, err)
	assert.Equal(t, "hello", c)

	assert.Equal(t, 0, r.Remaining())
}

func TestReader_UnexpectedEOF(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})

	_, err := r.ReadUint32(nil)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
	assert.Equal(t, 0, r.Pos(), "failed read must not advance")

	_, err = r.ReadBytes(4)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)

	assert.ErrorIs(t, r.Skip(5), ErrUnexpectedEOF)

	_, err = r.ReadCString()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)

	_, err = r.ReadBytes(-1)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestReader_SeekSkipPeek(t *testing.T) {
	r := NewReader([]byte{10, 20, 30, 40, 50})

	require.NoError(t, r.Skip(2))
	p, err := r.Peek(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{30, 40}, p)
	assert.Equal(t, 2, r.Pos())

	require.NoError(t, r.Seek(4))
	b, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(50), b)

	require.NoError(t, r.Seek(5))
	assert.ErrorIs(t, r.Seek(6), ErrInvalidSeek)
	assert.ErrorIs(t, r.Seek(-1), ErrInvalidSeek)
}

func TestReader_ReadBytesCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	r := NewReader(src)
	b, err := r.ReadBytes(3)
	require.NoError(t, err)
	b[0] = 99
	assert.Equal(t, byte(1), src[0])
}

func TestWriter_BackPatch(t *testing.T) {
	w := NewWriter()
	w.WriteUint32(nil, 0xFFFFFFFF)
	slot := w.Pos()
	w.WriteZeros(4)
	w.Write([]byte("tail"))

	require.NoError(t, w.Seek(slot))
	w.WriteUint32(nil, 42)
	assert.Equal(t, 12, w.Len(), "patch must not grow the buffer")

	r := NewReader(w.Bytes())
	require.NoError(t, r.Skip(4))
	v, err := r.ReadUint32(nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)
	s, err := r.ReadFixedString(4)
	require.NoError(t, err)
	assert.Equal(t, "tail", s)
}

func TestWriter_OverwriteAcrossEnd(t *testing.T) {
	w := NewWriter()
	w.Write([]byte{1, 2, 3})
	require.NoError(t, w.Seek(2))
	w.Write([]byte{9, 9, 9})
	assert.Equal(t, []byte{1, 2, 9, 9, 9}, w.Bytes())
	assert.ErrorIs(t, w.Seek(6), ErrInvalidSeek)
}

func TestWriter_FixedStringTooLong(t *testing.T) {
	w := NewWriter()
	err := w.WriteFixedString("too long", 3)
	assert.ErrorIs(t, err, ErrStringTooLong)
	assert.Equal(t, 0, w.Len())
}

func TestReader_CodePage(t *testing.T) {
	// "Привет" in CP866
	raw := []byte{0x8F, 0xE0, 0xA8, 0xA2, 0xA5, 0xE2, 0x00, 0x00}
	r := NewReader(raw)
	r.SetEncoding(charmap.CodePage866)
	s, err := r.ReadFixedString(len(raw))
	require.NoError(t, err)
	assert.Equal(t, "Привет", s)

	w := NewWriter()
	w.SetEncoding(charmap.CodePage866)
	require.NoError(t, w.WriteFixedString("Привет", 8))
	assert.Equal(t, raw, w.Bytes())
}
