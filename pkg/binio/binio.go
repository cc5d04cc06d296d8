// Package binio provides an endian-aware cursor over an in-memory byte buffer.
//
// Reader decodes primitives, fixed-length and NUL-terminated strings from a
// byte slice and supports seek, skip and non-advancing peeks. Writer mirrors
// the reads over a growable slice addressed by index, so a caller can reserve
// space, keep writing, then Seek back and patch the reserved bytes.
//
// Every multi-byte call takes a binary.ByteOrder; nil selects little-endian.
//
// Basic usage:
//
//	r := binio.NewReader(buf)
//	n, err := r.ReadInt32(nil)
//	if err != nil {
//		return err
//	}
//
//	w := binio.NewWriter()
//	slot := w.Pos()
//	w.WriteInt32(nil, 0)
//	// ...
//	w.Seek(slot)
//	w.WriteInt32(nil, realValue)
package binio

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrUnexpectedEOF is returned when a read needs more bytes than remain.
	ErrUnexpectedEOF = errors.New("binio: unexpected end of buffer")
	// ErrInvalidSeek is returned for positions outside the buffer.
	ErrInvalidSeek = errors.New("binio: invalid seek position")
	// ErrStringTooLong is returned when a fixed-length string field cannot hold its value.
	ErrStringTooLong = errors.New("binio: string exceeds fixed field length")
)

func orderOf(order binary.ByteOrder) binary.ByteOrder {
	if order == nil {
		return binary.LittleEndian
	}
	return order
}
