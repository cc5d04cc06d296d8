/*
Package pak reads and writes PAK sprite archives.

An archive is a plaintext 20 byte header (the ASCII magic "<Pak file header>"
and 3 reserved bytes), a little-endian int32 sprite count, an index of
(offset, endOffset) int32 pairs and the sprite records themselves. Offsets are
absolute positions in the decrypted stream. Each record is

	[<Sprite File Header> zero padded to 100 bytes]
	[int32 rectCount][rectCount x (x, y, width, height, pivotX, pivotY int16)]
	[int32 imageLen][imageLen bytes of PNG, BMP, JPEG or GIF]

When a key is supplied everything after the 20 byte header is passed through a
Blowfish CTR keystream. Files with the .epak extension are always encrypted.

Basic usage:

	a, err := pak.Open("sprites.pak", nil)
	if err != nil {
		return err
	}
	i, err := a.AddSprite(pngBytes)
	if err != nil {
		return err
	}
	a.AddRectangle(i, pak.Rectangle{Width: 32, Height: 48, PivotX: 16, PivotY: 48})
	return pak.Save(a, "sprites.pak", nil)
*/
package pak

import (
	"bytes"
	"errors"

	"github.com/jpfielding/spritepak/pkg/binio"
)

const (
	archiveMagic = "<Pak file header>"
	// magic plus 3 reserved bytes
	headerLen = 20

	spriteMagic     = "<Sprite File Header>"
	spriteHeaderLen = 100

	rectLen = 12
)

var (
	// ErrInvalidHeader is returned when the archive magic or its index table is invalid.
	ErrInvalidHeader = errors.New("pak: invalid archive header")
	// ErrInvalidSpriteHeader is returned when a record does not start with the sprite magic,
	// usually because the archive was decrypted with the wrong key.
	ErrInvalidSpriteHeader = errors.New("pak: invalid sprite header")
	// ErrUnsupportedImageFormat is returned for image bytes that are not PNG, BMP, JPEG or GIF.
	ErrUnsupportedImageFormat = errors.New("pak: unsupported image format")
	// ErrUnexpectedEOF is returned when a record or table runs past the available bytes.
	ErrUnexpectedEOF = binio.ErrUnexpectedEOF
	// ErrIndexOutOfRange is returned by the edit API for a bad sprite or rectangle index.
	ErrIndexOutOfRange = errors.New("pak: index out of range")
	// ErrInvalidKey is returned for keys Blowfish cannot use (longer than 56 bytes).
	ErrInvalidKey = errors.New("pak: invalid key")
	// ErrKeyRequired is returned when an .epak file is opened or saved without a key.
	ErrKeyRequired = errors.New("pak: key required")
	// ErrInvalidRectangle is returned for interchange values that do not fit int16.
	ErrInvalidRectangle = errors.New("pak: invalid rectangle")
)

// ImageFormat identifies the encoding of a sprite's image bytes
type ImageFormat int

const (
	FormatUnknown ImageFormat = iota
	FormatPNG
	FormatBMP
	FormatJPEG
	FormatGIF
)

var formatNames = map[ImageFormat]string{
	FormatUnknown: "unknown",
	FormatPNG:     "png",
	FormatBMP:     "bmp",
	FormatJPEG:    "jpeg",
	FormatGIF:     "gif",
}

func (f ImageFormat) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return formatNames[FormatUnknown]
}

// Ext returns the usual file extension for the format, including the dot
func (f ImageFormat) Ext() string {
	switch f {
	case FormatPNG:
		return ".png"
	case FormatBMP:
		return ".bmp"
	case FormatJPEG:
		return ".jpg"
	case FormatGIF:
		return ".gif"
	}
	return ".bin"
}

var signatures = []struct {
	format ImageFormat
	magic  []byte
}{
	{FormatPNG, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}},
	{FormatBMP, []byte("BM")},
	{FormatJPEG, []byte{0xFF, 0xD8, 0xFF}},
	{FormatGIF, []byte("GIF89a")},
}

// Sniff identifies image bytes by their leading signature
func Sniff(b []byte) ImageFormat {
	for _, s := range signatures {
		if bytes.HasPrefix(b, s.magic) {
			return s.format
		}
	}
	return FormatUnknown
}
