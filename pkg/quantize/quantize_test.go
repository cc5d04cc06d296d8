package quantize

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: uint8((x ^ y) * 7),
				A: 0xFF,
			})
		}
	}
	return img
}

func assertValidIndices(t *testing.T, m *image.Paletted) {
	t.Helper()
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if idx := int(m.ColorIndexAt(x, y)); idx >= len(m.Palette) {
				assert.Less(t, idx, len(m.Palette), "pixel (%d,%d)", x, y)
				return
			}
		}
	}
}

func TestOctree_PaletteBound(t *testing.T) {
	img := gradient(64, 48)

	for _, k := range []int{1, 2, 3, 8, 16, 100, 255, 256} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			m, err := Quantize(img, k)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(m.Palette), k)
			assert.NotEmpty(t, m.Palette)
			assertValidIndices(t, m)
		})
	}
}

func TestOctree_RedBlue(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			c := color.NRGBA{R: 0xFF, A: 0xFF}
			if x >= 5 {
				c = color.NRGBA{B: 0xFF, A: 0xFF}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	m, err := Quantize(img, 2)
	require.NoError(t, err)
	require.Len(t, m.Palette, 2)
	assert.Contains(t, m.Palette, color.Color(color.RGBA{R: 0xFF, A: 0xFF}))
	assert.Contains(t, m.Palette, color.Color(color.RGBA{B: 0xFF, A: 0xFF}))

	red := m.Palette[m.ColorIndexAt(0, 0)]
	blue := m.Palette[m.ColorIndexAt(9, 9)]
	assert.Equal(t, color.Color(color.RGBA{R: 0xFF, A: 0xFF}), red)
	assert.Equal(t, color.Color(color.RGBA{B: 0xFF, A: 0xFF}), blue)
}

func TestOctree_SingleColorMergesToMean(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0xFF})
	img.SetNRGBA(1, 0, color.NRGBA{R: 21, G: 41, B: 61, A: 0xFF})

	m, err := Quantize(img, 1)
	require.NoError(t, err)
	require.Len(t, m.Palette, 1)
	// integer mean, rounded down
	assert.Equal(t, color.Color(color.RGBA{R: 15, G: 30, B: 45, A: 0xFF}), m.Palette[0])
	assert.Equal(t, uint8(0), m.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(0), m.ColorIndexAt(1, 0))
}

func TestOctree_Deterministic(t *testing.T) {
	img := gradient(40, 30)

	a, err := Quantize(img, 32)
	require.NoError(t, err)
	b, err := Quantize(img, 32)
	require.NoError(t, err)

	assert.Equal(t, a.Palette, b.Palette)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestOctree_ExactWhenFewColors(t *testing.T) {
	colors := []color.NRGBA{
		{R: 0x00, G: 0x00, B: 0x00, A: 0xFF},
		{R: 0xFF, G: 0x00, B: 0x00, A: 0xFF},
		{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF},
		{R: 0x12, G: 0x34, B: 0x56, A: 0xFF},
	}
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, colors[(x+y)%4])
		}
	}

	m, err := Quantize(img, 256)
	require.NoError(t, err)
	assert.Len(t, m.Palette, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := colors[(x+y)%4]
			r, g, b, _ := m.Palette[m.ColorIndexAt(x, y)].RGBA()
			assert.Equal(t, [3]uint8{want.R, want.G, want.B}, [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)})
		}
	}
}

func TestOctree_StrideAndOrigin(t *testing.T) {
	img := gradient(20, 10).SubImage(image.Rect(3, 2, 10, 7))

	m, err := Quantize(img, 16)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 7, 5), m.Bounds())
	assert.Equal(t, 8, m.Stride)
	assert.Len(t, m.Pix, 8*5)
}

func TestOctree_IgnoresAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 0xFF})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 0x10})

	m, err := Quantize(img, 4)
	require.NoError(t, err)
	assert.Len(t, m.Palette, 1)
}

func TestTree_ReduceDeepestFirst(t *testing.T) {
	tr := newTree()
	// share the top bit of every channel; differ only in the lowest bit of blue
	tr.insert(0x80, 0x80, 0x80)
	tr.insert(0x80, 0x80, 0x81)
	tr.insert(0x00, 0x00, 0x00)
	require.Equal(t, 3, tr.leaves)

	require.True(t, tr.reduce())
	assert.Equal(t, 2, tr.leaves, "the level 7 parent of the two near colors folds first")

	p := tr.palette()
	require.Len(t, p, 2)
	assert.Equal(t, color.Color(color.RGBA{A: 0xFF}), p[0])
	assert.Equal(t, color.Color(color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}), p[1])
}

func TestQuantize_InvalidArguments(t *testing.T) {
	img := gradient(4, 4)

	tests := []struct {
		name      string
		img       image.Image
		maxColors int
	}{
		{"ZeroColors", img, 0},
		{"NegativeColors", img, -3},
		{"TooManyColors", img, 257},
		{"EmptyImage", image.NewNRGBA(image.Rect(0, 0, 0, 5)), 16},
		{"NilImage", nil, 16},
	}

	for _, q := range []Quantizer{Octree{}, MedianCut{}} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := q.Quantize(tt.img, tt.maxColors)
				assert.ErrorIs(t, err, ErrInvalidArgument)
			})
		}
	}
}

func TestMedianCut_PaletteBound(t *testing.T) {
	img := gradient(32, 32)

	for _, k := range []int{1, 4, 16, 256} {
		m, err := MedianCut{}.Quantize(img, k)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(m.Palette), k)
		assert.Equal(t, image.Rect(0, 0, 32, 32), m.Bounds())
		assertValidIndices(t, m)
	}
}

func TestMedianCut_IgnoresAlpha(t *testing.T) {
	img := gradient(16, 16)
	faded := image.NewNRGBA(img.Rect)
	copy(faded.Pix, img.Pix)
	for i := 3; i < len(faded.Pix); i += 4 {
		faded.Pix[i] = uint8(0x20 + i%0xC0)
	}

	want, err := MedianCut{}.Quantize(img, 8)
	require.NoError(t, err)
	got, err := MedianCut{}.Quantize(faded, 8)
	require.NoError(t, err)
	assert.Equal(t, want.Palette, got.Palette)
	assert.Equal(t, want.Pix, got.Pix)

	// a translucent red stays red instead of darkening toward the other entry
	two := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	two.SetNRGBA(0, 0, color.NRGBA{R: 0xFF, A: 0x40})
	two.SetNRGBA(1, 0, color.NRGBA{B: 0xFF, A: 0xFF})
	m, err := MedianCut{}.Quantize(two, 2)
	require.NoError(t, err)
	r, _, b, a := m.At(0, 0).RGBA()
	assert.Greater(t, r, b)
	assert.Equal(t, uint32(0xFFFF), a)
}

func TestByName(t *testing.T) {
	q, err := ByName("octree")
	require.NoError(t, err)
	assert.IsType(t, Octree{}, q)

	q, err = ByName("median")
	require.NoError(t, err)
	assert.IsType(t, MedianCut{}, q)

	_, err = ByName("kmeans")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
