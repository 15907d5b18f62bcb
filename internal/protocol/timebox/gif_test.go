package timebox

import (
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPalette = color.Palette{
	color.RGBA{},
	color.RGBA{R: 0xFF, A: 0xFF},
	color.RGBA{G: 0xFF, A: 0xFF},
}

func paletted(r image.Rectangle, idx uint8) *image.Paletted {
	img := image.NewPaletted(r, testPalette)
	for i := range img.Pix {
		img.Pix[i] = idx
	}
	return img
}

func TestClassifyGIF(t *testing.T) {
	full := image.Rect(0, 0, GridSize, GridSize)

	tests := []struct {
		name     string
		g        *gif.GIF
		expected CompositeMode
	}{
		{
			name: "所有帧覆盖完整画布",
			g: &gif.GIF{
				Image:  []*image.Paletted{paletted(full, 1), paletted(full, 2)},
				Config: image.Config{Width: GridSize, Height: GridSize},
			},
			expected: ModeFull,
		},
		{
			name: "存在局部更新帧",
			g: &gif.GIF{
				Image:  []*image.Paletted{paletted(full, 1), paletted(image.Rect(2, 2, 4, 4), 2)},
				Config: image.Config{Width: GridSize, Height: GridSize},
			},
			expected: ModePartial,
		},
		{
			name: "缺少画布配置",
			g: &gif.GIF{
				Image: []*image.Paletted{paletted(full, 1), paletted(full, 2)},
			},
			expected: ModeFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyGIF(tt.g))
			assert.Equal(t, tt.expected, NewFrameExtractor(tt.g).Mode())
		})
	}
}

func TestFrameExtractor(t *testing.T) {
	full := image.Rect(0, 0, GridSize, GridSize)
	red := color.NRGBA{R: 0xFF, A: 0xFF}
	green := color.NRGBA{G: 0xFF, A: 0xFF}

	t.Run("局部更新叠加在上一帧之上", func(t *testing.T) {
		g := &gif.GIF{
			Image:  []*image.Paletted{paletted(full, 1), paletted(image.Rect(2, 2, 4, 4), 2)},
			Config: image.Config{Width: GridSize, Height: GridSize},
		}
		e := NewFrameExtractor(g)
		require.Equal(t, 2, e.Len())

		first, ok := e.Next()
		require.True(t, ok)
		assert.Equal(t, red, first.NRGBAAt(0, 0))

		second, ok := e.Next()
		require.True(t, ok)
		assert.Equal(t, full, second.Bounds())
		assert.Equal(t, red, second.NRGBAAt(0, 0))
		assert.Equal(t, green, second.NRGBAAt(3, 3))
		// 第一帧不受后续合成影响
		assert.Equal(t, red, first.NRGBAAt(3, 3))

		_, ok = e.Next()
		assert.False(t, ok)
	})

	t.Run("完整帧互不影响", func(t *testing.T) {
		second := paletted(full, 2)
		second.Pix[0] = 0 // 透明
		g := &gif.GIF{
			Image:  []*image.Paletted{paletted(full, 1), second},
			Config: image.Config{Width: GridSize, Height: GridSize},
		}
		e := NewFrameExtractor(g)
		_, ok := e.Next()
		require.True(t, ok)
		out, ok := e.Next()
		require.True(t, ok)
		assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
		assert.Equal(t, green, out.NRGBAAt(1, 0))
	})

	t.Run("空GIF", func(t *testing.T) {
		e := NewFrameExtractor(&gif.GIF{})
		assert.Equal(t, 0, e.Len())
		_, ok := e.Next()
		assert.False(t, ok)
	})
}

func TestCompositeModeString(t *testing.T) {
	assert.Equal(t, "full", ModeFull.String())
	assert.Equal(t, "partial", ModePartial.String())
	assert.Equal(t, "unknown", CompositeMode(9).String())
}
