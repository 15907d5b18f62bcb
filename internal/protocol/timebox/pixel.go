package timebox

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

const (
	// GridSize 点阵边长
	GridSize = 11
	// PixelCount 点阵像素总数
	PixelCount = GridSize * GridSize
	// PixelFrameSize 打包后的像素帧长度：每两个像素3字节，奇数尾像素占2字节中的1.5
	PixelFrameSize = 182

	// alphaThreshold alpha 大于该值才视为可见
	alphaThreshold = 32
)

// ErrImageSize 图片尺寸不是 11x11
var ErrImageSize = errors.New("image must be 11x11")

// PixelFrame 打包后的 11x11 像素帧
type PixelFrame []byte

// packState 像素对打包状态
type packState int

const (
	awaitingFirst packState = iota
	awaitingSecond
)

// EncodePixels 将 11x11 图片按行优先顺序打包为 4 位/通道的像素帧
//
// 每对像素占3字节：
//
//	[g1|r1] [r2|b1] [b2|g2]   （高半字节|低半字节）
//
// 第121个像素只写前半部分，末字节高半字节保持为0。
func EncodePixels(img image.Image) (PixelFrame, error) {
	b := img.Bounds()
	if b.Dx() != GridSize || b.Dy() != GridSize {
		return nil, fmt.Errorf("%w: got %dx%d", ErrImageSize, b.Dx(), b.Dy())
	}

	out := make([]byte, 1, PixelFrameSize+1)
	state := awaitingFirst
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			visible := c.A > alphaThreshold

			switch state {
			case awaitingFirst:
				// 覆盖上一对留下的0填充位
				out[len(out)-1] = 0
				if visible {
					out[len(out)-1] = c.R>>4 | c.G&0xF0
					out = append(out, c.B>>4)
				} else {
					out = append(out, 0)
				}
				state = awaitingSecond
			case awaitingSecond:
				if visible {
					out[len(out)-1] |= c.R & 0xF0
					out = append(out, c.G>>4|c.B&0xF0)
				} else {
					out = append(out, 0)
				}
				out = append(out, 0)
				state = awaitingFirst
			}
		}
	}
	return PixelFrame(out), nil
}
