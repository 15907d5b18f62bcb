package timebox

import (
	"image"
	"image/draw"
	"image/gif"
)

// CompositeMode GIF 帧的合成方式
type CompositeMode int

const (
	// ModeFull 每一帧都是完整重绘
	ModeFull CompositeMode = iota
	// ModePartial 帧只更新部分区域，需要叠加在上一帧之上
	ModePartial
)

func (m CompositeMode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModePartial:
		return "partial"
	default:
		return "unknown"
	}
}

// canvasBounds GIF 逻辑画布；Config 缺失时取各帧区域的并集
func canvasBounds(g *gif.GIF) image.Rectangle {
	if g.Config.Width > 0 && g.Config.Height > 0 {
		return image.Rect(0, 0, g.Config.Width, g.Config.Height)
	}
	var r image.Rectangle
	for _, frame := range g.Image {
		r = r.Union(frame.Bounds())
	}
	return r
}

// ClassifyGIF 在逐帧转换之前判断合成方式：任一帧的更新区域尺寸与画布不同即为 partial
func ClassifyGIF(g *gif.GIF) CompositeMode {
	canvas := canvasBounds(g).Size()
	for _, frame := range g.Image {
		if frame.Bounds().Size() != canvas {
			return ModePartial
		}
	}
	return ModeFull
}

// composite 合成一帧：partial 模式在上一帧副本上叠加，full 模式在空白画布上绘制
func composite(mode CompositeMode, canvas image.Rectangle, last *image.NRGBA, frame image.Image) *image.NRGBA {
	out := image.NewNRGBA(canvas)
	if mode == ModePartial && last != nil {
		copy(out.Pix, last.Pix)
	}
	draw.Draw(out, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
	return out
}

// FrameExtractor 顺序输出合成后的 GIF 帧，只能遍历一次
type FrameExtractor struct {
	src    *gif.GIF
	mode   CompositeMode
	canvas image.Rectangle
	next   int
	last   *image.NRGBA
}

// NewFrameExtractor 创建帧提取器，合成方式在此一次性确定
func NewFrameExtractor(g *gif.GIF) *FrameExtractor {
	return &FrameExtractor{
		src:    g,
		mode:   ClassifyGIF(g),
		canvas: canvasBounds(g),
	}
}

// Mode 合成方式
func (e *FrameExtractor) Mode() CompositeMode { return e.mode }

// Len 源帧数量
func (e *FrameExtractor) Len() int { return len(e.src.Image) }

// Next 返回下一帧，帧耗尽时返回 false
func (e *FrameExtractor) Next() (*image.NRGBA, bool) {
	if e.next >= len(e.src.Image) {
		return nil, false
	}
	frame := composite(e.mode, e.canvas, e.last, e.src.Image[e.next])
	e.last = frame
	e.next++
	return frame, true
}
