package timebox

import "math"

// RGB 8位通道颜色
type RGB struct {
	R, G, B byte
}

// ColorComponent 浮点通道 [0,1] → 8位
// 先截断到 [0,1]；恰好为 1.0 时取 255，否则 floor(c*256)
func ColorComponent(c float64) byte {
	if math.IsNaN(c) {
		return 0
	}
	c = math.Max(0, math.Min(1, c))
	if c == 1.0 {
		return 0xFF
	}
	return byte(math.Floor(c * 256))
}

// ColorFromFloat 由浮点 RGB 分量构造颜色
func ColorFromFloat(r, g, b float64) RGB {
	return RGB{R: ColorComponent(r), G: ColorComponent(g), B: ColorComponent(b)}
}

// payload 颜色载荷，第4字节固定 0xFF
func (c RGB) payload() []byte {
	return []byte{c.R, c.G, c.B, 0xFF}
}
