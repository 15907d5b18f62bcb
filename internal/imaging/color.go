package imaging

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/taoyao-code/timebox/internal/protocol/timebox"
)

// ErrInvalidColor 颜色字符串无法解析
var ErrInvalidColor = errors.New("invalid color")

// ParseColor 解析 "#rgb"、"#rrggbb" 或 CSS 颜色名，返回 [0,1] 区间的浮点分量
func ParseColor(s string) (r, g, b float64, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, nil
	}

	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	raw, decErr := hex.DecodeString(h)
	if decErr != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return float64(raw[0]) / 255, float64(raw[1]) / 255, float64(raw[2]) / 255, nil
}

// ParseRGB 解析颜色并转换为设备颜色
func ParseRGB(s string) (timebox.RGB, error) {
	r, g, b, err := ParseColor(s)
	if err != nil {
		return timebox.RGB{}, err
	}
	return timebox.ColorFromFloat(r, g, b), nil
}
