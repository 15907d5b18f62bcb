package imaging

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/disintegration/gift"

	"github.com/taoyao-code/timebox/internal/protocol/timebox"
)

// Filter 缩放滤波器名称
type Filter string

// DefaultFilter 默认缩放滤波器
const DefaultFilter Filter = "bicubic"

// ErrUnknownFilter 未知的滤波器名称
var ErrUnknownFilter = errors.New("unknown scaling filter")

// 名称沿用常见图像库的叫法，映射到 gift 的重采样核
var filters = map[Filter]gift.Resampling{
	"nearest":   gift.NearestNeighborResampling,
	"none":      gift.NearestNeighborResampling,
	"normal":    gift.NearestNeighborResampling,
	"box":       gift.BoxResampling,
	"linear":    gift.LinearResampling,
	"bilinear":  gift.LinearResampling,
	"hamming":   gift.LinearResampling,
	"cubic":     gift.CubicResampling,
	"bicubic":   gift.CubicResampling,
	"lanczos":   gift.LanczosResampling,
	"antialias": gift.LanczosResampling,
}

// ParseFilter 滤波器名称校验，空字符串返回默认值
func ParseFilter(name string) (Filter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultFilter, nil
	}
	f := Filter(name)
	if _, ok := filters[f]; !ok {
		return "", fmt.Errorf("%w: %q (one of %s)", ErrUnknownFilter, name, strings.Join(FilterNames(), ", "))
	}
	return f, nil
}

// FilterNames 已支持的滤波器名称（字典序）
func FilterNames() []string {
	names := make([]string, 0, len(filters))
	for f := range filters {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

func (f Filter) resampling() gift.Resampling {
	if r, ok := filters[f]; ok {
		return r
	}
	return filters[DefaultFilter]
}

// Resize 缩放到设备点阵尺寸
func Resize(src image.Image, f Filter) *image.NRGBA {
	g := gift.New(gift.Resize(timebox.GridSize, timebox.GridSize, f.resampling()))
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// Convert 缩放并打包为像素帧
func Convert(src image.Image, f Filter) (timebox.PixelFrame, error) {
	return timebox.EncodePixels(Resize(src, f))
}
