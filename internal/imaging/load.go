package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"os"
	"path/filepath"

	// 注册解码器
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/taoyao-code/timebox/internal/protocol/timebox"
)

// ErrEmptySource 来源中没有可用的帧
var ErrEmptySource = errors.New("no frames in source")

// DecodeImage 解码任意已注册格式的图片
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// LoadImage 读取单张图片并转换为像素帧
func LoadImage(path string, f Filter) (timebox.PixelFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Convert(img, f)
}

// LoadFolder 按文件名排序读取目录下的所有普通文件，每个文件一帧
func LoadFolder(dir string, f Filter) ([]timebox.PixelFrame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var frames []timebox.PixelFrame
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		// 跟随符号链接判断是否为普通文件
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		frame, err := LoadImage(path, f)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, dir)
	}
	return frames, nil
}

// LoadGIF 解码 GIF 并逐帧合成、缩放、打包
func LoadGIF(r io.Reader, f Filter) ([]timebox.PixelFrame, timebox.CompositeMode, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, timebox.ModeFull, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, timebox.ModeFull, ErrEmptySource
	}

	e := timebox.NewFrameExtractor(g)
	frames := make([]timebox.PixelFrame, 0, e.Len())
	for {
		img, ok := e.Next()
		if !ok {
			break
		}
		frame, err := Convert(img, f)
		if err != nil {
			return nil, e.Mode(), err
		}
		frames = append(frames, frame)
	}
	return frames, e.Mode(), nil
}

// LoadGIFFile 同 LoadGIF，从文件读取
func LoadGIFFile(path string, f Filter) ([]timebox.PixelFrame, timebox.CompositeMode, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, timebox.ModeFull, err
	}
	defer file.Close()

	frames, mode, err := LoadGIF(file, f)
	if err != nil {
		return nil, mode, fmt.Errorf("%s: %w", path, err)
	}
	return frames, mode, nil
}
