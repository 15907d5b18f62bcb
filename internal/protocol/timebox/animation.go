package timebox

import (
	"errors"
	"fmt"
)

// MaxAnimationFrames 帧序号占1字节
const MaxAnimationFrames = 256

// ErrTooManyFrames 动画帧数超过帧序号可表示的范围
var ErrTooManyFrames = errors.New("too many animation frames")

// PackAnimation 按顺序为每个像素帧生成动画帧命令
// 帧序号从0递增，所有帧共用同一个 delay
func PackAnimation(frames []PixelFrame, delay byte) ([]Command, error) {
	if len(frames) > MaxAnimationFrames {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyFrames, len(frames), MaxAnimationFrames)
	}
	cmds := make([]Command, 0, len(frames))
	for i, f := range frames {
		cmds = append(cmds, AnimationFrame(f, byte(i), delay))
	}
	return cmds, nil
}

// Frames 批量组帧，保持输入顺序
func Frames(cmds []Command) [][]byte {
	out := make([][]byte, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Frame())
	}
	return out
}
