package device

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/taoyao-code/timebox/internal/protocol/timebox"
)

// 命令种类，用于指标、队列优先级与历史记录
const (
	KindView      = "view"
	KindClock     = "clock"
	KindTemp      = "temp"
	KindTempUnit  = "temp_unit"
	KindVolume    = "volume"
	KindSetClock  = "settime"
	KindRadio     = "fmradio"
	KindRaw       = "raw"
	KindImage     = "image"
	KindAnimation = "animation"
)

// 发送模式，对应 timebox_frames_sent_total 的 mode 标签
const (
	ModeCommand   = "command"
	ModeImage     = "image"
	ModeAnimation = "animation"
	ModeRaw       = "raw"
)

var (
	// ErrInvalidDate 日期字符串无法解析
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidHex 原始字节不是合法的十六进制
	ErrInvalidHex = errors.New("invalid hex data")
)

// Request 已编码完成、可直接下发的一次操作
type Request struct {
	Kind   string
	Frames [][]byte
}

// Mode 发送模式
func (r Request) Mode() string { return ModeForKind(r.Kind) }

// ModeForKind 命令种类 → 发送模式
func ModeForKind(kind string) string {
	switch kind {
	case KindImage:
		return ModeImage
	case KindAnimation:
		return ModeAnimation
	case KindRaw:
		return ModeRaw
	default:
		return ModeCommand
	}
}

func single(kind string, cmd timebox.Command) Request {
	return Request{Kind: kind, Frames: [][]byte{cmd.Frame()}}
}

// ViewRequest 切换视图
func ViewRequest(v timebox.ViewType) Request {
	return single(KindView, timebox.SwitchView(v))
}

// ClockRequest 未指定颜色时仅切换到时钟视图
func ClockRequest(color *timebox.RGB, h24 bool) Request {
	if color == nil {
		return single(KindClock, timebox.SwitchView(timebox.ViewClock))
	}
	return single(KindClock, timebox.TimeColor(*color, h24))
}

// TempRequest 未指定颜色时仅切换到温度视图
func TempRequest(color *timebox.RGB, fahrenheit bool) Request {
	if color == nil {
		return single(KindTemp, timebox.SwitchView(timebox.ViewTemp))
	}
	return single(KindTemp, timebox.TempColor(*color, fahrenheit))
}

// TempUnitRequest 只设置温度单位
func TempUnitRequest(fahrenheit bool) Request {
	return single(KindTempUnit, timebox.TempUnit(fahrenheit))
}

// VolumeRequest 音量 0-16
func VolumeRequest(level int) (Request, error) {
	if err := timebox.ValidateVolume(level); err != nil {
		return Request{}, err
	}
	return single(KindVolume, timebox.Volume(byte(level))), nil
}

// SetClockRequest 设置设备时钟
func SetClockRequest(t time.Time) Request {
	return single(KindSetClock, timebox.SetClock(t))
}

// RadioRequest FM 收音机开关
func RadioRequest(on bool) Request {
	return single(KindRadio, timebox.Radio(on))
}

// RawRequest 原始字节；frame 为 true 时作为头部组帧（此时总是转义），否则按 mask 原样发送
func RawRequest(data []byte, mask, frame bool) Request {
	if frame {
		return Request{Kind: KindRaw, Frames: [][]byte{timebox.Build(data, nil)}}
	}
	return Request{Kind: KindRaw, Frames: [][]byte{timebox.Raw(data, mask)}}
}

// ImageRequest 静态图片
func ImageRequest(p timebox.PixelFrame) Request {
	return single(KindImage, timebox.Image(p))
}

// AnimationRequest 动画，帧序号从0开始
func AnimationRequest(frames []timebox.PixelFrame, delay byte) (Request, error) {
	cmds, err := timebox.PackAnimation(frames, delay)
	if err != nil {
		return Request{}, err
	}
	return Request{Kind: KindAnimation, Frames: timebox.Frames(cmds)}, nil
}

// ParseDate 解析日期，"now" 表示当前时间；未带时区的时间按本地时区处理
func ParseDate(s string, now func() time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "now") {
		if now == nil {
			now = time.Now
		}
		return now(), nil
	}
	t, err := cast.ToTimeInDefaultLocationE(s, time.Local)
	if err != nil || s == "" {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseHex 解析十六进制字节串，允许 0x 前缀以及空格、冒号、逗号分隔
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	clean := strings.NewReplacer(" ", "", ":", "", ",", "", "\t", "", "0x", "", "0X", "").Replace(s)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidHex)
	}
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	return data, nil
}
