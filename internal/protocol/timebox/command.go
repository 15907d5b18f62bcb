package timebox

import (
	"errors"
	"fmt"
	"time"
)

// 命令字
const (
	opDisplay     byte = 0x45 // 视图切换/颜色设置
	opVolume      byte = 0x08
	opSetClock    byte = 0x18
	opRadio       byte = 0x05
	opImage       byte = 0x44
	opAnimFrame   byte = 0x49
	displayTime   byte = 0x00
	displayTemp   byte = 0x01
	gridDimension byte = GridSize - 1 // 宽高均以 size-1 编码
	depthMarker   byte = 0x04         // 每通道4位
)

// VolumeMax 音量上限（含）
const VolumeMax = 16

var (
	// ErrVolumeRange 音量超出 [0,16]
	ErrVolumeRange = errors.New("volume out of range")
)

// withLength 在命令字前补上小端两字节长度（头部+载荷总长）
func withLength(payloadLen int, rest ...byte) []byte {
	total := len(rest) + 2 + payloadLen
	header := make([]byte, 0, len(rest)+2)
	header = append(header, byte(total&0xFF), byte(total>>8))
	return append(header, rest...)
}

// SwitchView 视图切换 [04 00 45 op]
func SwitchView(v ViewType) Command {
	return Command{Header: withLength(0, opDisplay, byte(v))}
}

// TimeColor 时钟颜色，h24 为 true 时24小时制
func TimeColor(c RGB, h24 bool) Command {
	return Command{
		Header:  withLength(4, opDisplay, displayTime, boolFlag(h24)),
		Payload: c.payload(),
	}
}

// TempColor 温度颜色，fahrenheit 为 true 时华氏度
func TempColor(c RGB, fahrenheit bool) Command {
	return Command{
		Header:  withLength(4, opDisplay, displayTemp, boolFlag(fahrenheit)),
		Payload: c.payload(),
	}
}

// TempUnit 仅切换温度单位，不带颜色
// 长度字段沿用带颜色时的 0x09，设备按此识别
func TempUnit(fahrenheit bool) Command {
	return Command{Header: []byte{0x09, 0x00, opDisplay, displayTemp, boolFlag(fahrenheit)}}
}

// ValidateVolume 音量范围校验，调用方在编码前执行
func ValidateVolume(level int) error {
	if level < 0 || level > VolumeMax {
		return fmt.Errorf("%w: %d (0-%d)", ErrVolumeRange, level, VolumeMax)
	}
	return nil
}

// Volume 音量设置 [04 00 08] + [level]
func Volume(level byte) Command {
	return Command{Header: withLength(1, opVolume), Payload: []byte{level}}
}

// SetClock 设备时钟 [0A 00 18 yy cc MM dd hh mm ss]
func SetClock(t time.Time) Command {
	year := t.Year()
	return Command{Header: withLength(0, opSetClock,
		byte(year%100), byte(year/100),
		byte(t.Month()), byte(t.Day()),
		byte(t.Hour()), byte(t.Minute()), byte(t.Second()),
	)}
}

// Radio FM 收音机开关（频率设置暂不支持）
func Radio(on bool) Command {
	return Command{Header: withLength(0, opRadio, boolFlag(on))}
}

// Image 静态图片 [len 00 44 00 0a 0a 04] + 像素帧
func Image(p PixelFrame) Command {
	return Command{
		Header:  withLength(len(p), opImage, 0x00, gridDimension, gridDimension, depthMarker),
		Payload: p,
	}
}

// AnimationFrame 动画单帧 [len 00 49 00 0a 0a 04 index delay] + 像素帧
func AnimationFrame(p PixelFrame, index, delay byte) Command {
	return Command{
		Header:  withLength(len(p), opAnimFrame, 0x00, gridDimension, gridDimension, depthMarker, index, delay),
		Payload: p,
	}
}

// Raw 透传原始字节，可选转义；不加帧头帧尾与校验和
func Raw(data []byte, mask bool) []byte {
	if mask {
		return Mask(data)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

func boolFlag(b bool) byte {
	if b {
		return 0x01
	}
	return 0x00
}
