package timebox

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrInvalidFrame 帧结构非法（缺少帧头/帧尾或长度不足）
	ErrInvalidFrame = errors.New("invalid frame")
)

// Command 逻辑命令：头部 + 载荷（载荷可为空），构造后不再修改
type Command struct {
	Header  []byte
	Payload []byte
}

// Frame 生成线上帧
func (c Command) Frame() []byte {
	return Build(c.Header, c.Payload)
}

// Build 组帧：START + mask(头部) + mask(载荷) + mask(校验和) + END
// 校验和基于未转义的头部与载荷计算，转义在所有内容确定之后进行
func Build(header, payload []byte) []byte {
	lo, hi := Checksum(Sum(header, payload))

	out := make([]byte, 0, len(header)+len(payload)+6)
	out = append(out, Start)
	out = append(out, Mask(header)...)
	out = append(out, Mask(payload)...)
	out = append(out, Mask([]byte{lo, hi})...)
	out = append(out, End)
	return out
}

// Frame 解析后的帧
type Frame struct {
	Header   []byte
	Payload  []byte
	Checksum [2]byte // 小端：低字节在前
}

// Command 还原为逻辑命令
func (f *Frame) Command() Command {
	return Command{Header: f.Header, Payload: f.Payload}
}

// Parse 解析一个完整的帧（含 START/END）
// headerLen 为该命令已知的头部长度，剩余部分（除末尾2字节校验和）视为载荷
func Parse(frame []byte, headerLen int) (*Frame, error) {
	if len(frame) < 2 || frame[0] != Start || frame[len(frame)-1] != End {
		return nil, fmt.Errorf("%w: missing delimiters", ErrInvalidFrame)
	}

	body := Unmask(frame[1 : len(frame)-1])
	if headerLen < 0 || len(body) < headerLen+2 {
		return nil, fmt.Errorf("%w: body too short: %d bytes, header %d", ErrInvalidFrame, len(body), headerLen)
	}

	f := &Frame{
		Header:  append([]byte(nil), body[:headerLen]...),
		Payload: append([]byte(nil), body[headerLen:len(body)-2]...),
	}
	f.Checksum[0] = body[len(body)-2]
	f.Checksum[1] = body[len(body)-1]

	lo, hi := Checksum(Sum(f.Header, f.Payload))
	if f.Checksum[0] != lo || f.Checksum[1] != hi {
		return f, fmt.Errorf("%w: expected %02x%02x, got %02x%02x", ErrChecksumMismatch, lo, hi, f.Checksum[0], f.Checksum[1])
	}
	return f, nil
}

// DeclaredLength 读取头部前两字节的小端长度字段
func DeclaredLength(body []byte) (int, bool) {
	if len(body) < 2 {
		return 0, false
	}
	return int(body[0]) | int(body[1])<<8, true
}

// StreamDecoder 按 START/END 从连续字节流中切分帧
type StreamDecoder struct{ buf []byte }

func NewStreamDecoder() *StreamDecoder { return &StreamDecoder{} }

// Feed 追加数据并返回已完整的帧（含 START/END），不完整的尾部继续缓存
func (d *StreamDecoder) Feed(p []byte) [][]byte {
	d.buf = append(d.buf, p...)
	var out [][]byte
	for {
		start := bytes.IndexByte(d.buf, Start)
		if start < 0 {
			// 帧外的噪声直接丢弃
			d.buf = d.buf[:0]
			return out
		}
		d.buf = d.buf[start:]

		end := bytes.IndexByte(d.buf[1:], End)
		if end < 0 {
			return out
		}
		end += 1

		// 帧内出现新的 START 说明前一帧残缺，从新的 START 重新同步
		if restart := bytes.IndexByte(d.buf[1:end], Start); restart >= 0 {
			d.buf = d.buf[restart+1:]
			continue
		}

		frame := make([]byte, end+1)
		copy(frame, d.buf[:end+1])
		out = append(out, frame)
		d.buf = d.buf[end+1:]
	}
}

// Buffered 当前缓存的未完成字节数
func (d *StreamDecoder) Buffered() int { return len(d.buf) }
