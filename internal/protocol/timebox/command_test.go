package timebox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchView(t *testing.T) {
	for _, name := range ViewNames() {
		t.Run(name, func(t *testing.T) {
			v, err := ParseView(name)
			require.NoError(t, err)
			cmd := SwitchView(v)
			assert.Equal(t, []byte{0x04, 0x00, 0x45, byte(v)}, cmd.Header)
			assert.Empty(t, cmd.Payload)
		})
	}
}

func TestParseView(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ViewType
		wantErr  bool
	}{
		{"时钟", "clock", ViewClock, false},
		{"大小写不敏感", "ScoreBoard", ViewScoreboard, false},
		{"首尾空白", " off ", ViewOff, false},
		{"秒表", "stopwatch", ViewStopwatch, false},
		{"未知视图", "weather", 0, true},
		{"空字符串", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseView(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownView)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestViewNames(t *testing.T) {
	assert.Equal(t, []string{"clock", "temp", "off", "anim", "graph", "image", "stopwatch", "scoreboard"}, ViewNames())
	assert.Equal(t, "graph", ViewGraph.String())
	assert.Equal(t, "view(0x09)", ViewType(0x09).String())
}

func TestColorCommands(t *testing.T) {
	c := RGB{R: 0x10, G: 0x20, B: 0x30}

	tests := []struct {
		name   string
		cmd    Command
		header []byte
	}{
		{"时钟12小时制", TimeColor(c, false), []byte{0x09, 0x00, 0x45, 0x00, 0x00}},
		{"时钟24小时制", TimeColor(c, true), []byte{0x09, 0x00, 0x45, 0x00, 0x01}},
		{"温度摄氏", TempColor(c, false), []byte{0x09, 0x00, 0x45, 0x01, 0x00}},
		{"温度华氏", TempColor(c, true), []byte{0x09, 0x00, 0x45, 0x01, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.header, tt.cmd.Header)
			assert.Equal(t, []byte{0x10, 0x20, 0x30, 0xFF}, tt.cmd.Payload)
		})
	}
}

func TestTempUnit(t *testing.T) {
	assert.Equal(t, []byte{0x09, 0x00, 0x45, 0x01, 0x00}, TempUnit(false).Header)
	assert.Equal(t, []byte{0x09, 0x00, 0x45, 0x01, 0x01}, TempUnit(true).Header)
	assert.Empty(t, TempUnit(true).Payload)
}

func TestVolume(t *testing.T) {
	t.Run("编码", func(t *testing.T) {
		cmd := Volume(12)
		assert.Equal(t, []byte{0x04, 0x00, 0x08}, cmd.Header)
		assert.Equal(t, []byte{12}, cmd.Payload)
	})

	t.Run("范围校验", func(t *testing.T) {
		assert.NoError(t, ValidateVolume(0))
		assert.NoError(t, ValidateVolume(VolumeMax))
		assert.ErrorIs(t, ValidateVolume(-1), ErrVolumeRange)
		assert.ErrorIs(t, ValidateVolume(17), ErrVolumeRange)
	})
}

func TestSetClock(t *testing.T) {
	ts := time.Date(2026, time.October, 17, 13, 45, 30, 0, time.UTC)
	cmd := SetClock(ts)
	assert.Equal(t, []byte{0x0A, 0x00, 0x18, 0x1A, 0x14, 0x0A, 0x11, 0x0D, 0x2D, 0x1E}, cmd.Header)
	assert.Empty(t, cmd.Payload)

	// 午夜与世纪边界
	cmd = SetClock(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []byte{0x0A, 0x00, 0x18, 0x00, 0x14, 0x01, 0x01, 0x00, 0x00, 0x00}, cmd.Header)
}

func TestRadio(t *testing.T) {
	assert.Equal(t, []byte{0x04, 0x00, 0x05, 0x01}, Radio(true).Header)
	assert.Equal(t, []byte{0x04, 0x00, 0x05, 0x00}, Radio(false).Header)
}

func TestImageHeaders(t *testing.T) {
	p := make(PixelFrame, PixelFrameSize)

	t.Run("静态图片", func(t *testing.T) {
		cmd := Image(p)
		assert.Equal(t, []byte{0xBD, 0x00, 0x44, 0x00, 0x0A, 0x0A, 0x04}, cmd.Header)
		assert.Len(t, cmd.Payload, PixelFrameSize)
	})

	t.Run("动画帧", func(t *testing.T) {
		cmd := AnimationFrame(p, 3, 7)
		assert.Equal(t, []byte{0xBF, 0x00, 0x49, 0x00, 0x0A, 0x0A, 0x04, 0x03, 0x07}, cmd.Header)
		assert.Len(t, cmd.Payload, PixelFrameSize)
	})
}

func TestRaw(t *testing.T) {
	data := []byte{0x44, 0x01, 0x02}

	t.Run("原样透传", func(t *testing.T) {
		out := Raw(data, false)
		assert.Equal(t, data, out)
		out[0] = 0x00
		assert.Equal(t, byte(0x44), data[0], "输出不应与输入共享底层数组")
	})

	t.Run("转义", func(t *testing.T) {
		assert.Equal(t, []byte{0x44, 0x03, 0x04, 0x03, 0x05}, Raw(data, true))
	})
}
