package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taoyao-code/timebox/internal/config"
	"github.com/taoyao-code/timebox/internal/device"
	"github.com/taoyao-code/timebox/internal/imaging"
	"github.com/taoyao-code/timebox/internal/protocol/timebox"
	"github.com/taoyao-code/timebox/internal/storage"
	"github.com/taoyao-code/timebox/internal/transport"
)

// ackConn 记录写入，每次读取都返回一个应答字节
type ackConn struct {
	written bytes.Buffer
}

func (c *ackConn) Write(p []byte) (int, error) { return c.written.Write(p) }
func (c *ackConn) Read(p []byte) (int, error)  { p[0] = 0x01; return 1, nil }
func (c *ackConn) Close() error                { return nil }

type harness struct {
	cfg    *config.Config
	conn   *ackConn
	dialed []string
	// refuse 中的地址拨号失败
	refuse map[string]bool
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.KnownDevices.Backend = "bolt"
	cfg.KnownDevices.Path = filepath.Join(t.TempDir(), "known.db")
	return &harness{
		cfg:    cfg,
		conn:   &ackConn{},
		refuse: map[string]bool{},
		now:    time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC),
	}
}

// run 每次执行都使用新的命令树，配置在多次执行间共享
func (h *harness) run(args ...string) (string, error) {
	cfg := *h.cfg
	e := &env{
		cfg:    &cfg,
		logger: zap.NewNop(),
		now:    func() time.Time { return h.now },
		dial: func(_ context.Context, addr string) (*transport.Stream, error) {
			h.dialed = append(h.dialed, addr)
			if h.refuse[addr] {
				return nil, transport.ErrBadHello
			}
			return transport.NewStream(h.conn, transport.Options{}, nil), nil
		},
	}
	var out bytes.Buffer
	cmd := newRootCommand(&out, e)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDeviceCommands(t *testing.T) {
	when := time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)
	tests := []struct {
		name     string
		args     []string
		expected []byte
	}{
		{"切换视图", []string{"view", "clock"}, timebox.SwitchView(timebox.ViewClock).Frame()},
		{"时钟颜色12小时制", []string{"clock", "--color", "red", "--ampm"}, timebox.TimeColor(timebox.RGB{R: 0xFF}, false).Frame()},
		{"无颜色时钟", []string{"clock"}, timebox.SwitchView(timebox.ViewClock).Frame()},
		{"温度华氏", []string{"temp", "--color", "#00f", "-f"}, timebox.TempColor(timebox.RGB{B: 0xFF}, true).Frame()},
		{"音量", []string{"volume", "16"}, timebox.Volume(16).Frame()},
		{"校时", []string{"settime", "now"}, timebox.SetClock(when).Frame()},
		{"收音机关闭", []string{"fmradio", "--off"}, timebox.Radio(false).Frame()},
		{"收音机默认打开", []string{"fmradio"}, timebox.Radio(true).Frame()},
		{"原始字节转义", []string{"raw", "--mask", "0102"}, timebox.Raw([]byte{0x01, 0x02}, true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.run(append([]string{"--address", "11-75-58-aa-bb-cc"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, []string{"11:75:58:AA:BB:CC"}, h.dialed)
			assert.Equal(t, tt.expected, h.conn.written.Bytes())
		})
	}
}

func TestCommandValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"未知视图", []string{"view", "disco"}, timebox.ErrUnknownView},
		{"音量超范围", []string{"volume", "17"}, timebox.ErrVolumeRange},
		{"非法颜色", []string{"clock", "--color", "#12"}, imaging.ErrInvalidColor},
		{"非法日期", []string{"settime", "someday"}, device.ErrInvalidDate},
		{"非法十六进制", []string{"raw", "zz"}, device.ErrInvalidHex},
		{"未知缩放", []string{"image", "x.png", "--scaling", "sharp"}, imaging.ErrUnknownFilter},
		{"非法地址", []string{"view", "clock", "--address", "nope"}, transport.ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.run(tt.args...)
			assert.ErrorIs(t, err, tt.is)
			assert.Empty(t, h.dialed, "参数错误时不应连接设备")
		})
	}
}

func TestDiscoveryFromKnownDevices(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("view", "clock")
	assert.ErrorIs(t, err, ErrNoKnownDevices)

	out, err := h.run("devices", "add", "11:75:58:00:00:01", "--name", "desk")
	require.NoError(t, err)
	assert.Contains(t, out, "added 11:75:58:00:00:01")
	h.now = h.now.Add(time.Minute)
	_, err = h.run("devices", "add", "11:75:58:00:00:02")
	require.NoError(t, err)

	// 第一个设备不回应问候，使用第二个
	h.refuse["11:75:58:00:00:01"] = true
	h.now = h.now.Add(time.Hour)
	_, err = h.run("view", "temp")
	require.NoError(t, err)
	assert.Equal(t, []string{"11:75:58:00:00:01", "11:75:58:00:00:02"}, h.dialed)
	assert.Equal(t, timebox.SwitchView(timebox.ViewTemp).Frame(), h.conn.written.Bytes())

	out, err = h.run("devices", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "11:75:58:00:00:01  desk")
	assert.Contains(t, out, h.now.Format(time.RFC3339), "成功连接后记录最后在线时间")

	_, err = h.run("devices", "remove", "11:75:58:00:00:01")
	require.NoError(t, err)
	_, err = h.run("devices", "remove", "11:75:58:00:00:01")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// 唯一的已知设备也不可用
	h.refuse["11:75:58:00:00:02"] = true
	_, err = h.run("view", "temp")
	assert.ErrorIs(t, err, device.ErrNoDevice)
}

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, timebox.GridSize, timebox.GridSize))
	for y := 0; y < timebox.GridSize; y++ {
		for x := 0; x < timebox.GridSize; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageCommands(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), color.White)
	writePNG(t, filepath.Join(dir, "b.png"), color.Black)

	white, err := imaging.LoadImage(filepath.Join(dir, "a.png"), imaging.DefaultFilter)
	require.NoError(t, err)
	black, err := imaging.LoadImage(filepath.Join(dir, "b.png"), imaging.DefaultFilter)
	require.NoError(t, err)

	t.Run("图片", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("--address", "11:75:58:AA:BB:CC", "image", filepath.Join(dir, "a.png"))
		require.NoError(t, err)
		assert.Equal(t, timebox.Image(white).Frame(), h.conn.written.Bytes())
	})

	t.Run("目录动画", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("--address", "11:75:58:AA:BB:CC", "animation", dir, "--delay", "3")
		require.NoError(t, err)

		var expected []byte
		expected = append(expected, timebox.AnimationFrame(white, 0, 3).Frame()...)
		expected = append(expected, timebox.AnimationFrame(black, 1, 3).Frame()...)
		assert.Equal(t, expected, h.conn.written.Bytes())
	})

	t.Run("延时超范围", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("--address", "11:75:58:AA:BB:CC", "animation", dir, "--delay", "256")
		assert.ErrorContains(t, err, "delay")
		assert.Empty(t, h.dialed)
	})
}

func TestConfigInit(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "conf", "timebox.yaml")

	out, err := h.run("config", "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, h.cfg.KnownDevices.Path, loaded.KnownDevices.Path)

	_, err = h.run("config", "init", "--path", path)
	assert.ErrorIs(t, err, config.ErrConfigExists)
	_, err = h.run("config", "init", "--path", path, "--force")
	assert.NoError(t, err)
}
