package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taoyao-code/timebox/internal/app"
	"github.com/taoyao-code/timebox/internal/config"
	"github.com/taoyao-code/timebox/internal/device"
	"github.com/taoyao-code/timebox/internal/logging"
	"github.com/taoyao-code/timebox/internal/storage"
	"github.com/taoyao-code/timebox/internal/transport"
)

const (
	ConfigOptionName   = "config"
	AddressOptionName  = "address"
	DebugOptionName    = "debug"
	LogLevelOptionName = "log-level"
)

// ErrNoKnownDevices 未指定地址且没有已知设备
var ErrNoKnownDevices = errors.New("no known devices, pass --address or run 'timebox devices add'")

// env 命令共享的运行环境
type env struct {
	configPath string
	address    string
	logLevel   string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
	// dial 为空时按配置拨号，测试中注入内存连接
	dial transport.DialFunc
	now  func() time.Time
}

// NewRootCommand 创建 timebox 命令树
func NewRootCommand(out io.Writer) *cobra.Command {
	return newRootCommand(out, &env{})
}

func newRootCommand(out io.Writer, e *env) *cobra.Command {
	if e.now == nil {
		e.now = time.Now
	}
	cmd := &cobra.Command{
		Use:           "timebox",
		Short:         "Control a Timebox LED matrix over bluetooth",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVar(&e.configPath, ConfigOptionName, "", "Config file (default ./configs/timebox.yaml or $TIMEBOX_CONFIG)")
	cmd.PersistentFlags().StringVar(&e.address, AddressOptionName, "", "Device bluetooth address; known devices are tried when empty")
	cmd.PersistentFlags().BoolVar(&e.debug, DebugOptionName, false, "Log every frame written and response read")
	cmd.PersistentFlags().StringVar(&e.logLevel, LogLevelOptionName, "", "Log level: debug|info|warn|error")

	cmd.AddCommand(newViewCommand(e))
	cmd.AddCommand(newClockCommand(e))
	cmd.AddCommand(newTempCommand(e))
	cmd.AddCommand(newVolumeCommand(e))
	cmd.AddCommand(newSetTimeCommand(e))
	cmd.AddCommand(newRadioCommand(e))
	cmd.AddCommand(newRawCommand(e))
	cmd.AddCommand(newImageCommand(e))
	cmd.AddCommand(newAnimationCommand(e))
	cmd.AddCommand(newDevicesCommand(e))
	cmd.AddCommand(newConfigCommand(e))
	cmd.AddCommand(newServeCommand(e))
	return cmd
}

// init 加载配置并初始化日志；cfg 已注入时跳过加载
func (e *env) init(cmd *cobra.Command) error {
	if e.cfg == nil {
		cfg, err := config.Load(e.configPath)
		if err != nil {
			return err
		}
		e.cfg = cfg
	}
	if e.address != "" {
		addr, err := transport.NormalizeAddress(e.address)
		if err != nil {
			return err
		}
		e.cfg.Device.Address = addr
	}

	switch {
	case e.debug:
		e.cfg.Logging.Level = "debug"
	case e.logLevel != "":
		e.cfg.Logging.Level = e.logLevel
	case cmd.Name() != "serve":
		// 单次命令只输出告警
		e.cfg.Logging.Level = "warn"
	}

	if e.logger == nil {
		logger, err := logging.InitLogger(e.cfg.Logging)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		e.logger = logger
	}
	return nil
}

func (e *env) openStore() (storage.KnownDeviceStore, error) {
	return app.OpenKnownDevices(e.cfg.KnownDevices, e.cfg.Database, e.logger)
}

// connect 连接设备：指定地址（或串口）时直接拨号，否则依次尝试已知设备
func (e *env) connect(ctx context.Context) (*device.Client, error) {
	dial := e.dial
	if dial == nil {
		dc := e.cfg.Device
		if dc.Address == "" {
			// 发现流程必须靠问候报文识别设备
			dc.VerifyHello = true
		}
		dial = transport.Dialer(dc, e.logger)
	}

	addr := e.cfg.Device.Address
	if addr != "" || strings.EqualFold(e.cfg.Device.Transport, "serial") {
		e.logger.Debug("connecting", zap.String("address", addr))
		s, err := dial(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", addr, err)
		}
		return device.NewClient(s, e.logger, device.Options{Address: addr}), nil
	}

	store, err := e.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	known, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(known) == 0 {
		return nil, ErrNoKnownDevices
	}
	candidates := make([]string, 0, len(known))
	for _, d := range known {
		candidates = append(candidates, d.Address)
	}

	found, s, err := device.Discover(ctx, candidates, dial, e.logger)
	if err != nil {
		return nil, err
	}
	if err := store.Touch(ctx, found, e.now()); err != nil {
		e.logger.Warn("update last seen failed", zap.String("address", found), zap.Error(err))
	}
	return device.NewClient(s, e.logger, device.Options{Address: found}), nil
}

// withClient 连接设备执行 fn 后断开
func (e *env) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *device.Client) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := e.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}
