package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	Env  string `mapstructure:"env" yaml:"env"`
}

// DeviceConfig 设备连接配置
type DeviceConfig struct {
	// Transport rfcomm | serial
	Transport      string        `mapstructure:"transport" yaml:"transport"`
	Address        string        `mapstructure:"address" yaml:"address"`
	Channel        int           `mapstructure:"channel" yaml:"channel"`
	SerialPort     string        `mapstructure:"serialPort" yaml:"serialPort"`
	Baud           int           `mapstructure:"baud" yaml:"baud"`
	ConnectTimeout time.Duration `mapstructure:"connectTimeout" yaml:"connectTimeout"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout" yaml:"readTimeout"`
	VerifyHello    bool          `mapstructure:"verifyHello" yaml:"verifyHello"`
	// MaxFramesPerSecond 写入节流，0 表示不限制
	MaxFramesPerSecond int           `mapstructure:"maxFramesPerSecond" yaml:"maxFramesPerSecond"`
	FrameBurst         int           `mapstructure:"frameBurst" yaml:"frameBurst"`
	Breaker            BreakerConfig `mapstructure:"breaker" yaml:"breaker"`
}

// BreakerConfig 连续发送失败后的熔断配置
type BreakerConfig struct {
	Threshold int           `mapstructure:"threshold" yaml:"threshold"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// RenderConfig 图片转换默认参数
type RenderConfig struct {
	Scaling string `mapstructure:"scaling" yaml:"scaling"`
	Delay   int    `mapstructure:"delay" yaml:"delay"`
}

// KnownDevicesConfig 已知设备存储
type KnownDevicesConfig struct {
	// Backend bolt | postgres | none
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout" yaml:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout" yaml:"writeTimeout"`
	Pprof        HTTPPprof     `mapstructure:"pprof" yaml:"pprof"`
}

// HTTPPprof HTTP pprof 配置
type HTTPPprof struct {
	Enable bool   `mapstructure:"enable" yaml:"enable"`
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// AuthConfig API Key 认证
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	APIKeys []string `mapstructure:"apiKeys" yaml:"apiKeys"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename" yaml:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize" yaml:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups" yaml:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge" yaml:"maxAge"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level" yaml:"level"`
	Format string           `mapstructure:"format" yaml:"format"`
	File   LumberjackConfig `mapstructure:"file" yaml:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable" yaml:"enable"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// QueueConfig 下发任务队列
type QueueConfig struct {
	// Backend memory | redis
	Backend  string `mapstructure:"backend" yaml:"backend"`
	Capacity int    `mapstructure:"capacity" yaml:"capacity"`
	// PollInterval 队列为空时的轮询间隔
	PollInterval time.Duration `mapstructure:"pollInterval" yaml:"pollInterval"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	Password     string        `mapstructure:"password" yaml:"password"`
	DB           int           `mapstructure:"db" yaml:"db"`
	PoolSize     int           `mapstructure:"poolSize" yaml:"poolSize"`
	MinIdleConns int           `mapstructure:"minIdleConns" yaml:"minIdleConns"`
	DialTimeout  time.Duration `mapstructure:"dialTimeout" yaml:"dialTimeout"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout" yaml:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout" yaml:"writeTimeout"`
}

// DatabaseConfig PostgreSQL 连接配置，DSN 为空时不记录命令历史
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime" yaml:"connMaxLifetime"`
}

// Config 顶层配置结构
type Config struct {
	App          AppConfig          `mapstructure:"app" yaml:"app"`
	Device       DeviceConfig       `mapstructure:"device" yaml:"device"`
	Render       RenderConfig       `mapstructure:"render" yaml:"render"`
	KnownDevices KnownDevicesConfig `mapstructure:"knownDevices" yaml:"knownDevices"`
	HTTP         HTTPConfig         `mapstructure:"http" yaml:"http"`
	Auth         AuthConfig         `mapstructure:"auth" yaml:"auth"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics" yaml:"metrics"`
	Queue        QueueConfig        `mapstructure:"queue" yaml:"queue"`
	Redis        RedisConfig        `mapstructure:"redis" yaml:"redis"`
	Database     DatabaseConfig     `mapstructure:"database" yaml:"database"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 TIMEBOX_CONFIG 读取；否则回退到 configs/timebox.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv("TIMEBOX_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if dir, err := DataDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("timebox")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	// 环境变量覆盖：前缀 TIMEBOX_，并将点号替换为下划线
	v.SetEnvPrefix("TIMEBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if fmt.Sprintf("%T", err) != fmt.Sprintf("%T", notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Default 仅包含默认值的配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// 默认值均为合法类型，不会失败
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// DataDir 用户数据目录（已知设备库、默认配置）
func DataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "timebox"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "timebox")
	v.SetDefault("app.env", "dev")

	v.SetDefault("device.transport", "rfcomm")
	v.SetDefault("device.address", "")
	v.SetDefault("device.channel", 4)
	v.SetDefault("device.serialPort", "/dev/rfcomm0")
	v.SetDefault("device.baud", 115200)
	v.SetDefault("device.connectTimeout", "10s")
	v.SetDefault("device.readTimeout", "5s")
	v.SetDefault("device.verifyHello", true)
	v.SetDefault("device.maxFramesPerSecond", 0)
	v.SetDefault("device.frameBurst", 1)
	v.SetDefault("device.breaker.threshold", 5)
	v.SetDefault("device.breaker.timeout", "30s")

	v.SetDefault("render.scaling", "bicubic")
	v.SetDefault("render.delay", 0)

	v.SetDefault("knownDevices.backend", "bolt")
	knownPath := "known_devices.db"
	if dir, err := DataDir(); err == nil {
		knownPath = filepath.Join(dir, "known_devices.db")
	}
	v.SetDefault("knownDevices.path", knownPath)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")
	v.SetDefault("http.pprof.enable", false)
	v.SetDefault("http.pprof.prefix", "/debug/pprof")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.apiKeys", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("queue.backend", "memory")
	v.SetDefault("queue.capacity", 64)
	v.SetDefault("queue.pollInterval", "200ms")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.minIdleConns", 2)
	v.SetDefault("redis.dialTimeout", "5s")
	v.SetDefault("redis.readTimeout", "3s")
	v.SetDefault("redis.writeTimeout", "3s")

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "1h")
}
