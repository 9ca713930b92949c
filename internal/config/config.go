package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 会话模式
const (
	SessionModeShared   = "shared"   // 所有连接共享一个命令会话（单一全局设备语义）
	SessionModeIsolated = "isolated" // 每个连接独立的命令/响应缓冲区，共享记录表
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// TCPConfig TCP 网关配置
type TCPConfig struct {
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	MaxConnections int           `mapstructure:"maxConnections"`
	AcquireTimeout time.Duration `mapstructure:"acquireTimeout"`
	AcceptRate     int           `mapstructure:"acceptRate"`  // 每秒允许建立的连接数，0 表示不限
	AcceptBurst    int           `mapstructure:"acceptBurst"` // 突发容量
	ReadBufferSize int           `mapstructure:"readBufferSize"`
}

// RecordConfig 记录命令协议配置
type RecordConfig struct {
	CommandCapacity  int    `mapstructure:"commandCapacity"`  // 命令缓冲区容量 C
	ResponseCapacity int    `mapstructure:"responseCapacity"` // 响应缓冲区容量，0 表示 2*C
	SessionMode      string `mapstructure:"sessionMode"`      // shared | isolated
}

// SessionConfig 连接会话登记配置
type SessionConfig struct {
	Timeout time.Duration `mapstructure:"timeout"` // 无活动超时，超过视为离线
}

// RedisConfig Redis 配置（启用后连接会话登记写入 Redis，支持多实例）
type RedisConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Addr             string        `mapstructure:"addr"`
	Password         string        `mapstructure:"password"`
	DB               int           `mapstructure:"db"`
	PoolSize         int           `mapstructure:"poolSize"`
	MinIdleConns     int           `mapstructure:"minIdleConns"`
	DialTimeout      time.Duration `mapstructure:"dialTimeout"`
	ReadTimeout      time.Duration `mapstructure:"readTimeout"`
	WriteTimeout     time.Duration `mapstructure:"writeTimeout"`
	BreakerThreshold int           `mapstructure:"breakerThreshold"`
	BreakerTimeout   time.Duration `mapstructure:"breakerTimeout"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// Config 顶层配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	TCP     TCPConfig     `mapstructure:"tcp"`
	Record  RecordConfig  `mapstructure:"record"`
	Session SessionConfig `mapstructure:"session"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 RECORD_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	// 环境变量覆盖：前缀 RECORD_，并将点号替换为下划线
	v.SetEnvPrefix("RECORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("config")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	// 默认值
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验关键配置
func (c *Config) Validate() error {
	if c.Record.CommandCapacity < 2 {
		return fmt.Errorf("record.commandCapacity must be >= 2, got %d", c.Record.CommandCapacity)
	}
	if c.Record.ResponseCapacity != 0 && c.Record.ResponseCapacity < c.Record.CommandCapacity {
		return fmt.Errorf("record.responseCapacity (%d) must be >= commandCapacity (%d)",
			c.Record.ResponseCapacity, c.Record.CommandCapacity)
	}
	switch c.Record.SessionMode {
	case SessionModeShared, SessionModeIsolated:
	default:
		return fmt.Errorf("record.sessionMode must be %q or %q, got %q",
			SessionModeShared, SessionModeIsolated, c.Record.SessionMode)
	}
	return nil
}

// EffectiveResponseCapacity 响应缓冲区实际容量
func (r RecordConfig) EffectiveResponseCapacity() int {
	if r.ResponseCapacity > 0 {
		return r.ResponseCapacity
	}
	return 2 * r.CommandCapacity
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "record-server")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")

	v.SetDefault("tcp.addr", ":7000")
	v.SetDefault("tcp.readTimeout", "300s")
	v.SetDefault("tcp.writeTimeout", "10s")
	v.SetDefault("tcp.maxConnections", 1024)
	v.SetDefault("tcp.acquireTimeout", "2s")
	v.SetDefault("tcp.acceptRate", 100)
	v.SetDefault("tcp.acceptBurst", 200)
	v.SetDefault("tcp.readBufferSize", 4096)

	v.SetDefault("record.commandCapacity", 1023)
	v.SetDefault("record.responseCapacity", 0)
	v.SetDefault("record.sessionMode", SessionModeIsolated)

	v.SetDefault("session.timeout", "5m")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 20)
	v.SetDefault("redis.minIdleConns", 2)
	v.SetDefault("redis.dialTimeout", "5s")
	v.SetDefault("redis.readTimeout", "3s")
	v.SetDefault("redis.writeTimeout", "3s")
	v.SetDefault("redis.breakerThreshold", 5)
	v.SetDefault("redis.breakerTimeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/record-server.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
}
