// Package config 提供了端点框架的配置管理功能。
// 该包负责从 YAML 配置文件加载配置，并支持通过环境变量覆盖敏感配置项（如签名密钥）。
// 配置包含了服务器、服务标识、认证、日志、指标和遥测等多个方面的设置。
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是应用程序的主配置结构体，包含所有子系统的配置。
// 该结构体通过 YAML 标签与配置文件进行映射。
type Config struct {
	// Server 服务器配置，包括 HTTP 端口和超时设置
	Server ServerConfig `yaml:"server"`
	// Service 服务标识配置，写入每个响应的 meta.service
	Service ServiceConfig `yaml:"service"`
	// Auth 认证配置，包括签名密钥和凭证策略
	Auth AuthConfig `yaml:"auth"`
	// Logging 日志配置，包括日志级别和格式
	Logging LoggingConfig `yaml:"logging"`
	// Metrics 指标配置，用于 Prometheus 监控
	Metrics MetricsConfig `yaml:"metrics"`
	// Telemetry 遥测配置，用于分布式追踪
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig 服务器配置结构体。
type ServerConfig struct {
	// HTTPPort HTTP 服务端口
	// 默认值：8080
	HTTPPort int `yaml:"http_port"`
	// RequestTimeout 单个请求的处理超时时间
	// 默认值：60 秒
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// ShutdownTimeout 优雅关闭超时时间
	// 默认值：30 秒
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ServiceConfig 服务标识配置结构体。
// 这些字段出现在每个响应信封的 meta.service 和 meta.stage 中。
type ServiceConfig struct {
	// Name 服务名称
	// 默认值：strato-gateway
	Name string `yaml:"name"`
	// Version 服务版本号
	// 默认值：0.0.0
	Version string `yaml:"version"`
	// Stage 部署环境标签（如 dev、staging、prod）
	// 默认值：development
	Stage string `yaml:"stage"`
}

// AuthConfig 认证配置结构体。
type AuthConfig struct {
	// Secret 凭证签名密钥，可通过环境变量 STRATO_AUTH_SECRET 或
	// STRATO_AUTH_SECRET_FILE（文件路径）覆盖
	Secret string `yaml:"secret"`
	// APIKeyHeader API 密钥请求头名称
	// 默认值：X-API-Key
	APIKeyHeader string `yaml:"api_key_header"`
	// SessionTokenHeader 显式会话令牌请求头名称
	// 默认值：X-Session-Token
	SessionTokenHeader string `yaml:"session_token_header"`
	// AllowPrivilegedPersonas 是否允许签发 system/development 角色凭证
	// 默认值：false（仅 stage 为 development 时建议开启）
	AllowPrivilegedPersonas bool `yaml:"allow_privileged_personas"`
}

// LoggingConfig 日志配置结构体。
type LoggingConfig struct {
	// Level 日志级别（debug、info、warn、error）
	// 默认值：info
	Level string `yaml:"level"`
	// Format 日志格式（json、text）
	// 默认值：json
	Format string `yaml:"format"`
}

// MetricsConfig 指标配置结构体。
type MetricsConfig struct {
	// Enabled 是否启用指标采集
	Enabled bool `yaml:"enabled"`
	// Namespace 指标名称前缀
	// 默认值：strato
	Namespace string `yaml:"namespace"`
}

// TelemetryConfig 遥测配置结构体。
type TelemetryConfig struct {
	// Enabled 是否启用分布式追踪
	Enabled bool `yaml:"enabled"`
	// Endpoint OTLP 接收器的 gRPC 端点地址
	// 默认值：tempo:4317
	Endpoint string `yaml:"endpoint"`
	// SampleRate 采样率，取值范围 0.0 到 1.0
	// 默认值：0.1
	SampleRate float64 `yaml:"sample_rate"`
}

// Load 从指定路径加载配置文件。
// 加载后依次应用默认值和环境变量覆盖，并校验必填项。
//
// 参数：
//   - path: 配置文件的路径
//
// 返回值：
//   - *Config: 加载并处理后的配置对象
//   - error: 如果读取、解析或校验失败则返回错误
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults 应用默认配置值。
// 该方法为未设置的配置项填充合理的默认值，确保应用可以正常运行。
func (c *Config) applyDefaults() {
	// HTTP 端口默认为 8080
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	// 请求超时默认为 60 秒
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 60 * time.Second
	}
	// 优雅关闭超时默认为 30 秒
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	// 服务名称默认为 strato-gateway
	if c.Service.Name == "" {
		c.Service.Name = "strato-gateway"
	}
	// 服务版本默认为 0.0.0
	if c.Service.Version == "" {
		c.Service.Version = "0.0.0"
	}
	// 环境标识默认为 development
	if c.Service.Stage == "" {
		c.Service.Stage = "development"
	}
	// API 密钥请求头默认为 X-API-Key
	if c.Auth.APIKeyHeader == "" {
		c.Auth.APIKeyHeader = "X-API-Key"
	}
	// 会话令牌请求头默认为 X-Session-Token
	if c.Auth.SessionTokenHeader == "" {
		c.Auth.SessionTokenHeader = "X-Session-Token"
	}
	// 日志级别默认为 info
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	// 日志格式默认为 json
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	// 指标命名空间默认为 strato
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "strato"
	}
	// OTLP 端点默认为 tempo:4317
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "tempo:4317"
	}
	// 采样率默认为 10%
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 0.1
	}
}

// applyEnvOverrides 应用环境变量覆盖。
// 该方法允许通过环境变量覆盖敏感配置项，支持两种方式：
// 1. 直接设置环境变量（如 STRATO_AUTH_SECRET）
// 2. 通过 _FILE 后缀指定包含密钥的文件路径（如 STRATO_AUTH_SECRET_FILE）
// _FILE 方式优先级更高，适用于 Docker Secrets 等场景。
func (c *Config) applyEnvOverrides() {
	if v := readEnvOrFile("STRATO_AUTH_SECRET", "STRATO_AUTH_SECRET_FILE"); v != "" {
		c.Auth.Secret = v
	}
	if v := strings.TrimSpace(os.Getenv("STRATO_SERVICE_STAGE")); v != "" {
		c.Service.Stage = v
	}
}

// validate 校验必填配置项。
// 签名密钥缺失时服务无法安全运行，必须在启动时失败。
func (c *Config) validate() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required (set STRATO_AUTH_SECRET or STRATO_AUTH_SECRET_FILE)")
	}
	return nil
}

// readEnvOrFile 从环境变量或文件读取配置值。
// 优先从 fileKey 指定的文件路径读取，如果文件不存在或读取失败，
// 则从 envKey 指定的环境变量读取。
//
// 参数：
//   - envKey: 直接存储值的环境变量名
//   - fileKey: 存储文件路径的环境变量名
//
// 返回值：
//   - string: 读取到的配置值，如果都未设置则返回空字符串
func readEnvOrFile(envKey, fileKey string) string {
	if filePath := strings.TrimSpace(os.Getenv(fileKey)); filePath != "" {
		if b, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	return strings.TrimSpace(os.Getenv(envKey))
}
