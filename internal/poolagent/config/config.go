// Package config 加载 poolagent 配置
//
// 优先级：环境变量 > 配置文件（POOLAGENT_CONFIG）> 默认值
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLibvirtURI = "qemu:///system"
	DefaultAddress    = "0.0.0.0:7780"
	DefaultSubject    = "poolagent.storage.iq"
)

type Config struct {
	// LibvirtURI 是 libvirt 连接 URI
	// 支持 qemu:///system、qemu+ssh://user@host/system、qemu+tcp://host/system
	// 可以通过环境变量 LIBVIRT_URI 配置
	LibvirtURI string `yaml:"libvirtURI"`

	// Address HTTP 监听地址，环境变量 POOLAGENT_ADDRESS
	Address string `yaml:"address"`

	NATS NATSConfig `yaml:"nats"`

	// LogLevel zerolog 日志级别，环境变量 POOLAGENT_LOG_LEVEL
	LogLevel string `yaml:"logLevel"`

	// TraceStdout 为 true 时把 span 输出到标准输出，环境变量 POOLAGENT_TRACE_STDOUT
	TraceStdout bool `yaml:"traceStdout"`
}

// NATSConfig URL 为空时不启用 NATS 通道
type NATSConfig struct {
	URL     string `yaml:"url"`     // POOLAGENT_NATS_URL
	Subject string `yaml:"subject"` // POOLAGENT_NATS_SUBJECT
}

func New() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("POOLAGENT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		LibvirtURI: DefaultLibvirtURI,
		Address:    DefaultAddress,
		NATS: NATSConfig{
			Subject: DefaultSubject,
		},
		LogLevel: zerolog.LevelInfoValue,
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	// 兼容 POOLAGENT_LIBVIRT_URI，LIBVIRT_URI 优先
	if uri := os.Getenv("POOLAGENT_LIBVIRT_URI"); uri != "" {
		c.LibvirtURI = uri
	}
	if uri := os.Getenv("LIBVIRT_URI"); uri != "" {
		c.LibvirtURI = uri
	}
	if addr := os.Getenv("POOLAGENT_ADDRESS"); addr != "" {
		c.Address = addr
	}
	if url := os.Getenv("POOLAGENT_NATS_URL"); url != "" {
		c.NATS.URL = url
	}
	if subject := os.Getenv("POOLAGENT_NATS_SUBJECT"); subject != "" {
		c.NATS.Subject = subject
	}
	if level := os.Getenv("POOLAGENT_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if v := os.Getenv("POOLAGENT_TRACE_STDOUT"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse POOLAGENT_TRACE_STDOUT %q: %w", v, err)
		}
		c.TraceStdout = enabled
	}
	return nil
}

// Validate 检查配置是否完整
func (c *Config) Validate() error {
	if c.LibvirtURI == "" {
		return fmt.Errorf("libvirt uri is empty")
	}
	if c.Address == "" {
		return fmt.Errorf("listen address is empty")
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats subject is empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level 返回解析后的日志级别
func (c *Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
