package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Logs   Logs         `yaml:"logs"`
	Source Source       `yaml:"source"`
	EPG    EPG          `yaml:"epg"`
	Fetch  Fetch        `yaml:"fetch"`
	State  State        `yaml:"state"`
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server configuration validation failed: %w", err)
	}

	if err := c.Logs.Validate(); err != nil {
		return fmt.Errorf("logs configuration validation failed: %w", err)
	}

	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source configuration validation failed: %w", err)
	}

	if err := c.EPG.Validate(); err != nil {
		return fmt.Errorf("epg configuration validation failed: %w", err)
	}

	if err := c.Fetch.Validate(); err != nil {
		return fmt.Errorf("fetch configuration validation failed: %w", err)
	}

	if err := c.State.Validate(); err != nil {
		return fmt.Errorf("state configuration validation failed: %w", err)
	}

	return nil
}

type ServerConfig struct {
	ListenAddr  string `yaml:"listen"`
	MetricsAddr string `yaml:"metrics_listen,omitempty"`
}

func (s *ServerConfig) Validate() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	return nil
}

type Logs struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

func (l *Logs) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", l.Format)
	}

	if l.MaxSizeMB < 0 {
		return fmt.Errorf("max_size_mb cannot be negative")
	}

	return nil
}

type State struct {
	Path string `yaml:"path"`
}

func (s *State) Validate() error {
	if s.Path == "" {
		return fmt.Errorf("state path is required")
	}
	return nil
}
