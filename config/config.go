// Package config loads the relay configuration from a YAML file with
// sensible defaults for the common single-device setup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the complete relay configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Network NetworkConfig `yaml:"network"`
	Mirror  MirrorConfig  `yaml:"mirror"`
	Log     LogConfig     `yaml:"log"`
}

// SerialConfig describes the sensor source.
type SerialConfig struct {
	Device        string `yaml:"device"`
	Baud          int    `yaml:"baud"`
	ReadTimeoutMs int    `yaml:"readTimeoutMs"`
}

// NetworkConfig holds the subscriber listen address.
type NetworkConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// MirrorConfig gates the optional Redis stream mirror.
type MirrorConfig struct {
	Enabled   bool   `yaml:"enabled"`
	RedisAddr string `yaml:"redisAddr"`
	Channel   string `yaml:"channel"`
}

// LogConfig controls optional rotating file logging. An empty File keeps
// logs on stderr only.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// Default returns the configuration used when no file is supplied. The baud
// rate matches what the firmware ships with.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Baud:          921600,
			ReadTimeoutMs: 100,
		},
		Network: NetworkConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Mirror: MirrorConfig{
			RedisAddr: "localhost:6379",
			Channel:   "touchrelay:stream",
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the relay cannot run without. The serial
// device is deliberately not required here: main lets a flag supply it.
func (c *Config) Validate() error {
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", c.Serial.Baud)
	}
	if c.Serial.ReadTimeoutMs <= 0 {
		return fmt.Errorf("serial.readTimeoutMs must be positive, got %d", c.Serial.ReadTimeoutMs)
	}
	if c.Network.Port <= 0 || c.Network.Port > 65535 {
		return fmt.Errorf("network.port out of range: %d", c.Network.Port)
	}
	if c.Mirror.Enabled {
		if c.Mirror.RedisAddr == "" {
			return fmt.Errorf("mirror.redisAddr required when mirror is enabled")
		}
		if c.Mirror.Channel == "" {
			return fmt.Errorf("mirror.channel required when mirror is enabled")
		}
	}
	return nil
}

// ReadTimeout returns the serial read timeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Serial.ReadTimeoutMs) * time.Millisecond
}

// ListenAddr returns the host:port the subscriber server binds.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Network.Host, c.Network.Port)
}
