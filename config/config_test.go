package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Serial.Baud != 921600 {
		t.Errorf("default baud = %d, want 921600", cfg.Serial.Baud)
	}
	if cfg.ReadTimeout() != 100*time.Millisecond {
		t.Errorf("default read timeout = %s, want 100ms", cfg.ReadTimeout())
	}
	if cfg.ListenAddr() != "0.0.0.0:8000" {
		t.Errorf("default listen addr = %s", cfg.ListenAddr())
	}
	if cfg.Mirror.Enabled {
		t.Error("mirror enabled by default")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	data := `
serial:
  device: /dev/ttyUSB0
  baud: 115200
network:
  host: 127.0.0.1
  port: 9000
mirror:
  enabled: true
  redisAddr: redis:6379
  channel: sensors
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serial.Device != "/dev/ttyUSB0" || cfg.Serial.Baud != 115200 {
		t.Errorf("serial = %+v", cfg.Serial)
	}
	if cfg.ListenAddr() != "127.0.0.1:9000" {
		t.Errorf("listen addr = %s", cfg.ListenAddr())
	}
	if !cfg.Mirror.Enabled || cfg.Mirror.Channel != "sensors" {
		t.Errorf("mirror = %+v", cfg.Mirror)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Serial.ReadTimeoutMs != 100 {
		t.Errorf("readTimeoutMs = %d, want default 100", cfg.Serial.ReadTimeoutMs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero baud",
			mutate:  func(c *Config) { c.Serial.Baud = 0 },
			wantErr: "serial.baud",
		},
		{
			name:    "negative read timeout",
			mutate:  func(c *Config) { c.Serial.ReadTimeoutMs = -1 },
			wantErr: "serial.readTimeoutMs",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Network.Port = 70000 },
			wantErr: "network.port",
		},
		{
			name: "mirror enabled without address",
			mutate: func(c *Config) {
				c.Mirror.Enabled = true
				c.Mirror.RedisAddr = ""
			},
			wantErr: "mirror.redisAddr",
		},
		{
			name: "mirror enabled without channel",
			mutate: func(c *Config) {
				c.Mirror.Enabled = true
				c.Mirror.Channel = ""
			},
			wantErr: "mirror.channel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}
