package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
gateway:
  dll_path: "C:/ths/tradej.dll"
  accounts_file: "C:/ths/account.json"
session:
  keepalive_interval: 20
api:
  port: 9090
database:
  enabled: true
  path: "/tmp/audit.db"
mqtt:
  enabled: true
  broker:
    host: "broker.local"
  qos: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gateway.DLLPath != "C:/ths/tradej.dll" {
		t.Errorf("Gateway.DLLPath = %q", cfg.Gateway.DLLPath)
	}
	if cfg.Gateway.AccountsFile != "C:/ths/account.json" {
		t.Errorf("Gateway.AccountsFile = %q", cfg.Gateway.AccountsFile)
	}
	if cfg.Gateway.ServersFile != "server.json" {
		t.Errorf("Gateway.ServersFile = %q, want default server.json", cfg.Gateway.ServersFile)
	}
	if cfg.KeepaliveInterval() != 20*time.Second {
		t.Errorf("KeepaliveInterval() = %v, want 20s", cfg.KeepaliveInterval())
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if !cfg.Database.Enabled || cfg.Database.Path != "/tmp/audit.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.MQTT.Broker.Host != "broker.local" || cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker = %+v", cfg.MQTT.Broker)
	}
	if cfg.MQTT.QoS != 0 {
		t.Errorf("MQTT.QoS = %d, want 0", cfg.MQTT.QoS)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "gateway: [unclosed")

	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if cfg.Gateway.DLLPath != "tradej.dll" {
		t.Errorf("Gateway.DLLPath = %q, want tradej.dll", cfg.Gateway.DLLPath)
	}
	if cfg.API.Port != 0 {
		t.Errorf("API.Port = %d, want 0 (broker port)", cfg.API.Port)
	}
	if cfg.KeepaliveInterval() != 0 {
		t.Errorf("KeepaliveInterval() = %v, want disabled", cfg.KeepaliveInterval())
	}
	if cfg.MQTT.Enabled || cfg.Database.Enabled || cfg.InfluxDB.Enabled || cfg.Security.JWT.Enabled {
		t.Error("optional integrations should be disabled by default")
	}
	if cfg.API.WriteTimeout() != 0 {
		t.Errorf("WriteTimeout() = %v, want 0 (unbounded native calls)", cfg.API.WriteTimeout())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("THSGATEWAY_DLL_PATH", "D:/tradej.dll")
	t.Setenv("THSGATEWAY_API_PORT", "8123")
	t.Setenv("THSGATEWAY_MQTT_HOST", "mqtt.example")
	t.Setenv("THSGATEWAY_MQTT_PASSWORD", "mqtt-secret")
	t.Setenv("THSGATEWAY_INFLUXDB_TOKEN", "influx-token")
	t.Setenv("THSGATEWAY_JWT_SECRET", "an-env-secret-that-is-long-enough-123")

	path := writeConfig(t, `
gateway:
  dll_path: "from-file.dll"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gateway.DLLPath != "D:/tradej.dll" {
		t.Errorf("Gateway.DLLPath = %q, want env override", cfg.Gateway.DLLPath)
	}
	if cfg.API.Port != 8123 {
		t.Errorf("API.Port = %d, want 8123", cfg.API.Port)
	}
	if cfg.MQTT.Broker.Host != "mqtt.example" || cfg.MQTT.Auth.Password != "mqtt-secret" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if cfg.InfluxDB.Token != "influx-token" {
		t.Errorf("InfluxDB.Token = %q", cfg.InfluxDB.Token)
	}
	if cfg.Security.JWT.Secret != "an-env-secret-that-is-long-enough-123" {
		t.Errorf("Security.JWT.Secret not overridden")
	}
}

func TestEnvOverrides_BadPortIgnored(t *testing.T) {
	t.Setenv("THSGATEWAY_API_PORT", "not-a-number")

	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if cfg.API.Port != 0 {
		t.Errorf("API.Port = %d, want 0", cfg.API.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:    "empty dll path",
			modify:  func(c *Config) { c.Gateway.DLLPath = "" },
			wantErr: "gateway.dll_path",
		},
		{
			name:    "negative keepalive",
			modify:  func(c *Config) { c.Session.KeepaliveInterval = -1 },
			wantErr: "session.keepalive_interval",
		},
		{
			name:    "port out of range",
			modify:  func(c *Config) { c.API.Port = 70000 },
			wantErr: "api.port",
		},
		{
			name:    "tls without certificate",
			modify:  func(c *Config) { c.API.TLS.Enabled = true },
			wantErr: "api.tls.cert_file",
		},
		{
			name: "database enabled without path",
			modify: func(c *Config) {
				c.Database.Enabled = true
				c.Database.Path = ""
			},
			wantErr: "database.path",
		},
		{
			name:    "bad qos",
			modify:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "influxdb without url",
			modify:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: "influxdb.url",
		},
		{
			name:    "jwt without secret",
			modify:  func(c *Config) { c.Security.JWT.Enabled = true },
			wantErr: "security.jwt.secret is required",
		},
		{
			name: "jwt with short secret",
			modify: func(c *Config) {
				c.Security.JWT.Enabled = true
				c.Security.JWT.Secret = "short"
			},
			wantErr: "at least 32 characters",
		},
		{
			name:   "jwt secret ignored when disabled",
			modify: func(c *Config) { c.Security.JWT.Secret = "short" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Gateway.DLLPath = ""
	cfg.MQTT.QoS = 5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if !strings.Contains(err.Error(), "gateway.dll_path") || !strings.Contains(err.Error(), "mqtt.qos") {
		t.Errorf("Validate() error = %q, want both problems reported", err)
	}
}
