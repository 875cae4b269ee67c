// Package config 提供了端点框架的配置管理功能。
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeConfigFile 将配置文本写入临时文件并返回路径。
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// TestLoad_Defaults 测试最小配置文件加载后的默认值填充。
func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
auth:
  secret: test-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPPort != 8080 {
		t.Errorf("Server.HTTPPort = %d, want 8080", cfg.Server.HTTPPort)
	}
	if cfg.Server.RequestTimeout != 60*time.Second {
		t.Errorf("Server.RequestTimeout = %v, want 60s", cfg.Server.RequestTimeout)
	}
	if cfg.Service.Name != "strato-gateway" {
		t.Errorf("Service.Name = %s, want strato-gateway", cfg.Service.Name)
	}
	if cfg.Service.Stage != "development" {
		t.Errorf("Service.Stage = %s, want development", cfg.Service.Stage)
	}
	if cfg.Auth.APIKeyHeader != "X-API-Key" {
		t.Errorf("Auth.APIKeyHeader = %s, want X-API-Key", cfg.Auth.APIKeyHeader)
	}
	if cfg.Auth.SessionTokenHeader != "X-Session-Token" {
		t.Errorf("Auth.SessionTokenHeader = %s, want X-Session-Token", cfg.Auth.SessionTokenHeader)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
	if cfg.Metrics.Namespace != "strato" {
		t.Errorf("Metrics.Namespace = %s, want strato", cfg.Metrics.Namespace)
	}
	if cfg.Telemetry.SampleRate != 0.1 {
		t.Errorf("Telemetry.SampleRate = %v, want 0.1", cfg.Telemetry.SampleRate)
	}
}

// TestLoad_ExplicitValues 测试配置文件的显式值优先于默认值。
func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfigFile(t, `
server:
  http_port: 9090
  request_timeout: 15s
service:
  name: widget-svc
  version: 1.4.0
  stage: production
auth:
  secret: test-secret
  allow_privileged_personas: true
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPPort != 9090 {
		t.Errorf("Server.HTTPPort = %d, want 9090", cfg.Server.HTTPPort)
	}
	if cfg.Server.RequestTimeout != 15*time.Second {
		t.Errorf("Server.RequestTimeout = %v, want 15s", cfg.Server.RequestTimeout)
	}
	if cfg.Service.Name != "widget-svc" || cfg.Service.Stage != "production" {
		t.Errorf("Service = %+v, want widget-svc/production", cfg.Service)
	}
	if !cfg.Auth.AllowPrivilegedPersonas {
		t.Error("Auth.AllowPrivilegedPersonas = false, want true")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want debug/text", cfg.Logging)
	}
}

// TestLoad_EnvOverrides 测试环境变量对敏感配置项的覆盖。
func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
auth:
  secret: from-file
`)

	t.Run("secret from env", func(t *testing.T) {
		t.Setenv("STRATO_AUTH_SECRET", "from-env")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Auth.Secret != "from-env" {
			t.Errorf("Auth.Secret = %s, want from-env", cfg.Auth.Secret)
		}
	})

	t.Run("secret file wins over env", func(t *testing.T) {
		secretPath := filepath.Join(t.TempDir(), "secret")
		if err := os.WriteFile(secretPath, []byte("from-secret-file\n"), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		t.Setenv("STRATO_AUTH_SECRET", "from-env")
		t.Setenv("STRATO_AUTH_SECRET_FILE", secretPath)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		// 文件内容去除首尾空白后生效
		if cfg.Auth.Secret != "from-secret-file" {
			t.Errorf("Auth.Secret = %s, want from-secret-file", cfg.Auth.Secret)
		}
	})

	t.Run("stage from env", func(t *testing.T) {
		t.Setenv("STRATO_SERVICE_STAGE", "staging")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Service.Stage != "staging" {
			t.Errorf("Service.Stage = %s, want staging", cfg.Service.Stage)
		}
	})
}

// TestLoad_Validation 测试必填项校验和文件错误。
func TestLoad_Validation(t *testing.T) {
	t.Run("missing secret fails", func(t *testing.T) {
		path := writeConfigFile(t, `
service:
  name: widget-svc
`)
		if _, err := Load(path); err == nil {
			t.Error("Load() accepted a config without a signing secret")
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("Load() accepted a nonexistent path")
		}
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := writeConfigFile(t, "auth: [broken")
		if _, err := Load(path); err == nil {
			t.Error("Load() accepted malformed yaml")
		}
	})
}
