package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

const minimalConfig = `
auth:
  jwt_secret: test-secret-0123456789
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("默认端口应为 8080，实际 %d", cfg.Server.Port)
	}
	if cfg.Store.Backend != StoreBackendPostgres {
		t.Errorf("默认存储应为 postgres，实际 %s", cfg.Store.Backend)
	}
	if cfg.Auth.AccessTokenTTL != 12*time.Hour {
		t.Errorf("默认 TTL 应为 12h，实际 %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.RateLimit.AssignWindow != time.Minute {
		t.Errorf("默认限流窗口应为 1m，实际 %v", cfg.RateLimit.AssignWindow)
	}
	if cfg.NATS.Timeout != 5*time.Second {
		t.Errorf("默认 NATS 超时应为 5s，实际 %v", cfg.NATS.Timeout)
	}
	if got := cfg.Schedule.Capacities.Class["sparta"]; got != 40 {
		t.Errorf("未配置课程安排时应使用默认安排，sparta=%d", got)
	}
	if got := len(cfg.Schedule.Capacities.TA); got != 5 {
		t.Errorf("默认 TA 数应为 5，实际 %d", got)
	}
}

func TestLoad_CustomScheduleNotMergedWithDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
schedule:
  capacities:
    class: { rome: 3 }
    recitations: { ostia: 5, capua: 5 }
    ta: { cato: 2 }
  recitations:
    ostia: { day: A }
    capua: { day: B }
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}

	if len(cfg.Schedule.Capacities.Class) != 1 || cfg.Schedule.Capacities.Class["rome"] != 3 {
		t.Errorf("自定义 class 不应混入默认 section: %v", cfg.Schedule.Capacities.Class)
	}
	if _, ok := cfg.Schedule.Recitations["corinth"]; ok {
		t.Error("自定义习题课不应混入默认 corinth")
	}
	if cfg.Schedule.Recitations["capua"].Day != "B" {
		t.Errorf("capua 日期应为 B，实际 %q", cfg.Schedule.Recitations["capua"].Day)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ROUTER_SERVER_PORT", "9090")
	t.Setenv("ROUTER_STORE_BACKEND", "badger")

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("环境变量应覆盖端口，实际 %d", cfg.Server.Port)
	}
	if cfg.Store.Backend != StoreBackendBadger {
		t.Errorf("环境变量应覆盖存储后端，实际 %s", cfg.Store.Backend)
	}
}

func TestLoad_MissingSecretFails(t *testing.T) {
	if _, err := Load(writeConfig(t, "server:\n  port: 8080\n")); err == nil {
		t.Error("缺少 jwt_secret 时应返回错误")
	}
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load("config.yaml")
	if err != nil {
		t.Fatalf("示例配置应能加载: %v", err)
	}
	if cfg.Store.Backend != StoreBackendBadger {
		t.Errorf("示例配置存储应为 badger，实际 %s", cfg.Store.Backend)
	}
	if cfg.Schedule.Recitations["argos"].Day != "A" {
		t.Errorf("argos 应属于 A 组")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			Auth:   AuthConfig{JWTSecret: "0123456789abcdef"},
			Store:  StoreConfig{Backend: StoreBackendNATS},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Valid", func(*Config) {}, false},
		{"EmptySecret", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"ShortSecret", func(c *Config) { c.Auth.JWTSecret = "short" }, true},
		{"PortZero", func(c *Config) { c.Server.Port = 0 }, true},
		{"PortTooLarge", func(c *Config) { c.Server.Port = 70000 }, true},
		{"UnknownBackend", func(c *Config) { c.Store.Backend = "sqlite" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
