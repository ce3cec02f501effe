package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/push"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	return *conf
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr     string      `toml:"addr"`
	Log      Log         `toml:"log"`
	Postgres PGConfig    `toml:"postgres"`
	Redis    RedisConfig `toml:"redis"`

	Push push.FCMConfig `toml:"push"`

	Realtime     RealtimeConfig     `toml:"realtime"`
	Notification NotificationConfig `toml:"notification"`

	Security Security `toml:"security"`
}

type Security struct {
	JWTSecret     string `toml:"jwt_secret"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
}

func (s Security) TokenTTL() time.Duration {
	if s.TokenTTLHours <= 0 {
		return 24 * 7 * time.Hour
	}
	return time.Duration(s.TokenTTLHours) * time.Hour
}

type RealtimeConfig struct {
	TypingTTLSeconds     int `toml:"typing_ttl_seconds"`
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
}

func (r *RealtimeConfig) TypingTTL() time.Duration {
	if r.TypingTTLSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(r.TypingTTLSeconds) * time.Second
}

func (r RealtimeConfig) SweepInterval() time.Duration {
	if r.SweepIntervalSeconds <= 0 {
		return time.Second
	}
	return time.Duration(r.SweepIntervalSeconds) * time.Second
}

type NotificationConfig struct {
	BatchSize           uint64 `toml:"batch_size"`
	MaxAttempts         int    `toml:"max_attempts"`
	RetryBackoffSeconds int64  `toml:"retry_backoff_seconds"`
	RetentionDays       int    `toml:"retention_days"`
	CycleSeconds        int    `toml:"cycle_seconds"`
}

// WithDefaults fills the zero values so a minimal config file still yields a
// working dispatcher.
func (n NotificationConfig) WithDefaults() NotificationConfig {
	if n.BatchSize == 0 {
		n.BatchSize = 100
	}
	if n.MaxAttempts <= 0 {
		n.MaxAttempts = 3
	}
	if n.RetryBackoffSeconds <= 0 {
		n.RetryBackoffSeconds = 60
	}
	if n.RetentionDays <= 0 {
		n.RetentionDays = 30
	}
	if n.CycleSeconds <= 0 {
		n.CycleSeconds = 10
	}
	return n
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("CHATAPP_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.Redis.FromENV()
	c.Push.Endpoint = os.Getenv("CHATAPP_PUSH_ENDPOINT")
	c.Push.ServerKey = os.Getenv("CHATAPP_PUSH_SERVER_KEY")
	c.Security.JWTSecret = os.Getenv("CHATAPP_JWT_SECRET")
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("CHATAPP_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`

	PoolSize     int `toml:"pool_size"`
	MinIdleConns int `toml:"min_idle_conns"`
	DialTimeout  int `toml:"dial_timeout"`
	ReadTimeout  int `toml:"read_timeout"`
	WriteTimeout int `toml:"write_timeout"`
}

func (r *RedisConfig) FromENV() {
	r.Addr = os.Getenv("CHATAPP_REDIS_ADDR")
	r.Password = os.Getenv("CHATAPP_REDIS_PASSWORD")
	if dbStr := os.Getenv("CHATAPP_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			r.DB = db
		}
	}
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("CHATAPP_LOG_LEVEL")
	l.Path = os.Getenv("CHATAPP_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
