package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCacheDir is the response cache directory used when none is
// configured, relative to the working directory.
const DefaultCacheDir = "picasa_api_cache"

type Config struct {
	LogLevel  string `yaml:"log_level"`  // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"pretty_log"` // true => zap dev (color), false => zap prod (JSON)

	Host        string        `yaml:"host"`         // provider host, overridable for testing
	HTTPTimeout time.Duration `yaml:"http_timeout"` // timeout for feed reads and raw exchanges

	CacheBackend  string        `yaml:"cache_backend"`  // "file" | "memory" | "redis" | "off"
	CacheDir      string        `yaml:"cache_dir"`      // file backend directory
	CacheTTL      time.Duration `yaml:"cache_ttl"`      // freshness window (default 2h)
	SweepInterval time.Duration `yaml:"sweep_interval"` // file backend janitor period

	AuthSource   string `yaml:"auth_source"`   // ClientLogin application source override
	CallbackAddr string `yaml:"callback_addr"` // redirect-login callback listen address
	SessionFile  string `yaml:"session_file"`  // persisted session location, empty => $HOME/.picasaweb/session

	// Redis, only read when CacheBackend is "redis"
	RedisAddr           string        `yaml:"redis_addr"`
	RedisUser           string        `yaml:"redis_user"`
	RedisPassword       string        `yaml:"redis_password"`
	RedisDB             int           `yaml:"redis_db"`
	RedisDialTimeout    time.Duration `yaml:"redis_dial_timeout"`
	RedisConnectTimeout time.Duration `yaml:"redis_connect_timeout"`
	RedisRetryInterval  time.Duration `yaml:"redis_retry_interval"`
	RedisMaxWait        time.Duration `yaml:"redis_max_wait"`
	RedisPingTimeout    time.Duration `yaml:"redis_ping_timeout"`
}

// Load builds the configuration from PICASA_* environment variables, then
// overlays the YAML file named by PICASA_CONFIG_FILE when one is set. File
// values win over environment values; both fall back to the defaults here.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:  getenv("PICASA_LOG_LEVEL", "info"),
		PrettyLog: mustBool("PICASA_PRETTY_LOG", true),

		Host:        getenv("PICASA_HOST", "picasaweb.google.com"),
		HTTPTimeout: mustDuration("PICASA_HTTP_TIMEOUT", 30*time.Second),

		CacheBackend:  getenv("PICASA_CACHE_BACKEND", "file"),
		CacheDir:      getenv("PICASA_CACHE_DIR", DefaultCacheDir),
		CacheTTL:      mustDuration("PICASA_CACHE_TTL", 2*time.Hour),
		SweepInterval: mustDuration("PICASA_CACHE_SWEEP_INTERVAL", 30*time.Minute),

		AuthSource:   getenv("PICASA_AUTH_SOURCE", ""),
		CallbackAddr: getenv("PICASA_CALLBACK_ADDR", "localhost:8990"),
		SessionFile:  getenv("PICASA_SESSION_FILE", ""),

		RedisAddr:           getenv("PICASA_REDIS_ADDR", "localhost:6379"),
		RedisUser:           getenv("PICASA_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("PICASA_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("PICASA_REDIS_DB", 0),
		RedisDialTimeout:    mustDuration("PICASA_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisConnectTimeout: mustDuration("PICASA_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("PICASA_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("PICASA_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("PICASA_REDIS_PING_TIMEOUT", 5*time.Second),
	}

	if file := os.Getenv("PICASA_CONFIG_FILE"); file != "" {
		if err := cfg.overlayFile(file); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayFile merges the YAML file at path over the receiver. Unset file
// fields keep their current values because the file decodes into the
// already-populated struct.
func (c *Config) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.CacheBackend {
	case "file", "memory", "redis", "off":
	default:
		return fmt.Errorf("invalid cache backend %q (want file, memory, redis or off)", c.CacheBackend)
	}
	if c.CacheBackend == "file" && c.CacheDir == "" {
		return fmt.Errorf("cache backend file requires a cache directory")
	}
	if c.CacheBackend == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("cache backend redis requires a redis address")
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
