// Package config loads formdef CLI and server settings with viper: built-in
// defaults, an optional formdef.yaml, FORMDEF_ environment variables and
// bound command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: FORMDEF_SERVER_ADDR sets
// server.addr.
const EnvPrefix = "FORMDEF"

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the resolved configuration.
type Config struct {
	Forms  FormsConfig  `mapstructure:"forms"`
	Render RenderConfig `mapstructure:"render"`
	Server ServerConfig `mapstructure:"server"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Log    LogConfig    `mapstructure:"log"`
}

type FormsConfig struct {
	Dir string `mapstructure:"dir"`
}

type RenderConfig struct {
	Default string `mapstructure:"default"`
	Locale  string `mapstructure:"locale"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	Size    int           `mapstructure:"size"`
	TTL     time.Duration `mapstructure:"ttl"`
	// Profile separates cache entries of deployments that share a Redis
	// prefix but compile with different message catalogs.
	Profile string        `mapstructure:"profile"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Option customises loading.
type Option func(*loader)

type loader struct {
	file  string
	dirs  []string
	flags *pflag.FlagSet
}

// WithFile reads an explicit config file. A missing explicit file is an
// error, unlike the default lookup.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = strings.TrimSpace(path)
	}
}

// WithSearchPaths replaces the directories searched for formdef.yaml
// (default ".").
func WithSearchPaths(dirs ...string) Option {
	return func(l *loader) {
		l.dirs = dirs
	}
}

// WithFlags binds flags whose names match config keys ("server.addr") or
// their dashed form ("server-addr").
func WithFlags(flags *pflag.FlagSet) Option {
	return func(l *loader) {
		l.flags = flags
	}
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Forms:  FormsConfig{Dir: "forms"},
		Render: RenderConfig{Default: "html"},
		Server: ServerConfig{Addr: ":8080"},
		Cache:  CacheConfig{Backend: CacheMemory, Size: 256, TTL: 10 * time.Minute},
		Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "formdef:"},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// Load resolves the configuration.
func Load(opts ...Option) (*Config, error) {
	l := &loader{dirs: []string{"."}}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	v := viper.New()
	setDefaults(v, Defaults())

	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName("formdef")
		v.SetConfigType("yaml")
		for _, dir := range l.dirs {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	if err := bindFlags(v, l.flags); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("config: cache.backend must be one of none, memory, redis, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheMemory && c.Cache.Size <= 0 {
		return fmt.Errorf("config: cache.size must be positive, got %d", c.Cache.Size)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("config: cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: log.format must be console or json, got %q", c.Log.Format)
	}
	if strings.TrimSpace(c.Render.Default) == "" {
		return errors.New("config: render.default is required")
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("forms.dir", d.Forms.Dir)
	v.SetDefault("render.default", d.Render.Default)
	v.SetDefault("render.locale", d.Render.Locale)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.size", d.Cache.Size)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.profile", d.Cache.Profile)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.prefix", d.Redis.Prefix)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	var bindErr error
	for _, key := range v.AllKeys() {
		flag := flags.Lookup(key)
		if flag == nil {
			flag = flags.Lookup(strings.ReplaceAll(key, ".", "-"))
		}
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("config: bind flag %s: %w", flag.Name, err)
		}
	}
	return bindErr
}
