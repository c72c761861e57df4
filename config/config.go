// Package config loads process settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port  string `mapstructure:"PORT"`
	Store string `mapstructure:"STORE"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	DBSSLMode   string `mapstructure:"DB_SSLMODE"`
	DBDebug     bool   `mapstructure:"DB_DEBUG"`

	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`

	MediaRoot      string `mapstructure:"MEDIA_ROOT"`
	MediaURL       string `mapstructure:"MEDIA_URL"`
	MaxUploadBytes int64  `mapstructure:"MAX_UPLOAD_BYTES"`
	// BackupDir enables the daily media backup when set.
	BackupDir       string        `mapstructure:"MEDIA_BACKUP_DIR"`
	BackupRetention time.Duration `mapstructure:"MEDIA_BACKUP_RETENTION"`
	BackupHour      int           `mapstructure:"MEDIA_BACKUP_HOUR"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	PageSize    int      `mapstructure:"PAGE_SIZE"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

var defaults = map[string]any{
	"PORT":                   "8000",
	"STORE":                  StorePostgres,
	"DATABASE_URL":           "",
	"DB_HOST":                "localhost",
	"DB_PORT":                "5432",
	"DB_USER":                "postgres",
	"DB_PASSWORD":            "",
	"DB_NAME":                "storefront",
	"DB_SSLMODE":             "disable",
	"DB_DEBUG":               false,
	"JWT_SECRET":             "",
	"ACCESS_TOKEN_TTL":       "60m",
	"REFRESH_TOKEN_TTL":      "24h",
	"MEDIA_ROOT":             "media",
	"MEDIA_URL":              "/media",
	"MAX_UPLOAD_BYTES":       5 << 20,
	"MEDIA_BACKUP_DIR":       "",
	"MEDIA_BACKUP_RETENTION": "96h",
	"MEDIA_BACKUP_HOUR":      2,
	"REDIS_ADDR":             "",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"CACHE_TTL":              "5m",
	"PAGE_SIZE":              12,
	"CORS_ORIGINS":           "http://localhost:3000",
	"LOG_LEVEL":              "info",
	"LOG_FORMAT":             "json",
	"ADMIN_USERNAME":         "admin",
	"ADMIN_EMAIL":            "admin@example.com",
	"ADMIN_PASSWORD":         "admin123",
}

// Loader owns the viper instance so a watched file can be re-read later.
type Loader struct {
	v *viper.Viper
}

// Load reads .env (if present), the environment and, when file is not
// empty, a config file. Environment values win over the file.
func Load(file string) (*Loader, *Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	l := &Loader{v: v}
	cfg, err := l.decode()
	if err != nil {
		return nil, nil, err
	}
	return l, cfg, nil
}

func (l *Loader) decode() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// A comma separated env value arrives as a single element.
	if len(cfg.CORSOrigins) == 1 {
		cfg.CORSOrigins = splitList(cfg.CORSOrigins[0])
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.MediaURL = "/" + strings.Trim(cfg.MediaURL, "/")
	return cfg, cfg.Validate()
}

// Watch calls onChange with the re-read config whenever the config file
// changes. It does nothing when no file was loaded.
func (l *Loader) Watch(onChange func(*Config, error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(fsnotify.Event) {
		onChange(l.decode())
	})
	l.v.WatchConfig()
}

func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.PageSize <= 0 {
		return errors.New("PAGE_SIZE must be positive")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.BackupHour < 0 || c.BackupHour > 23 {
		return errors.New("MEDIA_BACKUP_HOUR must be between 0 and 23")
	}
	return nil
}

// DSN prefers DATABASE_URL and falls back to the DB_* keys.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
