package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendOxiDB  = "oxidb"
	BackendSQLite = "sqlite"
)

// MinSessionTTL bounds session_ttl from below; the janitor sweeps every
// quarter of it.
const MinSessionTTL = time.Minute

type Config struct {
	HTTPAddr string `mapstructure:"addr"`
	Backend  string `mapstructure:"backend"`

	OxiDBHost string `mapstructure:"oxidb_host"`
	OxiDBPort int    `mapstructure:"oxidb_port"`
	PoolSize  int    `mapstructure:"pool_size"`

	SQLitePath string `mapstructure:"sqlite_path"`

	JWTSecret  string `mapstructure:"jwt_secret"`
	AdminEmail string `mapstructure:"admin_email"`
	AdminPass  string `mapstructure:"admin_pass"`

	NotifyURL   string `mapstructure:"notify_url"`
	OrganizeURL string `mapstructure:"organize_url"`
	PublicURL   string `mapstructure:"public_url"`

	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	Compensate     bool          `mapstructure:"compensate"`

	GELFAddr string `mapstructure:"gelf_addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("backend", BackendOxiDB)
	v.SetDefault("oxidb_host", "127.0.0.1")
	v.SetDefault("oxidb_port", 4444)
	v.SetDefault("pool_size", 3)
	v.SetDefault("sqlite_path", "data/oxistory.db")
	v.SetDefault("jwt_secret", "oxistory-dev-secret-change-me")
	v.SetDefault("admin_email", "admin@oxistory.local")
	v.SetDefault("admin_pass", "admin123")
	v.SetDefault("notify_url", "")
	v.SetDefault("organize_url", "")
	v.SetDefault("public_url", "http://localhost:8080")
	v.SetDefault("http_timeout", 15*time.Second)
	v.SetDefault("session_ttl", 2*time.Hour)
	v.SetDefault("max_upload_bytes", 15<<20)
	v.SetDefault("compensate", false)
	v.SetDefault("gelf_addr", "")
}

// Load reads the configuration. Values come from STORY_* environment
// variables (a .env file in the working directory is loaded first), then
// from the optional YAML file at path, then from the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("STORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendOxiDB, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 1
	}
	switch {
	case c.SessionTTL <= 0:
		c.SessionTTL = 2 * time.Hour
	case c.SessionTTL < MinSessionTTL:
		return fmt.Errorf("config: session_ttl %s is below the %s minimum", c.SessionTTL, MinSessionTTL)
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 15 * time.Second
	}
	if c.JWTSecret == "" {
		return errors.New("config: jwt_secret must not be empty")
	}
	return nil
}
