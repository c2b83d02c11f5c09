package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v2"
)

// Session store backends.
const (
	SessionStoreSQL    = "sql"
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Security SecurityConfig `yaml:"security"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" env:"SNAPFEED_HOST"`
	Port            string        `yaml:"port" env:"SNAPFEED_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SNAPFEED_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SNAPFEED_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SNAPFEED_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SNAPFEED_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type DatabaseConfig struct {
	// Driver is one of sqlite3, postgres or pgx.
	Driver string `yaml:"driver" env:"SNAPFEED_DB_DRIVER" env-default:"sqlite3"`
	DSN    string `yaml:"dsn" env:"SNAPFEED_DB_DSN" env-default:"snapfeed.db"`
}

type SessionConfig struct {
	Store         string        `yaml:"store" env:"SNAPFEED_SESSION_STORE" env-default:"sql"`
	Secret        string        `yaml:"secret" env:"SNAPFEED_SESSION_SECRET"`
	CookieName    string        `yaml:"cookie_name" env:"SNAPFEED_SESSION_COOKIE" env-default:"snapfeed_session"`
	TTL           time.Duration `yaml:"ttl" env:"SNAPFEED_SESSION_TTL" env-default:"24h"`
	Secure        bool          `yaml:"secure" env:"SNAPFEED_SESSION_SECURE"`
	RedisAddr     string        `yaml:"redis_addr" env:"SNAPFEED_REDIS_ADDR" env-default:"localhost:6379"`
	PurgeInterval time.Duration `yaml:"purge_interval" env:"SNAPFEED_SESSION_PURGE_INTERVAL" env-default:"1h"`
}

type UploadsConfig struct {
	Dir          string `yaml:"dir" env:"SNAPFEED_UPLOAD_DIR" env-default:"uploads"`
	PublicPrefix string `yaml:"public_prefix" env:"SNAPFEED_UPLOAD_PREFIX" env-default:"/uploads/"`
	MaxBytes     int64  `yaml:"max_bytes" env:"SNAPFEED_UPLOAD_MAX_BYTES" env-default:"10485760"`
}

type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"SNAPFEED_BCRYPT_COST" env-default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"SNAPFEED_CORS_ORIGINS" env-separator:","`
}

// Load reads the YAML file at filename, if any, and then applies environment
// overrides and defaults. An empty filename yields a config built from the
// environment and defaults only.
func Load(filename string) (*Config, error) {
	var config Config

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	// PORT is what most platforms inject.
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate reports configuration values the server cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Session.Store {
	case SessionStoreSQL, SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported session store %q", c.Session.Store)
	}

	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Session.Store == SessionStoreSQL && c.Session.PurgeInterval <= 0 {
		return errors.New("session purge_interval must be positive")
	}
	if c.Uploads.MaxBytes <= 0 {
		return errors.New("uploads max_bytes must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
