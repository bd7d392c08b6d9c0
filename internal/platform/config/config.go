package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultDatabaseName = "employee_directory"

type Config struct {
	Addr               string         `yaml:"addr" validate:"required"`
	Environment        string         `yaml:"environment" validate:"required"`
	LogLevel           string         `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat          string         `yaml:"log_format" validate:"oneof=json console"`
	MaxBodyBytes       int64          `yaml:"max_body_bytes" validate:"gte=1024"`
	CORSAllowedOrigins []string       `yaml:"cors_allowed_origins"`
	MetricsEnabled     bool           `yaml:"metrics_enabled"`
	ReadTimeout        time.Duration  `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration  `yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration  `yaml:"shutdown_timeout" validate:"gt=0"`
	Database           DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds the PostgreSQL connection settings and pool tuning.
type DatabaseConfig struct {
	Host            string        `yaml:"host" validate:"required"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	User            string        `yaml:"user" validate:"required"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name" validate:"required"`
	SSLMode         string        `yaml:"ssl_mode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns        int32         `yaml:"max_conns" validate:"gte=0"`
	MinConns        int32         `yaml:"min_conns" validate:"gte=0,ltefield=MaxConns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	LogQueries      bool          `yaml:"log_queries"`
}

var validate = validator.New()

func Defaults() Config {
	return Config{
		Addr:            ":5000",
		Environment:     "development",
		LogLevel:        "info",
		LogFormat:       "json",
		MaxBodyBytes:    1048576,
		MetricsEnabled:  true,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            DefaultDatabaseName,
			SSLMode:         "disable",
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
		},
	}
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment. A missing file is not an error; variables that are already
// set are never overwritten.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from defaults, then the optional YAML file
// at path, then environment variables, and validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Addr = getEnv("APP_ADDR", c.Addr)
	c.Environment = getEnv("APP_ENV", c.Environment)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	c.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", c.LogFormat))
	c.MaxBodyBytes = int64(getEnvInt("MAX_BODY_BYTES", int(c.MaxBodyBytes)))
	c.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", c.WriteTimeout)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	db := &c.Database
	db.Host = getEnv("DB_HOST", db.Host)
	db.Port = getEnvInt("DB_PORT", db.Port)
	db.User = getEnv("DB_USER", db.User)
	db.Password = getEnv("DB_PASSWORD", db.Password)
	db.Name = getEnv("DB_NAME", db.Name)
	db.SSLMode = getEnv("DB_SSL_MODE", db.SSLMode)
	db.MaxConns = int32(getEnvInt("DB_MAX_CONNS", int(db.MaxConns)))
	db.MinConns = int32(getEnvInt("DB_MIN_CONNS", int(db.MinConns)))
	db.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", db.MaxConnLifetime)
	db.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", db.MaxConnIdleTime)
	db.LogQueries = getEnvBool("DB_LOG_QUERIES", db.LogQueries)
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Environment == "production" && strings.TrimSpace(c.Database.Password) == "" {
		return fmt.Errorf("config: DB_PASSWORD must be set in production")
	}
	return nil
}

// DSN returns a pgx connection string with escaped credentials.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
