package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"

	defaultJWTSecret = "default-secret-key-change-me"
)

var ErrInsecureSecret = errors.New("JWT_SECRET must be set in release mode")

type Config struct {
	DBDriver   string `yaml:"dbDriver"   envconfig:"DB_DRIVER"`
	DBDSN      string `yaml:"dbDsn"      envconfig:"DB_DSN"`
	DBHost     string `yaml:"dbHost"     envconfig:"DB_HOST"`
	DBPort     string `yaml:"dbPort"     envconfig:"DB_PORT"`
	DBUser     string `yaml:"dbUser"     envconfig:"DB_USER"`
	DBPassword string `yaml:"dbPassword" envconfig:"DB_PASSWORD"`
	DBName     string `yaml:"dbName"     envconfig:"DB_NAME"`
	DBLogLevel string `yaml:"dbLogLevel" envconfig:"DB_LOG_LEVEL"`

	Port     string `yaml:"port"     envconfig:"PORT"`
	GinMode  string `yaml:"ginMode"  envconfig:"GIN_MODE"`
	LogLevel string `yaml:"logLevel" envconfig:"LOG_LEVEL"`

	JWTSecret string        `yaml:"jwtSecret" envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `yaml:"jwtTtl"    envconfig:"JWT_TTL"`

	CORSOrigins []string `yaml:"corsOrigins" envconfig:"CORS_ORIGINS"`

	// TrustedProxies lists the proxy addresses or CIDRs whose
	// X-Forwarded-For is believed. Empty means the peer address is the client.
	TrustedProxies []string `yaml:"trustedProxies" envconfig:"TRUSTED_PROXIES"`

	RateLimitBackend string `yaml:"rateLimitBackend" envconfig:"RATE_LIMIT_BACKEND"`
	RedisURL         string `yaml:"redisUrl"         envconfig:"REDIS_URL"`
}

func defaultConfig() *Config {
	return &Config{
		DBDriver:         DriverMySQL,
		DBHost:           "localhost",
		DBPort:           "3306",
		DBUser:           "causer",
		DBPassword:       "capassword",
		DBName:           "infinito",
		DBLogLevel:       "warn",
		Port:             "8080",
		GinMode:          "debug",
		LogLevel:         "info",
		JWTSecret:        defaultJWTSecret,
		JWTTTL:           24 * time.Hour,
		CORSOrigins:      []string{"http://localhost:3000"},
		RateLimitBackend: RateLimitMemory,
		RedisURL:         "redis://localhost:6379/0",
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and the environment, in that order of precedence.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.RateLimitBackend {
	case RateLimitMemory, RateLimitRedis:
	default:
		return fmt.Errorf("unsupported RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.GinMode == "release" && c.JWTSecret == defaultJWTSecret {
		return ErrInsecureSecret
	}
	return nil
}

// DSN returns the driver-specific connection string. An explicit DB_DSN wins.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	case DriverSQLite:
		return c.DBName + ".db"
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}
}
