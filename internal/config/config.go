// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const DevEnvFile = ".env.dev"

// MinSecretLength is the shortest JWT_SECRET accepted.
const MinSecretLength = 32

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
)

type Config struct {
	Addr       string        `env:"APP_ADDR" envDefault:":8080"`
	Env        string        `env:"APP_ENV" envDefault:"development"`
	LogLevel   string        `env:"APP_LOG_LEVEL" envDefault:"info"`
	Secret     string        `env:"JWT_SECRET,required"`
	ProfileTTL time.Duration `env:"PROFILE_TTL" envDefault:"8760h"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	StorePrefix string `env:"STORE_PREFIX" envDefault:"recipe:"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/recipe.db"`
	RedisURL    string `env:"REDIS_URL"`

	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// MySQLDSN builds a go-sql-driver DSN from the DB_* settings.
func (c Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Load reads .env.dev when present, then parses the environment. Variables already
// set in the environment take precedence over the file.
func Load() (*Config, error) {
	_ = godotenv.Load(DevEnvFile)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Secret) < MinSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes long, got %d", MinSecretLength, len(c.Secret))
	}
	if c.ProfileTTL <= 0 {
		return errors.New("PROFILE_TTL must be positive")
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case DriverMySQL:
		var missing []string
		for k, v := range map[string]string{
			"DB_HOST": c.DBHost,
			"DB_USER": c.DBUser,
			"DB_NAME": c.DBName,
		} {
			if v == "" {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("mysql store needs %v", missing)
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}
