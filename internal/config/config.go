package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"drivequest/internal/auth"
	"drivequest/internal/location"
	"drivequest/internal/validation"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	CatalogFromFile     = "file"
	CatalogFromPostgres = "postgres"
)

type Config struct {
	Log struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=json console"`
	} `yaml:"log"`
	Server struct {
		Host string `yaml:"host" validate:"required"`
		Port string `yaml:"port" validate:"required,numeric"`
	} `yaml:"server"`
	Catalog struct {
		Source   string `yaml:"source" validate:"oneof=file postgres"`
		Path     string `yaml:"path"`
		Document string `yaml:"document"`
		TTL      string `yaml:"ttl"`
	} `yaml:"catalog"`
	Seed struct {
		Path string `yaml:"path"`
	} `yaml:"seed"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Auth struct {
		Delay       string            `yaml:"delay"`
		Credentials []auth.Credential `yaml:"credentials" validate:"dive"`
	} `yaml:"auth"`
	License struct {
		RequiredHours float64 `yaml:"requiredHours" validate:"gte=0"`
	} `yaml:"license"`
	Location struct {
		Simulate bool                `yaml:"simulate"`
		Interval string              `yaml:"interval"`
		Route    []location.Waypoint `yaml:"route"`
	} `yaml:"location"`
	Shell struct {
		StudentID      string `yaml:"studentId"`
		MessageTimeout string `yaml:"messageTimeout"`
	} `yaml:"shell"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "8080"
	cfg.Catalog.Source = CatalogFromFile
	cfg.Catalog.Document = "default"
	cfg.Catalog.TTL = "10m"
	cfg.Auth.Delay = "1s"
	cfg.License.RequiredHours = 40
	cfg.Location.Simulate = true
	cfg.Location.Interval = "1s"
	cfg.Shell.MessageTimeout = "3s"
	return cfg
}

// Load reads .env (if present), then the YAML file at path over the defaults, then
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Server.Host, "HOST")
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Catalog.Source, "CATALOG_SOURCE")
	setString(&cfg.Catalog.Path, "CATALOG_PATH")
	setString(&cfg.Seed.Path, "SEED_PATH")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Postgres.URL, "POSTGRES_URL")
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB=%q: %w", v, err)
		}
		cfg.Redis.DB = db
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks field constraints and the cross-section requirements.
func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Catalog.Source == CatalogFromPostgres && c.Postgres.URL == "" {
		return fmt.Errorf("invalid config: catalog source %q needs postgres.url", c.Catalog.Source)
	}
	for _, raw := range []string{c.Catalog.TTL, c.Auth.Delay, c.Location.Interval, c.Shell.MessageTimeout} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid config: duration %q: %w", raw, err)
		}
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
