package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	minSessionSecretLength = 32
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port        int    `envconfig:"PORT" default:"5000"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Version     string `envconfig:"VERSION" default:"dev"`

	StoreType   string `envconfig:"STORE_TYPE" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	DBMaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns        int32         `envconfig:"DB_MIN_CONNS" default:"0"`
	DBMaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`

	SessionSecret          string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionCookieName      string        `envconfig:"SESSION_COOKIE_NAME" default:"sid"`
	SessionTTL             time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	SessionCleanupInterval time.Duration `envconfig:"SESSION_CLEANUP_INTERVAL" default:"15m"`

	BcryptCost int `envconfig:"BCRYPT_COST" default:"10"`

	CORSOrigins    []string `envconfig:"CORS_ORIGINS" default:""`
	TrustedOrigins []string `envconfig:"TRUSTED_ORIGINS" default:""`
}

// Load reads an optional .env file and then the environment into a Config.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv paths. Missing files are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", p, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field rules envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreType {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_TYPE is postgres"))
		}
		if c.DBMaxConns < 1 {
			errs = append(errs, errors.New("DB_MAX_CONNS must be at least 1"))
		}
		if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			errs = append(errs, errors.New("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS"))
		}
		if c.DBMaxConnLifetime <= 0 {
			errs = append(errs, errors.New("DB_MAX_CONN_LIFETIME must be positive"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_TYPE must be %q or %q, got %q", StorePostgres, StoreMemory, c.StoreType))
	}

	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("ENVIRONMENT must be development, production or test, got %q", c.Environment))
	}

	if len(c.SessionSecret) < minSessionSecretLength {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLength))
	}
	if c.SessionCookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME must not be empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.SessionCleanupInterval <= 0 {
		errs = append(errs, errors.New("SESSION_CLEANUP_INTERVAL must be positive"))
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	for _, o := range c.CORSOrigins {
		if o == "*" {
			errs = append(errs, errors.New("CORS_ORIGINS must list explicit origins when credentials are allowed"))
		}
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the server runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}
