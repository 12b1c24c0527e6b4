// Package config loads the calculator settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every variable, e.g. PIPE_CATALOG_PATH.
const EnvPrefix = "PIPE"

const (
	EnvCatalogPath        = "PIPE_CATALOG_PATH"
	EnvDefaultMaterial    = "PIPE_DEFAULT_MATERIAL"
	EnvCurrency           = "PIPE_CURRENCY"
	EnvCompanyName        = "PIPE_COMPANY_NAME"
	EnvDisclaimer         = "PIPE_DISCLAIMER"
	EnvSessionTTL         = "PIPE_SESSION_TTL"
	EnvRequiredAttributes = "PIPE_REQUIRED_ATTRIBUTES"
	EnvMetricsEnabled     = "PIPE_METRICS_ENABLED"
	EnvSeedDemo           = "PIPE_SEED_DEMO"
)

type Config struct {
	CatalogPath        string        `envconfig:"CATALOG_PATH" default:"data/catalog.xlsx"`
	DefaultMaterial    string        `envconfig:"DEFAULT_MATERIAL" default:"HDPE"`
	Currency           string        `envconfig:"CURRENCY" default:"EGP"`
	CompanyName        string        `envconfig:"COMPANY_NAME"`
	Disclaimer         string        `envconfig:"DISCLAIMER" default:"Prices are indicative and subject to final confirmation."`
	SessionTTL         time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	RequiredAttributes []string      `envconfig:"REQUIRED_ATTRIBUTES"`
	MetricsEnabled     bool          `envconfig:"METRICS_ENABLED" default:"true"`
	SeedDemo           bool          `envconfig:"SEED_DEMO" default:"false"`
}

// Load reads .env when present, then the PIPE_* environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.DefaultMaterial = strings.ToUpper(strings.TrimSpace(cfg.DefaultMaterial))
	cfg.RequiredAttributes = trimAll(cfg.RequiredAttributes)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Currency, validation.Required),
		validation.Field(&c.SessionTTL, validation.Min(time.Duration(0))),
	)
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
