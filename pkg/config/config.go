package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// EnvPrefix is passed to envconfig; variable names carry the full
// STOREFRONT_ prefix in their tags.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	Pricing PricingConfig
	Storage StorageConfig
	Search  SearchConfig
}

// Load reads a local .env file when present and resolves the full
// configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// PricingConfig carries the flat-rate checkout figures. Amounts are in the
// configured currency's major unit.
type PricingConfig struct {
	Currency              string          `envconfig:"STOREFRONT_CURRENCY" default:"NGN"`
	FlatShippingFee       decimal.Decimal `envconfig:"STOREFRONT_FLAT_SHIPPING_FEE" default:"2500"`
	FreeShippingThreshold decimal.Decimal `envconfig:"STOREFRONT_FREE_SHIPPING_THRESHOLD" default:"50000"`
	TaxRate               decimal.Decimal `envconfig:"STOREFRONT_TAX_RATE" default:"0.075"`
}

func (p PricingConfig) validate() error {
	if strings.TrimSpace(p.Currency) == "" {
		return fmt.Errorf("currency is required")
	}
	if p.FlatShippingFee.IsNegative() {
		return fmt.Errorf("flat shipping fee cannot be negative")
	}
	if p.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("free shipping threshold cannot be negative")
	}
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate must be between 0 and 1")
	}
	return nil
}

type StorageConfig struct {
	Path string `envconfig:"STOREFRONT_STORAGE_PATH" default:"storefront.db"`
}

type SearchConfig struct {
	Debounce        time.Duration `envconfig:"STOREFRONT_SEARCH_DEBOUNCE" default:"300ms"`
	MinQueryLength  int           `envconfig:"STOREFRONT_SEARCH_MIN_QUERY_LENGTH" default:"2"`
	SuggestionLimit int           `envconfig:"STOREFRONT_SEARCH_SUGGESTION_LIMIT" default:"5"`
}
