// Package config loads the process configuration from an optional YAML
// file and COFFEE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	logging "github.com/op/go-logging"
	"github.com/spf13/viper"
)

const envPrefix = "COFFEE"

// Payment gateway modes.
const (
	GatewayMock = "mock"
	GatewayNone = "none"
)

// LLM configures the optional external text generator.
type LLM struct {
	Enabled       bool          `mapstructure:"enabled"`
	APIKey        string        `mapstructure:"api-key"`
	Model         string        `mapstructure:"model"`
	BaseURL       string        `mapstructure:"base-url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int           `mapstructure:"max-concurrent"`
}

// Payment selects the card gateway.
type Payment struct {
	Gateway string        `mapstructure:"gateway"`
	Delay   time.Duration `mapstructure:"delay"`
}

// Kitchen configures where tickets go. An empty AMQPURL keeps them in memory.
type Kitchen struct {
	AMQPURL  string `mapstructure:"amqp-url"`
	Exchange string `mapstructure:"exchange"`
}

// Config is the whole process configuration.
type Config struct {
	Address        string        `mapstructure:"address"`
	LogLevel       string        `mapstructure:"log-level"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	SessionTimeout time.Duration `mapstructure:"session-timeout"`
	PrepTime       time.Duration `mapstructure:"prep-time"`
	CatalogPath    string        `mapstructure:"catalog-path"`

	LLM     LLM     `mapstructure:"llm"`
	Payment Payment `mapstructure:"payment"`
	Kitchen Kitchen `mapstructure:"kitchen"`
}

var defaults = map[string]any{
	"address":            ":8080",
	"log-level":          "INFO",
	"request-timeout":    "10s",
	"session-timeout":    "30m",
	"prep-time":          "15m",
	"catalog-path":       "",
	"llm.enabled":        false,
	"llm.api-key":        "",
	"llm.model":          "gpt-4o-mini",
	"llm.base-url":       "",
	"llm.timeout":        "3s",
	"llm.max-concurrent": 8,
	"payment.gateway":    GatewayMock,
	"payment.delay":      "0s",
	"kitchen.amqp-url":   "",
	"kitchen.exchange":   "kitchen.tickets",
}

// Load reads path (if non-empty) and the environment. Environment variables
// take precedence over the file, e.g. COFFEE_LLM_API_KEY for llm.api-key.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Address == "" {
		errs = append(errs, errors.New("address must not be empty"))
	}
	if _, err := logging.LogLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log-level %q: %w", c.LogLevel, err))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request-timeout must be positive"))
	}
	if c.SessionTimeout <= 0 {
		errs = append(errs, errors.New("session-timeout must be positive"))
	}
	if c.PrepTime < 0 {
		errs = append(errs, errors.New("prep-time must not be negative"))
	}
	if c.LLM.Enabled {
		if c.LLM.APIKey == "" {
			errs = append(errs, errors.New("llm.api-key is required when llm.enabled is set"))
		}
		if c.LLM.Timeout <= 0 {
			errs = append(errs, errors.New("llm.timeout must be positive"))
		}
		if c.LLM.MaxConcurrent < 1 {
			errs = append(errs, errors.New("llm.max-concurrent must be at least 1"))
		}
	}
	switch c.Payment.Gateway {
	case GatewayMock, GatewayNone:
	default:
		errs = append(errs, fmt.Errorf("payment.gateway %q: want %q or %q", c.Payment.Gateway, GatewayMock, GatewayNone))
	}
	if c.Payment.Delay < 0 {
		errs = append(errs, errors.New("payment.delay must not be negative"))
	}
	if c.Kitchen.AMQPURL != "" && c.Kitchen.Exchange == "" {
		errs = append(errs, errors.New("kitchen.exchange is required with kitchen.amqp-url"))
	}
	return errors.Join(errs...)
}

// InitLogger installs a stdout backend at level. Unknown levels are an error.
func InitLogger(level string) error {
	base := logging.NewLogBackend(os.Stdout, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s} %{module} %{message}`,
	)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(base, format))

	lvl, err := logging.LogLevel(level)
	if err != nil {
		return err
	}
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
	return nil
}
