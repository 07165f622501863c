// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Config holds all statement-splitter configuration. Accounting constants
// default to the values the downstream import format has always used.
type Config struct {
	// Accounting import constants
	VendorCode   string `env:"VENDOR_CODE"    envDefault:"19473"`
	JCCompany    string `env:"JC_COMPANY"     envDefault:"1"`
	LineTypeCode string `env:"LINE_TYPE_CODE" envDefault:"3"`
	RefPrefix    string `env:"REF_PREFIX"     envDefault:"amex"`

	// SkipMarkers are boundary marker names of administrative
	// pseudo-cardholders whose sections are excluded from output.
	SkipMarkers []string `env:"SKIP_MARKERS" envSeparator:","`

	// OutputRoot is the directory under which per-run output directories
	// are created.
	OutputRoot string `env:"OUTPUT_ROOT" envDefault:"./output"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
