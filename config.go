package tinvest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const tokenEnv = "TINKOFF_TOKEN"

// Config is the per-user configuration file.
type Config struct {
	Tinkoff struct {
		Token string `yaml:"token"`
	} `yaml:"tinkoff"`
	StockSplits []SplitEvent `yaml:"stock_splits"`
	Report      struct {
		// OffsetDays skips the leading days of the profitability series,
		// where a freshly opened portfolio produces noisy percentages.
		OffsetDays int `yaml:"offset_days"`
	} `yaml:"report"`
}

// LoadConfig reads and validates the YAML configuration file. Any error here
// is fatal to the run: no processing starts on a broken configuration.
//
// The broker token may come from the TINKOFF_TOKEN environment variable
// instead of the file.
func LoadConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	cfg := new(Config)
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config %q: %w", path, err)
	}

	if cfg.Tinkoff.Token == "" {
		cfg.Tinkoff.Token = os.Getenv(tokenEnv)
	}
	if cfg.Tinkoff.Token == "" {
		return nil, fmt.Errorf("missing broker token: set tinkoff.token in %q or the %s environment variable", path, tokenEnv)
	}
	for i := range cfg.StockSplits {
		if err := cfg.StockSplits[i].Validate(); err != nil {
			return nil, err
		}
	}
	if cfg.Report.OffsetDays < 0 {
		return nil, fmt.Errorf("report.offset_days must not be negative, got %d", cfg.Report.OffsetDays)
	}
	return cfg, nil
}
