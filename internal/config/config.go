package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"PatternScout/internal/pattern"
)

// Config holds all application configuration.
type Config struct {
	Data struct {
		BarsDir   string `yaml:"bars_dir"`
		NamesFile string `yaml:"names_file"`
	} `yaml:"data"`
	Output struct {
		ResultsDir string `yaml:"results_dir"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"output"`
	Scan struct {
		Pattern string `yaml:"pattern"`
		Workers int    `yaml:"workers"`
		TopN    int    `yaml:"top_n"` // 0 = pattern default
	} `yaml:"scan"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"` // empty = run once and exit
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	// Patterns overlays the builtin table: same name replaces, new
	// names append.
	Patterns []pattern.Spec `yaml:"patterns"`
	Proxy    string         `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("BARS_DIR"); v != "" {
		cfg.Data.BarsDir = v
	}
	if v := os.Getenv("NAMES_FILE"); v != "" {
		cfg.Data.NamesFile = v
	}
	if v := os.Getenv("RESULTS_DIR"); v != "" {
		cfg.Output.ResultsDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Output.SQLitePath = v
	}
	if v := os.Getenv("SCAN_PATTERN"); v != "" {
		cfg.Scan.Pattern = v
	}
	if v := os.Getenv("SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scan.Workers = n
		}
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Data.BarsDir == "" {
		cfg.Data.BarsDir = "stock_data"
	}
	if cfg.Data.NamesFile == "" {
		cfg.Data.NamesFile = "stock_names.csv"
	}
	if cfg.Output.ResultsDir == "" {
		cfg.Output.ResultsDir = "screener_results"
	}
	if cfg.Scan.Pattern == "" {
		cfg.Scan.Pattern = "golden_retracement_premium"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and the configured
// pattern resolves against the merged spec table.
func (c *Config) Validate() error {
	if c.Data.BarsDir == "" {
		return fmt.Errorf("data.bars_dir is required")
	}
	if c.Data.NamesFile == "" {
		return fmt.Errorf("data.names_file is required")
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must not be negative")
	}
	specs := c.Specs()
	spec := pattern.Find(specs, c.Scan.Pattern)
	if spec == nil {
		return fmt.Errorf("scan.pattern %q is not defined", c.Scan.Pattern)
	}
	for i := range specs {
		if err := specs[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Specs returns the builtin pattern table overlaid with the config's
// pattern entries.
func (c *Config) Specs() []pattern.Spec {
	return pattern.Merge(pattern.Builtin(), c.Patterns)
}
