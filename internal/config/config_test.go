package config

import (
	"os"
	"path/filepath"
	"testing"

	"PatternScout/internal/pattern"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.BarsDir != "stock_data" {
		t.Errorf("bars_dir default = %q, want stock_data", cfg.Data.BarsDir)
	}
	if cfg.Data.NamesFile != "stock_names.csv" {
		t.Errorf("names_file default = %q", cfg.Data.NamesFile)
	}
	if cfg.Output.ResultsDir != "screener_results" {
		t.Errorf("results_dir default = %q", cfg.Output.ResultsDir)
	}
	if cfg.Scan.Pattern != "golden_retracement_premium" {
		t.Errorf("pattern default = %q", cfg.Scan.Pattern)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
data:
  bars_dir: /data/bars
  names_file: /data/names.csv
scan:
  pattern: yin_pullback
  workers: 4
  top_n: 10
schedule:
  scan_cron: "0 30 15 * * MON-FRI"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.BarsDir != "/data/bars" {
		t.Errorf("bars_dir = %q", cfg.Data.BarsDir)
	}
	if cfg.Scan.Pattern != "yin_pullback" {
		t.Errorf("pattern = %q", cfg.Scan.Pattern)
	}
	if cfg.Scan.Workers != 4 || cfg.Scan.TopN != 10 {
		t.Errorf("workers/top_n = %d/%d", cfg.Scan.Workers, cfg.Scan.TopN)
	}
	if cfg.Schedule.ScanCron != "0 30 15 * * MON-FRI" {
		t.Errorf("scan_cron = %q", cfg.Schedule.ScanCron)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
data:
  bars_dir: /from/file
scan:
  pattern: golden_retracement
`)
	t.Setenv("BARS_DIR", "/from/env")
	t.Setenv("SCAN_PATTERN", "yin_pullback")
	t.Setenv("SCAN_WORKERS", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.BarsDir != "/from/env" {
		t.Errorf("env should override file, got %q", cfg.Data.BarsDir)
	}
	if cfg.Scan.Pattern != "yin_pullback" {
		t.Errorf("pattern = %q", cfg.Scan.Pattern)
	}
	if cfg.Scan.Workers != 8 {
		t.Errorf("workers = %d", cfg.Scan.Workers)
	}
}

func TestValidateUnknownPattern(t *testing.T) {
	path := writeConfig(t, `
scan:
  pattern: no_such_pattern
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown pattern")
	}
}

func TestValidateNegativeWorkers(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Scan.Workers = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative workers")
	}
}

func TestPatternOverlay(t *testing.T) {
	path := writeConfig(t, `
scan:
  pattern: custom_dip
patterns:
  - name: custom_dip
    label: 自定义回踩
    min_history: 30
    trend:
      ma: 20
      require_close_above: true
    setup:
      enabled: true
      shadow_ratio: 0.1
      vol_ma_window: 5
      max_vol_ratio: 0.8
    base_score: 50
    advice:
      - min_score: 0
        label: 观察
  - name: golden_retracement
    label: 金线回踩改
    min_history: 25
    advice:
      - min_score: 0
        label: 观察
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	specs := cfg.Specs()

	custom := pattern.Find(specs, "custom_dip")
	if custom == nil {
		t.Fatal("custom_dip not found in merged specs")
	}
	if custom.Trend.MA != 20 || custom.BaseScore != 50 {
		t.Errorf("custom_dip fields: ma=%d base=%d", custom.Trend.MA, custom.BaseScore)
	}

	replaced := pattern.Find(specs, "golden_retracement")
	if replaced == nil {
		t.Fatal("golden_retracement not found")
	}
	if replaced.MinHistory != 25 {
		t.Errorf("overlay should replace builtin, min_history = %d", replaced.MinHistory)
	}
}
