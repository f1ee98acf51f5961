// Package report persists ranked scan results to dated CSV files.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"PatternScout/internal/model"
)

// CSVWriter writes one result file per scan under
// <base>/<YYYY-MM>/<pattern>_<YYYYMMDD_HHMMSS>.csv.
type CSVWriter struct {
	BaseDir string
}

// NewCSVWriter creates a writer rooted at the given directory.
func NewCSVWriter(baseDir string) *CSVWriter {
	return &CSVWriter{BaseDir: baseDir}
}

var csvHeader = []string{
	"code", "name", "close", "pct_change", "score", "advice",
	"support_ma", "proximity_pct", "stop_loss",
}

// Write persists the ranked signals and returns the file path.
func (w *CSVWriter) Write(patternName string, at time.Time, signals []*model.Signal) (string, error) {
	dir := filepath.Join(w.BaseDir, at.Format("2006-01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", patternName, at.Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	// UTF-8 BOM so Excel renders the Chinese name column correctly.
	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, sig := range signals {
		row := []string{
			sig.Code,
			sig.Name,
			strconv.FormatFloat(sig.Close, 'f', 2, 64),
			strconv.FormatFloat(sig.PctChange, 'f', 2, 64),
			strconv.Itoa(sig.Score),
			sig.Advice,
			sig.SupportMA,
			strconv.FormatFloat(sig.ProximityPct, 'f', 2, 64),
			strconv.FormatFloat(sig.StopLoss, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write row %s: %w", sig.Code, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush results: %w", err)
	}
	return path, nil
}
