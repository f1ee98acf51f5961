package loader

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"PatternScout/internal/model"
)

// Column aliases: upstream snapshot files carry Chinese headers, other
// exports use English ones. Both resolve to the same canonical column.
var headerAliases = map[string]string{
	"日期":         "date",
	"date":       "date",
	"开盘":         "open",
	"open":       "open",
	"最高":         "high",
	"high":       "high",
	"最低":         "low",
	"low":        "low",
	"收盘":         "close",
	"close":      "close",
	"成交量":        "volume",
	"volume":     "volume",
	"成交额":        "turnover",
	"turnover":   "turnover",
	"amount":     "turnover",
	"涨跌幅":        "pct_change",
	"pct_chg":    "pct_change",
	"pct_change": "pct_change",
}

var requiredColumns = []string{"date", "open", "high", "low", "close", "volume"}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "20060102"}

// CSVLoader reads one <code>.csv file per symbol from a data directory.
// It doubles as the universe source via ListCodes.
type CSVLoader struct {
	Dir string
}

// NewCSVLoader creates a loader rooted at the given directory.
func NewCSVLoader(dir string) *CSVLoader {
	return &CSVLoader{Dir: dir}
}

func (l *CSVLoader) Name() string { return "csv" }

// ListCodes enumerates symbol codes from the *.csv files in the data
// directory, sorted for reproducible scan order.
func (l *CSVLoader) ListCodes() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("list data dir %s: %w", l.Dir, err)
	}
	var codes []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		codes = append(codes, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(codes)
	return codes, nil
}

// Load reads and parses one symbol's history. Bars are sorted
// ascending by date; duplicate dates are rejected.
func (l *CSVLoader) Load(code string) (*model.BarSeries, error) {
	path := filepath.Join(l.Dir, code+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s has no data file", ErrMissingData, code)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s is empty", ErrMissingData, code)
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingData, code, err)
	}

	bars := make([]model.Bar, 0, len(rows)-1)
	for i, row := range rows[1:] {
		bar, err := parseBar(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", code, i+2, err)
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	for i := 1; i < len(bars); i++ {
		if bars[i].Date.Equal(bars[i-1].Date) {
			return nil, fmt.Errorf("%s: duplicate date %s", code, bars[i].Date.Format("2006-01-02"))
		}
	}

	return &model.BarSeries{Code: code, Bars: bars}, nil
}

// mapHeader resolves the header row to canonical column indexes and
// verifies every required column is present.
func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := headerAliases[key]; ok {
			cols[canonical] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("required column %q not found", c)
		}
	}
	return cols, nil
}

func parseBar(row []string, cols map[string]int) (model.Bar, error) {
	var bar model.Bar
	var err error

	dateStr := strings.TrimSpace(row[cols["date"]])
	for _, layout := range dateLayouts {
		if bar.Date, err = time.Parse(layout, dateStr); err == nil {
			break
		}
	}
	if err != nil {
		return bar, fmt.Errorf("unparseable date %q", dateStr)
	}

	if bar.Open, err = parseField(row, cols, "open"); err != nil {
		return bar, err
	}
	if bar.High, err = parseField(row, cols, "high"); err != nil {
		return bar, err
	}
	if bar.Low, err = parseField(row, cols, "low"); err != nil {
		return bar, err
	}
	if bar.Close, err = parseField(row, cols, "close"); err != nil {
		return bar, err
	}
	if bar.Volume, err = parseField(row, cols, "volume"); err != nil {
		return bar, err
	}

	// Optional columns: NaN when absent or blank.
	bar.Turnover = parseOptional(row, cols, "turnover")
	bar.PctChange = parseOptional(row, cols, "pct_change")
	return bar, nil
}

func parseField(row []string, cols map[string]int, name string) (float64, error) {
	idx := cols[name]
	if idx >= len(row) {
		return 0, fmt.Errorf("row too short for column %q", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q", name, row[idx])
	}
	return v, nil
}

func parseOptional(row []string, cols map[string]int, name string) float64 {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
