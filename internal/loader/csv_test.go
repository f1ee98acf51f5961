package loader

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_ChineseHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600000.csv",
		"日期,开盘,最高,最低,收盘,成交量,成交额,涨跌幅\n"+
			"2024-01-03,10.1,10.5,10.0,10.4,120000,1248000,2.97\n"+
			"2024-01-02,10.0,10.2,9.9,10.1,100000,1010000,1.0\n")

	series, err := NewCSVLoader(dir).Load("600000")
	if err != nil {
		t.Fatal(err)
	}
	if series.Len() != 2 {
		t.Fatalf("expected 2 bars, got %d", series.Len())
	}
	// rows arrive out of order; loader must sort ascending
	if !series.Bars[0].Date.Before(series.Bars[1].Date) {
		t.Error("bars not sorted ascending by date")
	}
	latest := series.At(0)
	if latest.Close != 10.4 || latest.Volume != 120000 {
		t.Errorf("unexpected latest bar: %+v", latest)
	}
	if latest.Turnover != 1248000 || latest.PctChange != 2.97 {
		t.Errorf("optional columns not parsed: %+v", latest)
	}
}

func TestLoad_EnglishHeadersWithoutOptionals(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "000001.csv",
		"Date,Open,High,Low,Close,Volume\n"+
			"2024-01-02,10.0,10.2,9.9,10.1,100000\n")

	series, err := NewCSVLoader(dir).Load("000001")
	if err != nil {
		t.Fatal(err)
	}
	bar := series.At(0)
	if !math.IsNaN(bar.Turnover) || !math.IsNaN(bar.PctChange) {
		t.Errorf("absent optional columns should be NaN: %+v", bar)
	}
}

func TestLoad_MissingRequiredColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600001.csv",
		"日期,收盘,成交量\n2024-01-02,10.1,100000\n")

	_, err := NewCSVLoader(dir).Load("600001")
	if !errors.Is(err, ErrMissingData) {
		t.Errorf("expected ErrMissingData, got %v", err)
	}
}

func TestLoad_EmptyAndAbsentFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600002.csv", "日期,开盘,最高,最低,收盘,成交量\n")

	l := NewCSVLoader(dir)
	if _, err := l.Load("600002"); !errors.Is(err, ErrMissingData) {
		t.Errorf("header-only file: expected ErrMissingData, got %v", err)
	}
	if _, err := l.Load("999999"); !errors.Is(err, ErrMissingData) {
		t.Errorf("absent file: expected ErrMissingData, got %v", err)
	}
}

func TestLoad_DuplicateDateRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600003.csv",
		"日期,开盘,最高,最低,收盘,成交量\n"+
			"2024-01-02,10.0,10.2,9.9,10.1,100000\n"+
			"2024-01-02,10.1,10.3,10.0,10.2,110000\n")

	if _, err := NewCSVLoader(dir).Load("600003"); err == nil {
		t.Error("expected error for duplicate dates")
	}
}

func TestListCodes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600000.csv", "x")
	writeFile(t, dir, "000001.csv", "x")
	writeFile(t, dir, "notes.txt", "x")

	codes, err := NewCSVLoader(dir).ListCodes()
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 2 || codes[0] != "000001" || codes[1] != "600000" {
		t.Errorf("expected sorted [000001 600000], got %v", codes)
	}
}
