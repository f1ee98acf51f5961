package scan

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"PatternScout/internal/loader"
	"PatternScout/internal/model"
	"PatternScout/internal/pattern"
	"PatternScout/internal/registry"
)

func testSpec() *pattern.Spec {
	return &pattern.Spec{
		Name:             "test_pullback",
		MinHistory:       60,
		MinPrice:         5.0,
		MaxPrice:         30.0,
		ExcludeNameMarks: []string{"ST"},
		Trend: pattern.TrendGate{
			MA:                20,
			RequireCloseAbove: true,
		},
		Setup: pattern.SetupGate{
			Enabled:     true,
			ShadowRatio: 0.10,
			VolMAWindow: 5,
			MaxVolRatio: 0.70,
		},
		Confirm: pattern.ConfirmGate{
			Enabled:                true,
			RequireBullish:         true,
			RequireAboveSetupClose: true,
		},
		BaseScore: 60,
		Advice:    []pattern.AdviceTier{{MinScore: 0, Label: "关注"}},
	}
}

// matchingSeries builds a 60-bar series that passes every gate of
// testSpec: a plateau, a shaved-bottom low-volume pullback bar, and a
// bullish reclaim bar.
func matchingSeries(code string) *model.BarSeries {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, 60)
	for i := range bars {
		close := 10.0
		if i >= 45 {
			close = 10.8
		}
		bars[i] = model.Bar{
			Date: base.AddDate(0, 0, i), Open: close, High: close, Low: close,
			Close: close, Volume: 100000,
		}
	}
	bars[58] = model.Bar{
		Date: base.AddDate(0, 0, 58), Open: 10.80, High: 10.82, Low: 10.55,
		Close: 10.55, Volume: 60000,
	}
	bars[59] = model.Bar{
		Date: base.AddDate(0, 0, 59), Open: 10.60, High: 10.78, Low: 10.58,
		Close: 10.75, Volume: 100000,
	}
	return &model.BarSeries{Code: code, Bars: bars}
}

func newTestScanner(ml *loader.MockLoader, names map[string]string) *Scanner {
	return New(ml, ml, registry.New(names), 4, zap.NewNop())
}

func TestRun_CollectsMatchesAndIsolatesFaults(t *testing.T) {
	ml := loader.NewMockLoader()
	ml.Series["600001"] = matchingSeries("600001")
	ml.Series["600002"] = matchingSeries("600002")
	ml.Series["600777"] = matchingSeries("600777") // ST name, excluded
	ml.Series["000100"] = &model.BarSeries{Code: "000100", Bars: matchingSeries("000100").Bars[:10]}
	ml.Errs["600666"] = errors.New("disk on fire")
	ml.Errs["000200"] = loader.ErrMissingData

	sc := newTestScanner(ml, map[string]string{
		"600001": "甲公司",
		"600002": "乙公司",
		"600777": "*ST丙",
	})
	summary, err := sc.Run(testSpec())
	if err != nil {
		t.Fatal(err)
	}

	if summary.UniverseSize != 6 {
		t.Errorf("expected universe 6, got %d", summary.UniverseSize)
	}
	if len(summary.Signals) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(summary.Signals))
	}
	if summary.Failed != 1 {
		t.Errorf("expected 1 failed symbol, got %d", summary.Failed)
	}
	if summary.Rejected[model.ReasonNameExcluded] != 1 {
		t.Errorf("expected 1 name exclusion, got %v", summary.Rejected)
	}
	if summary.Rejected[model.ReasonShortHistory] != 1 {
		t.Errorf("expected 1 short history, got %v", summary.Rejected)
	}
	if summary.Rejected[model.ReasonMissingData] != 1 {
		t.Errorf("expected missing data recovered as no-match, got %v", summary.Rejected)
	}

	for _, sig := range summary.Signals {
		if sig.Name == registry.UnknownName {
			t.Errorf("matched signal %s lost its registry name", sig.Code)
		}
	}
}

func TestRun_EmptyUniverse(t *testing.T) {
	sc := newTestScanner(loader.NewMockLoader(), nil)
	_, err := sc.Run(testSpec())
	if !errors.Is(err, ErrEmptyUniverse) {
		t.Errorf("expected ErrEmptyUniverse, got %v", err)
	}
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	ml := loader.NewMockLoader()
	for _, code := range []string{"600001", "600002", "600003", "600004"} {
		ml.Series[code] = matchingSeries(code)
	}
	names := map[string]string{}

	var first []*model.Signal
	for _, workers := range []int{1, 8} {
		sc := New(ml, ml, registry.New(names), workers, zap.NewNop())
		summary, err := sc.Run(testSpec())
		if err != nil {
			t.Fatal(err)
		}
		ranked := Rank(summary.Signals)
		if first == nil {
			first = ranked
			continue
		}
		if len(ranked) != len(first) {
			t.Fatalf("worker count changed match count: %d vs %d", len(ranked), len(first))
		}
		for i := range ranked {
			if ranked[i].Code != first[i].Code {
				t.Errorf("rank %d: %s vs %s", i, ranked[i].Code, first[i].Code)
			}
		}
	}
}
