// Package pattern holds the declarative pattern specifications and the
// gate-chain evaluator that decides whether a symbol's latest bars
// match a spec.
package pattern

import "fmt"

// TrendGate constrains the long-window moving average and the price's
// position relative to it. A zero MA disables the whole gate.
type TrendGate struct {
	MA                     int  `yaml:"ma"`
	SlopeLookback          int  `yaml:"slope_lookback"`
	RequireSetupCloseAbove bool `yaml:"require_setup_close_above"`
	RequireCloseAbove      bool `yaml:"require_close_above"`
	FastMA                 int  `yaml:"fast_ma"`
	SlowMA                 int  `yaml:"slow_ma"`
}

// SetupGate classifies the second-to-last bar (the pullback bar):
// bearish shaved-bottom body plus volume contraction against its own
// trailing volume average.
type SetupGate struct {
	Enabled         bool    `yaml:"enabled"`
	ShadowRatio     float64 `yaml:"shadow_ratio"`
	VolMAWindow     int     `yaml:"vol_ma_window"`
	MaxVolRatio     float64 `yaml:"max_vol_ratio"`
	SupportTouchPct float64 `yaml:"support_touch_pct"`
}

// ConfirmGate constrains the latest bar: bullish body, reclaim of the
// setup bar's body, volume expansion against the setup bar.
type ConfirmGate struct {
	Enabled                bool    `yaml:"enabled"`
	RequireBullish         bool    `yaml:"require_bullish"`
	RequireAboveSetupClose bool    `yaml:"require_above_setup_close"`
	ReclaimFraction        float64 `yaml:"reclaim_fraction"`
	MinVolRatio            float64 `yaml:"min_vol_ratio"`
}

// MACDGate requires the histogram above a floor and DIF above DEA.
type MACDGate struct {
	Enabled            bool    `yaml:"enabled"`
	HistFloor          float64 `yaml:"hist_floor"`
	RequireDIFAboveDEA bool    `yaml:"require_dif_above_dea"`
}

// RSIGate requires the short-period RSI inside a band and not decaying
// against the long-period RSI.
type RSIGate struct {
	Enabled               bool    `yaml:"enabled"`
	ShortWindow           int     `yaml:"short_window"`
	LongWindow            int     `yaml:"long_window"`
	Min                   float64 `yaml:"min"`
	Max                   float64 `yaml:"max"`
	RequireShortAboveLong bool    `yaml:"require_short_above_long"`
}

// StrongGeneGate requires at least one bar with a gain above the
// threshold inside the trailing lookback window.
type StrongGeneGate struct {
	Enabled    bool    `yaml:"enabled"`
	Lookback   int     `yaml:"lookback"`
	MinGainPct float64 `yaml:"min_gain_pct"`
}

// ProximityGate requires the latest close within a bounded fractional
// distance of one of the listed moving averages. The first MA that
// qualifies becomes the support anchor and the signed distance is the
// ranking tie-break.
type ProximityGate struct {
	Enabled     bool    `yaml:"enabled"`
	MAs         []int   `yaml:"mas"`
	MaxDistance float64 `yaml:"max_distance"`
}

// Bonus kinds recognised by the scorer.
const (
	BonusConfirmVolRatioAbove   = "confirm_vol_ratio_above"
	BonusConfirmGainAbove       = "confirm_gain_above"
	BonusConfirmEngulfSetupOpen = "confirm_engulf_setup_open"
	BonusSetupVolBelowPrior     = "setup_vol_below_prior"
)

// Bonus is one scoring condition worth a fixed point value.
type Bonus struct {
	Kind      string  `yaml:"kind"`
	Threshold float64 `yaml:"threshold"`
	Points    int     `yaml:"points"`
}

// AdviceTier maps a minimum score to an advice label. Tiers are ordered
// by MinScore descending; a score exactly on a boundary takes the
// higher label.
type AdviceTier struct {
	MinScore int    `yaml:"min_score"`
	Label    string `yaml:"label"`
}

// Spec is one named, declarative pattern configuration. Loaded once,
// shared read-only across all parallel evaluations.
type Spec struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`

	MinHistory int `yaml:"min_history"`

	MinPrice         float64  `yaml:"min_price"`
	MaxPrice         float64  `yaml:"max_price"`
	MinTurnover      float64  `yaml:"min_turnover"`
	IncludePrefixes  []string `yaml:"include_prefixes"`
	ExcludePrefixes  []string `yaml:"exclude_prefixes"`
	ExcludeNameMarks []string `yaml:"exclude_name_marks"`

	Trend      TrendGate      `yaml:"trend"`
	Setup      SetupGate      `yaml:"setup"`
	Confirm    ConfirmGate    `yaml:"confirm"`
	MACD       MACDGate       `yaml:"macd"`
	RSI        RSIGate        `yaml:"rsi"`
	StrongGene StrongGeneGate `yaml:"strong_gene"`
	Proximity  ProximityGate  `yaml:"proximity"`

	BaseScore int          `yaml:"base_score"`
	Bonuses   []Bonus      `yaml:"bonuses"`
	Advice    []AdviceTier `yaml:"advice"`

	TopN int `yaml:"top_n"`
}

// mapAdvice maps a total score to an advice label via the ordered tier
// table.
func (s *Spec) mapAdvice(score int) string {
	for _, t := range s.Advice {
		if score >= t.MinScore {
			return t.Label
		}
	}
	if len(s.Advice) > 0 {
		return s.Advice[len(s.Advice)-1].Label
	}
	return ""
}

// Validate rejects specs the evaluator cannot run.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("pattern name is required")
	}
	if s.MinHistory < 3 {
		return fmt.Errorf("pattern %s: min_history must be at least 3", s.Name)
	}
	if s.MaxPrice > 0 && s.MinPrice > s.MaxPrice {
		return fmt.Errorf("pattern %s: min_price above max_price", s.Name)
	}
	if s.Setup.Enabled && s.Setup.VolMAWindow <= 0 {
		return fmt.Errorf("pattern %s: setup gate needs vol_ma_window", s.Name)
	}
	if s.RSI.Enabled && (s.RSI.ShortWindow <= 0 || s.RSI.LongWindow <= 0) {
		return fmt.Errorf("pattern %s: rsi gate needs short and long windows", s.Name)
	}
	if s.Proximity.Enabled && (len(s.Proximity.MAs) == 0 || s.Proximity.MaxDistance <= 0) {
		return fmt.Errorf("pattern %s: proximity gate needs mas and max_distance", s.Name)
	}
	for _, b := range s.Bonuses {
		switch b.Kind {
		case BonusConfirmVolRatioAbove, BonusConfirmGainAbove, BonusConfirmEngulfSetupOpen, BonusSetupVolBelowPrior:
		default:
			return fmt.Errorf("pattern %s: unknown bonus kind %q", s.Name, b.Kind)
		}
	}
	return nil
}

// Builtin returns the shipped pattern table. The three variants keep
// their historically different thresholds (shadow ratio 5% vs 10%,
// price cap 20 vs 30) as independent tuning choices.
func Builtin() []Spec {
	return []Spec{
		{
			Name:             "golden_retracement",
			Label:            "金线回踩",
			MinHistory:       30,
			MinPrice:         5.0,
			MaxPrice:         20.0,
			ExcludePrefixes:  []string{"30"},
			ExcludeNameMarks: []string{"ST"},
			Trend: TrendGate{
				MA:                     21,
				RequireSetupCloseAbove: true,
			},
			Setup: SetupGate{
				Enabled:         true,
				ShadowRatio:     0.05,
				VolMAWindow:     5,
				MaxVolRatio:     1.2,
				SupportTouchPct: 0.015,
			},
			Confirm: ConfirmGate{
				Enabled:                true,
				RequireAboveSetupClose: true,
			},
			Bonuses: []Bonus{
				{Kind: BonusConfirmGainAbove, Threshold: 2.0, Points: 40},
				{Kind: BonusSetupVolBelowPrior, Points: 30},
				{Kind: BonusConfirmEngulfSetupOpen, Points: 30},
			},
			Advice: []AdviceTier{
				{MinScore: 90, Label: "重点关注/一击必中"},
				{MinScore: 60, Label: "轻仓切入"},
				{MinScore: 0, Label: "试错观察"},
			},
		},
		{
			Name:             "golden_retracement_premium",
			Label:            "金线回踩·精选",
			MinHistory:       40,
			MinPrice:         5.0,
			MaxPrice:         20.0,
			ExcludePrefixes:  []string{"30", "688", "8", "9"},
			ExcludeNameMarks: []string{"ST"},
			Trend: TrendGate{
				MA:                     21,
				SlopeLookback:          3,
				RequireSetupCloseAbove: true,
			},
			Setup: SetupGate{
				Enabled:     true,
				ShadowRatio: 0.10,
				VolMAWindow: 5,
				MaxVolRatio: 0.9,
			},
			Confirm: ConfirmGate{
				Enabled:         true,
				RequireBullish:  true,
				ReclaimFraction: 0.8,
				MinVolRatio:     1.2,
			},
			BaseScore: 60,
			Bonuses: []Bonus{
				{Kind: BonusConfirmVolRatioAbove, Threshold: 1.5, Points: 20},
				{Kind: BonusConfirmEngulfSetupOpen, Points: 20},
			},
			Advice: []AdviceTier{
				{MinScore: 100, Label: "一击必中/全仓博弈"},
				{MinScore: 80, Label: "积极参与"},
				{MinScore: 0, Label: "重点关注"},
			},
			TopN: 5,
		},
		{
			Name:             "yin_pullback",
			Label:            "线上阴线回踩",
			MinHistory:       60,
			MinPrice:         5.0,
			MaxPrice:         30.0,
			MinTurnover:      800_000_000,
			ExcludePrefixes:  []string{"30", "688", "8", "4"},
			ExcludeNameMarks: []string{"ST"},
			Trend: TrendGate{
				MA:                20,
				RequireCloseAbove: true,
				FastMA:            5,
				SlowMA:            20,
			},
			Setup: SetupGate{
				Enabled:     true,
				ShadowRatio: 0.10,
				VolMAWindow: 5,
				MaxVolRatio: 0.65,
			},
			Confirm: ConfirmGate{
				Enabled:                true,
				RequireAboveSetupClose: true,
			},
			MACD: MACDGate{
				Enabled:            true,
				HistFloor:          -0.05,
				RequireDIFAboveDEA: true,
			},
			RSI: RSIGate{
				Enabled:               true,
				ShortWindow:           6,
				LongWindow:            12,
				Min:                   50,
				Max:                   85,
				RequireShortAboveLong: true,
			},
			StrongGene: StrongGeneGate{
				Enabled:    true,
				Lookback:   15,
				MinGainPct: 9.0,
			},
			Proximity: ProximityGate{
				Enabled:     true,
				MAs:         []int{10, 5},
				MaxDistance: 0.015,
			},
			BaseScore: 60,
			Advice: []AdviceTier{
				{MinScore: 60, Label: "回踩企稳"},
				{MinScore: 0, Label: "观察"},
			},
		},
	}
}

// Merge overlays user-defined specs onto a base table: same name
// replaces, new names append. Order of the base table is preserved.
func Merge(base, overrides []Spec) []Spec {
	merged := make([]Spec, len(base))
	copy(merged, base)
	for _, o := range overrides {
		replaced := false
		for i := range merged {
			if merged[i].Name == o.Name {
				merged[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, o)
		}
	}
	return merged
}

// Find returns the spec with the given name, or nil.
func Find(specs []Spec, name string) *Spec {
	for i := range specs {
		if specs[i].Name == name {
			return &specs[i]
		}
	}
	return nil
}
