package pattern

import (
	"fmt"
	"math"
	"strings"

	"PatternScout/internal/indicator"
	"PatternScout/internal/model"
)

// Evaluate runs one spec's gate chain against the latest bars of an
// indicator-augmented series. It never faults on degenerate numbers:
// undefined indicator values and zero denominators resolve to a
// no-match result. displayName is the registry-resolved name used for
// the name-marker exclusion and the emitted signal.
func Evaluate(series *model.BarSeries, ind *indicator.Set, spec *Spec, displayName string) model.Result {
	res := model.Result{Code: series.Code}

	// 1. History sufficiency. Three bars minimum regardless of spec:
	// the chain reads the confirmation bar, the setup bar and the bar
	// before the setup.
	minHistory := spec.MinHistory
	if minHistory < 3 {
		minHistory = 3
	}
	if series.Len() < minHistory {
		res.Reason = model.ReasonShortHistory
		return res
	}

	t0 := series.At(0) // confirmation bar (latest)
	t1 := series.At(1) // setup bar (pullback)
	t2 := series.At(2) // bar before the setup

	// 2. Universe eligibility.
	if reason := checkEligibility(series.Code, displayName, t0, spec); reason != model.ReasonNone {
		res.Reason = reason
		return res
	}

	// 3. Trend gate.
	if reason := checkTrend(t0, t1, ind, spec); reason != model.ReasonNone {
		res.Reason = reason
		return res
	}

	// 4. Setup-bar shape and volume contraction.
	setupBody := t1.Open - t1.Close
	if spec.Setup.Enabled {
		if reason := checkSetup(t1, setupBody, ind, spec); reason != model.ReasonNone {
			res.Reason = reason
			return res
		}
	}

	// 5. Confirmation bar.
	if spec.Confirm.Enabled {
		if reason := checkConfirm(t0, t1, setupBody, spec); reason != model.ReasonNone {
			res.Reason = reason
			return res
		}
	}

	// 6. Oscillator/momentum gates.
	if reason := checkMomentum(ind, spec); reason != model.ReasonNone {
		res.Reason = reason
		return res
	}

	// 7. Proximity/support gate.
	supportMA, proximityPct, reason := checkProximity(t0, ind, spec)
	if reason != model.ReasonNone {
		res.Reason = reason
		return res
	}

	// All gates passed: score, label, assemble the signal.
	volRatio := 0.0
	if t1.Volume > 0 {
		volRatio = t0.Volume / t1.Volume
	}
	score := spec.BaseScore
	for _, b := range spec.Bonuses {
		if bonusHit(b, t0, t1, t2, volRatio, ind) {
			score += b.Points
		}
	}

	pct, ok := ind.Back("pct_change", 0)
	if !ok {
		pct = 0
	}

	metrics := map[string]float64{
		"vol_ratio": volRatio,
	}
	if !math.IsNaN(t0.Turnover) {
		metrics["turnover"] = t0.Turnover
	}
	if v, ok := ind.Back("macd", 0); ok {
		metrics["macd"] = v
	}
	if spec.Setup.Enabled {
		if vma, ok := ind.Back(fmt.Sprintf("vol_ma%d", spec.Setup.VolMAWindow), 1); ok && vma > 0 {
			metrics["setup_vol_ratio"] = t1.Volume / vma
		}
	}
	if supportMA != "" {
		metrics["proximity_pct"] = proximityPct
	}

	res.Signal = &model.Signal{
		Code:         series.Code,
		Name:         displayName,
		Close:        t0.Close,
		PctChange:    pct,
		Score:        score,
		Advice:       spec.mapAdvice(score),
		ProximityPct: proximityPct,
		SupportMA:    supportMA,
		StopLoss:     t1.Low,
		Metrics:      metrics,
	}
	return res
}

func checkEligibility(code, name string, latest model.Bar, spec *Spec) model.NoMatchReason {
	for _, p := range spec.ExcludePrefixes {
		if strings.HasPrefix(code, p) {
			return model.ReasonCodeExcluded
		}
	}
	if len(spec.IncludePrefixes) > 0 {
		included := false
		for _, p := range spec.IncludePrefixes {
			if strings.HasPrefix(code, p) {
				included = true
				break
			}
		}
		if !included {
			return model.ReasonCodeExcluded
		}
	}
	for _, m := range spec.ExcludeNameMarks {
		if m != "" && strings.Contains(name, m) {
			return model.ReasonNameExcluded
		}
	}
	if latest.Close < spec.MinPrice || (spec.MaxPrice > 0 && latest.Close > spec.MaxPrice) {
		return model.ReasonPriceBand
	}
	if spec.MinTurnover > 0 {
		if math.IsNaN(latest.Turnover) || latest.Turnover < spec.MinTurnover {
			return model.ReasonTurnover
		}
	}
	return model.ReasonNone
}

func checkTrend(t0, t1 model.Bar, ind *indicator.Set, spec *Spec) model.NoMatchReason {
	g := spec.Trend
	if g.MA > 0 {
		col := fmt.Sprintf("ma%d", g.MA)
		if g.SlopeLookback > 0 {
			up, ok := ind.SlopeUp(col, g.SlopeLookback)
			if !ok {
				return model.ReasonIndicatorUndef
			}
			if !up {
				return model.ReasonTrend
			}
		}
		if g.RequireSetupCloseAbove {
			ma, ok := ind.Back(col, 1)
			if !ok {
				return model.ReasonIndicatorUndef
			}
			if t1.Close < ma {
				return model.ReasonTrend
			}
		}
		if g.RequireCloseAbove {
			ma, ok := ind.Back(col, 0)
			if !ok {
				return model.ReasonIndicatorUndef
			}
			if t0.Close < ma {
				return model.ReasonTrend
			}
		}
	}
	if g.FastMA > 0 && g.SlowMA > 0 {
		fast, ok1 := ind.Back(fmt.Sprintf("ma%d", g.FastMA), 0)
		slow, ok2 := ind.Back(fmt.Sprintf("ma%d", g.SlowMA), 0)
		if !ok1 || !ok2 {
			return model.ReasonIndicatorUndef
		}
		if fast <= slow {
			return model.ReasonTrend
		}
	}
	return model.ReasonNone
}

// checkSetup classifies the pullback bar. A zero or bullish body never
// satisfies the shape gate, so the shadow/body ratio cannot divide by
// zero and cannot default to a match.
func checkSetup(t1 model.Bar, body float64, ind *indicator.Set, spec *Spec) model.NoMatchReason {
	g := spec.Setup
	if body <= 0 {
		return model.ReasonSetupShape
	}
	lowerShadow := t1.Close - t1.Low
	if lowerShadow < 0 || lowerShadow > body*g.ShadowRatio {
		return model.ReasonSetupShape
	}

	vma, ok := ind.Back(fmt.Sprintf("vol_ma%d", g.VolMAWindow), 1)
	if !ok {
		return model.ReasonIndicatorUndef
	}
	if vma <= 0 || t1.Volume >= vma*g.MaxVolRatio {
		return model.ReasonSetupVolume
	}

	if g.SupportTouchPct > 0 && spec.Trend.MA > 0 {
		ma, ok := ind.Back(fmt.Sprintf("ma%d", spec.Trend.MA), 1)
		if !ok {
			return model.ReasonIndicatorUndef
		}
		if ma <= 0 || math.Abs(t1.Low-ma)/ma > g.SupportTouchPct {
			return model.ReasonProximity
		}
	}
	return model.ReasonNone
}

func checkConfirm(t0, t1 model.Bar, setupBody float64, spec *Spec) model.NoMatchReason {
	g := spec.Confirm
	if g.RequireBullish && t0.Close <= t0.Open {
		return model.ReasonConfirm
	}
	if g.RequireAboveSetupClose && t0.Close <= t1.Close {
		return model.ReasonConfirm
	}
	if g.ReclaimFraction > 0 {
		if setupBody <= 0 || t0.Close <= t1.Close+setupBody*g.ReclaimFraction {
			return model.ReasonConfirm
		}
	}
	if g.MinVolRatio > 0 {
		// Zero setup volume makes the expansion ratio undefined; the
		// documented rule is no-match, not a fault.
		if t1.Volume <= 0 || t0.Volume/t1.Volume < g.MinVolRatio {
			return model.ReasonConfirm
		}
	}
	return model.ReasonNone
}

func checkMomentum(ind *indicator.Set, spec *Spec) model.NoMatchReason {
	if spec.MACD.Enabled {
		hist, ok1 := ind.Back("macd", 0)
		dif, ok2 := ind.Back("dif", 0)
		dea, ok3 := ind.Back("dea", 0)
		if !ok1 || !ok2 || !ok3 {
			return model.ReasonIndicatorUndef
		}
		if hist <= spec.MACD.HistFloor {
			return model.ReasonMomentum
		}
		if spec.MACD.RequireDIFAboveDEA && dif <= dea {
			return model.ReasonMomentum
		}
	}
	if spec.RSI.Enabled {
		short, ok1 := ind.Back(fmt.Sprintf("rsi%d", spec.RSI.ShortWindow), 0)
		long, ok2 := ind.Back(fmt.Sprintf("rsi%d", spec.RSI.LongWindow), 0)
		if !ok1 || !ok2 {
			return model.ReasonIndicatorUndef
		}
		if short < spec.RSI.Min || (spec.RSI.Max > 0 && short > spec.RSI.Max) {
			return model.ReasonMomentum
		}
		if spec.RSI.RequireShortAboveLong && short < long {
			return model.ReasonMomentum
		}
	}
	if spec.StrongGene.Enabled {
		found := false
		for back := 0; back < spec.StrongGene.Lookback; back++ {
			if v, ok := ind.Back("pct_change", back); ok && v > spec.StrongGene.MinGainPct {
				found = true
				break
			}
		}
		if !found {
			return model.ReasonMomentum
		}
	}
	return model.ReasonNone
}

// checkProximity finds the first listed MA within the configured
// distance of the latest close. Returns the anchor column name and the
// signed distance in percent.
func checkProximity(t0 model.Bar, ind *indicator.Set, spec *Spec) (string, float64, model.NoMatchReason) {
	g := spec.Proximity
	if !g.Enabled {
		return "", 0, model.ReasonNone
	}
	for _, w := range g.MAs {
		col := fmt.Sprintf("ma%d", w)
		ma, ok := ind.Back(col, 0)
		if !ok || ma <= 0 {
			continue
		}
		dist := (t0.Close - ma) / ma
		if math.Abs(dist) <= g.MaxDistance {
			return col, dist * 100, model.ReasonNone
		}
	}
	return "", 0, model.ReasonProximity
}

func bonusHit(b Bonus, t0, t1, t2 model.Bar, volRatio float64, ind *indicator.Set) bool {
	switch b.Kind {
	case BonusConfirmVolRatioAbove:
		return volRatio > b.Threshold
	case BonusConfirmGainAbove:
		v, ok := ind.Back("pct_change", 0)
		return ok && v > b.Threshold
	case BonusConfirmEngulfSetupOpen:
		return t0.Close > t1.Open
	case BonusSetupVolBelowPrior:
		return t1.Volume < t2.Volume
	}
	return false
}
