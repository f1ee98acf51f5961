package model

// Signal is the result of a successful pattern match for one symbol.
// Immutable once produced; consumed by the ranker and the result sink.
type Signal struct {
	Code         string
	Name         string
	Close        float64
	PctChange    float64
	Score        int
	Advice       string
	ProximityPct float64 // signed distance to the support MA, percent
	SupportMA    string  // which MA anchored the proximity gate, "" if unused
	StopLoss     float64 // setup bar's low
	Metrics      map[string]float64
}

// NoMatchReason identifies the gate that rejected a symbol.
type NoMatchReason string

const (
	ReasonNone           NoMatchReason = ""
	ReasonShortHistory   NoMatchReason = "short_history"
	ReasonMissingData    NoMatchReason = "missing_data"
	ReasonCodeExcluded   NoMatchReason = "code_excluded"
	ReasonNameExcluded   NoMatchReason = "name_excluded"
	ReasonPriceBand      NoMatchReason = "price_band"
	ReasonTurnover       NoMatchReason = "turnover"
	ReasonTrend          NoMatchReason = "trend"
	ReasonSetupShape     NoMatchReason = "setup_shape"
	ReasonSetupVolume    NoMatchReason = "setup_volume"
	ReasonConfirm        NoMatchReason = "confirm"
	ReasonMomentum       NoMatchReason = "momentum"
	ReasonProximity      NoMatchReason = "proximity"
	ReasonIndicatorUndef NoMatchReason = "indicator_undefined"
)

// Result is the typed per-symbol outcome of one evaluation. Exactly one
// of the three shapes holds: a Signal, a no-match reason, or an error.
// Faults never abort the run; they are counted by the orchestrator.
type Result struct {
	Code   string
	Signal *Signal
	Reason NoMatchReason
	Err    error
}

// Matched reports whether this result carries a signal.
func (r Result) Matched() bool { return r.Signal != nil && r.Err == nil }
