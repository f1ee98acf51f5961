package model

import "time"

// Bar represents one trading day for one symbol.
// Turnover and PctChange are optional columns; NaN when the source
// file does not carry them.
type Bar struct {
	Date      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Turnover  float64
	PctChange float64
}

// BarSeries holds the full daily history for a single symbol,
// strictly ascending by date with no duplicate dates.
type BarSeries struct {
	Code string
	Bars []Bar
}

// Len returns the number of bars in the series.
func (s *BarSeries) Len() int { return len(s.Bars) }

// At returns the bar at offset i from the end: At(0) is the latest
// bar, At(1) the bar before it. Callers must check Len first.
func (s *BarSeries) At(i int) Bar {
	return s.Bars[len(s.Bars)-1-i]
}

// Closes extracts the close column in chronological order.
func (s *BarSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume column in chronological order.
func (s *BarSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}
