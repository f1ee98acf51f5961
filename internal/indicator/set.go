package indicator

import "math"

// Set maps indicator names to per-bar numeric columns aligned with the
// source BarSeries. Entries before an indicator's minimum lookback are
// NaN; readers must go through At/Back, which report undefined values
// instead of handing out NaN.
type Set struct {
	length  int
	columns map[string][]float64
}

// NewSet creates an empty set for a series of the given length.
func NewSet(length int) *Set {
	return &Set{length: length, columns: make(map[string][]float64)}
}

// Len returns the series length all columns are aligned to.
func (s *Set) Len() int { return s.length }

// Add registers a column. Panics if the column length does not match
// the series; misaligned indicators are a programming error, not data.
func (s *Set) Add(name string, values []float64) {
	if len(values) != s.length {
		panic("indicator: column " + name + " misaligned with series")
	}
	s.columns[name] = values
}

// At returns the value at chronological index i. ok is false when the
// column is missing, the index is out of range, or the value is still
// inside its warmup window.
func (s *Set) At(name string, i int) (float64, bool) {
	col, found := s.columns[name]
	if !found || i < 0 || i >= len(col) {
		return 0, false
	}
	v := col[i]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Back returns the value `back` bars before the latest one. Back(name, 0)
// is the latest value.
func (s *Set) Back(name string, back int) (float64, bool) {
	return s.At(name, s.length-1-back)
}

// SlopeUp reports whether the latest value of a column is at or above
// its value k bars earlier, the coarse trend-direction flag. ok is
// false when either endpoint is undefined.
func (s *Set) SlopeUp(name string, k int) (up, ok bool) {
	now, ok1 := s.Back(name, 0)
	then, ok2 := s.Back(name, k)
	if !ok1 || !ok2 {
		return false, false
	}
	return now >= then, true
}
