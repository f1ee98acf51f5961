package loader

import (
	"fmt"
	"sort"

	"PatternScout/internal/model"
)

// MockLoader serves fixed series from memory for tests and dry runs.
type MockLoader struct {
	Series map[string]*model.BarSeries
	Errs   map[string]error
}

func NewMockLoader() *MockLoader {
	return &MockLoader{
		Series: make(map[string]*model.BarSeries),
		Errs:   make(map[string]error),
	}
}

func (m *MockLoader) Name() string { return "mock" }

func (m *MockLoader) Load(code string) (*model.BarSeries, error) {
	if err, ok := m.Errs[code]; ok {
		return nil, err
	}
	s, ok := m.Series[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s not in mock", ErrMissingData, code)
	}
	return s, nil
}

// ListCodes returns the mock's codes sorted, matching the CSV loader's
// reproducible ordering.
func (m *MockLoader) ListCodes() ([]string, error) {
	codes := make([]string, 0, len(m.Series)+len(m.Errs))
	for c := range m.Series {
		codes = append(codes, c)
	}
	for c := range m.Errs {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes, nil
}
