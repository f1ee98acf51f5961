// Package loader resolves symbol codes to daily bar series from a
// directory of per-symbol CSV snapshots.
package loader

import (
	"errors"

	"PatternScout/internal/model"
)

// ErrMissingData marks a series that cannot be evaluated: absent file,
// empty history, or required columns missing. The scanner converts it
// to a per-symbol no-match, never a run failure.
var ErrMissingData = errors.New("missing bar data")

// Loader resolves one symbol code to its bar series, sorted ascending
// by date with all required OHLCV fields present.
type Loader interface {
	Load(code string) (*model.BarSeries, error)
	Name() string
}

// Universe enumerates the symbol codes available for one run.
type Universe interface {
	ListCodes() ([]string, error)
}
