// Package scan fans pattern evaluation out over the symbol universe
// and collects the per-symbol outcomes behind a join barrier.
package scan

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"PatternScout/internal/indicator"
	"PatternScout/internal/loader"
	"PatternScout/internal/model"
	"PatternScout/internal/pattern"
	"PatternScout/internal/registry"
)

// ErrEmptyUniverse is returned when no symbols are discovered. A
// "no candidates" outcome for the caller, not a fault.
var ErrEmptyUniverse = errors.New("no symbols in universe")

// Summary is the outcome of one full scan.
type Summary struct {
	Pattern      string
	UniverseSize int
	Signals      []*model.Signal
	Failed       int
	Rejected     map[model.NoMatchReason]int
	Elapsed      time.Duration
}

// Scanner runs one pattern spec across the whole universe using a
// fixed-size worker pool. The spec and registry are shared read-only;
// each worker owns only its current symbol's series.
type Scanner struct {
	loader   loader.Loader
	universe loader.Universe
	registry *registry.Registry
	workers  int
	logger   *zap.Logger
}

// New creates a scanner. workers <= 0 sizes the pool to the available
// CPUs.
func New(ld loader.Loader, uni loader.Universe, reg *registry.Registry, workers int, logger *zap.Logger) *Scanner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scanner{
		loader:   ld,
		universe: uni,
		registry: reg,
		workers:  workers,
		logger:   logger,
	}
}

// Run evaluates the spec against every symbol in the universe and
// returns the collected summary once all workers have finished. One
// symbol's fault never affects its siblings.
func (s *Scanner) Run(spec *pattern.Spec) (*Summary, error) {
	start := time.Now()

	codes, err := s.universe.ListCodes()
	if err != nil {
		return nil, fmt.Errorf("enumerate universe: %w", err)
	}
	if len(codes) == 0 {
		return nil, ErrEmptyUniverse
	}

	s.logger.Info("scan started",
		zap.String("pattern", spec.Name),
		zap.Int("universe", len(codes)),
		zap.Int("workers", s.workers),
	)

	jobs := make(chan string)
	results := make(chan model.Result)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				results <- s.evaluateOne(code, spec)
			}
		}()
	}

	go func() {
		for _, code := range codes {
			jobs <- code
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	summary := &Summary{
		Pattern:      spec.Name,
		UniverseSize: len(codes),
		Rejected:     make(map[model.NoMatchReason]int),
	}
	for res := range results {
		switch {
		case res.Err != nil:
			summary.Failed++
			s.logger.Warn("symbol failed", zap.String("code", res.Code), zap.Error(res.Err))
		case res.Matched():
			summary.Signals = append(summary.Signals, res.Signal)
			s.logger.Debug("symbol matched",
				zap.String("code", res.Code),
				zap.Int("score", res.Signal.Score),
			)
		default:
			summary.Rejected[res.Reason]++
		}
	}

	summary.Elapsed = time.Since(start)
	s.logger.Info("scan finished",
		zap.String("pattern", spec.Name),
		zap.Int("matched", len(summary.Signals)),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// evaluateOne is the per-symbol task boundary: loader faults become
// typed results and panics are contained here.
func (s *Scanner) evaluateOne(code string, spec *pattern.Spec) (res model.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = model.Result{Code: code, Err: fmt.Errorf("evaluate %s: panic: %v", code, r)}
		}
	}()

	series, err := s.loader.Load(code)
	if err != nil {
		if errors.Is(err, loader.ErrMissingData) {
			return model.Result{Code: code, Reason: model.ReasonMissingData}
		}
		return model.Result{Code: code, Err: err}
	}

	ind := indicator.Compute(series)
	return pattern.Evaluate(series, ind, spec, s.registry.Lookup(code))
}
