package recorder

import (
	"time"

	"PatternScout/internal/model"
)

// ScanRecord holds the run-level facts persisted for one scan.
type ScanRecord struct {
	RunID        string
	Pattern      string
	UniverseSize int
	Matched      int
	Failed       int
	Elapsed      time.Duration
	OutputPath   string
}

// Recorder persists scan history for later analysis.
type Recorder interface {
	RecordScan(rec *ScanRecord, signals []*model.Signal) error
	Close() error
}
