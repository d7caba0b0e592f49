// Package telemetry wires structured logging and the per-operation I/O
// report required of every BTree operation.
package telemetry

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide structured logger. Development
// mode favors readable console output, matching the REPL's audience.
func NewLogger() (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("telemetry: build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// Counters tracks the I/O counts a PageStore accumulates during a
// single user operation.
type Counters struct {
	IndexReads  int
	IndexWrites int
	DataReads   int
	DataWrites  int
}

// Reset zeroes all counters.
func (c *Counters) Reset() { *c = Counters{} }

// Report pairs a snapshot of Counters with the tree height after an
// operation completes, matching the stdout line spec.md §6 requires.
type Report struct {
	Counters
	Height int
}

// String renders "(index_reads, index_writes, data_reads, data_writes) height=H".
func (r Report) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d) height=%d",
		r.IndexReads, r.IndexWrites, r.DataReads, r.DataWrites, r.Height)
}
