package api

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// opCounters tracks dispatch outcomes for one operation.
type opCounters struct {
	calls  *xsync.Counter
	errors *xsync.Counter
}

// Stats accumulates per-operation call counters across concurrent
// request handlers.
type Stats struct {
	ops *xsync.MapOf[string, *opCounters]
}

// OpStats is the rendered form of one operation's counters.
type OpStats struct {
	Calls  int64 `json:"calls"`
	Errors int64 `json:"errors"`
}

// NewStats creates an empty stats collector.
func NewStats() *Stats {
	return &Stats{ops: xsync.NewMapOf[string, *opCounters]()}
}

// Record counts one dispatched call.
func (s *Stats) Record(operation string, isError bool) {
	c, _ := s.ops.LoadOrCompute(operation, func() *opCounters {
		return &opCounters{calls: xsync.NewCounter(), errors: xsync.NewCounter()}
	})
	c.calls.Inc()
	if isError {
		c.errors.Inc()
	}
}

// Snapshot renders the current counters.
func (s *Stats) Snapshot() map[string]OpStats {
	out := make(map[string]OpStats)
	s.ops.Range(func(name string, c *opCounters) bool {
		out[name] = OpStats{Calls: c.calls.Value(), Errors: c.errors.Value()}
		return true
	})
	return out
}
