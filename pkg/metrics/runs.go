package metrics

import "sync/atomic"

// RunTally counts pipeline run outcomes for the health endpoint.
type RunTally struct {
	done     atomic.Int64
	skipped  atomic.Int64
	failed   atomic.Int64
	degraded atomic.Int64
}

// RunCounts is a point-in-time copy of the tally.
type RunCounts struct {
	Done     int64 `json:"done"`
	Skipped  int64 `json:"skipped"`
	Failed   int64 `json:"failed"`
	Degraded int64 `json:"degraded"`
}

func (t *RunTally) AddDone()     { t.done.Add(1) }
func (t *RunTally) AddSkipped()  { t.skipped.Add(1) }
func (t *RunTally) AddFailed()   { t.failed.Add(1) }
func (t *RunTally) AddDegraded() { t.degraded.Add(1) }

// Snapshot reads the counters.
func (t *RunTally) Snapshot() RunCounts {
	return RunCounts{
		Done:     t.done.Load(),
		Skipped:  t.skipped.Load(),
		Failed:   t.failed.Load(),
		Degraded: t.degraded.Load(),
	}
}
