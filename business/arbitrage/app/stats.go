package app

import (
	"maps"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// RunStats is the bookkeeping of one detection cycle. It never influences
// which opportunities are returned.
type RunStats struct {
	RunID                string
	StartedAt            time.Time
	Duration             time.Duration
	RecordsIn            int
	RecordsSkipped       int
	PairsCompared        int
	PairsMatched         int
	AssignmentsEvaluated int
	Profitable           int
	AboveThreshold       int
	Returned             int
	AvgROI               decimal.Decimal // over opportunities above the ROI threshold
	BestROI              decimal.Decimal
	ByPlatformPair       map[string]int
}

// StatsSnapshot is a point-in-time view of the aggregated statistics.
type StatsSnapshot struct {
	Runs                 int64
	RecordsIn            int64
	PairsMatched         int64
	AssignmentsEvaluated int64
	Opportunities        int64
	Returned             int64
	AvgROI               decimal.Decimal
	BestROI              decimal.Decimal
	ByPlatformPair       map[string]int64
	LastRun              RunStats
	LastRunAt            time.Time
}

// StatsAggregator accumulates RunStats across cycles. It is owned by the
// caller and only changes through Record.
type StatsAggregator struct {
	mu       sync.RWMutex
	snapshot StatsSnapshot
	roiSum   decimal.Decimal
}

// NewStatsAggregator creates an empty aggregator.
func NewStatsAggregator() *StatsAggregator {
	return &StatsAggregator{
		snapshot: StatsSnapshot{ByPlatformPair: make(map[string]int64)},
	}
}

// Record merges the statistics of one run.
func (a *StatsAggregator) Record(s RunStats) {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := &a.snapshot
	snap.Runs++
	snap.RecordsIn += int64(s.RecordsIn)
	snap.PairsMatched += int64(s.PairsMatched)
	snap.AssignmentsEvaluated += int64(s.AssignmentsEvaluated)
	snap.Opportunities += int64(s.AboveThreshold)
	snap.Returned += int64(s.Returned)

	if s.AboveThreshold > 0 {
		a.roiSum = a.roiSum.Add(s.AvgROI.Mul(decimal.NewFromInt(int64(s.AboveThreshold))))
		if snap.Opportunities == int64(s.AboveThreshold) || s.BestROI.GreaterThan(snap.BestROI) {
			snap.BestROI = s.BestROI
		}
	}
	if snap.Opportunities > 0 {
		snap.AvgROI = a.roiSum.Div(decimal.NewFromInt(snap.Opportunities))
	}

	for k, v := range s.ByPlatformPair {
		snap.ByPlatformPair[k] += int64(v)
	}

	last := s
	last.ByPlatformPair = maps.Clone(s.ByPlatformPair)
	snap.LastRun = last
	snap.LastRunAt = s.StartedAt.Add(s.Duration)
}

// Snapshot returns a copy of the current statistics.
func (a *StatsAggregator) Snapshot() StatsSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := a.snapshot
	out.ByPlatformPair = maps.Clone(a.snapshot.ByPlatformPair)
	out.LastRun.ByPlatformPair = maps.Clone(a.snapshot.LastRun.ByPlatformPair)
	return out
}
