// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"time"

	"github.com/fd1az/prediction-arb/business/arbitrage/domain"
	matchingApp "github.com/fd1az/prediction-arb/business/matching/app"
	matchingDomain "github.com/fd1az/prediction-arb/business/matching/domain"
)

// RecordSource supplies normalized market listings.
type RecordSource interface {
	// Name identifies the source in logs and status displays.
	Name() string

	// Fetch returns the current batch of listings.
	Fetch(ctx context.Context) (matchingDomain.Batch, error)
}

// EventMatcher groups listings that describe the same event.
type EventMatcher interface {
	Match(ctx context.Context, records []matchingDomain.MarketRecord) matchingApp.MatchResult
}

// CycleReport is everything a reporter needs to render one detection cycle.
type CycleReport struct {
	Source        string
	FetchedAt     time.Time
	Opportunities []domain.Opportunity
	Run           RunStats
	Totals        StatsSnapshot
}

// Reporter defines the interface for reporting arbitrage opportunities.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report publishes the outcome of one detection cycle.
	Report(report CycleReport)

	// UpdateSourceStatus updates the record source status display.
	UpdateSourceStatus(name string, healthy bool, latency time.Duration)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
