// Package ui provides the Bubble Tea TUI for the prediction-market arbitrage scanner.
package ui

import (
	"time"

	"github.com/fd1az/prediction-arb/pkg/ui/components"
)

// Message types for TUI updates

// CycleMsg is sent after every completed detection cycle.
type CycleMsg struct {
	Source        string
	Opportunities []components.OpportunityRow
	Stats         components.Stats
	At            time.Time
}

// SourceStatusMsg is sent when a record source is polled.
type SourceStatusMsg struct {
	Name    string
	Healthy bool
	Latency time.Duration
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // "config", "source", "detector"
	Status  string // "connecting", "connected", "failed"
	Message string
}
