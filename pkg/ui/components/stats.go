package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Stats holds statistics for display.
type Stats struct {
	Cycles        int64
	Records       int
	Skipped       int
	Pairs         int
	Opportunities int64
	AvgROI        decimal.Decimal
	BestROI       decimal.Decimal
	Errors        int64
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update updates the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// IncErrors counts a failed cycle.
func (s *StatsComponent) IncErrors() {
	s.stats.Errors++
}

// Stats returns the displayed statistics.
func (s *StatsComponent) Stats() Stats {
	return s.stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	errorsDisplay := valueStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	if s.stats.Errors > 0 {
		errorsDisplay = errorStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Cycles: %s  │  Records: %s (%s skipped)  │  Safe pairs: %s\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Cycles)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Records)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Skipped)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Pairs)),
		) +
		fmt.Sprintf("Opportunities: %s  │  Avg ROI: %s  │  Best ROI: %s  │  Errors: %s",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Opportunities)),
			valueStyle.Render(s.stats.AvgROI.StringFixed(2)+"%"),
			valueStyle.Render(s.stats.BestROI.StringFixed(2)+"%"),
			errorsDisplay,
		)
}
