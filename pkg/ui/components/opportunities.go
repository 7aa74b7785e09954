// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// OpportunityRow is one ranked opportunity as displayed.
type OpportunityRow struct {
	Title      string
	Legs       string // "kalshi→polymarket"
	YesPrice   decimal.Decimal
	NoPrice    decimal.Decimal
	ROIPercent decimal.Decimal
	NetProfit  decimal.Decimal
	Difficulty string
	RiskScore  float64
	Match      float64
	Expiry     string
	Risks      []string
}

// OpportunitiesComponent renders the ranked opportunity table.
type OpportunitiesComponent struct {
	rows    []OpportunityRow
	maxRows int
	offset  int
}

// NewOpportunitiesComponent creates a new opportunities component.
func NewOpportunitiesComponent(maxRows int) *OpportunitiesComponent {
	return &OpportunitiesComponent{maxRows: maxRows}
}

// Set replaces the table with the latest ranking.
func (o *OpportunitiesComponent) Set(rows []OpportunityRow) {
	if len(rows) > o.maxRows {
		rows = rows[:o.maxRows]
	}
	o.rows = rows
	if o.offset >= len(o.rows) {
		o.offset = 0
	}
}

// Len returns the number of rows held.
func (o *OpportunitiesComponent) Len() int {
	return len(o.rows)
}

// Clear clears all opportunities.
func (o *OpportunitiesComponent) Clear() {
	o.rows = nil
	o.offset = 0
}

// ScrollUp moves the view one row up.
func (o *OpportunitiesComponent) ScrollUp() {
	if o.offset > 0 {
		o.offset--
	}
}

// ScrollDown moves the view one row down.
func (o *OpportunitiesComponent) ScrollDown() {
	if o.offset < len(o.rows)-1 {
		o.offset++
	}
}

// View renders at most visible rows starting at the scroll offset.
func (o *OpportunitiesComponent) View(visible int) string {
	if len(o.rows) == 0 {
		return "No opportunities above threshold yet..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	roiStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	riskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("OPPORTUNITIES (%d)", len(o.rows))))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  %-3s %-28s %-24s %6s %6s %8s %-9s %5s %5s\n",
		"#", "Event", "YES→NO", "Yes", "No", "ROI", "Diff", "Risk", "Match"))
	b.WriteString(dimStyle.Render("  "+strings.Repeat("─", 104)) + "\n")

	end := len(o.rows)
	if visible > 0 && o.offset+visible < end {
		end = o.offset + visible
	}

	for i := o.offset; i < end; i++ {
		row := o.rows[i]
		b.WriteString(fmt.Sprintf("  %-3d %-28s %-24s %6s %6s %s %-9s %5.2f %5.2f\n",
			i+1,
			truncate(row.Title, 28),
			truncate(row.Legs, 24),
			row.YesPrice.StringFixed(3),
			row.NoPrice.StringFixed(3),
			roiStyle.Render(fmt.Sprintf("%7s%%", row.ROIPercent.StringFixed(2))),
			row.Difficulty,
			row.RiskScore,
			row.Match,
		))
		if len(row.Risks) > 0 {
			b.WriteString(riskStyle.Render("      ⚠ "+strings.Join(row.Risks, ", ")) + "\n")
		}
	}

	if end < len(o.rows) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more", len(o.rows)-end)))
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
