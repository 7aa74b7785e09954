package infra

import (
	"context"
	"time"

	"github.com/fd1az/prediction-arb/business/arbitrage/app"
	"github.com/fd1az/prediction-arb/business/arbitrage/domain"
	"github.com/fd1az/prediction-arb/pkg/ui"
	"github.com/fd1az/prediction-arb/pkg/ui/components"
)

// TUIReporter implements Reporter for the Bubble Tea TUI.
type TUIReporter struct {
	send func(msg any)
}

// NewTUIReporter creates a TUIReporter that forwards to the running program.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{send: func(msg any) { ui.Send(msg) }}
}

// Start marks the detector step as in progress.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.send(ui.StartupMsg{Step: "detector", Status: "connecting"})
	return nil
}

// Report sends the cycle to the TUI.
func (r *TUIReporter) Report(report app.CycleReport) {
	r.send(ToCycleMsg(report))
}

// UpdateSourceStatus sends the source status to the TUI.
func (r *TUIReporter) UpdateSourceStatus(name string, healthy bool, latency time.Duration) {
	r.send(ui.SourceStatusMsg{Name: name, Healthy: healthy, Latency: latency})
}

// Stop is a no-op; the program is owned by main.
func (r *TUIReporter) Stop() error {
	return nil
}

// ToCycleMsg converts a cycle report into its display message.
func ToCycleMsg(report app.CycleReport) ui.CycleMsg {
	rows := make([]components.OpportunityRow, 0, len(report.Opportunities))
	for _, opp := range report.Opportunities {
		rows = append(rows, toRow(opp))
	}

	totals := report.Totals
	return ui.CycleMsg{
		Source:        report.Source,
		Opportunities: rows,
		Stats: components.Stats{
			Cycles:        totals.Runs,
			Records:       report.Run.RecordsIn,
			Skipped:       report.Run.RecordsSkipped,
			Pairs:         report.Run.PairsMatched,
			Opportunities: totals.Opportunities,
			AvgROI:        totals.AvgROI,
			BestROI:       totals.BestROI,
		},
		At: report.Run.StartedAt.Add(report.Run.Duration),
	}
}

func toRow(opp domain.Opportunity) components.OpportunityRow {
	risks := make([]string, 0, len(opp.Profit.RiskFactors))
	for _, f := range opp.Profit.RiskFactors {
		risks = append(risks, f.Name)
	}

	expiry := ""
	if opp.TimeToExpiry > 0 {
		expiry = opp.TimeToExpiry.Round(time.Hour).String()
	}

	return components.OpportunityRow{
		Title:      opp.Title,
		Legs:       opp.PlatformPair(),
		YesPrice:   opp.Profit.YesPrice,
		NoPrice:    opp.Profit.NoPrice,
		ROIPercent: opp.Profit.ROIPercent,
		NetProfit:  opp.Profit.NetProfit,
		Difficulty: string(opp.Difficulty),
		RiskScore:  opp.RiskScore,
		Match:      opp.MatchConfidence,
		Expiry:     expiry,
		Risks:      risks,
	}
}
