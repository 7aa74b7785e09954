// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fd1az/prediction-arb/business/arbitrage/app"
	"github.com/fd1az/prediction-arb/business/arbitrage/domain"
)

const rule = "================================================================================"

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

// NewConsoleReporterTo creates a ConsoleReporter writing to w.
func NewConsoleReporterTo(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: w}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Prediction Market Arbitrage Scanner Started")
	fmt.Fprintln(r.out, "===========================================")
	return nil
}

// Report prints the ranked opportunities of one cycle.
func (r *ConsoleReporter) Report(report app.CycleReport) {
	run := report.Run

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "CYCLE %s  source=%s  records=%d (skipped %d)  safe pairs=%d  opportunities=%d/%d\n",
		run.StartedAt.Format(time.RFC3339), report.Source, run.RecordsIn, run.RecordsSkipped,
		run.PairsMatched, run.Returned, run.AboveThreshold)
	fmt.Fprintln(r.out, rule)

	if len(report.Opportunities) == 0 {
		fmt.Fprintln(r.out, "No opportunities above the ROI threshold.")
		return
	}

	for i, opp := range report.Opportunities {
		r.printOpportunity(i+1, opp)
	}

	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintf(r.out, "Avg ROI: %s%%   Best ROI: %s%%   Runs: %d\n",
		run.AvgROI.StringFixed(2), run.BestROI.StringFixed(2), report.Totals.Runs)
}

func (r *ConsoleReporter) printOpportunity(rank int, opp domain.Opportunity) {
	p := opp.Profit

	fmt.Fprintf(r.out, "#%d  %s\n", rank, opp.Title)
	fmt.Fprintf(r.out, "    YES on %-12s @ %s   NO on %-12s @ %s\n",
		opp.YesPlatform, p.YesPrice.StringFixed(3), opp.NoPlatform, p.NoPrice.StringFixed(3))
	fmt.Fprintf(r.out, "    Cost:  %s  (fees %s, slippage %s, partial fill %s, withdrawal %s)\n",
		p.TotalCost.StringFixed(4), p.Costs.Fees().StringFixed(4), p.Costs.Slippage().StringFixed(4),
		p.Costs.PartialFill.StringFixed(4), p.Costs.Withdrawal.StringFixed(4))
	fmt.Fprintf(r.out, "    Net:   %s per contract  ROI %s%%  projected %s on %s\n",
		p.NetProfit.StringFixed(4), p.ROIPercent.StringFixed(2),
		p.ProjectedProfit.StringFixed(2), p.PositionSize.StringFixed(0))
	fmt.Fprintf(r.out, "    Match %.3f  Difficulty %s  Risk %.2f  Liquidity %s%s\n",
		opp.MatchConfidence, opp.Difficulty, opp.RiskScore, p.Liquidity, expiryLabel(opp.TimeToExpiry))

	if len(p.RiskFactors) > 0 {
		names := make([]string, 0, len(p.RiskFactors))
		for _, f := range p.RiskFactors {
			names = append(names, f.Name)
		}
		fmt.Fprintf(r.out, "    Risks: %s\n", strings.Join(names, ", "))
	}
}

func expiryLabel(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return "  Expires in " + d.Round(time.Minute).String()
}

// UpdateSourceStatus prints source health changes.
func (r *ConsoleReporter) UpdateSourceStatus(name string, healthy bool, latency time.Duration) {
	status := "unavailable"
	if healthy {
		status = fmt.Sprintf("ok (%s)", latency.Round(time.Millisecond))
	}
	fmt.Fprintf(r.out, "[%s] %s: %s\n", time.Now().Format("15:04:05"), name, status)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Prediction Market Arbitrage Scanner Stopped")
	return nil
}
