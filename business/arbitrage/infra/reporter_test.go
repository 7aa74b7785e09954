package infra

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/prediction-arb/business/arbitrage/app"
	"github.com/fd1az/prediction-arb/business/arbitrage/domain"
	"github.com/fd1az/prediction-arb/pkg/ui"
)

func sampleReport() app.CycleReport {
	opp := domain.Opportunity{
		ID:              "opp-1",
		Title:           "Will Bitcoin be above $100k by end of 2026?",
		YesPlatform:     "kalshi",
		NoPlatform:      "polymarket",
		MatchConfidence: 1,
		Difficulty:      domain.DifficultyEasy,
		RiskScore:       0.03,
		TimeToExpiry:    48 * time.Hour,
		Profit: domain.ProfitabilityResult{
			YesPrice:    decimal.RequireFromString("0.35"),
			NoPrice:     decimal.RequireFromString("0.55"),
			TotalCost:   decimal.RequireFromString("0.9285"),
			NetProfit:   decimal.RequireFromString("0.0715"),
			ROIPercent:  decimal.RequireFromString("7.944444"),
			Liquidity:   domain.LiquidityDeep,
			RiskFactors: []domain.RiskFactor{{Name: domain.RiskGasVolatility, Severity: "low"}},
		},
	}
	return app.CycleReport{
		Source:        "file",
		Opportunities: []domain.Opportunity{opp},
		Run: app.RunStats{
			StartedAt:      time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
			RecordsIn:      3,
			PairsMatched:   3,
			AboveThreshold: 1,
			Returned:       1,
			AvgROI:         decimal.RequireFromString("7.944444"),
			BestROI:        decimal.RequireFromString("7.944444"),
		},
		Totals: app.StatsSnapshot{Runs: 1, Opportunities: 1},
	}
}

func TestConsoleReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporterTo(&buf)

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	r.Report(sampleReport())
	r.UpdateSourceStatus("file", false, 0)
	_ = r.Stop()

	out := buf.String()
	for _, want := range []string{
		"YES on kalshi",
		"NO on polymarket",
		"ROI 7.94%",
		"Difficulty easy",
		"Risks: gas_volatility",
		"file: unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestConsoleReporter_EmptyCycle(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleReporterTo(&buf).Report(app.CycleReport{Source: "file"})
	if !strings.Contains(buf.String(), "No opportunities") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestTUIReporter_Forwards(t *testing.T) {
	var sent []any
	r := &TUIReporter{send: func(msg any) { sent = append(sent, msg) }}

	r.Report(sampleReport())
	r.UpdateSourceStatus("http", true, 20*time.Millisecond)

	if len(sent) != 2 {
		t.Fatalf("sent = %d messages, want 2", len(sent))
	}
	cycle, ok := sent[0].(ui.CycleMsg)
	if !ok {
		t.Fatalf("first message = %T", sent[0])
	}
	if len(cycle.Opportunities) != 1 || cycle.Opportunities[0].Legs != "kalshi→polymarket" {
		t.Errorf("rows = %+v", cycle.Opportunities)
	}
	if cycle.Stats.Cycles != 1 || cycle.Stats.Records != 3 {
		t.Errorf("stats = %+v", cycle.Stats)
	}
	if status, ok := sent[1].(ui.SourceStatusMsg); !ok || !status.Healthy {
		t.Errorf("second message = %+v", sent[1])
	}
}
