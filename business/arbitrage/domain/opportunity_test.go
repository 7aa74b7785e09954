package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestClassifyDifficulty(t *testing.T) {
	tests := []struct {
		liquidity string
		want      Difficulty
		penalty   float64
	}{
		{"150000", DifficultyEasy, 0.1},
		{"100000", DifficultyModerate, 0.3},
		{"20001", DifficultyModerate, 0.3},
		{"20000", DifficultyHard, 0.6},
		{"0", DifficultyHard, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.liquidity, func(t *testing.T) {
			got := ClassifyDifficulty(decimal.RequireFromString(tt.liquidity))
			if got != tt.want {
				t.Errorf("ClassifyDifficulty = %s, want %s", got, tt.want)
			}
			if got.Penalty() != tt.penalty {
				t.Errorf("Penalty = %v, want %v", got.Penalty(), tt.penalty)
			}
		})
	}
}

func TestOpportunity_Helpers(t *testing.T) {
	o := Opportunity{
		YesPlatform: "kalshi",
		NoPlatform:  "polymarket",
		Profit: ProfitabilityResult{
			YesPrice:    decimal.RequireFromString("0.35"),
			NoPrice:     decimal.RequireFromString("0.59"),
			Payout:      Payout,
			RiskFactors: []RiskFactor{{Name: RiskGasVolatility}},
		},
	}

	if o.PlatformPair() != "kalshi→polymarket" {
		t.Errorf("PlatformPair = %q", o.PlatformPair())
	}
	if !o.Profit.HasRisk(RiskGasVolatility) || o.Profit.HasRisk(RiskHighFees) {
		t.Error("HasRisk mismatch")
	}

	steps := BuildExecutionSteps(o)
	if len(steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(steps))
	}
	if !strings.Contains(steps[0].Description, "YES on kalshi at 0.350") {
		t.Errorf("step 1 = %q", steps[0].Description)
	}
	if !strings.Contains(steps[1].Description, "NO on polymarket at 0.590") {
		t.Errorf("step 2 = %q", steps[1].Description)
	}
}
