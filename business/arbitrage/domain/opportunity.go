package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RiskFactor represents a risk factor for an arbitrage opportunity.
type RiskFactor struct {
	Name        string
	Description string
	Severity    string // "low", "medium", "high"
}

// Risk factor names.
const (
	RiskLowLiquidity  = "low_liquidity"
	RiskHighFees      = "high_fees"
	RiskGasVolatility = "gas_volatility"
	RiskPlatform      = "platform_risk"
)

// Leg is one side of the position on one platform.
type Leg struct {
	Platform  string
	MarketID  string
	Chain     string
	Price     decimal.Decimal
	Liquidity decimal.Decimal
}

// ProfitabilityResult is the costed outcome of buying YES on one platform
// and NO on another.
type ProfitabilityResult struct {
	YesPlatform     string
	NoPlatform      string
	YesPrice        decimal.Decimal
	NoPrice         decimal.Decimal
	Costs           CostBreakdown
	TotalCost       decimal.Decimal
	Payout          decimal.Decimal
	NetProfit       decimal.Decimal
	ROIPercent      decimal.Decimal // e.g. 3.72 for 3.72%
	IsProfitable    bool
	Liquidity       LiquidityTier
	Confidence      decimal.Decimal
	RiskFactors     []RiskFactor
	PositionSize    decimal.Decimal
	ProjectedProfit decimal.Decimal // NetProfit * PositionSize, display only
}

// HasRisk reports whether the named risk factor was raised.
func (r ProfitabilityResult) HasRisk(name string) bool {
	for _, f := range r.RiskFactors {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Difficulty is the expected effort to fill both legs.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
)

// ClassifyDifficulty maps the average liquidity of a pair to a difficulty.
func ClassifyDifficulty(avgLiquidity decimal.Decimal) Difficulty {
	switch {
	case avgLiquidity.GreaterThan(DeepLiquidity):
		return DifficultyEasy
	case avgLiquidity.GreaterThan(ModerateLiquidity):
		return DifficultyModerate
	default:
		return DifficultyHard
	}
}

// Penalty is the difficulty contribution to the risk score.
func (d Difficulty) Penalty() float64 {
	switch d {
	case DifficultyEasy:
		return 0.1
	case DifficultyModerate:
		return 0.3
	default:
		return 0.6
	}
}

// ExecutionStep represents a step in the arbitrage execution plan.
type ExecutionStep struct {
	Number      int
	Description string
}

// Opportunity represents a detected arbitrage opportunity.
type Opportunity struct {
	ID              string
	EventKey        string
	Title           string
	YesPlatform     string
	NoPlatform      string
	YesMarketID     string
	NoMarketID      string
	Profit          ProfitabilityResult
	MatchConfidence float64
	Difficulty      Difficulty
	RiskScore       float64
	TimeToExpiry    time.Duration // zero when neither listing has an expiry
	DetectedAt      time.Time
	ExecutionSteps  []ExecutionStep
}

// PlatformPair returns the "yes→no" label used in statistics.
func (o Opportunity) PlatformPair() string {
	return o.YesPlatform + "→" + o.NoPlatform
}

// BuildExecutionSteps describes how to enter the position.
func BuildExecutionSteps(o Opportunity) []ExecutionStep {
	return []ExecutionStep{
		{Number: 1, Description: fmt.Sprintf("Buy YES on %s at %s", o.YesPlatform, o.Profit.YesPrice.StringFixed(3))},
		{Number: 2, Description: fmt.Sprintf("Buy NO on %s at %s", o.NoPlatform, o.Profit.NoPrice.StringFixed(3))},
		{Number: 3, Description: fmt.Sprintf("Hold to resolution, locked payout %s per contract", o.Profit.Payout.StringFixed(2))},
	}
}
