package app

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/prediction-arb/business/arbitrage/domain"
)

// VenueClassifier answers the venue questions the risk tags need.
type VenueClassifier interface {
	IsOnChain(platform string) bool
	IsKnownSafe(platform string) bool
}

// DefaultMinSafetyMargin is the minimum ROI, in percent, for a position to
// count as profitable.
var DefaultMinSafetyMargin = decimal.RequireFromString("0.25")

var (
	hundred          = decimal.NewFromInt(100)
	highFeeThreshold = decimal.RequireFromString("0.02")
)

// CalculatorConfig configures the profitability calculator.
type CalculatorConfig struct {
	Fees            domain.FeeSchedule
	MinSafetyMargin decimal.Decimal // ROI percent
}

// ProfitCalculator computes the true net profit of a two-leg position.
type ProfitCalculator struct {
	fees            domain.FeeSchedule
	minSafetyMargin decimal.Decimal
	venues          VenueClassifier
}

// NewProfitCalculator creates a new ProfitCalculator.
func NewProfitCalculator(cfg CalculatorConfig, venues VenueClassifier) *ProfitCalculator {
	if cfg.MinSafetyMargin.IsZero() {
		cfg.MinSafetyMargin = DefaultMinSafetyMargin
	}
	return &ProfitCalculator{
		fees:            cfg.Fees,
		minSafetyMargin: cfg.MinSafetyMargin,
		venues:          venues,
	}
}

// Fees returns the schedule the calculator applies.
func (c *ProfitCalculator) Fees() domain.FeeSchedule {
	return c.fees
}

// Evaluate costs buying YES on one platform and NO on another. All amounts
// are per $1 of locked payout; positionSize only scales ProjectedProfit.
func (c *ProfitCalculator) Evaluate(yes, no domain.Leg, positionSize decimal.Decimal) domain.ProfitabilityResult {
	legSum := yes.Price.Add(no.Price)

	costs := domain.CostBreakdown{
		YesFee:      yes.Price.Mul(c.fees.TakerFee(yes.Platform)),
		NoFee:       no.Price.Mul(c.fees.TakerFee(no.Platform)),
		YesSlippage: yes.Price.Mul(c.fees.Slippage.Rate(yes.Liquidity)),
		NoSlippage:  no.Price.Mul(c.fees.Slippage.Rate(no.Liquidity)),
		PartialFill: legSum.Mul(c.fees.PartialFillRate),
		Withdrawal:  c.fees.WithdrawalFee(yes.Platform).Add(c.fees.WithdrawalFee(no.Platform)),
	}

	totalCost := legSum.Add(costs.Total())
	netProfit := domain.Payout.Sub(totalCost)

	roi := decimal.Zero
	if legSum.IsPositive() {
		roi = netProfit.Div(legSum).Mul(hundred)
	}

	tier := c.fees.Slippage.Tier(yes.Liquidity.Add(no.Liquidity))

	return domain.ProfitabilityResult{
		YesPlatform:     yes.Platform,
		NoPlatform:      no.Platform,
		YesPrice:        yes.Price,
		NoPrice:         no.Price,
		Costs:           costs,
		TotalCost:       totalCost,
		Payout:          domain.Payout,
		NetProfit:       netProfit,
		ROIPercent:      roi,
		IsProfitable:    netProfit.IsPositive() && roi.GreaterThanOrEqual(c.minSafetyMargin),
		Liquidity:       tier,
		Confidence:      tier.Confidence(),
		RiskFactors:     c.riskFactors(yes, no),
		PositionSize:    positionSize,
		ProjectedProfit: netProfit.Mul(positionSize),
	}
}

// riskFactors tags the position. The tags never change profitability.
func (c *ProfitCalculator) riskFactors(yes, no domain.Leg) []domain.RiskFactor {
	var factors []domain.RiskFactor

	if yes.Liquidity.LessThan(domain.ModerateLiquidity) || no.Liquidity.LessThan(domain.ModerateLiquidity) {
		factors = append(factors, domain.RiskFactor{
			Name:        domain.RiskLowLiquidity,
			Description: fmt.Sprintf("leg liquidity below %s", domain.ModerateLiquidity),
			Severity:    "high",
		})
	}

	yesFee, noFee := c.fees.TakerFee(yes.Platform), c.fees.TakerFee(no.Platform)
	if yesFee.GreaterThan(highFeeThreshold) || noFee.GreaterThan(highFeeThreshold) {
		factors = append(factors, domain.RiskFactor{
			Name:        domain.RiskHighFees,
			Description: fmt.Sprintf("taker fees %s/%s", yesFee, noFee),
			Severity:    "medium",
		})
	}

	if c.onChain(yes) || c.onChain(no) {
		factors = append(factors, domain.RiskFactor{
			Name:        domain.RiskGasVolatility,
			Description: "at least one leg settles on-chain",
			Severity:    "low",
		})
	}

	if !c.knownSafe(yes.Platform) || !c.knownSafe(no.Platform) {
		factors = append(factors, domain.RiskFactor{
			Name:        domain.RiskPlatform,
			Description: fmt.Sprintf("%s/%s outside the known-safe set", yes.Platform, no.Platform),
			Severity:    "medium",
		})
	}

	return factors
}

func (c *ProfitCalculator) onChain(l domain.Leg) bool {
	if l.Chain != "" {
		return true
	}
	return c.venues != nil && c.venues.IsOnChain(l.Platform)
}

func (c *ProfitCalculator) knownSafe(platform string) bool {
	return c.venues != nil && c.venues.IsKnownSafe(platform)
}
