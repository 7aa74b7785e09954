// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/prediction-arb/internal/apperror"
	"github.com/fd1az/prediction-arb/internal/venue"
)

// Liquidity thresholds in currency units.
var (
	DeepLiquidity     = decimal.NewFromInt(100_000)
	ModerateLiquidity = decimal.NewFromInt(20_000)
)

// Payout is the locked payout of holding both sides of a binary market.
var Payout = decimal.NewFromInt(1)

// LiquidityTier labels the depth behind a position.
type LiquidityTier string

const (
	LiquidityDeep     LiquidityTier = "deep"
	LiquidityModerate LiquidityTier = "moderate"
	LiquidityShallow  LiquidityTier = "shallow"
)

// Confidence returns how much the cost estimate can be trusted at this depth.
func (t LiquidityTier) Confidence() decimal.Decimal {
	switch t {
	case LiquidityDeep:
		return decimal.RequireFromString("0.9")
	case LiquidityModerate:
		return decimal.RequireFromString("0.7")
	default:
		return decimal.RequireFromString("0.5")
	}
}

// SlippageTable maps liquidity to an expected slippage rate.
type SlippageTable struct {
	DeepThreshold     decimal.Decimal
	ModerateThreshold decimal.Decimal
	DeepRate          decimal.Decimal
	ModerateRate      decimal.Decimal
	ShallowRate       decimal.Decimal
}

// DefaultSlippageTable returns 0.5% above 100k, 1% above 20k, else 2.5%.
func DefaultSlippageTable() SlippageTable {
	return SlippageTable{
		DeepThreshold:     DeepLiquidity,
		ModerateThreshold: ModerateLiquidity,
		DeepRate:          decimal.RequireFromString("0.005"),
		ModerateRate:      decimal.RequireFromString("0.01"),
		ShallowRate:       decimal.RequireFromString("0.025"),
	}
}

// Tier classifies liquidity. Thresholds are exclusive.
func (t SlippageTable) Tier(liquidity decimal.Decimal) LiquidityTier {
	switch {
	case liquidity.GreaterThan(t.DeepThreshold):
		return LiquidityDeep
	case liquidity.GreaterThan(t.ModerateThreshold):
		return LiquidityModerate
	default:
		return LiquidityShallow
	}
}

// Rate returns the slippage rate for one leg with the given liquidity.
func (t SlippageTable) Rate(liquidity decimal.Decimal) decimal.Decimal {
	switch t.Tier(liquidity) {
	case LiquidityDeep:
		return t.DeepRate
	case LiquidityModerate:
		return t.ModerateRate
	default:
		return t.ShallowRate
	}
}

// FeeSchedule holds every cost rate the calculator applies. Rates are
// fractions of the $1 payout unit.
type FeeSchedule struct {
	TakerFees            map[string]decimal.Decimal
	WithdrawalFees       map[string]decimal.Decimal
	DefaultTakerFee      decimal.Decimal
	DefaultWithdrawalFee decimal.Decimal
	Slippage             SlippageTable
	PartialFillRate      decimal.Decimal
}

// DefaultFeeSchedule returns the built-in per platform tables.
func DefaultFeeSchedule() FeeSchedule {
	d := decimal.RequireFromString
	return FeeSchedule{
		TakerFees: map[string]decimal.Decimal{
			venue.IDKalshi:     d("0.015"),
			venue.IDPolymarket: d("0.015"),
			venue.IDPredictIt:  d("0.05"),
			venue.IDManifold:   decimal.Zero,
			venue.IDLimitless:  d("0.02"),
			venue.IDAzuro:      d("0.025"),
			venue.IDSXBet:      d("0.02"),
			venue.IDOvertime:   d("0.02"),
		},
		WithdrawalFees: map[string]decimal.Decimal{
			venue.IDKalshi:     d("0.0005"),
			venue.IDPolymarket: d("0.001"),
			venue.IDPredictIt:  d("0.05"),
			venue.IDManifold:   decimal.Zero,
			venue.IDLimitless:  d("0.001"),
			venue.IDAzuro:      d("0.001"),
			venue.IDSXBet:      d("0.001"),
			venue.IDOvertime:   d("0.001"),
		},
		DefaultTakerFee:      d("0.02"),
		DefaultWithdrawalFee: d("0.001"),
		Slippage:             DefaultSlippageTable(),
		PartialFillRate:      d("0.005"),
	}
}

// WithOverrides returns a copy whose tables are updated with the given rates.
func (s FeeSchedule) WithOverrides(taker, withdrawal map[string]decimal.Decimal) FeeSchedule {
	s.TakerFees = mergeRates(s.TakerFees, taker)
	s.WithdrawalFees = mergeRates(s.WithdrawalFees, withdrawal)
	return s
}

// TakerFee returns the taker fee rate of a platform, or the default.
func (s FeeSchedule) TakerFee(platform string) decimal.Decimal {
	if fee, ok := s.TakerFees[venue.NormalizeID(platform)]; ok {
		return fee
	}
	return s.DefaultTakerFee
}

// WithdrawalFee returns the withdrawal cost of a platform, or the default.
func (s FeeSchedule) WithdrawalFee(platform string) decimal.Decimal {
	if fee, ok := s.WithdrawalFees[venue.NormalizeID(platform)]; ok {
		return fee
	}
	return s.DefaultWithdrawalFee
}

// Validate rejects negative or absurd rates.
func (s FeeSchedule) Validate() error {
	one := decimal.NewFromInt(1)
	check := func(name string, rate decimal.Decimal) error {
		if rate.IsNegative() || rate.GreaterThanOrEqual(one) {
			return apperror.Validation(apperror.CodeInvalidFeeSchedule, fmt.Sprintf("%s=%s", name, rate))
		}
		return nil
	}

	for p, r := range s.TakerFees {
		if err := check("taker."+p, r); err != nil {
			return err
		}
	}
	for p, r := range s.WithdrawalFees {
		if err := check("withdrawal."+p, r); err != nil {
			return err
		}
	}
	for name, r := range map[string]decimal.Decimal{
		"default_taker":      s.DefaultTakerFee,
		"default_withdrawal": s.DefaultWithdrawalFee,
		"partial_fill":       s.PartialFillRate,
		"slippage.deep":      s.Slippage.DeepRate,
		"slippage.moderate":  s.Slippage.ModerateRate,
		"slippage.shallow":   s.Slippage.ShallowRate,
	} {
		if err := check(name, r); err != nil {
			return err
		}
	}
	if s.Slippage.ModerateThreshold.GreaterThan(s.Slippage.DeepThreshold) {
		return apperror.Validation(apperror.CodeInvalidFeeSchedule, "slippage thresholds inverted")
	}
	return nil
}

func mergeRates(base, overrides map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[strings.ToLower(k)] = v
	}
	return out
}

// CostBreakdown itemizes every cost of a two-leg position, per $1 payout.
type CostBreakdown struct {
	YesFee      decimal.Decimal
	NoFee       decimal.Decimal
	YesSlippage decimal.Decimal
	NoSlippage  decimal.Decimal
	PartialFill decimal.Decimal
	Withdrawal  decimal.Decimal
}

// Fees returns the combined taker fees.
func (c CostBreakdown) Fees() decimal.Decimal {
	return c.YesFee.Add(c.NoFee)
}

// Slippage returns the combined slippage estimate.
func (c CostBreakdown) Slippage() decimal.Decimal {
	return c.YesSlippage.Add(c.NoSlippage)
}

// Total returns all costs on top of the leg prices.
func (c CostBreakdown) Total() decimal.Decimal {
	return c.Fees().Add(c.Slippage()).Add(c.PartialFill).Add(c.Withdrawal)
}
