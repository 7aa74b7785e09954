package app

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/prediction-arb/business/arbitrage/domain"
	"github.com/fd1az/prediction-arb/internal/venue"
)

var tolerance = decimal.RequireFromString("0.000001")

func newTestCalculator() *ProfitCalculator {
	return NewProfitCalculator(CalculatorConfig{Fees: domain.DefaultFeeSchedule()}, venue.DefaultRegistry())
}

func leg(platform, price, liquidity string) domain.Leg {
	return domain.Leg{
		Platform:  platform,
		Price:     decimal.RequireFromString(price),
		Liquidity: decimal.RequireFromString(liquidity),
	}
}

func assertClose(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	w := decimal.RequireFromString(want)
	if got.Sub(w).Abs().GreaterThan(tolerance) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestEvaluate_DocumentedExample(t *testing.T) {
	// yes 0.35 and no 0.59, both at 1.5% taker fee with deep liquidity.
	calc := newTestCalculator()
	res := calc.Evaluate(leg("kalshi", "0.35", "150000"), leg("polymarket", "0.59", "150000"), decimal.NewFromInt(100))

	assertClose(t, "fees", res.Costs.Fees(), "0.0141")
	assertClose(t, "slippage", res.Costs.Slippage(), "0.0047")
	assertClose(t, "partial fill", res.Costs.PartialFill, "0.0047")
	assertClose(t, "withdrawal", res.Costs.Withdrawal, "0.0015")
	assertClose(t, "total cost", res.TotalCost, "0.965")
	assertClose(t, "net profit", res.NetProfit, "0.035")
	assertClose(t, "roi", res.ROIPercent, "3.723404")
	assertClose(t, "projected profit", res.ProjectedProfit, "3.5")

	if !res.IsProfitable {
		t.Error("expected profitable")
	}
	if !res.Payout.Equal(decimal.NewFromInt(1)) {
		t.Errorf("payout = %s", res.Payout)
	}
	if res.Liquidity != domain.LiquidityDeep {
		t.Errorf("liquidity = %s, want deep", res.Liquidity)
	}
	assertClose(t, "confidence", res.Confidence, "0.9")

	if !res.HasRisk(domain.RiskGasVolatility) {
		t.Error("polymarket settles on-chain")
	}
	for _, name := range []string{domain.RiskLowLiquidity, domain.RiskHighFees, domain.RiskPlatform} {
		if res.HasRisk(name) {
			t.Errorf("unexpected risk %s", name)
		}
	}
}

func TestEvaluate_SafetyMarginGate(t *testing.T) {
	// net = 1 - 1.025*0.974 - 0.001 = 0.00065, roi ≈ 0.0667%.
	yes, no := leg("kalshi", "0.484", "200000"), leg("kalshi", "0.49", "200000")

	strict := newTestCalculator().Evaluate(yes, no, decimal.NewFromInt(1))
	assertClose(t, "net profit", strict.NetProfit, "0.00065")
	if !strict.NetProfit.IsPositive() {
		t.Fatal("expected positive net profit")
	}
	if strict.IsProfitable {
		t.Errorf("roi %s below 0.25%% must not be profitable", strict.ROIPercent)
	}

	lenient := NewProfitCalculator(CalculatorConfig{
		Fees:            domain.DefaultFeeSchedule(),
		MinSafetyMargin: decimal.RequireFromString("0.01"),
	}, venue.DefaultRegistry()).Evaluate(yes, no, decimal.NewFromInt(1))
	if !lenient.IsProfitable {
		t.Error("expected profitable with a 0.01% margin")
	}
}

func TestEvaluate_CostsAtOrAbovePayoutNeverProfitable(t *testing.T) {
	calc := newTestCalculator()
	platforms := []string{"kalshi", "polymarket", "predictit", "manifold", "unknown"}
	liquidities := []string{"0", "50000", "250000"}

	for yp := 5; yp <= 95; yp += 5 {
		for np := 5; np <= 95; np += 5 {
			for _, p := range platforms {
				for _, liq := range liquidities {
					yes := domain.Leg{Platform: p, Price: decimal.New(int64(yp), -2), Liquidity: decimal.RequireFromString(liq)}
					no := domain.Leg{Platform: "kalshi", Price: decimal.New(int64(np), -2), Liquidity: decimal.RequireFromString(liq)}
					res := calc.Evaluate(yes, no, decimal.NewFromInt(1))

					if res.TotalCost.GreaterThanOrEqual(decimal.NewFromInt(1)) && res.IsProfitable {
						t.Fatalf("total cost %s >= 1 but profitable (yes=%s no=%s %s)", res.TotalCost, yes.Price, no.Price, p)
					}
					if res.IsProfitable && res.ROIPercent.LessThan(DefaultMinSafetyMargin) {
						t.Fatalf("profitable below margin: roi %s", res.ROIPercent)
					}
				}
			}
		}
	}
}

func TestEvaluate_UnknownPlatformsUseDefaults(t *testing.T) {
	res := newTestCalculator().Evaluate(leg("newvenue", "0.40", "60000"), leg("othervenue", "0.50", "60000"), decimal.NewFromInt(1))

	assertClose(t, "fees", res.Costs.Fees(), "0.018") // 0.9 * 2%
	assertClose(t, "withdrawal", res.Costs.Withdrawal, "0.002")
	assertClose(t, "slippage", res.Costs.Slippage(), "0.009") // moderate per leg

	if res.Liquidity != domain.LiquidityDeep {
		t.Errorf("liquidity = %s, want deep (combined 100k+)", res.Liquidity)
	}
	if !res.HasRisk(domain.RiskPlatform) {
		t.Error("unknown platforms carry platform risk")
	}
	if res.HasRisk(domain.RiskHighFees) {
		t.Error("2% is not above the high fee threshold")
	}
	if res.HasRisk(domain.RiskGasVolatility) {
		t.Error("unknown off-chain venues have no gas risk")
	}
}

func TestEvaluate_RiskFactors(t *testing.T) {
	tests := []struct {
		name string
		yes  domain.Leg
		no   domain.Leg
		want []string
	}{
		{
			name: "shallow leg",
			yes:  leg("kalshi", "0.30", "10000"),
			no:   leg("kalshi", "0.60", "90000"),
			want: []string{domain.RiskLowLiquidity},
		},
		{
			name: "high fee venue",
			yes:  leg("predictit", "0.30", "90000"),
			no:   leg("kalshi", "0.60", "90000"),
			want: []string{domain.RiskHighFees, domain.RiskPlatform},
		},
		{
			name: "chain tag on record",
			yes:  domain.Leg{Platform: "kalshi", Chain: "base", Price: decimal.RequireFromString("0.3"), Liquidity: decimal.NewFromInt(90000)},
			no:   leg("kalshi", "0.60", "90000"),
			want: []string{domain.RiskGasVolatility},
		},
		{
			name: "amm venue",
			yes:  leg("manifold", "0.30", "90000"),
			no:   leg("kalshi", "0.60", "90000"),
			want: []string{domain.RiskGasVolatility, domain.RiskPlatform},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestCalculator().Evaluate(tt.yes, tt.no, decimal.NewFromInt(1))
			if len(res.RiskFactors) != len(tt.want) {
				t.Fatalf("risk factors = %+v, want %v", res.RiskFactors, tt.want)
			}
			for i, name := range tt.want {
				if res.RiskFactors[i].Name != name {
					t.Errorf("factor[%d] = %s, want %s", i, res.RiskFactors[i].Name, name)
				}
			}
		})
	}
}

func TestEvaluate_ShallowTierConfidence(t *testing.T) {
	res := newTestCalculator().Evaluate(leg("kalshi", "0.30", "5000"), leg("kalshi", "0.50", "5000"), decimal.NewFromInt(1))
	if res.Liquidity != domain.LiquidityShallow {
		t.Errorf("liquidity = %s, want shallow", res.Liquidity)
	}
	assertClose(t, "confidence", res.Confidence, "0.5")
	assertClose(t, "slippage", res.Costs.Slippage(), "0.02") // 0.8 * 2.5%
}

func BenchmarkEvaluate(b *testing.B) {
	calc := newTestCalculator()
	yes, no := leg("kalshi", "0.35", "150000"), leg("polymarket", "0.59", "150000")
	size := decimal.NewFromInt(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		calc.Evaluate(yes, no, size)
	}
}
