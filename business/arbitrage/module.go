// Package arbitrage implements the arbitrage bounded context: costing
// matched pairs and ranking the profitable assignments.
package arbitrage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/prediction-arb/business/arbitrage/app"
	arbDI "github.com/fd1az/prediction-arb/business/arbitrage/di"
	"github.com/fd1az/prediction-arb/business/arbitrage/domain"
	"github.com/fd1az/prediction-arb/business/arbitrage/infra"
	ingestDI "github.com/fd1az/prediction-arb/business/ingest/di"
	matchingDI "github.com/fd1az/prediction-arb/business/matching/di"
	"github.com/fd1az/prediction-arb/internal/config"
	"github.com/fd1az/prediction-arb/internal/di"
	"github.com/fd1az/prediction-arb/internal/logger"
	"github.com/fd1az/prediction-arb/internal/monolith"
	"github.com/fd1az/prediction-arb/internal/venue"
)

// Module implements the arbitrage bounded context.
type Module struct {
	detector *app.Detector
}

// FeeSchedule builds the calculator's cost tables from configuration on top
// of the built-in per platform defaults.
func FeeSchedule(cfg config.ArbitrageConfig) (domain.FeeSchedule, error) {
	fees := domain.DefaultFeeSchedule().WithOverrides(cfg.TakerFeesDecimal(), cfg.WithdrawalFeesDecimal())

	fees.DefaultTakerFee = decimal.NewFromFloat(cfg.DefaultTakerFee)
	fees.DefaultWithdrawalFee = decimal.NewFromFloat(cfg.DefaultWithdrawalFee)
	fees.PartialFillRate = decimal.NewFromFloat(cfg.PartialFillRate)
	fees.Slippage = domain.SlippageTable{
		DeepThreshold:     decimal.NewFromFloat(cfg.Slippage.DeepThreshold),
		ModerateThreshold: decimal.NewFromFloat(cfg.Slippage.ModerateThreshold),
		DeepRate:          decimal.NewFromFloat(cfg.Slippage.DeepRate),
		ModerateRate:      decimal.NewFromFloat(cfg.Slippage.ModerateRate),
		ShallowRate:       decimal.NewFromFloat(cfg.Slippage.ShallowRate),
	}

	if err := fees.Validate(); err != nil {
		return domain.FeeSchedule{}, err
	}
	return fees, nil
}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbDI.ProfitCalculator, func(sr di.ServiceRegistry) *app.ProfitCalculator {
		cfg := sr.Get("config").(*config.Config)
		venues := sr.Get("venues").(*venue.Registry)

		fees, err := FeeSchedule(cfg.Arbitrage)
		if err != nil {
			panic("invalid fee schedule: " + err.Error())
		}

		return app.NewProfitCalculator(app.CalculatorConfig{
			Fees:            fees,
			MinSafetyMargin: cfg.Arbitrage.MinSafetyMarginDecimal(),
		}, venues)
	})

	di.RegisterToken(c, arbDI.Ranker, func(sr di.ServiceRegistry) *app.Ranker {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewRanker(app.RankerConfig{
			MinROIPercent: cfg.Arbitrage.MinROIDecimal(),
			Limit:         cfg.Arbitrage.ResultLimit,
			PositionSize:  cfg.Arbitrage.PositionSizeDecimal(),
			Workers:       cfg.Arbitrage.Workers,
		}, arbDI.GetProfitCalculator(sr), log)
	})

	di.RegisterToken(c, arbDI.Stats, func(sr di.ServiceRegistry) *app.StatsAggregator {
		return app.NewStatsAggregator()
	})

	di.RegisterToken(c, arbDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		if cfg.Arbitrage.TUIMode {
			return infra.NewTUIReporter()
		}
		return infra.NewConsoleReporter()
	})

	di.RegisterToken(c, arbDI.Detector, func(sr di.ServiceRegistry) *app.Detector {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		detector, err := app.NewDetector(
			ingestDI.GetSource(sr),
			matchingDI.GetMatcher(sr),
			arbDI.GetRanker(sr),
			arbDI.GetStats(sr),
			arbDI.GetReporter(sr),
			app.DetectorConfig{PollInterval: cfg.Ingest.PollInterval},
			log,
		)
		if err != nil {
			panic("failed to create detector: " + err.Error())
		}
		return detector
	})

	return nil
}

// Startup starts the detection loop.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	detector := arbDI.GetDetector(mono.Services())

	if err := detector.Start(ctx); err != nil {
		return err
	}
	m.detector = detector

	mono.Logger().Info(ctx, "arbitrage module started",
		"min_roi_percent", mono.Config().Arbitrage.MinROIPercent,
		"result_limit", mono.Config().Arbitrage.ResultLimit)
	return nil
}

// Shutdown stops the detection loop if Startup ran.
func (m *Module) Shutdown(context.Context) error {
	if m.detector == nil {
		return nil
	}
	return m.detector.Stop()
}
