// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/prediction-arb/business/arbitrage/app"
	"github.com/fd1az/prediction-arb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Detector = di.NewToken[*app.Detector]("arbitrage.Detector")
	Stats    = di.NewToken[*app.StatsAggregator]("arbitrage.Stats")
)

// Private dependency tokens - internal to arbitrage module
var (
	ProfitCalculator = di.NewToken[*app.ProfitCalculator]("arbitrage:profitCalculator")
	Ranker           = di.NewToken[*app.Ranker]("arbitrage:ranker")
	Reporter         = di.NewToken[app.Reporter]("arbitrage:reporter")
)

func GetDetector(c di.ServiceRegistry) *app.Detector {
	return di.GetToken(c, Detector)
}

func GetStats(c di.ServiceRegistry) *app.StatsAggregator {
	return di.GetToken(c, Stats)
}

func GetProfitCalculator(c di.ServiceRegistry) *app.ProfitCalculator {
	return di.GetToken(c, ProfitCalculator)
}

func GetRanker(c di.ServiceRegistry) *app.Ranker {
	return di.GetToken(c, Ranker)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
