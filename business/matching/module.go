// Package matching implements the identity matching bounded context.
package matching

import (
	"context"

	"github.com/fd1az/prediction-arb/business/matching/app"
	matchingDI "github.com/fd1az/prediction-arb/business/matching/di"
	"github.com/fd1az/prediction-arb/business/matching/domain"
	"github.com/fd1az/prediction-arb/internal/config"
	"github.com/fd1az/prediction-arb/internal/di"
	"github.com/fd1az/prediction-arb/internal/logger"
	"github.com/fd1az/prediction-arb/internal/monolith"
)

// Module implements the matching bounded context.
type Module struct{}

// RegisterServices registers all matching services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, matchingDI.History, func(sr di.ServiceRegistry) *domain.MatchHistory {
		cfg := sr.Get("config").(*config.Config)
		return domain.NewMatchHistory(cfg.Matching.HistorySize)
	})

	di.RegisterToken(c, matchingDI.Matcher, func(sr di.ServiceRegistry) *app.Matcher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewMatcher(app.MatcherConfig{
			MinMatchScore: cfg.Matching.MinMatchScore,
			CompareAll:    cfg.Matching.CompareAll,
		}, matchingDI.GetHistory(sr), log)
	})

	return nil
}

// Startup initializes the matching module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	mono.Logger().Info(ctx, "matching module started",
		"min_match_score", cfg.Matching.MinMatchScore,
		"compare_all", cfg.Matching.CompareAll)
	return nil
}
