// Package di contains dependency injection tokens for the matching context.
package di

import (
	"github.com/fd1az/prediction-arb/business/matching/app"
	"github.com/fd1az/prediction-arb/business/matching/domain"
	"github.com/fd1az/prediction-arb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Matcher = di.NewToken[*app.Matcher]("matching.Matcher")
	History = di.NewToken[*domain.MatchHistory]("matching.History")
)

func GetMatcher(c di.ServiceRegistry) *app.Matcher {
	return di.GetToken(c, Matcher)
}

func GetHistory(c di.ServiceRegistry) *domain.MatchHistory {
	return di.GetToken(c, History)
}
