package app

import (
	"context"

	matchingDomain "github.com/fd1az/prediction-arb/business/matching/domain"
)

// Source delivers one batch of market records per Fetch.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (matchingDomain.Batch, error)
}
