package domain

import (
	"iter"

	matchingDomain "github.com/fd1az/prediction-arb/business/matching/domain"
)

// Assignment says which listing of a matched pair supplies the YES leg and
// which supplies the NO leg.
type Assignment struct {
	Pair matchingDomain.MatchedPair
	Yes  matchingDomain.MarketRecord
	No   matchingDomain.MarketRecord
}

// YesLeg returns the YES side as a costing leg.
func (a Assignment) YesLeg() Leg {
	return Leg{
		Platform:  a.Yes.Platform,
		MarketID:  a.Yes.MarketID,
		Chain:     a.Yes.Chain,
		Price:     a.Yes.YesPrice,
		Liquidity: a.Yes.YesLiquidity,
	}
}

// NoLeg returns the NO side as a costing leg.
func (a Assignment) NoLeg() Leg {
	return Leg{
		Platform:  a.No.Platform,
		MarketID:  a.No.MarketID,
		Chain:     a.No.Chain,
		Price:     a.No.NoPrice,
		Liquidity: a.No.NoLiquidity,
	}
}

// PairAssignments returns both orientations of a cross-platform pair, and
// nothing for a pair whose listings share a platform.
func PairAssignments(p matchingDomain.MatchedPair) []Assignment {
	if !p.CrossPlatform() {
		return nil
	}
	return []Assignment{
		{Pair: p, Yes: p.A, No: p.B},
		{Pair: p, Yes: p.B, No: p.A},
	}
}

// Assignments yields every valid assignment over the safe pairs of a group.
// When all pairs of k listings on k distinct platforms are safe this is
// k*(k-1) assignments.
func Assignments(g matchingDomain.MatchGroup) iter.Seq[Assignment] {
	return func(yield func(Assignment) bool) {
		for _, p := range g.Pairs {
			for _, a := range PairAssignments(p) {
				if !yield(a) {
					return
				}
			}
		}
	}
}
