// Package app implements identity matching of market records across platforms.
package app

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/fd1az/prediction-arb/business/matching/domain"
)

// Weights are the component weights of the match score. They sum to 1.
type Weights struct {
	Title            float64
	ResolutionSource float64
	Deadline         float64
	Criteria         float64
}

// DefaultWeights favour title and resolution source agreement.
var DefaultWeights = Weights{
	Title:            0.4,
	ResolutionSource: 0.3,
	Deadline:         0.2,
	Criteria:         0.1,
}

// Component scores used when a comparison cannot be decided.
const (
	scoreMatch     = 1.0
	scoreUncertain = 0.5
	scoreMismatch  = 0.0
)

// Deadline tolerances.
const (
	DeadlineExactWindow = 60 * time.Second
	DeadlineNearWindow  = 300 * time.Second
)

// Scorer computes pairwise match confidence.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score compares two records. The result is symmetric in a and b.
func (s *Scorer) Score(a, b domain.MarketRecord) domain.MatchedPair {
	return s.score(a, domain.Canonicalize(a.Title), b, domain.Canonicalize(b.Title))
}

func (s *Scorer) score(a domain.MarketRecord, canonA string, b domain.MarketRecord, canonB string) domain.MatchedPair {
	bd := domain.ScoreBreakdown{
		Title:            TitleScore(canonA, canonB),
		ResolutionSource: SourceScore(a.Resolution.Source, b.Resolution.Source),
		Deadline:         DeadlineScore(a.ExpiresAt, b.ExpiresAt),
		Criteria:         CriteriaScore(a.Resolution.Criteria, b.Resolution.Criteria),
	}

	total := bd.Title*s.weights.Title +
		bd.ResolutionSource*s.weights.ResolutionSource +
		bd.Deadline*s.weights.Deadline +
		bd.Criteria*s.weights.Criteria

	return domain.MatchedPair{
		A:         a,
		B:         b,
		Score:     clampUnit(round6(total)),
		Breakdown: bd,
	}
}

// TitleSimilarity returns 1 - levenshtein(a,b)/max(len(a),len(b)) over runes.
func TitleSimilarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// TitleScore sharpens the similarity ratio so only near duplicates score high.
func TitleScore(canonA, canonB string) float64 {
	return math.Max(0, TitleSimilarity(canonA, canonB)-0.5) * 2
}

// SourceScore compares resolution authorities. Unknown is uncertain, not a miss.
func SourceScore(a, b string) float64 {
	switch {
	case a == "" || b == "":
		return scoreUncertain
	case a == b:
		return scoreMatch
	default:
		return scoreMismatch
	}
}

// DeadlineScore compares expiries. A zero time means missing.
func DeadlineScore(a, b time.Time) float64 {
	if a.IsZero() || b.IsZero() {
		return scoreUncertain
	}
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= DeadlineExactWindow:
		return scoreMatch
	case diff <= DeadlineNearWindow:
		return scoreUncertain
	default:
		return scoreMismatch
	}
}

// CriteriaScore compares extracted threshold fragments by exact equality.
func CriteriaScore(a, b string) float64 {
	switch {
	case a == "" || b == "":
		return scoreUncertain
	case a == b:
		return scoreMatch
	default:
		return scoreMismatch
	}
}

func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

func clampUnit(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
