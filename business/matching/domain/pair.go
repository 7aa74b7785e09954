package domain

import "sort"

// SafeMatchThreshold is the minimum score at which two listings are treated
// as the same event.
const SafeMatchThreshold = 0.95

// ScoreBreakdown holds the four component scores of a pair, each in [0,1].
type ScoreBreakdown struct {
	Title            float64
	ResolutionSource float64
	Deadline         float64
	Criteria         float64
}

// MatchedPair is the scored comparison of two listings.
type MatchedPair struct {
	A, B      MarketRecord
	Score     float64
	Breakdown ScoreBreakdown
}

// IsSafe reports whether the pair cleared the safety gate.
func (p MatchedPair) IsSafe() bool {
	return p.Score >= SafeMatchThreshold
}

// CrossPlatform reports whether the two listings live on different platforms.
func (p MatchedPair) CrossPlatform() bool {
	return p.A.Platform != p.B.Platform
}

// Key returns an order independent identifier for the pair.
func (p MatchedPair) Key() string {
	keys := []string{p.A.Key(), p.B.Key()}
	sort.Strings(keys)
	return keys[0] + "|" + keys[1]
}

// MatchGroup is one canonical event bucket together with the pairs in it
// that passed the safety gate.
type MatchGroup struct {
	Key     string
	Records []MarketRecord
	Pairs   []MatchedPair
}

// Platforms returns the distinct platforms present in the group, in first
// seen order.
func (g MatchGroup) Platforms() []string {
	seen := make(map[string]bool, len(g.Records))
	var out []string
	for _, r := range g.Records {
		if !seen[r.Platform] {
			seen[r.Platform] = true
			out = append(out, r.Platform)
		}
	}
	return out
}
