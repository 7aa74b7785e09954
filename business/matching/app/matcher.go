package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/prediction-arb/business/matching/domain"
	"github.com/fd1az/prediction-arb/internal/logger"
)

const tracerName = "github.com/fd1az/prediction-arb/business/matching"

// compareAllKey is the bucket key used when every record is compared.
const compareAllKey = "*"

// MatcherConfig holds identity matcher settings.
type MatcherConfig struct {
	// MinMatchScore is the safety gate. Pairs below it are discarded.
	MinMatchScore float64

	// CompareAll scores every pair in the batch instead of only pairs that
	// share a canonical title. Titles whose wording canonicalizes
	// differently are never compared in the default mode.
	CompareAll bool
}

// DefaultMatcherConfig returns the conservative defaults.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{MinMatchScore: domain.SafeMatchThreshold}
}

// MatchResult is the outcome of one Match call.
type MatchResult struct {
	Groups    []domain.MatchGroup
	RecordsIn int
	Skipped   int // malformed or resolved records
	Buckets   int // buckets with at least two records
	Compared  int
	Rejected  int // pairs scored below the safety gate
}

// Pairs flattens the safe pairs of all groups in order.
func (r MatchResult) Pairs() []domain.MatchedPair {
	var out []domain.MatchedPair
	for _, g := range r.Groups {
		out = append(out, g.Pairs...)
	}
	return out
}

// Matcher groups records by event identity and keeps only safe pairs.
type Matcher struct {
	cfg     MatcherConfig
	scorer  *Scorer
	history *domain.MatchHistory
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	now     func() time.Time
}

// NewMatcher creates a matcher. history may be nil.
func NewMatcher(cfg MatcherConfig, history *domain.MatchHistory, log logger.LoggerInterface) *Matcher {
	if cfg.MinMatchScore <= 0 {
		cfg.MinMatchScore = domain.SafeMatchThreshold
	}
	return &Matcher{
		cfg:     cfg,
		scorer:  NewScorer(DefaultWeights),
		history: history,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
}

type candidate struct {
	record    domain.MarketRecord
	canonical string
}

// Match returns the groups of records that describe the same event with
// enough confidence to trade. Malformed records are skipped.
func (m *Matcher) Match(ctx context.Context, records []domain.MarketRecord) MatchResult {
	ctx, span := m.tracer.Start(ctx, "matching.match",
		trace.WithAttributes(
			attribute.Int("records", len(records)),
			attribute.Bool("compare_all", m.cfg.CompareAll),
		),
	)
	defer span.End()

	res := MatchResult{RecordsIn: len(records)}

	var keys []string
	buckets := make(map[string][]candidate)

	for _, raw := range records {
		r := raw.Sanitize()
		if err := r.Validate(); err != nil {
			res.Skipped++
			m.logger.Debug(ctx, "skipping malformed record", "platform", r.Platform, "market", r.MarketID, "error", err)
			continue
		}
		if !r.Tradeable() {
			res.Skipped++
			continue
		}

		c := candidate{record: r, canonical: domain.Canonicalize(r.Title)}
		if c.canonical == "" {
			res.Skipped++
			continue
		}

		key := c.canonical
		if m.cfg.CompareAll {
			key = compareAllKey
		}
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], c)
	}

	now := m.now()
	for _, key := range keys {
		bucket := buckets[key]
		if len(bucket) < 2 {
			continue
		}
		res.Buckets++

		var safe []indexedPair
		entries := make([]domain.MatchEntry, 0, len(bucket)*(len(bucket)-1)/2)

		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				pair := m.scorer.score(bucket[i].record, bucket[i].canonical, bucket[j].record, bucket[j].canonical)
				res.Compared++

				ok := pair.Score >= m.cfg.MinMatchScore
				entries = append(entries, domain.MatchEntry{
					PairKey:    pair.Key(),
					Title:      bucket[i].record.Title,
					Score:      pair.Score,
					Safe:       ok,
					ComparedAt: now,
				})

				if !ok {
					res.Rejected++
					continue
				}
				safe = append(safe, indexedPair{i: i, j: j, pair: pair})
			}
		}

		if m.history != nil {
			m.history.Append(entries...)
		}

		if len(safe) == 0 {
			continue
		}
		if key != compareAllKey {
			res.Groups = append(res.Groups, bucketGroup(key, bucket, safe))
			continue
		}
		res.Groups = append(res.Groups, splitEvents(bucket, safe)...)
	}

	span.SetAttributes(
		attribute.Int("buckets", res.Buckets),
		attribute.Int("compared", res.Compared),
		attribute.Int("rejected", res.Rejected),
		attribute.Int("groups", len(res.Groups)),
	)

	m.logger.Debug(ctx, "matching complete",
		"records", res.RecordsIn,
		"skipped", res.Skipped,
		"buckets", res.Buckets,
		"compared", res.Compared,
		"rejected", res.Rejected,
		"groups", len(res.Groups),
	)

	return res
}

type indexedPair struct {
	i, j int
	pair domain.MatchedPair
}

// bucketGroup turns one canonical title bucket into a group keyed by that title.
func bucketGroup(key string, bucket []candidate, safe []indexedPair) domain.MatchGroup {
	group := domain.MatchGroup{Key: key}
	for _, c := range bucket {
		group.Records = append(group.Records, c.record)
	}
	for _, sp := range safe {
		group.Pairs = append(group.Pairs, sp.pair)
	}
	return group
}

// splitEvents partitions the compare-all bucket into one group per connected
// set of safe pairs. Each group is keyed by the canonical title of its first
// record in input order, so every pair carries its own event identity.
// Records without a safe pair are left out.
func splitEvents(bucket []candidate, safe []indexedPair) []domain.MatchGroup {
	parent := make([]int, len(bucket))
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, sp := range safe {
		a, b := find(sp.i), find(sp.j)
		if a == b {
			continue
		}
		// The lower index stays root so the key follows input order.
		if b < a {
			a, b = b, a
		}
		parent[b] = a
	}

	linked := make([]bool, len(bucket))
	for _, sp := range safe {
		linked[sp.i], linked[sp.j] = true, true
	}

	index := make(map[int]int)
	var groups []domain.MatchGroup
	for i, c := range bucket {
		if !linked[i] {
			continue
		}
		root := find(i)
		gi, ok := index[root]
		if !ok {
			gi = len(groups)
			index[root] = gi
			groups = append(groups, domain.MatchGroup{Key: bucket[root].canonical})
		}
		groups[gi].Records = append(groups[gi].Records, c.record)
	}
	for _, sp := range safe {
		gi := index[find(sp.i)]
		groups[gi].Pairs = append(groups[gi].Pairs, sp.pair)
	}
	return groups
}
