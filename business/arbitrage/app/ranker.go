package app

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/prediction-arb/business/arbitrage/domain"
	matchingDomain "github.com/fd1az/prediction-arb/business/matching/domain"
	"github.com/fd1az/prediction-arb/internal/logger"
)

const tracerName = "github.com/fd1az/prediction-arb/business/arbitrage"

// DefaultResultLimit bounds the ranked list when no limit is configured.
const DefaultResultLimit = 50

// RankerConfig configures filtering and ranking.
type RankerConfig struct {
	MinROIPercent decimal.Decimal
	Limit         int
	PositionSize  decimal.Decimal
	Workers       int
}

// RankResult is the per-run output of the ranker.
type RankResult struct {
	Opportunities []domain.Opportunity
	Stats         RunStats
}

// Ranker turns matched groups into a ranked list of opportunities.
type Ranker struct {
	cfg    RankerConfig
	calc   *ProfitCalculator
	logger logger.LoggerInterface
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

// NewRanker creates a ranker.
func NewRanker(cfg RankerConfig, calc *ProfitCalculator, log logger.LoggerInterface) *Ranker {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultResultLimit
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Ranker{
		cfg:    cfg,
		calc:   calc,
		logger: log,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

type assignmentJob struct {
	assignment domain.Assignment
	eventKey   string
}

type assignmentOutcome struct {
	opportunity domain.Opportunity
	profitable  bool
}

// Rank evaluates every side assignment of every safe pair, keeps profitable
// results above the ROI threshold and returns the best Limit of them, sorted
// by ROI descending. Ties keep input order.
func (r *Ranker) Rank(ctx context.Context, groups []matchingDomain.MatchGroup) RankResult {
	started := r.now()

	var (
		jobs  []assignmentJob
		pairs int
	)
	for _, g := range groups {
		pairs += len(g.Pairs)
		for a := range domain.Assignments(g) {
			jobs = append(jobs, assignmentJob{assignment: a, eventKey: eventKey(g, a.Pair)})
		}
	}

	ctx, span := r.tracer.Start(ctx, "arbitrage.rank",
		trace.WithAttributes(
			attribute.Int("groups", len(groups)),
			attribute.Int("pairs", pairs),
			attribute.Int("assignments", len(jobs)),
		),
	)
	defer span.End()

	// Each assignment writes only its own slot, so no locking is needed.
	outcomes := make([]assignmentOutcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i] = r.evaluate(job, started)
			return nil
		})
	}
	_ = g.Wait()

	stats := RunStats{
		RunID:                r.newID(),
		StartedAt:            started,
		PairsMatched:         pairs,
		AssignmentsEvaluated: len(jobs),
		ByPlatformPair:       make(map[string]int),
	}

	var kept []domain.Opportunity
	for _, o := range outcomes {
		if !o.profitable {
			continue
		}
		stats.Profitable++
		if o.opportunity.Profit.ROIPercent.LessThan(r.cfg.MinROIPercent) {
			continue
		}
		kept = append(kept, o.opportunity)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Profit.ROIPercent.GreaterThan(kept[j].Profit.ROIPercent)
	})

	// ROI and platform pair statistics cover everything above the threshold,
	// not only what survives the Limit cut.
	stats.AboveThreshold = len(kept)
	if len(kept) > 0 {
		sum := decimal.Zero
		for _, opp := range kept {
			sum = sum.Add(opp.Profit.ROIPercent)
			stats.ByPlatformPair[opp.PlatformPair()]++
		}
		stats.AvgROI = sum.Div(decimal.NewFromInt(int64(len(kept))))
		stats.BestROI = kept[0].Profit.ROIPercent
	}

	if len(kept) > r.cfg.Limit {
		kept = kept[:r.cfg.Limit]
	}
	stats.Returned = len(kept)
	stats.Duration = r.now().Sub(started)

	span.SetAttributes(
		attribute.Int("assignments", stats.AssignmentsEvaluated),
		attribute.Int("profitable", stats.Profitable),
		attribute.Int("returned", stats.Returned),
	)

	r.logger.Debug(ctx, "ranking complete",
		"pairs", stats.PairsMatched,
		"assignments", stats.AssignmentsEvaluated,
		"profitable", stats.Profitable,
		"returned", stats.Returned,
		"best_roi", stats.BestROI.StringFixed(4),
	)

	return RankResult{Opportunities: kept, Stats: stats}
}

func (r *Ranker) evaluate(job assignmentJob, now time.Time) assignmentOutcome {
	a := job.assignment

	res := r.calc.Evaluate(a.YesLeg(), a.NoLeg(), r.cfg.PositionSize)
	if !res.IsProfitable {
		return assignmentOutcome{}
	}

	avgLiquidity := a.Yes.TotalLiquidity().Add(a.No.TotalLiquidity()).Div(decimal.NewFromInt(2))
	difficulty := domain.ClassifyDifficulty(avgLiquidity)

	opp := domain.Opportunity{
		ID:              r.newID(),
		EventKey:        job.eventKey,
		Title:           a.Yes.Title,
		YesPlatform:     a.Yes.Platform,
		NoPlatform:      a.No.Platform,
		YesMarketID:     a.Yes.MarketID,
		NoMarketID:      a.No.MarketID,
		Profit:          res,
		MatchConfidence: a.Pair.Score,
		Difficulty:      difficulty,
		RiskScore:       RiskScore(avgLiquidity, a.Pair.Score, difficulty),
		TimeToExpiry:    timeToExpiry(a.Yes, a.No, now),
		DetectedAt:      now,
	}
	opp.ExecutionSteps = domain.BuildExecutionSteps(opp)

	return assignmentOutcome{opportunity: opp, profitable: true}
}

// RiskScore averages illiquidity, match uncertainty and the difficulty
// penalty into [0,1]. Liquidity saturates at the deep threshold.
func RiskScore(avgLiquidity decimal.Decimal, matchScore float64, d domain.Difficulty) float64 {
	normalized := math.Min(1, math.Max(0, avgLiquidity.Div(domain.DeepLiquidity).InexactFloat64()))
	score := ((1 - normalized) + (1 - matchScore) + d.Penalty()) / 3
	return math.Min(1, math.Max(0, score))
}

func timeToExpiry(a, b matchingDomain.MarketRecord, now time.Time) time.Duration {
	var earliest time.Time
	for _, r := range []matchingDomain.MarketRecord{a, b} {
		if r.HasExpiry() && (earliest.IsZero() || r.ExpiresAt.Before(earliest)) {
			earliest = r.ExpiresAt
		}
	}
	if earliest.IsZero() || !earliest.After(now) {
		return 0
	}
	return earliest.Sub(now)
}

// eventKey is the group's canonical title, or the pair's own when the group
// carries no usable key.
func eventKey(g matchingDomain.MatchGroup, p matchingDomain.MatchedPair) string {
	if g.Key != "" && g.Key != "*" {
		return g.Key
	}
	return matchingDomain.Canonicalize(p.A.Title)
}
