package app

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/prediction-arb/business/arbitrage/domain"
	matchingApp "github.com/fd1az/prediction-arb/business/matching/app"
	matchingDomain "github.com/fd1az/prediction-arb/business/matching/domain"
	"github.com/fd1az/prediction-arb/internal/logger"
)

var testExpiry = time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func newTestRanker(cfg RankerConfig) *Ranker {
	if cfg.MinROIPercent.IsZero() {
		cfg.MinROIPercent = DefaultMinSafetyMargin
	}
	if cfg.PositionSize.IsZero() {
		cfg.PositionSize = decimal.NewFromInt(100)
	}
	return NewRanker(cfg, newTestCalculator(), testLogger())
}

func market(platform, id, yes, no string, liquidity int64) matchingDomain.MarketRecord {
	return matchingDomain.MarketRecord{
		Platform:     platform,
		MarketID:     id,
		Title:        "Will Bitcoin be above $100k by end of 2026?",
		YesPrice:     decimal.RequireFromString(yes),
		NoPrice:      decimal.RequireFromString(no),
		YesLiquidity: decimal.NewFromInt(liquidity),
		NoLiquidity:  decimal.NewFromInt(liquidity),
		Status:       matchingDomain.StatusActive,
		ExpiresAt:    testExpiry,
		Resolution:   matchingDomain.NewResolutionMeta("Resolves YES if BTC closes above $100,000 according to Coinbase.", "", ""),
	}
}

func group(pairs ...matchingDomain.MatchedPair) matchingDomain.MatchGroup {
	g := matchingDomain.MatchGroup{Key: "bitcoin above 100000 eoy 2026", Pairs: pairs}
	for _, p := range pairs {
		g.Records = append(g.Records, p.A, p.B)
	}
	return g
}

func safePair(a, b matchingDomain.MarketRecord) matchingDomain.MatchedPair {
	return matchingDomain.MatchedPair{A: a, B: b, Score: 1}
}

func TestRank_ThreePlatformsEndToEnd(t *testing.T) {
	records := []matchingDomain.MarketRecord{
		market("kalshi", "K-BTC", "0.35", "0.65", 75000),
		market("polymarket", "0xbtc", "0.45", "0.55", 75000),
		market("predictit", "8812", "0.40", "0.60", 75000),
	}

	matched := matchingApp.NewMatcher(matchingApp.DefaultMatcherConfig(), nil, testLogger()).
		Match(context.Background(), records)
	if len(matched.Groups) != 1 || len(matched.Groups[0].Pairs) != 3 {
		t.Fatalf("expected one group with three safe pairs, got %+v", matched.Groups)
	}

	res := newTestRanker(RankerConfig{Workers: 4}).Rank(context.Background(), matched.Groups)

	if res.Stats.AssignmentsEvaluated != 6 {
		t.Errorf("assignments = %d, want 6", res.Stats.AssignmentsEvaluated)
	}
	if len(res.Opportunities) == 0 {
		t.Fatal("expected at least one opportunity")
	}

	best := res.Opportunities[0]
	if best.PlatformPair() != "kalshi→polymarket" {
		t.Errorf("best pair = %s, want kalshi→polymarket", best.PlatformPair())
	}
	if !best.Profit.ROIPercent.IsPositive() {
		t.Errorf("roi = %s, want > 0", best.Profit.ROIPercent)
	}
	assertClose(t, "roi", best.Profit.ROIPercent, "7.944444")
	if best.Difficulty != domain.DifficultyEasy {
		t.Errorf("difficulty = %s, want easy", best.Difficulty)
	}
	if best.MatchConfidence != 1 {
		t.Errorf("match confidence = %v, want 1", best.MatchConfidence)
	}
	if math.Abs(best.RiskScore-0.1/3) > 1e-9 {
		t.Errorf("risk score = %v, want %v", best.RiskScore, 0.1/3)
	}
	if best.ID == "" {
		t.Error("expected an id")
	}
	if len(best.ExecutionSteps) != 3 {
		t.Errorf("steps = %d, want 3", len(best.ExecutionSteps))
	}

	for _, o := range res.Opportunities {
		if o.YesPlatform == o.NoPlatform {
			t.Errorf("opportunity %s uses one platform for both legs", o.ID)
		}
		if o.Profit.ROIPercent.LessThan(DefaultMinSafetyMargin) {
			t.Errorf("opportunity %s below threshold: %s", o.ID, o.Profit.ROIPercent)
		}
	}
}

func TestRank_TruncatesSortedDescending(t *testing.T) {
	noPrices := []string{"0.55", "0.50", "0.45", "0.58"}
	var groups []matchingDomain.MatchGroup
	for _, no := range noPrices {
		a := market("kalshi", "K"+no, "0.35", "0.90", 150000)
		b := market("polymarket", "P"+no, "0.90", no, 150000)
		groups = append(groups, group(safePair(a, b)))
	}

	res := newTestRanker(RankerConfig{Limit: 2, Workers: 3}).Rank(context.Background(), groups)

	if len(res.Opportunities) != 2 {
		t.Fatalf("returned = %d, want 2", len(res.Opportunities))
	}
	if res.Stats.AboveThreshold != 4 || res.Stats.Returned != 2 {
		t.Errorf("stats above=%d returned=%d, want 4 and 2", res.Stats.AboveThreshold, res.Stats.Returned)
	}
	if res.Opportunities[0].NoMarketID != "P0.45" || res.Opportunities[1].NoMarketID != "P0.50" {
		t.Errorf("order = %s, %s", res.Opportunities[0].NoMarketID, res.Opportunities[1].NoMarketID)
	}
	if res.Opportunities[0].Profit.ROIPercent.LessThan(res.Opportunities[1].Profit.ROIPercent) {
		t.Error("expected descending roi")
	}
	if !res.Stats.BestROI.Equal(res.Opportunities[0].Profit.ROIPercent) {
		t.Errorf("best roi = %s, want %s", res.Stats.BestROI, res.Opportunities[0].Profit.ROIPercent)
	}
	if res.Stats.ByPlatformPair["kalshi→polymarket"] != 4 {
		t.Errorf("by platform pair = %v", res.Stats.ByPlatformPair)
	}
	// Mean over all four opportunities above the threshold (22.3125,
	// 14.970588, 8.444444, 4.865591), not over the two returned.
	assertClose(t, "avg roi", res.Stats.AvgROI, "12.648281")
}

func TestRank_CompareAllKeepsEventIdentityPerPair(t *testing.T) {
	lakers := func(platform, id, yes, no string) matchingDomain.MarketRecord {
		r := market(platform, id, yes, no, 150000)
		r.Title = "Lakers win NBA finals"
		r.Resolution = matchingDomain.NewResolutionMeta("Resolves YES if the Lakers win at least 4 games in the 2026 NBA finals according to ESPN.", "", "")
		return r
	}
	records := []matchingDomain.MarketRecord{
		market("kalshi", "K-BTC", "0.35", "0.65", 150000),
		lakers("kalshi", "K-LAL", "0.30", "0.70"),
		market("polymarket", "0xbtc", "0.50", "0.55", 150000),
		lakers("polymarket", "0xlal", "0.45", "0.60"),
	}

	cfg := matchingApp.DefaultMatcherConfig()
	cfg.CompareAll = true
	matched := matchingApp.NewMatcher(cfg, nil, testLogger()).Match(context.Background(), records)
	if len(matched.Groups) != 2 {
		t.Fatalf("groups = %d, want one per event", len(matched.Groups))
	}

	res := newTestRanker(RankerConfig{Workers: 2}).Rank(context.Background(), matched.Groups)
	if len(res.Opportunities) != 2 {
		t.Fatalf("returned = %d, want 2", len(res.Opportunities))
	}

	want := map[string]string{
		"Will Bitcoin be above $100k by end of 2026?": matchingDomain.Canonicalize("Will Bitcoin be above $100k by end of 2026?"),
		"Lakers win NBA finals":                       matchingDomain.Canonicalize("Lakers win NBA finals"),
	}
	for _, o := range res.Opportunities {
		if o.EventKey != want[o.Title] {
			t.Errorf("%s: event key = %q, want %q", o.Title, o.EventKey, want[o.Title])
		}
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	var groups []matchingDomain.MatchGroup
	for _, id := range []string{"first", "second", "third"} {
		a := market("kalshi", id, "0.35", "0.90", 150000)
		b := market("polymarket", id, "0.90", "0.55", 150000)
		groups = append(groups, group(safePair(a, b)))
	}

	res := newTestRanker(RankerConfig{Workers: 8}).Rank(context.Background(), groups)

	if len(res.Opportunities) != 3 {
		t.Fatalf("returned = %d, want 3", len(res.Opportunities))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got := res.Opportunities[i].YesMarketID; got != want {
			t.Errorf("position %d = %s, want %s", i, got, want)
		}
	}
}

func TestRank_SamePlatformPairIgnored(t *testing.T) {
	a := market("kalshi", "A", "0.35", "0.55", 150000)
	b := market("kalshi", "B", "0.35", "0.55", 150000)

	res := newTestRanker(RankerConfig{}).Rank(context.Background(), []matchingDomain.MatchGroup{group(safePair(a, b))})

	if len(res.Opportunities) != 0 {
		t.Errorf("returned = %d, want 0", len(res.Opportunities))
	}
	if res.Stats.AssignmentsEvaluated != 0 {
		t.Errorf("assignments = %d, want 0", res.Stats.AssignmentsEvaluated)
	}
}

func TestRank_ThresholdFiltersProfitable(t *testing.T) {
	a := market("kalshi", "A", "0.35", "0.90", 150000)
	b := market("polymarket", "B", "0.90", "0.55", 150000)

	res := newTestRanker(RankerConfig{MinROIPercent: decimal.NewFromInt(50)}).
		Rank(context.Background(), []matchingDomain.MatchGroup{group(safePair(a, b))})

	if res.Stats.Profitable != 1 {
		t.Errorf("profitable = %d, want 1", res.Stats.Profitable)
	}
	if res.Stats.AboveThreshold != 0 || len(res.Opportunities) != 0 {
		t.Errorf("expected nothing above a 50%% threshold, got %d", len(res.Opportunities))
	}
	if !res.Stats.BestROI.IsZero() || !res.Stats.AvgROI.IsZero() {
		t.Errorf("roi stats should stay zero, got best=%s avg=%s", res.Stats.BestROI, res.Stats.AvgROI)
	}
}

func TestRank_EmptyInput(t *testing.T) {
	res := newTestRanker(RankerConfig{}).Rank(context.Background(), nil)
	if len(res.Opportunities) != 0 || res.Stats.PairsMatched != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Stats.RunID == "" {
		t.Error("expected a run id")
	}
}

func TestRank_TimeToExpiry(t *testing.T) {
	now := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		yesExp time.Time
		noExp  time.Time
		want   time.Duration
	}{
		{"earliest wins", now.Add(48 * time.Hour), now.Add(24 * time.Hour), 24 * time.Hour},
		{"one missing", time.Time{}, now.Add(time.Hour), time.Hour},
		{"both missing", time.Time{}, time.Time{}, 0},
		{"already expired", now.Add(-time.Hour), time.Time{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := market("kalshi", "A", "0.35", "0.90", 150000)
			b := market("polymarket", "B", "0.90", "0.55", 150000)
			a.ExpiresAt = tt.yesExp
			b.ExpiresAt = tt.noExp

			r := newTestRanker(RankerConfig{})
			r.now = func() time.Time { return now }

			res := r.Rank(context.Background(), []matchingDomain.MatchGroup{group(safePair(a, b))})
			if len(res.Opportunities) != 1 {
				t.Fatalf("returned = %d, want 1", len(res.Opportunities))
			}
			if got := res.Opportunities[0].TimeToExpiry; got != tt.want {
				t.Errorf("time to expiry = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name      string
		liquidity int64
		score     float64
		diff      domain.Difficulty
		want      float64
	}{
		{"deep and certain", 250000, 1, domain.DifficultyEasy, 0.1 / 3},
		{"half depth", 50000, 1, domain.DifficultyModerate, (0.5 + 0.3) / 3},
		{"no depth", 0, 0.95, domain.DifficultyHard, (1 + 0.05 + 0.6) / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RiskScore(decimal.NewFromInt(tt.liquidity), tt.score, tt.diff)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RiskScore = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("RiskScore %v out of range", got)
			}
		})
	}
}

func BenchmarkRank(b *testing.B) {
	var groups []matchingDomain.MatchGroup
	for i := 0; i < 200; i++ {
		a := market("kalshi", "A", "0.35", "0.90", 150000)
		c := market("polymarket", "B", "0.90", "0.55", 150000)
		groups = append(groups, group(safePair(a, c)))
	}
	r := newTestRanker(RankerConfig{Workers: 8})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Rank(context.Background(), groups)
	}
}
