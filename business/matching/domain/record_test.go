package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/prediction-arb/internal/apperror"
)

func TestMarketRecord_Sanitize(t *testing.T) {
	r := MarketRecord{
		Platform:     "  Kalshi ",
		Title:        " Fed cuts in March ",
		YesPrice:     decimal.RequireFromString("-0.2"),
		NoPrice:      decimal.RequireFromString("1.5"),
		YesLiquidity: decimal.RequireFromString("-10"),
		NoLiquidity:  decimal.RequireFromString("5000"),
	}.Sanitize()

	if r.Platform != "kalshi" {
		t.Errorf("Platform = %q", r.Platform)
	}
	if r.Title != "Fed cuts in March" {
		t.Errorf("Title = %q", r.Title)
	}
	if !r.YesPrice.Equal(MinPrice) || !r.NoPrice.Equal(MaxPrice) {
		t.Errorf("prices = %s/%s", r.YesPrice, r.NoPrice)
	}
	if !r.YesLiquidity.IsZero() {
		t.Errorf("YesLiquidity = %s", r.YesLiquidity)
	}
	if r.Status != StatusActive {
		t.Errorf("Status = %q", r.Status)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("clamped record should be valid: %v", err)
	}
}

func TestMarketRecord_Validate(t *testing.T) {
	base := MarketRecord{
		Platform: "kalshi",
		MarketID: "FED-MAR",
		Title:    "Fed cuts in March",
		YesPrice: decimal.RequireFromString("0.4"),
		NoPrice:  decimal.RequireFromString("0.62"),
	}

	tests := []struct {
		name     string
		mutate   func(*MarketRecord)
		wantCode apperror.Code
	}{
		{"valid", func(*MarketRecord) {}, ""},
		{"missing platform", func(r *MarketRecord) { r.Platform = "" }, apperror.CodeInvalidRecord},
		{"missing title", func(r *MarketRecord) { r.Title = "" }, apperror.CodeInvalidRecord},
		{"overround", func(r *MarketRecord) { r.NoPrice = decimal.RequireFromString("0.75") }, apperror.CodeInvalidRecordPrice},
		{"overround at tolerance", func(r *MarketRecord) { r.NoPrice = decimal.RequireFromString("0.7") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if apperror.GetCode(err) != tt.wantCode {
				t.Errorf("code = %s, want %s", apperror.GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestMarketRecord_Accessors(t *testing.T) {
	r := MarketRecord{
		Platform:     "polymarket",
		Title:        "Will BTC be above $100k?",
		YesLiquidity: decimal.NewFromInt(60000),
		NoLiquidity:  decimal.NewFromInt(45000),
	}

	if r.Key() != "polymarket:bitcoin above 100000" {
		t.Errorf("Key = %q", r.Key())
	}
	if !r.TotalLiquidity().Equal(decimal.NewFromInt(105000)) {
		t.Errorf("TotalLiquidity = %s", r.TotalLiquidity())
	}
	if r.HasExpiry() {
		t.Error("zero expiry should be missing")
	}
	r.ExpiresAt = time.Now()
	if !r.HasExpiry() {
		t.Error("expected expiry")
	}

	r.Status = StatusResolved
	if r.Tradeable() {
		t.Error("resolved market should not be tradeable")
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"active":   StatusActive,
		"OPEN":     StatusActive,
		"":         StatusActive,
		"paused":   StatusPending,
		"Resolved": StatusResolved,
		"settled":  StatusResolved,
	}
	for in, want := range tests {
		if got := ParseStatus(in); got != want {
			t.Errorf("ParseStatus(%q) = %q, want %q", in, got, want)
		}
	}
}
