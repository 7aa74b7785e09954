// Package domain contains the market record model and the pure text rules
// used to decide whether two listings describe the same event.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/prediction-arb/internal/apperror"
)

// Status is the trading status of a listing.
type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// ParseStatus maps free text to a Status. Unknown values are treated as active.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "paused", "halted":
		return StatusPending
	case "resolved", "closed", "settled", "finalized":
		return StatusResolved
	default:
		return StatusActive
	}
}

// Price bounds applied when a quoted probability falls outside (0,1).
var (
	MinPrice = decimal.RequireFromString("0.001")
	MaxPrice = decimal.RequireFromString("0.999")

	// MaxPriceSum is the tolerated yes+no overround before a record is rejected.
	MaxPriceSum = decimal.RequireFromString("1.1")
)

// MarketRecord is one binary listing on one platform, already normalized.
type MarketRecord struct {
	Platform     string
	MarketID     string
	Chain        string
	Title        string
	Category     string
	YesPrice     decimal.Decimal
	NoPrice      decimal.Decimal
	YesLiquidity decimal.Decimal
	NoLiquidity  decimal.Decimal
	Volume24h    decimal.Decimal
	Status       Status
	ExpiresAt    time.Time // zero when the platform did not publish one
	Resolution   ResolutionMeta
	URL          string
}

// Key identifies the listing across a batch.
func (r MarketRecord) Key() string {
	id := r.MarketID
	if id == "" {
		id = Canonicalize(r.Title)
	}
	return r.Platform + ":" + id
}

// HasExpiry reports whether an expiry timestamp is known.
func (r MarketRecord) HasExpiry() bool {
	return !r.ExpiresAt.IsZero()
}

// TotalLiquidity returns yes plus no liquidity.
func (r MarketRecord) TotalLiquidity() decimal.Decimal {
	return r.YesLiquidity.Add(r.NoLiquidity)
}

// Tradeable reports whether the listing can still be traded.
func (r MarketRecord) Tradeable() bool {
	return r.Status != StatusResolved
}

// Sanitize returns a copy with prices clamped into (0,1), negative amounts
// zeroed and the platform id normalized.
func (r MarketRecord) Sanitize() MarketRecord {
	r.Platform = strings.ToLower(strings.TrimSpace(r.Platform))
	r.Title = strings.TrimSpace(r.Title)
	r.YesPrice = clampPrice(r.YesPrice)
	r.NoPrice = clampPrice(r.NoPrice)
	r.YesLiquidity = nonNegative(r.YesLiquidity)
	r.NoLiquidity = nonNegative(r.NoLiquidity)
	r.Volume24h = nonNegative(r.Volume24h)
	if r.Status == "" {
		r.Status = StatusActive
	}
	return r
}

// Validate reports records that cannot take part in matching.
func (r MarketRecord) Validate() error {
	if r.Platform == "" {
		return apperror.Validation(apperror.CodeInvalidRecord, "platform is empty")
	}
	if r.Title == "" {
		return apperror.Validation(apperror.CodeInvalidRecord, r.Platform+": title is empty")
	}
	if r.YesPrice.Add(r.NoPrice).GreaterThan(MaxPriceSum) {
		return apperror.Validation(apperror.CodeInvalidRecordPrice,
			r.Key()+": yes+no="+r.YesPrice.Add(r.NoPrice).String())
	}
	return nil
}

func clampPrice(p decimal.Decimal) decimal.Decimal {
	if p.LessThanOrEqual(decimal.Zero) {
		return MinPrice
	}
	if p.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return MaxPrice
	}
	return p
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
