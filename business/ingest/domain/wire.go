// Package domain contains the wire format of market snapshots and its
// conversion into normalized market records.
package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	matchingDomain "github.com/fd1az/prediction-arb/business/matching/domain"
	"github.com/fd1az/prediction-arb/internal/apperror"
)

// WireRecord is one listing as published in a snapshot. Numeric fields are
// pointers so a missing value can be told apart from zero.
type WireRecord struct {
	Platform           string           `json:"platform"`
	MarketID           string           `json:"market_id"`
	Chain              string           `json:"chain,omitempty"`
	Title              string           `json:"title"`
	Category           string           `json:"category,omitempty"`
	YesPrice           *decimal.Decimal `json:"yes_price"`
	NoPrice            *decimal.Decimal `json:"no_price"`
	YesLiquidity       *decimal.Decimal `json:"yes_liquidity,omitempty"`
	NoLiquidity        *decimal.Decimal `json:"no_liquidity,omitempty"`
	Liquidity          *decimal.Decimal `json:"liquidity,omitempty"` // split evenly when per-side depth is absent
	Volume24h          *decimal.Decimal `json:"volume_24h,omitempty"`
	Status             string           `json:"status,omitempty"`
	ExpiresAt          string           `json:"expires_at,omitempty"`
	Description        string           `json:"description,omitempty"`
	ResolutionSource   string           `json:"resolution_source,omitempty"`
	ResolutionCriteria string           `json:"resolution_criteria,omitempty"`
	URL                string           `json:"url,omitempty"`
}

// Snapshot is the object form of a snapshot document. A bare JSON array of
// records is accepted too.
type Snapshot struct {
	GeneratedAt string            `json:"generated_at,omitempty"`
	Markets     []json.RawMessage `json:"markets"`
}

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SplitSnapshot returns the raw entries of a snapshot document.
func SplitSnapshot(data []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var entries []json.RawMessage
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, apperror.New(apperror.CodeSourceDecodeFailed,
				apperror.WithCause(err), apperror.WithContext("snapshot array"))
		}
		return entries, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperror.New(apperror.CodeSourceDecodeFailed,
			apperror.WithCause(err), apperror.WithContext("snapshot object"))
	}
	return snap.Markets, nil
}

// ToRecord converts the wire form into a MarketRecord and extracts the
// resolution metadata once. A single missing price is derived from its
// complement; both missing is an error. An unparseable expiry is dropped and
// the record keeps an unknown deadline; see ExpiryErr.
func (w WireRecord) ToRecord() (matchingDomain.MarketRecord, error) {
	yes, no, err := w.prices()
	if err != nil {
		return matchingDomain.MarketRecord{}, err
	}

	expiry, err := ParseExpiry(w.ExpiresAt)
	if err != nil {
		expiry = time.Time{}
	}

	yesLiq, noLiq := w.liquidity()

	return matchingDomain.MarketRecord{
		Platform:     w.Platform,
		MarketID:     w.MarketID,
		Chain:        strings.ToLower(strings.TrimSpace(w.Chain)),
		Title:        w.Title,
		Category:     w.Category,
		YesPrice:     yes,
		NoPrice:      no,
		YesLiquidity: yesLiq,
		NoLiquidity:  noLiq,
		Volume24h:    orZero(w.Volume24h),
		Status:       matchingDomain.ParseStatus(w.Status),
		ExpiresAt:    expiry,
		Resolution:   matchingDomain.NewResolutionMeta(w.Description, w.ResolutionSource, w.ResolutionCriteria),
		URL:          w.URL,
	}.Sanitize(), nil
}

// ExpiryErr reports an expires_at value that is present but cannot be parsed.
func (w WireRecord) ExpiryErr() error {
	if _, err := ParseExpiry(w.ExpiresAt); err != nil {
		return apperror.New(apperror.CodeInvalidRecordExpiry,
			apperror.WithCause(err), apperror.WithContext(w.Platform+":"+w.MarketID))
	}
	return nil
}

func (w WireRecord) prices() (decimal.Decimal, decimal.Decimal, error) {
	switch {
	case w.YesPrice != nil && w.NoPrice != nil:
		return *w.YesPrice, *w.NoPrice, nil
	case w.YesPrice != nil:
		return *w.YesPrice, one.Sub(*w.YesPrice), nil
	case w.NoPrice != nil:
		return one.Sub(*w.NoPrice), *w.NoPrice, nil
	default:
		return decimal.Zero, decimal.Zero, apperror.Validation(apperror.CodeInvalidRecordPrice,
			w.Platform+":"+w.MarketID+": no prices")
	}
}

func (w WireRecord) liquidity() (decimal.Decimal, decimal.Decimal) {
	if w.YesLiquidity != nil || w.NoLiquidity != nil {
		return orZero(w.YesLiquidity), orZero(w.NoLiquidity)
	}
	if w.Liquidity != nil {
		half := w.Liquidity.Div(two)
		return half, half
	}
	return decimal.Zero, decimal.Zero
}

// ParseExpiry accepts RFC 3339, a few common date-time layouts and unix
// seconds. An empty string is a missing expiry.
func ParseExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}

	var lastErr error
	for _, layout := range expiryLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
