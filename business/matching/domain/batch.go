package domain

import "time"

// Batch is one fetched set of listings from a record source.
type Batch struct {
	Source    string
	Records   []MarketRecord
	Rejected  int // entries that could not be decoded into a record
	FetchedAt time.Time
}
