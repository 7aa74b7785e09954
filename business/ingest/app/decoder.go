// Package app contains the ingest services that turn raw snapshots into
// batches of market records.
package app

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/prediction-arb/business/ingest/domain"
	matchingDomain "github.com/fd1az/prediction-arb/business/matching/domain"
	"github.com/fd1az/prediction-arb/internal/logger"
)

const tracerName = "github.com/fd1az/prediction-arb/business/ingest"

// Decoder parses snapshot documents. A bad entry is logged and counted,
// never fatal to the batch.
type Decoder struct {
	logger logger.LoggerInterface
	tracer trace.Tracer
	now    func() time.Time
}

// NewDecoder creates a new Decoder.
func NewDecoder(log logger.LoggerInterface) *Decoder {
	return &Decoder{
		logger: log,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
}

// Decode parses a snapshot from the named source. It fails only when the
// document itself is unreadable.
func (d *Decoder) Decode(ctx context.Context, source string, data []byte) (matchingDomain.Batch, error) {
	ctx, span := d.tracer.Start(ctx, "ingest.decode",
		trace.WithAttributes(
			attribute.String("source", source),
			attribute.Int("bytes", len(data)),
		),
	)
	defer span.End()

	entries, err := domain.SplitSnapshot(data)
	if err != nil {
		span.RecordError(err)
		return matchingDomain.Batch{}, err
	}

	batch := matchingDomain.Batch{
		Source:    source,
		Records:   make([]matchingDomain.MarketRecord, 0, len(entries)),
		FetchedAt: d.now(),
	}

	for i, raw := range entries {
		var wire domain.WireRecord
		if err := json.Unmarshal(raw, &wire); err != nil {
			batch.Rejected++
			d.logger.Warn(ctx, "skipping undecodable record", "source", source, "index", i, "error", err)
			continue
		}

		rec, err := wire.ToRecord()
		if err != nil {
			batch.Rejected++
			d.logger.Warn(ctx, "skipping invalid record",
				"source", source,
				"index", i,
				"platform", wire.Platform,
				"market_id", wire.MarketID,
				"error", err,
			)
			continue
		}
		if err := wire.ExpiryErr(); err != nil {
			d.logger.Warn(ctx, "ignoring malformed expiry",
				"source", source,
				"index", i,
				"platform", wire.Platform,
				"market_id", wire.MarketID,
				"expires_at", wire.ExpiresAt,
				"error", err,
			)
		}

		batch.Records = append(batch.Records, rec)
	}

	span.SetAttributes(
		attribute.Int("records", len(batch.Records)),
		attribute.Int("rejected", batch.Rejected),
	)

	return batch, nil
}
