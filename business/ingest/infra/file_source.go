// Package infra contains the record sources that feed the detector.
package infra

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/prediction-arb/business/ingest/app"
	matchingDomain "github.com/fd1az/prediction-arb/business/matching/domain"
	"github.com/fd1az/prediction-arb/internal/apperror"
)

const tracerName = "github.com/fd1az/prediction-arb/business/ingest"

// FileSource re-reads a JSON snapshot from disk on every fetch.
type FileSource struct {
	path    string
	decoder *app.Decoder
	tracer  trace.Tracer
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string, decoder *app.Decoder) *FileSource {
	return &FileSource{
		path:    path,
		decoder: decoder,
		tracer:  otel.Tracer(tracerName),
	}
}

// Name identifies the source.
func (s *FileSource) Name() string {
	return "file"
}

// Fetch reads and decodes the snapshot.
func (s *FileSource) Fetch(ctx context.Context) (matchingDomain.Batch, error) {
	ctx, span := s.tracer.Start(ctx, "ingest.file.fetch",
		trace.WithAttributes(attribute.String("path", s.path)),
	)
	defer span.End()

	data, err := os.ReadFile(s.path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read snapshot")
		if errors.Is(err, fs.ErrNotExist) {
			return matchingDomain.Batch{}, apperror.NotFound(apperror.CodeSnapshotNotFound, s.path)
		}
		return matchingDomain.Batch{}, apperror.New(apperror.CodeSourceUnavailable,
			apperror.WithCause(err), apperror.WithContext(s.path))
	}

	return s.decoder.Decode(ctx, s.Name(), data)
}
