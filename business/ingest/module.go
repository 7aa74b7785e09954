// Package ingest implements the ingest bounded context: loading market
// snapshots from a file or an HTTP endpoint.
package ingest

import (
	"context"

	"github.com/fd1az/prediction-arb/business/ingest/app"
	ingestDI "github.com/fd1az/prediction-arb/business/ingest/di"
	"github.com/fd1az/prediction-arb/business/ingest/infra"
	"github.com/fd1az/prediction-arb/internal/config"
	"github.com/fd1az/prediction-arb/internal/di"
	"github.com/fd1az/prediction-arb/internal/logger"
	"github.com/fd1az/prediction-arb/internal/monolith"
)

// Module implements the ingest bounded context.
type Module struct{}

// RegisterServices registers all ingest services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, ingestDI.Decoder, func(sr di.ServiceRegistry) *app.Decoder {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewDecoder(log)
	})

	di.RegisterToken(c, ingestDI.Source, func(sr di.ServiceRegistry) app.Source {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		decoder := ingestDI.GetDecoder(sr)

		if cfg.Ingest.Source == config.SourceHTTP {
			source, err := infra.NewHTTPSource(infra.HTTPSourceConfig{
				URL:               cfg.Ingest.URL,
				Timeout:           cfg.Ingest.Timeout,
				RequestsPerMinute: cfg.Ingest.RequestsPerMinute,
			}, decoder, log)
			if err != nil {
				panic("failed to create http source: " + err.Error())
			}
			return source
		}
		return infra.NewFileSource(cfg.Ingest.Path, decoder)
	})

	return nil
}

// Startup resolves the configured source so construction errors surface early.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	source := ingestDI.GetSource(mono.Services())
	mono.Logger().Info(ctx, "ingest module started", "source", source.Name())
	return nil
}
