// Package di contains dependency injection tokens for the ingest context.
package di

import (
	"github.com/fd1az/prediction-arb/business/ingest/app"
	"github.com/fd1az/prediction-arb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Source = di.NewToken[app.Source]("ingest.Source")
)

// Private dependency tokens - internal to ingest module
var (
	Decoder = di.NewToken[*app.Decoder]("ingest:decoder")
)

func GetSource(c di.ServiceRegistry) app.Source {
	return di.GetToken(c, Source)
}

func GetDecoder(c di.ServiceRegistry) *app.Decoder {
	return di.GetToken(c, Decoder)
}
