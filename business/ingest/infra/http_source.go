package infra

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/prediction-arb/business/ingest/app"
	matchingDomain "github.com/fd1az/prediction-arb/business/matching/domain"
	"github.com/fd1az/prediction-arb/internal/circuitbreaker"
	"github.com/fd1az/prediction-arb/internal/httpclient"
	"github.com/fd1az/prediction-arb/internal/logger"
	"github.com/fd1az/prediction-arb/internal/ratelimit"
)

// HTTPSourceConfig holds configuration for the HTTP snapshot feed.
type HTTPSourceConfig struct {
	URL               string
	Timeout           time.Duration
	RequestsPerMinute int
}

// HTTPSource polls a snapshot endpoint. Unchanged snapshots are detected
// with ETags and served from the last body.
type HTTPSource struct {
	config  HTTPSourceConfig
	client  httpclient.Client
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	decoder *app.Decoder
	logger  logger.LoggerInterface
	tracer  trace.Tracer

	mu       sync.Mutex
	etag     string
	lastBody []byte
}

// NewHTTPSource creates a new HTTP snapshot source.
func NewHTTPSource(cfg HTTPSourceConfig, decoder *app.Decoder, log logger.LoggerInterface) (*HTTPSource, error) {
	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("snapshot_feed"),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTracer(tracer),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return newHTTPSource(cfg, client, decoder, log), nil
}

func newHTTPSource(cfg HTTPSourceConfig, client httpclient.Client, decoder *app.Decoder, log logger.LoggerInterface) *HTTPSource {
	s := &HTTPSource{
		config:  cfg,
		client:  client,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		decoder: decoder,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}

	cbCfg := circuitbreaker.DefaultConfig("snapshot_feed")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Info(context.Background(), "circuit breaker state changed",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	}
	s.cb = circuitbreaker.New[[]byte](cbCfg)

	return s
}

// Name identifies the source.
func (s *HTTPSource) Name() string {
	return "http"
}

// Fetch downloads and decodes the current snapshot.
func (s *HTTPSource) Fetch(ctx context.Context) (matchingDomain.Batch, error) {
	ctx, span := s.tracer.Start(ctx, "ingest.http.fetch",
		trace.WithAttributes(attribute.String("url", s.config.URL)),
	)
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return matchingDomain.Batch{}, err
	}

	body, err := s.cb.Execute(func() ([]byte, error) {
		return s.download(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch snapshot")
		return matchingDomain.Batch{}, err
	}

	return s.decoder.Decode(ctx, s.Name(), body)
}

func (s *HTTPSource) download(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	etag, last := s.etag, s.lastBody
	s.mu.Unlock()

	opts := []httpclient.RequestOption{
		httpclient.WithLabels(httpclient.Label{Key: "endpoint", Value: "snapshot"}),
		httpclient.WithResponseErrorHandler(func(status int, body []byte) error {
			if status == http.StatusNotModified {
				return nil
			}
			return httpclient.StatusError(status, body)
		}),
	}
	if etag != "" && last != nil {
		opts = append(opts, httpclient.WithHeader("If-None-Match", etag))
	}

	resp, err := s.client.Get(ctx, s.config.URL, opts...)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotModified {
		s.logger.Debug(ctx, "snapshot unchanged", "etag", etag)
		return last, nil
	}

	s.mu.Lock()
	s.etag = resp.Header.Get("ETag")
	s.lastBody = resp.Body
	s.mu.Unlock()

	return resp.Body, nil
}
