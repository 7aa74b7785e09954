package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/prediction-arb/internal/apperror"
)

const (
	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute
	defaultMaxBodyBytes    = 32 << 20

	metricRequestCounter = "http_client_requests_total"
)

// Client fetches documents over HTTP.
type Client interface {
	Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsError returns true if the status code indicates an error (>= 400).
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// InstrumentedClient wraps http.Client with OTEL instrumentation.
type InstrumentedClient struct {
	client         *http.Client
	requestCounter metric.Int64Counter
	providerName   string
	tracer         trace.Tracer
	baseURL        string
	headers        map[string]string
	maxBodyBytes   int64
}

// NewInstrumentedClient creates a new instrumented HTTP client.
func NewInstrumentedClient(opts ...ClientOption) (*InstrumentedClient, error) {
	options := &ClientOptions{}
	for _, o := range opts {
		o(options)
	}

	transport := options.roundTripper
	if transport == nil {
		transport = &http.Transport{
			DialContext:     (&net.Dialer{KeepAlive: defaultDialKeepAlive}).DialContext,
			MaxConnsPerHost: defaultMaxConnsPerHost,
			IdleConnTimeout: defaultIdleConnTimeout,
		}
	}

	timeout := options.requestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(transport,
			otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx)
			}),
		),
	}

	providerName := options.providerName
	if providerName == "" {
		providerName = "default"
	}

	meterProvider := options.meterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	meter := meterProvider.Meter("instrumented_http_client",
		metric.WithInstrumentationAttributes(attribute.String("provider", providerName)),
	)
	requestCounter, err := meter.Int64Counter(metricRequestCounter,
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	tracer := options.tracer
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer("instrumented_http_client")
	}

	maxBody := options.maxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return &InstrumentedClient{
		client:         httpClient,
		requestCounter: requestCounter,
		providerName:   providerName,
		tracer:         tracer,
		baseURL:        options.baseURL,
		headers:        options.headers,
		maxBodyBytes:   maxBody,
	}, nil
}

// Get fetches path, resolved against the base URL when relative. Non-2xx
// statuses become errors through the response error handler.
func (c *InstrumentedClient) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	reqOpts := &RequestOptions{errorHandler: StatusError}
	for _, o := range opts {
		o(reqOpts)
	}

	fullURL, err := c.resolve(path, reqOpts.query)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput, apperror.WithCause(err), apperror.WithContext(path))
	}

	ctx, span := c.tracer.Start(ctx, "http.get",
		trace.WithAttributes(
			attribute.String("http.url", fullURL),
			attribute.String("provider", c.providerName),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range reqOpts.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.recordError(ctx, span, reqOpts.labels, err)
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		c.recordError(ctx, span, reqOpts.labels, err)
		return nil, apperror.New(apperror.CodeSourceUnavailable,
			apperror.WithCause(err), apperror.WithContext("read body"))
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Int("http.response_size", len(body)),
	)

	if reqOpts.errorHandler != nil {
		if herr := reqOpts.errorHandler(resp.StatusCode, body); herr != nil {
			span.SetStatus(codes.Error, herr.Error())
			c.recordMetrics(ctx, reqOpts.labels, false)
			return out, herr
		}
	}

	c.recordMetrics(ctx, reqOpts.labels, !out.IsError())
	return out, nil
}

func (c *InstrumentedClient) resolve(path string, query map[string]string) (string, error) {
	full := path
	if c.baseURL != "" && !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		full = strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	u, err := url.Parse(full)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// StatusError is the default response handler: 5xx and 429 are retryable
// source failures, other 4xx are bad statuses.
func StatusError(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}

	snippet := string(body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	ctx := fmt.Sprintf("HTTP %d: %s", statusCode, snippet)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return apperror.New(apperror.CodeRateLimitExceeded, apperror.WithContext(ctx))
	case statusCode >= 500:
		return apperror.New(apperror.CodeSourceUnavailable, apperror.WithContext(ctx))
	default:
		return apperror.New(apperror.CodeSourceBadStatus, apperror.WithContext(ctx))
	}
}

func transportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperror.New(apperror.CodeServiceTimeout, apperror.WithCause(err))
	}
	return apperror.New(apperror.CodeSourceUnavailable, apperror.WithCause(err))
}

func (c *InstrumentedClient) recordError(ctx context.Context, span trace.Span, labels []Label, err error) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
	c.recordMetrics(ctx, labels, false)
}

func (c *InstrumentedClient) recordMetrics(ctx context.Context, labels []Label, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", c.providerName),
		attribute.Bool("success", success),
	}
	for _, l := range labels {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}
	c.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
