package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fd1az/prediction-arb/internal/apperror"
)

func TestGet_ResolvesBaseURLAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/markets" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "active" {
			t.Errorf("status = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("accept = %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, err := NewInstrumentedClient(
		WithProviderName("test"),
		WithBaseURL(server.URL+"/"),
		WithHeaders(map[string]string{"Accept": "application/json"}),
	)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.Get(context.Background(), "/v1/markets",
		WithQueryParam("status", "active"),
		WithLabels(Label{Key: "endpoint", Value: "markets"}),
	)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(resp.Body) != "[]" {
		t.Errorf("body = %q", resp.Body)
	}
}

func TestGet_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   apperror.Code
	}{
		{http.StatusServiceUnavailable, apperror.CodeSourceUnavailable},
		{http.StatusTooManyRequests, apperror.CodeRateLimitExceeded},
		{http.StatusNotFound, apperror.CodeSourceBadStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			client, err := NewInstrumentedClient()
			if err != nil {
				t.Fatal(err)
			}

			resp, err := client.Get(context.Background(), server.URL)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperror.GetCode(err); got != tt.want {
				t.Errorf("code = %s, want %s", got, tt.want)
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestGet_CustomHandlerAcceptsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	client, err := NewInstrumentedClient()
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.Get(context.Background(), server.URL,
		WithResponseErrorHandler(func(int, []byte) error { return nil }))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestGet_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	client, err := NewInstrumentedClient()
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Get(context.Background(), addr)
	if !apperror.IsRetryable(err) {
		t.Errorf("expected retryable error, got %v (%s)", err, apperror.GetCode(err))
	}
}
