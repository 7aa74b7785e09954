package app

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fd1az/prediction-arb/internal/apperror"
	"github.com/fd1az/prediction-arb/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func TestDecode_IsolatesBadRecords(t *testing.T) {
	doc := `{"markets": [
		{"platform":"kalshi","market_id":"A","title":"Bitcoin above 100k","yes_price":0.35,"no_price":0.65},
		{"platform":"polymarket","market_id":"B","title":"Bitcoin above 100k","yes_price":"not a number"},
		{"platform":"predictit","market_id":"C","title":"Bitcoin above 100k"},
		{"platform":"manifold","market_id":"D","title":"Bitcoin above 100k","no_price":0.6,"expires_at":"2026-12-31"},
		42
	]}`

	batch, err := NewDecoder(testLogger()).Decode(context.Background(), "file", []byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(batch.Records) != 2 {
		t.Errorf("records = %d, want 2", len(batch.Records))
	}
	if batch.Rejected != 3 {
		t.Errorf("rejected = %d, want 3", batch.Rejected)
	}
	if batch.Source != "file" || batch.FetchedAt.IsZero() {
		t.Errorf("batch meta = %q %s", batch.Source, batch.FetchedAt)
	}
	if batch.Records[1].Platform != "manifold" || batch.Records[1].ExpiresAt.IsZero() {
		t.Errorf("second record = %+v", batch.Records[1])
	}
}

func TestDecode_MalformedExpiryIsWarnedAndKept(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelWarn, "test", nil)

	doc := `[{"platform":"kalshi","market_id":"A","title":"Bitcoin above 100k","yes_price":0.35,"no_price":0.65,"expires_at":"next friday"}]`
	batch, err := NewDecoder(log).Decode(context.Background(), "file", []byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(batch.Records) != 1 || batch.Rejected != 0 {
		t.Fatalf("records = %d rejected = %d, want 1 and 0", len(batch.Records), batch.Rejected)
	}
	if !batch.Records[0].ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %s, want unknown", batch.Records[0].ExpiresAt)
	}
	if out := buf.String(); !strings.Contains(out, "malformed expiry") || !strings.Contains(out, "next friday") {
		t.Errorf("expected a warning naming the value, got %q", out)
	}
}

func TestDecode_UnreadableDocument(t *testing.T) {
	_, err := NewDecoder(testLogger()).Decode(context.Background(), "http", []byte("<html>"))
	if apperror.GetCode(err) != apperror.CodeSourceDecodeFailed {
		t.Errorf("error = %v", err)
	}
}

func TestDecode_EmptyArray(t *testing.T) {
	batch, err := NewDecoder(testLogger()).Decode(context.Background(), "file", []byte("[]"))
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Records) != 0 || batch.Rejected != 0 {
		t.Errorf("batch = %+v", batch)
	}
}
