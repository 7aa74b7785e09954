package apperror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew_DefaultMessageAndKind(t *testing.T) {
	tests := []struct {
		code     Code
		wantKind Kind
	}{
		{CodeInvalidRecord, KindValidation},
		{CodeSourceDecodeFailed, KindValidation},
		{CodeSnapshotNotFound, KindNotFound},
		{CodeSourceUnavailable, KindExternal},
		{CodeCircuitOpen, KindExternal},
		{CodeSourceBadStatus, KindExternal},
		{CodeRateLimitExceeded, KindExternal},
		{CodeDetectionCycleFailed, KindInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code)
			if err.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", err.Kind, tt.wantKind)
			}
			if err.Message != messages[tt.code] {
				t.Errorf("Message = %q, want %q", err.Message, messages[tt.code])
			}
		})
	}
}

func TestError_IncludesContextAndCause(t *testing.T) {
	err := Internal(CodeDetectionCycleFailed, "fetch records", errors.New("disk full"))

	got := err.Error()
	for _, want := range []string{"DETECTION_CYCLE_FAILED", "[fetch records]", "disk full"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}

func TestLogArgs(t *testing.T) {
	args := LogArgs(Validation(CodeInvalidRecord, "kalshi:X"))
	kv := map[any]any{}
	for i := 0; i+1 < len(args); i += 2 {
		kv[args[i]] = args[i+1]
	}
	if kv["error_code"] != string(CodeInvalidRecord) || kv["error_kind"] != string(KindValidation) {
		t.Errorf("unexpected args %v", args)
	}
	if kv["error_context"] != "kalshi:X" {
		t.Errorf("error_context = %v", kv["error_context"])
	}
	if _, ok := kv["stack"]; ok {
		t.Error("validation errors should not carry a stack")
	}

	plain := LogArgs(errors.New("boom"))
	if len(plain) != 2 || plain[0] != "error" {
		t.Errorf("plain args = %v", plain)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeSourceUnavailable, "feed")

	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to match cause")
	}
	if GetCode(err) != CodeSourceUnavailable {
		t.Errorf("GetCode = %s, want %s", GetCode(err), CodeSourceUnavailable)
	}

	// Wrapping an AppError returns it unchanged.
	again := Wrap(err, CodeInternalError, "other")
	if again != err {
		t.Error("expected Wrap to return the existing AppError")
	}
}

func TestIs_ComparesCodes(t *testing.T) {
	err := fmt.Errorf("cycle: %w", New(CodeCircuitOpen, WithContext("feed")))
	if !errors.Is(err, New(CodeCircuitOpen)) {
		t.Error("expected errors.Is to match on code")
	}
	if errors.Is(err, New(CodeSourceUnavailable)) {
		t.Error("expected different codes not to match")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(New(CodeSourceUnavailable)) {
		t.Error("source unavailable should be retryable")
	}
	if IsRetryable(New(CodeInvalidFeeSchedule)) {
		t.Error("fee schedule errors should not be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors should not be retryable")
	}
}
