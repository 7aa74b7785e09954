package apperror

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Kind classifies an AppError by who has to act on it.
type Kind string

const (
	KindValidation Kind = "validation" // bad input, skip it
	KindNotFound   Kind = "not_found"
	KindExternal   Kind = "external" // upstream feed misbehaved
	KindInternal   Kind = "internal"
)

// AppError is the structured error used across the scanner.
type AppError struct {
	Code      Code
	Kind      Kind
	Message   string
	Context   string
	Timestamp time.Time
	cause     error
	stack     []uintptr
}

func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Context != "" {
		sb.WriteString(" [")
		sb.WriteString(e.Context)
		sb.WriteString("]")
	}
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches any AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the next attempt may succeed unchanged.
func (e *AppError) Retryable() bool {
	_, ok := retryable[e.Code]
	return ok
}

// LogArgs returns key/value pairs for a structured log call.
func (e *AppError) LogArgs() []any {
	args := []any{"error_code", string(e.Code), "error_kind", string(e.Kind), "error", e.Message}
	if e.Context != "" {
		args = append(args, "error_context", e.Context)
	}
	if e.cause != nil {
		args = append(args, "cause", e.cause.Error())
	}
	if e.Kind == KindInternal && len(e.stack) > 0 {
		args = append(args, "stack", e.formatStack())
	}
	return args
}

func (e *AppError) formatStack() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

func captureStack() []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// New creates an AppError. The kind is derived from the code unless an
// option overrides it.
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:      code,
		Kind:      kindOf(code),
		Message:   messages[code],
		Timestamp: time.Now(),
		stack:     captureStack(),
	}

	for _, opt := range opts {
		opt(err)
	}

	if err.Message == "" {
		err.Message = string(code)
	}

	return err
}

// Option is a functional option for AppError
type Option func(*AppError)

func WithMessage(message string) Option {
	return func(e *AppError) {
		e.Message = message
	}
}

func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

func WithKind(kind Kind) Option {
	return func(e *AppError) {
		e.Kind = kind
	}
}

func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// NotFound creates a not found error
func NotFound(code Code, context string) *AppError {
	return New(code, WithContext(context), WithKind(KindNotFound))
}

// Validation creates a validation error
func Validation(code Code, context string) *AppError {
	return New(code, WithContext(context), WithKind(KindValidation))
}

// Internal creates an internal error
func Internal(code Code, context string, cause error) *AppError {
	return New(code, WithContext(context), WithCause(cause), WithKind(KindInternal))
}

// External creates an upstream error
func External(code Code, context string, cause error) *AppError {
	return New(code, WithContext(context), WithCause(cause), WithKind(KindExternal))
}

// Wrap converts err into an AppError. An existing AppError keeps its code
// and only gains the context when it had none.
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}

	return Internal(code, context, err)
}

// IsRetryable reports whether the failure is transient, so the next
// detection cycle may succeed without operator action.
func IsRetryable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Retryable()
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// LogArgs returns structured log attributes for any error.
func LogArgs(err error) []any {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.LogArgs()
	}
	return []any{"error", err}
}

var retryable = map[Code]struct{}{
	CodeSourceUnavailable:  {},
	CodeSourceBadStatus:    {},
	CodeServiceTimeout:     {},
	CodeServiceUnavailable: {},
	CodeRateLimitExceeded:  {},
	CodeCircuitOpen:        {},
	CodeCircuitHalfOpen:    {},
}

func kindOf(code Code) Kind {
	s := string(code)
	switch {
	case strings.Contains(s, "NOT_FOUND"):
		return KindNotFound
	case strings.Contains(s, "INVALID"), strings.Contains(s, "DECODE"):
		return KindValidation
	case strings.Contains(s, "UNAVAILABLE"), strings.Contains(s, "TIMEOUT"),
		strings.HasPrefix(s, "CIRCUIT_"), code == CodeSourceBadStatus, code == CodeRateLimitExceeded:
		return KindExternal
	default:
		return KindInternal
	}
}
