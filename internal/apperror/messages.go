package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Ingestion
	CodeSourceUnavailable:   "Market record source unavailable",
	CodeSourceDecodeFailed:  "Failed to decode market records",
	CodeSourceBadStatus:     "Market feed returned an unexpected status",
	CodeSnapshotNotFound:    "Market snapshot file not found",
	CodeInvalidRecord:       "Market record is malformed",
	CodeInvalidRecordPrice:  "Market record has an invalid price",
	CodeInvalidRecordExpiry: "Market record has an invalid expiry",

	// Costing
	CodeInvalidFeeSchedule: "Invalid fee schedule",

	// Detection
	CodeDetectionCycleFailed: "Detection cycle failed",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
