package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Detection pipeline error codes
const (
	// Ingestion
	CodeSourceUnavailable   Code = "INGEST_SOURCE_UNAVAILABLE"
	CodeSourceDecodeFailed  Code = "INGEST_DECODE_FAILED"
	CodeSourceBadStatus     Code = "INGEST_BAD_STATUS"
	CodeSnapshotNotFound    Code = "SNAPSHOT_NOT_FOUND"
	CodeInvalidRecord       Code = "INVALID_RECORD"
	CodeInvalidRecordPrice  Code = "INVALID_RECORD_PRICE"
	CodeInvalidRecordExpiry Code = "INVALID_RECORD_EXPIRY"

	// Costing
	CodeInvalidFeeSchedule Code = "INVALID_FEE_SCHEDULE"

	// Detection
	CodeDetectionCycleFailed Code = "DETECTION_CYCLE_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
