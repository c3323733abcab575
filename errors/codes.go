package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates a configuration value could not be parsed or is out of range.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeMissingField indicates a required configuration value is absent.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidInput indicates caller input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Transport errors (retryable)
const (
	// ErrCodeConnectionFailed indicates a failed connection to a remote host or proxy.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodePoolExhausted indicates no connection slot was available in the pool.
	ErrCodePoolExhausted ErrorCode = "POOL_EXHAUSTED"
)

// Proxy errors
const (
	// ErrCodeProxyAuthRequired indicates the proxy rejected the request with 407.
	ErrCodeProxyAuthRequired ErrorCode = "PROXY_AUTH_REQUIRED"
)

// Lifecycle errors
const (
	// ErrCodeServiceUnavailable indicates a component has not been started.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodePoolExhausted:      true,
	ErrCodeServiceUnavailable: true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
