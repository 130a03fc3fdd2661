// Package errors provides standardized error handling for the classification API.
package errors

import (
	stderrors "errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Upload errors
const (
	ErrCodeImageDecodeFailed ErrorCode = "IMAGE_DECODE_FAILED"
	ErrCodeUploadTooLarge    ErrorCode = "UPLOAD_TOO_LARGE"
	ErrCodeMissingFile       ErrorCode = "MISSING_FILE"
	ErrCodeRateLimited       ErrorCode = "RATE_LIMITED"
)

// Inference errors
const (
	ErrCodeInferenceTimeout           ErrorCode = "INFERENCE_TIMEOUT"
	ErrCodeInferenceTransportFailed   ErrorCode = "INFERENCE_TRANSPORT_FAILED"
	ErrCodeInferenceUpstreamStatus    ErrorCode = "INFERENCE_UPSTREAM_STATUS"
	ErrCodeInferenceMalformedEnvelope ErrorCode = "INFERENCE_MALFORMED_ENVELOPE"
)

const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

// StandardError represents a structured application error.
type StandardError struct {
	Code           ErrorCode              `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	UpstreamStatus int                    `json:"upstream_status,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewImageDecodeFailedError creates a non-retryable upload error.
func NewImageDecodeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeImageDecodeFailed,
		Message:   "Uploaded file is not a supported image",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadTooLargeError creates a non-retryable upload size error.
func NewUploadTooLargeError(limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadTooLarge,
		Message:   "Uploaded file is too large",
		Details:   fmt.Sprintf("maxBytes: %d", limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMissingFileError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingFile,
		Message:   "No image file in request",
		Details:   fmt.Sprintf("expected multipart field %q", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates a retryable rate limit error.
func NewRateLimitedError(retryAfter time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many classification requests",
		Details:   fmt.Sprintf("retryAfter: %s", retryAfter),
		Retryable: true,
		Metadata:  map[string]interface{}{"retry_after_seconds": retryAfterSeconds(retryAfter)},
		Timestamp: time.Now().UTC(),
	}
}

// retryAfterSeconds rounds up so a sub-second wait still yields Retry-After: 1.
func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// NewInferenceTimeoutError creates a retryable timeout error.
func NewInferenceTimeoutError(model string, timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeInferenceTimeout,
		Message:   "Inference request timed out",
		Details:   fmt.Sprintf("model: %s, timeout: %s", model, timeout),
		Retryable: true,
		Metadata:  map[string]interface{}{"model": model},
		Timestamp: time.Now().UTC(),
	}
}

// NewInferenceTransportError creates a retryable network error.
func NewInferenceTransportError(model string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInferenceTransportFailed,
		Message:   "Inference endpoint unreachable",
		Details:   fmt.Sprintf("model: %s, error: %s", model, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"model": model},
		Timestamp: time.Now().UTC(),
	}
}

// NewInferenceUpstreamStatusError carries the upstream status and raw body.
func NewInferenceUpstreamStatusError(model string, status int, body string) *StandardError {
	return &StandardError{
		Code:           ErrCodeInferenceUpstreamStatus,
		Message:        fmt.Sprintf("Inference endpoint returned status %d", status),
		Details:        body,
		Retryable:      status >= 500 || status == http.StatusTooManyRequests,
		UpstreamStatus: status,
		Metadata:       map[string]interface{}{"model": model},
		Timestamp:      time.Now().UTC(),
	}
}

// NewInferenceMalformedEnvelopeError is returned when choices[0].message.content is absent.
func NewInferenceMalformedEnvelopeError(model, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInferenceMalformedEnvelope,
		Message:   "Inference response envelope is malformed",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"model": model},
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError unwraps err into a *StandardError when one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err is a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// HTTPStatus maps an error to the status the API answers with.
func HTTPStatus(err error) int {
	stdErr, ok := AsStandardError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch stdErr.Code {
	case ErrCodeImageDecodeFailed, ErrCodeUploadTooLarge, ErrCodeMissingFile:
		return http.StatusBadRequest
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeInferenceTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeInferenceTransportFailed:
		return http.StatusInternalServerError
	case ErrCodeInferenceUpstreamStatus:
		if stdErr.UpstreamStatus >= 400 && stdErr.UpstreamStatus <= 599 {
			return stdErr.UpstreamStatus
		}
		return http.StatusBadGateway
	case ErrCodeInferenceMalformedEnvelope:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "INFERENCE"):
		return "INFERENCE"
	case strings.Contains(codeStr, "IMAGE") || strings.Contains(codeStr, "UPLOAD") || strings.Contains(codeStr, "FILE"):
		return "UPLOAD"
	case strings.Contains(codeStr, "RATE"):
		return "THROTTLING"
	default:
		return "OTHER"
	}
}
