// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrCodeAnalysisDegraded ErrorCode = "ANALYSIS_DEGRADED"

	ErrCodeToolExecutionFailed ErrorCode = "TOOL_EXECUTION_FAILED"
	ErrCodeToolTimeout         ErrorCode = "TOOL_TIMEOUT"

	ErrCodeRecordStoreError ErrorCode = "RECORD_STORE_ERROR"
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeSynthesisFailed  ErrorCode = "SYNTHESIS_FAILED"
	ErrCodeSynthesisTimeout ErrorCode = "SYNTHESIS_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisDegradedError marks a failed query analysis. Never thrown to
// the workflow engine; the pipeline continues on the default analysis.
func NewAnalysisDegradedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisDegraded,
		Message:   "Query analysis unavailable, default analysis applied",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolExecutionFailedError creates a retryable tool execution error.
func NewToolExecutionFailedError(tool string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolExecutionFailed,
		Message:   "Retrieval tool execution error",
		Details:   fmt.Sprintf("tool: %s, error: %s", tool, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolTimeoutError creates a retryable tool timeout error.
func NewToolTimeoutError(tool string) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolTimeout,
		Message:   "Retrieval tool timeout",
		Details:   fmt.Sprintf("tool: %s", tool),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordStoreError creates a retryable record store error.
func NewRecordStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordStoreError,
		Message:   "Record store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError marks a cache backend failure. Informational:
// the cache layer degrades to misses rather than failing requests.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache backend unavailable",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSynthesisFailedError creates a retryable answer synthesis error.
func NewSynthesisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSynthesisFailed,
		Message:   "Answer synthesis API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSynthesisTimeoutError creates a retryable answer synthesis timeout error.
func NewSynthesisTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSynthesisTimeout,
		Message:   "Answer synthesis timeout",
		Details:   "synthesis call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The
// codes are identical on both sides.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidRequest:      "INVALID_REQUEST",
	ErrCodeAnalysisDegraded:    "ANALYSIS_DEGRADED",
	ErrCodeToolExecutionFailed: "TOOL_EXECUTION_FAILED",
	ErrCodeToolTimeout:         "TOOL_TIMEOUT",
	ErrCodeRecordStoreError:    "RECORD_STORE_ERROR",
	ErrCodeCacheUnavailable:    "CACHE_UNAVAILABLE",
	ErrCodeSynthesisFailed:     "SYNTHESIS_FAILED",
	ErrCodeSynthesisTimeout:    "SYNTHESIS_TIMEOUT",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeToolExecutionFailed,
		ErrCodeRecordStoreError,
		ErrCodeSynthesisFailed:
		return 3 // Retryable technical errors

	case ErrCodeToolTimeout,
		ErrCodeSynthesisTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Validation and degraded-path errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TOOL") || strings.Contains(codeStr, "RECORD_STORE"):
		return "RETRIEVAL"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "SYNTHESIS") || strings.Contains(codeStr, "ANALYSIS"):
		return "AI"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
