package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// ErrorType classifies a provider failure. It decides whether the user is
// offered another attempt; nothing is retried automatically.
type ErrorType int

const (
	// ErrorTypeRetryable indicates the error is transient
	ErrorTypeRetryable ErrorType = iota
	// ErrorTypeNonRetryable indicates the error is permanent
	ErrorTypeNonRetryable
	// ErrorTypeUnknown indicates the error type is unknown
	ErrorTypeUnknown
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeRetryable:
		return "Retryable"
	case ErrorTypeNonRetryable:
		return "NonRetryable"
	default:
		return "Unknown"
	}
}

// HTTPStatusError is an interface for errors that have HTTP status codes
type HTTPStatusError interface {
	error
	HTTPStatusCode() int
}

// statusInMessage finds the code in messages such as
// "error, status code: 429, status: 429 Too Many Requests, message: ...".
var statusInMessage = regexp.MustCompile(`status code: (\d{3})`)

// ClassifyError determines if an error is retryable based on its type and content
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeNonRetryable
	}

	// User interrupted
	if errors.Is(err, context.Canceled) {
		return ErrorTypeNonRetryable
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeRetryable
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return ErrorTypeRetryable
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorTypeRetryable
	}

	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		return classifyHTTPStatus(statusErr.HTTPStatusCode())
	}

	if code, ok := statusCode(err); ok {
		return classifyHTTPStatus(code)
	}

	errMsg := strings.ToLower(err.Error())
	if m := statusInMessage.FindStringSubmatch(errMsg); m != nil {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil {
			return classifyHTTPStatus(code)
		}
	}

	contextKeywords := []string{
		"context length",
		"context_length",
		"maximum context",
		"token limit",
		"tokens exceeded",
	}
	for _, keyword := range contextKeywords {
		if strings.Contains(errMsg, keyword) {
			return ErrorTypeNonRetryable
		}
	}

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "rate limit") {
		return ErrorTypeRetryable
	}

	return ErrorTypeUnknown
}

// IsRetryable reports whether offering another attempt makes sense for err.
func IsRetryable(err error) bool {
	return ClassifyError(err) == ErrorTypeRetryable
}

// classifyHTTPStatus classifies HTTP status codes
func classifyHTTPStatus(statusCode int) ErrorType {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
		http.StatusBadGateway,
		http.StatusGatewayTimeout:
		return ErrorTypeRetryable
	case http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound:
		return ErrorTypeNonRetryable
	default:
		if statusCode >= 500 {
			return ErrorTypeRetryable
		}
		if statusCode >= 400 {
			return ErrorTypeNonRetryable
		}
		return ErrorTypeUnknown
	}
}
