package genmedia

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Category buckets an external-service failure into the user-facing
// taxonomy; the HTTP layer maps each to a distinct response code.
type Category string

const (
	CategoryValidation  Category = "validation"
	CategorySafety      Category = "safety"
	CategoryQuota       Category = "quota"
	CategoryTimeout     Category = "timeout"
	CategoryAuth        Category = "auth"
	CategoryUnavailable Category = "unavailable"
	CategoryProcessing  Category = "processing"
)

type Error struct {
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("genmedia: %s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("genmedia: %s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may help. Only rate limiting,
// upstream unavailability, timeouts and network-class failures qualify;
// safety rejections, auth and validation errors fail immediately.
func (e *Error) Retryable() bool {
	switch e.Category {
	case CategoryQuota, CategoryUnavailable, CategoryTimeout:
		return true
	}
	return false
}

// AsError extracts the taxonomy error, wrapping unknown failures as
// processing errors.
func AsError(err error) *Error {
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return &Error{Category: CategoryProcessing, Message: "generation failed", Err: err}
}

func classifyStatus(status int, body string) *Error {
	switch status {
	case http.StatusBadRequest:
		return &Error{Category: CategoryValidation, Message: firstLine(body, "invalid request")}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Category: CategoryAuth, Message: "authentication with generation service failed"}
	case http.StatusUnprocessableEntity:
		return &Error{Category: CategorySafety, Message: firstLine(body, "request rejected by safety filter")}
	case http.StatusTooManyRequests:
		return &Error{Category: CategoryQuota, Message: "generation quota exceeded"}
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &Error{Category: CategoryUnavailable, Message: "generation service unavailable"}
	default:
		return &Error{Category: CategoryProcessing, Message: firstLine(body, fmt.Sprintf("unexpected status %d", status))}
	}
}

func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Category: CategoryTimeout, Message: "generation request timed out", Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Category: CategoryTimeout, Message: "generation request timed out", Err: err}
	}
	return &Error{Category: CategoryUnavailable, Message: "generation service unreachable", Err: err}
}

func firstLine(s, def string) string {
	if s == "" {
		return def
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
