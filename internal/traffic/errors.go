package traffic

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the classification of a failed lookup.
type Kind int

const (
	KindBadRequest Kind = iota
	KindRateLimited
	KindProviderError
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindRateLimited:
		return "rate_limited"
	case KindProviderError:
		return "provider_error"
	case KindInternal:
		return "internal_error"
	default:
		return "unknown"
	}
}

// maxDetailLen bounds how much upstream text is forwarded to callers.
const maxDetailLen = 200

// Error is the single classified error a failed lookup produces.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	// Details carries upstream error text for provider errors only.
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// BadRequest reports input rejected before any network call.
func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Status: http.StatusBadRequest, Message: msg}
}

// Internal hides err behind a generic 500. The cause stays reachable through
// Unwrap for logging but is never rendered to callers.
func Internal(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Status:  http.StatusInternalServerError,
		Message: "Internal Server Error",
		Err:     err,
	}
}

// ClassifyResponse maps a non-2xx upstream response to a classified error.
func ClassifyResponse(status int, body []byte) *Error {
	if status == http.StatusTooManyRequests {
		return &Error{Kind: KindRateLimited, Status: status, Message: "API Limit Reached"}
	}
	return &Error{
		Kind:    KindProviderError,
		Status:  status,
		Message: "Failed to fetch data",
		Details: upstreamErrorText(body),
	}
}

// AsError returns err as a classified error. Anything not already classified
// becomes an internal error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return Internal(err)
}

func upstreamErrorText(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"error", "message", "Message", "Error"} {
			switch v := payload[key].(type) {
			case string:
				return truncate(v)
			case map[string]any:
				if msg, ok := v["message"].(string); ok {
					return truncate(msg)
				}
			}
		}
		return ""
	}
	return truncate(strings.TrimSpace(string(body)))
}

func truncate(s string) string {
	if len(s) > maxDetailLen {
		return strings.ToValidUTF8(s[:maxDetailLen], "")
	}
	return s
}
