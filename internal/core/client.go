package core

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// UsageClient fetches a fresh usage snapshot for one provider. The cached
// snapshot, when present, is the context for delta computation. Each
// implementation owns its own request timeout.
type UsageClient interface {
	Fetch(ctx context.Context, cached *UsageSnapshot) (UsageSnapshot, error)
}

// FetchErrorKind classifies client failures. The refresh path treats every
// kind identically (the stale cache entry is retained); the distinction only
// matters for diagnostics.
type FetchErrorKind string

const (
	ErrMissingCredentials FetchErrorKind = "missing_credentials"
	ErrInvalidResponse    FetchErrorKind = "invalid_response"
	ErrInvalidPayload     FetchErrorKind = "invalid_payload"
	ErrHTTPStatus         FetchErrorKind = "http_status"
)

// maxErrorBody bounds how much of a failing response body travels with the
// error.
const maxErrorBody = 300

type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int    // set when Kind == ErrHTTPStatus
	Body       string // truncated response body, may be empty
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case ErrMissingCredentials:
		return "missing credentials"
	case ErrInvalidResponse:
		return "invalid response"
	case ErrInvalidPayload:
		return "invalid payload"
	case ErrHTTPStatus:
		if e.Body != "" {
			return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
		}
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	default:
		return string(e.Kind)
	}
}

func NewFetchError(kind FetchErrorKind) *FetchError {
	return &FetchError{Kind: kind}
}

// NewHTTPStatusError captures a failing status code plus a bounded prefix of
// the response body. Truncation happens on a rune boundary so multi-byte
// bodies stay valid UTF-8.
func NewHTTPStatusError(status int, body string) *FetchError {
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return &FetchError{Kind: ErrHTTPStatus, StatusCode: status, Body: body}
}
