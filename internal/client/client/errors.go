package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidBaseURL means the configured API base URL is missing or
	// not an absolute http(s) URL. It is a startup error.
	ErrInvalidBaseURL = errors.New("invalid api base url")

	// ErrInvalidTarget is returned, before any network call, for a Target
	// that is not one of Path, URL or Derive with a usable value.
	ErrInvalidTarget = errors.New("invalid request target")

	// ErrUnauthorized matches, via errors.Is, any APIError with status 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// Kind tells where an APIError came from.
type Kind int

const (
	// KindRequest is a failed application request.
	KindRequest Kind = iota
	// KindAuth is a failed login, token refresh or logout exchange.
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindAuth:
		return "auth"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// APIError is a non-2xx response from the backend. Detail and Name come
// from the structured error body {"name": ..., "detail": ...}.
type APIError struct {
	Kind   Kind
	Status int
	Detail string
	Name   string
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Name, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Detail)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// maxDetailLen caps the raw body echoed into Detail for non-JSON errors.
const maxDetailLen = 512

// newAPIError builds an APIError from a response body. A string "detail"
// is used as is; a list (request validation errors) is flattened to its
// "msg" fields; anything else falls back to the body text and finally to
// the status text.
func newAPIError(kind Kind, status int, body []byte) *APIError {
	e := &APIError{Kind: kind, Status: status}

	if gjson.ValidBytes(body) {
		e.Name = gjson.GetBytes(body, "name").String()

		detail := gjson.GetBytes(body, "detail")
		switch {
		case detail.Type == gjson.String:
			e.Detail = detail.String()
		case detail.IsArray():
			var msgs []string
			for _, m := range detail.Get("#.msg").Array() {
				msgs = append(msgs, m.String())
			}
			e.Detail = strings.Join(msgs, "; ")
		case detail.Exists():
			e.Detail = detail.Raw
		}
	}

	if e.Detail == "" {
		e.Detail = strings.TrimSpace(string(body))
		if len(e.Detail) > maxDetailLen {
			e.Detail = e.Detail[:maxDetailLen]
		}
	}
	if e.Detail == "" {
		e.Detail = http.StatusText(status)
	}
	return e
}
