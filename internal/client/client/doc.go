// Package client is the HTTP API core of the yama front-end.
//
// # Overview
//
// Client sends authenticated requests to the backend. Every request carries
// the access token held by the token store as a bearer header. A 401 while a
// refresh token is held triggers one refresh exchange against /auth and
// exactly one retry of the original request. A failed refresh clears the
// store.
//
// Requests name their destination with a Target: Path for a reference
// resolved against the base URL, URL for an absolute URL, Derive for a
// function computing the URL from the base (query parameters and the like).
//
// # Error Handling
//
// Non-2xx responses become *APIError with a Kind telling an application
// request from a login/refresh/logout exchange. errors.Is(err,
// ErrUnauthorized) matches any 401. ErrInvalidBaseURL and ErrInvalidTarget
// are returned before any network call.
//
// # Storage
//
// InitStorage opens the metadata repository backing the token store for the
// configured backend (sqlite, bolt or a JSON file), applying embedded goose
// migrations for sqlite.
package client
