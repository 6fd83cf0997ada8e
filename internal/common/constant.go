// Package common contains constants and tiny helpers shared by yama
// components.
package common

// Keys of the persisted token pair in the metadata repository.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// RequestIDHeaderName carries the per-call request id on outbound requests,
// so a request and its retry can be matched in backend logs.
const RequestIDHeaderName = "X-Request-ID"
