// Package common contains shared constants and sentinel errors used across
// poputchiki client components.
package common

// Cookie names of the persisted session credentials. The server reads the
// same names, so they double as request cookies.
const (
	TokenCookieName  = "token"
	UserIDCookieName = "userId"
)

// TokenQueryParam is the query parameter the realtime endpoint accepts as an
// alternative to the token cookie.
const TokenQueryParam = "token"

// RequestIDHeaderName carries a per-request correlation id.
const RequestIDHeaderName = "X-Request-ID"
