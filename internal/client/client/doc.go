// Package client talks to the poputchiki REST API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): user
//     fetch/save, register/login/logout and multipart media uploads.
//  2. A concrete HTTP implementation (see HTTPClient) that attaches the
//     session token as the "token" cookie, tags every request with an
//     X-Request-ID and maps HTTP outcomes to typed errors.
//
// # Error Handling
//
// Transport failures, timeouts and 5xx answers are ErrUnavailable; 401/403
// are ErrUnauthorized; 404 is ErrNotFound. Application errors reported by
// the server come back as *APIError, including 2xx bodies that carry an
// "error" field. Undecodable bodies are ErrMalformedResponse. Nothing is
// retried.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. Every call honors ctx cancellation
// and the configured per-request timeout.
package client
