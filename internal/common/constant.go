// Package common contains shared constants and sentinel errors used across
// skullkeeper components.
package common

const (
	// AuthorizationHeaderName carries the bearer access token.
	AuthorizationHeaderName = "Authorization"

	// LastModifiedHeaderName carries a collection's last-modified token as
	// unsigned epoch milliseconds on every successful response.
	LastModifiedHeaderName = "Last-Modified"

	// UnmodifiedSinceHeaderName carries the client's last-known token on
	// update and delete requests.
	UnmodifiedSinceHeaderName = "If-Unmodified-Since"

	// RequestIDHeaderName is echoed on every response.
	RequestIDHeaderName = "X-Request-Id"
)
