// Package common contains constants shared by the client packages.
package common

// Outbound HTTP header names.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
)

// Persisted cache keys holding the session.
const (
	TokenKey  = "token"
	UserIDKey = "userId"
)
