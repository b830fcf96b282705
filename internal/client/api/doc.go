// Package api is the HTTP request client for the remote account service.
//
// # Overview
//
// Client issues JSON requests relative to a configured base URL, attaches
// the session token when one is present and decodes JSON responses. It
// holds no per-call state and never caches responses; one Client may be
// shared by any number of goroutines.
//
// # Error Handling
//
// Every failure is reported as a *RequestError, reachable through the
// returned error (see AsRequestError):
//
//   - KindTransport: no response was received; StatusCode is 0.
//   - KindHTTP: non-2xx status; Message is "<status>: <body text>".
//   - KindParse: a 2xx response whose body is not valid JSON.
//   - KindRequest: the request itself could not be built.
//
// The client never retries and never touches the session on a 401; match
// ErrUnauthorized with errors.Is and decide at the call site.
//
// Typical Usage
//
//	c, _ := api.New("http://localhost:8080", sess)
//	users, err := api.Get[[]models.User](ctx, c, "/users")
package api
