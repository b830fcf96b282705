// Package guard gates protected screens behind the session and drives their
// load lifecycle.
//
// A protected screen is entered through View.Enter, which moves through
//
//	Entering -> Denied -> Redirected
//	Entering -> Allowed -> Loading -> Loaded | Failed
//
// The loader is never invoked on the denied path, and a failed load is not
// retried.
package guard

// Authenticator reports whether a session is currently authenticated.
type Authenticator interface {
	IsAuthenticated() bool
}

type Guard struct {
	auth Authenticator
}

func New(auth Authenticator) *Guard {
	return &Guard{auth: auth}
}

// Check evaluates authentication at the time of the call. When the session
// is not authenticated it invokes onDenied (if non-nil) and returns false.
func (g *Guard) Check(onDenied func()) bool {
	if g.auth.IsAuthenticated() {
		return true
	}
	if onDenied != nil {
		onDenied()
	}
	return false
}
