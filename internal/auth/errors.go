package auth

// NotAuthenticatedError indicates that no stored token exists at call time.
type NotAuthenticatedError struct{}

func (*NotAuthenticatedError) Error() string {
	return "not authenticated: no stored token found, complete the OAuth login first"
}

// ExchangeError indicates the OAuth endpoint rejected an authorization code.
// Message is derived from the provider's JSON error fields when available.
type ExchangeError struct {
	Message string
}

func (e *ExchangeError) Error() string {
	return "token exchange failed: " + e.Message
}

// RefreshError indicates the OAuth endpoint rejected a refresh attempt.
type RefreshError struct {
	Message string
}

func (e *RefreshError) Error() string {
	return "token refresh failed: " + e.Message
}

// RefreshFailedError is returned by ValidAccessToken when an expired token
// could not be refreshed. The stored (stale) token is left in place so a
// later manual retry or login is still possible.
type RefreshFailedError struct {
	Err error
}

func (e *RefreshFailedError) Error() string {
	return "could not refresh expired token: " + e.Err.Error()
}

func (e *RefreshFailedError) Unwrap() error {
	return e.Err
}
