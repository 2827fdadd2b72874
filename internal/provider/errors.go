package provider

import "github.com/maxbolgarin/errm"

// Typed API failures. Callers match on these with errm.Is; none of them is
// retried by the client.
var (
	ErrInvalidCredentials = errm.New("invalid credentials")
	ErrNotFound           = errm.New("resource not found")
	ErrRateLimited        = errm.New("rate limited")
	ErrUnsupportedEvent   = errm.New("unsupported event type")
)
