package auth

import (
	"context"
	"net/http"
)

// Identity is the authenticated principal derived from a request's
// credentials.
type Identity struct {
	Subject     string
	Authorities []string
}

type AuthEngine interface {

	// AuthenticateRequest inspects the given HTTP request for valid
	// authentication credentials. If valid, it returns the caller's
	// identity; otherwise it returns nil. An error is returned if there was
	// an issue processing the authentication.
	AuthenticateRequest(ctx context.Context, rq *http.Request) (*Identity, error)
}
