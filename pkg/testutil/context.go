package testutil

import (
	"net/http"

	"medtransit/pkg/requestcontext"
)

// WithActor does what the actor middleware does for a valid bearer token.
func WithActor(req *http.Request, actor string) *http.Request {
	if actor == "" {
		return req
	}
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}
