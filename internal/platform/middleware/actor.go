package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/httputil"
	"medtransit/pkg/requestcontext"
)

// ActorValidator resolves a bearer token to the acting user.
type ActorValidator interface {
	ValidateActor(tokenString string) (string, error)
}

// Actor puts the token's actor on the request context. Requests without an
// Authorization header pass through so handlers can fall back to the body;
// a header that is present but invalid is rejected.
func Actor(validator ActorValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - malformed authorization header",
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}
			actor, err := validator.ValidateActor(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err.Error(),
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}
