// ABOUTME: HTTP middleware for JWT authentication on API endpoints
// ABOUTME: Extracts the bearer token and adds the verified subject to the request context

package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

// WithSubject returns a context carrying the authenticated subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, contextKey{}, subject)
}

// SubjectFromContext returns the authenticated subject, or "" if the request
// was not authenticated (auth disabled).
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(contextKey{}).(string)
	return s
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// HTTPMiddleware creates an HTTP middleware that extracts and validates JWT
// bearer tokens, putting the verified subject on the request context.
func HTTPMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				writeAuthError(w, errMsg)
				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				writeAuthError(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
