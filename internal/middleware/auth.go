package middleware

import (
	"context"
	"net/http"
	"strings"

	"toolforge-rest-api/internal/service"
	"toolforge-rest-api/pkg/apierror"
)

// SubjectKey is the context key for the verified credential subject (email).
const SubjectKey contextKey = "subject_email"

// RequireAuth rejects requests without a valid bearer credential.
// A missing header is 401; a header that is present but malformed, invalid,
// or expired is 403. The verified subject is stored on the request context.
func RequireAuth(tokens *service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				writeError(w, apierror.Unauthorized("Authorization header required"))
				return
			}

			token := strings.TrimPrefix(authorization, "Bearer ")
			if token == authorization || token == "" {
				writeError(w, apierror.Forbidden("Bearer credential required"))
				return
			}

			email, err := tokens.Verify(token)
			if err != nil {
				writeError(w, apierror.Forbidden("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated subjects without the privileged role.
// Runs after RequireAuth. A subject with no stored profile fails closed
// with a distinct UNKNOWN_SUBJECT body rather than being treated as a
// lookup success.
func RequireAdmin(users *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := SubjectFromContext(r.Context())
			if email == "" {
				writeError(w, apierror.Unauthorized("Authentication required"))
				return
			}

			profile, found, err := users.Role(r.Context(), email)
			if err != nil {
				writeError(w, apierror.InternalError("failed to resolve role"))
				return
			}
			if !found {
				writeError(w, apierror.UnknownSubject(""))
				return
			}
			if !profile.IsAdmin() {
				writeError(w, apierror.Forbidden("Privileged role required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SubjectFromContext retrieves the verified subject email, or "".
func SubjectFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(SubjectKey).(string); ok {
		return email
	}
	return ""
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}
