package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cargo-shop/internal/model"
	"cargo-shop/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// contextKey is a private type for request context keys.
type contextKey int

const userContextKey contextKey = iota

// UserFromContext returns the authenticated buyer stored by BearerAuth,
// or nil when the request was not authenticated.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// ContextWithUser stores the authenticated buyer in the context.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CORS adds CORS headers to the response.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// idpClaims is the token payload the identity provider issues. The
// last_signed_in claim drives the user refresh decision downstream.
type idpClaims struct {
	Roles        []string `json:"roles"`
	LastSignedIn int64    `json:"last_signed_in"`
	jwt.RegisteredClaims
}

// BearerAuth validates the Authorization bearer token, synchronizes the
// buyer against the identity provider and stores the resolved user in the
// request context. Paths in skipPaths pass through unauthenticated; the
// webhook endpoint carries its own signature scheme.
func BearerAuth(secret string, users service.UserService, skipPaths []string, logger zerolog.Logger) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, found := skip[r.URL.Path]; found {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || tokenString == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				writeAuthError(w, http.StatusUnauthorized, "unauthorised: missing bearer token")
				return
			}

			claims := &idpClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				writeAuthError(w, http.StatusUnauthorized, "unauthorised: invalid bearer token")
				return
			}

			if claims.Subject == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("token missing subject")
				writeAuthError(w, http.StatusUnauthorized, "unauthorised: invalid bearer token")
				return
			}

			var lastSignedIn time.Time
			if claims.LastSignedIn > 0 {
				lastSignedIn = time.Unix(claims.LastSignedIn, 0)
			}

			user, err := users.SyncWithIdP(r.Context(), service.IdPToken{
				Subject:      claims.Subject,
				Roles:        claims.Roles,
				LastSignedIn: lastSignedIn,
			})
			if err != nil {
				logger.Error().Err(err).Str("subject", claims.Subject).Msg("user synchronization failed")
				writeAuthError(w, http.StatusUnauthorized, "unauthorised: unknown user")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// writeAuthError writes an auth failure as JSON without pulling in the
// handler package.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error": "` + message + `"}`))
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("http request")
		})
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error": "internal server error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
