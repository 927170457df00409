package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/advancelms/lms-api/internal/auth"
	"github.com/advancelms/lms-api/internal/httputil"
	"github.com/advancelms/lms-api/internal/model"
	"github.com/advancelms/lms-api/internal/repository"
)

type contextKey struct{}

var userContextKey = contextKey{}

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "access_token"

// UserFromContext returns the authenticated user attached by Authenticate.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok
}

// WithUser attaches a user to the context. Exposed for handler tests.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Authenticate verifies the session token carried in the access_token cookie
// or the Authorization header, resolves the user, and attaches it to the
// request context. Missing, invalid, or expired credentials are rejected with 401.
func Authenticate(
	jwtAuth auth.JWTAuthenticator,
	secret string,
	userRepo repository.UserRepository,
	logger *zerolog.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractToken(r)
			if err != nil {
				httputil.WriteError(w, http.StatusUnauthorized, "please login to access this resource")
				return
			}

			claims, err := jwtAuth.ValidateSessionToken(tokenString, secret)
			if err != nil {
				httputil.WriteError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			user, err := userRepo.GetUser(r.Context(), claims.UserID)
			if err != nil {
				logger.Error().Err(err).Str("user_id", claims.UserID).Msg("failed to resolve session user")
				httputil.WriteError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin rejects any authenticated user whose role is not admin.
// It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			httputil.WriteError(w, http.StatusUnauthorized, "please login to access this resource")
			return
		}

		if user.Role != model.RoleAdmin {
			httputil.WriteError(w, http.StatusForbidden, "this resource is restricted to admins")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing session credential")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}
