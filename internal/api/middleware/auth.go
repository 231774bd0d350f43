package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserLookup loads the user referenced by a token.
type UserLookup interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	users      UserLookup
	logger     *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, users UserLookup, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
		logger:     logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate validates the access token, taken from the access_token cookie or
// an "Authorization: Bearer" header. The cookie is tried first; when it holds an
// invalid or expired token the header token is tried instead. The referenced user
// must still exist; it is added to the request context together with its ID.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		tokens := extractTokens(r)
		if len(tokens) == 0 {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Not authenticated", auth.ErrMissingToken)
			return
		}

		var claims *auth.Claims
		var err error
		for _, token := range tokens {
			claims, err = m.jwtService.ValidateToken(r.Context(), token)
			if err == nil || !isTokenError(err) {
				break
			}
		}
		if err != nil {
			if isTokenError(err) {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid or expired token", err,
					shared.WithElevatedLogLevel())
			} else {
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		user, err := m.users.GetUser(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				log.Warn("token references a missing user", slog.Int64("user_id", claims.UserID))
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "User not found", err)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		ctx := shared.WithUser(r.Context(), user)
		ctx = logger.WithLogger(ctx, log.With(slog.Int64("user_id", user.ID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isTokenError(err error) bool {
	return errors.Is(err, auth.ErrExpiredToken) ||
		errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, auth.ErrTokenNotYetValid) ||
		errors.Is(err, auth.ErrWrongTokenType)
}

// extractTokens returns the candidate access tokens in precedence order:
// the cookie value, then the bearer token from the Authorization header.
func extractTokens(r *http.Request) []string {
	var tokens []string
	if cookie, err := r.Cookie(shared.AccessTokenCookieName); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}

	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	token = strings.TrimSpace(token)
	if found && strings.EqualFold(scheme, "Bearer") && token != "" {
		tokens = append(tokens, token)
	}
	return tokens
}
