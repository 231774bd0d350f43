package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserHandler handles registration, session, and account requests.
type UserHandler struct {
	userService service.UserService
	jwtService  auth.JWTService
	cookies     shared.CookieOptions
	logger      *slog.Logger
	timeFunc    func() time.Time
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(
	userService service.UserService,
	jwtService auth.JWTService,
	cookies shared.CookieOptions,
	logger *slog.Logger,
) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	return &UserHandler{
		userService: userService,
		jwtService:  jwtService,
		cookies:     cookies,
		logger:      logger.With(slog.String("component", "user_handler")),
		timeFunc:    time.Now,
	}
}

// Register handles POST /user/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		UserID:  user.ID,
	})
}

// Login handles POST /user/login. Tokens are returned in the body and as cookies.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", err,
				shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	h.issueTokens(w, r, user.ID, "Login successful")
}

// RefreshToken handles POST /user/token/refresh. The refresh token comes from the
// refresh_token cookie or, for API clients, the request body. Both tokens are rotated.
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var token string
	if cookie, err := r.Cookie(shared.RefreshTokenCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" && r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		var req RefreshTokenRequest
		if err := shared.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, describeDecodeError(err), err)
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), token)
	if err != nil {
		if MapErrorToStatusCode(err) == http.StatusUnauthorized {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid or expired refresh token", err,
				shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	if _, err := h.userService.GetUser(r.Context(), claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("refresh token references a missing user", slog.Int64("user_id", claims.UserID))
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "User not found", err)
			return
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	h.issueTokens(w, r, claims.UserID, "Token refreshed successfully")
}

// Logout handles POST /user/logout by clearing the session cookies.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	shared.ClearAuthCookies(w, h.cookies)
	shared.RespondWithMessage(w, r, http.StatusOK, "Logged out successfully")
}

// Me handles GET /user/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// UpdateUser handles PUT /user/{id}. Users may only update themselves.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, targetID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.userService.UpdateUser(r.Context(), actorID, targetID, req.toPatch()); err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "User data updated successfully")
}

// DeleteUser handles DELETE /user/{id}. The session cookies are cleared on success.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, targetID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), actorID, targetID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}

	shared.ClearAuthCookies(w, h.cookies)
	shared.RespondWithMessage(w, r, http.StatusOK, "User removed successfully")
}

// issueTokens generates a fresh token pair, sets the cookies, and writes the body.
func (h *UserHandler) issueTokens(w http.ResponseWriter, r *http.Request, userID int64, message string) {
	accessToken, err := h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate refresh token")
		return
	}

	accessTTL := h.jwtService.AccessTokenLifetime()
	shared.SetAuthCookies(w, h.cookies,
		accessToken, accessTTL,
		refreshToken, h.jwtService.RefreshTokenLifetime())

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		Message:      message,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresAt:    h.timeFunc().Add(accessTTL).UTC().Format(time.RFC3339),
	})
}
