package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	user *domain.User
	err  error
}

func (s stubUsers) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	user := &domain.User{ID: 42, Email: "ada@example.com"}

	tests := []struct {
		name           string
		cookie         string
		authHeader     string
		validateErr    error
		rejectToken    string
		users          stubUsers
		expectedStatus int
		expectedDetail string
		expectedToken  string
	}{
		{
			name:           "valid cookie",
			cookie:         "cookie-token",
			users:          stubUsers{user: user},
			expectedStatus: http.StatusOK,
			expectedToken:  "cookie-token",
		},
		{
			name:           "bearer header fallback",
			authHeader:     "Bearer header-token",
			users:          stubUsers{user: user},
			expectedStatus: http.StatusOK,
			expectedToken:  "header-token",
		},
		{
			name:           "cookie wins over header",
			cookie:         "cookie-token",
			authHeader:     "Bearer header-token",
			users:          stubUsers{user: user},
			expectedStatus: http.StatusOK,
			expectedToken:  "cookie-token",
		},
		{
			name:           "stale cookie falls back to header",
			cookie:         "stale-cookie",
			authHeader:     "Bearer header-token",
			rejectToken:    "stale-cookie",
			users:          stubUsers{user: user},
			expectedStatus: http.StatusOK,
			expectedToken:  "header-token",
		},
		{
			name:           "stale cookie without header",
			cookie:         "stale-cookie",
			rejectToken:    "stale-cookie",
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Invalid or expired token",
		},
		{
			name:           "stale cookie and stale header",
			cookie:         "stale-cookie",
			authHeader:     "Bearer expired",
			validateErr:    auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Invalid or expired token",
			expectedToken:  "expired",
		},
		{
			name:           "no token",
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Not authenticated",
		},
		{
			name:           "malformed header",
			authHeader:     "Token abc",
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Not authenticated",
		},
		{
			name:           "expired token",
			authHeader:     "Bearer expired",
			validateErr:    auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Invalid or expired token",
		},
		{
			name:           "refresh token used as access token",
			cookie:         "refresh",
			validateErr:    auth.ErrWrongTokenType,
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "Invalid or expired token",
		},
		{
			name:           "deleted user",
			cookie:         "orphan",
			users:          stubUsers{err: store.ErrUserNotFound},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "User not found",
		},
		{
			name:           "user lookup failure",
			cookie:         "token",
			users:          stubUsers{err: errors.New("db down")},
			expectedStatus: http.StatusInternalServerError,
			expectedDetail: "Authentication error",
		},
		{
			name:           "unexpected validation error",
			cookie:         "token",
			validateErr:    errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedDetail: "Authentication error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var validated string
			jwtService := &mocks.MockJWTService{
				ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
					validated = token
					if token == tt.rejectToken {
						return nil, auth.ErrExpiredToken
					}
					if tt.validateErr != nil {
						return nil, tt.validateErr
					}
					return &auth.Claims{UserID: 42, TokenType: auth.TokenTypeAccess}, nil
				},
			}
			mw := NewAuthMiddleware(jwtService, tt.users, slog.New(slog.NewTextHandler(io.Discard, nil)))

			var capturedID int64
			var capturedUser *domain.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedID, _ = shared.UserIDFromContext(r.Context())
				capturedUser, _ = shared.UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: shared.AccessTokenCookieName, Value: tt.cookie})
			}
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			mw.Authenticate(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedToken, validated)
				assert.Equal(t, int64(42), capturedID)
				assert.Same(t, user, capturedUser)
				return
			}

			var body shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedDetail, body.Detail)
			assert.Zero(t, capturedID)
			if tt.expectedToken != "" {
				assert.Equal(t, tt.expectedToken, validated)
			}
		})
	}
}

func TestTraceMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	})

	rr := httptest.NewRecorder()
	NewTraceMiddleware(base)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Len(t, traceID, 32)
	assert.Equal(t, traceID, rr.Header().Get(TraceIDHeader))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "inside handler", entry["msg"])
	assert.Equal(t, traceID, entry["trace_id"])
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := chimw.RequestID(NewRequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/task/add", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/task/add", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.EqualValues(t, len("short and stout"), entry["bytes"])
	assert.NotEmpty(t, entry["request_id"])
}
