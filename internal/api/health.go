package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// Health handles GET /health with a plain-text OK.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Error("failed to write health check response", "error", err)
	}
}

// NewHelloHandler returns the GET /hello-world handler greeting with the app name.
func NewHelloHandler(appName string) http.HandlerFunc {
	message := "Hello World from " + appName
	return func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithMessage(w, r, http.StatusOK, message)
	}
}
