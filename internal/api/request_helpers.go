package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// getUserIDFromContext extracts the authenticated user's ID placed in the
// context by the authentication middleware.
func getUserIDFromContext(r *http.Request) (int64, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathID extracts a positive integer ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required")
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer")
	}
	return id, nil
}

// handleUserIDAndPathID extracts both the user ID from context and an ID from
// the path. It writes an error response and returns false if either fails.
func handleUserIDAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (int64, int64, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return 0, 0, false
	}

	pathID, err := getPathID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return 0, 0, false
	}

	return userID, pathID, true
}

// decodeAndValidate decodes the JSON body into v and validates it. On failure
// it writes a 400 (or 413) response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, describeDecodeError(err), err)
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		status := MapErrorToStatusCode(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return false
	}
	return true
}

// listParams holds the parsed query of GET /task/list.
type listParams struct {
	filter domain.TaskFilter
	sort   domain.TaskSort
	page   domain.PageRequest
}

// parseListParams reads page, records_per_page (or limit), priority, status,
// search, scope, sort_by and sort_order from the query string.
func parseListParams(q url.Values) (listParams, error) {
	var p listParams

	page, err := queryInt(q, "page")
	if err != nil {
		return p, err
	}
	perPageKey := "records_per_page"
	if q.Get(perPageKey) == "" && q.Get("limit") != "" {
		perPageKey = "limit"
	}
	perPage, err := queryInt(q, perPageKey)
	if err != nil {
		return p, err
	}
	if p.page, err = domain.NewPageRequest(page, perPage); err != nil {
		return p, err
	}
	if q.Has("page") && page == 0 {
		return p, domain.NewValidationError("page", "page must be at least 1")
	}
	if q.Has(perPageKey) && perPage == 0 {
		return p, domain.NewValidationError("records_per_page", "records_per_page must be between 1 and 100")
	}

	if raw := strings.TrimSpace(q.Get("priority")); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return p, err
		}
		p.filter.Priority = &priority
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			return p, err
		}
		p.filter.Status = &status
	}
	if p.filter.Scope, err = domain.ParseTaskScope(q.Get("scope")); err != nil {
		return p, err
	}
	p.filter.Search = strings.TrimSpace(q.Get("search"))

	if p.sort, err = domain.ParseTaskSort(q.Get("sort_by"), q.Get("sort_order")); err != nil {
		return p, err
	}
	return p, nil
}

func queryInt(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(key, "must be an integer")
	}
	return n, nil
}
