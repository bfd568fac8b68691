package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/zlnvch/seodash/logging"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/service"
	"github.com/zlnvch/seodash/store"
	"github.com/zlnvch/seodash/upstream"
	"github.com/zlnvch/seodash/vault"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// authenticate resolves the caller or writes a 401.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (models.User, *http.Request, bool) {
	token := h.getTokenFromAuthHeader(r)
	user, err := h.Service.AuthenticateToken(r.Context(), token)
	if err != nil {
		h.sendError(w, r, err)
		return models.User{}, r, false
	}

	logger := logging.FromContext(r.Context(), h.Service.Logger).With("user_id", user.Id)
	return user, r.WithContext(logging.WithContext(r.Context(), logger)), true
}

func (h *Handler) sendResponse(w http.ResponseWriter, resp any) {
	h.sendJSON(w, http.StatusOK, resp)
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	h.sendJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// sendError is the only place service errors become HTTP statuses.
func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), h.Service.Logger).Error(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	h.sendJSON(w, status, errorResponse{Error: msg})
}

func errorStatus(err error) (int, string) {
	var validationErr *service.ValidationError
	var fetchErr *upstream.FetchError
	var upstreamErr *upstream.Error

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, store.ErrItemNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, vault.ErrInvalidSecret):
		return http.StatusBadRequest, "invalid secret"
	case errors.Is(err, service.ErrQuotaExceeded):
		return http.StatusTooManyRequests, service.ErrQuotaExceeded.Error()
	case errors.Is(err, service.ErrFeatureDisabled):
		return http.StatusServiceUnavailable, service.ErrFeatureDisabled.Error()
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, fetchErr.Error()
	case errors.Is(err, upstream.ErrFetchFailed):
		return http.StatusBadGateway, upstream.ErrFetchFailed.Error()
	case errors.As(err, &upstreamErr):
		// A provider rejecting our credentials is our problem, not the caller's session.
		status := upstreamErr.StatusCode
		if status < 400 || status > 599 || status == http.StatusUnauthorized || status == http.StatusForbidden {
			status = http.StatusInternalServerError
		}
		return status, upstreamErr.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// decodeJSON reads exactly one JSON value and rejects unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &service.ValidationError{Field: "body", Reason: "request body is required"}
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &service.ValidationError{Field: "body", Reason: "request body is too large"}
		}
		return &service.ValidationError{Field: "body", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &service.ValidationError{Field: "body", Reason: "unexpected data after JSON body"}
	}
	return nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &service.ValidationError{Field: "limit", Reason: "must be a positive integer"}
	}
	return n, nil
}

func (h *Handler) getTokenFromAuthHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}

	return strings.TrimPrefix(authHeader, prefix)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		account, err := h.Service.GetAccount(r.Context(), user)
		if err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendResponse(w, account)
	case http.MethodDelete:
		if err := h.Service.DeleteAccount(r.Context(), user); err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendJSON(w, http.StatusAccepted, successResponse{Success: true})
	default:
		h.methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}
