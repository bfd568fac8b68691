package rest

import (
	"net/http"

	"github.com/zlnvch/seodash/models"
)

func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		view, err := h.Service.GetSettings(r.Context(), user)
		if err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendResponse(w, view)
	case http.MethodPut:
		var patch models.SettingsOverrides
		if err := decodeJSON(r, &patch); err != nil {
			h.sendError(w, r, err)
			return
		}
		view, err := h.Service.UpdateSettings(r.Context(), user, patch)
		if err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendResponse(w, view)
	case http.MethodDelete:
		view, err := h.Service.ResetSettings(r.Context(), user)
		if err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendResponse(w, view)
	default:
		h.methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
