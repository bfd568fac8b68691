package rest

import (
	"net/http"

	"github.com/zlnvch/seodash/service"
)

type availabilityRequest struct {
	URL string `json:"url"`
}

func (h *Handler) HandleAudits(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req service.AuditRequest
		if err := decodeJSON(r, &req); err != nil {
			h.sendError(w, r, err)
			return
		}
		run, err := h.Service.RunSiteAudit(r.Context(), user, req)
		if err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendJSON(w, http.StatusCreated, run)
	case http.MethodGet:
		limit, err := queryLimit(r)
		if err != nil {
			h.sendError(w, r, err)
			return
		}
		runs, err := h.Service.ListAudits(r.Context(), user, limit)
		if err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendResponse(w, runs)
	default:
		h.methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	run, err := h.Service.GetAudit(r.Context(), user, r.PathValue("id"))
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, run)
}

func (h *Handler) HandleExportAudit(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	export, err := h.Service.ExportAudit(r.Context(), user, r.PathValue("id"))
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, export)
}

func (h *Handler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	_, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req availabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, r, err)
		return
	}
	report, err := h.Service.CheckAvailability(r.Context(), req.URL)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, report)
}
