package rest

import (
	"net/http"

	"github.com/zlnvch/seodash/service"
)

func (h *Handler) HandleKeywordResearch(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req service.KeywordResearchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, r, err)
		return
	}
	result, err := h.Service.ResearchKeywords(r.Context(), user, req)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, result)
}

func (h *Handler) HandleSERP(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req service.SerpRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, r, err)
		return
	}
	result, err := h.Service.SERPSnapshot(r.Context(), user, req)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, result)
}

func (h *Handler) HandleDomainOverview(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req service.DomainRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, r, err)
		return
	}
	result, err := h.Service.DomainOverview(r.Context(), user, req)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, result)
}

func (h *Handler) HandleKeywordHistory(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	limit, err := queryLimit(r)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	history, err := h.Service.ListKeywordHistory(r.Context(), user, limit)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, history)
}
