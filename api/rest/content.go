package rest

import (
	"net/http"

	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/service"
)

type similarityRequest struct {
	Pages []models.PageDraft `json:"pages"`
}

func (h *Handler) HandleGenerateContent(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req service.ContentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, r, err)
		return
	}
	article, err := h.Service.GenerateContent(r.Context(), user, req)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, article)
}

func (h *Handler) HandleScoreContent(w http.ResponseWriter, r *http.Request) {
	_, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req service.ScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, r, err)
		return
	}
	result, err := h.Service.ScoreContent(r.Context(), req)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, result)
}

func (h *Handler) HandleSimilarity(w http.ResponseWriter, r *http.Request) {
	_, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req similarityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, r, err)
		return
	}
	results, err := h.Service.CheckSimilarity(req.Pages)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, results)
}

func (h *Handler) HandleArticles(w http.ResponseWriter, r *http.Request) {
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
	articles, err := h.Service.ListArticles(r.Context(), user, limit)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, articles)
}

func (h *Handler) HandleArticle(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	article, err := h.Service.GetArticle(r.Context(), user, r.PathValue("id"))
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, article)
}
