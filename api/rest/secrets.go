package rest

import (
	"net/http"
)

type setSecretRequest struct {
	Value string `json:"value"`
}

type revealSecretResponse struct {
	KeyName string `json:"keyName"`
	Value   string `json:"value"`
}

func (h *Handler) HandleSecrets(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	secrets, err := h.Service.ListSecrets(r.Context(), user)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, secrets)
}

func (h *Handler) HandleSecret(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	keyName := r.PathValue("key")

	switch r.Method {
	case http.MethodGet:
		view, err := h.Service.DescribeSecret(r.Context(), user, keyName)
		if err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendResponse(w, view)
	case http.MethodPut:
		var req setSecretRequest
		if err := decodeJSON(r, &req); err != nil {
			h.sendError(w, r, err)
			return
		}
		view, err := h.Service.SetSecret(r.Context(), user, keyName, req.Value)
		if err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendResponse(w, view)
	case http.MethodDelete:
		if err := h.Service.DeleteSecret(r.Context(), user, keyName); err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendResponse(w, successResponse{Success: true})
	default:
		h.methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (h *Handler) HandleRevealSecret(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	keyName := r.PathValue("key")
	value, err := h.Service.RevealSecret(r.Context(), user, keyName)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	h.sendResponse(w, revealSecretResponse{KeyName: keyName, Value: value})
}
