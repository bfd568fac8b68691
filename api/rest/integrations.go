package rest

import (
	"net/http"

	"github.com/zlnvch/seodash/service"
)

type gscConnectRequest struct {
	Code string `json:"code"`
}

// HandleGSCConnect returns the consent URL on GET and exchanges the
// returned code on POST.
func (h *Handler) HandleGSCConnect(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		connect, err := h.Service.SearchConsoleAuthURL()
		if err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendResponse(w, connect)
	case http.MethodPost:
		var req gscConnectRequest
		if err := decodeJSON(r, &req); err != nil {
			h.sendError(w, r, err)
			return
		}
		if err := h.Service.ConnectSearchConsole(r.Context(), user, req.Code); err != nil {
			h.sendError(w, r, err)
			return
		}
		h.sendResponse(w, successResponse{Success: true})
	default:
		h.methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *Handler) HandleGSCPerformance(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req service.PerformanceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, r, err)
		return
	}
	rows, err := h.Service.SearchPerformance(r.Context(), user, req)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, rows)
}

func (h *Handler) HandleGSCSites(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	sites, err := h.Service.ListSearchConsoleSites(r.Context(), user)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, sites)
}

func (h *Handler) HandleCloudflareZones(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	zones, err := h.Service.ListCloudflareZones(r.Context(), user)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, zones)
}

func (h *Handler) HandleCloudflareDNS(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	records, err := h.Service.ListDNSRecords(r.Context(), user, r.PathValue("id"))
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, records)
}

func (h *Handler) HandleCloudflarePurge(w http.ResponseWriter, r *http.Request) {
	user, r, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := h.Service.PurgeCloudflareCache(r.Context(), user, r.PathValue("id")); err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendResponse(w, successResponse{Success: true})
}
