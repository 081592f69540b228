package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"zakazBack/internal/models"
	"zakazBack/internal/services"
)

type RequestHandler struct {
	Service *services.RequestService
}

// CreateRequest handles the publish action: multipart form with description,
// category and an optional media file picked on the device.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(32 << 20) // 32MB
	if err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	var req models.Request
	req.Description = r.FormValue("description")
	req.Category = r.FormValue("category")
	req.UserID = contextUserID(r)
	if req.UserID == 0 {
		req.UserID, _ = strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	}

	var media io.Reader
	var mediaType string
	if file, header, err := r.FormFile("media"); err == nil {
		defer file.Close()
		media = file
		mediaType = header.Header.Get("Content-Type")
	}

	created, err := h.Service.CreateRequest(r.Context(), req, media, mediaType)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyDescription), errors.Is(err, models.ErrInvalidCategory), errors.Is(err, models.ErrUnsupportedMedia):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, models.ErrUploadFailed):
			log.Printf("CreateRequest upload error: %v", err)
			http.Error(w, "Failed to upload media", http.StatusInternalServerError)
		default:
			log.Printf("CreateRequest error: %v", err)
			http.Error(w, "Failed to publish request", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *RequestHandler) GetRequestByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(getParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}
	req, err := h.Service.GetRequestByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrRequestNotFound) {
			http.Error(w, "Request not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get request", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(req)
}

func (h *RequestHandler) GetRequestsByOwner(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(getParam(r, "user_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user_id", http.StatusBadRequest)
		return
	}
	requests, err := h.Service.ListByOwner(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(requests)
}

// GetRequestsByStatus serves the provider feeds: all pending requests, or the
// provider's own slice of a status when provider_id is passed.
func (h *RequestHandler) GetRequestsByStatus(w http.ResponseWriter, r *http.Request) {
	status := getParam(r, "status")
	var providerID int64
	if v := r.URL.Query().Get("provider_id"); v != "" {
		providerID, _ = strconv.ParseInt(v, 10, 64)
	}
	requests, err := h.Service.ListByStatus(r.Context(), status, providerID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidStatus) {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(requests)
}

// AdvanceStatus overwrites the request status (the mark-completed action on
// the provider side, among others).
func (h *RequestHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RequestID  int64  `json:"requestId"`
		Status     string `json:"status"`
		ProviderID *int64 `json:"providerId,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	err := h.Service.AdvanceStatus(r.Context(), input.RequestID, input.Status, input.ProviderID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidStatus):
			http.Error(w, "Invalid status", http.StatusBadRequest)
		case errors.Is(err, models.ErrRequestNotFound):
			http.Error(w, "Request not found", http.StatusNotFound)
		default:
			log.Printf("AdvanceStatus error: %v", err)
			http.Error(w, "Failed to update status", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusOK)
}
