package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"zakazBack/internal/models"
	"zakazBack/internal/services"
)

type UserHandler struct {
	Service *services.UserService
}

// SignIn is the role picker: the client chooses client or provider for this
// session and receives an access/refresh token pair.
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	tokens, err := h.Service.SignIn(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidRole), errors.Is(err, models.ErrInvalidCredentials):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("SignIn error: %v", err)
			http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		}
		return
	}
	json.NewEncoder(w).Encode(tokens)
}

func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(getParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	user, err := h.Service.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get user", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(user)
}

// GetProviderStats feeds the completed-tasks / average-rating header on the
// provider's request feed.
func (h *UserHandler) GetProviderStats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(getParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid provider ID", http.StatusBadRequest)
		return
	}
	stats, err := h.Service.GetProviderStats(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to get provider stats", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}

func (h *UserHandler) RegisterFCMToken(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Token == "" {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	userID := contextUserID(r)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.Service.RegisterFCMToken(r.Context(), userID, input.Token); err != nil {
		log.Printf("RegisterFCMToken error: %v", err)
		http.Error(w, "Failed to register token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
