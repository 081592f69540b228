package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"zakazBack/internal/models"
	"zakazBack/internal/services"
)

type RatingHandler struct {
	Service *services.RatingService
}

func (h *RatingHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	var input models.Rating
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	rating, stats, err := h.Service.SubmitRating(r.Context(), input)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRating) {
			http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
			return
		}
		log.Printf("SubmitRating error: %v", err)
		http.Error(w, "Failed to save rating", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(struct {
		Rating models.Rating        `json:"rating"`
		Stats  models.ProviderStats `json:"providerStats"`
	}{rating, stats})
}
