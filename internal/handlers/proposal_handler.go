package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"zakazBack/internal/models"
	"zakazBack/internal/services"
)

type ProposalHandler struct {
	Service *services.ProposalService
}

func (h *ProposalHandler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	var input models.Proposal
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.ProviderID == 0 {
		input.ProviderID = contextUserID(r)
	}

	proposal, err := h.Service.SubmitProposal(r.Context(), input)
	if err != nil {
		if errors.Is(err, models.ErrRequestNotFound) {
			http.Error(w, "Request not found", http.StatusNotFound)
			return
		}
		log.Printf("SubmitProposal error: %v", err)
		http.Error(w, "Could not submit proposal", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(proposal)
}

func (h *ProposalHandler) AcceptProposal(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RequestID  int64 `json:"requestId"`
		ProviderID int64 `json:"providerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	err := h.Service.AcceptProposal(r.Context(), input.RequestID, input.ProviderID)
	if err != nil {
		if errors.Is(err, models.ErrRequestNotFound) {
			http.Error(w, "Request not found", http.StatusNotFound)
			return
		}
		log.Printf("AcceptProposal error: %v", err)
		http.Error(w, "Could not accept proposal", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
