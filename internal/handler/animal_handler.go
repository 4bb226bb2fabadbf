package handlers

import (
	"encoding/json"
	"net/http"

	"petmatch/internal/models"
	"petmatch/internal/service"
)

type MatchesResponse struct {
	AnimalID int64                `json:"animalId"`
	Matches  []models.MatchedPost `json:"matches"`
}

type AnimalsResponse struct {
	UserID  int64           `json:"userId"`
	Animals []models.Animal `json:"animals"`
}

func (h *Handlers) RegisterAnimal(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterAnimalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	animal, err := h.AnimalService.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, animal, http.StatusCreated)
}

func (h *Handlers) ListAnimals(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		WriteError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	animals, err := h.AnimalService.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, AnimalsResponse{UserID: userID, Animals: animals}, http.StatusOK)
}

// ConfirmFound is called by an owner whose animal is back home.
func (h *Handlers) ConfirmFound(w http.ResponseWriter, r *http.Request) {
	animalID, err := pathID(r)
	if err != nil {
		WriteError(w, "Invalid animal id", http.StatusBadRequest)
		return
	}

	if err := h.PostService.ConfirmFound(r.Context(), animalID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Animal marked as found"}, http.StatusOK)
}

func (h *Handlers) GetMatches(w http.ResponseWriter, r *http.Request) {
	animalID, err := pathID(r)
	if err != nil {
		WriteError(w, "Invalid animal id", http.StatusBadRequest)
		return
	}

	matches, err := h.MatchService.MatchedPosts(r.Context(), animalID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, MatchesResponse{AnimalID: animalID, Matches: matches}, http.StatusOK)
}
