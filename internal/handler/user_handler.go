package handlers

import (
	"encoding/json"
	"net/http"

	"petmatch/internal/service"
)

func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, user, http.StatusCreated)
}

// GetUser returns the profile including the points earned from found posts.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		WriteError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, user, http.StatusOK)
}

type notificationTokenRequest struct {
	Token string `json:"token" validate:"required,max=4096"`
}

func (h *Handlers) UpdateNotificationToken(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		WriteError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var req notificationTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.UserService.UpdateNotificationToken(r.Context(), userID, req.Token); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Notification token updated"}, http.StatusOK)
}
