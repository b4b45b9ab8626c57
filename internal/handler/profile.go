package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
	"github.com/BuzzLyutic/todo-notes-api/internal/service"
	"github.com/BuzzLyutic/todo-notes-api/pkg/respond"
)

type ProfileHandler struct {
	service *service.ProfileService
	logger  *zap.Logger
}

func NewProfileHandler(srv *service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Get(r.Context(), owner)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, profile)
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req model.User
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.service.Save(r.Context(), owner, req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, user)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *ProfileHandler) Rename(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.service.Rename(r.Context(), owner, req.Name)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, user)
}
