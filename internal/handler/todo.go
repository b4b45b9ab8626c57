package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
	"github.com/BuzzLyutic/todo-notes-api/internal/service"
	"github.com/BuzzLyutic/todo-notes-api/internal/todolist"
	"github.com/BuzzLyutic/todo-notes-api/pkg/respond"
)

type TodoHandler struct {
	service *service.TodoService
	logger  *zap.Logger
}

func NewTodoHandler(srv *service.TodoService, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.Todo
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	todo, err := h.service.Create(r.Context(), owner, req, idempKey)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/todos/"+todo.ID)
	respond.JSON(w, r, http.StatusCreated, todo)
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	filter, err := todoFilter(r)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	partition, err := h.service.List(r.Context(), owner, filter)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, partition)
}

type statusRequest struct {
	IsDone *bool `json:"isDone"`
}

func (h *TodoHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsDone == nil {
		respond.Error(w, r, http.StatusBadRequest, "body must be {\"isDone\": bool}")
		return
	}

	todo, err := h.service.SetStatus(r.Context(), owner, chi.URLParam(r, "id"), *req.IsDone)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, todo)
}

// EndSession drops the caller's in-memory todo session.
func (h *TodoHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	h.service.EndSession(owner)
	w.WriteHeader(http.StatusNoContent)
}

func todoFilter(r *http.Request) (todolist.Filter, error) {
	q := r.URL.Query()
	f := todolist.Filter{Search: q.Get("q")}

	if v := q.Get("category"); v != "" {
		c, err := model.ParseCategory(v)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	if v := q.Get("due"); v != "" {
		d, err := model.ParseDueBucket(v)
		if err != nil {
			return f, err
		}
		f.DueBucket = &d
	}
	if v := q.Get("priority"); v != "" {
		p, err := model.ParsePriority(v)
		if err != nil {
			return f, err
		}
		f.Priority = &p
	}
	return f, nil
}
