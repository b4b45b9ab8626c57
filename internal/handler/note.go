package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
	"github.com/BuzzLyutic/todo-notes-api/internal/notes"
	"github.com/BuzzLyutic/todo-notes-api/internal/service"
	"github.com/BuzzLyutic/todo-notes-api/pkg/respond"
)

type NoteHandler struct {
	service   *service.NoteService
	logger    *zap.Logger
	heartbeat time.Duration

	closing   chan struct{}
	closeOnce sync.Once
}

func NewNoteHandler(srv *service.NoteService, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{
		service:   srv,
		logger:    logger,
		heartbeat: 25 * time.Second,
		closing:   make(chan struct{}),
	}
}

// Close ends every open note stream. Register it with
// http.Server.RegisterOnShutdown; Shutdown does not close streaming
// connections on its own.
func (h *NoteHandler) Close() {
	h.closeOnce.Do(func() { close(h.closing) })
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req model.Note
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	note, err := h.service.Create(r.Context(), owner, req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/notes/"+note.ID)
	respond.JSON(w, r, http.StatusCreated, note)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	note, err := h.service.Get(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	filter := notes.Filter{Search: r.URL.Query().Get("q")}
	if v := r.URL.Query().Get("category"); v != "" {
		c, err := model.ParseNoteCategory(v)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, err.Error())
			return
		}
		filter.Category = &c
	}

	list, err := h.service.List(r.Context(), owner, filter)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, list)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req model.NoteUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	note, err := h.service.Update(r.Context(), owner, chi.URLParam(r, "id"), req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pinRequest struct {
	IsPinned *bool `json:"isPinned"`
}

func (h *NoteHandler) SetPinned(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsPinned == nil {
		respond.Error(w, r, http.StatusBadRequest, "body must be {\"isPinned\": bool}")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.SetPinned(r.Context(), owner, id, *req.IsPinned); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	note, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, note)
}

func (h *NoteHandler) OnDate(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	list, err := h.service.OnDate(r.Context(), owner, chi.URLParam(r, "date"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, list)
}

func (h *NoteHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	month, err := h.service.Calendar(r.Context(), owner, r.URL.Query().Get("month"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, month)
}

// Stream pushes the caller's notes as "notes" events: the current list, then
// a fresh list after every change, until the client goes away.
func (h *NoteHandler) Stream(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	snapshots, err := h.service.Watch(ctx, owner)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	// The server write timeout would otherwise cut the stream.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	flusher, err := respond.StartStream(w)
	if err != nil {
		h.logger.Error("cannot stream", zap.Error(err))
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.closing:
			return
		case <-ticker.C:
			if err := respond.Comment(w, flusher, "ping"); err != nil {
				return
			}
		case list, ok := <-snapshots:
			if !ok {
				return
			}
			if err := respond.Event(w, flusher, "notes", list); err != nil {
				h.logger.Debug("stream closed", zap.String("owner", owner), zap.Error(err))
				return
			}
		}
	}
}
