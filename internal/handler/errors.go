package handler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-notes-api/internal/auth"
	"github.com/BuzzLyutic/todo-notes-api/internal/notify"
	"github.com/BuzzLyutic/todo-notes-api/internal/repo"
	"github.com/BuzzLyutic/todo-notes-api/internal/service"
	"github.com/BuzzLyutic/todo-notes-api/internal/worker"
	"github.com/BuzzLyutic/todo-notes-api/pkg/respond"
)

// statusClientClosed marks requests whose client went away before the answer.
const statusClientClosed = 499

func handleErrors(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		logger.Debug("request cancelled", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(statusClientClosed)
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, repo.ErrorUnknownField):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, notify.ErrUnavailable), errors.Is(err, worker.ErrStopped):
		respond.Error(w, r, http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

// ownerID reads the authenticated owner set by the auth middleware.
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := auth.OwnerFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
	}
	return owner, ok
}
