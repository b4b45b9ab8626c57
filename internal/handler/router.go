package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the API. authn must put the caller's owner id into the
// request context.
func NewRouter(todos *TodoHandler, notes *NoteHandler, profile *ProfileHandler, authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authn)

		r.Route("/todos", func(r chi.Router) {
			r.Post("/", todos.Create)
			r.Get("/", todos.List)
			r.Patch("/{id}/status", todos.SetStatus)
		})
		r.Delete("/session", todos.EndSession)

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", notes.Create)
			r.Get("/", notes.List)
			r.Get("/stream", notes.Stream)
			r.Get("/calendar", notes.Calendar)
			r.Get("/date/{date}", notes.OnDate)
			r.Get("/{id}", notes.Get)
			r.Put("/{id}", notes.Update)
			r.Delete("/{id}", notes.Delete)
			r.Patch("/{id}/pin", notes.SetPinned)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profile.Get)
			r.Put("/", profile.Save)
			r.Patch("/", profile.Rename)
		})
	})

	return r
}
