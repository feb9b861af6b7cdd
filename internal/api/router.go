// Package api implements the vault REST API using chi.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/vaultmcp/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// Authentication is applied by the caller around the returned router.
func NewRouter(svc *noteservice.Service) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Files and notes.
	r.Get("/files", h.ListFiles)
	r.Get("/notes/*", h.GetNote)

	// Edits.
	r.Post("/append", h.Append)
	r.Post("/patch", h.Patch)
	r.Post("/delete-lines", h.DeleteLines)

	// Search.
	r.Route("/search", func(r chi.Router) {
		r.Get("/files", h.SearchFiles)
		r.Get("/content", h.SearchContent)
		r.Get("/index", h.SearchIndex)
	})

	return r
}
