package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vaultmcp/internal/noteservice"
	"github.com/starford/vaultmcp/internal/patch"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// notePath extracts the note path from the URL (everything after /api/notes/).
// Supports encoded slashes from OpenAPI clients (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// searchParams reads the q and limit query parameters.
func searchParams(r *http.Request) (string, int) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return q.Get("q"), limit
}

// ListFiles handles GET /api/files.
//
//	@Summary		List notes in the vault or in one directory
//	@Tags			files
//	@Produce		json
//	@Param			dir	query		string	false	"Directory relative to the vault root"
//	@Success		200	{object}	FileListResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.ListFiles(r.Context(), r.URL.Query().Get("dir"))
	if err != nil {
		writeError(w, r, "list files", err)
		return
	}
	writeJSON(w, http.StatusOK, FileListResponse{Files: files})
}

// GetNote handles GET /api/notes/*.
//
//	@Summary		Get a single note by path or file name
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path or bare file name"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.ReadNote(r.Context(), path)
	if err != nil {
		writeError(w, r, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Append handles POST /api/append.
//
//	@Summary		Append content to a note, creating it if missing
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AppendRequest	true	"Note and content"
//	@Success		200		{object}	WriteResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/append [post]
func (h *Handler) Append(w http.ResponseWriter, r *http.Request) {
	var req AppendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.AppendContent(r.Context(), req.Filename, req.Content)
	if err != nil {
		writeError(w, r, "append", err)
		return
	}
	writeJSON(w, http.StatusOK, WriteResponse{Path: p})
}

// Patch handles POST /api/patch.
//
//	@Summary		Insert or replace content relative to a heading, block, frontmatter key or text span
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PatchRequest	true	"Patch"
//	@Success		200		{object}	WriteResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/patch [post]
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	var req PatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	spec, err := patch.ParseSpec(req.Operation, req.TargetType, req.Target, req.Content)
	if err != nil {
		writeError(w, r, "patch", err)
		return
	}
	p, err := h.svc.PatchNote(r.Context(), req.Filepath, spec)
	if err != nil {
		writeError(w, r, "patch", err)
		return
	}
	writeJSON(w, http.StatusOK, WriteResponse{Path: p})
}

// DeleteLines handles POST /api/delete-lines.
//
//	@Summary		Delete a 1-based inclusive line range
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DeleteLinesRequest	true	"Line range"
//	@Success		200		{object}	WriteResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/delete-lines [post]
func (h *Handler) DeleteLines(w http.ResponseWriter, r *http.Request) {
	var req DeleteLinesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.DeleteLines(r.Context(), req.Filepath, req.StartLine, req.EndLine)
	if err != nil {
		writeError(w, r, "delete lines", err)
		return
	}
	writeJSON(w, http.StatusOK, WriteResponse{Path: p})
}

// SearchFiles handles GET /api/search/files.
//
//	@Summary		Fuzzy search over note paths
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	FileSearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search/files [get]
func (h *Handler) SearchFiles(w http.ResponseWriter, r *http.Request) {
	q, limit := searchParams(r)
	hits, err := h.svc.SearchFiles(r.Context(), q, limit)
	if err != nil {
		writeError(w, r, "search files", err)
		return
	}
	writeJSON(w, http.StatusOK, FileSearchResponse{Results: hits})
}

// SearchContent handles GET /api/search/content.
//
//	@Summary		Fuzzy search over note lines
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	ContentSearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search/content [get]
func (h *Handler) SearchContent(w http.ResponseWriter, r *http.Request) {
	q, limit := searchParams(r)
	hits, err := h.svc.SearchContent(r.Context(), q, limit)
	if err != nil {
		writeError(w, r, "search content", err)
		return
	}
	writeJSON(w, http.StatusOK, ContentSearchResponse{Results: hits})
}

// SearchIndex handles GET /api/search/index.
//
//	@Summary		Full-text search across notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	IndexSearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search/index [get]
func (h *Handler) SearchIndex(w http.ResponseWriter, r *http.Request) {
	q, limit := searchParams(r)
	results, err := h.svc.SearchIndex(r.Context(), q, limit)
	if err != nil {
		writeError(w, r, "search index", err)
		return
	}
	writeJSON(w, http.StatusOK, IndexSearchResponse{Results: results})
}
