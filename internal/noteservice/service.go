// Package noteservice implements the vault operations shared by the MCP tools
// and the REST API: every edit is resolve, read, transform, write, reindex.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/vaultmcp/internal/apperr"
	"github.com/starford/vaultmcp/internal/index"
	"github.com/starford/vaultmcp/internal/models"
	"github.com/starford/vaultmcp/internal/parser"
	"github.com/starford/vaultmcp/internal/patch"
	"github.com/starford/vaultmcp/internal/search"
	"github.com/starford/vaultmcp/internal/storage"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path        string         `json:"path"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Checksum    string         `json:"checksum"`
	Tags        []string       `json:"tags"`
	Headings    []string       `json:"headings"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
}

// Service coordinates storage and index operations.
type Service struct {
	store  storage.Provider
	db     index.NoteIndex
	search *search.Engine
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSearchEngine sets the fuzzy search engine (default search.New()).
func WithSearchEngine(e *search.Engine) Option {
	return func(s *Service) { s.search = e }
}

// WithLogger sets the logger used for non-fatal index failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new note service.
func NewService(store storage.Provider, db index.NoteIndex, opts ...Option) *Service {
	s := &Service{store: store, db: db, search: search.New(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListFiles returns every note under dir. Paths are relative to dir, or to
// the vault root when dir is empty.
func (s *Service) ListFiles(_ context.Context, dir string) ([]string, error) {
	dir = strings.Trim(strings.TrimSpace(dir), "/")
	metas, err := s.store.List(dir)
	if err != nil {
		return nil, err
	}
	prefix := ""
	if clean := path.Clean(dir); dir != "" && clean != "." {
		prefix = clean + "/"
	}
	out := make([]string, 0, len(metas))
	for _, m := range metas {
		out = append(out, strings.TrimPrefix(m.Path, prefix))
	}
	return out, nil
}

// ReadNote resolves name and returns the note with its parsed metadata.
func (s *Service) ReadNote(_ context.Context, name string) (*NoteDetail, error) {
	p, err := s.store.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(p)
	if err != nil {
		return nil, err
	}
	res := parser.Parse(data)
	return &NoteDetail{
		Path:        p,
		Title:       res.Title,
		Content:     string(data),
		Checksum:    models.Checksum(data),
		Tags:        nonNilSlice(res.Tags),
		Headings:    nonNilSlice(res.Headings),
		Frontmatter: res.Frontmatter,
	}, nil
}

// AppendContent adds content at the end of the note, creating the note when
// no file resolves from name. It returns the path written.
func (s *Service) AppendContent(_ context.Context, name, content string) (string, error) {
	p, err := s.store.Resolve(name)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		p = s.store.Normalize(name)
		if err := s.save(p, []byte(patch.AppendText("", content))); err != nil {
			return "", err
		}
		return p, nil
	case err != nil:
		return "", err
	}
	return s.edit(p, func(text string) (string, error) {
		return patch.AppendText(text, content), nil
	})
}

// PatchNote applies spec to the note and returns the path written.
// On any patch failure the file is left untouched.
func (s *Service) PatchNote(_ context.Context, name string, spec patch.Spec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	p, err := s.store.Resolve(name)
	if err != nil {
		return "", err
	}
	return s.edit(p, func(text string) (string, error) {
		return patch.Apply(text, spec)
	})
}

// DeleteLines removes the 1-based inclusive line range and returns the path written.
func (s *Service) DeleteLines(_ context.Context, name string, start, end int) (string, error) {
	p, err := s.store.Resolve(name)
	if err != nil {
		return "", err
	}
	return s.edit(p, func(text string) (string, error) {
		return patch.DeleteLines(text, start, end)
	})
}

// SearchFiles fuzzy-matches query against every note path in the vault.
func (s *Service) SearchFiles(_ context.Context, query string, limit int) ([]search.FileHit, error) {
	metas, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(metas))
	for i, m := range metas {
		paths[i] = m.Path
	}
	return s.search.Files(query, paths, limit)
}

// SearchContent fuzzy-matches query against every line of every indexed note.
func (s *Service) SearchContent(_ context.Context, query string, limit int) ([]search.LineHit, error) {
	docs, err := s.db.Documents()
	if err != nil {
		return nil, err
	}
	return s.search.Content(query, docs, limit)
}

// SearchIndex delegates full-text search to the index.
func (s *Service) SearchIndex(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is empty", apperr.ErrInvalidArgument)
	}
	res, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// edit runs the read-transform-write cycle for an existing note.
func (s *Service) edit(p string, fn func(string) (string, error)) (string, error) {
	data, err := s.store.Read(p)
	if err != nil {
		return "", err
	}
	out, err := fn(string(data))
	if err != nil {
		return "", err
	}
	if err := s.save(p, []byte(out)); err != nil {
		return "", err
	}
	return p, nil
}

// save writes content and refreshes the index entry. The file is the source
// of truth, so an index failure is logged and left for the next sync.
func (s *Service) save(p string, content []byte) error {
	if err := s.store.Write(p, content); err != nil {
		return err
	}
	if err := s.db.IndexNote(p, content); err != nil {
		s.logger.Warn("index update failed", slog.String("path", p), slog.String("error", err.Error()))
	}
	return nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
