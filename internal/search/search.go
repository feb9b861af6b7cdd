// Package search ranks vault paths and note lines against a loose query.
package search

import (
	"fmt"
	"math"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/starford/vaultmcp/internal/apperr"
	"github.com/starford/vaultmcp/internal/index"
	"github.com/starford/vaultmcp/internal/patch"
)

// DefaultLimit caps results when the caller passes no limit.
const DefaultLimit = 20

// FileHit is a vault path matched by a fuzzy query.
type FileHit struct {
	Path  string `json:"path"`
	Score int    `json:"score"`
}

// LineHit is a single note line matched by a fuzzy query. Line is 1-based.
type LineHit struct {
	Path  string `json:"path"`
	Line  int    `json:"line"`
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// Engine scores candidates with sahilm/fuzzy.
type Engine struct {
	limit    int
	minScore int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimit sets the default result cap.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithMinScore drops content hits scoring below n. By default every match is kept.
func WithMinScore(n int) Option {
	return func(e *Engine) { e.minScore = n }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{limit: DefaultLimit, minScore: math.MinInt}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) resultLimit(limit int) int {
	if limit <= 0 {
		return e.limit
	}
	return limit
}

func checkQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", fmt.Errorf("%w: search query is empty", apperr.ErrInvalidArgument)
	}
	return q, nil
}

// Files ranks paths against query, best first.
func (e *Engine) Files(query string, paths []string, limit int) ([]FileHit, error) {
	q, err := checkQuery(query)
	if err != nil {
		return nil, err
	}
	matches := fuzzy.Find(q, paths)
	out := make([]FileHit, 0, min(len(matches), e.resultLimit(limit)))
	for _, m := range matches {
		if len(out) == cap(out) {
			break
		}
		out = append(out, FileHit{Path: m.Str, Score: m.Score})
	}
	return out, nil
}

// Content ranks every line of every document against query, best first.
// Blank lines never match.
func (e *Engine) Content(query string, docs []index.Document, limit int) ([]LineHit, error) {
	q, err := checkQuery(query)
	if err != nil {
		return nil, err
	}
	src := newLineSource(docs)
	matches := fuzzy.FindFrom(q, src)
	n := e.resultLimit(limit)
	out := make([]LineHit, 0, min(len(matches), n))
	for _, m := range matches {
		if len(out) == n {
			break
		}
		if m.Score < e.minScore {
			// Matches are sorted by score, nothing further qualifies.
			break
		}
		ref := src.refs[m.Index]
		out = append(out, LineHit{
			Path:  ref.path,
			Line:  ref.line,
			Text:  src.String(m.Index),
			Score: m.Score,
		})
	}
	return out, nil
}

type lineRef struct {
	path string
	line int
}

// lineSource flattens documents into one fuzzy.Source, remembering where
// each line came from.
type lineSource struct {
	lines []string
	refs  []lineRef
}

func newLineSource(docs []index.Document) *lineSource {
	s := &lineSource{}
	for _, d := range docs {
		for i, line := range patch.SplitLines(d.Content) {
			if strings.TrimSpace(line) == "" {
				continue
			}
			s.lines = append(s.lines, line)
			s.refs = append(s.refs, lineRef{path: d.Path, line: i + 1})
		}
	}
	return s
}

func (s *lineSource) String(i int) string { return s.lines[i] }
func (s *lineSource) Len() int            { return len(s.lines) }
