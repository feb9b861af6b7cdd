//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Characters of context kept on each side of the first match.
const snippetRadius = 40

func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _ NoteRow, _ string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

// Search matches the query as a case-insensitive substring of title, headings,
// tags or content. Built without sqlite_fts5 there is no ranking; hits come back by path.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	like := "%" + escapeLike(query) + "%"
	rows, err := db.conn.Query(`
		SELECT path, title,
		       substr(content, max(1, instr(lower(content), lower(?)) - ?), ?)
		FROM notes
		WHERE title LIKE ? ESCAPE '\'
		   OR headings LIKE ? ESCAPE '\'
		   OR tags LIKE ? ESCAPE '\'
		   OR content LIKE ? ESCAPE '\'
		ORDER BY path
		LIMIT ?
	`, query, snippetRadius, 4*snippetRadius, like, like, like, like, searchLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
