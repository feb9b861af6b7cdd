//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Snippet markers bold the matched terms the same way a note would.
const (
	snippetOpen   = "**"
	snippetClose  = "**"
	snippetEllips = "..."
	snippetTokens = 32
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			path UNINDEXED,
			title,
			headings,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, n NoteRow, body string) error {
	if _, err := tx.Exec(`DELETE FROM notes_fts WHERE path = ?`, n.Path); err != nil {
		return fmt.Errorf("index: clear fts row: %w", err)
	}
	_, err := tx.Exec(`INSERT INTO notes_fts (path, title, headings, body, tags) VALUES (?, ?, ?, ?, ?)`,
		n.Path, n.Title, strings.Join(n.Headings, "\n"), body, strings.Join(n.Tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) error {
	if _, err := tx.Exec(`DELETE FROM notes_fts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete fts row: %w", err)
	}
	return nil
}

// matchExpr turns free text into an FTS5 query where every word must occur.
// Each word is quoted so punctuation in user input is never parsed as syntax.
func matchExpr(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

// Search runs an FTS5 query ranked by bm25 and returns highlighted body snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	expr := matchExpr(query)
	if expr == "" {
		return []SearchResult{}, nil
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       title,
		       snippet(notes_fts, 3, ?, ?, ?, ?)
		FROM notes_fts
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, snippetOpen, snippetClose, snippetEllips, snippetTokens, expr, searchLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
