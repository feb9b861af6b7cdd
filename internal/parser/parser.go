// Package parser extracts frontmatter, headings, and tags from Markdown content.
package parser

import (
	"regexp"
	"strings"

	"github.com/starford/vaultmcp/internal/frontmatter"
)

var (
	tagRe     = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
	headingRe = regexp.MustCompile(`^\s*#{1,6}\s+(.+?)\s*#*\s*$`)
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Headings    []string
	Tags        []string
	Title       string
}

// Parse extracts frontmatter, body, headings, and tags from raw Markdown bytes.
// A malformed frontmatter block is not an error here: the whole note is treated as body.
func Parse(data []byte) *Result {
	fm, body := splitFrontmatter(string(data))
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Headings:    extractHeadings(body),
		Tags:        extractTags(body, fm),
		Title:       deriveTitle(fm, body),
	}
}

// splitFrontmatter separates the frontmatter mapping from the Markdown body.
func splitFrontmatter(text string) (map[string]any, string) {
	lines := strings.Split(text, "\n")
	closing, found, err := frontmatter.Locate(lines)
	if err != nil || !found {
		return nil, text
	}
	m, err := frontmatter.Decode(lines[1:closing])
	if err != nil {
		return nil, text
	}
	fm, err := m.Values()
	if err != nil {
		return nil, text
	}
	return fm, strings.Join(lines[closing+1:], "\n")
}

// extractHeadings returns the visible text of every ATX heading.
func extractHeadings(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}

// extractTags collects #tags from body and from the frontmatter "tags" field.
func extractTags(body string, fm map[string]any) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	switch v := fm["tags"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			add(s)
		}
	}

	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
