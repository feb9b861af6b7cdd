package patch

import (
	"slices"
	"strings"
)

// SplitLines splits note text into lines. Only the empty segment produced by
// a trailing newline is dropped, so blank lines inside the note survive.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines joins lines with newlines and terminates the text with exactly
// one newline. No lines yields a single newline.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

// contentLines splits caller-supplied content into the lines it occupies.
// Empty content still occupies one (blank) line.
func contentLines(content string) []string {
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func insertAt(lines []string, i int, content string) []string {
	return slices.Insert(lines, i, contentLines(content)...)
}

func replaceAt(lines []string, i int, content string) []string {
	return slices.Replace(lines, i, i+1, contentLines(content)...)
}
