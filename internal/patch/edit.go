package patch

import (
	"fmt"
	"slices"

	"github.com/starford/vaultmcp/internal/apperr"
)

// AppendText adds content as new line(s) at the end of text.
func AppendText(text, content string) string {
	lines := SplitLines(text)
	return JoinLines(append(lines, contentLines(content)...))
}

// DeleteLines removes lines start..end (1-based, inclusive) from text.
func DeleteLines(text string, start, end int) (string, error) {
	lines := SplitLines(text)
	if start < 1 || end < start || end > len(lines) {
		return "", fmt.Errorf("%w: line range %d-%d outside note of %d lines",
			apperr.ErrInvalidArgument, start, end, len(lines))
	}
	return JoinLines(slices.Delete(lines, start-1, end)), nil
}
