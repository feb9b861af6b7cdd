package patch

import (
	"fmt"
	"strings"

	"github.com/starford/vaultmcp/internal/apperr"
)

// patchText edits around a literal span searched across the whole note,
// so a target may cross line boundaries.
func patchText(lines []string, spec Spec) ([]string, error) {
	text := strings.Join(lines, "\n")
	switch n := strings.Count(text, spec.Target); {
	case n == 0:
		return nil, fmt.Errorf("%w: text %q", apperr.ErrNotFound, spec.Target)
	case n > 1:
		return nil, fmt.Errorf("%w: text %q occurs %d times; it must be unique in the note",
			apperr.ErrAmbiguousTarget, spec.Target, n)
	}

	start := strings.Index(text, spec.Target)
	end := start + len(spec.Target)
	var out string
	switch spec.Operation {
	case Prepend:
		out = text[:start] + spec.Content + text[start:]
	case Append:
		out = text[:end] + spec.Content + text[end:]
	default:
		out = text[:start] + spec.Content + text[end:]
	}
	return strings.Split(out, "\n"), nil
}
