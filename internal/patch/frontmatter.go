package patch

import (
	"strings"

	"github.com/starford/vaultmcp/internal/frontmatter"
)

// patchFrontmatter edits a single frontmatter key. Unlike the other anchors
// a missing key or a missing frontmatter block is not an error: the key is
// created, and a block is synthesized at the top of the note if needed.
func patchFrontmatter(lines []string, spec Spec) ([]string, error) {
	closing, found, err := frontmatter.Locate(lines)
	if err != nil {
		return nil, err
	}
	var inner, body []string
	if found {
		inner, body = lines[1:closing], lines[closing+1:]
	} else {
		body = lines
	}

	fm, err := frontmatter.Decode(inner)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSpace(spec.Target)
	old, _ := fm.Get(key)
	fm.Set(key, combineValue(spec.Operation, old, spec.Content))

	encoded, err := fm.Encode()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(encoded)+len(body)+2)
	out = append(out, frontmatter.Fence)
	out = append(out, encoded...)
	out = append(out, frontmatter.Fence)
	return append(out, body...), nil
}

func combineValue(op Operation, old, content string) string {
	switch {
	case op == Replace || old == "":
		return content
	case op == Append:
		return old + "\n" + content
	default:
		return content + "\n" + old
	}
}
