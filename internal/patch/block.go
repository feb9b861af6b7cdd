package patch

import "strings"

// blockRef returns the "^id" marker for a block target; a caller-supplied
// leading caret is accepted.
func blockRef(target string) string {
	return "^" + strings.TrimPrefix(strings.TrimSpace(target), "^")
}

func findBlock(lines []string, target string) (int, error) {
	ref := blockRef(target)
	var hits []int
	for i, line := range lines {
		if strings.Contains(line, ref) {
			hits = append(hits, i)
		}
	}
	return uniqueMatch(hits, "block", ref)
}

func patchBlock(lines []string, spec Spec) ([]string, error) {
	i, err := findBlock(lines, spec.Target)
	if err != nil {
		return nil, err
	}
	switch spec.Operation {
	case Prepend:
		return insertAt(lines, i, spec.Content), nil
	case Append:
		return insertAt(lines, i+1, spec.Content), nil
	default:
		return replaceAt(lines, i, spec.Content), nil
	}
}
