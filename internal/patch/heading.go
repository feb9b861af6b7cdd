package patch

import "strings"

// headingText strips the leading '#' markers and surrounding space from a
// heading line (or a heading target) and folds case for comparison.
func headingText(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "#")))
}

func isHeading(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

func findHeading(lines []string, target string) (int, error) {
	want := headingText(target)
	var hits []int
	for i, line := range lines {
		if isHeading(line) && headingText(line) == want {
			hits = append(hits, i)
		}
	}
	return uniqueMatch(hits, "heading", strings.TrimSpace(target))
}

// patchHeading inserts content directly under the heading for both prepend
// and append; replace swaps out the heading line itself.
func patchHeading(lines []string, spec Spec) ([]string, error) {
	i, err := findHeading(lines, spec.Target)
	if err != nil {
		return nil, err
	}
	switch spec.Operation {
	case Replace:
		return replaceAt(lines, i, spec.Content), nil
	default:
		return insertAt(lines, i+1, spec.Content), nil
	}
}
