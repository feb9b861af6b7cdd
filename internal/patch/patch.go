// Package patch performs structural edits on Markdown notes.
//
// A patch names an anchor in the note (a heading, a block reference, a
// frontmatter key or a literal text span) and an operation to perform
// relative to it. Every anchor except a frontmatter key must match exactly
// once: a missing anchor fails with apperr.ErrNotFound and a repeated one
// with apperr.ErrAmbiguousTarget, and in both cases nothing is changed.
package patch

import (
	"fmt"
	"strings"

	"github.com/starford/vaultmcp/internal/apperr"
)

// TargetType selects how the patch target is located.
type TargetType int

const (
	Heading TargetType = iota + 1
	Block
	Frontmatter
	Text
)

var targetTypeNames = map[TargetType]string{
	Heading:     "heading",
	Block:       "block",
	Frontmatter: "frontmatter",
	Text:        "text",
}

func (t TargetType) String() string {
	if s, ok := targetTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TargetType(%d)", int(t))
}

// ParseTargetType parses a target type name, ignoring case and surrounding space.
func ParseTargetType(s string) (TargetType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range targetTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want heading, block, frontmatter or text)", apperr.ErrUnsupportedTarget, s)
}

// Operation is the mutation applied at the anchor.
type Operation int

const (
	Prepend Operation = iota + 1
	Append
	Replace
)

var operationNames = map[Operation]string{
	Prepend: "prepend",
	Append:  "append",
	Replace: "replace",
}

func (o Operation) String() string {
	if s, ok := operationNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// ParseOperation parses an operation name, ignoring case and surrounding space.
func ParseOperation(s string) (Operation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for o, n := range operationNames {
		if n == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want append, prepend or replace)", apperr.ErrUnsupportedOperation, s)
}

// Spec describes a single patch.
type Spec struct {
	TargetType TargetType
	Target     string
	Operation  Operation
	Content    string
}

// ParseSpec builds a Spec from the string form used by the transports.
func ParseSpec(operation, targetType, target, content string) (Spec, error) {
	tt, err := ParseTargetType(targetType)
	if err != nil {
		return Spec{}, err
	}
	op, err := ParseOperation(operation)
	if err != nil {
		return Spec{}, err
	}
	return Spec{TargetType: tt, Target: target, Operation: op, Content: content}, nil
}

// Validate rejects an unusable patch before any document is touched.
func (s Spec) Validate() error {
	if _, ok := targetTypeNames[s.TargetType]; !ok {
		return fmt.Errorf("%w: %s", apperr.ErrUnsupportedTarget, s.TargetType)
	}
	if _, ok := operationNames[s.Operation]; !ok {
		return fmt.Errorf("%w: %s", apperr.ErrUnsupportedOperation, s.Operation)
	}
	if strings.TrimSpace(s.Target) == "" {
		return fmt.Errorf("%w: %s target is empty", apperr.ErrInvalidArgument, s.TargetType)
	}
	return nil
}

// Apply patches note text and returns the new text. On error the input is
// returned to the caller untouched.
func Apply(text string, spec Spec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	lines, err := ApplyLines(SplitLines(text), spec)
	if err != nil {
		return "", err
	}
	return JoinLines(lines), nil
}

// ApplyLines patches a line sequence. The returned slice may share storage
// with lines; callers must use the result and drop their reference to lines.
func ApplyLines(lines []string, spec Spec) ([]string, error) {
	switch spec.TargetType {
	case Heading:
		return patchHeading(lines, spec)
	case Block:
		return patchBlock(lines, spec)
	case Frontmatter:
		return patchFrontmatter(lines, spec)
	case Text:
		return patchText(lines, spec)
	default:
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnsupportedTarget, spec.TargetType)
	}
}

// uniqueMatch enforces the exactly-one-match rule for line anchors.
func uniqueMatch(hits []int, kind, target string) (int, error) {
	switch len(hits) {
	case 0:
		return -1, fmt.Errorf("%w: %s %q", apperr.ErrNotFound, kind, target)
	case 1:
		return hits[0], nil
	default:
		nums := make([]string, len(hits))
		for i, h := range hits {
			nums[i] = fmt.Sprint(h + 1)
		}
		return -1, fmt.Errorf("%w: %s %q appears on lines %s; make it unique before patching",
			apperr.ErrAmbiguousTarget, kind, target, strings.Join(nums, ", "))
	}
}
