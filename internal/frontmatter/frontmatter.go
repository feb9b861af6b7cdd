// Package frontmatter decodes and encodes the YAML metadata block that opens a note.
//
// A frontmatter block starts on the first line of a note with a fence line
// that is exactly "---" and ends at the next line that is exactly "---".
// Keys keep their original order through a decode/encode cycle because the
// mapping is held as a yaml.v3 node rather than a Go map.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/vaultmcp/internal/apperr"
)

// Fence is the delimiter line around a frontmatter block.
const Fence = "---"

// Locate reports whether lines open with a frontmatter block and, if so,
// the index of its closing fence. An opening fence without a closing one
// is a malformed document.
func Locate(lines []string) (closing int, found bool, err error) {
	if len(lines) == 0 || lines[0] != Fence {
		return -1, false, nil
	}
	for i := 1; i < len(lines); i++ {
		if lines[i] == Fence {
			return i, true, nil
		}
	}
	return -1, false, fmt.Errorf("%w: frontmatter opened on line 1 is never closed", apperr.ErrMalformedDocument)
}

// Map is an ordered key/value view over a frontmatter mapping.
type Map struct {
	node *yaml.Node
}

// New returns an empty mapping.
func New() *Map {
	return &Map{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// Decode parses the lines between the fences (fences excluded).
// Blank input decodes to an empty mapping.
func Decode(lines []string) (*Map, error) {
	src := strings.Join(lines, "\n")
	if strings.TrimSpace(src) == "" {
		return New(), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("%w: frontmatter is not valid YAML: %v", apperr.ErrMalformedDocument, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return New(), nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: frontmatter must be a key/value mapping", apperr.ErrMalformedDocument)
	}
	return &Map{node: root}, nil
}

// Len returns the number of keys.
func (m *Map) Len() int {
	return len(m.node.Content) / 2
}

// Keys returns the keys in document order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, m.Len())
	for i := 0; i+1 < len(m.node.Content); i += 2 {
		keys = append(keys, m.node.Content[i].Value)
	}
	return keys
}

// Get returns the value stored under key. Scalars come back as their literal
// text; sequences and nested mappings come back as their YAML rendering.
func (m *Map) Get(key string) (string, bool) {
	i := m.index(key)
	if i < 0 {
		return "", false
	}
	v := m.node.Content[i+1]
	if v.Kind == yaml.ScalarNode {
		return v.Value, true
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", true
	}
	return strings.TrimRight(string(out), "\n"), true
}

// Set stores value under key as a string scalar. Existing keys keep their
// position; new keys are appended.
func (m *Map) Set(key, value string) {
	scalar := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	if i := m.index(key); i >= 0 {
		scalar.LineComment = m.node.Content[i+1].LineComment
		m.node.Content[i+1] = scalar
		return
	}
	m.node.Content = append(m.node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		scalar,
	)
}

// Values decodes the mapping into plain Go values.
func (m *Map) Values() (map[string]any, error) {
	out := make(map[string]any, m.Len())
	if m.Len() == 0 {
		return out, nil
	}
	if err := m.node.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedDocument, err)
	}
	return out, nil
}

// Encode renders the mapping as the lines that go between the fences.
// An empty mapping encodes to no lines.
func (m *Map) Encode() ([]string, error) {
	if m.Len() == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m.node); err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"), nil
}

func (m *Map) index(key string) int {
	for i := 0; i+1 < len(m.node.Content); i += 2 {
		if m.node.Content[i].Value == key {
			return i
		}
	}
	return -1
}
