// Package format normalizes skill frontmatter into a canonical shape:
// keys ordered name, description, dependsOn, then any remaining keys
// sorted, with the document body preserved byte-for-byte.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// canonical frontmatter key order; everything else follows alphabetically
var canonicalOrder = []string{"name", "description", "dependsOn"}

// Normalize rewrites the YAML frontmatter of a skill document into
// canonical form. It returns the formatted document and whether it
// differs from the input.
func Normalize(src []byte) ([]byte, bool, error) {
	text := string(src)
	raw, body, err := splitFrontmatter(text)
	if err != nil {
		return nil, false, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, false, errors.Wrap(err, "failed to parse frontmatter")
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, false, errors.New("frontmatter must be a YAML mapping")
	}

	ordered := reorderMapping(doc.Content[0])

	var sb strings.Builder
	encoder := yaml.NewEncoder(&sb)
	encoder.SetIndent(2)
	if err := encoder.Encode(ordered); err != nil {
		return nil, false, errors.Wrap(err, "failed to encode frontmatter")
	}
	if err := encoder.Close(); err != nil {
		return nil, false, errors.Wrap(err, "failed to encode frontmatter")
	}

	formatted := "---\n" + sb.String() + "---\n" + body
	return []byte(formatted), formatted != text, nil
}

// Diff returns a unified diff between the original document and its
// normalized form, or "" when the document is already canonical.
func Diff(path string, src []byte) (string, error) {
	formatted, changed, err := Normalize(src)
	if err != nil {
		return "", err
	}
	if !changed {
		return "", nil
	}
	return udiff.Unified(path, path, string(src), string(formatted)), nil
}

// splitFrontmatter separates the raw frontmatter YAML from the rest of the
// document. The returned body includes everything after the closing
// delimiter line, untouched.
func splitFrontmatter(text string) (string, string, error) {
	if !strings.HasPrefix(text, "---\n") && text != "---" {
		return "", "", errors.New("document has no frontmatter")
	}

	rest := strings.TrimPrefix(text, "---\n")
	lines := strings.SplitAfter(rest, "\n")

	var fm strings.Builder
	offset := 0
	for _, line := range lines {
		if strings.TrimSpace(strings.TrimSuffix(line, "\n")) == "---" {
			return fm.String(), rest[offset+len(line):], nil
		}
		fm.WriteString(line)
		offset += len(line)
	}

	return "", "", errors.New("frontmatter is not terminated")
}

// reorderMapping returns a copy of the mapping node with canonical keys
// first, in canonical order, and the remaining keys sorted by name
func reorderMapping(mapping *yaml.Node) *yaml.Node {
	type pair struct {
		key   *yaml.Node
		value *yaml.Node
	}

	pairs := make(map[string]pair, len(mapping.Content)/2)
	var keys []string
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		pairs[key.Value] = pair{key: key, value: mapping.Content[i+1]}
		keys = append(keys, key.Value)
	}

	var orderedKeys []string
	used := make(map[string]bool, len(keys))
	for _, key := range canonicalOrder {
		if _, ok := pairs[key]; ok {
			orderedKeys = append(orderedKeys, key)
			used[key] = true
		}
	}

	var remaining []string
	for _, key := range keys {
		if !used[key] {
			remaining = append(remaining, key)
		}
	}
	sort.Strings(remaining)
	orderedKeys = append(orderedKeys, remaining...)

	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range orderedKeys {
		p := pairs[key]
		// drop comments so the canonical form is stable
		p.key.HeadComment, p.key.LineComment, p.key.FootComment = "", "", ""
		out.Content = append(out.Content, p.key, p.value)
	}
	return out
}

// Summary describes the outcome of formatting one file
type Summary struct {
	Path    string
	Changed bool
}

func (s Summary) String() string {
	if s.Changed {
		return fmt.Sprintf("reformatted %s", s.Path)
	}
	return fmt.Sprintf("%s already canonical", s.Path)
}
