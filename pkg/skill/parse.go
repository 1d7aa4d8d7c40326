package skill

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// ParseFile loads a single skill from its SKILL.md file
func ParseFile(path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	s, err := Parse(content)
	if err != nil {
		return nil, err
	}

	s.Path = path
	s.Directory = filepath.Dir(path)
	return s, nil
}

// Parse parses raw SKILL.md content into a Skill. The returned skill has
// no Path or Directory set.
func Parse(content []byte) (*Skill, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)

	if name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}
	if description == "" {
		return nil, errors.New("skill description is required in frontmatter")
	}

	dependsOn, err := parseDependsOn(metaData["dependsOn"])
	if err != nil {
		return nil, err
	}

	text := string(content)

	return &Skill{
		Name:        name,
		Description: description,
		DependsOn:   dependsOn,
		Content:     ExtractBody(text),
		LineCount:   strings.Count(text, "\n") + 1,
	}, nil
}

// parseDependsOn accepts either a YAML sequence or a single scalar and
// normalizes every reference
func parseDependsOn(raw interface{}) ([]string, error) {
	if raw == nil {
		return nil, nil
	}

	var refs []string
	switch v := raw.(type) {
	case string:
		refs = []string{v}
	case []interface{}:
		for _, item := range v {
			ref, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("dependsOn entries must be strings, got %T", item)
			}
			refs = append(refs, ref)
		}
	default:
		return nil, errors.Errorf("dependsOn must be a list of skill names, got %T", raw)
	}

	normalized := make([]string, 0, len(refs))
	for _, ref := range refs {
		if r := NormalizeRef(ref); r != "" {
			normalized = append(normalized, r)
		}
	}
	return normalized, nil
}

// ExtractBody removes YAML frontmatter and returns the document body
func ExtractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}

// BodyOffset returns the 1-based line number in the original document at
// which the body returned by ExtractBody starts. Lint rules use it to map
// body-relative line numbers back to file positions.
func BodyOffset(content string) int {
	if !strings.HasPrefix(content, "---") {
		return 1
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			offset := i + 2
			for offset <= len(lines) && lines[offset-1] == "" {
				offset++
			}
			return offset
		}
	}
	return 1
}
