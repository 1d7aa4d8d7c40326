package lint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/legout/skillctl/pkg/skill"
)

// checkFences walks the Markdown AST and validates the content of fenced
// code blocks: Python fences get a parse-only structural check, JSON and
// YAML fences must deserialize. Snippets are never executed.
func checkFences(result *Result, s *skill.Skill, content []byte) {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	doc := md.Parser().Parse(text.NewReader(content))

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		block, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		lines := block.Lines()
		if lines.Len() == 0 {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(content[seg.Start:seg.Stop])
		}

		startLine := lineOf(content, lines.At(0).Start)
		lang := strings.ToLower(string(block.Language(content)))

		switch lang {
		case "python", "py", "python3":
			for _, issue := range checkPython(buf.String()) {
				result.add(s.Path, startLine+issue.Line-1, issue.Severity, "python-fence", issue.Message)
			}
		case "json":
			checkJSONFence(result, s, buf.Bytes(), startLine)
		case "yaml", "yml":
			checkYAMLFence(result, s, buf.Bytes(), startLine)
		}

		return ast.WalkContinue, nil
	})
}

func checkJSONFence(result *Result, s *skill.Skill, snippet []byte, startLine int) {
	var v interface{}
	err := json.Unmarshal(snippet, &v)
	if err == nil {
		return
	}

	line := startLine
	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		line = startLine + lineOf(snippet, int(syntaxErr.Offset)) - 1
	}
	result.add(s.Path, line, SeverityError, "json-fence",
		fmt.Sprintf("invalid JSON: %v", err))
}

func checkYAMLFence(result *Result, s *skill.Skill, snippet []byte, startLine int) {
	var v interface{}
	if err := yaml.Unmarshal(snippet, &v); err != nil {
		result.add(s.Path, startLine, SeverityError, "yaml-fence",
			fmt.Sprintf("invalid YAML: %v", err))
	}
}
