package lint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legout/skillctl/pkg/skill"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newLinter(t *testing.T, root string, opts ...LinterOption) *Linter {
	t.Helper()
	discovery, err := skill.NewDiscovery(skill.WithRoot(root))
	require.NoError(t, err)
	return New(discovery, opts...)
}

func rules(result *Result) []string {
	var out []string
	for _, d := range result.Diagnostics {
		out = append(out, d.Rule)
	}
	return out
}

func TestRunCleanRepo(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "polars-basics", "SKILL.md"), `---
name: polars-basics
description: Polars fundamentals
---

# Polars Basics

`+"```python\nimport polars as pl\n\ndf = pl.DataFrame({\"a\": [1, 2]})\n```"+`
`)
	writeFile(t, filepath.Join(tmpDir, "duckdb-queries", "SKILL.md"), `---
name: duckdb-queries
description: DuckDB query patterns
dependsOn:
  - "@polars-basics"
---

# DuckDB Queries

See [the reference](reference.md).
`)
	writeFile(t, filepath.Join(tmpDir, "duckdb-queries", "reference.md"), "# Reference\n")

	result, err := newLinter(t, tmpDir).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, 2, result.FilesChecked)
	assert.False(t, result.Failed())
}

func TestRunMalformedFrontmatter(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "broken", "SKILL.md"), "# No frontmatter at all\n")

	result, err := newLinter(t, tmpDir).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "frontmatter", result.Diagnostics[0].Rule)
	assert.Equal(t, SeverityError, result.Diagnostics[0].Severity)
	assert.True(t, result.Failed())
}

func TestRunDuplicateNames(t *testing.T) {
	tmpDir := t.TempDir()
	doc := "---\nname: shared\ndescription: d\n---\n\nBody.\n"
	writeFile(t, filepath.Join(tmpDir, "a", "shared", "SKILL.md"), doc)
	writeFile(t, filepath.Join(tmpDir, "b", "shared", "SKILL.md"), doc)

	result, err := newLinter(t, tmpDir).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, rules(result), "duplicate-name")
}

func TestRunNameFormat(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "Bad_Name", "SKILL.md"),
		"---\nname: Bad_Name\ndescription: d\n---\n\nBody.\n")

	result, err := newLinter(t, tmpDir).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, rules(result), "name-format")
}

func TestRunNameDirectoryMismatch(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "some-dir", "SKILL.md"),
		"---\nname: other-name\ndescription: d\n---\n\nBody.\n")

	result, err := newLinter(t, tmpDir).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, rules(result), "name-directory-mismatch")
	assert.False(t, result.Failed(), "mismatch is a warning")
}

func TestRunDependencyRules(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a", "SKILL.md"),
		"---\nname: a\ndescription: d\ndependsOn:\n  - \"@b\"\n  - \"@missing\"\n---\n\nBody.\n")
	writeFile(t, filepath.Join(tmpDir, "b", "SKILL.md"),
		"---\nname: b\ndescription: d\ndependsOn:\n  - \"@a\"\n---\n\nBody.\n")
	writeFile(t, filepath.Join(tmpDir, "c", "SKILL.md"),
		"---\nname: c\ndescription: d\ndependsOn:\n  - \"@c\"\n---\n\nBody.\n")

	result, err := newLinter(t, tmpDir).Run(context.Background())
	require.NoError(t, err)

	got := rules(result)
	assert.Contains(t, got, "unknown-dependency")
	assert.Contains(t, got, "dependency-cycle")
	assert.Contains(t, got, "self-dependency")
}

func TestRunLineCountWarning(t *testing.T) {
	tmpDir := t.TempDir()
	content := "---\nname: long-skill\ndescription: d\n---\n\n"
	for i := 0; i < 20; i++ {
		content += "Line of content.\n"
	}
	writeFile(t, filepath.Join(tmpDir, "long-skill", "SKILL.md"), content)

	result, err := newLinter(t, tmpDir, WithMaxLines(10)).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, rules(result), "line-count")
	assert.False(t, result.Failed())
}

func TestRunDescriptionLengthWarning(t *testing.T) {
	tmpDir := t.TempDir()
	long := ""
	for i := 0; i < 30; i++ {
		long += "wordy "
	}
	writeFile(t, filepath.Join(tmpDir, "chatty", "SKILL.md"),
		"---\nname: chatty\ndescription: "+long+"\n---\n\nBody.\n")

	result, err := newLinter(t, tmpDir, WithMaxDescription(40)).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, rules(result), "description-length")
}

func TestRunBrokenLink(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "linky", "SKILL.md"), `---
name: linky
description: d
---

# Linky

Good: [exists](notes.md) and [external](https://example.com) and [anchor](#section).
Bad: [missing](gone.md).

`+"```\n[not a link](inside-fence.md)\n```"+`
`)
	writeFile(t, filepath.Join(tmpDir, "linky", "notes.md"), "notes\n")

	result, err := newLinter(t, tmpDir).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 1)
	d := result.Diagnostics[0]
	assert.Equal(t, "broken-link", d.Rule)
	assert.Contains(t, d.Message, "gone.md")
	assert.Equal(t, 9, d.Line)
}

func TestRunCodeFences(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "fency", "SKILL.md"), `---
name: fency
description: d
---

# Fency

`+"```python\ndef broken(\n```"+`

`+"```json\n{\"ok\": true}\n```"+`

`+"```json\n{not valid}\n```"+`

`+"```yaml\nkey: [unclosed\n```"+`

`+"```sql\nSELECT * FROM t;\n```"+`
`)

	result, err := newLinter(t, tmpDir).Run(context.Background())
	require.NoError(t, err)

	got := rules(result)
	assert.Contains(t, got, "python-fence")
	assert.Contains(t, got, "json-fence")
	assert.Contains(t, got, "yaml-fence")
	assert.Len(t, got, 3, "valid fences and unchecked languages produce no diagnostics")
}

func TestRunPythonFenceLineNumbers(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "fency", "SKILL.md"), `---
name: fency
description: d
---

`+"```python\nx = 1\ndef broken(a\n```"+`
`)

	result, err := newLinter(t, tmpDir).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 1)
	// snippet starts at file line 7; the offending def is its second line
	assert.Equal(t, 8, result.Diagnostics[0].Line)
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{File: "a/SKILL.md", Line: 3, Severity: SeverityError, Rule: "broken-link", Message: "missing"}
	assert.Equal(t, "a/SKILL.md:3: error: missing (broken-link)", d.String())
}
