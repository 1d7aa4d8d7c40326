package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPythonValid(t *testing.T) {
	snippets := map[string]string{
		"function": `def add(a, b):
    return a + b
`,
		"class with methods": `class Pipeline:
    def __init__(self, name):
        self.name = name

    def run(self):
        for step in self.steps:
            step()
`,
		"multi-line call": `result = query(
    "select * from t",
    limit=10,
)
`,
		"bracketed def header": `def transform(
    frame,
    columns,
):
    return frame.select(columns)
`,
		"strings and comments": `x = "a # not a comment"
y = 'it\'s fine'  # trailing comment
z = """
multi
line
"""
`,
		"slices and dicts": `row = data[1:2]
config = {"name": "etl", "retries": 3}
if config["retries"] > 0:
    retry()
`,
		"single-line suite": `if ready: run()
`,
		"backslash continuation": `total = 1 + \
    2
`,
		"f-strings": `msg = f"rows={len(rows)}"
`,
	}

	for name, src := range snippets {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, checkPython(src))
		})
	}
}

func TestCheckPythonMissingColon(t *testing.T) {
	issues := checkPython("def add(a, b)\n    return a + b\n")
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Line)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "missing ':'")
	assert.Contains(t, issues[0].Message, "'def'")
}

func TestCheckPythonMissingColonOnElse(t *testing.T) {
	issues := checkPython("if x:\n    pass\nelse\n    pass\n")
	require.Len(t, issues, 1)
	assert.Equal(t, 3, issues[0].Line)
	assert.Contains(t, issues[0].Message, "'else'")
}

func TestCheckPythonBrackets(t *testing.T) {
	t.Run("unclosed", func(t *testing.T) {
		issues := checkPython("x = (1 + 2\n")
		require.Len(t, issues, 1)
		assert.Equal(t, 1, issues[0].Line)
		assert.Contains(t, issues[0].Message, "unclosed '('")
	})

	t.Run("unmatched close", func(t *testing.T) {
		issues := checkPython("x = 1)\n")
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "unmatched ')'")
	})

	t.Run("mismatched pair", func(t *testing.T) {
		issues := checkPython("x = [1, 2)\n")
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "mismatched ')'")
	})
}

func TestCheckPythonStrings(t *testing.T) {
	t.Run("unterminated single-line", func(t *testing.T) {
		issues := checkPython(`x = "unclosed` + "\n")
		require.Len(t, issues, 1)
		assert.Equal(t, 1, issues[0].Line)
		assert.Contains(t, issues[0].Message, "unterminated string")
	})

	t.Run("unterminated triple", func(t *testing.T) {
		issues := checkPython("x = \"\"\"\nstill open\n")
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "triple-quoted")
	})

	t.Run("keyword inside string ignored", func(t *testing.T) {
		assert.Empty(t, checkPython("x = \"def not_code(\"\n"))
	})

	t.Run("bracket inside comment ignored", func(t *testing.T) {
		assert.Empty(t, checkPython("x = 1  # ( unbalanced in comment\n"))
	})
}

func TestCheckPythonMixedIndentation(t *testing.T) {
	issues := checkPython("def f():\n    a = 1\n\tb = 2\n")
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "mixed tab and space")
}

func TestLeadingWord(t *testing.T) {
	assert.Equal(t, "def", leadingWord("def f():"))
	assert.Equal(t, "elsewhere", leadingWord("   elsewhere = 1"))
	assert.Equal(t, "", leadingWord("  @decorator"))
	assert.Equal(t, "try", leadingWord("\ttry:"))
}
