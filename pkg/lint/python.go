package lint

import (
	"fmt"
	"strings"
)

// pythonIssue is a finding inside a Python fence, with a 1-based line
// number relative to the snippet
type pythonIssue struct {
	Line     int
	Severity Severity
	Message  string
}

// block-introducing statements that must carry a ':' on their logical line
var blockKeywords = map[string]bool{
	"def":     true,
	"class":   true,
	"if":      true,
	"elif":    true,
	"else":    true,
	"for":     true,
	"while":   true,
	"try":     true,
	"except":  true,
	"finally": true,
	"with":    true,
}

type bracket struct {
	ch   byte
	line int
}

var bracketPairs = map[byte]byte{')': '(', ']': '[', '}': '{'}

// checkPython runs a parse-only structural check over a Python snippet:
// bracket balance, string termination, missing ':' after block statements,
// and mixed tab/space indentation. It is intentionally conservative; the
// snippet is never executed or compiled.
func checkPython(src string) []pythonIssue {
	var issues []pythonIssue

	var stack []bracket

	inTriple := false
	var tripleQuote byte
	tripleStart := 0

	// state of the current logical (possibly continued) line
	logicalKeyword := ""
	logicalStart := 0
	logicalBaseDepth := 0
	logicalSawColon := false
	continued := false

	sawTabIndent := false
	sawSpaceIndent := false
	indentWarned := false

	lines := strings.Split(src, "\n")
	for idx, line := range lines {
		lineNo := idx + 1
		startDepth := len(stack)

		if !inTriple && !continued {
			logicalKeyword = ""
			logicalSawColon = false
			logicalStart = lineNo
			logicalBaseDepth = startDepth

			if word := leadingWord(line); blockKeywords[word] {
				logicalKeyword = word
			}
		}

		if !inTriple && !indentWarned && strings.TrimSpace(line) != "" {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			if strings.HasPrefix(indent, "\t") {
				sawTabIndent = true
			} else if strings.HasPrefix(indent, " ") {
				sawSpaceIndent = true
			}
			if sawTabIndent && sawSpaceIndent {
				issues = append(issues, pythonIssue{
					Line:     lineNo,
					Severity: SeverityWarning,
					Message:  "mixed tab and space indentation",
				})
				indentWarned = true
			}
		}

		inString := false
		var quote byte
		endsWithBackslash := false

		for i := 0; i < len(line); i++ {
			c := line[i]

			if inTriple {
				if c == '\\' {
					i++
					continue
				}
				if c == tripleQuote && strings.HasPrefix(line[i:], strings.Repeat(string(tripleQuote), 3)) {
					inTriple = false
					i += 2
				}
				continue
			}

			if inString {
				if c == '\\' {
					i++
					continue
				}
				if c == quote {
					inString = false
				}
				continue
			}

			switch c {
			case '#':
				i = len(line)
			case '\'', '"':
				if strings.HasPrefix(line[i:], strings.Repeat(string(c), 3)) {
					inTriple = true
					tripleQuote = c
					tripleStart = lineNo
					i += 2
				} else {
					inString = true
					quote = c
				}
			case '(', '[', '{':
				stack = append(stack, bracket{ch: c, line: lineNo})
			case ')', ']', '}':
				if len(stack) == 0 {
					issues = append(issues, pythonIssue{
						Line:     lineNo,
						Severity: SeverityError,
						Message:  fmt.Sprintf("unmatched '%c'", c),
					})
					continue
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.ch != bracketPairs[c] {
					issues = append(issues, pythonIssue{
						Line:     lineNo,
						Severity: SeverityError,
						Message:  fmt.Sprintf("mismatched '%c' closing '%c' opened on line %d", c, top.ch, top.line),
					})
				}
			case ':':
				if len(stack) == logicalBaseDepth {
					logicalSawColon = true
				}
			case '\\':
				if i == len(line)-1 {
					endsWithBackslash = true
				}
			}
		}

		if inString {
			issues = append(issues, pythonIssue{
				Line:     lineNo,
				Severity: SeverityError,
				Message:  "unterminated string literal",
			})
		}

		continued = endsWithBackslash || len(stack) > 0 || inTriple
		if !continued && logicalKeyword != "" && !logicalSawColon {
			issues = append(issues, pythonIssue{
				Line:     logicalStart,
				Severity: SeverityError,
				Message:  fmt.Sprintf("missing ':' after '%s' statement", logicalKeyword),
			})
		}
	}

	for _, open := range stack {
		issues = append(issues, pythonIssue{
			Line:     open.line,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unclosed '%c'", open.ch),
		})
	}

	if inTriple {
		issues = append(issues, pythonIssue{
			Line:     tripleStart,
			Severity: SeverityError,
			Message:  "unterminated triple-quoted string",
		})
	}

	return issues
}

// leadingWord returns the first identifier on the line, skipping indentation
func leadingWord(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	end := 0
	for end < len(trimmed) {
		c := trimmed[end]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			end++
			continue
		}
		break
	}
	return trimmed[:end]
}
