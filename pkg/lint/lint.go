// Package lint validates skill repositories: frontmatter structure,
// naming conventions, dependency resolution, cross-referenced files, and
// the code snippets embedded in fenced blocks. It produces per-file
// diagnostics rather than failing on the first problem, mirroring how the
// documents are reviewed.
package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/legout/skillctl/pkg/graph"
	"github.com/legout/skillctl/pkg/logger"
	"github.com/legout/skillctl/pkg/skill"
)

// Severity classifies a diagnostic
type Severity string

const (
	// SeverityError marks a violation that fails the lint run
	SeverityError Severity = "error"
	// SeverityWarning marks a concern that does not fail the run
	SeverityWarning Severity = "warning"
)

// Diagnostic is a single finding against a skill document
type Diagnostic struct {
	File     string
	Line     int
	Severity Severity
	Rule     string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %s (%s)", d.File, d.Line, d.Severity, d.Message, d.Rule)
}

// Result aggregates the diagnostics of a lint run
type Result struct {
	Diagnostics  []Diagnostic
	FilesChecked int
}

// Errors returns the number of error-severity diagnostics
func (r *Result) Errors() int {
	return r.count(SeverityError)
}

// Warnings returns the number of warning-severity diagnostics
func (r *Result) Warnings() int {
	return r.count(SeverityWarning)
}

func (r *Result) count(severity Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// Failed reports whether the run produced any errors
func (r *Result) Failed() bool {
	return r.Errors() > 0
}

// kebab-case: lowercase alphanumeric segments joined by single hyphens
var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Linter validates all skill documents discovered under a repository root
type Linter struct {
	discovery      *skill.Discovery
	maxLines       int
	maxDescription int
}

// LinterOption configures a Linter
type LinterOption func(*Linter)

// WithMaxLines sets the line count above which a document draws a warning
func WithMaxLines(n int) LinterOption {
	return func(l *Linter) {
		l.maxLines = n
	}
}

// WithMaxDescription sets the description length above which a skill
// draws a warning
func WithMaxDescription(n int) LinterOption {
	return func(l *Linter) {
		l.maxDescription = n
	}
}

// New creates a Linter over the given discovery
func New(discovery *skill.Discovery, opts ...LinterOption) *Linter {
	l := &Linter{
		discovery:      discovery,
		maxLines:       500,
		maxDescription: 256,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run lints every discovered skill document. Diagnostics describe content
// problems; the returned error covers operational failures (unreadable
// files, walk errors) and aggregates them per file.
func (l *Linter) Run(ctx context.Context) (*Result, error) {
	paths, err := l.discovery.Paths()
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover skill documents")
	}

	result := &Result{FilesChecked: len(paths)}
	skillsByName := make(map[string]*skill.Skill)
	fileByName := make(map[string]string)
	var runErr *multierror.Error

	for _, path := range paths {
		logger.G(ctx).WithField("file", path).Debug("linting skill document")

		content, err := os.ReadFile(path)
		if err != nil {
			runErr = multierror.Append(runErr, errors.Wrapf(err, "failed to read %s", path))
			continue
		}

		s, err := skill.Parse(content)
		if err != nil {
			result.add(path, 1, SeverityError, "frontmatter", err.Error())
			continue
		}
		s.Path = path
		s.Directory = filepath.Dir(path)

		if first, exists := fileByName[s.Name]; exists {
			result.add(path, 1, SeverityError, "duplicate-name",
				fmt.Sprintf("skill name '%s' already declared in %s", s.Name, first))
		} else {
			fileByName[s.Name] = path
			skillsByName[s.Name] = s
		}

		l.checkMetadata(result, s)
		l.checkBody(result, s, content)
	}

	l.checkDependencies(result, skillsByName)

	sortDiagnostics(result.Diagnostics)
	return result, runErr.ErrorOrNil()
}

func (r *Result) add(file string, line int, severity Severity, rule, message string) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		File:     file,
		Line:     line,
		Severity: severity,
		Rule:     rule,
		Message:  message,
	})
}

func (l *Linter) checkMetadata(result *Result, s *skill.Skill) {
	if !namePattern.MatchString(s.Name) {
		result.add(s.Path, 1, SeverityError, "name-format",
			fmt.Sprintf("skill name '%s' must be lowercase kebab-case", s.Name))
	}

	if dir := filepath.Base(s.Directory); dir != s.Name {
		result.add(s.Path, 1, SeverityWarning, "name-directory-mismatch",
			fmt.Sprintf("skill name '%s' does not match directory name '%s'", s.Name, dir))
	}

	if len(s.Description) > l.maxDescription {
		result.add(s.Path, 1, SeverityWarning, "description-length",
			fmt.Sprintf("description is %d characters, keep it under %d", len(s.Description), l.maxDescription))
	}

	if l.maxLines > 0 && s.LineCount > l.maxLines {
		result.add(s.Path, 1, SeverityWarning, "line-count",
			fmt.Sprintf("document has %d lines, consider splitting above %d", s.LineCount, l.maxLines))
	}

	seen := make(map[string]bool, len(s.DependsOn))
	for _, dep := range s.DependsOn {
		if dep == s.Name {
			result.add(s.Path, 1, SeverityError, "self-dependency",
				fmt.Sprintf("skill '%s' depends on itself", s.Name))
		}
		if seen[dep] {
			result.add(s.Path, 1, SeverityWarning, "duplicate-dependency",
				fmt.Sprintf("dependency '%s' listed more than once", dep))
		}
		seen[dep] = true
	}
}

func (l *Linter) checkBody(result *Result, s *skill.Skill, content []byte) {
	checkLinks(result, s, content)
	checkFences(result, s, content)
}

func (l *Linter) checkDependencies(result *Result, skills map[string]*skill.Skill) {
	g := graph.Build(skills)

	for name, refs := range g.Unknown() {
		s := skills[name]
		for _, ref := range refs {
			result.add(s.Path, 1, SeverityError, "unknown-dependency",
				fmt.Sprintf("dependency '%s' does not resolve to any skill", ref))
		}
	}

	for _, cycle := range g.Cycles() {
		if len(cycle) < 2 {
			// self-dependencies are reported by checkMetadata
			continue
		}
		s := skills[cycle[0]]
		result.add(s.Path, 1, SeverityError, "dependency-cycle",
			fmt.Sprintf("dependency cycle: %s", strings.Join(append(cycle, cycle[0]), " -> ")))
	}
}

func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].File != diags[j].File {
			return diags[i].File < diags[j].File
		}
		return diags[i].Line < diags[j].Line
	})
}

// lineOf returns the 1-based line number of the given byte offset
func lineOf(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	line := 1
	for _, b := range source[:offset] {
		if b == '\n' {
			line++
		}
	}
	return line
}
