// Package scaffold creates new skill directories from a canonical
// SKILL.md template.
package scaffold

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/legout/skillctl/pkg/skill"
)

var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const skillTemplate = `---
name: {{ .Name }}
description: {{ .Description }}
{{- if .DependsOn }}
dependsOn:
{{- range .DependsOn }}
  - "@{{ . }}"
{{- end }}
{{- end }}
---

# {{ .Title }}

{{ .Description }}

## When to use

Describe when an agent should reach for this skill.

## Instructions

Add the guidance, code snippets, and references for this skill.
`

// Config describes the skill to scaffold
type Config struct {
	Name        string
	Description string
	DependsOn   []string
}

type templateData struct {
	Name        string
	Description string
	DependsOn   []string
	Title       string
}

// Create writes a new skill directory under root and returns the path of
// the created SKILL.md. It refuses to overwrite an existing skill.
func Create(root string, config Config) (string, error) {
	if !namePattern.MatchString(config.Name) {
		return "", errors.Errorf("skill name '%s' must be lowercase kebab-case", config.Name)
	}
	if config.Description == "" {
		return "", errors.New("skill description is required")
	}

	dir := filepath.Join(root, config.Name)
	path := filepath.Join(dir, skill.FileName)

	if _, err := os.Stat(path); err == nil {
		return "", errors.Errorf("skill '%s' already exists at %s", config.Name, dir)
	}

	deps := make([]string, 0, len(config.DependsOn))
	for _, dep := range config.DependsOn {
		if d := skill.NormalizeRef(dep); d != "" {
			deps = append(deps, d)
		}
	}

	tmpl, err := template.New("skill").Parse(skillTemplate)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse skill template")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create skill directory %s", dir)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	data := templateData{
		Name:        config.Name,
		Description: config.Description,
		DependsOn:   deps,
		Title:       titleFromName(config.Name),
	}
	if err := tmpl.Execute(f, data); err != nil {
		return "", errors.Wrap(err, "failed to render skill template")
	}

	return path, nil
}

// titleFromName turns "delta-lake-writes" into "Delta Lake Writes"
func titleFromName(name string) string {
	words := strings.Split(name, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
