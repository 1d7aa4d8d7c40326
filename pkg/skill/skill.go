// Package skill defines the skill document model and repository discovery.
// A skill is a directory containing a SKILL.md file whose YAML frontmatter
// declares the skill's name, description, and dependencies on other skills.
package skill

import "strings"

// FileName is the canonical file name of a skill document.
const FileName = "SKILL.md"

// Skill represents a parsed skill document
type Skill struct {
	Name        string   // Unique name from frontmatter
	Description string   // Human-readable description
	DependsOn   []string // Names of skills this skill depends on
	Directory   string   // Full path to the skill directory
	Path        string   // Full path to the SKILL.md file
	Content     string   // Full content of SKILL.md (body, not frontmatter)
	LineCount   int      // Number of lines in the SKILL.md file
}

// Metadata represents the YAML frontmatter in SKILL.md files
type Metadata struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	DependsOn   []string `yaml:"dependsOn,omitempty"`
}

// NormalizeRef strips the conventional "@" prefix from a dependency
// reference, so "@polars-basics" and "polars-basics" name the same skill.
func NormalizeRef(ref string) string {
	return strings.TrimPrefix(strings.TrimSpace(ref), "@")
}
