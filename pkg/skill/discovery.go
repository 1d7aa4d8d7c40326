package skill

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// Discovery handles skill discovery from a repository root
type Discovery struct {
	root           string
	ignoreDirs     []string
	ignorePatterns []string
	outputDir      string
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithRoot sets the repository root to discover skills from
func WithRoot(root string) Option {
	return func(d *Discovery) error {
		if root == "" {
			return errors.New("root must not be empty")
		}
		d.root = root
		return nil
	}
}

// WithIgnoreDirs replaces the default set of directory names skipped
// during discovery
func WithIgnoreDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		d.ignoreDirs = dirs
		return nil
	}
}

// WithIgnorePatterns adds doublestar glob patterns matched against the
// slash-separated path relative to the root; matching directories and
// files are skipped
func WithIgnorePatterns(patterns ...string) Option {
	return func(d *Discovery) error {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return errors.Errorf("invalid ignore pattern %q", p)
			}
		}
		d.ignorePatterns = append(d.ignorePatterns, patterns...)
		return nil
	}
}

// WithOutputDir sets the build output directory (relative to root) that
// discovery must not descend into, so built trees are never re-discovered
// as sources
func WithOutputDir(dir string) Option {
	return func(d *Discovery) error {
		d.outputDir = dir
		return nil
	}
}

// NewDiscovery creates a new skill discovery instance rooted at the
// current directory unless configured otherwise
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{
		root:       ".",
		ignoreDirs: []string{".git", "node_modules", ".ruff_cache", "__pycache__"},
		outputDir:  "skills",
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Root returns the repository root this discovery walks
func (d *Discovery) Root() string {
	return d.root
}

// Paths returns the paths of all SKILL.md files under the root in
// deterministic (lexical) walk order, including files that later fail to
// parse. Lint relies on this to report malformed documents.
func (d *Discovery) Paths() ([]string, error) {
	var paths []string

	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(d.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if path == d.root {
				return nil
			}
			if d.skipDir(entry.Name(), rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Name() != FileName {
			return nil
		}
		if d.matchesIgnorePattern(rel) {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", d.root)
	}

	return paths, nil
}

func (d *Discovery) skipDir(name, rel string) bool {
	for _, ignore := range d.ignoreDirs {
		if name == ignore {
			return true
		}
	}
	if d.outputDir != "" && rel == filepath.ToSlash(d.outputDir) {
		return true
	}
	return d.matchesIgnorePattern(rel)
}

func (d *Discovery) matchesIgnorePattern(rel string) bool {
	for _, pattern := range d.ignorePatterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Discover finds all skills under the root, keyed by name. When two
// documents declare the same name the first one in walk order wins,
// matching the build's deduplication. Documents that fail to parse are
// skipped.
func (d *Discovery) Discover() (map[string]*Skill, error) {
	paths, err := d.Paths()
	if err != nil {
		return nil, err
	}

	skills := make(map[string]*Skill)
	for _, path := range paths {
		s, err := ParseFile(path)
		if err != nil {
			continue
		}
		if _, exists := skills[s.Name]; !exists {
			skills[s.Name] = s
		}
	}

	return skills, nil
}

// GetSkill returns a specific skill by name
func (d *Discovery) GetSkill(name string) (*Skill, error) {
	skills, err := d.Discover()
	if err != nil {
		return nil, err
	}

	s, exists := skills[NormalizeRef(name)]
	if !exists {
		return nil, errors.Errorf("skill '%s' not found", name)
	}

	return s, nil
}

// ListSkillNames returns the sorted names of all discovered skills
func (d *Discovery) ListSkillNames() ([]string, error) {
	skills, err := d.Discover()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}
