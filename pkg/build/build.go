// Package build assembles the distributable skills/ tree from skill
// sources: one directory per skill, deduplicated by name, with a generated
// index and a build manifest. The output layout matches what `npx skills
// add` expects: each installable skill is a directory containing SKILL.md.
package build

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/legout/skillctl/pkg/logger"
	"github.com/legout/skillctl/pkg/skill"
)

// ManifestFileName is the name of the build manifest written into the
// output tree.
const ManifestFileName = "manifest.yaml"

// SharedReferences copies the files of Dir into the references/
// subdirectory of every built skill whose source lives under Prefix. Both
// paths are relative to the repository root.
type SharedReferences struct {
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

// ManifestSkill describes one skill in the build manifest
type ManifestSkill struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	DependsOn   []string `yaml:"dependsOn,omitempty"`
	Source      string   `yaml:"source"`
}

// Manifest records what a build produced
type Manifest struct {
	BuildID     string          `yaml:"buildId"`
	GeneratedAt time.Time       `yaml:"generatedAt"`
	ToolVersion string          `yaml:"toolVersion"`
	Skills      []ManifestSkill `yaml:"skills"`
}

// Builder builds the output tree from discovered skills
type Builder struct {
	discovery   *skill.Discovery
	outputDir   string
	toolVersion string
	sharedRefs  []SharedReferences
	ignoreDirs  []string
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithOutputDir sets the output directory, relative to the repository root
func WithOutputDir(dir string) BuilderOption {
	return func(b *Builder) {
		b.outputDir = dir
	}
}

// WithToolVersion records the tool version in the manifest
func WithToolVersion(version string) BuilderOption {
	return func(b *Builder) {
		b.toolVersion = version
	}
}

// WithSharedReferences adds a shared references mapping
func WithSharedReferences(refs ...SharedReferences) BuilderOption {
	return func(b *Builder) {
		b.sharedRefs = append(b.sharedRefs, refs...)
	}
}

// New creates a Builder over the given discovery
func New(discovery *skill.Discovery, opts ...BuilderOption) *Builder {
	b := &Builder{
		discovery:  discovery,
		outputDir:  "skills",
		ignoreDirs: []string{".git", "node_modules", ".ruff_cache", "__pycache__"},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OutputPath returns the resolved output directory
func (b *Builder) OutputPath() string {
	if filepath.IsAbs(b.outputDir) {
		return b.outputDir
	}
	return filepath.Join(b.discovery.Root(), b.outputDir)
}

// Build cleans and recreates the output tree, copies every deduplicated
// skill directory into it, writes the generated index, and returns the
// manifest it wrote alongside.
func (b *Builder) Build(ctx context.Context) (*Manifest, error) {
	skills, err := b.discovery.Discover()
	if err != nil {
		return nil, err
	}

	outPath := b.OutputPath()
	if err := os.RemoveAll(outPath); err != nil {
		return nil, errors.Wrapf(err, "failed to clean output directory %s", outPath)
	}
	if err := os.MkdirAll(outPath, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", outPath)
	}

	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)

	manifest := &Manifest{
		BuildID:     uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		ToolVersion: b.toolVersion,
	}

	for _, name := range names {
		s := skills[name]
		dst := filepath.Join(outPath, name)

		logger.G(ctx).WithFields(map[string]interface{}{
			"skill": name,
			"src":   s.Directory,
			"dst":   dst,
		}).Debug("copying skill")

		if err := b.copySkillDir(s.Directory, dst); err != nil {
			return nil, errors.Wrapf(err, "failed to copy skill '%s'", name)
		}

		if err := b.copySharedReferences(s, dst); err != nil {
			return nil, errors.Wrapf(err, "failed to copy shared references for '%s'", name)
		}

		source, err := filepath.Rel(b.discovery.Root(), s.Directory)
		if err != nil {
			source = s.Directory
		}
		manifest.Skills = append(manifest.Skills, ManifestSkill{
			Name:        s.Name,
			Description: s.Description,
			DependsOn:   s.DependsOn,
			Source:      filepath.ToSlash(source),
		})
	}

	if err := b.writeIndex(outPath, manifest); err != nil {
		return nil, err
	}
	if err := b.writeManifest(outPath, manifest); err != nil {
		return nil, err
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"skills": len(manifest.Skills),
		"output": outPath,
	}).Info("build complete")

	return manifest, nil
}

// copySkillDir copies a skill directory, skipping VCS and cache
// directories and any subdirectory that contains its own skill documents
func (b *Builder) copySkillDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if entry.IsDir() {
			if path != src {
				for _, ignore := range b.ignoreDirs {
					if entry.Name() == ignore {
						return filepath.SkipDir
					}
				}
				if containsSkillFile(path) {
					return filepath.SkipDir
				}
			}
			return os.MkdirAll(target, 0o755)
		}

		return copyFile(path, target)
	})
}

func (b *Builder) copySharedReferences(s *skill.Skill, dst string) error {
	for _, refs := range b.sharedRefs {
		prefix := filepath.Join(b.discovery.Root(), refs.Prefix)
		if !strings.HasPrefix(s.Directory, prefix+string(os.PathSeparator)) && s.Directory != prefix {
			continue
		}

		refDir := filepath.Join(b.discovery.Root(), refs.Dir)
		entries, err := os.ReadDir(refDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		dstRefs := filepath.Join(dst, "references")
		if err := os.MkdirAll(dstRefs, 0o755); err != nil {
			return err
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if err := copyFile(filepath.Join(refDir, entry.Name()), filepath.Join(dstRefs, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// containsSkillFile reports whether dir holds a SKILL.md anywhere below it
func containsSkillFile(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() && entry.Name() == skill.FileName {
			found = true
			return errors.New("stop")
		}
		return nil
	})
	return found
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// writeIndex writes the generated README listing every built skill
func (b *Builder) writeIndex(outPath string, manifest *Manifest) error {
	var sb strings.Builder
	sb.WriteString("# Generated Skills Directory\n\n")
	sb.WriteString("This directory is auto-generated. Do not edit manually.\n\n")
	fmt.Fprintf(&sb, "## %d Skills\n\n", len(manifest.Skills))
	for _, s := range manifest.Skills {
		fmt.Fprintf(&sb, "- `%s`: %s\n", s.Name, s.Description)
	}

	path := filepath.Join(outPath, "README.md")
	return errors.Wrap(os.WriteFile(path, []byte(sb.String()), 0o644), "failed to write index")
}

func (b *Builder) writeManifest(outPath string, manifest *Manifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return errors.Wrap(err, "failed to marshal manifest")
	}

	path := filepath.Join(outPath, ManifestFileName)
	return errors.Wrap(os.WriteFile(path, data, 0o644), "failed to write manifest")
}
