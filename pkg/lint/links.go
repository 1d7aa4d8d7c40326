package lint

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/legout/skillctl/pkg/skill"
)

// inline links and images: [text](dest) / ![alt](dest), optional title
var linkPattern = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)

// checkLinks verifies that relative link and image destinations resolve to
// files on disk, relative to the skill directory. External URLs, anchors,
// and fenced code regions are ignored.
func checkLinks(result *Result, s *skill.Skill, content []byte) {
	lines := strings.Split(string(content), "\n")

	inFrontmatter := false
	inFence := false
	fenceMarker := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if i == 0 && trimmed == "---" {
			inFrontmatter = true
			continue
		}
		if inFrontmatter {
			if trimmed == "---" {
				inFrontmatter = false
			}
			continue
		}

		if marker := fencePrefix(trimmed); marker != "" {
			if !inFence {
				inFence = true
				fenceMarker = marker
			} else if marker == fenceMarker {
				inFence = false
			}
			continue
		}
		if inFence {
			continue
		}

		for _, match := range linkPattern.FindAllStringSubmatch(line, -1) {
			dest := normalizeLinkDest(match[1])
			if dest == "" {
				continue
			}

			target := filepath.Join(s.Directory, filepath.FromSlash(dest))
			if _, err := os.Stat(target); err != nil {
				result.add(s.Path, i+1, SeverityError, "broken-link",
					"linked file '"+dest+"' does not exist")
			}
		}
	}
}

// fencePrefix returns "```" or "~~~" when the line opens or closes a
// fenced code block, otherwise ""
func fencePrefix(trimmed string) string {
	if strings.HasPrefix(trimmed, "```") {
		return "```"
	}
	if strings.HasPrefix(trimmed, "~~~") {
		return "~~~"
	}
	return ""
}

// normalizeLinkDest strips anchors and filters out destinations that do
// not name a local file
func normalizeLinkDest(dest string) string {
	dest = strings.TrimSpace(dest)

	if dest == "" ||
		strings.HasPrefix(dest, "#") ||
		strings.HasPrefix(dest, "/") ||
		strings.HasPrefix(dest, "mailto:") ||
		strings.Contains(dest, "://") {
		return ""
	}

	if idx := strings.Index(dest, "#"); idx >= 0 {
		dest = dest[:idx]
	}
	return dest
}
