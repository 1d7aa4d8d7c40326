package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/legout/skillctl/pkg/format"
	"github.com/legout/skillctl/pkg/logger"
	"github.com/legout/skillctl/pkg/presenter"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Normalize skill frontmatter into canonical form",
	Long: `Rewrite the YAML frontmatter of every skill document into canonical
form: name first, then description, then dependsOn, remaining keys
sorted. Document bodies are never touched.

With --check, no files are written; changed documents are reported as
unified diffs and the command exits non-zero.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		check, _ := cmd.Flags().GetBool("check")

		discovery, err := newDiscovery()
		if err != nil {
			presenter.Error(err, "Invalid configuration")
			os.Exit(1)
		}

		paths, err := discovery.Paths()
		if err != nil {
			presenter.Error(err, "Failed to discover skill documents")
			os.Exit(1)
		}

		changed := 0
		for _, path := range paths {
			content, err := os.ReadFile(path)
			if err != nil {
				presenter.Error(err, fmt.Sprintf("Failed to read %s", path))
				os.Exit(1)
			}

			if check {
				diff, err := format.Diff(path, content)
				if err != nil {
					presenter.Error(err, fmt.Sprintf("Failed to format %s", path))
					os.Exit(1)
				}
				if diff != "" {
					fmt.Print(diff)
					changed++
				}
				continue
			}

			formatted, didChange, err := format.Normalize(content)
			if err != nil {
				presenter.Error(err, fmt.Sprintf("Failed to format %s", path))
				os.Exit(1)
			}
			if !didChange {
				continue
			}

			if err := os.WriteFile(path, formatted, 0o644); err != nil {
				presenter.Error(err, fmt.Sprintf("Failed to write %s", path))
				os.Exit(1)
			}
			logger.G(ctx).WithField("file", path).Debug("reformatted frontmatter")
			presenter.Info(format.Summary{Path: path, Changed: true}.String())
			changed++
		}

		if check && changed > 0 {
			presenter.Warning(fmt.Sprintf("%d documents need formatting", changed))
			os.Exit(1)
		}
		if changed == 0 {
			presenter.Success("All skill documents are canonical")
		}
	},
}

func init() {
	fmtCmd.Flags().Bool("check", false, "Report diffs without writing files; exit non-zero when changes are needed")
}
