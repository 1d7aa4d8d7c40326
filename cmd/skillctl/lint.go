package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/legout/skillctl/pkg/lint"
	"github.com/legout/skillctl/pkg/logger"
	"github.com/legout/skillctl/pkg/presenter"
)

// LintConfig holds configuration for the lint command
type LintConfig struct {
	MaxLines       int
	MaxDescription int
	Strict         bool
}

// NewLintConfig creates a new LintConfig with default values
func NewLintConfig() *LintConfig {
	return &LintConfig{
		MaxLines:       viper.GetInt("max_lines"),
		MaxDescription: viper.GetInt("max_description"),
		Strict:         false,
	}
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate all skill documents in the repository",
	Long: `Validate every SKILL.md under the repository root: frontmatter
structure, naming conventions, dependency resolution, relative links, and
the syntax of embedded code fences.

Errors fail the command; warnings are reported but do not unless
--strict is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getLintConfigFromFlags(cmd)

		result, err := runLint(cmd, config)
		if err != nil {
			presenter.Error(err, "Lint run failed")
			logger.G(ctx).WithError(err).Error("lint run failed")
			os.Exit(1)
		}

		if result.Failed() || (config.Strict && result.Warnings() > 0) {
			os.Exit(1)
		}
	},
}

func init() {
	lintCmd.Flags().Int("max-lines", 0, "Warn when a document exceeds this many lines (0 uses the configured default)")
	lintCmd.Flags().Int("max-description", 0, "Warn when a description exceeds this many characters (0 uses the configured default)")
	lintCmd.Flags().Bool("strict", false, "Treat warnings as failures")
}

// getLintConfigFromFlags extracts lint configuration from command flags
func getLintConfigFromFlags(cmd *cobra.Command) *LintConfig {
	config := NewLintConfig()

	if maxLines, err := cmd.Flags().GetInt("max-lines"); err == nil && maxLines > 0 {
		config.MaxLines = maxLines
	}
	if maxDescription, err := cmd.Flags().GetInt("max-description"); err == nil && maxDescription > 0 {
		config.MaxDescription = maxDescription
	}
	if strict, err := cmd.Flags().GetBool("strict"); err == nil {
		config.Strict = strict
	}

	return config
}

// runLint executes a lint run and prints the diagnostics. Shared with the
// build and watch commands.
func runLint(cmd *cobra.Command, config *LintConfig) (*lint.Result, error) {
	discovery, err := newDiscovery()
	if err != nil {
		return nil, err
	}

	linter := lint.New(discovery,
		lint.WithMaxLines(config.MaxLines),
		lint.WithMaxDescription(config.MaxDescription),
	)

	result, err := linter.Run(cmd.Context())
	if err != nil {
		return nil, err
	}

	printLintResult(result)
	return result, nil
}

func printLintResult(result *lint.Result) {
	// diagnostics are the command's output, so they bypass quiet mode
	for _, d := range result.Diagnostics {
		fmt.Println(d.String())
	}

	summary := fmt.Sprintf("%d files checked, %d errors, %d warnings",
		result.FilesChecked, result.Errors(), result.Warnings())
	if result.Failed() {
		presenter.Warning(summary)
	} else {
		presenter.Success(summary)
	}
}
