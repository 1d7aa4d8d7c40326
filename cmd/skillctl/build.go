package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/legout/skillctl/pkg/build"
	"github.com/legout/skillctl/pkg/logger"
	"github.com/legout/skillctl/pkg/presenter"
	"github.com/legout/skillctl/pkg/skill"
	"github.com/legout/skillctl/pkg/version"
)

// BuildConfig holds configuration for the build command
type BuildConfig struct {
	Output string
	Force  bool
}

// NewBuildConfig creates a new BuildConfig with default values
func NewBuildConfig() *BuildConfig {
	return &BuildConfig{
		Output: viper.GetString("output"),
		Force:  false,
	}
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble the distributable skills directory",
	Long: `Lint the repository and assemble the output tree: one directory per
skill, deduplicated by name, with a generated index and a build manifest.
The layout matches what 'npx skills add' expects.

A failing lint aborts the build unless --force is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getBuildConfigFromFlags(cmd)

		if !config.Force {
			result, err := runLint(cmd, NewLintConfig())
			if err != nil {
				presenter.Error(err, "Lint run failed")
				os.Exit(1)
			}
			if result.Failed() {
				presenter.Warning("Build aborted: lint reported errors (use --force to build anyway)")
				os.Exit(1)
			}
		}

		discovery, err := newDiscovery(skill.WithOutputDir(config.Output))
		if err != nil {
			presenter.Error(err, "Invalid configuration")
			os.Exit(1)
		}

		opts := []build.BuilderOption{
			build.WithOutputDir(config.Output),
			build.WithToolVersion(version.Get().Version),
		}

		var sharedRefs []build.SharedReferences
		if err := viper.UnmarshalKey("shared_references", &sharedRefs); err != nil {
			presenter.Error(err, "Invalid shared_references configuration")
			os.Exit(1)
		}
		if len(sharedRefs) > 0 {
			opts = append(opts, build.WithSharedReferences(sharedRefs...))
		}

		builder := build.New(discovery, opts...)

		manifest, err := builder.Build(ctx)
		if err != nil {
			presenter.Error(err, "Build failed")
			logger.G(ctx).WithError(err).Error("build failed")
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Built %d skills into %s", len(manifest.Skills), builder.OutputPath()))
	},
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "Output directory relative to the repository root (defaults to the configured output)")
	buildCmd.Flags().Bool("force", false, "Build even when lint reports errors")
}

// getBuildConfigFromFlags extracts build configuration from command flags
func getBuildConfigFromFlags(cmd *cobra.Command) *BuildConfig {
	config := NewBuildConfig()

	if output, err := cmd.Flags().GetString("output"); err == nil && output != "" {
		config.Output = output
	}
	if force, err := cmd.Flags().GetBool("force"); err == nil {
		config.Force = force
	}

	return config
}
