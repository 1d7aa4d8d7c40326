package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/legout/skillctl/pkg/logger"
	"github.com/legout/skillctl/pkg/presenter"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .skillctl.yaml configuration",
	Long:  `Write a .skillctl.yaml with sensible defaults into the repository root.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		override, _ := cmd.Flags().GetBool("override")

		root := viper.GetString("root")
		configFile := filepath.Join(root, ".skillctl.yaml")

		if !override {
			if _, err := os.Stat(configFile); err == nil {
				presenter.Warning(fmt.Sprintf("Configuration file already exists at %s", configFile))
				presenter.Info("To overwrite, use the --override flag or remove the file and run 'skillctl init' again")
				return
			}
		}

		configContent := `# skillctl configuration
root: .
output: skills
max_lines: 500
max_description: 256

# Glob patterns (relative to root) excluded from discovery
# ignore:
#   - "drafts/**"

# Copy the files of a shared directory into every built skill under a prefix
# shared_references:
#   - prefix: data-engineering
#     dir: data-engineering/references
`

		if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
			presenter.Error(err, "Failed to write configuration file")
			logger.G(ctx).WithError(err).WithField("config_file", configFile).Error("config file creation failed")
			return
		}

		presenter.Success(fmt.Sprintf("Created configuration file at %s", configFile))
	},
}

func init() {
	initCmd.Flags().Bool("override", false, "Overwrite an existing configuration file")
}
