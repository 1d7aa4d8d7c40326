package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/legout/skillctl/pkg/presenter"
	"github.com/legout/skillctl/pkg/scaffold"
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new skill from the canonical template",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		description, _ := cmd.Flags().GetString("description")
		dependsOn, _ := cmd.Flags().GetStringSlice("depends-on")

		path, err := scaffold.Create(viper.GetString("root"), scaffold.Config{
			Name:        args[0],
			Description: description,
			DependsOn:   dependsOn,
		})
		if err != nil {
			presenter.Error(err, "Failed to create skill")
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Created %s", path))
	},
}

func init() {
	newCmd.Flags().StringP("description", "d", "", "One-line description of the skill (required)")
	newCmd.Flags().StringSlice("depends-on", nil, "Skills this skill depends on (repeatable)")
	newCmd.MarkFlagRequired("description")
}
