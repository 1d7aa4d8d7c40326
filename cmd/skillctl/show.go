package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/legout/skillctl/pkg/presenter"
)

var showCmd = &cobra.Command{
	Use:   "show <skill>",
	Short: "Show a skill's metadata and document body",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		discovery, err := newDiscovery()
		if err != nil {
			presenter.Error(err, "Invalid configuration")
			os.Exit(1)
		}

		s, err := discovery.GetSkill(args[0])
		if err != nil {
			presenter.Error(err, "Skill not found")
			os.Exit(1)
		}

		presenter.Section(s.Name)
		presenter.Info(fmt.Sprintf("Description: %s", s.Description))
		if len(s.DependsOn) > 0 {
			presenter.Info(fmt.Sprintf("Depends on:  %s", strings.Join(s.DependsOn, ", ")))
		}
		presenter.Info(fmt.Sprintf("Source:      %s", s.Path))
		presenter.Separator()
		fmt.Println(s.Content)
	},
}
