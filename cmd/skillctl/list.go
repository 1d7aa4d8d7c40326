package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/legout/skillctl/pkg/presenter"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all skills in the repository",
	Run: func(cmd *cobra.Command, args []string) {
		discovery, err := newDiscovery()
		if err != nil {
			presenter.Error(err, "Invalid configuration")
			os.Exit(1)
		}

		skills, err := discovery.Discover()
		if err != nil {
			presenter.Error(err, "Failed to discover skills")
			os.Exit(1)
		}

		if len(skills) == 0 {
			presenter.Info("No skills found")
			return
		}

		names := make([]string, 0, len(skills))
		for name := range skills {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDIRECTORY\tDESCRIPTION")
		for _, name := range names {
			s := skills[name]
			rel, err := filepath.Rel(discovery.Root(), s.Directory)
			if err != nil {
				rel = s.Directory
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, rel, truncate(s.Description, 60))
		}
		w.Flush()
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
