package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/legout/skillctl/pkg/graph"
	"github.com/legout/skillctl/pkg/presenter"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Show the skill dependency graph",
	Long: `Show the dependency graph of all discovered skills in topological
order, or as Graphviz DOT with --dot.`,
	Run: func(cmd *cobra.Command, args []string) {
		dot, _ := cmd.Flags().GetBool("dot")

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

		g := graph.Build(skills)

		if dot {
			fmt.Print(g.DOT())
			return
		}

		order, err := g.TopoSort()
		if err != nil {
			presenter.Error(err, "Cannot order skills")
			for _, cycle := range g.Cycles() {
				presenter.Warning(fmt.Sprintf("cycle: %s", strings.Join(append(cycle, cycle[0]), " -> ")))
			}
			os.Exit(1)
		}

		for _, name := range order {
			deps := g.DependenciesOf(name)
			if len(deps) == 0 {
				fmt.Println(name)
				continue
			}
			fmt.Printf("%s (depends on: %s)\n", name, strings.Join(deps, ", "))
		}
	},
}

func init() {
	depsCmd.Flags().Bool("dot", false, "Emit the graph in Graphviz DOT format")
}
