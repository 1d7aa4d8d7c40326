// Package graph builds and analyzes the dependency graph declared by skill
// frontmatter. It resolves references, detects cycles, and produces a
// deterministic topological order for builds and reports.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/legout/skillctl/pkg/skill"
)

// Graph is a directed dependency graph of skills keyed by name. An edge
// from A to B means A depends on B.
type Graph struct {
	edges map[string][]string
	known map[string]bool
}

// Build constructs the graph from discovered skills. Edges to unknown
// skills are kept so Unknown can report them.
func Build(skills map[string]*skill.Skill) *Graph {
	g := &Graph{
		edges: make(map[string][]string, len(skills)),
		known: make(map[string]bool, len(skills)),
	}

	for name, s := range skills {
		g.known[name] = true
		deps := make([]string, 0, len(s.DependsOn))
		for _, ref := range s.DependsOn {
			deps = append(deps, skill.NormalizeRef(ref))
		}
		sort.Strings(deps)
		g.edges[name] = deps
	}

	return g
}

// Nodes returns the sorted names of all skills in the graph
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.edges))
	for name := range g.edges {
		nodes = append(nodes, name)
	}
	sort.Strings(nodes)
	return nodes
}

// DependenciesOf returns the sorted dependencies declared by a skill
func (g *Graph) DependenciesOf(name string) []string {
	return g.edges[name]
}

// Dependents returns the sorted names of skills that depend on the given skill
func (g *Graph) Dependents(name string) []string {
	var dependents []string
	for _, node := range g.Nodes() {
		for _, dep := range g.edges[node] {
			if dep == name {
				dependents = append(dependents, node)
				break
			}
		}
	}
	return dependents
}

// Unknown returns, per skill, the dependency references that do not
// resolve to any known skill
func (g *Graph) Unknown() map[string][]string {
	unknown := make(map[string][]string)
	for _, node := range g.Nodes() {
		for _, dep := range g.edges[node] {
			if !g.known[dep] {
				unknown[node] = append(unknown[node], dep)
			}
		}
	}
	return unknown
}

// Cycles returns every dependency cycle found in the graph. Each cycle is
// reported once, as the list of skill names along the cycle starting from
// its lexicographically smallest member.
func (g *Graph) Cycles() [][]string {
	const (
		white = iota // unvisited
		gray         // on the current DFS stack
		black        // fully explored
	)

	colors := make(map[string]int, len(g.edges))
	var stack []string
	var cycles [][]string
	seen := make(map[string]bool)

	var visit func(node string)
	visit = func(node string) {
		colors[node] = gray
		stack = append(stack, node)

		for _, dep := range g.edges[node] {
			if !g.known[dep] {
				continue
			}
			switch colors[dep] {
			case white:
				visit(dep)
			case gray:
				cycle := extractCycle(stack, dep)
				key := strings.Join(cycle, "→")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}

		stack = stack[:len(stack)-1]
		colors[node] = black
	}

	for _, node := range g.Nodes() {
		if colors[node] == white {
			visit(node)
		}
	}

	return cycles
}

// extractCycle slices the DFS stack from the first occurrence of start and
// rotates the result so it begins at its smallest member
func extractCycle(stack []string, start string) []string {
	idx := 0
	for i, node := range stack {
		if node == start {
			idx = i
			break
		}
	}
	cycle := append([]string(nil), stack[idx:]...)

	smallest := 0
	for i, node := range cycle {
		if node < cycle[smallest] {
			smallest = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[smallest:]...)
	rotated = append(rotated, cycle[:smallest]...)
	return rotated
}

// TopoSort returns the skills in dependency order: every skill appears
// after all of its known dependencies. The order is deterministic. An
// error is returned when the graph contains a cycle.
func (g *Graph) TopoSort() ([]string, error) {
	if cycles := g.Cycles(); len(cycles) > 0 {
		return nil, errors.Errorf("dependency cycle: %s", strings.Join(cycles[0], " -> "))
	}

	indegree := make(map[string]int, len(g.edges))
	dependents := make(map[string][]string, len(g.edges))
	for _, node := range g.Nodes() {
		if _, ok := indegree[node]; !ok {
			indegree[node] = 0
		}
		for _, dep := range g.edges[node] {
			if !g.known[dep] {
				continue
			}
			indegree[node]++
			dependents[dep] = append(dependents[dep], node)
		}
	}

	var ready []string
	for _, node := range g.Nodes() {
		if indegree[node] == 0 {
			ready = append(ready, node)
		}
	}

	order := make([]string, 0, len(g.edges))
	for len(ready) > 0 {
		sort.Strings(ready)
		node := ready[0]
		ready = ready[1:]
		order = append(order, node)

		for _, dependent := range dependents[node] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	return order, nil
}

// DOT renders the graph in Graphviz DOT format
func (g *Graph) DOT() string {
	var sb strings.Builder
	sb.WriteString("digraph skills {\n")
	sb.WriteString("  rankdir=LR;\n")

	for _, node := range g.Nodes() {
		fmt.Fprintf(&sb, "  %q;\n", node)
	}
	for _, node := range g.Nodes() {
		for _, dep := range g.edges[node] {
			fmt.Fprintf(&sb, "  %q -> %q;\n", node, dep)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}
