package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legout/skillctl/pkg/skill"
)

func skillsFromEdges(edges map[string][]string) map[string]*skill.Skill {
	skills := make(map[string]*skill.Skill, len(edges))
	for name, deps := range edges {
		skills[name] = &skill.Skill{Name: name, Description: name, DependsOn: deps}
	}
	return skills
}

func TestBuildAndNodes(t *testing.T) {
	g := Build(skillsFromEdges(map[string][]string{
		"c": {"a"},
		"a": nil,
		"b": {"@a"},
	}))

	assert.Equal(t, []string{"a", "b", "c"}, g.Nodes())
	assert.Equal(t, []string{"a"}, g.DependenciesOf("b"), "refs are normalized")
	assert.Equal(t, []string{"b", "c"}, g.Dependents("a"))
}

func TestUnknown(t *testing.T) {
	g := Build(skillsFromEdges(map[string][]string{
		"a": {"missing", "b"},
		"b": nil,
	}))

	unknown := g.Unknown()
	require.Len(t, unknown, 1)
	assert.Equal(t, []string{"missing"}, unknown["a"])
}

func TestCycles(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		g := Build(skillsFromEdges(map[string][]string{
			"a": nil,
			"b": {"a"},
			"c": {"a", "b"},
		}))
		assert.Empty(t, g.Cycles())
	})

	t.Run("self dependency", func(t *testing.T) {
		g := Build(skillsFromEdges(map[string][]string{
			"a": {"a"},
		}))
		cycles := g.Cycles()
		require.Len(t, cycles, 1)
		assert.Equal(t, []string{"a"}, cycles[0])
	})

	t.Run("two-node cycle", func(t *testing.T) {
		g := Build(skillsFromEdges(map[string][]string{
			"a": {"b"},
			"b": {"a"},
		}))
		cycles := g.Cycles()
		require.Len(t, cycles, 1)
		assert.Equal(t, []string{"a", "b"}, cycles[0])
	})

	t.Run("unknown refs do not produce cycles", func(t *testing.T) {
		g := Build(skillsFromEdges(map[string][]string{
			"a": {"missing"},
		}))
		assert.Empty(t, g.Cycles())
	})
}

func TestTopoSort(t *testing.T) {
	t.Run("dependency order", func(t *testing.T) {
		g := Build(skillsFromEdges(map[string][]string{
			"pipeline": {"storage", "compute"},
			"compute":  {"storage"},
			"storage":  nil,
			"docs":     nil,
		}))

		order, err := g.TopoSort()
		require.NoError(t, err)
		require.Len(t, order, 4)

		pos := make(map[string]int, len(order))
		for i, name := range order {
			pos[name] = i
		}
		assert.Less(t, pos["storage"], pos["compute"])
		assert.Less(t, pos["compute"], pos["pipeline"])
	})

	t.Run("deterministic", func(t *testing.T) {
		edges := map[string][]string{"a": nil, "b": nil, "c": nil}
		first, err := Build(skillsFromEdges(edges)).TopoSort()
		require.NoError(t, err)
		second, err := Build(skillsFromEdges(edges)).TopoSort()
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, []string{"a", "b", "c"}, first)
	})

	t.Run("cycle error", func(t *testing.T) {
		g := Build(skillsFromEdges(map[string][]string{
			"a": {"b"},
			"b": {"a"},
		}))
		_, err := g.TopoSort()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cycle")
	})

	t.Run("unknown deps do not block sorting", func(t *testing.T) {
		g := Build(skillsFromEdges(map[string][]string{
			"a": {"missing"},
		}))
		order, err := g.TopoSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, order)
	})
}

func TestDOT(t *testing.T) {
	g := Build(skillsFromEdges(map[string][]string{
		"a": nil,
		"b": {"a"},
	}))

	dot := g.DOT()
	assert.Contains(t, dot, "digraph skills {")
	assert.Contains(t, dot, `"a";`)
	assert.Contains(t, dot, `"b" -> "a";`)
}
