package hclgraph_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nativeflow/internal/graph"
	"github.com/vk/nativeflow/internal/hclgraph"
	"github.com/vk/nativeflow/internal/op"
)

func writeWorkflow(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func load(t *testing.T, files map[string]string) (*graph.Graph, error) {
	t.Helper()
	dir := writeWorkflow(t, files)
	return hclgraph.NewLoader().Load(context.Background(), dir)
}

func TestLoad(t *testing.T) {
	g, err := load(t, map[string]string{
		"workflow.hcl": `
node "sel" {
  op   = "Filter"
  args = ["x > 0"]
}

node "total" {
  op     = "Sum"
  parent = "sel"
  args   = ["x"]
}
`,
	})
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())

	nodes := g.Nodes()
	assert.Nil(t, nodes[0].Op)

	sel := nodes[1]
	assert.Equal(t, "Filter", sel.Op.Name)
	assert.Equal(t, op.KindGeneric, sel.Op.Kind)
	assert.Equal(t, 0, sel.ParentID)
	require.Len(t, sel.Op.Args, 1)
	assert.Equal(t, cty.StringVal("x > 0"), sel.Op.Args[0])

	total := nodes[2]
	assert.Equal(t, "Sum", total.Op.Name)
	assert.Equal(t, op.KindAction, total.Op.Kind)
	assert.Equal(t, sel.ID, total.ParentID)
}

func TestLoadKinds(t *testing.T) {
	g, err := load(t, map[string]string{
		"workflow.hcl": `
node "snap" {
  op   = "Snapshot"
  args = ["t", "out.root"]
}

node "cols" {
  op     = "AsNumpy"
  args   = [["x", "y"]]
  kwargs = { lazy = false }
}
`,
	})
	require.NoError(t, err)

	nodes := g.Nodes()
	require.Equal(t, 3, g.Len())

	assert.Equal(t, op.KindSnapshot, nodes[1].Op.Kind)

	cols := nodes[2].Op
	assert.Equal(t, op.KindNonNative, cols.Kind)
	require.Len(t, cols.Args, 1)
	assert.True(t, cols.Args[0].Type().IsTupleType())
	require.Contains(t, cols.Kwargs, "lazy")
	assert.True(t, cols.Kwargs["lazy"].False())
}

func TestLoadMultipleFilesInSortedOrder(t *testing.T) {
	g, err := load(t, map[string]string{
		"01_transform.hcl": `
node "sel" {
  op   = "Filter"
  args = ["x > 0"]
}
`,
		"02_actions.hcl": `
node "total" {
  op     = "Sum"
  parent = "sel"
  args   = ["x"]
}
`,
	})
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())
	assert.Equal(t, "Sum", g.Nodes()[2].Op.Name)
}

func TestLoadSingleFilePath(t *testing.T) {
	dir := writeWorkflow(t, map[string]string{
		"workflow.hcl": `
node "count" {
  op = "Count"
}
`,
	})

	g, err := hclgraph.NewLoader().Load(context.Background(), filepath.Join(dir, "workflow.hcl"))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
}

func TestLoadErrors(t *testing.T) {
	t.Run("unknown operation", func(t *testing.T) {
		_, err := load(t, map[string]string{"w.hcl": `
node "bad" {
  op = "Frobnicate"
}
`})
		assert.ErrorContains(t, err, `unknown operation "Frobnicate"`)
	})

	t.Run("parent declared below", func(t *testing.T) {
		_, err := load(t, map[string]string{"w.hcl": `
node "total" {
  op     = "Sum"
  parent = "sel"
}

node "sel" {
  op = "Filter"
}
`})
		assert.ErrorContains(t, err, "not declared above it")
	})

	t.Run("duplicate node name", func(t *testing.T) {
		_, err := load(t, map[string]string{"w.hcl": `
node "sel" {
  op = "Filter"
}

node "sel" {
  op = "Filter"
}
`})
		assert.ErrorContains(t, err, `duplicate node name "sel"`)
	})

	t.Run("args not a list", func(t *testing.T) {
		_, err := load(t, map[string]string{"w.hcl": `
node "sel" {
  op   = "Filter"
  args = "x > 0"
}
`})
		assert.ErrorContains(t, err, "args must be a list")
	})

	t.Run("no workflow files", func(t *testing.T) {
		_, err := hclgraph.NewLoader().Load(context.Background(), t.TempDir())
		assert.ErrorContains(t, err, "no .hcl workflow files")
	})

	t.Run("malformed hcl", func(t *testing.T) {
		_, err := load(t, map[string]string{"w.hcl": `node "sel" {`})
		assert.ErrorContains(t, err, "parsing workflow file")
	})
}
