// Package hclgraph loads declarative workflow files into a computation
// graph. It is the concrete graph-construction harness for the CLI; library
// callers are free to build graphs programmatically instead.
package hclgraph

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nativeflow/internal/ctxlog"
	"github.com/vk/nativeflow/internal/fsutil"
	"github.com/vk/nativeflow/internal/graph"
	"github.com/vk/nativeflow/internal/op"
)

// Loader parses .hcl workflow files into a graph.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every .hcl file under path (a file or a directory) and builds
// the computation graph. Node blocks are consumed in file order, which
// fixes the graph's insertion (and therefore topological) order.
func (l *Loader) Load(ctx context.Context, path string) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("finding workflow files under %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl workflow files found under %s", path)
	}
	logger.Debug("Found workflow files.", "count", len(files))

	parser := hclparse.NewParser()
	var blocks []*nodeBlock
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing workflow file %s: %s", file, diags.Error())
		}

		var wf workflowFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &wf); diags.HasErrors() {
			return nil, fmt.Errorf("decoding workflow file %s: %s", file, diags.Error())
		}
		blocks = append(blocks, wf.Nodes...)
	}

	return l.build(ctx, blocks)
}

// build turns the ordered node blocks into a graph, validating names, kinds
// and parent references as it goes.
func (l *Loader) build(ctx context.Context, blocks []*nodeBlock) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)

	g := graph.New()
	ids := map[string]int{}

	for _, b := range blocks {
		if _, exists := ids[b.Name]; exists {
			return nil, fmt.Errorf("duplicate node name %q", b.Name)
		}

		kind, known := op.KindOf(b.Op)
		if !known {
			return nil, fmt.Errorf("node %q requests unknown operation %q", b.Name, b.Op)
		}

		parentID := 0
		if b.Parent != "" {
			id, ok := ids[b.Parent]
			if !ok {
				return nil, fmt.Errorf("node %q references parent %q, which is not declared above it", b.Name, b.Parent)
			}
			parentID = id
		}

		args, err := evalArgs(b.Args)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", b.Name, err)
		}
		kwargs, err := evalKwargs(b.Kwargs)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", b.Name, err)
		}

		node, err := g.Add(parentID, &op.Operation{
			Name:   b.Op,
			Kind:   kind,
			Args:   args,
			Kwargs: kwargs,
		})
		if err != nil {
			return nil, err
		}
		ids[b.Name] = node.ID
		logger.Debug("Added workflow node.", "name", b.Name, "op", b.Op, "id", node.ID, "parentID", parentID)
	}

	return g, nil
}

// evalArgs evaluates the `args` attribute into positional argument values.
func evalArgs(expr hcl.Expression) ([]cty.Value, error) {
	v, err := evalAttr(expr, "args")
	if err != nil || v == cty.NilVal {
		return nil, err
	}
	if !v.Type().IsTupleType() && !v.Type().IsListType() {
		return nil, fmt.Errorf("args must be a list, got %s", v.Type().FriendlyName())
	}

	var args []cty.Value
	for it := v.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		args = append(args, elem)
	}
	return args, nil
}

// evalKwargs evaluates the `kwargs` attribute into keyword options.
func evalKwargs(expr hcl.Expression) (map[string]cty.Value, error) {
	v, err := evalAttr(expr, "kwargs")
	if err != nil || v == cty.NilVal {
		return nil, err
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, fmt.Errorf("kwargs must be an object, got %s", v.Type().FriendlyName())
	}
	return v.AsValueMap(), nil
}

// evalAttr evaluates an optional attribute expression with no variables in
// scope. Workflow files are pure data; there is nothing to reference.
func evalAttr(expr hcl.Expression, name string) (cty.Value, error) {
	if expr == nil {
		return cty.NilVal, nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluating %s: %s", name, diags.Error())
	}
	if v.IsNull() {
		return cty.NilVal, nil
	}
	return v, nil
}
