package hclgraph

import "github.com/hashicorp/hcl/v2"

// nodeBlock represents a `node` block from a workflow file. Each block is
// one graph node; blocks must appear in topological order, with `parent`
// naming an earlier block (or omitted for the root).
type nodeBlock struct {
	Name   string         `hcl:"name,label"`
	Op     string         `hcl:"op"`
	Parent string         `hcl:"parent,optional"`
	Args   hcl.Expression `hcl:"args,optional"`
	Kwargs hcl.Expression `hcl:"kwargs,optional"`
}

// workflowFile represents the top-level structure of a workflow file.
type workflowFile struct {
	Nodes []*nodeBlock `hcl:"node,block"`
}
