// Package workflow ties one translate→compile→execute cycle together. A
// Workflow owns its translation state for the duration of the cycle; the
// artifact cache it is handed outlives it and is shared by every cycle in
// the process.
package workflow

import (
	"context"

	"github.com/vk/nativeflow/internal/artifact"
	"github.com/vk/nativeflow/internal/ctxlog"
	"github.com/vk/nativeflow/internal/engine"
	"github.com/vk/nativeflow/internal/graph"
	"github.com/vk/nativeflow/internal/translate"
)

// Workflow is one compilation-and-execution cycle over a computation graph
// and a data partition.
type Workflow struct {
	partitionID int
	cache       *artifact.Cache
	compiler    artifact.Compiler
	prog        *translate.Program
}

// New translates the graph for the given partition. Translation happens
// eagerly so that a malformed graph fails before anything touches the
// compiler; the generated source is cached on the instance afterwards.
func New(g *graph.Graph, partitionID int, cache *artifact.Cache, compiler artifact.Compiler) (*Workflow, error) {
	prog, err := translate.Translate(g, partitionID)
	if err != nil {
		return nil, err
	}
	return &Workflow{
		partitionID: partitionID,
		cache:       cache,
		compiler:    compiler,
		prog:        prog,
	}, nil
}

// Source returns the full generated source text. Idempotent.
func (w *Workflow) Source() string {
	return w.prog.Source()
}

// Program exposes the translation side tables. Primarily for callers that
// emit without executing.
func (w *Workflow) Program() *translate.Program {
	return w.prog
}

// Compile resolves the artifact id for this workflow's source through the
// shared cache, compiling at most once per distinct source text per process.
func (w *Workflow) Compile(ctx context.Context) (int, error) {
	return w.cache.GetOrCompile(ctx, w.Source(), w.compiler)
}

// Execute compiles (or reuses) the artifact, invokes it with the given root
// node through the runtime and reconciles the results. It returns the
// ordered result list and the parallel result type names, one slot per
// action in the graph.
func (w *Workflow) Execute(ctx context.Context, rt engine.Runtime, root engine.NodeRef) ([]any, []string, error) {
	id, err := w.Compile(ctx)
	if err != nil {
		return nil, nil, err
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executing workflow artifact.", "artifactID", id, "partitionID", w.partitionID)

	return engine.Execute(ctx, rt, artifact.EntryPoint(id), root, w.prog)
}
