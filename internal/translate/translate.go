// Package translate turns a computation graph into the C++ source of a
// native workflow function. Each graph node becomes one statement; terminal
// actions additionally register their result handle and runtime type, and
// non-native actions register their parent node for later host-side
// application. The generated function returns those three collections as one
// aggregate.
package translate

import (
	"fmt"
	"strings"

	"github.com/vk/nativeflow/internal/graph"
	"github.com/vk/nativeflow/internal/materialize"
	"github.com/vk/nativeflow/internal/op"
)

const (
	// EntryName is the placeholder entry-point name in generated source.
	// The artifact cache suffixes it with the artifact id at compile time so
	// multiple artifacts coexist in one process's symbol space.
	EntryName = "__NATIVEFLOW_WORKFLOW_FUNCTION__"

	// Namespace encloses the generated function.
	Namespace = "NativeFlow_Internal"
)

// TranslationError reports an operation that reached the translator without
// a matching emission rule. This is a programming error in the construction
// layer and is never retried.
type TranslationError struct {
	OpName string
	Kind   op.Kind
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate: no emission rule for operation %q of kind %s", e.OpName, e.Kind)
}

// SnapshotEntry records a Snapshot's result slot, its logical tree name and
// its partition-rewritten output path for post-execution substitution.
type SnapshotEntry struct {
	Slot     int
	TreeName string
	Path     string
}

// DeferredEntry records a non-native action's reserved result slot together
// with the operation to re-apply to its carried-over node after native
// execution.
type DeferredEntry struct {
	Slot int
	Op   *op.Operation
}

// Program is the output of one translation pass: the per-node statement
// block plus the side tables the reconciliation engine needs. A Program is
// owned by a single cycle and is never shared.
type Program struct {
	Deferred  []DeferredEntry
	Snapshots []SnapshotEntry

	nodesCode string
	slots     int
	source    string
}

// Slots returns the number of result slots the generated function fills:
// one per terminal or non-native action, in insertion order.
func (p *Program) Slots() int {
	return p.slots
}

// Source assembles the full generated source. The result is cached, so
// repeated calls are idempotent and byte-identical.
func (p *Program) Source() string {
	if p.source == "" {
		p.source = fmt.Sprintf(sourceTemplate, Namespace, EntryName, p.nodesCode, Namespace)
	}
	return p.source
}

// Translate walks the graph in insertion order, skipping the root, and emits
// one statement per node. Operations are materialized for the partition
// before emission, so two translations of the same graph differ exactly
// where partition-dependent rewrites (Snapshot paths) apply.
func Translate(g *graph.Graph, partitionID int) (*Program, error) {
	t := &translator{partitionID: partitionID}

	for _, n := range g.Nodes()[1:] {
		operation, err := materialize.Apply(n.Op, partitionID)
		if err != nil {
			return nil, err
		}
		if err := t.emit(n, operation); err != nil {
			return nil, err
		}
	}

	return &Program{
		Deferred:  t.deferred,
		Snapshots: t.snapshots,
		nodesCode: t.b.String(),
		slots:     t.slot,
	}, nil
}

// translator accumulates the statement block and side tables for one pass.
type translator struct {
	partitionID int
	b           strings.Builder
	slot        int
	deferred    []DeferredEntry
	snapshots   []SnapshotEntry
}

func (t *translator) emit(n *graph.Node, operation *op.Operation) error {
	switch operation.Kind {
	case op.KindGeneric:
		return t.emitGeneric(n, operation)
	case op.KindAction:
		return t.emitAction(n, operation)
	case op.KindSnapshot:
		return t.emitSnapshot(n, operation)
	case op.KindNonNative:
		return t.emitNonNative(n, operation)
	default:
		return &TranslationError{OpName: operation.Name, Kind: operation.Kind}
	}
}

// emitGeneric defines the node from its parent. Every other rule builds on
// this statement shape.
func (t *translator) emitGeneric(n *graph.Node, operation *op.Operation) error {
	args, err := renderArgs(operation.Args)
	if err != nil {
		return fmt.Errorf("rendering arguments of %q: %w", operation.Name, err)
	}
	fmt.Fprintf(&t.b, "\n  auto node%d = node%d.%s%s(%s);",
		n.ID, n.ParentID, operation.Name, renderTemplateArgs(operation), args)
	return nil
}

// emitAction additionally stores the node's result handle and resolves its
// runtime type name. Type resolution failure is unrecoverable (it indicates
// a codegen/engine mismatch), so the generated code throws at first use
// rather than producing a malformed type list.
func (t *translator) emitAction(n *graph.Node, operation *op.Operation) error {
	if err := t.emitGeneric(n, operation); err != nil {
		return err
	}

	fmt.Fprintf(&t.b, "\n  result_handles.emplace_back(node%d);", n.ID)

	errMsg := fmt.Sprintf("Cannot get type of result %d of action %s in generated workflow", n.ID, operation.Name)
	fmt.Fprintf(&t.b,
		"\n  auto c%[1]d = TClass::GetClass(typeid(node%[1]d));"+
			"\n  if (c%[1]d == nullptr)"+
			"\n    throw std::runtime_error(\"%[2]s\");"+
			"\n  result_types.emplace_back(c%[1]d->GetName());",
		n.ID, errMsg)

	t.slot++
	return nil
}

// emitSnapshot records the slot, logical name and rewritten output path so
// the engine can substitute a file descriptor for the native handle, then
// follows the action rule.
func (t *translator) emitSnapshot(n *graph.Node, operation *op.Operation) error {
	t.snapshots = append(t.snapshots, SnapshotEntry{
		Slot:     t.slot,
		TreeName: operation.Args[0].AsString(),
		Path:     operation.Args[1].AsString(),
	})
	return t.emitAction(n, operation)
}

// emitNonNative does not create a native node or handle for the action
// itself. It records the parent node into the carry-over collection and
// appends placeholders to both result vectors so slot alignment is
// preserved.
func (t *translator) emitNonNative(n *graph.Node, operation *op.Operation) error {
	t.deferred = append(t.deferred, DeferredEntry{Slot: t.slot, Op: operation})

	fmt.Fprintf(&t.b, "\n  output_nodes.push_back(ROOT::RDF::AsRNode(node%d));", n.ParentID)
	t.b.WriteString(
		"\n  result_handles.emplace_back();" +
			"\n  result_types.emplace_back();")

	t.slot++
	return nil
}

// renderTemplateArgs is an extension point; no operation currently needs
// explicit template arguments.
func renderTemplateArgs(_ *op.Operation) string {
	return ""
}

const sourceTemplate = `
#include <tuple>
#include <utility>
#include <vector>
#include "ROOT/RDataFrame.hxx"
#include "ROOT/RDFHelpers.hxx"
#include "ROOT/RResultHandle.hxx"

namespace %s {

using WorkflowResult = std::tuple<std::vector<ROOT::RDF::RResultHandle>,
                       std::vector<std::string>,
                       std::vector<ROOT::RDF::RNode>>;

WorkflowResult %s(ROOT::RDF::RNode &node0)
{
  std::vector<ROOT::RDF::RResultHandle> result_handles;
  std::vector<std::string> result_types;
  std::vector<ROOT::RDF::RNode> output_nodes;

  // To make Snapshots lazy
  ROOT::RDF::RSnapshotOptions lazy_options;
  lazy_options.fLazy = true;
%s

  return { std::move(result_handles), std::move(result_types), std::move(output_nodes) };
}

} // namespace %s
`
