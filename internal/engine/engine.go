// Package engine executes a compiled workflow artifact and reconciles the
// native results with the results of actions that cannot run natively,
// returning one ordered result list with matching type metadata.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nativeflow/internal/ctxlog"
	"github.com/vk/nativeflow/internal/translate"
)

// SnapshotOutput replaces a Snapshot's native result handle after execution.
// Only the rewritten file reference matters to the caller; the handle itself
// is discarded.
type SnapshotOutput struct {
	TreeName string
	Paths    []string
}

// Execute invokes the artifact's entry point and reconciles its output into
// the final ordered result list. Slot i always corresponds to the i-th
// terminal or non-native action registered during translation; batched
// evaluation may reorder work internally but never which slot a result
// lands in. There is no partial-success mode: any failure unwinds the whole
// cycle.
func Execute(ctx context.Context, rt Runtime, entryPoint string, root NodeRef, prog *translate.Program) ([]any, []string, error) {
	logger := ctxlog.FromContext(ctx)

	inv, err := rt.Invoke(ctx, entryPoint, root)
	if err != nil {
		return nil, nil, fmt.Errorf("invoking workflow entry point %s: %w", entryPoint, err)
	}
	if len(inv.Handles) != prog.Slots() || len(inv.TypeNames) != prog.Slots() {
		return nil, nil, fmt.Errorf("workflow %s returned %d handles and %d types, want %d slots",
			entryPoint, len(inv.Handles), len(inv.TypeNames), prog.Slots())
	}
	if len(inv.CarryNodes) != len(prog.Deferred) {
		return nil, nil, fmt.Errorf("workflow %s carried over %d nodes, want %d",
			entryPoint, len(inv.CarryNodes), len(prog.Deferred))
	}

	// Copy every handle out of the invocation: the native collections'
	// lifetime is tied to the call.
	results := make([]any, prog.Slots())
	var native []Handle
	for i, h := range inv.Handles {
		if h == nil {
			continue // placeholder slot of a non-native action
		}
		c := h.Clone()
		results[i] = c
		native = append(native, c)
	}

	types := make([]string, prog.Slots())
	for i, raw := range inv.TypeNames {
		clean, err := stripResultType(raw)
		if err != nil {
			return nil, nil, err
		}
		types[i] = clean
	}

	// One merged trigger for every native action in the graph. This is the
	// payoff of forcing laziness at materialization time: the engine shares
	// the data-scanning cost across all of them.
	if len(native) > 0 {
		logger.Debug("Triggering batched evaluation of native actions.", "handles", len(native))
		if err := rt.RunAll(ctx, native); err != nil {
			return nil, nil, fmt.Errorf("evaluating workflow actions: %w", err)
		}
	}

	// Re-apply each non-native action to its carried-over node, forced lazy
	// again so materialization stays an explicit step.
	deferred := make([]Deferred, len(prog.Deferred))
	for i, entry := range prog.Deferred {
		lazy := entry.Op.Clone()
		if lazy.Kwargs == nil {
			lazy.Kwargs = make(map[string]cty.Value, 1)
		}
		lazy.Kwargs["lazy"] = cty.True

		d, err := rt.Apply(ctx, inv.CarryNodes[i], lazy)
		if err != nil {
			return nil, nil, fmt.Errorf("applying %s to carried-over node: %w", entry.Op.Name, err)
		}
		deferred[i] = d
		results[entry.Slot] = d
	}

	// A Snapshot's caller only needs the rewritten file reference.
	for _, s := range prog.Snapshots {
		results[s.Slot] = &SnapshotOutput{TreeName: s.TreeName, Paths: []string{s.Path}}
		types[s.Slot] = ""
	}

	// Force every deferred result: nothing else may ever observe it.
	for i, d := range deferred {
		v, err := d.Materialize(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("materializing %s result: %w", prog.Deferred[i].Op.Name, err)
		}
		results[prog.Deferred[i].Slot] = v
	}

	return results, types, nil
}

// stripResultType derives a clean type name from the native textual type by
// stripping the deferred-result wrapper, e.g.
// "ROOT::RDF::RResultPtr<double>" becomes "double". Empty input belongs to a
// non-native placeholder slot and stays empty; any other shape indicates a
// codegen/engine mismatch and is fatal.
func stripResultType(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	pos := strings.IndexByte(s, '<')
	if pos == -1 || !strings.HasSuffix(s, ">") {
		return "", fmt.Errorf("parsing workflow result type %q: no deferred-result wrapper", s)
	}
	return strings.TrimSpace(s[pos+1 : len(s)-1]), nil
}
