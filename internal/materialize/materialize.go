// Package materialize rewrites operation descriptors just before
// translation. Policies are per-kind: terminal actions that support an
// eager/lazy switch are forced lazy so the whole graph can be evaluated in
// one batched pass, and Snapshot output paths get a partition suffix so
// concurrent partitions never collide on the same file.
package materialize

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nativeflow/internal/op"
)

// Apply returns the operation to translate for the given partition. The
// input descriptor is never mutated: policies that rewrite anything work on
// a clone, so the same graph can be reused across partitions.
func Apply(operation *op.Operation, partitionID int) (*op.Operation, error) {
	switch operation.Kind {
	case op.KindNonNative:
		return lazyNonNative(operation), nil
	case op.KindSnapshot:
		return partitionSnapshot(operation, partitionID)
	default:
		// Kinds without a rewrite policy pass through unchanged; the
		// translator's emission switch is the single place that rejects
		// unclassifiable operations.
		return operation, nil
	}
}

// lazyNonNative marks a non-native action lazy so it can be re-applied and
// triggered together with the rest of the graph after native execution.
func lazyNonNative(operation *op.Operation) *op.Operation {
	c := operation.Clone()
	if c.Kwargs == nil {
		c.Kwargs = make(map[string]cty.Value, 1)
	}
	c.Kwargs["lazy"] = cty.True
	return c
}

// partitionSnapshot rewrites a Snapshot for one partition: the output path
// gets a partition suffix before the extension, and the argument list is
// normalized to exactly four positionals (treename, path, column selector,
// options) with the options slot holding the lazy-options sentinel.
func partitionSnapshot(operation *op.Operation, partitionID int) (*op.Operation, error) {
	if len(operation.Args) < 2 {
		return nil, fmt.Errorf("materialize: %s needs a treename and an output path, got %d arguments", operation.Name, len(operation.Args))
	}
	tree := operation.Args[0]
	path := operation.Args[1]
	if tree.Type() != cty.String || path.Type() != cty.String {
		return nil, fmt.Errorf("materialize: %s treename and output path must be strings", operation.Name)
	}

	columns := cty.StringVal("")
	if len(operation.Args) >= 3 {
		columns = operation.Args[2]
	}

	c := operation.Clone()
	c.Args = []cty.Value{
		tree,
		cty.StringVal(PartitionPath(path.AsString(), partitionID)),
		columns,
		op.LazyOptions,
	}
	return c, nil
}

// PartitionPath inserts the partition id before the path's extension, e.g.
// "out.root" with partition 3 becomes "out_3.root". Paths without an
// extension get a plain suffix.
func PartitionPath(path string, partitionID int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), partitionID, ext)
}
