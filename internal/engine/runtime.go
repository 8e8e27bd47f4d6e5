package engine

import (
	"context"

	"github.com/vk/nativeflow/internal/op"
)

// NodeRef identifies a native dataframe node owned by the runtime. The core
// never inspects it; it only carries it between the invocation and the
// deferred non-native actions applied to it.
type NodeRef any

// Handle is an opaque reference to a native deferred result.
type Handle interface {
	// Clone returns a host-owned copy. The handles returned by an
	// invocation live only as long as the invocation's native collections,
	// so the engine clones every handle before using it.
	Clone() Handle
}

// Deferred is a lazily evaluated non-native action result. Materialize
// forces the evaluation; without it the result may never run at all.
type Deferred interface {
	Materialize(ctx context.Context) (any, error)
}

// Invocation carries the three parallel collections returned by a compiled
// workflow entry point. Handles holds one entry per result slot, with nil
// marking non-native placeholder slots; TypeNames is index-aligned with
// Handles; CarryNodes holds one node per non-native action, in
// action-registration order.
type Invocation struct {
	Handles    []Handle
	TypeNames  []string
	CarryNodes []NodeRef
}

// Runtime is the boundary to the native execution engine. Implementations
// wrap the foreign-function bridge; the reconciliation engine drives them
// without knowing anything about the native side.
type Runtime interface {
	// Invoke calls a compiled artifact's entry point with the root node.
	Invoke(ctx context.Context, entryPoint string, root NodeRef) (*Invocation, error)

	// RunAll triggers one batched, synchronous evaluation of all given
	// handles. Implementations must release any interpreter-level lock they
	// hold for the duration, since evaluation runs on the native engine's
	// own worker threads.
	RunAll(ctx context.Context, handles []Handle) error

	// Apply applies a non-native action to a carried-over node and returns
	// its deferred result.
	Apply(ctx context.Context, node NodeRef, operation *op.Operation) (Deferred, error)
}
