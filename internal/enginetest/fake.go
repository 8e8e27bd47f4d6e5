// Package enginetest provides fake implementations of the compiler/loader
// and native runtime boundaries for tests.
package enginetest

import (
	"context"
	"fmt"

	"github.com/vk/nativeflow/internal/engine"
	"github.com/vk/nativeflow/internal/op"
)

// FakeCompiler records every compile invocation and can be scripted to fail.
type FakeCompiler struct {
	Paths []string
	Err   error
}

// Compile implements artifact.Compiler.
func (c *FakeCompiler) Compile(_ context.Context, path string) error {
	c.Paths = append(c.Paths, path)
	return c.Err
}

// FakeHandle is a native result handle stand-in. Clones link back to their
// origin so tests can verify the engine copied handles out of the
// invocation before using them.
type FakeHandle struct {
	Name      string
	CloneOf   *FakeHandle
	Triggered bool
}

// Clone implements engine.Handle.
func (h *FakeHandle) Clone() engine.Handle {
	return &FakeHandle{Name: h.Name, CloneOf: h}
}

// FakeDeferred is a deferred non-native result. Materialize records that it
// ran and returns the scripted value.
type FakeDeferred struct {
	Value        any
	Err          error
	Materialized bool
}

// Materialize implements engine.Deferred.
func (d *FakeDeferred) Materialize(_ context.Context) (any, error) {
	d.Materialized = true
	return d.Value, d.Err
}

// AppliedAction records one Apply call on the fake runtime.
type AppliedAction struct {
	Node engine.NodeRef
	Op   *op.Operation
}

// FakeRuntime is a scriptable engine.Runtime. Invocations are returned from
// InvokeFunc; RunAll and Apply calls are recorded in order.
type FakeRuntime struct {
	InvokeFunc func(entryPoint string, root engine.NodeRef) (*engine.Invocation, error)

	InvokedEntryPoints []string
	RunAllCalls        [][]engine.Handle
	RunAllErr          error

	Applied  []AppliedAction
	Deferred []*FakeDeferred
	ApplyErr error
	// ApplyValue is returned by the deferred results created by Apply;
	// MaterializeErr makes those deferred results fail when forced.
	ApplyValue     any
	MaterializeErr error
}

// Invoke implements engine.Runtime.
func (r *FakeRuntime) Invoke(_ context.Context, entryPoint string, root engine.NodeRef) (*engine.Invocation, error) {
	r.InvokedEntryPoints = append(r.InvokedEntryPoints, entryPoint)
	if r.InvokeFunc == nil {
		return nil, fmt.Errorf("enginetest: no InvokeFunc scripted")
	}
	return r.InvokeFunc(entryPoint, root)
}

// RunAll implements engine.Runtime. It marks every fake handle as triggered.
func (r *FakeRuntime) RunAll(_ context.Context, handles []engine.Handle) error {
	r.RunAllCalls = append(r.RunAllCalls, handles)
	if r.RunAllErr != nil {
		return r.RunAllErr
	}
	for _, h := range handles {
		if fh, ok := h.(*FakeHandle); ok {
			fh.Triggered = true
		}
	}
	return nil
}

// Apply implements engine.Runtime.
func (r *FakeRuntime) Apply(_ context.Context, node engine.NodeRef, operation *op.Operation) (engine.Deferred, error) {
	r.Applied = append(r.Applied, AppliedAction{Node: node, Op: operation})
	if r.ApplyErr != nil {
		return nil, r.ApplyErr
	}
	d := &FakeDeferred{Value: r.ApplyValue, Err: r.MaterializeErr}
	r.Deferred = append(r.Deferred, d)
	return d, nil
}
