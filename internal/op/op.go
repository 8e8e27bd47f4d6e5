// Package op defines the operation descriptors that make up a computation
// graph. A descriptor is a value: a name, positional arguments and keyword
// options, tagged with the kind that decides how the translator emits it.
package op

import (
	"maps"
	"reflect"
	"slices"

	"github.com/zclconf/go-cty/cty"
)

// Kind classifies an operation for translation. The set is closed: adding a
// new kind means adding a new emission rule to the translator, and the
// exhaustive switches there are the compile-time checklist for doing so.
type Kind int

const (
	// KindGeneric is a transformation that produces another graph node.
	KindGeneric Kind = iota
	// KindAction is a terminal action producing a native result handle.
	KindAction
	// KindSnapshot is a terminal action that also writes an output file.
	KindSnapshot
	// KindNonNative is an action that cannot run inside the compiled
	// workflow and is applied to a carried-over node after native execution.
	KindNonNative
)

// String returns the kind name for logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindAction:
		return "action"
	case KindSnapshot:
		return "snapshot"
	case KindNonNative:
		return "non-native"
	default:
		return "unknown"
	}
}

// Operation describes one requested call on a graph node. Descriptors are
// treated as immutable once they enter translation; the materializer works
// on clones so that a graph can be reused across partitions.
type Operation struct {
	Name   string
	Kind   Kind
	Args   []cty.Value
	Kwargs map[string]cty.Value
}

// Clone returns an independent copy of the operation. cty values are
// immutable, so copying the containers is sufficient.
func (o *Operation) Clone() *Operation {
	c := &Operation{
		Name: o.Name,
		Kind: o.Kind,
		Args: slices.Clone(o.Args),
	}
	if o.Kwargs != nil {
		c.Kwargs = maps.Clone(o.Kwargs)
	}
	return c
}

type lazyOptionsMarker struct{}

// lazyOptionsType is a one-value capsule type. Using a capsule instead of a
// reserved string means a genuine user argument equal to "lazy_options"
// still renders as a quoted literal.
var lazyOptionsType = cty.Capsule("lazy_options", reflect.TypeOf(lazyOptionsMarker{}))

// LazyOptions is the sentinel the materializer injects into a Snapshot's
// argument list. The translator renders it as the predeclared lazy-options
// identifier in the generated source.
var LazyOptions = cty.CapsuleVal(lazyOptionsType, &lazyOptionsMarker{})

// IsLazyOptions reports whether v is the lazy-options sentinel.
func IsLazyOptions(v cty.Value) bool {
	return v.Type().Equals(lazyOptionsType)
}
