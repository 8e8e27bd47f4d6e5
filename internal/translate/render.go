package translate

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nativeflow/internal/op"
)

// renderArgs renders an argument list as it appears inside a generated call.
// Rendering is literal quoting only: argument values come from a trusted
// construction layer, never from arbitrary untrusted input.
func renderArgs(args []cty.Value) (string, error) {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		rendered, err := renderValue(arg)
		if err != nil {
			return "", err
		}
		b.WriteString(rendered)
	}
	return b.String(), nil
}

// renderValue renders one argument value as a C++ literal. Strings are
// quoted, tuples become brace-initialized literals, and the lazy-options
// sentinel renders as the predeclared identifier.
func renderValue(v cty.Value) (string, error) {
	if op.IsLazyOptions(v) {
		return "lazy_options", nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return `"` + v.AsString() + `"`, nil
	case ty == cty.Number:
		return v.AsBigFloat().Text('f', -1), nil
	case ty == cty.Bool:
		if v.True() {
			return "true", nil
		}
		return "false", nil
	case ty.IsTupleType() || ty.IsListType():
		var b strings.Builder
		b.WriteByte('{')
		first := true
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			rendered, err := renderValue(elem)
			if err != nil {
				return "", err
			}
			if !first {
				b.WriteByte(',')
			}
			b.WriteString(rendered)
			first = false
		}
		b.WriteByte('}')
		return b.String(), nil
	default:
		return "", fmt.Errorf("cannot render argument of type %s", ty.FriendlyName())
	}
}
