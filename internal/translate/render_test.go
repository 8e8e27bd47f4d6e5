package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nativeflow/internal/op"
)

func TestRenderValue(t *testing.T) {
	tests := []struct {
		name string
		in   cty.Value
		want string
	}{
		{"string is quoted", cty.StringVal("x > 0"), `"x > 0"`},
		{"sentinel renders bare", op.LazyOptions, "lazy_options"},
		// Only the sentinel capsule gets special treatment, not the token text.
		{"sentinel token text stays a string", cty.StringVal("lazy_options"), `"lazy_options"`},
		{"integer", cty.NumberIntVal(42), "42"},
		{"negative integer", cty.NumberIntVal(-1), "-1"},
		{"float", cty.NumberFloatVal(0.5), "0.5"},
		{"bool true", cty.True, "true"},
		{"bool false", cty.False, "false"},
		{
			"tuple of strings",
			cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}),
			`{"a","b"}`,
		},
		{
			"mixed tuple",
			cty.TupleVal([]cty.Value{cty.StringVal("hx"), cty.NumberIntVal(100), cty.NumberFloatVal(0.5)}),
			`{"hx",100,0.5}`,
		},
		{
			"list of numbers",
			cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}),
			"{1,2}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderValueUnsupported(t *testing.T) {
	_, err := renderValue(cty.ObjectVal(map[string]cty.Value{"a": cty.True}))
	assert.ErrorContains(t, err, "cannot render argument")
}

func TestRenderArgs(t *testing.T) {
	got, err := renderArgs([]cty.Value{
		cty.StringVal("t"),
		cty.StringVal("out_2.root"),
		cty.StringVal(""),
		op.LazyOptions,
	})
	require.NoError(t, err)
	assert.Equal(t, `"t", "out_2.root", "", lazy_options`, got)
}

func TestRenderArgsEmpty(t *testing.T) {
	got, err := renderArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}
