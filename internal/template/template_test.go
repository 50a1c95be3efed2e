package template

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/sourcemap"
)

func render(t *testing.T, src string, ctx *Context) string {
	t.Helper()
	tmpl, diags, err := Parse(src, sourcemap.FileID(0), 0)
	require.NoError(t, err)
	require.Empty(t, diags)
	doc, evalDiags := Evaluate(tmpl, ctx, Options{})
	require.Empty(t, evalDiags)
	return Render(doc)
}

func TestForLoopWithSeparator(t *testing.T) {
	ctx := NewContext(map[string]Value{
		"xs": ListValue([]Value{StringValue("a"), StringValue("b"), StringValue("c")}),
	})
	out := render(t, "$for(xs)$$it$$sep$, $endfor$", ctx)
	require.Equal(t, "a, b, c", out)
}

func TestConditionalTruthiness(t *testing.T) {
	cases := []struct {
		name   string
		v      Value
		want   string
		absent bool
	}{
		{"absent", NullValue, "F", true},
		{"null", NullValue, "F", false},
		{"false", BoolValue(false), "F", false},
		{"empty string", StringValue(""), "F", false},
		{"empty list", ListValue(nil), "F", false},
		{"empty map", MapValue(map[string]Value{}), "F", false},
		{"string false", StringValue("false"), "T", false},
		{"true", BoolValue(true), "T", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vars := map[string]Value{"x": tc.v}
			if tc.absent {
				vars = nil
			}
			ctx := NewContext(vars)
			out := render(t, "$if(x)$T$else$F$endif$", ctx)
			require.Equal(t, tc.want, out)
		})
	}
}

func TestVariableWithSeparator(t *testing.T) {
	ctx := NewContext(map[string]Value{
		"xs": ListValue([]Value{StringValue("a"), StringValue("b")}),
	})
	out := render(t, "$xs[, ]$", ctx)
	require.Equal(t, "a, b", out)
}

func TestBraceVariableForm(t *testing.T) {
	ctx := NewContext(map[string]Value{"title": StringValue("Hi")})
	out := render(t, "${title}", ctx)
	require.Equal(t, "Hi", out)
}

func TestCommentConsumesLine(t *testing.T) {
	out := render(t, "a$-- a comment\nb", NewContext(nil))
	require.Equal(t, "ab", out)
}

func TestDollarEscape(t *testing.T) {
	out := render(t, "$$5", NewContext(nil))
	require.Equal(t, "$5", out)
}

func TestMissingVariableStrictMode(t *testing.T) {
	tmpl, _, err := Parse("$missing$", sourcemap.FileID(0), 0)
	require.NoError(t, err)
	doc, diags := Evaluate(tmpl, NewContext(nil), Options{Strict: true})
	require.Equal(t, "", Render(doc))
	require.Len(t, diags, 1)
	require.Equal(t, "Q-10-2", diags[0].Code)
}
