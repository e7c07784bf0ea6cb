package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/controlapigen/internal/model"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "string", in: "a\"b", want: `"a\"b"`},
		{name: "bool", in: true, want: "true"},
		{name: "int", in: 42, want: "42"},
		{name: "float", in: 1.5, want: "1.5"},
		{name: "empty mapping", in: map[string]any{}, want: "{}"},
		{name: "empty sequence", in: []string{}, want: "[]"},
		{name: "nil sequence", in: []string(nil), want: "[]"},
		{
			name: "sorted keys",
			in:   map[string]any{"title": "string", "mode": "x", "onClick": "function"},
			want: "{\n    mode: \"x\",\n    onClick: \"function\",\n    title: \"string\"\n}",
		},
		{
			name: "sorted elements",
			in:   []string{"b", "c", "a"},
			want: "[\n    \"a\",\n    \"b\",\n    \"c\"\n]",
		},
		{
			name: "nested",
			in:   map[string]any{"Foo": map[string]any{"mode": []string{"B", "A"}}},
			want: "{\n    Foo: {\n        mode: [\n            \"A\",\n            \"B\"\n        ]\n    }\n}",
		},
		{
			name: "quoted keys",
			in:   map[string]any{"data-x": 1, "1a": 2, "$ok": 3},
			want: "{\n    $ok: 3,\n    \"1a\": 2,\n    \"data-x\": 1\n}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderUnsupported(t *testing.T) {
	for name, v := range map[string]any{
		"nil":          nil,
		"int keys":     map[int]string{1: "a"},
		"func":         func() {},
		"nested nil":   map[string]any{"a": nil},
		"nil pointer":  (*int)(nil),
		"channel elem": []any{make(chan int)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Render(v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedValue))
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	build := func(order []string) model.Catalog {
		cat := model.Catalog{}
		for _, n := range order {
			cat[n] = model.Control{
				"title": model.TypeName("string"),
				"mode":  model.EnumValues{"Z", "A", "M"},
				"onX":   model.EventSignature{},
			}
		}
		return cat
	}
	first, err := Render(build([]string{"A", "B", "C"}))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Render(build([]string{"C", "A", "B"}))
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
	assert.Less(t, strings.Index(first, `"A"`), strings.Index(first, `"M"`))
	assert.Less(t, strings.Index(first, `"M"`), strings.Index(first, `"Z"`))
}

func TestStatement(t *testing.T) {
	cat := model.Catalog{
		"Foo": model.Control{
			"title":   model.TypeName("string"),
			"onClick": model.EventSignature{},
			"mode":    model.EnumValues{"A", "B"},
		},
	}
	want := `var RawControlApis = {
    Foo: {
        mode: [
            "A",
            "B"
        ],
        onClick: "function",
        title: "string"
    }
};
`
	got, err := Statement("RawControlApis", cat)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Statement() mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, "RawControlApis", cat))
	assert.Equal(t, want, buf.String())

	empty, err := Statement("RawControlApis", model.Catalog{})
	require.NoError(t, err)
	assert.Equal(t, "var RawControlApis = {};\n", empty)
}

func TestMustRender(t *testing.T) {
	assert.Equal(t, `"x"`, MustRender("x"))
	assert.True(t, strings.HasPrefix(MustRender(nil), "<"))
}

func TestGoFile(t *testing.T) {
	cat := model.Catalog{
		"Foo": model.Control{
			"title":   model.TypeName("string"),
			"onClick": model.EventSignature{},
			"mode":    model.EnumValues{"B", "A"},
		},
		"Bar": model.Control{},
	}
	var buf bytes.Buffer
	require.NoError(t, GoFile("controls", "RawControlApis", cat).Render(&buf))
	src := buf.String()

	assert.Contains(t, src, "// Code generated by controlapigen. DO NOT EDIT.")
	assert.Contains(t, src, "package controls")
	assert.Contains(t, src, "var RawControlApis = map[string]map[string]interface{}{")
	assert.Regexp(t, `"onClick":\s+"function"`, src)
	assert.Regexp(t, `"title":\s+"string"`, src)
	assert.Contains(t, src, `[]string{"A", "B"}`)
	assert.Less(t, strings.Index(src, `"Bar"`), strings.Index(src, `"Foo"`))
}
