package extractor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/controlapigen/internal/model"
	"github.com/cmmoran/controlapigen/internal/printer"
)

const root = "WinJS.UI."

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func builtin(name string) *model.Declaration {
	return &model.Declaration{Kind: model.KindBuiltin, Name: name}
}

func ref(name string) *model.Declaration {
	return &model.Declaration{Kind: model.KindReference, Name: name}
}

func enumRef(name string) *model.Declaration {
	return &model.Declaration{Kind: model.KindEnum, Name: name}
}

func fn() *model.Declaration {
	return &model.Declaration{
		Kind:           model.KindObject,
		CallSignatures: []*model.Signature{{Returns: builtin("void")}},
	}
}

func object(role model.Role, props ...*model.Property) *model.Declaration {
	return &model.Declaration{Kind: model.KindObject, Role: role, Properties: props}
}

func prop(name string, t *model.Declaration) *model.Property {
	return &model.Property{Name: name, Type: t}
}

func class(env *model.Environment, qualified string, props ...*model.Property) *model.Declaration {
	d := object(model.RoleClass, props...)
	d.Name = qualified
	env.Decls[qualified] = d
	return d
}

func enum(env *model.Environment, qualified string, members ...string) {
	env.Decls[qualified] = &model.Declaration{Kind: model.KindEnum, Name: qualified}
	for _, m := range members {
		env.Enums[qualified] = append(env.Enums[qualified], qualified+"."+m)
	}
}

func newExtractor(events map[string]string, exclude ...string) *Extractor {
	return New(Options{
		Root:          root,
		ElementSuffix: "element",
		Exclude:       exclude,
		Events:        events,
		Logger:        discard,
	})
}

func TestExtract(t *testing.T) {
	env := model.NewEnvironment()
	enum(env, "WinJS.UI.Foo.Mode", "A", "B")
	class(env, "WinJS.UI.Foo",
		prop("title", builtin("string")),
		prop("onclick", fn()),
		prop("mode", enumRef("WinJS.UI.Foo.Mode")),
	)

	cat, err := newExtractor(map[string]string{"onclick": "onClick"}).Extract(env)
	require.NoError(t, err)

	want := model.Catalog{
		"Foo": model.Control{
			"title":   model.TypeName("string"),
			"onClick": model.EventSignature{},
			"mode":    model.EnumValues{"A", "B"},
		},
	}
	if diff := cmp.Diff(want, cat); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}

	out, err := printer.Render(cat)
	require.NoError(t, err)
	assert.Equal(t, `{
    Foo: {
        mode: [
            "A",
            "B"
        ],
        onClick: "function",
        title: "string"
    }
}`, out)
}

func TestExtractEmpty(t *testing.T) {
	env := model.NewEnvironment()
	class(env, "Other.Foo", prop("title", builtin("string")))

	cat, err := newExtractor(nil).Extract(env)
	require.NoError(t, err)
	assert.Empty(t, cat)

	out, err := printer.Render(cat)
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
}

func TestExtractUnknownEvent(t *testing.T) {
	env := model.NewEnvironment()
	class(env, "WinJS.UI.Bar",
		prop("title", builtin("string")),
		prop("onWhoosh", fn()),
	)

	cat, err := newExtractor(map[string]string{"onclick": "onClick"}).Extract(env)
	require.Error(t, err)
	assert.Nil(t, cat)
	assert.True(t, errors.Is(err, ErrUnknownEvents))
	assert.Contains(t, err.Error(), "onwhoosh")
	assert.Contains(t, err.Error(), "1 unknown event name,")
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestExtractUnknownEventsAggregated(t *testing.T) {
	env := model.NewEnvironment()
	class(env, "WinJS.UI.Bar", prop("onwhoosh", fn()))
	class(env, "WinJS.UI.Baz", prop("onZap", fn()), prop("onclick", fn()))

	_, err := newExtractor(map[string]string{"onclick": "onClick"}).Extract(env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEvents))
	assert.Contains(t, err.Error(), "2 unknown event names")
	assert.Contains(t, err.Error(), "  onwhoosh: onWhoosh")
	assert.Contains(t, err.Error(), "  onzap: onZap")
	assert.NotContains(t, err.Error(), "onclick")
}

func TestExtractSelection(t *testing.T) {
	env := model.NewEnvironment()
	class(env, "WinJS.UI.Flyout", prop("hidden", builtin("boolean")))
	class(env, "WinJS.UI.Repeater", prop("length", builtin("number")))
	class(env, "WinJS.UI.Pages.Page", prop("uri", builtin("string")))
	class(env, "WinJS.Binding.List", prop("length", builtin("number")))
	iface := object(model.RoleInterface, prop("x", builtin("number")))
	env.Decls["WinJS.UI.IThing"] = iface

	cat, err := newExtractor(nil, "WinJS.UI.Repeater").Extract(env)
	require.NoError(t, err)

	names := make([]string, 0, len(cat))
	for n := range cat {
		names = append(names, n)
	}
	assert.ElementsMatch(t, []string{"Flyout", "Page"}, names)
}

func TestExtractSkips(t *testing.T) {
	env := model.NewEnvironment()
	class(env, "WinJS.UI.Menu",
		prop("hostElement", ref("HTMLElement")),
		prop("anchorELEMENT", builtin("any")),
		prop("show", fn()),
		prop("commands", ref("Array")),
		prop("placement", builtin("string")),
	)

	cat, err := newExtractor(nil).Extract(env)
	require.NoError(t, err)
	want := model.Catalog{
		"Menu": model.Control{
			"commands":  model.TypeName("Array"),
			"placement": model.TypeName("string"),
		},
	}
	if diff := cmp.Diff(want, cat); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractEnumPrecedence(t *testing.T) {
	env := model.NewEnvironment()
	enum(env, "WinJS.UI.Foo.Mode", "A", "B")
	foo := class(env, "WinJS.UI.Foo", prop("mode", enumRef("WinJS.UI.Foo.Mode")))
	foo.Statics = object(model.RoleModule,
		prop("Mode", object(model.RoleInterface, prop("x", builtin("string")), prop("y", builtin("string")))),
	)

	cat, err := newExtractor(nil).Extract(env)
	require.NoError(t, err)
	assert.Equal(t, model.EnumValues{"A", "B"}, cat["Foo"]["mode"])
}

func TestExtractStringEnumConvention(t *testing.T) {
	env := model.NewEnvironment()
	sv := class(env, "WinJS.UI.SplitView",
		prop("closedDisplayMode", builtin("string")),
		prop("placement", builtin("string")),
	)
	sv.Statics = object(model.RoleModule,
		prop("ClosedDisplayMode", object(model.RoleInterface,
			prop("none", builtin("string")),
			prop("inline", builtin("string")),
		)),
	)

	cat, err := newExtractor(nil).Extract(env)
	require.NoError(t, err)
	assert.Equal(t, model.EnumValues{"none", "inline"}, cat["SplitView"]["closedDisplayMode"])
	assert.Equal(t, model.TypeName("string"), cat["SplitView"]["placement"])
}

func TestExtractUnknownShape(t *testing.T) {
	env := model.NewEnvironment()
	class(env, "WinJS.UI.Odd",
		prop("title", builtin("string")),
		prop("value", &model.Declaration{
			Kind:  model.KindUnion,
			Elems: []*model.Declaration{builtin("string"), builtin("number")},
		}),
	)

	_, err := newExtractor(nil).Extract(env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTypeShape))
	assert.Contains(t, err.Error(), "WinJS.UI.Odd.value")
	assert.Contains(t, err.Error(), `kind: "union"`)
}

func TestExtractEnumWithoutMembers(t *testing.T) {
	env := model.NewEnvironment()
	class(env, "WinJS.UI.Foo", prop("mode", enumRef("WinJS.UI.Foo.Missing")))

	_, err := newExtractor(nil).Extract(env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTypeShape))
}

func TestLookupStringEnum(t *testing.T) {
	env := model.NewEnvironment()
	values := object(model.RoleInterface, prop("small", builtin("string")), prop("large", builtin("string")))
	env.Decls["WinJS.UI.SizeValues"] = values

	withStatics := class(env, "WinJS.UI.Pane")
	withStatics.Statics = object(model.RoleModule,
		prop("Size", ref("WinJS.UI.SizeValues")),
		prop("Label", builtin("string")),
		prop("Empty", object(model.RoleInterface)),
	)
	class(env, "WinJS.UI.Plain")
	mod := object(model.RoleModule, prop("Kind", object(model.RoleInterface, prop("a", builtin("string")))))
	env.Decls["WinJS.UI.Helpers"] = mod

	tests := []struct {
		name     string
		control  string
		property string
		want     []string
		outcome  ConventionOutcome
	}{
		{name: "missing control", control: "WinJS.UI.Nope", property: "size", outcome: ConventionNoHelper},
		{name: "class without statics", control: "WinJS.UI.Plain", property: "size", outcome: ConventionNoHelper},
		{name: "no member", control: "WinJS.UI.Pane", property: "color", outcome: ConventionNoMember},
		{name: "member not object", control: "WinJS.UI.Pane", property: "label", outcome: ConventionNotObject},
		{name: "member without values", control: "WinJS.UI.Pane", property: "empty", outcome: ConventionNotObject},
		{name: "reference holder", control: "WinJS.UI.Pane", property: "size", want: []string{"small", "large"}, outcome: ConventionResolved},
		{name: "module helper", control: "WinJS.UI.Helpers", property: "kind", want: []string{"a"}, outcome: ConventionResolved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := LookupStringEnum(env, tt.control, tt.property)
			assert.Equal(t, tt.outcome, outcome, outcome.String())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventNormalizer(t *testing.T) {
	n := NewEventNormalizer(map[string]string{"onclick": "onClick"})

	got, ok := n.Normalize("onClick")
	assert.True(t, ok)
	assert.Equal(t, "onClick", got)
	require.NoError(t, n.Err())

	_, ok = n.Normalize("onBeforeShow")
	assert.False(t, ok)
	_, ok = n.Normalize("onbeforeshow")
	assert.False(t, ok)
	assert.Equal(t, []string{"onbeforeshow"}, n.Unknown())

	err := n.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEvents))
	assert.Contains(t, err.Error(), "  onbeforeshow: onBeforeshow")
}

func TestOptionsFreeze(t *testing.T) {
	r := Options{Root: "WinJS.UI", ElementSuffix: "Element", Exclude: []string{" WinJS.UI.X "}}.freeze()
	assert.Equal(t, "WinJS.UI.", r.root)
	assert.Equal(t, "element", r.elementSuffix)
	assert.Contains(t, r.exclude, "WinJS.UI.X")
	assert.NotNil(t, r.events)
}

func TestExtractCallableReference(t *testing.T) {
	env := model.NewEnvironment()
	handler := fn()
	handler.Role = model.RoleInterface
	handler.Name = "WinJS.UI.Handler"
	env.Decls["WinJS.UI.Handler"] = handler
	env.Decls["WinJS.UI.Options"] = object(model.RoleInterface, prop("x", builtin("number")))
	class(env, "WinJS.UI.Foo",
		prop("onclick", ref("WinJS.UI.Handler")),
		prop("callback", ref("WinJS.UI.Handler")),
		prop("options", ref("WinJS.UI.Options")),
	)

	cat, err := newExtractor(map[string]string{"onclick": "onClick"}).Extract(env)
	require.NoError(t, err)
	want := model.Catalog{
		"Foo": model.Control{
			"onClick": model.EventSignature{},
			"options": model.TypeName("WinJS.UI.Options"),
		},
	}
	if diff := cmp.Diff(want, cat); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}

	class(env, "WinJS.UI.Bar", prop("onwhoosh", ref("WinJS.UI.Handler")))
	_, err = newExtractor(map[string]string{"onclick": "onClick"}).Extract(env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEvents))
	assert.Contains(t, err.Error(), "onwhoosh")
}

func TestExtractNestedControlHelper(t *testing.T) {
	env := model.NewEnvironment()
	// a module at <root>.<short name> is not the helper of WinJS.UI.Pages.Page
	env.Decls["WinJS.UI.Page"] = object(model.RoleModule,
		prop("Kind", object(model.RoleInterface, prop("wrong", builtin("string")))),
	)
	page := class(env, "WinJS.UI.Pages.Page", prop("kind", builtin("string")))
	page.Statics = object(model.RoleModule,
		prop("Kind", object(model.RoleInterface, prop("right", builtin("string")))),
	)

	cat, err := newExtractor(nil).Extract(env)
	require.NoError(t, err)
	assert.Equal(t, model.EnumValues{"right"}, cat["Page"]["kind"])
}

func TestLookupStringEnumEnumHolder(t *testing.T) {
	env := model.NewEnvironment()
	enum(env, "WinJS.UI.AppBar.Placement", "top", "bottom")
	bar := class(env, "WinJS.UI.AppBar")
	bar.Statics = object(model.RoleModule,
		prop("Placement", enumRef("WinJS.UI.AppBar.Placement")),
		prop("Missing", enumRef("WinJS.UI.AppBar.Missing")),
	)

	got, outcome := LookupStringEnum(env, "WinJS.UI.AppBar", "placement")
	assert.Equal(t, ConventionResolved, outcome)
	assert.Equal(t, []string{"top", "bottom"}, got)

	got, outcome = LookupStringEnum(env, "WinJS.UI.AppBar", "missing")
	assert.Equal(t, ConventionNotObject, outcome)
	assert.Nil(t, got)
}
