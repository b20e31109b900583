package stripgo

import (
	"errors"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhump/stripgo/parser"
)

func annos(t *testing.T, text string) []parser.Annotation {
	t.Helper()
	if text == "" {
		return nil
	}
	res, err := parser.ParseAnnotations("test.go", strings.NewReader(text))
	require.Nil(t, err)
	return res
}

func sumType(t *testing.T, name string, typeAnnos string, variants ...string) *SourceDeclaration {
	t.Helper()
	src := &SourceDeclaration{
		Kind:        KindEnum,
		Identifier:  name,
		Visibility:  VisibilityOf(name),
		Annotations: annos(t, typeAnnos),
	}
	for _, v := range variants {
		// a variant is written "Name" or "Name: annotations"
		parts := strings.SplitN(v, ":", 2)
		variant := Variant{Identifier: strings.TrimSpace(parts[0])}
		if len(parts) == 2 {
			variant.Annotations = annos(t, strings.TrimSpace(parts[1]))
		}
		src.Variants = append(src.Variants, variant)
	}
	return src
}

type warnings []string

func (w *warnings) Warn(_ token.Position, msg string) {
	*w = append(*w, msg)
}

func TestStrip_Event(t *testing.T) {
	src := sumType(t, "Event", "@strip\n@stripped_meta(derive(Display))",
		"Create",
		"Delete",
		"Rename: @stripped(ignore)")

	out, err := Strip(src, nil)
	require.NoError(t, err)
	assert.Equal(t, "EventStripped", out.Identifier)
	assert.Equal(t, Exported, out.Visibility)
	assert.Equal(t, []string{"Create", "Delete"}, out.Variants)
	require.Len(t, out.Annotations, 1)
	assert.Equal(t, "derive(Display)", out.Annotations[0].String())
	assert.Equal(t, parser.ShapeList, out.Annotations[0].Shape)
}

func TestStrip_Identifier(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		annos    string
		expected string
	}{
		{"default", "Foo", "@strip", "FooStripped"},
		{"default unexported", "foo", "@strip", "fooStripped"},
		{"empty list", "Foo", "@stripped()", "FooStripped"},
		{"override", "Foo", "@stripped(ident = Bar)", "Bar"},
		{"first wins", "Foo", "@stripped(ident = Bar)\n@stripped(ident = Baz)", "Bar"},
		{"first without ident wins", "Foo", "@stripped()\n@stripped(ident = Baz)", "FooStripped"},
		{"other annotations ignored", "Foo", "@ident(Baz)\n@stripped(ident = Bar)\n@other = 1", "Bar"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Strip(sumType(t, tc.source, tc.annos, "A"), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out.Identifier)
		})
	}
}

func TestStrip_Visibility(t *testing.T) {
	src := sumType(t, "shape", "@stripped(ident = Kind)", "circle", "square")
	out, err := Strip(src, nil)
	require.NoError(t, err)
	// the visibility of the source is kept, even if the new name would suggest otherwise
	assert.Equal(t, Unexported, out.Visibility)
	assert.Equal(t, "Kind", out.Identifier)
}

func TestStrip_Variants(t *testing.T) {
	testCases := []struct {
		name     string
		variants []string
		expected []string
	}{
		{"all kept", []string{"A", "B", "C"}, []string{"A", "B", "C"}},
		{"middle ignored", []string{"A", "B: @stripped(ignore)", "C"}, []string{"A", "C"}},
		{"first and last ignored", []string{"A: @stripped(ignore)", "B", "C: @stripped(ignore)"}, []string{"B"}},
		{"ignore among other properties", []string{"A", "B: @stripped()\n@stripped(ignore)"}, []string{"A"}},
		{"inert annotations", []string{"A: @deprecated", "B: @ignore"}, []string{"A", "B"}},
		{"all ignored", []string{"A: @stripped(ignore)", "B: @stripped(ignore)"}, []string{}},
		{"no variants", nil, []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Strip(sumType(t, "Foo", "@strip", tc.variants...), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out.Variants)
		})
	}
}

func TestStrip_Metadata(t *testing.T) {
	src := sumType(t, "Foo", `@stripped_meta(derive(String, Values))
@doc = "not copied"
@stripped_meta(json = "kind")
@stripped(ident = FooKind)
@stripped_meta(pkg.Marker)`, "A")

	out, err := Strip(src, nil)
	require.NoError(t, err)
	var strs []string
	for _, a := range out.Annotations {
		strs = append(strs, a.String())
	}
	assert.Equal(t, []string{"derive(String, Values)", `json = "kind"`, "pkg.Marker"}, strs)

	out, err = Strip(sumType(t, "Foo", "@strip", "A"), nil)
	require.NoError(t, err)
	assert.Empty(t, out.Annotations)

	// identical lines are not merged
	src = sumType(t, "Foo", "@stripped_meta(derive(String))\n@stripped_meta(json = \"kind\")\n@stripped_meta(derive(String))", "A")
	out, err = Strip(src, nil)
	require.NoError(t, err)
	strs = nil
	for _, a := range out.Annotations {
		strs = append(strs, a.String())
	}
	assert.Equal(t, []string{"derive(String)", `json = "kind"`, "derive(String)"}, strs)
	require.Len(t, out.Annotations, 3)
	assert.Equal(t, 1, out.Annotations[0].Pos.Line)
	assert.Equal(t, 3, out.Annotations[2].Pos.Line)
}

func TestStrip_DoesNotModifySource(t *testing.T) {
	src := sumType(t, "Foo", "@stripped(ident = Bar)\n@stripped_meta(derive(String))\n@doc = 1",
		"A", "B: @stripped(ignore)\n@deprecated")
	before := sumType(t, "Foo", "@stripped(ident = Bar)\n@stripped_meta(derive(String))\n@doc = 1",
		"A", "B: @stripped(ignore)\n@deprecated")

	_, err := Strip(src, nil)
	require.NoError(t, err)
	assert.Equal(t, before, src)
}

func TestStrip_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		src      func(t *testing.T) *SourceDeclaration
		kind     ErrorKind
		contains string
		line     int
		column   int
	}{
		{
			name: "struct",
			src: func(t *testing.T) *SourceDeclaration {
				src := sumType(t, "Point", "@stripped(bogus)")
				src.Kind = KindStruct
				src.Pos = token.Position{Filename: "test.go", Line: 10, Column: 6}
				return src
			},
			kind:     UnsupportedTarget,
			contains: "`Point` is a struct",
			line:     10,
			column:   6,
		},
		{
			name: "other",
			src: func(t *testing.T) *SourceDeclaration {
				src := sumType(t, "Count", "@strip")
				src.Kind = KindOther
				return src
			},
			kind:     UnsupportedTarget,
			contains: "only sum types can be stripped",
		},
		{
			name:     "path-style stripped",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@stripped", "A") },
			kind:     MalformedDirective,
			contains: "found path-style annotation",
			line:     1,
			column:   1,
		},
		{
			name:     "name-value stripped",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", `@stripped = "Bar"`, "A") },
			kind:     MalformedDirective,
			contains: "found name-value-style annotation",
			line:     1,
			column:   1,
		},
		{
			name:     "unsupported property",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@strip\n@stripped(name = Bar)", "A") },
			kind:     UnsupportedProperty,
			contains: "unsupported property `name`",
			line:     2,
			column:   11,
		},
		{
			name:     "ident without value",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@stripped(ident)", "A") },
			kind:     MalformedDirective,
			contains: "requires a value",
			line:     1,
			column:   11,
		},
		{
			name:     "ident not an identifier",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@stripped(ident = 123)", "A") },
			kind:     MalformedDirective,
			contains: "expected identifier, found 123",
			line:     1,
			column:   19,
		},
		{
			name:     "ident is a string",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", `@stripped(ident = "Bar")`, "A") },
			kind:     MalformedDirective,
			contains: `expected identifier, found "Bar"`,
		},
		{
			name:     "ident is a keyword",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@stripped(ident = type)", "A") },
			kind:     MalformedDirective,
			contains: "expected identifier",
		},
		{
			name:     "ident is more than one token",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@stripped(ident = pkg.Bar)", "A") },
			kind:     MalformedDirective,
			contains: "expected identifier, found pkg.Bar",
		},
		{
			name:     "broken arguments",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@stripped(ident Bar)", "A") },
			kind:     MalformedDirective,
			contains: "failed to parse annotation",
		},
		{
			name:     "empty metadata",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@stripped_meta()", "A") },
			kind:     InvalidMetadata,
			contains: "failed to parse specified metadata",
			line:     1,
			column:   17,
		},
		{
			name:     "two metadata items",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@stripped_meta(a, b)", "A") },
			kind:     InvalidMetadata,
			contains: "failed to parse specified metadata",
		},
		{
			name:     "metadata not an annotation",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", `@stripped_meta("derive")`, "A") },
			kind:     InvalidMetadata,
			contains: "expecting identifier",
		},
		{
			name:     "path-style metadata",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@stripped_meta", "A") },
			kind:     MalformedDirective,
			contains: "expected list-style annotation (i.e. @stripped_meta(...))",
		},
		{
			name:     "variant with unsupported property",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@strip", "A", "B: @stripped(skip)") },
			kind:     UnsupportedProperty,
			contains: "unsupported property `skip`",
			line:     1,
			column:   11,
		},
		{
			name:     "variant ignore with value",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@strip", "A: @stripped(ignore = true)") },
			kind:     MalformedDirective,
			contains: "does not take a value",
			line:     1,
			column:   20,
		},
		{
			name:     "variant path-style stripped",
			src:      func(t *testing.T) *SourceDeclaration { return sumType(t, "Foo", "@strip", "A: @stripped") },
			kind:     MalformedDirective,
			contains: "expected list-style annotation",
		},
		{
			name: "type errors before variant errors",
			src: func(t *testing.T) *SourceDeclaration {
				return sumType(t, "Foo", "@stripped(bogus)", "A: @stripped(other)")
			},
			kind:     UnsupportedProperty,
			contains: "`bogus`",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Strip(tc.src(t), nil)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, tc.kind), "expected %v, got %v", tc.kind, err)
			var stripErr *Error
			require.True(t, errors.As(err, &stripErr))
			assert.Equal(t, tc.kind, stripErr.Kind)
			assert.Contains(t, stripErr.Msg, tc.contains)
			assert.NotEmpty(t, stripErr.Help)
			if tc.line != 0 {
				assert.Equal(t, tc.line, stripErr.Pos.Line)
				assert.Equal(t, tc.column, stripErr.Pos.Column)
			}
		})
	}
}

func TestStrip_Warnings(t *testing.T) {
	testCases := []struct {
		name       string
		typeAnnos  string
		variants   []string
		identifier string
		selected   []string
		warnings   []string
	}{
		{
			name:       "no warnings",
			typeAnnos:  "@stripped(ident = Bar)",
			variants:   []string{"A", "B: @stripped(ignore)"},
			identifier: "Bar",
			selected:   []string{"A"},
		},
		{
			name:       "ignore on the type",
			typeAnnos:  "@stripped(ignore)",
			variants:   []string{"A", "B"},
			identifier: "FooStripped",
			selected:   []string{"A", "B"},
			warnings:   []string{"property `ignore` has no effect on a sum type"},
		},
		{
			name:       "ident on a variant",
			typeAnnos:  "@strip",
			variants:   []string{"A: @stripped(ident = Other)", "B"},
			identifier: "FooStripped",
			selected:   []string{"A", "B"},
			warnings:   []string{"property `ident` has no effect on a variant"},
		},
		{
			name:       "metadata on a variant",
			typeAnnos:  "@strip",
			variants:   []string{"A: @stripped_meta(derive(String))", "B: @stripped_meta"},
			identifier: "FooStripped",
			selected:   []string{"A", "B"},
			warnings:   []string{"@stripped_meta has no effect on variants", "@stripped_meta has no effect on variants"},
		},
		{
			name:       "repeated stripped",
			typeAnnos:  "@stripped(ident = Bar)\n@stripped(ident = Baz)",
			variants:   []string{"A"},
			identifier: "Bar",
			selected:   []string{"A"},
			warnings:   []string{"only the first @stripped on a type is used"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var w warnings
			out, err := Strip(sumType(t, "Foo", tc.typeAnnos, tc.variants...), &w)
			require.NoError(t, err)
			assert.Equal(t, tc.identifier, out.Identifier)
			assert.Equal(t, tc.selected, out.Variants)
			require.Len(t, w, len(tc.warnings))
			for i := range tc.warnings {
				assert.Contains(t, w[i], tc.warnings[i])
			}
		})
	}
}

func TestError(t *testing.T) {
	src := sumType(t, "Foo", "@stripped(name = Bar)", "A")
	_, err := Strip(src, nil)
	require.Error(t, err)
	assert.Equal(t, "test.go:1:11: unsupported property `name`\n\thelp: "+strippedHelp, err.Error())

	err = &Error{Kind: UnsupportedTarget, Msg: "no position"}
	assert.Equal(t, "no position", err.Error())
	assert.False(t, errors.Is(err, MalformedDirective))
	assert.Equal(t, "unsupported target", UnsupportedTarget.Error())
}

func TestParseDirective(t *testing.T) {
	a := annos(t, "@stripped(ident = Bar, ignore)\n@stripped_meta(derive(String))\n@strip")

	d, err := ParseDirective(a[0], TypeScope)
	require.NoError(t, err)
	s, ok := d.(*Stripped)
	require.True(t, ok)
	assert.Equal(t, "Bar", s.Ident)
	assert.True(t, s.Ignore)
	assert.Equal(t, 19, s.IdentPos.Column)
	assert.Equal(t, a[0].Pos, s.Position())

	d, err = ParseDirective(a[1], TypeScope)
	require.NoError(t, err)
	m, ok := d.(*StrippedMeta)
	require.True(t, ok)
	assert.Equal(t, "derive(String)", m.Nested.String())

	// not a directive on variants
	d, err = ParseDirective(a[1], VariantScope)
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDirective(a[2], TypeScope)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestRequested(t *testing.T) {
	testCases := []struct {
		name     string
		kind     Kind
		annos    string
		expected bool
	}{
		{"trigger", KindEnum, "@strip", true},
		{"trigger on struct", KindStruct, "@strip", true},
		{"directive on sum type", KindEnum, "@stripped(ident = Bar)", true},
		{"metadata on sum type", KindEnum, "@stripped_meta(derive(String))", true},
		{"directive on variant", KindStruct, "@stripped(ignore)", false},
		{"other annotations", KindEnum, "@new\n@pkg.strip", false},
		{"no annotations", KindEnum, "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := &SourceDeclaration{Kind: tc.kind, Identifier: "Foo", Annotations: annos(t, tc.annos)}
			assert.Equal(t, tc.expected, Requested(src))
		})
	}
}
