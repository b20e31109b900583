package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotations(t *testing.T) {
	var input = `@strip
@stripped(ident = Bar)
@stripped_meta(derive(String, Values))
@doc = "hello" + "world"
@pkg.Thing(1, 2,
	3) @Other
@Unary(a = -1, b = !c)
`

	annos, err := ParseAnnotations("foo", strings.NewReader(input))
	require.Nil(t, err)
	require.Len(t, annos, 7)

	expected := []struct {
		shape Shape
		str   string
		line  int
	}{
		{ShapePath, "strip", 1},
		{ShapeList, "stripped(ident = Bar)", 2},
		{ShapeList, "stripped_meta(derive(String, Values))", 3},
		{ShapeNameValue, `doc = "hello" + "world"`, 4},
		{ShapeList, "pkg.Thing(1, 2, 3)", 5},
		{ShapePath, "Other", 6},
		{ShapeList, "Unary(a = -1, b = !c)", 7},
	}
	for i, exp := range expected {
		assert.Equal(t, exp.shape, annos[i].Shape, "annotation %d", i)
		assert.Equal(t, exp.str, annos[i].String(), "annotation %d", i)
		assert.Equal(t, exp.line, annos[i].Pos.Line, "annotation %d", i)
	}

	assert.Equal(t, "pkg", annos[4].Path.PackageAlias)
	assert.Equal(t, "Thing", annos[4].Path.Name)
	assert.False(t, annos[4].Path.IsIdent("Thing"))
	assert.True(t, annos[0].Path.IsIdent("strip"))
	assert.Equal(t, 1, annos[0].Pos.Column)
	assert.Equal(t, 2, annos[0].Path.Pos.Column)
	assert.Equal(t, 5, annos[5].Pos.Column)
}

func TestParseAnnotations_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		contains string
		line     int
		column   int
	}{
		{"unclosed list", "@stripped(ident = Bar", `expecting ")"`, 1, 22},
		{"mismatched closer", "@stripped(ident = [Bar)", `unexpected ")", expecting "]"`, 1, 23},
		{"missing path", "@ 123", "expecting identifier", 1, 3},
		{"text before annotation", "hello", `expecting "@"`, 1, 1},
		{"missing value", "@doc =", "expecting value", 1, 7},
		{"trailing junk", "@strip now", "expecting end-of-line", 1, 8},
		{"bad qualified path", "@pkg.(x)", "expecting identifier", 1, 6},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAnnotations("foo", strings.NewReader(tc.input))
			require.NotNil(t, err)
			assert.Contains(t, err.Error(), tc.contains)
			assert.Equal(t, tc.line, err.Pos().Line)
			assert.Equal(t, tc.column, err.Pos().Column)
		})
	}
}

func TestParseNested(t *testing.T) {
	parseOne := func(t *testing.T, input string) Annotation {
		annos, err := ParseAnnotations("foo", strings.NewReader(input))
		require.Nil(t, err)
		require.Len(t, annos, 1)
		return annos[0]
	}

	t.Run("list", func(t *testing.T) {
		outer := parseOne(t, "@stripped_meta(derive(Display))")
		nested, err := ParseNested(outer.Args, outer.End)
		require.Nil(t, err)
		assert.Equal(t, ShapeList, nested.Shape)
		assert.Equal(t, "derive(Display)", nested.String())
		assert.Equal(t, 16, nested.Pos.Column)
	})

	t.Run("name-value", func(t *testing.T) {
		outer := parseOne(t, `@stripped_meta(json = "kind")`)
		nested, err := ParseNested(outer.Args, outer.End)
		require.Nil(t, err)
		assert.Equal(t, ShapeNameValue, nested.Shape)
		assert.Equal(t, `json = "kind"`, nested.String())
	})

	t.Run("path", func(t *testing.T) {
		outer := parseOne(t, `@stripped_meta(pkg.Marker)`)
		nested, err := ParseNested(outer.Args, outer.End)
		require.Nil(t, err)
		assert.Equal(t, ShapePath, nested.Shape)
		assert.Equal(t, "pkg.Marker", nested.String())
	})

	t.Run("empty", func(t *testing.T) {
		outer := parseOne(t, "@stripped_meta()")
		_, err := ParseNested(outer.Args, outer.End)
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "found nothing")
		assert.Equal(t, 17, err.Pos().Column)
	})

	t.Run("two annotations", func(t *testing.T) {
		outer := parseOne(t, "@stripped_meta(derive(A), derive(B))")
		_, err := ParseNested(outer.Args, outer.End)
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), `unexpected ","`)
		assert.Equal(t, 25, err.Pos().Column)
	})

	t.Run("not an annotation", func(t *testing.T) {
		outer := parseOne(t, "@stripped_meta(123)")
		_, err := ParseNested(outer.Args, outer.End)
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "expecting identifier")
	})
}

func TestParseArgs(t *testing.T) {
	annos, perr := ParseAnnotations("foo", strings.NewReader("@stripped(ident = Bar, ignore, extra = f(a, b),)"))
	require.Nil(t, perr)
	args, err := ParseArgs(annos[0].Args, annos[0].End)
	require.Nil(t, err)
	require.Len(t, args, 3)

	assert.Equal(t, "ident", args[0].Key.Name)
	assert.True(t, args[0].HasValue)
	assert.Equal(t, "Bar", JoinTokens(args[0].Value))

	assert.Equal(t, "ignore", args[1].Key.Name)
	assert.False(t, args[1].HasValue)
	assert.Equal(t, 24, args[1].Pos().Column)

	assert.Equal(t, "extra", args[2].Key.Name)
	assert.Equal(t, "f(a, b)", JoinTokens(args[2].Value))

	annos, perr = ParseAnnotations("foo", strings.NewReader("@stripped(ident Bar)"))
	require.Nil(t, perr)
	_, err = ParseArgs(annos[0].Args, annos[0].End)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), `expecting "," or end of arguments`)

	annos, perr = ParseAnnotations("foo", strings.NewReader("@stripped(ident = )"))
	require.Nil(t, perr)
	_, err = ParseArgs(annos[0].Args, annos[0].End)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "expecting value")
	assert.Equal(t, 20, err.Pos().Column)
}
