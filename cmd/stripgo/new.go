package main

import (
	"fmt"
	"go/token"
	"go/types"
	"strconv"
	"unicode"

	"github.com/jhump/stripgo/internal/render"
	"github.com/jhump/stripgo/parser"
	"github.com/jhump/stripgo/processor"
)

const newAnnotation = "new"

// newProcessor writes a constructor for every struct annotated with @new. The
// constructor takes one parameter per field, in declaration order.
func newProcessor(ctx *processor.Context, output processor.OutputFactory) error {
	files := newOutputs(ctx, newSuffix)
	for _, ae := range ctx.ElementsAnnotatedWith(newAnnotation) {
		if ae.Generated() {
			continue
		}
		for _, a := range ae.Annotations {
			if a.Path.IsIdent(newAnnotation) && a.Shape != parser.ShapePath {
				return processor.NewErrorWithPosition(a.Pos,
					fmt.Errorf("expected path-style annotation (i.e. @%s), found %s-style annotation", newAnnotation, a.Shape))
			}
		}
		test := ae.InTestFile()
		f := files.get(test)
		c, err := constructorFor(ae)
		if err != nil {
			return err
		}
		if err := files.claim(c.Func, ae.Pos(), test); err != nil {
			return err
		}
		f.Constructors = append(f.Constructors, c)
	}
	return files.write(output)
}

func constructorFor(ae *processor.AnnotatedElement) (render.Constructor, error) {
	named, ok := ae.Obj.Type().(*types.Named)
	if ae.Obj.IsAlias() || !ok || named.TypeParams().Len() > 0 {
		return render.Constructor{}, processor.NewErrorWithPosition(ae.Pos(),
			fmt.Errorf("@%s can only be used on non-generic struct types", newAnnotation))
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return render.Constructor{}, processor.NewErrorWithPosition(ae.Pos(),
			fmt.Errorf("@%s can only be used on non-generic struct types", newAnnotation))
	}

	name := ae.Obj.Name()
	c := render.Constructor{Type: named}
	if token.IsExported(name) {
		c.Func = "New" + name
	} else {
		c.Func = "new" + upperFirst(name)
	}
	// a parameter must not shadow the type it is used to build
	used := map[string]bool{name: true}
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if field.Name() == "_" {
			continue
		}
		param := uniqueName(paramName(field.Name()), used)
		c.Params = append(c.Params, render.Param{Name: param, Type: field.Type()})
		c.Fields = append(c.Fields, render.FieldInit{Field: field.Name(), Param: param})
	}
	return c, nil
}

// paramName lower-cases the leading word of a field name: Name becomes name,
// URLPath becomes urlPath and ID becomes id. Keywords get a trailing
// underscore.
func paramName(field string) string {
	r := []rune(field)
	upper := 0
	for upper < len(r) && unicode.IsUpper(r[upper]) {
		upper++
	}
	if upper > 1 && upper < len(r) {
		// the last upper-case letter starts the next word
		upper--
	}
	for i := 0; i < upper; i++ {
		r[i] = unicode.ToLower(r[i])
	}
	res := string(r)
	if token.IsKeyword(res) {
		res += "_"
	}
	return res
}

func uniqueName(name string, used map[string]bool) string {
	res := name
	for i := 2; used[res]; i++ {
		res = name + strconv.Itoa(i)
	}
	used[res] = true
	return res
}

func upperFirst(s string) string {
	r := []rune(s)
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r)
}
