package main

import (
	"fmt"
	"go/token"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/jhump/stripgo"
	"github.com/jhump/stripgo/internal/render"
	"github.com/jhump/stripgo/parser"
	"github.com/jhump/stripgo/processor"
)

const (
	stripSuffix = "stripped"
	newSuffix   = "new"
)

func init() {
	processor.RegisterProcessor("strip", stripProcessor)
	processor.RegisterProcessor("new", newProcessor)
}

// logReporter logs warnings from stripgo.Strip.
func logReporter(logger *slog.Logger) stripgo.Reporter {
	return stripgo.ReporterFunc(func(pos token.Position, msg string) {
		logger.Warn(msg, "pos", pos.String())
	})
}

// stripProcessor writes the stripped enum of every eligible sum type in the
// package. Enums derived from declarations in test files go to a separate
// _test.go file.
func stripProcessor(ctx *processor.Context, output processor.OutputFactory) error {
	files := newOutputs(ctx, stripSuffix)
	reporter := logReporter(ctx.Logger)
	for _, target := range ctx.StripTargets() {
		out, err := stripgo.Strip(target.Decl, reporter)
		if err != nil {
			return err
		}
		test := target.Element.InTestFile()
		for _, v := range target.Sum.Variants {
			test = test || inTestFile(ctx, v.Obj.Pos())
		}
		f := files.get(test)
		enum := enumFor(ctx, target, out)
		for _, name := range enumNames(enum) {
			if err := files.claim(name, target.Decl.Pos, test); err != nil {
				return err
			}
		}
		f.Enums = append(f.Enums, enum)
		ctx.Logger.Debug("stripped sum type", "type", target.Decl.Identifier, "enum", out.Identifier,
			"variants", len(out.Variants))
	}
	return files.write(output)
}

func enumNames(e render.Enum) []string {
	names := []string{e.Name, e.Name + "Of"}
	if e.Values {
		names = append(names, e.Name+"Values")
	}
	for _, v := range e.Variants {
		names = append(names, v.Const)
	}
	return names
}

// enumFor describes the generated code for the given stripped declaration.
// Constants are named after the enum and the variant, like EventKindCreate.
func enumFor(ctx *processor.Context, target processor.StripTarget, out *stripgo.OutputDeclaration) render.Enum {
	enum := render.Enum{
		Name:   out.Identifier,
		Source: target.Decl.Identifier,
	}
	pointerOnly := map[string]bool{}
	for _, v := range target.Sum.Variants {
		pointerOnly[v.Obj.Name()] = v.PointerOnly
	}
	for _, name := range out.Variants {
		enum.Variants = append(enum.Variants, render.EnumVariant{
			Const:       out.Identifier + upperFirst(name),
			Name:        name,
			PointerOnly: pointerOnly[name],
		})
	}
	for _, a := range out.Annotations {
		enum.Annotations = append(enum.Annotations, a.String())
		if !a.Path.IsIdent("derive") || a.Shape != parser.ShapeList {
			continue
		}
		args, err := parser.ParseArgs(a.Args, a.End)
		if err != nil {
			// not ours to validate; it is still written to the doc comment
			ctx.Logger.Debug("derive arguments are not a plain list", "pos", err.Pos().String(), "error", err.Underlying())
			continue
		}
		for _, arg := range args {
			if arg.HasValue || arg.Key.PackageAlias != "" {
				continue
			}
			switch arg.Key.Name {
			case "String":
				enum.String = true
			case "Values":
				enum.Values = true
			}
		}
	}
	return enum
}

func inTestFile(ctx *processor.Context, pos token.Pos) bool {
	return isTestFile(ctx.Package.Fset.Position(pos).Filename)
}

func isTestFile(filename string) bool {
	return strings.HasSuffix(filename, "_test.go")
}

// outputs collects the generated code for one package: one file for regular
// sources and one for test files.
type outputs struct {
	ctx    *processor.Context
	suffix string
	files  [2]*render.File
	// declared maps generated names to the position of the declaration they
	// were derived from.
	declared map[string]token.Position
}

func newOutputs(ctx *processor.Context, suffix string) *outputs {
	return &outputs{ctx: ctx, suffix: suffix, declared: map[string]token.Position{}}
}

func (o *outputs) fileName(test bool) string {
	return o.ctx.OutputFileName(o.suffix, test)
}

func (o *outputs) get(test bool) *render.File {
	i := 0
	if test {
		i = 1
	}
	if o.files[i] == nil {
		o.files[i] = &render.File{
			Package: o.ctx.Package.Name,
			Path:    o.ctx.Package.PkgPath,
		}
	}
	return o.files[i]
}

// claim records that generated code declares the given package-level name.
// It fails if the name is already used, either by other generated code or by
// a declaration in the package, other than in a previously generated copy of
// the same file.
func (o *outputs) claim(name string, pos token.Position, test bool) error {
	if prev, ok := o.declared[name]; ok {
		return processor.NewErrorWithPosition(pos,
			fmt.Errorf("cannot generate %s: it is also generated for the declaration at %s", name, prev))
	}
	o.declared[name] = pos
	obj := o.ctx.Package.Types.Scope().Lookup(name)
	if obj == nil {
		return nil
	}
	declPos := o.ctx.Package.Fset.Position(obj.Pos())
	if filepath.Base(declPos.Filename) == o.fileName(test) {
		return nil
	}
	return processor.NewErrorWithPosition(pos,
		fmt.Errorf("cannot generate %s: the name is already declared at %s", name, declPos))
}

func (o *outputs) write(output processor.OutputFactory) error {
	for i, f := range o.files {
		if f == nil {
			continue
		}
		p := o.ctx.OutputPath(o.fileName(i == 1))
		w, err := output(p)
		if err != nil {
			return fmt.Errorf("could not create %s: %w", p, err)
		}
		err = render.Write(w, path.Base(p), f)
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		o.ctx.Logger.Info("wrote generated file", "path", p)
	}
	return nil
}
