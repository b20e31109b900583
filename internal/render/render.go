// Package render produces the Go source of generated files.
package render

import (
	"bytes"
	"fmt"
	"go/token"
	"go/types"
	"io"

	"github.com/jhump/gopoet"
	"golang.org/x/tools/imports"
)

// Header is the first line of every generated file.
const Header = "// Code generated by stripgo. DO NOT EDIT."

// File is the content of one generated Go file.
type File struct {
	// Package is the name of the package the file belongs to.
	Package string
	// Path is the package's import path. Types from this package are not
	// qualified in the generated code.
	Path         string
	Enums        []Enum
	Constructors []Constructor
}

// Enum is a stripped enum: an int type with one constant per variant, plus
// a function that maps values of the source sum type to it.
type Enum struct {
	Name string
	// Source is the name of the sum type the enum was derived from.
	Source   string
	Variants []EnumVariant
	// Annotations are written, without the leading "@", to the type's doc
	// comment.
	Annotations []string
	// String adds a String method that returns the variant's name.
	String bool
	// Values adds a function that returns every constant, in order.
	Values bool
}

// EnumVariant is a constant of an Enum.
type EnumVariant struct {
	Const string
	// Name is the name of the variant type.
	Name string
	// PointerOnly is true if only the pointer type is a variant.
	PointerOnly bool
}

// Constructor is a function that returns a new struct value, with one
// parameter per field.
type Constructor struct {
	Func   string
	Type   types.Type
	Params []Param
	Fields []FieldInit
}

// Param is a function parameter.
type Param struct {
	Name string
	Type types.Type
}

// FieldInit initializes a struct field from a parameter.
type FieldInit struct {
	Field string
	Param string
}

var (
	intType    = gopoet.TypeNameForGoType(types.Typ[types.Int])
	boolType   = gopoet.TypeNameForGoType(types.Typ[types.Bool])
	stringType = gopoet.TypeNameForGoType(types.Typ[types.String])
	sprintf    = gopoet.NewPackage("fmt").Symbol("Sprintf")
)

// Source renders the given file and formats it. The filename is the base name
// of the output file.
func Source(filename string, f *File) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header + "\n\n")
	if err := gopoet.WriteGoFile(&buf, f.goFile(filename)); err != nil {
		return nil, fmt.Errorf("could not render %s: %w", filename, err)
	}
	src, err := imports.Process(filename, buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8})
	if err != nil {
		return nil, fmt.Errorf("generated invalid Go source for %s: %w", filename, err)
	}
	return src, nil
}

// Write renders the given file and writes it to w.
func Write(w io.Writer, filename string, f *File) error {
	src, err := Source(filename, f)
	if err != nil {
		return err
	}
	_, err = w.Write(src)
	return err
}

func (f *File) goFile(filename string) *gopoet.GoFile {
	file := gopoet.NewGoFile(filename, f.Path, f.Package)
	self := types.NewPackage(f.Path, f.Package)
	for _, e := range f.Enums {
		addEnum(file, self, e)
	}
	for _, c := range f.Constructors {
		addConstructor(file, c)
	}
	return file
}

// named returns a type declared in pkg, so that gopoet leaves it unqualified.
func named(pkg *types.Package, name string, underlying types.Type) *types.Named {
	return types.NewNamed(types.NewTypeName(token.NoPos, pkg, name, nil), underlying, nil)
}

func addEnum(file *gopoet.GoFile, self *types.Package, e Enum) {
	enumType := named(self, e.Name, types.Typ[types.Int])
	enumName := gopoet.TypeNameForGoType(enumType)
	source := gopoet.TypeNameForGoType(named(self, e.Source, types.NewInterfaceType(nil, nil)))

	doc := fmt.Sprintf("%s is the payload-free form of %s.", e.Name, e.Source)
	if len(e.Annotations) > 0 {
		doc += "\n"
		for _, a := range e.Annotations {
			doc += "\n@" + a
		}
	}
	spec := gopoet.NewTypeSpec(e.Name, intType)
	spec.SetComment(doc)
	file.AddType(spec)

	if len(e.Variants) > 0 {
		consts := make([]*gopoet.ConstSpec, len(e.Variants))
		for i, v := range e.Variants {
			consts[i] = gopoet.NewConst(v.Const)
			if i == 0 {
				consts[i].SetType(enumName)
				consts[i].Initialize("iota")
			}
		}
		file.AddElement(gopoet.NewConstDecl(consts...))
	}

	of := gopoet.NewFunc(e.Name + "Of")
	of.SetComment(fmt.Sprintf("%[1]sOf returns the %[1]s for the variant that v holds. It\n"+
		"returns false if v is nil or holds a variant that %[1]s leaves out.", e.Name))
	of.AddArg("v", source)
	of.AddResult("", enumName)
	of.AddResult("", boolType)
	if len(e.Variants) > 0 {
		of.Println("switch v.(type) {")
		for _, v := range e.Variants {
			if v.PointerOnly {
				of.Printlnf("case *%s:", v.Name)
			} else {
				of.Printlnf("case %s, *%s:", v.Name, v.Name)
			}
			of.Printlnf("return %s, true", v.Const)
		}
		of.Println("}")
	}
	of.Println("return 0, false")
	file.AddElement(of)

	if e.String {
		str := gopoet.NewMethod(gopoet.NewReceiverForType("v", spec), "String")
		str.SetComment("String returns the name of the variant.")
		str.AddResult("", stringType)
		if len(e.Variants) > 0 {
			str.Println("switch v {")
			for _, v := range e.Variants {
				str.Printlnf("case %s:", v.Const)
				str.Printlnf("return %q", v.Name)
			}
			str.Println("}")
		}
		str.Printlnf("return %s(%q, int(v))", sprintf, e.Name+"(%d)")
		file.AddElement(str)
	}

	if e.Values {
		values := gopoet.NewFunc(e.Name + "Values")
		values.SetComment(fmt.Sprintf("%[1]sValues returns every %[1]s, in order.", e.Name))
		values.AddResult("", gopoet.TypeNameForGoType(types.NewSlice(enumType)))
		values.Printlnf("return %s{", types.NewSlice(enumType))
		for _, v := range e.Variants {
			values.Printlnf("%s,", v.Const)
		}
		values.Println("}")
		file.AddElement(values)
	}
}

func addConstructor(file *gopoet.GoFile, c Constructor) {
	fn := gopoet.NewFunc(c.Func)
	fn.SetComment(fmt.Sprintf("%s returns a new %s.", c.Func, typeName(c.Type)))
	for _, p := range c.Params {
		fn.AddArg(p.Name, gopoet.TypeNameForGoType(p.Type))
	}
	fn.AddResult("", gopoet.TypeNameForGoType(c.Type))
	fn.Printlnf("return %s{", c.Type)
	for _, fi := range c.Fields {
		fn.Printlnf("%s: %s,", fi.Field, fi.Param)
	}
	fn.Println("}")
	file.AddElement(fn)
}

func typeName(t types.Type) string {
	if n, ok := t.(*types.Named); ok {
		return n.Obj().Name()
	}
	return types.TypeString(t, nil)
}
