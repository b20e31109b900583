package processor

import (
	"fmt"
	"go/types"
	"sort"

	"github.com/jhump/stripgo"
)

// SumType is a sum type declared in the context's package: a named interface
// with at least one method, along with the named types that implement it.
type SumType struct {
	Element *AnnotatedElement
	Named   *types.Named
	// Variants are in source order.
	Variants []*VariantType
}

// VariantType is a named type that implements a sum type.
type VariantType struct {
	Obj *types.TypeName
	// PointerOnly is true when only the pointer type implements the sum type.
	PointerOnly bool
	// Element is nil if the type has no annotations.
	Element *AnnotatedElement
}

// StripTarget is a declaration that asks for a stripped form.
type StripTarget struct {
	Element *AnnotatedElement
	Decl    *stripgo.SourceDeclaration
	// Sum is nil if the declaration is not a sum type.
	Sum *SumType
}

// StripTargets returns the declarations that ask for a stripped form, in
// source order. Declarations in generated files are skipped. Directives on a
// type that is neither a sum type nor a variant of one are logged as
// warnings.
func (c *Context) StripTargets() []StripTarget {
	var res []StripTarget
	for _, ae := range c.allElements {
		if ae.Generated() {
			continue
		}
		decl, sum := c.Declaration(ae)
		if stripgo.Requested(decl) {
			res = append(res, StripTarget{Element: ae, Decl: decl, Sum: sum})
			continue
		}
		for _, a := range ae.Annotations {
			if !a.Path.IsIdent(stripgo.DirectiveStripped) && !a.Path.IsIdent(stripgo.DirectiveStrippedMeta) {
				continue
			}
			if !c.isVariant(ae.Obj) {
				c.Logger.Warn(fmt.Sprintf("@%s has no effect: `%s` is neither a sum type nor a variant of one",
					a.Path, ae.Obj.Name()), "pos", a.Pos.String())
			}
			break
		}
	}
	return res
}

// Declaration maps the given element onto the declaration that stripgo.Strip
// accepts. If the element is a sum type, its variants are included and
// returned, too. Otherwise, the returned SumType is nil and the declaration
// has no variants.
func (c *Context) Declaration(ae *AnnotatedElement) (*stripgo.SourceDeclaration, *SumType) {
	decl := &stripgo.SourceDeclaration{
		Kind:        kindOf(ae.Obj),
		Identifier:  ae.Obj.Name(),
		Visibility:  stripgo.VisibilityOf(ae.Obj.Name()),
		Annotations: ae.Annotations,
		Pos:         ae.Pos(),
	}
	if decl.Kind != stripgo.KindEnum {
		return decl, nil
	}
	named := ae.Obj.Type().(*types.Named)
	st := &SumType{Element: ae, Named: named}
	for _, v := range c.variantsOf(named) {
		v.Element = c.AllElementsByObject[v.Obj]
		variant := stripgo.Variant{
			Identifier: v.Obj.Name(),
			Pos:        c.Package.Fset.Position(v.Obj.Pos()),
		}
		if v.Element != nil {
			variant.Annotations = v.Element.Annotations
		}
		decl.Variants = append(decl.Variants, variant)
		st.Variants = append(st.Variants, v)
	}
	return decl, st
}

func kindOf(obj *types.TypeName) stripgo.Kind {
	if obj.IsAlias() {
		return stripgo.KindOther
	}
	named, ok := obj.Type().(*types.Named)
	if !ok || named.TypeParams().Len() > 0 {
		return stripgo.KindOther
	}
	switch u := named.Underlying().(type) {
	case *types.Interface:
		if u.IsMethodSet() && u.NumMethods() > 0 {
			return stripgo.KindEnum
		}
	case *types.Struct:
		return stripgo.KindStruct
	}
	return stripgo.KindOther
}

// variantsOf returns the package-level named types of the context's package
// that implement the given interface, either directly or via their pointer
// type. Interfaces, aliases and generic types are never variants, and neither
// are types declared in generated files, such as an earlier run's enum.
func (c *Context) variantsOf(sum *types.Named) []*VariantType {
	iface := sum.Underlying().(*types.Interface)
	scope := c.Package.Types.Scope()
	var res []*VariantType
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() || c.generatedFiles[c.Package.Fset.File(tn.Pos())] {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || named == sum || named.TypeParams().Len() > 0 || types.IsInterface(named) {
			continue
		}
		switch {
		case types.Implements(named, iface):
			res = append(res, &VariantType{Obj: tn})
		case types.Implements(types.NewPointer(named), iface):
			res = append(res, &VariantType{Obj: tn, PointerOnly: true})
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Obj.Pos() < res[j].Obj.Pos()
	})
	return res
}

// isVariant returns true if the given type is a variant of any sum type in
// the context's package.
func (c *Context) isVariant(tn *types.TypeName) bool {
	named, ok := tn.Type().(*types.Named)
	if !ok || tn.IsAlias() || named.TypeParams().Len() > 0 || types.IsInterface(named) {
		return false
	}
	scope := c.Package.Types.Scope()
	for _, name := range scope.Names() {
		sum, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || kindOf(sum) != stripgo.KindEnum {
			continue
		}
		iface := sum.Type().Underlying().(*types.Interface)
		if types.Implements(named, iface) || types.Implements(types.NewPointer(named), iface) {
			return true
		}
	}
	return false
}
