// Package processor runs annotation processors over Go packages.
//
// This package defines a function type, Processor, which is implemented by
// things that act on annotations:
//
//    func(ctx *processor.Context, output processor.OutputFactory) error
//
// Processing is generally expected to validate annotations and, optionally,
// generate code that is derived from them.
//
// If a processor returns an error, processing has failed and the error should
// indicate why. Errors should carry a source location, either as a
// *stripgo.Error or by using processor.NewErrorWithPosition, to aid users in
// resolving them.
//
// The OutputFactory passed to the processor is used to create generated
// files. A processor should use Context.OutputPath to compute the path to
// give it, which includes both the Go import path and the file name.
//
// Processor Registration
//
// Processors are registered by name with RegisterProcessor, usually from a
// package init function. AllRegisteredProcessors and LookupProcessors return
// them for use by command-line tools, such as the stripgo program in this
// repo.
//
// Processor Invocation
//
// The key type here is processor.Config. It defines the packages that will be
// processed, the processors that will be invoked, and the output factory
// (which controls where generated files are actually written). Its Execute
// method loads the packages with golang.org/x/tools/go/packages, including
// full type information, and then extracts annotations. Once annotations are
// extracted, they are passed to each configured processor, via the
// processor.Context, one package at a time.
//
// The Process and ProcessAll functions are shortcuts that create a
// processor.Config with typical settings and then execute it.
//
// Annotations
//
// Annotations are only recognized in the doc comments of top-level type
// declarations. They start at the first line of the comment whose text begins
// with "@" and run through the end of the comment:
//
//    // Event is something that happened to a file.
//    //
//    // @strip
//    // @stripped_meta(derive(String))
//    type Event interface {
//        isEvent()
//    }
//
// Their syntax is described in package github.com/jhump/stripgo/parser. Each
// annotated type becomes an AnnotatedElement of the package's Context.
//
// Sum Types
//
// Context.Declaration maps an annotated type onto a stripgo.SourceDeclaration.
// A named interface with at least one method is a sum type. Its variants are
// the named, non-interface types declared in the same package whose value or
// pointer type implements it, in source order. Context.StripTargets lists the
// declarations that ask for a stripped form, skipping generated files.
package processor
