package processor

import (
	"bytes"
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"text/scanner"

	"golang.org/x/tools/go/packages"

	stripgolog "github.com/jhump/stripgo/internal/log"
	"github.com/jhump/stripgo/parser"
)

// ErrorWithPosition is an error that has source position information associated
// with it. The position indicates the location in a source file where the error
// was encountered.
type ErrorWithPosition struct {
	err error
	pos token.Position
}

// Error implements the error interface. It includes position information in the
// returned message.
func (e *ErrorWithPosition) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.pos.Filename, e.pos.Line, e.pos.Column, e.err.Error())
}

// Underlying returns the underlying error.
func (e *ErrorWithPosition) Underlying() error {
	return e.err
}

// Unwrap returns the underlying error, so that errors.Is and errors.As can see
// through the position information.
func (e *ErrorWithPosition) Unwrap() error {
	return e.err
}

// Pos returns the location in source where the underlying error was
// encountered.
func (e *ErrorWithPosition) Pos() token.Position {
	return e.pos
}

// NewErrorWithPosition returns the given error, but associates it with the
// given source code location.
func NewErrorWithPosition(pos token.Position, err error) *ErrorWithPosition {
	return &ErrorWithPosition{err: err, pos: pos}
}

// OutputFactory is a function that creates a writer to an output for the
// given location. The path is the import path of the package, followed by a
// slash and the file name. Output factories typically use os.OpenFile to
// create files but this function allows the behavior to be customized.
type OutputFactory func(path string) (io.WriteCloser, error)

// Processor is a function that acts on annotations and is invoked from the
// stripgo tool. Typical processor implementations generate code based on the
// annotations present in source.
type Processor func(ctx *Context, output OutputFactory) error

// ProcessAll invokes all registered Processor instances to process the
// packages that match the given patterns. If the given outputDir is blank,
// output is written to the directory that contains the sources for a
// particular package.
func ProcessAll(ctx context.Context, patterns []string, includeTests bool, outputDir string) error {
	return Process(ctx, patterns, includeTests, outputDir, AllRegisteredProcessors()...)
}

// Process invokes the given processors to process the packages that match the
// given patterns.
func Process(ctx context.Context, patterns []string, includeTests bool, outputDir string, procs ...Processor) error {
	cfg := Config{
		Patterns:      patterns,
		Tests:         includeTests,
		Processors:    procs,
		OutputFactory: DefaultOutputFactory(outputDir),
	}
	return cfg.Execute(ctx)
}

// DefaultOutputFactory returns the default OutputFactory used by Process and
// ProcessAll. If the given rootDir is blank, files are written to the
// directory that holds the package's sources. Otherwise, the full path will be
// <rootDir>/<import path>/<file name>.
//
// After computing the destination path, os.OpenFile is used to open the file
// for writing (creating the file if necessary, truncating it if it already
// exists).
func DefaultOutputFactory(rootDir string) OutputFactory {
	return func(p string) (io.WriteCloser, error) {
		dest, err := determineOutputDir(rootDir, path.Dir(p))
		if err != nil {
			return nil, err
		}
		dest = filepath.Join(dest, path.Base(p))
		return os.OpenFile(dest, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0666)
	}
}

func determineOutputDir(root, pkgPath string) (string, error) {
	if root != "" {
		out := filepath.Join(root, filepath.FromSlash(pkgPath))
		if err := os.MkdirAll(out, os.ModePerm); err != nil {
			return "", fmt.Errorf("could not create output directory %s: %w", out, err)
		}
		return out, nil
	}
	pkgs, err := packages.Load(&packages.Config{Mode: packages.NeedName | packages.NeedFiles}, pkgPath)
	if err != nil {
		return "", fmt.Errorf("could not determine output directory for package %q: %w", pkgPath, err)
	}
	for _, pkg := range pkgs {
		if pkg.PkgPath != pkgPath || len(pkg.GoFiles) == 0 {
			continue
		}
		out := filepath.Dir(pkg.GoFiles[0])
		if goroot := filepath.Join(runtime.GOROOT(), "src"); strings.HasPrefix(out, goroot+string(filepath.Separator)) {
			return "", fmt.Errorf("cannot generate output for package %q because it is in GOROOT", pkgPath)
		}
		return out, nil
	}
	return "", fmt.Errorf("could not determine output directory for package %q", pkgPath)
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports

// Config represents the configuration for running one or more Processors.
// Callers should configure the exported fields and then call the Execute
// method to actually invoke the processors.
type Config struct {
	// Patterns are package patterns, as accepted by "go list".
	Patterns []string
	// Dir is the directory in which patterns are resolved. If blank, the
	// current working directory is used.
	Dir string
	// Tests indicates whether test files are processed, too.
	Tests         bool
	Processors    []Processor
	OutputFactory OutputFactory
	// Logger receives progress messages. If nil, nothing is logged.
	Logger *slog.Logger
}

// Execute invokes the configured processors for the configured packages,
// writing outputs using the configured OutputFactory. Packages are processed
// one at a time. The first error encountered stops processing.
func (cfg *Config) Execute(ctx context.Context) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	conf := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     cfg.Dir,
		Tests:   cfg.Tests,
	}
	logger.Debug("loading packages", "patterns", cfg.Patterns, "tests", cfg.Tests)
	pkgs, err := packages.Load(conf, cfg.Patterns...)
	if err != nil {
		return err
	}
	if err := firstPackageError(pkgs); err != nil {
		return err
	}
	for _, pkg := range selectPackages(pkgs) {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := NewContext(pkg, logger)
		if err != nil {
			return err
		}
		c.Logger.Debug("processing package", "elements", c.NumElements())
		for _, proc := range cfg.Processors {
			if err := proc(c, cfg.OutputFactory); err != nil {
				return err
			}
		}
	}
	return nil
}

func firstPackageError(pkgs []*packages.Package) error {
	var first error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		if first == nil && len(pkg.Errors) > 0 {
			first = pkg.Errors[0]
		}
	})
	return first
}

// selectPackages drops synthesized test mains and, when a package has a test
// variant, the plain variant (since the test variant has all of its files).
func selectPackages(pkgs []*packages.Package) []*packages.Package {
	hasTestVariant := map[string]bool{}
	for _, pkg := range pkgs {
		if pkg.ForTest != "" && pkg.PkgPath == pkg.ForTest {
			hasTestVariant[pkg.PkgPath] = true
		}
	}
	var res []*packages.Package
	for _, pkg := range pkgs {
		switch {
		case pkg.Name == "main" && strings.HasSuffix(pkg.PkgPath, ".test"):
			continue
		case pkg.ForTest == "" && hasTestVariant[pkg.PkgPath]:
			continue
		}
		res = append(res, pkg)
	}
	return res
}

// Context represents the environment for an annotation processor. It represents
// a single package (for which the processors were invoked). It provides access
// to all annotations and annotated type declarations in the package.
type Context struct {
	// Package holds all information about the package being processed. It
	// provides access to the ASTs of files in the package as well as the
	// results of type analysis, to allow for introspection of package elements.
	// Its Fset can be used to resolve details for source code locations.
	Package *packages.Package

	// Logger is scoped to the package being processed.
	Logger *slog.Logger

	allElements []*AnnotatedElement
	// AllElementsByObject is map of all type declarations in the package that
	// have annotations to a corresponding AnnotatedElement structure.
	//
	// Also see methods Context.NumElements, Context.GetElement, and
	// Context.ElementsAnnotatedWith.
	AllElementsByObject map[types.Object]*AnnotatedElement
	byAnnotation        map[string][]*AnnotatedElement
	processed           map[*ast.CommentGroup]struct{}
	generatedFiles      map[*token.File]bool
}

// NewContext returns the context for the given package, which must have been
// loaded with syntax and type information. Annotations are extracted right
// away; an error means that one of them could not be parsed. If logger is nil,
// nothing is logged.
func NewContext(pkg *packages.Package, logger *slog.Logger) (*Context, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Context{
		Package:             pkg,
		Logger:              logger.With("package", pkg.PkgPath),
		AllElementsByObject: map[types.Object]*AnnotatedElement{},
		byAnnotation:        map[string][]*AnnotatedElement{},
		processed:           map[*ast.CommentGroup]struct{}{},
		generatedFiles:      map[*token.File]bool{},
	}
	for _, f := range pkg.Syntax {
		if ast.IsGenerated(f) {
			c.generatedFiles[pkg.Fset.File(f.Pos())] = true
		}
	}
	if err := c.computeAllAnnotations(); err != nil {
		return nil, err
	}
	return c, nil
}

// AnnotatedElement is a top-level type declaration that has annotations in its
// doc comment.
type AnnotatedElement struct {
	Context *Context
	File    *ast.File
	Spec    *ast.TypeSpec
	Obj     *types.TypeName
	// Annotations are in the order they appear in source.
	Annotations []parser.Annotation
}

// Pos returns the location of the declared type's name.
func (ae *AnnotatedElement) Pos() token.Position {
	return ae.Context.Package.Fset.Position(ae.Spec.Name.Pos())
}

// InTestFile returns true if the element is declared in a _test.go file.
func (ae *AnnotatedElement) InTestFile() bool {
	return strings.HasSuffix(ae.Pos().Filename, "_test.go")
}

// Generated returns true if the element is declared in a generated file,
// such as the output of an earlier run.
func (ae *AnnotatedElement) Generated() bool {
	return ast.IsGenerated(ae.File)
}

// HasAnnotation returns true if the element has an annotation whose path is
// the given name.
func (ae *AnnotatedElement) HasAnnotation(name string) bool {
	for _, a := range ae.Annotations {
		if a.Path.String() == name {
			return true
		}
	}
	return false
}

// NumElements returns the number of annotated elements for the context's
// package.
func (c *Context) NumElements() int {
	return len(c.allElements)
}

// GetElement returns the annotation element at the given index. The given index
// must be greater than or equal to zero and less than c.NumElements().
func (c *Context) GetElement(index int) *AnnotatedElement {
	return c.allElements[index]
}

// ElementsAnnotatedWith returns the elements that have an annotation with the
// given path, in source order. A qualified path is written "pkg.Name".
func (c *Context) ElementsAnnotatedWith(name string) []*AnnotatedElement {
	return c.byAnnotation[name]
}

// OutputPath returns the path to give to an OutputFactory for a file with the
// given name in the context's package.
func (c *Context) OutputPath(fileName string) string {
	return path.Join(c.Package.PkgPath, fileName)
}

// OutputFileName returns the name of a generated file for the context's
// package, such as "events_stripped.go". If test is true, the name ends with
// "_test.go" instead.
func (c *Context) OutputFileName(suffix string, test bool) string {
	if test {
		return fmt.Sprintf("%s_%s_test.go", c.Package.Name, suffix)
	}
	return fmt.Sprintf("%s_%s.go", c.Package.Name, suffix)
}

func (c *Context) computeAllAnnotations() error {
	// TODO: accumulate multiple errors (up to some limit... 20?) instead of failing after first
	for _, file := range c.Package.Syntax {
		if err := c.computeAnnotationsFromFile(file); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) computeAnnotationsFromFile(file *ast.File) error {
	for _, decl := range file.Decls {
		decl, ok := decl.(*ast.GenDecl)
		if !ok || decl.Tok != token.TYPE {
			continue
		}
		for _, s := range decl.Specs {
			spec := s.(*ast.TypeSpec)
			doc := spec.Doc
			if doc == nil || len(doc.List) == 0 {
				doc = decl.Doc
			}
			if err := c.computeAnnotationsFromType(file, spec, doc); err != nil {
				return err
			}
		}
	}

	ast.Inspect(file, func(node ast.Node) bool {
		var doc *ast.CommentGroup
		switch node := node.(type) {
		case *ast.TypeSpec:
			doc = node.Doc
		case *ast.ValueSpec:
			doc = node.Doc
		case *ast.GenDecl:
			doc = node.Doc
		case *ast.FuncDecl:
			doc = node.Doc
		case *ast.Field:
			doc = node.Doc
		}
		if _, ok := c.processed[doc]; ok {
			return true
		}
		if pos, found := hasAnnotations(doc); found {
			c.Logger.Warn("annotations are only processed on top-level type declarations; ignoring",
				"pos", c.Package.Fset.Position(pos).String())
		}
		return true
	})
	return nil
}

func (c *Context) computeAnnotationsFromType(file *ast.File, spec *ast.TypeSpec, doc *ast.CommentGroup) error {
	obj, ok := c.Package.TypesInfo.Defs[spec.Name].(*types.TypeName)
	if !ok || obj.Parent() != c.Package.Types.Scope() {
		// not a top-level type
		return nil
	}
	if _, ok := c.AllElementsByObject[obj]; ok {
		// already processed this one
		return nil
	}
	annos, err := c.parseAnnotations(doc)
	if err != nil {
		return err
	}
	if len(annos) == 0 {
		return nil
	}
	c.Logger.Log(context.Background(), stripgolog.LevelTrace, "found annotations",
		"type", obj.Name(), "count", len(annos))
	c.newElement(file, spec, obj, annos)
	return nil
}

func (c *Context) newElement(file *ast.File, spec *ast.TypeSpec, obj *types.TypeName, annos []parser.Annotation) *AnnotatedElement {
	ae := &AnnotatedElement{
		Context:     c,
		File:        file,
		Spec:        spec,
		Obj:         obj,
		Annotations: annos,
	}
	c.AllElementsByObject[obj] = ae
	c.allElements = append(c.allElements, ae)
	seen := map[string]bool{}
	for _, anno := range annos {
		name := anno.Path.String()
		if !seen[name] {
			c.byAnnotation[name] = append(c.byAnnotation[name], ae)
			seen[name] = true
		}
	}
	return ae
}

func (c *Context) parseAnnotations(doc *ast.CommentGroup) ([]parser.Annotation, error) {
	if doc == nil {
		return nil, nil
	}
	c.processed[doc] = struct{}{}
	buf, adjuster := c.extractAnnotations(doc)
	if buf == nil {
		return nil, nil
	}
	annos, perr := parser.ParseAnnotationsWithPositions(adjuster.filename(), buf, adjuster.adjustPosition)
	if perr != nil {
		return nil, NewErrorWithPosition(perr.Pos(), perr.Underlying())
	}
	return annos, nil
}

// extractAnnotations returns the annotation text in the given comment group:
// everything from the first line that starts with "@" through the end of the
// group. A switch between line comments and block comments starts over. The
// returned adjuster maps positions in the text back to the source file.
func (c *Context) extractAnnotations(doc *ast.CommentGroup) (*bytes.Buffer, posAdjuster) {
	var buf bytes.Buffer
	var adjuster posAdjuster
	found := false
	prevSingleLine := false
	var pos token.Position
	for _, l := range doc.List {
		txt := l.Text
		singleLine := false
		if strings.HasPrefix(txt, "/*") {
			txt = strings.TrimSuffix(txt[2:], "*/")
		} else if strings.HasPrefix(txt, "//") {
			singleLine = true
			txt = txt[2:]
		}

		if singleLine != prevSingleLine {
			found = false
			buf.Reset()
			prevSingleLine = singleLine
			adjuster = nil
		}

		pos = c.Package.Fset.Position(l.Slash)
		// skip past opening "//" or "/*"
		pos.Offset += 2
		pos.Column += 2

		for _, line := range strings.Split(txt, "\n") {
			trimmed := strings.TrimSpace(line)
			if !found && strings.HasPrefix(trimmed, "@") {
				found = true
			}
			if found {
				adjuster = append(adjuster, posAdj{outOffset: buf.Len(), inPos: pos})
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
			pos.Offset += len(line) + 1
			pos.Line++
			pos.Column = 1
		}

		// set this so we can record end of input as the last entry in adjuster
		pos = c.Package.Fset.Position(l.End())
	}
	if !found {
		return nil, nil
	}
	adjuster = append(adjuster, posAdj{outOffset: buf.Len(), inPos: pos})
	return &buf, adjuster
}

type posAdj struct {
	outOffset int
	inPos     token.Position
}

// posAdjuster has one entry per line of extracted text, plus one for the end
// of input.
type posAdjuster []posAdj

func (a posAdjuster) filename() string {
	if len(a) == 0 {
		return ""
	}
	return a[0].inPos.Filename
}

func (a posAdjuster) adjustPosition(pos scanner.Position) token.Position {
	line := pos.Line - 1
	if line < 0 {
		line = 0
	} else if line >= len(a) {
		line = len(a) - 1
	}
	el := a[line]
	return token.Position{
		Filename: el.inPos.Filename,
		Line:     el.inPos.Line,
		Column:   el.inPos.Column + pos.Column - 1,
		Offset:   el.inPos.Offset + (pos.Offset - el.outOffset),
	}
}

func hasAnnotations(doc *ast.CommentGroup) (token.Pos, bool) {
	if doc == nil {
		return 0, false
	}
	for _, l := range doc.List {
		txt := strings.TrimPrefix(strings.TrimPrefix(l.Text, "//"), "/*")
		for _, line := range strings.Split(txt, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "@") {
				return l.Slash, true
			}
		}
	}
	return 0, false
}
