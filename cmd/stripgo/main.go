// Command stripgo runs annotation processors over Go packages. The built-in
// processors generate payload-free enums for sum types annotated with @strip
// and constructors for structs annotated with @new.
//
// Usage:
//
//	stripgo [generate] [--tests] [--output-dir=DIR] [--processors=...] [packages...]
//	stripgo describe [--format=json|yaml|toml] [packages...]
//	stripgo init [--format=json|yaml|toml] [--user]
//
// Flags can also be set in a config file: the file named by --config or
// $STRIPGO_CONFIG, stripgo.{json,yaml,yml,toml} in the current directory or
// config.{json,yaml,yml,toml} in the user's stripgo configuration directory.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"golang.org/x/term"

	"github.com/jhump/stripgo/internal/configpaths"
	"github.com/jhump/stripgo/internal/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(findUserConfig(args))
	var cli CLI
	app, err := newParser(&cli, jsonPaths, yamlPaths, tomlPaths)
	if err != nil {
		printError(os.Stderr, err)
		return 2
	}
	kctx, err := app.Parse(args)
	app.FatalIfErrorf(err)

	logger, closeFiles, err := log.SetupLogger(os.Stderr, cli.Log.Level, cli.Log.File)
	if err != nil {
		printError(os.Stderr, fmt.Errorf("failed to setup logger: %w", err))
		return 2
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	kctx.Bind(logger)
	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}

// newParser builds the command line parser. Config files are loaded in
// priority order; flags and environment variables override their values.
func newParser(cli *CLI, jsonPaths, yamlPaths, tomlPaths []string, options ...kong.Option) (*kong.Kong, error) {
	opts := []kong.Option{
		kong.Name("stripgo"),
		kong.Description("Generate payload-free enums from Go sum types, and more."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	}
	return kong.New(cli, append(opts, options...)...)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("STRIPGO_CONFIG")
}

// printError writes err to w, highlighted if w is a terminal.
func printError(w io.Writer, err error) {
	label := "error"
	if useColor(w) {
		label = "\x1b[1;31merror\x1b[0m"
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", label, err)
}

func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
