package main

import (
	"context"
	"log/slog"

	"github.com/jhump/stripgo/processor"
)

// CLI is the command line of stripgo. Every flag can also be set in a config
// file.
type CLI struct {
	Config string `help:"Configuration file (json, yaml or toml)" env:"STRIPGO_CONFIG" placeholder:"FILE"`
	Log    struct {
		Level string `help:"Log level: trace, debug, info, warn or error" default:"info" enum:"trace,debug,info,warn,error" env:"STRIPGO_LOG_LEVEL"`
		File  string `help:"Also write a JSON log of every level to this file" env:"STRIPGO_LOG_FILE" placeholder:"FILE"`
	} `embed:"" prefix:"log."`

	Generate Generate `cmd:"" default:"withargs" help:"Generate code for annotated declarations (default)"`
	Describe Describe `cmd:"" help:"Print the stripped declarations without writing any files"`
	Init     Init     `cmd:"" help:"Write a configuration file template"`
}

// Generate runs processors over packages.
type Generate struct {
	Packages   []string `arg:"" optional:"" default:"." help:"Package patterns, as accepted by go list"`
	Tests      bool     `help:"Also process _test.go files" env:"STRIPGO_TESTS"`
	OutputDir  string   `help:"Write files under this directory, organized by import path, instead of next to the sources" type:"path" env:"STRIPGO_OUTPUT_DIR"`
	Processors []string `help:"Processors to run; all of them run by default" env:"STRIPGO_PROCESSORS"`
}

// Run is called by kong when the generate command is executed.
func (g *Generate) Run(ctx context.Context, logger *slog.Logger) error {
	procs, err := processor.LookupProcessors(g.Processors...)
	if err != nil {
		return err
	}
	logger.Debug("generating", "packages", g.Packages, "tests", g.Tests, "output_dir", g.OutputDir)
	cfg := processor.Config{
		Patterns:      g.Packages,
		Tests:         g.Tests,
		Processors:    procs,
		OutputFactory: processor.DefaultOutputFactory(g.OutputDir),
		Logger:        logger,
	}
	return cfg.Execute(ctx)
}
