package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/jhump/stripgo"
	"github.com/jhump/stripgo/processor"
)

// Describe prints the output declarations of stripgo.Strip.
type Describe struct {
	Packages []string `arg:"" optional:"" default:"." help:"Package patterns, as accepted by go list"`
	Tests    bool     `help:"Also process _test.go files" env:"STRIPGO_TESTS"`
	Format   string   `short:"f" help:"Output format" enum:"json,yaml,toml" default:"json"`
}

// declaration is a stripped declaration as printed by describe.
type declaration struct {
	Package     string   `json:"package" yaml:"package" toml:"package"`
	Source      string   `json:"source" yaml:"source" toml:"source"`
	Position    string   `json:"position" yaml:"position" toml:"position"`
	Identifier  string   `json:"identifier" yaml:"identifier" toml:"identifier"`
	Visibility  string   `json:"visibility" yaml:"visibility" toml:"visibility"`
	Variants    []string `json:"variants" yaml:"variants" toml:"variants"`
	Annotations []string `json:"annotations" yaml:"annotations" toml:"annotations"`
}

type description struct {
	Declarations []declaration `json:"declarations" yaml:"declarations" toml:"declarations"`
}

// Run is called by kong when the describe command is executed.
func (d *Describe) Run(ctx context.Context, logger *slog.Logger) error {
	return d.run(ctx, logger, os.Stdout)
}

func (d *Describe) run(ctx context.Context, logger *slog.Logger, out io.Writer) error {
	desc := description{Declarations: []declaration{}}
	collect := func(c *processor.Context, _ processor.OutputFactory) error {
		reporter := logReporter(c.Logger)
		for _, target := range c.StripTargets() {
			res, err := stripgo.Strip(target.Decl, reporter)
			if err != nil {
				return err
			}
			desc.Declarations = append(desc.Declarations, describe(c.Package.PkgPath, target.Decl, res))
		}
		return nil
	}
	cfg := processor.Config{
		Patterns:   d.Packages,
		Tests:      d.Tests,
		Processors: []processor.Processor{collect},
		Logger:     logger,
	}
	if err := cfg.Execute(ctx); err != nil {
		return err
	}
	data, err := marshal(d.Format, desc)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func describe(pkg string, src *stripgo.SourceDeclaration, res *stripgo.OutputDeclaration) declaration {
	decl := declaration{
		Package:     pkg,
		Source:      src.Identifier,
		Position:    src.Pos.String(),
		Identifier:  res.Identifier,
		Visibility:  res.Visibility.String(),
		Variants:    res.Variants,
		Annotations: []string{},
	}
	for _, a := range res.Annotations {
		decl.Annotations = append(decl.Annotations, a.String())
	}
	return decl
}

func marshal(format string, v any) ([]byte, error) {
	switch format {
	case "json", "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(v)
	case "toml":
		return toml.Marshal(v)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
