package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/jhump/stripgo/internal/configpaths"
)

// Init scaffolds a configuration file.
type Init struct {
	Format string `help:"Output format" enum:"json,yaml,toml" default:"yaml"`
	Output string `help:"Destination file path (defaults to stripgo.<ext> in the current directory)" type:"path"`
	User   bool   `help:"Write to the user configuration directory instead"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

// configTemplate has the keys that the config file loaders look up, with
// their default values.
func configTemplate() map[string]any {
	return map[string]any{
		"log": map[string]any{
			"level": "info",
			"file":  "",
		},
		"tests":      false,
		"output_dir": "",
		"processors": []string{},
	}
}

// Run is called by kong when the init command is executed.
func (c *Init) Run(logger *slog.Logger) error {
	dest := c.Output
	switch {
	case dest != "":
	case c.User:
		p, err := configpaths.DefaultConfigPath(c.Format)
		if err != nil {
			return err
		}
		dest = p
	default:
		dest = configpaths.BaseName + "." + configpaths.Extension(c.Format)
	}

	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	data, err := marshal(c.Format, configTemplate())
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	logger.Info("wrote configuration template", "path", dest)
	return nil
}
