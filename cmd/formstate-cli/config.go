package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/goliatone/go-formstate/pkg/presets"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
)

const (
	rendererPrompt = "prompt"
	rendererTea    = "tea"
	rendererHTML   = "html"
)

// config is read from FORMSTATE_* variables (and a .env file when present),
// then overridden by flags.
type config struct {
	Preset     string        `env:"FORMSTATE_PRESET" envDefault:"system-settings"`
	Definition string        `env:"FORMSTATE_DEFINITION"`
	OpenAPI    string        `env:"FORMSTATE_OPENAPI"`
	Operation  string        `env:"FORMSTATE_OPERATION"`
	Schema     string        `env:"FORMSTATE_SCHEMA"`
	Renderer   string        `env:"FORMSTATE_RENDERER" envDefault:"prompt"`
	Output     string        `env:"FORMSTATE_OUTPUT" envDefault:"json"`
	OutFile    string        `env:"FORMSTATE_OUT_FILE"`
	Section    string        `env:"FORMSTATE_SECTION"`
	Templates  string        `env:"FORMSTATE_TEMPLATES"`
	APIURL     string        `env:"FORMSTATE_API_URL"`
	APIToken   string        `env:"FORMSTATE_API_TOKEN"`
	Timeout    time.Duration `env:"FORMSTATE_TIMEOUT" envDefault:"10s"`
	Verbose    bool          `env:"FORMSTATE_VERBOSE"`
}

func loadConfig(args []string, stderr io.Writer) (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse environment: %w", err)
	}

	flags := flag.NewFlagSet("formstate-cli", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cfg.Preset, "preset", cfg.Preset, "embedded form ("+strings.Join(presets.Names(), ", ")+")")
	flags.StringVar(&cfg.Definition, "definition", cfg.Definition, "form definition file (yaml or json)")
	flags.StringVar(&cfg.OpenAPI, "openapi", cfg.OpenAPI, "OpenAPI document to derive the form from")
	flags.StringVar(&cfg.Operation, "operation", cfg.Operation, "OpenAPI operation id")
	flags.StringVar(&cfg.Schema, "schema", cfg.Schema, "OpenAPI component schema name")
	flags.StringVar(&cfg.Renderer, "renderer", cfg.Renderer, "renderer to use (prompt, tea, html)")
	flags.StringVar(&cfg.Output, "output", cfg.Output, "value encoding (json, form, pretty)")
	flags.StringVar(&cfg.OutFile, "out", cfg.OutFile, "output file (stdout if empty)")
	flags.StringVar(&cfg.Section, "section", cfg.Section, "render a single section (html only)")
	flags.StringVar(&cfg.Templates, "templates", cfg.Templates, "template directory overriding the embedded html templates")
	flags.StringVar(&cfg.APIURL, "api", cfg.APIURL, "settings service base url; values are loaded from and saved to it")
	flags.StringVar(&cfg.APIToken, "token", cfg.APIToken, "bearer token for the settings service")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "settings service request timeout")
	flags.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "debug logging to stderr")
	if err := flags.Parse(args); err != nil {
		return config{}, err
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	switch c.Renderer {
	case rendererPrompt, rendererTea, rendererHTML:
	default:
		return fmt.Errorf("unknown renderer %q", c.Renderer)
	}
	if _, ok := tui.ParseOutputFormat(c.Output); !ok {
		return fmt.Errorf("unknown output %q", c.Output)
	}
	if c.OpenAPI != "" && c.Definition != "" {
		return errors.New("-openapi and -definition are mutually exclusive")
	}
	return nil
}
