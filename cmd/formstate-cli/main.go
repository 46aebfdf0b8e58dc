package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/presets"
	"github.com/goliatone/go-formstate/pkg/renderers/bubble"
	"github.com/goliatone/go-formstate/pkg/renderers/html"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/settings"
)

func main() {
	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := run(ctx, cfg, newLogger(cfg.Verbose))
	if errors.Is(err, tui.ErrAborted) || errors.Is(err, bubble.ErrAborted) {
		stop()
		os.Exit(130)
	}
	if err != nil {
		log.Fatalf("Failed: %v", err)
	}

	if cfg.OutFile != "" {
		if err := os.WriteFile(cfg.OutFile, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", cfg.OutFile)
		return
	}
	fmt.Println(string(out))
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func run(ctx context.Context, cfg config, logger *slog.Logger) ([]byte, error) {
	def, err := loadDefinition(ctx, cfg)
	if err != nil {
		return nil, err
	}
	form, err := schema.NewForm(def, formstate.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	var submit formstate.SubmitFunc
	if cfg.APIURL != "" {
		client := &settings.Client{
			BaseURL:    cfg.APIURL,
			Token:      cfg.APIToken,
			HTTPClient: &http.Client{Timeout: cfg.Timeout},
			Logger:     logger,
		}
		if _, err := client.LoadForm(ctx, form); err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		submit = reportAPIErrors(def, form, logger, client.SubmitFunc())
	}

	switch cfg.Renderer {
	case rendererHTML:
		r, err := html.New(html.WithTemplatesDir(cfg.Templates), html.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return r.Render(def, form, html.RenderOptions{Section: cfg.Section, IncludeVersion: true})
	case rendererTea:
		if err := bubble.Run(ctx, def, form, bubble.WithSubmitFunc(submit), bubble.WithLogger(logger)); err != nil {
			return nil, err
		}
		return tui.Encode(def, tui.OutputFormat(cfg.Output), form.ProcessedValues())
	default:
		session, err := tui.New(
			tui.WithOutputFormat(tui.OutputFormat(cfg.Output)),
			tui.WithSubmitFunc(submit),
			tui.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return session.Run(ctx, def, form)
	}
}

func loadDefinition(ctx context.Context, cfg config) (*schema.Definition, error) {
	switch {
	case cfg.OpenAPI != "":
		raw, err := os.ReadFile(cfg.OpenAPI)
		if err != nil {
			return nil, fmt.Errorf("read openapi document: %w", err)
		}
		return schema.FromOpenAPI(ctx, raw, schema.OpenAPIOptions{
			OperationID: cfg.Operation,
			SchemaName:  cfg.Schema,
		})
	case cfg.Definition != "":
		return schema.LoadFile(cfg.Definition)
	default:
		return presets.Load(cfg.Preset)
	}
}

// reportAPIErrors records field errors from a rejected save on the form so
// renderers show them next to the offending controls.
func reportAPIErrors(def *schema.Definition, form *formstate.Form, logger *slog.Logger, next formstate.SubmitFunc) formstate.SubmitFunc {
	return func(ctx context.Context, values formstate.Values) error {
		err := next(ctx, values)
		var apiErr *settings.APIError
		if errors.As(err, &apiErr) {
			formErrors := apiErr.Mapping(def.Paths()).Apply(form)
			logger.Warn("settings rejected", "status", apiErr.StatusCode, "fields", len(form.Errors()), "messages", formErrors)
		}
		return err
	}
}
