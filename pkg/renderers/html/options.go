package html

import (
	"io/fs"
	"log/slog"
	"os"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templates fs.FS
	logger    *slog.Logger
}

// WithTemplatesFS supplies an alternate template bundle. It must provide
// form.html and the partials it includes.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templates = os.DirFS(path)
	}
}

// WithLogger sets the logger used for render tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}
