package tui

import (
	"log/slog"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/render"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits one path=value line per field.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ParseOutputFormat accepts the names used on the command line.
func ParseOutputFormat(raw string) (OutputFormat, bool) {
	switch OutputFormat(raw) {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
		return OutputFormat(raw), true
	case "":
		return OutputFormatJSON, true
	default:
		return "", false
	}
}

// Theme captures message prefixes the session applies when printing.
type Theme struct {
	SectionPrefix string
	InfoPrefix    string
	ErrorPrefix   string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{SectionPrefix: "== ", InfoPrefix: "", ErrorPrefix: "! "}

// SubmitTransformer mutates processed values before submission and
// serialization.
type SubmitTransformer func(formstate.Values) (formstate.Values, error)

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(s *Session) {
		if format != "" {
			s.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate collected values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(s *Session) {
		s.transformer = fn
	}
}

// WithSubmitFunc hands the validated payload to fn before it is serialized.
func WithSubmitFunc(fn formstate.SubmitFunc) Option {
	return func(s *Session) {
		s.submit = fn
	}
}

// WithHiddenFields appends hidden values to form-encoded output.
func WithHiddenFields(fields ...render.HiddenField) Option {
	return func(s *Session) {
		s.hidden = append(s.hidden, fields...)
	}
}

// WithMaxAttempts bounds how many invalid answers a field accepts before the
// session gives up. Zero means unbounded.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.maxAttempts = n
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithLogger sets the logger used for session tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}
