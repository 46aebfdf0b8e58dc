package formstate

import (
	"fmt"
	"log/slog"
)

// Validator returns a human-readable message when value is invalid, or the
// empty string when it is acceptable. values is the full form snapshot so
// cross-field rules can be expressed; it must be treated as read-only.
type Validator func(value any, values Values) string

// Field registers a path with an optional validator and submission kind.
type Field struct {
	Path      FieldPath
	Validator Validator
	Kind      Kind
}

// Option configures a Form.
type Option func(*config)

type config struct {
	validateOnChange   bool
	validateOnBlur     bool
	touchOnValidateAll bool
	strictKinds        bool
	fields             []Field
	registry           *Registry
	logger             *slog.Logger
	errs               []error
}

func defaultConfig() config {
	return config{
		validateOnBlur:     true,
		touchOnValidateAll: true,
	}
}

// WithValidateOnChange validates a field on every change event.
func WithValidateOnChange(enabled bool) Option {
	return func(c *config) {
		c.validateOnChange = enabled
	}
}

// WithValidateOnBlur validates a field when it loses focus. Enabled by
// default.
func WithValidateOnBlur(enabled bool) Option {
	return func(c *config) {
		c.validateOnBlur = enabled
	}
}

// WithTouchOnValidateAll controls whether ValidateAll marks every validated
// path touched. Enabled by default so errors produced at submit time reach
// UIs that only display errors for touched fields.
func WithTouchOnValidateAll(enabled bool) Option {
	return func(c *config) {
		c.touchOnValidateAll = enabled
	}
}

// WithStrictKinds disables numeric coercion for fields registered without an
// explicit Kind.
func WithStrictKinds() Option {
	return func(c *config) {
		c.strictKinds = true
	}
}

// WithValidator registers a validator for a dotted path.
func WithValidator(path string, v Validator) Option {
	return func(c *config) {
		p, err := ParsePath(path)
		if err != nil {
			c.errs = append(c.errs, err)
			return
		}
		c.fields = append(c.fields, Field{Path: p, Validator: v})
	}
}

// WithValidators registers a path -> validator table. Registration order
// follows the sorted paths so ValidateAll is deterministic.
func WithValidators(validators map[string]Validator) Option {
	return func(c *config) {
		for _, path := range sortedKeys(validators) {
			WithValidator(path, validators[path])(c)
		}
	}
}

// WithField registers a typed field.
func WithField(field Field) Option {
	return func(c *config) {
		if field.Path.IsZero() {
			c.errs = append(c.errs, fmt.Errorf("%w: field registered without a path", ErrInvalidPath))
			return
		}
		kind, ok := ParseKind(string(field.Kind))
		if !ok {
			c.errs = append(c.errs, fmt.Errorf("formstate: unknown kind %q for %s", field.Kind, field.Path))
			return
		}
		field.Kind = kind
		c.fields = append(c.fields, field)
	}
}

// WithFields registers several typed fields.
func WithFields(fields ...Field) Option {
	return func(c *config) {
		for _, f := range fields {
			WithField(f)(c)
		}
	}
}

// WithRegistry shares a focus registry between forms or with a renderer.
func WithRegistry(r *Registry) Option {
	return func(c *config) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
