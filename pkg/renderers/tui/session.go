// Package tui walks a schema definition in the terminal, one prompt per
// field. Answers flow through the same focus, change and blur handlers a
// graphical control would use, so validation messages and touched state
// match every other renderer.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/schema"
)

const maskedValue = "********"

// Session drives a prompt per field and serializes the processed values.
type Session struct {
	driver       PromptDriver
	outputFormat OutputFormat
	transformer  SubmitTransformer
	submit       formstate.SubmitFunc
	hidden       []render.HiddenField
	maxAttempts  int
	theme        Theme
	logger       *slog.Logger
}

// New constructs a session with defaults (survey driver, JSON output).
func New(options ...Option) (*Session, error) {
	s := &Session{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	if _, ok := ParseOutputFormat(string(s.outputFormat)); !ok {
		return nil, fmt.Errorf("tui: unknown output format %q", s.outputFormat)
	}
	return s, nil
}

// ContentType reports the serialization format used by Run.
func (s *Session) ContentType() string {
	switch s.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Run prompts every field of def section by section, re-asking while an
// answer is invalid. Once all fields pass ValidateAll the processed values
// are submitted (when a submit func is configured) and serialized.
func (s *Session) Run(ctx context.Context, def *schema.Definition, form *formstate.Form) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if def == nil {
		return nil, fmt.Errorf("tui: %w", schema.ErrInvalidDefinition)
	}
	if form == nil {
		return nil, fmt.Errorf("tui: %w", formstate.ErrNilForm)
	}
	if s.driver == nil {
		return nil, ErrNoDriver
	}

	for _, section := range def.Sections {
		if err := s.info(ctx, s.theme.SectionPrefix+firstNonEmpty(section.Label, schema.Labelize(section.ID))); err != nil {
			return nil, err
		}
		order := section.Paths()
		for _, spec := range section.Fields {
			if err := s.askField(ctx, form, spec, order); err != nil {
				return nil, err
			}
		}
	}

	if err := s.settle(ctx, def, form); err != nil {
		return nil, err
	}

	values := form.ProcessedValues()
	if s.transformer != nil {
		var err error
		values, err = s.transformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	if s.submit != nil {
		if err := s.submit(ctx, values); err != nil {
			return nil, fmt.Errorf("tui: submit: %w", err)
		}
	}
	s.logger.Debug("tui: session complete", "form", def.ID, "version", form.Version())
	return Encode(def, s.outputFormat, values, s.hidden...)
}

// settle re-prompts fields that fail whole-form validation, which catches
// cross-field rules and forms with blur validation disabled.
func (s *Session) settle(ctx context.Context, def *schema.Definition, form *formstate.Form) error {
	for round := 0; ; round++ {
		if form.ValidateAll() {
			return nil
		}
		if s.maxAttempts > 0 && round >= s.maxAttempts {
			return fmt.Errorf("%w: %w", ErrTooManyAttempts, &formstate.ValidationError{Errors: form.Errors()})
		}
		asked := false
		for _, section := range def.Sections {
			order := section.Paths()
			for _, spec := range section.Fields {
				msg := form.Error(spec.FieldPath())
				if msg == "" {
					continue
				}
				if err := s.info(ctx, s.theme.ErrorPrefix+msg); err != nil {
					return err
				}
				if err := s.askField(ctx, form, spec, order); err != nil {
					return err
				}
				asked = true
			}
		}
		if !asked {
			return &formstate.ValidationError{Errors: form.Errors()}
		}
	}
}

func (s *Session) askField(ctx context.Context, form *formstate.Form, spec schema.FieldSpec, order []formstate.FieldPath) error {
	name := spec.Path
	for attempt := 1; ; attempt++ {
		props := form.FieldProps(name, formstate.PropsOptions{Type: spec.InputType(), Order: order})
		props.OnFocus()

		ev, err := s.prompt(ctx, spec, props)
		if err != nil {
			return err
		}
		props.OnChange(ev)
		props.OnBlur()

		msg := form.Error(spec.FieldPath())
		if msg == "" {
			return nil
		}
		s.logger.Debug("tui: invalid answer", "field", name, "attempt", attempt, "error", msg)
		if s.maxAttempts > 0 && attempt >= s.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, name)
		}
		if err := s.info(ctx, s.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}
}

func (s *Session) prompt(ctx context.Context, spec schema.FieldSpec, props formstate.FieldProps) (formstate.ChangeEvent, error) {
	label := spec.DisplayLabel()
	help := helpText(spec)
	current := formstate.StringValue(props.Value)
	ev := formstate.ChangeEvent{Name: props.Name, Type: props.Type}

	switch props.Type {
	case formstate.InputCheckbox:
		checked, err := s.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: props.Checked, Help: help})
		if err != nil {
			return ev, err
		}
		ev.Checked = checked
	case formstate.InputSelect, formstate.InputRadio:
		options := make([]string, len(spec.Options))
		defaultIdx := -1
		for i, opt := range spec.Options {
			options[i] = firstNonEmpty(opt.Label, opt.Value)
			if opt.Value == current {
				defaultIdx = i
			}
		}
		for {
			idx, err := s.driver.Select(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: defaultIdx, Help: help})
			if err != nil {
				return ev, err
			}
			if idx >= 0 && idx < len(options) {
				ev.Value = spec.Options[idx].Value
				break
			}
			if err := s.info(ctx, s.theme.ErrorPrefix+"Invalid "+label+" selection"); err != nil {
				return ev, err
			}
		}
	case formstate.InputPassword:
		secret, err := s.driver.Password(ctx, InputConfig{Message: label, Help: help})
		if err != nil {
			return ev, err
		}
		// An empty answer keeps the stored secret.
		if secret == "" {
			secret = current
		}
		ev.Value = secret
	case formstate.InputTextarea:
		text, err := s.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current, Help: help})
		if err != nil {
			return ev, err
		}
		ev.Value = text
	case formstate.InputFile:
		path, err := s.driver.Input(ctx, InputConfig{Message: label, Help: help})
		if err != nil {
			return ev, err
		}
		if path = strings.TrimSpace(path); path != "" {
			ev.Files = []formstate.File{{Name: filepath.Base(path)}}
		}
	default:
		text, err := s.driver.Input(ctx, InputConfig{Message: label, Default: current, Help: help})
		if err != nil {
			return ev, err
		}
		ev.Value = text
	}
	return ev, nil
}

func (s *Session) info(ctx context.Context, msg string) error {
	if err := s.driver.Info(ctx, msg); err != nil {
		return fmt.Errorf("tui: info: %w", err)
	}
	return nil
}

// Encode serializes processed values in format. Hidden fields only apply to
// form-encoded output; def is consulted to mask passwords in pretty output
// and may be nil.
func Encode(def *schema.Definition, format OutputFormat, values formstate.Values, hidden ...render.HiddenField) ([]byte, error) {
	switch format {
	case OutputFormatFormURLEncoded:
		return []byte(render.FormValues(values, hidden...).Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(def, values)), nil
	case OutputFormatJSON, "":
		return json.Marshal(values)
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", format)
	}
}

// prettyPrint emits path=value lines in sorted order. Password fields are
// masked.
func prettyPrint(def *schema.Definition, values formstate.Values) string {
	flat := render.FormValues(values)
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value := strings.Join(flat[key], ", ")
		if path, err := formstate.ParsePath(key); err == nil && def != nil {
			if spec, ok := def.Lookup(path); ok && spec.InputType() == formstate.InputPassword && value != "" {
				value = maskedValue
			}
		}
		fmt.Fprintf(&b, "%s=%s\n", key, value)
	}
	return b.String()
}

func helpText(spec schema.FieldSpec) string {
	help := render.SanitizeMessage(spec.Help)
	if spec.Placeholder == "" {
		return help
	}
	if help == "" {
		return "e.g. " + spec.Placeholder
	}
	return help + " (e.g. " + spec.Placeholder + ")"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
