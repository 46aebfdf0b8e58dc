// Package html renders schema definitions bound to a live form as server-side
// HTML. Controls carry data-next / data-prev attributes with the section
// navigation order; the bundled script moves focus on Enter and Ctrl/Cmd
// plus arrow keys.
package html

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// MethodOverrideField carries the real HTTP method for PUT / PATCH / DELETE
// forms, which browsers submit as POST.
const MethodOverrideField = "_method"

// ErrUnknownSection is returned when RenderOptions.Section names no section.
var ErrUnknownSection = errors.New("html renderer: unknown section")

// RenderOptions tailors a single render call.
type RenderOptions struct {
	// Section limits output to one section; empty renders every section.
	Section string
	// Action and Method default to the definition endpoint and method.
	Action string
	Method string
	Hidden []render.HiddenField
	// FormErrors are form-level messages, typically render.ErrorMapping.Form.
	FormErrors  []string
	SubmitLabel string
	// IncludeVersion adds the form snapshot version as a hidden field.
	IncludeVersion bool
}

// Renderer produces HTML for a definition bound to a form.
type Renderer struct {
	engine *engine
	logger *slog.Logger
}

// New constructs a renderer over the embedded templates unless overridden.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templates: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	eng, err := newEngine(cfg.templates)
	if err != nil {
		return nil, err
	}
	return &Renderer{engine: eng, logger: cfg.logger}, nil
}

// ContentType is the media type of the rendered output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render binds every field of the selected sections through FieldProps and
// executes the form template.
func (r *Renderer) Render(def *schema.Definition, form *formstate.Form, opts RenderOptions) ([]byte, error) {
	if def == nil {
		return nil, fmt.Errorf("html renderer: %w", schema.ErrInvalidDefinition)
	}
	if form == nil {
		return nil, fmt.Errorf("html renderer: %w", formstate.ErrNilForm)
	}

	sections := def.Sections
	if opts.Section != "" {
		section, ok := def.Section(opts.Section)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownSection, opts.Section)
		}
		sections = []schema.Section{section}
	}

	view := formView{
		ID:          def.ID,
		Title:       def.Title,
		Action:      firstNonEmpty(opts.Action, def.Endpoint),
		SubmitLabel: firstNonEmpty(opts.SubmitLabel, "Save"),
	}
	method := strings.ToUpper(firstNonEmpty(opts.Method, def.Method, http.MethodPost))
	hidden := append([]render.HiddenField(nil), opts.Hidden...)
	switch method {
	case http.MethodGet, http.MethodPost:
		view.Method = strings.ToLower(method)
	default:
		view.Method = "post"
		hidden = append(hidden, render.Hidden(MethodOverrideField, method))
	}
	if opts.IncludeVersion {
		hidden = append(hidden, render.FormVersion(form))
	}
	view.Hidden = render.SortedHiddenFields(render.MergeHiddenFields(nil, hidden...))

	for _, msg := range render.MergeFormErrors(nil, opts.FormErrors...) {
		if clean := render.SanitizeMessage(msg); clean != "" {
			view.Errors = append(view.Errors, clean)
		}
	}
	for _, section := range sections {
		view.Sections = append(view.Sections, buildSection(form, section))
	}

	out, err := r.engine.render("form.html", pongo2.Context{"form": view})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("html renderer: rendered form", "form", def.ID, "sections", len(view.Sections), "bytes", len(out))
	return out, nil
}

type formView struct {
	ID          string
	Title       string
	Action      string
	Method      string
	SubmitLabel string
	Hidden      []render.HiddenField
	Errors      []string
	Sections    []sectionView
}

type sectionView struct {
	ID     string
	Label  string
	Fields []fieldView
}

type fieldView struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Placeholder string
	Help        string
	Checked     bool
	Required    bool
	ShowError   bool
	Error       string
	ErrorID     string
	Prev        string
	Next        string
	Options     []optionView
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

func buildSection(form *formstate.Form, section schema.Section) sectionView {
	order := section.Paths()
	view := sectionView{ID: section.ID, Label: firstNonEmpty(section.Label, schema.Labelize(section.ID))}
	for _, spec := range section.Fields {
		props := form.FieldProps(spec.Path, formstate.PropsOptions{Type: spec.InputType(), Order: order})
		field := fieldView{
			Name:        props.Name,
			Label:       spec.DisplayLabel(),
			Type:        string(props.Type),
			Value:       formstate.StringValue(props.Value),
			Placeholder: spec.Placeholder,
			Help:        render.SanitizeHelp(spec.Help),
			Checked:     props.Checked,
			Required:    hasRule(spec, "required"),
			ShowError:   props.Touched && props.Error != "",
			ErrorID:     formstate.ErrorID(props.Name),
			Prev:        props.Prev,
			Next:        props.Next,
		}
		if field.ShowError {
			field.Error = render.SanitizeMessage(props.Error)
		}
		for _, opt := range spec.Options {
			field.Options = append(field.Options, optionView{
				Value:    opt.Value,
				Label:    firstNonEmpty(opt.Label, opt.Value),
				Selected: opt.Value == field.Value,
			})
		}
		view.Fields = append(view.Fields, field)
	}
	return view
}

func hasRule(spec schema.FieldSpec, name string) bool {
	for _, rule := range spec.Rules {
		if rule.Name == name {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
