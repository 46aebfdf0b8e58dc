// Package bubble is a full-screen terminal form built on bubbletea. One
// section is visible at a time; keys map onto the form's change, focus and
// keyboard navigation handlers, so Enter and Ctrl+Arrow move through the
// section order exactly as they do in the browser.
package bubble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// ErrAborted is returned by Run when the user leaves without submitting.
var ErrAborted = errors.New("bubble: aborted")

// Option configures a Model.
type Option func(*Model)

// WithSubmitFunc is called with the processed values once the form passes
// validation.
func WithSubmitFunc(fn formstate.SubmitFunc) Option {
	return func(m *Model) {
		m.submit = fn
	}
}

// WithStyles overrides the default palette.
func WithStyles(styles Styles) Option {
	return func(m *Model) {
		m.styles = styles
	}
}

// WithContext sets the context handed to the submit func.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithLogger sets the logger used for tracing key handling.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

type submitDoneMsg struct {
	err error
}

// Model is the bubbletea model for one form.
type Model struct {
	def    *schema.Definition
	form   *formstate.Form
	submit formstate.SubmitFunc
	ctx    context.Context
	styles Styles
	logger *slog.Logger

	sections  []schema.Section
	orders    [][]formstate.FieldPath
	sectionOf map[formstate.FieldPath]int
	visited   map[formstate.FieldPath]bool
	section   int
	focus     formstate.FieldPath

	status     string
	statusErr  bool
	submitting bool
	submitted  bool
	aborted    bool
	width      int
}

// New binds def and form and focuses the first field.
func New(def *schema.Definition, form *formstate.Form, opts ...Option) (*Model, error) {
	if def == nil || len(def.Sections) == 0 {
		return nil, fmt.Errorf("bubble: %w", schema.ErrInvalidDefinition)
	}
	if form == nil {
		return nil, fmt.Errorf("bubble: %w", formstate.ErrNilForm)
	}
	m := &Model{
		def:       def,
		form:      form,
		ctx:       context.Background(),
		styles:    DefaultStyles(),
		logger:    slog.New(slog.DiscardHandler),
		sections:  def.Sections,
		sectionOf: make(map[formstate.FieldPath]int),
		visited:   make(map[formstate.FieldPath]bool),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	for idx, section := range m.sections {
		m.orders = append(m.orders, section.Paths())
		for _, spec := range section.Fields {
			path := spec.FieldPath()
			m.sectionOf[path] = idx
			m.props(spec).Ref(formstate.HandleFunc(func() { m.moveFocus(path) }))
		}
	}
	m.enterSection(0)
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			var verr *formstate.ValidationError
			if errors.As(msg.err, &verr) {
				m.focusFirstError()
			}
			return m, nil
		}
		m.submitted = true
		m.setStatus("Saved", false)
		m.release()
		return m, tea.Quit
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		m.release()
		return m, tea.Quit
	case "ctrl+s":
		return m, m.requestSubmit()
	case "tab":
		m.enterSection((m.section + 1) % len(m.sections))
		return m, nil
	case "shift+tab":
		m.enterSection((m.section - 1 + len(m.sections)) % len(m.sections))
		return m, nil
	}

	spec, ok := m.focusedSpec()
	if !ok {
		return m, nil
	}
	props := m.props(spec)
	if ev, ok := navigationKey(msg); ok {
		result := props.OnKeyDown(ev)
		m.logger.Debug("bubble: navigation", "field", props.Name, "key", ev.Key, "moved", result.Moved)
		return m, nil
	}

	switch props.Type {
	case formstate.InputCheckbox:
		if msg.Type == tea.KeySpace {
			props.OnChange(formstate.ChangeEvent{Name: props.Name, Type: props.Type, Checked: !props.Checked})
		}
	case formstate.InputSelect, formstate.InputRadio:
		switch msg.String() {
		case "right", "down", " ":
			m.cycleOption(spec, props, 1)
		case "left", "up":
			m.cycleOption(spec, props, -1)
		}
	case formstate.InputFile:
	default:
		value := formstate.StringValue(props.Value)
		switch msg.Type {
		case tea.KeyBackspace:
			runes := []rune(value)
			if len(runes) == 0 {
				return m, nil
			}
			value = string(runes[:len(runes)-1])
		case tea.KeySpace:
			value += " "
		case tea.KeyRunes:
			value += string(msg.Runes)
		default:
			return m, nil
		}
		props.OnChange(formstate.ChangeEvent{Name: props.Name, Type: props.Type, Value: value})
	}
	return m, nil
}

func navigationKey(msg tea.KeyMsg) (formstate.KeyEvent, bool) {
	switch msg.String() {
	case "enter":
		return formstate.KeyEvent{Key: formstate.KeyEnter}, true
	case "ctrl+down":
		return formstate.KeyEvent{Key: formstate.KeyArrowDown, Ctrl: true}, true
	case "ctrl+up":
		return formstate.KeyEvent{Key: formstate.KeyArrowUp, Ctrl: true}, true
	}
	return formstate.KeyEvent{}, false
}

func (m *Model) cycleOption(spec schema.FieldSpec, props formstate.FieldProps, step int) {
	n := len(spec.Options)
	if n == 0 {
		return
	}
	current := formstate.StringValue(props.Value)
	idx := -1
	for i, opt := range spec.Options {
		if opt.Value == current {
			idx = i
			break
		}
	}
	switch {
	case idx == -1 && step > 0:
		idx = 0
	case idx == -1:
		idx = n - 1
	default:
		idx = (idx + step + n) % n
	}
	props.OnChange(formstate.ChangeEvent{Name: props.Name, Type: props.Type, Value: spec.Options[idx].Value})
}

// requestSubmit validates synchronously so focus can jump to the first
// problem, then submits from a command.
func (m *Model) requestSubmit() tea.Cmd {
	if m.submitting {
		return nil
	}
	if m.focus != (formstate.FieldPath{}) {
		m.form.HandleBlur(m.focus.String())
	}
	if !m.form.ValidateAll() {
		n := len(m.form.Errors())
		m.setStatus(fmt.Sprintf("Fix %d %s before saving", n, plural(n, "error", "errors")), true)
		m.focusFirstError()
		return nil
	}
	m.submitting = true
	m.setStatus("Saving...", false)
	ctx, form, fn := m.ctx, m.form, m.submit
	return func() tea.Msg {
		return submitDoneMsg{err: formstate.Submit(ctx, form, fn)}
	}
}

func (m *Model) focusFirstError() {
	for _, section := range m.sections {
		for _, spec := range section.Fields {
			if m.form.Error(spec.FieldPath()) != "" {
				m.form.Focus(spec.FieldPath())
				return
			}
		}
	}
}

// enterSection switches the visible section and focuses its first field.
func (m *Model) enterSection(idx int) {
	m.section = idx
	if order := m.orders[idx]; len(order) > 0 {
		m.form.Focus(order[0])
	}
}

// moveFocus is the registered handle for every field. Leaving a field runs
// its blur handler and marks it visited; entering one clears its error.
func (m *Model) moveFocus(path formstate.FieldPath) {
	if m.focus == path {
		return
	}
	if m.focus != (formstate.FieldPath{}) {
		m.form.HandleBlur(m.focus.String())
		m.visited[m.focus] = true
	}
	m.focus = path
	m.section = m.sectionOf[path]
	m.form.HandleFocus(path.String())
}

// release unregisters every handle so the form can be bound elsewhere.
func (m *Model) release() {
	for _, section := range m.sections {
		for _, spec := range section.Fields {
			m.props(spec).Ref(nil)
		}
	}
}

func (m *Model) props(spec schema.FieldSpec) formstate.FieldProps {
	return m.form.FieldProps(spec.Path, formstate.PropsOptions{
		Type:  spec.InputType(),
		Order: m.orders[m.sectionOf[spec.FieldPath()]],
	})
}

func (m *Model) focusedSpec() (schema.FieldSpec, bool) {
	if m.focus == (formstate.FieldPath{}) {
		return schema.FieldSpec{}, false
	}
	return m.def.Lookup(m.focus)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

// Focused reports the focused field.
func (m *Model) Focused() formstate.FieldPath { return m.focus }

// Section reports the id of the visible section.
func (m *Model) Section() string { return m.sections[m.section].ID }

// Status is the last status line message.
func (m *Model) Status() string { return m.status }

// Submitted reports whether the submit func completed successfully.
func (m *Model) Submitted() bool { return m.submitted }

// Aborted reports whether the user quit without submitting.
func (m *Model) Aborted() bool { return m.aborted }

// Run drives a bubbletea program until the form is submitted or abandoned.
func Run(ctx context.Context, def *schema.Definition, form *formstate.Form, opts ...Option) error {
	m, err := New(def, form, append([]Option{WithContext(ctx)}, opts...)...)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("bubble: %w", err)
	}
	if !m.Submitted() {
		return ErrAborted
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func maskValue(value string) string {
	return strings.Repeat("•", len([]rune(value)))
}
