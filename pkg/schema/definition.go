// Package schema describes forms declaratively: sections of fields with their
// input types, value kinds and validation rules. Definitions are read from
// YAML (or JSON) and compiled into formstate options.
package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/validators"
)

// ErrInvalidDefinition wraps every structural problem reported by Validate.
var ErrInvalidDefinition = errors.New("schema: invalid definition")

// Definition is a complete form: its sections, their field order and the
// initial values.
type Definition struct {
	ID       string         `yaml:"id" json:"id"`
	Title    string         `yaml:"title,omitempty" json:"title,omitempty"`
	Method   string         `yaml:"method,omitempty" json:"method,omitempty"`
	Endpoint string         `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Options  FormOptions    `yaml:"options,omitempty" json:"options,omitempty"`
	Sections []Section      `yaml:"sections" json:"sections"`
	Initial  map[string]any `yaml:"initial,omitempty" json:"initial,omitempty"`

	source Source
}

// FormOptions toggles engine behaviour. Nil pointers keep the engine default.
type FormOptions struct {
	ValidateOnChange   *bool `yaml:"validateOnChange,omitempty" json:"validateOnChange,omitempty"`
	ValidateOnBlur     *bool `yaml:"validateOnBlur,omitempty" json:"validateOnBlur,omitempty"`
	TouchOnValidateAll *bool `yaml:"touchOnValidateAll,omitempty" json:"touchOnValidateAll,omitempty"`
	StrictKinds        bool  `yaml:"strictKinds,omitempty" json:"strictKinds,omitempty"`
}

// Section is one navigation scope (a tab or page). Field order is the
// Enter / Ctrl+Arrow navigation order.
type Section struct {
	ID     string      `yaml:"id" json:"id"`
	Label  string      `yaml:"label,omitempty" json:"label,omitempty"`
	Fields []FieldSpec `yaml:"fields" json:"fields"`
}

// FieldSpec declares a single control.
type FieldSpec struct {
	Path        string              `yaml:"path" json:"path"`
	Label       string              `yaml:"label,omitempty" json:"label,omitempty"`
	Type        formstate.InputType `yaml:"type,omitempty" json:"type,omitempty"`
	Kind        formstate.Kind      `yaml:"kind,omitempty" json:"kind,omitempty"`
	Help        string              `yaml:"help,omitempty" json:"help,omitempty"`
	Placeholder string              `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Options     []Option            `yaml:"options,omitempty" json:"options,omitempty"`
	Rules       []Rule              `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Option is a select / radio choice. A bare scalar decodes as value and label.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Rule names a validator from the registry. Label overrides the field label
// in messages; every other key is passed to the factory.
type Rule struct {
	Name   string            `yaml:"rule" json:"rule"`
	Label  string            `yaml:"label,omitempty" json:"label,omitempty"`
	Params validators.Params `yaml:",inline" json:"params,omitempty"`
}

// UnmarshalYAML accepts either `- USD` or `- {value: USD, label: US Dollar}`.
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.Value = node.Value
		o.Label = node.Value
		return nil
	}
	type plain Option
	var out plain
	if err := node.Decode(&out); err != nil {
		return err
	}
	if out.Label == "" {
		out.Label = out.Value
	}
	*o = Option(out)
	return nil
}

// Parse decodes and validates a definition.
func Parse(raw []byte) (*Definition, error) {
	return parse(raw, inlineSource())
}

// Load reads name from fsys.
func Load(fsys fs.FS, name string) (*Definition, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", name, err)
	}
	return parse(raw, SourceFromFS(name))
}

// LoadFile reads a definition from disk.
func LoadFile(path string) (*Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return parse(raw, SourceFromFile(path))
}

func parse(raw []byte, src Source) (*Definition, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidDefinition, src.Location())
	}
	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("schema: decode %s: %w", src.Location(), err)
	}
	def.source = src
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Source reports where the definition came from.
func (d *Definition) Source() Source {
	if d.source == nil {
		return inlineSource()
	}
	return d.source
}

// Validate checks identifiers, paths, input types and kinds. Rule names are
// resolved later by Compile against a registry.
func (d *Definition) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidDefinition}, args...)...))
	}

	if strings.TrimSpace(d.ID) == "" {
		fail("id is required")
	}
	if len(d.Sections) == 0 {
		fail("at least one section is required")
	}

	sections := make(map[string]struct{}, len(d.Sections))
	paths := make(map[formstate.FieldPath]struct{})
	for i, section := range d.Sections {
		if section.ID == "" {
			fail("section %d has no id", i)
		} else if _, dup := sections[section.ID]; dup {
			fail("duplicate section %q", section.ID)
		}
		sections[section.ID] = struct{}{}

		for _, field := range section.Fields {
			path, err := formstate.ParsePath(field.Path)
			if err != nil {
				fail("section %q: %v", section.ID, err)
				continue
			}
			if _, dup := paths[path]; dup {
				fail("duplicate field %q", path)
			}
			paths[path] = struct{}{}

			if field.Type != "" && !knownInputType(field.Type) {
				fail("field %q: unknown type %q", path, field.Type)
			}
			if _, ok := formstate.ParseKind(string(field.Kind)); !ok {
				fail("field %q: unknown kind %q", path, field.Kind)
			}
			for _, rule := range field.Rules {
				if strings.TrimSpace(rule.Name) == "" {
					fail("field %q: rule without a name", path)
				}
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	if d.source != nil && d.source.Kind() != SourceKindInline {
		return fmt.Errorf("%s: %w", d.source.Location(), errors.Join(errs...))
	}
	return errors.Join(errs...)
}

// Section returns the section with the given id.
func (d *Definition) Section(id string) (Section, bool) {
	for _, s := range d.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// SectionIDs lists section ids in declaration order.
func (d *Definition) SectionIDs() []string {
	ids := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		ids = append(ids, s.ID)
	}
	return ids
}

// Order is the navigation order for a section. Unknown ids return nil.
func (d *Definition) Order(sectionID string) []formstate.FieldPath {
	section, ok := d.Section(sectionID)
	if !ok {
		return nil
	}
	return section.Paths()
}

// Paths lists every field path across sections in declaration order.
func (d *Definition) Paths() []formstate.FieldPath {
	var out []formstate.FieldPath
	for _, s := range d.Sections {
		out = append(out, s.Paths()...)
	}
	return out
}

// Lookup finds the field declared at path.
func (d *Definition) Lookup(path formstate.FieldPath) (FieldSpec, bool) {
	for _, s := range d.Sections {
		for _, f := range s.Fields {
			if p, err := formstate.ParsePath(f.Path); err == nil && p == path {
				return f, true
			}
		}
	}
	return FieldSpec{}, false
}

// SectionOf returns the id of the section that declares path.
func (d *Definition) SectionOf(path formstate.FieldPath) (string, bool) {
	for _, s := range d.Sections {
		for _, p := range s.Paths() {
			if p == path {
				return s.ID, true
			}
		}
	}
	return "", false
}

// InitialValues returns a deep copy of the declared initial values.
func (d *Definition) InitialValues() formstate.Values {
	return copyValues(d.Initial)
}

// Paths lists the section's field paths; unparsable entries are skipped.
func (s Section) Paths() []formstate.FieldPath {
	out := make([]formstate.FieldPath, 0, len(s.Fields))
	for _, f := range s.Fields {
		if p, err := formstate.ParsePath(f.Path); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// InputType falls back to text when the field declares none.
func (f FieldSpec) InputType() formstate.InputType {
	if f.Type == "" {
		return formstate.InputText
	}
	return f.Type
}

// ValueKind is the declared kind, or the one implied by the input type.
func (f FieldSpec) ValueKind() formstate.Kind {
	if k, ok := formstate.ParseKind(string(f.Kind)); ok && k != formstate.KindAuto {
		return k
	}
	switch f.Type {
	case formstate.InputNumber:
		return formstate.KindNumber
	case formstate.InputCheckbox:
		return formstate.KindBoolean
	}
	return formstate.KindAuto
}

// FieldPath resolves Path. Validate rejects unparsable paths, so the zero
// FieldPath only comes back for definitions that skipped validation.
func (f FieldSpec) FieldPath() formstate.FieldPath {
	p, err := formstate.ParsePath(f.Path)
	if err != nil {
		return formstate.FieldPath{}
	}
	return p
}

// DisplayLabel returns Label or a label derived from the path.
func (f FieldSpec) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	p, err := formstate.ParsePath(f.Path)
	if err != nil {
		return f.Path
	}
	return Labelize(p.Field)
}

func knownInputType(t formstate.InputType) bool {
	switch t {
	case formstate.InputText, formstate.InputNumber, formstate.InputEmail,
		formstate.InputPassword, formstate.InputTel, formstate.InputURL,
		formstate.InputDate, formstate.InputCheckbox, formstate.InputRadio,
		formstate.InputFile, formstate.InputSelect, formstate.InputTextarea,
		formstate.InputHidden:
		return true
	}
	return false
}

func copyValues(src map[string]any) formstate.Values {
	out := make(formstate.Values, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			inner := make(map[string]any, len(nested))
			for nk, nv := range nested {
				inner[nk] = nv
			}
			out[k] = inner
			continue
		}
		out[k] = v
	}
	return out
}
