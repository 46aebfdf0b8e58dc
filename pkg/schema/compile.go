package schema

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/validators"
)

// Compile turns the definition into formstate options: one Field per
// declared path with its kind and combined validator, plus the form level
// toggles. A nil registry uses validators.Default().
func Compile(def *Definition, registry *validators.Registry) ([]formstate.Option, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}
	if registry == nil {
		registry = validators.Default()
	}

	var (
		opts   []formstate.Option
		fields []formstate.Field
		errs   []error
	)
	for _, section := range def.Sections {
		for _, spec := range section.Fields {
			path, err := formstate.ParsePath(spec.Path)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidDefinition, err))
				continue
			}
			validator, err := buildValidator(registry, spec)
			if err != nil {
				errs = append(errs, fmt.Errorf("field %q: %w", path, err))
				continue
			}
			fields = append(fields, formstate.Field{
				Path:      path,
				Validator: validator,
				Kind:      spec.ValueKind(),
			})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	o := def.Options
	if o.ValidateOnChange != nil {
		opts = append(opts, formstate.WithValidateOnChange(*o.ValidateOnChange))
	}
	if o.ValidateOnBlur != nil {
		opts = append(opts, formstate.WithValidateOnBlur(*o.ValidateOnBlur))
	}
	if o.TouchOnValidateAll != nil {
		opts = append(opts, formstate.WithTouchOnValidateAll(*o.TouchOnValidateAll))
	}
	if o.StrictKinds {
		opts = append(opts, formstate.WithStrictKinds())
	}
	opts = append(opts, formstate.WithFields(fields...))
	return opts, nil
}

// NewForm builds a form seeded with the definition's initial values. Extra
// options are applied after the compiled ones.
func NewForm(def *Definition, opts ...formstate.Option) (*formstate.Form, error) {
	compiled, err := Compile(def, nil)
	if err != nil {
		return nil, err
	}
	return formstate.New(def.InitialValues(), append(compiled, opts...)...)
}

func buildValidator(registry *validators.Registry, spec FieldSpec) (formstate.Validator, error) {
	if len(spec.Rules) == 0 {
		return nil, nil
	}
	chain := make([]formstate.Validator, 0, len(spec.Rules))
	for _, rule := range spec.Rules {
		label := rule.Label
		if label == "" {
			label = spec.DisplayLabel()
		}
		v, err := registry.Build(rule.Name, label, rule.Params)
		if err != nil {
			return nil, err
		}
		chain = append(chain, v)
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return validators.Combine(chain...), nil
}
