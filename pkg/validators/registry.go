package validators

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-formstate/pkg/formstate"
)

var (
	// ErrUnknownRule is returned when a rule name has no registered factory.
	ErrUnknownRule = errors.New("validators: unknown rule")
	// ErrInvalidParams reports a rule whose parameters cannot be used.
	ErrInvalidParams = errors.New("validators: invalid rule params")
)

// Params carries the rule arguments declared next to the rule name.
type Params map[string]any

// Factory builds a validator for a field labelled label.
type Factory func(label string, params Params) (formstate.Validator, error)

// Registry resolves validators by rule name. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry preloaded with the built-in rules.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("required", func(label string, _ Params) (formstate.Validator, error) {
		return Required(label), nil
	})
	r.Register("email", func(_ string, p Params) (formstate.Validator, error) {
		if p.Bool("optional") {
			return OptionalEmail, nil
		}
		return Email, nil
	})
	r.Register("phone", staticFactory(Phone))
	r.Register("url", staticFactory(URL))
	r.Register("password", staticFactory(Password))
	r.Register("range", rangeFactory)
	r.Register("min", boundFactory("min", Min))
	r.Register("max", boundFactory("max", Max))
	r.Register("length", lengthFactory)
	r.Register("matches", matchesFactory)
	r.Register("pattern", func(label string, p Params) (formstate.Validator, error) {
		expr := p.String("pattern")
		if expr == "" {
			return nil, fmt.Errorf("%w: pattern requires a pattern", ErrInvalidParams)
		}
		return Pattern(expr, label)
	})
	r.Register("oneOf", func(label string, p Params) (formstate.Validator, error) {
		values := p.Strings("values")
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: oneOf requires values", ErrInvalidParams)
		}
		return OneOf(values, label), nil
	})
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the shared registry with the built-in rules.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory Factory) {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return
	}
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Has reports whether name resolves to a factory.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names lists the registered rule names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Build resolves a single rule.
func (r *Registry) Build(name, label string, params Params) (formstate.Validator, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRule, name)
	}
	v, err := factory(label, params)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", name, err)
	}
	return v, nil
}

func staticFactory(v formstate.Validator) Factory {
	return func(string, Params) (formstate.Validator, error) { return v, nil }
}

func rangeFactory(label string, p Params) (formstate.Validator, error) {
	min, okMin := p.Float("min")
	max, okMax := p.Float("max")
	if !okMin || !okMax {
		return nil, fmt.Errorf("%w: range requires numeric min and max", ErrInvalidParams)
	}
	if min > max {
		return nil, fmt.Errorf("%w: range min %g exceeds max %g", ErrInvalidParams, min, max)
	}
	return NumberRange(min, max, label), nil
}

func boundFactory(key string, build func(float64, string) formstate.Validator) Factory {
	return func(label string, p Params) (formstate.Validator, error) {
		n, ok := p.Float(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires a numeric %s", ErrInvalidParams, key, key)
		}
		return build(n, label), nil
	}
}

func lengthFactory(label string, p Params) (formstate.Validator, error) {
	min, _ := p.Float("min")
	max, _ := p.Float("max")
	if min < 0 || (max > 0 && min > max) {
		return nil, fmt.Errorf("%w: length bounds %g..%g", ErrInvalidParams, min, max)
	}
	return StringLength(int(min), int(max), label), nil
}

func matchesFactory(label string, p Params) (formstate.Validator, error) {
	target, err := formstate.ParsePath(p.String("field"))
	if err != nil {
		return nil, fmt.Errorf("%w: matches field: %v", ErrInvalidParams, err)
	}
	empty := p.String("emptyMessage")
	if empty == "" {
		empty = label + " is required"
	}
	mismatch := p.String("message")
	if mismatch == "" {
		mismatch = label + " does not match"
	}
	return Matches(target, empty, mismatch), nil
}

// String returns params[key] as a string, or "".
func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Float returns params[key] as a number. Numeric strings are accepted.
func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		return formstate.ParseNumber(v)
	}
	return 0, false
}

// Bool returns params[key] as a boolean.
func (p Params) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Strings returns params[key] as a string slice.
func (p Params) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}
