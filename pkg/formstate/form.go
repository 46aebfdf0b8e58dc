package formstate

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
)

// ErrorMap holds the current validation message per path. A missing key
// means no error is recorded, not that the field is valid.
type ErrorMap map[FieldPath]string

// TouchedMap records fields that have received a value change.
type TouchedMap map[FieldPath]bool

// Form owns the state of one mounted form.
type Form struct {
	store      *Store
	registry   *Registry
	logger     *slog.Logger
	serializer serializer

	validateOnChange   bool
	validateOnBlur     bool
	touchOnValidateAll bool

	validators map[FieldPath]Validator
	order      []FieldPath

	// mu guards the fields below. Change, blur and whole-form validation
	// also write to or read from store under it, so ValidateAll never sees a
	// new value paired with stale touched or error state.
	mu      sync.Mutex
	initial Values
	errors  ErrorMap
	touched TouchedMap
	dirty   bool
}

// New constructs a form seeded with initial. Option errors (invalid paths,
// unknown kinds) are joined and returned.
func New(initial Values, opts ...Option) (*Form, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if len(cfg.errs) > 0 {
		return nil, errors.Join(cfg.errs...)
	}

	f := &Form{
		store:              NewStore(initial),
		registry:           cfg.registry,
		logger:             cfg.logger,
		validateOnChange:   cfg.validateOnChange,
		validateOnBlur:     cfg.validateOnBlur,
		touchOnValidateAll: cfg.touchOnValidateAll,
		serializer:         serializer{kinds: make(map[FieldPath]Kind), strict: cfg.strictKinds},
		validators:         make(map[FieldPath]Validator),
		initial:            cloneValues(initial),
		errors:             make(ErrorMap),
		touched:            make(TouchedMap),
	}
	if f.registry == nil {
		f.registry = NewRegistry()
	}
	if f.logger == nil {
		f.logger = slog.New(slog.DiscardHandler)
	}

	for _, field := range cfg.fields {
		if field.Kind != KindAuto {
			f.serializer.kinds[field.Path] = field.Kind
		}
		if field.Validator == nil {
			continue
		}
		if _, exists := f.validators[field.Path]; !exists {
			f.order = append(f.order, field.Path)
		}
		f.validators[field.Path] = field.Validator
	}

	return f, nil
}

// Registry exposes the focus registry so renderers can register handles.
func (f *Form) Registry() *Registry {
	return f.registry
}

// Value resolves a path against the current snapshot.
func (f *Form) Value(path FieldPath) (any, bool) {
	return f.store.Get(path)
}

// Set writes a value programmatically. It neither touches nor validates.
func (f *Form) Set(path FieldPath, value any) {
	f.store.Set(path, value)
}

// SetValues replaces every value, as done when settings are loaded from a
// server. Errors and touched flags are left as they are.
func (f *Form) SetValues(values Values) {
	f.store.SetAll(values)
}

// Reset replaces the store with newInitial (or the construction snapshot when
// omitted) and clears errors, touched flags and dirty state.
func (f *Form) Reset(newInitial ...Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.initial
	if len(newInitial) > 0 {
		next = newInitial[0]
	}
	f.store.SetAll(next)
	f.errors = make(ErrorMap)
	f.touched = make(TouchedMap)
	f.dirty = false
	f.logger.Debug("formstate: reset")
}

// ValidateField runs the validator registered for path against value and
// records the outcome. A path without a validator is valid and any stale
// error for it is dropped.
func (f *Form) ValidateField(path FieldPath, value any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked(path, value)
}

// ValidateAll runs every registered validator against the current values and
// swaps in the resulting error map in one step.
func (f *Form) ValidateAll() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := cloneValues(f.store.Snapshot())
	next := make(ErrorMap)
	for _, path := range f.order {
		value, _ := lookup(values, path)
		if msg := f.validators[path](value, values); msg != "" {
			next[path] = msg
		}
		if f.touchOnValidateAll {
			f.touched[path] = true
		}
	}
	f.errors = next
	f.logger.Debug("formstate: validated all fields", "fields", len(f.order), "errors", len(next))
	return len(next) == 0
}

// ApplyErrors merges externally produced messages, typically mapped from a
// server response, and marks those paths touched so they are displayed.
// Empty messages clear the path.
func (f *Form) ApplyErrors(errs ErrorMap) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for path, msg := range errs {
		if msg == "" {
			delete(f.errors, path)
			continue
		}
		f.errors[path] = msg
		f.touched[path] = true
	}
}

// ProcessedValues returns the typed submission payload. The live store is not
// modified.
func (f *Form) ProcessedValues() Values {
	return f.serializer.project(f.store.Snapshot())
}

// Values returns a copy of the current values.
func (f *Form) Values() Values {
	return cloneValues(f.store.Snapshot())
}

// Version increments on every value write.
func (f *Form) Version() uint64 {
	return f.store.Version()
}

// Errors returns a copy of the error map.
func (f *Form) Errors() ErrorMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(ErrorMap, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Error returns the recorded message for path.
func (f *Form) Error(path FieldPath) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors[path]
}

// Touched returns a copy of the touched map.
func (f *Form) Touched() TouchedMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(TouchedMap, len(f.touched))
	for k, v := range f.touched {
		out[k] = v
	}
	return out
}

// IsTouched reports whether path has been touched.
func (f *Form) IsTouched(path FieldPath) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched[path]
}

// ShouldShowError applies the conventional display policy: an error is shown
// only for touched fields.
func (f *Form) ShouldShowError(path FieldPath) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched[path] && f.errors[path] != ""
}

// HasErrors reports whether any error is recorded.
func (f *Form) HasErrors() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors) > 0
}

// IsValid is the negation of HasErrors. Unvalidated fields count as valid.
func (f *Form) IsValid() bool {
	return !f.HasErrors()
}

// IsDirty reports whether a change event was handled since construction or
// the last Reset.
func (f *Form) IsDirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

// ValidatedPaths lists the paths that carry a validator, in registration
// order.
func (f *Form) ValidatedPaths() []FieldPath {
	return append([]FieldPath(nil), f.order...)
}

// Focus focuses the control registered for path.
func (f *Form) Focus(path FieldPath) bool {
	return f.registry.Focus(path)
}

// FocusNext focuses the field after current in order.
func (f *Form) FocusNext(current FieldPath, order []FieldPath) bool {
	return f.registry.Next(current, order)
}

// FocusPrevious focuses the field before current in order.
func (f *Form) FocusPrevious(current FieldPath, order []FieldPath) bool {
	return f.registry.Previous(current, order)
}

// RegisterHandle binds a focus target to path. A nil handle is ignored.
func (f *Form) RegisterHandle(path FieldPath, h Handle) {
	f.registry.Register(path, h)
}

// UnregisterHandle drops the focus target for path.
func (f *Form) UnregisterHandle(path FieldPath) {
	f.registry.Unregister(path)
}

func (f *Form) validateLocked(path FieldPath, value any) bool {
	v, ok := f.validators[path]
	if !ok {
		delete(f.errors, path)
		return true
	}
	if msg := v(value, cloneValues(f.store.Snapshot())); msg != "" {
		f.errors[path] = msg
		return false
	}
	delete(f.errors, path)
	return true
}

func (f *Form) hasValidator(path FieldPath) bool {
	_, ok := f.validators[path]
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
