package formstate

import (
	"reflect"
	"sync"
)

// Handle is a focusable control.
type Handle interface {
	Focus()
}

// HandleFunc adapts a function into a Handle.
type HandleFunc func()

// Focus calls the underlying function.
func (fn HandleFunc) Focus() {
	if fn != nil {
		fn()
	}
}

// Registry maps field paths to focus handles. At most one handle is held per
// path; re-registration overwrites. Handles are invoked outside the registry
// lock so a Focus implementation may call back into the registry or form.
type Registry struct {
	mu      sync.RWMutex
	handles map[FieldPath]Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[FieldPath]Handle)}
}

// Register stores or overwrites the handle for path. A nil handle, including
// a typed nil pointer, func or map behind the interface, is ignored.
func (r *Registry) Register(path FieldPath, handle Handle) {
	if r == nil || handle == nil || isNilHandle(handle) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handles == nil {
		r.handles = make(map[FieldPath]Handle)
	}
	r.handles[path] = handle
}

// Unregister drops the handle for path, typically when its control unmounts.
func (r *Registry) Unregister(path FieldPath) {
	if r == nil {
		return
	}
	r.mu.Lock()
	delete(r.handles, path)
	r.mu.Unlock()
}

// Has reports whether a handle is registered for path.
func (r *Registry) Has(path FieldPath) bool {
	_, ok := r.handle(path)
	return ok
}

// Len reports the number of registered handles.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Focus invokes the handle registered for path. It reports false when none
// is registered.
func (r *Registry) Focus(path FieldPath) bool {
	h, ok := r.handle(path)
	if !ok {
		return false
	}
	h.Focus()
	return true
}

func (r *Registry) handle(path FieldPath) (Handle, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[path]
	return h, ok
}

func isNilHandle(h Handle) bool {
	if h == nil {
		return true
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}
