package formstate

import "sync/atomic"

// Values holds form data. Leaves are scalars, booleans, []File, or a single
// level of nested map[string]any sections.
type Values map[string]any

// File describes one entry of a file input's selection.
type File struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

type snapshot struct {
	values  Values
	version uint64
}

// Store is a copy-on-write value store. Every write publishes a fresh
// snapshot through a single atomic reference; published snapshots are never
// mutated, so readers holding one always see a consistent view.
type Store struct {
	current atomic.Pointer[snapshot]
}

// NewStore seeds a store with a clone of initial.
func NewStore(initial Values) *Store {
	s := &Store{}
	s.current.Store(&snapshot{values: cloneValues(initial)})
	return s
}

// Snapshot returns the current snapshot. Callers must treat it as read-only.
func (s *Store) Snapshot() Values {
	return s.load().values
}

// Version increments on every published write.
func (s *Store) Version() uint64 {
	return s.load().version
}

// Get resolves a direct or section.field path.
func (s *Store) Get(path FieldPath) (any, bool) {
	return lookup(s.load().values, path)
}

// Set writes value at path. For nested paths only the named section is
// replaced; sibling fields and other sections are shared with the previous
// snapshot.
func (s *Store) Set(path FieldPath, value any) {
	for {
		prev := s.load()
		next := &snapshot{
			values:  withValue(prev.values, path, value),
			version: prev.version + 1,
		}
		if s.current.CompareAndSwap(prev, next) {
			return
		}
	}
}

// SetAll replaces the whole store.
func (s *Store) SetAll(values Values) {
	for {
		prev := s.load()
		next := &snapshot{values: cloneValues(values), version: prev.version + 1}
		if s.current.CompareAndSwap(prev, next) {
			return
		}
	}
}

func (s *Store) load() *snapshot {
	if snap := s.current.Load(); snap != nil {
		return snap
	}
	s.current.CompareAndSwap(nil, &snapshot{values: Values{}})
	return s.current.Load()
}

func lookup(values Values, path FieldPath) (any, bool) {
	if values == nil || path.Field == "" {
		return nil, false
	}
	if !path.IsNested() {
		v, ok := values[path.Field]
		return v, ok
	}
	section, ok := asSection(values[path.Section])
	if !ok {
		return nil, false
	}
	v, ok := section[path.Field]
	return v, ok
}

func withValue(prev Values, path FieldPath, value any) Values {
	next := make(Values, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	if !path.IsNested() {
		next[path.Field] = value
		return next
	}
	current, _ := asSection(prev[path.Section])
	section := make(map[string]any, len(current)+1)
	for k, v := range current {
		section[k] = v
	}
	section[path.Field] = value
	next[path.Section] = section
	return next
}

func asSection(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case Values:
		return map[string]any(typed), true
	default:
		return nil, false
	}
}

func cloneValues(src Values) Values {
	out := make(Values, len(src))
	for k, v := range src {
		if section, ok := asSection(v); ok {
			clone := make(map[string]any, len(section))
			for sk, sv := range section {
				clone[sk] = cloneLeaf(sv)
			}
			out[k] = clone
			continue
		}
		out[k] = cloneLeaf(v)
	}
	return out
}

func cloneLeaf(value any) any {
	switch typed := value.(type) {
	case []File:
		return append([]File(nil), typed...)
	case []any:
		return append([]any(nil), typed...)
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}
