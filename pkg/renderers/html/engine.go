package html

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// engine wraps a pongo2 template set with a parsed template cache.
type engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

func newEngine(files fs.FS) (*engine, error) {
	if files == nil {
		return nil, errors.New("html renderer: template fs is nil")
	}
	set := pongo2.NewSet("formstate", pongo2.NewFSLoader(files))
	set.Globals = pongo2.Context{}
	registerFilters()
	return &engine{
		set:       set,
		templates: make(map[string]*pongo2.Template),
	}, nil
}

func (e *engine) render(name string, data pongo2.Context) ([]byte, error) {
	tmpl, err := e.template(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(data, &buf); err != nil {
		return nil, fmt.Errorf("html renderer: execute %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (e *engine) template(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("html renderer: load %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("trim") {
			_ = pongo2.RegisterFilter("trim", filterTrim)
		}
	})
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
