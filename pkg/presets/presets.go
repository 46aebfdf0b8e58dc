// Package presets ships ready-made form definitions: the system settings
// panel, the user profile form and the change password form.
package presets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/schema"
)

const (
	SystemSettings = "system-settings"
	UserProfile    = "user-profile"
	ChangePassword = "change-password"
)

// ErrUnknownPreset is returned by Load for names Names does not list.
var ErrUnknownPreset = errors.New("presets: unknown preset")

//go:embed forms/*.yaml
var files embed.FS

// FS exposes the embedded definitions.
func FS() fs.FS {
	sub, err := fs.Sub(files, "forms")
	if err != nil {
		panic(err)
	}
	return sub
}

// Names lists the available presets.
func Names() []string {
	entries, err := fs.ReadDir(files, "forms")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Load parses the named preset.
func Load(name string) (*schema.Definition, error) {
	file := name + ".yaml"
	if _, err := fs.Stat(FS(), file); err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	return schema.Load(FS(), file)
}

// NewForm loads the named preset and builds a form from it.
func NewForm(name string, opts ...formstate.Option) (*schema.Definition, *formstate.Form, error) {
	def, err := Load(name)
	if err != nil {
		return nil, nil, err
	}
	form, err := schema.NewForm(def, opts...)
	if err != nil {
		return nil, nil, err
	}
	return def, form, nil
}
