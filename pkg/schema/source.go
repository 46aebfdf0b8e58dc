package schema

import (
	"path/filepath"
)

// Source identifies where a definition was loaded from so errors can point
// at the file or embedded entry that produced them.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindFS     SourceKind = "fs"
	SourceKindInline SourceKind = "inline"
	SourceKindAPI    SourceKind = "openapi"
)

type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }
func (s source) Location() string { return s.location }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS returns a Source identifying an entry inside an fs.FS.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: name}
}

func inlineSource() Source {
	return source{kind: SourceKindInline, location: "<inline>"}
}

func openAPISource(selector string) Source {
	return source{kind: SourceKindAPI, location: selector}
}
