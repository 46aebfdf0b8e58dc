package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

// NavigationScriptName is the bundled script that wires Enter and
// Ctrl/Cmd+Arrow focus movement to the data-next / data-prev attributes.
const NavigationScriptName = "formstate-nav.js"

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// AssetsFS exposes the runtime assets so callers can serve them over HTTP.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
