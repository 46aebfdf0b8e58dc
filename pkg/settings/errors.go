package settings

import (
	"fmt"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/render"
)

// APIError reports a non-2xx response or an envelope with success=false.
type APIError struct {
	StatusCode int
	Message    string
	// Errors holds per-field messages keyed the way the service reports them.
	Errors map[string][]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("settings api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("settings api: status %d: %s", e.StatusCode, e.Message)
}

// Mapping resolves the field errors onto paths. The top-level message is kept
// as a form-level message.
func (e *APIError) Mapping(paths []formstate.FieldPath) render.ErrorMapping {
	mapping := render.MapErrorPayload(paths, e.Errors)
	if e.Message != "" {
		mapping.Form = render.MergeFormErrors(mapping.Form, e.Message)
	}
	return mapping
}
