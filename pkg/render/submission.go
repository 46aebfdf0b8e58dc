package render

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/formstate"
)

// DefaultVersionField is the hidden input carrying the form snapshot version.
const DefaultVersionField = "_version"

// HiddenField is a hidden input emitted next to the visible controls.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: formstate.StringValue(value),
	}
}

// CSRFToken carries a token under the input name the backend expects
// ("_csrf", "csrf_token").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// VersionField carries an optimistic locking token.
func VersionField(name string, version any) HiddenField {
	return Hidden(name, version)
}

// FormVersion emits the form's snapshot version under DefaultVersionField.
func FormVersion(form *formstate.Form) HiddenField {
	if form == nil {
		return HiddenField{}
	}
	return VersionField(DefaultVersionField, form.Version())
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names
// are ignored; later fields win on collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders hidden fields by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	clean := MergeHiddenFields(fields)
	if len(clean) == 0 {
		return nil
	}
	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}

// FormValues flattens processed values into form-urlencoded pairs with
// dotted keys. Nil values are omitted; hidden fields are appended.
func FormValues(values formstate.Values, hidden ...HiddenField) url.Values {
	out := url.Values{}
	for key, value := range values {
		switch typed := value.(type) {
		case map[string]any:
			for field, leaf := range typed {
				addFormValue(out, key+"."+field, leaf)
			}
		case formstate.Values:
			for field, leaf := range typed {
				addFormValue(out, key+"."+field, leaf)
			}
		default:
			addFormValue(out, key, value)
		}
	}
	for _, h := range hidden {
		if h.Name != "" {
			out.Set(h.Name, h.Value)
		}
	}
	return out
}

func addFormValue(out url.Values, key string, value any) {
	switch typed := value.(type) {
	case nil:
	case []formstate.File:
		for _, f := range typed {
			out.Add(key, f.Name)
		}
	case float64:
		out.Set(key, strconv.FormatFloat(typed, 'f', -1, 64))
	case []string:
		for _, s := range typed {
			out.Add(key, s)
		}
	default:
		out.Set(key, fmt.Sprint(typed))
	}
}
