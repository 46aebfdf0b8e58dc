package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/formstate"
)

// MessageSeparator joins several server messages for one field into the
// single message a form records.
const MessageSeparator = "; "

// ErrorMapping splits a server error payload into field messages keyed by
// the form's paths and form-level messages.
type ErrorMapping struct {
	Fields map[formstate.FieldPath][]string
	Form   []string
}

// ErrorMap flattens the field messages for Form.ApplyErrors.
func (m ErrorMapping) ErrorMap() formstate.ErrorMap {
	if len(m.Fields) == 0 {
		return nil
	}
	out := make(formstate.ErrorMap, len(m.Fields))
	for path, messages := range m.Fields {
		out[path] = strings.Join(messages, MessageSeparator)
	}
	return out
}

// Apply records the field messages on form and returns the form-level ones.
func (m ErrorMapping) Apply(form *formstate.Form) []string {
	if form != nil {
		form.ApplyErrors(m.ErrorMap())
	}
	return m.Form
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload resolves server error keys against the known field paths.
// Keys may be dotted ("security.sessionTimeout"), JSON pointers
// ("/body/security/sessionTimeout"), JSONPath ("$.email.smtpPort") or
// snake_case variants ("security.session_timeout"). Envelope segments such as
// body or request are skipped. Keys that match no field become form-level
// messages.
func MapErrorPayload(paths []formstate.FieldPath, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[formstate.FieldPath][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	index := make(map[string]formstate.FieldPath, len(paths))
	for _, p := range paths {
		index[foldKey(p.String())] = p
	}

	for _, key := range sortedPayloadKeys(payload) {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		path, ok := resolvePath(key, index)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[path] = normalizeMessages(append(mapping.Fields[path], messages...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func resolvePath(raw string, index map[string]formstate.FieldPath) (formstate.FieldPath, bool) {
	if isFormLevelKey(raw) {
		return formstate.FieldPath{}, false
	}
	segments := parsePathSegments(raw)
	if len(segments) == 0 {
		return formstate.FieldPath{}, false
	}

	var (
		best     formstate.FieldPath
		bestSize int
	)
	for _, variant := range segmentVariants(segments) {
		if p, size := longestMatch(variant, index); size > bestSize {
			best, bestSize = p, size
		}
	}
	return best, bestSize > 0
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for len(clean) > 0 && strings.ContainsRune("#/.$", rune(clean[0])) {
		clean = clean[1:]
	}
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)

	parts := strings.FieldsFunc(clean, func(r rune) bool { return r == '.' || r == '/' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func segmentVariants(segments []string) [][]string {
	unwrapped := dropWrapperSegments(segments)
	candidates := [][]string{
		segments,
		unwrapped,
		stripNumericSegments(segments),
		stripNumericSegments(unwrapped),
	}
	seen := make(map[string]struct{}, len(candidates))
	out := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		if len(c) == 0 {
			continue
		}
		key := strings.Join(c, ".")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
	"settings":   {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

// longestMatch tries the longest prefix first; paths have at most two
// segments so only the first two matter.
func longestMatch(segments []string, index map[string]formstate.FieldPath) (formstate.FieldPath, int) {
	end := len(segments)
	if end > 2 {
		end = 2
	}
	for ; end > 0; end-- {
		if p, ok := index[foldKey(strings.Join(segments[:end], "."))]; ok {
			return p, end
		}
	}
	return formstate.FieldPath{}, 0
}

// foldKey ignores case, underscores and dashes so snake_case and kebab-case
// server keys match camelCase paths.
func foldKey(key string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(key))
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortedPayloadKeys(payload map[string][]string) []string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
