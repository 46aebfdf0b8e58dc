package formstate

import (
	"fmt"
	"strings"
)

// FieldPath addresses a single form value. Section is empty for top-level
// fields; otherwise the value lives at values[Section][Field].
type FieldPath struct {
	Section string
	Field   string
}

// Path returns a top-level field path.
func Path(field string) FieldPath {
	return FieldPath{Field: field}
}

// Nested returns a section.field path.
func Nested(section, field string) FieldPath {
	return FieldPath{Section: section, Field: field}
}

// ParsePath parses "field" or "section.field". Empty segments and paths with
// more than two segments are rejected.
func ParsePath(raw string) (FieldPath, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return FieldPath{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	parts := strings.Split(trimmed, ".")
	switch len(parts) {
	case 1:
		return Path(parts[0]), nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return FieldPath{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, raw)
		}
		return Nested(parts[0], parts[1]), nil
	default:
		return FieldPath{}, fmt.Errorf("%w: %q is nested deeper than section.field", ErrInvalidPath, raw)
	}
}

// MustPath is like ParsePath but panics on invalid input. Intended for
// literals.
func MustPath(raw string) FieldPath {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Paths parses a list of raw paths, typically a field order.
func Paths(raw ...string) ([]FieldPath, error) {
	out := make([]FieldPath, 0, len(raw))
	for _, r := range raw {
		p, err := ParsePath(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// String renders the dotted form.
func (p FieldPath) String() string {
	if p.Section == "" {
		return p.Field
	}
	return p.Section + "." + p.Field
}

// IsNested reports whether the path addresses a section member.
func (p FieldPath) IsNested() bool {
	return p.Section != ""
}

// IsZero reports whether the path is unset.
func (p FieldPath) IsZero() bool {
	return p.Field == "" && p.Section == ""
}

// MarshalText lets maps keyed by FieldPath encode as objects with dotted keys.
func (p FieldPath) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a dotted key.
func (p *FieldPath) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func indexOfPath(order []FieldPath, target FieldPath) int {
	for i, p := range order {
		if p == target {
			return i
		}
	}
	return -1
}
