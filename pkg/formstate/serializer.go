package formstate

import (
	"math"
	"strconv"
	"strings"
)

// Kind declares the submission type of a field.
type Kind string

const (
	// KindAuto coerces any numeric-looking string to a number. It applies to
	// fields registered without a kind unless WithStrictKinds is set.
	KindAuto    Kind = ""
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
)

// ParseKind validates a kind name.
func ParseKind(raw string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindAuto, KindString, KindNumber, KindInteger, KindBoolean:
		return k, true
	default:
		return KindAuto, false
	}
}

// ParseNumber is the strict numeric predicate: the trimmed string must be
// non-empty, parse fully as a float and be finite.
func ParseNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

type serializer struct {
	kinds  map[FieldPath]Kind
	strict bool
}

// project walks the one-level store and returns a typed copy. The input is
// never mutated.
func (s serializer) project(values Values) Values {
	out := make(Values, len(values))
	for key, value := range values {
		if section, ok := asSection(value); ok {
			typed := make(map[string]any, len(section))
			for field, leaf := range section {
				typed[field] = s.coerce(Nested(key, field), leaf)
			}
			out[key] = typed
			continue
		}
		out[key] = s.coerce(Path(key), value)
	}
	return out
}

func (s serializer) coerce(path FieldPath, value any) any {
	kind, declared := s.kinds[path]
	if !declared && s.strict {
		return cloneLeaf(value)
	}
	raw, isString := value.(string)
	if !isString {
		return coerceNative(kind, value)
	}

	switch kind {
	case KindString:
		return raw
	case KindNumber:
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		if f, ok := ParseNumber(raw); ok {
			return f
		}
		return raw
	case KindInteger:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil
		}
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return i
		}
		if f, ok := ParseNumber(trimmed); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return raw
	case KindBoolean:
		if b, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			return b
		}
		if strings.EqualFold(strings.TrimSpace(raw), "on") {
			return true
		}
		return raw
	default:
		if f, ok := ParseNumber(raw); ok {
			return f
		}
		return raw
	}
}

// coerceNative widens already typed numbers to the declared kind.
func coerceNative(kind Kind, value any) any {
	switch kind {
	case KindInteger:
		switch n := value.(type) {
		case int:
			return int64(n)
		case int32:
			return int64(n)
		case float64:
			if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
				return int64(n)
			}
		}
	case KindNumber:
		switch n := value.(type) {
		case int:
			return float64(n)
		case int32:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return cloneLeaf(value)
}
