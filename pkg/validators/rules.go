// Package validators provides the field validators used by formstate forms
// and a registry that resolves them by rule name for declarative definitions.
package validators

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formstate/pkg/formstate"
)

// formats checks string formats (email, url) through validator tags.
var formats = validator.New()

var (
	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	lowerPattern    = regexp.MustCompile(`[a-z]`)
	digitPattern    = regexp.MustCompile(`\d`)
	specialPattern  = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// Required rejects nil, blank strings, false and empty collections.
func Required(label string) formstate.Validator {
	return func(value any, _ formstate.Values) string {
		if isEmpty(value) || value == false {
			return label + " is required"
		}
		return ""
	}
}

// Email requires a well formed address.
func Email(value any, _ formstate.Values) string {
	s := asString(value)
	if strings.TrimSpace(s) == "" {
		return "Email is required"
	}
	if err := formats.Var(s, "email"); err != nil {
		return "Invalid email format"
	}
	return ""
}

// OptionalEmail validates the format only when a value is present.
func OptionalEmail(value any, values formstate.Values) string {
	if isEmpty(value) {
		return ""
	}
	return Email(value, values)
}

// Phone is optional; separators are ignored.
func Phone(value any, _ formstate.Values) string {
	s := asString(value)
	if s == "" {
		return ""
	}
	if !phonePattern.MatchString(phoneSeparators.Replace(s)) {
		return "Invalid phone number format"
	}
	return ""
}

// URL is optional.
func URL(value any, _ formstate.Values) string {
	s := asString(value)
	if s == "" {
		return ""
	}
	if err := formats.Var(s, "url"); err != nil {
		return "Invalid URL format"
	}
	return ""
}

// NumberRange accepts blank values; otherwise the value must be a number
// within [min, max].
func NumberRange(min, max float64, label string) formstate.Validator {
	return func(value any, _ formstate.Values) string {
		n, present, ok := asNumber(value)
		if !present {
			return ""
		}
		if !ok {
			return label + " must be a valid number"
		}
		if n < min || n > max {
			return fmt.Sprintf("%s must be between %s and %s", label, formatNumber(min), formatNumber(max))
		}
		return ""
	}
}

// Min is the single-sided lower bound variant of NumberRange.
func Min(min float64, label string) formstate.Validator {
	return func(value any, _ formstate.Values) string {
		n, present, ok := asNumber(value)
		if !present {
			return ""
		}
		if !ok {
			return label + " must be a valid number"
		}
		if n < min {
			return fmt.Sprintf("%s must be at least %s", label, formatNumber(min))
		}
		return ""
	}
}

// Max is the single-sided upper bound variant of NumberRange.
func Max(max float64, label string) formstate.Validator {
	return func(value any, _ formstate.Values) string {
		n, present, ok := asNumber(value)
		if !present {
			return ""
		}
		if !ok {
			return label + " must be a valid number"
		}
		if n > max {
			return fmt.Sprintf("%s must be no more than %s", label, formatNumber(max))
		}
		return ""
	}
}

// StringLength is optional; a max of zero or less leaves the upper bound
// open. Length counts runes.
func StringLength(min, max int, label string) formstate.Validator {
	return func(value any, _ formstate.Values) string {
		s := asString(value)
		if s == "" {
			return ""
		}
		n := len([]rune(s))
		if n < min {
			return fmt.Sprintf("%s must be at least %d characters", label, min)
		}
		if max > 0 && n > max {
			return fmt.Sprintf("%s must be no more than %d characters", label, max)
		}
		return ""
	}
}

// Password enforces the strength rules and reports every missing one.
func Password(value any, _ formstate.Values) string {
	s := asString(value)
	if s == "" {
		return "Password is required"
	}
	var missing []string
	if len([]rune(s)) < 8 {
		missing = append(missing, "at least 8 characters")
	}
	if !upperPattern.MatchString(s) {
		missing = append(missing, "an uppercase letter")
	}
	if !lowerPattern.MatchString(s) {
		missing = append(missing, "a lowercase letter")
	}
	if !digitPattern.MatchString(s) {
		missing = append(missing, "a number")
	}
	if !specialPattern.MatchString(s) {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return "Password must contain " + strings.Join(missing, ", ")
	}
	return ""
}

// Matches requires value to equal the value stored at other.
func Matches(other formstate.FieldPath, emptyMessage, mismatchMessage string) formstate.Validator {
	return func(value any, values formstate.Values) string {
		if isEmpty(value) {
			return emptyMessage
		}
		want, _ := lookup(values, other)
		if asString(value) != asString(want) {
			return mismatchMessage
		}
		return ""
	}
}

// ConfirmPassword checks a confirmation field against newPassword.
func ConfirmPassword(value any, values formstate.Values) string {
	return Matches(formstate.Path("newPassword"), "Please confirm your password", "Passwords do not match")(value, values)
}

// Pattern is optional; present values must match expr.
func Pattern(expr, label string) (formstate.Validator, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("validators: pattern for %s: %w", label, err)
	}
	return func(value any, _ formstate.Values) string {
		s := asString(value)
		if s == "" {
			return ""
		}
		if !re.MatchString(s) {
			return label + " has an invalid format"
		}
		return ""
	}, nil
}

// OneOf restricts a present value to a fixed set.
func OneOf(allowed []string, label string) formstate.Validator {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(value any, _ formstate.Values) string {
		s := asString(value)
		if s == "" {
			return ""
		}
		if _, ok := set[s]; !ok {
			return fmt.Sprintf("%s must be one of: %s", label, strings.Join(allowed, ", "))
		}
		return ""
	}
}

// Combine runs validators in order and returns the first message.
func Combine(validators ...formstate.Validator) formstate.Validator {
	return func(value any, values formstate.Values) string {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if msg := v(value, values); msg != "" {
				return msg
			}
		}
		return ""
	}
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []formstate.File:
		return len(typed) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

func asString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}

// asNumber reports (number, present, ok). Blank strings and nil are absent.
func asNumber(value any) (float64, bool, bool) {
	switch typed := value.(type) {
	case nil:
		return 0, false, false
	case string:
		if strings.TrimSpace(typed) == "" {
			return 0, false, false
		}
		n, ok := formstate.ParseNumber(typed)
		return n, true, ok
	case int:
		return float64(typed), true, true
	case int32:
		return float64(typed), true, true
	case int64:
		return float64(typed), true, true
	case uint64:
		return float64(typed), true, true
	case float32:
		return float64(typed), true, true
	case float64:
		return typed, true, true
	default:
		return 0, true, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func lookup(values formstate.Values, path formstate.FieldPath) (any, bool) {
	if !path.IsNested() {
		v, ok := values[path.Field]
		return v, ok
	}
	switch section := values[path.Section].(type) {
	case map[string]any:
		v, ok := section[path.Field]
		return v, ok
	case formstate.Values:
		v, ok := section[path.Field]
		return v, ok
	}
	return nil, false
}
