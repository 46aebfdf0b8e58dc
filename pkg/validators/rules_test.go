package validators

import (
	"testing"

	"github.com/goliatone/go-formstate/pkg/formstate"
)

func TestRules(t *testing.T) {
	cases := []struct {
		name  string
		rule  formstate.Validator
		value any
		want  string
	}{
		{"required blank", Required("Company name"), "  ", "Company name is required"},
		{"required nil", Required("Company name"), nil, "Company name is required"},
		{"required false", Required("Terms"), false, "Terms is required"},
		{"required empty files", Required("Avatar"), []formstate.File{}, "Avatar is required"},
		{"required zero number", Required("Days"), 0, ""},
		{"required ok", Required("Company name"), "Acme", ""},

		{"email missing", Email, "", "Email is required"},
		{"email bad", Email, "not-an-email", "Invalid email format"},
		{"email ok", Email, "admin@ems.com", ""},
		{"optional email blank", OptionalEmail, "", ""},
		{"optional email bad", OptionalEmail, "nope", "Invalid email format"},

		{"phone blank", Phone, "", ""},
		{"phone formatted", Phone, "+1 (555) 123-4567", ""},
		{"phone leading zero", Phone, "0123", "Invalid phone number format"},
		{"phone letters", Phone, "555-CALL", "Invalid phone number format"},

		{"url blank", URL, "", ""},
		{"url ok", URL, "https://example.com/path", ""},
		{"url bad", URL, "example", "Invalid URL format"},

		{"range blank", NumberRange(0, 365, "Vacation days"), "", ""},
		{"range nil", NumberRange(0, 365, "Vacation days"), nil, ""},
		{"range text", NumberRange(0, 365, "Vacation days"), "abc", "Vacation days must be a valid number"},
		{"range low", NumberRange(5, 120, "Session timeout"), "2", "Session timeout must be between 5 and 120"},
		{"range high", NumberRange(1, 65535, "SMTP port"), 70000, "SMTP port must be between 1 and 65535"},
		{"range edge", NumberRange(0, 365, "Vacation days"), "365", ""},
		{"range float", NumberRange(0.5, 1.5, "Ratio"), 2.0, "Ratio must be between 0.5 and 1.5"},
		{"min", Min(1, "Count"), "0", "Count must be at least 1"},
		{"max", Max(10, "Count"), int64(11), "Count must be no more than 10"},

		{"length blank", StringLength(2, 5, "Code"), "", ""},
		{"length short", StringLength(2, 5, "Code"), "a", "Code must be at least 2 characters"},
		{"length long", StringLength(2, 5, "Code"), "abcdef", "Code must be no more than 5 characters"},
		{"length runes", StringLength(2, 3, "Code"), "äöü", ""},
		{"length open max", StringLength(2, 0, "Code"), "abcdefghijk", ""},

		{"password missing", Password, "", "Password is required"},
		{"password weak", Password, "abc", "Password must contain at least 8 characters, an uppercase letter, a number, a special character"},
		{"password strong", Password, "Str0ng!pass", ""},

		{"combine first wins", Combine(Required("Days"), NumberRange(0, 365, "Days")), "", "Days is required"},
		{"combine second", Combine(Required("Days"), NumberRange(0, 365, "Days")), "400", "Days must be between 0 and 365"},
		{"combine nil entries", Combine(nil, Required("Days")), "1", ""},

		{"one of", OneOf([]string{"daily", "weekly"}, "Frequency"), "hourly", "Frequency must be one of: daily, weekly"},
		{"one of ok", OneOf([]string{"daily", "weekly"}, "Frequency"), "weekly", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule(tc.value, nil); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestConfirmPasswordComparesNewPassword(t *testing.T) {
	values := formstate.Values{"currentPassword": "Old1!pass", "newPassword": "N3w!passw"}

	if got := ConfirmPassword("", values); got != "Please confirm your password" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ConfirmPassword("Old1!pass", values); got != "Passwords do not match" {
		t.Fatalf("expected mismatch against newPassword, got %q", got)
	}
	if got := ConfirmPassword("N3w!passw", values); got != "" {
		t.Fatalf("expected match, got %q", got)
	}
}

func TestMatchesNestedField(t *testing.T) {
	rule := Matches(formstate.Nested("email", "smtpPassword"), "required", "mismatch")
	values := formstate.Values{"email": map[string]any{"smtpPassword": "secret"}}
	if got := rule("secret", values); got != "" {
		t.Fatalf("expected match, got %q", got)
	}
	if got := rule("other", formstate.Values{}); got != "mismatch" {
		t.Fatalf("expected mismatch when target is missing, got %q", got)
	}
}

func TestPatternRejectsBadExpression(t *testing.T) {
	if _, err := Pattern("([", "Code"); err == nil {
		t.Fatalf("expected compile error")
	}
	rule, err := Pattern(`^[A-Z]{3}$`, "Currency")
	if err != nil {
		t.Fatalf("pattern: %v", err)
	}
	if got := rule("usd", nil); got != "Currency has an invalid format" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := rule("USD", nil); got != "" {
		t.Fatalf("unexpected message %q", got)
	}
}
