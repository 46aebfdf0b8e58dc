package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/validators"
)

func TestNewFormFromDefinition(t *testing.T) {
	def, err := Parse([]byte(settingsYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, err := NewForm(def)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}

	form.HandleChange(formstate.ChangeEvent{Name: "companyName", Type: formstate.InputText, Value: ""})
	if got := form.Error(formstate.Path("companyName")); got != "Company name is required" {
		t.Fatalf("expected on-change validation from definition options, got %q", got)
	}

	form.HandleChange(formstate.ChangeEvent{Name: "email.smtpPort", Type: formstate.InputNumber, Value: "70000"})
	if got := form.Error(formstate.Nested("email", "smtpPort")); got != "SMTP Port must be between 1 and 65535" {
		t.Fatalf("unexpected port error %q", got)
	}

	form.HandleChange(formstate.ChangeEvent{Name: "companyName", Type: formstate.InputText, Value: "Acme"})
	form.HandleChange(formstate.ChangeEvent{Name: "email.smtpPort", Type: formstate.InputNumber, Value: "25"})
	if !form.ValidateAll() {
		t.Fatalf("expected valid form, errors: %v", form.Errors())
	}
	want := formstate.Values{
		"companyName": "Acme",
		"currency":    "USD",
		"email":       map[string]any{"smtpPort": int64(25)},
	}
	if diff := cmp.Diff(want, form.ProcessedValues()); diff != "" {
		t.Fatalf("processed mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileUnknownRule(t *testing.T) {
	def := &Definition{
		ID: "x",
		Sections: []Section{{ID: "main", Fields: []FieldSpec{
			{Path: "a", Rules: []Rule{{Name: "nope"}}},
			{Path: "b", Rules: []Rule{{Name: "range", Params: validators.Params{"min": 1}}}},
		}}},
	}
	_, err := Compile(def, nil)
	if !errors.Is(err, validators.ErrUnknownRule) || !errors.Is(err, validators.ErrInvalidParams) {
		t.Fatalf("expected both rule errors, got %v", err)
	}
	if _, err := Compile(nil, nil); !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("expected nil definition error, got %v", err)
	}
}

func TestCompileCustomRegistry(t *testing.T) {
	reg := validators.NewRegistry()
	reg.Register("upper", func(label string, _ validators.Params) (formstate.Validator, error) {
		return func(value any, _ formstate.Values) string {
			if s, _ := value.(string); s != "" && s[0] >= 'a' && s[0] <= 'z' {
				return label + " must start upper case"
			}
			return ""
		}, nil
	})
	disabled := false
	def := &Definition{
		ID:      "x",
		Options: FormOptions{ValidateOnBlur: &disabled, StrictKinds: true},
		Sections: []Section{{ID: "main", Fields: []FieldSpec{
			{Path: "code", Rules: []Rule{{Name: "required"}, {Name: "upper"}}},
			{Path: "zip"},
		}}},
	}
	opts, err := Compile(def, reg)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	form, err := formstate.New(formstate.Values{"code": "abc", "zip": "02139"}, opts...)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}

	form.HandleBlur("code")
	if form.Error(formstate.Path("code")) != "" {
		t.Fatalf("expected blur validation to be disabled")
	}
	form.ValidateAll()
	if got := form.Error(formstate.Path("code")); got != "Code must start upper case" {
		t.Fatalf("unexpected error %q", got)
	}
	if got := form.ProcessedValues()["zip"]; got != "02139" {
		t.Fatalf("expected strict kinds to keep zip as text, got %#v", got)
	}
}
