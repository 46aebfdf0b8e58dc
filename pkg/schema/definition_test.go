package schema

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/validators"
)

const settingsYAML = `
id: settings
title: Settings
method: PUT
endpoint: /settings/system
options:
  validateOnChange: true
sections:
  - id: general
    label: General
    fields:
      - path: companyName
        label: Company Name
        rules:
          - rule: required
            label: Company name
      - path: currency
        type: select
        options:
          - USD
          - {value: EUR, label: Euro}
  - id: email
    fields:
      - path: email.smtpPort
        label: SMTP Port
        type: number
        kind: integer
        rules:
          - rule: range
            min: 1
            max: 65535
initial:
  companyName: Acme
  currency: USD
  email:
    smtpPort: 587
`

func TestParseDefinition(t *testing.T) {
	def, err := Parse([]byte(settingsYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if def.ID != "settings" || def.Method != "PUT" || def.Endpoint != "/settings/system" {
		t.Fatalf("unexpected header %+v", def)
	}
	if def.Options.ValidateOnChange == nil || !*def.Options.ValidateOnChange || def.Options.ValidateOnBlur != nil {
		t.Fatalf("unexpected options %+v", def.Options)
	}
	if diff := cmp.Diff([]string{"general", "email"}, def.SectionIDs()); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	wantOrder := []formstate.FieldPath{formstate.Path("companyName"), formstate.Path("currency")}
	if diff := cmp.Diff(wantOrder, def.Order("general")); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if def.Order("missing") != nil {
		t.Fatalf("expected nil order for unknown section")
	}

	currency, ok := def.Lookup(formstate.Path("currency"))
	if !ok {
		t.Fatalf("expected currency field")
	}
	wantOptions := []Option{{Value: "USD", Label: "USD"}, {Value: "EUR", Label: "Euro"}}
	if diff := cmp.Diff(wantOptions, currency.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	port, _ := def.Lookup(formstate.Nested("email", "smtpPort"))
	want := Rule{Name: "range", Params: validators.Params{"min": 1, "max": 65535}}
	if diff := cmp.Diff(want, port.Rules[0]); diff != "" {
		t.Fatalf("rule mismatch (-want +got):\n%s", diff)
	}
	if port.ValueKind() != formstate.KindInteger {
		t.Fatalf("expected integer kind, got %q", port.ValueKind())
	}
	if section, ok := def.SectionOf(formstate.Nested("email", "smtpPort")); !ok || section != "email" {
		t.Fatalf("unexpected section %q", section)
	}

	initial := def.InitialValues()
	initial["email"].(map[string]any)["smtpPort"] = 25
	if def.Initial["email"].(map[string]any)["smtpPort"] != 587 {
		t.Fatalf("InitialValues must not alias the definition")
	}
}

func TestParseJSONDefinition(t *testing.T) {
	raw := `{"id":"profile","sections":[{"id":"main","fields":[{"path":"firstName","rules":[{"rule":"required"}]}]}]}`
	def, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	field, _ := def.Lookup(formstate.Path("firstName"))
	if field.DisplayLabel() != "First Name" || field.InputType() != formstate.InputText {
		t.Fatalf("unexpected defaults label=%q type=%q", field.DisplayLabel(), field.InputType())
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	raw := `
sections:
  - id: a
    fields:
      - path: x
      - path: x
      - path: a.b.c
      - path: y
        type: slider
      - path: z
        kind: decimal
      - path: w
        rules:
          - rule: ""
  - id: a
    fields: []
`
	_, err := Parse([]byte(raw))
	if !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition, got %v", err)
	}
	for _, fragment := range []string{
		"id is required",
		`duplicate field "x"`,
		"a.b.c",
		`unknown type "slider"`,
		`unknown kind "decimal"`,
		"rule without a name",
		`duplicate section "a"`,
	} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %v", fragment, err)
		}
	}
}

func TestLoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/settings.yaml": {Data: []byte(settingsYAML)},
		"forms/broken.yaml":   {Data: []byte("id: broken\nsections: []\n")},
		"forms/empty.yaml":    {Data: []byte("  \n")},
	}

	def, err := Load(fsys, "forms/settings.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if def.Source().Kind() != SourceKindFS || def.Source().Location() != "forms/settings.yaml" {
		t.Fatalf("unexpected source %+v", def.Source())
	}

	_, err = Load(fsys, "forms/broken.yaml")
	if err == nil || !strings.HasPrefix(err.Error(), "forms/broken.yaml: ") {
		t.Fatalf("expected location prefixed error, got %v", err)
	}
	if _, err := Load(fsys, "forms/empty.yaml"); !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("expected empty document error, got %v", err)
	}
	if _, err := Load(fsys, "forms/missing.yaml"); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestLabelize(t *testing.T) {
	cases := map[string]string{
		"companyName":      "Company Name",
		"retention_period": "Retention Period",
		"enableSSL":        "Enable SSL",
		"smtpHTTPPort":     "Smtp HTTP Port",
		"two-factor":       "Two Factor",
		"security.timeout": "Security Timeout",
		"ipv4Address":      "Ipv 4 Address",
		"":                 "",
	}
	for in, want := range cases {
		if got := Labelize(in); got != want {
			t.Fatalf("Labelize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFieldSpecFieldPath(t *testing.T) {
	cases := map[string]formstate.FieldPath{
		"companyName":             formstate.Path("companyName"),
		"security.sessionTimeout": formstate.Nested("security", "sessionTimeout"),
		"a.b.c":                   {},
		"":                        {},
	}
	for raw, want := range cases {
		if got := (FieldSpec{Path: raw}).FieldPath(); got != want {
			t.Fatalf("FieldPath(%q) = %+v, want %+v", raw, got, want)
		}
	}

	def, err := Parse([]byte(settingsYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, section := range def.Sections {
		for _, spec := range section.Fields {
			got, ok := def.Lookup(spec.FieldPath())
			if !ok || got.Path != spec.Path {
				t.Fatalf("lookup through FieldPath lost %q", spec.Path)
			}
		}
	}
}
