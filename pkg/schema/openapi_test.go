package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/validators"
)

const settingsOpenAPI = `
openapi: 3.0.3
info:
  title: Settings API
  version: 1.0.0
paths:
  /settings/system:
    put:
      operationId: updateSystemSettings
      summary: Update system settings
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/SystemSettings'
      responses:
        '200':
          description: ok
components:
  schemas:
    SystemSettings:
      type: object
      x-formstate-order: [companyName, companyEmail]
      required: [companyName, companyEmail]
      properties:
        companyName:
          type: string
          maxLength: 80
          default: Acme
        companyEmail:
          type: string
          format: email
        currency:
          type: string
          enum: [USD, EUR]
          default: USD
        security:
          type: object
          title: Security Settings
          required: [sessionTimeout]
          properties:
            sessionTimeout:
              type: integer
              minimum: 5
              maximum: 120
              default: 30
              description: Minutes of inactivity.
            twoFactorRequired:
              type: boolean
              default: false
            policy:
              type: object
              properties:
                level:
                  type: string
        tags:
          type: array
          items:
            type: string
`

func TestFromOpenAPIOperation(t *testing.T) {
	def, err := FromOpenAPI(context.Background(), []byte(settingsOpenAPI), OpenAPIOptions{OperationID: "updateSystemSettings"})
	if err != nil {
		t.Fatalf("from openapi: %v", err)
	}

	if def.ID != "updateSystemSettings" || def.Method != "PUT" || def.Endpoint != "/settings/system" || def.Title != "Update system settings" {
		t.Fatalf("unexpected header id=%q method=%q endpoint=%q title=%q", def.ID, def.Method, def.Endpoint, def.Title)
	}
	if diff := cmp.Diff([]string{GeneralSection, "security"}, def.SectionIDs()); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}

	wantGeneral := []formstate.FieldPath{formstate.Path("companyName"), formstate.Path("companyEmail"), formstate.Path("currency")}
	if diff := cmp.Diff(wantGeneral, def.Order(GeneralSection)); diff != "" {
		t.Fatalf("general order mismatch (-want +got):\n%s", diff)
	}

	security, _ := def.Section("security")
	if security.Label != "Security Settings" {
		t.Fatalf("unexpected section label %q", security.Label)
	}
	timeout, _ := def.Lookup(formstate.Nested("security", "sessionTimeout"))
	wantTimeout := FieldSpec{
		Path:  "security.sessionTimeout",
		Label: "Session Timeout",
		Type:  formstate.InputNumber,
		Kind:  formstate.KindInteger,
		Help:  "Minutes of inactivity.",
		Rules: []Rule{
			{Name: "required"},
			{Name: "range", Params: validators.Params{"min": float64(5), "max": float64(120)}},
		},
	}
	if diff := cmp.Diff(wantTimeout, timeout); diff != "" {
		t.Fatalf("timeout mismatch (-want +got):\n%s", diff)
	}

	email, _ := def.Lookup(formstate.Path("companyEmail"))
	if email.Type != formstate.InputEmail || len(email.Rules) != 2 || email.Rules[1].Name != "email" {
		t.Fatalf("unexpected email field %+v", email)
	}
	currency, _ := def.Lookup(formstate.Path("currency"))
	if currency.Type != formstate.InputSelect || len(currency.Options) != 2 {
		t.Fatalf("unexpected currency field %+v", currency)
	}
	if _, ok := def.Lookup(formstate.Path("tags")); ok {
		t.Fatalf("arrays are not imported")
	}
	if _, ok := def.Lookup(formstate.Nested("security", "policy")); ok {
		t.Fatalf("deeper objects are not imported")
	}

	wantInitial := map[string]any{
		"companyName": "Acme",
		"currency":    "USD",
		"security":    map[string]any{"sessionTimeout": float64(30), "twoFactorRequired": false},
	}
	if diff := cmp.Diff(wantInitial, def.Initial); diff != "" {
		t.Fatalf("initial mismatch (-want +got):\n%s", diff)
	}

	form, err := NewForm(def)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	form.SetValues(formstate.Values{"companyName": "", "companyEmail": "bad", "currency": "GBP", "security": map[string]any{"sessionTimeout": "2"}})
	form.ValidateAll()
	wantErrors := formstate.ErrorMap{
		formstate.Path("companyName"):                "Company Name is required",
		formstate.Path("companyEmail"):               "Invalid email format",
		formstate.Path("currency"):                   "Currency must be one of: USD, EUR",
		formstate.Nested("security", "sessionTimeout"): "Session Timeout must be between 5 and 120",
	}
	if diff := cmp.Diff(wantErrors, form.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestFromOpenAPISchemaName(t *testing.T) {
	def, err := FromOpenAPI(context.Background(), []byte(settingsOpenAPI), OpenAPIOptions{SchemaName: "SystemSettings"})
	if err != nil {
		t.Fatalf("from openapi: %v", err)
	}
	if def.ID != "SystemSettings" || def.Title != "System Settings" || def.Method != "" {
		t.Fatalf("unexpected header %+v", def)
	}
	if def.Source().Kind() != SourceKindAPI {
		t.Fatalf("unexpected source kind %q", def.Source().Kind())
	}
}

func TestFromOpenAPISelectionErrors(t *testing.T) {
	ctx := context.Background()
	for _, opts := range []OpenAPIOptions{
		{},
		{OperationID: "missing"},
		{SchemaName: "Missing"},
	} {
		if _, err := FromOpenAPI(ctx, []byte(settingsOpenAPI), opts); !errors.Is(err, ErrOpenAPISelection) {
			t.Fatalf("%+v: expected ErrOpenAPISelection, got %v", opts, err)
		}
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := FromOpenAPI(cancelled, []byte(settingsOpenAPI), OpenAPIOptions{SchemaName: "SystemSettings"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if _, err := FromOpenAPI(ctx, nil, OpenAPIOptions{SchemaName: "x"}); err == nil {
		t.Fatalf("expected empty document error")
	}
}
