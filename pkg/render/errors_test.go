package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/render"
)

func settingsPaths(t *testing.T) []formstate.FieldPath {
	t.Helper()
	paths, err := formstate.Paths("companyName", "companyEmail", "security.sessionTimeout", "email.smtpPort", "backup.retentionPeriod")
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	return paths
}

func TestMapErrorPayload(t *testing.T) {
	payload := map[string][]string{
		"/body/security/sessionTimeout": {"Session timeout must be between 5 and 120"},
		"$.email.smtpPort":              {"SMTP port must be between 1 and 65535", " "},
		"request.companyName":           {"Company name is required"},
		"company_email":                 {"Invalid email format", "Invalid email format"},
		"data.backup.retention-period":  {"Too long"},
		"backup.retentionPeriod":        {"Retention period must be between 1 and 365"},
		"security":                      {"Security block rejected"},
		"non_field_errors":              {"Settings are locked"},
		"/body/unknownField":            {"Unknown"},
		"":                              {"  ", ""},
	}

	mapped := render.MapErrorPayload(settingsPaths(t), payload)

	wantFields := map[formstate.FieldPath][]string{
		formstate.Nested("security", "sessionTimeout"): {"Session timeout must be between 5 and 120"},
		formstate.Nested("email", "smtpPort"):          {"SMTP port must be between 1 and 65535"},
		formstate.Path("companyName"):                  {"Company name is required"},
		formstate.Path("companyEmail"):                 {"Invalid email format"},
		formstate.Nested("backup", "retentionPeriod"):  {"Retention period must be between 1 and 365", "Too long"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"Unknown", "Settings are locked", "Security block rejected"}
	if diff := cmp.Diff(wantForm, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorMappingApply(t *testing.T) {
	form, err := formstate.New(formstate.Values{"companyName": "Acme"})
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	mapped := render.MapErrorPayload(settingsPaths(t), map[string][]string{
		"companyName": {"Taken", "Reserved"},
		"form":        {"Try again later"},
	})

	formErrors := mapped.Apply(form)
	if diff := cmp.Diff([]string{"Try again later"}, formErrors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if got := form.Error(formstate.Path("companyName")); got != "Taken; Reserved" {
		t.Fatalf("unexpected applied error %q", got)
	}
	if !form.ShouldShowError(formstate.Path("companyName")) {
		t.Fatalf("expected applied server errors to be visible")
	}

	empty := render.MapErrorPayload(nil, nil)
	if empty.Fields != nil || empty.Form != nil || empty.ErrorMap() != nil {
		t.Fatalf("expected empty mapping, got %+v", empty)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	if diff := cmp.Diff([]string{"First", "Second", "third"}, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
