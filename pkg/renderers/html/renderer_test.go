package html_test

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/presets"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/html"
	"github.com/goliatone/go-formstate/pkg/schema"
)

func newSettings(t *testing.T) (*schema.Definition, *formstate.Form, *html.Renderer) {
	t.Helper()
	def, form, err := presets.NewForm(presets.SystemSettings)
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return def, form, r
}

func assertContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, out)
		}
	}
}

func assertNotContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(out, fragment) {
			t.Fatalf("expected output not to contain %q\n%s", fragment, out)
		}
	}
}

func TestRenderSectionNavigation(t *testing.T) {
	def, form, r := newSettings(t)

	out, err := r.Render(def, form, html.RenderOptions{Section: "general", Hidden: []render.HiddenField{render.CSRFToken("_csrf", "tok")}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)

	assertContains(t, got,
		`action="/settings/system" method="post"`,
		`<input type="hidden" name="_csrf" value="tok">`,
		`<input type="hidden" name="_method" value="PUT">`,
		`id="companyName" name="companyName" value="Employee Management System" required data-next="companyEmail">`,
		`id="companyEmail" name="companyEmail" value="admin@ems.com" data-next="companyPhone" data-prev="companyName">`,
		`id="defaultVacationDays" name="defaultVacationDays" value="20" required data-prev="currency">`,
		`<option value="USD" selected>USD - US Dollar</option>`,
		`<textarea id="companyAddress"`,
	)
	assertNotContains(t, got, `data-section="security"`, `formstate-error`)
}

func TestRenderShowsOnlyTouchedErrors(t *testing.T) {
	def, _, r := newSettings(t)
	form, err := schema.NewForm(def, formstate.WithTouchOnValidateAll(false))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}

	form.HandleChange(formstate.ChangeEvent{Name: "companyName", Type: formstate.InputText, Value: ""})
	form.HandleBlur("companyName")
	form.SetValues(formstate.Values{"companyName": "", "companyEmail": "nope"})
	form.ValidateAll()

	out, err := r.Render(def, form, html.RenderOptions{Section: "general"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)
	assertContains(t, got,
		`aria-invalid="true" aria-describedby="companyName-error"`,
		`<p class="formstate-error" id="companyName-error" role="alert">Company name is required</p>`,
	)
	assertNotContains(t, got, `companyEmail-error`)
}

func TestRenderEscapesAndSanitizes(t *testing.T) {
	def, form, r := newSettings(t)
	form.Set(formstate.Path("companyName"), `<script>alert("x")</script>`)
	form.ApplyErrors(formstate.ErrorMap{formstate.Path("companyName"): "<b>Taken</b>"})

	out, err := r.Render(def, form, html.RenderOptions{
		Section:    "general",
		Method:     "post",
		FormErrors: []string{"<i>Settings locked</i>", "<i>Settings locked</i>"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)
	assertContains(t, got,
		`value="&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;"`,
		`role="alert">Taken</p>`,
		`<ul><li>Settings locked</li></ul>`,
	)
	assertNotContains(t, got, "<script>", "_method", "<b>", "<i>")
}

func TestRenderCheckboxesAndVersion(t *testing.T) {
	def, form, r := newSettings(t)
	form.HandleChange(formstate.ChangeEvent{Name: "security.twoFactorRequired", Type: formstate.InputCheckbox, Checked: true})

	out, err := r.Render(def, form, html.RenderOptions{Section: "security", IncludeVersion: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)
	assertContains(t, got,
		`<input type="hidden" name="_version" value="1">`,
		`id="security.requireNumbers" name="security.requireNumbers" value="true" checked`,
		`id="security.twoFactorRequired" name="security.twoFactorRequired" value="true" checked`,
		`<p class="formstate-help">Require 2FA for all users</p>`,
	)
}

func TestRenderAllSectionsAndPasswords(t *testing.T) {
	def, form, r := newSettings(t)
	out, err := r.Render(def, form, html.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)
	for _, id := range def.SectionIDs() {
		assertContains(t, got, `data-section="`+id+`"`)
	}
	assertContains(t, got, `<input type="password" id="email.smtpPassword" name="email.smtpPassword" data-next="email.enableSSL"`)
	assertNotContains(t, got, "••••")
}

func TestRenderErrors(t *testing.T) {
	def, form, r := newSettings(t)
	if _, err := r.Render(def, form, html.RenderOptions{Section: "payroll"}); !errors.Is(err, html.ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
	if _, err := r.Render(def, nil, html.RenderOptions{}); !errors.Is(err, formstate.ErrNilForm) {
		t.Fatalf("expected ErrNilForm, got %v", err)
	}
	if _, err := r.Render(nil, form, html.RenderOptions{}); !errors.Is(err, schema.ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition, got %v", err)
	}
}

func TestCustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"form.html": {Data: []byte(`{% for s in form.Sections %}{% for f in s.Fields %}[{{ f.Name }}={{ f.Value }}]{% endfor %}{% endfor %}`)},
	}
	r, err := html.New(html.WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	def, form, _ := newSettings(t)
	out, err := r.Render(def, form, html.RenderOptions{Section: "backup"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "[backup.autoBackup=true][backup.backupFrequency=weekly][backup.retentionPeriod=30]"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestNavigationScriptIsBundled(t *testing.T) {
	data, err := fs.ReadFile(html.AssetsFS(), html.NavigationScriptName)
	if err != nil {
		t.Fatalf("read asset: %v", err)
	}
	assertContains(t, string(data), `"data-next"`, `"data-prev"`, "ArrowDown")
}
