package formstate

// InputType is the control type reported with a change event. Only checkbox
// and file alter how the value is stored; every other type stores the raw
// string so partially typed input (for example "1." on the way to "1.5") is
// never truncated.
type InputType string

const (
	InputText     InputType = "text"
	InputNumber   InputType = "number"
	InputEmail    InputType = "email"
	InputPassword InputType = "password"
	InputTel      InputType = "tel"
	InputURL      InputType = "url"
	InputDate     InputType = "date"
	InputCheckbox InputType = "checkbox"
	InputRadio    InputType = "radio"
	InputFile     InputType = "file"
	InputSelect   InputType = "select"
	InputTextarea InputType = "textarea"
	InputHidden   InputType = "hidden"
)

// ChangeEvent is emitted by a control whose value changed.
type ChangeEvent struct {
	Name    string
	Type    InputType
	Value   string
	Checked bool
	Files   []File
}

// HandleChange stores the control value, marks the field touched, and either
// validates it (on-change policy) or clears its stale error.
func (f *Form) HandleChange(ev ChangeEvent) {
	path, err := ParsePath(ev.Name)
	if err != nil {
		f.logger.Debug("formstate: change ignored", "name", ev.Name, "error", err)
		return
	}
	value := controlValue(ev)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.store.Set(path, value)
	f.touched[path] = true
	f.dirty = true
	if f.validateOnChange && f.hasValidator(path) {
		f.validateLocked(path, value)
		return
	}
	delete(f.errors, path)
}

// HandleBlur validates the field's stored value when the on-blur policy is
// enabled.
func (f *Form) HandleBlur(name string) {
	path, err := ParsePath(name)
	if err != nil {
		f.logger.Debug("formstate: blur ignored", "name", name, "error", err)
		return
	}
	if !f.validateOnBlur || !f.hasValidator(path) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	value, _ := f.store.Get(path)
	f.validateLocked(path, value)
}

// HandleFocus clears the field's error so a stale message never blocks a user
// correcting it.
func (f *Form) HandleFocus(name string) {
	path, err := ParsePath(name)
	if err != nil {
		f.logger.Debug("formstate: focus ignored", "name", name, "error", err)
		return
	}
	f.mu.Lock()
	delete(f.errors, path)
	f.mu.Unlock()
}

// HandleKeyDown runs keyboard navigation for the field named name within
// order. The caller should suppress the event's default action when
// PreventDefault is set.
func (f *Form) HandleKeyDown(name string, ev KeyEvent, order []FieldPath) KeyResult {
	if len(order) == 0 {
		return KeyResult{}
	}
	path, err := ParsePath(name)
	if err != nil {
		return KeyResult{}
	}
	return f.registry.Dispatch(path, ev, order)
}

func controlValue(ev ChangeEvent) any {
	switch ev.Type {
	case InputCheckbox:
		return ev.Checked
	case InputFile:
		return append([]File(nil), ev.Files...)
	default:
		return ev.Value
	}
}
