package formstate

import (
	"fmt"
	"strconv"
)

// PropsOptions configures a FieldProps binding.
type PropsOptions struct {
	Type  InputType
	Order []FieldPath
	Attrs map[string]string
}

// FieldProps is everything a control needs to bind itself to the form.
type FieldProps struct {
	Name    string
	Type    InputType
	Value   any
	Checked bool

	OnChange func(ChangeEvent)
	OnBlur   func()
	OnFocus  func()
	// OnKeyDown is nil when no field order was supplied.
	OnKeyDown func(KeyEvent) KeyResult
	Ref       func(Handle)

	AriaInvalid     bool
	AriaDescribedBy string
	Error           string
	Touched         bool

	// Prev and Next name the neighbouring fields in the supplied order.
	Prev string
	Next string

	Attrs map[string]string
}

// ErrorID is the element id conventionally used for a field's error text.
func ErrorID(name string) string {
	return name + "-error"
}

// FieldProps builds a uniform binding for the control named name.
func (f *Form) FieldProps(name string, opts PropsOptions) FieldProps {
	typ := opts.Type
	if typ == "" {
		typ = InputText
	}

	path, pathErr := ParsePath(name)
	var (
		value   any
		errMsg  string
		touched bool
	)
	if pathErr == nil {
		value, _ = f.store.Get(path)
		f.mu.Lock()
		errMsg = f.errors[path]
		touched = f.touched[path]
		f.mu.Unlock()
	}

	props := FieldProps{
		Name:        name,
		Type:        typ,
		Value:       displayValue(value, typ),
		OnChange:    f.HandleChange,
		OnBlur:      func() { f.HandleBlur(name) },
		OnFocus:     func() { f.HandleFocus(name) },
		AriaInvalid: errMsg != "",
		Error:       errMsg,
		Touched:     touched,
		Attrs:       copyAttrs(opts.Attrs),
	}
	if typ == InputCheckbox {
		props.Checked = truthy(value)
	}
	if errMsg != "" {
		props.AriaDescribedBy = ErrorID(name)
	}
	if pathErr == nil {
		props.Ref = func(h Handle) {
			if isNilHandle(h) {
				f.registry.Unregister(path)
				return
			}
			f.registry.Register(path, h)
		}
	} else {
		props.Ref = func(Handle) {}
	}
	if len(opts.Order) > 0 {
		order := append([]FieldPath(nil), opts.Order...)
		props.OnKeyDown = func(ev KeyEvent) KeyResult {
			return f.HandleKeyDown(name, ev, order)
		}
		if idx := indexOfPath(order, path); idx >= 0 && pathErr == nil {
			if idx > 0 {
				props.Prev = order[idx-1].String()
			}
			if idx < len(order)-1 {
				props.Next = order[idx+1].String()
			}
		}
	}
	return props
}

// StringValue renders a bound value the way a text control displays it.
func StringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []File:
		return ""
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	default:
		return fmt.Sprint(typed)
	}
}

func displayValue(value any, typ InputType) any {
	if value != nil {
		return value
	}
	if typ == InputCheckbox {
		return false
	}
	return ""
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != "" && typed != "false"
	case int:
		return typed != 0
	case int64:
		return typed != 0
	case float64:
		return typed != 0
	default:
		return true
	}
}

func copyAttrs(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
