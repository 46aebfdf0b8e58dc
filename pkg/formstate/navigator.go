package formstate

// Key names understood by the dispatcher. They follow the DOM KeyboardEvent
// key values.
const (
	KeyEnter     = "Enter"
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
)

// KeyEvent is a renderer-neutral key press.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool
}

// KeyResult reports what the dispatcher did with a key press.
type KeyResult struct {
	// PreventDefault is set when the key was consumed by navigation.
	PreventDefault bool
	// Moved is set when focus actually changed.
	Moved bool
}

// Next focuses the field after current in order. Reaching the end of the
// order, or a current field missing from it, is a silent no-op.
func (r *Registry) Next(current FieldPath, order []FieldPath) bool {
	idx := indexOfPath(order, current)
	if idx == -1 || idx >= len(order)-1 {
		return false
	}
	return r.Focus(order[idx+1])
}

// Previous focuses the field before current in order.
func (r *Registry) Previous(current FieldPath, order []FieldPath) bool {
	idx := indexOfPath(order, current)
	if idx <= 0 {
		return false
	}
	return r.Focus(order[idx-1])
}

// Dispatch applies the keyboard navigation contract: Enter moves forward and
// always suppresses the default submit; Ctrl/Cmd+ArrowDown moves forward;
// Ctrl/Cmd+ArrowUp moves backward. Other keys pass through untouched.
func (r *Registry) Dispatch(current FieldPath, ev KeyEvent, order []FieldPath) KeyResult {
	switch ev.Key {
	case KeyEnter:
		return KeyResult{PreventDefault: true, Moved: r.Next(current, order)}
	case KeyArrowDown:
		if ev.Ctrl || ev.Meta {
			return KeyResult{PreventDefault: true, Moved: r.Next(current, order)}
		}
	case KeyArrowUp:
		if ev.Ctrl || ev.Meta {
			return KeyResult{PreventDefault: true, Moved: r.Previous(current, order)}
		}
	}
	return KeyResult{}
}
