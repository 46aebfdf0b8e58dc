package formstate

import "context"

// SubmitFunc receives the typed payload of a valid form.
type SubmitFunc func(ctx context.Context, values Values) error

// Submit validates every registered field and, when all pass, hands the
// processed values to fn. A failed validation returns *ValidationError
// without calling fn.
func Submit(ctx context.Context, f *Form, fn SubmitFunc) error {
	if f == nil {
		return ErrNilForm
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !f.ValidateAll() {
		return &ValidationError{Errors: f.Errors()}
	}
	if fn == nil {
		return nil
	}
	return fn(ctx, f.ProcessedValues())
}
