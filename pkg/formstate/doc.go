// Package formstate implements the in-memory state machine behind a dynamic
// form: a copy-on-write value store addressed by one-or-two segment field
// paths, a validation engine with change/blur trigger policies and per-field
// error and touched flags, a focus registry that resolves keyboard navigation
// against caller supplied field orders, and a serializer that types the raw
// string values produced by form controls at submission time.
//
// The package performs no I/O. Renderers bind controls through FieldProps and
// callers hand ProcessedValues to their own transport.
package formstate
