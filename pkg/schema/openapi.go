package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/formstate"
	"github.com/goliatone/go-formstate/pkg/validators"
)

// ErrOpenAPISelection is returned when the requested operation or schema
// cannot be found, or when neither was requested.
var ErrOpenAPISelection = errors.New("schema: openapi selection")

// OrderExtension lists property names in display order on an object schema.
const OrderExtension = "x-formstate-order"

// GeneralSection collects the top-level scalar properties.
const GeneralSection = "general"

// OpenAPIOptions selects the request schema to import. OperationID wins when
// both are set.
type OpenAPIOptions struct {
	OperationID       string
	SchemaName        string
	ResolveReferences bool
}

// FromOpenAPI derives a definition from an OpenAPI 3 document. Top-level
// scalar properties form the general section; every object property becomes
// its own section. Deeper objects and arrays are skipped.
func FromOpenAPI(ctx context.Context, raw []byte, opts OpenAPIOptions) (*Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("schema: openapi document is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.ResolveReferences,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: load openapi document: %w", err)
	}

	def := &Definition{}
	var root *openapi3.SchemaRef
	switch {
	case opts.OperationID != "":
		method, path, op := findOperation(doc, opts.OperationID)
		if op == nil {
			return nil, fmt.Errorf("%w: operation %q not found", ErrOpenAPISelection, opts.OperationID)
		}
		root = requestSchema(op.RequestBody)
		if root == nil {
			return nil, fmt.Errorf("%w: operation %q has no request body schema", ErrOpenAPISelection, opts.OperationID)
		}
		def.ID = opts.OperationID
		def.Title = op.Summary
		def.Method = method
		def.Endpoint = path
		def.source = openAPISource("operation:" + opts.OperationID)
	case opts.SchemaName != "":
		if doc.Components != nil {
			root = doc.Components.Schemas[opts.SchemaName]
		}
		if root == nil {
			return nil, fmt.Errorf("%w: schema %q not found", ErrOpenAPISelection, opts.SchemaName)
		}
		def.ID = opts.SchemaName
		def.source = openAPISource("schema:" + opts.SchemaName)
	default:
		return nil, fmt.Errorf("%w: operation id or schema name is required", ErrOpenAPISelection)
	}

	if root.Value == nil || !isType(root.Value, openapi3.TypeObject) {
		return nil, fmt.Errorf("%w: %s is not an object schema", ErrOpenAPISelection, def.source.Location())
	}
	if def.Title == "" {
		def.Title = root.Value.Title
	}
	if def.Title == "" {
		def.Title = Labelize(def.ID)
	}

	convertRoot(def, root.Value)
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func findOperation(doc *openapi3.T, id string) (string, string, *openapi3.Operation) {
	if doc.Paths == nil {
		return "", "", nil
	}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op != nil && op.OperationID == id {
				return strings.ToUpper(method), path, op
			}
		}
	}
	return "", "", nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return mt.Schema
		}
	}
	for _, mt := range content {
		if mt != nil {
			return mt.Schema
		}
	}
	return nil
}

func convertRoot(def *Definition, root *openapi3.Schema) {
	def.Initial = make(map[string]any)
	general := Section{ID: GeneralSection, Label: Labelize(GeneralSection)}
	var nested []Section

	for _, name := range propertyOrder(root) {
		ref := root.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		switch {
		case isType(prop, openapi3.TypeObject):
			section := Section{ID: name, Label: prop.Title}
			if section.Label == "" {
				section.Label = Labelize(name)
			}
			initial := make(map[string]any)
			for _, child := range propertyOrder(prop) {
				childRef := prop.Properties[child]
				if childRef == nil || childRef.Value == nil || !isScalar(childRef.Value) {
					continue
				}
				field := convertField(formstate.Nested(name, child), childRef.Value, contains(prop.Required, child))
				section.Fields = append(section.Fields, field)
				if childRef.Value.Default != nil {
					initial[child] = childRef.Value.Default
				}
			}
			if len(section.Fields) == 0 {
				continue
			}
			if len(initial) > 0 {
				def.Initial[name] = initial
			}
			nested = append(nested, section)
		case isScalar(prop):
			general.Fields = append(general.Fields, convertField(formstate.Path(name), prop, contains(root.Required, name)))
			if prop.Default != nil {
				def.Initial[name] = prop.Default
			}
		}
	}

	if len(general.Fields) > 0 {
		def.Sections = append(def.Sections, general)
	}
	def.Sections = append(def.Sections, nested...)
	if len(def.Initial) == 0 {
		def.Initial = nil
	}
}

func convertField(path formstate.FieldPath, s *openapi3.Schema, required bool) FieldSpec {
	field := FieldSpec{
		Path:  path.String(),
		Label: s.Title,
		Help:  s.Description,
	}
	if field.Label == "" {
		field.Label = Labelize(path.Field)
	}

	switch {
	case isType(s, openapi3.TypeBoolean):
		field.Type = formstate.InputCheckbox
		field.Kind = formstate.KindBoolean
	case isType(s, openapi3.TypeInteger):
		field.Type = formstate.InputNumber
		field.Kind = formstate.KindInteger
	case isType(s, openapi3.TypeNumber):
		field.Type = formstate.InputNumber
		field.Kind = formstate.KindNumber
	default:
		field.Kind = formstate.KindString
		field.Type = inputTypeForFormat(s.Format)
	}

	if required && field.Kind != formstate.KindBoolean {
		field.Rules = append(field.Rules, Rule{Name: "required"})
	}
	switch s.Format {
	case "email":
		field.Rules = append(field.Rules, Rule{Name: "email", Params: validators.Params{"optional": !required}})
	case "uri", "url":
		field.Rules = append(field.Rules, Rule{Name: "url"})
	}

	switch {
	case s.Min != nil && s.Max != nil:
		field.Rules = append(field.Rules, Rule{Name: "range", Params: validators.Params{"min": *s.Min, "max": *s.Max}})
	case s.Min != nil:
		field.Rules = append(field.Rules, Rule{Name: "min", Params: validators.Params{"min": *s.Min}})
	case s.Max != nil:
		field.Rules = append(field.Rules, Rule{Name: "max", Params: validators.Params{"max": *s.Max}})
	}
	if s.MinLength > 0 || s.MaxLength != nil {
		params := validators.Params{"min": float64(s.MinLength)}
		if s.MaxLength != nil {
			params["max"] = float64(*s.MaxLength)
		}
		field.Rules = append(field.Rules, Rule{Name: "length", Params: params})
	}
	if s.Pattern != "" {
		field.Rules = append(field.Rules, Rule{Name: "pattern", Params: validators.Params{"pattern": s.Pattern}})
	}

	if len(s.Enum) > 0 && field.Kind == formstate.KindString {
		values := make([]any, 0, len(s.Enum))
		for _, v := range s.Enum {
			text := fmt.Sprint(v)
			field.Options = append(field.Options, Option{Value: text, Label: text})
			values = append(values, text)
		}
		field.Type = formstate.InputSelect
		field.Rules = append(field.Rules, Rule{Name: "oneOf", Params: validators.Params{"values": values}})
	}
	return field
}

func inputTypeForFormat(format string) formstate.InputType {
	switch format {
	case "email":
		return formstate.InputEmail
	case "uri", "url":
		return formstate.InputURL
	case "password":
		return formstate.InputPassword
	case "date":
		return formstate.InputDate
	case "phone", "tel":
		return formstate.InputTel
	case "binary":
		return formstate.InputFile
	}
	return formstate.InputText
}

// propertyOrder follows OrderExtension when present; remaining properties
// are appended alphabetically.
func propertyOrder(s *openapi3.Schema) []string {
	seen := make(map[string]bool, len(s.Properties))
	var out []string
	if raw, ok := s.Extensions[OrderExtension].([]any); ok {
		for _, item := range raw {
			name, ok := item.(string)
			if !ok || seen[name] {
				continue
			}
			if _, exists := s.Properties[name]; exists {
				out = append(out, name)
				seen[name] = true
			}
		}
	}
	rest := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func isType(s *openapi3.Schema, typ string) bool {
	if s.Type == nil {
		return typ == openapi3.TypeObject && len(s.Properties) > 0
	}
	return s.Type.Is(typ)
}

func isScalar(s *openapi3.Schema) bool {
	if s.Type == nil {
		return len(s.Properties) == 0 && s.Items == nil
	}
	for _, t := range []string{openapi3.TypeString, openapi3.TypeNumber, openapi3.TypeInteger, openapi3.TypeBoolean} {
		if s.Type.Is(t) {
			return true
		}
	}
	return false
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
