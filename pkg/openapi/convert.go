package openapi

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/formula"
	"github.com/goliatone/go-formflow/pkg/schema"
)

const (
	formulaExtensionKey = "x-formflow-formula"
	parentsExtensionKey = "x-formflow-parents"
	labelExtensionKey   = "x-formflow-label"
)

// Import converts the request body of operationID into a form. The form is
// named after the operation summary, falling back to the id.
func (i *Importer) Import(ctx context.Context, data []byte, operationID string) (schema.Form, error) {
	found, err := i.operations(ctx, data)
	if err != nil {
		return schema.Form{}, err
	}

	var target *located
	for idx := range found {
		if found[idx].ID == operationID {
			target = &found[idx]
			break
		}
	}
	if target == nil {
		return schema.Form{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	body, err := requestSchema(target.op)
	if err != nil {
		return schema.Form{}, fmt.Errorf("%w: %q", err, operationID)
	}

	name := strings.TrimSpace(target.Summary)
	if name == "" {
		name = target.ID
	}
	form := schema.Form{Name: name, Fields: i.fields(body)}
	if err := form.Validate(); err != nil {
		return schema.Form{}, fmt.Errorf("openapi: operation %q: %w", operationID, err)
	}
	return form, nil
}

func (i *Importer) fields(body *openapi3.Schema) []schema.Field {
	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}

	fields := make([]schema.Field, 0, len(names))
	for _, name := range names {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, ok := convertProperty(name, ref.Value, required[name])
		if !ok {
			i.options.Logger.Debug("openapi: skipping property", "property", name, "type", schemaType(ref.Value))
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

func convertProperty(name string, src *openapi3.Schema, required bool) (schema.Field, bool) {
	if src.ReadOnly {
		return schema.Field{}, false
	}

	field := schema.Field{
		ID:       name,
		Label:    propertyLabel(name, src),
		Required: required,
	}

	if expr, ok := src.Extensions[formulaExtensionKey].(string); ok && strings.TrimSpace(expr) != "" {
		field.Kind = schema.FieldKindDerived
		field.Formula = expr
		field.ParentFields = formulaParents(expr, src.Extensions[parentsExtensionKey])
		field.Readonly = true
		field.Required = false
		return field, true
	}

	if len(src.Enum) > 0 && schemaType(src) != openapi3.TypeArray {
		field.Kind = schema.FieldKindSelect
		field.Options = enumOptions(src.Enum)
		field.DefaultValue = scalarText(src.Default)
		return field, true
	}

	switch schemaType(src) {
	case openapi3.TypeString:
		field.Kind, field.Validations = stringKind(src.Format)
		field.Validations = append(field.Validations, lengthRules(src)...)
		field.DefaultValue = scalarText(src.Default)
	case openapi3.TypeInteger, openapi3.TypeNumber:
		field.Kind = schema.FieldKindNumber
		field.DefaultValue = scalarText(src.Default)
	case openapi3.TypeBoolean:
		field.Kind = schema.FieldKindCheckbox
		if flag, ok := src.Default.(bool); ok && flag {
			field.DefaultValue = "true"
		}
	case openapi3.TypeArray:
		if src.Items == nil || src.Items.Value == nil || len(src.Items.Value.Enum) == 0 {
			return schema.Field{}, false
		}
		field.Kind = schema.FieldKindCheckbox
		field.Options = enumOptions(src.Items.Value.Enum)
		field.DefaultValue = listText(src.Default)
	default:
		return schema.Field{}, false
	}
	return field, true
}

func stringKind(format string) (schema.FieldKind, []schema.ValidationRule) {
	switch strings.ToLower(format) {
	case "email":
		return schema.FieldKindEmail, []schema.ValidationRule{{Kind: schema.RuleEmail}}
	case "password":
		return schema.FieldKindPassword, []schema.ValidationRule{{Kind: schema.RulePassword}}
	case "date", "date-time":
		return schema.FieldKindDate, nil
	case "textarea":
		return schema.FieldKindTextarea, nil
	default:
		return schema.FieldKindText, nil
	}
}

func lengthRules(src *openapi3.Schema) []schema.ValidationRule {
	var rules []schema.ValidationRule
	if src.MinLength > 0 {
		rules = append(rules, schema.ValidationRule{Kind: schema.RuleMinLength, Value: strconv.FormatUint(src.MinLength, 10)})
	}
	if src.MaxLength != nil {
		rules = append(rules, schema.ValidationRule{Kind: schema.RuleMaxLength, Value: strconv.FormatUint(*src.MaxLength, 10)})
	}
	return rules
}

func propertyLabel(name string, src *openapi3.Schema) string {
	if label, ok := src.Extensions[labelExtensionKey].(string); ok && strings.TrimSpace(label) != "" {
		return label
	}
	if title := strings.TrimSpace(src.Title); title != "" {
		return title
	}
	return name
}

// formulaParents prefers an explicit parent list and falls back to the
// identifiers the formula references.
func formulaParents(expr string, raw any) []string {
	if list, ok := raw.([]any); ok {
		parents := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				parents = append(parents, s)
			}
		}
		return parents
	}
	program, err := formula.Compile(expr)
	if err != nil {
		return []string{}
	}
	return program.Identifiers()
}

func enumOptions(values []any) []schema.FieldOption {
	options := make([]schema.FieldOption, 0, len(values))
	for _, value := range values {
		text := scalarText(value)
		options = append(options, schema.FieldOption{Value: text, Label: text})
	}
	return options
}

func scalarText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return schema.FormatNumber(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func listText(value any) string {
	items, ok := value.([]any)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if text := scalarText(item); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ",")
}

func schemaType(src *openapi3.Schema) string {
	if src == nil || src.Type == nil {
		return ""
	}
	values := src.Type.Slice()
	for _, value := range values {
		if value != openapi3.TypeNull {
			return value
		}
	}
	return ""
}
