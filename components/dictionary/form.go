package dictionary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ettle/strcase"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Field names used by the add/edit form.
const (
	FieldType        = "type"
	FieldLabel       = "label"
	FieldValue       = "value"
	FieldSort        = "sort"
	FieldDescription = "description"
)

var formFieldOrder = []string{FieldType, FieldLabel, FieldValue, FieldSort, FieldDescription}

// ErrInvalidForm is returned by Save when field constraints fail.
var ErrInvalidForm = errors.New("dictionary: form has validation errors")

// formSchema declares the drawer constraints: everything but description is
// required and sort is a non-negative integer. Validate rejects sort values
// above math.MaxInt32 before the schema runs.
var formSchema = map[string]any{
	"$schema":  "http://json-schema.org/draft-07/schema#",
	"type":     "object",
	"required": []any{FieldType, FieldLabel, FieldValue, FieldSort},
	"properties": map[string]any{
		FieldType:        map[string]any{"type": "string", "minLength": 1},
		FieldLabel:       map[string]any{"type": "string", "minLength": 1},
		FieldValue:       map[string]any{"type": "string", "minLength": 1},
		FieldSort:        map[string]any{"type": "integer", "minimum": 0},
		FieldDescription: map[string]any{"type": "string"},
	},
}

// FormInput holds the raw drawer values as submitted by the browser.
type FormInput struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Sort        string `json:"sort"`
	Description string `json:"description"`
}

// FormInputFromItem pre-fills the form from an existing item.
func FormInputFromItem(item Item) FormInput {
	return FormInput{
		Type:        item.Type,
		Label:       item.Label,
		Value:       item.Value,
		Sort:        strconv.Itoa(item.Sort),
		Description: item.Description,
	}
}

func (in FormInput) get(name string) string {
	switch name {
	case FieldType:
		return in.Type
	case FieldLabel:
		return in.Label
	case FieldValue:
		return in.Value
	case FieldSort:
		return in.Sort
	case FieldDescription:
		return in.Description
	}
	return ""
}

// FieldErrors maps form field names to messages.
type FieldErrors map[string]string

// FormField describes one drawer input for rendering.
type FormField struct {
	Name      string `json:"name"`
	InputID   string `json:"input_id"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	Error     string `json:"error,omitempty"`
	Required  bool   `json:"required"`
	Locked    bool   `json:"locked"`
	Numeric   bool   `json:"numeric"`
	Multiline bool   `json:"multiline"`
}

// FormValidator evaluates the declared field constraints before any request.
type FormValidator struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// NewFormValidator builds a validator backed by jsonschema v5.
func NewFormValidator() *FormValidator {
	return &FormValidator{}
}

// Validate checks the input and returns the draft to submit, or field errors
// with messages in the requested locale.
func (v *FormValidator) Validate(input FormInput, locale string) (Draft, FieldErrors) {
	errs := FieldErrors{}
	payload := map[string]any{
		FieldType:        strings.TrimSpace(input.Type),
		FieldLabel:       strings.TrimSpace(input.Label),
		FieldValue:       strings.TrimSpace(input.Value),
		FieldDescription: strings.TrimSpace(input.Description),
	}

	rawSort := strings.TrimSpace(input.Sort)
	if rawSort != "" {
		parsed, err := strconv.ParseFloat(rawSort, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed > math.MaxInt32 {
			errs[FieldSort] = Message(locale, "form.sort_number", nil)
		} else {
			payload[FieldSort] = parsed
		}
	}

	schema, err := v.compiled()
	if err != nil {
		errs[""] = err.Error()
		return Draft{}, errs
	}
	normalized, err := normalizePayload(payload)
	if err != nil {
		errs[""] = err.Error()
		return Draft{}, errs
	}
	if err := schema.Validate(normalized); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			errs[""] = err.Error()
			return Draft{}, errs
		}
		for _, leaf := range validationLeaves(verr) {
			field, message := fieldMessage(leaf, locale)
			if _, exists := errs[field]; !exists {
				errs[field] = message
			}
		}
	}
	if len(errs) > 0 {
		return Draft{}, errs
	}

	sortValue, _ := payload[FieldSort].(float64)
	return Draft{
		Type:        payload[FieldType].(string),
		Label:       payload[FieldLabel].(string),
		Value:       payload[FieldValue].(string),
		Sort:        int(sortValue),
		Description: payload[FieldDescription].(string),
	}, nil
}

func (v *FormValidator) compiled() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		data, err := json.Marshal(formSchema)
		if err != nil {
			v.err = fmt.Errorf("dictionary: marshal form schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		const name = "dictionary-form.json"
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("dictionary: load form schema: %w", err)
			return
		}
		v.schema, v.err = compiler.Compile(name)
		if v.err != nil {
			v.err = fmt.Errorf("dictionary: compile form schema: %w", v.err)
		}
	})
	return v.schema, v.err
}

func normalizePayload(payload map[string]any) (any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("dictionary: marshal form payload: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("dictionary: normalize form payload: %w", err)
	}
	return out, nil
}

func validationLeaves(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		leaves = append(leaves, validationLeaves(cause)...)
	}
	return leaves
}

func fieldMessage(err *jsonschema.ValidationError, locale string) (string, string) {
	field := strings.TrimPrefix(err.InstanceLocation, "/")
	keyword := err.KeywordLocation
	if idx := strings.LastIndex(keyword, "/"); idx >= 0 {
		keyword = keyword[idx+1:]
	}
	if field == "" && keyword == "required" {
		// only sort can be absent from the payload
		field = FieldSort
	}
	label := Message(locale, "field."+field, nil)
	switch {
	case field == FieldSort && keyword == "minimum":
		return field, Message(locale, "form.sort_minimum", nil)
	case field == FieldSort && keyword == "type":
		return field, Message(locale, "form.sort_number", nil)
	case keyword == "required" || keyword == "minLength":
		return field, Message(locale, "form.required", map[string]string{"field": strings.ToLower(label)})
	}
	return field, Message(locale, "form.invalid", map[string]string{"field": label})
}

// FormFields builds the render descriptors in display order.
func FormFields(input FormInput, errs FieldErrors, typeLocked bool, locale string) []FormField {
	fields := make([]FormField, 0, len(formFieldOrder))
	for _, name := range formFieldOrder {
		fields = append(fields, FormField{
			Name:      name,
			InputID:   strcase.ToCamel("dict_form_" + name),
			Label:     Message(locale, "field."+name, nil),
			Value:     input.get(name),
			Error:     errs[name],
			Required:  name != FieldDescription,
			Locked:    name == FieldType && typeLocked,
			Numeric:   name == FieldSort,
			Multiline: name == FieldDescription,
		})
	}
	return fields
}

// Fields lists field names with errors, sorted, for logging.
func (e FieldErrors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
