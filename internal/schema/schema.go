// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package schema derives JSON Schemas from Go types and validates JSON and
// YAML documents against them.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// BaseID prefixes the $id of every generated schema.
const BaseID = "https://schoolhub.dev/schemas/"

// FieldError is one failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is returned when a document does not match its schema.
type Violations struct {
	Fields []FieldError
}

func (v *Violations) Error() string {
	parts := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsViolations unwraps a *Violations from err.
func AsViolations(err error) (*Violations, bool) {
	var v *Violations
	ok := errors.As(err, &v)
	return v, ok
}

// Generate reflects v into an indented JSON Schema document.
func Generate(v any, name, title string) ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	s := r.Reflect(v)
	s.ID = jsonschema.ID(BaseID + name)
	s.Title = title

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_MARSHAL_FAILED").With("schema", name).Wrap(err)
	}
	return data, nil
}

// Validator compiles one schema per Go type on first use.
type Validator struct {
	mu       sync.Mutex
	compiled map[reflect.Type]*jschema.Schema
}

// NewValidator creates an empty Validator.
func NewValidator() *Validator {
	return &Validator{compiled: make(map[reflect.Type]*jschema.Schema)}
}

func (v *Validator) schemaFor(target any) (*jschema.Schema, error) {
	t := reflect.TypeOf(target)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.compiled[t]; ok {
		return s, nil
	}

	name := strings.ToLower(t.Name()) + ".schema.json"
	raw, err := Generate(reflect.New(t).Interface(), name, t.Name())
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("type", t.String()).Wrap(err)
	}
	c := jschema.NewCompiler()
	if err := c.AddResource(BaseID+name, doc); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("type", t.String()).Wrap(err)
	}
	s, err := c.Compile(BaseID + name)
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("type", t.String()).Wrap(err)
	}
	v.compiled[t] = s
	return s, nil
}

// DecodeJSON validates data against the schema of dst's type and then
// decodes it into dst.
func (v *Validator) DecodeJSON(data []byte, dst any) error {
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &Violations{Fields: []FieldError{{Field: "body", Message: "body must be valid JSON"}}}
	}
	if err := v.check(doc, dst); err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &Violations{Fields: []FieldError{{Field: "body", Message: err.Error()}}}
	}
	return nil
}

// DecodeYAML validates a YAML document against the schema of dst's type and
// then decodes it into dst.
func (v *Validator) DecodeYAML(data []byte, dst any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Violations{Fields: []FieldError{{Field: "document", Message: "document is empty"}}}
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &Violations{Fields: []FieldError{{Field: "document", Message: err.Error()}}}
	}
	if err := v.check(jsonTypes(doc), dst); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return oops.Code("SCHEMA_DECODE_FAILED").Wrap(err)
	}
	return nil
}

func (v *Validator) check(doc, dst any) error {
	s, err := v.schemaFor(dst)
	if err != nil {
		return err
	}
	err = s.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jschema.ValidationError
	if !errors.As(err, &ve) {
		return oops.Code("SCHEMA_VALIDATE_FAILED").Wrap(err)
	}
	return violations(ve)
}

func violations(ve *jschema.ValidationError) *Violations {
	out := &Violations{}
	for _, unit := range ve.BasicOutput().Errors {
		// Group and root units carry no keyword of their own.
		if unit.Error == nil || len(unit.Errors) > 0 || len(unit.Error.Kind.KeywordPath()) == 0 {
			continue
		}
		field := strings.TrimPrefix(unit.InstanceLocation, "/")
		if field == "" {
			field = "body"
		}
		out.Fields = append(out.Fields, FieldError{Field: strings.ReplaceAll(field, "/", "."), Message: unit.Error.String()})
	}
	if len(out.Fields) == 0 {
		out.Fields = []FieldError{{Field: "body", Message: "does not match the expected shape"}}
	}
	sort.SliceStable(out.Fields, func(i, j int) bool { return out.Fields[i].Field < out.Fields[j].Field })
	return out
}

// jsonTypes normalizes YAML-decoded values into the types the validator
// accepts.
func jsonTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonTypes(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonTypes(item)
		}
		return out
	case int:
		return json.Number(strconv.Itoa(val))
	case int64:
		return json.Number(strconv.FormatInt(val, 10))
	case float64:
		return json.Number(strconv.FormatFloat(val, 'f', -1, 64))
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}
