package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// CaseRequestSchema describes the raw case payload. Every field is optional
// and may be null; unknown fields are tolerated.
const CaseRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "case_id":      {"type": ["string", "null"]},
    "case_name":    {"type": ["string", "null"]},
    "issue_area":   {"type": ["string", "null"]},
    "opinion_text": {"type": ["string", "null"]},
    "petitioner":   {"type": ["string", "null"]},
    "respondent":   {"type": ["string", "null"]}
  },
  "additionalProperties": true
}`

var caseRequestSchema = MustCompile(CaseRequestSchema)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Compile parses a JSON schema document.
func Compile(schemaJSON string) (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(schemaJSON string) *gojsonschema.Schema {
	schema, err := Compile(schemaJSON)
	if err != nil {
		panic(err)
	}
	return schema
}

// ValidateCaseRequest checks a raw payload against CaseRequestSchema. An error
// is returned only when raw is not JSON at all.
func ValidateCaseRequest(raw []byte) (*ValidationResult, error) {
	return ValidateDocument(caseRequestSchema, raw)
}

// ValidateDocument validates raw JSON against a compiled schema.
func ValidateDocument(schema *gojsonschema.Schema, raw []byte) (*ValidationResult, error) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return fromResult(result), nil
}

// ValidateValue validates an already-decoded value, e.g. Zeebe job variables.
func ValidateValue(schema *gojsonschema.Schema, value interface{}) (*ValidationResult, error) {
	result, err := schema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return fromResult(result), nil
}

func fromResult(result *gojsonschema.Result) *ValidationResult {
	errors := make([]ValidationError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errors = append(errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errors,
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Summary joins every error message into one line.
func (vr *ValidationResult) Summary() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") || strings.HasPrefix(err.Field, field+"[") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
