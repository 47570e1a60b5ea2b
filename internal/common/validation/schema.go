// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	taskTypePattern = regexp.MustCompile(`^[a-z]+(-[a-z]+)+$`)
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateDocument checks document against a JSON schema given as a decoded
// map. An empty schema accepts anything. The error return is reserved for a
// schema that cannot be compiled.
func ValidateDocument(schema map[string]interface{}, document interface{}) (*ValidationResult, error) {
	if len(schema) == 0 {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	return toResult(result), nil
}

// ValidateJSON is ValidateDocument for a raw JSON document, as received in
// job variables.
func ValidateJSON(schema map[string]interface{}, document string) (*ValidationResult, error) {
	if len(schema) == 0 {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	return toResult(result), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldOf(desc),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// fieldOf reports required-property errors against the missing property
// rather than its parent object.
func fieldOf(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() != "required" {
		return field
	}
	prop, ok := desc.Details()["property"].(string)
	if !ok {
		return field
	}
	if field == "(root)" {
		return prop
	}
	return field + "." + prop
}

// Error joins all messages so a failed result can be returned as an error.
func (vr *ValidationResult) Error() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}

// ValidateTaskTypeNaming checks a worker task type is lower-case kebab case
// with at least two words (e.g. save-evaluation).
func ValidateTaskTypeNaming(taskType string) error {
	if !taskTypePattern.MatchString(taskType) {
		return fmt.Errorf("task type must be kebab-case with at least two words (e.g. save-evaluation): %q", taskType)
	}
	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
