package model

import (
	"fmt"
	"strings"
)

// FieldError describes a single invalid or missing request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found in one request, not
// just the first
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Validate checks the request and returns a ValidationError listing every
// missing or malformed field. An absent priority defaults to NORMAL; a
// present but unknown priority is an error, never silently replaced.
func (r *IncomingRequest) Validate() error {
	var fields []FieldError

	if strings.TrimSpace(r.SourceID) == "" {
		fields = append(fields, FieldError{
			Field:   "source_id",
			Message: "must not be empty",
		})
	}
	if strings.TrimSpace(r.TargetResource.Name) == "" {
		fields = append(fields, FieldError{
			Field:   "target_resource.name",
			Message: "must not be empty",
		})
	}
	if strings.TrimSpace(r.ActionRequest.Intent) == "" {
		fields = append(fields, FieldError{
			Field:   "action_request.intent",
			Message: "must not be empty",
		})
	}

	if r.ActionRequest.Priority == "" {
		r.ActionRequest.Priority = PriorityNormal
	} else if !r.ActionRequest.Priority.IsValid() {
		fields = append(fields, FieldError{
			Field:   "action_request.priority",
			Message: fmt.Sprintf("must be one of LOW, NORMAL, HIGH, URGENT, got %q", r.ActionRequest.Priority),
		})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
