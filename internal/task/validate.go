package task

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/date"
)

// FieldError is a single problem with one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects field problems across a whole batch.
type ValidationErrors struct {
	Errors []FieldError
}

// Add records a problem for the given field path.
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Message: message})
}

// Merge appends all problems from other.
func (ve *ValidationErrors) Merge(other *ValidationErrors) {
	if other == nil {
		return
	}
	ve.Errors = append(ve.Errors, other.Errors...)
}

// HasErrors reports whether any problem was recorded.
func (ve *ValidationErrors) HasErrors() bool {
	return ve != nil && len(ve.Errors) > 0
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// Fields groups messages by field path.
func (ve *ValidationErrors) Fields() map[string][]string {
	fields := make(map[string][]string, len(ve.Errors))
	for _, e := range ve.Errors {
		fields[e.Field] = append(fields[e.Field], e.Message)
	}
	return fields
}

// CLIError converts the collected problems into a structured error.
// The code reflects the first problem when it has a more specific code.
func (ve *ValidationErrors) CLIError() *clierr.Error {
	if len(ve.Errors) == 0 {
		return clierr.New(clierr.InvalidInput, "invalid input")
	}
	code := codeFor(ve.Errors[0].Field)
	msg := "invalid input: " + ve.Errors[0].Error()
	if n := len(ve.Errors); n > 1 {
		msg += fmt.Sprintf(" (and %d more)", n-1)
	}
	details := make(map[string]any, len(ve.Errors))
	for field, msgs := range ve.Fields() {
		details[field] = msgs
	}
	return clierr.New(code, msg).WithDetails(details)
}

func codeFor(field string) string {
	switch {
	case field == "strategy":
		return clierr.InvalidStrategy
	case strings.HasSuffix(field, ".title"):
		return clierr.TitleRequired
	case strings.HasSuffix(field, ".due_date"):
		return clierr.InvalidDate
	case strings.HasSuffix(field, ".importance"):
		return clierr.InvalidImportance
	default:
		return clierr.InvalidInput
	}
}

// Validate checks the semantic rules on already-typed inputs. Type problems
// are caught earlier by the decoder.
func Validate(inputs []Input) *ValidationErrors {
	errs := &ValidationErrors{}
	for i, in := range inputs {
		validateInput(errs, fmt.Sprintf("tasks[%d]", i), in)
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateInput(errs *ValidationErrors, prefix string, in Input) {
	validateTitle(errs, prefix, strings.TrimSpace(in.Title))
	if in.Importance != nil {
		validateImportance(errs, prefix, *in.Importance)
	}
	if in.DueDate != nil {
		validateDueDate(errs, prefix, *in.DueDate)
	}
}

func validateTitle(errs *ValidationErrors, prefix, title string) {
	switch {
	case title == "":
		errs.Add(prefix+".title", "This field may not be blank.")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		errs.Add(prefix+".title", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxTitleLength))
	}
}

func validateImportance(errs *ValidationErrors, prefix string, importance int) {
	if importance < MinImportance {
		errs.Add(prefix+".importance", fmt.Sprintf("Ensure this value is greater than or equal to %d.", MinImportance))
	} else if importance > MaxImportance {
		errs.Add(prefix+".importance", fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxImportance))
	}
}

// validateDueDate rejects dates before MinDueYear as implausible.
func validateDueDate(errs *ValidationErrors, prefix string, d date.Date) {
	if d.Year() < MinDueYear {
		errs.Add(prefix+".due_date", "due_date looks invalid.")
	}
}

// ValidateTaskID returns a CLIError for invalid task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// ValidateDate returns a CLIError for invalid date input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s date: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}
