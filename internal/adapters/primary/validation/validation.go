package validation

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidRegex  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// Board enums as the API accepts them. The domain layer re-checks these on
// construction; validating here keeps enum typos a 422 with a field name
// instead of a bare domain error.
var (
	ticketTypes      = []string{"TASK", "BUG", "STORY"}
	ticketPriorities = []string{"LOW", "MEDIUM", "HIGH", "URGENT"}
	ticketStatuses   = []string{"BACKLOG", "TODO", "IN_PROGRESS", "IN_REVIEW", "DONE"}
)

// Validator accumulates field errors for one request body. Handlers chain
// rules per field and return Errors() when any rule failed.
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates an empty validator.
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the accumulated validation errors.
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Required validates that a string is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// MaxLength validates maximum string length.
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len(value) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// Email validates email format.
func (v *Validator) Email(field, value string) *Validator {
	if value != "" && !emailRegex.MatchString(value) {
		v.errors.Add(field, "Must be a valid email address")
	}
	return v
}

// UUID validates UUID format. Used for user references in request bodies;
// path-level project IDs are parsed by the handlers directly.
func (v *Validator) UUID(field, value string) *Validator {
	if value != "" && !uuidRegex.MatchString(value) {
		v.errors.Add(field, "Must be a valid UUID")
	}
	return v
}

// OneOf validates value is one of the allowed values. A blank value is
// left to Required.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}

	for _, a := range allowed {
		if value == a {
			return v
		}
	}

	v.errors.Add(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// TicketType validates a ticket type enum value.
func (v *Validator) TicketType(field, value string) *Validator {
	return v.OneOf(field, value, ticketTypes)
}

// TicketPriority validates a ticket priority enum value.
func (v *Validator) TicketPriority(field, value string) *Validator {
	return v.OneOf(field, value, ticketPriorities)
}

// TicketStatus validates a board column name.
func (v *Validator) TicketStatus(field, value string) *Validator {
	return v.OneOf(field, value, ticketStatuses)
}

// PositiveID validates a serial row reference. Tickets and features use
// int64 serial IDs, so zero and negatives can never name a row.
func (v *Validator) PositiveID(field string, value int64) *Validator {
	if value <= 0 {
		v.errors.Add(field, "Must be a positive integer")
	}
	return v
}

// Position validates a board position. Columns are zero-indexed from the
// top, so any non-negative value is acceptable; density is the
// repository's job.
func (v *Validator) Position(field string, value int32) *Validator {
	if value < 0 {
		v.errors.Add(field, "Must not be negative")
	}
	return v
}

// Timestamp validates an RFC3339 timestamp string, the only time format
// the API accepts for due dates.
func (v *Validator) Timestamp(field, value string) *Validator {
	if value == "" {
		return v
	}
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		v.errors.Add(field, "Must be an RFC3339 timestamp")
	}
	return v
}

// Custom adds a custom validation result.
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.errors.Add(field, message)
	}
	return v
}

// DecodeAndValidate decodes a JSON request body into T. Rule checking
// happens on the decoded value via its Validate method.
func DecodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}

	return &req, nil
}
