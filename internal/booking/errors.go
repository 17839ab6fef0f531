package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotNotAvailable    = errors.New("slot is not in the teacher's weekly offering")
	ErrSlotBeingBooked     = errors.New("slot is currently being booked, please retry")
)

// FieldViolation is a single field-level validation failure.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a request, not just the
// first one, so callers can fix all of their input in one round trip.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// ConflictError reports that the requested slot is already occupied by an
// active appointment. ExistingID may be uuid.Nil when the occupant could not
// be re-read after a store-level unique violation.
type ConflictError struct {
	TeacherID  uuid.UUID
	Date       time.Time
	TimeSlot   string
	ExistingID uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s %s for teacher %s is already booked by appointment %s",
		e.Date.Format("2006-01-02"), e.TimeSlot, e.TeacherID, e.ExistingID)
}

// InvalidTransitionError names both the current status and the one the caller
// tried to move to.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition appointment from %q to %q", e.From, e.To)
}
