package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateActiveSlot is returned by Create when the store's unique
// constraint on active (teacher, date, slot) tuples rejects the insert.
var ErrDuplicateActiveSlot = errors.New("another active appointment holds this slot")

// StatusUpdate carries the fields a status transition writes alongside the
// new status itself.
type StatusUpdate struct {
	To              Status
	ResponseMessage *string
	RespondedAt     *time.Time
	CancelReason    *string
	CancelledAt     *time.Time
}

// Repository contains all store interactions needed by the service.
// Appointments are never deleted; terminal rows are retained as history.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// GetActiveForSlot is the conflict check: it returns the appointment,
	// if any, holding an active status for the exact tuple.
	GetActiveForSlot(ctx context.Context, teacherID uuid.UUID, date time.Time, timeSlot string) (*Appointment, error)

	// UpdateStatus applies a transition with compare-and-swap semantics:
	// the write only lands if the row still holds the expected status.
	// ErrAppointmentNotFound signals either an unknown id or a lost race.
	UpdateStatus(ctx context.Context, id uuid.UUID, from Status, upd StatusUpdate) (*Appointment, error)

	ListByTeacher(ctx context.Context, teacherID uuid.UUID, limit, offset int) ([]Appointment, error)

	// FindSettledBefore returns confirmed and booked appointments whose date
	// is before the cutoff, for the completion worker.
	FindSettledBefore(ctx context.Context, cutoff time.Time) ([]Appointment, error)
}
