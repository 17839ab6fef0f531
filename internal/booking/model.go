package booking

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusBooked    Status = "booked"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ActiveStatuses are the statuses that occupy a teacher/date/slot tuple.
// At most one appointment per tuple may hold one of these at any time.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed, StatusBooked}

func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusBooked
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusCompleted
}

type CreatedBy string

const (
	CreatedByStudent CreatedBy = "student"
	CreatedByTeacher CreatedBy = "teacher"
)

// Student is the value object describing who the appointment is for. Only
// name and email are required.
type Student struct {
	Name    string
	Email   string
	Phone   *string
	Subject *string
	Message *string
}

type Appointment struct {
	ID        uuid.UUID
	TeacherID uuid.UUID
	Weekday   string
	TimeSlot  string
	Date      time.Time

	Student   Student
	CreatedBy CreatedBy

	Status          Status
	ResponseMessage *string
	RespondedAt     *time.Time
	CancelReason    *string
	CancelledAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
