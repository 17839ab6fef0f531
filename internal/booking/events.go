package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatusChangedEvent is the logical event emitted after every successful
// creation or transition. OldStatus is empty on creation. Delivery is
// fire-and-forget; the engine never waits on a subscriber.
type StatusChangedEvent struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	TeacherID     uuid.UUID `json:"teacher_id"`
	OldStatus     Status    `json:"old_status,omitempty"`
	NewStatus     Status    `json:"new_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers status change events to whatever notification component
// is listening. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishStatusChanged(ctx context.Context, ev StatusChangedEvent) error
}
