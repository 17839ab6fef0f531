package booking

import "time"

// transitions is the full status graph. Creation enters at pending (student
// request) or booked (teacher direct booking); rejected, cancelled and
// completed are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusBooked:    {StatusCompleted, StatusCancelled},
	StatusRejected:  nil,
	StatusCancelled: nil,
	StatusCompleted: nil,
}

// CanTransition reports whether the status graph permits moving from one
// status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Accept moves a pending request to confirmed, recording the approval moment
// and the teacher's optional message.
func (a *Appointment) Accept(message *string, now time.Time) error {
	if !CanTransition(a.Status, StatusConfirmed) {
		return &InvalidTransitionError{From: a.Status, To: StatusConfirmed}
	}
	a.Status = StatusConfirmed
	a.ResponseMessage = message
	a.RespondedAt = &now
	return nil
}

// Reject moves a pending request to rejected. A non-empty message is required
// so the student always learns why.
func (a *Appointment) Reject(message string, now time.Time) error {
	if message == "" {
		v := &ValidationError{}
		v.add("responseMessage", "required when rejecting a request")
		return v
	}
	if !CanTransition(a.Status, StatusRejected) {
		return &InvalidTransitionError{From: a.Status, To: StatusRejected}
	}
	a.Status = StatusRejected
	a.ResponseMessage = &message
	a.RespondedAt = &now
	return nil
}

// Cancel moves any active appointment to cancelled.
func (a *Appointment) Cancel(reason *string, now time.Time) error {
	if !CanTransition(a.Status, StatusCancelled) {
		return &InvalidTransitionError{From: a.Status, To: StatusCancelled}
	}
	a.Status = StatusCancelled
	a.CancelReason = reason
	a.CancelledAt = &now
	return nil
}

// Complete marks a settled appointment as having taken place.
func (a *Appointment) Complete() error {
	if !CanTransition(a.Status, StatusCompleted) {
		return &InvalidTransitionError{From: a.Status, To: StatusCompleted}
	}
	a.Status = StatusCompleted
	return nil
}
