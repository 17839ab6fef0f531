package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/tutorhub/booking-engine/internal/booking"
	"github.com/tutorhub/booking-engine/internal/schedule"
)

const dateLayout = "2006-01-02"

type StudentPayload struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Subject *string `json:"subject,omitempty"`
	Message *string `json:"message,omitempty"`
}

type CreateAppointmentRequest struct {
	TeacherID string         `json:"teacher_id"`
	Weekday   string         `json:"weekday"`
	TimeSlot  string         `json:"time_slot"`
	Date      string         `json:"date,omitempty"` // YYYY-MM-DD, optional
	Student   StudentPayload `json:"student"`
}

type RespondRequest struct {
	Decision        string  `json:"decision"`
	ResponseMessage *string `json:"response_message,omitempty"`
}

type CancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type AppointmentResponse struct {
	ID              uuid.UUID      `json:"id"`
	TeacherID       uuid.UUID      `json:"teacher_id"`
	Weekday         string         `json:"weekday"`
	TimeSlot        string         `json:"time_slot"`
	Date            string         `json:"date"`
	Student         StudentPayload `json:"student"`
	CreatedBy       string         `json:"created_by"`
	Status          string         `json:"status"`
	ResponseMessage *string        `json:"response_message,omitempty"`
	RespondedAt     *time.Time     `json:"responded_at,omitempty"`
	CancelReason    *string        `json:"cancel_reason,omitempty"`
	CancelledAt     *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

type DayAvailabilityPayload struct {
	Weekday string   `json:"weekday"`
	Slots   []string `json:"slots"`
}

type AvailabilityResponse struct {
	TeacherID uuid.UUID                `json:"teacher_id"`
	Source    string                   `json:"source"`
	Days      []DayAvailabilityPayload `json:"days"`
}

type ErrorResponse struct {
	Error      string                   `json:"error"`
	Details    string                   `json:"details,omitempty"`
	Violations []booking.FieldViolation `json:"violations,omitempty"`
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		TeacherID: a.TeacherID,
		Weekday:   a.Weekday,
		TimeSlot:  a.TimeSlot,
		Date:      a.Date.Format(dateLayout),
		Student: StudentPayload{
			Name:    a.Student.Name,
			Email:   a.Student.Email,
			Phone:   a.Student.Phone,
			Subject: a.Student.Subject,
			Message: a.Student.Message,
		},
		CreatedBy:       string(a.CreatedBy),
		Status:          string(a.Status),
		ResponseMessage: a.ResponseMessage,
		RespondedAt:     a.RespondedAt,
		CancelReason:    a.CancelReason,
		CancelledAt:     a.CancelledAt,
		CreatedAt:       a.CreatedAt,
	}
}

func toAvailabilityResponse(teacherID uuid.UUID, w schedule.WeeklyAvailability) AvailabilityResponse {
	days := make([]DayAvailabilityPayload, 0, len(w.Days))
	for _, d := range w.Days {
		days = append(days, DayAvailabilityPayload{Weekday: d.Weekday, Slots: d.Slots})
	}
	return AvailabilityResponse{
		TeacherID: teacherID,
		Source:    string(w.Source),
		Days:      days,
	}
}
