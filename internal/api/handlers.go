package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tutorhub/booking-engine/internal/booking"
	"github.com/tutorhub/booking-engine/internal/schedule"
	"github.com/tutorhub/booking-engine/internal/teacher"
)

// BookingService is the orchestrator surface the handlers depend on.
type BookingService interface {
	RequestAppointment(ctx context.Context, req booking.BookingRequest) (*booking.Appointment, error)
	TeacherBookAppointment(ctx context.Context, req booking.BookingRequest) (*booking.Appointment, error)
	RespondToRequest(ctx context.Context, id uuid.UUID, decision booking.Decision, message *string) (*booking.Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID, reason *string) (*booking.Appointment, error)
	CompleteAppointment(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
	ListAppointmentsByTeacher(ctx context.Context, teacherID uuid.UUID, limit, offset int) ([]booking.Appointment, error)
	TeacherAvailability(ctx context.Context, teacherID uuid.UUID) (schedule.WeeklyAvailability, error)
}

func decodeBookingRequest(r *http.Request) (booking.BookingRequest, bool, string) {
	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return booking.BookingRequest{}, false, "could not parse JSON"
	}

	teacherID, err := uuid.Parse(req.TeacherID)
	if err != nil {
		return booking.BookingRequest{}, false, "teacher_id must be a valid UUID"
	}

	out := booking.BookingRequest{
		TeacherID: teacherID,
		Weekday:   req.Weekday,
		TimeSlot:  req.TimeSlot,
		Student: booking.Student{
			Name:    req.Student.Name,
			Email:   req.Student.Email,
			Phone:   req.Student.Phone,
			Subject: req.Student.Subject,
			Message: req.Student.Message,
		},
	}

	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return booking.BookingRequest{}, false, "date must be formatted as YYYY-MM-DD"
		}
		out.Date = &date
	}

	return out, true, ""
}

func requestAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok, details := decodeBookingRequest(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_request_body", details)
			return
		}

		appt, err := svc.RequestAppointment(r.Context(), req)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func teacherBookAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok, details := decodeBookingRequest(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_request_body", details)
			return
		}

		appt, err := svc.TeacherBookAppointment(r.Context(), req)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func respondToRequestHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		var req RespondRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.RespondToRequest(r.Context(), id, booking.Decision(req.Decision), req.ResponseMessage)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		var req CancelRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
				return
			}
		}

		appt, err := svc.CancelAppointment(r.Context(), id, req.Reason)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func completeAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		appt, err := svc.CompleteAppointment(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teacherID, err := uuid.Parse(r.URL.Query().Get("teacher_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_teacher_id", "teacher_id query parameter must be a valid UUID")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		appts, err := svc.ListAppointmentsByTeacher(r.Context(), teacherID, limit, offset)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		out := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			out = append(out, toAppointmentResponse(&appts[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func teacherAvailabilityHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teacherID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_teacher_id", "id must be a valid UUID")
			return
		}

		avail, err := svc.TeacherAvailability(r.Context(), teacherID)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAvailabilityResponse(teacherID, avail))
	}
}

func appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleBookingError(w http.ResponseWriter, err error) {
	var verr *booking.ValidationError
	var conflict *booking.ConflictError
	var transition *booking.InvalidTransitionError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:      "validation_failed",
			Details:    verr.Error(),
			Violations: verr.Violations,
		})
	case errors.Is(err, schedule.ErrInvalidWeekday):
		writeError(w, http.StatusBadRequest, "invalid_weekday", err.Error())
	case errors.Is(err, booking.ErrSlotNotAvailable):
		writeError(w, http.StatusUnprocessableEntity, "slot_not_available", err.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, "slot_conflict", conflict.Error())
	case errors.Is(err, booking.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.As(err, &transition):
		writeError(w, http.StatusConflict, "invalid_transition", transition.Error())
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, teacher.ErrNotFound):
		writeError(w, http.StatusNotFound, "teacher_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
