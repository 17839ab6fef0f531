package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/booking-engine/internal/booking"
	"github.com/tutorhub/booking-engine/internal/schedule"
)

// stubService lets each test pin just the method it exercises.
type stubService struct {
	requestFn  func(ctx context.Context, req booking.BookingRequest) (*booking.Appointment, error)
	bookFn     func(ctx context.Context, req booking.BookingRequest) (*booking.Appointment, error)
	respondFn  func(ctx context.Context, id uuid.UUID, decision booking.Decision, message *string) (*booking.Appointment, error)
	cancelFn   func(ctx context.Context, id uuid.UUID, reason *string) (*booking.Appointment, error)
	completeFn func(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
	listFn     func(ctx context.Context, teacherID uuid.UUID, limit, offset int) ([]booking.Appointment, error)
	availFn    func(ctx context.Context, teacherID uuid.UUID) (schedule.WeeklyAvailability, error)
}

func (s *stubService) RequestAppointment(ctx context.Context, req booking.BookingRequest) (*booking.Appointment, error) {
	return s.requestFn(ctx, req)
}

func (s *stubService) TeacherBookAppointment(ctx context.Context, req booking.BookingRequest) (*booking.Appointment, error) {
	return s.bookFn(ctx, req)
}

func (s *stubService) RespondToRequest(ctx context.Context, id uuid.UUID, decision booking.Decision, message *string) (*booking.Appointment, error) {
	return s.respondFn(ctx, id, decision, message)
}

func (s *stubService) CancelAppointment(ctx context.Context, id uuid.UUID, reason *string) (*booking.Appointment, error) {
	return s.cancelFn(ctx, id, reason)
}

func (s *stubService) CompleteAppointment(ctx context.Context, id uuid.UUID) (*booking.Appointment, error) {
	return s.completeFn(ctx, id)
}

func (s *stubService) GetAppointment(ctx context.Context, id uuid.UUID) (*booking.Appointment, error) {
	return s.getFn(ctx, id)
}

func (s *stubService) ListAppointmentsByTeacher(ctx context.Context, teacherID uuid.UUID, limit, offset int) ([]booking.Appointment, error) {
	return s.listFn(ctx, teacherID, limit, offset)
}

func (s *stubService) TeacherAvailability(ctx context.Context, teacherID uuid.UUID) (schedule.WeeklyAvailability, error) {
	return s.availFn(ctx, teacherID)
}

func newTestRouter(svc BookingService) http.Handler {
	r := chi.NewRouter()
	r.Post("/appointments", requestAppointmentHandler(svc))
	r.Post("/appointments/direct", teacherBookAppointmentHandler(svc))
	r.Get("/appointments", listAppointmentsHandler(svc))
	r.Get("/appointments/{id}", getAppointmentHandler(svc))
	r.Post("/appointments/{id}/respond", respondToRequestHandler(svc))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(svc))
	r.Post("/appointments/{id}/complete", completeAppointmentHandler(svc))
	r.Get("/teachers/{id}/availability", teacherAvailabilityHandler(svc))
	return r
}

func sampleAppointment() *booking.Appointment {
	return &booking.Appointment{
		ID:        uuid.New(),
		TeacherID: uuid.New(),
		Weekday:   "Monday",
		TimeSlot:  "9:00 AM - 10:00 AM",
		Date:      time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
		Student:   booking.Student{Name: "Grace Hopper", Email: "grace@example.com"},
		CreatedBy: booking.CreatedByStudent,
		Status:    booking.StatusPending,
		CreatedAt: time.Date(2026, time.January, 7, 9, 30, 0, 0, time.UTC),
	}
}

func createBody(teacherID uuid.UUID) string {
	return fmt.Sprintf(`{
		"teacher_id": %q,
		"weekday": "monday",
		"time_slot": "9:00 AM - 10:00 AM",
		"student": {"name": "Grace Hopper", "email": "grace@example.com"}
	}`, teacherID)
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body == "" {
		rdr = bytes.NewReader(nil)
	} else {
		rdr = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequestAppointmentHandlerCreated(t *testing.T) {
	appt := sampleAppointment()
	svc := &stubService{
		requestFn: func(_ context.Context, req booking.BookingRequest) (*booking.Appointment, error) {
			assert.Equal(t, appt.TeacherID, req.TeacherID)
			assert.Equal(t, "monday", req.Weekday)
			assert.Nil(t, req.Date)
			return appt, nil
		},
	}

	rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/appointments", createBody(appt.TeacherID))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp AppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, appt.ID, resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2026-01-12", resp.Date)
}

func TestRequestAppointmentHandlerBadJSON(t *testing.T) {
	svc := &stubService{}
	rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/appointments", "{not json")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "invalid_request_body", resp.Error)
}

func TestRequestAppointmentHandlerBadDate(t *testing.T) {
	svc := &stubService{}
	body := strings.Replace(createBody(uuid.New()), `"weekday"`, `"date": "12/01/2026", "weekday"`, 1)
	rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/appointments", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestAppointmentHandlerValidationFailure(t *testing.T) {
	verr := &booking.ValidationError{Violations: []booking.FieldViolation{
		{Field: "student.name", Message: "required"},
		{Field: "student.email", Message: "required"},
	}}
	svc := &stubService{
		requestFn: func(context.Context, booking.BookingRequest) (*booking.Appointment, error) {
			return nil, verr
		},
	}

	rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/appointments", createBody(uuid.New()))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Len(t, resp.Violations, 2)
}

func TestRequestAppointmentHandlerSlotNotAvailable(t *testing.T) {
	svc := &stubService{
		requestFn: func(context.Context, booking.BookingRequest) (*booking.Appointment, error) {
			return nil, fmt.Errorf("%w: %q on Monday", booking.ErrSlotNotAvailable, "9:00 AM - 10:00 AM")
		},
	}

	rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/appointments", createBody(uuid.New()))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRequestAppointmentHandlerConflict(t *testing.T) {
	existing := uuid.New()
	svc := &stubService{
		requestFn: func(context.Context, booking.BookingRequest) (*booking.Appointment, error) {
			return nil, &booking.ConflictError{
				TeacherID:  uuid.New(),
				Date:       time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
				TimeSlot:   "9:00 AM - 10:00 AM",
				ExistingID: existing,
			}
		},
	}

	rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/appointments", createBody(uuid.New()))

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "slot_conflict", resp.Error)
	assert.Contains(t, resp.Details, existing.String())
}

func TestRequestAppointmentHandlerLockBusy(t *testing.T) {
	svc := &stubService{
		requestFn: func(context.Context, booking.BookingRequest) (*booking.Appointment, error) {
			return nil, booking.ErrSlotBeingBooked
		},
	}

	rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/appointments", createBody(uuid.New()))

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "slot_being_booked", resp.Error)
}

func TestTeacherBookAppointmentHandlerCreated(t *testing.T) {
	appt := sampleAppointment()
	appt.Status = booking.StatusBooked
	appt.CreatedBy = booking.CreatedByTeacher
	svc := &stubService{
		bookFn: func(context.Context, booking.BookingRequest) (*booking.Appointment, error) {
			return appt, nil
		},
	}

	rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/appointments/direct", createBody(appt.TeacherID))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp AppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "booked", resp.Status)
	assert.Equal(t, "teacher", resp.CreatedBy)
}

func TestRespondHandlerInvalidTransition(t *testing.T) {
	svc := &stubService{
		respondFn: func(_ context.Context, _ uuid.UUID, decision booking.Decision, _ *string) (*booking.Appointment, error) {
			assert.Equal(t, booking.DecisionAccept, decision)
			return nil, &booking.InvalidTransitionError{From: booking.StatusCancelled, To: booking.StatusConfirmed}
		},
	}

	rec := doRequest(t, newTestRouter(svc), http.MethodPost,
		"/appointments/"+uuid.NewString()+"/respond", `{"decision": "accept"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "invalid_transition", resp.Error)
}

func TestRespondHandlerBadID(t *testing.T) {
	rec := doRequest(t, newTestRouter(&stubService{}), http.MethodPost,
		"/appointments/not-a-uuid/respond", `{"decision": "accept"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelHandlerWithoutBody(t *testing.T) {
	appt := sampleAppointment()
	appt.Status = booking.StatusCancelled
	svc := &stubService{
		cancelFn: func(_ context.Context, id uuid.UUID, reason *string) (*booking.Appointment, error) {
			assert.Equal(t, appt.ID, id)
			assert.Nil(t, reason, "cancel body is optional")
			return appt, nil
		},
	}

	rec := doRequest(t, newTestRouter(svc), http.MethodPost,
		"/appointments/"+appt.ID.String()+"/cancel", "")

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetHandlerNotFound(t *testing.T) {
	svc := &stubService{
		getFn: func(context.Context, uuid.UUID) (*booking.Appointment, error) {
			return nil, booking.ErrAppointmentNotFound
		},
	}

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/appointments/"+uuid.NewString(), "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "appointment_not_found", resp.Error)
}

func TestListHandlerRequiresTeacherID(t *testing.T) {
	rec := doRequest(t, newTestRouter(&stubService{}), http.MethodGet, "/appointments", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListHandlerPassesPaging(t *testing.T) {
	teacherID := uuid.New()
	svc := &stubService{
		listFn: func(_ context.Context, gotID uuid.UUID, limit, offset int) ([]booking.Appointment, error) {
			assert.Equal(t, teacherID, gotID)
			assert.Equal(t, 5, limit)
			assert.Equal(t, 10, offset)
			return []booking.Appointment{*sampleAppointment()}, nil
		},
	}

	rec := doRequest(t, newTestRouter(svc), http.MethodGet,
		"/appointments?teacher_id="+teacherID.String()+"&limit=5&offset=10", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []AppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 1)
}

func TestAvailabilityHandler(t *testing.T) {
	teacherID := uuid.New()
	svc := &stubService{
		availFn: func(context.Context, uuid.UUID) (schedule.WeeklyAvailability, error) {
			return schedule.WeeklyAvailability{
				Source: schedule.SourceExplicit,
				Days: []schedule.DayAvailability{
					{Weekday: "Monday", Slots: []string{"9:00 AM - 10:00 AM"}},
				},
			}, nil
		},
	}

	rec := doRequest(t, newTestRouter(svc), http.MethodGet,
		"/teachers/"+teacherID.String()+"/availability", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AvailabilityResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, teacherID, resp.TeacherID)
	assert.Equal(t, string(schedule.SourceExplicit), resp.Source)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, "Monday", resp.Days[0].Weekday)
}
