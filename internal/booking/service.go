package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorhub/booking-engine/internal/metrics"
	redisclient "github.com/tutorhub/booking-engine/internal/redis"
	"github.com/tutorhub/booking-engine/internal/schedule"
	"github.com/tutorhub/booking-engine/internal/teacher"
)

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// BookingRequest is the input to both creation paths. Date is optional; when
// absent the date is derived from the weekday's next occurrence.
type BookingRequest struct {
	TeacherID uuid.UUID
	Weekday   string
	TimeSlot  string
	Date      *time.Time
	Student   Student
}

type Service struct {
	repo      Repository
	directory teacher.Directory
	locker    redisclient.Locker
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides the service clock, used by tests to pin the reference
// date for next-occurrence resolution.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wires the booking orchestrator. The publisher may be nil when no
// notification component is configured.
func NewService(repo Repository, directory teacher.Directory, locker redisclient.Locker, publisher Publisher, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		directory: directory,
		locker:    locker,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestAppointment is the student path: the appointment enters pending and
// waits for the teacher's response.
func (s *Service) RequestAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	return s.create(ctx, req, CreatedByStudent, StatusPending)
}

// TeacherBookAppointment is the teacher's direct path: no approval step, the
// appointment enters booked immediately.
func (s *Service) TeacherBookAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	return s.create(ctx, req, CreatedByTeacher, StatusBooked)
}

func (s *Service) create(ctx context.Context, req BookingRequest, by CreatedBy, initial Status) (*Appointment, error) {
	weekday, err := schedule.NormalizeWeekday(req.Weekday)
	if err != nil {
		return nil, err
	}

	t, err := s.directory.GetByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, teacher.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load teacher: %w", err)
	}

	avail := schedule.ResolveAvailability(t.Weekly, t.Slots)
	if !avail.HasSlot(weekday, req.TimeSlot) {
		return nil, fmt.Errorf("%w: %q on %s", ErrSlotNotAvailable, req.TimeSlot, weekday)
	}

	now := s.now()
	verr := &ValidationError{}

	date, err := s.resolveDate(weekday, req.Date, now, verr)
	if err != nil {
		return nil, err
	}
	validateStudent(req.Student, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	appt := &Appointment{
		ID:        uuid.New(),
		TeacherID: req.TeacherID,
		Weekday:   weekday,
		TimeSlot:  req.TimeSlot,
		Date:      date,
		Student:   req.Student,
		CreatedBy: by,
		Status:    initial,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.locker.WithSlotLock(ctx, req.TeacherID, date, req.TimeSlot, func(lockCtx context.Context) error {
		existing, err := s.repo.GetActiveForSlot(lockCtx, req.TeacherID, date, req.TimeSlot)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check active appointment: %w", err)
		}
		if existing != nil {
			return &ConflictError{TeacherID: req.TeacherID, Date: date, TimeSlot: req.TimeSlot, ExistingID: existing.ID}
		}

		if err := s.repo.Create(lockCtx, appt); err != nil {
			if errors.Is(err, ErrDuplicateActiveSlot) {
				return s.conflictFor(lockCtx, req.TeacherID, date, req.TimeSlot)
			}
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			metrics.SlotConflicts.Inc()
		}
		return nil, err
	}

	metrics.AppointmentsCreated.WithLabelValues(string(by)).Inc()
	s.logger.Info("appointment created",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("teacher_id", appt.TeacherID.String()),
		zap.String("weekday", appt.Weekday),
		zap.String("time_slot", appt.TimeSlot),
		zap.Time("date", appt.Date),
		zap.String("created_by", string(by)),
		zap.String("status", string(initial)),
	)
	s.publishStatusChanged(ctx, appt, "")

	return appt, nil
}

// conflictFor names the occupant after the store-level unique index rejected
// an insert the lock should have prevented.
func (s *Service) conflictFor(ctx context.Context, teacherID uuid.UUID, date time.Time, timeSlot string) error {
	conflict := &ConflictError{TeacherID: teacherID, Date: date, TimeSlot: timeSlot}
	existing, err := s.repo.GetActiveForSlot(ctx, teacherID, date, timeSlot)
	if err == nil {
		conflict.ExistingID = existing.ID
	}
	return conflict
}

func (s *Service) resolveDate(weekday string, explicit *time.Time, now time.Time, verr *ValidationError) (time.Time, error) {
	if explicit == nil {
		return schedule.NextDateFor(weekday, now)
	}

	date := schedule.TruncateToDate(*explicit)
	if date.Before(schedule.TruncateToDate(now)) {
		verr.add("date", "must be today or in the future")
	}
	if n, ok := schedule.WeekdayNumber(weekday); ok && date.Weekday() != n {
		verr.add("date", fmt.Sprintf("does not fall on a %s", weekday))
	}
	return date, nil
}

func validateStudent(st Student, verr *ValidationError) {
	if st.Name == "" {
		verr.add("student.name", "required")
	}
	if st.Email == "" {
		verr.add("student.email", "required")
	} else if _, err := mail.ParseAddress(st.Email); err != nil {
		verr.add("student.email", "must be a well-formed email address")
	}
}

// RespondToRequest applies the teacher's accept or reject decision to a
// pending request. Rejecting requires a non-empty message.
func (s *Service) RespondToRequest(ctx context.Context, id uuid.UUID, decision Decision, message *string) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	oldStatus := appt.Status

	switch decision {
	case DecisionAccept:
		err = appt.Accept(message, now)
	case DecisionReject:
		var msg string
		if message != nil {
			msg = *message
		}
		err = appt.Reject(msg, now)
	default:
		verr := &ValidationError{}
		verr.add("decision", fmt.Sprintf("must be %q or %q", DecisionAccept, DecisionReject))
		return nil, verr
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.applyTransition(ctx, appt.ID, oldStatus, StatusUpdate{
		To:              appt.Status,
		ResponseMessage: appt.ResponseMessage,
		RespondedAt:     appt.RespondedAt,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request responded",
		zap.String("appointment_id", updated.ID.String()),
		zap.String("decision", string(decision)),
		zap.String("status", string(updated.Status)),
	)
	s.publishStatusChanged(ctx, updated, oldStatus)

	return updated, nil
}

// CancelAppointment cancels any active appointment.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, reason *string) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := appt.Status
	if err := appt.Cancel(reason, s.now()); err != nil {
		return nil, err
	}

	updated, err := s.applyTransition(ctx, appt.ID, oldStatus, StatusUpdate{
		To:           StatusCancelled,
		CancelReason: appt.CancelReason,
		CancelledAt:  appt.CancelledAt,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment cancelled",
		zap.String("appointment_id", updated.ID.String()),
		zap.String("previous_status", string(oldStatus)),
	)
	s.publishStatusChanged(ctx, updated, oldStatus)

	return updated, nil
}

// CompleteAppointment marks a confirmed or booked appointment as having
// taken place.
func (s *Service) CompleteAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := appt.Status
	if err := appt.Complete(); err != nil {
		return nil, err
	}

	updated, err := s.applyTransition(ctx, appt.ID, oldStatus, StatusUpdate{To: StatusCompleted})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment completed",
		zap.String("appointment_id", updated.ID.String()),
	)
	s.publishStatusChanged(ctx, updated, oldStatus)

	return updated, nil
}

// applyTransition performs the compare-and-swap write. A miss means another
// caller moved the appointment first; the current status is re-read so the
// error names what the appointment actually is now.
func (s *Service) applyTransition(ctx context.Context, id uuid.UUID, from Status, upd StatusUpdate) (*Appointment, error) {
	updated, err := s.repo.UpdateStatus(ctx, id, from, upd)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, ErrAppointmentNotFound) {
		return nil, fmt.Errorf("update status: %w", err)
	}

	current, readErr := s.repo.GetByID(ctx, id)
	if readErr != nil {
		return nil, readErr
	}
	return nil, &InvalidTransitionError{From: current.Status, To: upd.To}
}

// CompletePastAppointments sweeps confirmed and booked appointments whose
// date has passed and completes them through the normal transition. Lost
// races are skipped; the next run picks up anything left over.
func (s *Service) CompletePastAppointments(ctx context.Context) (int, error) {
	today := schedule.TruncateToDate(s.now())

	stale, err := s.repo.FindSettledBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("find past appointments: %w", err)
	}

	completed := 0
	for _, appt := range stale {
		oldStatus := appt.Status
		updated, err := s.repo.UpdateStatus(ctx, appt.ID, oldStatus, StatusUpdate{To: StatusCompleted})
		if err != nil {
			if !errors.Is(err, ErrAppointmentNotFound) {
				s.logger.Warn("failed to complete past appointment",
					zap.String("appointment_id", appt.ID.String()),
					zap.Error(err),
				)
			}
			continue
		}
		completed++
		s.publishStatusChanged(ctx, updated, oldStatus)
	}

	return completed, nil
}

// GetAppointment retrieves an appointment by id.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAppointmentsByTeacher retrieves a teacher's appointments, terminal
// history included.
func (s *Service) ListAppointmentsByTeacher(ctx context.Context, teacherID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByTeacher(ctx, teacherID, limit, offset)
}

// TeacherAvailability returns the normalized weekly availability for a
// teacher, with the source it was resolved from.
func (s *Service) TeacherAvailability(ctx context.Context, teacherID uuid.UUID) (schedule.WeeklyAvailability, error) {
	t, err := s.directory.GetByID(ctx, teacherID)
	if err != nil {
		return schedule.WeeklyAvailability{}, err
	}
	return schedule.ResolveAvailability(t.Weekly, t.Slots), nil
}

func (s *Service) publishStatusChanged(ctx context.Context, appt *Appointment, old Status) {
	if s.publisher == nil {
		return
	}
	ev := StatusChangedEvent{
		AppointmentID: appt.ID,
		TeacherID:     appt.TeacherID,
		OldStatus:     old,
		NewStatus:     appt.Status,
		OccurredAt:    s.now(),
	}
	if err := s.publisher.PublishStatusChanged(ctx, ev); err != nil {
		s.logger.Warn("failed to publish status change",
			zap.String("appointment_id", appt.ID.String()),
			zap.String("new_status", string(appt.Status)),
			zap.Error(err),
		)
	}
}
