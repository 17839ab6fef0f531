package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const appointmentColumns = `
	id, teacher_id, weekday, time_slot, date,
	student_name, student_email, student_phone, subject, message,
	created_by, status, response_message, responded_at,
	cancel_reason, cancelled_at, created_at, updated_at
`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.TeacherID,
		&a.Weekday,
		&a.TimeSlot,
		&a.Date,
		&a.Student.Name,
		&a.Student.Email,
		&a.Student.Phone,
		&a.Student.Subject,
		&a.Student.Message,
		&a.CreatedBy,
		&a.Status,
		&a.ResponseMessage,
		&a.RespondedAt,
		&a.CancelReason,
		&a.CancelledAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func (r *PgRepository) Create(ctx context.Context, appt *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (
			id, teacher_id, weekday, time_slot, date,
			student_name, student_email, student_phone, subject, message,
			created_by, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
	`,
		appt.ID, appt.TeacherID, appt.Weekday, appt.TimeSlot, appt.Date,
		appt.Student.Name, appt.Student.Email, appt.Student.Phone,
		appt.Student.Subject, appt.Student.Message,
		appt.CreatedBy, appt.Status,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateActiveSlot
		}
		return err
	}

	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetActiveForSlot(ctx context.Context, teacherID uuid.UUID, date time.Time, timeSlot string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE teacher_id = $1
		  AND date = $2
		  AND time_slot = $3
		  AND status = ANY($4)
	`, teacherID, date, timeSlot, statusStrings(ActiveStatuses))
	return scanAppointment(row)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from Status, upd StatusUpdate) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $3,
		    response_message = COALESCE($4, response_message),
		    responded_at = COALESCE($5, responded_at),
		    cancel_reason = COALESCE($6, cancel_reason),
		    cancelled_at = COALESCE($7, cancelled_at),
		    updated_at = now()
		WHERE id = $1
		  AND status = $2
		RETURNING `+appointmentColumns+`
	`, id, from, upd.To, upd.ResponseMessage, upd.RespondedAt, upd.CancelReason, upd.CancelledAt)

	return scanAppointment(row)
}

func (r *PgRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE teacher_id = $1
		ORDER BY date, time_slot, created_at
		LIMIT $2 OFFSET $3
	`, teacherID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) FindSettledBefore(ctx context.Context, cutoff time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = ANY($1)
		  AND date < $2
	`, statusStrings([]Status{StatusConfirmed, StatusBooked}), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
