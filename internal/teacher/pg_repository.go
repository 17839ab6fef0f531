package teacher

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Teacher, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, weekly_availability, slot_list, created_at, updated_at
		FROM teachers
		WHERE id = $1
	`, id)

	var t Teacher
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Email,
		&t.Weekly,
		&t.Slots,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &t, nil
}
