package teacher

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("teacher not found")

// Teacher is a read-only record from the directory. Weekly and Slots are the
// raw availability shapes as configured; either or both may be empty, and the
// schedule package normalizes them at read time.
type Teacher struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Weekly    map[string][]string
	Slots     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Directory supplies teacher records. The booking engine never writes
// through it.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Teacher, error)
}
