package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tutorhub/booking-engine/internal/db"
	"github.com/tutorhub/booking-engine/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedTeachers(context.Background(), pool, 60); err != nil {
		log.Fatalf("seed teachers: %v", err)
	}

	log.Println("seed complete")
}

// seedTeachers inserts teachers across all three availability shapes: a
// structured per-day calendar, a flat slot list, and nothing configured at
// all, so every normalization path has data behind it.
func seedTeachers(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d teachers", count)

	slotPool := []string{
		"8:00 AM - 9:00 AM",
		"9:00 AM - 10:00 AM",
		"10:00 AM - 11:00 AM",
		"11:00 AM - 12:00 PM",
		"1:00 PM - 2:00 PM",
		"2:00 PM - 3:00 PM",
		"3:00 PM - 4:00 PM",
		"4:00 PM - 5:00 PM",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		email := gofakeit.Email()

		var weekly, flat []byte

		switch i % 3 {
		case 0:
			w := make(map[string][]string)
			for _, day := range schedule.Weekdays {
				if gofakeit.Bool() {
					continue
				}
				w[day] = randomSlots(slotPool, gofakeit.Number(1, 4))
			}
			if len(w) == 0 {
				w["Monday"] = []string{slotPool[0]}
			}
			weekly, err = json.Marshal(w)
			if err != nil {
				return err
			}
		case 1:
			n := gofakeit.Number(2, 5)
			flat, err = json.Marshal(randomSlots(slotPool, n))
			if err != nil {
				return err
			}
		case 2:
			// No availability configured; the engine serves the default
			// template for these.
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO teachers (id, name, email, weekly_availability, slot_list, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, id, name, email, weekly, flat)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("teachers seeded")
	return nil
}

func randomSlots(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	picked := make(map[int]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		idx := gofakeit.Number(0, len(pool)-1)
		if picked[idx] {
			continue
		}
		picked[idx] = true
		out = append(out, pool[idx])
	}
	return out
}
